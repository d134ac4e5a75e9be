package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// StageTemplate is a catalog entry copied into every new withdrawal.
type StageTemplate struct {
	Index       int    `json:"index"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Stage is one step of a withdrawal's approval pipeline.
type Stage struct {
	Index       int        `json:"index"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Verified    bool       `json:"verified"`
	VerifiedBy  string     `json:"verifiedBy,omitempty"`
	VerifiedAt  *time.Time `json:"verifiedAt,omitempty"`
	Remarks     string     `json:"remarks,omitempty"`
}

// Stages is stored as a single JSONB column on the withdrawal row.
type Stages []Stage

// Value returns a string: lib/pq would send []byte as bytea, which JSONB rejects.
func (s Stages) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

func (s *Stages) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	case nil:
		*s = nil
		return nil
	default:
		return fmt.Errorf("stages: unsupported scan type %T", src)
	}
	return json.Unmarshal(raw, s)
}
