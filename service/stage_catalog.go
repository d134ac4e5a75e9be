package service

import (
	"fmt"
	"secure-bank-api/model"
)

const (
	DefaultStageCount = 10
	MaxStageCount     = 20
)

var stageDefinitions = [MaxStageCount]struct{ name, description string }{
	{"Login Authentication", "Securely log into your account with multi-factor authentication to protect your data."},
	{"Account Overview", "Get a complete view of your account balances and transactions to manage your finances easily."},
	{"Balance Check", "Check your available funds before making any payments to ensure successful transactions."},
	{"Payment Option Selection", "Choose the type of payment: bill payment, loan repayment, or money transfer."},
	{"Bill Payment Setup", "Set up your utility, mobile, or other service payments quickly to avoid late fees."},
	{"Loan Repayment Setup", "Schedule your loan repayments directly from your account."},
	{"Mortgage Payment Processing", "Manage your mortgage payments on time to keep your home secure."},
	{"Insurance Premium Payment", "Make your insurance premium payments directly through your account."},
	{"Credit Card Bill Payment", "Easily pay your credit card bills to avoid interest and maintain a healthy credit score."},
	{"Transfer Amount Input", "Enter the amount to transfer and review before confirming."},
	{"Beneficiary Selection", "Select your beneficiary securely from saved contacts or add new ones."},
	{"Payment Review", "Review the transaction details before proceeding."},
	{"Payment Approval (OTP Verification)", "Authorize the payment using One-Time Password (OTP) verification."},
	{"Transaction Processing", "Your payment is processed instantly for a fast and safe experience."},
	{"Payment Confirmation Receipt", "Get an instant receipt for every payment made."},
	{"International Transfer Currency Conversion", "Currency conversion for international payments at competitive rates."},
	{"Recurring Payment Setup", "Set up recurring payments for subscriptions, bills, or loans."},
	{"Tax Payment Setup", "Easily set up your tax payments to avoid late penalties."},
	{"Transaction History View", "View, download, or print your transaction history anytime."},
	{"Transaction Success Notification (SMS/Email)", "Receive instant notifications for every successful payment."},
}

// StageCatalog is the read-only, ordered list of approval stages every new withdrawal copies.
type StageCatalog struct {
	templates []model.StageTemplate
}

// NewStageCatalog keeps the first count stages. Zero selects the default.
func NewStageCatalog(count int) (*StageCatalog, error) {
	if count == 0 {
		count = DefaultStageCount
	}
	if count < 1 || count > MaxStageCount {
		return nil, fmt.Errorf("stage count must be between 1 and %d, got %d", MaxStageCount, count)
	}
	templates := make([]model.StageTemplate, count)
	for i := 0; i < count; i++ {
		templates[i] = model.StageTemplate{
			Index:       i + 1,
			Name:        stageDefinitions[i].name,
			Description: stageDefinitions[i].description,
		}
	}
	return &StageCatalog{templates: templates}, nil
}

func (c *StageCatalog) Count() int {
	return len(c.templates)
}

// Templates returns a copy; callers cannot alter the catalog.
func (c *StageCatalog) Templates() []model.StageTemplate {
	out := make([]model.StageTemplate, len(c.templates))
	copy(out, c.templates)
	return out
}

func (c *StageCatalog) Stage(index int) (model.StageTemplate, error) {
	if index < 1 || index > len(c.templates) {
		return model.StageTemplate{}, ErrIndexOutOfRange
	}
	return c.templates[index-1], nil
}
