package config

import (
	"errors"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Database struct {
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
		SSLMode  string `mapstructure:"sslmode"`
	} `mapstructure:"database"`
	Server struct {
		Port            string        `mapstructure:"port"`
		ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	} `mapstructure:"server"`
	JWT struct {
		SecretKey string `mapstructure:"secret_key"`
	} `mapstructure:"jwt"`
	Redis struct {
		Host     string        `mapstructure:"host"`
		Port     string        `mapstructure:"port"`
		Password string        `mapstructure:"password"`
		DB       int           `mapstructure:"db"`
		TTL      time.Duration `mapstructure:"ttl"`
		Enabled  bool          `mapstructure:"enabled"`
	} `mapstructure:"redis"`
	Kafka struct {
		Brokers []string `mapstructure:"brokers"`
		Topic   string   `mapstructure:"topic"`
	} `mapstructure:"kafka"`
	Outbox struct {
		PollInterval   time.Duration `mapstructure:"poll_interval"`
		PublishTimeout time.Duration `mapstructure:"publish_timeout"`
		BatchSize      int           `mapstructure:"batch_size"`
		MaxAttempts    int           `mapstructure:"max_attempts"`
	} `mapstructure:"outbox"`
	Withdrawal struct {
		StageCount int `mapstructure:"stage_count"`
	} `mapstructure:"withdrawal"`
	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`
	Migrations struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"migrations"`
}

var AppConfig Config

func setDefaults() {
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", "5432")
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.name", "securebank")
	viper.SetDefault("database.sslmode", "disable")

	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.shutdown_timeout", 5*time.Second)

	viper.SetDefault("jwt.secret_key", "")

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", "6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.ttl", 10*time.Minute)
	viper.SetDefault("redis.enabled", true)

	viper.SetDefault("kafka.brokers", []string{})
	viper.SetDefault("kafka.topic", "bank.notifications")

	viper.SetDefault("outbox.poll_interval", time.Second)
	viper.SetDefault("outbox.publish_timeout", 15*time.Second)
	viper.SetDefault("outbox.batch_size", 50)
	viper.SetDefault("outbox.max_attempts", 5)

	viper.SetDefault("withdrawal.stage_count", 10)

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "json")

	viper.SetDefault("migrations.path", "file://db/migrations")
}

// LoadConfig reads config.yml from path, then overlays the environment
// (DATABASE_HOST, KAFKA_BROKERS, ...). A missing config file is not an error.
func LoadConfig(path string) {
	// .env is optional; production relies on the real environment.
	_ = godotenv.Load()

	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yml")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Fatalf("Error reading config file, %s", err)
		}
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}
}

// DSN is the lib/pq keyword/value connection string.
func (c Config) DSN() string {
	d := c.Database
	return "host=" + d.Host + " port=" + d.Port + " user=" + d.User +
		" password=" + d.Password + " dbname=" + d.Name + " sslmode=" + d.SSLMode
}

// MigrationURL is the postgres:// URL golang-migrate expects.
func (c Config) MigrationURL() string {
	d := c.Database
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     d.Host + ":" + d.Port,
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + d.SSLMode,
	}
	return u.String()
}
