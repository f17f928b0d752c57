package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	EnvProduction = "production"

	ReservationsMemory = "memory"
	ReservationsRedis  = "redis"

	NotifySMTP = "smtp"
	NotifyLog  = "log"
)

type Config struct {
	Port      string `env:"PORT,       default=8080"`
	Env       string `env:"ENV,        default=development"`
	LogLevel  string `env:"LOG_LEVEL,  default=info"`
	LogPretty bool   `env:"LOG_PRETTY, default=false"`

	CORSOrigins []string `env:"CORS_ORIGINS, default=http://localhost:3000"`

	Mongo        MongoConfig
	Redis        RedisConfig
	Tokens       TokenConfig
	Admin        AdminConfig
	Razorpay     RazorpayConfig
	Reservations ReservationConfig
	Login        LoginConfig
	Notify       NotifyConfig
	Cloudinary   CloudinaryConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=storefront"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

type TokenConfig struct {
	UserAccessSecret   string `env:"USER_ACCESS_TOKEN_SECRET"`
	UserRefreshSecret  string `env:"USER_REFRESH_TOKEN_SECRET"`
	AdminAccessSecret  string `env:"ADMIN_ACCESS_TOKEN_SECRET"`
	AdminRefreshSecret string `env:"ADMIN_REFRESH_TOKEN_SECRET"`
}

type AdminConfig struct {
	Email    string `env:"ADMIN_PANEL_EMAIL"`
	Password string `env:"ADMIN_PASSWORD"`
}

type RazorpayConfig struct {
	KeyID        string        `env:"RAZORPAY_KEY_ID"`
	KeySecret    string        `env:"RAZORPAY_KEY_SECRET"`
	Timeout      time.Duration `env:"GATEWAY_TIMEOUT,        default=30s"`
	CartFallback bool          `env:"CHECKOUT_CART_FALLBACK, default=true"`
}

type ReservationConfig struct {
	// Backend is "memory" or "redis".
	Backend string `env:"RESERVATION_BACKEND, default=memory"`
	// SweepAfter drops in-memory reservations older than this. Zero keeps
	// them until restart.
	SweepAfter time.Duration `env:"RESERVATION_SWEEP_AFTER, default=0s"`
}

type LoginConfig struct {
	MaxFailures int           `env:"LOGIN_MAX_FAILURES, default=5"`
	Window      time.Duration `env:"LOGIN_LOCK_WINDOW,  default=15m"`
}

type NotifyConfig struct {
	// Mode is "smtp" or "log".
	Mode       string        `env:"NOTIFY_MODE,    default=log"`
	SMTPHost   string        `env:"SMTP_HOST"`
	SMTPPort   int           `env:"SMTP_PORT,      default=587"`
	SMTPUser   string        `env:"SMTP_USER"`
	SMTPPass   string        `env:"SMTP_PASSWORD"`
	From       string        `env:"MAIL_FROM"`
	AdminEmail string        `env:"ADMIN_NOTIFY_EMAIL"`
	Timeout    time.Duration `env:"NOTIFY_TIMEOUT, default=30s"`
	Workers    int           `env:"NOTIFY_WORKERS, default=4"`
}

type CloudinaryConfig struct {
	CloudName string `env:"CLOUDINARY_CLOUD_NAME"`
	APIKey    string `env:"CLOUDINARY_API_KEY"`
	APISecret string `env:"CLOUDINARY_API_SECRET"`
	Folder    string `env:"CLOUDINARY_FOLDER, default=products"`
}

func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings the server cannot start without.
func (c *Config) Validate() error {
	var errs []error
	t := c.Tokens
	required := []struct{ name, value string }{
		{"USER_ACCESS_TOKEN_SECRET", t.UserAccessSecret},
		{"USER_REFRESH_TOKEN_SECRET", t.UserRefreshSecret},
		{"ADMIN_ACCESS_TOKEN_SECRET", t.AdminAccessSecret},
		{"ADMIN_REFRESH_TOKEN_SECRET", t.AdminRefreshSecret},
		{"ADMIN_PANEL_EMAIL", c.Admin.Email},
		{"ADMIN_PASSWORD", c.Admin.Password},
		{"RAZORPAY_KEY_ID", c.Razorpay.KeyID},
		{"RAZORPAY_KEY_SECRET", c.Razorpay.KeySecret},
	}
	for _, r := range required {
		if r.value == "" {
			errs = append(errs, fmt.Errorf("%s is required", r.name))
		}
	}
	if t.UserAccessSecret != "" && t.UserAccessSecret == t.UserRefreshSecret {
		errs = append(errs, errors.New("user access and refresh secrets must differ"))
	}
	if t.AdminAccessSecret != "" && t.AdminAccessSecret == t.AdminRefreshSecret {
		errs = append(errs, errors.New("admin access and refresh secrets must differ"))
	}

	switch c.Reservations.Backend {
	case ReservationsMemory, ReservationsRedis:
	default:
		errs = append(errs, fmt.Errorf("RESERVATION_BACKEND must be %q or %q", ReservationsMemory, ReservationsRedis))
	}
	switch c.Notify.Mode {
	case NotifyLog:
	case NotifySMTP:
		if c.Notify.SMTPHost == "" || c.Notify.From == "" {
			errs = append(errs, errors.New("SMTP_HOST and MAIL_FROM are required when NOTIFY_MODE=smtp"))
		}
	default:
		errs = append(errs, fmt.Errorf("NOTIFY_MODE must be %q or %q", NotifySMTP, NotifyLog))
	}
	return errors.Join(errs...)
}
