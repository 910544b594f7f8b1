package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type FilesConfig struct {
	RootDir string `yaml:"root_dir"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	Enabled  bool   `yaml:"enabled"`
}

// FlowPolicyConfig are the per-flow security knobs; zero values fall back
// to the reference policy in Normalize.
type FlowPolicyConfig struct {
	PinTTLMinutes     int  `yaml:"pin_ttl_minutes"`
	MaxAttempts       int  `yaml:"max_attempts"`
	LockMinutes       int  `yaml:"lock_minutes"`
	ResendGapMinutes  int  `yaml:"resend_gap_minutes"`
	ExemptFirstResend bool `yaml:"exempt_first_resend"`
}

type SecurityConfig struct {
	JWTSecret          string           `yaml:"jwt_secret"`
	SessionTTLMinutes  int              `yaml:"session_ttl_minutes"`
	RefreshTTLHours    int              `yaml:"refresh_ttl_hours"`
	MaxFailedPasswords int              `yaml:"max_failed_passwords"`
	PasswordLockMin    int              `yaml:"password_lock_minutes"`
	Registration       FlowPolicyConfig `yaml:"registration"`
	TwoFactor          FlowPolicyConfig `yaml:"two_factor"`
	Recovery           FlowPolicyConfig `yaml:"recovery"`
}

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`
	Database struct {
		DSN string `yaml:"url"`
	} `yaml:"database"`
	Email struct {
		SMTPHost     string `yaml:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port"`
		SMTPUser     string `yaml:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password"`
		FromEmail    string `yaml:"from_email"`
	} `yaml:"email"`
	Files    FilesConfig    `yaml:"files"`
	Telegram TelegramConfig `yaml:"telegram"`
	Security SecurityConfig `yaml:"security"`
}

func LoadConfig() *Config {
	f, err := os.Open("config/config.yaml")
	if err != nil {
		panic("Failed to open config.yaml: " + err.Error())
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		panic("Failed to parse config.yaml: " + err.Error())
	}

	cfg.Normalize()
	return &cfg
}

// Normalize fills in the reference policy wherever the file left zeros.
func (c *Config) Normalize() {
	if c.Files.RootDir == "" {
		c.Files.RootDir = "./files"
	}
	if c.Security.SessionTTLMinutes <= 0 {
		c.Security.SessionTTLMinutes = 120
	}
	if c.Security.RefreshTTLHours <= 0 {
		c.Security.RefreshTTLHours = 30 * 24
	}
	if c.Security.MaxFailedPasswords <= 0 {
		c.Security.MaxFailedPasswords = 3
	}
	if c.Security.PasswordLockMin <= 0 {
		c.Security.PasswordLockMin = 10
	}
	normalizeFlow(&c.Security.Registration)
	normalizeFlow(&c.Security.TwoFactor)
	normalizeFlow(&c.Security.Recovery)
}

func normalizeFlow(f *FlowPolicyConfig) {
	if f.PinTTLMinutes <= 0 {
		f.PinTTLMinutes = 10
	}
	if f.MaxAttempts <= 0 {
		f.MaxAttempts = 3
	}
	if f.LockMinutes <= 0 {
		f.LockMinutes = 10
	}
	if f.ResendGapMinutes <= 0 {
		f.ResendGapMinutes = 3
	}
}

func (f FlowPolicyConfig) PinTTL() time.Duration       { return time.Duration(f.PinTTLMinutes) * time.Minute }
func (f FlowPolicyConfig) LockDuration() time.Duration { return time.Duration(f.LockMinutes) * time.Minute }
func (f FlowPolicyConfig) ResendGap() time.Duration    { return time.Duration(f.ResendGapMinutes) * time.Minute }
