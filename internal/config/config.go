package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	ModeDevelopment = "development"
	ModeProduction  = "production"
)

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Scores struct {
	Driver     string `json:"driver"`
	SQLitePath string `json:"sqlite_path"`
}

type Autoplay struct {
	Step      Duration  `json:"step"`
	Highlight *Duration `json:"highlight,omitempty"`
	Dead      *Duration `json:"dead,omitempty"`
}

type Session struct {
	TTL           Duration `json:"ttl"`
	SweepInterval Duration `json:"sweep_interval"`
}

// Board bounds the side of a custom board.
type Board struct {
	MinSide int `json:"min_side"`
	MaxSide int `json:"max_side"`
}

type Log struct {
	Level      string `json:"level"`
	File       string `json:"file"`
	MaxSizeMB  int    `json:"max_size_mb"`
	MaxBackups int    `json:"max_backups"`
	MaxAgeDays int    `json:"max_age_days"`
}

type Config struct {
	Mode           string   `json:"mode"`
	Addr           string   `json:"addr"`
	BasePath       string   `json:"base_path"`
	AllowedOrigins []string `json:"allowed_origins"`
	Scores         Scores   `json:"scores"`
	Autoplay       Autoplay `json:"autoplay"`
	Session        Session  `json:"session"`
	Board          Board    `json:"board"`
	Log            Log      `json:"log"`
	Cookies        Cookies  `json:"cookies"`
	JWT            JWT      `json:"jwt"`
}

func Default() *Config {
	return &Config{
		Mode: ModeProduction,
		Addr: ":8080",
		Scores: Scores{
			Driver:     DriverMemory,
			SQLitePath: "data/scores.sqlite",
		},
		Autoplay: Autoplay{Step: Duration{2 * time.Second}},
		Session: Session{
			TTL:           Duration{time.Hour},
			SweepInterval: Duration{time.Minute},
		},
		Board: Board{MinSide: 5, MaxSide: 50},
		Log: Log{
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Cookies: Cookies{SameSite: "lax"},
		JWT:     JWT{TokenLifetime: Duration{24 * time.Hour}},
	}
}

// Load starts from [Default], overlays the JSON file at path when path is
// not empty, then applies environment overrides.
func Load(path string) (*Config, error) {
	c := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("unable to read config %s: %w", path, err)
		}
		if err := json.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("unable to parse config %s: %w", path, err)
		}
	}
	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv("DEVELOPMENT"); ok && v != "0" {
		c.Mode = ModeDevelopment
	}
	lookupString("APP_MODE", &c.Mode)
	if v, ok := os.LookupEnv("APP_PORT"); ok {
		if !strings.Contains(v, ":") {
			v = ":" + v
		}
		c.Addr = v
	}
	lookupString("APP_BASE_PATH", &c.BasePath)
	if v, ok := os.LookupEnv("APP_ALLOWED_ORIGINS"); ok {
		c.AllowedOrigins = strings.Split(v, ",")
	}

	lookupString("SCORES_DRIVER", &c.Scores.Driver)
	lookupString("SQLITE_PATH", &c.Scores.SQLitePath)

	lookupString("LOG_LEVEL", &c.Log.Level)
	lookupString("LOG_FILE", &c.Log.File)

	lookupString("COOKIES_DOMAIN", &c.Cookies.Domain)
	if v, ok := os.LookupEnv("COOKIES_SECURE"); ok {
		c.Cookies.Secure = v != "0"
	}
	lookupString("COOKIES_SAMESITE", &c.Cookies.SameSite)

	for _, d := range []struct {
		key string
		dst *Duration
	}{
		{"AUTOPLAY_STEP", &c.Autoplay.Step},
		{"SESSION_TTL", &c.Session.TTL},
		{"SESSION_SWEEP_INTERVAL", &c.Session.SweepInterval},
		{"JWT_TOKEN_LIFETIME", &c.JWT.TokenLifetime},
	} {
		if err := lookupDuration(d.key, d.dst); err != nil {
			return err
		}
	}
	for _, d := range []struct {
		key string
		dst **Duration
	}{
		{"AUTOPLAY_HIGHLIGHT", &c.Autoplay.Highlight},
		{"AUTOPLAY_DEAD", &c.Autoplay.Dead},
	} {
		if _, ok := os.LookupEnv(d.key); !ok {
			continue
		}
		*d.dst = new(Duration)
		if err := lookupDuration(d.key, *d.dst); err != nil {
			return err
		}
	}

	for _, i := range []struct {
		key string
		dst *int
	}{
		{"BOARD_MIN_SIDE", &c.Board.MinSide},
		{"BOARD_MAX_SIDE", &c.Board.MaxSide},
	} {
		if err := lookupInt(i.key, i.dst); err != nil {
			return err
		}
	}

	return c.JWT.loadSecret()
}

func (c *Config) Validate() error {
	switch c.Scores.Driver {
	case DriverMemory, DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unknown scores driver %q", c.Scores.Driver)
	}
	if c.Board.MinSide < 1 || c.Board.MaxSide < c.Board.MinSide {
		return fmt.Errorf("invalid board bounds %d..%d", c.Board.MinSide, c.Board.MaxSide)
	}
	if c.Session.TTL.Duration <= 0 || c.Session.SweepInterval.Duration <= 0 {
		return fmt.Errorf("session ttl and sweep interval must be positive")
	}
	if c.Autoplay.Step.Duration < 0 {
		return fmt.Errorf("negative autoplay step %s", c.Autoplay.Step)
	}
	return nil
}

func (c Config) Development() bool {
	return c.Mode != ModeProduction
}

// LogLevel is the configured level, or debug in development and info
// otherwise.
func (c Config) LogLevel() (logrus.Level, error) {
	if c.Log.Level != "" {
		return logrus.ParseLevel(c.Log.Level)
	}
	if c.Development() {
		return logrus.DebugLevel, nil
	}
	return logrus.InfoLevel, nil
}

func (c Config) Fields() logrus.Fields {
	return logrus.Fields{
		"mode":             c.Mode,
		"addr":             c.Addr,
		"base_path":        c.BasePath,
		"scores_driver":    c.Scores.Driver,
		"sqlite_path":      c.Scores.SQLitePath,
		"autoplay_step":    c.Autoplay.Step.String(),
		"session_ttl":      c.Session.TTL.String(),
		"board_sides":      fmt.Sprintf("%d..%d", c.Board.MinSide, c.Board.MaxSide),
		"log_file":         c.Log.File,
		"cookies_domain":   c.Cookies.Domain,
		"jwt_lifetime":     c.JWT.TokenLifetime.String(),
		"jwt_secret_given": c.JWT.Secret != "",
	}
}

func lookupString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func lookupDuration(key string, dst *Duration) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	dst.Duration = d
	return nil
}

func lookupInt(key string, dst *int) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}
