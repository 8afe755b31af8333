package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/snowzach/rotatefilehook"
)

// SetupLogging configures every logger the same way: colored text on
// stderr and, when a log file is configured, rotated JSON lines.
func (c Config) SetupLogging(loggers ...*logrus.Logger) error {
	level, err := c.LogLevel()
	if err != nil {
		return err
	}

	var hook logrus.Hook
	if c.Log.File != "" {
		if dir := filepath.Dir(c.Log.File); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("mkdir %s: %w", dir, err)
			}
		}
		hook, err = rotatefilehook.NewRotateFileHook(rotatefilehook.RotateFileConfig{
			Filename:   c.Log.File,
			MaxSize:    c.Log.MaxSizeMB,
			MaxBackups: c.Log.MaxBackups,
			MaxAge:     c.Log.MaxAgeDays,
			Level:      level,
			Formatter: &logrus.JSONFormatter{
				TimestampFormat: time.RFC3339Nano,
			},
		})
		if err != nil {
			return fmt.Errorf("unable to open log file: %w", err)
		}
	}

	for _, log := range loggers {
		log.SetLevel(level)
		log.SetOutput(os.Stderr)
		log.SetFormatter(&logrus.TextFormatter{ForceColors: true})
		if hook != nil {
			log.AddHook(hook)
		}
	}
	return nil
}
