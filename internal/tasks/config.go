package tasks

import (
	"time"

	"github.com/mrlokans/storyhub/internal/config"
)

// Config holds configuration for the task queue.
type Config struct {
	Workers int

	// Queue defaults; individual tasks may override them.
	MaxRetries  int
	RetryDelay  time.Duration
	TaskTimeout time.Duration

	// ReleaseAfter is when stuck tasks are released back to the queue.
	ReleaseAfter time.Duration

	CleanupInterval   time.Duration
	RetentionDuration time.Duration
}

func DefaultConfig() Config {
	return Config{
		Workers:           2,
		MaxRetries:        3,
		RetryDelay:        1 * time.Minute,
		TaskTimeout:       5 * time.Minute,
		ReleaseAfter:      15 * time.Minute,
		CleanupInterval:   1 * time.Hour,
		RetentionDuration: 24 * time.Hour,
	}
}

// ConfigFrom fills a Config from the application settings, keeping defaults
// for unset values.
func ConfigFrom(c config.Tasks) Config {
	cfg := DefaultConfig()
	if c.Workers > 0 {
		cfg.Workers = c.Workers
	}
	if c.MaxRetries > 0 {
		cfg.MaxRetries = c.MaxRetries
	}
	if c.RetryDelay > 0 {
		cfg.RetryDelay = c.RetryDelay
	}
	if c.TaskTimeout > 0 {
		cfg.TaskTimeout = c.TaskTimeout
	}
	if c.ReleaseAfter > 0 {
		cfg.ReleaseAfter = c.ReleaseAfter
	}
	if c.CleanupInterval > 0 {
		cfg.CleanupInterval = c.CleanupInterval
	}
	if c.RetentionDuration > 0 {
		cfg.RetentionDuration = c.RetentionDuration
	}
	return cfg
}
