package app

import (
	"errors"
	"fmt"
)

// Config holds all the necessary configuration for an App instance to run.
// Non-zero fields override the values loaded from ConfigPaths.
type Config struct {
	ConfigPaths []string // hcl files or directories, optional

	ServiceName string
	Host        string
	Port        int
	// Addr is used verbatim as the listen address when set.
	Addr    string
	Metrics bool

	LogFormat        string
	LogLevel         string
	CheckConcurrency int
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.Port < 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("port %d is out of range", cfg.Port)
	}
	if cfg.CheckConcurrency < 0 {
		return nil, errors.New("check concurrency cannot be negative")
	}
	if cfg.Addr != "" && (cfg.Host != "" || cfg.Port != 0) {
		return nil, errors.New("addr cannot be combined with host or port")
	}
	return &cfg, nil
}
