package config

import (
	"fmt"
	"slices"
)

// ValidationIssue describes a problem with a config value.
type ValidationIssue struct {
	Path    string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks a Config for issues. Returns nil if valid.
func Validate(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue
	add := func(path, format string, args ...any) {
		issues = append(issues, ValidationIssue{Path: path, Message: fmt.Sprintf(format, args...)})
	}

	// Server
	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		add("server.port", "port must be 0-65535, got %d", cfg.Server.Port)
	}
	validBinds := []string{"loopback", "lan", "custom"}
	if cfg.Server.Bind != "" && !slices.Contains(validBinds, cfg.Server.Bind) {
		add("server.bind", "must be one of %v, got %q", validBinds, cfg.Server.Bind)
	}
	if cfg.Server.Bind == "custom" && cfg.Server.CustomBindHost == "" {
		add("server.customBindHost", "required when bind is custom")
	}
	if cfg.Server.TLS.Enabled && (cfg.Server.TLS.CertPath == "" || cfg.Server.TLS.KeyPath == "") {
		add("server.tls", "certPath and keyPath are required when TLS is enabled")
	}
	if cfg.Server.RequestTimeoutSeconds < 0 {
		add("server.requestTimeoutSeconds", "must not be negative")
	}

	// Models
	if cfg.Models.Default != "" {
		if _, ok := cfg.Models.Providers[cfg.Models.Default]; !ok {
			add("models.default", "provider %q is not configured", cfg.Models.Default)
		}
	}
	for name, p := range cfg.Models.Providers {
		if p.BaseURL == "" {
			add("models.providers."+name+".baseUrl", "baseUrl is required")
		}
	}

	// Agents
	temps := map[string]*float64{
		"agents.defaults.temperature":    cfg.Agents.Defaults.Temperature,
		"agents.flight.temperature":      cfg.Agents.Flight.Temperature,
		"agents.hotel.temperature":       cfg.Agents.Hotel.Temperature,
		"agents.destination.temperature": cfg.Agents.Destination.Temperature,
		"agents.supervisor.temperature":  cfg.Agents.Supervisor.Temperature,
	}
	for path, t := range temps {
		if t != nil && (*t < 0 || *t > 2) {
			add(path, "must be between 0 and 2, got %g", *t)
		}
	}
	if cfg.Agents.MaxAttempts < 0 {
		add("agents.maxAttempts", "must not be negative")
	}
	if cfg.Agents.MaxToolRounds < 0 {
		add("agents.maxToolRounds", "must not be negative")
	}
	if cfg.Team.MaxHops < 0 {
		add("team.maxHops", "must not be negative")
	}
	if cfg.Tools.TimeoutSeconds < 0 {
		add("tools.timeoutSeconds", "must not be negative")
	}

	// Session
	validStores := []string{"memory", "sqlite"}
	if cfg.Session.Store != "" && !slices.Contains(validStores, cfg.Session.Store) {
		add("session.store", "must be one of %v, got %q", validStores, cfg.Session.Store)
	}
	if cfg.Session.TTLMinutes < 0 {
		add("session.ttlMinutes", "must not be negative")
	}

	// Logging
	validLogLevels := []string{"silent", "fatal", "error", "warn", "info", "debug", "trace"}
	if cfg.Logging.Level != "" && !slices.Contains(validLogLevels, cfg.Logging.Level) {
		add("logging.level", "must be one of %v, got %q", validLogLevels, cfg.Logging.Level)
	}
	validConsoleStyles := []string{"pretty", "json"}
	if cfg.Logging.ConsoleStyle != "" && !slices.Contains(validConsoleStyles, cfg.Logging.ConsoleStyle) {
		add("logging.consoleStyle", "must be one of %v, got %q", validConsoleStyles, cfg.Logging.ConsoleStyle)
	}

	return issues
}
