package config

import (
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR_NAME} patterns in strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars replaces ${VAR} patterns with environment variable values.
// Unset variables expand to the empty string so that a missing credential
// reads as unset rather than as a literal placeholder.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[2 : len(match)-1])
	})
}

// expandSensitiveFields resolves ${ENV_VAR} references in credential fields.
func expandSensitiveFields(cfg *Config) {
	cfg.Amadeus.ClientID = expandEnvVars(cfg.Amadeus.ClientID)
	cfg.Amadeus.ClientSecret = expandEnvVars(cfg.Amadeus.ClientSecret)
	cfg.Search.APIKey = expandEnvVars(cfg.Search.APIKey)
	for name, provider := range cfg.Models.Providers {
		provider.APIKey = expandEnvVars(provider.APIKey)
		cfg.Models.Providers[name] = provider
	}
}

// Load reads the config file, applies environment overrides, and returns
// a merged Config. A missing file yields defaults.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return cfg, err
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, &ConfigError{Message: "failed to parse config: " + err.Error()}
		}
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	expandSensitiveFields(&cfg)
	return cfg, nil
}

// LoadRaw reads the config file into a generic map for path-based access.
func LoadRaw(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]any{}, nil
		}
		return nil, err
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ConfigError{Message: "failed to parse config: " + err.Error()}
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return raw, nil
}

// SaveRaw writes a generic map back to a YAML config file.
func SaveRaw(path string, raw map[string]any) error {
	data, err := yaml.Marshal(raw)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// applyDefaults fills zero-value fields left by a partial YAML file.
func applyDefaults(cfg *Config) {
	d := Defaults()
	if cfg.Server.Port == 0 {
		cfg.Server.Port = d.Server.Port
	}
	if cfg.Server.Bind == "" {
		cfg.Server.Bind = d.Server.Bind
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = d.Server.AllowedOrigins
	}
	if cfg.Server.RequestTimeoutSeconds == 0 {
		cfg.Server.RequestTimeoutSeconds = d.Server.RequestTimeoutSeconds
	}
	if cfg.Models.Default == "" {
		cfg.Models.Default = d.Models.Default
	}
	if len(cfg.Models.Providers) == 0 {
		cfg.Models.Providers = d.Models.Providers
	}
	if cfg.Agents.Defaults.Model == "" {
		cfg.Agents.Defaults.Model = d.Agents.Defaults.Model
	}
	if cfg.Agents.Defaults.MaxTokens == 0 {
		cfg.Agents.Defaults.MaxTokens = d.Agents.Defaults.MaxTokens
	}
	if cfg.Agents.MaxAttempts == 0 {
		cfg.Agents.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.Agents.MaxToolRounds == 0 {
		cfg.Agents.MaxToolRounds = DefaultToolRounds
	}
	if cfg.Team.MaxHops == 0 {
		cfg.Team.MaxHops = DefaultMaxHops
	}
	if cfg.Tools.TimeoutSeconds == 0 {
		cfg.Tools.TimeoutSeconds = DefaultToolTimeout
	}
	if cfg.Amadeus.BaseURL == "" {
		cfg.Amadeus.BaseURL = DefaultAmadeusURL
	}
	if cfg.Search.BaseURL == "" {
		cfg.Search.BaseURL = DefaultSearchURL
	}
	if cfg.Search.Count == 0 {
		cfg.Search.Count = d.Search.Count
	}
	if cfg.Geo.URL == "" {
		cfg.Geo.URL = DefaultGeoURL
	}
	if cfg.Session.Store == "" {
		cfg.Session.Store = d.Session.Store
	}
	if cfg.Session.TTLMinutes == 0 {
		cfg.Session.TTLMinutes = DefaultTTLMinutes
	}
	if cfg.Session.SweepSeconds == 0 {
		cfg.Session.SweepSeconds = DefaultSweepSeconds
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.ConsoleStyle == "" {
		cfg.Logging.ConsoleStyle = "pretty"
	}
}

// applyEnvOverrides reads WAYFARER_* variables and the per-agent model ids
// used by earlier deployments (FLIGHT_AGENT_MODEL_ID, HOTEL_AGENT_MODEL_ID).
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("WAYFARER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("WAYFARER_BIND"); v != "" {
		cfg.Server.Bind = v
	}
	if v := os.Getenv("WAYFARER_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("WAYFARER_SESSION_STORE"); v != "" {
		cfg.Session.Store = strings.ToLower(v)
	}
	if v := os.Getenv("WAYFARER_METRICS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Telemetry.Metrics = b
		}
	}
	if v := os.Getenv("FLIGHT_AGENT_MODEL_ID"); v != "" {
		cfg.Agents.Flight.Model = v
	}
	if v := os.Getenv("HOTEL_AGENT_MODEL_ID"); v != "" {
		cfg.Agents.Hotel.Model = v
		if cfg.Agents.Destination.Model == "" {
			cfg.Agents.Destination.Model = v
		}
		if cfg.Agents.Supervisor.Model == "" {
			cfg.Agents.Supervisor.Model = v
		}
	}
}
