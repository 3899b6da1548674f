package config

import "fmt"

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

const (
	DefaultPort         = 8000
	DefaultProvider     = "together"
	DefaultModel        = "meta-llama/Llama-3.3-70B-Instruct-Turbo"
	DefaultAmadeusURL   = "https://test.api.amadeus.com"
	DefaultSearchURL    = "https://api.search.brave.com/res/v1/web/search"
	DefaultGeoURL       = "http://ip-api.com/json/"
	DefaultMaxHops      = 10
	DefaultMaxAttempts  = 3
	DefaultToolRounds   = 8
	DefaultToolTimeout  = 20
	DefaultTTLMinutes   = 60
	DefaultSweepSeconds = 60
)

func ptr(f float64) *float64 { return &f }

// Defaults returns a Config with sensible defaults applied.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:                  DefaultPort,
			Bind:                  "loopback",
			AllowedOrigins:        []string{"http://localhost:3000"},
			RequestTimeoutSeconds: 300,
		},
		Models: ModelsConfig{
			Default: DefaultProvider,
			Providers: map[string]ModelProviderEntry{
				DefaultProvider: {
					BaseURL:        "https://api.together.xyz/v1",
					APIKey:         "${TOGETHER_API_KEY}",
					TimeoutSeconds: 120,
					Models:         []string{DefaultModel},
				},
			},
		},
		Agents: AgentsConfig{
			Defaults: AgentDefaults{
				Model:       DefaultModel,
				MaxTokens:   2048,
				Temperature: ptr(0.8),
			},
			Flight:        AgentEntry{Temperature: ptr(1.0)},
			Hotel:         AgentEntry{Temperature: ptr(1.0)},
			MaxAttempts:   DefaultMaxAttempts,
			MaxToolRounds: DefaultToolRounds,
		},
		Team:  TeamConfig{MaxHops: DefaultMaxHops},
		Tools: ToolsConfig{TimeoutSeconds: DefaultToolTimeout},
		Amadeus: AmadeusConfig{
			BaseURL:      DefaultAmadeusURL,
			ClientID:     "${AMADEUS_CLIENT_ID}",
			ClientSecret: "${AMADEUS_CLIENT_SECRET}",
		},
		Search: SearchConfig{
			BaseURL: DefaultSearchURL,
			APIKey:  "${BRAVE_API_KEY}",
			Count:   5,
		},
		Geo: GeoConfig{URL: DefaultGeoURL},
		Session: SessionConfig{
			Store:        "memory",
			TTLMinutes:   DefaultTTLMinutes,
			SweepSeconds: DefaultSweepSeconds,
		},
		Logging: LoggingConfig{
			Level:        "info",
			ConsoleStyle: "pretty",
		},
		Telemetry: TelemetryConfig{Metrics: true},
	}
}

// ResolvedAgent is the effective settings for one agent.
type ResolvedAgent struct {
	Model       string
	Fallbacks   []string
	MaxTokens   int
	Temperature *float64
}

// Agent merges the defaults with the entry for the named agent
// ("flight", "hotel", "destination" or "supervisor").
func (c *Config) Agent(name string) ResolvedAgent {
	d := c.Agents.Defaults
	r := ResolvedAgent{
		Model:       d.Model,
		Fallbacks:   d.Fallbacks,
		MaxTokens:   d.MaxTokens,
		Temperature: d.Temperature,
	}
	var e AgentEntry
	switch name {
	case "flight":
		e = c.Agents.Flight
	case "hotel":
		e = c.Agents.Hotel
	case "destination":
		e = c.Agents.Destination
	case "supervisor":
		e = c.Agents.Supervisor
	}
	if e.Model != "" {
		r.Model = e.Model
	}
	if e.Temperature != nil {
		r.Temperature = e.Temperature
	}
	return r
}
