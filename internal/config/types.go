package config

// Config is the root configuration for wayfarer.
type Config struct {
	Server    ServerConfig    `yaml:"server,omitempty"`
	Models    ModelsConfig    `yaml:"models,omitempty"`
	Agents    AgentsConfig    `yaml:"agents,omitempty"`
	Team      TeamConfig      `yaml:"team,omitempty"`
	Tools     ToolsConfig     `yaml:"tools,omitempty"`
	Amadeus   AmadeusConfig   `yaml:"amadeus,omitempty"`
	Search    SearchConfig    `yaml:"search,omitempty"`
	Geo       GeoConfig       `yaml:"geo,omitempty"`
	Session   SessionConfig   `yaml:"session,omitempty"`
	Logging   LoggingConfig   `yaml:"logging,omitempty"`
	Telemetry TelemetryConfig `yaml:"telemetry,omitempty"`
}

// ServerConfig controls the HTTP API server.
type ServerConfig struct {
	Port                  int       `yaml:"port,omitempty"`
	Bind                  string    `yaml:"bind,omitempty"` // "loopback" | "lan" | "custom"
	CustomBindHost        string    `yaml:"customBindHost,omitempty"`
	AllowedOrigins        []string  `yaml:"allowedOrigins,omitempty"`
	RequestTimeoutSeconds int       `yaml:"requestTimeoutSeconds,omitempty"`
	TLS                   TLSConfig `yaml:"tls,omitempty"`
}

// TLSConfig configures TLS for the server.
type TLSConfig struct {
	Enabled  bool   `yaml:"enabled,omitempty"`
	CertPath string `yaml:"certPath,omitempty"`
	KeyPath  string `yaml:"keyPath,omitempty"`
}

// ModelsConfig defines LLM providers and the models they serve.
type ModelsConfig struct {
	Default   string                        `yaml:"default,omitempty"` // provider used when a model is not listed anywhere
	Providers map[string]ModelProviderEntry `yaml:"providers,omitempty"`
}

// ModelProviderEntry is one OpenAI-compatible endpoint.
type ModelProviderEntry struct {
	BaseURL        string   `yaml:"baseUrl"`
	APIKey         string   `yaml:"apiKey,omitempty"`
	TimeoutSeconds int      `yaml:"timeoutSeconds,omitempty"`
	Models         []string `yaml:"models,omitempty"`
}

// AgentsConfig holds shared agent settings and per-specialist overrides.
type AgentsConfig struct {
	Defaults      AgentDefaults `yaml:"defaults,omitempty"`
	Flight        AgentEntry    `yaml:"flight,omitempty"`
	Hotel         AgentEntry    `yaml:"hotel,omitempty"`
	Destination   AgentEntry    `yaml:"destination,omitempty"`
	Supervisor    AgentEntry    `yaml:"supervisor,omitempty"`
	MaxAttempts   int           `yaml:"maxAttempts,omitempty"`
	MaxToolRounds int           `yaml:"maxToolRounds,omitempty"`
}

// AgentDefaults apply to every agent unless overridden.
type AgentDefaults struct {
	Model       string   `yaml:"model,omitempty"`
	Fallbacks   []string `yaml:"fallbacks,omitempty"`
	MaxTokens   int      `yaml:"maxTokens,omitempty"`
	Temperature *float64 `yaml:"temperature,omitempty"`
}

// AgentEntry overrides defaults for one agent.
type AgentEntry struct {
	Model       string   `yaml:"model,omitempty"`
	Temperature *float64 `yaml:"temperature,omitempty"`
}

// TeamConfig controls the supervisor loop.
type TeamConfig struct {
	MaxHops int `yaml:"maxHops,omitempty"`
}

// ToolsConfig controls tool invocation.
type ToolsConfig struct {
	TimeoutSeconds int `yaml:"timeoutSeconds,omitempty"`
}

// AmadeusConfig holds travel-data provider credentials.
type AmadeusConfig struct {
	BaseURL      string `yaml:"baseUrl,omitempty"`
	ClientID     string `yaml:"clientId,omitempty"`
	ClientSecret string `yaml:"clientSecret,omitempty"`
}

// SearchConfig configures the web-search fallback.
type SearchConfig struct {
	BaseURL string `yaml:"baseUrl,omitempty"`
	APIKey  string `yaml:"apiKey,omitempty"`
	Count   int    `yaml:"count,omitempty"`
	Country string `yaml:"country,omitempty"`
}

// GeoConfig configures IP geolocation.
type GeoConfig struct {
	URL string `yaml:"url,omitempty"`
}

// SessionConfig defines thread storage and lifetime.
type SessionConfig struct {
	Store        string `yaml:"store,omitempty"` // "memory" | "sqlite"
	TTLMinutes   int    `yaml:"ttlMinutes,omitempty"`
	SweepSeconds int    `yaml:"sweepSeconds,omitempty"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level        string `yaml:"level,omitempty"`        // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
	ConsoleStyle string `yaml:"consoleStyle,omitempty"` // "pretty" | "json"
}

// TelemetryConfig toggles metrics export.
type TelemetryConfig struct {
	Metrics bool `yaml:"metrics,omitempty"`
}
