package config

// Model selects the upstream completion model and its sampling knobs.
type Model struct {
	Name        string  `mapstructure:"name" json:"name" validate:"required" jsonschema:"description=Model identifier sent to the upstream API"`
	MaxTokens   int     `mapstructure:"maxTokens" json:"maxTokens" validate:"gt=0" jsonschema:"description=Maximum tokens to generate"`
	Temperature float64 `mapstructure:"temperature" json:"temperature" validate:"gte=0,lte=2" jsonschema:"description=Sampling temperature"`
}

// Upstream describes the hosted completion API the client and relay talk to.
type Upstream struct {
	BaseURL string `mapstructure:"baseUrl" json:"baseUrl" validate:"required,url" jsonschema:"description=Base URL of the completion API"`
	APIKey  string `mapstructure:"apiKey" json:"apiKey,omitempty" jsonschema:"description=API key; prefer the ANTHROPIC_API_KEY environment variable"`
	Version string `mapstructure:"version" json:"version" validate:"required" jsonschema:"description=Value for the anthropic-version header"`
}

// Server configures the relay.
type Server struct {
	Address         string `mapstructure:"address" json:"address" validate:"required" jsonschema:"description=Listen address for the relay server"`
	ShutdownSeconds int    `mapstructure:"shutdownSeconds" json:"shutdownSeconds" validate:"gte=0" jsonschema:"description=Graceful shutdown window in seconds"`
}

type Log struct {
	Level string `mapstructure:"level" json:"level" validate:"omitempty,oneof=DEBUG INFO WARN ERROR"`
	File  string `mapstructure:"file" json:"file,omitempty"`
}

// ConfigSchema is the fully merged configuration.
type ConfigSchema struct {
	Model        Model    `mapstructure:"model" json:"model"`
	Upstream     Upstream `mapstructure:"upstream" json:"upstream"`
	Server       Server   `mapstructure:"server" json:"server"`
	Log          Log      `mapstructure:"log" json:"log"`
	SystemPrompt string   `mapstructure:"systemPrompt" json:"systemPrompt,omitempty" jsonschema:"description=System message prepended to every conversation"`
}
