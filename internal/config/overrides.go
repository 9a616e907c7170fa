package config

// RuntimeOverrides holds configuration values that can be overridden at
// runtime via CLI flags
type RuntimeOverrides struct {
	Model       *string
	MaxTokens   *int
	Temperature *float64
	LogLevel    *string
	LogFile     *string
}

func applyOverrides(cfg *ConfigSchema, overrides *RuntimeOverrides) {
	if overrides == nil {
		return
	}
	if overrides.Model != nil {
		cfg.Model.Name = *overrides.Model
	}
	if overrides.MaxTokens != nil {
		cfg.Model.MaxTokens = *overrides.MaxTokens
	}
	if overrides.Temperature != nil {
		cfg.Model.Temperature = *overrides.Temperature
	}
	if overrides.LogLevel != nil {
		cfg.Log.Level = *overrides.LogLevel
	}
	if overrides.LogFile != nil {
		cfg.Log.File = *overrides.LogFile
	}
}
