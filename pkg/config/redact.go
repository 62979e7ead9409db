package config

// RedactedMask replaces secret-bearing values before the config is embedded
// into run metadata.
const RedactedMask = "***REDACTED***"

// Redacted returns a copy of the config safe for persisting in metadata
// files. API keys and connection URLs are masked; everything else is kept so
// a run remains reproducible from its audit record.
func (c *Config) Redacted() Config {
	out := *c

	if out.Model.APIKey != "" {
		out.Model.APIKey = RedactedMask
	}
	if out.Model.BaseURL != "" {
		out.Model.BaseURL = RedactedMask
	}
	if out.Database.URL != "" {
		out.Database.URL = RedactedMask
	}

	return out
}
