package server

// Config holds configuration for the HTTP bridge server.
type Config struct {
	// Port is the port where the bridge will listen.
	Port string `mapstructure:"port" default:"8766"`
	// ApiKey is the secret key required to access the bridge endpoints.
	// Empty disables authentication (local single-user setups).
	ApiKey string `mapstructure:"api_key" default:""`
}

// AuthEnabled reports whether API key authentication is configured.
func (c Config) AuthEnabled() bool {
	return c.ApiKey != ""
}
