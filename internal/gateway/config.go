package gateway

import "strings"

// NotConfiguredLabel is reported as the URL when no usable endpoint is set
const NotConfiguredLabel = "No configurada"

// placeholderMarkers appear in sample URLs that were never replaced with a real deployment id
var placeholderMarkers = []string{
	"TU_SCRIPT_ID",
	"YOUR_SCRIPT_ID",
	"your-script-id",
	"PLACEHOLDER",
}

// Config is the gateway's view of process configuration. Build it once at startup.
type Config struct {
	URL         string
	Environment string
}

// NewConfig trims the URL and defaults the environment
func NewConfig(url, environment string) Config {
	if environment == "" {
		environment = "development"
	}
	return Config{
		URL:         strings.TrimSpace(url),
		Environment: environment,
	}
}

// Configured reports whether the endpoint is set and is not a placeholder
func (c Config) Configured() bool {
	if c.URL == "" {
		return false
	}
	for _, marker := range placeholderMarkers {
		if strings.Contains(c.URL, marker) {
			return false
		}
	}
	return true
}
