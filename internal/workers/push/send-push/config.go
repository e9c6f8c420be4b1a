// internal/workers/push/send-push/config.go
package sendpush

import "time"

type Config struct {
	SMSEnabled   bool
	EmailEnabled bool
	FromEmail    string
	AWSRegion    string
	Timeout      time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
	}
}
