// internal/workers/push/validate-push/config.go
package validatepush

import "time"

type Config struct {
	AutocorrectOnce bool
	Timeout         time.Duration
}

func LoadConfig() *Config {
	return &Config{
		AutocorrectOnce: true,
		Timeout:         10 * time.Second,
	}
}
