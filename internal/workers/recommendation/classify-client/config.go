// internal/workers/recommendation/classify-client/config.go
package classifyclient

import "time"

type Config struct {
	BaseURL string
	Timeout time.Duration
	Retries int
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 5 * time.Second,
		Retries: 2,
	}
}
