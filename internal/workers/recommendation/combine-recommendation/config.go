// internal/workers/recommendation/combine-recommendation/config.go
package combinerecommendation

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
