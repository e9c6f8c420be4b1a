// internal/workers/push/generate-push/config.go
package generatepush

import "time"

type Config struct {
	BaseURL          string
	APIKey           string
	Model            string
	TravelCategories []string
	Timeout          time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Model:   "gpt-4o-mini",
		Timeout: 60 * time.Second,
	}
}
