// internal/workers/data-access/fetch-client-data/config.go
package fetchclientdata

import "time"

type Config struct {
	CacheTTL time.Duration
	Timeout  time.Duration
}

func LoadConfig() *Config {
	return &Config{
		CacheTTL: 15 * time.Minute,
		Timeout:  30 * time.Second,
	}
}
