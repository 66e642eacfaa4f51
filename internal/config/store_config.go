package config

import "time"

type StoreConfig interface {
	GetPostgresDSN() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetCatalogCacheTTL() time.Duration
}

type Stores struct{}

var _ StoreConfig = Stores{}

// GetPostgresDSN enables the PostgreSQL catalog when set.
func (Stores) GetPostgresDSN() string {
	return GetEnv("POSTGRES_DSN", "")
}

// GetRedisAddr enables the catalog cache when set.
func (Stores) GetRedisAddr() string {
	return GetEnv("REDIS_ADDR", "")
}

func (Stores) GetRedisPassword() string {
	return GetEnv("REDIS_PASSWORD", "")
}

func (Stores) GetCatalogCacheTTL() time.Duration {
	d, err := time.ParseDuration(GetEnv("CATALOG_CACHE_TTL", "5m"))
	if err != nil || d <= 0 {
		return 5 * time.Minute
	}
	return d
}
