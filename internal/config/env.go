package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/viper"
)

// Env holds the settings read from the process environment at startup.
type Env struct {
	CatalogAPIKey  string `env:"WL_CATALOG_API_KEY"`
	CatalogBaseURL string `env:"WL_CATALOG_BASE_URL"`
	Credentials    string `env:"WL_CREDENTIAL_STORE"`
	StorageBackend string `env:"WL_STORAGE_BACKEND"`
	StorageDir     string `env:"WL_STORAGE_DIR"`
	StorageArea    string `env:"WL_STORAGE_AREA"`
	RedisAddr      string `env:"WL_REDIS_ADDR"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (e Env) apply(cfg *viper.Viper) {
	overrides := map[string]string{
		CatalogBaseURLKey:    e.CatalogBaseURL,
		CatalogCredentialKey: e.Credentials,
		StorageBackendKey:    e.StorageBackend,
		StorageDirKey:        e.StorageDir,
		StorageAreaKey:       e.StorageArea,
		StorageRedisAddrKey:  e.RedisAddr,
	}
	for key, value := range overrides {
		if value != "" {
			cfg.Set(key, value)
		}
	}
}
