package config

import "os"

type Config struct {
	Port        string
	DatabaseURL string
	RedisURL    string
	LogLevel    string
	Environment string
	CORSOrigins string

	// Static API key that counterd clients must present (apikey header or
	// bearer token). Empty disables the check (development default).
	APIKey string

	// Remote counter store used by the extension backend. An empty URL means
	// the local fallback store is the only backend.
	SupabaseURL string
	SupabaseKey string

	// Directory holding the durable local-storage state file.
	DataDir string
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", ""),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Environment: getEnv("ENVIRONMENT", "development"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
		APIKey:      getEnv("API_KEY", ""),
		SupabaseURL: getEnv("SUPABASE_URL", ""),
		SupabaseKey: getEnv("SUPABASE_KEY", ""),
		DataDir:     getEnv("DATA_DIR", "."),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
