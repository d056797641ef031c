package config

import (
	"os"
	"strconv"
	"time"
)

// parseEnv overlays values from environment variables. main loads a .env
// file via godotenv before this runs, so container deployments can configure
// the server without flags.
func parseEnv(config *Config) {
	if v := os.Getenv("ENDPOINT_ADDR"); v != "" {
		config.EndpointAddr = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		config.DatabaseDSN = v
	}
	if v := os.Getenv("SECRET_KEY"); v != "" {
		config.SecretKey = v
	}
	if v := os.Getenv("ACCESS_TOKEN_VALIDITY_MINUTES"); v != "" {
		minutes, err := strconv.Atoi(v)
		if err != nil {
			panic(err)
		}
		config.AccessTokenValidityDuration = time.Duration(minutes) * time.Minute
	}
	if v := os.Getenv("S3_ROOT_USER"); v != "" {
		config.S3RootUser = v
	}
	if v := os.Getenv("S3_ROOT_PASSWORD"); v != "" {
		config.S3RootPassword = v
	}
	if v := os.Getenv("S3_BUCKET"); v != "" {
		config.S3Bucket = v
	}
	if v := os.Getenv("S3_REGION"); v != "" {
		config.S3Region = v
	}
	if v := os.Getenv("S3_BASE_ENDPOINT"); v != "" {
		config.S3BaseEndpoint = v
	}
}
