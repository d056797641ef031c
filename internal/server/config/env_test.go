package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseEnv_Overrides(t *testing.T) {
	t.Setenv("ENDPOINT_ADDR", ":9999")
	t.Setenv("DATABASE_DSN", "postgres://env@localhost/papertrail")
	t.Setenv("SECRET_KEY", "env-secret")
	t.Setenv("ACCESS_TOKEN_VALIDITY_MINUTES", "120")
	t.Setenv("S3_BUCKET", "env-bucket")

	var c Config
	c.LoadDefaults()
	parseEnv(&c)

	assert.Equal(t, ":9999", c.EndpointAddr)
	assert.Equal(t, "postgres://env@localhost/papertrail", c.DatabaseDSN)
	assert.Equal(t, "env-secret", c.SecretKey)
	assert.Equal(t, 2*time.Hour, c.AccessTokenValidityDuration)
	assert.Equal(t, "env-bucket", c.S3Bucket)
}

func TestParseEnv_EmptyKeepsDefaults(t *testing.T) {
	t.Setenv("ENDPOINT_ADDR", "")
	t.Setenv("SECRET_KEY", "")

	var c Config
	c.LoadDefaults()
	parseEnv(&c)

	assert.Equal(t, ":8080", c.EndpointAddr)
	assert.Equal(t, "secretKey", c.SecretKey)
}

func TestParseEnv_InvalidDurationPanics(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_VALIDITY_MINUTES", "not-a-number")

	var c Config
	c.LoadDefaults()

	assert.Panics(t, func() { parseEnv(&c) })
}
