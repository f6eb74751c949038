package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		port:           8080,
		siteURL:        "https://links.classiccariq.com",
		avatarMaxBytes: 1 << 20,
		avatarTimeout:  800 * time.Millisecond,
		storeTimeout:   1200 * time.Millisecond,
	}
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, validConfig().validate())

	cfg := validConfig()
	cfg.port = 0
	assert.Error(t, cfg.validate())

	cfg = validConfig()
	cfg.port = 70000
	assert.Error(t, cfg.validate())

	cfg = validConfig()
	cfg.tlsCert = "/tmp/cert.pem"
	assert.Error(t, cfg.validate(), "tls cert without key")

	cfg = validConfig()
	cfg.storeURL = "https://db.test"
	assert.Error(t, cfg.validate(), "store url without key")

	cfg = validConfig()
	cfg.avatarMaxBytes = 0
	assert.Error(t, cfg.validate())
}

func TestConfigScheme(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, "http", cfg.scheme())

	cfg.tlsCert = "/tmp/cert.pem"
	cfg.tlsKey = "/tmp/key.pem"
	assert.Equal(t, "https", cfg.scheme())
}

func TestConfigCacheVersion(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, releaseVersion, cfg.cacheVersion())

	cfg.deployID = "4c32daa"
	assert.Equal(t, "4c32daa", cfg.cacheVersion())
}
