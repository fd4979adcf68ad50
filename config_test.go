package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigValidate(t *testing.T) {
	base := Config{port: 8080, winningScore: 50}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"tls pair", func(c *Config) { c.tlsCert = "cert.pem"; c.tlsKey = "key.pem" }, false},
		{"cert without key", func(c *Config) { c.tlsCert = "cert.pem" }, true},
		{"key without cert", func(c *Config) { c.tlsKey = "key.pem" }, true},
		{"port too low", func(c *Config) { c.port = 0 }, true},
		{"port too high", func(c *Config) { c.port = 65536 }, true},
		{"zero winning score", func(c *Config) { c.winningScore = 0 }, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base
			tc.mutate(&cfg)

			err := cfg.validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfigScheme(t *testing.T) {
	cfg := Config{}
	assert.Equal(t, "http", cfg.scheme())

	cfg.tlsCert = "cert.pem"
	cfg.tlsKey = "key.pem"
	assert.Equal(t, "https", cfg.scheme())
}
