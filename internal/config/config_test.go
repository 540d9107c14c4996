package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoadRejectsShortSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "too-short")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least")
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "4000", cfg.Server.Port)
	assert.Equal(t, "dev", cfg.Server.Env)
	assert.True(t, cfg.Server.IsDevelopment())
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenDuration)
	assert.Equal(t, []byte(testSecret), cfg.Auth.JWTSecret)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("APP_ENV", "prod")
	t.Setenv("TOKEN_DURATION", "3600")
	t.Setenv("TRUSTED_ORIGINS", "https://school.example.com, https://admin.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.False(t, cfg.Server.IsDevelopment())
	assert.Equal(t, time.Hour, cfg.Auth.TokenDuration)
	assert.Equal(t,
		[]string{"https://school.example.com", "https://admin.example.com"},
		cfg.Server.TrustedOrigins)
}

func TestConnectionString(t *testing.T) {
	db := DatabaseConfig{
		Host: "localhost", Port: "5432",
		User: "postgres", Password: "postgres",
		DBName: "school", SSLMode: "disable",
	}
	assert.Equal(t,
		"host=localhost port=5432 user=postgres password=postgres dbname=school sslmode=disable",
		db.ConnectionString())

	db.ChannelBinding = "require"
	assert.Contains(t, db.ConnectionString(), "channel_binding=require")
}
