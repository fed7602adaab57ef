package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SETTINGS_DIR", "/etc/repairdesk")
	t.Setenv("SETTINGS_FILE", "")
	t.Setenv("DATABASE_AUTO_MIGRATE", "yes")
	t.Setenv("DATABASE_MAX_OPEN_CONN", "not-a-number")

	cfg := Load()

	assert.Equal(t, "/etc/repairdesk/print-settings.json", cfg.SettingsPath())
	assert.True(t, cfg.AutoMigrate)
	assert.Equal(t, 25, cfg.DBMaxOpenConn)
	assert.False(t, cfg.IsProduction())
}

func TestPublicBaseURLTrimsSlash(t *testing.T) {
	t.Setenv("PUBLIC_BASE_URL", "https://shop.example.com/ ")

	cfg := Load()

	assert.Equal(t, "https://shop.example.com", cfg.PublicBaseURL)
}
