// internal/config/config_test.go
package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAutoVoidWindowPrecedence(t *testing.T) {
	// Seconds win over minutes, minutes over days.
	cfg := AutoVoidConfig{WindowSeconds: 30, WindowMinutes: 10, WindowDays: 2}
	assert.Equal(t, 30*time.Second, cfg.Window())

	cfg = AutoVoidConfig{WindowMinutes: 10, WindowDays: 2}
	assert.Equal(t, 10*time.Minute, cfg.Window())

	cfg = AutoVoidConfig{WindowDays: 2}
	assert.Equal(t, 48*time.Hour, cfg.Window())
}

func TestValidateRejectsZeroWindow(t *testing.T) {
	cfg := &Config{
		Environment: "development",
		AutoVoid:    AutoVoidConfig{},
	}
	assert.Error(t, cfg.Validate())

	cfg.AutoVoid.WindowDays = 1
	assert.NoError(t, cfg.Validate())
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	assert.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "uniform_store", cfg.Database.Database)
	assert.Equal(t, 48*time.Hour, cfg.AutoVoid.Window())
}
