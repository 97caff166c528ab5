package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/customeros/docingest/config"
)

type recordingPool struct {
	idle     int
	open     int
	lifetime time.Duration
}

func (p *recordingPool) SetMaxIdleConns(n int)              { p.idle = n }
func (p *recordingPool) SetMaxOpenConns(n int)              { p.open = n }
func (p *recordingPool) SetConnMaxLifetime(d time.Duration) { p.lifetime = d }

func validConfig() *config.DatabaseConfig {
	return &config.DatabaseConfig{
		Host:     "localhost",
		Port:     "5432",
		User:     "docingest",
		DBName:   "docingest",
		Password: "secret",
		SSLMode:  "disable",
	}
}

func TestValidateConfig(t *testing.T) {
	require.NoError(t, validateConfig(validConfig()))
	assert.Error(t, validateConfig(nil))

	cfg := validConfig()
	cfg.Host = ""
	assert.EqualError(t, validateConfig(cfg), "database host config is empty")

	cfg = validConfig()
	cfg.SSLMode = ""
	assert.EqualError(t, validateConfig(cfg), "database SSLMode config is empty")
}

func TestNewConnection_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.Port = "not-a-port"

	_, err := NewConnection(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid port number")
}

func TestConfigurePool(t *testing.T) {
	cfg := validConfig()
	cfg.MaxConn = 20
	cfg.MaxIdleConn = 5
	cfg.ConnMaxLifetime = 30

	p := &recordingPool{}
	ConfigurePool(p, cfg)

	assert.Equal(t, 5, p.idle)
	assert.Equal(t, 20, p.open)
	assert.Equal(t, 30*time.Minute, p.lifetime)
}

func TestLogLevel(t *testing.T) {
	assert.Equal(t, logger.Info, logLevel("info"))
	assert.Equal(t, logger.Silent, logLevel("SILENT"))
	assert.Equal(t, logger.Warn, logLevel("unknown"))
}
