package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, int64(20<<20), cfg.Server.MaxUploadSize)
	assert.Equal(t, 12*time.Hour, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, 90, cfg.Outreach.LunchFollowupDays)
	assert.Equal(t, 60, cfg.Outreach.CookieVisitDays)
	assert.Equal(t, 30, cfg.Outreach.FlyerSendDays)
	assert.Equal(t, 3, cfg.Outreach.FailedCallThreshold)
	assert.Contains(t, cfg.Outreach.HuntsvilleZips, "77340")
	assert.Contains(t, cfg.Outreach.WoodlandsZips, "77380")
	assert.Equal(t, "Full List", cfg.Import.SheetName)
	assert.Equal(t, 10*time.Minute, cfg.Import.LockTTL)
	assert.False(t, cfg.Backup.Enabled())
	assert.False(t, cfg.Outbox.Enabled())
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfigFile(t, `
server:
  port: 9090
auth:
  jwt_secret: "0123456789abcdef-secret"
outreach:
  lunch_followup_days: 45
backup:
  bucket: outreach-backups
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 45, cfg.Outreach.LunchFollowupDays)
	// 未出现在文件中的键保留默认值
	assert.Equal(t, 60, cfg.Outreach.CookieVisitDays)
	assert.True(t, cfg.Backup.Enabled())
	assert.Equal(t, "us-east-1", cfg.Backup.Region)
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfigFile(t, `
auth:
  jwt_secret: "0123456789abcdef-secret"
`)
	t.Setenv("OUTREACH_SERVER_PORT", "7070")
	t.Setenv("OUTREACH_OUTBOX_QUEUE_NAME", "fax-outbox")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.True(t, cfg.Outbox.Enabled())
}

func TestLoad_MissingSecret(t *testing.T) {
	path := writeConfigFile(t, "server:\n  port: 8080\n")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.Auth.JWTSecret = "0123456789abcdef"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"默认值加密钥合法", func(c *Config) {}, false},
		{"密钥过短", func(c *Config) { c.Auth.JWTSecret = "short" }, true},
		{"端口越界", func(c *Config) { c.Server.Port = 70000 }, true},
		{"午餐跟进天数为零", func(c *Config) { c.Outreach.LunchFollowupDays = 0 }, true},
		{"宽限期为负", func(c *Config) { c.Outreach.ThankYouGraceDays = -1 }, true},
		{"宽限期为零允许", func(c *Config) { c.Outreach.ThankYouGraceDays = 0 }, false},
		{"传真域名为空", func(c *Config) { c.Outreach.FaxEmailDomain = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := Default().Database
	dsn := cfg.DSN()
	assert.Contains(t, dsn, "host=localhost")
	assert.Contains(t, dsn, "dbname=referral_outreach")
	assert.Contains(t, dsn, "TimeZone=America/Chicago")
}
