package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cppla/blogicum/models"
)

const sampleConfig = `{
  "app": {"AppPort": "9000", "JWTSecret": "file-secret", "AllowedOrigins": ["https://blog.example"]},
  "gin": {"Mode": "debug", "LogPath": "logs/gin.log"},
  "database": {"DBHost": "db", "DBUser": "blog", "DBName": "blogicum_test"},
  "redis": {"RedisHost": "cache", "RedisPort": 6380},
  "log": {"Level": "debug", "MaxBackups": 3},
  "pages": {"AboutTitle": "About us", "RulesHTML": "<p>be kind</p>"}
}`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadJSONConfig(t *testing.T) {
	var c AppConfig
	require.NoError(t, loadJSONConfig(writeConfig(t, sampleConfig), &c))

	assert.Equal(t, "9000", c.AppPort)
	assert.Equal(t, "file-secret", c.JWTSecret)
	assert.Equal(t, []string{"https://blog.example"}, c.AllowedOrigins)
	assert.Equal(t, "debug", c.GinMode)
	assert.Equal(t, "logs/gin.log", c.GinPath)
	assert.Equal(t, "db", c.DBHost)
	assert.Equal(t, "cache", c.RedisHost)
	assert.Equal(t, 6380, c.RedisPort)
	assert.Equal(t, 3, c.LogMaxBackups)
	assert.Equal(t, "About us", c.AboutTitle)
	assert.Equal(t, "<p>be kind</p>", c.RulesHTML)
}

func TestLoadJSONConfigMissingAndInvalid(t *testing.T) {
	var c AppConfig
	assert.NoError(t, loadJSONConfig(filepath.Join(t.TempDir(), "absent.json"), &c))
	assert.Error(t, loadJSONConfig(writeConfig(t, "{not json"), &c))
}

func TestApplyDefaults(t *testing.T) {
	var c AppConfig
	applyDefaults(&c)

	assert.Equal(t, "8080", c.AppPort)
	assert.Equal(t, 72, c.TokenTTLHours)
	assert.Equal(t, 60, c.RateLimitPerMinute)
	assert.Equal(t, []string{"*"}, c.AllowedOrigins)
	assert.Equal(t, "3306", c.DBPort)
	assert.Equal(t, "release", c.GinMode)
	assert.Equal(t, 6379, c.RedisPort)
	assert.Equal(t, "info", c.LogLevel)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "7000")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("TOKEN_TTL_HOURS", "5")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "oops")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("ADMIN_USERNAMES", "root")
	t.Setenv("LOG_LEVEL", "WARN")
	t.Setenv("LOG_COMPRESS", "true")

	c := AppConfig{RateLimitPerMinute: 30}
	applyEnvOverrides(&c)

	assert.Equal(t, "7000", c.AppPort)
	assert.Equal(t, "env-secret", c.JWTSecret)
	assert.Equal(t, 5, c.TokenTTLHours)
	assert.Equal(t, 30, c.RateLimitPerMinute)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.AllowedOrigins)
	assert.Equal(t, []string{"root"}, c.AdminUsernames)
	assert.Equal(t, "warn", c.LogLevel)
	assert.True(t, c.LogCompress)
}

func TestOverrideAppliesDefaults(t *testing.T) {
	Override(AppConfig{JWTSecret: "s", AppPort: "1234"})
	got := Get()
	assert.Equal(t, "1234", got.AppPort)
	assert.Equal(t, 72, got.TokenTTLHours)
}

func TestToGormLogLevel(t *testing.T) {
	assert.Equal(t, logger.Info, toGormLogLevel("debug"))
	assert.Equal(t, logger.Warn, toGormLogLevel("info"))
	assert.Equal(t, logger.Error, toGormLogLevel("error"))
	assert.Equal(t, logger.Silent, toGormLogLevel("silent"))
	assert.Equal(t, logger.Warn, toGormLogLevel("verbose"))
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	Override(AppConfig{JWTSecret: "s", LogLevel: "silent"})
	conn, err := Open(sqlite.Open(":memory:"), models.All()...)
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return conn
}

func TestOpenCreatesNoForeignKeys(t *testing.T) {
	conn := openTestDB(t)
	m := conn.Migrator()
	assert.True(t, m.HasTable(&models.Post{}))
	assert.False(t, m.HasConstraint(&models.Post{}, "Comments"))
	assert.False(t, m.HasConstraint(&models.Post{}, "Author"))
	assert.False(t, m.HasConstraint(&models.Comment{}, "Author"))
	assert.False(t, m.HasColumn(&models.Post{}, "comment_count"))
}

func TestOpenTranslatesDuplicateKeys(t *testing.T) {
	conn := openTestDB(t)
	require.NoError(t, conn.Create(&models.User{Username: "alice"}).Error)
	err := conn.Create(&models.User{Username: "alice"}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}
