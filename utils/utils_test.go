package utils

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/blogicum/config"
)

func setupConfig(t *testing.T) {
	t.Helper()
	config.Override(config.AppConfig{JWTSecret: "utils-secret"})
}

func setupRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	SetRedis(rc)
	t.Cleanup(func() {
		SetRedis(nil)
		_ = rc.Close()
	})
	return mr
}

func TestTokenRoundTrip(t *testing.T) {
	setupConfig(t)
	token, err := GenerateToken(42, "alice", time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.EqualValues(t, 42, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.NotEmpty(t, claims.ID)

	other, err := GenerateToken(42, "alice", time.Hour)
	require.NoError(t, err)
	otherClaims, err := ParseToken(other)
	require.NoError(t, err)
	assert.NotEqual(t, claims.ID, otherClaims.ID)
}

func TestParseTokenRejects(t *testing.T) {
	setupConfig(t)

	expired, err := GenerateToken(1, "alice", -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(expired)
	assert.Error(t, err)

	anonymous, err := GenerateToken(0, "", time.Hour)
	require.NoError(t, err)
	_, err = ParseToken(anonymous)
	assert.Error(t, err)

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: 1})
	signed, err := foreign.SignedString([]byte("another-secret"))
	require.NoError(t, err)
	_, err = ParseToken(signed)
	assert.Error(t, err)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: 1})
	none, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = ParseToken(none)
	assert.Error(t, err)
}

func TestValidatePassword(t *testing.T) {
	cases := []struct {
		password string
		username string
		wantErr  error
	}{
		{"short1", "bob", errPasswordTooShort},
		{"1234567890", "bob", errPasswordNumeric},
		{"my-alice-pass", "Alice", errPasswordInUsername},
		{"Str0ng-passphrase", "alice", nil},
		{"пароль-длинный", "", nil},
	}
	for _, tc := range cases {
		t.Run(tc.password, func(t *testing.T) {
			assert.Equal(t, tc.wantErr, ValidatePassword(tc.password, tc.username))
		})
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("Str0ng-passphrase")
	require.NoError(t, err)
	assert.NotEqual(t, "Str0ng-passphrase", hash)
	assert.True(t, CheckPassword(hash, "Str0ng-passphrase"))
	assert.False(t, CheckPassword(hash, "wrong"))
}

func TestBlacklistInMemoryFallback(t *testing.T) {
	setupConfig(t)
	SetRedis(nil)

	BlacklistToken("mem-1", time.Now().Add(time.Hour))
	assert.True(t, IsTokenBlacklisted("mem-1"))
	assert.False(t, IsTokenBlacklisted("mem-2"))
	assert.False(t, IsTokenBlacklisted(""))

	BlacklistToken("mem-expired", time.Now().Add(-time.Second))
	assert.False(t, IsTokenBlacklisted("mem-expired"))
}

func TestBlacklistRedis(t *testing.T) {
	setupConfig(t)
	mr := setupRedis(t)

	BlacklistToken("redis-1", time.Now().Add(time.Hour))
	assert.True(t, mr.Exists(blacklistPrefix+"redis-1"))
	assert.True(t, IsTokenBlacklisted("redis-1"))

	mr.FastForward(2 * time.Hour)
	assert.False(t, IsTokenBlacklisted("redis-1"))
}

func TestCacheJSON(t *testing.T) {
	setupConfig(t)
	mr := setupRedis(t)

	type profile struct {
		Username string `json:"username"`
	}
	var out profile
	assert.False(t, CacheGetJSON("cache:user:public:uname:alice", &out))

	CacheSetJSON("cache:user:public:uname:alice", profile{Username: "alice"}, 0)
	CacheSetJSON("cache:user:public:uname:alina", profile{Username: "alina"}, time.Minute)
	CacheSetJSON("cache:other", profile{Username: "x"}, time.Minute)
	require.True(t, CacheGetJSON("cache:user:public:uname:alice", &out))
	assert.Equal(t, "alice", out.Username)
	assert.Equal(t, defaultCacheTTL, mr.TTL("cache:user:public:uname:alice"))

	InvalidateByPrefix("cache:user:public:uname:ali")
	assert.False(t, mr.Exists("cache:user:public:uname:alice"))
	assert.False(t, mr.Exists("cache:user:public:uname:alina"))
	assert.True(t, mr.Exists("cache:other"))
}

func TestCacheDisabledWithoutRedis(t *testing.T) {
	setupConfig(t)
	SetRedis(nil)

	CacheSetJSON("k", "v", time.Minute)
	var out string
	assert.False(t, CacheGetJSON("k", &out))
	InvalidateByPrefix("k")
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, `<b>bold</b>`, Sanitize(`<b>bold</b><script>alert(1)</script>`))
	assert.Equal(t, "title", SanitizePlain("  <i>title</i> "))
}
