package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRate(t *testing.T) {
	r, err := ParseRate("20/min")
	require.NoError(t, err)
	assert.Equal(t, Rate{Limit: 20, Window: time.Minute}, r)

	r, err = ParseRate("1000/day")
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, r.Window)

	for _, bad := range []string{"", "20", "x/min", "0/min", "5/fortnight"} {
		_, err := ParseRate(bad)
		assert.Error(t, err, bad)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("ACCESS_TOKEN_MINUTES", "15")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTokenTTL)
	assert.Equal(t, 10, cfg.PageSize)
	assert.Equal(t, 3, cfg.ReportMaxRetries)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, Rate{Limit: 10, Window: time.Minute}, cfg.AIRate)
	assert.Empty(t, cfg.TrustedProxies, "no proxy is trusted by default")
	assert.Nil(t, cfg.PublicBaseURL)
}

func TestLoadRejectsMalformedIntegers(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PAGE_SIZE", "ten")
	t.Setenv("REPORT_WORKERS", "2.5")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PAGE_SIZE")
	assert.Contains(t, err.Error(), "REPORT_WORKERS")
}

func TestLoadProxiesAndBaseURL(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 192.168.1.4")
	t.Setenv("PUBLIC_BASE_URL", "https://api.clinic.example/")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.0/8", "192.168.1.4"}, cfg.TrustedProxies)
	require.NotNil(t, cfg.PublicBaseURL)
	assert.Equal(t, "api.clinic.example", cfg.PublicBaseURL.Host)

	t.Setenv("PUBLIC_BASE_URL", "/relative")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := Load()
	assert.Error(t, err)
}
