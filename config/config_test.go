package config

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "ALLOWED_ORIGINS", "STORE_DRIVER", "RATE_LIMIT_MAX", "RATE_LIMIT_WINDOW", "CACHE_TTL", "JWT_SECRET", "API_BASE_URL"} {
		t.Setenv(key, "")
	}

	cfg := NewConfig()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.Equal(t, "supabase", cfg.StoreDriver)
	assert.Equal(t, 100, cfg.RateLimitMax)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, "http://localhost:8080", cfg.APIBaseURL)
	assert.False(t, cfg.AuthEnabled())
}

func TestNewConfig_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ALLOWED_ORIGINS", "https://admin.example.com, https://ops.example.com")
	t.Setenv("STORE_DRIVER", "SQL")
	t.Setenv("RATE_LIMIT_MAX", "5")
	t.Setenv("RATE_LIMIT_WINDOW", "10s")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("ENVIRONMENT", "production")

	cfg := NewConfig()
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, []string{"https://admin.example.com", "https://ops.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, "sql", cfg.StoreDriver)
	assert.Equal(t, 5, cfg.RateLimitMax)
	assert.Equal(t, 10*time.Second, cfg.RateLimitWindow)
	assert.True(t, cfg.AuthEnabled())
	assert.True(t, cfg.IsProduction())
}

func TestNewConfig_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("RATE_LIMIT_MAX", "lots")
	t.Setenv("RATE_LIMIT_WINDOW", "-1s")

	cfg := NewConfig()
	assert.Equal(t, 100, cfg.RateLimitMax)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
}

func TestCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &Config{AllowedOrigins: []string{"https://admin.example.com"}}
	r := gin.New()
	r.Use(CORSMiddleware(cfg))
	r.GET("/api/clients", func(c *gin.Context) { c.Status(http.StatusOK) })

	t.Run("allowed origin", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/clients", nil)
		req.Header.Set("Origin", "https://admin.example.com")
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "https://admin.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("vercel preview", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/clients", nil)
		req.Header.Set("Origin", "https://coverage-git-main.vercel.app")
		r.ServeHTTP(w, req)
		assert.Equal(t, "https://coverage-git-main.vercel.app", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("unknown origin", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/clients", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		r.ServeHTTP(w, req)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodOptions, "/api/clients", nil)
		req.Header.Set("Origin", "https://admin.example.com")
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PUT")
	})
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("debug", "console", "coverage-admin")
	require.NoError(t, err)
	assert.NotNil(t, logger)
}
