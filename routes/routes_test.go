package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sittawut/coverage-admin/config"
	"github.com/sittawut/coverage-admin/middleware"
	"github.com/sittawut/coverage-admin/models"
	"github.com/sittawut/coverage-admin/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newStore(t *testing.T) repository.Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:routes_"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(repository.Models()...))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return repository.NewSQLStore(db, zap.NewNop())
}

func request(r http.Handler, method, target, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_OpenAPIFlow(t *testing.T) {
	cfg := &config.Config{AllowedOrigins: []string{"http://localhost:3000"}}
	r := NewRouter(newStore(t), middleware.NewMemoryLimiter(100, time.Minute), cfg, zap.NewNop())

	w := request(r, http.MethodPost, "/api/clients", "", map[string]any{"companyname": "Acme"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, w.Header().Get(middleware.HeaderRequestID))
	var client models.Client
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &client))

	w = request(r, http.MethodPost, "/api/bookings", "", map[string]any{
		"clientid":      client.ClientID,
		"booking_notes": "Holiday cover",
		"bookingDays": []map[string]any{
			{"coverage_day": "2025-12-24", "start_time": "09:00", "end_time": "17:00"},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var booking models.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &booking))

	w = request(r, http.MethodPut, fmt.Sprintf("/api/bookings?id=%d", booking.BookingID), "", map[string]any{
		"bookingDays": []map[string]any{{"coverage_day": "2025-12-31"}, {"coverage_day": "2026-01-01"}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = request(r, http.MethodGet, fmt.Sprintf("/api/bookings?id=%d", booking.BookingID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got models.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got.BookingDays, 2)
	assert.Equal(t, "2025-12-31", *got.BookingDays[0].CoverageDay)
	assert.NotNil(t, got.EditedAt)
	assert.Nil(t, got.CreatedBy)

	w = request(r, http.MethodGet, "/api/clients", "", nil)
	var clients []models.Client
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &clients))
	require.Len(t, clients, 1)
	assert.True(t, clients[0].HasBooking)

	w = request(r, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("X-Frame-Options"))
}

func TestRouter_AuthenticatedWritesAreStamped(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)
	cfg := &config.Config{JWTSecret: "secret", AdminEmail: "ops@example.com", AdminPasswordHash: string(hash)}
	r := NewRouter(newStore(t), middleware.NewMemoryLimiter(100, time.Minute), cfg, zap.NewNop())

	w := request(r, http.MethodGet, "/api/bookings", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = request(r, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ops@example.com", "password": "hunter2"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var login models.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))

	w = request(r, http.MethodGet, "/api/auth/me", login.Token, nil)
	assert.JSONEq(t, `{"email":"ops@example.com","role":"admin"}`, w.Body.String())

	w = request(r, http.MethodPost, "/api/bookings", login.Token, map[string]any{
		"clientid":      1,
		"booking_notes": "n",
		"bookingDays":   []map[string]any{{"coverage_day": "2025-12-24"}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var booking models.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &booking))
	require.NotNil(t, booking.CreatedBy)
	assert.Equal(t, "ops@example.com", *booking.CreatedBy)

	w = request(r, http.MethodPut, fmt.Sprintf("/api/bookings?id=%d", booking.BookingID), login.Token, map[string]any{"booking_notes": "edited"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated models.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	require.NotNil(t, updated.EditedBy)
	assert.Equal(t, "ops@example.com", *updated.EditedBy)
}

func TestRouter_WritesRequireAdminRole(t *testing.T) {
	cfg := &config.Config{JWTSecret: "secret"}
	r := NewRouter(newStore(t), middleware.NewMemoryLimiter(100, time.Minute), cfg, zap.NewNop())

	sign := func(role string) string {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, middleware.Claims{
			Email: "viewer@example.com",
			Role:  role,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})
		signed, err := token.SignedString([]byte(cfg.JWTSecret))
		require.NoError(t, err)
		return signed
	}
	viewer := sign("viewer")

	assert.Equal(t, http.StatusOK, request(r, http.MethodGet, "/api/clients", viewer, nil).Code)
	assert.Equal(t, http.StatusOK, request(r, http.MethodGet, "/api/booking-statuses", viewer, nil).Code)

	for _, tc := range []struct{ method, target string }{
		{http.MethodPost, "/api/clients"},
		{http.MethodPut, "/api/clients?id=1"},
		{http.MethodPost, "/api/bookings"},
		{http.MethodPut, "/api/bookings?id=1"},
		{http.MethodPost, "/api/exceptions"},
		{http.MethodPut, "/api/exceptions?id=1"},
	} {
		w := request(r, tc.method, tc.target, viewer, map[string]any{"companyname": "Acme"})
		assert.Equal(t, http.StatusForbidden, w.Code, "%s %s", tc.method, tc.target)
		assert.JSONEq(t, `{"error":"Insufficient permissions"}`, w.Body.String())
	}

	w := request(r, http.MethodPost, "/api/clients", sign(middleware.RoleAdmin), map[string]any{"companyname": "Acme"})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestRouter_RateLimit(t *testing.T) {
	r := NewRouter(newStore(t), middleware.NewMemoryLimiter(2, time.Minute), &config.Config{}, zap.NewNop())

	var codes []int
	for i := 0; i < 3; i++ {
		codes = append(codes, request(r, http.MethodGet, "/api/booking-statuses", "", nil).Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// The health probe is outside the limited group.
	assert.Equal(t, http.StatusOK, request(r, http.MethodGet, "/health", "", nil).Code)
}
