package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sittawut/coverage-admin/config"
	"github.com/sittawut/coverage-admin/middleware"
	"github.com/sittawut/coverage-admin/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 24 * time.Hour

type AuthHandler struct {
	config *config.Config
	logger *zap.Logger
}

func NewAuthHandler(cfg *config.Config, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		config: cfg,
		logger: logger,
	}
}

// Login exchanges the admin credentials for a staff token.
func (h *AuthHandler) Login(c *gin.Context) {
	if !h.config.AuthEnabled() {
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{Error: "Authentication is not configured"})
		return
	}

	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if h.config.AdminEmail == "" ||
		!strings.EqualFold(req.Email, h.config.AdminEmail) ||
		bcrypt.CompareHashAndPassword([]byte(h.config.AdminPasswordHash), []byte(req.Password)) != nil {
		h.logger.Warn("login rejected", zap.String("email", req.Email), zap.String("client_ip", c.ClientIP()))
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Invalid email or password"})
		return
	}

	token, err := h.generateToken(strings.ToLower(req.Email), middleware.RoleAdmin)
	if err != nil {
		h.logger.Error("sign token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to generate token"})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie("token", token, int(tokenTTL.Seconds()), "/", "", h.config.IsProduction(), true)
	c.JSON(http.StatusOK, models.LoginResponse{Token: token})
}

// Me returns the identity carried by the current token.
func (h *AuthHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"email": middleware.Actor(c),
		"role":  c.GetString(middleware.ContextRole),
	})
}

func (h *AuthHandler) generateToken(email, role string) (string, error) {
	claims := middleware.Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.config.JWTSecret))
}
