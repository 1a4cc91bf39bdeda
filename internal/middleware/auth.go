package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"site-crm-backend/internal/config"
	"site-crm-backend/internal/models"
)

const UserIDKey = "user_id"

// OriginalPathHeader lets the dashboard name the page it was showing, so
// the login redirect can return there.
const OriginalPathHeader = "X-Original-Path"

var (
	ErrMissingSecret  = errors.New("jwt secret not configured")
	ErrMissingSubject = errors.New("missing user id in token")
)

// LoginRedirect is the login route that returns to path afterwards.
func LoginRedirect(path string) string {
	if path == "" || !strings.HasPrefix(path, "/") {
		path = "/"
	}
	return "/login?redirect=" + url.QueryEscape(path)
}

// ParseToken verifies an HS256 Supabase access token and returns its
// subject.
func ParseToken(secret, tokenString string) (string, error) {
	if secret == "" {
		return "", ErrMissingSecret
	}

	// Some clients URL-encode the token.
	if decoded, err := url.QueryUnescape(tokenString); err == nil {
		tokenString = decoded
	}
	if len(strings.Split(tokenString, ".")) != 3 {
		return "", errors.New("JWT token must have 3 parts separated by dots")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", fmt.Errorf("token has expired: %w", err)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return "", fmt.Errorf("token signature is invalid - check JWT secret: %w", err)
		}
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token claims")
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", ErrMissingSubject
	}
	return sub, nil
}

// AuthMiddleware rejects requests without a valid bearer token. The 401
// body carries the login route that brings the user back afterwards.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		deny := func(errMsg, message string) {
			original := c.GetHeader(OriginalPathHeader)
			if original == "" {
				original = c.Request.URL.Path
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.AuthErrorResponse{
				Error:    errMsg,
				Message:  message,
				Redirect: LoginRedirect(original),
			})
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			deny("missing authorization header", "")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			deny("invalid authorization header format", "")
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			deny("empty token", "")
			return
		}

		sub, err := ParseToken(cfg.SupabaseJWTSecret, tokenString)
		if err != nil {
			deny("invalid token", err.Error())
			return
		}

		c.Set(UserIDKey, sub)
		c.Next()
	}
}
