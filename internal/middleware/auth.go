package middleware

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dorianvale/praxis/internal/domain"
)

// Authenticate verifies the Bearer token on every request and stores the
// authenticated user in the request context. Tokens are HS256 JWTs minted by
// the external identity provider; the subject claim is the user ID.
func Authenticate(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, ok := bearerToken(r)
			if !ok {
				respondWithError(w, r, domain.Errorf(domain.EUNAUTHORIZED, "middleware.auth", "Authentication required"))
				return
			}

			user, err := validateToken(tokenString, jwtSecret)
			if err != nil {
				respondWithError(w, r, domain.Errorf(domain.EUNAUTHORIZED, "middleware.auth", "Invalid or expired token"))
				return
			}

			ctx := domain.NewContextWithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireTaskToken guards scheduler endpoints with a shared credential
// carried in the X-Task-Token header. These endpoints are called by cron
// jobs, not users, so they bypass JWT auth entirely.
func RequireTaskToken(taskToken string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if taskToken == "" {
				respondWithError(w, r, domain.Errorf(domain.ECONFIG, "middleware.task", "Task endpoints are not configured"))
				return
			}
			got := r.Header.Get("X-Task-Token")
			if subtle.ConstantTimeCompare([]byte(got), []byte(taskToken)) != 1 {
				respondWithError(w, r, domain.Errorf(domain.EUNAUTHORIZED, "middleware.task", "Invalid task token"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func validateToken(tokenString, secret string) (*domain.User, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("unexpected claims type")
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, fmt.Errorf("token has no subject")
	}
	email, _ := claims["email"].(string)

	return &domain.User{ID: sub, Email: email}, nil
}
