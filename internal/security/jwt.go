package security

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"storage-manager/config"
	"storage-manager/internal/logger"
	"storage-manager/internal/util"
)

type contextKey string

const (
	UserContextKey contextKey = "user"
)

// Claims : токен выпускает внешний сервис авторизации, здесь только проверка
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username,omitempty"`
	jwt.RegisteredClaims
}

// UserEnsurer : локальная запись пользователя создаётся при первом запросе
type UserEnsurer interface {
	EnsureUser(ctx context.Context, userID, username string) error
}

type JWTService struct {
	*config.JWTConfig
}

func NewJWTService(cfg *config.JWTConfig) *JWTService {
	return &JWTService{cfg}
}

// GenerateAccessToken : HS512 токен для локальной отладки и тестов
func (service *JWTService) GenerateAccessToken(userID, username string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    service.Issuer,
		},
	}

	jwtToken := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	accessToken, err := jwtToken.SignedString([]byte(service.SecretKey))
	if err != nil {
		return "", util.LogError("ошибка подписи токена", err)
	}
	return accessToken, nil
}

func (service *JWTService) ValidateJWT(jwtTokenStr string) (*Claims, error) {
	var claims = &Claims{}

	options := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()})}
	if service.Issuer != "" {
		options = append(options, jwt.WithIssuer(service.Issuer))
	}

	jwtToken, err := jwt.ParseWithClaims(jwtTokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(service.SecretKey), nil
	}, options...)
	if err != nil {
		return nil, fmt.Errorf("невалидный токен: %w", err)
	}
	if !jwtToken.Valid || claims.UserID == "" {
		return nil, fmt.Errorf("невалидный токен: нет идентификатора пользователя")
	}

	return claims, nil
}

func JWTMiddleware(jwtService *JWTService, users UserEnsurer) func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(handleAuthentication(jwtService, users, next))
	}
}

func handleAuthentication(jwtService *JWTService, users UserEnsurer, next http.Handler) func(writer http.ResponseWriter, request *http.Request) {
	return func(writer http.ResponseWriter, request *http.Request) {
		authorizationHeader := request.Header.Get("Authorization")
		if !strings.HasPrefix(authorizationHeader, "Bearer ") {
			http.Error(writer, "unauthorized", http.StatusUnauthorized)
			return
		}

		token := strings.TrimPrefix(authorizationHeader, "Bearer ")

		claims, err := jwtService.ValidateJWT(token)
		if err != nil {
			logger.Log.Debug().Err(err).Msg("[JWTMiddleware] отклонён запрос")
			http.Error(writer, "невалидный токен", http.StatusUnauthorized)
			return
		}

		if users != nil {
			if err := users.EnsureUser(request.Context(), claims.UserID, claims.Username); err != nil {
				logger.Log.Error().Err(err).Str("user", claims.UserID).Msg("[JWTMiddleware] не удалось зарегистрировать пользователя")
				http.Error(writer, "internal server error", http.StatusInternalServerError)
				return
			}
		}

		req := request.WithContext(context.WithValue(request.Context(), UserContextKey, claims))
		next.ServeHTTP(writer, req)
	}
}

func GetClaimsFromContext(ctx context.Context) (*Claims, error) {
	claims, ok := ctx.Value(UserContextKey).(*Claims)
	if !ok || claims == nil {
		return nil, fmt.Errorf("пользователь не авторизован")
	}
	return claims, nil
}

// WithClaims : контекст с уже проверенными claims
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, UserContextKey, claims)
}
