package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"timeTracker/internal/logger"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const userIDKey contextKey = "user_id"

const UserIDHeader = "X-User-ID"

type Claims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(userIDKey).(uuid.UUID)
	return id, ok && id != uuid.Nil
}

// Auth определяет пользователя запроса. С секретом ждёт "Authorization: Bearer <jwt>"
// с claim user_id, без секрета (разработка) доверяет заголовку X-User-ID
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var (
				id  uuid.UUID
				err error
			)
			if secret == "" {
				id, err = uuid.Parse(r.Header.Get(UserIDHeader))
			} else {
				id, err = parseBearer(r.Header.Get("Authorization"), []byte(secret))
			}

			if err != nil || id == uuid.Nil {
				logger.Warn("HTTP: Запрос без валидной авторизации",
					zap.String("request_id", GetRequestID(r.Context())),
					zap.String("path", r.URL.Path),
					zap.Error(err))
				writeJSONError(w, r, http.StatusUnauthorized, "unauthorized", "Требуется авторизация", nil)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), id)))
		})
	}
}

func parseBearer(header string, key []byte) (uuid.UUID, error) {
	tokenString, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || tokenString == "" {
		return uuid.Nil, errors.New("нет токена")
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("неожиданный алгоритм подписи %v", token.Header["alg"])
		}
		return key, nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return uuid.Nil, errors.New("невалидный токен")
	}
	return uuid.Parse(claims.UserID)
}
