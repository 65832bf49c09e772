package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/turnaplay/teamreg/internal/domain"
)

// ContextKey это кастомный тип для ключей контекста
type ContextKey string

// ActorKey ключ контекста для действующего пользователя
const ActorKey ContextKey = "actor"

// TokenValidator проверяет JWT токен и возвращает ID пользователя
type TokenValidator interface {
	ValidateToken(token string) (uuid.UUID, error)
}

// ActorResolver вычисляет роль пользователя и команды, которыми он руководит
type ActorResolver interface {
	ResolveActor(ctx context.Context, userID uuid.UUID) (*domain.Actor, error)
}

// AuthMiddleware создает middleware для валидации JWT токенов.
// Actor вычисляется один раз на запрос и кладется в контекст.
func AuthMiddleware(tokens TokenValidator, actors ActorResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Получаем токен из заголовка Authorization
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				unauthorized(w, "missing authorization header")
				return
			}

			// Проверяем формат Bearer
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				unauthorized(w, "invalid authorization header format")
				return
			}

			userID, err := tokens.ValidateToken(parts[1])
			if err != nil {
				unauthorized(w, "invalid or expired token")
				return
			}

			// Пользователь мог быть удален после выдачи токена
			actor, err := actors.ResolveActor(r.Context(), userID)
			if errors.Is(err, domain.ErrNotFound) {
				unauthorized(w, "user not found")
				return
			}
			if err != nil {
				writeError(w, http.StatusInternalServerError, string(domain.CodeInternal), "internal server error")
				return
			}

			ctx := context.WithValue(r.Context(), ActorKey, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnauthorized, string(domain.KindUnauthorized), message)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":{"code":"` + code + `","message":"` + message + `"}}`))
}

// ActorFromContext извлекает действующего пользователя из контекста
func ActorFromContext(ctx context.Context) (*domain.Actor, bool) {
	actor, ok := ctx.Value(ActorKey).(*domain.Actor)
	return actor, ok
}

// WithActor кладет действующего пользователя в контекст
func WithActor(ctx context.Context, actor *domain.Actor) context.Context {
	return context.WithValue(ctx, ActorKey, actor)
}
