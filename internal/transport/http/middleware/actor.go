package middleware

import (
	"context"
	"net/http"

	"github.com/geocell/team-service/internal/domain/entity"
)

type actorKey struct{}

// HeaderUserID заголовок с идентификатором инициатора операции.
// Аутентификацию выполняет внешний периметр; здесь значению доверяют.
const HeaderUserID = "X-User-Id"

// Actor извлекает личность инициатора из запроса и кладет ее в контекст.
// Запрос без X-User-Id отклоняется.
func Actor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get(HeaderUserID)
		if userID == "" {
			respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing "+HeaderUserID+" header")
			return
		}

		actor := entity.Actor{
			UserID:    userID,
			IPAddress: r.RemoteAddr,
			UserAgent: r.UserAgent(),
		}

		ctx := context.WithValue(r.Context(), actorKey{}, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ActorFromContext возвращает инициатора операции из контекста
func ActorFromContext(ctx context.Context) (entity.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(entity.Actor)
	return actor, ok
}
