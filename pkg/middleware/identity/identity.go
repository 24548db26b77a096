package identity

import (
	"context"
	"net/http"

	"fitbook-service/pkg/response"

	"github.com/go-chi/render"
)

type ctxKey struct{}

// New extracts the authenticated trainer id from the request and stores it
// request-scoped in the context. Authentication itself happens upstream;
// the core trusts the id it is handed.
func New() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			trainerID := r.Header.Get("X-Trainer-ID")
			if trainerID == "" {
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error(string(response.UNAUTHORIZED), "trainer identity is required"))
				return
			}

			ctx := context.WithValue(r.Context(), ctxKey{}, trainerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		}

		return http.HandlerFunc(fn)
	}
}

func TrainerID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
