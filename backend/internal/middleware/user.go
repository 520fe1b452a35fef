package middleware

import (
	"context"
	"net/http"

	"github.com/itchan-dev/forum/shared/domain"
	mw "github.com/itchan-dev/forum/shared/middleware"
	"github.com/itchan-dev/forum/shared/utils"
)

type key int

const resolvedUserKey key = 0

type UserResolver interface {
	Resolve(ctx context.Context, identity *domain.User) (*domain.User, error)
}

// ResolveUser loads the user behind the token identity, with permissions, once
// per request. Requests without an identity continue as guests.
func ResolveUser(users UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := users.Resolve(r.Context(), mw.GetUserFromContext(r))
			if err != nil {
				utils.WriteErrorAndStatusCode(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), resolvedUserKey, user)))
		})
	}
}

// CurrentUser returns the resolved user, or a guest without permissions when
// ResolveUser did not run.
func CurrentUser(r *http.Request) *domain.User {
	if user, ok := r.Context().Value(resolvedUserKey).(*domain.User); ok {
		return user
	}
	return domain.Anonymous()
}

// WithUser stores user as the resolved user of ctx.
func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, resolvedUserKey, user)
}
