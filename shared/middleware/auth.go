package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/itchan-dev/forum/shared/domain"
	internal_errors "github.com/itchan-dev/forum/shared/errors"
	jwt_internal "github.com/itchan-dev/forum/shared/jwt"
	"github.com/itchan-dev/forum/shared/utils"
)

// Key to store the user claims in the request context
type key int

const UserClaimsKey key = 0

// Auth holds dependencies for authentication middleware
type Auth struct {
	jwtService jwt_internal.JwtService
}

func NewAuth(jwtService jwt_internal.JwtService) *Auth {
	return &Auth{jwtService: jwtService}
}

// NeedAuth returns middleware that rejects requests without a valid token.
func (a *Auth) NeedAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := a.extractUser(r)
			if err != nil {
				if err == errNoToken {
					utils.WriteErrorAndStatusCode(w, &internal_errors.ErrorWithStatusCode{Message: "Please sign-in", StatusCode: http.StatusUnauthorized})
					return
				}
				utils.WriteErrorAndStatusCode(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), UserClaimsKey, user)))
		})
	}
}

// OptionalAuth populates the user context when the token is valid and lets
// everyone else through as a guest.
func (a *Auth) OptionalAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, _ := a.extractUser(r)
			if user != nil {
				ctx := context.WithValue(r.Context(), UserClaimsKey, user)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// extractUser reads the token from the accessToken cookie or a bearer header.
func (a *Auth) extractUser(r *http.Request) (*domain.User, error) {
	var tokenString string
	if accessCookie, err := r.Cookie("accessToken"); err == nil {
		tokenString = accessCookie.Value
	} else if token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); found {
		tokenString = token
	}

	if tokenString == "" {
		return nil, errNoToken
	}

	claims, err := a.jwtService.DecodeToken(tokenString)
	if err != nil {
		return nil, err
	}

	return &domain.User{Id: claims.UserId, Admin: claims.Admin}, nil
}

var errNoToken = errorString("no token")

type errorString string

func (e errorString) Error() string { return string(e) }

// GetUserFromContext returns the token identity, nil for guests.
func GetUserFromContext(r *http.Request) *domain.User {
	user, ok := r.Context().Value(UserClaimsKey).(*domain.User)
	if !ok {
		return nil
	}
	return user
}
