package middleware

import (
	"fmt"
	"net"
	"net/http"

	internal_errors "github.com/itchan-dev/forum/shared/errors"
	"github.com/itchan-dev/forum/shared/middleware/ratelimiter"
	"github.com/itchan-dev/forum/shared/utils"
)

// RateLimit throttles requests per signed-in user, or per client IP for guests.
// Admins are not limited.
func RateLimit(rl *ratelimiter.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUserFromContext(r)
			if user != nil && user.Admin {
				next.ServeHTTP(w, r)
				return
			}

			if !rl.Allow(identity(r)) {
				utils.WriteErrorAndStatusCode(w, &internal_errors.ErrorWithStatusCode{
					Message:    "Rate limit exceeded, try again later",
					StatusCode: http.StatusTooManyRequests,
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func identity(r *http.Request) string {
	if u := GetUserFromContext(r); u != nil && !u.IsAnonymous() {
		return fmt.Sprintf("user_%d", u.Id)
	}
	// Only RemoteAddr is trusted, forwarded headers can be spoofed.
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	return "ip_" + ip
}
