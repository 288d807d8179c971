package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/WawaAlencar/sistema-cashback-cliente/internal/config"
	"github.com/WawaAlencar/sistema-cashback-cliente/internal/logging"
)

// PINHeader carries the access PIN for API clients. Browser forms send it
// in the "pin" field instead.
const PINHeader = "X-Access-Pin"

// DenyFunc writes the response for a rejected request.
type DenyFunc func(w http.ResponseWriter, r *http.Request, err error, status int)

// RequirePIN returns middleware that lets a request through only when it
// carries the shared access PIN. The header wins over the form field.
func RequirePIN(pin string, deny DenyFunc) func(http.Handler) http.Handler {
	if deny == nil {
		deny = func(w http.ResponseWriter, _ *http.Request, err error, status int) {
			http.Error(w, err.Error(), status)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			given := strings.TrimSpace(r.Header.Get(PINHeader))
			if given == "" {
				given = r.FormValue("pin")
			}

			if err := config.CheckPIN(given, pin); err != nil {
				status := http.StatusForbidden
				if errors.Is(err, config.ErrMissingPIN) {
					status = http.StatusUnauthorized
				}
				logging.FromContext(r.Context()).Warn("auth: pin rejected",
					"reason", err.Error(),
					"path", r.URL.Path,
					"ip", ClientIP(r),
				)
				deny(w, r, err, status)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
