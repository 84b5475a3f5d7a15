// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements Idempotency-Key handling for the send-turn endpoint.
// A retried send must not debit credits or run the model a second time, so
// clients attach a stable key per semantic turn. The middleware validates the
// header and stashes the normalized key in the request context; the turn
// service owns replay detection and serves the recorded model message.
package middleware

import (
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey is the request header clients use to convey an
// idempotency key for unsafe operations. For chat turns this is what keeps a
// retried send from debiting credits a second time.
const HeaderIdempotencyKey = "Idempotency-Key"

// ctxKeyIdemKey is the Gin context key under which the validated key is
// stashed. Unexported; read it through GetIdempotencyKey.
const ctxKeyIdemKey = "idem.key"

// GetIdempotencyKey returns the validated idempotency key stored in the Gin
// context by IdempotencyValidator. The second return value indicates presence.
//
// Handlers should prefer this function over reading the header directly.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxKeyIdemKey)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// IdempotencyOptions configures header validation for IdempotencyValidator.
type IdempotencyOptions struct {
	// MaxLen caps the accepted key length. Values <= 0 default to 200.
	MaxLen int
	// Pattern restricts allowed characters. If nil, a conservative
	// RFC7230-like token pattern is used: ^[A-Za-z0-9._~\-:]+$
	Pattern *regexp.Regexp
}

// IdempotencyValidator validates the Idempotency-Key header when present and
// stashes the normalized key in the request context for the turn handler.
//
// Behavior:
//   - Absent header: no-op.
//   - Malformed header (too long or outside the token pattern): 400 with a
//     compact error body, request aborted.
//   - Valid header: key stashed under the context key read by
//     GetIdempotencyKey, request proceeds.
//
// Replay detection is NOT done here. The key's uniqueness scope is
// (user, project, key) and the user id is only known after authentication,
// which runs later in the chain; the turn service performs the lookup inside
// the per-user critical section where it is race-free and TTL-aware.
func IdempotencyValidator(opts IdempotencyOptions) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}
	pat := opts.Pattern
	if pat == nil {
		pat = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"code":    "bad_idempotency_key",
				"message": "invalid Idempotency-Key",
			})
			return
		}

		c.Set(ctxKeyIdemKey, key)
		c.Next()
	}
}
