// internal/relay/auth.go
package relay

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/user/tutorpipe/internal/identity"
)

// AllowList is the configured set of permitted identities. An identity
// passes if it exactly equals any listed email or ends with any listed
// domain suffix.
type AllowList struct {
	Emails  []string
	Domains []string
}

// Allows reports whether email passes the allow-list.
func (a AllowList) Allows(email string) bool {
	for _, allowed := range a.Emails {
		if email == allowed {
			return true
		}
	}
	for _, domain := range a.Domains {
		if domain != "" && strings.HasSuffix(email, domain) {
			return true
		}
	}
	return false
}

// Authenticator runs the relay's per-request middleware chain: credential
// presence, identity resolution with a TTL cache, then allow-list
// enforcement. Only requests passing all three reach the route handler.
type Authenticator struct {
	provider *identity.Client
	cache    *identityCache
	group    singleflight.Group
	allow    AllowList
	log      *slog.Logger
}

// NewAuthenticator creates an authenticator resolving identities through
// provider and caching results for ttl.
func NewAuthenticator(provider *identity.Client, allow AllowList, ttl time.Duration, log *slog.Logger) *Authenticator {
	return &Authenticator{
		provider: provider,
		cache:    newIdentityCache(ttl),
		allow:    allow,
		log:      log,
	}
}

type identityKey struct{}

// IdentityFrom returns the resolved identity stored on the request context by
// the middleware, or "" when the request did not pass through it.
func IdentityFrom(ctx context.Context) string {
	email, _ := ctx.Value(identityKey{}).(string)
	return email
}

// Middleware wraps next with the authentication and authorization chain.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		credential := r.Header.Get("Authorization")
		if credential == "" {
			writeError(w, errUnauthenticated("Unauthorized"))
			return
		}

		email, err := a.resolve(r.Context(), credential)
		if err != nil {
			a.log.Warn("identity resolution failed", "error", err)
			writeError(w, err)
			return
		}

		if !a.allow.Allows(email) {
			a.log.Info("email not allowed", "email", email)
			writeError(w, errForbidden("Email not allowed"))
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey{}, email)))
	})
}

// resolve returns the identity for the raw credential, from cache when fresh.
// Concurrent misses for the same credential share one provider lookup.
func (a *Authenticator) resolve(ctx context.Context, credential string) (string, error) {
	if email, ok := a.cache.Get(credential); ok {
		return email, nil
	}

	v, err, _ := a.group.Do(credential, func() (any, error) {
		a.log.Debug("fetching identity from provider")

		if _, err := a.provider.Login(ctx, credential); err != nil {
			if errors.Is(err, identity.ErrRejected) {
				return nil, errUnauthenticated("Token verification failed")
			}
			return nil, err
		}

		email, err := a.provider.PrimaryEmail(ctx, credential)
		if err != nil {
			if errors.Is(err, identity.ErrRejected) {
				return nil, errUnauthenticated("Failed to fetch email")
			}
			return nil, err
		}

		a.cache.Set(credential, email)
		return email, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}
