package middleware

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/DanielPopoola/labresult-gateway/internal/core/domain"
	"github.com/golang-jwt/jwt/v5"
)

type actorKey struct{}

// Claims are the staff token claims.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator issues and checks HS256 staff bearer tokens.
type Authenticator struct {
	secret     []byte
	ttl        time.Duration
	trustProxy bool
	now        func() time.Time
}

func NewAuthenticator(secret string, ttl time.Duration, trustProxy bool) *Authenticator {
	return &Authenticator{
		secret:     []byte(secret),
		ttl:        ttl,
		trustProxy: trustProxy,
		now:        time.Now,
	}
}

// IssueToken signs a token for subject with the given role.
func (a *Authenticator) IssueToken(subject string, role domain.Role) (string, error) {
	if subject == "" {
		return "", errors.New("subject is required")
	}
	now := a.now()
	claims := Claims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Parse validates raw and returns the actor it names.
func (a *Authenticator) Parse(raw string) (domain.Actor, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithTimeFunc(a.now), jwt.WithExpirationRequired())
	if err != nil {
		return domain.Actor{}, err
	}
	if claims.Subject == "" {
		return domain.Actor{}, errors.New("token has no subject")
	}
	return domain.Actor{UserID: claims.Subject, Role: domain.Role(claims.Role)}, nil
}

// Require rejects requests without a valid bearer token (401) or whose role
// is not one of roles (403). The authenticated actor is stored on the
// request context.
func (a *Authenticator) Require(roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				writeError(w, http.StatusUnauthorized, domain.ErrCodeUnauthorized, "missing bearer token")
				return
			}

			actor, err := a.Parse(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				writeError(w, http.StatusUnauthorized, domain.ErrCodeUnauthorized, "invalid token")
				return
			}
			if len(roles) > 0 && !slices.Contains(roles, actor.Role) {
				writeError(w, http.StatusForbidden, domain.ErrCodeForbidden, "insufficient privileges")
				return
			}

			actor.IPAddress = ClientIP(r, a.trustProxy)
			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		})
	}
}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(domain.Actor)
	return actor, ok
}

// ClientIP returns the caller address. X-Forwarded-For is only honoured
// when the service runs behind a trusted proxy.
func ClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			first, _, _ := strings.Cut(fwd, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
		if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
