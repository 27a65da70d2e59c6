package httpadapter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"contractbot/internal/api"
)

// Claims carries the caller's external identity in the subject.
type Claims struct {
	Admin bool `json:"admin,omitempty"`
	jwt.RegisteredClaims
}

// Identity is the authenticated caller.
type Identity struct {
	ExternalID int64
	Admin      bool
}

// Reviewer names the caller in review records.
func (id Identity) Reviewer() string { return strconv.FormatInt(id.ExternalID, 10) }

type identityKey struct{}

func identityFrom(ctx context.Context) Identity {
	id, _ := ctx.Value(identityKey{}).(Identity)
	return id
}

// Authenticator issues and verifies HS256 bearer tokens. Callers listed in
// adminIDs are admins whatever their token says.
type Authenticator struct {
	secret   []byte
	ttl      time.Duration
	adminIDs []int64
	now      func() time.Time
}

func NewAuthenticator(secret string, ttl time.Duration, adminIDs []int64) *Authenticator {
	return &Authenticator{secret: []byte(secret), ttl: ttl, adminIDs: adminIDs, now: time.Now}
}

// IssueToken signs a token for externalID.
func (a *Authenticator) IssueToken(externalID int64, admin bool) (string, time.Time, error) {
	now := a.now()
	expiresAt := now.Add(a.ttl)
	claims := Claims{
		Admin: admin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(externalID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify parses a signed token into the caller identity.
func (a *Authenticator) Verify(token string) (Identity, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(a.now))
	if err != nil {
		return Identity{}, err
	}
	if !parsed.Valid {
		return Identity{}, errors.New("invalid token")
	}
	ext, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return Identity{}, fmt.Errorf("subject %q: %w", claims.Subject, err)
	}
	return Identity{
		ExternalID: ext,
		Admin:      claims.Admin || slices.Contains(a.adminIDs, ext),
	}, nil
}

// adminScope is the bearer scope admin operations declare.
const adminScope = "admin"

// Middleware verifies the bearer token of operations that declare bearer
// security and stores the caller identity in the request context.
// Operations without security pass through untouched.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, secured := r.Context().Value(api.BearerAuthScopes).([]string); !secured {
			next.ServeHTTP(w, r)
			return
		}
		scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			writeError(w, http.StatusUnauthorized, "bearer token required")
			return
		}
		id, err := a.Verify(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey{}, id)))
	})
}

// requireAdmin rejects non-admin callers of operations whose bearer
// security lists the admin scope.
func requireAdmin(f api.StrictHandlerFunc, operationID string) api.StrictHandlerFunc {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request, request any) (any, error) {
		scopes, _ := ctx.Value(api.BearerAuthScopes).([]string)
		if slices.Contains(scopes, adminScope) && !identityFrom(ctx).Admin {
			return nil, &statusError{code: http.StatusForbidden, msg: operationID + " is admin only"}
		}
		return f(ctx, w, r, request)
	}
}
