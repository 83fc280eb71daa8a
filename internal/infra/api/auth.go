package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"edu-subscription-platform/internal/domain"
	"edu-subscription-platform/internal/domain/model"
	"edu-subscription-platform/internal/infra/logging"
)

// AuthManager verifies the bearer tokens issued by the identity service. The
// subject claim carries the user id.
type AuthManager struct {
	secret []byte
	ttl    time.Duration
}

func NewAuthManager(secret string, ttl time.Duration) *AuthManager {
	return &AuthManager{secret: []byte(secret), ttl: ttl}
}

type UserClaims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Mint signs a token for userID. Used by tooling and tests; production tokens
// come from the identity service with the same secret.
func (a *AuthManager) Mint(userID string, role model.Role) (string, error) {
	now := time.Now()
	claims := UserClaims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
			Subject:   userID,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

var errNoToken = errors.New("missing token")

// ParseFromRequest reads "Authorization: Bearer <jwt>".
func (a *AuthManager) ParseFromRequest(r *http.Request) (*UserClaims, error) {
	hdr := r.Header.Get("Authorization")
	if hdr == "" {
		return nil, errNoToken
	}
	if len(hdr) < 7 || !strings.EqualFold(hdr[:7], "bearer ") {
		return nil, domain.ErrUnauthorized
	}
	return a.parse(strings.TrimSpace(hdr[7:]))
}

func (a *AuthManager) parse(tok string) (*UserClaims, error) {
	claims := &UserClaims{}
	tkn, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tkn.Valid || claims.Subject == "" {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}

type userCtxKey struct{}

func withUser(ctx context.Context, u *model.User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, u)
}

// userFrom returns the authenticated user, or nil for anonymous requests.
func userFrom(ctx context.Context) *model.User {
	u, _ := ctx.Value(userCtxKey{}).(*model.User)
	return u
}

// authenticate loads the user behind the bearer token. With required unset a
// missing token passes through anonymously, but a bad one is still rejected.
func (s *Server) authenticate(required bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := s.auth.ParseFromRequest(r)
			if errors.Is(err, errNoToken) && !required {
				next.ServeHTTP(w, r)
				return
			}
			if err != nil {
				writeDetail(w, http.StatusUnauthorized, "could not validate credentials")
				return
			}
			u, err := s.users.GetByID(r.Context(), claims.Subject)
			if err != nil || !u.IsActive {
				if err != nil && !errors.Is(err, domain.ErrNotFound) {
					s.writeError(w, r, err)
					return
				}
				writeDetail(w, http.StatusUnauthorized, "could not validate credentials")
				return
			}
			ctx := logging.WithUserID(r.Context(), u.ID)
			next.ServeHTTP(w, r.WithContext(withUser(ctx, u)))
		})
	}
}
