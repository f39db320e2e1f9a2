package apiapp

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	authsvc "github.com/Fumiyasu01/matching-app/internal/services/auth"
)

type recordingProvisioner struct {
	mu  sync.Mutex
	ids []uuid.UUID
}

func (p *recordingProvisioner) EnsureProfile(id uuid.UUID, _ time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ids = append(p.ids, id)
}

func signTestToken(t *testing.T, secret string, subject string, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	mw := AuthMiddleware(authsvc.NewJWTValidator("secret"), nil, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/v1/feed", nil)
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatalf("handler must not run without a token")
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestAuthMiddlewareRejectsExpiredToken(t *testing.T) {
	mw := AuthMiddleware(authsvc.NewJWTValidator("secret"), nil, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/v1/feed", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, "secret", uuid.NewString(), time.Now().Add(-time.Hour)))
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatalf("handler must not run with an expired token")
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestAuthMiddlewarePassesIdentityAndProvisions(t *testing.T) {
	userID := uuid.New()
	provisioner := &recordingProvisioner{}
	mw := AuthMiddleware(authsvc.NewJWTValidator("secret"), provisioner, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/v1/feed", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, "secret", userID.String(), time.Now().Add(time.Hour)))
	rr := httptest.NewRecorder()

	var seen uuid.UUID
	mw(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		identity, ok := authsvc.IdentityFromContext(r.Context())
		if !ok {
			t.Fatalf("identity missing from context")
		}
		seen = identity.UserID
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d", rr.Code)
	}
	if seen != userID {
		t.Fatalf("identity mismatch: got %s want %s", seen, userID)
	}
	if len(provisioner.ids) != 1 || provisioner.ids[0] != userID {
		t.Fatalf("provisioner should see the authenticated user once, got %v", provisioner.ids)
	}
}

func TestExtractBearerToken(t *testing.T) {
	cases := map[string]struct {
		header string
		want   string
		ok     bool
	}{
		"valid":          {header: "Bearer abc.def.ghi", want: "abc.def.ghi", ok: true},
		"case insensitive scheme": {header: "bearer tok", want: "tok", ok: true},
		"missing scheme": {header: "abc.def.ghi", ok: false},
		"empty":          {header: "", ok: false},
		"blank token":    {header: "Bearer  ", ok: false},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got, ok := extractBearerToken(tc.header)
			if ok != tc.ok || got != tc.want {
				t.Fatalf("extractBearerToken(%q) = (%q, %v), want (%q, %v)", tc.header, got, ok, tc.want, tc.ok)
			}
		})
	}
}
