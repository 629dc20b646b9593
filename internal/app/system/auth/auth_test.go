package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fieldworks/turfhub/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newService(t *testing.T, ttl time.Duration) *auth.TokenService {
	t.Helper()
	return auth.NewTokenService("0123456789abcdef0123456789abcdef", ttl, zap.NewNop())
}

func TestSignVerify_RoundTrip(t *testing.T) {
	svc := newService(t, time.Hour)
	id := primitive.NewObjectID()

	token, err := svc.Sign(id, "user@example.com")
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	claims, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if claims.UserID != id.Hex() {
		t.Errorf("UserID: got %q, want %q", claims.UserID, id.Hex())
	}
	if claims.Email != "user@example.com" {
		t.Errorf("Email: got %q, want %q", claims.Email, "user@example.com")
	}
}

func TestVerify_Expired(t *testing.T) {
	svc := newService(t, -time.Minute)
	token, err := svc.Sign(primitive.NewObjectID(), "user@example.com")
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	if _, err := svc.Verify(token); err != auth.ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestVerify_Garbage(t *testing.T) {
	svc := newService(t, time.Hour)
	if _, err := svc.Verify("not.a.token"); err != auth.ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestLoadUser_PutsUserInContext(t *testing.T) {
	svc := newService(t, time.Hour)
	id := primitive.NewObjectID()
	token, err := svc.Sign(id, "user@example.com")
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	var got *auth.SessionUser
	h := svc.LoadUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.CurrentUser(r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	h.ServeHTTP(httptest.NewRecorder(), req)

	if got == nil {
		t.Fatal("expected user in context")
	}
	if got.ID != id {
		t.Errorf("ID: got %s, want %s", got.ID.Hex(), id.Hex())
	}
}

func TestRequireSignedIn_Anonymous(t *testing.T) {
	h := auth.RequireSignedIn(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run for anonymous request")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}
