package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"taskpad/internal/domain"
)

type fakeAuth struct {
	identity domain.Identity
}

func (f *fakeAuth) SignUp(ctx context.Context, email, password string) (domain.Identity, error) {
	return f.identity, nil
}

func (f *fakeAuth) SignIn(ctx context.Context, email, password string) (domain.Identity, error) {
	return f.identity, nil
}

func (f *fakeAuth) SignInWithGoogle(ctx context.Context, accessToken string) (domain.Identity, error) {
	return f.identity, nil
}

func (f *fakeAuth) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	return "", nil
}

func (f *fakeAuth) ResetPassword(ctx context.Context, token, newPassword string) error {
	return nil
}

func (f *fakeAuth) Identity(ctx context.Context, email string) (domain.Identity, error) {
	if email != f.identity.Email {
		return domain.Identity{}, errors.New("user not found")
	}
	return f.identity, nil
}

func TestGetEmailFromContext(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if _, ok := getEmail(c); ok {
		t.Fatal("email reported on an empty context")
	}

	c.Set("email", "a@example.com")
	email, ok := getEmail(c)
	if !ok || email != "a@example.com" {
		t.Fatalf("getEmail = %q, %v", email, ok)
	}

	c2, _ := gin.CreateTestContext(httptest.NewRecorder())
	c2.Set("email", 42)
	if _, ok := getEmail(c2); ok {
		t.Fatal("non-string context value must not pass")
	}

	c3, _ := gin.CreateTestContext(httptest.NewRecorder())
	c3.Set("email", "")
	if _, ok := getEmail(c3); ok {
		t.Fatal("empty email must not pass")
	}
}

func TestMeReadsAuthMiddlewareEmail(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := NewHandler(nil, &fakeAuth{identity: domain.Identity{Email: "a@example.com", Name: "Ada"}})

	r := gin.New()
	r.GET("/me", func(c *gin.Context) { c.Set("email", "a@example.com") }, h.Me)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var body struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Email != "a@example.com" || body.Name != "Ada" {
		t.Fatalf("unexpected profile: %+v", body)
	}
}

func TestMeWithoutEmailIsUnauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := NewHandler(nil, &fakeAuth{identity: domain.Identity{Email: "a@example.com"}})

	r := gin.New()
	r.GET("/me", h.Me)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}
