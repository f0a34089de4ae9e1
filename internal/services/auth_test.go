package services

import (
	"context"
	"testing"

	"github.com/sprintflow/sprintflow-backend/internal/domain"
	"github.com/sprintflow/sprintflow-backend/internal/requestdata"
)

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.auth.Register(ctx, RegisterInput{
		Name:     "Dana",
		Email:    "Dana@Example.com",
		Password: "s3cret-pass",
		Role:     domain.RoleQA,
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "dana@example.com" {
		t.Fatalf("email must be normalized: got %q", user.Email)
	}
	if user.IsAdmin {
		t.Fatalf("ordinary registration must not grant admin")
	}

	_, err = env.auth.Register(ctx, RegisterInput{
		Name:     "Dana Again",
		Email:    "dana@example.com",
		Password: "another-pass",
	})
	wantAPIError(t, err, "conflict")

	logged, access, refresh, err := env.auth.Login(ctx, "dana@example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if logged.ID != user.ID || access == "" || refresh == "" {
		t.Fatalf("login result incomplete: id=%s access=%q refresh=%q", logged.ID, access, refresh)
	}

	_, _, _, err = env.auth.Login(ctx, "dana@example.com", "wrong-pass")
	wantAPIError(t, err, "unauthorized")

	sessionCtx, err := env.auth.SetContextFromToken(ctx, access)
	if err != nil {
		t.Fatalf("set context from token: %v", err)
	}
	rd := requestdata.GetRequestData(sessionCtx)
	if rd == nil || rd.UserID != user.ID || rd.Role != domain.RoleQA {
		t.Fatalf("request data from token: got %+v", rd)
	}

	newAccess, newRefresh, err := env.auth.Refresh(sessionCtx)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if newAccess == access || newRefresh == refresh {
		t.Fatalf("refresh must rotate both tokens")
	}

	// The rotated pair works; the old access token's session is gone.
	rotatedCtx, err := env.auth.SetContextFromToken(ctx, newAccess)
	if err != nil {
		t.Fatalf("set context from rotated token: %v", err)
	}
	if _, err := env.auth.SetContextFromToken(ctx, access); err == nil {
		t.Fatalf("old access token should be revoked after refresh")
	}

	if err := env.auth.Logout(rotatedCtx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := env.auth.SetContextFromToken(ctx, newAccess); err == nil {
		t.Fatalf("token should be revoked after logout")
	}
}

func TestIssuedAccessTokensAreUnique(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.auth.Register(ctx, RegisterInput{
		Name:     "Rapid",
		Email:    "rapid@example.com",
		Password: "s3cret-pass",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	// Two logins inside the same second must still mint distinct tokens;
	// second-granularity iat/exp claims alone would collide.
	_, firstAccess, firstRefresh, err := env.auth.Login(ctx, user.Email, "s3cret-pass")
	if err != nil {
		t.Fatalf("first login: %v", err)
	}
	_, secondAccess, secondRefresh, err := env.auth.Login(ctx, user.Email, "s3cret-pass")
	if err != nil {
		t.Fatalf("second login: %v", err)
	}
	if firstAccess == secondAccess {
		t.Fatalf("access tokens issued back to back must differ")
	}
	if firstRefresh == secondRefresh {
		t.Fatalf("refresh tokens issued back to back must differ")
	}
}

func TestRegisterBootstrapAdmin(t *testing.T) {
	env := newTestEnv(t)

	// newTestEnv configures ADMIN_EMAIL as boss@example.com.
	user, err := env.auth.Register(context.Background(), RegisterInput{
		Name:     "Boss",
		Email:    "BOSS@example.com",
		Password: "super-secret",
		Role:     domain.RoleScrumMaster,
	})
	if err != nil {
		t.Fatalf("register bootstrap admin: %v", err)
	}
	if !user.IsAdmin {
		t.Fatalf("registration with the configured admin email must grant admin")
	}
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cases := []RegisterInput{
		{Name: "", Email: "a@b.com", Password: "long-enough"},
		{Name: "A", Email: "not-an-email", Password: "long-enough"},
		{Name: "A", Email: "a2@b.com", Password: "short"},
		{Name: "A", Email: "a3@b.com", Password: "long-enough", Role: "Manager"},
	}
	for i, in := range cases {
		if _, err := env.auth.Register(ctx, in); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
}

func TestInvalidTokenRejected(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.auth.SetContextFromToken(context.Background(), "not-a-jwt"); err == nil {
		t.Fatalf("expected error for malformed token")
	}
	if _, err := env.auth.SetContextFromToken(context.Background(), ""); err == nil {
		t.Fatalf("expected error for empty token")
	}
}
