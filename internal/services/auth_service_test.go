package services_test

import (
	"errors"
	"testing"
	"time"

	"shopfront/internal/repos"
	"shopfront/internal/services"
)

func authSvc(t *testing.T) *services.AuthService {
	t.Helper()
	db := memdb(t)
	return services.NewAuthService(repos.NewUserRepo(db), "test-secret", time.Hour)
}

func TestRegisterThenLogin(t *testing.T) {
	svc := authSvc(t)

	u, err := svc.Register("carol@shopfront.test", "Carol", "s3cretpw")
	if err != nil {
		t.Fatal(err)
	}
	if u.ID == "" {
		t.Fatal("no user id assigned")
	}

	tok, logged, err := svc.Login("carol@shopfront.test", "s3cretpw")
	if err != nil {
		t.Fatal(err)
	}
	if tok == "" || logged.ID != u.ID {
		t.Fatalf("bad login result: tok=%q user=%+v", tok, logged)
	}

	// the token resolves back to the same user, once, at the boundary
	uid, err := svc.ResolveUserID(tok)
	if err != nil {
		t.Fatal(err)
	}
	if uid != u.ID {
		t.Fatalf("token resolved to %q, want %q", uid, u.ID)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := authSvc(t)

	if _, _, err := svc.Login("alice@shopfront.test", "wrongpass"); !errors.Is(err, services.ErrBadCreds) {
		t.Fatalf("want ErrBadCreds for wrong password, got %v", err)
	}
	if _, _, err := svc.Login("nobody@shopfront.test", "Passw0rd!"); !errors.Is(err, services.ErrBadCreds) {
		t.Fatalf("want ErrBadCreds for unknown email, got %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := authSvc(t)

	if _, err := svc.Register("alice@shopfront.test", "Imposter", "s3cretpw"); !errors.Is(err, repos.ErrEmailTaken) {
		t.Fatalf("want ErrEmailTaken, got %v", err)
	}
}

func TestResolveRejectsGarbageTokens(t *testing.T) {
	svc := authSvc(t)

	for _, tok := range []string{"", "not-a-token", "aaa.bbb.ccc"} {
		if _, err := svc.ResolveUserID(tok); !errors.Is(err, services.ErrNotAuthenticated) {
			t.Fatalf("token %q: want ErrNotAuthenticated, got %v", tok, err)
		}
	}
}

func TestResolveRejectsForeignSignature(t *testing.T) {
	svc := authSvc(t)
	other := services.NewAuthService(nil, "different-secret", time.Hour)

	tok, _, err := svc.Login("alice@shopfront.test", "Passw0rd!")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := other.ResolveUserID(tok); !errors.Is(err, services.ErrNotAuthenticated) {
		t.Fatalf("foreign-signed token must not resolve, got %v", err)
	}
}
