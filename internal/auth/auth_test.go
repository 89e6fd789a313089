package auth

import (
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestPasswordHashing(t *testing.T) {
	a := New("test-secret", 60)

	hash, err := a.HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !a.CheckPassword(hash, "correct horse battery staple") {
		t.Error("correct password rejected")
	}
	if a.CheckPassword(hash, "wrong password") {
		t.Error("wrong password accepted")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	a := New("test-secret", 60)

	token, err := a.GenerateToken("usr_abc123", "marguerite")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := a.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID() != "usr_abc123" {
		t.Errorf("subject = %q, want usr_abc123", claims.UserID())
	}
	if claims.Handle != "marguerite" {
		t.Errorf("handle = %q, want marguerite", claims.Handle)
	}
}

func TestTokenWrongSecret(t *testing.T) {
	a := New("secret-one", 60)
	b := New("secret-two", 60)

	token, err := a.GenerateToken("usr_abc123", "marguerite")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := b.ValidateToken(token); err == nil {
		t.Error("token signed with another secret accepted")
	}
}

func TestForeignIssuerRejected(t *testing.T) {
	a := New("test-secret", 60)

	claims := Claims{
		Handle: "marguerite",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "usr_abc123",
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := a.ValidateToken(token); err == nil {
		t.Error("token with a foreign issuer accepted")
	}
}

func TestMissingSubjectRejected(t *testing.T) {
	a := New("test-secret", 60)

	claims := Claims{
		Handle: "marguerite",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := a.ValidateToken(token); err == nil {
		t.Error("token without a subject accepted")
	}
}

func TestExpiredToken(t *testing.T) {
	a := New("test-secret", -1)

	token, err := a.GenerateToken("usr_abc123", "marguerite")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := a.ValidateToken(token); err == nil {
		t.Error("expired token accepted")
	}
}

func TestExtractClaims(t *testing.T) {
	a := New("test-secret", 60)
	token, _ := a.GenerateToken("usr_abc123", "marguerite")

	t.Run("ValidBearer", func(t *testing.T) {
		r, _ := http.NewRequest("GET", "/", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		claims := a.ExtractClaims(r)
		if claims == nil || claims.UserID() != "usr_abc123" {
			t.Fatalf("claims = %+v, want usr_abc123", claims)
		}
	})

	t.Run("MissingHeader", func(t *testing.T) {
		r, _ := http.NewRequest("GET", "/", nil)
		if a.ExtractClaims(r) != nil {
			t.Error("expected nil claims without header")
		}
	})

	t.Run("MalformedHeader", func(t *testing.T) {
		r, _ := http.NewRequest("GET", "/", nil)
		r.Header.Set("Authorization", token)
		if a.ExtractClaims(r) != nil {
			t.Error("expected nil claims for non-bearer header")
		}
	})
}
