package utils_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iliyamo/studyroom-seat-reservation/internal/utils"
)

func TestNewAccessTokenRoundTrip(t *testing.T) {
	const secret = "test-secret"
	tok, err := utils.NewAccessToken(secret, 42, "STUDENT", 15)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	if time.Until(tok.Exp) <= 0 {
		t.Fatal("token already expired")
	}

	parsed, err := jwt.Parse(tok.Token, func(tk *jwt.Token) (interface{}, error) {
		if _, ok := tk.Method.(*jwt.SigningMethodHMAC); !ok {
			t.Fatalf("unexpected signing method %v", tk.Method)
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("parse: valid=%v err=%v", parsed != nil && parsed.Valid, err)
	}
	claims := parsed.Claims.(jwt.MapClaims)
	if claims["sub"] != float64(42) {
		t.Errorf("sub = %v, want 42", claims["sub"])
	}
	if claims["role"] != "STUDENT" {
		t.Errorf("role = %v, want STUDENT", claims["role"])
	}
}

func TestNewAccessTokenRejectsWrongSecret(t *testing.T) {
	tok, err := utils.NewAccessToken("right", 1, "ADMIN", 5)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	parsed, err := jwt.Parse(tok.Token, func(tk *jwt.Token) (interface{}, error) {
		return []byte("wrong"), nil
	})
	if err == nil && parsed.Valid {
		t.Fatal("token accepted with wrong secret")
	}
}

func TestRefreshTokenHashing(t *testing.T) {
	ref, err := utils.NewRefreshToken(7)
	if err != nil {
		t.Fatalf("NewRefreshToken: %v", err)
	}
	if len(ref.Raw) != 96 {
		t.Fatalf("raw length = %d, want 96 hex chars", len(ref.Raw))
	}
	if utils.HashRefreshRaw(ref.Raw) != utils.HashRefreshRaw(ref.Raw) {
		t.Fatal("hash is not deterministic")
	}

	other, _ := utils.NewRefreshToken(7)
	if ref.Raw == other.Raw {
		t.Fatal("two refresh tokens collided")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := utils.HashPassword("hunter22", 4)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !utils.VerifyPassword(hash, "hunter22") {
		t.Fatal("correct password rejected")
	}
	if utils.VerifyPassword(hash, "hunter23") {
		t.Fatal("wrong password accepted")
	}
}
