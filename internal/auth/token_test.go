package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/hitoshi/mindlog/internal/model"
)

// TestTokenIssuer_IssueAndVerify は発行したトークンが検証を通ることを検証する。
func TestTokenIssuer_IssueAndVerify(t *testing.T) {
	issuer := NewTokenIssuer([]byte("secret"), 7*24*time.Hour)

	token, err := issuer.Issue("user-1", "taro@example.com")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	claims, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("UserID = %q, want user-1", claims.UserID)
	}
	if claims.Email != "taro@example.com" {
		t.Errorf("Email = %q, want taro@example.com", claims.Email)
	}
}

// TestTokenIssuer_Verify_WrongSecret は別の秘密鍵で署名されたトークンが拒否されることを検証する。
func TestTokenIssuer_Verify_WrongSecret(t *testing.T) {
	issuer := NewTokenIssuer([]byte("secret-a"), time.Hour)
	other := NewTokenIssuer([]byte("secret-b"), time.Hour)

	token, err := other.Issue("user-1", "taro@example.com")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	_, err = issuer.Verify(token)
	assertUnauthorized(t, err)
}

// TestTokenIssuer_Verify_Expired は期限切れトークンが拒否されることを検証する。
func TestTokenIssuer_Verify_Expired(t *testing.T) {
	issuer := NewTokenIssuer([]byte("secret"), time.Hour)

	// 発行時刻を8日前に固定してトークンを作る
	issuer.now = func() time.Time { return time.Now().Add(-8 * 24 * time.Hour) }
	token, err := issuer.Issue("user-1", "taro@example.com")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	issuer.now = time.Now
	_, err = issuer.Verify(token)
	assertUnauthorized(t, err)
}

// TestTokenIssuer_Verify_Malformed は不正な文字列が拒否されることを検証する。
func TestTokenIssuer_Verify_Malformed(t *testing.T) {
	issuer := NewTokenIssuer([]byte("secret"), time.Hour)

	for _, tokenString := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := issuer.Verify(tokenString); err == nil {
			t.Errorf("Verify(%q) succeeded, want error", tokenString)
		}
	}
}

// assertUnauthorized はエラーがUNAUTHORIZEDコードであることを検証する。
func assertUnauthorized(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *model.APIError, got %T: %v", err, err)
	}
	if apiErr.Code != model.ErrCodeUnauthorized {
		t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeUnauthorized)
	}
}
