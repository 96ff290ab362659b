package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/mindlog/internal/model"
)

const testClientID = "test-client.apps.googleusercontent.com"

// newTokenInfoServer はtokeninfoエンドポイントのモックサーバーを起動する。
func newTokenInfoServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

// newVerifier はモックサーバーに向けたGoogleVerifierを生成する。
func newVerifier(serverURL string) *GoogleVerifier {
	return NewGoogleVerifier(GoogleVerifierConfig{
		ClientID:     testClientID,
		TokenInfoURL: serverURL,
	})
}

// validTokenInfoBody は有効なtokeninfoレスポンスのJSONを生成する。
func validTokenInfoBody(aud, sub, email string) string {
	exp := time.Now().Add(1 * time.Hour).Unix()
	return fmt.Sprintf(`{"aud":%q,"sub":%q,"email":%q,"name":"Taro","picture":"https://example.com/p.png","exp":"%d"}`,
		aud, sub, email, exp)
}

// TestGoogleVerifier_Verify_Success は有効なトークンからプロフィールが抽出されることを検証する。
func TestGoogleVerifier_Verify_Success(t *testing.T) {
	server := newTokenInfoServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("id_token"); got != "valid-token" {
			t.Errorf("id_token = %q, want valid-token", got)
		}
		fmt.Fprint(w, validTokenInfoBody(testClientID, "sub-123", "taro@example.com"))
	})

	profile, err := newVerifier(server.URL).Verify(context.Background(), "valid-token")
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}

	if profile.Sub != "sub-123" {
		t.Errorf("Sub = %q, want sub-123", profile.Sub)
	}
	if profile.Email != "taro@example.com" {
		t.Errorf("Email = %q, want taro@example.com", profile.Email)
	}
	if profile.Name == nil || *profile.Name != "Taro" {
		t.Errorf("Name = %v, want Taro", profile.Name)
	}
	if profile.PictureURL == nil || *profile.PictureURL != "https://example.com/p.png" {
		t.Errorf("PictureURL = %v", profile.PictureURL)
	}
}

// TestGoogleVerifier_Verify_WrongAudience はaudience不一致がINVALID_CREDENTIALになることを検証する。
func TestGoogleVerifier_Verify_WrongAudience(t *testing.T) {
	server := newTokenInfoServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, validTokenInfoBody("other-client-id", "sub-123", "taro@example.com"))
	})

	_, err := newVerifier(server.URL).Verify(context.Background(), "token")
	assertInvalidCredential(t, err)
}

// TestGoogleVerifier_Verify_Malformed はtokeninfoの4xx応答がINVALID_CREDENTIALになることを検証する。
func TestGoogleVerifier_Verify_Malformed(t *testing.T) {
	server := newTokenInfoServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_token"}`, http.StatusBadRequest)
	})

	_, err := newVerifier(server.URL).Verify(context.Background(), "garbage")
	assertInvalidCredential(t, err)
}

// TestGoogleVerifier_Verify_Expired は有効期限切れトークンがINVALID_CREDENTIALになることを検証する。
func TestGoogleVerifier_Verify_Expired(t *testing.T) {
	server := newTokenInfoServer(t, func(w http.ResponseWriter, r *http.Request) {
		exp := time.Now().Add(-1 * time.Minute).Unix()
		fmt.Fprintf(w, `{"aud":%q,"sub":"sub-123","email":"taro@example.com","exp":"%d"}`, testClientID, exp)
	})

	_, err := newVerifier(server.URL).Verify(context.Background(), "token")
	assertInvalidCredential(t, err)
}

// TestGoogleVerifier_Verify_MissingClaims はsub/email欠落がINVALID_CREDENTIALになることを検証する。
func TestGoogleVerifier_Verify_MissingClaims(t *testing.T) {
	server := newTokenInfoServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, validTokenInfoBody(testClientID, "", "taro@example.com"))
	})

	_, err := newVerifier(server.URL).Verify(context.Background(), "token")
	assertInvalidCredential(t, err)
}

// TestGoogleVerifier_Verify_EmptyToken は空トークンが即座に拒否されることを検証する。
func TestGoogleVerifier_Verify_EmptyToken(t *testing.T) {
	server := newTokenInfoServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("tokeninfo endpoint should not be called for empty token")
	})

	_, err := newVerifier(server.URL).Verify(context.Background(), "")
	assertInvalidCredential(t, err)
}

// assertInvalidCredential はエラーがINVALID_CREDENTIALコードであることを検証する。
func assertInvalidCredential(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *model.APIError, got %T: %v", err, err)
	}
	if apiErr.Code != model.ErrCodeInvalidCredential {
		t.Errorf("Code = %q, want %q", apiErr.Code, model.ErrCodeInvalidCredential)
	}
}
