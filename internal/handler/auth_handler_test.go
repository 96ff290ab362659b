package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/mindlog/internal/auth"
	"github.com/hitoshi/mindlog/internal/middleware"
	"github.com/hitoshi/mindlog/internal/model"
)

// mockAuthService はAuthServiceInterfaceのモック実装。
type mockAuthService struct {
	loginWithGoogleFunc func(ctx context.Context, idToken string) (*auth.LoginResult, error)
	getCurrentUserFunc  func(ctx context.Context, userID string) (*model.User, error)
}

func (m *mockAuthService) LoginWithGoogle(ctx context.Context, idToken string) (*auth.LoginResult, error) {
	return m.loginWithGoogleFunc(ctx, idToken)
}

func (m *mockAuthService) GetCurrentUser(ctx context.Context, userID string) (*model.User, error) {
	return m.getCurrentUserFunc(ctx, userID)
}

func decodeErrorBody(t *testing.T, rec *httptest.ResponseRecorder) middleware.ErrorResponseBody {
	t.Helper()
	var body middleware.ErrorResponseBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	return body
}

func TestAuthHandler_LoginWithGoogle(t *testing.T) {
	t.Run("正常系: トークンとユーザーが返る", func(t *testing.T) {
		service := &mockAuthService{
			loginWithGoogleFunc: func(ctx context.Context, idToken string) (*auth.LoginResult, error) {
				if idToken != "valid-id-token" {
					t.Errorf("expected valid-id-token, got %s", idToken)
				}
				return &auth.LoginResult{
					Token: "session-token",
					User:  &model.User{ID: "user-1", Email: "taro@example.com"},
				}, nil
			},
		}
		h := NewAuthHandler(service)

		req := httptest.NewRequest(http.MethodPost, "/auth/google", strings.NewReader(`{"idToken":"valid-id-token"}`))
		rec := httptest.NewRecorder()
		h.LoginWithGoogle(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var result auth.LoginResult
		if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if result.Token != "session-token" {
			t.Errorf("expected session-token, got %s", result.Token)
		}
		if result.User == nil || result.User.Email != "taro@example.com" {
			t.Errorf("expected user in response, got %+v", result.User)
		}
	})

	t.Run("異常系: 不正なJSONは400", func(t *testing.T) {
		h := NewAuthHandler(&mockAuthService{})

		req := httptest.NewRequest(http.MethodPost, "/auth/google", strings.NewReader("{invalid"))
		rec := httptest.NewRecorder()
		h.LoginWithGoogle(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if body := decodeErrorBody(t, rec); body.Code != model.ErrCodeInvalidRequest {
			t.Errorf("expected %s, got %s", model.ErrCodeInvalidRequest, body.Code)
		}
	})

	t.Run("異常系: IDトークン検証失敗は401", func(t *testing.T) {
		service := &mockAuthService{
			loginWithGoogleFunc: func(ctx context.Context, idToken string) (*auth.LoginResult, error) {
				return nil, model.NewInvalidCredentialError("audience mismatch")
			},
		}
		h := NewAuthHandler(service)

		req := httptest.NewRequest(http.MethodPost, "/auth/google", strings.NewReader(`{"idToken":"bad"}`))
		rec := httptest.NewRecorder()
		h.LoginWithGoogle(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		if body := decodeErrorBody(t, rec); body.Code != model.ErrCodeInvalidCredential {
			t.Errorf("expected %s, got %s", model.ErrCodeInvalidCredential, body.Code)
		}
	})

	t.Run("異常系: サービス層の想定外エラーは500", func(t *testing.T) {
		service := &mockAuthService{
			loginWithGoogleFunc: func(ctx context.Context, idToken string) (*auth.LoginResult, error) {
				return nil, context.DeadlineExceeded
			},
		}
		h := NewAuthHandler(service)

		req := httptest.NewRequest(http.MethodPost, "/auth/google", strings.NewReader(`{"idToken":"x"}`))
		rec := httptest.NewRecorder()
		h.LoginWithGoogle(rec, req)

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", rec.Code)
		}
	})
}

func TestAuthHandler_Me(t *testing.T) {
	t.Run("正常系: 自身のユーザー情報が返る", func(t *testing.T) {
		service := &mockAuthService{
			getCurrentUserFunc: func(ctx context.Context, userID string) (*model.User, error) {
				if userID != "user-1" {
					t.Errorf("expected user-1, got %s", userID)
				}
				return &model.User{ID: "user-1", Email: "taro@example.com"}, nil
			},
		}
		h := NewAuthHandler(service)

		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		ctx := middleware.ContextWithIdentity(req.Context(), middleware.Identity{UserID: "user-1", Email: "taro@example.com"})
		rec := httptest.NewRecorder()
		h.Me(rec, req.WithContext(ctx))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var user model.User
		if err := json.NewDecoder(rec.Body).Decode(&user); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if user.ID != "user-1" {
			t.Errorf("expected user-1, got %s", user.ID)
		}
	})

	t.Run("異常系: 未認証コンテキストは401", func(t *testing.T) {
		h := NewAuthHandler(&mockAuthService{})

		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		rec := httptest.NewRecorder()
		h.Me(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("異常系: ユーザーが存在しない場合は404", func(t *testing.T) {
		service := &mockAuthService{
			getCurrentUserFunc: func(ctx context.Context, userID string) (*model.User, error) {
				return nil, model.NewNotFoundError(userID)
			},
		}
		h := NewAuthHandler(service)

		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		ctx := middleware.ContextWithIdentity(req.Context(), middleware.Identity{UserID: "ghost"})
		rec := httptest.NewRecorder()
		h.Me(rec, req.WithContext(ctx))

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}
