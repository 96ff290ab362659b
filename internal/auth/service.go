package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/mindlog/internal/model"
	"github.com/hitoshi/mindlog/internal/repository"
)

// IdentityVerifier はIDトークンを検証しアカウント情報を返すインターフェース。
type IdentityVerifier interface {
	Verify(ctx context.Context, idToken string) (*model.GoogleProfile, error)
}

// LoginRecorder はログイン成否の観測先。metrics.Collectorの部分集合として定義する。
type LoginRecorder interface {
	RecordLoginSuccess()
	RecordLoginFailure()
}

// LoginResult はログイン成功時の結果。
type LoginResult struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	verifier IdentityVerifier
	userRepo repository.UserRepository
	issuer   *TokenIssuer
	recorder LoginRecorder
}

// NewService はServiceを生成する。
func NewService(verifier IdentityVerifier, userRepo repository.UserRepository, issuer *TokenIssuer) *Service {
	return &Service{
		verifier: verifier,
		userRepo: userRepo,
		issuer:   issuer,
	}
}

// WithLoginRecorder はログイン成否の観測先を設定したServiceを返す。
func (s *Service) WithLoginRecorder(recorder LoginRecorder) *Service {
	s.recorder = recorder
	return s
}

// LoginWithGoogle はGoogle IDトークンを検証し、ユーザーを解決して
// セッショントークンを発行する。
// 初回ログインではユーザーを自動作成し、再ログインではname/picture_urlを
// リフレッシュして同じユーザーを返す（冪等）。
func (s *Service) LoginWithGoogle(ctx context.Context, idToken string) (*LoginResult, error) {
	// 1. IDトークンの検証
	profile, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		if s.recorder != nil {
			s.recorder.RecordLoginFailure()
		}
		return nil, err
	}

	// 2. ユーザーの解決（UPSERT + アカウントリンク）
	user, err := s.userRepo.ResolveByGoogleProfile(ctx, uuid.New().String(), *profile, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}

	// 3. セッショントークンの発行
	token, err := s.issuer.Issue(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session token: %w", err)
	}

	if s.recorder != nil {
		s.recorder.RecordLoginSuccess()
	}

	slog.Info("user logged in",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return &LoginResult{Token: token, User: user}, nil
}

// GetCurrentUser は認証済みユーザーIDからユーザー情報を取得する。
func (s *Service) GetCurrentUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewNotFoundError(userID)
	}

	return user, nil
}
