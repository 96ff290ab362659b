// Package journal はウェルビーイング記録の作成・閲覧機能を提供する。
package journal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/mindlog/internal/model"
	"github.com/hitoshi/mindlog/internal/repository"
	"github.com/hitoshi/mindlog/internal/security"
)

// Notifier は作成された記録をユーザーのルームへ配信するインターフェース。
// realtime.Hubの部分集合として定義する。
type Notifier interface {
	EmitNewLog(userID string, payload any) int
}

// CreationRecorder は記録作成とバリデーション拒否の観測先。
// metrics.Collectorの部分集合として定義する。
type CreationRecorder interface {
	RecordLogCreated()
	RecordValidationRejected()
}

// Service はウェルビーイング記録に関するビジネスロジックを提供する。
type Service struct {
	logRepo   repository.LogRepository
	notifier  Notifier
	sanitizer security.TextSanitizerService
	recorder  CreationRecorder
	now       func() time.Time
}

// NewService はServiceを生成する。recorderはnil可。
func NewService(logRepo repository.LogRepository, notifier Notifier, sanitizer security.TextSanitizerService, recorder CreationRecorder) *Service {
	return &Service{
		logRepo:   logRepo,
		notifier:  notifier,
		sanitizer: sanitizer,
		recorder:  recorder,
		now:       time.Now,
	}
}

// Create は記録を検証・永続化し、作成結果をユーザーの全接続に配信する。
//
// 処理順序: バリデーション → 永続化 → 配信。
// 永続化に失敗した場合は配信を行わず、リクエスト全体を失敗させる。
// 配信は同一ユーザーの他セッション向けのベストエフォートな複製であり、
// 失敗してもリクエストは成功のまま返る（HTTPレスポンスが信頼できる経路）。
//
// 同一日の2件目の作成は拒否しない。1日1件の方針はクライアント側で
// /logs/today を使って担保する（DESIGN.md参照）。
func (s *Service) Create(ctx context.Context, userID string, input CreateInput) (*model.Log, error) {
	// 1. バリデーション。違反項目をすべて集めて一度に返す。
	if fields := input.validate(); len(fields) > 0 {
		if s.recorder != nil {
			s.recorder.RecordValidationRejected()
		}
		return nil, model.NewValidationError(fields)
	}

	// 2. 有効日時のデフォルトはサーバー現在時刻
	date := s.now()
	if input.Date != nil {
		date = *input.Date
	}

	log := &model.Log{
		ID:           uuid.New().String(),
		UserID:       userID,
		Date:         date,
		Mood:         input.Mood,
		Anxiety:      input.Anxiety,
		SleepHours:   input.SleepHours,
		SleepQuality: input.SleepQuality,
		ActivityType: s.sanitizeField(input.ActivityType),
		ActivityMins: input.ActivityMins,
		SocialCount:  input.SocialCount,
		Stress:       input.Stress,
		Symptoms:     s.sanitizeField(input.Symptoms),
		Notes:        s.sanitizeField(input.Notes),
		CreatedAt:    s.now(),
	}

	// 3. 永続化。詳細はログのみに残し、クライアントには一般化したエラーを返す。
	created, err := s.logRepo.Create(ctx, log)
	if err != nil {
		slog.Error("failed to persist log", "user_id", userID, "error", err)
		return nil, model.NewStoreFailureError()
	}

	if s.recorder != nil {
		s.recorder.RecordLogCreated()
	}

	// 4. ベストエフォート配信
	s.notifier.EmitNewLog(userID, created)

	return created, nil
}

// List はユーザーの記録を日付降順で最大365件返す。
func (s *Service) List(ctx context.Context, userID string) ([]*model.Log, error) {
	logs, err := s.logRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list logs: %w", err)
	}
	return logs, nil
}

// HasLogForToday は指定日（省略時はサーバー現在時刻）の暦日内に
// 記録が存在するかを返す。
func (s *Service) HasLogForToday(ctx context.Context, userID string, date *time.Time) (bool, error) {
	ref := s.now()
	if date != nil {
		ref = *date
	}

	exists, err := s.logRepo.ExistsForDay(ctx, userID, ref)
	if err != nil {
		return false, fmt.Errorf("failed to check today's log: %w", err)
	}
	return exists, nil
}

// sanitizeField は自由記述項目をサニタイズする。nilはnilのまま返し、
// サニタイズ結果が空になった場合もnilにする（「入力なし」と区別しない）。
func (s *Service) sanitizeField(value *string) *string {
	if value == nil {
		return nil
	}
	cleaned := s.sanitizer.Sanitize(*value)
	if cleaned == "" {
		return nil
	}
	return &cleaned
}
