package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/hitoshi/mindlog/internal/journal"
	"github.com/hitoshi/mindlog/internal/middleware"
	"github.com/hitoshi/mindlog/internal/model"
)

// JournalServiceInterface は記録ハンドラーが必要とするサービスインターフェース。
type JournalServiceInterface interface {
	// Create は記録を検証・永続化し、所有ユーザーをJOINした結果を返す。
	Create(ctx context.Context, userID string, input journal.CreateInput) (*model.Log, error)
	// List はユーザーの記録を日付降順で最大365件返す。
	List(ctx context.Context, userID string) ([]*model.Log, error)
	// HasLogForToday は指定日の暦日内に記録が存在するかを返す。
	HasLogForToday(ctx context.Context, userID string, date *time.Time) (bool, error)
}

// JournalHandler はウェルビーイング記録のHTTPハンドラー。
type JournalHandler struct {
	service JournalServiceInterface
}

// NewJournalHandler はJournalHandlerを生成する。
func NewJournalHandler(service JournalServiceInterface) *JournalHandler {
	return &JournalHandler{
		service: service,
	}
}

// todayResponse は当日記録有無のAPIレスポンス。
type todayResponse struct {
	HasLog bool `json:"hasLog"`
}

// ListLogs は認証済みユーザーの記録一覧を取得する。
// GET /logs
func (h *JournalHandler) ListLogs(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	logs, err := h.service.List(r.Context(), identity.UserID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	// 0件でも null ではなく [] を返す
	if logs == nil {
		logs = []*model.Log{}
	}
	writeJSON(w, http.StatusOK, logs)
}

// CreateLog は記録を作成する。
// POST /logs
func (h *JournalHandler) CreateLog(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var input journal.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	created, err := h.service.Create(r.Context(), identity.UserID, input)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// HasLogToday は当日（または?dateで指定した日）の記録有無を返す。
// GET /logs/today?date=2025-03-10
func (h *JournalHandler) HasLogToday(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.IdentityFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var date *time.Time
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := parseDateParam(raw)
		if err != nil {
			writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
			return
		}
		date = &parsed
	}

	hasLog, err := h.service.HasLogForToday(r.Context(), identity.UserID, date)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, todayResponse{HasLog: hasLog})
}

// parseDateParam はdateクエリパラメータを解釈する。
// RFC 3339形式（2025-03-10T12:00:00Z）と日付のみ（2025-03-10）を受け付ける。
// 日付のみの場合はサーバーローカルの暦日として扱う。
func parseDateParam(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02", raw, time.Local)
}
