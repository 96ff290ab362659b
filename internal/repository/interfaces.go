// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/mindlog/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// ResolveByGoogleProfile はGoogleアカウント情報からユーザーを解決する。
	// google_subで既存ユーザーが見つかればname/picture_urlを更新して返す。
	// 同じemailのアカウントが既に存在する場合はgoogle_subを紐付ける（アカウントリンク）。
	// どちらも存在しない場合は新規作成する。google_subをキーとした原子的UPSERTで
	// 同時初回ログインの競合を防ぐ。
	ResolveByGoogleProfile(ctx context.Context, id string, profile model.GoogleProfile, now time.Time) (*model.User, error)
}

// LogRepository はウェルビーイング記録の永続化インターフェース。
// 記録は作成のみで、更新・削除は提供しない。
type LogRepository interface {
	// Create は記録を作成し、所有ユーザーをJOINした結果を返す。
	Create(ctx context.Context, log *model.Log) (*model.Log, error)

	// ListByUser はユーザーの記録を日付降順で最大365件返す。
	ListByUser(ctx context.Context, userID string) ([]*model.Log, error)

	// ExistsForDay は有効日時がdayの属する暦日（サーバーローカル）に
	// 収まる記録の有無を返す。
	ExistsForDay(ctx context.Context, userID string, day time.Time) (bool, error)
}
