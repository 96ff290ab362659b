package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/mindlog/internal/model"
)

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	user := &model.User{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, google_sub, email, name, picture_url, created_at, updated_at
		 FROM users WHERE id = $1`,
		id,
	).Scan(&user.ID, &user.GoogleSub, &user.Email, &user.Name, &user.PictureURL, &user.CreatedAt, &user.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}

	return user, nil
}

// ResolveByGoogleProfile はGoogleアカウント情報からユーザーを解決する。
//
// 処理順序:
//  1. 同じemailでgoogle_sub未設定（別sub）の既存行にsubを紐付ける（アカウントリンク）。
//  2. google_subをキーとした INSERT ... ON CONFLICT DO UPDATE で
//     新規作成または name/picture_url のリフレッシュを行う。
//
// どちらのステートメントも単体で原子的なため、同時初回ログインが
// 重複アカウントを生むことはない（emailのUNIQUE制約が最終防壁になる）。
func (r *PostgresUserRepo) ResolveByGoogleProfile(ctx context.Context, id string, profile model.GoogleProfile, now time.Time) (*model.User, error) {
	// 1. アカウントリンク: 既存のemail行にgoogle_subを付け替える
	_, err := r.db.ExecContext(ctx,
		`UPDATE users
		 SET google_sub = $1,
		     name = COALESCE($2, name),
		     picture_url = COALESCE($3, picture_url),
		     updated_at = $4
		 WHERE email = $5 AND google_sub <> $1`,
		profile.Sub, profile.Name, profile.PictureURL, now, profile.Email,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to link account by email: %w", err)
	}

	// 2. google_subキーの原子的UPSERT
	user := &model.User{}
	err = r.db.QueryRowContext(ctx,
		`INSERT INTO users (id, google_sub, email, name, picture_url, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $6)
		 ON CONFLICT (google_sub) DO UPDATE
		 SET name = COALESCE(EXCLUDED.name, users.name),
		     picture_url = COALESCE(EXCLUDED.picture_url, users.picture_url),
		     updated_at = EXCLUDED.updated_at
		 RETURNING id, google_sub, email, name, picture_url, created_at, updated_at`,
		id, profile.Sub, profile.Email, profile.Name, profile.PictureURL, now,
	).Scan(&user.ID, &user.GoogleSub, &user.Email, &user.Name, &user.PictureURL, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	return user, nil
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
