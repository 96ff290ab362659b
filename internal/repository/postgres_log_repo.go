package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/mindlog/internal/model"
)

// maxLogsPerList は1回の一覧取得で返す記録の上限件数。
// これ以上のページネーションは提供しない。
const maxLogsPerList = 365

// PostgresLogRepo はPostgreSQLを使用したウェルビーイング記録リポジトリ。
type PostgresLogRepo struct {
	db *sql.DB
}

// NewPostgresLogRepo はPostgresLogRepoを生成する。
func NewPostgresLogRepo(db *sql.DB) *PostgresLogRepo {
	return &PostgresLogRepo{db: db}
}

// Create は記録を作成し、所有ユーザーをJOINした結果を返す。
// 未入力の任意項目はNULLとして保存する（ゼロ値には変換しない）。
func (r *PostgresLogRepo) Create(ctx context.Context, log *model.Log) (*model.Log, error) {
	created := &model.Log{User: &model.User{}}
	err := r.db.QueryRowContext(ctx,
		`WITH inserted AS (
		     INSERT INTO logs (id, user_id, date, mood, anxiety, sleep_hours, sleep_quality,
		                       activity_type, activity_mins, social_count, stress, symptoms, notes, created_at)
		     VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		     RETURNING *
		 )
		 SELECT i.id, i.user_id, i.date, i.mood, i.anxiety, i.sleep_hours, i.sleep_quality,
		        i.activity_type, i.activity_mins, i.social_count, i.stress, i.symptoms, i.notes, i.created_at,
		        u.id, u.google_sub, u.email, u.name, u.picture_url, u.created_at, u.updated_at
		 FROM inserted i
		 JOIN users u ON u.id = i.user_id`,
		log.ID, log.UserID, log.Date, log.Mood, log.Anxiety, log.SleepHours, log.SleepQuality,
		log.ActivityType, log.ActivityMins, log.SocialCount, log.Stress, log.Symptoms, log.Notes, log.CreatedAt,
	).Scan(
		&created.ID, &created.UserID, &created.Date, &created.Mood, &created.Anxiety,
		&created.SleepHours, &created.SleepQuality, &created.ActivityType, &created.ActivityMins,
		&created.SocialCount, &created.Stress, &created.Symptoms, &created.Notes, &created.CreatedAt,
		&created.User.ID, &created.User.GoogleSub, &created.User.Email, &created.User.Name,
		&created.User.PictureURL, &created.User.CreatedAt, &created.User.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert log: %w", err)
	}

	return created, nil
}

// ListByUser はユーザーの記録を日付降順で最大365件返す。
// 他ユーザーの記録が混入することはない。
func (r *PostgresLogRepo) ListByUser(ctx context.Context, userID string) ([]*model.Log, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, date, mood, anxiety, sleep_hours, sleep_quality,
		        activity_type, activity_mins, social_count, stress, symptoms, notes, created_at
		 FROM logs
		 WHERE user_id = $1
		 ORDER BY date DESC
		 LIMIT $2`,
		userID, maxLogsPerList,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list logs: %w", err)
	}
	defer rows.Close()

	logs := []*model.Log{}
	for rows.Next() {
		log := &model.Log{}
		if err := rows.Scan(
			&log.ID, &log.UserID, &log.Date, &log.Mood, &log.Anxiety,
			&log.SleepHours, &log.SleepQuality, &log.ActivityType, &log.ActivityMins,
			&log.SocialCount, &log.Stress, &log.Symptoms, &log.Notes, &log.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan log: %w", err)
		}
		logs = append(logs, log)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate logs: %w", err)
	}

	return logs, nil
}

// ExistsForDay は有効日時がdayの属する暦日（サーバーローカル）に収まる
// 記録の有無を返す。区間は[start-of-day, end-of-day]の両端を含む。
func (r *PostgresLogRepo) ExistsForDay(ctx context.Context, userID string, day time.Time) (bool, error) {
	start, end := DayBounds(day)

	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (
		     SELECT 1 FROM logs
		     WHERE user_id = $1 AND date >= $2 AND date <= $3
		 )`,
		userID, start, end,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check log existence: %w", err)
	}

	return exists, nil
}

// DayBounds は指定時刻が属する暦日の開始時刻と終了時刻を返す。
// 終了時刻は翌日0時の1ナノ秒前（その日の最終瞬間）。
func DayBounds(t time.Time) (start, end time.Time) {
	start = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	end = start.AddDate(0, 0, 1).Add(-time.Nanosecond)
	return start, end
}

// compile-time interface check
var _ LogRepository = (*PostgresLogRepo)(nil)
