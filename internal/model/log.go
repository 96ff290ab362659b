package model

import "time"

// Log は1日分のウェルビーイング記録を表す。
// 任意のスカラー項目は未入力（nil）とゼロ値を区別して保持する。
// 作成のみ可能で、更新・削除はサポートしない。
type Log struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`

	// Date は記録の有効日時。未指定の場合はサーバー時刻が入る。
	Date time.Time `json:"date"`

	Mood         *int     `json:"mood,omitempty"`         // 1〜10
	Anxiety      *int     `json:"anxiety,omitempty"`      // 0〜10
	SleepHours   *float64 `json:"sleepHours,omitempty"`   // 0〜24（小数可）
	SleepQuality *int     `json:"sleepQuality,omitempty"` // 0〜10
	ActivityType *string  `json:"activityType,omitempty"`
	ActivityMins *int     `json:"activityMins,omitempty"` // 0〜1440
	SocialCount  *int     `json:"socialCount,omitempty"`  // 0〜100
	Stress       *int     `json:"stress,omitempty"`       // 0〜10
	Symptoms     *string  `json:"symptoms,omitempty"`     // カンマ区切り（クライアント側で結合）
	Notes        *string  `json:"notes,omitempty"`

	CreatedAt time.Time `json:"createdAt"`

	// User は作成時のレスポンスにのみ含まれる所有ユーザー。
	User *User `json:"user,omitempty"`
}
