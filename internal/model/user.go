// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// GoogleのIDトークン検証に成功した初回ログイン時に自動作成される。
// このシステムからユーザーを削除することはない。
type User struct {
	ID         string    `json:"id"`
	GoogleSub  string    `json:"googleSub"`
	Email      string    `json:"email"`
	Name       *string   `json:"name,omitempty"`
	PictureURL *string   `json:"pictureUrl,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// GoogleProfile はIDトークンから抽出したGoogleアカウント情報を表す。
type GoogleProfile struct {
	Sub        string
	Email      string
	Name       *string
	PictureURL *string
}
