package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hitoshi/mindlog/internal/model"
)

// Claims はセッショントークンの内容。
// 標準クレームに加えてユーザーIDとemailを含む。
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
	Email  string `json:"email"`
}

// TokenIssuer はHS256署名のセッショントークンを発行・検証する。
// トークンはサーバー側に保存されず、有効性は署名と有効期限のみで決まる。
// このため期限前の失効はサポートしない。
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer はTokenIssuerを生成する。
func NewTokenIssuer(secret []byte, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: secret, ttl: ttl, now: time.Now}
}

// Issue はユーザーIDとemailを含む署名済みトークンを発行する。
// サーバーの秘密鍵・時刻・入力のみに依存する純粋な処理で、副作用はない。
func (i *TokenIssuer) Issue(userID, email string) (string, error) {
	now := i.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
		UserID: userID,
		Email:  email,
	})

	return token.SignedString(i.secret)
}

// Verify はトークンの署名と有効期限を検証し、クレームを返す。
// 不正・期限切れトークンはUNAUTHORIZEDエラーになる。
func (i *TokenIssuer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}), jwt.WithTimeFunc(i.now))
	if err != nil {
		return nil, model.NewUnauthorizedError()
	}

	if !token.Valid || claims.UserID == "" {
		return nil, model.NewUnauthorizedError()
	}

	return claims, nil
}
