// Package auth はGoogle IDトークン検証とセッショントークン発行を提供する。
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hitoshi/mindlog/internal/model"
)

const defaultGoogleTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

// GoogleVerifierConfig はGoogle IDトークン検証の設定。
type GoogleVerifierConfig struct {
	ClientID string

	// テスト用にオーバーライド可能なURL
	TokenInfoURL string
}

// GoogleVerifier はGoogleのtokeninfoエンドポイントでIDトークンを検証する。
// 署名検証はGoogle側で行われ、こちらでは audience と有効期限を確認する。
type GoogleVerifier struct {
	config GoogleVerifierConfig
	now    func() time.Time
}

// NewGoogleVerifier はGoogleVerifierを生成する。
func NewGoogleVerifier(config GoogleVerifierConfig) *GoogleVerifier {
	if config.TokenInfoURL == "" {
		config.TokenInfoURL = defaultGoogleTokenInfoURL
	}
	return &GoogleVerifier{config: config, now: time.Now}
}

// tokenInfoResponse はtokeninfoエンドポイントのレスポンス。
// 数値フィールドは文字列として返される。
type tokenInfoResponse struct {
	Aud     string `json:"aud"`
	Sub     string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
	Exp     string `json:"exp"`
}

// Verify はIDトークンを検証し、Googleアカウント情報を返す。
// トークンが不正・期限切れ・audience不一致・sub/email欠落の場合は
// INVALID_CREDENTIALエラーを返す。呼び出し側はこれを認証失敗（401相当）として
// 扱い、自動リトライしてはならない。
func (v *GoogleVerifier) Verify(ctx context.Context, idToken string) (*model.GoogleProfile, error) {
	if idToken == "" {
		return nil, model.NewInvalidCredentialError("IDトークンが指定されていません")
	}

	info, err := v.fetchTokenInfo(ctx, idToken)
	if err != nil {
		return nil, err
	}

	if info.Aud != v.config.ClientID {
		return nil, model.NewInvalidCredentialError("audienceが一致しません")
	}

	if exp, err := strconv.ParseInt(info.Exp, 10, 64); err != nil || !v.now().Before(time.Unix(exp, 0)) {
		return nil, model.NewInvalidCredentialError("トークンの有効期限が切れています")
	}

	if info.Sub == "" || info.Email == "" {
		return nil, model.NewInvalidCredentialError("必須クレーム（sub, email）が欠落しています")
	}

	profile := &model.GoogleProfile{
		Sub:   info.Sub,
		Email: info.Email,
	}
	if info.Name != "" {
		profile.Name = &info.Name
	}
	if info.Picture != "" {
		profile.PictureURL = &info.Picture
	}

	return profile, nil
}

// fetchTokenInfo はtokeninfoエンドポイントにIDトークンを問い合わせる。
func (v *GoogleVerifier) fetchTokenInfo(ctx context.Context, idToken string) (*tokenInfoResponse, error) {
	reqURL := v.config.TokenInfoURL + "?" + url.Values{"id_token": {idToken}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create tokeninfo request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tokeninfo request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read tokeninfo response: %w", err)
	}

	// tokeninfoは不正・期限切れトークンに4xxを返す
	if resp.StatusCode != http.StatusOK {
		return nil, model.NewInvalidCredentialError("IDトークンの検証に失敗しました")
	}

	var info tokenInfoResponse
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("failed to parse tokeninfo response: %w", err)
	}

	return &info, nil
}
