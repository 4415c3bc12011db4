// Package oauth 提供外部身份提供商的 OAuth2 客户端
package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/oauth2"

	"shop-copy-ai-api/internal/config"
)

var tracer = otel.Tracer("oauth")

// Userinfo 身份提供商返回的用户信息
type Userinfo struct {
	Sub   string `json:"sub"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Client OAuth2 客户端
type Client struct {
	oauth       *oauth2.Config
	userinfoURL string
	httpClient  *http.Client
}

// NewClient 创建 OAuth2 客户端
func NewClient(cfg *config.OAuthConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthURL,
				TokenURL: cfg.TokenURL,
			},
		},
		userinfoURL: cfg.UserinfoURL,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

// AuthCodeURL 构造授权跳转地址，state 携带店铺 ID
func (c *Client) AuthCodeURL(state string) string {
	return c.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange 用授权码换取访问令牌
func (c *Client) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	ctx, span := tracer.Start(ctx, "oauth.Exchange")
	defer span.End()

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	token, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}
	return token, nil
}

// VerifyToken 向身份提供商校验访问令牌。
// 返回值：(用户信息, 提供商是否明确拒绝, 错误)。
// 网络层故障不视为拒绝，由调用方决定降级策略。
func (c *Client) VerifyToken(ctx context.Context, accessToken string) (*Userinfo, bool, error) {
	ctx, span := tracer.Start(ctx, "oauth.VerifyToken")
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userinfoURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to build userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		return nil, false, fmt.Errorf("userinfo request failed: %w", err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("oauth.userinfo_status", resp.StatusCode))

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, true, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("userinfo returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read userinfo response: %w", err)
	}

	var info Userinfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, false, fmt.Errorf("failed to parse userinfo response: %w", err)
	}
	return &info, false, nil
}
