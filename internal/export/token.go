package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

var ErrNoAccessToken = errors.New("port auth response carried no access token")

// portTokenSource implements oauth2.TokenSource against Port's JSON
// client-credentials endpoint. Wrap it in oauth2.ReuseTokenSource so tokens
// are fetched once and reused until close to expiry.
type portTokenSource struct {
	ctx          context.Context
	authURL      string
	clientID     string
	clientSecret string
	client       *http.Client
}

func newTokenSource(ctx context.Context, authURL, clientID, clientSecret string, client *http.Client) oauth2.TokenSource {
	src := &portTokenSource{
		ctx:          ctx,
		authURL:      authURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		client:       client,
	}
	return oauth2.ReuseTokenSource(nil, src)
}

func (s *portTokenSource) Token() (*oauth2.Token, error) {
	body, err := json.Marshal(map[string]string{
		"clientId":     s.clientID,
		"clientSecret": s.clientSecret,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(s.ctx, http.MethodPost, s.authURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request port token: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("request port token: status %d", resp.StatusCode)
	}

	var payload struct {
		AccessToken      string `json:"accessToken"`
		AccessTokenSnake string `json:"access_token"`
		ExpiresIn        int64  `json:"expiresIn"`
		TokenType        string `json:"tokenType"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode port token: %w", err)
	}

	token := payload.AccessToken
	if token == "" {
		token = payload.AccessTokenSnake
	}
	if token == "" {
		return nil, ErrNoAccessToken
	}

	expiresIn := payload.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = 3600
	}
	return &oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
		Expiry:      time.Now().Add(time.Duration(expiresIn) * time.Second),
	}, nil
}
