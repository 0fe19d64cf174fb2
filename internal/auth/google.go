package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
)

var (
	ErrInvalidGoogleToken = errors.New("invalid google token")
	ErrGoogleUnavailable  = errors.New("google sign-in is unavailable")
)

// GoogleProfile is the verified identity behind a Google access token.
type GoogleProfile struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	GivenName     string
	FamilyName    string
}

// GoogleVerifier exchanges an access token for the profile it belongs to.
type GoogleVerifier interface {
	Verify(ctx context.Context, accessToken string) (*GoogleProfile, error)
}

// GoogleUserInfoClient verifies tokens against Google's userinfo endpoint.
// When a client id is configured the token's audience is first checked
// against the tokeninfo endpoint, since userinfo does not report it.
type GoogleUserInfoClient struct {
	userInfoURL  string
	tokenInfoURL string
	clientID     string
	httpClient   *http.Client
}

// NewGoogleUserInfoClient creates a verifier. httpClient may be nil.
func NewGoogleUserInfoClient(userInfoURL, tokenInfoURL, clientID string, httpClient *http.Client) *GoogleUserInfoClient {
	return &GoogleUserInfoClient{
		userInfoURL:  userInfoURL,
		tokenInfoURL: tokenInfoURL,
		clientID:     clientID,
		httpClient:   httpClient,
	}
}

type googleUserInfo struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
}

type googleTokenInfo struct {
	Audience        string `json:"aud"`
	AuthorizedParty string `json:"azp"`
	Sub             string `json:"sub"`
}

func (g *GoogleUserInfoClient) Verify(ctx context.Context, accessToken string) (*GoogleProfile, error) {
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return nil, ErrInvalidGoogleToken
	}

	var subject string
	if g.clientID != "" {
		info, err := g.tokenInfo(ctx, accessToken)
		if err != nil {
			return nil, err
		}
		if info.Audience != g.clientID && info.AuthorizedParty != g.clientID {
			return nil, ErrInvalidGoogleToken
		}
		subject = info.Sub
	}

	if g.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, g.httpClient)
	}

	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))
	resp, err := client.Get(g.userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch user info: %v", ErrGoogleUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusBadRequest:
		return nil, ErrInvalidGoogleToken
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: unexpected status %d", ErrGoogleUnavailable, resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("%w: decode user info: %v", ErrGoogleUnavailable, err)
	}
	if info.Email == "" || !info.EmailVerified {
		return nil, ErrInvalidGoogleToken
	}
	if subject != "" && info.Sub != subject {
		return nil, ErrInvalidGoogleToken
	}

	return &GoogleProfile{
		Subject:       info.Sub,
		Email:         info.Email,
		EmailVerified: info.EmailVerified,
		Name:          info.Name,
		GivenName:     info.GivenName,
		FamilyName:    info.FamilyName,
	}, nil
}

func (g *GoogleUserInfoClient) tokenInfo(ctx context.Context, accessToken string) (*googleTokenInfo, error) {
	endpoint, err := url.Parse(g.tokenInfoURL)
	if err != nil {
		return nil, fmt.Errorf("%w: parse token info url: %v", ErrGoogleUnavailable, err)
	}
	query := endpoint.Query()
	query.Set("access_token", accessToken)
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build token info request: %v", ErrGoogleUnavailable, err)
	}
	client := g.httpClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch token info: %v", ErrGoogleUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusBadRequest:
		return nil, ErrInvalidGoogleToken
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: unexpected token info status %d", ErrGoogleUnavailable, resp.StatusCode)
	}

	var info googleTokenInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("%w: decode token info: %v", ErrGoogleUnavailable, err)
	}
	return &info, nil
}
