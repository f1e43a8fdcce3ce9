package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	githuboauth "golang.org/x/oauth2/github"

	"github.com/user/blog-platform/internal"
)

const oauthExchangeTimeout = 10 * time.Second

// OAuthProvider drives the external identity handshake: redirect URL
// generation, code exchange and profile retrieval.
type OAuthProvider struct {
	config  *oauth2.Config
	userURL string
}

func NewGitHubProvider(cfg internal.OAuthConfig) (*OAuthProvider, error) {
	if !cfg.GitHubEnabled() {
		return nil, errors.New("github oauth is not configured")
	}
	return &OAuthProvider{
		config: &oauth2.Config{
			ClientID:     cfg.GitHubClientID,
			ClientSecret: cfg.GitHubClientSecret,
			RedirectURL:  cfg.GitHubRedirectURL,
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     githuboauth.Endpoint,
		},
		userURL: "https://api.github.com/user",
	}, nil
}

// GenerateState produces the CSRF nonce carried through the handshake.
func GenerateState() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(buf), nil
}

// AuthCodeURL is where the caller is redirected to begin the handshake.
func (p *OAuthProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state)
}

// Exchange swaps an authorization code for an access token.
func (p *OAuthProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	ctx, cancel := context.WithTimeout(ctx, oauthExchangeTimeout)
	defer cancel()

	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code for token: %w", err)
	}
	return token, nil
}

// FetchProfile retrieves the provider account id and profile fields for
// the authenticated user.
func (p *OAuthProvider) FetchProfile(ctx context.Context, token *oauth2.Token) (*ProviderProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, oauthExchangeTimeout)
	defer cancel()

	client := p.config.Client(ctx, token)

	resp, err := client.Get(p.userURL)
	if err != nil {
		return nil, fmt.Errorf("fetch provider profile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("provider api returned status %d: %s", resp.StatusCode, string(body))
	}

	var data struct {
		ID        int64  `json:"id"`
		Login     string `json:"login"`
		Name      string `json:"name"`
		Email     string `json:"email"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode provider profile: %w", err)
	}

	email := data.Email
	if email == "" {
		email, err = p.fetchPrimaryEmail(ctx, client)
		if err != nil {
			return nil, err
		}
	}

	name := data.Name
	if name == "" {
		name = data.Login
	}

	return &ProviderProfile{
		ProviderID: fmt.Sprintf("%d", data.ID),
		Email:      email,
		Name:       name,
		AvatarURL:  data.AvatarURL,
	}, nil
}

// fetchPrimaryEmail covers accounts whose email is hidden on the public
// profile.
func (p *OAuthProvider) fetchPrimaryEmail(ctx context.Context, client *http.Client) (string, error) {
	resp, err := client.Get(p.userURL + "/emails")
	if err != nil {
		return "", fmt.Errorf("fetch provider emails: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("provider email api returned status %d", resp.StatusCode)
	}

	var emails []struct {
		Email    string `json:"email"`
		Primary  bool   `json:"primary"`
		Verified bool   `json:"verified"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&emails); err != nil {
		return "", fmt.Errorf("decode provider emails: %w", err)
	}

	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email, nil
		}
	}
	return "", errors.New("provider account has no verified primary email")
}
