package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// OAuthGoogle implements GoogleIdentity against Google's OAuth endpoints.
type OAuthGoogle struct {
	config *oauth2.Config
}

// NewOAuthGoogle constructs the exchanger. Returns nil when the client
// id is empty so callers can treat Google sign-in as unconfigured.
func NewOAuthGoogle(clientID, clientSecret, redirectURL string) *OAuthGoogle {
	if clientID == "" {
		return nil
	}
	return &OAuthGoogle{config: &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint:     google.Endpoint,
	}}
}

// Exchange implements GoogleIdentity.
func (g *OAuthGoogle) Exchange(ctx context.Context, code string) (GoogleProfile, error) {
	token, err := g.config.Exchange(ctx, code)
	if err != nil {
		return GoogleProfile{}, fmt.Errorf("exchange code: %w", err)
	}

	resp, err := g.config.Client(ctx, token).Get(googleUserinfoURL)
	if err != nil {
		return GoogleProfile{}, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return GoogleProfile{}, fmt.Errorf("userinfo status %d", resp.StatusCode)
	}

	var info struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return GoogleProfile{}, fmt.Errorf("decode userinfo: %w", err)
	}
	if info.ID == "" || info.Email == "" {
		return GoogleProfile{}, fmt.Errorf("incomplete userinfo")
	}
	return GoogleProfile{Subject: info.ID, Email: info.Email, Name: info.Name}, nil
}
