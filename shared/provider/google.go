package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

var (
	ErrInvalidGoogleAudience = errors.New("invalid google audience")
)

// Profile is the subset of a Google account used for sign-in linkage.
type Profile struct {
	GoogleID  string
	Email     string
	Name      string
	AvatarURL string
}

// GoogleOAuthProvider validates Google ID tokens issued for this
// application's client ID and resolves the account profile behind them.
type GoogleOAuthProvider struct {
	clientID string
}

// NewGoogleOAuthProvider creates a new GoogleOAuthProvider instance.
func NewGoogleOAuthProvider(clientID string) *GoogleOAuthProvider {
	return &GoogleOAuthProvider{clientID: clientID}
}

// ValidateIDToken checks the token against Google's tokeninfo endpoint.
// Tokens minted for another audience are rejected.
func (p *GoogleOAuthProvider) ValidateIDToken(ctx context.Context, idToken string) (*oauth2.Tokeninfo, error) {
	oauth2Service, err := oauth2.NewService(ctx, option.WithHTTPClient(&http.Client{}))
	if err != nil {
		return nil, err
	}

	tokenInfoCall := oauth2Service.Tokeninfo()
	tokenInfoCall.IdToken(idToken)
	tokenInfo, err := tokenInfoCall.Do()
	if err != nil {
		return nil, err
	}

	if tokenInfo.Audience != p.clientID {
		return nil, ErrInvalidGoogleAudience
	}

	return tokenInfo, nil
}

// ResolveProfile validates the token and fills in the display name and
// avatar from the userinfo endpoint. The tokeninfo response alone already
// carries everything linkage needs, so a userinfo failure is not fatal.
func (p *GoogleOAuthProvider) ResolveProfile(ctx context.Context, accessToken string) (*Profile, error) {
	tokenInfo, err := p.ValidateIDToken(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	profile := &Profile{
		GoogleID: tokenInfo.UserId,
		Email:    tokenInfo.Email,
	}

	userInfo, err := p.getUserInfo(ctx, accessToken)
	if err == nil {
		profile.Name = userInfo.Name
		profile.AvatarURL = userInfo.Picture
	}

	return profile, nil
}

func (p *GoogleOAuthProvider) getUserInfo(ctx context.Context, accessToken string) (*oauth2.Userinfo, error) {
	client := &http.Client{}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://www.googleapis.com/oauth2/v1/userinfo", nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("status code is not OK")
	}

	var userInfo oauth2.Userinfo
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		return nil, err
	}

	return &userInfo, nil
}
