// Package oauth verifies tokens issued by Google and Facebook sign-in on
// the device and turns them into an Identity.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/atinyakov/FinWise/internal/models"
)

// Provider endpoints.
const (
	GoogleTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"
	FacebookGraphURL   = "https://graph.facebook.com/me"
)

// ErrInvalidToken is returned when the provider rejects the token or the
// token was not issued for this app.
var ErrInvalidToken = errors.New("invalid provider token")

// Identity is a verified external account.
type Identity struct {
	Provider string
	Subject  string
	Email    string
	Name     string
}

// Verifier checks a provider token.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

func defaultClient(c *http.Client) *http.Client {
	if c != nil {
		return c
	}
	return &http.Client{Timeout: 10 * time.Second}
}

// fetch GETs endpoint with query and returns the body of a 200 response.
func fetch(ctx context.Context, client *http.Client, endpoint string, query url.Values) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, resp.StatusCode, nil
}

// Google verifies ID tokens through Google's tokeninfo endpoint.
type Google struct {
	Client   *http.Client
	Endpoint string
	// ClientIDs are the accepted audiences. Empty accepts any audience.
	ClientIDs []string
}

// Verify implements Verifier.
func (g *Google) Verify(ctx context.Context, idToken string) (*Identity, error) {
	if strings.TrimSpace(idToken) == "" {
		return nil, ErrInvalidToken
	}
	endpoint := g.Endpoint
	if endpoint == "" {
		endpoint = GoogleTokenInfoURL
	}
	body, status, err := fetch(ctx, defaultClient(g.Client), endpoint, url.Values{"id_token": {idToken}})
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: google: %s", ErrInvalidToken, gjson.GetBytes(body, "error_description").String())
	}

	res := gjson.ParseBytes(body)
	if len(g.ClientIDs) > 0 && !slices.Contains(g.ClientIDs, res.Get("aud").String()) {
		return nil, fmt.Errorf("%w: google: unexpected audience", ErrInvalidToken)
	}
	// tokeninfo returns email_verified as the string "true".
	if !res.Get("email_verified").Bool() {
		return nil, fmt.Errorf("%w: google: email not verified", ErrInvalidToken)
	}
	id := &Identity{
		Provider: models.ProviderGoogle,
		Subject:  res.Get("sub").String(),
		Email:    res.Get("email").String(),
		Name:     res.Get("name").String(),
	}
	if id.Subject == "" || id.Email == "" {
		return nil, fmt.Errorf("%w: google: incomplete profile", ErrInvalidToken)
	}
	return id, nil
}

// Facebook verifies access tokens by reading the Graph API profile.
type Facebook struct {
	Client   *http.Client
	Endpoint string
}

// Verify implements Verifier.
func (f *Facebook) Verify(ctx context.Context, accessToken string) (*Identity, error) {
	if strings.TrimSpace(accessToken) == "" {
		return nil, ErrInvalidToken
	}
	endpoint := f.Endpoint
	if endpoint == "" {
		endpoint = FacebookGraphURL
	}
	body, status, err := fetch(ctx, defaultClient(f.Client), endpoint, url.Values{
		"fields":       {"id,name,email"},
		"access_token": {accessToken},
	})
	if err != nil {
		return nil, err
	}
	res := gjson.ParseBytes(body)
	if status != http.StatusOK || res.Get("error").Exists() {
		return nil, fmt.Errorf("%w: facebook: %s", ErrInvalidToken, res.Get("error.message").String())
	}

	id := &Identity{
		Provider: models.ProviderFacebook,
		Subject:  res.Get("id").String(),
		Email:    res.Get("email").String(),
		Name:     res.Get("name").String(),
	}
	if id.Subject == "" || id.Email == "" {
		return nil, fmt.Errorf("%w: facebook: email permission missing", ErrInvalidToken)
	}
	return id, nil
}
