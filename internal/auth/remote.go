package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// RemoteVerifier asks the auth provider who owns a token
// (GET {baseURL}/auth/v1/user). Used when no signing secret is configured.
type RemoteVerifier struct {
	baseURL string
	apiKey  string
	http    *resty.Client
}

func NewRemoteVerifier(baseURL, apiKey string, timeout time.Duration) *RemoteVerifier {
	c := resty.New().SetTimeout(timeout)
	return &RemoteVerifier{baseURL: baseURL, apiKey: apiKey, http: c}
}

type providerUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (v *RemoteVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	var user providerUser
	resp, err := v.http.R().SetContext(ctx).
		SetHeader("Authorization", "Bearer "+token).
		SetHeader("apikey", v.apiKey).
		SetResult(&user).
		Get(v.baseURL + "/auth/v1/user")
	if err != nil {
		return nil, fmt.Errorf("%w: auth provider request failed: %v", ErrInvalidToken, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: auth provider returned %s", ErrInvalidToken, resp.Status())
	}
	if user.ID == "" {
		return nil, fmt.Errorf("%w: auth provider returned no user", ErrInvalidToken)
	}

	return &Identity{
		UserID: user.ID,
		Email:  user.Email,
		Role:   roleOrDefault(user.Role),
		Token:  token,
	}, nil
}
