package webex

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/gravitational/trace"

	"github.com/guestgate/guestgate/application/port/outbound"
	"github.com/guestgate/guestgate/domain/entity"
	"github.com/guestgate/guestgate/domain/valueobject"
)

const (
	accessTokenPath = "access_token"
	guestTokenPath  = "guests/token"

	maxConns = 10
)

// Config holds the settings of the service app on the platform.
type Config struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
}

// Client talks to the platform's OAuth and guest issuer endpoints.
type Client struct {
	client *resty.Client

	clientID     string
	clientSecret string
}

// AccessTokenResponse is the body of a successful refresh_token grant.
type AccessTokenResponse struct {
	AccessToken           string `json:"access_token"`
	ExpiresIn             int    `json:"expires_in"`
	RefreshToken          string `json:"refresh_token"`
	RefreshTokenExpiresIn int    `json:"refresh_token_expires_in"`
	TokenType             string `json:"token_type"`
}

// GuestTokenResponse is the body of a successful guest token request.
type GuestTokenResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int    `json:"expiresIn"`
}

// ErrorResult is the error body returned by the platform.
type ErrorResult struct {
	Message          string `json:"message"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	TrackingID       string `json:"trackingId"`
	Errors           []struct {
		Description string `json:"description"`
	} `json:"errors"`
}

func (e *ErrorResult) String() string {
	switch {
	case e == nil:
		return ""
	case e.Message != "":
		return e.Message
	case e.ErrorDescription != "":
		return e.ErrorDescription
	case e.Error != "":
		return e.Error
	}
	descriptions := make([]string, 0, len(e.Errors))
	for _, item := range e.Errors {
		descriptions = append(descriptions, item.Description)
	}
	return strings.Join(descriptions, ", ")
}

var (
	_ outbound.TokenRefresher    = (*Client)(nil)
	_ outbound.GuestTokenService = (*Client)(nil)
)

func NewClient(conf Config) *Client {
	client := resty.NewWithClient(&http.Client{
		Timeout: conf.Timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxConnsPerHost:     maxConns,
			MaxIdleConnsPerHost: maxConns,
		},
	}).
		SetBaseURL(conf.BaseURL).
		SetHeader("Accept", "application/json")

	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		req.SetError(&ErrorResult{})
		return nil
	})

	return &Client{
		client:       client,
		clientID:     conf.ClientID,
		clientSecret: conf.ClientSecret,
	}
}

// Refresh implements outbound.TokenRefresher.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*valueobject.TokenPair, error) {
	var result AccessTokenResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"grant_type":    "refresh_token",
			"refresh_token": refreshToken,
			"client_id":     c.clientID,
			"client_secret": c.clientSecret,
		}).
		SetResult(&result).
		Post(accessTokenPath)
	if err != nil {
		return nil, requestError(resp, err, "access token refresh")
	}
	if !resp.IsSuccess() {
		return nil, responseError(resp, "access token refresh")
	}
	if result.AccessToken == "" {
		return nil, trace.BadParameter("access token refresh: response has no access_token (status %d)", resp.StatusCode())
	}

	return valueobject.NewTokenPair(result.AccessToken, result.RefreshToken, result.ExpiresIn), nil
}

// CreateGuestToken implements outbound.GuestTokenService. An empty bearer is
// sent as-is and left for the platform to reject.
func (c *Client) CreateGuestToken(ctx context.Context, bearer string, identity valueobject.GuestIdentity) (*entity.GuestToken, error) {
	var result GuestTokenResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", "Bearer "+bearer).
		SetBody(identity).
		SetResult(&result).
		Post(guestTokenPath)
	if err != nil {
		return nil, requestError(resp, err, "guest token")
	}
	if !resp.IsSuccess() {
		return nil, responseError(resp, "guest token")
	}
	if result.AccessToken == "" {
		return nil, trace.BadParameter("guest token: response has no accessToken (status %d)", resp.StatusCode())
	}

	return &entity.GuestToken{
		AccessToken: result.AccessToken,
		ExpiresIn:   result.ExpiresIn,
	}, nil
}

// requestError separates transport failures from bodies resty could not decode.
func requestError(resp *resty.Response, err error, operation string) error {
	if resp != nil && resp.StatusCode() != 0 {
		return trace.Wrap(err, "%s: malformed response (status %d)", operation, resp.StatusCode())
	}
	return trace.ConnectionProblem(err, "%s request failed", operation)
}

func responseError(resp *resty.Response, operation string) error {
	message := ""
	if result, ok := resp.Error().(*ErrorResult); ok {
		message = result.String()
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode())
	}

	switch resp.StatusCode() {
	case http.StatusUnauthorized:
		return trace.AccessDenied("%s: http error code=%d, message=%s", operation, resp.StatusCode(), message)
	case http.StatusBadRequest:
		return trace.BadParameter("%s: http error code=%d, message=%s", operation, resp.StatusCode(), message)
	default:
		return trace.Errorf("%s: http error code=%d, message=%s", operation, resp.StatusCode(), message)
	}
}
