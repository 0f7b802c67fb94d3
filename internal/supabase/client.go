package supabase

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/imroc/req/v3"
	"github.com/signalix/otplogin/internal/auth"
	"github.com/signalix/otplogin/internal/model"
)

const (
	pathOtp    = "/auth/v1/otp"
	pathVerify = "/auth/v1/verify"
	pathUser   = "/auth/v1/user"
	pathLogout = "/auth/v1/logout"

	headerAPIKey = "apikey"
	userAgent    = "signalix-otplogin"
)

// Client talks to the GoTrue auth API of a Supabase project
type Client struct {
	client  *req.Client
	anonKey string
}

var (
	_ auth.OtpProvider   = (*Client)(nil)
	_ auth.SessionEnder  = (*Client)(nil)
	_ auth.TokenVerifier = (*Client)(nil)
)

// NewClient creates a client for the project at baseURL authenticated with the anon key
func NewClient(baseURL, anonKey string) *Client {
	c := req.C().
		SetBaseURL(baseURL).
		SetUserAgent(userAgent).
		SetCommonHeader(headerAPIKey, anonKey).
		SetCommonHeader("Accept", "application/json").
		SetJsonMarshal(json.Marshal).
		SetJsonUnmarshal(json.Unmarshal)

	return &Client{
		client:  c,
		anonKey: anonKey,
	}
}

// RequestOTP sends a one-time code to email, creating the user if needed
func (c *Client) RequestOTP(ctx context.Context, email string) error {
	var apiErr apiError
	res, err := c.client.R().
		SetContext(ctx).
		SetBearerAuthToken(c.anonKey).
		SetBody(&otpRequest{Email: email, CreateUser: true}).
		SetErrorResult(&apiErr).
		Post(pathOtp)

	return handleAPIError(res, err, &apiErr, "request otp")
}

// VerifyOTP exchanges the emailed code for a session
func (c *Client) VerifyOTP(ctx context.Context, email, token string) (*model.Session, error) {
	var resp sessionResponse
	var apiErr apiError
	res, err := c.client.R().
		SetContext(ctx).
		SetBearerAuthToken(c.anonKey).
		SetBody(&verifyRequest{Type: OtpType, Email: email, Token: token}).
		SetSuccessResult(&resp).
		SetErrorResult(&apiErr).
		Post(pathVerify)

	if err := handleAPIError(res, err, &apiErr, "verify otp"); err != nil {
		return nil, err
	}

	return resp.toModel(time.Now()), nil
}

// GetUser returns the user owning accessToken
func (c *Client) GetUser(ctx context.Context, accessToken string) (*model.User, error) {
	var resp userResponse
	var apiErr apiError
	res, err := c.client.R().
		SetContext(ctx).
		SetBearerAuthToken(accessToken).
		SetSuccessResult(&resp).
		SetErrorResult(&apiErr).
		Get(pathUser)

	if err := handleAPIError(res, err, &apiErr, "get user"); err != nil {
		return nil, err
	}
	if resp.ID == "" {
		return nil, fmt.Errorf("get user: empty user in response")
	}

	return &model.User{ID: resp.ID, Email: resp.Email}, nil
}

// VerifyAccessToken implements auth.TokenVerifier by asking the provider
func (c *Client) VerifyAccessToken(ctx context.Context, accessToken string) (*model.User, error) {
	return c.GetUser(ctx, accessToken)
}

// Logout revokes the session behind accessToken
func (c *Client) Logout(ctx context.Context, accessToken string) error {
	var apiErr apiError
	res, err := c.client.R().
		SetContext(ctx).
		SetBearerAuthToken(accessToken).
		SetErrorResult(&apiErr).
		Post(pathLogout)

	return handleAPIError(res, err, &apiErr, "logout")
}

// handleAPIError turns transport failures and error responses into errors.
// Error responses become *auth.ProviderError carrying the provider's message.
func handleAPIError(res *req.Response, requestErr error, apiErr *apiError, operation string) error {
	if requestErr != nil {
		return fmt.Errorf("http request error: %s: %w", operation, requestErr)
	}

	if res.IsErrorState() {
		msg := apiErr.message()
		if msg == "" {
			msg = http.StatusText(res.StatusCode)
		}
		return fmt.Errorf("%s: %w", operation, &auth.ProviderError{
			Status:  res.StatusCode,
			Code:    apiErr.code(),
			Message: msg,
		})
	}

	return nil
}
