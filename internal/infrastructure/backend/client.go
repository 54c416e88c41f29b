package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"clinic-console/config"
	"clinic-console/internal/converter"
	"clinic-console/internal/delivery/dto"
	"clinic-console/internal/domain/entity"
	"clinic-console/pkg/validator"

	"github.com/sirupsen/logrus"
)

const searchPath = "/api/v1/appointments/search"

// maxErrorBody caps how much of a failed response is kept in a StatusError
const maxErrorBody = 4 << 10

var (
	ErrMalformedResponse = errors.New("malformed appointment response")
	ErrMissingToken      = errors.New("missing access token")
)

// StatusError is returned for every non-2xx response from the backend
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend responded %d", e.StatusCode)
	}
	return fmt.Sprintf("backend responded %d: %s", e.StatusCode, e.Message)
}

// HTTPStatus exposes the response status for error classification
func (e *StatusError) HTTPStatus() int {
	return e.StatusCode
}

type tokenKey struct{}

// ContextWithToken attaches the caller's bearer token to outgoing backend calls
func ContextWithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext returns the token set by ContextWithToken, or ""
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// envelope mirrors response.Response with the payload left undecoded
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Client talks to the appointment query endpoint
type Client struct {
	baseURL    string
	httpClient *http.Client
	validator  *validator.CustomValidator
	log        *logrus.Logger
}

func NewClient(cfg config.BackendConfig, v *validator.CustomValidator, log *logrus.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		validator: v,
		log:       log,
	}
}

// SearchAppointments posts one page request and returns the validated page.
// The bearer token is taken from ctx (see ContextWithToken).
func (c *Client) SearchAppointments(ctx context.Context, req *dto.AppointmentSearchRequest) (*entity.AppointmentPage, error) {
	token := TokenFromContext(ctx)
	if token == "" {
		return nil, ErrMissingToken
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode search request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+searchPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to call appointment search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		statusErr := &StatusError{StatusCode: resp.StatusCode}
		var env envelope
		if json.Unmarshal(body, &env) == nil && env.Message != "" {
			statusErr.Message = env.Message
		}
		c.log.Debugf("Appointment search responded %d", resp.StatusCode)
		return nil, statusErr
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if !env.Success || len(env.Data) == 0 {
		return nil, fmt.Errorf("%w: unsuccessful envelope: %s", ErrMalformedResponse, env.Message)
	}

	var page dto.AppointmentPageResponse
	if err := json.Unmarshal(env.Data, &page); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if err := c.validator.Validate(&page); err != nil {
		c.log.Warnf("Rejected appointment page: %v", c.validator.FormatValidationErrors(err))
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	return converter.PageResponseToEntity(&page), nil
}
