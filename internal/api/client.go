package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dev-catena/lacos-sub000/internal/models"
	"github.com/dev-catena/lacos-sub000/internal/utils"
)

// Client talks to the caregiving backend. It holds no session state; the
// bearer token is passed on every authenticated call.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new API client
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
		logger: slog.Default().With("component", "api"),
	}
}

// Login calls POST /login. A reply with requires_2fa set carries no token.
func (c *Client) Login(ctx context.Context, identifier, secret string) (*models.LoginResponse, error) {
	req := models.LoginRequest{Login: identifier, Password: secret}
	if strings.Contains(identifier, "@") {
		req.Email = identifier
	}

	var resp models.LoginResponse
	if err := c.do(ctx, http.MethodPost, "/login", "", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// VerifyTwoFactor calls POST /2fa/login/verify.
func (c *Client) VerifyTwoFactor(ctx context.Context, identifier, code string) (*models.LoginResponse, error) {
	req := models.TwoFactorVerifyRequest{Email: identifier, Code: code}

	var resp models.LoginResponse
	if err := c.do(ctx, http.MethodPost, "/2fa/login/verify", "", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register calls POST /register. A 422 reply is returned as a tagged
// *utils.ValidationError.
func (c *Client) Register(ctx context.Context, payload models.RegisterPayload) (*models.RegisterResponse, error) {
	var resp models.RegisterResponse
	if err := c.do(ctx, http.MethodPost, "/register", "", BuildRegisterRequest(payload), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout calls POST /logout.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/logout", token, nil, nil)
}

// Profile calls GET /user and returns the identity bound to token.
func (c *Client) Profile(ctx context.Context, token string) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, "/user", token, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// RedeemPatientCode calls POST /patient/join with a group join code.
func (c *Client) RedeemPatientCode(ctx context.Context, code string) (*models.PatientJoinResponse, error) {
	var resp models.PatientJoinResponse
	body := map[string]string{"code": code}
	if err := c.do(ctx, http.MethodPost, "/patient/join", "", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// BuildRegisterRequest converts the registration form into the wire body.
func BuildRegisterRequest(p models.RegisterPayload) models.RegisterRequest {
	profile := p.Profile
	if profile == "" {
		profile = models.ProfileCaregiver
	}

	req := models.RegisterRequest{
		Name:                 p.FullName(),
		Email:                strings.TrimSpace(p.Email),
		Password:             p.Password,
		PasswordConfirmation: p.Password,
		BirthDate:            p.BirthDate,
		Gender:               p.Gender,
		Profile:              profile,
		CPF:                  p.CPF,
	}
	if phone := utils.NormalizePhone(p.Phone); phone != "" {
		req.Phone = &phone
	}

	switch profile {
	case models.ProfileProfessionalCaregiver:
		req.City = p.City
		req.Neighborhood = p.Neighborhood
		req.FormationDetails = p.FormationDetails
		req.Availability = p.Availability
		if rate, err := strconv.ParseFloat(strings.ReplaceAll(p.HourlyRate, ",", "."), 64); err == nil {
			req.HourlyRate = &rate
		}
	case models.ProfileDoctor:
		req.City = p.City
		req.Neighborhood = p.Neighborhood
		req.CRM = p.CRM
		req.MedicalSpecialtyID = p.MedicalSpecialtyID
		req.Availability = p.Availability
	}

	return req
}

// do executes one JSON request and decodes a 2xx body into out.
func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		jsonData, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.logger.Debug("API request", "method", method, "path", path, "authenticated", token != "")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug("API response", "method", method, "path", path, "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func decodeError(status int, data []byte) error {
	var body models.ErrorResponse
	if len(bytes.TrimSpace(data)) > 0 {
		// HTML error pages and other non-JSON bodies fall through to a bare status error.
		_ = json.Unmarshal(data, &body)
	}

	if status == http.StatusUnprocessableEntity && len(body.Errors) > 0 {
		return ClassifyValidation(body.Errors, body.Message)
	}

	message := body.Message
	if message == "" {
		message = http.StatusText(status)
	}
	code := body.Error
	if code == "" {
		code = body.Status
	}
	return utils.NewAPIError(status, message, code)
}
