// Package authsdk is a small client for the identity service. It covers the
// unauthenticated credential flows plus the token-bearing endpoints; callers
// hold the returned tokens themselves.
package authsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// SDKClient is a client for the identity service.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a new identity service client.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Login authenticates an email and password against a platform and returns
// the issued token pair.
func (c *SDKClient) Login(ctx context.Context, platformID, email, password string) (*TokenResponse, error) {
	var out TokenResponse
	err := c.postJSON(ctx, "/v1/auth/"+platformID+"/login", LoginRequest{
		Email:    email,
		Password: password,
	}, nil, &out, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Refresh rotates a session using its refresh token and returns the new pair.
// The CSRF token must be the value issued alongside the refresh token.
func (c *SDKClient) Refresh(ctx context.Context, platformID, refreshToken, csrfToken string) (*TokenResponse, error) {
	headers := map[string]string{
		"Authorization": "Bearer " + refreshToken,
		"X-CSRF-Token":  csrfToken,
	}
	var out TokenResponse
	err := c.postJSON(ctx, "/v1/auth/"+platformID+"/refresh", nil, headers, &out, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout revokes the session that issued the given token. Either half of the
// pair is accepted. Revocation is terminal; the session cannot be refreshed
// afterwards.
func (c *SDKClient) Logout(ctx context.Context, token string) error {
	headers := map[string]string{"Authorization": "Bearer " + token}
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/auth/logout", nil, headers)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return parseErrorResponse(resp, body)
	}
	return nil
}

// Validate verifies an access token against a platform and returns the
// decoded authorization snapshot.
func (c *SDKClient) Validate(ctx context.Context, platformID, accessToken string) (*SnapshotResponse, error) {
	headers := map[string]string{"Authorization": "Bearer " + accessToken}
	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/auth/validate/"+platformID, nil, headers)
	if err != nil {
		return nil, err
	}

	var out SnapshotResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// CheckPermissions asks the service which of the named permissions the
// access token's snapshot grants.
func (c *SDKClient) CheckPermissions(ctx context.Context, accessToken string, permissions []string) (PermissionCheckResponse, error) {
	headers := map[string]string{"Authorization": "Bearer " + accessToken}
	var out PermissionCheckResponse
	err := c.postJSON(ctx, "/v1/auth/permissions/check", PermissionCheckRequest{
		Permissions: permissions,
	}, headers, &out, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RequestValidation asks for an email-validation token to be issued. Always
// succeeds with 202 whether or not the email exists.
func (c *SDKClient) RequestValidation(ctx context.Context, email string) error {
	return c.postAccepted(ctx, "/v1/account/validate/request", ValidationRequest{Email: email})
}

// ConfirmValidation redeems a validation token, marking the profile as
// validated.
func (c *SDKClient) ConfirmValidation(ctx context.Context, token string) error {
	resp, err := c.doJSONRequest(ctx, http.MethodPost, "/v1/account/validate/confirm",
		ValidationConfirm{Token: token}, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return parseErrorResponse(resp, body)
	}
	return nil
}

// RequestReset asks for a password-reset token to be issued. Always succeeds
// with 202 whether or not the email exists.
func (c *SDKClient) RequestReset(ctx context.Context, email string) error {
	return c.postAccepted(ctx, "/v1/account/reset/request", ValidationRequest{Email: email})
}

// ConfirmReset redeems a reset token and sets a new password. All live
// sessions for the profile are revoked.
func (c *SDKClient) ConfirmReset(ctx context.Context, token, newPassword string) error {
	resp, err := c.doJSONRequest(ctx, http.MethodPost, "/v1/account/reset/confirm",
		ResetConfirm{Token: token, NewPassword: newPassword}, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return parseErrorResponse(resp, body)
	}
	return nil
}

// Livez reports the liveness of the service.
func (c *SDKClient) Livez(ctx context.Context) (*HealthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/livez", nil, nil)
	if err != nil {
		return nil, err
	}

	var out HealthResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *SDKClient) url(path string) string {
	return c.BaseURL + path
}

func (c *SDKClient) doRequest(
	ctx context.Context,
	method, path string,
	body io.Reader,
	headers map[string]string,
) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return resp, nil
}

func (c *SDKClient) doJSONRequest(
	ctx context.Context,
	method, path string,
	payload any,
	headers map[string]string,
) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return resp, nil
}

func (c *SDKClient) postJSON(
	ctx context.Context,
	path string,
	payload any,
	headers map[string]string,
	target any,
	expectedStatus int,
) error {
	resp, err := c.doJSONRequest(ctx, http.MethodPost, path, payload, headers)
	if err != nil {
		return err
	}
	return decodeJSON(resp, target, expectedStatus)
}

func (c *SDKClient) postAccepted(ctx context.Context, path string, payload any) error {
	resp, err := c.doJSONRequest(ctx, http.MethodPost, path, payload, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(resp.Body)
		return parseErrorResponse(resp, body)
	}
	return nil
}

// decodeJSON decodes a JSON response into the target, returning a typed
// *APIError when the status does not match.
func decodeJSON(resp *http.Response, target any, expectedStatus int) error {
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != expectedStatus {
		return parseErrorResponse(resp, bodyBytes)
	}

	if err := json.Unmarshal(bodyBytes, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
