package fixtures

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/thikana-bd/app-thikana/tests/config"
)

// FlowResponse mirrors the auth flow payload returned by the API
type FlowResponse struct {
	FlowID       string `json:"flow_id"`
	Stage        string `json:"stage"`
	MobileNumber string `json:"mobile_number"`
	IsNewAccount bool   `json:"is_new_account"`
	DemoOTP      string `json:"demo_otp"`
}

// TokenResponse mirrors the finalize payload returned by the API
type TokenResponse struct {
	Token   string `json:"token"`
	Account struct {
		ID           string `json:"id"`
		MobileNumber string `json:"mobile_number"`
		Role         string `json:"role"`
	} `json:"account"`
}

// GetAuthToken obtains a JWT by driving a login flow end to end. The
// target environment must run with OTP demo mode enabled; without it
// the issued code never leaves the SMS channel.
func GetAuthToken(cfg *config.TestConfig) (*TokenResponse, error) {
	client := NewAPIClient(cfg, "")

	flow, err := beginFlow(client, "/auth/login", map[string]string{
		"mobile_number": cfg.TestMobile,
	})
	if err != nil {
		// No account yet for the test identity, register instead
		flow, err = beginFlow(client, "/auth/register", map[string]string{
			"id_number":     cfg.TestNID,
			"mobile_number": cfg.TestMobile,
		})
		if err != nil {
			return nil, err
		}
	}

	otpResp, err := client.Post("/auth/flow/"+flow.FlowID+"/otp", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to request OTP: %w", err)
	}
	defer otpResp.Body.Close()
	var withCode FlowResponse
	if err := decodeOrError(otpResp, &withCode); err != nil {
		return nil, err
	}
	if withCode.DemoOTP == "" {
		return nil, fmt.Errorf("no demo OTP in response, is OTP_DEMO_MODE enabled on the target?")
	}

	verifyResp, err := client.Post("/auth/flow/"+flow.FlowID+"/verify", map[string]string{
		"code": withCode.DemoOTP,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to verify OTP: %w", err)
	}
	verifyResp.Body.Close()
	if verifyResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OTP verification failed with status %d", verifyResp.StatusCode)
	}

	finalizeResp, err := client.Post("/auth/flow/"+flow.FlowID+"/finalize", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to finalize flow: %w", err)
	}
	defer finalizeResp.Body.Close()
	var token TokenResponse
	if err := decodeOrError(finalizeResp, &token); err != nil {
		return nil, err
	}
	return &token, nil
}

func beginFlow(client *APIClient, path string, body interface{}) (*FlowResponse, error) {
	resp, err := client.Post(path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to begin flow: %w", err)
	}
	defer resp.Body.Close()

	var flow FlowResponse
	if err := decodeOrError(resp, &flow); err != nil {
		return nil, err
	}
	return &flow, nil
}

func decodeOrError(resp *http.Response, out interface{}) error {
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// APIClient wraps HTTP client with common test functionality
type APIClient struct {
	BaseURL    string
	HTTPClient *http.Client
	Token      string
}

// NewAPIClient creates a new API client for testing
func NewAPIClient(cfg *config.TestConfig, token string) *APIClient {
	return &APIClient{
		BaseURL: cfg.BaseURL,
		HTTPClient: &http.Client{
			Timeout: time.Duration(cfg.APICallTimeout) * time.Second,
		},
		Token: token,
	}
}

// Get performs authenticated GET request
func (c *APIClient) Get(path string) (*http.Response, error) {
	req, err := http.NewRequest("GET", c.BaseURL+path, nil)
	if err != nil {
		return nil, err
	}

	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	return c.HTTPClient.Do(req)
}

// Post performs authenticated POST request
func (c *APIClient) Post(path string, body interface{}) (*http.Response, error) {
	var payload io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		payload = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest("POST", c.BaseURL+path, payload)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	return c.HTTPClient.Do(req)
}

// Put performs authenticated PUT request
func (c *APIClient) Put(path string, body interface{}) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest("PUT", c.BaseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	return c.HTTPClient.Do(req)
}

// Delete performs authenticated DELETE request
func (c *APIClient) Delete(path string) (*http.Response, error) {
	req, err := http.NewRequest("DELETE", c.BaseURL+path, nil)
	if err != nil {
		return nil, err
	}

	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	return c.HTTPClient.Do(req)
}

// TestResidenceData returns a sample residence payload for testing
func TestResidenceData() map[string]interface{} {
	return map[string]interface{}{
		"house_number": "12/B",
		"street":       "Road 27",
		"area":         "Dhanmondi",
		"thana":        "Dhanmondi",
		"district":     "Dhaka",
		"monthly_rent": 18000,
	}
}

// TestEmergencyContactData returns a sample emergency contact payload
func TestEmergencyContactData() map[string]interface{} {
	return map[string]interface{}{
		"name":          "Rahima Begum",
		"relation":      "mother",
		"mobile_number": "01712340000",
	}
}
