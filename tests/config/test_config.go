package config

import (
	"os"
)

// TestConfig holds configuration for E2E/smoke tests
type TestConfig struct {
	// API endpoint configuration
	BaseURL string // e.g., "https://staging.thikana.gov.bd/v1"

	// Test data. The identity must exist in the registry the target
	// environment runs against, and the environment must have OTP demo
	// mode enabled so tests can read issued codes from responses.
	TestNID    string
	TestMobile string

	// Test timeouts
	HealthCheckTimeout int // seconds
	APICallTimeout     int // seconds
}

// LoadTestConfig loads configuration from environment variables
func LoadTestConfig() (*TestConfig, error) {
	baseURL := os.Getenv("TEST_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080/v1" // Default for local testing
	}

	testNID := os.Getenv("TEST_NID")
	if testNID == "" {
		testNID = "1234567890123" // Seeded in the embedded mock registry
	}

	testMobile := os.Getenv("TEST_MOBILE")
	if testMobile == "" {
		testMobile = "01712345678"
	}

	return &TestConfig{
		BaseURL:            baseURL,
		TestNID:            testNID,
		TestMobile:         testMobile,
		HealthCheckTimeout: 30,
		APICallTimeout:     10,
	}, nil
}
