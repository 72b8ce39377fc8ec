package e2e_test

import (
	"testing"

	"github.com/thikana-bd/app-thikana/tests/config"
	"github.com/thikana-bd/app-thikana/tests/fixtures"
)

// TestRegistrationWorkflow drives a complete auth flow against a
// running environment: begin, request OTP, verify, finalize, and use
// the issued token on the tenant surface.
func TestRegistrationWorkflow(t *testing.T) {
	getBaseURL(t)
	cfg, err := config.LoadTestConfig()
	if err != nil {
		t.Fatalf("Failed to load test config: %v", err)
	}

	token, err := fixtures.GetAuthToken(cfg)
	if err != nil {
		t.Fatalf("Failed to obtain token: %v", err)
	}
	if token.Token == "" {
		t.Fatal("Finalize returned an empty token")
	}
	if token.Account.ID == "" {
		t.Fatal("Finalize returned no account id")
	}
	if token.Account.Role != "tenant" {
		t.Errorf("Expected role 'tenant', got %q", token.Account.Role)
	}

	t.Run("TokenOpensTenantSurface", func(t *testing.T) {
		client := fixtures.NewAPIClient(cfg, token.Token)

		resp, err := client.Get("/tenant/" + token.Account.ID)
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		defer resp.Body.Close()

		fixtures.AssertStatusCode(t, resp, 200)
		body := fixtures.AssertJSONResponse(t, resp)
		fixtures.AssertFieldExists(t, body, "completion_score")
	})

	t.Run("TenantSurfaceRejectsAnonymous", func(t *testing.T) {
		client := fixtures.NewAPIClient(cfg, "")

		resp, err := client.Get("/tenant/" + token.Account.ID)
		if err != nil {
			t.Fatalf("Request failed: %v", err)
		}
		defer resp.Body.Close()

		fixtures.AssertStatusCode(t, resp, 401)
	})
}
