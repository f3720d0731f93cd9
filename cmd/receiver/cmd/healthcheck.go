package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	healthcheckCmd = &cobra.Command{
		Use:   "healthcheck",
		Short: "Check if the receiver is healthy",
		Long: `Performs a health check by calling the /health endpoint.

This command is used by Docker HEALTHCHECK to monitor container health.

Exit codes:
  0 - Receiver is healthy
  1 - Receiver is unhealthy, degraded or unreachable
  2 - Invalid response from receiver`,
		RunE: runHealthcheck,
	}

	// Flags
	healthcheckTimeout int
	healthcheckURL     string
)

func init() {
	healthcheckCmd.Flags().IntVar(&healthcheckTimeout, "timeout", 5, "timeout in seconds")
	healthcheckCmd.Flags().StringVar(&healthcheckURL, "url", "", "health check URL (default: http://localhost:{SERVER_PORT}/health)")
}

// HealthResponse is the subset of the /health body the check reads.
type HealthResponse struct {
	Status string                 `json:"status"`
	Checks map[string]CheckResult `json:"checks,omitempty"`
}

type CheckResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// errInvalidResponse marks a body that is not a health document.
type errInvalidResponse struct{ err error }

func (e errInvalidResponse) Error() string { return "invalid health response: " + e.err.Error() }
func (e errInvalidResponse) Unwrap() error { return e.err }

func runHealthcheck(cmd *cobra.Command, args []string) error {
	url := healthcheckURL
	if url == "" {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8050"
		}
		url = fmt.Sprintf("http://localhost:%s/health", port)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(healthcheckTimeout)*time.Second)
	defer cancel()

	resp, err := performHealthCheck(ctx, http.DefaultClient, url)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Health check failed: %v\n", err)
		if _, ok := err.(errInvalidResponse); ok {
			os.Exit(2)
		}
		os.Exit(1)
	}
	if resp.Status != "healthy" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Receiver status: %s\n", resp.Status)
		for name, check := range resp.Checks {
			if check.Status != "pass" {
				fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %s %s\n", name, check.Status, check.Message)
			}
		}
		os.Exit(1)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "healthy")
	return nil
}

// performHealthCheck fetches and decodes url. A non-200 response with a
// decodable body is returned without error so the caller can report checks.
func performHealthCheck(ctx context.Context, client *http.Client, url string) (HealthResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return HealthResponse{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return HealthResponse{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	var health HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return HealthResponse{}, errInvalidResponse{err: err}
	}
	if health.Status == "" {
		health.Status = fmt.Sprintf("http %d", resp.StatusCode)
	}
	return health, nil
}
