package cmd

import (
	"context"

	"github.com/nephophile/umt/src/umctl/internal/output"
	"github.com/spf13/cobra"
)

// HealthResponse matches the server's /api/health response
type HealthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check server health",
	Long:  `Checks the health status of the umd server.`,
	RunE:  runHealth,
}

func runHealth(cmd *cobra.Command, args []string) error {
	c := getClient()
	ctx := context.Background()

	var resp HealthResponse
	if err := c.Get(ctx, "/api/health", &resp); err != nil {
		return err
	}

	if getOutputFormat() == "json" {
		return output.PrintJSON(resp)
	}

	rows := [][]string{{"Status", resp.Status}}
	if resp.Error != "" {
		rows = append(rows, []string{"Error", resp.Error})
	}
	output.PrintTable([]string{"FIELD", "VALUE"}, rows)
	return nil
}
