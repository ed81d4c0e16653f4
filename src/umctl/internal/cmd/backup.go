package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/nephophile/umt/src/umctl/internal/output"
	"github.com/spf13/cobra"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Manage database backups",
	Long:  `Triggers and lists database backups. Requires backups to be enabled on the server.`,
}

var backupCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a database backup",
	RunE:  runBackupCreate,
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored backups",
	RunE:  runBackupList,
}

func init() {
	backupCmd.AddCommand(backupCreateCmd)
	backupCmd.AddCommand(backupListCmd)
}

func runBackupCreate(cmd *cobra.Command, args []string) error {
	c := getClient()
	ctx := context.Background()

	resp, err := c.CreateBackup(ctx)
	if err != nil {
		return sessionError(err)
	}

	if getOutputFormat() == "json" {
		return output.PrintJSON(resp)
	}

	output.PrintMessage(fmt.Sprintf("Backup created: %s (%d bytes)", resp.Backup.Key, resp.Backup.Size))
	return nil
}

func runBackupList(cmd *cobra.Command, args []string) error {
	c := getClient()
	ctx := context.Background()

	resp, err := c.ListBackups(ctx)
	if err != nil {
		return sessionError(err)
	}

	if getOutputFormat() == "json" {
		return output.PrintJSON(resp)
	}

	if len(resp.Backups) == 0 {
		output.PrintMessage("No backups found.")
		return nil
	}

	rows := make([][]string, len(resp.Backups))
	for i, b := range resp.Backups {
		rows[i] = []string{b.Key, strconv.FormatInt(b.Size, 10), b.LastModified}
	}
	output.PrintTable([]string{"KEY", "SIZE", "MODIFIED"}, rows)
	return nil
}
