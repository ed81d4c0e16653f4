package cmd

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/nephophile/umt/src/umctl/internal/client"
	"github.com/nephophile/umt/src/umctl/internal/output"
	"github.com/spf13/cobra"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user accounts",
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all user accounts",
	Long:  `Lists all user accounts, most recently active first.`,
	RunE:  runUserList,
}

var userBlockCmd = &cobra.Command{
	Use:   "block <id> [<id>...]",
	Short: "Block user accounts",
	Long:  `Blocks the given user accounts. IDs without a matching account are skipped.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runUserBlock,
}

var userUnblockCmd = &cobra.Command{
	Use:   "unblock <id> [<id>...]",
	Short: "Unblock user accounts",
	Long:  `Unblocks the given user accounts. IDs without a matching account are skipped.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runUserUnblock,
}

var userDeleteCmd = &cobra.Command{
	Use:   "delete <id> [<id>...]",
	Short: "Delete user accounts",
	Long:  `Permanently deletes the given user accounts. IDs without a matching account are skipped.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runUserDelete,
}

func init() {
	userCmd.AddCommand(userListCmd)
	userCmd.AddCommand(userBlockCmd)
	userCmd.AddCommand(userUnblockCmd)
	userCmd.AddCommand(userDeleteCmd)
}

// parseUserIDs converts command arguments to numeric user IDs
func parseUserIDs(args []string) ([]int64, error) {
	ids := make([]int64, len(args))
	for i, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid user ID %q: must be a number", arg)
		}
		ids[i] = id
	}
	return ids, nil
}

func formatLastLogin(t *time.Time) string {
	if t == nil {
		return "never"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func userRows(users []client.UserInfo) [][]string {
	rows := make([][]string, len(users))
	for i, u := range users {
		rows[i] = []string{
			strconv.FormatInt(u.ID, 10),
			u.Name,
			u.Email,
			u.Status,
			formatLastLogin(u.LastLogin),
			u.RegistrationTime.Local().Format("2006-01-02 15:04:05"),
		}
	}
	return rows
}

func runUserList(cmd *cobra.Command, args []string) error {
	c := getClient()
	ctx := context.Background()

	resp, err := c.ListUsers(ctx)
	if err != nil {
		return sessionError(err)
	}

	if getOutputFormat() == "json" {
		return output.PrintJSON(resp)
	}

	if len(resp.Users) == 0 {
		output.PrintMessage("No users found.")
		return nil
	}

	output.PrintTable(
		[]string{"ID", "NAME", "EMAIL", "STATUS", "LAST LOGIN", "REGISTERED"},
		userRows(resp.Users),
	)
	return nil
}

// printBulkResult renders a bulk operation response
func printBulkResult(resp *client.BulkUserResponse) error {
	if getOutputFormat() == "json" {
		return output.PrintJSON(resp)
	}

	output.PrintMessage(resp.Message)
	if users := resp.Users(); len(users) > 0 {
		output.PrintTable(
			[]string{"ID", "NAME", "EMAIL", "STATUS", "LAST LOGIN", "REGISTERED"},
			userRows(users),
		)
	}
	return nil
}

func runUserBlock(cmd *cobra.Command, args []string) error {
	ids, err := parseUserIDs(args)
	if err != nil {
		return err
	}

	c := getClient()
	ctx := context.Background()

	resp, err := c.BlockUsers(ctx, ids)
	if err != nil {
		return sessionError(err)
	}

	return printBulkResult(resp)
}

func runUserUnblock(cmd *cobra.Command, args []string) error {
	ids, err := parseUserIDs(args)
	if err != nil {
		return err
	}

	c := getClient()
	ctx := context.Background()

	resp, err := c.UnblockUsers(ctx, ids)
	if err != nil {
		return sessionError(err)
	}

	return printBulkResult(resp)
}

func runUserDelete(cmd *cobra.Command, args []string) error {
	ids, err := parseUserIDs(args)
	if err != nil {
		return err
	}

	c := getClient()
	ctx := context.Background()

	resp, err := c.DeleteUsers(ctx, ids)
	if err != nil {
		return sessionError(err)
	}

	return printBulkResult(resp)
}
