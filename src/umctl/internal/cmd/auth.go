package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/nephophile/umt/src/umctl/internal/config"
	"github.com/nephophile/umt/src/umctl/internal/output"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a new account",
	Long:  `Registers a new account on the umd server and stores the session token locally.`,
	RunE:  runRegister,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate with the umd server",
	Long:  `Authenticates with the umd server and stores the session token locally.`,
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Logout from the umd server",
	Long:  `Removes the locally stored session token.`,
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show current account information",
	Long:  `Validates the current token and displays the account it belongs to.`,
	RunE:  runWhoami,
}

func init() {
	registerCmd.Flags().StringP("name", "n", "", "Account name")
	registerCmd.Flags().StringP("email", "e", "", "Email address")
	registerCmd.Flags().StringP("password", "p", "", "Password")

	loginCmd.Flags().StringP("email", "e", "", "Email address")
	loginCmd.Flags().StringP("password", "p", "", "Password")
}

// promptLine reads a single line from stdin with a label
func promptLine(label string) (string, error) {
	fmt.Print(label + ": ")
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(input), nil
}

// promptPassword reads a password from stdin without echoing it
func promptPassword() (string, error) {
	fmt.Print("Password: ")
	bytePassword, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Println()
	return string(bytePassword), nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("name")
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")

	var err error
	if name == "" {
		if name, err = promptLine("Name"); err != nil {
			return err
		}
	}
	if email == "" {
		if email, err = promptLine("Email"); err != nil {
			return err
		}
	}
	if password == "" {
		if password, err = promptPassword(); err != nil {
			return err
		}
	}

	c := getClient()
	ctx := context.Background()

	resp, err := c.Register(ctx, name, email, password)
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	serverURL := viper.GetString("server.url")
	if err := config.SaveToken(&config.TokenData{
		Token:     resp.Token,
		ServerURL: serverURL,
		Email:     resp.User.Email,
	}); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	if getOutputFormat() == "json" {
		return output.PrintJSON(map[string]interface{}{
			"message": resp.Message,
			"user":    resp.User,
			"server":  serverURL,
		})
	}

	output.PrintMessage(fmt.Sprintf("Registered as %s (%s) on %s", resp.User.Name, resp.User.Email, serverURL))
	return nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")

	var err error
	if email == "" {
		if email, err = promptLine("Email"); err != nil {
			return err
		}
	}
	if password == "" {
		if password, err = promptPassword(); err != nil {
			return err
		}
	}

	c := getClient()
	ctx := context.Background()

	resp, err := c.Login(ctx, email, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	serverURL := viper.GetString("server.url")
	if err := config.SaveToken(&config.TokenData{
		Token:     resp.Token,
		ServerURL: serverURL,
		Email:     resp.User.Email,
	}); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	if getOutputFormat() == "json" {
		return output.PrintJSON(map[string]interface{}{
			"message": resp.Message,
			"user":    resp.User,
			"server":  serverURL,
		})
	}

	output.PrintMessage(fmt.Sprintf("Logged in as %s (%s) on %s", resp.User.Name, resp.User.Email, serverURL))
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	if err := config.ClearToken(); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}

	if getOutputFormat() == "json" {
		return output.PrintJSON(map[string]string{"message": "Logged out"})
	}

	output.PrintMessage("Logged out successfully.")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	c := getClient()
	ctx := context.Background()

	resp, err := c.Me(ctx)
	if err != nil {
		return sessionError(err)
	}

	if getOutputFormat() == "json" {
		return output.PrintJSON(resp)
	}

	u := resp.User
	output.PrintTable(
		[]string{"FIELD", "VALUE"},
		[][]string{
			{"ID", fmt.Sprintf("%d", u.ID)},
			{"Name", u.Name},
			{"Email", u.Email},
			{"Status", u.Status},
			{"Last Login", formatLastLogin(u.LastLogin)},
			{"Registered", u.RegistrationTime.Local().Format("2006-01-02 15:04:05")},
		},
	)
	return nil
}
