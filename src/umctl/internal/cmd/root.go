// Package cmd implements the umctl command tree.
package cmd

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/nephophile/umt/src/common/cli"
	"github.com/nephophile/umt/src/common/version"
	"github.com/nephophile/umt/src/umctl/internal/client"
	"github.com/nephophile/umt/src/umctl/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// VersionInfo holds version information - set at build time via ldflags
	VersionInfo = version.New()

	// Configuration file path
	cfgFile string

	// Output format (json or table)
	outputFormat string

	// API client instance
	apiClient *client.Client
)

// Linker variables - set via ldflags at build time
var (
	Version        = "dev"
	ReleaseName    = "Sentinel"
	ReleaseVersion = "0.0.0"
	BuildDate      = "unknown"
	GitCommit      = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "umctl",
	Short: "umd CLI client",
	Long: `umctl is the command-line client for the umd user management server.

It communicates with the umd API to register accounts, authenticate and
perform bulk user administration.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip config init for version command without --server flag
		if cmd.Name() == "version" && !cmd.Flags().Changed("server") {
			return nil
		}
		return initConfig()
	},
}

// Execute runs the root command
func Execute() {
	VersionInfo.Version = Version
	VersionInfo.ReleaseName = ReleaseName
	VersionInfo.ReleaseVersion = ReleaseVersion
	VersionInfo.BuildDate = BuildDate
	VersionInfo.GitCommit = GitCommit

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cli.RegisterConfigFlag(rootCmd, &cfgFile, "~/.umctl/umctl.yaml")

	rootCmd.PersistentFlags().StringP("server", "s", "", "umd server URL (default: http://localhost:8080)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "Output format: table, json")

	cli.RegisterLogFlags(rootCmd)

	_ = viper.BindPFlag("server.url", rootCmd.PersistentFlags().Lookup("server"))

	viper.SetDefault("server.url", "http://localhost:8080")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(backupCmd)
}

func initConfig() error {
	opts := cli.ConfigOptions{
		ConfigName: "umctl",
		ConfigType: "yaml",
		EnvPrefix:  "UMCTL",
		SearchPaths: []string{
			"/etc/umctl",
			"~/.umctl",
		},
	}
	opts.ConfigFile = cfgFile

	if err := cli.InitConfig(opts); err != nil {
		return err
	}

	return nil
}

// getClient returns the API client, creating it if needed.
// It loads the stored token for authentication.
func getClient() *client.Client {
	if apiClient == nil {
		serverURL := viper.GetString("server.url")
		apiClient = client.New(serverURL)

		// Load stored token
		tokenData, err := config.LoadToken()
		if err == nil && tokenData.Token != "" {
			apiClient.Token = tokenData.Token
		}
	}
	return apiClient
}

// getOutputFormat returns the current output format
func getOutputFormat() string {
	return outputFormat
}

// sessionRevoked reports whether an API error means the stored session is
// no longer usable. 401 covers expired or deleted sessions, 403 a blocked
// account; either way the server will keep refusing this token.
func sessionRevoked(err error) bool {
	var apiErr *client.APIError
	if !stderrors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == 401 || apiErr.StatusCode == 403
}

// sessionError drops the stored token when the server no longer accepts
// it, so the next command starts a fresh session
func sessionError(err error) error {
	if sessionRevoked(err) {
		_ = config.ClearToken()
	}
	return err
}
