// Package core provides the core command and server functionality for umd.
package core

import (
	"fmt"
	"os"

	"github.com/nephophile/umt/src/common/cli"
	"github.com/nephophile/umt/src/common/logs"
	"github.com/nephophile/umt/src/common/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// VersionInfo holds version information - set at build time via ldflags
	VersionInfo = version.New()

	// Global logger instance
	log *logs.Logger

	// Configuration file path
	cfgFile string
)

// Linker variables - these are set via ldflags at build time
// They must be initialized as empty strings or literals for ldflags to work
var (
	Version        = "dev"
	ReleaseName    = "Sentinel"
	ReleaseVersion = "0.0.0"
	BuildDate      = "unknown"
	GitCommit      = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "umd",
	Short: "User management API server",
	Long: `umd is the user management daemon of the umt platform.

It exposes a REST API for account registration, authentication and bulk
user administration, backed by a SQLite store.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

// Execute runs the root command
func Execute() {
	// Populate VersionInfo from linker variables
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
	// Configuration file flag
	cli.RegisterConfigFlag(rootCmd, &cfgFile, "/etc/umd/umd.yaml")

	// Server flags
	rootCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	rootCmd.Flags().StringP("bind", "b", "0.0.0.0", "Address to bind to")

	// Logging flags (using common helper)
	cli.RegisterLogFlags(rootCmd)

	// Database flags
	rootCmd.Flags().String("db-path", "~/.umd/umd.db", "Path to the SQLite database file")

	// Auth flags
	rootCmd.Flags().String("jwt-secret", "", "JWT signing secret (generated and persisted when empty)")

	// Backup flags
	rootCmd.Flags().Bool("backup-enabled", false, "Enable database snapshot backups")
	rootCmd.Flags().String("backup-storage-type", "local", "Backup storage backend type: 'local' or 's3'")
	rootCmd.Flags().String("backup-storage-path", "~/.umd/backups", "Local backup storage path (for local backend)")

	// S3 storage flags
	rootCmd.Flags().String("s3-endpoint", "", "S3-compatible storage endpoint URL")
	rootCmd.Flags().String("s3-region", "us-east-1", "S3 region")
	rootCmd.Flags().String("s3-bucket", "umd-backups", "S3 bucket for database backups")
	rootCmd.Flags().String("s3-access-key", "", "S3 access key ID")
	rootCmd.Flags().String("s3-secret-key", "", "S3 secret access key")
	rootCmd.Flags().Bool("s3-path-style", true, "Use path-style addressing for S3")

	// Bind flags to viper
	_ = viper.BindPFlag("server.port", rootCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("server.bind", rootCmd.Flags().Lookup("bind"))
	_ = viper.BindPFlag("database.path", rootCmd.Flags().Lookup("db-path"))
	_ = viper.BindPFlag("auth.jwt_secret", rootCmd.Flags().Lookup("jwt-secret"))
	_ = viper.BindPFlag("backup.enabled", rootCmd.Flags().Lookup("backup-enabled"))
	_ = viper.BindPFlag("backup.storage.type", rootCmd.Flags().Lookup("backup-storage-type"))
	_ = viper.BindPFlag("backup.storage.local.path", rootCmd.Flags().Lookup("backup-storage-path"))
	_ = viper.BindPFlag("backup.storage.s3.endpoint", rootCmd.Flags().Lookup("s3-endpoint"))
	_ = viper.BindPFlag("backup.storage.s3.region", rootCmd.Flags().Lookup("s3-region"))
	_ = viper.BindPFlag("backup.storage.s3.bucket", rootCmd.Flags().Lookup("s3-bucket"))
	_ = viper.BindPFlag("backup.storage.s3.access_key", rootCmd.Flags().Lookup("s3-access-key"))
	_ = viper.BindPFlag("backup.storage.s3.secret_key", rootCmd.Flags().Lookup("s3-secret-key"))
	_ = viper.BindPFlag("backup.storage.s3.path_style", rootCmd.Flags().Lookup("s3-path-style"))

	// Set defaults
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.bind", "0.0.0.0")
	viper.SetDefault("database.path", "~/.umd/umd.db")
	viper.SetDefault("auth.jwt_secret", "")
	viper.SetDefault("auth.token_duration_hours", 24)
	viper.SetDefault("backup.enabled", false)
	viper.SetDefault("backup.prefix", "backups")
	viper.SetDefault("backup.retention", 7)
	viper.SetDefault("backup.interval_minutes", 0)
	viper.SetDefault("backup.storage.type", "local")
	viper.SetDefault("backup.storage.local.path", "~/.umd/backups")
	viper.SetDefault("backup.storage.s3.region", "us-east-1")
	viper.SetDefault("backup.storage.s3.bucket", "umd-backups")
	viper.SetDefault("backup.storage.s3.path_style", true)

	// Security defaults
	viper.SetDefault("security.rate_limit.enabled", true)
	viper.SetDefault("security.rate_limit.auth_per_min", 10)
	viper.SetDefault("security.rate_limit.api_per_min", 120)
	viper.SetDefault("security.rate_limit.trust_proxy", false)
}

// initConfig reads in config file and ENV variables if set
func initConfig() error {
	// Use common config initialization with umd-specific search paths
	opts := cli.ConfigOptions{
		ConfigName: "umd",
		ConfigType: "yaml",
		EnvPrefix:  "UMD",
		SearchPaths: []string{
			"/etc/umd",
			"/opt/umd",
			"~/.umd",
		},
	}
	opts.ConfigFile = cfgFile

	if err := cli.InitConfig(opts); err != nil {
		return err
	}

	// Initialize logger using common helper
	log = cli.InitLogger("umd")

	return nil
}
