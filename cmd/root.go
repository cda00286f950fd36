package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dev-catena/lacos-sub000/cmd/auth"
	"github.com/dev-catena/lacos-sub000/cmd/config"
	"github.com/dev-catena/lacos-sub000/cmd/link"
	"github.com/dev-catena/lacos-sub000/cmd/patient"
	"github.com/dev-catena/lacos-sub000/cmd/serve"
	appConfig "github.com/dev-catena/lacos-sub000/internal/config"
	"github.com/dev-catena/lacos-sub000/internal/logging"
)

var (
	cfgFile  string
	debug    bool
	output   string
	logLevel string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "lacos",
	Short: "Laços CLI - session and invitation core of the Laços caregiving app",
	Long: `Laços CLI drives the client-side session core of the Laços caregiving
network: sign-in with two-factor verification, registration, patient
sessions and group invitation links.

The serve command runs the core as a long-lived process that accepts
deep links over a local HTTP endpoint.`,
	Version:       "1.0.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil {
			slog.Debug("No .env file loaded", "error", err)
		}

		// Initialize configuration
		if err := appConfig.Initialize(cfgFile); err != nil {
			return fmt.Errorf("failed to initialize configuration: %w", err)
		}

		// Set debug mode
		if debug {
			appConfig.SetDebug(true)
		}

		// Set output format
		if output != "" {
			appConfig.SetOutputFormat(output)
		}

		cfg := appConfig.Get()
		level := cfg.Log.Level
		if logLevel != "" {
			level = logLevel
		}
		if debug {
			level = "debug"
		}
		slog.SetDefault(logging.Setup(os.Stderr, level, cfg.Log.Format))

		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.lacos.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug mode")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "", "output format (table, json, yaml, text)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	// Add subcommands
	rootCmd.AddCommand(auth.AuthCmd)
	rootCmd.AddCommand(patient.PatientCmd)
	rootCmd.AddCommand(link.LinkCmd)
	rootCmd.AddCommand(serve.ServeCmd)
	rootCmd.AddCommand(config.ConfigCmd)
}
