package config

import (
	"fmt"

	"github.com/spf13/cobra"

	appConfig "github.com/dev-catena/lacos-sub000/internal/config"
	"github.com/dev-catena/lacos-sub000/internal/format"
)

// ConfigCmd represents the config command
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "CLI configuration commands",
	Long: `CLI configuration commands for Laços CLI.

This command group shows the effective configuration, where it was read from,
and sets individual values.`,
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return format.Print(redacted(*appConfig.Get()))
	},
}

var pathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), appConfig.Path())
		return nil
	},
}

var setCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set one configuration value and save the file.

Supported keys: server.url, server.timeout, storage.driver, storage.path,
deeplink.share_base_url, format.default, log.level, log.format, locale.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := apply(appConfig.Get(), args[0], args[1]); err != nil {
			return err
		}
		if err := appConfig.Save(); err != nil {
			return fmt.Errorf("failed to save configuration: %w", err)
		}
		format.PrintSuccess("%s updated", args[0])
		return nil
	},
}

func redacted(cfg appConfig.Config) appConfig.Config {
	if cfg.Storage.EncryptionKey != "" {
		cfg.Storage.EncryptionKey = "********"
	}
	return cfg
}

func apply(cfg *appConfig.Config, key, value string) error {
	switch key {
	case "server.url":
		cfg.Server.URL = value
	case "server.timeout":
		cfg.Server.Timeout = value
	case "storage.driver":
		cfg.Storage.Driver = value
	case "storage.path":
		cfg.Storage.Path = value
	case "deeplink.share_base_url":
		cfg.DeepLink.ShareBaseURL = value
	case "format.default":
		cfg.Format.Default = value
	case "log.level":
		cfg.Log.Level = value
	case "log.format":
		cfg.Log.Format = value
	case "locale":
		cfg.Locale = value
	default:
		return fmt.Errorf("unsupported key: %s", key)
	}
	return nil
}

func init() {
	ConfigCmd.AddCommand(showCmd)
	ConfigCmd.AddCommand(pathCmd)
	ConfigCmd.AddCommand(setCmd)
}
