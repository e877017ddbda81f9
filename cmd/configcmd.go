package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mavyfaby/tiny-excel/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage tiny-excel defaults",
	Long: `Show and change persisted defaults.

Settings:
  sheet        Default sheet index for get/set (when --sheet is not given)
  listen-addr  Default bind address for serve

Examples:
  tiny-excel config show
  tiny-excel config set sheet 1
  tiny-excel config set listen-addr :9000
  tiny-excel config clear`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if jsonOutput {
			return jsonPrint(cfg)
		}
		if cfg.DefaultSheet != nil {
			fmt.Printf("sheet: %d\n", *cfg.DefaultSheet)
		} else {
			fmt.Println("sheet: 0 (default)")
		}
		if cfg.ListenAddr != "" {
			fmt.Printf("listen-addr: %s\n", cfg.ListenAddr)
		} else {
			fmt.Println("listen-addr: :8080 (default)")
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <setting> <value>",
	Short: "Persist a default",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		switch args[0] {
		case "sheet":
			n, err := strconv.Atoi(args[1])
			if err != nil || n < 0 {
				return fmt.Errorf("sheet must be a non-negative integer, got %q", args[1])
			}
			cfg.DefaultSheet = &n
		case "listen-addr":
			cfg.ListenAddr = args[1]
		default:
			return fmt.Errorf("unknown setting %q (want sheet or listen-addr)", args[0])
		}
		return config.Save(cfg)
	},
}

var configClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return config.Delete()
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configClearCmd)
	rootCmd.AddCommand(configCmd)
}
