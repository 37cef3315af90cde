package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jbadsdata/arc-hacks/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `View and initialize the archacks configuration file.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current config (secrets masked)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadOrDefault(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		fmt.Println("Current configuration:")
		fmt.Println()
		fmt.Printf("  Inventory:\n")
		fmt.Printf("    Root:           %s\n", cfg.Inventory.Root)
		fmt.Printf("    Output:         %s\n", cfg.Inventory.Output)
		fmt.Printf("    Include Loose:  %t\n", cfg.Inventory.IncludeLoose)
		fmt.Printf("    PostGIS DSN:    %s\n", maskSecret(cfg.Inventory.PostGISDSN))
		if cfg.Inventory.Catalog.Enabled() {
			fmt.Printf("    Catalog:        %s (%s.%s)\n",
				maskSecret(cfg.Inventory.Catalog.URI),
				cfg.Inventory.Catalog.Database, cfg.Inventory.Catalog.Collection)
		}
		fmt.Println()
		fmt.Printf("  Layers:\n")
		fmt.Printf("    Directory:      %s\n", cfg.Layers.Directory)
		fmt.Printf("    Admin Dir:      %s\n", cfg.Layers.AdminDirectory)
		fmt.Printf("    Output File:    %s\n", cfg.Layers.OutputFilename)
		fmt.Println()
		fmt.Printf("  Tools:\n")
		fmt.Printf("    ogrinfo:        %s\n", cfg.Tools.OGRInfo)
		fmt.Println()
		fmt.Printf("  Logging:\n")
		fmt.Printf("    Level:          %s\n", cfg.Logging.Level)
		fmt.Printf("    Directory:      %s\n", cfg.Logging.Directory)

		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			path = config.ExpandHome(config.DefaultPath)
		}
		if err := config.Default().Save(path); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}
		fmt.Println(successStyle.Render("Config written to " + path))
		return nil
	},
}

func maskSecret(s string) string {
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
