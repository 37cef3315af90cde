package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	logLevel string
	version  = "dev"
	commit   = "none"
	date     = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "archacks",
	Short: "archacks — batch GIS inventory and layer reporting",
	Long: `Archacks inventories geodatabase containers (File Geodatabases,
GeoPackages, shapefile folders, PostGIS) into a spreadsheet, and generates
markdown metadata reports over ArcGIS Pro layer files.`,
}

func Execute() {
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.archacks/archacks.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
}
