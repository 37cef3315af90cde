package cmd

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/jbadsdata/arc-hacks/internal/config"
	"github.com/jbadsdata/arc-hacks/internal/inventory"
	"github.com/jbadsdata/arc-hacks/internal/layerreport"
	"github.com/jbadsdata/arc-hacks/internal/logging"
)

var (
	layersDir      string
	layersAdminDir string
	layersOutput   string
)

var layersCmd = &cobra.Command{
	Use:   "layers",
	Short: "Generate a markdown metadata report over layer files",
	Long: `Collect every .lyrx file in a directory and write a markdown report
covering file stats, data sources, field schemas, layer properties, and
symbology. The report goes to the directory's parent and, when configured,
identically to an admin directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadOrDefault(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		level := logLevel
		if level == "" {
			level = cfg.Logging.Level
		}
		log, err := logging.Setup(level, cfg.Logging.Directory)
		if err != nil {
			return fmt.Errorf("initializing logging: %w", err)
		}

		dir := layersDir
		if dir == "" {
			dir = cfg.Layers.Directory
		}
		if dir == "" {
			return fmt.Errorf("no layer directory given (pass --dir or set layers.directory)")
		}
		adminDir := layersAdminDir
		if adminDir == "" {
			adminDir = cfg.Layers.AdminDirectory
		}
		filename := layersOutput
		if filename == "" {
			filename = cfg.Layers.OutputFilename
		}

		files, err := filepath.Glob(filepath.Join(dir, "*.lyrx"))
		if err != nil {
			return fmt.Errorf("globbing %s: %w", dir, err)
		}
		sort.Strings(files)
		if len(files) == 0 {
			fmt.Println(warnStyle.Render("No .lyrx files found in " + dir))
			return nil
		}

		fmt.Println(headingStyle.Render(fmt.Sprintf("Processing %d layer file(s)", len(files))))

		scanner := &inventory.Scanner{Log: log, OGRInfo: cfg.Tools.OGRInfo}
		r := &layerreport.Reporter{
			Log:        log,
			Author:     currentUser(),
			OpenSource: scanner.DefaultOpen,
		}

		report, processed := r.Generate(files, dir)
		log.Info("report generated", "files", len(files), "processed", processed)

		primary := filepath.Join(filepath.Dir(dir), filename)
		admin := primary
		if adminDir != "" {
			admin = filepath.Join(adminDir, filename)
		}
		if err := layerreport.Write(report, primary, admin); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}

		fmt.Println(successStyle.Render("Report written to " + primary))
		if admin != primary {
			fmt.Println(successStyle.Render("Report written to " + admin))
		}
		return nil
	},
}

// currentUser resolves the report author, falling back through the
// environment when the user database is unavailable.
func currentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	for _, key := range []string{"USERNAME", "USER"} {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return "Unknown"
}

func init() {
	layersCmd.Flags().StringVar(&layersDir, "dir", "", "directory containing .lyrx files")
	layersCmd.Flags().StringVar(&layersAdminDir, "admin-dir", "", "second destination directory for the report")
	layersCmd.Flags().StringVar(&layersOutput, "output", "", "report filename (default: layer_metadata.md)")
	rootCmd.AddCommand(layersCmd)
}
