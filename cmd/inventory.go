package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jbadsdata/arc-hacks/internal/catalog"
	"github.com/jbadsdata/arc-hacks/internal/config"
	"github.com/jbadsdata/arc-hacks/internal/export"
	"github.com/jbadsdata/arc-hacks/internal/inventory"
	"github.com/jbadsdata/arc-hacks/internal/logging"
)

var (
	inventoryOutput  string
	inventoryLoose   bool
	inventoryPostGIS string
)

var inventoryCmd = &cobra.Command{
	Use:   "inventory [root]",
	Short: "Inventory geodata containers into a spreadsheet",
	Long: `Walk a directory tree, open every geodata container found (File
Geodatabases, GeoPackages, and optionally loose shapefile folders), and write
one spreadsheet row per dataset. With --postgis, a PostGIS database is
inventoried instead of a directory tree.`,
	Args: cobra.MaximumNArgs(1),
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

		root := cfg.Inventory.Root
		if len(args) > 0 {
			root = args[0]
		}
		dsn := inventoryPostGIS
		if dsn == "" {
			dsn = cfg.Inventory.PostGISDSN
		}
		if root == "" && dsn == "" {
			return fmt.Errorf("no root directory given (pass one as an argument or set inventory.root)")
		}

		output := inventoryOutput
		if output == "" {
			output = cfg.Inventory.Output
		}

		scanner := &inventory.Scanner{
			Log:          log,
			OGRInfo:      cfg.Tools.OGRInfo,
			IncludeLoose: inventoryLoose || cfg.Inventory.IncludeLoose,
		}

		ctx := context.Background()

		var records []catalog.Record
		if root != "" {
			fmt.Println(headingStyle.Render("Scanning " + root))
			records, err = scanner.Scan(ctx, root)
			if err != nil {
				return fmt.Errorf("scanning %s: %w", root, err)
			}
		}
		if dsn != "" {
			fmt.Println(headingStyle.Render("Scanning PostGIS database"))
			pgRecords, err := scanner.ScanPostGIS(ctx, dsn)
			if err != nil {
				return fmt.Errorf("scanning postgis: %w", err)
			}
			records = append(records, pgRecords...)
		}

		if len(records) == 0 {
			fmt.Println(warnStyle.Render("No datasets found."))
			return nil
		}

		catalog.Sort(records)
		fmt.Println(catalog.Summary(records))

		if err := export.Write(records, output); err != nil {
			return fmt.Errorf("writing inventory: %w", err)
		}
		fmt.Println(successStyle.Render("Inventory written to " + output))

		if sink := cfg.Inventory.Catalog; sink.Enabled() {
			ms := &export.MongoSink{URI: sink.URI, Database: sink.Database, Collection: sink.Collection}
			if err := ms.Write(ctx, records); err != nil && !errors.Is(err, export.ErrNoRecords) {
				// The spreadsheet already exists; a sink failure is not fatal.
				log.Warn("writing catalog sink", "error", err)
				fmt.Println(errStyle.Render("Catalog sink write failed (see log)"))
			} else {
				fmt.Println(successStyle.Render("Records cataloged to " + sink.Database + "." + sink.Collection))
			}
		}

		return nil
	},
}

func init() {
	inventoryCmd.Flags().StringVarP(&inventoryOutput, "output", "o", "", "output path (.xlsx or .csv, default: output/inventory.xlsx)")
	inventoryCmd.Flags().BoolVar(&inventoryLoose, "include-loose", false, "treat folders of loose shapefiles as containers")
	inventoryCmd.Flags().StringVar(&inventoryPostGIS, "postgis", "", "PostGIS connection string to inventory")
	rootCmd.AddCommand(inventoryCmd)
}
