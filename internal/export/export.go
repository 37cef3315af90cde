// Package export serializes sorted inventory records to spreadsheets and to
// the optional MongoDB catalog sink.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/jbadsdata/arc-hacks/internal/catalog"
)

// ErrNoRecords is returned when asked to export an empty record set; an
// inventory run with no datasets must not produce an output file.
var ErrNoRecords = errors.New("no records to export")

// Header is the spreadsheet column order, one row per dataset.
var Header = []string{
	"GDB_Name",
	"GDB_Path",
	"GDB_Last_Modified",
	"Feature_Dataset",
	"Dataset_Name",
	"Dataset_Path",
	"Dataset_Type",
	"Geometry_Type",
	"Feature_Count",
	"Spatial_Reference",
	"Extent",
}

// Write serializes records to path, choosing the format from the file
// extension (.xlsx or .csv).
func Write(records []catalog.Record, path string) error {
	if len(records) == 0 {
		return ErrNoRecords
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return writeXLSX(records, path)
	case ".csv":
		return writeCSV(records, path)
	}
	return fmt.Errorf("unsupported output format %q (use .xlsx or .csv)", filepath.Ext(path))
}

func row(r catalog.Record) []string {
	count := ""
	if r.FeatureCount != nil {
		count = strconv.FormatInt(*r.FeatureCount, 10)
	}
	return []string{
		r.ContainerName,
		r.ContainerPath,
		catalog.FormatTime(r.ContainerModified),
		r.FeatureDataset,
		r.DatasetName,
		r.DatasetPath,
		r.DatasetType,
		r.GeometryType,
		count,
		r.SpatialReference,
		catalog.FormatExtent(r.Extent),
	}
}

func writeXLSX(records []catalog.Record, path string) error {
	const sheet = "Inventory"

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("addressing row %d: %w", i+2, err)
		}
		values := make([]any, 0, len(Header))
		for _, v := range row(r) {
			values = append(values, v)
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving spreadsheet: %w", err)
	}
	return nil
}

func writeCSV(records []catalog.Record, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer out.Close()

	w := csv.NewWriter(out)
	if err := w.Write(Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, r := range records {
		if err := w.Write(row(r)); err != nil {
			return fmt.Errorf("writing row for %s: %w", r.DatasetName, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return out.Close()
}
