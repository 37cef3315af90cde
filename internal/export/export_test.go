package export

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/jbadsdata/arc-hacks/internal/catalog"
	"github.com/jbadsdata/arc-hacks/internal/workspace"
)

func sampleRecords() []catalog.Record {
	modified := time.Date(2024, 6, 1, 8, 15, 0, 0, time.UTC)
	return []catalog.Record{
		{
			ContainerName:     "county.gdb",
			ContainerPath:     "/data/county.gdb",
			ContainerModified: modified,
			DatasetName:       "roads",
			DatasetPath:       "/data/county.gdb/roads",
			DatasetType:       "FeatureClass",
			GeometryType:      "Polyline",
			FeatureCount:      workspace.Count(120),
			SpatialReference:  "NAD_1983_StatePlane_Ohio_North",
		},
		{
			ContainerName:  "county.gdb",
			ContainerPath:  "/data/county.gdb",
			FeatureDataset: "hydro",
			DatasetName:    "rivers",
			DatasetPath:    "/data/county.gdb/hydro/rivers",
			DatasetType:    "FeatureClass",
			GeometryType:   "Polyline",
			// FeatureCount nil: the count query failed for this one.
		},
	}
}

func TestWriteRejectsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	err := Write(nil, path)
	if !errors.Is(err, ErrNoRecords) {
		t.Fatalf("Write(nil) = %v, want ErrNoRecords", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("no output file should exist for an empty export")
	}
}

func TestWriteRejectsUnknownExtension(t *testing.T) {
	err := Write(sampleRecords(), filepath.Join(t.TempDir(), "out.pdf"))
	if err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.csv")
	if err := Write(sampleRecords(), path); err != nil {
		t.Fatalf("Write: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("reading csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(rows))
	}
	if rows[0][0] != "GDB_Name" || rows[0][8] != "Feature_Count" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][4] != "roads" || rows[1][8] != "120" {
		t.Errorf("roads row = %v", rows[1])
	}
	if rows[1][2] != "2024-06-01 08:15:00" {
		t.Errorf("modified cell = %q", rows[1][2])
	}
	// Failed count exports as an empty cell, not a zero.
	if rows[2][4] != "rivers" || rows[2][8] != "" {
		t.Errorf("rivers row = %v", rows[2])
	}
	if rows[2][3] != "hydro" {
		t.Errorf("rivers feature dataset = %q", rows[2][3])
	}
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.xlsx")
	if err := Write(sampleRecords(), path); err != nil {
		t.Fatalf("Write: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("reopening workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Inventory")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want header + 2", len(rows))
	}
	if rows[0][0] != "GDB_Name" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][4] != "roads" || rows[2][4] != "rivers" {
		t.Errorf("data rows = %v / %v", rows[1], rows[2])
	}
}
