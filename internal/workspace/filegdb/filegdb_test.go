package filegdb

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jbadsdata/arc-hacks/internal/workspace"
)

func TestValidate_PlainFileRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fake.gdb")
	if err := os.WriteFile(path, []byte("not a geodatabase"), 0o644); err != nil {
		t.Fatal(err)
	}

	err := Validate(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Validate = %v, want ValidationError", err)
	}
	if verr.Reason != "not a directory" {
		t.Errorf("Reason = %q", verr.Reason)
	}
}

func TestValidate_EmptyDirRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hollow.gdb")
	if err := os.Mkdir(path, 0o755); err != nil {
		t.Fatal(err)
	}

	err := Validate(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Validate = %v, want ValidationError", err)
	}
}

func TestValidate_SystemFilesAccepted(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "real.gdb")
	if err := os.Mkdir(path, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(path, "a00000001.gdbtable"), []byte{0}, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := Validate(path); err != nil {
		t.Errorf("Validate = %v, want nil", err)
	}
}

func TestValidate_MissingPath(t *testing.T) {
	if err := Validate("/nonexistent/x.gdb"); err == nil {
		t.Error("expected error for missing path")
	}
}

const sampleReport = `{
  "description": "/data/parcels.gdb",
  "driverShortName": "OpenFileGDB",
  "layers": [
    {
      "name": "parcels",
      "featureCount": 4821,
      "geometryFields": [
        {
          "name": "SHAPE",
          "type": "MultiPolygon",
          "coordinateSystem": {
            "wkt": "PROJCS[\"NAD_1983_StatePlane_Ohio_North\",GEOGCS[\"GCS_North_American_1983\"]]"
          }
        }
      ],
      "fields": [
        {"name": "PIN", "type": "String", "width": 18, "alias": "Parcel ID", "nullable": false},
        {"name": "ACRES", "type": "Real", "width": 0, "nullable": true}
      ]
    },
    {
      "name": "owners",
      "featureCount": 3977,
      "geometryFields": [],
      "fields": [
        {"name": "OWNER_NAME", "type": "String", "width": 60}
      ]
    }
  ]
}`

func TestDescribeFromReport(t *testing.T) {
	layers, err := parseReport([]byte(sampleReport))
	if err != nil {
		t.Fatalf("parseReport: %v", err)
	}
	g := &GDB{path: "/data/parcels.gdb", layers: layers}

	fcs, err := g.ListFeatureClasses()
	if err != nil {
		t.Fatalf("ListFeatureClasses: %v", err)
	}
	if len(fcs) != 1 || fcs[0] != "parcels" {
		t.Fatalf("feature classes = %v", fcs)
	}

	tables, err := g.ListTables()
	if err != nil {
		t.Fatalf("ListTables: %v", err)
	}
	if len(tables) != 1 || tables[0] != "owners" {
		t.Fatalf("tables = %v", tables)
	}

	d, err := g.Describe("parcels")
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if d.Type != workspace.TypeFeatureClass {
		t.Errorf("Type = %q", d.Type)
	}
	if d.GeometryType != "MultiPolygon" {
		t.Errorf("GeometryType = %q", d.GeometryType)
	}
	if d.FeatureCount == nil || *d.FeatureCount != 4821 {
		t.Errorf("FeatureCount = %v", d.FeatureCount)
	}
	if d.SpatialReference != "NAD_1983_StatePlane_Ohio_North" {
		t.Errorf("SpatialReference = %q", d.SpatialReference)
	}
	if len(d.Fields) != 2 {
		t.Fatalf("fields = %d", len(d.Fields))
	}
	if d.Fields[0].Alias != "Parcel ID" || d.Fields[0].Nullable {
		t.Errorf("PIN field = %+v", d.Fields[0])
	}
	if !d.Fields[1].Nullable {
		t.Error("ACRES should be nullable")
	}

	dt, err := g.Describe("owners")
	if err != nil {
		t.Fatalf("Describe owners: %v", err)
	}
	if dt.Type != workspace.TypeTable {
		t.Errorf("owners Type = %q", dt.Type)
	}
	// Absent nullable flag defaults to nullable.
	if !dt.Fields[0].Nullable {
		t.Error("OWNER_NAME should default to nullable")
	}

	if _, err := g.Describe("missing"); err == nil {
		t.Error("expected error for unknown dataset")
	}
}

func TestSetDataset(t *testing.T) {
	g := &GDB{path: "/data/x.gdb"}
	if err := g.SetDataset(""); err != nil {
		t.Errorf("reset scope: %v", err)
	}
	if err := g.SetDataset("hydro"); err == nil {
		t.Error("expected error: file geodatabase feature datasets are not exposed")
	}
}
