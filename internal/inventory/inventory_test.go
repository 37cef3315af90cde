package inventory

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/jbadsdata/arc-hacks/internal/catalog"
	"github.com/jbadsdata/arc-hacks/internal/workspace"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func desc(name, dsType, geomType string, count int64) *workspace.Description {
	return &workspace.Description{
		Name:         name,
		Type:         dsType,
		GeometryType: geomType,
		FeatureCount: workspace.Count(count),
	}
}

func TestScanEmptyTree(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "docs", "nested"), 0o755); err != nil {
		t.Fatal(err)
	}

	s := &Scanner{Log: testLogger(), Open: func(path string) (workspace.Workspace, error) {
		t.Fatalf("unexpected open of %s", path)
		return nil, nil
	}}

	records, err := s.Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("records = %d, want 0", len(records))
	}
}

func TestScanMissingRoot(t *testing.T) {
	s := &Scanner{Log: testLogger()}
	if _, err := s.Scan(context.Background(), "/nonexistent/gis"); err == nil {
		t.Error("expected error for missing root")
	}
}

func TestScanSingleGeodatabase(t *testing.T) {
	root := t.TempDir()
	gdbPath := filepath.Join(root, "county.gdb")
	if err := os.Mkdir(gdbPath, 0o755); err != nil {
		t.Fatal(err)
	}

	mock := &workspace.Mock{
		ContainerName: "county.gdb",
		ContainerPath: gdbPath,
		FeatureClasses: map[string][]string{
			"":      {"roads"},
			"hydro": {"rivers"},
		},
		FeatureDatasets: []string{"hydro"},
		Tables:          []string{"owners"},
		Rasters:         []string{"dem"},
		Descriptions: map[string]*workspace.Description{
			"roads":  desc("roads", workspace.TypeFeatureClass, "Polyline", 120),
			"rivers": desc("rivers", workspace.TypeFeatureClass, "Polyline", 45),
			"owners": desc("owners", workspace.TypeTable, "", 3300),
			"dem":    {Name: "dem", Type: workspace.TypeRaster},
		},
	}

	s := &Scanner{Log: testLogger(), Open: func(path string) (workspace.Workspace, error) {
		if path != gdbPath {
			t.Fatalf("opened %s, want %s", path, gdbPath)
		}
		return mock, nil
	}}

	records, err := s.Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("records = %d, want 4", len(records))
	}

	byName := make(map[string]catalog.Record)
	for _, r := range records {
		byName[r.DatasetName] = r
	}
	if byName["rivers"].FeatureDataset != "hydro" {
		t.Errorf("rivers FeatureDataset = %q, want hydro", byName["rivers"].FeatureDataset)
	}
	for _, n := range []string{"roads", "owners", "dem"} {
		if byName[n].FeatureDataset != "" {
			t.Errorf("%s FeatureDataset = %q, want empty", n, byName[n].FeatureDataset)
		}
	}
	if byName["roads"].ContainerName != "county.gdb" {
		t.Errorf("ContainerName = %q", byName["roads"].ContainerName)
	}
	if byName["roads"].ContainerModified.IsZero() {
		t.Error("ContainerModified should be set from the directory mtime")
	}
	if !mock.Closed {
		t.Error("workspace not closed")
	}
	// The scope must be back at the container level after the feature
	// dataset pass.
	if mock.Scope != "" {
		t.Errorf("final scope = %q, want reset", mock.Scope)
	}
}

func TestScanDescribeFailureKeepsRow(t *testing.T) {
	root := t.TempDir()
	gdbPath := filepath.Join(root, "flaky.gdb")
	if err := os.Mkdir(gdbPath, 0o755); err != nil {
		t.Fatal(err)
	}

	mock := &workspace.Mock{
		ContainerName:  "flaky.gdb",
		ContainerPath:  gdbPath,
		FeatureClasses: map[string][]string{"": {"good", "bad"}},
		Descriptions: map[string]*workspace.Description{
			"good": desc("good", workspace.TypeFeatureClass, "Point", 7),
		},
		DescribeErrs: map[string]error{"bad": errors.New("corrupt header")},
	}

	s := &Scanner{Log: testLogger(), Open: func(string) (workspace.Workspace, error) {
		return mock, nil
	}}

	records, err := s.Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}

	byName := make(map[string]catalog.Record)
	for _, r := range records {
		byName[r.DatasetName] = r
	}
	bad := byName["bad"]
	if bad.DatasetType != "" || bad.FeatureCount != nil || bad.GeometryType != "" {
		t.Errorf("failed describe should leave descriptive fields empty, got %+v", bad)
	}
	if bad.ContainerName != "flaky.gdb" {
		t.Errorf("bad ContainerName = %q", bad.ContainerName)
	}
}

func TestScanOpenFailureSkipsContainer(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"broken.gdb", "fine.gdb"} {
		if err := os.Mkdir(filepath.Join(root, name), 0o755); err != nil {
			t.Fatal(err)
		}
	}

	s := &Scanner{Log: testLogger(), Open: func(path string) (workspace.Workspace, error) {
		if filepath.Base(path) == "broken.gdb" {
			return nil, errors.New("not a geodatabase")
		}
		return &workspace.Mock{
			ContainerName:  "fine.gdb",
			ContainerPath:  path,
			FeatureClasses: map[string][]string{"": {"parcels"}},
			Descriptions: map[string]*workspace.Description{
				"parcels": desc("parcels", workspace.TypeFeatureClass, "Polygon", 9),
			},
		}, nil
	}}

	records, err := s.Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(records) != 1 || records[0].DatasetName != "parcels" {
		t.Fatalf("records = %+v, want just parcels", records)
	}
}

func TestScanIgnoresGdbSuffixedFile(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "imposter.gdb"), []byte("plain file"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := &Scanner{Log: testLogger(), Open: func(path string) (workspace.Workspace, error) {
		t.Fatalf("unexpected open of %s", path)
		return nil, nil
	}}

	records, err := s.Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("records = %d, want 0", len(records))
	}
}

func TestScanDetectsGeoPackageFiles(t *testing.T) {
	root := t.TempDir()
	gpkgPath := filepath.Join(root, "survey.gpkg")
	if err := os.WriteFile(gpkgPath, []byte("sqlite"), 0o644); err != nil {
		t.Fatal(err)
	}

	var opened []string
	s := &Scanner{Log: testLogger(), Open: func(path string) (workspace.Workspace, error) {
		opened = append(opened, path)
		return &workspace.Mock{
			ContainerName:  "survey.gpkg",
			ContainerPath:  path,
			FeatureClasses: map[string][]string{"": {"wells"}},
			Descriptions: map[string]*workspace.Description{
				"wells": desc("wells", workspace.TypeFeatureClass, "POINT", 3),
			},
		}, nil
	}}

	records, err := s.Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(opened) != 1 || opened[0] != gpkgPath {
		t.Errorf("opened = %v", opened)
	}
	if len(records) != 1 {
		t.Errorf("records = %d, want 1", len(records))
	}
}

func TestScanLooseShapefileFolder(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "downloads")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"a.shp", "b.shp"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte{0}, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	var opened []string
	mockFor := func(path string) (workspace.Workspace, error) {
		opened = append(opened, path)
		return &workspace.Mock{ContainerName: filepath.Base(path), ContainerPath: path}, nil
	}

	// Without IncludeLoose the folder is not a container.
	s := &Scanner{Log: testLogger(), Open: mockFor}
	if _, err := s.Scan(context.Background(), root); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(opened) != 0 {
		t.Fatalf("opened = %v, want none", opened)
	}

	// With IncludeLoose it is opened exactly once despite two shapefiles.
	s.IncludeLoose = true
	if _, err := s.Scan(context.Background(), root); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(opened) != 1 || opened[0] != dir {
		t.Errorf("opened = %v, want [%s]", opened, dir)
	}
}
