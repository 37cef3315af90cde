// Package filegdb reads Esri file geodatabases through GDAL's ogrinfo
// executable. The geodatabase format itself is never parsed here; ogrinfo's
// JSON report is the source of truth.
package filegdb

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/jbadsdata/arc-hacks/internal/workspace"
)

// DefaultBinary is the ogrinfo executable resolved from PATH when no
// override is configured.
const DefaultBinary = "ogrinfo"

// ValidationError reports a path that carries the .gdb suffix but is not a
// real file geodatabase. Plain files or stray folders named *.gdb are a
// known hazard in shared GIS directories and must be rejected up front.
type ValidationError struct {
	Path   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("not a file geodatabase: %s (%s)", e.Path, e.Reason)
}

// Validate confirms that path is a directory with file geodatabase system
// files inside. It returns a *ValidationError otherwise.
func Validate(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return &ValidationError{Path: path, Reason: "not a directory"}
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := strings.ToLower(e.Name())
		if name == "gdb" || strings.HasSuffix(name, ".gdbtable") {
			return nil
		}
	}
	return &ValidationError{Path: path, Reason: "no geodatabase system files"}
}

// GDB is a Workspace over one file geodatabase, backed by a single
// ogrinfo invocation whose report is cached for the workspace's lifetime.
type GDB struct {
	path   string
	layers []ogrLayer
}

var _ workspace.Workspace = (*GDB)(nil)

// Open validates the geodatabase and loads its layer report via ogrinfo.
// binary may be empty to use DefaultBinary.
func Open(path, binary string) (*GDB, error) {
	if err := Validate(path); err != nil {
		return nil, err
	}

	if binary == "" {
		binary = DefaultBinary
	}
	out, err := exec.Command(binary, "-json", "-so", path).Output()
	if err != nil {
		return nil, fmt.Errorf("running %s on %s: %w", binary, path, err)
	}

	layers, err := parseReport(out)
	if err != nil {
		return nil, fmt.Errorf("parsing ogrinfo report for %s: %w", path, err)
	}
	return &GDB{path: path, layers: layers}, nil
}

func (g *GDB) Name() string { return filepath.Base(g.path) }
func (g *GDB) Path() string { return g.path }

func (g *GDB) ListFeatureClasses() ([]string, error) {
	var names []string
	for _, l := range g.layers {
		if l.hasGeometry() {
			names = append(names, l.Name)
		}
	}
	return names, nil
}

// ListFeatureDatasets returns nil: the OpenFileGDB driver flattens feature
// datasets out of its layer listing, so grouping is not recoverable here.
func (g *GDB) ListFeatureDatasets() ([]string, error) {
	return nil, nil
}

func (g *GDB) SetDataset(name string) error {
	if name != "" {
		return fmt.Errorf("unknown feature dataset %q in %s", name, g.path)
	}
	return nil
}

func (g *GDB) ListTables() ([]string, error) {
	var names []string
	for _, l := range g.layers {
		if !l.hasGeometry() {
			names = append(names, l.Name)
		}
	}
	return names, nil
}

// ListRasters returns nil: OpenFileGDB exposes vector layers only.
func (g *GDB) ListRasters() ([]string, error) {
	return nil, nil
}

func (g *GDB) Describe(name string) (*workspace.Description, error) {
	for _, l := range g.layers {
		if l.Name != name {
			continue
		}
		d := &workspace.Description{
			Name: l.Name,
			Path: filepath.Join(g.path, l.Name),
			Type: workspace.TypeTable,
		}
		if l.hasGeometry() {
			gf := l.GeometryFields[0]
			d.Type = workspace.TypeFeatureClass
			d.GeometryType = gf.Type
			d.SpatialReference = workspace.SRSNameFromWKT(gf.CoordinateSystem.WKT)
		}
		if l.FeatureCount != nil {
			d.FeatureCount = workspace.Count(*l.FeatureCount)
		}
		for _, f := range l.Fields {
			d.Fields = append(d.Fields, workspace.Field{
				Name:     f.Name,
				Type:     f.Type,
				Length:   f.Width,
				Alias:    f.Alias,
				Nullable: f.Nullable == nil || *f.Nullable,
			})
		}
		return d, nil
	}
	return nil, fmt.Errorf("no such dataset %q in %s", name, g.path)
}

func (g *GDB) Close() error { return nil }

// ogrinfo -json report, reduced to the pieces the inventory needs.
type ogrReport struct {
	Layers []ogrLayer `json:"layers"`
}

type ogrLayer struct {
	Name           string          `json:"name"`
	FeatureCount   *int64          `json:"featureCount"`
	GeometryFields []ogrGeomField  `json:"geometryFields"`
	Fields         []ogrFieldDescr `json:"fields"`
}

type ogrGeomField struct {
	Name             string `json:"name"`
	Type             string `json:"type"`
	CoordinateSystem struct {
		WKT string `json:"wkt"`
	} `json:"coordinateSystem"`
}

type ogrFieldDescr struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Width    int    `json:"width"`
	Alias    string `json:"alias"`
	Nullable *bool  `json:"nullable"`
}

func (l ogrLayer) hasGeometry() bool {
	return len(l.GeometryFields) > 0 && l.GeometryFields[0].Type != "None"
}

func parseReport(data []byte) ([]ogrLayer, error) {
	var report ogrReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, err
	}
	return report.Layers, nil
}
