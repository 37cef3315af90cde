// Package shapefile treats a folder of loose geodata files as a workspace:
// *.shp files are feature classes, standalone *.dbf files are tables, and
// common raster formats are listed by name.
package shapefile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	shp "github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"

	"github.com/jbadsdata/arc-hacks/internal/workspace"
)

var rasterExts = map[string]bool{
	".tif":  true,
	".tiff": true,
	".img":  true,
	".asc":  true,
}

// Folder is a Workspace over a directory of loose shapefiles and rasters.
type Folder struct {
	path           string
	featureClasses []string
	tables         []string
	rasters        []string
}

var _ workspace.Workspace = (*Folder)(nil)

// Open scans the directory once and classifies its entries. Subdirectories
// are not descended into; the inventory walk handles those.
func Open(path string) (*Folder, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("reading workspace folder %s: %w", path, err)
	}

	f := &Folder{path: path}
	shapeNames := make(map[string]bool)
	var dbfNames []string

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		switch {
		case ext == ".shp":
			f.featureClasses = append(f.featureClasses, e.Name())
			shapeNames[strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))] = true
		case ext == ".dbf":
			dbfNames = append(dbfNames, e.Name())
		case rasterExts[ext]:
			f.rasters = append(f.rasters, e.Name())
		}
	}

	// A dbf with a sibling shp is that shapefile's attribute table, not a
	// standalone table.
	for _, name := range dbfNames {
		base := strings.TrimSuffix(name, filepath.Ext(name))
		if !shapeNames[base] {
			f.tables = append(f.tables, name)
		}
	}

	sort.Strings(f.featureClasses)
	sort.Strings(f.tables)
	sort.Strings(f.rasters)
	return f, nil
}

func (f *Folder) Name() string { return filepath.Base(f.path) }
func (f *Folder) Path() string { return f.path }

func (f *Folder) ListFeatureClasses() ([]string, error) {
	return f.featureClasses, nil
}

// ListFeatureDatasets returns nil: loose folders have no grouping container.
func (f *Folder) ListFeatureDatasets() ([]string, error) {
	return nil, nil
}

func (f *Folder) SetDataset(name string) error {
	if name != "" {
		return fmt.Errorf("unknown feature dataset %q in %s", name, f.path)
	}
	return nil
}

func (f *Folder) ListTables() ([]string, error) {
	return f.tables, nil
}

func (f *Folder) ListRasters() ([]string, error) {
	return f.rasters, nil
}

func (f *Folder) Describe(name string) (*workspace.Description, error) {
	full := filepath.Join(f.path, name)
	ext := strings.ToLower(filepath.Ext(name))
	switch {
	case ext == ".shp":
		return f.describeShapefile(name, full)
	case ext == ".dbf":
		return describeDBF(name, full)
	case rasterExts[ext]:
		return &workspace.Description{
			Name: name,
			Path: full,
			Type: workspace.TypeRaster,
		}, nil
	}
	return nil, fmt.Errorf("no such dataset %q in %s", name, f.path)
}

func (f *Folder) Close() error { return nil }

func (f *Folder) describeShapefile(name, full string) (*workspace.Description, error) {
	r, err := shp.Open(full)
	if err != nil {
		return nil, fmt.Errorf("opening shapefile %s: %w", full, err)
	}
	defer r.Close()

	box := r.BBox()
	d := &workspace.Description{
		Name:         name,
		Path:         full,
		Type:         workspace.TypeFeatureClass,
		GeometryType: geometryName(r.GeometryType),
		Extent: &orb.Bound{
			Min: orb.Point{box.MinX, box.MinY},
			Max: orb.Point{box.MaxX, box.MaxY},
		},
	}

	// Record count and fields come from the sibling dbf; a missing or
	// unreadable dbf degrades to an uncounted, fieldless feature class.
	base := strings.TrimSuffix(full, filepath.Ext(full))
	if header, err := readDBF(base + ".dbf"); err == nil {
		d.FeatureCount = workspace.Count(header.records)
		d.Fields = header.fields
	}

	if wkt, err := os.ReadFile(base + ".prj"); err == nil {
		d.SpatialReference = workspace.SRSNameFromWKT(string(wkt))
	}
	return d, nil
}

func describeDBF(name, full string) (*workspace.Description, error) {
	d := &workspace.Description{
		Name: name,
		Path: full,
		Type: workspace.TypeTable,
	}
	header, err := readDBF(full)
	if err != nil {
		// Per-item isolation: an unreadable table still yields a row.
		return d, nil
	}
	d.FeatureCount = workspace.Count(header.records)
	d.Fields = header.fields
	return d, nil
}

func geometryName(t shp.ShapeType) string {
	switch t {
	case shp.POINT, shp.POINTZ, shp.POINTM:
		return "Point"
	case shp.POLYLINE, shp.POLYLINEZ, shp.POLYLINEM:
		return "Polyline"
	case shp.POLYGON, shp.POLYGONZ, shp.POLYGONM:
		return "Polygon"
	case shp.MULTIPOINT, shp.MULTIPOINTZ, shp.MULTIPOINTM:
		return "Multipoint"
	case shp.MULTIPATCH:
		return "MultiPatch"
	case shp.NULL:
		return ""
	}
	return fmt.Sprintf("Unknown(%d)", t)
}
