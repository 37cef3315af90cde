// Package inventory walks a directory tree, opens every geodata container it
// finds, and collects one catalog record per dataset.
package inventory

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jbadsdata/arc-hacks/internal/catalog"
	"github.com/jbadsdata/arc-hacks/internal/workspace"
	"github.com/jbadsdata/arc-hacks/internal/workspace/filegdb"
	"github.com/jbadsdata/arc-hacks/internal/workspace/gpkg"
	"github.com/jbadsdata/arc-hacks/internal/workspace/postgis"
	"github.com/jbadsdata/arc-hacks/internal/workspace/shapefile"
)

// OpenFunc opens a detected container path as a workspace.
type OpenFunc func(path string) (workspace.Workspace, error)

// Scanner drives the inventory walk. Open may be replaced in tests; when nil
// the suffix-based default dispatch is used.
type Scanner struct {
	Log  *slog.Logger
	Open OpenFunc

	// OGRInfo overrides the ogrinfo binary used for file geodatabases.
	OGRInfo string

	// IncludeLoose treats folders directly containing shapefiles as
	// containers too.
	IncludeLoose bool
}

// DefaultOpen dispatches a container path to its provider by suffix.
// Suffixless directories are treated as loose shapefile folders.
func (s *Scanner) DefaultOpen(path string) (workspace.Workspace, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gdb":
		return filegdb.Open(path, s.OGRInfo)
	case ".gpkg":
		return gpkg.Open(path)
	case "":
		return shapefile.Open(path)
	}
	return nil, &workspace.UnsupportedContainerError{Path: path}
}

func (s *Scanner) open(path string) (workspace.Workspace, error) {
	if s.Open != nil {
		return s.Open(path)
	}
	return s.DefaultOpen(path)
}

// Scan walks root and inventories every container found under it. Containers
// that fail to open are logged and skipped; the walk itself only fails when
// the root is unreadable.
func (s *Scanner) Scan(ctx context.Context, root string) ([]catalog.Record, error) {
	var records []catalog.Record
	looseSeen := make(map[string]bool)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			s.Log.Warn("skipping unreadable entry", "path", path, "error", err)
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		name := strings.ToLower(d.Name())
		switch {
		case d.IsDir() && strings.HasSuffix(name, ".gdb"):
			records = append(records, s.scanContainer(path)...)
			return filepath.SkipDir
		case !d.IsDir() && strings.HasSuffix(name, ".gdb"):
			// The known hazard: a plain file wearing the geodatabase suffix.
			s.Log.Warn("ignoring non-directory with .gdb suffix", "path", path)
		case !d.IsDir() && strings.HasSuffix(name, ".gpkg"):
			records = append(records, s.scanContainer(path)...)
		case !d.IsDir() && strings.HasSuffix(name, ".shp") && s.IncludeLoose:
			dir := filepath.Dir(path)
			if !looseSeen[dir] {
				looseSeen[dir] = true
				records = append(records, s.scanContainer(dir)...)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// ScanPostGIS inventories a PostGIS database with the same sequencing as the
// filesystem walk.
func (s *Scanner) ScanPostGIS(ctx context.Context, dsn string) ([]catalog.Record, error) {
	ws, err := postgis.Open(ctx, dsn)
	if err != nil {
		return nil, err
	}
	defer ws.Close()

	s.Log.Info("scanning PostGIS database", "database", ws.Name())
	return s.collect(ws, time.Time{}), nil
}

func (s *Scanner) scanContainer(path string) []catalog.Record {
	s.Log.Info("scanning container", "path", path)

	var modified time.Time
	if info, err := os.Stat(path); err == nil {
		modified = info.ModTime()
	}

	ws, err := s.open(path)
	if err != nil {
		s.Log.Warn("skipping container", "path", path, "error", err)
		return nil
	}
	defer ws.Close()

	return s.collect(ws, modified)
}

// collect lists and describes a container's datasets in a fixed order:
// top-level feature classes, then each feature dataset's feature classes
// (scoping in and back out), then standalone tables, then rasters.
func (s *Scanner) collect(ws workspace.Workspace, modified time.Time) []catalog.Record {
	var records []catalog.Record

	appendScope := func(names []string, featureDataset string) {
		for _, n := range names {
			records = append(records, s.record(ws, modified, n, featureDataset))
		}
	}

	fcs, err := ws.ListFeatureClasses()
	if err != nil {
		s.Log.Warn("listing feature classes", "container", ws.Path(), "error", err)
	}
	appendScope(fcs, "")

	fds, err := ws.ListFeatureDatasets()
	if err != nil {
		s.Log.Warn("listing feature datasets", "container", ws.Path(), "error", err)
	}
	for _, ds := range fds {
		if err := ws.SetDataset(ds); err != nil {
			s.Log.Warn("scoping feature dataset", "dataset", ds, "error", err)
			continue
		}
		nested, err := ws.ListFeatureClasses()
		if err != nil {
			s.Log.Warn("listing feature classes", "dataset", ds, "error", err)
		}
		appendScope(nested, ds)
		if err := ws.SetDataset(""); err != nil {
			s.Log.Warn("resetting dataset scope", "container", ws.Path(), "error", err)
		}
	}

	tables, err := ws.ListTables()
	if err != nil {
		s.Log.Warn("listing tables", "container", ws.Path(), "error", err)
	}
	appendScope(tables, "")

	rasters, err := ws.ListRasters()
	if err != nil {
		s.Log.Warn("listing rasters", "container", ws.Path(), "error", err)
	}
	appendScope(rasters, "")

	return records
}

// record describes a single dataset. A describe failure still yields a row,
// with the descriptive fields left empty.
func (s *Scanner) record(ws workspace.Workspace, modified time.Time, name, featureDataset string) catalog.Record {
	r := catalog.Record{
		ContainerName:     ws.Name(),
		ContainerPath:     ws.Path(),
		ContainerModified: modified,
		FeatureDataset:    featureDataset,
		DatasetName:       name,
		DatasetPath:       filepath.Join(ws.Path(), featureDataset, name),
	}

	d, err := ws.Describe(name)
	if err != nil {
		s.Log.Warn("describing dataset", "dataset", name, "error", err)
		return r
	}

	r.DatasetName = d.Name
	if d.Path != "" {
		r.DatasetPath = d.Path
	}
	r.DatasetType = d.Type
	r.GeometryType = d.GeometryType
	r.FeatureCount = d.FeatureCount
	r.SpatialReference = d.SpatialReference
	r.Extent = d.Extent
	return r
}
