// Package workspace abstracts geodata containers (file geodatabases,
// GeoPackages, shapefile folders, PostGIS databases) behind a single
// listing/description interface.
package workspace

import (
	"github.com/paulmach/orb"
)

// Dataset types reported by Describe.
const (
	TypeFeatureClass = "FeatureClass"
	TypeTable        = "Table"
	TypeRaster       = "Raster"
)

// Workspace is a read-only view of one geodata container.
//
// Listing calls are scoped by SetDataset: after SetDataset(name),
// ListFeatureClasses returns the feature classes inside that feature
// dataset; SetDataset("") restores the container-level scope. Callers are
// expected to scope, list, and reset sequentially — implementations are not
// safe for concurrent use.
type Workspace interface {
	// Name returns the container's display name (usually its base filename).
	Name() string

	// Path returns the container's filesystem path or connection identifier.
	Path() string

	ListFeatureClasses() ([]string, error)
	ListFeatureDatasets() ([]string, error)
	SetDataset(name string) error
	ListTables() ([]string, error)
	ListRasters() ([]string, error)

	// Describe returns dataset-level metadata for a name previously returned
	// by one of the listing calls, resolved in the current dataset scope.
	Describe(name string) (*Description, error)

	Close() error
}

// Description is the per-dataset metadata captured in the inventory.
// FeatureCount is nil when counting failed or does not apply (rasters);
// SpatialReference is empty when unavailable. Providers swallow those
// failures rather than surfacing them.
type Description struct {
	Name             string
	Path             string
	Type             string // TypeFeatureClass, TypeTable, TypeRaster
	GeometryType     string // feature classes only
	FeatureCount     *int64
	SpatialReference string
	Extent           *orb.Bound
	Fields           []Field
}

// Field describes one attribute column of a feature class or table.
type Field struct {
	Name     string
	Type     string
	Length   int
	Alias    string
	Nullable bool
}

// Count wraps an int64 for use as a Description.FeatureCount literal.
func Count(n int64) *int64 { return &n }

// UnsupportedContainerError is returned when no provider recognizes a path.
type UnsupportedContainerError struct {
	Path string
}

func (e *UnsupportedContainerError) Error() string {
	return "unsupported container: " + e.Path
}
