// Package gpkg reads OGC GeoPackage containers (SQLite databases) for the
// inventory. Feature tables, attribute tables, and tile pyramids come from
// gpkg_contents; geometry and spatial reference metadata from the
// gpkg_geometry_columns and gpkg_spatial_ref_sys registries.
package gpkg

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/paulmach/orb"

	"github.com/jbadsdata/arc-hacks/internal/workspace"
)

type content struct {
	tableName string
	dataType  string
	srsID     sql.NullInt64
	minX      sql.NullFloat64
	minY      sql.NullFloat64
	maxX      sql.NullFloat64
	maxY      sql.NullFloat64
}

// GeoPackage is a Workspace over one .gpkg file, opened read-only.
type GeoPackage struct {
	path     string
	db       *sql.DB
	contents []content
}

var _ workspace.Workspace = (*GeoPackage)(nil)

// Open opens the GeoPackage and loads its contents registry.
func Open(path string) (*GeoPackage, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro&immutable=1")
	if err != nil {
		return nil, fmt.Errorf("opening geopackage %s: %w", path, err)
	}

	rows, err := db.Query(`
		SELECT table_name, data_type, srs_id, min_x, min_y, max_x, max_y
		FROM gpkg_contents
		ORDER BY table_name`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("reading gpkg_contents of %s: %w", path, err)
	}
	defer rows.Close()

	g := &GeoPackage{path: path, db: db}
	for rows.Next() {
		var c content
		if err := rows.Scan(&c.tableName, &c.dataType, &c.srsID, &c.minX, &c.minY, &c.maxX, &c.maxY); err != nil {
			db.Close()
			return nil, fmt.Errorf("scanning gpkg_contents of %s: %w", path, err)
		}
		g.contents = append(g.contents, c)
	}
	if err := rows.Err(); err != nil {
		db.Close()
		return nil, fmt.Errorf("reading gpkg_contents of %s: %w", path, err)
	}
	return g, nil
}

func (g *GeoPackage) Name() string { return filepath.Base(g.path) }
func (g *GeoPackage) Path() string { return g.path }

func (g *GeoPackage) ListFeatureClasses() ([]string, error) {
	return g.listByType("features"), nil
}

// ListFeatureDatasets returns nil: GeoPackages have no grouping container.
func (g *GeoPackage) ListFeatureDatasets() ([]string, error) {
	return nil, nil
}

func (g *GeoPackage) SetDataset(name string) error {
	if name != "" {
		return fmt.Errorf("unknown feature dataset %q in %s", name, g.path)
	}
	return nil
}

func (g *GeoPackage) ListTables() ([]string, error) {
	return g.listByType("attributes"), nil
}

func (g *GeoPackage) ListRasters() ([]string, error) {
	rasters := g.listByType("tiles")
	return append(rasters, g.listByType("2d-gridded-coverage")...), nil
}

func (g *GeoPackage) listByType(dataType string) []string {
	var names []string
	for _, c := range g.contents {
		if c.dataType == dataType {
			names = append(names, c.tableName)
		}
	}
	return names
}

func (g *GeoPackage) Describe(name string) (*workspace.Description, error) {
	var c *content
	for i := range g.contents {
		if g.contents[i].tableName == name {
			c = &g.contents[i]
			break
		}
	}
	if c == nil {
		return nil, fmt.Errorf("no such dataset %q in %s", name, g.path)
	}

	d := &workspace.Description{
		Name:   name,
		Path:   g.path + string(filepath.Separator) + name,
		Extent: extentOf(c),
	}

	switch c.dataType {
	case "features":
		d.Type = workspace.TypeFeatureClass
		// Geometry type failures degrade to an empty value.
		g.db.QueryRow(`
			SELECT geometry_type_name FROM gpkg_geometry_columns
			WHERE table_name = ?`, name).Scan(&d.GeometryType)
	case "attributes":
		d.Type = workspace.TypeTable
	default:
		d.Type = workspace.TypeRaster
	}

	if c.srsID.Valid {
		d.SpatialReference = g.srsName(c.srsID.Int64)
	}

	if d.Type != workspace.TypeRaster {
		if count, err := g.rowCount(name); err == nil {
			d.FeatureCount = workspace.Count(count)
		}
		d.Fields = g.tableFields(name)
	}
	return d, nil
}

func (g *GeoPackage) Close() error {
	return g.db.Close()
}

func (g *GeoPackage) srsName(srsID int64) string {
	var name sql.NullString
	err := g.db.QueryRow(`
		SELECT srs_name FROM gpkg_spatial_ref_sys
		WHERE srs_id = ?`, srsID).Scan(&name)
	if err != nil || !name.Valid {
		return ""
	}
	return name.String
}

func (g *GeoPackage) rowCount(table string) (int64, error) {
	var count int64
	err := g.db.QueryRow(`SELECT COUNT(*) FROM ` + quoteIdent(table)).Scan(&count)
	return count, err
}

func (g *GeoPackage) tableFields(table string) []workspace.Field {
	rows, err := g.db.Query(`PRAGMA table_info(` + quoteIdent(table) + `)`)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var fields []workspace.Field
	for rows.Next() {
		var (
			cid     int
			name    string
			ctype   string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dflt, &pk); err != nil {
			return fields
		}
		fields = append(fields, workspace.Field{
			Name:     name,
			Type:     ctype,
			Nullable: notNull == 0,
		})
	}
	return fields
}

func extentOf(c *content) *orb.Bound {
	if !c.minX.Valid || !c.minY.Valid || !c.maxX.Valid || !c.maxY.Valid {
		return nil
	}
	return &orb.Bound{
		Min: orb.Point{c.minX.Float64, c.minY.Float64},
		Max: orb.Point{c.maxX.Float64, c.maxY.Float64},
	}
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
