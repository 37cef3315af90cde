// Package postgis presents a PostGIS database as a workspace: the public
// schema is the container's top level, other schemas holding spatial tables
// appear as feature datasets, and geometry_columns / raster_columns drive
// the listings.
package postgis

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/paulmach/orb"

	"github.com/jbadsdata/arc-hacks/internal/workspace"
)

// Database is a Workspace over one PostGIS database connection.
type Database struct {
	ctx   context.Context
	pool  *pgxpool.Pool
	dsn   string
	name  string
	scope string // current schema, "" means public
}

var _ workspace.Workspace = (*Database)(nil)

// Open connects to the database described by dsn. A single connection is
// enough: the inventory is strictly sequential.
func Open(ctx context.Context, dsn string) (*Database, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}
	cfg.MaxConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to PostGIS: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging PostGIS: %w", err)
	}

	return &Database{
		ctx:  ctx,
		pool: pool,
		dsn:  dsn,
		name: cfg.ConnConfig.Database,
	}, nil
}

func (d *Database) Name() string { return d.name }
func (d *Database) Path() string { return d.dsn }

func (d *Database) schema() string {
	if d.scope == "" {
		return "public"
	}
	return d.scope
}

func (d *Database) ListFeatureClasses() ([]string, error) {
	return d.queryNames(`
		SELECT f_table_name FROM geometry_columns
		WHERE f_table_schema = $1
		ORDER BY f_table_name`, d.schema())
}

// ListFeatureDatasets lists non-public schemas that contain spatial tables.
func (d *Database) ListFeatureDatasets() ([]string, error) {
	return d.queryNames(`
		SELECT DISTINCT f_table_schema FROM geometry_columns
		WHERE f_table_schema <> 'public'
		ORDER BY f_table_schema`)
}

func (d *Database) SetDataset(name string) error {
	d.scope = name
	return nil
}

func (d *Database) ListTables() ([]string, error) {
	return d.queryNames(`
		SELECT t.table_name
		FROM information_schema.tables t
		WHERE t.table_schema = $1
		  AND t.table_type = 'BASE TABLE'
		  AND t.table_name <> 'spatial_ref_sys'
		  AND NOT EXISTS (
			SELECT 1 FROM geometry_columns g
			WHERE g.f_table_schema = t.table_schema
			  AND g.f_table_name = t.table_name
		  )
		ORDER BY t.table_name`, d.schema())
}

// ListRasters lists raster_columns tables; a database without the raster
// extension yields an empty list, not an error.
func (d *Database) ListRasters() ([]string, error) {
	names, err := d.queryNames(`
		SELECT r_table_name FROM raster_columns
		WHERE r_table_schema = $1
		ORDER BY r_table_name`, d.schema())
	if err != nil {
		return nil, nil
	}
	return names, nil
}

func (d *Database) Describe(name string) (*workspace.Description, error) {
	schema := d.schema()
	desc := &workspace.Description{
		Name: name,
		Path: schema + "." + name,
	}

	var geomCol, geomType string
	var srid int
	err := d.pool.QueryRow(d.ctx, `
		SELECT f_geometry_column, type, srid FROM geometry_columns
		WHERE f_table_schema = $1 AND f_table_name = $2`,
		schema, name).Scan(&geomCol, &geomType, &srid)
	switch {
	case err == nil:
		desc.Type = workspace.TypeFeatureClass
		desc.GeometryType = geomType
		desc.SpatialReference = d.srsName(srid)
		desc.Extent = d.extent(schema, name, geomCol)
	case d.isRaster(schema, name):
		desc.Type = workspace.TypeRaster
	default:
		desc.Type = workspace.TypeTable
	}

	if desc.Type != workspace.TypeRaster {
		var count int64
		q := fmt.Sprintf(`SELECT count(*) FROM %s`, QualifiedName(schema, name))
		if err := d.pool.QueryRow(d.ctx, q).Scan(&count); err == nil {
			desc.FeatureCount = workspace.Count(count)
		}
		desc.Fields = d.columns(schema, name)
	}
	return desc, nil
}

func (d *Database) Close() error {
	d.pool.Close()
	return nil
}

func (d *Database) queryNames(query string, args ...any) ([]string, error) {
	rows, err := d.pool.Query(d.ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

func (d *Database) isRaster(schema, name string) bool {
	var one int
	err := d.pool.QueryRow(d.ctx, `
		SELECT 1 FROM raster_columns
		WHERE r_table_schema = $1 AND r_table_name = $2`,
		schema, name).Scan(&one)
	return err == nil
}

func (d *Database) srsName(srid int) string {
	var srtext string
	err := d.pool.QueryRow(d.ctx, `
		SELECT srtext FROM spatial_ref_sys WHERE srid = $1`, srid).Scan(&srtext)
	if err != nil {
		return ""
	}
	if name := workspace.SRSNameFromWKT(srtext); name != "" {
		return name
	}
	return fmt.Sprintf("EPSG:%d", srid)
}

func (d *Database) extent(schema, table, geomCol string) *orb.Bound {
	q := fmt.Sprintf(`
		SELECT ST_XMin(e), ST_YMin(e), ST_XMax(e), ST_YMax(e)
		FROM (SELECT ST_Extent(%s) AS e FROM %s) s`,
		quoteIdent(geomCol), QualifiedName(schema, table))

	var minX, minY, maxX, maxY *float64
	if err := d.pool.QueryRow(d.ctx, q).Scan(&minX, &minY, &maxX, &maxY); err != nil {
		return nil
	}
	if minX == nil || minY == nil || maxX == nil || maxY == nil {
		return nil
	}
	return &orb.Bound{
		Min: orb.Point{*minX, *minY},
		Max: orb.Point{*maxX, *maxY},
	}
}

func (d *Database) columns(schema, table string) []workspace.Field {
	rows, err := d.pool.Query(d.ctx, `
		SELECT column_name, data_type, COALESCE(character_maximum_length, 0), is_nullable
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position`, schema, table)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var fields []workspace.Field
	for rows.Next() {
		var f workspace.Field
		var nullable string
		if err := rows.Scan(&f.Name, &f.Type, &f.Length, &nullable); err != nil {
			return fields
		}
		f.Nullable = nullable == "YES"
		fields = append(fields, f)
	}
	return fields
}

// QualifiedName renders a quoted schema.table identifier.
func QualifiedName(schema, table string) string {
	return quoteIdent(schema) + "." + quoteIdent(table)
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
