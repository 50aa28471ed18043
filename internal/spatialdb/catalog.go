package spatialdb

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/mjb-oz/geoutils/pkg/types"
)

// ColumnInfo describes a table column as reported by PRAGMA table_info.
type ColumnInfo struct {
	CID        int
	Name       string
	Type       string
	NotNull    bool
	Default    sql.NullString
	PrimaryKey int
}

// spatialMetaTables are created by InitSpatialMetaData.
var spatialMetaTables = make(map[string]bool)

func init() {
	for _, name := range []string{
		"data_licenses",
		"elementarygeometries",
		"geometry_columns",
		"geometry_columns_auth",
		"geometry_columns_field_infos",
		"geometry_columns_statistics",
		"geometry_columns_time",
		"knn",
		"knn2",
		"spatial_ref_sys",
		"spatial_ref_sys_aux",
		"spatialindex",
		"spatialite_history",
		"sql_statements_log",
		"views_geometry_columns",
		"views_geometry_columns_auth",
		"views_geometry_columns_field_infos",
		"views_geometry_columns_statistics",
		"virts_geometry_columns",
		"virts_geometry_columns_auth",
		"virts_geometry_columns_field_infos",
		"virts_geometry_columns_statistics",
	} {
		spatialMetaTables[name] = true
	}
}

// IsSpatialMeta reports whether name is a Spatialite metadata or spatial
// index table.
func IsSpatialMeta(name string) bool {
	lower := strings.ToLower(name)
	return spatialMetaTables[lower] || strings.HasPrefix(lower, "idx_")
}

// Tables lists the user tables, sorted by name. SQLite internal tables are
// never listed.
func (c *Conn) Tables(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'")
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning table name: %w", err)
		}
		if c.hideMeta && IsSpatialMeta(name) {
			continue
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

// Columns describes the columns of table in declaration order. It returns
// types.ErrTableNotFound when the table does not exist.
func (c *Conn) Columns(ctx context.Context, table string) ([]ColumnInfo, error) {
	var n int
	err := c.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&n)
	if err != nil {
		return nil, fmt.Errorf("look up table: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: %s", types.ErrTableNotFound, table)
	}

	rows, err := c.db.QueryContext(ctx, "PRAGMA table_info("+QuoteIdent(table)+")")
	if err != nil {
		return nil, fmt.Errorf("describe table: %w", err)
	}
	defer rows.Close()

	var cols []ColumnInfo
	for rows.Next() {
		var ci ColumnInfo
		var notNull int
		if err := rows.Scan(&ci.CID, &ci.Name, &ci.Type, &notNull, &ci.Default, &ci.PrimaryKey); err != nil {
			return nil, fmt.Errorf("scanning column: %w", err)
		}
		ci.NotNull = notNull != 0
		cols = append(cols, ci)
	}
	return cols, rows.Err()
}

// QuoteIdent quotes an SQL identifier, doubling embedded quotes.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
