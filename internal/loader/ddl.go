package loader

import (
	"fmt"
	"strings"

	"github.com/mjb-oz/geoutils/internal/spatialdb"
	"github.com/mjb-oz/geoutils/pkg/types"
)

// SQL storage types for each column kind.
const (
	sqlInteger  = "INTEGER"
	sqlReal     = "REAL"
	sqlText     = "TEXT"
	sqlDatetime = "DATETIME"
)

// tempGeomColumn holds WKT in the staging table.
const tempGeomColumn = "temp_geom"

// stagingSuffix names the staging table of a spatial load.
const stagingSuffix = "_temp"

// SQLType maps a column kind to its SQL storage type. Kinds without a
// mapping fail with types.ErrUnsupportedType.
func SQLType(k types.Kind) (string, error) {
	switch k {
	case types.KindInt:
		return sqlInteger, nil
	case types.KindFloat:
		return sqlReal, nil
	case types.KindText:
		return sqlText, nil
	case types.KindTime:
		return sqlDatetime, nil
	default:
		return "", fmt.Errorf("%w: %s", types.ErrUnsupportedType, k)
	}
}

// colDef is a column name and its SQL type.
type colDef struct {
	name    string
	sqlType string
}

// CreateTableSQL builds the CREATE TABLE statement for table: the index as
// an INTEGER PRIMARY KEY followed by cols.
func CreateTableSQL(table, index string, cols []types.Column) (string, error) {
	defs := make([]colDef, 0, len(cols))
	for _, c := range cols {
		t, err := SQLType(c.Kind)
		if err != nil {
			return "", fmt.Errorf("column %q: %w", c.Name, err)
		}
		defs = append(defs, colDef{name: c.Name, sqlType: t})
	}
	return createTableSQL(table, index, defs), nil
}

func createTableSQL(table, index string, defs []colDef) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	b.WriteString(spatialdb.QuoteIdent(table))
	b.WriteString(" (")
	b.WriteString(spatialdb.QuoteIdent(index))
	b.WriteString(" INTEGER PRIMARY KEY NOT NULL")
	for _, d := range defs {
		b.WriteString(", ")
		b.WriteString(spatialdb.QuoteIdent(d.name))
		b.WriteString(" ")
		b.WriteString(d.sqlType)
	}
	b.WriteString(")")
	return b.String()
}

// createIndexSQL builds the index on the primary key, named
// <table>_<index>_idx.
func createIndexSQL(table, index string) string {
	name := table + "_" + index + "_idx"
	return fmt.Sprintf("CREATE INDEX %s ON %s (%s)",
		spatialdb.QuoteIdent(name), spatialdb.QuoteIdent(table), spatialdb.QuoteIdent(index))
}

func insertSQL(table string, cols []string) string {
	quoted := make([]string, len(cols))
	marks := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = spatialdb.QuoteIdent(c)
		marks[i] = "?"
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		spatialdb.QuoteIdent(table), strings.Join(quoted, ", "), strings.Join(marks, ", "))
}

// updateSQL sets cols on the row whose index matches the last argument.
func updateSQL(table, index string, cols []string) string {
	sets := make([]string, len(cols))
	for i, c := range cols {
		sets[i] = spatialdb.QuoteIdent(c) + " = ?"
	}
	return fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?",
		spatialdb.QuoteIdent(table), strings.Join(sets, ", "), spatialdb.QuoteIdent(index))
}

// copyColumnsSQL copies cols from src into new rows of dst.
func copyColumnsSQL(src, dst string, cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = spatialdb.QuoteIdent(c)
	}
	list := strings.Join(quoted, ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s",
		spatialdb.QuoteIdent(dst), list, list, spatialdb.QuoteIdent(src))
}

func dropTableSQL(table string) string {
	return "DROP TABLE " + spatialdb.QuoteIdent(table)
}

func quote(name string) string {
	return spatialdb.QuoteIdent(name)
}
