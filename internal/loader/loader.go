// Package loader materializes a types.Frame as a database table.
//
// Column kinds map to INTEGER, REAL, TEXT and DATETIME, and the Frame index
// becomes an INTEGER PRIMARY KEY. Frames with geometry go through a staging
// table: the WKT is inserted as text, converted by the dialect into a real
// geometry column, copied to the destination and the attributes are filled
// in afterwards. Each step runs on its own; a failure leaves earlier steps
// in place.
package loader

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mjb-oz/geoutils/pkg/types"
)

// Execer is the database handle the loader writes through. *sql.DB
// satisfies it.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// Option configures a Loader.
type Option func(*Loader)

// WithDialect selects how geometry columns are created. The default is
// Spatialite.
func WithDialect(d Dialect) Option {
	return func(l *Loader) { l.dialect = d }
}

// WithLogger sets the logger statements are reported to.
func WithLogger(log logrus.FieldLogger) Option {
	return func(l *Loader) { l.log = log }
}

// WithExclude leaves the named columns out of the table.
func WithExclude(names ...string) Option {
	return func(l *Loader) {
		for _, n := range names {
			l.exclude[strings.ToLower(n)] = true
		}
	}
}

// WithSRID overrides the SRID carried by the Frame geometry.
func WithSRID(srid int) Option {
	return func(l *Loader) { l.srid = srid }
}

// WithSpatialIndex builds a spatial index on the geometry column.
func WithSpatialIndex(on bool) Option {
	return func(l *Loader) { l.spatialIndex = on }
}

// Loader writes Frames into tables.
type Loader struct {
	db           Execer
	dialect      Dialect
	log          logrus.FieldLogger
	exclude      map[string]bool
	srid         int
	spatialIndex bool
}

// Result summarizes a completed load.
type Result struct {
	Table      string
	IndexName  string
	Rows       int
	Columns    []string
	Spatial    bool
	Statements int
}

// New returns a Loader writing through db.
func New(db Execer, opts ...Option) *Loader {
	l := &Loader{
		db:      db,
		dialect: Spatialite{},
		exclude: make(map[string]bool),
	}
	for _, o := range opts {
		o(l)
	}
	if l.log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		l.log = discard
	}
	return l
}

// plan is a validated load, ready to execute.
type plan struct {
	table    string
	index    string
	cols     []types.Column
	rows     [][]any
	geom     *types.Geometry
	geomName string
	srid     int
	info     geomInfo
}

func (l *Loader) prepare(f *types.Frame, table string) (*plan, error) {
	if strings.TrimSpace(table) == "" {
		return nil, types.ErrEmptyTableName
	}
	if f == nil {
		return nil, fmt.Errorf("%w: nil frame", types.ErrLengthMismatch)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}

	p := &plan{table: table, index: f.IndexName}
	if p.index == "" {
		p.index = types.DefaultIndexName
		l.log.Infof("Index has no name, using %s", p.index)
	}

	for _, c := range f.Columns {
		if l.exclude[strings.ToLower(c.Name)] {
			continue
		}
		p.cols = append(p.cols, c)
	}
	rows, err := bindColumns(p.cols, f.Len())
	if err != nil {
		return nil, err
	}
	p.rows = rows

	if f.Geometry == nil {
		return p, nil
	}
	p.geom = f.Geometry
	p.geomName = f.Geometry.Name
	if p.geomName == "" {
		p.geomName = types.DefaultGeometryName
	}
	p.srid = f.Geometry.SRID
	if l.srid != 0 {
		p.srid = l.srid
	}
	if p.srid <= 0 {
		return nil, types.ErrMissingSRID
	}
	info, err := inspectGeometry(f.Geometry.WKT)
	if err != nil {
		return nil, fmt.Errorf("geometry %q: %w", p.geomName, err)
	}
	p.info = info
	return p, nil
}

// Load creates table from f and inserts every row. All input is validated
// before the first statement runs.
func (l *Loader) Load(ctx context.Context, f *types.Frame, table string) (Result, error) {
	p, err := l.prepare(f, table)
	if err != nil {
		return Result{}, fmt.Errorf("load %s: %w", table, err)
	}

	r := &run{l: l, ctx: ctx}
	names := make([]string, len(p.cols))
	for i, c := range p.cols {
		names[i] = c.Name
	}

	create, err := CreateTableSQL(p.table, p.index, p.cols)
	if err != nil {
		return Result{}, fmt.Errorf("load %s: %w", table, err)
	}
	r.exec(create)
	r.exec(createIndexSQL(p.table, p.index))

	if p.geom == nil {
		args := make([][]any, len(p.rows))
		for i, row := range p.rows {
			args[i] = append([]any{f.Index[i]}, row...)
		}
		r.batch(insertSQL(p.table, append([]string{p.index}, names...)), args)
	} else {
		l.loadSpatial(r, p, f.Index, names)
	}

	if r.err != nil {
		return Result{}, fmt.Errorf("load %s: %w", table, r.err)
	}
	l.log.WithFields(logrus.Fields{
		"table": p.table,
		"rows":  f.Len(),
	}).Info("table loaded")

	return Result{
		Table:      p.table,
		IndexName:  p.index,
		Rows:       f.Len(),
		Columns:    names,
		Spatial:    p.geom != nil,
		Statements: r.count,
	}, nil
}

func (l *Loader) loadSpatial(r *run, p *plan, index []int64, names []string) {
	staging := p.table + stagingSuffix

	r.exec(createTableSQL(staging, p.index, []colDef{{name: tempGeomColumn, sqlType: sqlText}}))
	args := make([][]any, len(index))
	for i, idx := range index {
		var wkt any
		if w := strings.TrimSpace(p.geom.WKT[i]); w != "" {
			wkt = w
		}
		args[i] = []any{idx, wkt}
	}
	r.batch(insertSQL(staging, []string{p.index, tempGeomColumn}), args)

	r.call(l.dialect.AddGeometryColumn(staging, p.geomName, p.srid, p.info.Type, p.info.Dims))
	expr, exprArgs := l.dialect.FromWKT(tempGeomColumn, p.srid)
	r.exec(fmt.Sprintf("UPDATE %s SET %s = %s", quote(staging), quote(p.geomName), expr), exprArgs...)
	r.none(fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s IS NOT NULL AND %s IS NULL",
		quote(staging), quote(tempGeomColumn), quote(p.geomName)), types.ErrInvalidGeometry)

	r.call(l.dialect.AddGeometryColumn(p.table, p.geomName, p.srid, p.info.Type, p.info.Dims))
	r.exec(copyColumnsSQL(staging, p.table, []string{p.index, p.geomName}))

	if len(names) > 0 {
		args := make([][]any, len(index))
		for i, idx := range index {
			args[i] = append(append([]any{}, p.rows[i]...), idx)
		}
		r.batch(updateSQL(p.table, p.index, names), args)
	}
	r.exec(dropTableSQL(staging))

	if l.spatialIndex {
		if stmt, args := l.dialect.CreateSpatialIndex(p.table, p.geomName); stmt != "" {
			r.call(stmt, args)
		} else {
			l.log.Warnf("Dialect %s has no spatial index, skipping", l.dialect.Name())
		}
	}
}

// run executes a sequence of statements, stopping at the first error.
type run struct {
	l     *Loader
	ctx   context.Context
	err   error
	count int
}

func (r *run) exec(stmt string, args ...any) {
	if r.err != nil {
		return
	}
	r.l.log.Debug(stmt)
	if _, err := r.l.db.ExecContext(r.ctx, stmt, args...); err != nil {
		r.err = fmt.Errorf("%s: %w", stmt, err)
		return
	}
	r.count++
}

// call runs a SELECT of a Spatialite management function, which reports
// failure by returning 0 instead of raising an error. Other statements are
// executed as is.
func (r *run) call(stmt string, args []any) {
	if r.err != nil {
		return
	}
	if !strings.HasPrefix(stmt, "SELECT ") {
		r.exec(stmt, args...)
		return
	}
	r.l.log.Debug(stmt)
	var ok sql.NullInt64
	if err := r.l.db.QueryRowContext(r.ctx, stmt, args...).Scan(&ok); err != nil {
		r.err = fmt.Errorf("%s: %w", stmt, err)
		return
	}
	if ok.Valid && ok.Int64 == 0 {
		r.err = fmt.Errorf("%s: returned 0 for %v", stmt, args)
		return
	}
	r.count++
}

// none runs a SELECT COUNT(*) and fails with cause when it finds any row.
// Spatialite converts malformed WKT to NULL instead of raising an error.
func (r *run) none(stmt string, cause error) {
	if r.err != nil {
		return
	}
	r.l.log.Debug(stmt)
	var n int64
	if err := r.l.db.QueryRowContext(r.ctx, stmt).Scan(&n); err != nil {
		r.err = fmt.Errorf("%s: %w", stmt, err)
		return
	}
	if n > 0 {
		r.err = fmt.Errorf("%w: %d values rejected by %s", cause, n, r.l.dialect.Name())
		return
	}
	r.count++
}

// batch runs one prepared statement per argument row inside a transaction.
func (r *run) batch(stmt string, rows [][]any) {
	if r.err != nil {
		return
	}
	r.l.log.Debug(stmt)
	tx, err := r.l.db.BeginTx(r.ctx, nil)
	if err != nil {
		r.err = fmt.Errorf("begin transaction: %w", err)
		return
	}
	ps, err := tx.PrepareContext(r.ctx, stmt)
	if err != nil {
		tx.Rollback()
		r.err = fmt.Errorf("%s: %w", stmt, err)
		return
	}
	defer ps.Close()

	for i, args := range rows {
		if _, err := ps.ExecContext(r.ctx, args...); err != nil {
			tx.Rollback()
			r.err = fmt.Errorf("%s: row %d: %w", stmt, i, err)
			return
		}
	}
	if err := tx.Commit(); err != nil {
		r.err = fmt.Errorf("commit: %w", err)
		return
	}
	r.count++
}
