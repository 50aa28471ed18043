package types

import "errors"

// Decimation errors.
var (
	ErrInvalidFactor   = errors.New("decimation factor must be a number in (0, 1]")
	ErrOutputCollision = errors.New("output file collides with another file in the batch")
)

// Working copy errors.
var (
	ErrCopyInUse     = errors.New("working copy is already open for this database and user")
	ErrCopyExists    = errors.New("working copy already exists on disk")
	ErrUserUnknown   = errors.New("cannot determine user identity")
	ErrTableNotFound = errors.New("table not found")
)

// Loader errors.
var (
	ErrEmptyTableName   = errors.New("table name must not be empty")
	ErrUnsupportedType  = errors.New("unsupported column type")
	ErrValueMismatch    = errors.New("value does not match column type")
	ErrLengthMismatch   = errors.New("column length does not match index length")
	ErrDuplicateIndex   = errors.New("duplicate index value")
	ErrDuplicateColumn  = errors.New("duplicate column name")
	ErrMissingSRID      = errors.New("geometry has no SRID; pass one explicitly")
	ErrInvalidGeometry  = errors.New("invalid WKT geometry")
	ErrNoGeometryValues = errors.New("geometry column has no values")
)

// Frame reader errors.
var (
	ErrNoHeader       = errors.New("input has no header row")
	ErrColumnNotFound = errors.New("column not found")
	ErrInvalidIndex   = errors.New("index value is not an integer")
)
