package spatialdb

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"

	sqlite3 "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"github.com/mjb-oz/geoutils/pkg/types"
)

// plainDriverName is the database/sql name registered by modernc.org/sqlite.
const plainDriverName = "sqlite"

// spatialiteDrivers caches the mattn/go-sqlite3 drivers registered per
// extension, since sql.Register panics on a duplicate name.
var spatialiteDrivers = struct {
	mu    sync.Mutex
	names map[string]string
}{names: make(map[string]string)}

// spatialiteDriver returns the name of a go-sqlite3 driver that loads the
// given extension on every new connection.
func spatialiteDriver(extension string) string {
	if extension == "" {
		extension = types.DefaultSpatialiteExtension
	}
	spatialiteDrivers.mu.Lock()
	defer spatialiteDrivers.mu.Unlock()

	if name, ok := spatialiteDrivers.names[extension]; ok {
		return name
	}
	name := fmt.Sprintf("sqlite3_spatialite_%d", len(spatialiteDrivers.names))
	sql.Register(name, &sqlite3.SQLiteDriver{
		Extensions: []string{extension},
	})
	spatialiteDrivers.names[extension] = name
	return name
}

// openDB opens path with the driver named in opts.
func openDB(path string, opts Options) (*sql.DB, bool, error) {
	switch strings.ToLower(opts.driver()) {
	case types.DriverPlain:
		db, err := sql.Open(plainDriverName, path)
		return db, false, err
	case types.DriverSpatialite:
		db, err := sql.Open(spatialiteDriver(opts.Extension), path)
		return db, true, err
	default:
		return nil, false, fmt.Errorf("%w: %q", types.ErrDriverUnknown, opts.Driver)
	}
}
