// Package spatialdb opens SQLite and Spatialite databases through a per-user
// working copy.
//
// SQLite allows a single writer, so Open copies the shared database file to
// <stem>_<user><ext> and connects to the copy; Close closes the connection
// and deletes the copy. Each user therefore starts from the latest shared
// version, but copies held by different users diverge silently and nothing
// is merged back.
package spatialdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/otiai10/copy"
	"github.com/sirupsen/logrus"

	"github.com/mjb-oz/geoutils/pkg/types"
)

// Options configures how a database is opened.
type Options struct {
	// User suffixes the working copy. Empty means the OS login name.
	User string
	// Driver is types.DriverPlain (default) or types.DriverSpatialite.
	Driver string
	// Extension is the Spatialite library to load. Empty means
	// types.DefaultSpatialiteExtension.
	Extension string
	// ReplaceStale overwrites a working copy left on disk by an earlier
	// session that was never closed.
	ReplaceStale bool
	// HideSpatialMeta drops Spatialite metadata tables from Tables.
	HideSpatialMeta bool
	Log             logrus.FieldLogger
}

func (o Options) driver() string {
	if o.Driver == "" {
		return types.DriverPlain
	}
	return o.Driver
}

func (o Options) logger() logrus.FieldLogger {
	if o.Log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		return l
	}
	return o.Log
}

// currentUser is overridden in tests.
var currentUser = func() (string, error) {
	u, err := user.Current()
	if err != nil {
		return "", err
	}
	return u.Username, nil
}

// live tracks the working copies held by this process, keyed by copy path.
var live = struct {
	mu    sync.Mutex
	paths map[string]bool
}{paths: make(map[string]bool)}

func claim(path string) bool {
	live.mu.Lock()
	defer live.mu.Unlock()
	if live.paths[path] {
		return false
	}
	live.paths[path] = true
	return true
}

func release(path string) {
	live.mu.Lock()
	defer live.mu.Unlock()
	delete(live.paths, path)
}

// Conn is an open database, optionally backed by a working copy.
type Conn struct {
	mu          sync.Mutex
	db          *sql.DB
	path        string
	workingPath string
	user        string
	session     string
	spatial     bool
	hideMeta    bool
	closed      bool
	log         logrus.FieldLogger
}

// WorkingCopyPath returns the per-user copy path for dbPath:
// geo.sqlite and alice give geo_alice.sqlite.
func WorkingCopyPath(dbPath, user string) string {
	ext := filepath.Ext(dbPath)
	return strings.TrimSuffix(dbPath, ext) + "_" + user + ext
}

// resolveUser returns a user name safe to embed in a file name. Windows
// account names of the form DOMAIN\user keep only the user part.
func resolveUser(name string) (string, error) {
	if name == "" {
		u, err := currentUser()
		if err != nil {
			return "", fmt.Errorf("%w: %v", types.ErrUserUnknown, err)
		}
		name = u
	}
	if i := strings.LastIndexAny(name, `\/`); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", types.ErrUserUnknown
	}
	return name, nil
}

// Open copies dbPath to the caller's working copy and connects to it. It
// fails with types.ErrCopyInUse while this process holds the copy, and with
// types.ErrCopyExists when the copy is already on disk unless
// opts.ReplaceStale is set. Anything created before a failure is removed.
func Open(ctx context.Context, dbPath string, opts Options) (*Conn, error) {
	log := opts.logger()

	abs, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat database: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("stat database: %s is a directory", abs)
	}

	userName, err := resolveUser(opts.User)
	if err != nil {
		return nil, err
	}
	working := WorkingCopyPath(abs, userName)

	if !claim(working) {
		return nil, fmt.Errorf("%w: %s", types.ErrCopyInUse, working)
	}

	if _, err := os.Stat(working); err == nil {
		if !opts.ReplaceStale {
			release(working)
			return nil, fmt.Errorf("%w: %s", types.ErrCopyExists, working)
		}
		log.WithField("copy", working).Warn("replacing stale working copy")
	} else if !errors.Is(err, os.ErrNotExist) {
		release(working)
		return nil, fmt.Errorf("stat working copy: %w", err)
	}

	if err := copy.Copy(abs, working, copy.Options{Sync: true}); err != nil {
		release(working)
		return nil, fmt.Errorf("create working copy: %w", err)
	}

	c, err := connect(ctx, abs, working, opts)
	if err != nil {
		var result *multierror.Error
		result = multierror.Append(result, err)
		if rmErr := os.Remove(working); rmErr != nil {
			result = multierror.Append(result, fmt.Errorf("remove working copy: %w", rmErr))
		}
		release(working)
		return nil, result.ErrorOrNil()
	}
	c.user = userName
	c.workingPath = working

	c.log.Infof("Connected to %s. Temporary working copy created.", abs)
	return c, nil
}

// OpenDirect connects to dbPath in place, without a working copy. Writes
// persist in the shared file.
func OpenDirect(ctx context.Context, dbPath string, opts Options) (*Conn, error) {
	abs, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	// The user only labels a direct connection, so an unknown one is
	// reported and left empty.
	userName, err := resolveUser(opts.User)
	if err != nil {
		opts.logger().WithError(err).Warn("Connecting without a user name")
	}
	c, err := connect(ctx, abs, abs, opts)
	if err != nil {
		return nil, err
	}
	c.user = userName
	c.log.Infof("Connected to %s.", abs)
	return c, nil
}

func connect(ctx context.Context, path, target string, opts Options) (*Conn, error) {
	db, spatial, err := openDB(target, opts)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if spatial {
		var ok int
		if err := db.QueryRowContext(ctx, "SELECT InitSpatialMetaData(1)").Scan(&ok); err != nil {
			db.Close()
			return nil, fmt.Errorf("init spatial metadata: %w", err)
		}
	}

	session := uuid.New().String()
	return &Conn{
		db:       db,
		path:     path,
		session:  session,
		spatial:  spatial,
		hideMeta: opts.HideSpatialMeta,
		log: opts.logger().WithFields(logrus.Fields{
			"db":      path,
			"session": session,
		}),
	}, nil
}

// Close closes the connection and deletes the working copy. Failures of
// both steps are returned together. Close is idempotent.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	var result *multierror.Error
	if err := c.db.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("close database: %w", err))
	}
	if c.workingPath == "" {
		c.log.Infof("Connection to %s is closed.", c.path)
		return result.ErrorOrNil()
	}

	if err := os.Remove(c.workingPath); err != nil {
		result = multierror.Append(result, fmt.Errorf("remove working copy: %w", err))
	}
	release(c.workingPath)

	if err := result.ErrorOrNil(); err != nil {
		c.log.WithError(err).Error("close failed")
		return err
	}
	c.log.Infof("Connection to %s is closed. Temporary working copy removed.", c.path)
	return nil
}

// DB returns the underlying database handle.
func (c *Conn) DB() *sql.DB { return c.db }

// Path returns the absolute path of the shared database.
func (c *Conn) Path() string { return c.path }

// WorkingPath returns the working copy path, or "" for a direct connection.
func (c *Conn) WorkingPath() string { return c.workingPath }

// User returns the user the working copy belongs to.
func (c *Conn) User() string { return c.user }

// Session returns the identifier logged with every message of this
// connection.
func (c *Conn) Session() string { return c.session }

// Spatial reports whether Spatialite functions are available.
func (c *Conn) Spatial() bool { return c.spatial }
