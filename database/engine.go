package database

import (
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	Flag "github.com/giftpropaganda/news-backend/utils/flag"
)

// Connection pool settings for the networked engine. The managed Postgres we
// run against kills idle connections server-side, so connections are recycled
// before its timeout instead of reused until they die mid-query.
const (
	poolIdleConns       = 5
	poolMaxConns        = 15 // 5 steady + 10 overflow
	poolConnMaxLifetime = 5 * time.Minute
	connectTimeoutSecs  = 30
)

// defaultSqlitePath is the embedded single-file store used when no
// descriptor is configured, so the system stays operable offline and in dev.
const defaultSqlitePath = "./news.db"

// Store owns the engine handle and the session lifecycle. The handle is
// guarded because RecreateEngine swaps it at runtime; callers never touch a
// bare *gorm.DB, they go through WithSession.
type Store struct {
	mu         sync.RWMutex
	db         *gorm.DB
	descriptor string

	// test hook for retry delays
	after func(time.Duration) <-chan time.Time
}

// Open builds a Store from a single URL-like connection descriptor.
//
// An empty descriptor falls back to the embedded sqlite store. A
// postgres:// or postgresql:// descriptor gets its query parameters stripped
// (managed vendors inject modifiers the client doesn't understand) and the
// networking options are set explicitly instead: bounded pool, connection
// recycling, required SSL, bounded connect timeout and an
// application_name tag. Anything else is ErrBadDescriptor.
//
// Open never dials: a networked engine that cannot be reached still opens
// successfully and errors surface on first use.
func Open(descriptor string) (*Store, error) {
	db, err := openHandle(descriptor)
	if err != nil {
		return nil, err
	}
	return &Store{
		db:         db,
		descriptor: descriptor,
		after:      time.After,
	}, nil
}

// handle returns the current engine under the read lock, so a concurrent
// RecreateEngine can never hand out a half-swapped pointer.
func (s *Store) handle() *gorm.DB {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.handle().DB()
	if err != nil {
		return errors.Wrap(err, "access connection pool")
	}
	return sqlDB.Close()
}

func openHandle(descriptor string) (*gorm.DB, error) {
	dialector, err := parseDescriptor(descriptor)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		// connect lazily; readiness is the health monitor's job
		DisableAutomaticPing: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "open database engine")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "access connection pool")
	}
	if dialector.Name() == "postgres" {
		sqlDB.SetMaxIdleConns(poolIdleConns)
		sqlDB.SetMaxOpenConns(poolMaxConns)
		sqlDB.SetConnMaxLifetime(poolConnMaxLifetime)
	} else {
		// single-file store: one writer at a time keeps sqlite happy
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// parseDescriptor maps a descriptor onto a gorm dialector.
func parseDescriptor(descriptor string) (gorm.Dialector, error) {
	if descriptor == "" {
		return sqlite.Open(sqliteDSN(defaultSqlitePath)), nil
	}

	u, err := url.Parse(descriptor)
	if err != nil {
		return nil, errors.Wrapf(ErrBadDescriptor, "%q: %v", descriptor, err)
	}

	switch u.Scheme {
	case "sqlite", "file":
		path := u.Opaque
		if path == "" {
			path = u.Host + u.Path
		}
		path = strings.TrimPrefix(path, "/./")
		if path == "" {
			path = defaultSqlitePath
		}
		return sqlite.Open(sqliteDSN(path)), nil
	case "postgres", "postgresql":
		return postgres.Open(postgresDSN(u)), nil
	}
	return nil, errors.Wrapf(ErrBadDescriptor, "scheme %q in %q", u.Scheme, descriptor)
}

// sqliteDSN enables foreign key enforcement, which sqlite leaves off by
// default. Referential integrity is a storage-boundary invariant here, not
// advisory.
func sqliteDSN(path string) string {
	return path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// postgresDSN drops whatever query parameters came with the descriptor and
// sets ours explicitly.
func postgresDSN(u *url.URL) string {
	stripped := *u
	stripped.RawQuery = ""
	stripped.Fragment = ""

	params := url.Values{}
	params.Set("sslmode", "require")
	params.Set("connect_timeout", strconv.Itoa(connectTimeoutSecs))
	params.Set("application_name", applicationName())
	return stripped.String() + "?" + params.Encode()
}

func applicationName() string {
	return strings.ReplaceAll(*Flag.ServiceName, "_", "-")
}
