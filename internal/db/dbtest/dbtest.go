package dbtest

import (
	"fmt"
	"strings"
	"testing"

	"reactgram/internal/db"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open returns a migrated in-memory SQLite database private to t. A single
// connection serializes transactions the way row locks would on Postgres.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", name)

	cfg := db.Config()
	cfg.Logger = gormlogger.Discard
	conn, err := gorm.Open(sqlite.Open(dsn), cfg)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("test database handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.Migrate(conn); err != nil {
		t.Fatalf("%v", err)
	}
	return conn
}
