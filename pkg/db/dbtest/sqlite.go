// Package dbtest opens isolated in-memory SQLite databases with the plantops
// schema for repository and transaction tests.
package dbtest

import (
	"fmt"
	"io"
	"log"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/plantops/plantops-backend/pkg/db"
	"github.com/plantops/plantops-backend/pkg/db/models"
)

// Open returns a client over a fresh shared-cache in-memory database that
// lives until the test finishes.
func Open(t testing.TB) *db.Client {
	t.Helper()

	name := strings.ReplaceAll(uuid.NewString(), "-", "")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger: gormlogger.New(
			log.New(io.Discard, "", log.LstdFlags),
			gormlogger.Config{LogLevel: gormlogger.Silent},
		),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.InventoryItem{}, &models.StockMovement{}, &models.Notification{}); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}

	client := db.Wrap(conn)
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client
}
