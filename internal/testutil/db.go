// Package testutil oferece um banco SQLite em memória para os testes.
package testutil

import (
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NovoDB abre um banco em memória exclusivo do teste e migra os modelos.
// O pool tem uma única conexão: toda consulta dentro de uma transação
// precisa usar o tx.
func NovoDB(t *testing.T, modelos ...any) *gorm.DB {
	t.Helper()

	nome := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", nome)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("abrir sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if len(modelos) > 0 {
		if err := db.AutoMigrate(modelos...); err != nil {
			t.Fatalf("migrar: %v", err)
		}
	}
	return db
}
