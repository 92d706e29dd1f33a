package config

import (
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type migrated struct {
	ID   uint
	Name string
}

func TestGormLogger_RoutesStatementsToZap(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "log.db")), &gorm.Config{
		Logger: NewGormLogger(zap.New(core), "debug"),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	require.NoError(t, Migrate(db, &migrated{}))
	require.NoError(t, db.Create(&migrated{ID: 1, Name: "x"}).Error)

	var missing migrated
	err = db.Where("name = ?", "nope").First(&missing).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	assert.NotEmpty(t, logs.FilterMessage("sql").All())
	assert.Empty(t, logs.FilterMessage("sql error").All(), "not-found is not logged as an error")
}

func TestGormLogger_OmitsBoundValues(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "values.db")), &gorm.Config{
		Logger: NewGormLogger(zap.New(core), "debug"),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	require.NoError(t, Migrate(db, &migrated{}))

	require.NoError(t, db.Create(&migrated{ID: 7, Name: "hash-value-1"}).Error)
	require.Error(t, db.Create(&migrated{ID: 7, Name: "hash-value-2"}).Error)

	require.NotEmpty(t, logs.FilterMessage("sql error").All())
	for _, entry := range logs.All() {
		sql, _ := entry.ContextMap()["sql"].(string)
		assert.NotContains(t, sql, "hash-value")
	}
	assert.NotEmpty(t, logs.FilterFieldKey("sql").All())
}

func TestToGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Info, toGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, toGormLogLevel("info"))
	assert.Equal(t, gormlogger.Error, toGormLogLevel("error"))
	assert.Equal(t, gormlogger.Silent, toGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Warn, toGormLogLevel("whatever"))
}
