package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/dbrainio/presenton/internal/logger"
	"github.com/dbrainio/presenton/internal/types"
)

var (
	logOnce sync.Once
	logg    *logger.Logger
	logErr  error

	dbSeq atomic.Int64
)

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	logOnce.Do(func() {
		logg, logErr = logger.New("test")
	})
	if logErr != nil {
		tb.Fatalf("failed to init logger: %v", logErr)
	}
	return logg
}

// DB opens a fresh in-memory sqlite database per test. The gorm tags carry
// postgres-side defaults (uuid_generate_v4, now), so the sqlite schema is
// created by hand; application code always assigns ids and timestamps itself.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	name := fmt.Sprintf("file:presenton_test_%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(name), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		tb.Fatalf("failed to open test db: %v", err)
	}
	if err := createSchema(db); err != nil {
		tb.Fatalf("failed to create test schema: %v", err)
	}
	tb.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func createSchema(db *gorm.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS "presentation" (
			"id" TEXT PRIMARY KEY,
			"n_slides" INTEGER NOT NULL DEFAULT 0,
			"layout" TEXT,
			"language" TEXT,
			"tone" TEXT,
			"verbosity" TEXT,
			"instructions" TEXT,
			"created_at" DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			"updated_at" DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS "slide" (
			"id" TEXT PRIMARY KEY,
			"presentation_id" TEXT NOT NULL,
			"index" INTEGER NOT NULL,
			"layout" TEXT NOT NULL,
			"layout_group" TEXT,
			"content" TEXT,
			"speaker_note" TEXT,
			"html_content" TEXT,
			"created_at" DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			"updated_at" DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS "idx_slide_presentation_id" ON "slide" ("presentation_id")`,
		`CREATE TABLE IF NOT EXISTS "image_asset" (
			"id" TEXT PRIMARY KEY,
			"is_uploaded" INTEGER NOT NULL DEFAULT 0,
			"path" TEXT NOT NULL,
			"storage_url" TEXT,
			"extras" TEXT,
			"created_at" DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

func SeedPresentation(tb testing.TB, ctx context.Context, db *gorm.DB, layout types.PresentationLayout) *types.Presentation {
	tb.Helper()
	layoutDoc, err := json.Marshal(layout)
	if err != nil {
		tb.Fatalf("marshal layout: %v", err)
	}
	p := &types.Presentation{
		ID:       uuid.New(),
		Layout:   datatypes.JSON(layoutDoc),
		Language: "en",
	}
	if err := db.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed presentation: %v", err)
	}
	return p
}

func SeedSlide(tb testing.TB, ctx context.Context, db *gorm.DB, presentationID uuid.UUID, index int) *types.Slide {
	tb.Helper()
	s := &types.Slide{
		ID:             uuid.New(),
		PresentationID: presentationID,
		Index:          index,
		Layout:         "body",
		LayoutGroup:    "default",
		Content: datatypes.JSONMap{
			"title":              fmt.Sprintf("slide %d", index),
			types.SpeakerNoteKey: "",
		},
	}
	if err := db.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed slide: %v", err)
	}
	return s
}
