package testutil

import (
	"blog-admin/internal/database"
	"blog-admin/internal/environment"
	"blog-admin/internal/models"
	"context"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"testing"
)

// SetupSqliteDB opens a migrated in-memory sqlite database that lives as long as the test.
func SetupSqliteDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access sql.DB: %v", err)
	}
	// every connection to ":memory:" is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err = database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate sqlite database: %v", err)
	}

	return db
}

// SetupSqliteEnv returns a null environment backed by a fresh sqlite repository.
func SetupSqliteEnv(t *testing.T) *environment.Env {
	t.Helper()

	env := environment.Null()
	env.Repository = &database.GormRepository{DB: SetupSqliteDB(t)}
	return env
}

// SeedPosts creates the given posts through the repository of env.
func SeedPosts(t *testing.T, env *environment.Env, posts ...models.Post) {
	t.Helper()

	for i := range posts {
		if len(posts[i].Source) == 0 {
			posts[i].Source = models.SourceEditor
		}
		if err := env.CreatePost(context.Background(), &posts[i]); err != nil {
			t.Fatalf("failed to seed post %q: %v", posts[i].Slug, err)
		}
	}
}
