package database_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/markmywords/core"
	"github.com/trezcool/markmywords/core/document"
	"github.com/trezcool/markmywords/storage/database"
	"github.com/trezcool/markmywords/storage/database/boltdb"
	inmemdb "github.com/trezcool/markmywords/storage/database/inmem"
	sqlxdb "github.com/trezcool/markmywords/storage/database/sqlx"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		engine string
		path   string
		dsn    string
		want   interface{}
	}{
		{"default engine", "", "markmywords.db", "", &boltdb.Store{}},
		{"bolt", database.EngineBolt, "markmywords.db", "", &boltdb.Store{}},
		{"bolt in a missing directory", database.EngineBolt, "data/markmywords.db", "", &boltdb.Store{}},
		{"sqlite dsn", database.EngineSQLite, "markmywords.db", ":memory:", &sqlxdb.Store{}},
		{"sqlite path", database.EngineSQLite, "markmywords.db", "", &sqlxdb.Store{}},
		{"sqlite in a missing directory", database.EngineSQLite, "data/markmywords.db", "", &sqlxdb.Store{}},
		{"memory", database.EngineMemory, "", "", &inmemdb.Store{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			conf := &core.Config{
				WorkDir: t.TempDir(),
				Storage: core.StorageConfig{
					Engine: tc.engine,
					Path:   tc.path,
					DSN:    tc.dsn,
					Key:    "MarkMyWords_DB",
					Bucket: "markmywords_store",
				},
			}
			repo, err := database.Open(ctx, conf)
			require.NoError(t, err)
			defer func() { _ = repo.Close() }()
			assert.IsType(t, tc.want, repo)

			_, err = repo.Load(ctx)
			assert.Equal(t, document.ErrNotFound, err)

			seed := document.Seed("Dylan", "54852")
			require.NoError(t, repo.Save(ctx, seed))
			loaded, err := repo.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, seed, loaded)

			if tc.path != "" && tc.dsn == "" {
				assert.FileExists(t, filepath.Join(conf.WorkDir, tc.path))
			}
		})
	}

	t.Run("unknown engine", func(t *testing.T) {
		_, err := database.Open(ctx, &core.Config{Storage: core.StorageConfig{Engine: "mongo"}})
		assert.True(t, errors.Is(err, database.ErrUnknownEngine))
	})
}
