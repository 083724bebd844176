package database

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/trezcool/markmywords/core"
	"github.com/trezcool/markmywords/core/document"
	"github.com/trezcool/markmywords/storage/database/boltdb"
	inmemdb "github.com/trezcool/markmywords/storage/database/inmem"
	sqlxdb "github.com/trezcool/markmywords/storage/database/sqlx"
)

const (
	EngineBolt     = "bolt"
	EngineSQLite   = "sqlite"
	EnginePostgres = "postgres"
	EngineMemory   = "memory"
)

var ErrUnknownEngine = errors.New("unknown storage engine")

// Open returns the document repository selected by conf.Storage.Engine.
func Open(ctx context.Context, conf *core.Config) (document.Repository, error) {
	sc := conf.Storage

	switch sc.Engine {
	case EngineBolt, "":
		path := sc.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(conf.WorkDir, path)
		}
		return boltdb.Open(path, sc.Bucket, sc.Key)

	case EngineSQLite:
		dsn := sc.DSN
		if dsn == "" {
			dsn = sc.Path
			if !filepath.IsAbs(dsn) {
				dsn = filepath.Join(conf.WorkDir, dsn)
			}
			if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
				return nil, errors.Wrap(err, "creating sqlite directory")
			}
		}
		return sqlxdb.Open(ctx, sqlxdb.DriverSQLite, dsn, sc.Key)

	case EnginePostgres:
		return sqlxdb.Open(ctx, sqlxdb.DriverPostgres, sc.DSN, sc.Key)

	case EngineMemory:
		return inmemdb.NewStore(), nil
	}
	return nil, errors.Wrap(ErrUnknownEngine, sc.Engine)
}
