package repository

import (
	"context"
	"embed"
	"fmt"

	"filevault-backend/internal/logging"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// RunMigrations aplica as migrações embutidas com o goose.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, log logging.Logger) error {
	// o goose usa database/sql, então adaptamos o pool
	db := stdlib.OpenDBFromPool(pool)
	defer func() {
		if err := db.Close(); err != nil {
			log.Error(ctx, "failed to close migration connection", "error", err)
		}
	}()

	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(&gooseLogger{ctx: ctx, log: log})

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// gooseLogger envia a saída do goose para o logger da aplicação.
type gooseLogger struct {
	ctx context.Context
	log logging.Logger
}

func (l *gooseLogger) Fatalf(format string, v ...any) {
	l.log.Error(l.ctx, fmt.Sprintf(format, v...))
}

func (l *gooseLogger) Printf(format string, v ...any) {
	l.log.Info(l.ctx, fmt.Sprintf(format, v...))
}
