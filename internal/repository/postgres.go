package repository

import (
	"context"
	"errors"
	"fmt"

	"filevault-backend/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// DB é o subconjunto de *pgxpool.Pool usado pelo PostgresStore.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore é a implementação PostgreSQL do Store
type PostgresStore struct {
	db DB
}

// NewPostgresStore cria o pool de conexões e verifica se o banco responde
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, *pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("could not create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("could not ping database: %w", err)
	}

	return &PostgresStore{db: pool}, pool, nil
}

// NewPostgresStoreWithDB usa uma conexão já existente.
func NewPostgresStoreWithDB(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Close fecha o pool de conexões
func (s *PostgresStore) Close() {
	s.db.Close()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// --- UserStore ---

func (s *PostgresStore) CreateUser(ctx context.Context, user *models.User) error {
	sql := `
        INSERT INTO users (id, email, password_hash, created_at)
        VALUES ($1, $2, $3, $4)`

	_, err := s.db.Exec(ctx, sql,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("user '%s': %w", user.Email, ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	sql := `
        SELECT id, email, password_hash, created_at
        FROM users
        WHERE email = $1`

	user := &models.User{}
	err := s.db.QueryRow(ctx, sql, email).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user '%s': %w", email, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	sql := `
        SELECT id, email, password_hash, created_at
        FROM users
        WHERE id = $1`

	user := &models.User{}
	err := s.db.QueryRow(ctx, sql, id).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user with ID '%s': %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return user, nil
}

// --- FileStore ---

const fileColumns = `id, owner_id, name, kind, parent_id, is_public, COALESCE(locator, ''), created_at`

func scanFile(row pgx.Row) (*models.File, error) {
	f := &models.File{}
	var kind string
	err := row.Scan(
		&f.ID,
		&f.OwnerID,
		&f.Name,
		&kind,
		&f.ParentID,
		&f.IsPublic,
		&f.Locator,
		&f.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	f.Kind = models.FileKind(kind)
	return f, nil
}

func (s *PostgresStore) CreateFile(ctx context.Context, file *models.File) error {
	sql := `
        INSERT INTO files (id, owner_id, name, kind, parent_id, is_public, locator, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8)`

	_, err := s.db.Exec(ctx, sql,
		file.ID,
		file.OwnerID,
		file.Name,
		string(file.Kind),
		file.ParentID,
		file.IsPublic,
		file.Locator,
		file.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("file '%s': %w", file.ID, ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create file: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetFileByID(ctx context.Context, id uuid.UUID) (*models.File, error) {
	sql := `SELECT ` + fileColumns + ` FROM files WHERE id = $1`

	f, err := scanFile(s.db.QueryRow(ctx, sql, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("file '%s': %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get file: %w", err)
	}
	return f, nil
}

func (s *PostgresStore) ListFiles(ctx context.Context, ownerID, parentID uuid.UUID, offset, limit int) ([]*models.File, error) {
	sql := `SELECT ` + fileColumns + `
        FROM files
        WHERE owner_id = $1 AND parent_id = $2
        ORDER BY seq
        OFFSET $3 LIMIT $4`

	rows, err := s.db.Query(ctx, sql, ownerID, parentID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	defer rows.Close()

	// Slice vazio em vez de nil mantém o JSON consistente
	files := []*models.File{}

	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan file row: %w", err)
		}
		files = append(files, f)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over files: %w", err)
	}

	return files, nil
}

func (s *PostgresStore) SetFilePublic(ctx context.Context, id uuid.UUID, isPublic bool) (*models.File, error) {
	sql := `UPDATE files SET is_public = $2 WHERE id = $1 RETURNING ` + fileColumns

	f, err := scanFile(s.db.QueryRow(ctx, sql, id, isPublic))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("file '%s': %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update file visibility: %w", err)
	}
	return f, nil
}
