package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"message_service/internal/config"
	"message_service/internal/models"
	"message_service/internal/storage"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepo struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, cfg *config.Config) (*PostgresRepo, error) {
	const op = "storage.postgres.New"

	dsn := dsn(cfg)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse config: %w", op, err)
	}

	poolConfig.MaxConns = 10
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = time.Minute * 30

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create pool: %w", op, err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%s: failed to ping database: %w", op, err)
	}

	return &PostgresRepo{pool: pool}, nil
}

func (r *PostgresRepo) SaveUser(ctx context.Context, username string, passHash []byte) (int64, error) {
	const op = "storage.postgres.SaveUser"

	query := `
		INSERT INTO users (username, password_hash)
		VALUES ($1, $2)
		RETURNING id;
	`

	var id int64

	err := r.pool.QueryRow(ctx, query, username, string(passHash)).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, storage.ErrUserExists
		}

		return 0, fmt.Errorf("%s: failed to save user: %w", op, err)
	}

	return id, nil
}

func (r *PostgresRepo) UserByUsername(ctx context.Context, username string) (models.User, error) {
	query := `
		SELECT id, username, password_hash
		FROM users
		WHERE username = $1;
	`

	row := r.pool.QueryRow(ctx, query, username)

	var u models.User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.PassHash,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrUserNotFound
		}

		return models.User{}, err
	}

	return u, nil
}

func (r *PostgresRepo) SaveMessage(ctx context.Context, ownerID int64, content string) (models.Message, error) {
	const op = "storage.postgres.SaveMessage"

	query := `
		INSERT INTO messages (user_id, content)
		VALUES ($1, $2)
		RETURNING id, created_at;
	`

	m := models.Message{
		OwnerID: ownerID,
		Content: content,
	}

	err := r.pool.QueryRow(ctx, query, ownerID, content).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return models.Message{}, fmt.Errorf("%s: failed to save message: %w", op, err)
	}

	return m, nil
}

func (r *PostgresRepo) MessagesByOwner(ctx context.Context, ownerID int64, offset, limit int) ([]models.Message, error) {
	const op = "storage.postgres.MessagesByOwner"

	query := `
		SELECT id, user_id, content, created_at
		FROM messages
		WHERE user_id = $1
		ORDER BY id ASC
		OFFSET $2 LIMIT $3;
	`

	rows, err := r.pool.Query(ctx, query, ownerID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	messages := make([]models.Message, 0)

	for rows.Next() {
		var m models.Message

		if err := rows.Scan(&m.ID, &m.OwnerID, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		messages = append(messages, m)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("%s: %w", op, rows.Err())
	}

	return messages, nil
}

func (r *PostgresRepo) MessageByID(ctx context.Context, id int64) (models.Message, error) {
	query := `
		SELECT id, user_id, content, created_at
		FROM messages
		WHERE id = $1;
	`

	row := r.pool.QueryRow(ctx, query, id)

	var m models.Message
	err := row.Scan(&m.ID, &m.OwnerID, &m.Content, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Message{}, storage.ErrMessageNotFound
		}

		return models.Message{}, err
	}

	return m, nil
}

func (r *PostgresRepo) UpdateMessageContent(ctx context.Context, id int64, content string) (models.Message, error) {
	const op = "storage.postgres.UpdateMessageContent"

	query := `
		UPDATE messages
		SET content = $1
		WHERE id = $2
		RETURNING id, user_id, content, created_at;
	`

	row := r.pool.QueryRow(ctx, query, content, id)

	var m models.Message
	err := row.Scan(&m.ID, &m.OwnerID, &m.Content, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Message{}, storage.ErrMessageNotFound
		}

		return models.Message{}, fmt.Errorf("%s: %w", op, err)
	}

	return m, nil
}

func (r *PostgresRepo) DeleteMessage(ctx context.Context, id int64) (models.Message, error) {
	const op = "storage.postgres.DeleteMessage"

	query := `
		DELETE FROM messages
		WHERE id = $1
		RETURNING id, user_id, content, created_at;
	`

	row := r.pool.QueryRow(ctx, query, id)

	var m models.Message
	err := row.Scan(&m.ID, &m.OwnerID, &m.Content, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Message{}, storage.ErrMessageNotFound
		}

		return models.Message{}, fmt.Errorf("%s: %w", op, err)
	}

	return m, nil
}

func (r *PostgresRepo) Close() {
	r.pool.Close()
}

func dsn(cfg *config.Config) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s database=%s sslmode=%s",
		cfg.Postgres.Host,
		cfg.Postgres.Port,
		cfg.Postgres.User,
		cfg.Postgres.Password,
		cfg.Postgres.DBName,
		cfg.Postgres.SSLMode,
	)
}
