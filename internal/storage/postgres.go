package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-tasks/internal/models"
)

// DB is the subset of *pgxpool.Pool the repository needs.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

type PostgresRepository struct {
	logger zerolog.Logger
	db     DB
}

func NewPostgresRepository(logger zerolog.Logger, db DB) *PostgresRepository {
	return &PostgresRepository{
		logger: logger,
		db:     db,
	}
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

func (r *PostgresRepository) CreateUser(ctx context.Context, user models.User) error {
	const insertUserQuery = `
INSERT INTO users (id,
                   email,
                   username,
                   password,
                   created_at,
                   updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
`
	_, err := r.db.Exec(
		ctx,
		insertUserQuery,
		user.ID,
		user.Email,
		user.Username,
		user.Password,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if mapped := mapUniqueViolation(err); mapped != nil {
			return mapped
		}
		r.logger.Error().
			Err(err).
			Msg("failed to insert user")
		return err
	}
	r.logger.Debug().
		Str("user_id", user.ID).
		Msg("inserted user")
	return nil
}

const selectUserColumns = `
SELECT id,
       email,
       username,
       password,
       created_at,
       updated_at
FROM users
`

func (r *PostgresRepository) GetUserByID(ctx context.Context, id string) (models.User, error) {
	return r.selectUser(ctx, selectUserColumns+"WHERE id = $1", id)
}

func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	return r.selectUser(ctx, selectUserColumns+"WHERE email = $1", email)
}

func (r *PostgresRepository) selectUser(ctx context.Context, query string, arg string) (models.User, error) {
	var user models.User
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.Password,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		r.logger.Error().
			Err(err).
			Msg("failed to select user")
		return models.User{}, err
	}
	r.logger.Debug().
		Str("user_id", user.ID).
		Msg("selected user")
	return user, nil
}

func (r *PostgresRepository) UpdateUser(ctx context.Context, user models.User) error {
	const updateUserQuery = `
UPDATE users
SET email = $1,
    username = $2,
    password = $3,
    updated_at = $4
WHERE id = $5
`
	tag, err := r.db.Exec(
		ctx,
		updateUserQuery,
		user.Email,
		user.Username,
		user.Password,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		if mapped := mapUniqueViolation(err); mapped != nil {
			return mapped
		}
		r.logger.Error().
			Err(err).
			Str("user_id", user.ID).
			Msg("failed to update user")
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	r.logger.Debug().
		Str("user_id", user.ID).
		Msg("updated user")
	return nil
}

func (r *PostgresRepository) CreateSession(ctx context.Context, session models.Session) error {
	const insertSessionQuery = `
INSERT INTO sessions (id,
                      user_id,
                      refresh_token,
                      revoked,
                      expires_at,
                      created_at,
                      updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`
	_, err := r.db.Exec(
		ctx,
		insertSessionQuery,
		session.ID,
		session.UserID,
		session.RefreshToken,
		session.Revoked,
		session.ExpiresAt,
		session.CreatedAt,
		session.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Msg("failed to insert session")
		return err
	}
	r.logger.Debug().
		Str("session_id", session.ID).
		Time("expires_at", session.ExpiresAt).
		Msg("inserted session")
	return nil
}

const selectSessionColumns = `
SELECT id,
       user_id,
       refresh_token,
       revoked,
       expires_at,
       created_at,
       updated_at
FROM sessions
`

func (r *PostgresRepository) GetSessionByID(ctx context.Context, id string) (models.Session, error) {
	return r.selectSession(ctx, selectSessionColumns+"WHERE id = $1", id)
}

func (r *PostgresRepository) GetSessionByRefreshToken(ctx context.Context, refreshToken string) (models.Session, error) {
	return r.selectSession(ctx, selectSessionColumns+"WHERE refresh_token = $1", refreshToken)
}

func (r *PostgresRepository) selectSession(ctx context.Context, query string, arg string) (models.Session, error) {
	var session models.Session
	err := r.db.QueryRow(ctx, query, arg).Scan(
		&session.ID,
		&session.UserID,
		&session.RefreshToken,
		&session.Revoked,
		&session.ExpiresAt,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Session{}, ErrNotFound
		}
		r.logger.Error().
			Err(err).
			Msg("failed to select session")
		return models.Session{}, err
	}
	r.logger.Debug().
		Str("session_id", session.ID).
		Time("expires_at", session.ExpiresAt).
		Msg("selected session")
	return session, nil
}

func (r *PostgresRepository) RotateSession(
	ctx context.Context,
	sessionID, oldRefreshToken string,
	next models.Session,
) error {
	const updateSessionQuery = `
UPDATE sessions
SET refresh_token = $1,
    expires_at = $2,
    updated_at = $3
WHERE id = $4 AND
      refresh_token = $5 AND
      NOT revoked
`
	tag, err := r.db.Exec(
		ctx,
		updateSessionQuery,
		next.RefreshToken,
		next.ExpiresAt,
		next.UpdatedAt,
		sessionID,
		oldRefreshToken,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("session_id", sessionID).
			Msg("failed to update session")
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	r.logger.Debug().
		Str("session_id", sessionID).
		Time("expires_at", next.ExpiresAt).
		Msg("rotated session")
	return nil
}

func (r *PostgresRepository) RevokeSession(ctx context.Context, userID, refreshToken string) error {
	const revokeSessionQuery = `
UPDATE sessions
SET revoked = TRUE,
    updated_at = now()
WHERE user_id = $1 AND
      refresh_token = $2 AND
      NOT revoked
`
	tag, err := r.db.Exec(
		ctx,
		revokeSessionQuery,
		userID,
		refreshToken,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("failed to revoke session")
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	r.logger.Debug().
		Str("user_id", userID).
		Msg("revoked session")
	return nil
}

func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
		return nil
	}
	switch pgErr.ConstraintName {
	case "users_email_key":
		return ErrEmailTaken
	case "users_username_key":
		return ErrUsernameTaken
	case "labels_user_id_name_key":
		return ErrLabelNameTaken
	default:
		return fmt.Errorf("unique violation on %s: %w", pgErr.ConstraintName, err)
	}
}

var _ Repository = (*PostgresRepository)(nil)
