package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound indicates no user matched the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = errors.New("email already in use")
)

// Repository persists users and their reset-challenge state.
type Repository interface {
	Create(ctx context.Context, user User) error
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByID(ctx context.Context, id string) (User, error)

	// SetResetChallenge stores the code/expiry pair on the user in one write.
	SetResetChallenge(ctx context.Context, id, code string, expiresAt time.Time) error
	// ClearResetChallenge removes both challenge fields in one write, but
	// only while the stored code still equals the given one. A challenge
	// issued concurrently by a later request is left intact; that case is
	// a silent no-op.
	ClearResetChallenge(ctx context.Context, id, code string) error
	// ConsumeResetChallenge atomically matches (email, code, expiry > now),
	// rewrites the password hash and clears both challenge fields. It reports
	// whether exactly one row was consumed; false covers unknown email, wrong
	// code and expired challenge alike.
	ConsumeResetChallenge(ctx context.Context, email, code string, now time.Time, newHash []byte) (bool, error)
	// FindByResetChallenge is the read-only mirror of the consume predicate.
	FindByResetChallenge(ctx context.Context, email, code string, now time.Time) (User, error)
}

const userColumns = `id, username, email, password_hash, reset_code, reset_code_expires_at, created_at, updated_at`

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed user repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new user.
func (r *PostgresRepository) Create(ctx context.Context, user User) error {
	userID, err := uuid.Parse(user.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO users (id, username, email, password_hash, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)`,
		userID, user.Username, user.Email, user.PasswordHash, user.CreatedAt.UTC(), user.UpdatedAt.UTC())
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrEmailTaken
	}
	return err
}

// FindByEmail fetches a user by email.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// FindByID fetches a user by id.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return User{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
	return scanUser(row)
}

// SetResetChallenge writes the code and expiry onto the user in one statement.
func (r *PostgresRepository) SetResetChallenge(ctx context.Context, id, code string, expiresAt time.Time) error {
	userID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE users
        SET reset_code = $1, reset_code_expires_at = $2, updated_at = $3
        WHERE id = $4`, code, expiresAt.UTC(), time.Now().UTC(), userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearResetChallenge nulls both challenge fields in one statement. The code
// predicate makes the rollback a compare-and-set: zero rows matched means the
// challenge was already replaced or consumed, which is not an error.
func (r *PostgresRepository) ClearResetChallenge(ctx context.Context, id, code string) error {
	userID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	_, err = r.db.Exec(ctx, `UPDATE users
        SET reset_code = NULL, reset_code_expires_at = NULL, updated_at = $1
        WHERE id = $2 AND reset_code = $3`, time.Now().UTC(), userID, code)
	return err
}

// ConsumeResetChallenge performs the single-statement compare-and-swap that
// makes a challenge single-use: the time predicate and the code match are
// evaluated by the same UPDATE that clears the fields.
func (r *PostgresRepository) ConsumeResetChallenge(ctx context.Context, email, code string, now time.Time, newHash []byte) (bool, error) {
	cmd, err := r.db.Exec(ctx, `UPDATE users
        SET password_hash = $1, reset_code = NULL, reset_code_expires_at = NULL, updated_at = $2
        WHERE email = $3 AND reset_code = $4 AND reset_code_expires_at > $5`,
		newHash, time.Now().UTC(), email, code, now.UTC())
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

// FindByResetChallenge fetches the user only if the full consume predicate holds.
func (r *PostgresRepository) FindByResetChallenge(ctx context.Context, email, code string, now time.Time) (User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users
        WHERE email = $1 AND reset_code = $2 AND reset_code_expires_at > $3`, email, code, now.UTC())
	return scanUser(row)
}

func scanUser(row pgx.Row) (User, error) {
	var (
		id        uuid.UUID
		user      User
		expiresAt *time.Time
	)
	err := row.Scan(&id, &user.Username, &user.Email, &user.PasswordHash,
		&user.ResetCode, &expiresAt, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	user.ID = id.String()
	if expiresAt != nil {
		utc := expiresAt.UTC()
		user.ResetCodeExpiresAt = &utc
	}
	user.CreatedAt = user.CreatedAt.UTC()
	user.UpdatedAt = user.UpdatedAt.UTC()
	return user, nil
}
