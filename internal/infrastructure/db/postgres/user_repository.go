package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tablero/dashboard-auth/internal/core/domain"
	"github.com/tablero/dashboard-auth/internal/core/ports"
)

const uniqueViolation = "23505"

// DB is the subset of pgxpool.Pool used by the repository.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UserRepository implements ports.UserRepository over the usuarios table.
// Each call checks a connection out of the pool and returns it before
// returning, on success and on error alike.
type UserRepository struct {
	db DB
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: pool}
}

const userColumns = `id, username, email, role, activo, created_at, last_login`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner, extra ...any) (*domain.User, error) {
	var (
		id        int64
		u         domain.User
		role      string
		lastLogin pgtype.Timestamptz
	)
	dest := append([]any{&id, &u.Username, &u.Email, &role, &u.Active, &u.CreatedAt, &lastLogin}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	u.ID = strconv.FormatInt(id, 10)
	u.Role = domain.RoleID(role)
	u.CreatedAt = u.CreatedAt.UTC()
	if lastLogin.Valid {
		ts := lastLogin.Time.UTC()
		u.LastLogin = &ts
	}
	return &u, nil
}

// parseID converts a user id to the table's key type. Ids that are not
// integers cannot exist in the table.
func parseID(id string) (int64, bool) {
	n, err := strconv.ParseInt(id, 10, 64)
	return n, err == nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	key, ok := parseID(id)
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM usuarios WHERE id = $1`, key)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

func (r *UserRepository) FindActiveByIdentifier(ctx context.Context, identifier string) ([]*domain.UserCredentials, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+userColumns+`, password_hash
		FROM usuarios
		WHERE (username = $1 OR email = $1) AND activo = true`, identifier)
	if err != nil {
		return nil, fmt.Errorf("find by identifier: %w", err)
	}
	defer rows.Close()

	var out []*domain.UserCredentials
	for rows.Next() {
		var hash string
		u, err := scanUser(rows, &hash)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, &domain.UserCredentials{User: *u, PasswordHash: hash})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find by identifier: %w", err)
	}
	return out, nil
}

func (r *UserRepository) FindCredentialsByID(ctx context.Context, id string) (*domain.UserCredentials, error) {
	key, ok := parseID(id)
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	var hash string
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+`, password_hash FROM usuarios WHERE id = $1`, key)
	u, err := scanUser(row, &hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find credentials: %w", err)
	}
	return &domain.UserCredentials{User: *u, PasswordHash: hash}, nil
}

func (r *UserRepository) Create(ctx context.Context, user domain.NewUser) (string, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO usuarios (username, email, password_hash, role, activo)
		VALUES ($1, $2, $3, $4, true)
		RETURNING id`,
		user.Username, user.Email, user.PasswordHash, string(user.Role),
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return "", domain.ErrDuplicateUser
		}
		return "", fmt.Errorf("insert user: %w", err)
	}
	return strconv.FormatInt(id, 10), nil
}

func (r *UserRepository) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	return r.execOne(ctx, "update password", `UPDATE usuarios SET password_hash = $2 WHERE id = $1`, id, hash)
}

func (r *UserRepository) UpdateRole(ctx context.Context, id string, role domain.RoleID) error {
	return r.execOne(ctx, "update role", `UPDATE usuarios SET role = $2 WHERE id = $1`, id, string(role))
}

func (r *UserRepository) ToggleActive(ctx context.Context, id string) error {
	return r.execOne(ctx, "toggle active", `UPDATE usuarios SET activo = NOT activo WHERE id = $1`, id)
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.execOne(ctx, "update last login", `UPDATE usuarios SET last_login = $2 WHERE id = $1`, id, at.UTC())
}

func (r *UserRepository) ListAll(ctx context.Context) ([]*domain.User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM usuarios ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := make([]*domain.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// execOne runs a single-row UPDATE keyed by id and maps "no row" to
// domain.ErrUserNotFound.
func (r *UserRepository) execOne(ctx context.Context, op, sql, id string, args ...any) error {
	key, ok := parseID(id)
	if !ok {
		return domain.ErrUserNotFound
	}
	tag, err := r.db.Exec(ctx, sql, append([]any{key}, args...)...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

var _ ports.UserRepository = (*UserRepository)(nil)
