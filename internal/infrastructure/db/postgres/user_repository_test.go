package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/tablero/dashboard-auth/internal/core/domain"
)

type stubRow struct {
	scan func(dest ...any) error
}

func (r stubRow) Scan(dest ...any) error { return r.scan(dest...) }

// userRow is one usuarios row in column order, password hash last.
type userRow struct {
	id        int64
	username  string
	email     string
	role      string
	active    bool
	createdAt time.Time
	lastLogin *time.Time
	hash      string
}

func (r userRow) scanInto(dest []any) error {
	vals := []any{r.id, r.username, r.email, r.role, r.active, r.createdAt, r.lastLogin, r.hash}
	if len(dest) > len(vals) {
		return fmt.Errorf("scan: %d destinations for %d columns", len(dest), len(vals))
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *int64:
			*p = vals[i].(int64)
		case *string:
			*p = vals[i].(string)
		case *bool:
			*p = vals[i].(bool)
		case *time.Time:
			*p = vals[i].(time.Time)
		case *pgtype.Timestamptz:
			*p = pgtype.Timestamptz{}
			if ts := vals[i].(*time.Time); ts != nil {
				*p = pgtype.Timestamptz{Time: *ts, Valid: true}
			}
		default:
			return fmt.Errorf("scan: unsupported destination %T", d)
		}
	}
	return nil
}

// stubRows implements pgx.Rows over a fixed result set.
type stubRows struct {
	rows   []userRow
	pos    int
	err    error
	closed bool
}

func (r *stubRows) Close()                                       { r.closed = true }
func (r *stubRows) Err() error                                   { return r.err }
func (r *stubRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *stubRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *stubRows) Values() ([]any, error)                       { return nil, nil }
func (r *stubRows) RawValues() [][]byte                          { return nil }
func (r *stubRows) Conn() *pgx.Conn                              { return nil }

func (r *stubRows) Next() bool {
	if r.pos >= len(r.rows) {
		return false
	}
	r.pos++
	return true
}

func (r *stubRows) Scan(dest ...any) error {
	return r.rows[r.pos-1].scanInto(dest)
}

type stubDB struct {
	execTag  string
	execErr  error
	rowErr   error
	rowID    int64
	row      *userRow
	rows     *stubRows
	queryErr error
	lastSQL  string
	lastArgs []any
	calls    int
}

func (s *stubDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	s.calls++
	s.lastSQL, s.lastArgs = sql, args
	if s.execErr != nil {
		return pgconn.CommandTag{}, s.execErr
	}
	return pgconn.NewCommandTag(s.execTag), nil
}

func (s *stubDB) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	s.calls++
	s.lastSQL, s.lastArgs = sql, args
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	if s.rows == nil {
		s.rows = &stubRows{}
	}
	return s.rows, nil
}

func (s *stubDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	s.calls++
	s.lastSQL, s.lastArgs = sql, args
	return stubRow{scan: func(dest ...any) error {
		if s.rowErr != nil {
			return s.rowErr
		}
		if s.row != nil {
			return s.row.scanInto(dest)
		}
		if p, ok := dest[0].(*int64); ok {
			*p = s.rowID
		}
		return nil
	}}
}

func TestUserRepository_Create_ReturnsID(t *testing.T) {
	db := &stubDB{rowID: 17}
	repo := &UserRepository{db: db}

	id, err := repo.Create(context.Background(), domain.NewUser{Username: "alice", Email: "alice@x.com", PasswordHash: "h", Role: domain.RoleViewer})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id != "17" {
		t.Fatalf("expected id 17, got %s", id)
	}
	if len(db.lastArgs) != 4 || db.lastArgs[3] != "viewer" {
		t.Fatalf("unexpected args: %v", db.lastArgs)
	}
}

func TestUserRepository_Create_Duplicate(t *testing.T) {
	db := &stubDB{rowErr: fmt.Errorf("insert: %w", &pgconn.PgError{Code: uniqueViolation, ConstraintName: "usuarios_email_key"})}
	repo := &UserRepository{db: db}

	_, err := repo.Create(context.Background(), domain.NewUser{Username: "alice"})
	if !errors.Is(err, domain.ErrDuplicateUser) {
		t.Fatalf("expected ErrDuplicateUser, got %v", err)
	}
}

func TestUserRepository_Create_OtherError(t *testing.T) {
	db := &stubDB{rowErr: &pgconn.PgError{Code: "23502"}}
	repo := &UserRepository{db: db}

	_, err := repo.Create(context.Background(), domain.NewUser{Username: "alice"})
	if err == nil || errors.Is(err, domain.ErrDuplicateUser) {
		t.Fatalf("expected wrapped non-duplicate error, got %v", err)
	}
}

func TestUserRepository_Updates_NoRowMeansNotFound(t *testing.T) {
	ctx := context.Background()
	repo := &UserRepository{db: &stubDB{execTag: "UPDATE 0"}}

	checks := map[string]error{
		"password":   repo.UpdatePasswordHash(ctx, "5", "h"),
		"role":       repo.UpdateRole(ctx, "5", domain.RoleEditor),
		"toggle":     repo.ToggleActive(ctx, "5"),
		"last_login": repo.UpdateLastLogin(ctx, "5", time.Now()),
	}
	for name, err := range checks {
		if !errors.Is(err, domain.ErrUserNotFound) {
			t.Fatalf("%s: expected ErrUserNotFound, got %v", name, err)
		}
	}
}

func TestUserRepository_UpdateRole_PassesArgs(t *testing.T) {
	db := &stubDB{execTag: "UPDATE 1"}
	repo := &UserRepository{db: db}

	if err := repo.UpdateRole(context.Background(), "5", domain.RoleEditor); err != nil {
		t.Fatalf("update role: %v", err)
	}
	if len(db.lastArgs) != 2 || db.lastArgs[0] != int64(5) || db.lastArgs[1] != "editor" {
		t.Fatalf("unexpected args: %v", db.lastArgs)
	}
}

func TestUserRepository_NonNumericIDNeverQueries(t *testing.T) {
	db := &stubDB{execTag: "UPDATE 1"}
	repo := &UserRepository{db: db}
	ctx := context.Background()

	if _, err := repo.FindByID(ctx, "abc"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := repo.FindCredentialsByID(ctx, "abc"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if err := repo.ToggleActive(ctx, "abc"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if db.calls != 0 {
		t.Fatalf("expected no queries, got %d", db.calls)
	}
}

func TestUserRepository_FindByID_NoRows(t *testing.T) {
	repo := &UserRepository{db: &stubDB{rowErr: pgx.ErrNoRows}}

	if _, err := repo.FindByID(context.Background(), "9"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserRepository_ExecErrorIsWrapped(t *testing.T) {
	cause := errors.New("conn reset")
	repo := &UserRepository{db: &stubDB{execErr: cause}}

	err := repo.ToggleActive(context.Background(), "1")
	if !errors.Is(err, cause) || errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
}

func TestUserRepository_FindActiveByIdentifier_Matches(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	alice := userRow{id: 1, username: "alice", email: "alice@x.com", role: "editor", active: true, createdAt: created, hash: "h1"}
	shared := userRow{id: 2, username: "alice@x.com", email: "other@x.com", role: "viewer", active: true, createdAt: created, hash: "h2"}

	cases := []struct {
		name string
		rows []userRow
	}{
		{"none", nil},
		{"one", []userRow{alice}},
		{"two", []userRow{alice, shared}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db := &stubDB{rows: &stubRows{rows: tc.rows}}
			repo := &UserRepository{db: db}

			got, err := repo.FindActiveByIdentifier(context.Background(), "alice@x.com")
			if err != nil {
				t.Fatalf("find: %v", err)
			}
			if len(got) != len(tc.rows) {
				t.Fatalf("expected %d matches, got %d", len(tc.rows), len(got))
			}
			for i, c := range got {
				want := tc.rows[i]
				if c.User.ID != strconv.FormatInt(want.id, 10) || c.User.Username != want.username || c.PasswordHash != want.hash {
					t.Fatalf("row %d: unexpected credentials %+v", i, c)
				}
			}
			if len(db.lastArgs) != 1 || db.lastArgs[0] != "alice@x.com" {
				t.Fatalf("unexpected args %v", db.lastArgs)
			}
			if !strings.Contains(db.lastSQL, "activo = true") || !strings.Contains(db.lastSQL, "username = $1 OR email = $1") {
				t.Fatalf("query must match active users by username or email: %s", db.lastSQL)
			}
			if !db.rows.closed {
				t.Fatalf("rows must be closed")
			}
		})
	}
}

func TestUserRepository_FindActiveByIdentifier_RowsErr(t *testing.T) {
	cause := errors.New("conn lost mid-stream")
	db := &stubDB{rows: &stubRows{rows: []userRow{{id: 1, username: "a", createdAt: time.Now()}}, err: cause}}
	repo := &UserRepository{db: db}

	if _, err := repo.FindActiveByIdentifier(context.Background(), "a"); !errors.Is(err, cause) {
		t.Fatalf("expected rows error to propagate, got %v", err)
	}
	if !db.rows.closed {
		t.Fatalf("rows must be closed on error")
	}
}

func TestUserRepository_FindActiveByIdentifier_QueryErr(t *testing.T) {
	cause := errors.New("pool exhausted")
	repo := &UserRepository{db: &stubDB{queryErr: cause}}

	if _, err := repo.FindActiveByIdentifier(context.Background(), "a"); !errors.Is(err, cause) {
		t.Fatalf("expected wrapped query error, got %v", err)
	}
}

func TestUserRepository_ScanLastLogin(t *testing.T) {
	loggedIn := time.Date(2024, 5, 2, 8, 30, 0, 0, time.FixedZone("CLT", -4*3600))
	db := &stubDB{rows: &stubRows{rows: []userRow{
		{id: 3, username: "never", role: "viewer", active: true, createdAt: time.Now()},
		{id: 4, username: "seen", role: "viewer", active: true, createdAt: time.Now(), lastLogin: &loggedIn},
	}}}
	repo := &UserRepository{db: db}

	users, err := repo.ListAll(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if users[0].LastLogin != nil {
		t.Fatalf("NULL last_login must scan to nil, got %v", users[0].LastLogin)
	}
	if users[1].LastLogin == nil || !users[1].LastLogin.Equal(loggedIn) || users[1].LastLogin.Location() != time.UTC {
		t.Fatalf("unexpected last login %v", users[1].LastLogin)
	}
}

func TestUserRepository_ListAll_NewestFirst(t *testing.T) {
	now := time.Now().UTC()
	db := &stubDB{rows: &stubRows{rows: []userRow{
		{id: 9, username: "newest", role: "admin", createdAt: now},
		{id: 2, username: "oldest", role: "viewer", createdAt: now.Add(-48 * time.Hour)},
	}}}
	repo := &UserRepository{db: db}

	users, err := repo.ListAll(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(db.lastSQL, "ORDER BY created_at DESC") {
		t.Fatalf("listing must be ordered newest first: %s", db.lastSQL)
	}
	if len(users) != 2 || users[0].Username != "newest" || users[1].Username != "oldest" {
		t.Fatalf("unexpected order %+v", users)
	}
}

func TestUserRepository_ListAll_Empty(t *testing.T) {
	repo := &UserRepository{db: &stubDB{}}

	users, err := repo.ListAll(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if users == nil || len(users) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", users)
	}
}

func TestUserRepository_ListAll_RowsErr(t *testing.T) {
	cause := errors.New("broken pipe")
	repo := &UserRepository{db: &stubDB{rows: &stubRows{err: cause}}}

	if _, err := repo.ListAll(context.Background()); !errors.Is(err, cause) {
		t.Fatalf("expected rows error to propagate, got %v", err)
	}
}

func TestUserRepository_FindCredentialsByID(t *testing.T) {
	created := time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC)
	db := &stubDB{row: &userRow{id: 5, username: "bob", email: "bob@x.com", role: "editor_v2", active: false, createdAt: created, hash: "$2a$hash"}}
	repo := &UserRepository{db: db}

	creds, err := repo.FindCredentialsByID(context.Background(), "5")
	if err != nil {
		t.Fatalf("find credentials: %v", err)
	}
	if creds.PasswordHash != "$2a$hash" || creds.User.ID != "5" || creds.User.Role != domain.RoleEditorV2 || creds.User.Active {
		t.Fatalf("unexpected credentials %+v", creds)
	}
	if !creds.User.CreatedAt.Equal(created) || creds.User.LastLogin != nil {
		t.Fatalf("unexpected timestamps %+v", creds.User)
	}
	if len(db.lastArgs) != 1 || db.lastArgs[0] != int64(5) {
		t.Fatalf("unexpected args %v", db.lastArgs)
	}
}

func TestUserRepository_FindByID(t *testing.T) {
	db := &stubDB{row: &userRow{id: 8, username: "carol", email: "carol@x.com", role: "admin", active: true, createdAt: time.Now()}}
	repo := &UserRepository{db: db}

	u, err := repo.FindByID(context.Background(), "8")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if u.ID != "8" || u.Username != "carol" || u.Role != domain.RoleAdmin || !u.Active {
		t.Fatalf("unexpected user %+v", u)
	}
}
