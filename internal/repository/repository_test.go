package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v5"
	pgxconn "github.com/jackc/pgx/v5/pgconn"
)

type stubPool struct {
	queryRowFunc func(ctx context.Context, query string, args ...any) pgx.Row
	queryFunc    func(ctx context.Context, query string, args ...any) (pgx.Rows, error)
	execFunc     func(ctx context.Context, query string, args ...any) (pgxconn.CommandTag, error)
	beginTxFunc  func(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

func (s *stubPool) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	if s.queryRowFunc != nil {
		return s.queryRowFunc(ctx, query, args...)
	}
	return &stubRow{scan: func(dest ...any) error { return nil }}
}

func (s *stubPool) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	if s.queryFunc != nil {
		return s.queryFunc(ctx, query, args...)
	}
	return nil, errors.New("query not implemented")
}

func (s *stubPool) Exec(ctx context.Context, query string, args ...any) (pgxconn.CommandTag, error) {
	if s.execFunc != nil {
		return s.execFunc(ctx, query, args...)
	}
	return pgxconn.CommandTag{}, errors.New("exec not implemented")
}

func (s *stubPool) BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error) {
	if s.beginTxFunc != nil {
		return s.beginTxFunc(ctx, txOptions)
	}
	return nil, errors.New("begin tx not implemented")
}

type stubRow struct {
	scan func(dest ...any) error
}

func (s *stubRow) Scan(dest ...any) error {
	if s.scan != nil {
		return s.scan(dest...)
	}
	return nil
}

type stubRows struct {
	scans []func(dest ...any) error
	idx   int
	err   error
}

func (s *stubRows) Close() {}

func (s *stubRows) Err() error { return s.err }

func (s *stubRows) CommandTag() pgxconn.CommandTag { return pgxconn.CommandTag{} }

func (s *stubRows) FieldDescriptions() []pgxconn.FieldDescription { return nil }

func (s *stubRows) Next() bool {
	if s.err != nil {
		return false
	}
	if s.idx < len(s.scans) {
		s.idx++
		return true
	}
	return false
}

func (s *stubRows) Scan(dest ...any) error {
	if s.idx == 0 || s.idx > len(s.scans) {
		return errors.New("scan called out of order")
	}
	return s.scans[s.idx-1](dest...)
}

func (s *stubRows) Values() ([]any, error) { return nil, nil }

func (s *stubRows) RawValues() [][]byte { return nil }

func (s *stubRows) Conn() *pgx.Conn { return nil }

func TestPGXUsersRepository_FindByEmail(t *testing.T) {
	repo := &PGXUsersRepository{pool: &stubPool{
		queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
			return &stubRow{scan: func(dest ...any) error {
				id := uuid.MustParse("aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa")
				created := time.Now()
				*dest[0].(*uuid.UUID) = id
				*dest[1].(*string) = "ops@example.com"
				*dest[2].(*string) = "hashed"
				*dest[3].(*string) = "operator"
				*dest[4].(*time.Time) = created
				*dest[5].(*time.Time) = created
				return nil
			}}
		},
	}}

	user, err := repo.FindByEmail(context.Background(), "ops@example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Email != "ops@example.com" || user.Role != "operator" {
		t.Fatalf("unexpected user: %+v", user)
	}

	repo.pool = &stubPool{
		queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
			return &stubRow{scan: func(dest ...any) error {
				return pgx.ErrNoRows
			}}
		},
	}
	if _, err := repo.FindByEmail(context.Background(), "missing@example.com"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestPGXAgentsRepository_ListAgents(t *testing.T) {
	repo := &PGXAgentsRepository{pool: &stubPool{
		queryFunc: func(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
			return &stubRows{
				scans: []func(dest ...any) error{
					func(dest ...any) error {
						created := time.Now()
						*dest[0].(*uuid.UUID) = uuid.MustParse("aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa")
						*dest[1].(*string) = "Ana"
						*dest[2].(*string) = "ana@example.com"
						*dest[3].(*string) = "retail"
						*dest[4].(*float64) = 1.2
						*dest[5].(*int) = 4
						*dest[6].(*time.Time) = created
						*dest[7].(*time.Time) = created
						return nil
					},
				},
			}, nil
		},
	}}

	agents, err := repo.ListAgents(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(agents) != 1 {
		t.Fatalf("expected 1 agent, got %d", len(agents))
	}
	if agents[0].Name != "Ana" || agents[0].OpenLeads != 4 || agents[0].ConversionWeight != 1.2 {
		t.Fatalf("unexpected agent: %+v", agents[0])
	}
}

func TestPGXAgentsRepository_CreateAgent(t *testing.T) {
	repo := &PGXAgentsRepository{pool: &stubPool{
		queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
			return &stubRow{scan: func(dest ...any) error {
				created := time.Now()
				*dest[0].(*uuid.UUID) = uuid.MustParse("bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb")
				*dest[1].(*string) = "Bruno"
				*dest[2].(*string) = "bruno@example.com"
				*dest[3].(*string) = "saas"
				*dest[4].(*float64) = 1.0
				*dest[5].(*time.Time) = created
				*dest[6].(*time.Time) = created
				return nil
			}}
		},
	}}

	agent, err := repo.CreateAgent(context.Background(), "Bruno", "bruno@example.com", "saas", 1.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if agent.Email != "bruno@example.com" {
		t.Fatalf("unexpected agent: %+v", agent)
	}

	repo.pool = &stubPool{
		queryRowFunc: func(ctx context.Context, query string, args ...any) pgx.Row {
			return &stubRow{scan: func(dest ...any) error {
				return &pgconn.PgError{Code: "23505", Message: `duplicate key value violates unique constraint "agents_email_key"`}
			}}
		},
	}
	if _, err := repo.CreateAgent(context.Background(), "Bruno", "bruno@example.com", "saas", 1.0); !errors.Is(err, ErrAgentEmailDuplicate) {
		t.Fatalf("expected ErrAgentEmailDuplicate, got %v", err)
	}
}
