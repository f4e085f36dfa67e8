package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v5"
	pgxconn "github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/octobees/lead-import/api/internal/entity"
)

// ErrAgentEmailDuplicate is returned when the roster already has the email.
var ErrAgentEmailDuplicate = errors.New("agent email already exists")

// pgxPool abstracts the pgx pool operations used by the repositories.
type pgxPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgxconn.CommandTag, error)
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

var _ pgxPool = (*pgxpool.Pool)(nil)

// AgentsRepository exposes the sales agents roster.
type AgentsRepository interface {
	ListAgents(ctx context.Context) ([]entity.Agent, error)
	CreateAgent(ctx context.Context, name, email, specialty string, conversionWeight float64) (*entity.Agent, error)
}

// PGXAgentsRepository implements AgentsRepository with pgx.
type PGXAgentsRepository struct {
	pool pgxPool
}

// NewPGXAgentsRepository wires a pgx backed agents repository.
func NewPGXAgentsRepository(pool *pgxpool.Pool) *PGXAgentsRepository {
	return &PGXAgentsRepository{pool: pool}
}

// ListAgents returns the directory snapshot with current open-lead counts.
func (r *PGXAgentsRepository) ListAgents(ctx context.Context) ([]entity.Agent, error) {
	query := `
        SELECT a.id, a.name, a.email, a.specialty, a.conversion_weight,
               COUNT(c.id) FILTER (WHERE c.status = 'open') AS open_leads,
               a.created_at, a.updated_at
        FROM agents a
        LEFT JOIN contacts c ON c.agent_id = a.id
        GROUP BY a.id
        ORDER BY a.created_at
    `

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	defer rows.Close()

	var agents []entity.Agent
	for rows.Next() {
		var agent entity.Agent
		if err := rows.Scan(&agent.ID, &agent.Name, &agent.Email, &agent.Specialty, &agent.ConversionWeight, &agent.OpenLeads, &agent.CreatedAt, &agent.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan agent row: %w", err)
		}
		agents = append(agents, agent)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate agents: %w", err)
	}
	return agents, nil
}

// CreateAgent inserts a roster entry.
func (r *PGXAgentsRepository) CreateAgent(ctx context.Context, name, email, specialty string, conversionWeight float64) (*entity.Agent, error) {
	row := r.pool.QueryRow(ctx, `
        INSERT INTO agents (name, email, specialty, conversion_weight)
        VALUES ($1, $2, $3, $4)
        RETURNING id, name, email, specialty, conversion_weight, created_at, updated_at
    `, name, email, specialty, conversionWeight)

	var agent entity.Agent
	if err := row.Scan(&agent.ID, &agent.Name, &agent.Email, &agent.Specialty, &agent.ConversionWeight, &agent.CreatedAt, &agent.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && strings.Contains(pgErr.Message, "agents_email_key") {
			return nil, fmt.Errorf("%w: %v", ErrAgentEmailDuplicate, pgErr)
		}
		return nil, fmt.Errorf("insert agent: %w", err)
	}

	return &agent, nil
}
