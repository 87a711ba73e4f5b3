package core

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ClientService manages client master data. Deleting a client cascades
// to its invoices and, transitively, their items and payments.
type ClientService interface {
	CreateClient(ctx context.Context, input ClientInput) (*Client, error)
	GetClients(ctx context.Context) ([]Client, error)
	UpdateClient(ctx context.Context, clientID string, input ClientInput) (*Client, error)
	DeleteClient(ctx context.Context, clientID string) error
}

type clientService struct {
	pool  *pgxpool.Pool
	audit AuditService
}

func NewClientService(pool *pgxpool.Pool, audit AuditService) ClientService {
	return &clientService{pool: pool, audit: audit}
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidateClientInput checks a client payload field by field. Each
// problem is reported as "field: message" so the CSV importer can
// prefix row numbers.
func ValidateClientInput(input ClientInput) []string {
	var problems []string
	if strings.TrimSpace(input.Name) == "" {
		problems = append(problems, "name: field required")
	}
	switch {
	case strings.TrimSpace(input.Email) == "":
		problems = append(problems, "email: field required")
	case !emailPattern.MatchString(input.Email):
		problems = append(problems, "email: value is not a valid email address")
	}
	if strings.TrimSpace(input.Address) == "" {
		problems = append(problems, "address: field required")
	}
	return problems
}

// isUniqueViolation reports whether err is a PostgreSQL unique
// constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (s *clientService) CreateClient(ctx context.Context, input ClientInput) (*Client, error) {
	if problems := ValidateClientInput(input); len(problems) > 0 {
		return nil, fmt.Errorf("%s: %w", strings.Join(problems, "; "), ErrInvalidInput)
	}

	c := &Client{}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO clients (id, name, email, address)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, email, address, created_at`,
		uuid.NewString(), input.Name, input.Email, input.Address,
	).Scan(&c.ID, &c.Name, &c.Email, &c.Address, &c.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("email %q already exists: %w", input.Email, ErrInvalidInput)
		}
		return nil, fmt.Errorf("create client %q: %w", input.Name, err)
	}
	return c, nil
}

// GetClients returns all clients ordered by name.
func (s *clientService) GetClients(ctx context.Context) ([]Client, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, email, address, created_at
		FROM clients
		ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("query clients: %w", err)
	}
	defer rows.Close()

	var clients []Client
	for rows.Next() {
		var c Client
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Address, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

// UpdateClient overwrites the client's details and writes the audit
// entry in the same transaction. Client creation and deletion are not
// audit-logged; only updates are.
func (s *clientService) UpdateClient(ctx context.Context, clientID string, input ClientInput) (*Client, error) {
	if problems := ValidateClientInput(input); len(problems) > 0 {
		return nil, fmt.Errorf("%s: %w", strings.Join(problems, "; "), ErrInvalidInput)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin update client: %w", err)
	}
	defer tx.Rollback(ctx)

	c := &Client{}
	err = tx.QueryRow(ctx, `
		UPDATE clients
		SET name = $2, email = $3, address = $4
		WHERE id = $1
		RETURNING id, name, email, address, created_at`,
		clientID, input.Name, input.Email, input.Address,
	).Scan(&c.ID, &c.Name, &c.Email, &c.Address, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("client %s: %w", clientID, ErrNotFound)
		}
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("email %q already exists: %w", input.Email, ErrInvalidInput)
		}
		return nil, fmt.Errorf("update client %s: %w", clientID, err)
	}

	details := fmt.Sprintf("Client '%s' details updated.", c.Name)
	if err := s.audit.Log(ctx, tx, "Client", c.ID, "UPDATE", details); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit update client: %w", err)
	}
	return c, nil
}

// DeleteClient removes the client and all owned invoices, items, and
// payments. Irreversible; there is no soft delete.
func (s *clientService) DeleteClient(ctx context.Context, clientID string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM clients WHERE id = $1", clientID)
	if err != nil {
		return fmt.Errorf("delete client %s: %w", clientID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("client %s: %w", clientID, ErrNotFound)
	}
	return nil
}
