package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"crmmvp/internal/models"
)

type ClientRepository interface {
	Create(ctx context.Context, client *models.Client) error
	Update(ctx context.Context, client *models.Client) error
	GetByID(ctx context.Context, id string) (*models.Client, error)
	List(ctx context.Context) ([]models.Client, error)
}

type clientRepository struct {
	db DBTX
}

func NewClientRepository(db DBTX) ClientRepository {
	return &clientRepository{db: db}
}

const clientColumns = `c.id, c.name, c.email, c.phone, c.address, c.created_by_id, c.created_at, c.updated_at`

func scanClient(s rowScanner) (*models.Client, error) {
	c := &models.Client{}
	if err := s.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.CreatedByID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *clientRepository) Create(ctx context.Context, client *models.Client) error {
	if client.ID == "" {
		client.ID = newID()
	}
	ts := now()
	client.CreatedAt, client.UpdatedAt = ts, ts
	const q = `
		INSERT INTO clients (id, name, email, phone, address, created_by_id, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	if _, err := r.db.ExecContext(ctx, q,
		client.ID, client.Name, client.Email, client.Phone, client.Address,
		client.CreatedByID, client.CreatedAt, client.UpdatedAt,
	); err != nil {
		return fmt.Errorf("create client: %w", err)
	}
	return nil
}

func (r *clientRepository) Update(ctx context.Context, client *models.Client) error {
	client.UpdatedAt = now()
	const q = `
		UPDATE clients
		SET name=$1, email=$2, phone=$3, address=$4, updated_at=$5
		WHERE id=$6`
	res, err := r.db.ExecContext(ctx, q, client.Name, client.Email, client.Phone, client.Address, client.UpdatedAt, client.ID)
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	return expectAffected(res, "update client")
}

func (r *clientRepository) GetByID(ctx context.Context, id string) (*models.Client, error) {
	q := `SELECT ` + clientColumns + ` FROM clients c WHERE c.id = $1`
	c, err := scanClient(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("client %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get client: %w", err)
	}
	return c, nil
}

func (r *clientRepository) List(ctx context.Context) ([]models.Client, error) {
	q := `SELECT ` + clientColumns + ` FROM clients c ORDER BY c.name ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	res := []models.Client{}
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *c)
	}
	return res, rows.Err()
}

func findClientsByIDs(ctx context.Context, db DBTX, ids []string) (map[string]models.Client, error) {
	out := map[string]models.Client{}
	if len(ids) == 0 {
		return out, nil
	}
	q := `SELECT ` + clientColumns + ` FROM clients c WHERE c.id = ANY($1)`
	rows, err := db.QueryContext(ctx, q, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("find clients: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		out[c.ID] = *c
	}
	return out, rows.Err()
}
