package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"crmmvp/internal/models"
)

type ContactRepository interface {
	Create(ctx context.Context, contact *models.Contact) error
	Update(ctx context.Context, contact *models.Contact) error
	GetByID(ctx context.Context, id string) (*models.Contact, error)
	List(ctx context.Context) ([]models.Contact, error)
	FindByClient(ctx context.Context, clientID string) ([]models.Contact, error)
}

type contactRepository struct {
	db DBTX
}

func NewContactRepository(db DBTX) ContactRepository {
	return &contactRepository{db: db}
}

const contactColumns = `ct.id, ct.name, ct.phone, ct.email, ct.position, ct.client_id, ct.created_by_id, ct.created_at, ct.updated_at`

func scanContact(s rowScanner) (*models.Contact, error) {
	c := &models.Contact{}
	if err := s.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Position, &c.ClientID, &c.CreatedByID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *contactRepository) Create(ctx context.Context, contact *models.Contact) error {
	if contact.ID == "" {
		contact.ID = newID()
	}
	ts := now()
	contact.CreatedAt, contact.UpdatedAt = ts, ts
	const q = `
		INSERT INTO contacts (id, name, phone, email, position, client_id, created_by_id, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`
	if _, err := r.db.ExecContext(ctx, q,
		contact.ID, contact.Name, contact.Phone, contact.Email, contact.Position,
		contact.ClientID, contact.CreatedByID, contact.CreatedAt, contact.UpdatedAt,
	); err != nil {
		return fmt.Errorf("create contact: %w", err)
	}
	return nil
}

func (r *contactRepository) Update(ctx context.Context, contact *models.Contact) error {
	contact.UpdatedAt = now()
	const q = `
		UPDATE contacts
		SET name=$1, phone=$2, email=$3, position=$4, client_id=$5, updated_at=$6
		WHERE id=$7`
	res, err := r.db.ExecContext(ctx, q,
		contact.Name, contact.Phone, contact.Email, contact.Position, contact.ClientID, contact.UpdatedAt, contact.ID,
	)
	if err != nil {
		return fmt.Errorf("update contact: %w", err)
	}
	return expectAffected(res, "update contact")
}

// GetByID returns the contact with its client attached.
func (r *contactRepository) GetByID(ctx context.Context, id string) (*models.Contact, error) {
	q := `SELECT ` + contactColumns + ` FROM contacts ct WHERE ct.id = $1`
	c, err := scanContact(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("contact %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get contact: %w", err)
	}
	if c.ClientID != nil {
		clients, err := findClientsByIDs(ctx, r.db, []string{*c.ClientID})
		if err != nil {
			return nil, err
		}
		if cl, ok := clients[*c.ClientID]; ok {
			c.Client = &cl
		}
	}
	return c, nil
}

func (r *contactRepository) List(ctx context.Context) ([]models.Contact, error) {
	q := `SELECT ` + contactColumns + ` FROM contacts ct ORDER BY ct.name ASC`
	return r.list(ctx, q)
}

func (r *contactRepository) FindByClient(ctx context.Context, clientID string) ([]models.Contact, error) {
	q := `SELECT ` + contactColumns + ` FROM contacts ct WHERE ct.client_id = $1 ORDER BY ct.name ASC`
	return r.list(ctx, q, clientID)
}

func (r *contactRepository) list(ctx context.Context, q string, args ...any) ([]models.Contact, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	res := []models.Contact{}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, *c)
	}
	return res, rows.Err()
}

func findContactsByIDs(ctx context.Context, db DBTX, ids []string) (map[string]models.Contact, error) {
	out := map[string]models.Contact{}
	if len(ids) == 0 {
		return out, nil
	}
	q := `SELECT ` + contactColumns + ` FROM contacts ct WHERE ct.id = ANY($1)`
	rows, err := db.QueryContext(ctx, q, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("find contacts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		out[c.ID] = *c
	}
	return out, rows.Err()
}
