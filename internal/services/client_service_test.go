package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crmmvp/internal/models"
	"crmmvp/internal/repositories"
)

func newSQLClientService(t *testing.T) (ClientService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	svc := NewClientService(
		repositories.NewClientRepository(db),
		repositories.NewContactRepository(db),
		repositories.NewTaskRepository(db),
		repositories.NewFeedRepository(db),
	)
	return svc, mock
}

func TestClientService_Create(t *testing.T) {
	svc, mock := newSQLClientService(t)

	mock.ExpectExec(`INSERT INTO clients`).
		WithArgs(sqlmock.AnyArg(), "Acme", nil, nil, nil, "alice", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, err := svc.Create(context.Background(), "alice", models.ClientCreateRequest{Name: "  Acme "})
	require.NoError(t, err)
	assert.Equal(t, "Acme", c.Name)
	assert.NotEmpty(t, c.ID)

	_, err = svc.Create(context.Background(), "alice", models.ClientCreateRequest{Name: "  "})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestClientService_Update(t *testing.T) {
	svc, mock := newSQLClientService(t)
	cols := []string{"id", "name", "email", "phone", "address", "created_by_id", "created_at", "updated_at"}
	ts := time.Now().UTC()

	mock.ExpectQuery(`FROM clients c WHERE c.id = \$1`).WithArgs("ghost").WillReturnError(sql.ErrNoRows)
	_, err := svc.Update(context.Background(), "ghost", models.ClientUpdateRequest{})
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	mock.ExpectQuery(`FROM clients c WHERE c.id = \$1`).WithArgs("c1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("c1", "Acme", nil, nil, nil, "alice", ts, ts))
	blank := ""
	_, err = svc.Update(context.Background(), "c1", models.ClientUpdateRequest{Name: &blank})
	assert.ErrorIs(t, err, ErrInvalidInput)

	phone := "+1 555 0100"
	mock.ExpectQuery(`FROM clients c WHERE c.id = \$1`).WithArgs("c1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("c1", "Acme", nil, nil, nil, "alice", ts, ts))
	mock.ExpectExec(`UPDATE clients`).
		WithArgs("Acme", nil, &phone, nil, sqlmock.AnyArg(), "c1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	c, err := svc.Update(context.Background(), "c1", models.ClientUpdateRequest{Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, phone, *c.Phone)
}
