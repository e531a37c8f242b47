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

var (
	contactCols = []string{"id", "name", "phone", "email", "position", "client_id", "created_by_id", "created_at", "updated_at"}
	clientCols  = []string{"id", "name", "email", "phone", "address", "created_by_id", "created_at", "updated_at"}
)

func newSQLContactService(t *testing.T) (ContactService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return NewContactService(repositories.NewContactRepository(db)), mock
}

func TestContactService_Create(t *testing.T) {
	svc, mock := newSQLContactService(t)
	phone := "+1 555 0100"

	mock.ExpectExec(`INSERT INTO contacts`).
		WithArgs(sqlmock.AnyArg(), "Jane Doe", phone, nil, nil, "c1", "alice", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, err := svc.Create(context.Background(), "alice", models.ContactCreateRequest{
		Name:     " Jane Doe ",
		Phone:    &phone,
		ClientID: ptr("c1"),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "Jane Doe", c.Name)
	assert.Equal(t, "alice", *c.CreatedByID)

	_, err = svc.Create(context.Background(), "alice", models.ContactCreateRequest{Name: "   "})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestContactService_GetAndList(t *testing.T) {
	svc, mock := newSQLContactService(t)
	ts := time.Now().UTC()

	mock.ExpectQuery(`FROM contacts ct WHERE ct.id = \$1`).WithArgs("ct1").
		WillReturnRows(sqlmock.NewRows(contactCols).AddRow("ct1", "Jane", nil, nil, nil, "c1", "alice", ts, ts))
	mock.ExpectQuery(`FROM clients c WHERE c.id = ANY`).
		WillReturnRows(sqlmock.NewRows(clientCols).AddRow("c1", "Acme", nil, nil, nil, "alice", ts, ts))

	c, err := svc.GetByID(context.Background(), "ct1")
	require.NoError(t, err)
	require.NotNil(t, c.Client)
	assert.Equal(t, "Acme", c.Client.Name)

	mock.ExpectQuery(`FROM contacts ct WHERE ct.id = \$1`).WithArgs("ghost").WillReturnError(sql.ErrNoRows)
	_, err = svc.GetByID(context.Background(), "ghost")
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	mock.ExpectQuery(`FROM contacts ct ORDER BY ct.name ASC`).
		WillReturnRows(sqlmock.NewRows(contactCols).
			AddRow("ct1", "Jane", nil, nil, nil, nil, "alice", ts, ts).
			AddRow("ct2", "Zed", nil, nil, nil, nil, "bob", ts, ts))
	all, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Zed", all[1].Name)
}

func TestContactService_Update(t *testing.T) {
	svc, mock := newSQLContactService(t)
	ts := time.Now().UTC()

	mock.ExpectQuery(`FROM contacts ct WHERE ct.id = \$1`).WithArgs("ghost").WillReturnError(sql.ErrNoRows)
	_, err := svc.Update(context.Background(), "ghost", models.ContactUpdateRequest{})
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	mock.ExpectQuery(`FROM contacts ct WHERE ct.id = \$1`).WithArgs("ct1").
		WillReturnRows(sqlmock.NewRows(contactCols).AddRow("ct1", "Jane", nil, nil, "Buyer", "c1", "alice", ts, ts))
	mock.ExpectQuery(`FROM clients c WHERE c.id = ANY`).
		WillReturnRows(sqlmock.NewRows(clientCols).AddRow("c1", "Acme", nil, nil, nil, "alice", ts, ts))
	mock.ExpectExec(`UPDATE contacts`).
		WithArgs("Jane", nil, nil, "Buyer", "c2", sqlmock.AnyArg(), "ct1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM contacts ct WHERE ct.id = \$1`).WithArgs("ct1").
		WillReturnRows(sqlmock.NewRows(contactCols).AddRow("ct1", "Jane", nil, nil, "Buyer", "c2", "alice", ts, ts))
	mock.ExpectQuery(`FROM clients c WHERE c.id = ANY`).
		WillReturnRows(sqlmock.NewRows(clientCols).AddRow("c2", "Globex", nil, nil, nil, "alice", ts, ts))

	c, err := svc.Update(context.Background(), "ct1", models.ContactUpdateRequest{ClientID: ptr("c2")})
	require.NoError(t, err)
	assert.Equal(t, "c2", *c.ClientID)
	require.NotNil(t, c.Client)
	assert.Equal(t, "Globex", c.Client.Name, "client is reloaded after the move")
	assert.Equal(t, "Buyer", *c.Position)
}
