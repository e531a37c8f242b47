package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crmmvp/internal/models"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}

func TestUnitOfWork_CommitsOnSuccess(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE tasks SET status=\$1`).
		WithArgs(models.StatusClosed, nil, sqlmock.AnyArg(), "t1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO notifications`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := NewUnitOfWork(db).Do(context.Background(), func(r TxRepos) error {
		if err := r.Tasks.UpdateStatus(context.Background(), "t1", models.StatusClosed, nil); err != nil {
			return err
		}
		return r.Notifications.Store(context.Background(), &models.Notification{Message: "closed"})
	})
	require.NoError(t, err)
}

func TestUnitOfWork_RollsBackOnError(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE tasks SET status=\$1`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO notifications`).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := NewUnitOfWork(db).Do(context.Background(), func(r TxRepos) error {
		if err := r.Tasks.UpdateStatus(context.Background(), "t1", models.StatusClosed, nil); err != nil {
			return err
		}
		return r.Notifications.Store(context.Background(), &models.Notification{Message: "closed"})
	})
	assert.ErrorContains(t, err, "disk full")
}

func TestTaskRepository_LifecycleWritesNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()

	mock.ExpectExec(`UPDATE tasks SET status=\$1`).WillReturnResult(sqlmock.NewResult(0, 0))
	err := repo.UpdateStatus(ctx, "ghost", models.StatusOpen, nil)
	assert.ErrorIs(t, err, ErrNotFound)

	reason := "vacation"
	mock.ExpectExec(`UPDATE tasks SET\s+transfer_to_id=\$1`).
		WithArgs("bob", "alice", &reason, models.TransferUndefined, sqlmock.AnyArg(), "t1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.UpdateTransfer(ctx, "t1", "bob", "alice", &reason))

	mock.ExpectExec(`UPDATE tasks SET\s+transfer_status=\$1`).WillReturnResult(sqlmock.NewResult(0, 0))
	err = repo.UpdateTransferStatus(ctx, "ghost", models.TransferAccepted, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTaskRepository_FindByIDMissing(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`FROM tasks t WHERE t.id = \$1`).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

	_, err := NewTaskRepository(db).FindByID(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTaskRepository_ReplaceCollaborators(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTaskRepository(db)

	mock.ExpectExec(`DELETE FROM task_collaborators`).WithArgs("t1").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`INSERT INTO task_collaborators`).WillReturnResult(sqlmock.NewResult(0, 2))
	require.NoError(t, repo.ReplaceCollaborators(context.Background(), "t1", []string{"u1", "u2"}))

	mock.ExpectExec(`DELETE FROM task_collaborators`).WithArgs("t1").WillReturnResult(sqlmock.NewResult(0, 2))
	require.NoError(t, repo.ReplaceCollaborators(context.Background(), "t1", nil))
}

func TestLikeRepository_AddIsIdempotent(t *testing.T) {
	db, mock := newMock(t)
	repo := NewLikeRepository(db)

	mock.ExpectExec(`INSERT INTO likes .* ON CONFLICT \(user_id, feed_id\) DO NOTHING`).
		WithArgs(sqlmock.AnyArg(), "u1", "f1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO likes`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM likes`).WithArgs("f1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	added, err := repo.Add(context.Background(), "u1", "f1")
	require.NoError(t, err)
	assert.True(t, added)

	added, err = repo.Add(context.Background(), "u1", "f1")
	require.NoError(t, err)
	assert.False(t, added)

	n, err := repo.Count(context.Background(), "f1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestUserRepository_UpdateTelegramLink(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectExec(`UPDATE users SET telegram_chat_id=NULL`).WithArgs(int64(42), "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE users SET telegram_chat_id=\$1`).WithArgs(int64(42), sqlmock.AnyArg(), "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, NewUserRepository(db).UpdateTelegramLink(context.Background(), "u1", 42))
}

func TestTelegramLinkRepository_UseByCode(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTelegramLinkRepository(db)
	cols := []string{"id", "user_id", "code", "expires_at", "used", "created_at"}
	created := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM telegram_links\s+WHERE code=\$1\s+FOR UPDATE`).WithArgs("C1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("l1", "u1", "C1", created.Add(time.Hour), false, created))
	mock.ExpectExec(`UPDATE telegram_links SET used=TRUE`).WithArgs("l1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	link, err := repo.UseByCode(context.Background(), "C1")
	require.NoError(t, err)
	assert.Equal(t, "u1", link.UserID)
	assert.True(t, link.Used)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM telegram_links`).WithArgs("C2").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("l2", "u1", "C2", created.Add(-time.Minute), false, created))
	mock.ExpectRollback()

	_, err = repo.UseByCode(context.Background(), "C2")
	assert.ErrorIs(t, err, ErrLinkExpired)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM telegram_links`).WithArgs("C3").WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err = repo.UseByCode(context.Background(), "C3")
	assert.ErrorIs(t, err, ErrNotFound)
}
