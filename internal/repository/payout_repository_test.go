package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sefazor/fanvault-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var payoutCols = []string{"id", "owner_id", "amount", "status"}

func TestPayCreator_Success(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPayoutRepository(db)
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "payout_requests" WHERE id = (.+) FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows(payoutCols).AddRow(9, 3, "75.00", "PENDING"))
	mock.ExpectExec(`UPDATE "payout_requests" SET (.+) WHERE (.+)`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "creators" SET (.+)pending_balance - (.+)`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "creator_earnings" SET (.+)`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	receipt, err := repo.PayCreator(context.Background(), 9, 1, "0xabc", now)
	require.NoError(t, err)
	assert.Equal(t, uint(3), receipt.OwnerID)
	assert.Equal(t, "75", receipt.Amount.String())
	assert.Equal(t, int64(2), receipt.EarningsSettled)
	assert.Equal(t, now, receipt.PaidAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPayCreator_AlreadyPaid(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPayoutRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "payout_requests" WHERE id = (.+) FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows(payoutCols).AddRow(9, 3, "75.00", "PAID"))
	mock.ExpectRollback()

	_, err := repo.PayCreator(context.Background(), 9, 1, "", time.Now())
	assert.ErrorIs(t, err, ErrPayoutAlreadyPaid)
	// no balance update may run
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPayCreator_LostRace(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPayoutRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "payout_requests"`).
		WillReturnRows(sqlmock.NewRows(payoutCols).AddRow(9, 3, "75.00", "PENDING"))
	mock.ExpectExec(`UPDATE "payout_requests" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := repo.PayCreator(context.Background(), 9, 1, "", time.Now())
	assert.ErrorIs(t, err, ErrPayoutAlreadyPaid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPayChatter_RollsBackOnEarningsFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPayoutRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "chatter_payout_requests"`).
		WillReturnRows(sqlmock.NewRows(payoutCols).AddRow(4, 8, "60.00", "PENDING"))
	mock.ExpectExec(`UPDATE "chatter_payout_requests" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "chatters" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "chatter_earnings" SET`).
		WillReturnError(errors.New("deadlock detected"))
	mock.ExpectRollback()

	_, err := repo.PayChatter(context.Background(), 4, 1, "", time.Now())
	assert.EqualError(t, err, "deadlock detected")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPayAgency_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPayoutRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "agency_payout_requests"`).
		WillReturnRows(sqlmock.NewRows(payoutCols))
	mock.ExpectRollback()

	_, err := repo.PayAgency(context.Background(), 77, 1, "", time.Now())
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCreatorRequest_PendingExists(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPayoutRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "creators" WHERE id = (.+) FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"pending_balance"}).AddRow("120.00"))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "payout_requests" WHERE creator_id = (.+) AND status = (.+)`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	err := repo.CreateCreatorRequest(context.Background(), &models.PayoutRequest{CreatorID: 3})
	assert.ErrorIs(t, err, ErrPayoutPending)
	assert.NoError(t, mock.ExpectationsWereMet())
}
