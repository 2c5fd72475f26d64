package lock

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObtain_Busy(t *testing.T) {
	db, mock := redismock.NewClientMock()
	l := NewRedisLocker(db)

	mock.Regexp().ExpectSetNX("lock:cron:bumps", `[0-9a-f]{32}`, 5*time.Minute).SetVal(false)

	_, err := l.Obtain(context.Background(), "cron:bumps", 5*time.Minute)
	assert.ErrorIs(t, err, ErrNotObtained)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestObtain_Free(t *testing.T) {
	db, mock := redismock.NewClientMock()
	l := NewRedisLocker(db)

	mock.Regexp().ExpectSetNX("lock:cron:credits", `[0-9a-f]{32}`, time.Minute).SetVal(true)

	release, err := l.Obtain(context.Background(), "cron:credits", time.Minute)
	require.NoError(t, err)
	require.NotNil(t, release)
	assert.NoError(t, mock.ExpectationsWereMet())
}
