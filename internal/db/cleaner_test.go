package db

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })
	return sqlx.NewDb(raw, "sqlmock"), mock
}

// cutoffNear matches a time.Time argument within a second of want.
type cutoffNear struct{ want time.Time }

func (c cutoffNear) Match(v driver.Value) bool {
	got, ok := v.(time.Time)
	if !ok {
		return false
	}
	d := got.Sub(c.want)
	return d > -time.Second && d < time.Second
}

func TestStartCleaner_RunsEverySweep(t *testing.T) {
	db, mock := newMockDB(t)
	age := 30 * 24 * time.Hour

	mock.ExpectExec("DELETE FROM reset_codes").
		WithArgs(cutoffNear{time.Now().UTC()}).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("DELETE FROM notifications WHERE read").
		WithArgs(cutoffNear{time.Now().UTC().Add(-age)}).
		WillReturnResult(sqlmock.NewResult(0, 1))

	core, logs := observer.New(zapcore.InfoLevel)
	ctx, cancel := context.WithCancel(context.Background())
	done := StartCleaner(ctx, db, 10*time.Millisecond, zap.New(core), ExpiredResetCodes, ReadNotifications(age))

	require.Eventually(t, func() bool {
		return logs.FilterMessage("cleaned up").Len() >= 2
	}, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	assert.NoError(t, mock.ExpectationsWereMet())
	entry := logs.FilterMessage("cleaned up").All()[0]
	assert.Equal(t, "reset codes", entry.ContextMap()["sweep"])
	assert.EqualValues(t, 3, entry.ContextMap()["removed"])
}

func TestStartCleaner_ErrorLogged(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec("DELETE FROM reset_codes").
		WithArgs(sqlmock.AnyArg()).
		WillReturnError(errors.New("db fail"))

	core, logs := observer.New(zapcore.ErrorLevel)
	ctx, cancel := context.WithCancel(context.Background())
	done := StartCleaner(ctx, db, 10*time.Millisecond, zap.New(core), ExpiredResetCodes)

	require.Eventually(t, func() bool {
		return logs.FilterMessage("cleanup failed").Len() > 0
	}, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStartCleaner_CancelBeforeTick(t *testing.T) {
	db, mock := newMockDB(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := StartCleaner(ctx, db, time.Hour, zap.NewNop(), ExpiredResetCodes)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cleaner did not stop")
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}
