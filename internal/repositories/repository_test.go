package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"topup/internal/models"
	"topup/internal/types"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	return gormDB, mock
}

func TestClassify(t *testing.T) {
	other := errors.New("connection reset")

	assert.Nil(t, classify(nil, "Shift not found"))
	assert.ErrorIs(t, classify(gorm.ErrDuplicatedKey, ""), ErrDuplicate)
	assert.Equal(t, other, classify(other, ""))

	notFound := classify(gorm.ErrRecordNotFound, "Shift not found")
	assert.Equal(t, types.KindNotFound, types.KindOf(notFound))
	assert.Equal(t, "Shift not found", notFound.Error())
	assert.True(t, isClassified(notFound))
	assert.False(t, isClassified(other))
}

func TestShiftRepository_ActiveForCleaner(t *testing.T) {
	gormDB, mock := setupTestDB(t)
	repo := NewShiftRepository()

	cleanerID := uuid.New()
	shiftID := uuid.New()
	from := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT \* FROM "cleaning_shifts" WHERE .*scheduled_date >= .*status <> .*cleaner_id = `).
		WillReturnRows(
			sqlmock.NewRows([]string{"id", "cleaner_id", "status"}).
				AddRow(shiftID.String(), cleanerID.String(), "scheduled"),
		)

	shifts, err := repo.ActiveForCleaner(context.Background(), gormDB, cleanerID, DayQuery{
		From: from,
		To:   from.AddDate(0, 0, 1),
	})

	require.NoError(t, err)
	require.Len(t, shifts, 1)
	assert.Equal(t, shiftID, shifts[0].ID)
	assert.Equal(t, models.ShiftScheduled, shifts[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShiftRepository_ActiveForApartmentExcludesShift(t *testing.T) {
	gormDB, mock := setupTestDB(t)
	repo := NewShiftRepository()

	exclude := uuid.New()
	from := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT \* FROM "cleaning_shifts" WHERE .*id <> .*apartment_id = `).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	shifts, err := repo.ActiveForApartment(context.Background(), gormDB, uuid.New(), DayQuery{
		From:    from,
		To:      from.AddDate(0, 0, 1),
		Exclude: &exclude,
	})

	require.NoError(t, err)
	assert.Empty(t, shifts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShiftRepository_ListRestrictedWithoutApartments(t *testing.T) {
	repo := NewShiftRepository()

	shifts, err := repo.List(context.Background(), nil, ShiftFilter{Restricted: true})

	require.NoError(t, err)
	assert.Empty(t, shifts)
}

func TestNotificationRepository_DeleteReadBefore(t *testing.T) {
	gormDB, mock := setupTestDB(t)
	repo := NewNotificationRepository()

	mock.ExpectExec(`DELETE FROM "notifications" WHERE read = .* AND read_at < `).
		WillReturnResult(sqlmock.NewResult(0, 3))

	deleted, err := repo.DeleteReadBefore(context.Background(), gormDB, time.Now().Add(-24*time.Hour))

	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepository_Delete(t *testing.T) {
	gormDB, mock := setupTestDB(t)
	repo := NewScheduleRepository()

	mock.ExpectExec(`DELETE FROM "cleaning_schedules" WHERE apartment_id = .* AND year = .* AND month = `).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Delete(context.Background(), gormDB, uuid.New(), 2025, 3)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
