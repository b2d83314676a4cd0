package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUnavailabilityRequest(t *testing.T) {
	loc := rome(t)
	now := time.Date(2025, 1, 2, 10, 0, 0, 0, loc)
	operator := uuid.New()

	testCases := []struct {
		name  string
		dates []time.Time
		err   error
	}{
		{name: "no dates", err: ErrNoUnavailableDates},
		{
			name: "one past date rejects all",
			dates: []time.Time{
				time.Date(2025, 1, 1, 0, 0, 0, 0, loc),
				time.Date(2025, 1, 2, 0, 0, 0, 0, loc),
			},
			err: ErrPastUnavailableDates,
		},
		{
			name:  "earlier today is still today",
			dates: []time.Time{time.Date(2025, 1, 2, 6, 0, 0, 0, loc)},
		},
		{
			name: "future dates",
			dates: []time.Time{
				time.Date(2025, 1, 3, 0, 0, 0, 0, loc),
				time.Date(2025, 1, 9, 0, 0, 0, 0, loc),
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			request, err := NewUnavailabilityRequest(operator, tc.dates, nil, now, loc)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				assert.Nil(t, request)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, UnavailabilityPending, request.Status)
			assert.Len(t, request.Dates, len(tc.dates))
		})
	}
}

func TestNewUnavailabilityRequest_Normalises(t *testing.T) {
	loc := rome(t)
	now := time.Date(2025, 1, 2, 10, 0, 0, 0, loc)
	empty := ""

	request, err := NewUnavailabilityRequest(
		uuid.New(),
		[]time.Time{time.Date(2025, 1, 5, 17, 30, 0, 0, loc)},
		&empty,
		now,
		loc,
	)
	require.NoError(t, err)
	assert.True(t, request.Dates[0].Equal(time.Date(2025, 1, 5, 0, 0, 0, 0, loc)))
	assert.Nil(t, request.Reason)
}

func TestUnavailabilityRequest_Review(t *testing.T) {
	now := time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)
	admin := uuid.New()
	request := &UnavailabilityRequest{Status: UnavailabilityPending}

	assert.ErrorIs(t, request.Review(UnavailabilityPending, admin, now), ErrInvalidReviewStatus)
	assert.True(t, request.IsPending())

	require.NoError(t, request.Review(UnavailabilityApproved, admin, now))
	assert.Equal(t, UnavailabilityApproved, request.Status)
	assert.Equal(t, admin, *request.ReviewedBy)
	assert.True(t, request.ReviewedAt.Equal(now))

	assert.ErrorIs(t, request.Review(UnavailabilityRejected, admin, now), ErrAlreadyReviewed)
	assert.Equal(t, UnavailabilityApproved, request.Status)
}

func TestUnavailabilityRequest_CoversDay(t *testing.T) {
	loc := rome(t)
	request := &UnavailabilityRequest{Dates: []time.Time{time.Date(2025, 3, 10, 0, 0, 0, 0, loc)}}

	assert.True(t, request.CoversDay(time.Date(2025, 3, 10, 23, 30, 0, 0, loc), loc))
	assert.False(t, request.CoversDay(time.Date(2025, 3, 11, 0, 0, 0, 0, loc), loc))
	assert.False(t, request.CoversDay(time.Date(2025, 3, 9, 23, 59, 0, 0, loc), loc))
}
