package handlers

import (
	"net/http"
	"testing"
	"time"
	"topup/internal/controllers"
	"topup/internal/models"

	scheduleController "topup/internal/controllers/schedules"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestScheduleBody_Request(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Rome")
	require.NoError(t, err)
	checkIn := time.Date(2025, 3, 10, 0, 0, 0, 0, loc)

	testCases := []struct {
		name     string
		body     scheduleBody
		expected []models.Booking
	}{
		{name: "no shape", body: scheduleBody{Year: 2025, Month: 3}},
		{
			name: "bookings drop invalid entries",
			body: scheduleBody{Year: 2025, Month: 3, Bookings: []models.Booking{
				{CheckIn: checkIn, CheckOut: checkIn.AddDate(0, 0, 2), GuestCount: 3},
				{CheckIn: checkIn, CheckOut: checkIn, GuestCount: 2},
				{CheckIn: checkIn, CheckOut: checkIn.AddDate(0, 0, 1), GuestCount: 0},
				{CheckOut: checkIn, GuestCount: 1},
			}},
			expected: []models.Booking{{CheckIn: checkIn, CheckOut: checkIn.AddDate(0, 0, 2), GuestCount: 3}},
		},
		{
			name:     "explicitly empty bookings",
			body:     scheduleBody{Year: 2025, Month: 3, Bookings: []models.Booking{}},
			expected: []models.Booking{},
		},
		{
			name: "scheduled days become nights",
			body: scheduleBody{Year: 2025, Month: 3, ScheduledDays: []models.ScheduledDay{
				{Day: 10, GuestCount: 2},
				{Day: 32, GuestCount: 2},
				{Day: 11, GuestCount: 0},
			}},
			expected: []models.Booking{{CheckIn: checkIn, CheckOut: checkIn.AddDate(0, 0, 1), GuestCount: 2}},
		},
		{
			name:     "days default to one guest",
			body:     scheduleBody{Year: 2025, Month: 3, Days: []int{0, 10}},
			expected: []models.Booking{{CheckIn: checkIn, CheckOut: checkIn.AddDate(0, 0, 1), GuestCount: 1}},
		},
		{
			name:     "bookings win over days",
			body:     scheduleBody{Year: 2025, Month: 3, Bookings: []models.Booking{}, Days: []int{10}},
			expected: []models.Booking{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			request := tc.body.request(loc)
			assert.Equal(t, 2025, request.Year)
			assert.Equal(t, 3, request.Month)
			if tc.expected == nil {
				assert.Nil(t, request.Bookings)
				return
			}
			require.NotNil(t, request.Bookings)
			require.Len(t, request.Bookings, len(tc.expected))
			for i, b := range tc.expected {
				assert.True(t, b.CheckIn.Equal(request.Bookings[i].CheckIn))
				assert.True(t, b.CheckOut.Equal(request.Bookings[i].CheckOut))
				assert.Equal(t, b.GuestCount, request.Bookings[i].GuestCount)
			}
		})
	}
}

func TestScheduleHandler_SaveSendsBookings(t *testing.T) {
	owner := &models.User{Name: "Anna", Role: models.RoleOwner}
	owner.ID = uuid.New()
	apartmentID := uuid.New()
	rome, err := time.LoadLocation("Europe/Rome")
	require.NoError(t, err)
	checkIn := time.Date(2025, time.March, 5, 0, 0, 0, 0, rome)

	saved := &models.CleaningSchedule{ApartmentID: apartmentID, Year: 2025, Month: 3}
	schedules := &MockScheduleController{}
	schedules.On("Save", mock.Anything, owner, mock.MatchedBy(func(r scheduleController.ScheduleRequest) bool {
		return r.ApartmentID == apartmentID && r.NotifyAdmin && len(r.Bookings) == 1 &&
			r.Bookings[0].CheckIn.Equal(checkIn) &&
			r.Bookings[0].CheckOut.Equal(checkIn.AddDate(0, 0, 1)) &&
			r.Bookings[0].GuestCount == 1
	})).Return(saved, nil)

	server := newTestRouter(owner, controllers.Controllers{Schedule: schedules})
	resp, out := request(t, server, http.MethodPost, "/api/cleaning-schedule",
		`{"apartmentId":"`+apartmentID.String()+`","year":2025,"month":3,"days":[5,45],"notifyAdmin":true}`)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode, out["error"])
	assert.NotNil(t, out["schedule"])
	schedules.AssertExpectations(t)
}
