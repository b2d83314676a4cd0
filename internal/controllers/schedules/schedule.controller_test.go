package scheduleController

import (
	"context"
	"fmt"
	"testing"
	"time"
	. "topup/internal/models"
	"topup/internal/repositories"
	"topup/internal/services"
	"topup/internal/types"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeTransactor struct{}

func (fakeTransactor) Execute(ctx context.Context, fn func(context.Context, *gorm.DB) error) error {
	return fn(ctx, nil)
}

func (fakeTransactor) Read(context.Context) *gorm.DB {
	return nil
}

type memApartments struct {
	repositories.ApartmentRepository
	rows map[uuid.UUID]*Apartment
}

func (m *memApartments) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*Apartment, error) {
	a, ok := m.rows[id]
	if !ok {
		return nil, types.NotFound("Apartment not found")
	}
	return a, nil
}

func (m *memApartments) IDsByOwner(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for id, a := range m.rows {
		if a.OwnerID == ownerID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func key(apartmentID uuid.UUID, year, month int) string {
	return fmt.Sprintf("%s/%d/%d", apartmentID, year, month)
}

type memSchedules struct {
	repositories.ScheduleRepository
	rows map[string]CleaningSchedule
}

func (m *memSchedules) Get(
	ctx context.Context,
	tx *gorm.DB,
	apartmentID uuid.UUID,
	year, month int,
) (*CleaningSchedule, error) {
	s, ok := m.rows[key(apartmentID, year, month)]
	if !ok {
		return nil, types.NotFound("Schedule not found")
	}
	return &s, nil
}

func (m *memSchedules) List(
	ctx context.Context,
	tx *gorm.DB,
	filter repositories.ScheduleFilter,
) ([]*CleaningSchedule, error) {
	out := []*CleaningSchedule{}
	if filter.Restricted && len(filter.ApartmentIDs) == 0 {
		return out, nil
	}
	for _, s := range m.rows {
		if len(filter.ApartmentIDs) > 0 && !contains(filter.ApartmentIDs, s.ApartmentID) {
			continue
		}
		if filter.Month != nil && s.Month != *filter.Month {
			continue
		}
		out = append(out, &s)
	}
	return out, nil
}

func contains(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func (m *memSchedules) Upsert(ctx context.Context, tx *gorm.DB, s *CleaningSchedule) error {
	m.rows[key(s.ApartmentID, s.Year, s.Month)] = *s
	return nil
}

func (m *memSchedules) Delete(ctx context.Context, tx *gorm.DB, apartmentID uuid.UUID, year, month int) error {
	delete(m.rows, key(apartmentID, year, month))
	return nil
}

func (m *memSchedules) DeleteByApartments(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	for k, s := range m.rows {
		if contains(ids, s.ApartmentID) {
			delete(m.rows, k)
		}
	}
	return nil
}

type recordingNotifier struct {
	admins  []uuid.UUID
	intents []services.Intent
}

func (n *recordingNotifier) Admins(context.Context) []uuid.UUID {
	return n.admins
}

func (n *recordingNotifier) Dispatch(ctx context.Context, intents []services.Intent) int {
	n.intents = append(n.intents, intents...)
	return len(intents)
}

type fixture struct {
	controller *ScheduleController
	schedules  *memSchedules
	notifier   *recordingNotifier
	loc        *time.Location

	admin, anna, bruno, op *User
	loft, attic            *Apartment
}

func newUser(role Role, name string) *User {
	u := &User{Role: role, Name: name}
	u.ID = uuid.New()
	return u
}

func newApartment(name string, owner *User) *Apartment {
	a := &Apartment{Name: name, OwnerID: owner.ID, Owner: owner}
	a.ID = uuid.New()
	return a
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Rome")
	require.NoError(t, err)

	f := &fixture{
		loc:       loc,
		schedules: &memSchedules{rows: map[string]CleaningSchedule{}},
		admin:     newUser(RoleAdmin, "Admin"),
		anna:      newUser(RoleOwner, "Anna"),
		bruno:     newUser(RoleOwner, "Bruno"),
		op:        newUser(RoleOperator, "Op"),
	}
	f.loft = newApartment("Loft", f.anna)
	f.attic = newApartment("Attico", f.bruno)
	f.notifier = &recordingNotifier{admins: []uuid.UUID{f.admin.ID}}
	f.controller = &ScheduleController{
		db:        fakeTransactor{},
		schedules: f.schedules,
		apartments: &memApartments{rows: map[uuid.UUID]*Apartment{
			f.loft.ID:  f.loft,
			f.attic.ID: f.attic,
		}},
		notifier: f.notifier,
		loc:      loc,
		log:      logger.New("scheduleController_test"),
	}
	return f
}

func (f *fixture) at(month time.Month, day int) time.Time {
	return time.Date(2025, month, day, 0, 0, 0, 0, f.loc)
}

func (f *fixture) nights(month time.Month, days ...int) []Booking {
	bookings := make([]Booking, len(days))
	for i, day := range days {
		checkIn := f.at(month, day)
		bookings[i] = Booking{CheckIn: checkIn, CheckOut: checkIn.AddDate(0, 0, 1), GuestCount: 1}
	}
	return bookings
}

func TestSave(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	schedule, err := f.controller.Save(ctx, f.anna, ScheduleRequest{
		ApartmentID: f.loft.ID,
		Year:        2025,
		Month:       3,
		Bookings: []Booking{
			{CheckIn: f.at(time.March, 10), CheckOut: f.at(time.March, 12), GuestCount: 2},
		},
		NotifyAdmin: true,
	})
	require.NoError(t, err)
	require.NotNil(t, schedule)
	assert.Equal(t, "Loft", schedule.Apartment.Name)
	assert.Len(t, schedule.Bookings, 1)

	require.Len(t, f.notifier.intents, 1)
	intent := f.notifier.intents[0]
	assert.Equal(t, f.admin.ID, intent.RecipientID)
	assert.Equal(t, NotificationCalendarUpdatedNewDays, intent.Type)
	assert.Equal(t, "Anna added new bookings for Loft: Mar 10 - Mar 12 (2 guests) in March 2025", intent.Message)

	replaced, err := f.controller.Save(ctx, f.admin, ScheduleRequest{
		ApartmentID: f.loft.ID,
		Year:        2025,
		Month:       3,
		Bookings:    f.nights(time.March, 1, 2, 3),
		NotifyAdmin: true,
	})
	require.NoError(t, err)
	assert.Len(t, replaced.Bookings, 3)
	assert.Len(t, f.schedules.rows, 1)
	assert.Len(t, f.notifier.intents, 1, "admins do not notify themselves")
}

func TestSave_EmptyBookingsDeleteMonth(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	request := ScheduleRequest{ApartmentID: f.loft.ID, Year: 2025, Month: 4, Bookings: f.nights(time.April, 5)}

	_, err := f.controller.Save(ctx, f.anna, request)
	require.NoError(t, err)
	require.Len(t, f.schedules.rows, 1)

	request.Bookings = []Booking{}
	cleared, err := f.controller.Save(ctx, f.anna, request)
	require.NoError(t, err)
	assert.Nil(t, cleared)
	assert.Empty(t, f.schedules.rows)
}

func TestSave_Rejections(t *testing.T) {
	f := newFixture(t)
	valid := func(apartment *Apartment) ScheduleRequest {
		return ScheduleRequest{ApartmentID: apartment.ID, Year: 2025, Month: 3, Bookings: f.nights(time.March, 1)}
	}

	testCases := []struct {
		name    string
		user    *User
		request ScheduleRequest
		kind    types.ErrorKind
		message string
	}{
		{name: "operator", user: f.op, request: valid(f.loft), kind: types.KindForbidden, message: MSG_MANAGE_FORBIDDEN},
		{name: "other owner", user: f.bruno, request: valid(f.loft), kind: types.KindForbidden, message: MSG_MANAGE_OWN},
		{
			name:    "missing year",
			user:    f.anna,
			request: ScheduleRequest{ApartmentID: f.loft.ID, Month: 3, Bookings: f.nights(time.March, 1)},
			kind:    types.KindValidation,
			message: MSG_MISSING_FIELDS,
		},
		{
			name:    "month out of range",
			user:    f.anna,
			request: ScheduleRequest{ApartmentID: f.loft.ID, Year: 2025, Month: 13, Bookings: f.nights(time.March, 1)},
			kind:    types.KindValidation,
			message: MSG_INVALID_MONTH,
		},
		{
			name:    "no bookings shape",
			user:    f.anna,
			request: ScheduleRequest{ApartmentID: f.loft.ID, Year: 2025, Month: 3},
			kind:    types.KindValidation,
			message: MSG_MISSING_BOOKINGS,
		},
		{
			name:    "unknown apartment",
			user:    f.admin,
			request: ScheduleRequest{ApartmentID: uuid.New(), Year: 2025, Month: 3, Bookings: f.nights(time.March, 1)},
			kind:    types.KindNotFound,
			message: "Apartment not found",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.controller.Save(context.Background(), tc.user, tc.request)
			assert.Equal(t, tc.kind, types.KindOf(err))
			assert.EqualError(t, err, tc.message)
		})
	}
	assert.Empty(t, f.schedules.rows)
}

func TestList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, a := range []*Apartment{f.loft, f.attic} {
		_, err := f.controller.Save(ctx, f.admin, ScheduleRequest{ApartmentID: a.ID, Year: 2025, Month: 3, Bookings: f.nights(time.March, 1)})
		require.NoError(t, err)
	}

	own, err := f.controller.List(ctx, f.anna, ListQuery{})
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, f.loft.ID, own[0].ApartmentID)

	foreign, err := f.controller.List(ctx, f.anna, ListQuery{ApartmentID: &f.attic.ID})
	require.NoError(t, err)
	assert.Empty(t, foreign)

	all, err := f.controller.List(ctx, f.op, ListQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	april := 4
	none, err := f.controller.List(ctx, f.admin, ListQuery{Month: &april})
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = f.controller.List(ctx, nil, ListQuery{})
	assert.Equal(t, types.KindUnauthorized, types.KindOf(err))
}

func TestDeleteForApartment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, month := range []int{3, 4} {
		_, err := f.controller.Save(ctx, f.anna, ScheduleRequest{ApartmentID: f.loft.ID, Year: 2025, Month: month, Bookings: f.nights(time.Month(month), 1)})
		require.NoError(t, err)
	}

	err := f.controller.DeleteForApartment(ctx, f.anna, f.loft.ID)
	assert.EqualError(t, err, MSG_DELETE_FORBIDDEN)

	require.NoError(t, f.controller.DeleteForApartment(ctx, f.admin, f.loft.ID))
	assert.Empty(t, f.schedules.rows)
}
