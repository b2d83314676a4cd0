package shiftController

import (
	"context"
	"slices"
	"testing"
	"time"
	"topup/internal/models"
	"topup/internal/repositories"
	"topup/internal/services"
	"topup/internal/types"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type fakeTransactor struct{}

func (fakeTransactor) Execute(ctx context.Context, fn func(context.Context, *gorm.DB) error) error {
	return fn(ctx, nil)
}

func (fakeTransactor) Read(context.Context) *gorm.DB {
	return nil
}

// memShifts stores copies so a failed unit of work leaves nothing behind.
type memShifts struct {
	repositories.ShiftRepository
	rows       map[uuid.UUID]models.CleaningShift
	apartments *memApartments
	users      *memUsers
}

func cloneShift(shift models.CleaningShift) models.CleaningShift {
	if req := shift.PendingTimeChange(); req != nil {
		copied := *req
		shift.TimeChangeRequest = datatypes.NewJSONType(&copied)
	}
	shift.Problems = slices.Clone(shift.Problems)
	shift.Comments = slices.Clone(shift.Comments)
	shift.InstructionPhotos = slices.Clone(shift.InstructionPhotos)
	shift.Apartment = nil
	shift.Cleaner = nil
	return shift
}

func (m *memShifts) load(shift models.CleaningShift) *models.CleaningShift {
	out := cloneShift(shift)
	if apartment, ok := m.apartments.rows[out.ApartmentID]; ok {
		out.Apartment = apartment
	}
	if user, ok := m.users.rows[out.CleanerID]; ok {
		out.Cleaner = user
	}
	return &out
}

func (m *memShifts) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.CleaningShift, error) {
	shift, ok := m.rows[id]
	if !ok {
		return nil, types.NotFound("Shift not found")
	}
	return m.load(shift), nil
}

func (m *memShifts) List(ctx context.Context, tx *gorm.DB, filter repositories.ShiftFilter) ([]*models.CleaningShift, error) {
	var out []*models.CleaningShift
	for _, shift := range m.rows {
		switch {
		case filter.CleanerID != nil && shift.CleanerID != *filter.CleanerID:
		case filter.ApartmentID != nil && shift.ApartmentID != *filter.ApartmentID:
		case filter.Restricted && !slices.Contains(filter.ApartmentIDs, shift.ApartmentID):
		case len(filter.Statuses) > 0 && !slices.Contains(filter.Statuses, shift.Status):
		case filter.From != nil && shift.ScheduledDate.Before(*filter.From):
		case filter.To != nil && !shift.ScheduledDate.Before(*filter.To):
		default:
			out = append(out, m.load(shift))
		}
	}
	slices.SortFunc(out, func(a, b *models.CleaningShift) int {
		return a.ScheduledStartTime.Compare(b.ScheduledStartTime)
	})
	return out, nil
}

func (m *memShifts) onDay(day repositories.DayQuery, keep func(models.CleaningShift) bool) []*models.CleaningShift {
	var out []*models.CleaningShift
	for _, shift := range m.rows {
		if shift.IsCancelled() || !keep(shift) {
			continue
		}
		if day.Exclude != nil && shift.ID == *day.Exclude {
			continue
		}
		if shift.ScheduledDate.Before(day.From) || !shift.ScheduledDate.Before(day.To) {
			continue
		}
		out = append(out, m.load(shift))
	}
	return out
}

func (m *memShifts) ActiveForApartment(ctx context.Context, tx *gorm.DB, apartmentID uuid.UUID, day repositories.DayQuery) ([]*models.CleaningShift, error) {
	return m.onDay(day, func(s models.CleaningShift) bool { return s.ApartmentID == apartmentID }), nil
}

func (m *memShifts) ActiveForCleaner(ctx context.Context, tx *gorm.DB, cleanerID uuid.UUID, day repositories.DayQuery) ([]*models.CleaningShift, error) {
	return m.onDay(day, func(s models.CleaningShift) bool { return s.CleanerID == cleanerID }), nil
}

func (m *memShifts) InProgressForCleaner(ctx context.Context, tx *gorm.DB, cleanerID uuid.UUID) ([]*models.CleaningShift, error) {
	var out []*models.CleaningShift
	for _, shift := range m.rows {
		if shift.CleanerID == cleanerID && shift.Status == models.ShiftInProgress {
			out = append(out, m.load(shift))
		}
	}
	return out, nil
}

func (m *memShifts) Create(ctx context.Context, tx *gorm.DB, shift *models.CleaningShift) error {
	if shift.ID == uuid.Nil {
		shift.ID = uuid.New()
	}
	m.rows[shift.ID] = cloneShift(*shift)
	return nil
}

func (m *memShifts) Save(ctx context.Context, tx *gorm.DB, shift *models.CleaningShift) error {
	m.rows[shift.ID] = cloneShift(*shift)
	return nil
}

func (m *memShifts) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	delete(m.rows, id)
	return nil
}

func (m *memShifts) DeleteAll(ctx context.Context, tx *gorm.DB) (int64, error) {
	count := int64(len(m.rows))
	clear(m.rows)
	return count, nil
}

type memApartments struct {
	repositories.ApartmentRepository
	rows map[uuid.UUID]*models.Apartment
}

func (m *memApartments) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Apartment, error) {
	apartment, ok := m.rows[id]
	if !ok {
		return nil, types.NotFound("Apartment not found")
	}
	return apartment, nil
}

func (m *memApartments) IDsByOwner(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for id, apartment := range m.rows {
		if apartment.OwnerID == ownerID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

type memUsers struct {
	repositories.UserRepository
	rows map[uuid.UUID]*models.User
}

func (m *memUsers) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.User, error) {
	user, ok := m.rows[id]
	if !ok {
		return nil, types.NotFound("User not found")
	}
	return user, nil
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

func (n *recordingNotifier) reset() {
	n.intents = nil
}

func (n *recordingNotifier) kinds() []models.NotificationType {
	out := make([]models.NotificationType, 0, len(n.intents))
	for _, intent := range n.intents {
		out = append(out, intent.Type)
	}
	return out
}

func (n *recordingNotifier) recipients() []uuid.UUID {
	out := make([]uuid.UUID, 0, len(n.intents))
	for _, intent := range n.intents {
		out = append(out, intent.RecipientID)
	}
	return out
}

// world is a small in-memory deployment: one admin, one owner with two
// apartments and three operators, with the clock pinned on 2025-03-01.
type world struct {
	t          *testing.T
	loc        *time.Location
	now        time.Time
	controller *ShiftController
	shifts     *memShifts
	notifier   *recordingNotifier

	admin, owner, otherOwner, o1, o2, o3, viewer *models.User
	aptX, aptY, aptZ                             *models.Apartment
}

func newUser(role models.Role, name string) *models.User {
	u := &models.User{Role: role, Name: name, Email: name + "@topup.test"}
	u.ID = uuid.New()
	return u
}

func newApartment(name string, owner *models.User) *models.Apartment {
	a := &models.Apartment{Name: name, OwnerID: owner.ID}
	a.ID = uuid.New()
	return a
}

func newWorld(t *testing.T) *world {
	t.Helper()
	loc, err := time.LoadLocation("Europe/Rome")
	require.NoError(t, err)

	w := &world{
		t:          t,
		loc:        loc,
		now:        time.Date(2025, 3, 1, 8, 0, 0, 0, loc),
		admin:      newUser(models.RoleAdmin, "Admin"),
		owner:      newUser(models.RoleOwner, "Owner"),
		otherOwner: newUser(models.RoleOwner, "Other Owner"),
		o1:         newUser(models.RoleOperator, "O1"),
		o2:         newUser(models.RoleOperator, "O2"),
		o3:         newUser(models.RoleOperator, "O3"),
		viewer:     newUser(models.RoleViewer, "Viewer"),
	}
	w.aptX = newApartment("Apartment X", w.owner)
	w.aptY = newApartment("Apartment Y", w.owner)
	w.aptZ = newApartment("Apartment Z", w.otherOwner)

	users := &memUsers{rows: map[uuid.UUID]*models.User{}}
	for _, u := range []*models.User{w.admin, w.owner, w.otherOwner, w.o1, w.o2, w.o3, w.viewer} {
		users.rows[u.ID] = u
	}
	apartments := &memApartments{rows: map[uuid.UUID]*models.Apartment{
		w.aptX.ID: w.aptX,
		w.aptY.ID: w.aptY,
		w.aptZ.ID: w.aptZ,
	}}
	w.shifts = &memShifts{rows: map[uuid.UUID]models.CleaningShift{}, apartments: apartments, users: users}
	w.notifier = &recordingNotifier{admins: []uuid.UUID{w.admin.ID}}

	w.controller = &ShiftController{
		db:           fakeTransactor{},
		shifts:       w.shifts,
		apartments:   apartments,
		users:        users,
		availability: services.NewAvailabilityService(w.shifts, loc),
		notifier:     w.notifier,
		loc:          loc,
		now:          func() time.Time { return w.now },
		log:          logger.New("shiftController_test"),
	}
	return w
}

// at returns the wall-clock time on 2025-03-10 in the configured zone.
func (w *world) at(clock string) time.Time {
	w.t.Helper()
	parsed, err := time.ParseInLocation("2006-01-02 15:04", "2025-03-10 "+clock, w.loc)
	require.NoError(w.t, err)
	return parsed
}

func (w *world) ptr(clock string) *time.Time {
	t := w.at(clock)
	return &t
}

func (w *world) create(apartment *models.Apartment, operator *models.User, start, end string) (*models.CleaningShift, error) {
	request := CreateShiftRequest{
		ApartmentID:        apartment.ID,
		CleanerID:          operator.ID,
		ScheduledDate:      types.DayOf(w.at("00:00")),
		ScheduledStartTime: w.at(start),
	}
	if end != "" {
		request.ScheduledEndTime = w.ptr(end)
	}
	return w.controller.Create(context.Background(), w.admin, request)
}

func (w *world) mustCreate(apartment *models.Apartment, operator *models.User, start, end string) *models.CleaningShift {
	w.t.Helper()
	shift, err := w.create(apartment, operator, start, end)
	require.NoError(w.t, err)
	return shift
}

func (w *world) stored(id uuid.UUID) *models.CleaningShift {
	w.t.Helper()
	shift, err := w.shifts.GetByID(context.Background(), nil, id)
	require.NoError(w.t, err)
	return shift
}
