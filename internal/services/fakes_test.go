package services

import (
	"context"
	"time"
	"topup/internal/events"
	"topup/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

type fakeTransactor struct{}

func (fakeTransactor) Execute(ctx context.Context, fn func(context.Context, *gorm.DB) error) error {
	return fn(ctx, nil)
}

func (fakeTransactor) Read(context.Context) *gorm.DB {
	return nil
}

type mockNotificationRepository struct {
	mock.Mock
}

func (m *mockNotificationRepository) Create(ctx context.Context, tx *gorm.DB, n *models.Notification) error {
	args := m.Called(n.UserID)
	if args.Error(0) == nil {
		n.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockNotificationRepository) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Notification, error) {
	args := m.Called(id)
	n, _ := args.Get(0).(*models.Notification)
	return n, args.Error(1)
}

func (m *mockNotificationRepository) ListForUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*models.Notification, error) {
	args := m.Called(userID, limit)
	n, _ := args.Get(0).([]*models.Notification)
	return n, args.Error(1)
}

func (m *mockNotificationRepository) CountUnread(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
	args := m.Called(userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockNotificationRepository) Save(ctx context.Context, tx *gorm.DB, n *models.Notification) error {
	return m.Called(n.ID).Error(0)
}

func (m *mockNotificationRepository) DeleteReadBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error) {
	args := m.Called(cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockNotificationRepository) DeleteAll(ctx context.Context, tx *gorm.DB) (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

type mockAudience struct {
	mock.Mock
}

func (m *mockAudience) IDsByRole(ctx context.Context, tx *gorm.DB, role models.Role) ([]uuid.UUID, error) {
	args := m.Called(role)
	ids, _ := args.Get(0).([]uuid.UUID)
	return ids, args.Error(1)
}

type recordingPublisher struct {
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(channel events.Channel, event events.Event) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}
