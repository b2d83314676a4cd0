package notificationController

import (
	"context"
	"time"
	. "topup/internal/models"
	"topup/internal/policy"
	"topup/internal/repositories"
	"topup/internal/services"
	"topup/internal/types"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	LIST_LIMIT = 50

	MSG_INVALID_IDS      = "Invalid notification IDs"
	MSG_DELETE_FORBIDDEN = "Forbidden: Only administrators can delete all notifications"
	MSG_CLEANUP_DISABLED = "Notification cleanup is not scheduled"
)

type jobTrigger interface {
	TriggerJobByName(ctx context.Context, jobName string) error
}

// ShiftDetails summarises the shift a notification points at so the inbox
// can render it without a second request.
type ShiftDetails struct {
	ApartmentName      string     `json:"apartmentName"`
	ApartmentAddress   string     `json:"apartmentAddress"`
	ScheduledDate      time.Time  `json:"scheduledDate"`
	ScheduledStartTime time.Time  `json:"scheduledStartTime"`
	ScheduledEndTime   *time.Time `json:"scheduledEndTime,omitempty"`
	Confirmed          bool       `json:"confirmed"`
}

type TimeChangeDetails struct {
	NewStartTime      *time.Time `json:"newStartTime,omitempty"`
	NewEndTime        *time.Time `json:"newEndTime,omitempty"`
	Reason            *string    `json:"reason,omitempty"`
	OperatorConfirmed bool       `json:"operatorConfirmed"`
}

type InboxEntry struct {
	*Notification
	ShiftDetails      *ShiftDetails      `json:"shiftDetails,omitempty"`
	TimeChangeDetails *TimeChangeDetails `json:"timeChangeDetails,omitempty"`
}

type Inbox struct {
	Notifications []InboxEntry `json:"notifications"`
	UnreadCount   int64        `json:"unreadCount"`
}

type MarkRequest struct {
	NotificationIDs []uuid.UUID `json:"notificationIds"`
	Read            bool        `json:"read"`
}

type NotificationController struct {
	db            services.Transactor
	notifications repositories.NotificationRepository
	shifts        repositories.ShiftRepository
	jobs          jobTrigger
	now           func() time.Time
	log           logger.Logger
}

type NotificationControllerInterface interface {
	Inbox(ctx context.Context, user *User) (*Inbox, error)
	Mark(ctx context.Context, user *User, request MarkRequest) (int, error)
	DeleteAll(ctx context.Context, user *User) (int64, error)
	RunCleanup(ctx context.Context, user *User) error
}

func New(repos repositories.Repository, services services.Service) NotificationControllerInterface {
	return &NotificationController{
		db:            services.Transaction,
		notifications: repos.Notification,
		shifts:        repos.Shift,
		jobs:          services.Scheduler,
		now:           time.Now,
		log:           logger.New("notificationController"),
	}
}

// detailed lists the notification types whose inbox entry carries a shift
// summary.
var detailed = map[NotificationType]bool{
	NotificationShiftAssigned:              true,
	NotificationTimeChangeRequestedByAdmin: true,
	NotificationProblemReported:            true,
	NotificationShiftTimeChanged:           true,
	NotificationInstructionPhotoAdded:      true,
	NotificationShiftDeleted:               true,
}

func (nc *NotificationController) Inbox(ctx context.Context, user *User) (*Inbox, error) {
	log := nc.log.TraceFromContext(ctx).Function("Inbox")

	if err := policy.Authenticated(user); err != nil {
		return nil, err
	}

	tx := nc.db.Read(ctx)
	notifications, err := nc.notifications.ListForUser(ctx, tx, user.ID, LIST_LIMIT)
	if err != nil {
		return nil, err
	}
	unread, err := nc.notifications.CountUnread(ctx, tx, user.ID)
	if err != nil {
		return nil, err
	}

	shifts := make(map[uuid.UUID]*CleaningShift)
	entries := make([]InboxEntry, 0, len(notifications))
	for _, notification := range notifications {
		entry := InboxEntry{Notification: notification}
		if notification.RelatedShiftID == nil || !detailed[notification.Type] {
			entries = append(entries, entry)
			continue
		}

		shiftID := *notification.RelatedShiftID
		shift, seen := shifts[shiftID]
		if !seen {
			shift, err = nc.shifts.GetByID(ctx, tx, shiftID)
			if err != nil && types.KindOf(err) != types.KindNotFound {
				log.Warn("failed to load related shift", "shiftID", shiftID, "error", err)
			}
			shifts[shiftID] = shift
		}
		if shift != nil {
			entry.ShiftDetails = shiftDetails(shift)
			if notification.Type == NotificationTimeChangeRequestedByAdmin {
				entry.TimeChangeDetails = timeChangeDetails(shift)
			}
		}
		entries = append(entries, entry)
	}

	return &Inbox{Notifications: entries, UnreadCount: unread}, nil
}

func shiftDetails(shift *CleaningShift) *ShiftDetails {
	details := &ShiftDetails{
		ApartmentName:      "Unknown Apartment",
		ScheduledDate:      shift.ScheduledDate,
		ScheduledStartTime: shift.ScheduledStartTime,
		ScheduledEndTime:   shift.ScheduledEndTime,
		Confirmed:          shift.ConfirmedSeen.Data().Confirmed,
	}
	if shift.Apartment != nil {
		details.ApartmentName = shift.Apartment.Name
		details.ApartmentAddress = shift.Apartment.Address
	}
	return details
}

func timeChangeDetails(shift *CleaningShift) *TimeChangeDetails {
	request := shift.TimeChangeRequest.Data()
	if request == nil {
		return nil
	}
	return &TimeChangeDetails{
		NewStartTime:      request.NewStartTime,
		NewEndTime:        request.NewEndTime,
		Reason:            request.Reason,
		OperatorConfirmed: request.OperatorConfirmed,
	}
}

// Mark sets the read flag on the principal's own notifications. IDs that are
// unknown or belong to someone else are skipped. It returns how many changed.
func (nc *NotificationController) Mark(ctx context.Context, user *User, request MarkRequest) (int, error) {
	if err := policy.Authenticated(user); err != nil {
		return 0, err
	}
	if request.NotificationIDs == nil {
		return 0, types.Validation(MSG_INVALID_IDS)
	}

	now := nc.now()
	updated := 0
	err := nc.db.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		for _, id := range request.NotificationIDs {
			notification, err := nc.notifications.GetByID(ctx, tx, id)
			if types.KindOf(err) == types.KindNotFound {
				continue
			}
			if err != nil {
				return err
			}
			if notification.UserID != user.ID {
				continue
			}

			notification.MarkRead(request.Read, now)
			if err := nc.notifications.Save(ctx, tx, notification); err != nil {
				return err
			}
			updated++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return updated, nil
}

func (nc *NotificationController) DeleteAll(ctx context.Context, user *User) (int64, error) {
	log := nc.log.TraceFromContext(ctx).Function("DeleteAll")

	if err := policy.RequireRole(user, MSG_DELETE_FORBIDDEN, RoleAdmin); err != nil {
		return 0, err
	}

	var deleted int64
	err := nc.db.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		var err error
		deleted, err = nc.notifications.DeleteAll(ctx, tx)
		return err
	})
	if err != nil {
		return 0, err
	}

	log.Info("notifications purged", "count", deleted, "userID", user.ID)
	return deleted, nil
}

// RunCleanup starts the read-notification retention sweep now instead of
// waiting for its next hourly run.
func (nc *NotificationController) RunCleanup(ctx context.Context, user *User) error {
	log := nc.log.TraceFromContext(ctx).Function("RunCleanup")

	if err := policy.RequireRole(user, MSG_DELETE_FORBIDDEN, RoleAdmin); err != nil {
		return err
	}
	if err := nc.jobs.TriggerJobByName(ctx, services.NOTIFICATION_CLEANUP_JOB); err != nil {
		return types.NotFound(MSG_CLEANUP_DISABLED)
	}

	log.Info("notification cleanup triggered", "userID", user.ID)
	return nil
}
