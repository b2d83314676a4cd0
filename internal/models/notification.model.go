package models

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationShiftAssigned                 NotificationType = "shift_assigned"
	NotificationTimeChangeRequest             NotificationType = "time_change_request"
	NotificationTimeChangeApproved            NotificationType = "time_change_approved"
	NotificationTimeChangeRejected            NotificationType = "time_change_rejected"
	NotificationProblemReported               NotificationType = "problem_reported"
	NotificationShiftConfirmed                NotificationType = "shift_confirmed"
	NotificationTimeChangeRequestedByAdmin    NotificationType = "time_change_requested_by_admin"
	NotificationTimeChangeConfirmedByOperator NotificationType = "time_change_confirmed_by_operator"
	NotificationShiftTimeChanged              NotificationType = "shift_time_changed"
	NotificationInstructionPhotoAdded         NotificationType = "instruction_photo_added"
	NotificationCalendarUpdated               NotificationType = "calendar_updated"
	NotificationCalendarUpdatedNewDays        NotificationType = "calendar_updated_new_days"
	NotificationShiftDeleted                  NotificationType = "shift_deleted"
	NotificationUnavailabilityRequest         NotificationType = "unavailability_request"
	NotificationUnavailabilityRequestReviewed NotificationType = "unavailability_request_reviewed"
)

type Notification struct {
	BaseUUIDModel
	UserID         uuid.UUID        `gorm:"type:uuid;not null;index:idx_notification_user_created,priority:1;index:idx_notification_user_read,priority:1" json:"userId"`
	User           *User            `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Type           NotificationType `gorm:"type:text;not null"                                json:"type"`
	Title          string           `gorm:"type:text;not null"                                json:"title"`
	Message        string           `gorm:"type:text;not null"                                json:"message"`
	RelatedShiftID *uuid.UUID       `gorm:"type:uuid;index"                                   json:"relatedShiftId,omitempty"`
	Read           bool             `gorm:"not null;default:false;index:idx_notification_user_read,priority:2" json:"read"`
	ReadAt         *time.Time       `gorm:"index:idx_notification_user_read,priority:3"        json:"readAt,omitempty"`
}

func (n *Notification) MarkRead(read bool, now time.Time) {
	n.Read = read
	if read {
		n.ReadAt = &now
	} else {
		n.ReadAt = nil
	}
}
