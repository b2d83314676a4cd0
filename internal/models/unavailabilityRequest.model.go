package models

import (
	"errors"
	"time"

	"topup/internal/utils"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

var (
	ErrNoUnavailableDates   = errors.New("At least one date is required")
	ErrPastUnavailableDates = errors.New("Cannot request unavailability for past dates")
	ErrAlreadyReviewed      = errors.New("Request has already been reviewed")
	ErrInvalidReviewStatus  = errors.New(`Invalid status. Must be "approved" or "rejected"`)
	ErrNotPendingDelete     = errors.New("Only pending requests can be deleted")
)

type UnavailabilityStatus string

const (
	UnavailabilityPending  UnavailabilityStatus = "pending"
	UnavailabilityApproved UnavailabilityStatus = "approved"
	UnavailabilityRejected UnavailabilityStatus = "rejected"
)

// Reasons the reports break unavailable days down by.
const (
	ReasonSickness = "Malattia"
	ReasonHoliday  = "Ferie"
	ReasonLeave    = "Permesso"
)

var UnavailabilityReasons = []string{ReasonSickness, ReasonHoliday, ReasonLeave}

type UnavailabilityRequest struct {
	BaseUUIDModel
	OperatorID uuid.UUID                      `gorm:"type:uuid;not null;index"            json:"operatorId"`
	Operator   *User                          `gorm:"foreignKey:OperatorID;constraint:OnDelete:CASCADE" json:"operator,omitempty"`
	Dates      datatypes.JSONSlice[time.Time] `gorm:"type:jsonb;not null"                 json:"dates"`
	Reason     *string                        `gorm:"type:text"                           json:"reason,omitempty"`
	Status     UnavailabilityStatus           `gorm:"type:text;not null;default:'pending';index" json:"status"`
	ReviewedBy *uuid.UUID                     `gorm:"type:uuid"                           json:"reviewedBy,omitempty"`
	ReviewedAt *time.Time                     `gorm:"type:timestamptz"                    json:"reviewedAt,omitempty"`
}

func (r *UnavailabilityRequest) IsPending() bool {
	return r.Status == UnavailabilityPending
}

func (r *UnavailabilityRequest) ReasonOrEmpty() string {
	if r.Reason == nil {
		return ""
	}
	return *r.Reason
}

// NewUnavailabilityRequest builds a pending request. Every date must fall on
// or after today in loc; one past date rejects the whole request.
func NewUnavailabilityRequest(
	operatorID uuid.UUID,
	dates []time.Time,
	reason *string,
	now time.Time,
	loc *time.Location,
) (*UnavailabilityRequest, error) {
	if len(dates) == 0 {
		return nil, ErrNoUnavailableDates
	}

	today := utils.DayStart(now, loc)
	days := make([]time.Time, 0, len(dates))
	for _, date := range dates {
		day := utils.DayStart(date, loc)
		if day.Before(today) {
			return nil, ErrPastUnavailableDates
		}
		days = append(days, day)
	}

	if reason != nil && *reason == "" {
		reason = nil
	}

	return &UnavailabilityRequest{
		OperatorID: operatorID,
		Dates:      days,
		Reason:     reason,
		Status:     UnavailabilityPending,
	}, nil
}

// Review settles a pending request. A request is reviewed at most once.
func (r *UnavailabilityRequest) Review(
	status UnavailabilityStatus,
	reviewer uuid.UUID,
	now time.Time,
) error {
	if status != UnavailabilityApproved && status != UnavailabilityRejected {
		return ErrInvalidReviewStatus
	}
	if !r.IsPending() {
		return ErrAlreadyReviewed
	}

	r.Status = status
	r.ReviewedBy = &reviewer
	r.ReviewedAt = &now
	return nil
}

// CoversDay reports whether any requested date falls on the calendar day of
// day in loc.
func (r *UnavailabilityRequest) CoversDay(day time.Time, loc *time.Location) bool {
	target := utils.DayStart(day, loc)
	for _, date := range r.Dates {
		if utils.DayStart(date, loc).Equal(target) {
			return true
		}
	}
	return false
}
