package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Booking struct {
	CheckIn    time.Time `json:"checkIn"`
	CheckOut   time.Time `json:"checkOut"`
	GuestCount int       `json:"guestCount"`
}

func (b Booking) Valid() bool {
	return b.CheckOut.After(b.CheckIn) && b.GuestCount >= 1
}

// ScheduledDay is the legacy per-day shape, kept readable for old documents.
type ScheduledDay struct {
	Day        int `json:"day"`
	GuestCount int `json:"guestCount"`
}

// CleaningSchedule holds an apartment's bookings for one month. An empty
// schedule is never stored; the row is deleted instead.
type CleaningSchedule struct {
	BaseUUIDModel
	ApartmentID   uuid.UUID                         `gorm:"type:uuid;not null;uniqueIndex:idx_schedule_apartment_month" json:"apartmentId"`
	Apartment     *Apartment                        `gorm:"foreignKey:ApartmentID;constraint:OnDelete:CASCADE"             json:"apartment,omitempty"`
	Year          int                               `gorm:"not null;uniqueIndex:idx_schedule_apartment_month"            json:"year"`
	Month         int                               `gorm:"not null;uniqueIndex:idx_schedule_apartment_month"            json:"month"`
	Bookings      datatypes.JSONSlice[Booking]      `gorm:"type:jsonb"                                                   json:"bookings"`
	Days          datatypes.JSONSlice[int]          `gorm:"type:jsonb"                                                   json:"days,omitempty"`
	ScheduledDays datatypes.JSONSlice[ScheduledDay] `gorm:"type:jsonb"                                                   json:"scheduledDays,omitempty"`
}

func ValidMonth(month int) bool {
	return month >= 1 && month <= 12
}
