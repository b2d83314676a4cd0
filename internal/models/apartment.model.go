package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type BedType string

const (
	BedQueen    BedType = "queen"
	BedSingle   BedType = "single"
	BedSofaBed1 BedType = "sofa_bed_1"
	BedSofaBed2 BedType = "sofa_bed_2"
)

var bedCapacity = map[BedType]int{
	BedQueen:    2,
	BedSingle:   1,
	BedSofaBed1: 1,
	BedSofaBed2: 2,
}

func (b BedType) Capacity() int {
	return bedCapacity[b]
}

type Bed struct {
	Type BedType `json:"type"`
}

type Bedroom struct {
	Beds []Bed `json:"beds"`
}

type Salon struct {
	HasSofaBed      bool `json:"hasSofaBed"`
	SofaBedCapacity int  `json:"sofaBedCapacity"`
}

type EntryPhoto struct {
	URL         string     `json:"url"`
	Description *string    `json:"description,omitempty"`
	UploadedAt  *time.Time `json:"uploadedAt,omitempty"`
}

type Apartment struct {
	BaseUUIDModel
	Name        string    `gorm:"type:text;not null;index" json:"name"`
	Address     string    `gorm:"type:text;not null"       json:"address"`
	Street      *string   `gorm:"type:text"                json:"street,omitempty"`
	City        *string   `gorm:"type:text"                json:"city,omitempty"`
	PostalCode  *string   `gorm:"type:text"                json:"postalCode,omitempty"`
	Country     *string   `gorm:"type:text"                json:"country,omitempty"`
	Latitude    *float64  `gorm:"type:double precision"    json:"latitude,omitempty"`
	Longitude   *float64  `gorm:"type:double precision"    json:"longitude,omitempty"`
	OwnerID     uuid.UUID `gorm:"type:uuid;not null;index" json:"ownerId"`
	Owner       *User     `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"owner,omitempty"`
	Description *string   `gorm:"type:text"                json:"description,omitempty"`
	MaxCapacity *int      `gorm:"type:int"                 json:"maxCapacity,omitempty"`
	Bathrooms   *int      `gorm:"type:int"                 json:"bathrooms,omitempty"`

	Salon                 datatypes.JSONType[Salon]       `gorm:"type:jsonb" json:"salon"`
	Bedrooms              datatypes.JSONSlice[Bedroom]    `gorm:"type:jsonb" json:"bedrooms"`
	CalculatedMaxCapacity int                             `gorm:"type:int"   json:"calculatedMaxCapacity"`
	CleaningTime          *int                            `gorm:"type:int"   json:"cleaningTime,omitempty"`
	HowToEnterDescription *string                         `gorm:"type:text"  json:"howToEnterDescription,omitempty"`
	HowToEnterPhotos      datatypes.JSONSlice[EntryPhoto] `gorm:"type:jsonb" json:"howToEnterPhotos"`
}

// CalculateCapacity sums the sleeping places of every bed plus the salon sofa bed.
func CalculateCapacity(bedrooms []Bedroom, salon Salon) int {
	total := 0
	for _, bedroom := range bedrooms {
		for _, bed := range bedroom.Beds {
			total += bed.Type.Capacity()
		}
	}

	if salon.HasSofaBed && salon.SofaBedCapacity > 0 {
		total += salon.SofaBedCapacity
	}

	return total
}

func (a *Apartment) BeforeSave(tx *gorm.DB) error {
	a.RecalculateCapacity()
	return nil
}

func (a *Apartment) RecalculateCapacity() {
	salon := a.Salon.Data()
	if len(a.Bedrooms) == 0 && !salon.HasSofaBed {
		return
	}

	capacity := CalculateCapacity(a.Bedrooms, salon)
	a.CalculatedMaxCapacity = capacity
	a.MaxCapacity = &capacity
}

func (a *Apartment) IsOwnedBy(userID uuid.UUID) bool {
	return a != nil && a.OwnerID == userID
}
