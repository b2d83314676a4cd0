package apartmentController

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"time"
	. "topup/internal/models"
	"topup/internal/policy"
	"topup/internal/repositories"
	"topup/internal/services"
	"topup/internal/types"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	DEFAULT_COUNTRY = "Italy"

	MSG_NAME_ADDRESS_REQUIRED = "Name and address are required"
	MSG_INVALID_DETAILS       = "Invalid apartment details"
	MSG_CLEANING_TIME_ADMIN   = "Forbidden: Only admins can set cleaning time"
	MSG_VIEW_OWN              = "Forbidden: You can only view your own apartments"
	MSG_EDIT_OWN              = "Forbidden: You can only edit your own apartments"
	MSG_DELETE_OWN            = "Forbidden: You can only delete your own apartments"
)

// ApartmentRequest is shared by create and update. On update only non-nil
// fields are applied.
type ApartmentRequest struct {
	Name                  *string      `json:"name,omitempty"`
	Address               *string      `json:"address,omitempty"`
	Street                *string      `json:"street,omitempty"`
	City                  *string      `json:"city,omitempty"`
	PostalCode            *string      `json:"postalCode,omitempty"`
	Country               *string      `json:"country,omitempty"`
	Latitude              *float64     `json:"latitude,omitempty"`
	Longitude             *float64     `json:"longitude,omitempty"`
	Description           *string      `json:"description,omitempty"`
	MaxCapacity           *int         `json:"maxCapacity,omitempty"     validate:"omitempty,min=1"`
	Bathrooms             *int         `json:"bathrooms,omitempty"       validate:"omitempty,min=0"`
	Salon                 *Salon       `json:"salon,omitempty"`
	Bedrooms              []Bedroom    `json:"bedrooms,omitempty"`
	CleaningTime          *int         `json:"cleaningTime,omitempty"    validate:"omitempty,min=0"`
	OwnerID               *uuid.UUID   `json:"owner,omitempty"`
	HowToEnterDescription *string      `json:"howToEnterDescription,omitempty"`
	HowToEnterPhotos      []EntryPhoto `json:"howToEnterPhotos,omitempty"`
}

type ApartmentController struct {
	db         services.Transactor
	apartments repositories.ApartmentRepository
	shifts     repositories.ShiftRepository
	schedules  repositories.ScheduleRepository
	now        func() time.Time
	log        logger.Logger
}

type ApartmentControllerInterface interface {
	List(ctx context.Context, user *User, ownerID *uuid.UUID) ([]*Apartment, error)
	Get(ctx context.Context, user *User, apartmentID uuid.UUID) (*Apartment, error)
	Create(ctx context.Context, user *User, request ApartmentRequest) (*Apartment, error)
	Update(ctx context.Context, user *User, apartmentID uuid.UUID, request ApartmentRequest) (*Apartment, error)
	Delete(ctx context.Context, user *User, apartmentID uuid.UUID) error
}

func New(repos repositories.Repository, services services.Service) ApartmentControllerInterface {
	return &ApartmentController{
		db:         services.Transaction,
		apartments: repos.Apartment,
		shifts:     repos.Shift,
		schedules:  repos.Schedule,
		now:        time.Now,
		log:        logger.New("apartmentController"),
	}
}

// List returns owners their own apartments. Admins get every apartment,
// grouped by owner with the largest portfolios first.
func (ac *ApartmentController) List(
	ctx context.Context,
	user *User,
	ownerID *uuid.UUID,
) ([]*Apartment, error) {
	if err := policy.RequireRole(user, "", RoleAdmin, RoleOwner, RoleViewer); err != nil {
		return nil, err
	}

	if user.Role == RoleOwner {
		ownerID = &user.ID
	}

	apartments, err := ac.apartments.List(ctx, ac.db.Read(ctx), ownerID)
	if err != nil {
		return nil, err
	}

	if user.IsAdmin() && ownerID == nil {
		groupByOwner(apartments)
	}
	return apartments, nil
}

func groupByOwner(apartments []*Apartment) {
	counts := make(map[uuid.UUID]int)
	for _, apartment := range apartments {
		counts[apartment.OwnerID]++
	}

	ownerName := func(a *Apartment) string {
		if a.Owner == nil {
			return ""
		}
		return a.Owner.Name
	}

	slices.SortStableFunc(apartments, func(a, b *Apartment) int {
		return cmp.Or(
			cmp.Compare(counts[b.OwnerID], counts[a.OwnerID]),
			strings.Compare(ownerName(a), ownerName(b)),
			strings.Compare(a.OwnerID.String(), b.OwnerID.String()),
		)
	})
}

func (ac *ApartmentController) Get(
	ctx context.Context,
	user *User,
	apartmentID uuid.UUID,
) (*Apartment, error) {
	if err := policy.RequireRole(user, "", RoleAdmin, RoleOwner, RoleViewer); err != nil {
		return nil, err
	}

	apartment, err := ac.apartments.GetByID(ctx, ac.db.Read(ctx), apartmentID)
	if err != nil {
		return nil, err
	}
	if user.Role == RoleOwner && !policy.OwnsApartment(user, apartment) {
		return nil, types.Forbidden(MSG_VIEW_OWN)
	}

	return apartment, nil
}

func (ac *ApartmentController) Create(
	ctx context.Context,
	user *User,
	request ApartmentRequest,
) (*Apartment, error) {
	log := ac.log.TraceFromContext(ctx).Function("Create")

	if err := policy.RequireRole(user, "", RoleAdmin, RoleOwner); err != nil {
		return nil, err
	}
	if request.CleaningTime != nil && !user.IsAdmin() {
		return nil, types.Forbidden(MSG_CLEANING_TIME_ADMIN)
	}
	if blank(request.Name) || blank(request.Address) {
		return nil, types.Validation(MSG_NAME_ADDRESS_REQUIRED)
	}
	if err := services.Validate(request, MSG_INVALID_DETAILS); err != nil {
		return nil, err
	}

	apartment := &Apartment{OwnerID: user.ID}
	if user.IsAdmin() && request.OwnerID != nil {
		apartment.OwnerID = *request.OwnerID
	}
	country := DEFAULT_COUNTRY
	apartment.Country = &country
	ac.apply(apartment, request)

	err := ac.db.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		if err := ac.apartments.Create(ctx, tx, apartment); err != nil {
			return err
		}
		created, err := ac.apartments.GetByID(ctx, tx, apartment.ID)
		if err != nil {
			return err
		}
		apartment = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("apartment created", "apartmentID", apartment.ID, "ownerID", apartment.OwnerID)
	return apartment, nil
}

func (ac *ApartmentController) Update(
	ctx context.Context,
	user *User,
	apartmentID uuid.UUID,
	request ApartmentRequest,
) (*Apartment, error) {
	if err := policy.RequireRole(user, "", RoleAdmin, RoleOwner); err != nil {
		return nil, err
	}
	if request.CleaningTime != nil && !user.IsAdmin() {
		return nil, types.Forbidden(MSG_CLEANING_TIME_ADMIN)
	}
	if err := services.Validate(request, MSG_INVALID_DETAILS); err != nil {
		return nil, err
	}

	var apartment *Apartment
	err := ac.db.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		var err error
		apartment, err = ac.apartments.GetByID(ctx, tx, apartmentID)
		if err != nil {
			return err
		}
		if !policy.ManagesApartment(user, apartment) {
			return types.Forbidden(MSG_EDIT_OWN)
		}

		if user.IsAdmin() && request.OwnerID != nil {
			apartment.OwnerID = *request.OwnerID
			apartment.Owner = nil
		}
		ac.apply(apartment, request)
		if err := ac.apartments.Save(ctx, tx, apartment); err != nil {
			return err
		}

		apartment, err = ac.apartments.GetByID(ctx, tx, apartmentID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return apartment, nil
}

// Delete removes the apartment with its shifts and schedules.
func (ac *ApartmentController) Delete(ctx context.Context, user *User, apartmentID uuid.UUID) error {
	log := ac.log.TraceFromContext(ctx).Function("Delete")

	if err := policy.RequireRole(user, "", RoleAdmin, RoleOwner); err != nil {
		return err
	}

	err := ac.db.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		apartment, err := ac.apartments.GetByID(ctx, tx, apartmentID)
		if err != nil {
			return err
		}
		if !policy.ManagesApartment(user, apartment) {
			return types.Forbidden(MSG_DELETE_OWN)
		}

		ids := []uuid.UUID{apartment.ID}
		if err := ac.shifts.DeleteByApartments(ctx, tx, ids); err != nil {
			return err
		}
		if err := ac.schedules.DeleteByApartments(ctx, tx, ids); err != nil {
			return err
		}
		return ac.apartments.Delete(ctx, tx, apartment.ID)
	})
	if err != nil {
		return err
	}

	log.Info("apartment deleted", "apartmentID", apartmentID, "userID", user.ID)
	return nil
}

func (ac *ApartmentController) apply(apartment *Apartment, request ApartmentRequest) {
	if !blank(request.Name) {
		apartment.Name = strings.TrimSpace(*request.Name)
	}
	if !blank(request.Address) {
		apartment.Address = strings.TrimSpace(*request.Address)
	}
	setIfPresent(&apartment.Street, request.Street)
	setIfPresent(&apartment.City, request.City)
	setIfPresent(&apartment.PostalCode, request.PostalCode)
	setIfPresent(&apartment.Country, request.Country)
	setIfPresent(&apartment.Latitude, request.Latitude)
	setIfPresent(&apartment.Longitude, request.Longitude)
	setIfPresent(&apartment.Description, request.Description)
	setIfPresent(&apartment.MaxCapacity, request.MaxCapacity)
	setIfPresent(&apartment.Bathrooms, request.Bathrooms)
	setIfPresent(&apartment.CleaningTime, request.CleaningTime)
	setIfPresent(&apartment.HowToEnterDescription, request.HowToEnterDescription)

	if request.Salon != nil {
		apartment.Salon = datatypes.NewJSONType(*request.Salon)
	}
	if request.Bedrooms != nil {
		apartment.Bedrooms = request.Bedrooms
	}
	if request.HowToEnterPhotos != nil {
		now := ac.now()
		photos := make([]EntryPhoto, len(request.HowToEnterPhotos))
		for i, photo := range request.HowToEnterPhotos {
			if photo.UploadedAt == nil {
				photo.UploadedAt = &now
			}
			photos[i] = photo
		}
		apartment.HowToEnterPhotos = photos
	}

	apartment.RecalculateCapacity()
}

func setIfPresent[T any](dst **T, value *T) {
	if value != nil {
		v := *value
		*dst = &v
	}
}

func blank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}
