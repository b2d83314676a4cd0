package unavailabilityController

import (
	"context"
	"slices"
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
	MSG_CREATE_FORBIDDEN = "Forbidden: Only operators can create unavailability requests"
	MSG_REVIEW_FORBIDDEN = "Forbidden: Only admins can review requests"
)

type CreateRequest struct {
	Dates  []types.Day `json:"dates"`
	Reason *string     `json:"reason,omitempty"`
}

type ListQuery struct {
	OperatorID *uuid.UUID
	Status     *UnavailabilityStatus
}

type UnavailabilityController struct {
	db       services.Transactor
	requests repositories.UnavailabilityRepository
	notifier services.Notifier
	loc      *time.Location
	now      func() time.Time
	log      logger.Logger
}

type UnavailabilityControllerInterface interface {
	List(ctx context.Context, user *User, query ListQuery) ([]*UnavailabilityRequest, error)
	Create(ctx context.Context, user *User, request CreateRequest) (*UnavailabilityRequest, error)
	Review(
		ctx context.Context,
		user *User,
		requestID uuid.UUID,
		status UnavailabilityStatus,
	) (*UnavailabilityRequest, error)
	Delete(ctx context.Context, user *User, requestID uuid.UUID) error
	UnavailableOperators(ctx context.Context, user *User, day time.Time) ([]uuid.UUID, error)
}

func New(repos repositories.Repository, services services.Service) UnavailabilityControllerInterface {
	return &UnavailabilityController{
		db:       services.Transaction,
		requests: repos.Unavailability,
		notifier: services.Notification,
		loc:      services.Availability.Location(),
		now:      time.Now,
		log:      logger.New("unavailabilityController"),
	}
}

// List shows operators their own requests; admins see all of them and may
// narrow by operator.
func (uc *UnavailabilityController) List(
	ctx context.Context,
	user *User,
	query ListQuery,
) ([]*UnavailabilityRequest, error) {
	if err := policy.RequireRole(user, "", RoleAdmin, RoleOperator); err != nil {
		return nil, err
	}

	filter := repositories.UnavailabilityFilter{
		OperatorID: query.OperatorID,
		Status:     query.Status,
	}
	if user.Role == RoleOperator {
		filter.OperatorID = &user.ID
	}

	return uc.requests.List(ctx, uc.db.Read(ctx), filter)
}

func (uc *UnavailabilityController) Create(
	ctx context.Context,
	user *User,
	request CreateRequest,
) (*UnavailabilityRequest, error) {
	log := uc.log.TraceFromContext(ctx).Function("Create")

	if err := policy.RequireRole(user, MSG_CREATE_FORBIDDEN, RoleOperator); err != nil {
		return nil, err
	}

	created, err := NewUnavailabilityRequest(user.ID, types.DaysIn(request.Dates, uc.loc), request.Reason, uc.now(), uc.loc)
	if err != nil {
		return nil, types.Validation(err.Error())
	}

	err = uc.db.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		return uc.requests.Create(ctx, tx, created)
	})
	if err != nil {
		return nil, err
	}
	created.Operator = user

	log.Info("unavailability requested", "requestID", created.ID, "operatorID", user.ID, "days", len(created.Dates))

	uc.notifier.Dispatch(ctx, services.UnavailabilityRequestedIntents(
		user,
		len(created.Dates),
		uc.notifier.Admins(ctx),
	))
	return created, nil
}

func (uc *UnavailabilityController) Review(
	ctx context.Context,
	user *User,
	requestID uuid.UUID,
	status UnavailabilityStatus,
) (*UnavailabilityRequest, error) {
	if err := policy.RequireRole(user, MSG_REVIEW_FORBIDDEN, RoleAdmin); err != nil {
		return nil, err
	}
	if status != UnavailabilityApproved && status != UnavailabilityRejected {
		return nil, types.Validation(ErrInvalidReviewStatus.Error())
	}

	var reviewed *UnavailabilityRequest
	err := uc.db.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		var err error
		reviewed, err = uc.requests.GetByID(ctx, tx, requestID)
		if err != nil {
			return err
		}
		if err := reviewed.Review(status, user.ID, uc.now()); err != nil {
			return types.Validation(err.Error())
		}
		return uc.requests.Save(ctx, tx, reviewed)
	})
	if err != nil {
		return nil, err
	}

	uc.notifier.Dispatch(ctx, services.UnavailabilityReviewedIntents(
		reviewed.OperatorID,
		len(reviewed.Dates),
		reviewed.Status,
	))
	return reviewed, nil
}

// Delete withdraws a pending request. Only its operator or an admin may.
func (uc *UnavailabilityController) Delete(ctx context.Context, user *User, requestID uuid.UUID) error {
	if err := policy.Authenticated(user); err != nil {
		return err
	}

	return uc.db.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		request, err := uc.requests.GetByID(ctx, tx, requestID)
		if err != nil {
			return err
		}
		if !user.IsAdmin() && request.OperatorID != user.ID {
			return types.Forbidden("")
		}
		if !request.IsPending() {
			return types.Validation(ErrNotPendingDelete.Error())
		}
		return uc.requests.Delete(ctx, tx, request.ID)
	})
}

// UnavailableOperators lists operators with an approved request covering
// day. The result is advisory; shift creation does not consult it.
func (uc *UnavailabilityController) UnavailableOperators(
	ctx context.Context,
	user *User,
	day time.Time,
) ([]uuid.UUID, error) {
	if err := policy.RequireRole(user, "", RoleAdmin, RoleOwner); err != nil {
		return nil, err
	}

	approved := UnavailabilityApproved
	requests, err := uc.requests.List(ctx, uc.db.Read(ctx), repositories.UnavailabilityFilter{Status: &approved})
	if err != nil {
		return nil, err
	}

	ids := []uuid.UUID{}
	for _, request := range requests {
		if request.CoversDay(day, uc.loc) && !slices.Contains(ids, request.OperatorID) {
			ids = append(ids, request.OperatorID)
		}
	}
	return ids, nil
}
