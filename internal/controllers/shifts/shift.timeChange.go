package shiftController

import (
	"context"
	"time"
	"topup/internal/metrics"
	. "topup/internal/models"
	"topup/internal/policy"
	"topup/internal/services"
	"topup/internal/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TIME_CHANGE_REQUEST_CUTOFF = time.Hour

	MSG_TIME_CHANGE_TOO_LATE  = "Time change requests can only be sent until 1 hour before the shift starts"
	MSG_ANSWER_FORBIDDEN      = "Forbidden: You can only confirm time changes for your own shifts"
	MSG_REVIEW_FORBIDDEN      = "Forbidden: Only owners can approve/reject time change requests"
	MSG_REVIEW_NOT_OWNER      = "Forbidden: You can only review time changes for your own apartments"
	MSG_INVALID_REVIEW_STATUS = "Invalid status"
)

// TimeChangeRequestBody is a proposal. NewEndTime sent as null proposes
// removing the scheduled end.
type TimeChangeRequestBody struct {
	NewStartTime     *time.Time         `json:"newStartTime,omitempty"`
	NewEndTime       types.OptionalTime `json:"newEndTime"`
	NewApartmentID   *uuid.UUID         `json:"newApartment,omitempty"`
	NewCleanerID     *uuid.UUID         `json:"newCleaner,omitempty"`
	NewScheduledDate *types.Day         `json:"newScheduledDate,omitempty"`
	Reason           *string            `json:"reason,omitempty"`
}

func (b TimeChangeRequestBody) proposal(user *User, loc *time.Location) TimeChangeRequest {
	var newDate *time.Time
	if b.NewScheduledDate != nil {
		day := b.NewScheduledDate.In(loc)
		newDate = &day
	}
	return TimeChangeRequest{
		RequestedBy:      user.ID,
		RequesterRole:    user.Role,
		NewStartTime:     b.NewStartTime,
		NewEndTime:       b.NewEndTime.Value,
		ClearEndTime:     b.NewEndTime.Clears(),
		NewApartmentID:   b.NewApartmentID,
		NewCleanerID:     b.NewCleanerID,
		NewScheduledDate: newDate,
		Reason:           b.Reason,
	}
}

// RequestTimeChange stages a proposal on the shift, replacing any earlier
// one. Admin and owner proposals close an hour before the shift starts.
func (sc *ShiftController) RequestTimeChange(
	ctx context.Context,
	user *User,
	shiftID uuid.UUID,
	request TimeChangeRequestBody,
) (*CleaningShift, error) {
	log := sc.log.TraceFromContext(ctx).Function("RequestTimeChange")

	if err := policy.RequireRole(user, "", RoleOperator, RoleAdmin, RoleOwner); err != nil {
		return nil, err
	}

	shift, err := sc.mutate(ctx, shiftID, func(ctx context.Context, tx *gorm.DB, shift *CleaningShift) error {
		if !policy.CanRequestTimeChange(user, shift) {
			return types.Forbidden("")
		}

		now := sc.now()
		if user.Role != RoleOperator && !now.Before(shift.ScheduledStartTime.Add(-TIME_CHANGE_REQUEST_CUTOFF)) {
			return types.Validation(MSG_TIME_CHANGE_TOO_LATE)
		}

		if err := shift.StageTimeChange(request.proposal(user, sc.loc), now); err != nil {
			return invalid(err)
		}
		if _, err := shift.ProposedSlot(sc.loc); err != nil {
			return invalid(err)
		}
		return sc.checkReferences(ctx, tx, request)
	})
	if err != nil {
		return nil, err
	}

	log.Info("time change requested", "shiftID", shift.ID, "requestedBy", user.ID, "role", user.Role)

	var admins []uuid.UUID
	if user.Role == RoleOperator {
		admins = sc.notifier.Admins(ctx)
	}
	ref := services.ShiftRefOf(shift)
	sc.notifier.Dispatch(ctx, services.TimeChangeRequestedIntents(ref, shift.PendingTimeChange(), user, admins))
	return shift, nil
}

// checkReferences makes sure a proposal only points at records that exist.
func (sc *ShiftController) checkReferences(
	ctx context.Context,
	tx *gorm.DB,
	request TimeChangeRequestBody,
) error {
	if request.NewApartmentID != nil {
		if _, err := sc.apartments.GetByID(ctx, tx, *request.NewApartmentID); err != nil {
			return err
		}
	}
	if request.NewCleanerID != nil {
		if _, err := sc.users.GetByID(ctx, tx, *request.NewCleanerID); err != nil {
			return err
		}
	}
	return nil
}

// AnswerTimeChange is the operator's decision on a staged proposal. The
// current assignee may answer; when an admin or owner proposes handing the
// shift to another operator, that operator may answer too. Confirming commits every staged field once the resulting slot
// passes the availability rules; on a conflict the proposal stays pending.
func (sc *ShiftController) AnswerTimeChange(
	ctx context.Context,
	user *User,
	shiftID uuid.UUID,
	confirmed bool,
) (*CleaningShift, error) {
	log := sc.log.TraceFromContext(ctx).Function("AnswerTimeChange")

	if err := policy.RequireRole(user, "", RoleOperator); err != nil {
		return nil, err
	}

	shift, err := sc.mutate(ctx, shiftID, func(ctx context.Context, tx *gorm.DB, shift *CleaningShift) error {
		req := shift.PendingTimeChange()
		if !shift.IsAssignedTo(user.ID) && !proposesCleaner(req, user.ID) {
			return types.Forbidden(MSG_ANSWER_FORBIDDEN)
		}
		if req == nil {
			return invalid(ErrNoTimeChangeRequest)
		}
		if !req.IsPending() {
			return invalid(ErrTimeChangeNotPending)
		}

		if !confirmed {
			return invalid(shift.DeclineTimeChange(sc.now()))
		}

		slot, err := shift.ProposedSlot(sc.loc)
		if err != nil {
			return invalid(err)
		}
		if err := sc.availability.CheckSlot(ctx, tx, slot, &shift.ID); err != nil {
			return err
		}
		return invalid(shift.ConfirmTimeChange(sc.now(), sc.loc))
	})
	if err != nil {
		return nil, err
	}

	status := shift.PendingTimeChange().Status
	metrics.TimeChangeOutcome(string(status))
	log.Info("time change answered", "shiftID", shift.ID, "operatorID", user.ID, "status", status)

	ref := services.ShiftRefOf(shift)
	sc.notifier.Dispatch(
		ctx,
		services.TimeChangeAnsweredIntents(ref, user, confirmed, sc.notifier.Admins(ctx)),
	)
	return shift, nil
}

// proposesCleaner is true when an admin or owner proposal hands the shift to
// userID. Operators cannot pass a shift to a peer who then commits it.
func proposesCleaner(req *TimeChangeRequest, userID uuid.UUID) bool {
	return req != nil &&
		req.RequesterRole != RoleOperator &&
		req.NewCleanerID != nil &&
		*req.NewCleanerID == userID
}

// ReviewTimeChange is the owner's decision on an operator's request.
// Approval moves only the start and end time.
func (sc *ShiftController) ReviewTimeChange(
	ctx context.Context,
	user *User,
	shiftID uuid.UUID,
	decision TimeChangeStatus,
) (*CleaningShift, error) {
	log := sc.log.TraceFromContext(ctx).Function("ReviewTimeChange")

	if err := policy.RequireRole(user, MSG_REVIEW_FORBIDDEN, RoleOwner); err != nil {
		return nil, err
	}
	if decision != TimeChangeApproved && decision != TimeChangeRejected {
		return nil, types.Validation(MSG_INVALID_REVIEW_STATUS)
	}
	approved := decision == TimeChangeApproved

	shift, err := sc.mutate(ctx, shiftID, func(ctx context.Context, tx *gorm.DB, shift *CleaningShift) error {
		if !policy.OwnsApartment(user, shift.Apartment) {
			return types.Forbidden(MSG_REVIEW_NOT_OWNER)
		}

		req := shift.PendingTimeChange()
		if req == nil {
			return invalid(ErrNoTimeChangeRequest)
		}
		if approved && req.IsPending() {
			slot, err := shift.ApprovalSlot(sc.loc)
			if err != nil {
				return invalid(err)
			}
			if err := sc.availability.CheckSlot(ctx, tx, slot, &shift.ID); err != nil {
				return err
			}
		}
		return invalid(shift.ReviewTimeChange(user.ID, approved, sc.now(), sc.loc))
	})
	if err != nil {
		return nil, err
	}

	metrics.TimeChangeOutcome(string(decision))
	log.Info("time change reviewed", "shiftID", shift.ID, "ownerID", user.ID, "status", decision)

	sc.notifier.Dispatch(ctx, services.TimeChangeReviewedIntents(services.ShiftRefOf(shift), approved))
	return shift, nil
}
