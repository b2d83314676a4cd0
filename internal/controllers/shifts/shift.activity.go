package shiftController

import (
	"context"
	"errors"
	. "topup/internal/models"
	"topup/internal/policy"
	"topup/internal/services"
	"topup/internal/types"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProblemRequest struct {
	Description string      `json:"description"`
	Type        ProblemType `json:"type"`
	Photos      []string    `json:"photos,omitempty"`
}

type InstructionPhotoRequest struct {
	URL         string  `json:"url"`
	Description *string `json:"description,omitempty"`
}

func (sc *ShiftController) ReportProblem(
	ctx context.Context,
	user *User,
	shiftID uuid.UUID,
	request ProblemRequest,
) (*CleaningShift, error) {
	if err := policy.RequireRole(user, "", RoleOperator); err != nil {
		return nil, err
	}

	var problem Problem
	shift, err := sc.mutate(ctx, shiftID, func(ctx context.Context, tx *gorm.DB, shift *CleaningShift) error {
		if !shift.IsAssignedTo(user.ID) {
			return types.Forbidden("")
		}
		var err error
		problem, err = shift.ReportProblem(user.ID, request.Description, request.Type, request.Photos, sc.now())
		return invalid(err)
	})
	if err != nil {
		return nil, err
	}

	ref := services.ShiftRefOf(shift)
	sc.notifier.Dispatch(ctx, services.ProblemReportedIntents(ref, problem, sc.notifier.Admins(ctx)))
	return shift, nil
}

func (sc *ShiftController) AddComment(
	ctx context.Context,
	user *User,
	shiftID uuid.UUID,
	text string,
) (*CleaningShift, error) {
	if err := policy.Authenticated(user); err != nil {
		return nil, err
	}

	var comment Comment
	shift, err := sc.mutate(ctx, shiftID, func(ctx context.Context, tx *gorm.DB, shift *CleaningShift) error {
		if err := policy.CanCommentOnShift(user, shift); err != nil {
			return err
		}
		var err error
		comment, err = shift.AddComment(user.ID, text, sc.now())
		return invalid(err)
	})
	if err != nil {
		return nil, err
	}

	sc.notifier.Dispatch(ctx, services.CommentAddedIntents(services.ShiftRefOf(shift), user, comment))
	return shift, nil
}

func (sc *ShiftController) DeleteComment(
	ctx context.Context,
	user *User,
	shiftID, commentID uuid.UUID,
) (*CleaningShift, error) {
	if err := policy.RequireRole(user, MSG_COMMENT_DELETE, RoleAdmin); err != nil {
		return nil, err
	}

	return sc.mutate(ctx, shiftID, func(ctx context.Context, tx *gorm.DB, shift *CleaningShift) error {
		err := shift.DeleteComment(commentID)
		if errors.Is(err, ErrCommentNotFound) {
			return types.NotFound(err.Error())
		}
		return err
	})
}

// AddInstructionPhoto attaches entry instructions for the operator. Owners
// may only annotate shifts on their own apartments.
func (sc *ShiftController) AddInstructionPhoto(
	ctx context.Context,
	user *User,
	shiftID uuid.UUID,
	request InstructionPhotoRequest,
) (*CleaningShift, error) {
	if err := policy.RequireRole(user, "", RoleAdmin, RoleOwner); err != nil {
		return nil, err
	}

	var photo InstructionPhoto
	shift, err := sc.mutate(ctx, shiftID, func(ctx context.Context, tx *gorm.DB, shift *CleaningShift) error {
		if !policy.ManagesApartment(user, shift.Apartment) {
			return types.Forbidden("")
		}
		var err error
		photo, err = shift.AddInstructionPhoto(user.ID, request.URL, request.Description, sc.now())
		return invalid(err)
	})
	if err != nil {
		return nil, err
	}

	sc.notifier.Dispatch(ctx, services.InstructionPhotoIntents(services.ShiftRefOf(shift), photo))
	return shift, nil
}

func (sc *ShiftController) InstructionPhotos(
	ctx context.Context,
	user *User,
	shiftID uuid.UUID,
) ([]InstructionPhoto, error) {
	shift, err := sc.Get(ctx, user, shiftID)
	if err != nil {
		return nil, err
	}
	if shift.InstructionPhotos == nil {
		return []InstructionPhoto{}, nil
	}
	return shift.InstructionPhotos, nil
}
