package models

import (
	"errors"
	"strings"
	"time"

	"topup/internal/utils"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	DEFAULT_SHIFT_DURATION   = 90 * time.Minute
	MAX_PROBLEM_PHOTOS       = 5
	MAX_INSTRUCTION_PHOTO_MB = 5
)

var (
	ErrNoTimeChangeRequest   = errors.New("No time change request found")
	ErrTimeChangeNotPending  = errors.New("Time change request is no longer pending")
	ErrNoChangesRequested    = errors.New("At least one field must be changed")
	ErrEndBeforeStart        = errors.New("End time must be after start time")
	ErrProblemFieldsRequired = errors.New("Description and type are required")
	ErrInvalidProblemType    = errors.New("Invalid problem type")
	ErrTooManyProblemPhotos  = errors.New("A maximum of 5 photos can be attached to a problem")
	ErrCommentTextRequired   = errors.New("Comment text is required")
	ErrCommentNotFound       = errors.New("Comment not found")
	ErrPhotoURLRequired      = errors.New("Photo URL is required")
	ErrInvalidImage          = errors.New("Invalid image format. Please upload a valid image.")
	ErrImageTooLarge         = errors.New("Image is too large. Please use a smaller image (max 5MB).")
	ErrInvalidStatusChange   = errors.New("Invalid status transition")
)

type ShiftStatus string

const (
	ShiftScheduled  ShiftStatus = "scheduled"
	ShiftInProgress ShiftStatus = "in_progress"
	ShiftCompleted  ShiftStatus = "completed"
	ShiftCancelled  ShiftStatus = "cancelled"
)

func (s ShiftStatus) Valid() bool {
	switch s {
	case ShiftScheduled, ShiftInProgress, ShiftCompleted, ShiftCancelled:
		return true
	}
	return false
}

// CanTransitionTo encodes scheduled -> in_progress -> completed, with
// cancelled reachable from scheduled or in_progress.
func (s ShiftStatus) CanTransitionTo(next ShiftStatus) bool {
	if s == next {
		return true
	}
	switch s {
	case ShiftScheduled:
		return next == ShiftInProgress || next == ShiftCancelled
	case ShiftInProgress:
		return next == ShiftCompleted || next == ShiftCancelled
	}
	return false
}

type TimeChangeStatus string

const (
	TimeChangePending           TimeChangeStatus = "pending"
	TimeChangeApproved          TimeChangeStatus = "approved"
	TimeChangeRejected          TimeChangeStatus = "rejected"
	TimeChangeOperatorConfirmed TimeChangeStatus = "operator_confirmed"
	TimeChangeOperatorRejected  TimeChangeStatus = "operator_rejected"
)

type ProblemType string

const (
	ProblemIssue         ProblemType = "issue"
	ProblemForgottenItem ProblemType = "forgotten_item"
)

func (p ProblemType) Valid() bool {
	return p == ProblemIssue || p == ProblemForgottenItem
}

type ConfirmedSeen struct {
	Confirmed   bool       `json:"confirmed"`
	ConfirmedAt *time.Time `json:"confirmedAt,omitempty"`
}

// TimeChangeRequest is the staged proposal embedded in a shift. Only one is
// active at a time; staging a new one replaces the previous.
type TimeChangeRequest struct {
	RequestedBy         uuid.UUID        `json:"requestedBy"`
	RequesterRole       Role             `json:"requesterRole"`
	RequestedAt         time.Time        `json:"requestedAt"`
	NewStartTime        *time.Time       `json:"newStartTime,omitempty"`
	NewEndTime          *time.Time       `json:"newEndTime,omitempty"`
	ClearEndTime        bool             `json:"clearEndTime,omitempty"`
	NewApartmentID      *uuid.UUID       `json:"newApartment,omitempty"`
	NewCleanerID        *uuid.UUID       `json:"newCleaner,omitempty"`
	NewScheduledDate    *time.Time       `json:"newScheduledDate,omitempty"`
	Reason              *string          `json:"reason,omitempty"`
	Status              TimeChangeStatus `json:"status"`
	ReviewedBy          *uuid.UUID       `json:"reviewedBy,omitempty"`
	ReviewedAt          *time.Time       `json:"reviewedAt,omitempty"`
	OperatorConfirmed   bool             `json:"operatorConfirmed"`
	OperatorConfirmedAt *time.Time       `json:"operatorConfirmedAt,omitempty"`
}

func (r *TimeChangeRequest) IsPending() bool {
	return r != nil && r.Status == TimeChangePending
}

func (r *TimeChangeRequest) HasChanges() bool {
	return r.NewStartTime != nil ||
		r.NewEndTime != nil ||
		r.ClearEndTime ||
		r.NewApartmentID != nil ||
		r.NewCleanerID != nil ||
		r.NewScheduledDate != nil
}

// ChangedFields names the parts of the shift the proposal touches, in the
// order they are listed to the operator.
func (r *TimeChangeRequest) ChangedFields() []string {
	var fields []string
	if r.NewStartTime != nil || r.NewEndTime != nil || r.ClearEndTime {
		fields = append(fields, "time")
	}
	if r.NewApartmentID != nil {
		fields = append(fields, "apartment")
	}
	if r.NewCleanerID != nil {
		fields = append(fields, "operator")
	}
	if r.NewScheduledDate != nil {
		fields = append(fields, "date")
	}
	return fields
}

type Problem struct {
	ID          uuid.UUID   `json:"id"`
	ReportedBy  uuid.UUID   `json:"reportedBy"`
	Description string      `json:"description"`
	Type        ProblemType `json:"type"`
	Resolved    bool        `json:"resolved"`
	Photos      []string    `json:"photos"`
	CreatedAt   time.Time   `json:"createdAt"`
}

type InstructionPhoto struct {
	ID          uuid.UUID `json:"id"`
	UploadedBy  uuid.UUID `json:"uploadedBy"`
	URL         string    `json:"url"`
	Description *string   `json:"description,omitempty"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

type Comment struct {
	ID       uuid.UUID `json:"id"`
	PostedBy uuid.UUID `json:"postedBy"`
	Text     string    `json:"text"`
	PostedAt time.Time `json:"postedAt"`
}

type CleaningShift struct {
	BaseUUIDModel
	ApartmentID        uuid.UUID   `gorm:"type:uuid;not null;index"           json:"apartmentId"`
	Apartment          *Apartment  `gorm:"foreignKey:ApartmentID;constraint:OnDelete:CASCADE" json:"apartment,omitempty"`
	CleanerID          uuid.UUID   `gorm:"type:uuid;not null;index"           json:"cleanerId"`
	Cleaner            *User       `gorm:"foreignKey:CleanerID;constraint:OnDelete:CASCADE" json:"cleaner,omitempty"`
	ScheduledDate      time.Time   `gorm:"type:timestamptz;not null;index"    json:"scheduledDate"`
	ScheduledStartTime time.Time   `gorm:"type:timestamptz;not null"          json:"scheduledStartTime"`
	ScheduledEndTime   *time.Time  `gorm:"type:timestamptz"                   json:"scheduledEndTime,omitempty"`
	ActualStartTime    *time.Time  `gorm:"type:timestamptz"                   json:"actualStartTime,omitempty"`
	ActualEndTime      *time.Time  `gorm:"type:timestamptz"                   json:"actualEndTime,omitempty"`
	Status             ShiftStatus `gorm:"type:text;not null;default:'scheduled';index" json:"status"`
	CreatedByID        uuid.UUID   `gorm:"type:uuid;not null"                 json:"createdBy"`
	Notes              *string     `gorm:"type:text"                          json:"notes,omitempty"`
	GuestCount         *int        `gorm:"type:int"                           json:"guestCount,omitempty"`

	ConfirmedSeen     datatypes.JSONType[ConfirmedSeen]      `gorm:"type:jsonb" json:"confirmedSeen"`
	TimeChangeRequest datatypes.JSONType[*TimeChangeRequest] `gorm:"type:jsonb" json:"timeChangeRequest"`
	Problems          datatypes.JSONSlice[Problem]           `gorm:"type:jsonb" json:"problems"`
	InstructionPhotos datatypes.JSONSlice[InstructionPhoto]  `gorm:"type:jsonb" json:"instructionPhotos"`
	Comments          datatypes.JSONSlice[Comment]           `gorm:"type:jsonb" json:"comments"`
}

// ShiftSlot is the part of a shift the availability rules look at.
type ShiftSlot struct {
	ApartmentID uuid.UUID
	CleanerID   uuid.UUID
	Date        time.Time
	Start       time.Time
	End         *time.Time
}

func (s ShiftSlot) EffectiveEnd() time.Time {
	if s.End != nil {
		return *s.End
	}
	return s.Start.Add(DEFAULT_SHIFT_DURATION)
}

func (s ShiftSlot) Validate() error {
	if s.End != nil && !s.End.After(s.Start) {
		return ErrEndBeforeStart
	}
	return nil
}

// NewShift builds a scheduled, unconfirmed shift anchored on the calendar day
// of date. Start and end keep their wall-clock time on that day.
func NewShift(
	apartmentID, cleanerID, createdBy uuid.UUID,
	date, start time.Time,
	end *time.Time,
	loc *time.Location,
) *CleaningShift {
	shift := &CleaningShift{
		ApartmentID: apartmentID,
		CleanerID:   cleanerID,
		CreatedByID: createdBy,
		Status:      ShiftScheduled,
	}
	shift.applySlot(anchorSlot(ShiftSlot{
		ApartmentID: apartmentID,
		CleanerID:   cleanerID,
		Date:        date,
		Start:       start,
		End:         end,
	}, loc))
	return shift
}

func anchorSlot(slot ShiftSlot, loc *time.Location) ShiftSlot {
	slot.Date = utils.DayStart(slot.Date, loc)
	slot.Start = utils.AtClock(slot.Date, slot.Start, loc)
	if slot.End != nil {
		end := utils.AtClock(slot.Date, *slot.End, loc)
		slot.End = &end
	}
	return slot
}

func (s *CleaningShift) Slot() ShiftSlot {
	return ShiftSlot{
		ApartmentID: s.ApartmentID,
		CleanerID:   s.CleanerID,
		Date:        s.ScheduledDate,
		Start:       s.ScheduledStartTime,
		End:         s.ScheduledEndTime,
	}
}

func (s *CleaningShift) EffectiveEnd() time.Time {
	return s.Slot().EffectiveEnd()
}

func (s *CleaningShift) IsAssignedTo(userID uuid.UUID) bool {
	return s.CleanerID == userID
}

func (s *CleaningShift) IsCancelled() bool {
	return s.Status == ShiftCancelled
}

func (s *CleaningShift) Confirmation() ConfirmedSeen {
	return s.ConfirmedSeen.Data()
}

// PendingTimeChange returns the staged request, or nil when none exists.
func (s *CleaningShift) PendingTimeChange() *TimeChangeRequest {
	return s.TimeChangeRequest.Data()
}

// ConfirmSeen marks the assignment as acknowledged. Confirming twice keeps
// the first timestamp.
func (s *CleaningShift) ConfirmSeen(now time.Time) {
	current := s.Confirmation()
	if current.Confirmed {
		return
	}
	s.ConfirmedSeen = datatypes.NewJSONType(ConfirmedSeen{Confirmed: true, ConfirmedAt: &now})
}

func (s *CleaningShift) resetConfirmation() {
	s.ConfirmedSeen = datatypes.NewJSONType(ConfirmedSeen{})
}

// StageTimeChange replaces any existing request with req as a pending
// proposal. A proposal moving the shift to another operator drops the
// current acknowledgement.
func (s *CleaningShift) StageTimeChange(req TimeChangeRequest, now time.Time) error {
	if !req.HasChanges() {
		return ErrNoChangesRequested
	}

	req.Status = TimeChangePending
	req.RequestedAt = now
	req.OperatorConfirmed = false
	req.OperatorConfirmedAt = nil
	req.ReviewedBy = nil
	req.ReviewedAt = nil
	if req.NewEndTime != nil {
		req.ClearEndTime = false
	}

	if req.NewCleanerID != nil && *req.NewCleanerID != s.CleanerID {
		s.resetConfirmation()
	}

	s.TimeChangeRequest = datatypes.NewJSONType(&req)
	return nil
}

// ProposedSlot is where the shift would sit if every staged field were
// committed.
func (s *CleaningShift) ProposedSlot(loc *time.Location) (ShiftSlot, error) {
	req := s.PendingTimeChange()
	if req == nil {
		return ShiftSlot{}, ErrNoTimeChangeRequest
	}

	slot := s.Slot()
	if req.NewApartmentID != nil {
		slot.ApartmentID = *req.NewApartmentID
	}
	if req.NewCleanerID != nil {
		slot.CleanerID = *req.NewCleanerID
	}
	if req.NewScheduledDate != nil {
		slot.Date = *req.NewScheduledDate
	}
	if req.NewStartTime != nil {
		slot.Start = *req.NewStartTime
	}
	switch {
	case req.NewEndTime != nil:
		slot.End = req.NewEndTime
	case req.ClearEndTime:
		slot.End = nil
	}

	return s.finishSlot(slot, req, loc)
}

// finishSlot anchors the slot on its day. A start moved without a new end
// keeps the shift's current duration.
func (s *CleaningShift) finishSlot(
	slot ShiftSlot,
	req *TimeChangeRequest,
	loc *time.Location,
) (ShiftSlot, error) {
	slot = anchorSlot(slot, loc)
	if req.NewStartTime != nil && req.NewEndTime == nil && !req.ClearEndTime &&
		s.ScheduledEndTime != nil {
		end := slot.Start.Add(s.ScheduledEndTime.Sub(s.ScheduledStartTime))
		slot.End = &end
	}
	return slot, slot.Validate()
}

// ApprovalSlot is the result of an owner approval, which only moves the
// start and end time.
func (s *CleaningShift) ApprovalSlot(loc *time.Location) (ShiftSlot, error) {
	req := s.PendingTimeChange()
	if req == nil {
		return ShiftSlot{}, ErrNoTimeChangeRequest
	}

	slot := s.Slot()
	if req.NewStartTime == nil {
		return slot, nil
	}

	slot.Start = *req.NewStartTime
	if req.NewEndTime != nil {
		slot.End = req.NewEndTime
	}
	return s.finishSlot(slot, req, loc)
}

// ConfirmTimeChange is the operator accepting a staged proposal: every staged
// field is committed.
func (s *CleaningShift) ConfirmTimeChange(now time.Time, loc *time.Location) error {
	req := s.PendingTimeChange()
	if req == nil {
		return ErrNoTimeChangeRequest
	}
	if !req.IsPending() {
		return ErrTimeChangeNotPending
	}

	slot, err := s.ProposedSlot(loc)
	if err != nil {
		return err
	}

	req.OperatorConfirmed = true
	req.OperatorConfirmedAt = &now
	req.Status = TimeChangeOperatorConfirmed
	s.TimeChangeRequest = datatypes.NewJSONType(req)

	s.applySlot(slot)
	return nil
}

func (s *CleaningShift) DeclineTimeChange(now time.Time) error {
	req := s.PendingTimeChange()
	if req == nil {
		return ErrNoTimeChangeRequest
	}
	if !req.IsPending() {
		return ErrTimeChangeNotPending
	}

	req.Status = TimeChangeOperatorRejected
	s.TimeChangeRequest = datatypes.NewJSONType(req)
	return nil
}

// ReviewTimeChange records the owner's decision; approval commits the
// proposed start and end time only.
func (s *CleaningShift) ReviewTimeChange(
	reviewer uuid.UUID,
	approved bool,
	now time.Time,
	loc *time.Location,
) error {
	req := s.PendingTimeChange()
	if req == nil {
		return ErrNoTimeChangeRequest
	}
	if !req.IsPending() {
		return ErrTimeChangeNotPending
	}

	if approved {
		slot, err := s.ApprovalSlot(loc)
		if err != nil {
			return err
		}
		s.applySlot(slot)
		req.Status = TimeChangeApproved
	} else {
		req.Status = TimeChangeRejected
	}

	req.ReviewedBy = &reviewer
	req.ReviewedAt = &now
	s.TimeChangeRequest = datatypes.NewJSONType(req)
	return nil
}

// Reschedule applies a direct edit, re-anchoring times on the slot's day.
func (s *CleaningShift) Reschedule(slot ShiftSlot, loc *time.Location) error {
	slot = anchorSlot(slot, loc)
	if err := slot.Validate(); err != nil {
		return err
	}
	s.applySlot(slot)
	return nil
}

func (s *CleaningShift) applySlot(slot ShiftSlot) {
	if s.CleanerID != slot.CleanerID {
		s.resetConfirmation()
	}
	s.ApartmentID = slot.ApartmentID
	s.CleanerID = slot.CleanerID
	s.ScheduledDate = slot.Date
	s.ScheduledStartTime = slot.Start
	s.ScheduledEndTime = slot.End
}

func (s *CleaningShift) TransitionTo(next ShiftStatus) error {
	if !next.Valid() || !s.Status.CanTransitionTo(next) {
		return ErrInvalidStatusChange
	}
	s.Status = next
	return nil
}

func (s *CleaningShift) ReportProblem(
	reporter uuid.UUID,
	description string,
	problemType ProblemType,
	photos []string,
	now time.Time,
) (Problem, error) {
	description = strings.TrimSpace(description)
	if description == "" || problemType == "" {
		return Problem{}, ErrProblemFieldsRequired
	}
	if !problemType.Valid() {
		return Problem{}, ErrInvalidProblemType
	}
	if len(photos) > MAX_PROBLEM_PHOTOS {
		return Problem{}, ErrTooManyProblemPhotos
	}
	if photos == nil {
		photos = []string{}
	}

	problem := Problem{
		ID:          uuid.New(),
		ReportedBy:  reporter,
		Description: description,
		Type:        problemType,
		Photos:      photos,
		CreatedAt:   now,
	}
	s.Problems = append(s.Problems, problem)
	return problem, nil
}

func (s *CleaningShift) AddComment(author uuid.UUID, text string, now time.Time) (Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Comment{}, ErrCommentTextRequired
	}

	comment := Comment{
		ID:       uuid.New(),
		PostedBy: author,
		Text:     text,
		PostedAt: now,
	}
	s.Comments = append(s.Comments, comment)
	return comment, nil
}

func (s *CleaningShift) DeleteComment(commentID uuid.UUID) error {
	for i, comment := range s.Comments {
		if comment.ID == commentID {
			s.Comments = append(s.Comments[:i], s.Comments[i+1:]...)
			return nil
		}
	}
	return ErrCommentNotFound
}

func (s *CleaningShift) AddInstructionPhoto(
	uploader uuid.UUID,
	url string,
	description *string,
	now time.Time,
) (InstructionPhoto, error) {
	if url == "" {
		return InstructionPhoto{}, ErrPhotoURLRequired
	}
	if !strings.HasPrefix(url, "data:image/") {
		return InstructionPhoto{}, ErrInvalidImage
	}
	if len(url) > MAX_INSTRUCTION_PHOTO_MB*1024*1024 {
		return InstructionPhoto{}, ErrImageTooLarge
	}

	photo := InstructionPhoto{
		ID:          uuid.New(),
		UploadedBy:  uploader,
		URL:         url,
		Description: description,
		UploadedAt:  now,
	}
	s.InstructionPhotos = append(s.InstructionPhotos, photo)
	return photo, nil
}
