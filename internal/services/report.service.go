package services

import (
	"context"
	"fmt"
	"io"
	"time"
	"topup/internal/models"
	"topup/internal/repositories"
	"topup/internal/types"
	"topup/internal/utils"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

type PeriodKind string

const (
	PeriodWeek  PeriodKind = "week"
	PeriodMonth PeriodKind = "month"
)

const REPORT_SHEET = "Operators"

// Period is the half-open window [Start, End) a report covers.
type Period struct {
	Kind  PeriodKind
	Start time.Time
	End   time.Time
}

// PeriodFor returns the Monday-to-Sunday week or calendar month holding date.
func PeriodFor(kind PeriodKind, date time.Time, loc *time.Location) (Period, error) {
	switch kind {
	case PeriodWeek:
		start, end := utils.WeekRange(date, loc)
		return Period{Kind: kind, Start: start, End: end}, nil
	case PeriodMonth:
		start, end := utils.MonthRange(date, loc)
		return Period{Kind: kind, Start: start, End: end}, nil
	}
	return Period{}, types.Validation(`Invalid period. Must be "week" or "month"`)
}

func (p Period) contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

type ReportOperator struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

type OperatorWorkDays struct {
	Operator                ReportOperator  `json:"operator"`
	WorkDaysCount           int             `json:"workDaysCount"`
	ShiftsCount             int             `json:"shiftsCount"`
	UnavailableDaysByReason map[string]int  `json:"unavailableDaysByReason"`
	TotalUnavailableDays    int             `json:"totalUnavailableDays"`
	TotalDaysInPeriod       int             `json:"totalDaysInPeriod"`
	AvailableDays           int             `json:"availableDays"`
	WorkedHours             decimal.Decimal `json:"workedHours"`
}

type WorkDaysReport struct {
	Period    PeriodKind         `json:"period"`
	StartDate time.Time          `json:"startDate"`
	EndDate   time.Time          `json:"endDate"`
	Report    []OperatorWorkDays `json:"report"`
}

// BuildWorkDaysReport summarises each operator's period: distinct work days,
// approved absences by reason, and hours actually worked on completed shifts.
// Cancelled shifts and absences with an unrecognised reason are not counted.
func BuildWorkDaysReport(
	period Period,
	operators []*models.User,
	shifts []*models.CleaningShift,
	requests []*models.UnavailabilityRequest,
	loc *time.Location,
) WorkDaysReport {
	totalDays := utils.DaysBetween(period.Start, period.End, loc)

	rows := make([]OperatorWorkDays, 0, len(operators))
	for _, operator := range operators {
		row := OperatorWorkDays{
			Operator: ReportOperator{ID: operator.ID, Name: operator.Name, Email: operator.Email},
			UnavailableDaysByReason: map[string]int{
				models.ReasonSickness: 0,
				models.ReasonHoliday:  0,
				models.ReasonLeave:    0,
			},
			TotalDaysInPeriod: totalDays,
			WorkedHours:       decimal.Zero,
		}

		workDays := map[time.Time]bool{}
		for _, shift := range shifts {
			if shift.CleanerID != operator.ID || shift.IsCancelled() || !period.contains(shift.ScheduledDate) {
				continue
			}
			row.ShiftsCount++
			workDays[utils.DayStart(shift.ScheduledDate, loc)] = true
			row.WorkedHours = row.WorkedHours.Add(workedHours(shift))
		}
		row.WorkDaysCount = len(workDays)

		for _, request := range requests {
			if request.OperatorID != operator.ID || request.Status != models.UnavailabilityApproved {
				continue
			}
			reason := request.ReasonOrEmpty()
			if _, known := row.UnavailableDaysByReason[reason]; !known {
				continue
			}
			for _, day := range request.Dates {
				if period.contains(day) {
					row.UnavailableDaysByReason[reason]++
					row.TotalUnavailableDays++
				}
			}
		}

		row.AvailableDays = totalDays - row.TotalUnavailableDays - row.WorkDaysCount
		row.WorkedHours = row.WorkedHours.Round(2)
		rows = append(rows, row)
	}

	return WorkDaysReport{
		Period:    period.Kind,
		StartDate: period.Start,
		EndDate:   period.End,
		Report:    rows,
	}
}

func workedHours(shift *models.CleaningShift) decimal.Decimal {
	if shift.Status != models.ShiftCompleted || shift.ActualStartTime == nil || shift.ActualEndTime == nil {
		return decimal.Zero
	}
	worked := shift.ActualEndTime.Sub(*shift.ActualStartTime)
	if worked <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(worked / time.Second)).Div(decimal.NewFromInt(3600))
}

type ReportService struct {
	db             Transactor
	users          repositories.UserRepository
	shifts         repositories.ShiftRepository
	unavailability repositories.UnavailabilityRepository
	loc            *time.Location
	log            logger.Logger
}

func NewReportService(
	db Transactor,
	repos repositories.Repository,
	loc *time.Location,
) *ReportService {
	return &ReportService{
		db:             db,
		users:          repos.User,
		shifts:         repos.Shift,
		unavailability: repos.Unavailability,
		loc:            loc,
		log:            logger.New("ReportService"),
	}
}

func (s *ReportService) OperatorWorkDays(
	ctx context.Context,
	kind PeriodKind,
	date time.Time,
) (WorkDaysReport, error) {
	log := s.log.TraceFromContext(ctx).Function("OperatorWorkDays")

	period, err := PeriodFor(kind, date, s.loc)
	if err != nil {
		return WorkDaysReport{}, err
	}

	tx := s.db.Read(ctx)
	role := models.RoleOperator
	operators, err := s.users.List(ctx, tx, &role)
	if err != nil {
		return WorkDaysReport{}, log.Err("failed to load operators", err)
	}

	shifts, err := s.shifts.List(ctx, tx, repositories.ShiftFilter{
		Statuses: []models.ShiftStatus{models.ShiftScheduled, models.ShiftInProgress, models.ShiftCompleted},
		From:     &period.Start,
		To:       &period.End,
	})
	if err != nil {
		return WorkDaysReport{}, log.Err("failed to load shifts", err, "start", period.Start)
	}

	approved := models.UnavailabilityApproved
	requests, err := s.unavailability.List(ctx, tx, repositories.UnavailabilityFilter{Status: &approved})
	if err != nil {
		return WorkDaysReport{}, log.Err("failed to load unavailability", err)
	}

	return BuildWorkDaysReport(period, operators, shifts, requests, s.loc), nil
}

// WriteWorkDaysXLSX renders report as a single-sheet workbook.
func WriteWorkDaysXLSX(report WorkDaysReport, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", REPORT_SHEET); err != nil {
		return err
	}

	header := []any{
		"Operator", "Email", "Work days", "Shifts", "Worked hours",
		models.ReasonSickness, models.ReasonHoliday, models.ReasonLeave,
		"Unavailable days", "Days in period", "Available days",
	}
	if err := f.SetSheetRow(REPORT_SHEET, "A1", &header); err != nil {
		return err
	}

	for i, row := range report.Report {
		hours, _ := row.WorkedHours.Float64()
		values := []any{
			row.Operator.Name,
			row.Operator.Email,
			row.WorkDaysCount,
			row.ShiftsCount,
			hours,
			row.UnavailableDaysByReason[models.ReasonSickness],
			row.UnavailableDaysByReason[models.ReasonHoliday],
			row.UnavailableDaysByReason[models.ReasonLeave],
			row.TotalUnavailableDays,
			row.TotalDaysInPeriod,
			row.AvailableDays,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(REPORT_SHEET, cell, &values); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(REPORT_SHEET, "A", "B", 28); err != nil {
		return err
	}

	_, err := f.WriteTo(w)
	return err
}

// ReportFilename is the download name for an exported report.
func ReportFilename(report WorkDaysReport) string {
	return fmt.Sprintf("operator-work-days-%s-%s.xlsx", report.Period, report.StartDate.Format("2006-01-02"))
}
