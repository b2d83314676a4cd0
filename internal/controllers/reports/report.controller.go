package reportController

import (
	"bytes"
	"context"
	"strings"
	"time"
	. "topup/internal/models"
	"topup/internal/policy"
	"topup/internal/services"
	"topup/internal/types"

	logger "github.com/Bparsons0904/goLogger"
)

const (
	DATE_LAYOUT = "2006-01-02"

	MSG_INVALID_PERIOD = `Invalid period. Must be "week" or "month"`
	MSG_DATE_REQUIRED  = "Date parameter is required"
	MSG_INVALID_DATE   = "Invalid date. Use YYYY-MM-DD"
)

type WorkDaysQuery struct {
	Period string
	Date   string
}

// Export is a rendered workbook ready to be sent as a download.
type Export struct {
	Filename string
	Content  []byte
}

type workDaysReporter interface {
	OperatorWorkDays(ctx context.Context, kind services.PeriodKind, date time.Time) (services.WorkDaysReport, error)
}

type ReportController struct {
	reports workDaysReporter
	loc     *time.Location
	log     logger.Logger
}

type ReportControllerInterface interface {
	WorkDays(ctx context.Context, user *User, query WorkDaysQuery) (services.WorkDaysReport, error)
	ExportWorkDays(ctx context.Context, user *User, query WorkDaysQuery) (*Export, error)
}

func New(services services.Service) ReportControllerInterface {
	return &ReportController{
		reports: services.Report,
		loc:     services.Availability.Location(),
		log:     logger.New("reportController"),
	}
}

func (rc *ReportController) WorkDays(
	ctx context.Context,
	user *User,
	query WorkDaysQuery,
) (services.WorkDaysReport, error) {
	if err := policy.RequireRole(user, "", RoleAdmin); err != nil {
		return services.WorkDaysReport{}, err
	}

	kind := services.PeriodKind(query.Period)
	if kind != services.PeriodWeek && kind != services.PeriodMonth {
		return services.WorkDaysReport{}, types.Validation(MSG_INVALID_PERIOD)
	}

	date, err := rc.parseDate(query.Date)
	if err != nil {
		return services.WorkDaysReport{}, err
	}

	return rc.reports.OperatorWorkDays(ctx, kind, date)
}

func (rc *ReportController) ExportWorkDays(
	ctx context.Context,
	user *User,
	query WorkDaysQuery,
) (*Export, error) {
	log := rc.log.TraceFromContext(ctx).Function("ExportWorkDays")

	report, err := rc.WorkDays(ctx, user, query)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := services.WriteWorkDaysXLSX(report, &buf); err != nil {
		return nil, types.Internal("Failed to export report", log.Err("failed to write workbook", err))
	}

	return &Export{Filename: services.ReportFilename(report), Content: buf.Bytes()}, nil
}

func (rc *ReportController) parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, types.Validation(MSG_DATE_REQUIRED)
	}
	date, err := time.ParseInLocation(DATE_LAYOUT, value, rc.loc)
	if err != nil {
		return time.Time{}, types.Validation(MSG_INVALID_DATE)
	}
	return date, nil
}
