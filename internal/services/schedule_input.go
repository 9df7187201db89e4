package services

import (
	"strings"
	"time"

	"github.com/terraincognita07/classboard/internal/models"
)

const (
	maxSheetNameLength = 100
	maxTitleLength     = 200
	maxTeacherCount    = 50
	maxCellKeyLength   = 64
	clockLayout        = "15:04"
)

// ScheduleInput is a full sheet definition used on create.
type ScheduleInput struct {
	SheetName       string
	Title           string
	Days            []string
	StartTime       string
	EndTime         string
	IntervalMinutes int
	TeacherCount    int
	TeacherNames    []string
	DayDates        map[string]string
	Cells           map[string]any
	Merges          []models.MergeBlock
	ViewMode        string
}

// ScheduleUpdate carries only the fields a client sent. Nil pointers, slices
// and maps keep the stored value.
type ScheduleUpdate struct {
	Title           *string
	Days            []string
	StartTime       *string
	EndTime         *string
	IntervalMinutes *int
	TeacherCount    *int
	TeacherNames    []string
	TeacherUserIDs  []string
	DayDates        map[string]string
	Cells           map[string]any
	Merges          []models.MergeBlock
	ViewMode        *string
}

func normalizeTitleKey(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

func normalizeSheetName(raw string) (string, error) {
	sheetName := strings.TrimSpace(raw)
	if sheetName == "" {
		return "", ErrRequiredFieldsMissing
	}
	if len([]rune(sheetName)) > maxSheetNameLength || strings.ContainsAny(sheetName, "/?#") {
		return "", ErrScheduleLayoutInvalid
	}
	return sheetName, nil
}

func normalizeTitle(raw string) (string, error) {
	title := strings.TrimSpace(raw)
	if title == "" {
		return "", ErrRequiredFieldsMissing
	}
	if len([]rune(title)) > maxTitleLength {
		return "", ErrScheduleLayoutInvalid
	}
	return title, nil
}

func normalizeViewMode(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", models.ViewModeWeek:
		return models.ViewModeWeek, nil
	case models.ViewModeTeacher:
		return models.ViewModeTeacher, nil
	default:
		return "", ErrScheduleLayoutInvalid
	}
}

// validateLayout checks the grid definition of a fully merged sheet.
func validateLayout(sheet *models.Schedule) error {
	if len(sheet.Days) == 0 {
		return ErrScheduleLayoutInvalid
	}
	seenDays := make(map[string]bool, len(sheet.Days))
	for index, day := range sheet.Days {
		day = strings.TrimSpace(day)
		if day == "" || seenDays[day] {
			return ErrScheduleLayoutInvalid
		}
		seenDays[day] = true
		sheet.Days[index] = day
	}

	start, err := time.Parse(clockLayout, strings.TrimSpace(sheet.StartTime))
	if err != nil {
		return ErrScheduleLayoutInvalid
	}
	end, err := time.Parse(clockLayout, strings.TrimSpace(sheet.EndTime))
	if err != nil || !end.After(start) {
		return ErrScheduleLayoutInvalid
	}
	if sheet.IntervalMinutes <= 0 || time.Duration(sheet.IntervalMinutes)*time.Minute > end.Sub(start) {
		return ErrScheduleLayoutInvalid
	}
	sheet.StartTime = start.Format(clockLayout)
	sheet.EndTime = end.Format(clockLayout)

	if sheet.TeacherCount < 0 || sheet.TeacherCount > maxTeacherCount {
		return ErrScheduleLayoutInvalid
	}
	for key := range sheet.Cells {
		if strings.TrimSpace(key) == "" || len(key) > maxCellKeyLength {
			return ErrScheduleLayoutInvalid
		}
	}
	for _, block := range sheet.Merges {
		if block.Row < 0 || block.Col < 0 || block.RowSpan < 1 || block.ColSpan < 1 {
			return ErrScheduleLayoutInvalid
		}
	}
	return nil
}

// fitSlots pads with empty strings or truncates so len == count.
func fitSlots(values []string, count int) []string {
	fitted := make([]string, count)
	copy(fitted, values)
	return fitted
}
