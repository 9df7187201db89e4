package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	ViewModeWeek    = "week"
	ViewModeTeacher = "teacher"
)

type MergeBlock struct {
	Row     int `json:"row"`
	Col     int `json:"col"`
	RowSpan int `json:"rowSpan"`
	ColSpan int `json:"colSpan"`
}

// Schedule is one timetable sheet. TeacherUserIDs is positionally aligned
// with TeacherNames and always holds TeacherCount entries; empty strings mark
// unassigned slots.
type Schedule struct {
	ID              uint              `gorm:"primaryKey" json:"-"`
	OwnerID         string            `gorm:"not null;uniqueIndex:uidx_owner_sheet;uniqueIndex:uidx_owner_title" json:"ownerId"`
	SheetName       string            `gorm:"not null;uniqueIndex:uidx_owner_sheet" json:"sheetName"`
	Title           string            `gorm:"not null" json:"title"`
	TitleKey        string            `gorm:"not null;uniqueIndex:uidx_owner_title" json:"-"`
	Days            []string          `gorm:"serializer:json" json:"days"`
	StartTime       string            `gorm:"not null" json:"startTime"`
	EndTime         string            `gorm:"not null" json:"endTime"`
	IntervalMinutes int               `gorm:"not null" json:"interval"`
	TeacherCount    int               `gorm:"not null" json:"teacherCount"`
	TeacherNames    []string          `gorm:"serializer:json" json:"teacherNames"`
	TeacherUserIDs  []string          `gorm:"serializer:json" json:"teacherUserIds"`
	DayDates        map[string]string `gorm:"serializer:json" json:"dayDates"`
	Cells           datatypes.JSONMap `json:"cells"`
	Merges          []MergeBlock      `gorm:"serializer:json" json:"merges"`
	ViewMode        string            `gorm:"not null;default:week" json:"viewMode"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}

// ListsTeacher reports whether userID occupies one of the teacher slots.
func (schedule *Schedule) ListsTeacher(userID string) bool {
	if userID == "" {
		return false
	}
	for _, assigned := range schedule.TeacherUserIDs {
		if assigned == userID {
			return true
		}
	}
	return false
}
