package api

import "github.com/terraincognita07/classboard/internal/models"

type registerInput struct {
	UserID   string `json:"userId" validate:"notblank,max=64"`
	Password string `json:"password" validate:"required,max=72"`
	Email    string `json:"email" validate:"notblank,max=254,email"`
	Role     string `json:"role" validate:"max=16"`
}

type loginInput struct {
	UserID   string `json:"userId" validate:"notblank"`
	Password string `json:"password" validate:"required"`
}

type resetPasswordInput struct {
	UserID string `json:"userId" validate:"notblank"`
	Email  string `json:"email" validate:"notblank,email"`
}

type changePasswordInput struct {
	UserID          string `json:"userId" validate:"notblank"`
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,max=72"`
}

type deleteAccountInput struct {
	Password string `json:"password" validate:"required"`
}

type rosterInput struct {
	TeacherIDs []string `json:"teacherIds" validate:"max=200,dive,max=64"`
}

type scheduleCreateInput struct {
	SheetName       string              `json:"sheetName" validate:"notblank"`
	Title           string              `json:"title" validate:"notblank"`
	Days            []string            `json:"days" validate:"required"`
	StartTime       string              `json:"startTime" validate:"notblank"`
	EndTime         string              `json:"endTime" validate:"notblank"`
	IntervalMinutes int                 `json:"interval"`
	TeacherCount    int                 `json:"teacherCount"`
	TeacherNames    []string            `json:"teacherNames"`
	DayDates        map[string]string   `json:"dayDates"`
	Cells           map[string]any      `json:"cells"`
	Merges          []models.MergeBlock `json:"merges"`
	ViewMode        string              `json:"viewMode"`
}

// scheduleUpdateInput keeps absent fields nil so the stored values survive.
type scheduleUpdateInput struct {
	Title           *string             `json:"title"`
	Days            []string            `json:"days"`
	StartTime       *string             `json:"startTime"`
	EndTime         *string             `json:"endTime"`
	IntervalMinutes *int                `json:"interval"`
	TeacherCount    *int                `json:"teacherCount"`
	TeacherNames    []string            `json:"teacherNames"`
	TeacherUserIDs  []string            `json:"teacherUserIds"`
	DayDates        map[string]string   `json:"dayDates"`
	Cells           map[string]any      `json:"cells"`
	Merges          []models.MergeBlock `json:"merges"`
	ViewMode        *string             `json:"viewMode"`
}

type postInput struct {
	Title   string `json:"title" validate:"notblank"`
	Content string `json:"content" validate:"notblank"`
}

type commentInput struct {
	Content string `json:"content" validate:"notblank"`
}
