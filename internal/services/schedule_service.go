package services

import (
	"context"
	"strings"
	"time"

	"github.com/terraincognita07/classboard/internal/models"
	"github.com/terraincognita07/classboard/internal/security"
	"gorm.io/datatypes"
)

type ScheduleRepository interface {
	ListByOwner(ctx context.Context, ownerID string) ([]models.Schedule, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.Schedule, error)
	ListAll(ctx context.Context) ([]models.Schedule, error)
	FindByOwnerAndSheet(ctx context.Context, ownerID string, sheetName string) (models.Schedule, error)
	ExistsByOwnerAndSheet(ctx context.Context, ownerID string, sheetName string) (bool, error)
	ExistsByOwnerAndTitleKey(ctx context.Context, ownerID string, titleKey string, excludeID uint) (bool, error)
	Create(ctx context.Context, sheet *models.Schedule) error
	Save(ctx context.Context, sheet *models.Schedule) error
	DeleteByOwnerAndSheet(ctx context.Context, ownerID string, sheetName string) (int64, error)
}

type ScheduleOwnerLookup interface {
	FindByUserID(ctx context.Context, userID string) (models.User, error)
}

type ScheduleService struct {
	sheets ScheduleRepository
	owners ScheduleOwnerLookup
	policy *AccessPolicy
	now    func() time.Time
}

func NewScheduleService(sheets ScheduleRepository, owners ScheduleOwnerLookup, policy *AccessPolicy, now func() time.Time) *ScheduleService {
	if now == nil {
		now = time.Now
	}
	return &ScheduleService{sheets: sheets, owners: owners, policy: policy, now: now}
}

// List returns the sheets visible to actor in creation order. ownerFilter is
// only honoured for the superadmin.
func (service *ScheduleService) List(ctx context.Context, actor security.Identity, ownerFilter string) ([]models.Schedule, error) {
	switch actor.Role {
	case models.RoleSuperadmin:
		if owner := strings.TrimSpace(ownerFilter); owner != "" {
			return service.sheets.ListByOwner(ctx, owner)
		}
		return service.sheets.ListAll(ctx)
	case models.RoleAdmin:
		return service.sheets.ListByOwner(ctx, actor.ActorID)
	case models.RoleUser:
		return service.sheets.ListByTeacher(ctx, actor.ActorID)
	default:
		return nil, deny(ReasonUnknownRole).Err()
	}
}

func (service *ScheduleService) Get(ctx context.Context, actor security.Identity, ownerID string, rawSheetName string) (models.Schedule, error) {
	sheetName := strings.TrimSpace(rawSheetName)
	ownerID = strings.TrimSpace(ownerID)

	if ownerID == "" {
		switch actor.Role {
		case models.RoleAdmin:
			ownerID = actor.ActorID
		case models.RoleUser:
			return service.findAssignedSheet(ctx, actor, sheetName)
		default:
			return models.Schedule{}, ErrOwnerRequired
		}
	}

	sheet, err := service.find(ctx, ownerID, sheetName)
	if err != nil {
		return models.Schedule{}, err
	}
	if err := service.policy.CanReadSchedule(actor, &sheet).Err(); err != nil {
		return models.Schedule{}, err
	}
	return sheet, nil
}

func (service *ScheduleService) Create(ctx context.Context, actor security.Identity, input ScheduleInput) (models.Schedule, error) {
	if err := service.policy.CanCreateSchedule(actor).Err(); err != nil {
		return models.Schedule{}, err
	}

	sheetName, err := normalizeSheetName(input.SheetName)
	if err != nil {
		return models.Schedule{}, err
	}
	title, err := normalizeTitle(input.Title)
	if err != nil {
		return models.Schedule{}, err
	}
	viewMode, err := normalizeViewMode(input.ViewMode)
	if err != nil {
		return models.Schedule{}, err
	}
	if len(input.TeacherNames) > input.TeacherCount {
		return models.Schedule{}, ErrTeacherSlotsMismatch
	}

	now := service.now().UTC()
	sheet := models.Schedule{
		OwnerID:         actor.ActorID,
		SheetName:       sheetName,
		Title:           title,
		TitleKey:        normalizeTitleKey(title),
		Days:            append([]string(nil), input.Days...),
		StartTime:       input.StartTime,
		EndTime:         input.EndTime,
		IntervalMinutes: input.IntervalMinutes,
		TeacherCount:    input.TeacherCount,
		DayDates:        input.DayDates,
		Cells:           datatypes.JSONMap(input.Cells),
		Merges:          input.Merges,
		ViewMode:        viewMode,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := validateLayout(&sheet); err != nil {
		return models.Schedule{}, err
	}
	sheet.TeacherNames = fitSlots(input.TeacherNames, sheet.TeacherCount)
	sheet.TeacherUserIDs = fitSlots(nil, sheet.TeacherCount)
	fillEmptyCollections(&sheet)

	taken, err := service.sheets.ExistsByOwnerAndSheet(ctx, sheet.OwnerID, sheet.SheetName)
	if err != nil {
		return models.Schedule{}, err
	}
	if taken {
		return models.Schedule{}, ErrSheetNameTaken
	}
	taken, err = service.sheets.ExistsByOwnerAndTitleKey(ctx, sheet.OwnerID, sheet.TitleKey, 0)
	if err != nil {
		return models.Schedule{}, err
	}
	if taken {
		return models.Schedule{}, ErrTitleTaken
	}

	if err := service.sheets.Create(ctx, &sheet); err != nil {
		return models.Schedule{}, translateScheduleConflict(err)
	}
	return sheet, nil
}

// Update applies a partial update. ownerID selects the sheet owner for the
// superadmin; admins always act on their own sheets.
func (service *ScheduleService) Update(ctx context.Context, actor security.Identity, ownerID string, rawSheetName string, input ScheduleUpdate) (models.Schedule, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		if actor.Role == models.RoleSuperadmin {
			return models.Schedule{}, ErrOwnerRequired
		}
		ownerID = actor.ActorID
	}
	if err := service.policy.CanUpdateSchedule(actor, ownerID).Err(); err != nil {
		return models.Schedule{}, err
	}

	sheet, err := service.find(ctx, ownerID, strings.TrimSpace(rawSheetName))
	if err != nil {
		return models.Schedule{}, err
	}
	previousTitleKey := sheet.TitleKey
	previousCount := sheet.TeacherCount

	if input.Title != nil {
		title, err := normalizeTitle(*input.Title)
		if err != nil {
			return models.Schedule{}, err
		}
		sheet.Title = title
		sheet.TitleKey = normalizeTitleKey(title)
	}
	if input.Days != nil {
		sheet.Days = append([]string(nil), input.Days...)
	}
	if input.StartTime != nil {
		sheet.StartTime = *input.StartTime
	}
	if input.EndTime != nil {
		sheet.EndTime = *input.EndTime
	}
	if input.IntervalMinutes != nil {
		sheet.IntervalMinutes = *input.IntervalMinutes
	}
	if input.TeacherCount != nil {
		sheet.TeacherCount = *input.TeacherCount
	}
	if input.DayDates != nil {
		sheet.DayDates = input.DayDates
	}
	if input.Cells != nil {
		sheet.Cells = datatypes.JSONMap(input.Cells)
	}
	if input.Merges != nil {
		sheet.Merges = input.Merges
	}
	if input.ViewMode != nil {
		viewMode, err := normalizeViewMode(*input.ViewMode)
		if err != nil {
			return models.Schedule{}, err
		}
		sheet.ViewMode = viewMode
	}
	if err := validateLayout(&sheet); err != nil {
		return models.Schedule{}, err
	}

	if input.TeacherNames != nil {
		if len(input.TeacherNames) > sheet.TeacherCount {
			return models.Schedule{}, ErrTeacherSlotsMismatch
		}
		sheet.TeacherNames = fitSlots(input.TeacherNames, sheet.TeacherCount)
	} else if sheet.TeacherCount != previousCount || len(sheet.TeacherNames) != sheet.TeacherCount {
		sheet.TeacherNames = fitSlots(sheet.TeacherNames, sheet.TeacherCount)
	}

	if input.TeacherUserIDs != nil {
		if len(input.TeacherUserIDs) != sheet.TeacherCount {
			return models.Schedule{}, ErrTeacherSlotsMismatch
		}
		assigned, err := service.checkAgainstRoster(ctx, ownerID, input.TeacherUserIDs)
		if err != nil {
			return models.Schedule{}, err
		}
		sheet.TeacherUserIDs = assigned
	} else if len(sheet.TeacherUserIDs) != sheet.TeacherCount {
		sheet.TeacherUserIDs = fitSlots(sheet.TeacherUserIDs, sheet.TeacherCount)
	}
	fillEmptyCollections(&sheet)

	if sheet.TitleKey != previousTitleKey {
		taken, err := service.sheets.ExistsByOwnerAndTitleKey(ctx, ownerID, sheet.TitleKey, sheet.ID)
		if err != nil {
			return models.Schedule{}, err
		}
		if taken {
			return models.Schedule{}, ErrTitleTaken
		}
	}

	sheet.UpdatedAt = service.now().UTC()
	if err := service.sheets.Save(ctx, &sheet); err != nil {
		return models.Schedule{}, translateScheduleConflict(err)
	}
	return sheet, nil
}

func (service *ScheduleService) Delete(ctx context.Context, actor security.Identity, rawSheetName string) error {
	if err := service.policy.CanDeleteSchedule(actor, actor.ActorID).Err(); err != nil {
		return err
	}
	deleted, err := service.sheets.DeleteByOwnerAndSheet(ctx, actor.ActorID, strings.TrimSpace(rawSheetName))
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrScheduleNotFound
	}
	return nil
}

func (service *ScheduleService) find(ctx context.Context, ownerID string, sheetName string) (models.Schedule, error) {
	if sheetName == "" {
		return models.Schedule{}, ErrScheduleNotFound
	}
	sheet, err := service.sheets.FindByOwnerAndSheet(ctx, ownerID, sheetName)
	if err != nil {
		if isRecordNotFound(err) {
			return models.Schedule{}, ErrScheduleNotFound
		}
		return models.Schedule{}, err
	}
	return sheet, nil
}

// findAssignedSheet resolves a sheet name for a teacher who did not name the
// owner. The earliest matching sheet wins.
func (service *ScheduleService) findAssignedSheet(ctx context.Context, actor security.Identity, sheetName string) (models.Schedule, error) {
	sheets, err := service.sheets.ListByTeacher(ctx, actor.ActorID)
	if err != nil {
		return models.Schedule{}, err
	}
	for _, sheet := range sheets {
		if sheet.SheetName == sheetName {
			return sheet, nil
		}
	}
	return models.Schedule{}, ErrScheduleNotFound
}

func (service *ScheduleService) checkAgainstRoster(ctx context.Context, ownerID string, teacherIDs []string) ([]string, error) {
	assigned := make([]string, len(teacherIDs))
	needsRoster := false
	for index, teacherID := range teacherIDs {
		assigned[index] = strings.TrimSpace(teacherID)
		if assigned[index] != "" {
			needsRoster = true
		}
	}
	if !needsRoster {
		return assigned, nil
	}

	owner, err := service.owners.FindByUserID(ctx, ownerID)
	if err != nil && !isRecordNotFound(err) {
		return nil, err
	}
	onRoster := make(map[string]bool, len(owner.RegisteredTeacherIDs))
	for _, teacherID := range owner.RegisteredTeacherIDs {
		onRoster[teacherID] = true
	}
	for _, teacherID := range assigned {
		if teacherID != "" && !onRoster[teacherID] {
			return nil, ErrTeacherNotOnRoster
		}
	}
	return assigned, nil
}

func fillEmptyCollections(sheet *models.Schedule) {
	if sheet.DayDates == nil {
		sheet.DayDates = map[string]string{}
	}
	if sheet.Cells == nil {
		sheet.Cells = datatypes.JSONMap{}
	}
	if sheet.Merges == nil {
		sheet.Merges = []models.MergeBlock{}
	}
}

func translateScheduleConflict(err error) error {
	if !isUniqueViolation(err) {
		return err
	}
	if strings.Contains(err.Error(), "title_key") {
		return ErrTitleTaken
	}
	return ErrSheetNameTaken
}
