package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/terraincognita07/classboard/internal/models"
	"gorm.io/gorm"
)

type stubUserRepo struct {
	users     map[string]models.User
	createErr error
	updateErr error
	deleted   []string
	nextID    uint
}

func newStubUserRepo(users ...models.User) *stubUserRepo {
	stub := &stubUserRepo{users: make(map[string]models.User), nextID: 1}
	for _, user := range users {
		user.ID = stub.nextID
		stub.nextID++
		stub.users[user.UserID] = user
	}
	return stub
}

func (stub *stubUserRepo) FindByUserID(_ context.Context, userID string) (models.User, error) {
	user, ok := stub.users[userID]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (stub *stubUserRepo) ExistsByUserID(_ context.Context, userID string) (bool, error) {
	_, ok := stub.users[userID]
	return ok, nil
}

func (stub *stubUserRepo) ListByUserIDs(_ context.Context, userIDs []string) ([]models.User, error) {
	users := make([]models.User, 0, len(userIDs))
	for _, userID := range userIDs {
		if user, ok := stub.users[userID]; ok {
			users = append(users, user)
		}
	}
	return users, nil
}

func (stub *stubUserRepo) Create(_ context.Context, user *models.User) error {
	if stub.createErr != nil {
		return stub.createErr
	}
	user.ID = stub.nextID
	stub.nextID++
	stub.users[user.UserID] = *user
	return nil
}

func (stub *stubUserRepo) UpdatePassword(_ context.Context, userID string, passwordHash string) error {
	if stub.updateErr != nil {
		return stub.updateErr
	}
	user, ok := stub.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.PasswordHash = passwordHash
	stub.users[userID] = user
	return nil
}

func (stub *stubUserRepo) UpdateRoster(_ context.Context, userID string, teacherIDs []string) error {
	user, ok := stub.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.RegisteredTeacherIDs = append([]string{}, teacherIDs...)
	stub.users[userID] = user
	return nil
}

func (stub *stubUserRepo) DeleteAccountAndReferences(_ context.Context, user models.User) error {
	delete(stub.users, user.UserID)
	stub.deleted = append(stub.deleted, user.UserID)
	return nil
}

type stubScheduleRepo struct {
	sheets []models.Schedule
	nextID uint
}

func newStubScheduleRepo() *stubScheduleRepo {
	return &stubScheduleRepo{nextID: 1}
}

func (stub *stubScheduleRepo) sorted(keep func(models.Schedule) bool) []models.Schedule {
	result := make([]models.Schedule, 0)
	for _, sheet := range stub.sheets {
		if keep(sheet) {
			result = append(result, sheet)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

func (stub *stubScheduleRepo) ListByOwner(_ context.Context, ownerID string) ([]models.Schedule, error) {
	return stub.sorted(func(sheet models.Schedule) bool { return sheet.OwnerID == ownerID }), nil
}

func (stub *stubScheduleRepo) ListByTeacher(_ context.Context, teacherID string) ([]models.Schedule, error) {
	return stub.sorted(func(sheet models.Schedule) bool { return sheet.ListsTeacher(teacherID) }), nil
}

func (stub *stubScheduleRepo) ListAll(_ context.Context) ([]models.Schedule, error) {
	return stub.sorted(func(models.Schedule) bool { return true }), nil
}

func (stub *stubScheduleRepo) FindByOwnerAndSheet(_ context.Context, ownerID string, sheetName string) (models.Schedule, error) {
	for _, sheet := range stub.sheets {
		if sheet.OwnerID == ownerID && sheet.SheetName == sheetName {
			return cloneSheet(sheet), nil
		}
	}
	return models.Schedule{}, gorm.ErrRecordNotFound
}

func (stub *stubScheduleRepo) ExistsByOwnerAndSheet(ctx context.Context, ownerID string, sheetName string) (bool, error) {
	_, err := stub.FindByOwnerAndSheet(ctx, ownerID, sheetName)
	return err == nil, nil
}

func (stub *stubScheduleRepo) ExistsByOwnerAndTitleKey(_ context.Context, ownerID string, titleKey string, excludeID uint) (bool, error) {
	for _, sheet := range stub.sheets {
		if sheet.OwnerID == ownerID && sheet.TitleKey == titleKey && sheet.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (stub *stubScheduleRepo) Create(_ context.Context, sheet *models.Schedule) error {
	sheet.ID = stub.nextID
	stub.nextID++
	stub.sheets = append(stub.sheets, cloneSheet(*sheet))
	return nil
}

func (stub *stubScheduleRepo) Save(_ context.Context, sheet *models.Schedule) error {
	for index := range stub.sheets {
		if stub.sheets[index].ID == sheet.ID {
			stub.sheets[index] = cloneSheet(*sheet)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (stub *stubScheduleRepo) DeleteByOwnerAndSheet(_ context.Context, ownerID string, sheetName string) (int64, error) {
	for index, sheet := range stub.sheets {
		if sheet.OwnerID == ownerID && sheet.SheetName == sheetName {
			stub.sheets = append(stub.sheets[:index], stub.sheets[index+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func cloneSheet(sheet models.Schedule) models.Schedule {
	sheet.Days = append([]string(nil), sheet.Days...)
	sheet.TeacherNames = append([]string(nil), sheet.TeacherNames...)
	sheet.TeacherUserIDs = append([]string(nil), sheet.TeacherUserIDs...)
	return sheet
}

type stubPostRepo struct {
	posts    map[string]models.Post
	comments *stubCommentRepo
}

func newStubPostRepo(comments *stubCommentRepo) *stubPostRepo {
	return &stubPostRepo{posts: make(map[string]models.Post), comments: comments}
}

func (stub *stubPostRepo) Create(_ context.Context, post *models.Post) error {
	stub.posts[post.ID] = *post
	return nil
}

func (stub *stubPostRepo) FindByID(_ context.Context, postID string) (models.Post, error) {
	post, ok := stub.posts[postID]
	if !ok {
		return models.Post{}, gorm.ErrRecordNotFound
	}
	return post, nil
}

func (stub *stubPostRepo) IncrementViewCount(_ context.Context, postID string) (bool, error) {
	post, ok := stub.posts[postID]
	if !ok {
		return false, nil
	}
	post.ViewCount++
	stub.posts[postID] = post
	return true, nil
}

func (stub *stubPostRepo) UpdateContent(_ context.Context, postID string, title string, content string, updatedAt time.Time) error {
	post := stub.posts[postID]
	post.Title = title
	post.Content = content
	post.UpdatedAt = updatedAt
	stub.posts[postID] = post
	return nil
}

func (stub *stubPostRepo) DeleteWithComments(_ context.Context, postID string) error {
	delete(stub.posts, postID)
	for commentID, comment := range stub.comments.comments {
		if comment.PostID == postID {
			delete(stub.comments.comments, commentID)
		}
	}
	return nil
}

func (stub *stubPostRepo) newestFirst(keep func(models.Post) bool) []models.Post {
	posts := make([]models.Post, 0)
	for _, post := range stub.posts {
		if keep(post) {
			posts = append(posts, post)
		}
	}
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts
}

func (stub *stubPostRepo) matching(search string) []models.Post {
	term := strings.ToLower(search)
	return stub.newestFirst(func(post models.Post) bool {
		if post.IsNotice {
			return false
		}
		return term == "" || strings.Contains(strings.ToLower(post.Title), term) || strings.Contains(strings.ToLower(post.Content), term)
	})
}

func (stub *stubPostRepo) ListNotices(_ context.Context) ([]models.Post, error) {
	return stub.newestFirst(func(post models.Post) bool { return post.IsNotice }), nil
}

func (stub *stubPostRepo) ListNormalPage(_ context.Context, search string, offset int, limit int) ([]models.Post, error) {
	posts := stub.matching(search)
	if offset >= len(posts) {
		return []models.Post{}, nil
	}
	end := offset + limit
	if end > len(posts) {
		end = len(posts)
	}
	return posts[offset:end], nil
}

func (stub *stubPostRepo) CountNormal(_ context.Context, search string) (int64, error) {
	return int64(len(stub.matching(search))), nil
}

func (stub *stubPostRepo) LatestCreatedAtByAuthor(_ context.Context, authorID string) (time.Time, bool, error) {
	var latest time.Time
	found := false
	for _, post := range stub.posts {
		if post.AuthorID == authorID && (!found || post.CreatedAt.After(latest)) {
			latest = post.CreatedAt
			found = true
		}
	}
	return latest, found, nil
}

type stubCommentRepo struct {
	comments map[string]models.Comment
}

func newStubCommentRepo() *stubCommentRepo {
	return &stubCommentRepo{comments: make(map[string]models.Comment)}
}

func (stub *stubCommentRepo) Create(_ context.Context, comment *models.Comment) error {
	stub.comments[comment.ID] = *comment
	return nil
}

func (stub *stubCommentRepo) FindByID(_ context.Context, commentID string) (models.Comment, error) {
	comment, ok := stub.comments[commentID]
	if !ok {
		return models.Comment{}, gorm.ErrRecordNotFound
	}
	return comment, nil
}

func (stub *stubCommentRepo) ListByPost(_ context.Context, postID string) ([]models.Comment, error) {
	comments := make([]models.Comment, 0)
	for _, comment := range stub.comments {
		if comment.PostID == postID {
			comments = append(comments, comment)
		}
	}
	sort.Slice(comments, func(i, j int) bool {
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})
	return comments, nil
}

func (stub *stubCommentRepo) Delete(_ context.Context, commentID string) error {
	delete(stub.comments, commentID)
	return nil
}

func (stub *stubCommentRepo) LatestCreatedAtByAuthor(_ context.Context, authorID string) (time.Time, bool, error) {
	var latest time.Time
	found := false
	for _, comment := range stub.comments {
		if comment.AuthorID == authorID && (!found || comment.CreatedAt.After(latest)) {
			latest = comment.CreatedAt
			found = true
		}
	}
	return latest, found, nil
}

type stubMailer struct {
	sent []string
	err  error
}

func (stub *stubMailer) SendTemporaryPassword(_ context.Context, toEmail string, userID string, temporaryPassword string) error {
	if stub.err != nil {
		return stub.err
	}
	stub.sent = append(stub.sent, toEmail+"|"+userID+"|"+temporaryPassword)
	return nil
}

// testClock is a settable clock shared by services under test.
type testClock struct {
	current time.Time
}

func newTestClock() *testClock {
	return &testClock{current: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
}

func (clock *testClock) Now() time.Time {
	return clock.current
}

func (clock *testClock) Advance(step time.Duration) {
	clock.current = clock.current.Add(step)
}
