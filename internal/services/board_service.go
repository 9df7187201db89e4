package services

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/terraincognita07/classboard/internal/models"
	"github.com/terraincognita07/classboard/internal/security"
)

const (
	DefaultBoardPageSize = 10
	MaxBoardPageSize     = 50

	maxPostTitleLength   = 200
	maxPostContentLength = 10000
	maxCommentLength     = 2000
	maxBoardSearchLength = 100
)

type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	FindByID(ctx context.Context, postID string) (models.Post, error)
	IncrementViewCount(ctx context.Context, postID string) (bool, error)
	UpdateContent(ctx context.Context, postID string, title string, content string, updatedAt time.Time) error
	DeleteWithComments(ctx context.Context, postID string) error
	ListNotices(ctx context.Context) ([]models.Post, error)
	ListNormalPage(ctx context.Context, search string, offset int, limit int) ([]models.Post, error)
	CountNormal(ctx context.Context, search string) (int64, error)
	LatestCreatedAtByAuthor(ctx context.Context, authorID string) (time.Time, bool, error)
}

type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	FindByID(ctx context.Context, commentID string) (models.Comment, error)
	ListByPost(ctx context.Context, postID string) ([]models.Comment, error)
	Delete(ctx context.Context, commentID string) error
	LatestCreatedAtByAuthor(ctx context.Context, authorID string) (time.Time, bool, error)
}

type BoardQuery struct {
	Page     int
	PageSize int
	Search   string
}

type BoardPage struct {
	Posts    []models.Post
	Total    int64
	Page     int
	PageSize int
}

type PostInput struct {
	Title   string
	Content string
}

type BoardCooldowns struct {
	Post    time.Duration
	Comment time.Duration
}

type BoardService struct {
	posts       PostRepository
	comments    CommentRepository
	policy      *AccessPolicy
	postGate    *RateGate
	commentGate *RateGate
	now         func() time.Time
}

func NewBoardService(posts PostRepository, comments CommentRepository, policy *AccessPolicy, cooldowns BoardCooldowns, now func() time.Time) *BoardService {
	if now == nil {
		now = time.Now
	}
	return &BoardService{
		posts:       posts,
		comments:    comments,
		policy:      policy,
		postGate:    NewRateGate(RateClassPost, posts, cooldowns.Post, now),
		commentGate: NewRateGate(RateClassComment, comments, cooldowns.Comment, now),
		now:         now,
	}
}

// List returns one page of regular posts, newest first. Notices are put in
// front of the first page only and are neither searched nor paginated.
func (service *BoardService) List(ctx context.Context, query BoardQuery) (BoardPage, error) {
	page := query.Page
	if page < 1 {
		page = 1
	}
	pageSize := query.PageSize
	if pageSize < 1 {
		pageSize = DefaultBoardPageSize
	}
	if pageSize > MaxBoardPageSize {
		pageSize = MaxBoardPageSize
	}
	search := strings.TrimSpace(query.Search)
	if utf8.RuneCountInString(search) > maxBoardSearchLength {
		search = string([]rune(search)[:maxBoardSearchLength])
	}

	posts, err := service.posts.ListNormalPage(ctx, search, (page-1)*pageSize, pageSize)
	if err != nil {
		return BoardPage{}, err
	}
	total, err := service.posts.CountNormal(ctx, search)
	if err != nil {
		return BoardPage{}, err
	}

	if page == 1 {
		notices, err := service.posts.ListNotices(ctx)
		if err != nil {
			return BoardPage{}, err
		}
		posts = append(notices, posts...)
		total += int64(len(notices))
	}

	return BoardPage{Posts: posts, Total: total, Page: page, PageSize: pageSize}, nil
}

// Get returns the post and counts the read.
func (service *BoardService) Get(ctx context.Context, postID string) (models.Post, error) {
	if !isBoardID(postID) {
		return models.Post{}, ErrPostNotFound
	}
	found, err := service.posts.IncrementViewCount(ctx, postID)
	if err != nil {
		return models.Post{}, err
	}
	if !found {
		return models.Post{}, ErrPostNotFound
	}
	return service.findPost(ctx, postID)
}

func (service *BoardService) Create(ctx context.Context, actor security.Identity, input PostInput) (models.Post, error) {
	if err := service.policy.CanCreatePost(actor).Err(); err != nil {
		return models.Post{}, err
	}
	title, content, err := normalizePostInput(input)
	if err != nil {
		return models.Post{}, err
	}
	if err := service.postGate.Check(ctx, actor); err != nil {
		return models.Post{}, err
	}

	now := service.now().UTC()
	post := models.Post{
		ID:         uuid.NewString(),
		Title:      title,
		Content:    content,
		AuthorID:   actor.ActorID,
		AuthorRole: actor.Role,
		IsNotice:   actor.Role == models.RoleSuperadmin,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := service.posts.Create(ctx, &post); err != nil {
		return models.Post{}, err
	}
	return post, nil
}

func (service *BoardService) Update(ctx context.Context, actor security.Identity, postID string, input PostInput) (models.Post, error) {
	post, err := service.findPost(ctx, postID)
	if err != nil {
		return models.Post{}, err
	}
	if err := service.policy.CanUpdatePost(actor, &post).Err(); err != nil {
		return models.Post{}, err
	}
	title, content, err := normalizePostInput(input)
	if err != nil {
		return models.Post{}, err
	}

	post.Title = title
	post.Content = content
	post.UpdatedAt = service.now().UTC()
	if err := service.posts.UpdateContent(ctx, post.ID, post.Title, post.Content, post.UpdatedAt); err != nil {
		return models.Post{}, err
	}
	return post, nil
}

// Delete removes the post and all of its comments in one transaction.
func (service *BoardService) Delete(ctx context.Context, actor security.Identity, postID string) error {
	post, err := service.findPost(ctx, postID)
	if err != nil {
		return err
	}
	if err := service.policy.CanDeletePost(actor, &post).Err(); err != nil {
		return err
	}
	return service.posts.DeleteWithComments(ctx, post.ID)
}

func (service *BoardService) Comments(ctx context.Context, postID string) ([]models.Comment, error) {
	if _, err := service.findPost(ctx, postID); err != nil {
		return nil, err
	}
	return service.comments.ListByPost(ctx, postID)
}

func (service *BoardService) CreateComment(ctx context.Context, actor security.Identity, postID string, rawContent string) (models.Comment, error) {
	post, err := service.findPost(ctx, postID)
	if err != nil {
		return models.Comment{}, err
	}
	if err := service.policy.CanCommentOn(actor, &post).Err(); err != nil {
		return models.Comment{}, err
	}
	content := strings.TrimSpace(rawContent)
	if content == "" {
		return models.Comment{}, ErrRequiredFieldsMissing
	}
	if utf8.RuneCountInString(content) > maxCommentLength {
		return models.Comment{}, ErrContentTooLong
	}
	if err := service.commentGate.Check(ctx, actor); err != nil {
		return models.Comment{}, err
	}

	comment := models.Comment{
		ID:         uuid.NewString(),
		PostID:     post.ID,
		Content:    content,
		AuthorID:   actor.ActorID,
		AuthorRole: actor.Role,
		CreatedAt:  service.now().UTC(),
	}
	if err := service.comments.Create(ctx, &comment); err != nil {
		return models.Comment{}, err
	}
	return comment, nil
}

func (service *BoardService) DeleteComment(ctx context.Context, actor security.Identity, commentID string) error {
	if !isBoardID(commentID) {
		return ErrCommentNotFound
	}
	comment, err := service.comments.FindByID(ctx, commentID)
	if err != nil {
		if isRecordNotFound(err) {
			return ErrCommentNotFound
		}
		return err
	}
	if err := service.policy.CanDeleteComment(actor, &comment).Err(); err != nil {
		return err
	}
	return service.comments.Delete(ctx, comment.ID)
}

func (service *BoardService) findPost(ctx context.Context, postID string) (models.Post, error) {
	if !isBoardID(postID) {
		return models.Post{}, ErrPostNotFound
	}
	post, err := service.posts.FindByID(ctx, postID)
	if err != nil {
		if isRecordNotFound(err) {
			return models.Post{}, ErrPostNotFound
		}
		return models.Post{}, err
	}
	return post, nil
}

func normalizePostInput(input PostInput) (string, string, error) {
	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)
	if title == "" || content == "" {
		return "", "", ErrRequiredFieldsMissing
	}
	if utf8.RuneCountInString(title) > maxPostTitleLength || utf8.RuneCountInString(content) > maxPostContentLength {
		return "", "", ErrContentTooLong
	}
	return title, content, nil
}

// isBoardID reports whether raw is a canonical UUID. Posts and comments are
// only ever created with those.
func isBoardID(raw string) bool {
	parsed, err := uuid.Parse(raw)
	return err == nil && parsed.String() == raw
}
