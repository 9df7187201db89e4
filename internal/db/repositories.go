package db

import "gorm.io/gorm"

type Repositories struct {
	Users     *UserRepository
	Schedules *ScheduleRepository
	Posts     *PostRepository
	Comments  *CommentRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Users:     NewUserRepository(database),
		Schedules: NewScheduleRepository(database),
		Posts:     NewPostRepository(database),
		Comments:  NewCommentRepository(database),
	}
}

// jsonArrayContains matches rows whose JSON array column holds value.
func jsonArrayContains(column string) string {
	return "EXISTS (SELECT 1 FROM json_each(" + column + ") WHERE json_each.value = ?)"
}
