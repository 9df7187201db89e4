package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/classboard/internal/services"
)

func (handler *Handler) ListPosts(c *fiber.Ctx) error {
	page, err := handler.boardService.List(c.UserContext(), services.BoardQuery{
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("pageSize", services.DefaultBoardPageSize),
		Search:   c.Query("search"),
	})
	if err != nil {
		return handler.respondError(c, err)
	}
	return respondOK(c, fiber.StatusOK, fiber.Map{
		"posts":    page.Posts,
		"total":    page.Total,
		"page":     page.Page,
		"pageSize": page.PageSize,
	})
}

func (handler *Handler) GetPost(c *fiber.Ctx) error {
	post, err := handler.boardService.Get(c.UserContext(), pathParam(c, "postId"))
	if err != nil {
		return handler.respondError(c, err)
	}
	return respondOK(c, fiber.StatusOK, fiber.Map{"post": post})
}

func (handler *Handler) CreatePost(c *fiber.Ctx) error {
	input := postInput{}
	if err := parseInput(c, &input); err != nil {
		return handler.respondError(c, err)
	}

	post, err := handler.boardService.Create(c.UserContext(), currentActor(c), services.PostInput{
		Title:   input.Title,
		Content: input.Content,
	})
	if err != nil {
		return handler.respondError(c, err)
	}
	return respondOK(c, fiber.StatusCreated, fiber.Map{"post": post})
}

func (handler *Handler) UpdatePost(c *fiber.Ctx) error {
	input := postInput{}
	if err := parseInput(c, &input); err != nil {
		return handler.respondError(c, err)
	}

	post, err := handler.boardService.Update(c.UserContext(), currentActor(c), pathParam(c, "postId"), services.PostInput{
		Title:   input.Title,
		Content: input.Content,
	})
	if err != nil {
		return handler.respondError(c, err)
	}
	return respondOK(c, fiber.StatusOK, fiber.Map{"post": post})
}

func (handler *Handler) DeletePost(c *fiber.Ctx) error {
	if err := handler.boardService.Delete(c.UserContext(), currentActor(c), pathParam(c, "postId")); err != nil {
		return handler.respondError(c, err)
	}
	return handler.respondMessage(c, fiber.StatusOK, "messages.post_deleted")
}

func (handler *Handler) ListComments(c *fiber.Ctx) error {
	comments, err := handler.boardService.Comments(c.UserContext(), pathParam(c, "postId"))
	if err != nil {
		return handler.respondError(c, err)
	}
	return respondOK(c, fiber.StatusOK, fiber.Map{"comments": comments})
}

func (handler *Handler) CreateComment(c *fiber.Ctx) error {
	input := commentInput{}
	if err := parseInput(c, &input); err != nil {
		return handler.respondError(c, err)
	}

	comment, err := handler.boardService.CreateComment(c.UserContext(), currentActor(c), pathParam(c, "postId"), input.Content)
	if err != nil {
		return handler.respondError(c, err)
	}
	return respondOK(c, fiber.StatusCreated, fiber.Map{"comment": comment})
}

func (handler *Handler) DeleteComment(c *fiber.Ctx) error {
	if err := handler.boardService.DeleteComment(c.UserContext(), currentActor(c), pathParam(c, "commentId")); err != nil {
		return handler.respondError(c, err)
	}
	return handler.respondMessage(c, fiber.StatusOK, "messages.comment_deleted")
}
