package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/khanghh/ltcms/internal/content"
	"github.com/khanghh/ltcms/internal/middlewares"
	"github.com/khanghh/ltcms/model"
)

const (
	commentMaxAuthorLength  = 64
	commentMaxContentLength = 4096
)

type CommentHandler struct {
	comments content.CommentRepository
	posts    content.PostRepository
}

func (h *CommentHandler) GetTutorialComments(ctx *fiber.Ctx) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return err
	}
	comments, err := h.comments.ListByTutorial(ctx.Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(comments)
}

func (h *CommentHandler) GetPostComments(ctx *fiber.Ctx) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return err
	}
	comments, err := h.comments.ListByPost(ctx.Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(comments)
}

// PostTutorialComment accepts anonymous comments on a tutorial. An
// authenticated admin session marks the comment as official.
func (h *CommentHandler) PostTutorialComment(ctx *fiber.Ctx) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return err
	}
	comment, err := h.buildComment(ctx)
	if err != nil {
		return err
	}
	comment.TutorialID = &id
	if err := h.comments.Create(ctx.Context(), comment); err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(comment)
}

func (h *CommentHandler) PostPostComment(ctx *fiber.Ctx) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return err
	}
	post, err := h.posts.Get(ctx.Context(), id)
	if err != nil {
		return err
	}
	if !post.AllowComments {
		return fiber.NewError(fiber.StatusForbidden, "comments are disabled for this post")
	}
	comment, err := h.buildComment(ctx)
	if err != nil {
		return err
	}
	comment.PostID = &id
	if err := h.comments.Create(ctx.Context(), comment); err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(comment)
}

func (h *CommentHandler) PostVote(ctx *fiber.Ctx) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return err
	}
	var req voteRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	var delta int64
	switch req.Direction {
	case "up":
		delta = 1
	case "down":
		delta = -1
	default:
		return fiber.NewError(fiber.StatusBadRequest, "direction must be \"up\" or \"down\"")
	}
	comment, err := h.comments.Vote(ctx.Context(), id, delta)
	if err != nil {
		return err
	}
	return ctx.JSON(comment)
}

func (h *CommentHandler) DeleteComment(ctx *fiber.Ctx) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return err
	}
	if err := h.comments.Delete(ctx.Context(), id); err != nil {
		return err
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

func (h *CommentHandler) buildComment(ctx *fiber.Ctx) (*model.Comment, error) {
	var req commentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	author := strings.TrimSpace(req.Author)
	body := strings.TrimSpace(req.Content)
	if author == "" || body == "" {
		return nil, fiber.NewError(fiber.StatusBadRequest, "author and content are required")
	}
	if len(author) > commentMaxAuthorLength || len(body) > commentMaxContentLength {
		return nil, fiber.NewError(fiber.StatusBadRequest, "comment too long")
	}
	comment := &model.Comment{
		Author:  author,
		Content: body,
	}
	if claims := middlewares.ClaimsFromCtx(ctx); claims != nil && claims.Role == "admin" {
		comment.Author = claims.Username()
		comment.IsAdmin = true
	}
	return comment, nil
}

func NewCommentHandler(comments content.CommentRepository, posts content.PostRepository) *CommentHandler {
	return &CommentHandler{comments: comments, posts: posts}
}
