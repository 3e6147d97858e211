package api

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/khanghh/ltcms/internal/content"
	"github.com/khanghh/ltcms/model"
)

type TutorialHandler struct {
	tutorials content.TutorialRepository
}

func (h *TutorialHandler) GetTutorials(ctx *fiber.Ctx) error {
	tutorials, err := h.tutorials.List(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(tutorials)
}

func (h *TutorialHandler) GetTutorial(ctx *fiber.Ctx) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return err
	}
	tutorial, err := h.tutorials.Get(ctx.Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(tutorial)
}

func (h *TutorialHandler) PostTutorial(ctx *fiber.Ctx) error {
	var req tutorialRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Title == "" {
		return fiber.NewError(fiber.StatusBadRequest, "title is required")
	}
	tutorial := model.Tutorial{
		Title:       req.Title,
		Description: req.Description,
		Icon:        req.Icon,
		Color:       req.Color,
		Topics:      req.Topics,
		Content:     req.Content,
		Version:     1,
	}
	if err := h.tutorials.Create(ctx.Context(), &tutorial); err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(tutorial)
}

// PutTutorial replaces a tutorial. The request must echo the version it was
// editing; a mismatch means someone else saved first and yields 409.
func (h *TutorialHandler) PutTutorial(ctx *fiber.Ctx) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return err
	}
	var req tutorialRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	tutorial := model.Tutorial{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		Icon:        req.Icon,
		Color:       req.Color,
		Topics:      req.Topics,
		Content:     req.Content,
		Version:     req.Version,
	}
	if err := h.tutorials.Update(ctx.Context(), &tutorial); err != nil {
		return err
	}
	return ctx.JSON(tutorial)
}

func (h *TutorialHandler) DeleteTutorial(ctx *fiber.Ctx) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return err
	}
	if err := h.tutorials.Delete(ctx.Context(), id); err != nil {
		return err
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

func parseIDParam(ctx *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(ctx.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	return uint(id), nil
}

func NewTutorialHandler(tutorials content.TutorialRepository) *TutorialHandler {
	return &TutorialHandler{tutorials}
}
