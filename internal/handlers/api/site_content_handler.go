package api

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/khanghh/ltcms/internal/content"
	"gorm.io/datatypes"
)

type SiteContentHandler struct {
	siteContent content.SiteContentRepository
}

func (h *SiteContentHandler) GetSections(ctx *fiber.Ctx) error {
	sections, err := h.siteContent.List(ctx.Context())
	if err != nil {
		return err
	}
	// Collapse into one section → document object for the frontend.
	out := make(map[string]json.RawMessage, len(sections))
	for _, section := range sections {
		out[section.Section] = json.RawMessage(section.Content)
	}
	return ctx.JSON(out)
}

func (h *SiteContentHandler) GetSection(ctx *fiber.Ctx) error {
	section, err := h.siteContent.Get(ctx.Context(), ctx.Params("section"))
	if err != nil {
		return err
	}
	ctx.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return ctx.Send(section.Content)
}

// PutSection stores an arbitrary JSON document under the section name. The
// body must at least parse as JSON; its shape is owned by the frontend.
func (h *SiteContentHandler) PutSection(ctx *fiber.Ctx) error {
	body := ctx.Body()
	if !json.Valid(body) {
		return fiber.NewError(fiber.StatusBadRequest, "body must be valid JSON")
	}
	name := ctx.Params("section")
	if name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "section is required")
	}
	document := make(datatypes.JSON, len(body))
	copy(document, body)
	if err := h.siteContent.Upsert(ctx.Context(), name, document); err != nil {
		return err
	}
	ctx.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return ctx.Send(document)
}

func NewSiteContentHandler(siteContent content.SiteContentRepository) *SiteContentHandler {
	return &SiteContentHandler{siteContent}
}
