package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/khanghh/ltcms/internal/content"
	"github.com/khanghh/ltcms/model"
)

type PageHandler struct {
	pages content.PageRepository
	posts content.PostRepository
}

// GetNavigation lists the published nav entries for the frontend menu.
func (h *PageHandler) GetNavigation(ctx *fiber.Ctx) error {
	pages, err := h.pages.ListNavigation(ctx.Context())
	if err != nil {
		return err
	}
	entries := make([]navigationEntry, 0, len(pages))
	for _, page := range pages {
		label := page.Title
		if page.NavLabel != nil && *page.NavLabel != "" {
			label = *page.NavLabel
		}
		entries = append(entries, navigationEntry{Slug: page.Slug, Label: label})
	}
	return ctx.JSON(entries)
}

func (h *PageHandler) GetPublicPage(ctx *fiber.Ctx) error {
	page, err := h.pages.GetPublishedBySlug(ctx.Context(), ctx.Params("slug"))
	if err != nil {
		return err
	}
	return ctx.JSON(page)
}

func (h *PageHandler) GetPublicPost(ctx *fiber.Ctx) error {
	post, err := h.posts.GetPublishedBySlug(ctx.Context(), ctx.Params("slug"), ctx.Params("postSlug"))
	if err != nil {
		return err
	}
	return ctx.JSON(post)
}

func (h *PageHandler) GetPages(ctx *fiber.Ctx) error {
	pages, err := h.pages.List(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(pages)
}

func (h *PageHandler) GetPage(ctx *fiber.Ctx) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return err
	}
	page, err := h.pages.Get(ctx.Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(page)
}

func (h *PageHandler) PostPage(ctx *fiber.Ctx) error {
	var req pageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Slug == "" || req.Title == "" {
		return fiber.NewError(fiber.StatusBadRequest, "slug and title are required")
	}
	page := model.SitePage{
		Slug:        req.Slug,
		Title:       req.Title,
		Description: req.Description,
		NavLabel:    req.NavLabel,
		ShowInNav:   req.ShowInNav,
		OrderIndex:  req.OrderIndex,
		IsPublished: req.IsPublished,
		Hero:        req.Hero,
		Layout:      req.Layout,
	}
	if err := h.pages.Create(ctx.Context(), &page); err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(page)
}

func (h *PageHandler) PutPage(ctx *fiber.Ctx) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return err
	}
	var req pageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	page := model.SitePage{
		ID:          id,
		Slug:        req.Slug,
		Title:       req.Title,
		Description: req.Description,
		NavLabel:    req.NavLabel,
		ShowInNav:   req.ShowInNav,
		OrderIndex:  req.OrderIndex,
		IsPublished: req.IsPublished,
		Hero:        req.Hero,
		Layout:      req.Layout,
	}
	if err := h.pages.Update(ctx.Context(), &page); err != nil {
		return err
	}
	return ctx.JSON(page)
}

func (h *PageHandler) DeletePage(ctx *fiber.Ctx) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return err
	}
	if err := h.pages.Delete(ctx.Context(), id); err != nil {
		return err
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

func (h *PageHandler) GetPagePosts(ctx *fiber.Ctx) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return err
	}
	posts, err := h.posts.ListByPage(ctx.Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(posts)
}

func (h *PageHandler) PostPagePost(ctx *fiber.Ctx) error {
	pageID, err := parseIDParam(ctx, "id")
	if err != nil {
		return err
	}
	if _, err := h.pages.Get(ctx.Context(), pageID); err != nil {
		return err
	}
	var req postRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Slug == "" || req.Title == "" {
		return fiber.NewError(fiber.StatusBadRequest, "slug and title are required")
	}
	post := model.SitePost{
		PageID:          pageID,
		Slug:            req.Slug,
		Title:           req.Title,
		Excerpt:         req.Excerpt,
		ContentMarkdown: req.ContentMarkdown,
		IsPublished:     req.IsPublished,
		AllowComments:   req.AllowComments,
		OrderIndex:      req.OrderIndex,
	}
	if post.IsPublished {
		now := time.Now()
		post.PublishedAt = &now
	}
	if err := h.posts.Create(ctx.Context(), &post); err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(post)
}

func (h *PageHandler) GetPost(ctx *fiber.Ctx) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return err
	}
	post, err := h.posts.Get(ctx.Context(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(post)
}

func (h *PageHandler) PutPost(ctx *fiber.Ctx) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return err
	}
	existing, err := h.posts.Get(ctx.Context(), id)
	if err != nil {
		return err
	}
	var req postRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	post := model.SitePost{
		ID:              id,
		Slug:            req.Slug,
		Title:           req.Title,
		Excerpt:         req.Excerpt,
		ContentMarkdown: req.ContentMarkdown,
		IsPublished:     req.IsPublished,
		AllowComments:   req.AllowComments,
		OrderIndex:      req.OrderIndex,
		PublishedAt:     existing.PublishedAt,
	}
	// First publish stamps the publication time; unpublishing keeps it so a
	// republish preserves the original date.
	if post.IsPublished && post.PublishedAt == nil {
		now := time.Now()
		post.PublishedAt = &now
	}
	if err := h.posts.Update(ctx.Context(), &post); err != nil {
		return err
	}
	return ctx.JSON(post)
}

func (h *PageHandler) DeletePost(ctx *fiber.Ctx) error {
	id, err := parseIDParam(ctx, "id")
	if err != nil {
		return err
	}
	if err := h.posts.Delete(ctx.Context(), id); err != nil {
		return err
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

func NewPageHandler(pages content.PageRepository, posts content.PostRepository) *PageHandler {
	return &PageHandler{pages: pages, posts: posts}
}
