package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/khanghh/ltcms/internal/content"
	"github.com/khanghh/ltcms/internal/middlewares"
	"github.com/khanghh/ltcms/model"
	"gorm.io/datatypes"
)

type memSiteContent struct {
	sections map[string]datatypes.JSON
}

func (s *memSiteContent) List(ctx context.Context) ([]model.SiteContent, error) {
	out := make([]model.SiteContent, 0, len(s.sections))
	for name, doc := range s.sections {
		out = append(out, model.SiteContent{Section: name, Content: doc})
	}
	return out, nil
}

func (s *memSiteContent) Get(ctx context.Context, section string) (*model.SiteContent, error) {
	doc, ok := s.sections[section]
	if !ok {
		return nil, content.ErrNotFound
	}
	return &model.SiteContent{Section: section, Content: doc}, nil
}

func (s *memSiteContent) Upsert(ctx context.Context, section string, doc datatypes.JSON) error {
	s.sections[section] = doc
	return nil
}

type memComments struct {
	byID map[uint]*model.Comment
}

func (s *memComments) ListByTutorial(ctx context.Context, tutorialID uint) ([]model.Comment, error) {
	return nil, nil
}

func (s *memComments) ListByPost(ctx context.Context, postID uint) ([]model.Comment, error) {
	return nil, nil
}

func (s *memComments) Create(ctx context.Context, comment *model.Comment) error {
	comment.ID = uint(len(s.byID) + 1)
	s.byID[comment.ID] = comment
	return nil
}

func (s *memComments) Vote(ctx context.Context, id uint, delta int64) (*model.Comment, error) {
	comment, ok := s.byID[id]
	if !ok {
		return nil, content.ErrNotFound
	}
	comment.Votes += delta
	return comment, nil
}

func (s *memComments) Delete(ctx context.Context, id uint) error {
	if _, ok := s.byID[id]; !ok {
		return content.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

func newContentTestApp(siteContent *memSiteContent, comments *memComments) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: middlewares.ErrorHandler})
	siteContentHandler := NewSiteContentHandler(siteContent)
	commentHandler := NewCommentHandler(comments, nil)
	app.Get("/api/content/:section", siteContentHandler.GetSection)
	app.Put("/api/content/:section", siteContentHandler.PutSection)
	app.Post("/api/tutorials/:id/comments", commentHandler.PostTutorialComment)
	app.Post("/api/comments/:id/vote", commentHandler.PostVote)
	return app
}

func TestSiteContentSectionRoundTrip(t *testing.T) {
	store := &memSiteContent{sections: make(map[string]datatypes.JSON)}
	app := newContentTestApp(store, &memComments{byID: make(map[uint]*model.Comment)})

	req := httptest.NewRequest(http.MethodPut, "/api/content/hero", strings.NewReader(`{"title":"Welcome"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("put request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("put: status %d, want 200", resp.StatusCode)
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/content/hero", nil))
	if err != nil {
		t.Fatalf("get request: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != `{"title":"Welcome"}` {
		t.Errorf("stored document %q", body)
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/content/missing", nil))
	if err != nil {
		t.Fatalf("get request: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing section: status %d, want 404", resp.StatusCode)
	}
}

func TestSiteContentRejectsInvalidJSON(t *testing.T) {
	store := &memSiteContent{sections: make(map[string]datatypes.JSON)}
	app := newContentTestApp(store, &memComments{byID: make(map[uint]*model.Comment)})

	req := httptest.NewRequest(http.MethodPut, "/api/content/hero", strings.NewReader(`{"broken":`))
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("put request: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid json: status %d, want 400", resp.StatusCode)
	}
	if len(store.sections) != 0 {
		t.Error("invalid json must not be stored")
	}
}

// A fetched record must be editable and submittable as-is, so the model's
// serialized field names have to line up with the request types.
func TestContentModelFieldNamesRoundTrip(t *testing.T) {
	post := model.SitePost{
		ID:              7,
		PageID:          3,
		Slug:            "intro",
		Title:           "Intro",
		Excerpt:         "short",
		ContentMarkdown: "# Hello",
		IsPublished:     true,
		AllowComments:   true,
		OrderIndex:      2,
	}
	raw, err := json.Marshal(post)
	if err != nil {
		t.Fatalf("marshal post: %v", err)
	}
	var echoed postRequest
	if err := json.Unmarshal(raw, &echoed); err != nil {
		t.Fatalf("unmarshal into request: %v", err)
	}
	if echoed.Slug != post.Slug || echoed.ContentMarkdown != post.ContentMarkdown ||
		!echoed.IsPublished || !echoed.AllowComments || echoed.OrderIndex != post.OrderIndex {
		t.Errorf("request lost fields: %+v", echoed)
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		t.Fatalf("unmarshal keys: %v", err)
	}
	for _, key := range []string{"id", "pageId", "contentMarkdown", "isPublished", "allowComments", "orderIndex"} {
		if _, ok := keys[key]; !ok {
			t.Errorf("post serialization missing key %q", key)
		}
	}
	if _, ok := keys["DeletedAt"]; ok {
		t.Error("soft-delete marker must not be serialized")
	}

	tutorial := model.Tutorial{ID: 1, Title: "Go", Content: "# Go", Version: 4}
	raw, err = json.Marshal(tutorial)
	if err != nil {
		t.Fatalf("marshal tutorial: %v", err)
	}
	var tutReq tutorialRequest
	if err := json.Unmarshal(raw, &tutReq); err != nil {
		t.Fatalf("unmarshal into request: %v", err)
	}
	if tutReq.Title != tutorial.Title || tutReq.Content != tutorial.Content || tutReq.Version != tutorial.Version {
		t.Errorf("tutorial request lost fields: %+v", tutReq)
	}
}

func TestCommentValidationAndVoting(t *testing.T) {
	comments := &memComments{byID: make(map[uint]*model.Comment)}
	app := newContentTestApp(&memSiteContent{sections: make(map[string]datatypes.JSON)}, comments)

	post := func(path string, body string) *http.Response {
		t.Helper()
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("request: %v", err)
		}
		return resp
	}

	if resp := post("/api/tutorials/1/comments", `{"author":"","content":"hi"}`); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing author: status %d, want 400", resp.StatusCode)
	}
	if resp := post("/api/tutorials/1/comments", `{"author":"bob","content":"`+strings.Repeat("x", 5000)+`"}`); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("oversized comment: status %d, want 400", resp.StatusCode)
	}
	if resp := post("/api/tutorials/1/comments", `{"author":"bob","content":"first!"}`); resp.StatusCode != http.StatusCreated {
		t.Errorf("valid comment: status %d, want 201", resp.StatusCode)
	}

	if resp := post("/api/comments/1/vote", `{"direction":"sideways"}`); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad direction: status %d, want 400", resp.StatusCode)
	}
	if resp := post("/api/comments/1/vote", `{"direction":"up"}`); resp.StatusCode != http.StatusOK {
		t.Errorf("upvote: status %d, want 200", resp.StatusCode)
	}
	if comments.byID[1].Votes != 1 {
		t.Errorf("votes = %d, want 1", comments.byID[1].Votes)
	}
	if resp := post("/api/comments/99/vote", `{"direction":"down"}`); resp.StatusCode != http.StatusNotFound {
		t.Errorf("vote on missing comment: status %d, want 404", resp.StatusCode)
	}
}
