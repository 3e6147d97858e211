package api

import "gorm.io/datatypes"

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userInfoResponse struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

type loginResponse struct {
	Token string           `json:"token"`
	User  userInfoResponse `json:"user"`
}

type tutorialRequest struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Icon        string         `json:"icon"`
	Color       string         `json:"color"`
	Topics      datatypes.JSON `json:"topics"`
	Content     string         `json:"content"`
	Version     int64          `json:"version"`
}

type pageRequest struct {
	Slug        string         `json:"slug"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	NavLabel    *string        `json:"navLabel"`
	ShowInNav   bool           `json:"showInNav"`
	OrderIndex  int64          `json:"orderIndex"`
	IsPublished bool           `json:"isPublished"`
	Hero        datatypes.JSON `json:"hero"`
	Layout      datatypes.JSON `json:"layout"`
}

type postRequest struct {
	Slug            string `json:"slug"`
	Title           string `json:"title"`
	Excerpt         string `json:"excerpt"`
	ContentMarkdown string `json:"contentMarkdown"`
	IsPublished     bool   `json:"isPublished"`
	AllowComments   bool   `json:"allowComments"`
	OrderIndex      int64  `json:"orderIndex"`
}

type commentRequest struct {
	Author  string `json:"author"`
	Content string `json:"content"`
}

type voteRequest struct {
	Direction string `json:"direction"` // "up" or "down"
}

type navigationEntry struct {
	Slug  string `json:"slug"`
	Label string `json:"label"`
}
