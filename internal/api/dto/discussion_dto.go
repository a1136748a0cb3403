package dto

import (
	"time"

	"github.com/wardwatch/grievance-service/internal/domain"
)

// CreateDiscussionRequest payload.
type CreateDiscussionRequest struct {
	Message  string                    `json:"message"`
	Language domain.DiscussionLanguage `json:"language"`
}

// DiscussionAuthorResponse identifies a post author.
type DiscussionAuthorResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Ward string `json:"ward,omitempty"`
}

// DiscussionResponse is a forum post.
type DiscussionResponse struct {
	ID        string                    `json:"id"`
	Message   string                    `json:"message"`
	Language  domain.DiscussionLanguage `json:"language"`
	User      DiscussionAuthorResponse  `json:"user"`
	Likes     []string                  `json:"likes"`
	LikeCount int                       `json:"likeCount"`
	CreatedAt time.Time                 `json:"createdAt"`
}

// Pagination describes a page of a listing.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}
