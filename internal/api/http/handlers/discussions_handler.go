package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/wardwatch/grievance-service/internal/api/dto"
	"github.com/wardwatch/grievance-service/internal/auth"
	"github.com/wardwatch/grievance-service/internal/domain"
	"github.com/wardwatch/grievance-service/internal/service"
	apperrors "github.com/wardwatch/grievance-service/pkg/util"
)

// DiscussionBoard is the community forum.
type DiscussionBoard interface {
	List(ctx context.Context, page, limit int) (*service.DiscussionPage, error)
	Create(ctx context.Context, caller domain.Principal, input service.DiscussionInput) (*domain.DiscussionPost, error)
	Delete(ctx context.Context, caller domain.Principal, id string) error
	ToggleLike(ctx context.Context, caller domain.Principal, id string) (*domain.DiscussionPost, bool, error)
}

// DiscussionsHandler manages forum endpoints.
type DiscussionsHandler struct {
	board DiscussionBoard
}

// NewDiscussionsHandler constructs handler.
func NewDiscussionsHandler(board DiscussionBoard) *DiscussionsHandler {
	return &DiscussionsHandler{board: board}
}

// List GET /discussions.
func (h *DiscussionsHandler) List(c *fiber.Ctx) error {
	page, err := h.board.List(c.UserContext(), parseInt(c.Query("page"), 1), parseInt(c.Query("limit"), 0))
	if err != nil {
		return err
	}
	items := make([]dto.DiscussionResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, discussionResponse(&page.Items[i]))
	}
	return c.JSON(fiber.Map{
		"success":     true,
		"discussions": items,
		"pagination": dto.Pagination{
			Page:  page.Page,
			Limit: page.Limit,
			Total: page.Total,
			Pages: page.Pages,
		},
	})
}

// Create POST /discussions.
func (h *DiscussionsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateDiscussionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	post, err := h.board.Create(c.UserContext(), auth.PrincipalFromContext(c), service.DiscussionInput{
		Message:  req.Message,
		Language: req.Language,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "discussion": discussionResponse(post)})
}

// Delete DELETE /discussions/:id.
func (h *DiscussionsHandler) Delete(c *fiber.Ctx) error {
	if err := h.board.Delete(c.UserContext(), auth.PrincipalFromContext(c), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "message": "Discussion deleted successfully"})
}

// ToggleLike PUT /discussions/:id/like.
func (h *DiscussionsHandler) ToggleLike(c *fiber.Ctx) error {
	post, liked, err := h.board.ToggleLike(c.UserContext(), auth.PrincipalFromContext(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "liked": liked, "discussion": discussionResponse(post)})
}

func discussionResponse(post *domain.DiscussionPost) dto.DiscussionResponse {
	likes := post.LikedBy
	if likes == nil {
		likes = []string{}
	}
	return dto.DiscussionResponse{
		ID:       post.ID,
		Message:  post.Message,
		Language: post.Language,
		User: dto.DiscussionAuthorResponse{
			ID:   post.AuthorID,
			Name: post.AuthorName,
			Ward: post.AuthorWard,
		},
		Likes:     likes,
		LikeCount: len(likes),
		CreatedAt: post.CreatedAt,
	}
}
