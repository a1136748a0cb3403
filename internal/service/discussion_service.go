package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/wardwatch/grievance-service/internal/domain"
	"github.com/wardwatch/grievance-service/internal/repository"
	apperrors "github.com/wardwatch/grievance-service/pkg/util"
)

// DiscussionService runs the community forum.
type DiscussionService struct {
	posts repository.DiscussionRepository
}

// NewDiscussionService builds the service.
func NewDiscussionService(posts repository.DiscussionRepository) *DiscussionService {
	return &DiscussionService{posts: posts}
}

// DiscussionInput is a new forum post.
type DiscussionInput struct {
	Message  string                    `json:"message" validate:"required,max=500"`
	Language domain.DiscussionLanguage `json:"language" validate:"omitempty,discussion_language"`
}

// DiscussionPage is one page of posts, newest first.
type DiscussionPage struct {
	Items []domain.DiscussionPost
	Total int
	Page  int
	Limit int
	Pages int
}

// List returns a page of posts. page is 1-based.
func (s *DiscussionService) List(ctx context.Context, page, limit int) (*DiscussionPage, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	items, err := s.posts.List(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	total, err := s.posts.Count(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if items == nil {
		items = []domain.DiscussionPost{}
	}
	return &DiscussionPage{
		Items: items,
		Total: total,
		Page:  page,
		Limit: limit,
		Pages: (total + limit - 1) / limit,
	}, nil
}

// Create posts a message as the caller.
func (s *DiscussionService) Create(ctx context.Context, caller domain.Principal, input DiscussionInput) (*domain.DiscussionPost, error) {
	authorID := domain.PrincipalID(caller)
	if authorID == "" {
		return nil, apperrors.NewUnauthorized("sign in to post")
	}

	input.Message = strings.TrimSpace(input.Message)
	input.Language = domain.DiscussionLanguage(strings.TrimSpace(string(input.Language)))
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if input.Language == "" {
		input.Language = domain.DefaultDiscussionLanguage
	}

	post := &domain.DiscussionPost{
		Message:  input.Message,
		Language: input.Language,
		AuthorID: authorID,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	stored, err := s.posts.GetByID(ctx, post.ID)
	if err != nil {
		return post, nil
	}
	return stored, nil
}

// Delete removes a post. Only its author or a super administrator may do so.
func (s *DiscussionService) Delete(ctx context.Context, caller domain.Principal, id string) error {
	post, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	switch p := caller.(type) {
	case domain.Admin:
	case domain.Anonymous:
		return apperrors.NewUnauthorized("authentication required")
	default:
		if post.AuthorID != domain.PrincipalID(p) {
			return apperrors.NewForbidden("only the author can delete this post")
		}
	}
	if err := s.posts.Delete(ctx, post.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("discussion", map[string]any{"id": id})
		}
		return apperrors.NewInternalError(err)
	}
	return nil
}

// ToggleLike adds or removes the caller's like and returns the updated post.
func (s *DiscussionService) ToggleLike(ctx context.Context, caller domain.Principal, id string) (*domain.DiscussionPost, bool, error) {
	userID := domain.PrincipalID(caller)
	if userID == "" {
		return nil, false, apperrors.NewUnauthorized("sign in to like posts")
	}
	post, err := s.load(ctx, id)
	if err != nil {
		return nil, false, err
	}
	liked, err := s.posts.ToggleLike(ctx, post.ID, userID)
	if err != nil {
		return nil, false, apperrors.NewInternalError(err)
	}
	updated, err := s.load(ctx, post.ID)
	if err != nil {
		return nil, false, err
	}
	return updated, liked, nil
}

func (s *DiscussionService) load(ctx context.Context, id string) (*domain.DiscussionPost, error) {
	id = strings.TrimSpace(id)
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NewNotFound("discussion", map[string]any{"id": id})
	}
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("discussion", map[string]any{"id": id})
		}
		return nil, apperrors.NewInternalError(err)
	}
	return post, nil
}
