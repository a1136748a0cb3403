package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/wardwatch/grievance-service/internal/domain"
	"github.com/wardwatch/grievance-service/internal/events"
	"github.com/wardwatch/grievance-service/internal/repository"
	apperrors "github.com/wardwatch/grievance-service/pkg/util"
)

// ComplaintService is the single authority over complaint visibility and lifecycle.
type ComplaintService struct {
	complaints    repository.ComplaintRepository
	history       repository.ComplaintHistoryRepository
	images        ImageStore
	dispatcher    events.Dispatcher
	logger        *zap.Logger
	maxImageBytes int64
	now           func() time.Time
}

// ComplaintDependencies bundles collaborators for the complaint service.
type ComplaintDependencies struct {
	ComplaintRepo repository.ComplaintRepository
	HistoryRepo   repository.ComplaintHistoryRepository
	// Images may be nil, in which case uploads are rejected.
	Images        ImageStore
	Dispatcher    events.Dispatcher
	Logger        *zap.Logger
	MaxImageBytes int64
}

// CoordinatesInput is an optional map pin.
type CoordinatesInput struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `json:"lng" validate:"gte=-180,lte=180"`
}

// ComplaintSubmitInput describes a new complaint. Name, Email, Phone and
// Ward are read only for anonymous submissions.
type ComplaintSubmitInput struct {
	Title            string                   `json:"title" validate:"required,max=100"`
	Description      string                   `json:"description" validate:"required,max=500"`
	Category         domain.ComplaintCategory `json:"category" validate:"required,complaint_category"`
	Location         string                   `json:"location" validate:"required,max=255"`
	Coordinates      *CoordinatesInput        `json:"coordinates"`
	FormattedAddress string                   `json:"formattedAddress" validate:"max=255"`
	Priority         domain.ComplaintPriority `json:"priority" validate:"omitempty,complaint_priority"`
	Name             string                   `json:"name" validate:"max=100"`
	Email            string                   `json:"email" validate:"omitempty,email"`
	Phone            string                   `json:"phone" validate:"max=20"`
	Ward             string                   `json:"ward" validate:"max=50"`
	Image            *ImageUpload             `json:"-" validate:"-"`
}

func (in ComplaintSubmitInput) normalized() ComplaintSubmitInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = domain.ComplaintCategory(strings.TrimSpace(string(in.Category)))
	in.Location = strings.TrimSpace(in.Location)
	in.FormattedAddress = strings.TrimSpace(in.FormattedAddress)
	in.Priority = domain.ComplaintPriority(strings.TrimSpace(string(in.Priority)))
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Ward = strings.TrimSpace(in.Ward)
	return in
}

// ComplaintListFilter carries the administrator query options. Limit of
// zero returns every match.
type ComplaintListFilter struct {
	Search   string `json:"search"`
	Status   string `json:"status" validate:"omitempty,complaint_status"`
	Category string `json:"category" validate:"omitempty,complaint_category"`
	Ward     string `json:"ward"`
	Active   bool   `json:"active"`
	Limit    int    `json:"limit" validate:"gte=0,lte=500"`
	Offset   int    `json:"offset" validate:"gte=0"`
}

func (f ComplaintListFilter) toRepository() repository.ComplaintFilter {
	rf := repository.ComplaintFilter{ActiveOnly: f.Active, Limit: f.Limit, Offset: f.Offset}
	if search := strings.TrimSpace(f.Search); search != "" {
		rf.SearchTerm = &search
	}
	if f.Status != "" {
		status := domain.ComplaintStatus(f.Status)
		rf.Status = &status
	}
	if f.Category != "" {
		category := domain.ComplaintCategory(f.Category)
		rf.Category = &category
	}
	if ward := strings.TrimSpace(f.Ward); ward != "" {
		rf.Ward = &ward
	}
	return rf
}

// ComplaintPage is one window of an ordered listing.
type ComplaintPage struct {
	Items  []domain.Complaint
	Total  int
	Limit  int
	Offset int
}

// NewComplaintService constructs the service.
func NewComplaintService(deps ComplaintDependencies) *ComplaintService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	maxImage := deps.MaxImageBytes
	if maxImage <= 0 {
		maxImage = 5 * 1024 * 1024
	}
	return &ComplaintService{
		complaints:    deps.ComplaintRepo,
		history:       deps.HistoryRepo,
		images:        deps.Images,
		dispatcher:    deps.Dispatcher,
		logger:        logger,
		maxImageBytes: maxImage,
		now:           time.Now,
	}
}

// Submit files a complaint. Citizens file owned complaints in their own
// ward; anonymous callers file public complaints naming a ward.
func (s *ComplaintService) Submit(ctx context.Context, caller domain.Principal, input ComplaintSubmitInput) (*domain.Complaint, error) {
	var citizen *domain.Citizen
	switch p := caller.(type) {
	case domain.Citizen:
		citizen = &p
	case domain.Anonymous:
	case domain.WardAdmin, domain.Admin:
		return nil, apperrors.NewForbidden("administrators cannot file complaints")
	default:
		return nil, apperrors.NewForbidden("unknown caller")
	}

	input = input.normalized()
	var extra []apperrors.FieldError
	if citizen == nil {
		if input.Name == "" {
			extra = append(extra, apperrors.FieldError{Field: "name", Message: "is required"})
		}
		if input.Ward == "" {
			extra = append(extra, apperrors.FieldError{Field: "ward", Message: "is required"})
		}
	}
	if err := validateInput(input, extra...); err != nil {
		return nil, err
	}

	complaint := &domain.Complaint{
		Title:            input.Title,
		Description:      input.Description,
		Category:         input.Category,
		Location:         input.Location,
		FormattedAddress: input.FormattedAddress,
		Status:           domain.StatusPending,
		Priority:         input.Priority,
	}
	if complaint.Priority == "" {
		complaint.Priority = domain.PriorityMedium
	}
	if input.Coordinates != nil {
		complaint.Coordinates = &domain.Coordinates{Lat: input.Coordinates.Lat, Lng: input.Coordinates.Lng}
		if complaint.FormattedAddress == "" {
			complaint.FormattedAddress = complaint.Location
		}
	}
	if citizen != nil {
		ownerID := citizen.ID
		complaint.OwnerID = &ownerID
		complaint.Ward = citizen.Ward
	} else {
		complaint.IsPublic = true
		complaint.SubmitterName = input.Name
		complaint.SubmitterEmail = input.Email
		complaint.SubmitterPhone = input.Phone
		complaint.Ward = input.Ward
	}

	if input.Image != nil {
		ref, err := s.storeImage(ctx, input.Image)
		if err != nil {
			return nil, err
		}
		complaint.ImageRef = &ref
	}

	if err := s.complaints.Create(ctx, complaint); err != nil {
		if complaint.ImageRef != nil {
			s.discardImage(ctx, *complaint.ImageRef)
		}
		return nil, apperrors.NewInternalError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:        events.EventComplaintSubmitted,
		ComplaintID: complaint.ID,
		Actor:       events.ActorFor(caller),
		Payload: events.ComplaintSubmittedPayload{
			Title:    complaint.Title,
			Category: complaint.Category,
			Priority: complaint.Priority,
			Ward:     complaint.Ward,
			Public:   complaint.IsPublic,
		},
	})

	stored, err := s.complaints.GetByID(ctx, complaint.ID)
	if err != nil {
		s.logger.Warn("complaint read-back failed", zap.String("complaint_id", complaint.ID), zap.Error(err))
		return complaint, nil
	}
	return stored, nil
}

// ListFor returns the complaints the caller may see, newest first.
// Citizens always get their own complaints and filters are ignored.
func (s *ComplaintService) ListFor(ctx context.Context, caller domain.Principal, filter ComplaintListFilter) (*ComplaintPage, error) {
	switch p := caller.(type) {
	case domain.Citizen:
		ownerID := p.ID
		return s.queryPage(ctx, repository.ComplaintFilter{
			OwnerID: &ownerID,
			Limit:   nonNegative(filter.Limit),
			Offset:  nonNegative(filter.Offset),
		})
	case domain.WardAdmin:
		if err := validateInput(filter); err != nil {
			return nil, err
		}
		rf := filter.toRepository()
		rf.Ward = nil
		return s.wardPage(ctx, p.Ward, rf)
	case domain.Admin:
		if err := validateInput(filter); err != nil {
			return nil, err
		}
		return s.queryPage(ctx, filter.toRepository())
	case domain.Anonymous:
		return nil, apperrors.NewUnauthorized("authentication required")
	default:
		return nil, apperrors.NewForbidden("unknown caller")
	}
}

// ListForWard returns the complaints of one ward. Ward administrators may
// only name their own ward.
func (s *ComplaintService) ListForWard(ctx context.Context, caller domain.Principal, ward string, filter ComplaintListFilter) (*ComplaintPage, error) {
	ward = strings.TrimSpace(ward)
	if ward == "" {
		return nil, apperrors.NewFieldValidationError([]apperrors.FieldError{{Field: "ward", Message: "is required"}})
	}

	scope := ward
	switch p := caller.(type) {
	case domain.Admin:
	case domain.WardAdmin:
		if !domain.WardMatches(p.Ward, ward) {
			return nil, apperrors.NewForbidden("ward administrators can only view their own ward")
		}
		scope = p.Ward
	case domain.Citizen:
		return nil, apperrors.NewForbidden("ward listings require an administrator")
	case domain.Anonymous:
		return nil, apperrors.NewUnauthorized("authentication required")
	default:
		return nil, apperrors.NewForbidden("unknown caller")
	}

	if err := validateInput(filter); err != nil {
		return nil, err
	}
	rf := filter.toRepository()
	rf.Ward = nil
	return s.wardPage(ctx, scope, rf)
}

// Get returns a single complaint visible to the caller.
func (s *ComplaintService) Get(ctx context.Context, caller domain.Principal, id string) (*domain.Complaint, error) {
	complaint, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeView(caller, complaint); err != nil {
		return nil, err
	}
	return complaint, nil
}

// History lists the status changes of a complaint, oldest first.
func (s *ComplaintService) History(ctx context.Context, caller domain.Principal, id string) ([]domain.ComplaintHistory, error) {
	switch caller.(type) {
	case domain.Admin, domain.WardAdmin:
	case domain.Anonymous:
		return nil, apperrors.NewUnauthorized("authentication required")
	default:
		return nil, apperrors.NewForbidden("complaint history requires an administrator")
	}

	complaint, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeView(caller, complaint); err != nil {
		return nil, err
	}
	entries, err := s.history.ListByComplaint(ctx, complaint.ID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return entries, nil
}

// Transition moves a complaint to newStatus. resolvedAt is stamped the
// first time a complaint reaches Resolved and never cleared.
func (s *ComplaintService) Transition(ctx context.Context, caller domain.Principal, id, newStatus string) (*domain.Complaint, error) {
	var wardScope *string
	switch p := caller.(type) {
	case domain.Admin:
	case domain.WardAdmin:
		ward := p.Ward
		wardScope = &ward
	default:
		return nil, apperrors.NewForbidden("only administrators can change complaint status")
	}

	status := domain.ComplaintStatus(strings.TrimSpace(newStatus))
	if !status.Valid() {
		return nil, apperrors.NewFieldValidationError([]apperrors.FieldError{{
			Field:   "status",
			Message: "must be one of " + joinValues(domain.ComplaintStatuses),
		}})
	}

	complaint, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if wardScope != nil && !inWard(*wardScope, complaint) {
		return nil, apperrors.NewForbidden("complaint belongs to another ward")
	}

	role := domain.PrincipalRole(caller)
	if err := checkTransition(role, complaint.Status, status); err != nil {
		return nil, err
	}

	var resolvedAt *time.Time
	if status == domain.StatusResolved && complaint.ResolvedAt == nil {
		now := s.now()
		resolvedAt = &now
	}

	updated, err := s.complaints.UpdateStatus(ctx, complaint.ID, status, resolvedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("complaint", map[string]any{"id": id})
		}
		return nil, apperrors.NewInternalError(err)
	}

	entry := &domain.ComplaintHistory{
		ComplaintID: complaint.ID,
		ChangedByID: domain.PrincipalID(caller),
		ChangedBy:   role,
		OldStatus:   complaint.Status,
		NewStatus:   status,
	}
	if err := s.history.Create(ctx, entry); err != nil {
		s.logger.Warn("complaint history write failed", zap.String("complaint_id", complaint.ID), zap.Error(err))
	}

	ward, _ := updated.ResolvedWard()
	s.publishEvent(ctx, events.Event{
		Type:        events.EventComplaintStatusChanged,
		ComplaintID: complaint.ID,
		Actor:       events.ActorFor(caller),
		Payload: events.ComplaintStatusChangedPayload{
			OldStatus: complaint.Status,
			NewStatus: status,
			Ward:      ward,
		},
	})
	return updated, nil
}

// Remove hard-deletes a complaint. Only the owning citizen or an
// administrator may remove it; ward administrators are refused.
func (s *ComplaintService) Remove(ctx context.Context, caller domain.Principal, id string) error {
	complaint, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	switch p := caller.(type) {
	case domain.Admin:
	case domain.WardAdmin:
		return apperrors.NewForbidden("ward administrators cannot remove complaints")
	case domain.Citizen:
		if complaint.OwnerID == nil || *complaint.OwnerID != p.ID {
			return apperrors.NewForbidden("only the owner can remove this complaint")
		}
	default:
		return apperrors.NewForbidden("not allowed to remove complaints")
	}

	if err := s.complaints.Delete(ctx, complaint.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("complaint", map[string]any{"id": id})
		}
		return apperrors.NewInternalError(err)
	}
	if complaint.ImageRef != nil {
		s.discardImage(ctx, *complaint.ImageRef)
	}

	ward, _ := complaint.ResolvedWard()
	s.publishEvent(ctx, events.Event{
		Type:        events.EventComplaintRemoved,
		ComplaintID: complaint.ID,
		Actor:       events.ActorFor(caller),
		Payload:     events.ComplaintRemovedPayload{Ward: ward},
	})
	return nil
}

func (s *ComplaintService) load(ctx context.Context, id string) (*domain.Complaint, error) {
	id = strings.TrimSpace(id)
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NewNotFound("complaint", map[string]any{"id": id})
	}
	complaint, err := s.complaints.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("complaint", map[string]any{"id": id})
		}
		return nil, apperrors.NewInternalError(err)
	}
	return complaint, nil
}

func (s *ComplaintService) queryPage(ctx context.Context, filter repository.ComplaintFilter) (*ComplaintPage, error) {
	items, err := s.complaints.List(ctx, filter)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	total := len(items)
	if filter.Limit > 0 {
		if total, err = s.complaints.Count(ctx, filter); err != nil {
			return nil, apperrors.NewInternalError(err)
		}
	}
	return &ComplaintPage{Items: items, Total: total, Limit: filter.Limit, Offset: filter.Offset}, nil
}

func (s *ComplaintService) wardPage(ctx context.Context, ward string, filter repository.ComplaintFilter) (*ComplaintPage, error) {
	limit, offset := filter.Limit, filter.Offset
	matched, err := listInWard(ctx, s.complaints, ward, filter)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &ComplaintPage{
		Items:  window(matched, limit, offset),
		Total:  len(matched),
		Limit:  limit,
		Offset: offset,
	}, nil
}

// listInWard returns every complaint whose resolved ward matches ward. The
// repository narrows by substring first and WardMatches decides.
func listInWard(ctx context.Context, repo repository.ComplaintRepository, ward string, filter repository.ComplaintFilter) ([]domain.Complaint, error) {
	ward = strings.TrimSpace(ward)
	if ward == "" {
		return nil, nil
	}
	hint := ward
	if token, ok := domain.WardToken(ward); ok {
		hint = token
	}
	filter.WardHint = &hint
	filter.Limit, filter.Offset = 0, 0

	rows, err := repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	matched := make([]domain.Complaint, 0, len(rows))
	for i := range rows {
		if inWard(ward, &rows[i]) {
			matched = append(matched, rows[i])
		}
	}
	return matched, nil
}

func inWard(ward string, complaint *domain.Complaint) bool {
	resolved, ok := complaint.ResolvedWard()
	return ok && domain.WardMatches(ward, resolved)
}

func authorizeView(caller domain.Principal, complaint *domain.Complaint) error {
	switch p := caller.(type) {
	case domain.Admin:
		return nil
	case domain.WardAdmin:
		if inWard(p.Ward, complaint) {
			return nil
		}
		return apperrors.NewForbidden("complaint belongs to another ward")
	case domain.Citizen:
		if complaint.OwnerID != nil && *complaint.OwnerID == p.ID {
			return nil
		}
		return apperrors.NewForbidden("complaint belongs to another user")
	case domain.Anonymous:
		return apperrors.NewUnauthorized("authentication required")
	default:
		return apperrors.NewForbidden("unknown caller")
	}
}

func window[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func (s *ComplaintService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
