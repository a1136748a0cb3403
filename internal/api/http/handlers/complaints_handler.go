package handlers

import (
	"context"
	"encoding/json"
	"mime/multipart"
	"net/url"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/wardwatch/grievance-service/internal/api/dto"
	"github.com/wardwatch/grievance-service/internal/auth"
	"github.com/wardwatch/grievance-service/internal/domain"
	"github.com/wardwatch/grievance-service/internal/service"
	apperrors "github.com/wardwatch/grievance-service/pkg/util"
)

// ComplaintLifecycle is the complaint workflow served over HTTP.
type ComplaintLifecycle interface {
	Submit(ctx context.Context, caller domain.Principal, input service.ComplaintSubmitInput) (*domain.Complaint, error)
	ListFor(ctx context.Context, caller domain.Principal, filter service.ComplaintListFilter) (*service.ComplaintPage, error)
	ListForWard(ctx context.Context, caller domain.Principal, ward string, filter service.ComplaintListFilter) (*service.ComplaintPage, error)
	Get(ctx context.Context, caller domain.Principal, id string) (*domain.Complaint, error)
	History(ctx context.Context, caller domain.Principal, id string) ([]domain.ComplaintHistory, error)
	Transition(ctx context.Context, caller domain.Principal, id, newStatus string) (*domain.Complaint, error)
	Remove(ctx context.Context, caller domain.Principal, id string) error
}

// ComplaintStatsReader serves dashboard counters.
type ComplaintStatsReader interface {
	Stats(ctx context.Context, caller domain.Principal) (*domain.ComplaintStats, error)
}

// ComplaintsHandler manages complaint endpoints.
type ComplaintsHandler struct {
	complaints ComplaintLifecycle
	stats      ComplaintStatsReader
}

// NewComplaintsHandler constructs handler.
func NewComplaintsHandler(complaints ComplaintLifecycle, stats ComplaintStatsReader) *ComplaintsHandler {
	return &ComplaintsHandler{complaints: complaints, stats: stats}
}

// Create POST /complaints.
func (h *ComplaintsHandler) Create(c *fiber.Ctx) error {
	return h.submit(c, auth.PrincipalFromContext(c))
}

// CreatePublic POST /complaints/public. Always files an anonymous complaint.
func (h *ComplaintsHandler) CreatePublic(c *fiber.Ctx) error {
	return h.submit(c, domain.Anonymous{})
}

func (h *ComplaintsHandler) submit(c *fiber.Ctx, caller domain.Principal) error {
	input, release, err := parseComplaintSubmission(c)
	if err != nil {
		return err
	}
	defer release()

	complaint, err := h.complaints.Submit(c.UserContext(), caller, input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":   true,
		"complaint": complaintResponse(complaint),
	})
}

// ListMine GET /complaints/my. Citizens only ever see their own complaints.
func (h *ComplaintsHandler) ListMine(c *fiber.Ctx) error {
	return h.List(c)
}

// List GET /complaints.
func (h *ComplaintsHandler) List(c *fiber.Ctx) error {
	filter, err := parseComplaintListFilter(c)
	if err != nil {
		return err
	}
	page, err := h.complaints.ListFor(c.UserContext(), auth.PrincipalFromContext(c), filter)
	if err != nil {
		return err
	}
	return c.JSON(complaintPageResponse(page))
}

// ListByWard GET /complaints/ward/:wardNumber.
func (h *ComplaintsHandler) ListByWard(c *fiber.Ctx) error {
	filter, err := parseComplaintListFilter(c)
	if err != nil {
		return err
	}
	ward := c.Params("wardNumber")
	if decoded, err := url.PathUnescape(ward); err == nil {
		ward = decoded
	}
	page, err := h.complaints.ListForWard(c.UserContext(), auth.PrincipalFromContext(c), ward, filter)
	if err != nil {
		return err
	}
	return c.JSON(complaintPageResponse(page))
}

// Stats GET /complaints/stats.
func (h *ComplaintsHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.stats.Stats(c.UserContext(), auth.PrincipalFromContext(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "stats": statsResponse(stats)})
}

// Get GET /complaints/:id.
func (h *ComplaintsHandler) Get(c *fiber.Ctx) error {
	complaint, err := h.complaints.Get(c.UserContext(), auth.PrincipalFromContext(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "complaint": complaintResponse(complaint)})
}

// History GET /complaints/:id/history.
func (h *ComplaintsHandler) History(c *fiber.Ctx) error {
	entries, err := h.complaints.History(c.UserContext(), auth.PrincipalFromContext(c), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.ComplaintHistoryResponse, 0, len(entries))
	for i := range entries {
		items = append(items, historyResponse(&entries[i]))
	}
	return c.JSON(fiber.Map{"success": true, "count": len(items), "history": items})
}

// UpdateStatus PUT /complaints/:id.
func (h *ComplaintsHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.UpdateComplaintStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	complaint, err := h.complaints.Transition(c.UserContext(), auth.PrincipalFromContext(c), c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "complaint": complaintResponse(complaint)})
}

// Delete DELETE /complaints/:id.
func (h *ComplaintsHandler) Delete(c *fiber.Ctx) error {
	if err := h.complaints.Remove(c.UserContext(), auth.PrincipalFromContext(c), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "message": "Complaint deleted successfully"})
}

// parseComplaintSubmission reads a JSON or multipart submission. release
// closes the uploaded image, if any, and is always safe to call.
func parseComplaintSubmission(c *fiber.Ctx) (input service.ComplaintSubmitInput, release func(), err error) {
	release = func() {}
	if !isMultipart(c) {
		var req dto.CreateComplaintRequest
		if err := c.BodyParser(&req); err != nil {
			return input, release, apperrors.NewValidationError("invalid payload", nil)
		}
		return submitInput(req), release, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return input, release, apperrors.NewValidationError("invalid multipart payload", nil)
	}
	req := dto.CreateComplaintRequest{
		Title:            formValue(form, "title"),
		Description:      formValue(form, "description"),
		Category:         domain.ComplaintCategory(formValue(form, "category")),
		Location:         formValue(form, "location"),
		FormattedAddress: formValue(form, "formattedAddress"),
		Priority:         domain.ComplaintPriority(formValue(form, "priority")),
		Name:             formValue(form, "name"),
		Email:            formValue(form, "email"),
		Phone:            formValue(form, "phone"),
		Ward:             formValue(form, "ward"),
	}
	if raw := formValue(form, "coordinates"); strings.TrimSpace(raw) != "" {
		var coords dto.CoordinatesPayload
		if err := json.Unmarshal([]byte(raw), &coords); err != nil {
			return input, release, apperrors.NewFieldValidationError([]apperrors.FieldError{{
				Field:   "coordinates",
				Message: "must be a JSON object with lat and lng",
			}})
		}
		req.Coordinates = &coords
	}
	input = submitInput(req)

	files := form.File["image"]
	if len(files) == 0 {
		return input, release, nil
	}
	header := files[0]
	file, err := header.Open()
	if err != nil {
		return input, release, apperrors.NewInternalError(err)
	}
	input.Image = &service.ImageUpload{Filename: header.Filename, Size: header.Size, Body: file}
	return input, func() { _ = file.Close() }, nil
}

func submitInput(req dto.CreateComplaintRequest) service.ComplaintSubmitInput {
	input := service.ComplaintSubmitInput{
		Title:            req.Title,
		Description:      req.Description,
		Category:         req.Category,
		Location:         req.Location,
		FormattedAddress: req.FormattedAddress,
		Priority:         req.Priority,
		Name:             req.Name,
		Email:            req.Email,
		Phone:            req.Phone,
		Ward:             req.Ward,
	}
	if req.Coordinates != nil {
		input.Coordinates = &service.CoordinatesInput{Lat: req.Coordinates.Lat, Lng: req.Coordinates.Lng}
	}
	return input
}

func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm)
}

func formValue(form *multipart.Form, key string) string {
	if values := form.Value[key]; len(values) > 0 {
		return values[0]
	}
	return ""
}

// parseComplaintListFilter reads search, status, category, ward, active,
// page and limit. Without a limit the whole listing is returned.
func parseComplaintListFilter(c *fiber.Ctx) (service.ComplaintListFilter, error) {
	filter := service.ComplaintListFilter{
		Search:   strings.TrimSpace(c.Query("search")),
		Status:   allOrValue(c.Query("status")),
		Category: allOrValue(c.Query("category")),
		Ward:     allOrValue(c.Query("ward")),
	}
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, apperrors.NewFieldValidationError([]apperrors.FieldError{{Field: "active", Message: "must be true or false"}})
		}
		filter.Active = active
	}
	if limit := parseInt(c.Query("limit"), 0); limit > 0 {
		page := parseInt(c.Query("page"), 1)
		if page < 1 {
			page = 1
		}
		filter.Limit = limit
		filter.Offset = (page - 1) * limit
	}
	return filter, nil
}

// allOrValue treats the dashboard's "all" selection as no filter.
func allOrValue(val string) string {
	val = strings.TrimSpace(val)
	if strings.EqualFold(val, "all") {
		return ""
	}
	return val
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return def
	}
	return parsed
}

func complaintPageResponse(page *service.ComplaintPage) fiber.Map {
	items := make([]dto.ComplaintResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, complaintResponse(&page.Items[i]))
	}
	return fiber.Map{
		"success":    true,
		"count":      len(items),
		"total":      page.Total,
		"limit":      page.Limit,
		"offset":     page.Offset,
		"complaints": items,
	}
}

func complaintResponse(complaint *domain.Complaint) dto.ComplaintResponse {
	resp := dto.ComplaintResponse{
		ID:               complaint.ID,
		Title:            complaint.Title,
		Description:      complaint.Description,
		Category:         complaint.Category,
		Location:         complaint.Location,
		FormattedAddress: complaint.FormattedAddress,
		Status:           complaint.Status,
		Priority:         complaint.Priority,
		Image:            complaint.ImageRef,
		IsPublic:         complaint.IsPublic,
		Ward:             complaint.Ward,
		CreatedAt:        complaint.CreatedAt,
		ResolvedAt:       complaint.ResolvedAt,
	}
	if complaint.Coordinates != nil {
		resp.Coordinates = &dto.CoordinatesPayload{Lat: complaint.Coordinates.Lat, Lng: complaint.Coordinates.Lng}
	}
	if ward, ok := complaint.ResolvedWard(); ok {
		resp.Ward = ward
	}
	if complaint.OwnerID == nil {
		resp.Name = complaint.SubmitterName
		resp.Email = complaint.SubmitterEmail
		resp.Phone = complaint.SubmitterPhone
	}
	if owner := complaint.Owner; owner != nil {
		resp.User = &dto.ComplaintOwnerResponse{
			ID:    owner.ID,
			Name:  owner.Name,
			Email: owner.Email,
			Ward:  owner.Ward,
			Phone: owner.Phone,
		}
	}
	return resp
}

func historyResponse(entry *domain.ComplaintHistory) dto.ComplaintHistoryResponse {
	return dto.ComplaintHistoryResponse{
		ID:          entry.ID,
		ComplaintID: entry.ComplaintID,
		ChangedByID: entry.ChangedByID,
		ChangedBy:   entry.ChangedBy,
		OldStatus:   entry.OldStatus,
		NewStatus:   entry.NewStatus,
		CreatedAt:   entry.CreatedAt,
	}
}

func statsResponse(stats *domain.ComplaintStats) dto.ComplaintStatsResponse {
	return dto.ComplaintStatsResponse{
		Total:       stats.Total,
		Active:      stats.Active,
		ByStatus:    stats.ByStatus,
		ByCategory:  stats.ByCategory,
		ByWard:      stats.ByWard,
		GeneratedAt: stats.GeneratedAt,
	}
}
