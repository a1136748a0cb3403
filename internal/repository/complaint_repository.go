package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wardwatch/grievance-service/internal/domain"
)

// ComplaintFilter narrows complaint listings. Zero values disable a clause.
type ComplaintFilter struct {
	OwnerID  *string
	Status   *domain.ComplaintStatus
	Category *domain.ComplaintCategory
	// SearchTerm matches title, submitter name and owner name case-insensitively.
	SearchTerm *string
	// Ward matches the resolved ward exactly, ignoring case and surrounding space.
	Ward *string
	// WardHint keeps rows whose resolved ward contains the hint. Callers
	// refine the result with domain.WardMatches.
	WardHint   *string
	ActiveOnly bool
	// Limit of zero returns every matching row.
	Limit  int
	Offset int
}

// ComplaintRepository encapsulates complaint persistence.
type ComplaintRepository interface {
	Create(ctx context.Context, complaint *domain.Complaint) error
	GetByID(ctx context.Context, id string) (*domain.Complaint, error)
	List(ctx context.Context, filter ComplaintFilter) ([]domain.Complaint, error)
	// Count ignores Limit and Offset.
	Count(ctx context.Context, filter ComplaintFilter) (int, error)
	// UpdateStatus sets the status. resolvedAt is written only when the row
	// has never been resolved.
	UpdateStatus(ctx context.Context, id string, status domain.ComplaintStatus, resolvedAt *time.Time) (*domain.Complaint, error)
	Delete(ctx context.Context, id string) error
}

type complaintRepository struct {
	pool *pgxpool.Pool
}

// NewComplaintRepository instantiates repository.
func NewComplaintRepository(pool *pgxpool.Pool) ComplaintRepository {
	return &complaintRepository{pool: pool}
}

const complaintSelect = `
        SELECT c.id, c.title, c.description, c.category, c.location, c.lat, c.lng, c.formatted_address,
               c.status, c.priority, c.image_ref, c.owner_id, c.is_public, c.submitter_name,
               c.submitter_email, c.submitter_phone, c.ward, c.created_at, c.resolved_at,
               u.id, u.name, u.email, u.ward, u.phone
        FROM complaints c
        LEFT JOIN users u ON u.id = c.owner_id`

// resolvedWardExpr is NULL for complaints whose owner no longer exists.
const resolvedWardExpr = `(CASE WHEN c.owner_id IS NULL THEN c.ward ELSE u.ward END)`

func (r *complaintRepository) Create(ctx context.Context, complaint *domain.Complaint) error {
	const query = `
        INSERT INTO complaints (title, description, category, location, lat, lng, formatted_address,
            status, priority, image_ref, owner_id, is_public, submitter_name, submitter_email, submitter_phone, ward)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
        RETURNING id, created_at`

	var lat, lng *float64
	if complaint.Coordinates != nil {
		lat, lng = &complaint.Coordinates.Lat, &complaint.Coordinates.Lng
	}
	return r.pool.QueryRow(ctx, query,
		complaint.Title,
		complaint.Description,
		complaint.Category,
		complaint.Location,
		lat,
		lng,
		complaint.FormattedAddress,
		complaint.Status,
		complaint.Priority,
		complaint.ImageRef,
		complaint.OwnerID,
		complaint.IsPublic,
		complaint.SubmitterName,
		complaint.SubmitterEmail,
		complaint.SubmitterPhone,
		complaint.Ward,
	).Scan(&complaint.ID, &complaint.CreatedAt)
}

func (r *complaintRepository) GetByID(ctx context.Context, id string) (*domain.Complaint, error) {
	row := r.pool.QueryRow(ctx, complaintSelect+` WHERE c.id=$1`, id)
	complaint, err := scanComplaint(row)
	if err != nil {
		return nil, err
	}
	return complaint, nil
}

func (r *complaintRepository) List(ctx context.Context, filter ComplaintFilter) ([]domain.Complaint, error) {
	where, args := buildComplaintWhere(filter)
	query := fmt.Sprintf(`%s WHERE %s ORDER BY c.created_at DESC, c.id ASC`, complaintSelect, where)
	if filter.Limit > 0 {
		offset := filter.Offset
		if offset < 0 {
			offset = 0
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.Limit, offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Complaint
	for rows.Next() {
		complaint, err := scanComplaint(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *complaint)
	}
	return result, rows.Err()
}

func (r *complaintRepository) Count(ctx context.Context, filter ComplaintFilter) (int, error) {
	where, args := buildComplaintWhere(filter)
	query := `SELECT COUNT(*) FROM complaints c LEFT JOIN users u ON u.id = c.owner_id WHERE ` + where
	var total int
	err := r.pool.QueryRow(ctx, query, args...).Scan(&total)
	return total, err
}

func buildComplaintWhere(filter ComplaintFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		clauses = append(clauses, fmt.Sprintf("c.owner_id=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("c.status=$%d", len(args)))
	}
	if filter.Category != nil {
		args = append(args, *filter.Category)
		clauses = append(clauses, fmt.Sprintf("c.category=$%d", len(args)))
	}
	if filter.ActiveOnly {
		args = append(args, domain.StatusResolved)
		clauses = append(clauses, fmt.Sprintf("c.status<>$%d", len(args)))
	}
	if filter.Ward != nil {
		args = append(args, strings.TrimSpace(*filter.Ward))
		clauses = append(clauses, fmt.Sprintf("LOWER(TRIM(%s))=LOWER($%d)", resolvedWardExpr, len(args)))
	}
	if filter.WardHint != nil {
		args = append(args, "%"+escapeLike(strings.ToLower(strings.TrimSpace(*filter.WardHint)))+"%")
		clauses = append(clauses, fmt.Sprintf("LOWER(%s) LIKE $%d", resolvedWardExpr, len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + escapeLike(strings.ToLower(strings.TrimSpace(*filter.SearchTerm))) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(
			"(LOWER(c.title) LIKE %s OR LOWER(c.submitter_name) LIKE %s OR LOWER(COALESCE(u.name, '')) LIKE %s)",
			placeholder, placeholder, placeholder))
	}

	return strings.Join(clauses, " AND "), args
}

func (r *complaintRepository) UpdateStatus(ctx context.Context, id string, status domain.ComplaintStatus, resolvedAt *time.Time) (*domain.Complaint, error) {
	const query = `UPDATE complaints SET status=$1, resolved_at=COALESCE(resolved_at, $2) WHERE id=$3`
	cmd, err := r.pool.Exec(ctx, query, status, resolvedAt, id)
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() == 0 {
		return nil, pgx.ErrNoRows
	}
	return r.GetByID(ctx, id)
}

func (r *complaintRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM complaints WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanComplaint(row pgx.Row) (*domain.Complaint, error) {
	var (
		complaint  domain.Complaint
		lat, lng   *float64
		ownerID    *string
		ownerName  *string
		ownerEmail *string
		ownerWard  *string
		ownerPhone *string
	)
	if err := row.Scan(
		&complaint.ID,
		&complaint.Title,
		&complaint.Description,
		&complaint.Category,
		&complaint.Location,
		&lat,
		&lng,
		&complaint.FormattedAddress,
		&complaint.Status,
		&complaint.Priority,
		&complaint.ImageRef,
		&complaint.OwnerID,
		&complaint.IsPublic,
		&complaint.SubmitterName,
		&complaint.SubmitterEmail,
		&complaint.SubmitterPhone,
		&complaint.Ward,
		&complaint.CreatedAt,
		&complaint.ResolvedAt,
		&ownerID,
		&ownerName,
		&ownerEmail,
		&ownerWard,
		&ownerPhone,
	); err != nil {
		return nil, err
	}
	if lat != nil && lng != nil {
		complaint.Coordinates = &domain.Coordinates{Lat: *lat, Lng: *lng}
	}
	if ownerID != nil {
		complaint.Owner = &domain.ComplaintOwner{
			ID:    *ownerID,
			Name:  deref(ownerName),
			Email: deref(ownerEmail),
			Ward:  deref(ownerWard),
			Phone: deref(ownerPhone),
		}
	}
	return &complaint, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
