package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wardwatch/grievance-service/internal/domain"
)

// DiscussionRepository persists forum posts and their likes.
type DiscussionRepository interface {
	Create(ctx context.Context, post *domain.DiscussionPost) error
	GetByID(ctx context.Context, id string) (*domain.DiscussionPost, error)
	List(ctx context.Context, limit, offset int) ([]domain.DiscussionPost, error)
	Count(ctx context.Context) (int, error)
	Delete(ctx context.Context, id string) error
	// ToggleLike adds userID to the like set, or removes it when present.
	// liked reports the membership after the call.
	ToggleLike(ctx context.Context, postID, userID string) (liked bool, err error)
}

type discussionRepository struct {
	pool *pgxpool.Pool
}

// NewDiscussionRepository builds repository.
func NewDiscussionRepository(pool *pgxpool.Pool) DiscussionRepository {
	return &discussionRepository{pool: pool}
}

const discussionSelect = `
        SELECT d.id, d.message, d.language, d.author_id, d.created_at,
               COALESCE(u.name, ''), COALESCE(u.ward, ''),
               ARRAY(SELECT l.user_id::text FROM discussion_likes l WHERE l.discussion_id = d.id ORDER BY l.created_at)
        FROM discussions d
        LEFT JOIN users u ON u.id = d.author_id`

func (r *discussionRepository) Create(ctx context.Context, post *domain.DiscussionPost) error {
	const query = `
        INSERT INTO discussions (message, language, author_id)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query, post.Message, post.Language, post.AuthorID).
		Scan(&post.ID, &post.CreatedAt)
}

func (r *discussionRepository) GetByID(ctx context.Context, id string) (*domain.DiscussionPost, error) {
	return scanDiscussion(r.pool.QueryRow(ctx, discussionSelect+` WHERE d.id=$1`, id))
}

func (r *discussionRepository) List(ctx context.Context, limit, offset int) ([]domain.DiscussionPost, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	query := fmt.Sprintf(`%s ORDER BY d.created_at DESC, d.id ASC LIMIT %d OFFSET %d`, discussionSelect, limit, offset)
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.DiscussionPost
	for rows.Next() {
		post, err := scanDiscussion(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *post)
	}
	return result, rows.Err()
}

func (r *discussionRepository) Count(ctx context.Context) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM discussions`).Scan(&total)
	return total, err
}

func (r *discussionRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM discussions WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *discussionRepository) ToggleLike(ctx context.Context, postID, userID string) (bool, error) {
	const query = `
        WITH removed AS (
            DELETE FROM discussion_likes WHERE discussion_id=$1 AND user_id=$2 RETURNING 1
        ), added AS (
            INSERT INTO discussion_likes (discussion_id, user_id)
            SELECT $1::uuid, $2::uuid WHERE NOT EXISTS (SELECT 1 FROM removed)
            ON CONFLICT DO NOTHING
            RETURNING 1
        )
        SELECT EXISTS (SELECT 1 FROM added)`
	var liked bool
	err := r.pool.QueryRow(ctx, query, postID, userID).Scan(&liked)
	return liked, err
}

func scanDiscussion(row pgx.Row) (*domain.DiscussionPost, error) {
	var post domain.DiscussionPost
	if err := row.Scan(
		&post.ID,
		&post.Message,
		&post.Language,
		&post.AuthorID,
		&post.CreatedAt,
		&post.AuthorName,
		&post.AuthorWard,
		&post.LikedBy,
	); err != nil {
		return nil, err
	}
	return &post, nil
}
