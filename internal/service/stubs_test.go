package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/wardwatch/grievance-service/internal/auth"
	"github.com/wardwatch/grievance-service/internal/domain"
	"github.com/wardwatch/grievance-service/internal/events"
	"github.com/wardwatch/grievance-service/internal/repository"
	apperrors "github.com/wardwatch/grievance-service/pkg/util"
)

var baseTime = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

// memComplaints mimics the Postgres repository including the owner join.
type memComplaints struct {
	mu         sync.Mutex
	rows       map[string]domain.Complaint
	owners     map[string]domain.ComplaintOwner
	seq        int
	failCreate error
	listCalls  int
}

func newMemComplaints() *memComplaints {
	return &memComplaints{rows: map[string]domain.Complaint{}, owners: map[string]domain.ComplaintOwner{}}
}

func (m *memComplaints) addOwner(id, name, ward string) {
	m.owners[id] = domain.ComplaintOwner{ID: id, Name: name, Ward: ward, Email: name + "@example.com"}
}

func (m *memComplaints) Create(_ context.Context, c *domain.Complaint) error {
	if m.failCreate != nil {
		return m.failCreate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	c.ID = uuid.NewString()
	c.CreatedAt = baseTime.Add(time.Duration(m.seq) * time.Minute)
	stored := *c
	stored.Owner = nil
	m.rows[c.ID] = stored
	return nil
}

func (m *memComplaints) joined(c domain.Complaint) domain.Complaint {
	if c.OwnerID != nil {
		if owner, ok := m.owners[*c.OwnerID]; ok {
			c.Owner = &owner
		}
	}
	return c
}

func (m *memComplaints) GetByID(_ context.Context, id string) (*domain.Complaint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.rows[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	j := m.joined(c)
	return &j, nil
}

func (m *memComplaints) match(c domain.Complaint, f repository.ComplaintFilter) bool {
	if f.OwnerID != nil && (c.OwnerID == nil || *c.OwnerID != *f.OwnerID) {
		return false
	}
	if f.Status != nil && c.Status != *f.Status {
		return false
	}
	if f.Category != nil && c.Category != *f.Category {
		return false
	}
	if f.ActiveOnly && c.Status == domain.StatusResolved {
		return false
	}
	ward, ok := c.ResolvedWard()
	if f.Ward != nil && (!ok || !strings.EqualFold(strings.TrimSpace(ward), strings.TrimSpace(*f.Ward))) {
		return false
	}
	if f.WardHint != nil && (!ok || !strings.Contains(strings.ToLower(ward), strings.ToLower(*f.WardHint))) {
		return false
	}
	if f.SearchTerm != nil {
		term := strings.ToLower(*f.SearchTerm)
		owner := ""
		if c.Owner != nil {
			owner = c.Owner.Name
		}
		if !strings.Contains(strings.ToLower(c.Title), term) &&
			!strings.Contains(strings.ToLower(c.SubmitterName), term) &&
			!strings.Contains(strings.ToLower(owner), term) {
			return false
		}
	}
	return true
}

func (m *memComplaints) filtered(f repository.ComplaintFilter) []domain.Complaint {
	var out []domain.Complaint
	for _, c := range m.rows {
		j := m.joined(c)
		if m.match(j, f) {
			out = append(out, j)
		}
	}
	sort.Slice(out, func(i, k int) bool {
		if !out[i].CreatedAt.Equal(out[k].CreatedAt) {
			return out[i].CreatedAt.After(out[k].CreatedAt)
		}
		return out[i].ID < out[k].ID
	})
	return out
}

func (m *memComplaints) List(_ context.Context, f repository.ComplaintFilter) ([]domain.Complaint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	out := m.filtered(f)
	if f.Limit > 0 {
		out = window(out, f.Limit, f.Offset)
	}
	return out, nil
}

func (m *memComplaints) Count(_ context.Context, f repository.ComplaintFilter) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.filtered(f)), nil
}

func (m *memComplaints) UpdateStatus(ctx context.Context, id string, status domain.ComplaintStatus, resolvedAt *time.Time) (*domain.Complaint, error) {
	m.mu.Lock()
	c, ok := m.rows[id]
	if !ok {
		m.mu.Unlock()
		return nil, pgx.ErrNoRows
	}
	c.Status = status
	if c.ResolvedAt == nil && resolvedAt != nil {
		c.ResolvedAt = resolvedAt
	}
	m.rows[id] = c
	m.mu.Unlock()
	return m.GetByID(ctx, id)
}

func (m *memComplaints) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.rows, id)
	return nil
}

type memHistory struct {
	entries []domain.ComplaintHistory
}

func (m *memHistory) Create(_ context.Context, h *domain.ComplaintHistory) error {
	h.ID = uuid.NewString()
	h.CreatedAt = baseTime
	m.entries = append(m.entries, *h)
	return nil
}

func (m *memHistory) ListByComplaint(_ context.Context, id string) ([]domain.ComplaintHistory, error) {
	var out []domain.ComplaintHistory
	for _, h := range m.entries {
		if h.ComplaintID == id {
			out = append(out, h)
		}
	}
	return out, nil
}

type memImages struct {
	stored  map[string][]byte
	removed []string
	failPut error
}

func newMemImages() *memImages {
	return &memImages{stored: map[string][]byte{}}
}

func (m *memImages) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) (string, error) {
	if m.failPut != nil {
		return "", m.failPut
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	ref := "https://cdn.example.com/" + key
	m.stored[ref] = data
	return ref, nil
}

func (m *memImages) Remove(_ context.Context, ref string) error {
	m.removed = append(m.removed, ref)
	delete(m.stored, ref)
	return nil
}

type recordingDispatcher struct {
	inner     events.Dispatcher
	published []events.Event
}

func newRecordingDispatcher() *recordingDispatcher {
	return &recordingDispatcher{inner: events.NewInMemoryDispatcher(nil)}
}

func (d *recordingDispatcher) Publish(ctx context.Context, e events.Event) error {
	d.published = append(d.published, e)
	return d.inner.Publish(ctx, e)
}

func (d *recordingDispatcher) Subscribe(t events.EventType, h events.EventHandler) {
	d.inner.Subscribe(t, h)
}

type memUsers struct {
	byID map[string]*domain.User
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[string]*domain.User{}}
}

func (m *memUsers) Create(_ context.Context, u *domain.User) error {
	for _, existing := range m.byID {
		if strings.EqualFold(existing.Email, u.Email) {
			return repository.ErrDuplicate
		}
	}
	u.ID = uuid.NewString()
	u.CreatedAt, u.UpdatedAt = baseTime, baseTime
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUsers) Update(_ context.Context, u *domain.User) error {
	if _, ok := m.byID[u.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUsers) find(pred func(*domain.User) bool) (*domain.User, error) {
	for _, u := range m.byID {
		if pred(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	return m.find(func(u *domain.User) bool { return u.ID == id })
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	return m.find(func(u *domain.User) bool { return strings.EqualFold(u.Email, strings.TrimSpace(email)) })
}

func (m *memUsers) GetByRoleWardEmail(_ context.Context, role domain.Role, ward, email string) (*domain.User, error) {
	return m.find(func(u *domain.User) bool {
		return u.Role == role && strings.EqualFold(strings.TrimSpace(u.Ward), strings.TrimSpace(ward)) && strings.EqualFold(u.Email, email)
	})
}

func (m *memUsers) GetByGoogleID(_ context.Context, googleID string) (*domain.User, error) {
	return m.find(func(u *domain.User) bool { return u.GoogleID != nil && *u.GoogleID == googleID })
}

type stubGoogle struct {
	identity *auth.GoogleIdentity
	err      error
}

func (s *stubGoogle) Verify(context.Context, string) (*auth.GoogleIdentity, error) {
	return s.identity, s.err
}

type memDiscussions struct {
	posts map[string]*domain.DiscussionPost
	seq   int
}

func newMemDiscussions() *memDiscussions {
	return &memDiscussions{posts: map[string]*domain.DiscussionPost{}}
}

func (m *memDiscussions) Create(_ context.Context, p *domain.DiscussionPost) error {
	m.seq++
	p.ID = uuid.NewString()
	p.CreatedAt = baseTime.Add(time.Duration(m.seq) * time.Minute)
	cp := *p
	m.posts[p.ID] = &cp
	return nil
}

func (m *memDiscussions) GetByID(_ context.Context, id string) (*domain.DiscussionPost, error) {
	p, ok := m.posts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *p
	cp.LikedBy = append([]string{}, p.LikedBy...)
	return &cp, nil
}

func (m *memDiscussions) List(_ context.Context, limit, offset int) ([]domain.DiscussionPost, error) {
	var out []domain.DiscussionPost
	for _, p := range m.posts {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].CreatedAt.After(out[k].CreatedAt) })
	return window(out, limit, offset), nil
}

func (m *memDiscussions) Count(context.Context) (int, error) {
	return len(m.posts), nil
}

func (m *memDiscussions) Delete(_ context.Context, id string) error {
	if _, ok := m.posts[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.posts, id)
	return nil
}

func (m *memDiscussions) ToggleLike(_ context.Context, postID, userID string) (bool, error) {
	p, ok := m.posts[postID]
	if !ok {
		return false, pgx.ErrNoRows
	}
	for i, id := range p.LikedBy {
		if id == userID {
			p.LikedBy = append(p.LikedBy[:i], p.LikedBy[i+1:]...)
			return false, nil
		}
	}
	p.LikedBy = append(p.LikedBy, userID)
	return true, nil
}

type memStatsCache struct {
	entries     map[string]*domain.ComplaintStats
	invalidated int
}

func newMemStatsCache() *memStatsCache {
	return &memStatsCache{entries: map[string]*domain.ComplaintStats{}}
}

func (m *memStatsCache) Get(_ context.Context, scope string) (*domain.ComplaintStats, bool, error) {
	s, ok := m.entries[scope]
	return s, ok, nil
}

func (m *memStatsCache) Set(_ context.Context, scope string, s *domain.ComplaintStats, _ time.Duration) error {
	m.entries[scope] = s
	return nil
}

func (m *memStatsCache) Invalidate(context.Context) error {
	m.invalidated++
	m.entries = map[string]*domain.ComplaintStats{}
	return nil
}

type memStream struct {
	entries []domain.ActivityEntry
	fail    error
}

func (m *memStream) Append(_ context.Context, e domain.ActivityEntry) (string, error) {
	if m.fail != nil {
		return "", m.fail
	}
	e.ID = uuid.NewString()
	m.entries = append(m.entries, e)
	return e.ID, nil
}

func (m *memStream) Latest(_ context.Context, count int64) ([]domain.ActivityEntry, error) {
	var out []domain.ActivityEntry
	for i := len(m.entries) - 1; i >= 0 && int64(len(out)) < count; i-- {
		out = append(out, m.entries[i])
	}
	return out, nil
}

// pngBytes is a minimal PNG signature followed by an IHDR chunk header.
var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), bytes.Repeat([]byte{0}, 32)...)

func domainCode(err error) string {
	var de *apperrors.DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

func fieldNames(err error) []string {
	var de *apperrors.DomainError
	if !errors.As(err, &de) {
		return nil
	}
	names := make([]string, 0, len(de.Fields))
	for _, f := range de.Fields {
		names = append(names, f.Field)
	}
	return names
}

func hasField(err error, name string) bool {
	for _, f := range fieldNames(err) {
		if f == name {
			return true
		}
	}
	return false
}
