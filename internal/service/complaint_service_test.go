package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/wardwatch/grievance-service/internal/domain"
	"github.com/wardwatch/grievance-service/internal/events"
	apperrors "github.com/wardwatch/grievance-service/pkg/util"
)

type complaintFixture struct {
	svc     *ComplaintService
	repo    *memComplaints
	history *memHistory
	images  *memImages
	events  *recordingDispatcher
}

func newComplaintFixture() *complaintFixture {
	f := &complaintFixture{
		repo:    newMemComplaints(),
		history: &memHistory{},
		images:  newMemImages(),
		events:  newRecordingDispatcher(),
	}
	f.svc = NewComplaintService(ComplaintDependencies{
		ComplaintRepo: f.repo,
		HistoryRepo:   f.history,
		Images:        f.images,
		Dispatcher:    f.events,
		MaxImageBytes: 1024,
	})
	f.svc.now = func() time.Time { return baseTime.Add(24 * time.Hour) }
	return f
}

func validSubmission() ComplaintSubmitInput {
	return ComplaintSubmitInput{
		Title:       "Overflowing bin",
		Description: "Bin at the corner has not been emptied for a week",
		Category:    domain.CategoryGarbage,
		Location:    "MG Road",
	}
}

func anonymousSubmission(ward string) ComplaintSubmitInput {
	return ComplaintSubmitInput{
		Title:       "Broken light",
		Description: "Pole #4 dark",
		Category:    domain.CategoryStreetlights,
		Location:    "Main St",
		Name:        "Asha",
		Ward:        ward,
	}
}

func (f *complaintFixture) submitAs(t *testing.T, caller domain.Principal, in ComplaintSubmitInput) *domain.Complaint {
	t.Helper()
	c, err := f.svc.Submit(context.Background(), caller, in)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	return c
}

func TestSubmitCitizenOwnsComplaint(t *testing.T) {
	f := newComplaintFixture()
	f.repo.addOwner("c1", "Ravi", "Ward 9")
	caller := domain.Citizen{ID: "c1", Ward: "Ward 9"}

	in := validSubmission()
	in.Title = "  Overflowing bin  "
	in.Name = "ignored"
	created := f.submitAs(t, caller, in)

	if created.Status != domain.StatusPending || created.IsPublic {
		t.Fatalf("expected pending private complaint, got %+v", created)
	}
	if created.OwnerID == nil || *created.OwnerID != "c1" || created.Ward != "Ward 9" {
		t.Fatalf("unexpected owner shape %+v", created)
	}
	if created.Priority != domain.PriorityMedium {
		t.Fatalf("expected default priority, got %s", created.Priority)
	}
	if created.SubmitterName != "" {
		t.Fatalf("citizen complaints must not record submitter name")
	}
	if created.Owner == nil || created.Owner.Name != "Ravi" {
		t.Fatalf("expected owner to be joined on read-back")
	}

	got, err := f.svc.Get(context.Background(), caller, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Overflowing bin" || got.Description != in.Description || got.Category != in.Category ||
		got.Location != in.Location || got.Priority != domain.PriorityMedium {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if len(f.events.published) != 1 || f.events.published[0].Type != events.EventComplaintSubmitted {
		t.Fatalf("expected submitted event, got %+v", f.events.published)
	}
}

func TestSubmitAnonymousComplaint(t *testing.T) {
	f := newComplaintFixture()
	created := f.submitAs(t, domain.Anonymous{}, anonymousSubmission("Ward 3"))

	if !created.IsPublic || created.OwnerID != nil {
		t.Fatalf("expected public ownerless complaint, got %+v", created)
	}
	if created.Status != domain.StatusPending || created.Ward != "Ward 3" || created.SubmitterName != "Asha" {
		t.Fatalf("unexpected complaint %+v", created)
	}
}

func TestSubmitCoordinatesDefaultAddress(t *testing.T) {
	f := newComplaintFixture()
	in := validSubmission()
	in.Coordinates = &CoordinatesInput{Lat: 19.07, Lng: 72.87}
	created := f.submitAs(t, domain.Citizen{ID: "c1", Ward: "1"}, in)
	if created.Coordinates == nil || created.FormattedAddress != "MG Road" {
		t.Fatalf("expected coordinates with fallback address, got %+v", created)
	}

	in.Coordinates = &CoordinatesInput{Lat: 120, Lng: 0}
	_, err := f.svc.Submit(context.Background(), domain.Citizen{ID: "c1", Ward: "1"}, in)
	if !hasField(err, "coordinates.lat") {
		t.Fatalf("expected coordinates.lat field error, got %v", fieldNames(err))
	}
}

func TestSubmitValidation(t *testing.T) {
	cases := []struct {
		name   string
		caller domain.Principal
		mutate func(*ComplaintSubmitInput)
		fields []string
	}{
		{
			name:   "blank title",
			caller: domain.Citizen{ID: "c1", Ward: "1"},
			mutate: func(in *ComplaintSubmitInput) { in.Title = "   " },
			fields: []string{"title"},
		},
		{
			name:   "unknown category",
			caller: domain.Citizen{ID: "c1", Ward: "1"},
			mutate: func(in *ComplaintSubmitInput) { in.Category = "Noise" },
			fields: []string{"category"},
		},
		{
			name:   "title too long",
			caller: domain.Citizen{ID: "c1", Ward: "1"},
			mutate: func(in *ComplaintSubmitInput) { in.Title = strings.Repeat("x", 101) },
			fields: []string{"title"},
		},
		{
			name:   "bad priority",
			caller: domain.Citizen{ID: "c1", Ward: "1"},
			mutate: func(in *ComplaintSubmitInput) { in.Priority = "Urgent" },
			fields: []string{"priority"},
		},
		{
			name:   "anonymous without name or ward",
			caller: domain.Anonymous{},
			mutate: func(*ComplaintSubmitInput) {},
			fields: []string{"name", "ward"},
		},
		{
			name:   "anonymous bad email",
			caller: domain.Anonymous{},
			mutate: func(in *ComplaintSubmitInput) {
				in.Name, in.Ward, in.Email = "Asha", "3", "not-an-email"
			},
			fields: []string{"email"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newComplaintFixture()
			in := validSubmission()
			tc.mutate(&in)
			_, err := f.svc.Submit(context.Background(), tc.caller, in)
			if domainCode(err) != apperrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
			for _, field := range tc.fields {
				if !hasField(err, field) {
					t.Fatalf("expected field %q in %v", field, fieldNames(err))
				}
			}
			if len(f.repo.rows) != 0 {
				t.Fatalf("nothing should be persisted")
			}
		})
	}
}

func TestSubmitByAdministratorsForbidden(t *testing.T) {
	f := newComplaintFixture()
	for _, caller := range []domain.Principal{domain.Admin{ID: "a1"}, domain.WardAdmin{ID: "w1", Ward: "3"}} {
		if _, err := f.svc.Submit(context.Background(), caller, validSubmission()); domainCode(err) != apperrors.CodeForbidden {
			t.Fatalf("expected forbidden for %T, got %v", caller, err)
		}
	}
}

func TestSubmitImage(t *testing.T) {
	caller := domain.Citizen{ID: "c1", Ward: "1"}

	t.Run("png stored", func(t *testing.T) {
		f := newComplaintFixture()
		in := validSubmission()
		in.Image = &ImageUpload{Filename: "bin.png", Size: int64(len(pngBytes)), Body: bytes.NewReader(pngBytes)}
		created := f.submitAs(t, caller, in)
		if created.ImageRef == nil || !strings.HasSuffix(*created.ImageRef, ".png") {
			t.Fatalf("expected png image ref, got %v", created.ImageRef)
		}
		if _, ok := f.images.stored[*created.ImageRef]; !ok {
			t.Fatalf("image not stored")
		}
	})

	t.Run("non image rejected", func(t *testing.T) {
		f := newComplaintFixture()
		in := validSubmission()
		body := []byte("just some text pretending to be a picture")
		in.Image = &ImageUpload{Filename: "bin.png", Size: int64(len(body)), Body: bytes.NewReader(body)}
		_, err := f.svc.Submit(context.Background(), caller, in)
		if !hasField(err, "image") {
			t.Fatalf("expected image field error, got %v", err)
		}
	})

	t.Run("oversize rejected", func(t *testing.T) {
		f := newComplaintFixture()
		in := validSubmission()
		body := append(append([]byte{}, pngBytes...), bytes.Repeat([]byte{1}, 2048)...)
		in.Image = &ImageUpload{Filename: "big.png", Size: -1, Body: bytes.NewReader(body)}
		_, err := f.svc.Submit(context.Background(), caller, in)
		if !hasField(err, "image") {
			t.Fatalf("expected image field error, got %v", err)
		}
		if len(f.images.stored) != 0 {
			t.Fatalf("oversize image must not be stored")
		}
	})

	t.Run("blob removed when persist fails", func(t *testing.T) {
		f := newComplaintFixture()
		f.repo.failCreate = errors.New("db down")
		in := validSubmission()
		in.Image = &ImageUpload{Filename: "bin.png", Size: int64(len(pngBytes)), Body: bytes.NewReader(pngBytes)}
		_, err := f.svc.Submit(context.Background(), caller, in)
		if domainCode(err) != apperrors.CodeInternal {
			t.Fatalf("expected internal error, got %v", err)
		}
		if len(f.images.removed) != 1 || len(f.images.stored) != 0 {
			t.Fatalf("expected uploaded image to be cleaned up")
		}
	})

	t.Run("uploads disabled", func(t *testing.T) {
		f := newComplaintFixture()
		f.svc.images = nil
		in := validSubmission()
		in.Image = &ImageUpload{Filename: "bin.png", Size: int64(len(pngBytes)), Body: bytes.NewReader(pngBytes)}
		if _, err := f.svc.Submit(context.Background(), caller, in); !hasField(err, "image") {
			t.Fatalf("expected image field error, got %v", err)
		}
	})
}

func TestListForCitizenSeesOnlyOwn(t *testing.T) {
	f := newComplaintFixture()
	f.repo.addOwner("c1", "Ravi", "9")
	f.repo.addOwner("c2", "Meena", "9")
	mine := f.submitAs(t, domain.Citizen{ID: "c1", Ward: "9"}, validSubmission())
	f.submitAs(t, domain.Citizen{ID: "c2", Ward: "9"}, validSubmission())
	f.submitAs(t, domain.Anonymous{}, anonymousSubmission("9"))

	page, err := f.svc.ListFor(context.Background(), domain.Citizen{ID: "c1", Ward: "9"}, ComplaintListFilter{Status: "bogus", Ward: "12"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.Total != 1 || len(page.Items) != 1 || page.Items[0].ID != mine.ID {
		t.Fatalf("citizen should only see own complaint, got %+v", page.Items)
	}
}

func TestListForWardAdminMatchesWardNumber(t *testing.T) {
	f := newComplaintFixture()
	f.repo.addOwner("c9", "Nine", "Ward 9")
	f.repo.addOwner("c19", "Nineteen", "Ward 19")

	owned9 := f.submitAs(t, domain.Citizen{ID: "c9", Ward: "Ward 9"}, validSubmission())
	f.submitAs(t, domain.Citizen{ID: "c19", Ward: "Ward 19"}, validSubmission())
	anon9 := f.submitAs(t, domain.Anonymous{}, anonymousSubmission("ward-9"))
	f.submitAs(t, domain.Anonymous{}, anonymousSubmission("19"))
	orphan := f.submitAs(t, domain.Citizen{ID: "ghost", Ward: "9"}, validSubmission())

	page, err := f.svc.ListFor(context.Background(), domain.WardAdmin{ID: "w9", Ward: "9"}, ComplaintListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	got := map[string]bool{}
	for _, c := range page.Items {
		got[c.ID] = true
	}
	if len(got) != 2 || !got[owned9.ID] || !got[anon9.ID] {
		t.Fatalf("expected only ward 9 complaints, got %d items", len(page.Items))
	}
	if got[orphan.ID] {
		t.Fatalf("orphaned complaint must be excluded")
	}
	if page.Items[0].ID != anon9.ID {
		t.Fatalf("expected newest first")
	}

	paged, err := f.svc.ListFor(context.Background(), domain.WardAdmin{ID: "w9", Ward: "9"}, ComplaintListFilter{Limit: 1, Offset: 1})
	if err != nil {
		t.Fatalf("paged list: %v", err)
	}
	if paged.Total != 2 || len(paged.Items) != 1 || paged.Items[0].ID != owned9.ID {
		t.Fatalf("unexpected page %+v", paged)
	}
}

func TestListForAdminFilters(t *testing.T) {
	f := newComplaintFixture()
	f.repo.addOwner("c1", "Ravi Kumar", "3")
	ravi := f.submitAs(t, domain.Citizen{ID: "c1", Ward: "3"}, validSubmission())
	asha := f.submitAs(t, domain.Anonymous{}, anonymousSubmission("Ward 3"))
	admin := domain.Admin{ID: "a1"}

	page, err := f.svc.ListFor(context.Background(), admin, ComplaintListFilter{})
	if err != nil || page.Total != 2 {
		t.Fatalf("expected all complaints, got %v %v", page, err)
	}

	page, _ = f.svc.ListFor(context.Background(), admin, ComplaintListFilter{Search: "ravi"})
	if len(page.Items) != 1 || page.Items[0].ID != ravi.ID {
		t.Fatalf("search by owner name failed")
	}
	page, _ = f.svc.ListFor(context.Background(), admin, ComplaintListFilter{Search: "ASHA"})
	if len(page.Items) != 1 || page.Items[0].ID != asha.ID {
		t.Fatalf("search by submitter name failed")
	}
	page, _ = f.svc.ListFor(context.Background(), admin, ComplaintListFilter{Category: string(domain.CategoryStreetlights)})
	if len(page.Items) != 1 || page.Items[0].ID != asha.ID {
		t.Fatalf("category filter failed")
	}
	page, _ = f.svc.ListFor(context.Background(), admin, ComplaintListFilter{Ward: " ward 3 "})
	if len(page.Items) != 1 || page.Items[0].ID != asha.ID {
		t.Fatalf("exact ward filter failed")
	}

	if _, err := f.svc.Transition(context.Background(), admin, ravi.ID, "Resolved"); err != nil {
		t.Fatalf("transition: %v", err)
	}
	page, _ = f.svc.ListFor(context.Background(), admin, ComplaintListFilter{Active: true})
	if len(page.Items) != 1 || page.Items[0].ID != asha.ID {
		t.Fatalf("active filter failed")
	}
	page, _ = f.svc.ListFor(context.Background(), admin, ComplaintListFilter{Status: "Resolved"})
	if len(page.Items) != 1 || page.Items[0].ID != ravi.ID {
		t.Fatalf("status filter failed")
	}

	if _, err := f.svc.ListFor(context.Background(), admin, ComplaintListFilter{Status: "Closed"}); !hasField(err, "status") {
		t.Fatalf("expected status validation error, got %v", err)
	}
	if _, err := f.svc.ListFor(context.Background(), domain.Anonymous{}, ComplaintListFilter{}); domainCode(err) != apperrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestListForWard(t *testing.T) {
	f := newComplaintFixture()
	c3 := f.submitAs(t, domain.Anonymous{}, anonymousSubmission("Ward 3"))
	f.submitAs(t, domain.Anonymous{}, anonymousSubmission("Ward 5"))
	ctx := context.Background()

	page, err := f.svc.ListForWard(ctx, domain.WardAdmin{ID: "w3", Ward: "3"}, "3", ComplaintListFilter{})
	if err != nil || len(page.Items) != 1 || page.Items[0].ID != c3.ID {
		t.Fatalf("ward admin listing failed: %v %v", page, err)
	}
	if _, err := f.svc.ListForWard(ctx, domain.WardAdmin{ID: "w3", Ward: "3"}, "5", ComplaintListFilter{}); domainCode(err) != apperrors.CodeForbidden {
		t.Fatalf("expected forbidden for other ward, got %v", err)
	}
	page, err = f.svc.ListForWard(ctx, domain.Admin{ID: "a1"}, "5", ComplaintListFilter{})
	if err != nil || len(page.Items) != 1 {
		t.Fatalf("admin should list any ward: %v %v", page, err)
	}
	if _, err := f.svc.ListForWard(ctx, domain.Citizen{ID: "c1", Ward: "3"}, "3", ComplaintListFilter{}); domainCode(err) != apperrors.CodeForbidden {
		t.Fatalf("expected forbidden for citizen, got %v", err)
	}
}

func TestTransitionWardScenario(t *testing.T) {
	f := newComplaintFixture()
	ctx := context.Background()
	complaint := f.submitAs(t, domain.Anonymous{}, anonymousSubmission("Ward 3"))

	_, err := f.svc.Transition(ctx, domain.WardAdmin{ID: "w5", Ward: "5"}, complaint.ID, "Resolved")
	if domainCode(err) != apperrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
	unchanged, _ := f.repo.GetByID(ctx, complaint.ID)
	if unchanged.Status != domain.StatusPending || unchanged.ResolvedAt != nil {
		t.Fatalf("status must remain pending, got %s", unchanged.Status)
	}

	updated, err := f.svc.Transition(ctx, domain.WardAdmin{ID: "w3", Ward: "3"}, complaint.ID, "Resolved")
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if updated.Status != domain.StatusResolved || updated.ResolvedAt == nil {
		t.Fatalf("expected resolved with timestamp, got %+v", updated)
	}
	if len(f.history.entries) != 1 || f.history.entries[0].OldStatus != domain.StatusPending ||
		f.history.entries[0].ChangedBy != domain.RoleWardAdmin {
		t.Fatalf("unexpected history %+v", f.history.entries)
	}

	history, err := f.svc.History(ctx, domain.WardAdmin{ID: "w3", Ward: "3"}, complaint.ID)
	if err != nil || len(history) != 1 {
		t.Fatalf("history: %v %v", history, err)
	}
	if _, err := f.svc.History(ctx, domain.Citizen{ID: "c1"}, complaint.ID); domainCode(err) != apperrors.CodeForbidden {
		t.Fatalf("citizens cannot read history, got %v", err)
	}
}

func TestTransitionStateMachine(t *testing.T) {
	admin := domain.Admin{ID: "a1"}
	wardAdmin := domain.WardAdmin{ID: "w3", Ward: "3"}

	cases := []struct {
		name   string
		caller domain.Principal
		path   []domain.ComplaintStatus
		to     string
		code   string
	}{
		{name: "pending to in progress", caller: wardAdmin, to: "In Progress"},
		{name: "pending to rejected", caller: wardAdmin, to: "Rejected"},
		{name: "in progress back to pending", caller: wardAdmin, path: []domain.ComplaintStatus{domain.StatusInProgress}, to: "Pending"},
		{name: "same status", caller: admin, to: "Pending", code: apperrors.CodeIllegalTransition},
		{name: "ward admin cannot reopen", caller: wardAdmin, path: []domain.ComplaintStatus{domain.StatusResolved}, to: "Pending", code: apperrors.CodeIllegalTransition},
		{name: "admin reopens rejected", caller: admin, path: []domain.ComplaintStatus{domain.StatusRejected}, to: "Pending"},
		{name: "resolved to rejected", caller: admin, path: []domain.ComplaintStatus{domain.StatusResolved}, to: "Rejected", code: apperrors.CodeIllegalTransition},
		{name: "unknown status", caller: admin, to: "Closed", code: apperrors.CodeValidation},
		{name: "citizen", caller: domain.Citizen{ID: "c1", Ward: "3"}, to: "Resolved", code: apperrors.CodeForbidden},
		{name: "anonymous", caller: domain.Anonymous{}, to: "Resolved", code: apperrors.CodeForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newComplaintFixture()
			ctx := context.Background()
			c := f.submitAs(t, domain.Anonymous{}, anonymousSubmission("Ward 3"))
			for _, step := range tc.path {
				if _, err := f.svc.Transition(ctx, admin, c.ID, string(step)); err != nil {
					t.Fatalf("setup transition to %s: %v", step, err)
				}
			}
			_, err := f.svc.Transition(ctx, tc.caller, c.ID, tc.to)
			if tc.code == "" {
				if err != nil {
					t.Fatalf("expected success, got %v", err)
				}
				return
			}
			if domainCode(err) != tc.code {
				t.Fatalf("expected %s, got %v", tc.code, err)
			}
		})
	}
}

func TestTransitionKeepsResolvedAt(t *testing.T) {
	f := newComplaintFixture()
	ctx := context.Background()
	admin := domain.Admin{ID: "a1"}
	c := f.submitAs(t, domain.Anonymous{}, anonymousSubmission("Ward 3"))

	first, err := f.svc.Transition(ctx, admin, c.ID, "Resolved")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	stamp := *first.ResolvedAt

	f.svc.now = func() time.Time { return baseTime.Add(72 * time.Hour) }
	for _, step := range []string{"Pending", "In Progress", "Resolved"} {
		updated, err := f.svc.Transition(ctx, admin, c.ID, step)
		if err != nil {
			t.Fatalf("transition to %s: %v", step, err)
		}
		if updated.ResolvedAt == nil || !updated.ResolvedAt.Equal(stamp) {
			t.Fatalf("resolvedAt must keep its first value, got %v", updated.ResolvedAt)
		}
	}
}

func TestTransitionNotFound(t *testing.T) {
	f := newComplaintFixture()
	for _, id := range []string{"not-a-uuid", "6f1c2b8e-7d8e-4b4a-9d6f-0a1b2c3d4e5f"} {
		if _, err := f.svc.Transition(context.Background(), domain.Admin{ID: "a1"}, id, "Resolved"); domainCode(err) != apperrors.CodeNotFound {
			t.Fatalf("expected not found for %q, got %v", id, err)
		}
	}
}

func TestRemove(t *testing.T) {
	f := newComplaintFixture()
	ctx := context.Background()
	f.repo.addOwner("c1", "Ravi", "3")
	owner := domain.Citizen{ID: "c1", Ward: "3"}
	in := validSubmission()
	in.Image = &ImageUpload{Size: int64(len(pngBytes)), Body: bytes.NewReader(pngBytes)}
	c := f.submitAs(t, owner, in)

	refused := []domain.Principal{
		domain.Citizen{ID: "c2", Ward: "3"},
		domain.WardAdmin{ID: "w3", Ward: "3"},
		domain.WardAdmin{ID: "w5", Ward: "5"},
		domain.Anonymous{},
	}
	for _, caller := range refused {
		if err := f.svc.Remove(ctx, caller, c.ID); domainCode(err) != apperrors.CodeForbidden {
			t.Fatalf("%T %+v: expected forbidden, got %v", caller, caller, err)
		}
	}
	if _, err := f.svc.Get(ctx, owner, c.ID); err != nil {
		t.Fatalf("refused remove deleted the complaint: %v", err)
	}

	if err := f.svc.Remove(ctx, owner, c.ID); err != nil {
		t.Fatalf("owner remove: %v", err)
	}
	if len(f.images.removed) != 1 {
		t.Fatalf("expected image cleanup")
	}

	other := f.submitAs(t, owner, validSubmission())
	if err := f.svc.Remove(ctx, domain.Admin{ID: "a1"}, other.ID); err != nil {
		t.Fatalf("admin remove: %v", err)
	}
	page, err := f.svc.ListFor(ctx, owner, ComplaintListFilter{})
	if err != nil || len(page.Items) != 0 {
		t.Fatalf("removed complaints still listed: %v %v", page, err)
	}
	if err := f.svc.Remove(ctx, domain.Admin{ID: "a1"}, other.ID); domainCode(err) != apperrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	last := f.events.published[len(f.events.published)-1]
	if last.Type != events.EventComplaintRemoved || last.ComplaintID != other.ID {
		t.Fatalf("expected removed event for %s, got %s %s", other.ID, last.Type, last.ComplaintID)
	}
}

func TestGetVisibility(t *testing.T) {
	f := newComplaintFixture()
	ctx := context.Background()
	f.repo.addOwner("c1", "Ravi", "Ward 7")
	c := f.submitAs(t, domain.Citizen{ID: "c1", Ward: "Ward 7"}, validSubmission())

	cases := []struct {
		caller domain.Principal
		code   string
	}{
		{caller: domain.Citizen{ID: "c1"}, code: ""},
		{caller: domain.Citizen{ID: "c2"}, code: apperrors.CodeForbidden},
		{caller: domain.WardAdmin{ID: "w7", Ward: "7"}, code: ""},
		{caller: domain.WardAdmin{ID: "w17", Ward: "17"}, code: apperrors.CodeForbidden},
		{caller: domain.Admin{ID: "a1"}, code: ""},
		{caller: domain.Anonymous{}, code: apperrors.CodeUnauthorized},
	}
	for _, tc := range cases {
		_, err := f.svc.Get(ctx, tc.caller, c.ID)
		if domainCode(err) != tc.code {
			t.Fatalf("%T %+v: expected %q, got %v", tc.caller, tc.caller, tc.code, err)
		}
	}
}

func TestWindow(t *testing.T) {
	items := []int{1, 2, 3, 4}
	if got := window(items, 2, 1); len(got) != 2 || got[0] != 2 {
		t.Fatalf("unexpected window %v", got)
	}
	if got := window(items, 0, 0); len(got) != 4 {
		t.Fatalf("zero limit should return everything, got %v", got)
	}
	if got := window(items, 2, 10); len(got) != 0 {
		t.Fatalf("offset past end should be empty, got %v", got)
	}
}
