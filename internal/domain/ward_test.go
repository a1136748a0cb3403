package domain

import "testing"

func TestWardMatches(t *testing.T) {
	cases := []struct {
		admin     string
		complaint string
		want      bool
	}{
		{"9", "Ward 9", true},
		{"9", "ward 9", true},
		{"9", "WARD-9", true},
		{"9", "Ward9", true},
		{"Ward 9", "9", true},
		{"09", "Ward 9", true},
		{"9", "19", false},
		{"9", "Ward 19", false},
		{"9", "Ward 90", false},
		{"19", "Ward 9", false},
		{"3", "Ward 3, Sector 12", true},
		{"12", "Ward 3, Sector 12", true},
		{"9", "", false},
		{"9", "Not specified", false},
		{"All", "all", true},
		{"All", "Ward 1", false},
		{"", "", false},
	}
	for _, tc := range cases {
		if got := WardMatches(tc.admin, tc.complaint); got != tc.want {
			t.Fatalf("WardMatches(%q, %q) = %v, want %v", tc.admin, tc.complaint, got, tc.want)
		}
	}
}

func TestWardToken(t *testing.T) {
	if token, ok := WardToken("Ward 007"); !ok || token != "7" {
		t.Fatalf("expected token 7, got %q (ok=%v)", token, ok)
	}
	if _, ok := WardToken("Admin Ward"); ok {
		t.Fatal("expected no token for label without digits")
	}
}

func TestResolvedWard(t *testing.T) {
	owner := "u1"
	orphan := Complaint{OwnerID: &owner, Ward: "Ward 4"}
	if _, ok := orphan.ResolvedWard(); ok {
		t.Fatal("orphaned owner reference must not resolve")
	}

	owned := Complaint{OwnerID: &owner, Ward: "Ward 4", Owner: &ComplaintOwner{ID: owner, Ward: "Ward 5"}}
	if ward, ok := owned.ResolvedWard(); !ok || ward != "Ward 5" {
		t.Fatalf("expected owner ward, got %q", ward)
	}

	public := Complaint{IsPublic: true, Ward: "Ward 3"}
	if ward, ok := public.ResolvedWard(); !ok || ward != "Ward 3" {
		t.Fatalf("expected captured ward, got %q", ward)
	}
}

func TestUserPrincipal(t *testing.T) {
	if _, ok := (&User{ID: "a", Role: RoleAdmin}).Principal().(Admin); !ok {
		t.Fatal("admin user must map to Admin principal")
	}
	wa, ok := (&User{ID: "w", Role: RoleWardAdmin, Ward: "3"}).Principal().(WardAdmin)
	if !ok || wa.Ward != "3" {
		t.Fatal("ward admin user must carry ward")
	}
	if _, ok := (*User)(nil).Principal().(Anonymous); !ok {
		t.Fatal("nil user must be anonymous")
	}
}
