package domain

import (
	"strconv"
	"strings"
)

// WardToken extracts the numeric ward number from labels such as "9",
// "Ward 9" or "ward-09". ok is false when the label carries no digits.
func WardToken(label string) (token string, ok bool) {
	runs := digitRuns(label)
	if len(runs) == 0 {
		return "", false
	}
	return runs[0], true
}

// WardMatches reports whether complaintWard belongs to the ward named by
// adminWard. The admin's ward number must appear in complaintWard as a whole
// digit run, so "9" matches "Ward 9" but not "Ward 19". Labels without digits
// compare case-insensitively after trimming.
func WardMatches(adminWard, complaintWard string) bool {
	token, ok := WardToken(adminWard)
	if !ok {
		a := strings.TrimSpace(adminWard)
		return a != "" && strings.EqualFold(a, strings.TrimSpace(complaintWard))
	}
	for _, run := range digitRuns(complaintWard) {
		if run == token {
			return true
		}
	}
	return false
}

// digitRuns returns maximal runs of ASCII digits, normalized without leading zeros.
func digitRuns(s string) []string {
	var runs []string
	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		runs = append(runs, normalizeNumber(s[start:end]))
		start = -1
	}
	for i, r := range s {
		if r >= '0' && r <= '9' {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
	}
	flush(len(s))
	return runs
}

func normalizeNumber(digits string) string {
	n, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return strings.TrimLeft(digits, "0")
	}
	return strconv.FormatUint(n, 10)
}
