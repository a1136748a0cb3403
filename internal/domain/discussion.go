package domain

import "time"

// DiscussionLanguage is the language tag of a forum post.
type DiscussionLanguage string

// DiscussionLanguages lists the supported tags.
var DiscussionLanguages = []DiscussionLanguage{"en", "hi", "mr", "ta", "bn", "gu", "te", "kn", "ml", "or"}

// DefaultDiscussionLanguage is used when a post does not name one.
const DefaultDiscussionLanguage DiscussionLanguage = "en"

func (l DiscussionLanguage) Valid() bool {
	for _, known := range DiscussionLanguages {
		if l == known {
			return true
		}
	}
	return false
}

// DiscussionPost is a community forum message.
type DiscussionPost struct {
	ID         string
	Message    string
	Language   DiscussionLanguage
	AuthorID   string
	AuthorName string
	AuthorWard string
	LikedBy    []string
	CreatedAt  time.Time
}

// LikedByUser reports whether userID is in the like set.
func (p *DiscussionPost) LikedByUser(userID string) bool {
	for _, id := range p.LikedBy {
		if id == userID {
			return true
		}
	}
	return false
}
