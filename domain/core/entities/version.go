package entities

import (
	"time"

	"snipgraph-backend/domain/core/valueobjects"

	"github.com/google/uuid"
)

// VersionRecord is an immutable snapshot of one historical state of a
// snippet, written on every create and content/title update and only ever
// deleted when the owning snippet is deleted.
type VersionRecord struct {
	ID        string
	SnippetID valueobjects.SnippetID
	Version   int
	Title     string
	Text      string
	Fields    map[string]string
	ImageURL  string
	VideoURL  string
	UserID    string
	CreatedAt time.Time
}

// NewVersionRecord snapshots the snippet's current state
func NewVersionRecord(s *Snippet) *VersionRecord {
	content := s.Content()
	return &VersionRecord{
		ID:        uuid.New().String(),
		SnippetID: s.ID(),
		Version:   s.Version(),
		Title:     s.Title(),
		Text:      content.Text(),
		Fields:    content.Fields(),
		ImageURL:  content.Image().URL,
		VideoURL:  content.Video().URL,
		UserID:    s.UserID(),
		CreatedAt: time.Now(),
	}
}
