package valueobjects

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"snipgraph-backend/domain/config"
	pkgerrors "snipgraph-backend/pkg/errors"
)

// MediaRef points at generated media attached to a snippet. The engine never
// produces media itself; references are pass-through from the generation
// layer.
type MediaRef struct {
	URL      string
	MimeType string
	Width    int
	Height   int
}

// IsZero checks if the reference is empty
func (m MediaRef) IsZero() bool {
	return m.URL == ""
}

// SnippetContent is a value object for snippet content. A snippet carries
// either a single free-text body or a set of named fields, plus optional
// image/video references.
type SnippetContent struct {
	text   string
	fields map[string]string
	image  MediaRef
	video  MediaRef
}

// NewSnippetContent creates content with validation using default configuration
func NewSnippetContent(text string, fields map[string]string) (SnippetContent, error) {
	return NewSnippetContentWithConfig(text, fields, config.DefaultDomainConfig())
}

// NewSnippetContentWithConfig creates content with validation and configuration
func NewSnippetContentWithConfig(text string, fields map[string]string, cfg *config.DomainConfig) (SnippetContent, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	text = strings.TrimSpace(text)

	if utf8.RuneCountInString(text) > cfg.MaxTextLength {
		return SnippetContent{}, fmt.Errorf("text exceeds maximum length of %d characters", cfg.MaxTextLength)
	}

	if text != "" && len(fields) > 0 {
		return SnippetContent{}, pkgerrors.NewValidationError("content is either free text or named fields, not both")
	}

	cleaned := make(map[string]string, len(fields))
	for name, value := range fields {
		name = strings.TrimSpace(name)
		if name == "" {
			return SnippetContent{}, pkgerrors.NewValidationError("field name cannot be empty")
		}
		if utf8.RuneCountInString(value) > cfg.MaxTextLength {
			return SnippetContent{}, fmt.Errorf("field %q exceeds maximum length of %d characters", name, cfg.MaxTextLength)
		}
		cleaned[name] = value
	}

	return SnippetContent{text: text, fields: cleaned}, nil
}

// WithImage returns a copy of the content with an image reference attached
func (c SnippetContent) WithImage(ref MediaRef) SnippetContent {
	c.image = ref
	return c
}

// WithVideo returns a copy of the content with a video reference attached
func (c SnippetContent) WithVideo(ref MediaRef) SnippetContent {
	c.video = ref
	return c
}

// WithText returns a copy of the content with the text replaced
func (c SnippetContent) WithText(text string) SnippetContent {
	c.text = strings.TrimSpace(text)
	return c
}

// Text returns the free-text body
func (c SnippetContent) Text() string {
	return c.text
}

// Fields returns a copy of the named fields
func (c SnippetContent) Fields() map[string]string {
	out := make(map[string]string, len(c.fields))
	for k, v := range c.fields {
		out[k] = v
	}
	return out
}

// Image returns the attached image reference
func (c SnippetContent) Image() MediaRef {
	return c.image
}

// Video returns the attached video reference
func (c SnippetContent) Video() MediaRef {
	return c.video
}

// IsEmpty checks if the content carries neither text, fields, nor media
func (c SnippetContent) IsEmpty() bool {
	return c.text == "" && len(c.fields) == 0 && c.image.IsZero() && c.video.IsZero()
}

// HasText checks whether the snippet contributes text to propagation
func (c SnippetContent) HasText() bool {
	return strings.TrimSpace(c.text) != ""
}

// Equals checks if two contents are equal
func (c SnippetContent) Equals(other SnippetContent) bool {
	if c.text != other.text || c.image != other.image || c.video != other.video {
		return false
	}
	if len(c.fields) != len(other.fields) {
		return false
	}
	for k, v := range c.fields {
		if other.fields[k] != v {
			return false
		}
	}
	return true
}
