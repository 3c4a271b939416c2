// Content blocks carried by messages
package llm

import "strings"

// ContentType identifies the kind of a content block
type ContentType string

const (
	ContentTypeText ContentType = "text"
)

// ContentBlock is a single block of message content
type ContentBlock struct {
	Type ContentType `json:"type"`
	Text string      `json:"text"`
}

// NewTextContent creates a text content block
func NewTextContent(text string) ContentBlock {
	return ContentBlock{Type: ContentTypeText, Text: text}
}

// IsText checks if the block holds text
func (c ContentBlock) IsText() bool {
	return c.Type == ContentTypeText
}

// joinText concatenates the text of every text block
func joinText(blocks []ContentBlock) string {
	var sb strings.Builder
	for _, block := range blocks {
		if block.IsText() {
			sb.WriteString(block.Text)
		}
	}
	return sb.String()
}
