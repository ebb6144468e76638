package models

// PartKind discriminates the two content part variants sent to the model.
type PartKind string

const (
	PartText   PartKind = "text"
	PartBinary PartKind = "binary"
)

// ContentPart is one element of the ordered input assembled per request.
// Text parts carry Text; binary parts carry a MIME type and base64 data.
// Parts are request-scoped and never persisted.
type ContentPart struct {
	Kind     PartKind
	Text     string
	MIMEType string
	Data     string
}

// TextPart builds a plain text content part.
func TextPart(text string) ContentPart {
	return ContentPart{Kind: PartText, Text: text}
}

// BinaryPart builds a base64-encoded binary content part.
func BinaryPart(mimeType, data string) ContentPart {
	return ContentPart{Kind: PartBinary, MIMEType: mimeType, Data: data}
}
