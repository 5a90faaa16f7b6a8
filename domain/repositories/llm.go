package repositories

import "context"

// Part is one element of a generation prompt: either text or inline bytes
type Part struct {
	Text     string
	Data     []byte
	MIMEType string
}

// TextPart builds a text prompt part
func TextPart(text string) Part {
	return Part{Text: text}
}

// InlinePart builds an inline binary prompt part such as audio
func InlinePart(data []byte, mimeType string) Part {
	return Part{Data: data, MIMEType: mimeType}
}

// IsInline reports whether the part carries binary data
func (p Part) IsInline() bool {
	return len(p.Data) > 0
}

// Generator abstracts the language-generation backend
type Generator interface {
	// Generate returns the backend's raw text output for the prompt parts
	Generate(ctx context.Context, parts []Part, systemInstruction string) (string, error)
}
