package ai

import (
	"fmt"
	"strings"
	"time"
)

// CanvasSystemPrompt steers canvas-append responses: new content only, with
// the heading structure of the selected text preserved so the reply slots
// into the document hierarchy.
const CanvasSystemPrompt = `You are a helpful AI assistant that provides well-formatted responses based on selected text context.

CRITICAL RULES:
- NEVER repeat or reproduce the existing canvas content
- ONLY provide NEW content that directly responds to the user's query
- Your response will be APPENDED to existing content, so don't duplicate anything

HEADING & STRUCTURE PRESERVATION:
- ALWAYS preserve the exact heading levels from the selected text (# = H1, ## = H2, ### = H3, etc.)
- Respect the hierarchical structure: if selected text uses ###, continue with ### or ####, never jump to ##
- Keep the same heading style and formatting as the source material

FORMATTING REQUIREMENTS:
- Respond in clean markdown that matches the document's heading structure
- Use bullet points (-) or numbered lists (1.) when they appear in the source
- Use **bold** for emphasis exactly as shown in the source material

RESPONSE GUIDELINES:
1. Analyze the heading structure of the selected text first
2. Focus ONLY on the user's specific query about the selected text
3. Maintain the EXACT same heading levels and formatting style
4. Do not repeat any existing content from the document`

// maxHeadingHints caps how many observed headings are echoed back in the
// prompt.
const maxHeadingHints = 3

// BuildCanvasPrompt assembles the user prompt for a canvas chat turn from
// the query, the selected context, and the full canvas content.
func BuildCanvasPrompt(query, context, canvasContent string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "User Query: %s\n", query)

	if context != "" {
		fmt.Fprintf(&b, "\nSelected text to analyze (PRESERVE the heading structure shown below):\n%s\n", context)

		if headings := extractHeadings(context); len(headings) > 0 {
			fmt.Fprintf(&b,
				"\nIMPORTANT: The selected text uses these heading levels: %s... Continue using the SAME heading levels in your response.\n",
				strings.Join(headings, ", "))
		}
	}

	if canvasContent != "" {
		fmt.Fprintf(&b, "\nExisting canvas content (do NOT repeat any of it):\n%s\n", canvasContent)
	}

	b.WriteString("\nProvide ONLY a direct response to the query about the selected text. " +
		"PRESERVE the exact heading structure and formatting from the selected text. " +
		"Do not repeat the selected text or any existing content. " +
		"Your response will be appended to the document.")

	return b.String()
}

// extractHeadings returns up to maxHeadingHints markdown heading lines from
// the text, in order.
func extractHeadings(text string) []string {
	var headings []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "#") {
			headings = append(headings, line)
			if len(headings) == maxHeadingHints {
				break
			}
		}
	}
	return headings
}

// Attachment is an uploaded document offered as chat context.
type Attachment struct {
	Filename      string    `json:"filename"`
	FileType      string    `json:"file_type"`
	FileSize      int       `json:"file_size"`
	ExtractedText string    `json:"extracted_text"`
	UploadedAt    time.Time `json:"upload_timestamp"`
}

// FormatWithAttachments prepends document context to a user message. With
// no attachments the message passes through unchanged.
func FormatWithAttachments(message string, docs []Attachment) string {
	if len(docs) == 0 {
		return message
	}

	var b strings.Builder
	b.WriteString("Context from uploaded documents:\n")
	for _, doc := range docs {
		fmt.Fprintf(&b, "\n[Document: %s (%s)]\n%s\n", doc.Filename, doc.FileType, doc.ExtractedText)
	}
	fmt.Fprintf(&b, "\n[User Message]\n%s", message)
	return b.String()
}
