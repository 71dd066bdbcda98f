package ai

import (
	"strings"
	"testing"
)

func TestBuildCanvasPromptQueryOnly(t *testing.T) {
	got := BuildCanvasPrompt("summarize the risks", "", "")

	if !strings.Contains(got, "User Query: summarize the risks") {
		t.Errorf("prompt missing query: %q", got)
	}
	if strings.Contains(got, "Selected text") {
		t.Error("prompt should not mention selected text without context")
	}
}

func TestBuildCanvasPromptWithContext(t *testing.T) {
	context := "## Historical Background\n\nSome prose.\n\n### Details\nMore prose."
	got := BuildCanvasPrompt("expand this section", context, "")

	if !strings.Contains(got, context) {
		t.Error("prompt should embed the selected context")
	}
	if !strings.Contains(got, "## Historical Background") || !strings.Contains(got, "heading levels") {
		t.Error("prompt should echo observed heading levels")
	}
}

func TestBuildCanvasPromptHeadingHintCap(t *testing.T) {
	context := "# a\n## b\n### c\n#### d\n##### e"
	got := BuildCanvasPrompt("q", context, "")

	if strings.Contains(got, "#### d, ##### e") {
		t.Error("heading hints should be capped")
	}
	if !strings.Contains(got, "# a, ## b, ### c") {
		t.Errorf("first three headings should be listed: %q", got)
	}
}

func TestBuildCanvasPromptWithCanvas(t *testing.T) {
	got := BuildCanvasPrompt("q", "", "# Existing Doc\nbody")

	if !strings.Contains(got, "Existing canvas content") {
		t.Error("prompt should carry canvas content")
	}
	if !strings.Contains(got, "appended to the document") {
		t.Error("prompt should state append semantics")
	}
}

func TestFormatWithAttachmentsPassThrough(t *testing.T) {
	if got := FormatWithAttachments("hello", nil); got != "hello" {
		t.Errorf("got %q, want pass-through", got)
	}
}

func TestFormatWithAttachments(t *testing.T) {
	docs := []Attachment{
		{Filename: "rfp.docx", FileType: ".docx", ExtractedText: "scope text"},
		{Filename: "notes.md", FileType: ".md", ExtractedText: "notes text"},
	}
	got := FormatWithAttachments("what is the scope?", docs)

	for _, want := range []string{
		"[Document: rfp.docx (.docx)]",
		"scope text",
		"[Document: notes.md (.md)]",
		"[User Message]\nwhat is the scope?",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("formatted message missing %q", want)
		}
	}
}

func TestCallDefaultsResolve(t *testing.T) {
	d := callDefaults{model: "m-default", maxTokens: 500, temperature: 0.7}

	got := d.resolve(Request{Prompt: "p"})
	if got.Model != "m-default" || got.MaxTokens != 500 || got.Temperature != 0.7 {
		t.Errorf("resolve() = %+v, want defaults applied", got)
	}

	got = d.resolve(Request{Prompt: "p", Model: "m-override", MaxTokens: 9, Temperature: 0.1})
	if got.Model != "m-override" || got.MaxTokens != 9 || got.Temperature != 0.1 {
		t.Errorf("resolve() = %+v, want overrides kept", got)
	}
}
