package notify

import (
	"strings"
	"testing"
)

func TestSplitMessageRespectsLimit(t *testing.T) {
	var builder strings.Builder
	builder.WriteString(strings.Repeat("a", 3000))
	builder.WriteString("\n\n")
	builder.WriteString(strings.Repeat("b", 2000))
	builder.WriteString("\n")
	builder.WriteString(strings.Repeat("c", 500))

	parts := splitMessage(builder.String())
	if len(parts) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(parts))
	}

	for i, part := range parts {
		if length := len([]rune(part)); length > messageLimit {
			t.Fatalf("part %d exceeds limit: %d", i, length)
		}
	}

	if parts[0] != strings.Repeat("a", 3000) {
		t.Fatalf("unexpected content in first part")
	}

	if !strings.HasSuffix(parts[1], strings.Repeat("c", 500)) {
		t.Fatalf("second part should contain trailing block of 'c'")
	}
}

func TestSplitMessageShortText(t *testing.T) {
	text := "hello world"
	parts := splitMessage(text)
	if len(parts) != 1 {
		t.Fatalf("expected single part, got %d", len(parts))
	}
	if parts[0] != text {
		t.Fatalf("unexpected text: %q", parts[0])
	}
}

func TestSplitMessageEmpty(t *testing.T) {
	parts := splitMessage("   \n  ")
	if len(parts) != 0 {
		t.Fatalf("expected no parts for empty input, got %d", len(parts))
	}
}

func TestSplitMessageKeepsSectionsIntact(t *testing.T) {
	first := strings.Repeat("a", 3000)
	second := strings.Repeat("b", 3000)
	parts := splitMessage(first + "\n\n" + second)
	if len(parts) != 2 {
		t.Fatalf("expected a cut on the section boundary, got %d parts", len(parts))
	}
	if parts[0] != first || parts[1] != second {
		t.Fatalf("sections should survive the split unchanged")
	}
}

func TestSplitMessagePacksSmallSections(t *testing.T) {
	parts := splitMessage(strings.Repeat("a", 4090) + "\n\n" + "short one" + "\n\n" + "short two")
	if len(parts) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(parts))
	}
	if parts[1] != "short one\n\nshort two" {
		t.Fatalf("small sections should share a message, got %q", parts[1])
	}
}

func TestSplitMessageHardBreakWithoutNewlines(t *testing.T) {
	parts := splitMessage(strings.Repeat("x", messageLimit+100))
	if len(parts) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(parts))
	}
	if len([]rune(parts[0])) != messageLimit {
		t.Fatalf("first part should be cut at the limit, got %d", len([]rune(parts[0])))
	}
}
