package extract

import (
	"strings"
	"testing"
)

const (
	longA = "The receiving party shall hold all Confidential Information in strict confidence."
	longB = "Either party may terminate this Agreement upon thirty days prior written notice."
	short = "Too short to matter."
)

func TestSegment_BlankLineSplit(t *testing.T) {
	text := longA + "\n\n" + short + "\n\n   " + longB + "   \n\n"

	paragraphs := Segment(text)
	if len(paragraphs) != 2 {
		t.Fatalf("Expected 2 paragraphs, got %d", len(paragraphs))
	}
	if paragraphs[0].Text != longA || paragraphs[1].Text != longB {
		t.Errorf("Unexpected paragraph texts: %q, %q", paragraphs[0].Text, paragraphs[1].Text)
	}
	for i, p := range paragraphs {
		if p.Index != i {
			t.Errorf("Expected index %d, got %d", i, p.Index)
		}
	}
}

func TestSegment_EmptyAndDegenerate(t *testing.T) {
	cases := []string{
		"",
		"   \n\n  \n",
		short,
		short + "\n\n" + short + "\n" + short,
	}
	for _, text := range cases {
		if got := Segment(text); got != nil {
			t.Errorf("Segment(%q) = %+v, expected nil", text, got)
		}
	}
}

func TestSegment_LengthBoundary(t *testing.T) {
	exactly50 := strings.Repeat("a", 50)
	exactly51 := strings.Repeat("b", 51)

	paragraphs := Segment(exactly50 + "\n\n" + exactly51)
	if len(paragraphs) != 1 || paragraphs[0].Text != exactly51 {
		t.Fatalf("Expected only the 51-rune paragraph, got %+v", paragraphs)
	}
}

func TestSegment_CountsRunesNotBytes(t *testing.T) {
	// 30 two-byte runes: 60 bytes but only 30 runes
	accented := strings.Repeat("é", 30)
	if got := Segment(accented); got != nil {
		t.Errorf("Expected nil for 30-rune text, got %+v", got)
	}
}

func TestSegment_CRLF(t *testing.T) {
	text := longA + "\r\n\r\n" + longB
	paragraphs := Segment(text)
	if len(paragraphs) != 2 {
		t.Fatalf("Expected 2 paragraphs from CRLF text, got %d", len(paragraphs))
	}
	if strings.Contains(paragraphs[0].Text, "\r") {
		t.Error("Expected carriage returns to be removed")
	}
}

func TestSegment_MultiLineBlockStaysWhole(t *testing.T) {
	// A blank-line block containing long lines is kept whole; the
	// single-newline pass only runs when no blank-line block qualifies.
	text := longA + "\n" + longB
	got := Segment(text)
	if len(got) != 1 || got[0].Text != text {
		t.Fatalf("Expected a single multi-line paragraph, got %+v", got)
	}
}
