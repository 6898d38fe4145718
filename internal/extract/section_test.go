package extract

import "testing"

func TestExtractSection(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"keyword with dotted number", "Section 4.2 Confidentiality applies to all information.", "Section 4.2"},
		{"leading dotted number", "4.1 Termination of this agreement may occur at any time.", "Section 4.1"},
		{"no header", "This clause has no header", ""},
		{"article keyword", "Pursuant to ARTICLE 7 the parties agree to arbitrate.", "Section 7"},
		{"clause keyword", "As set out in clause 12.3.1, fees are payable monthly.", "Section 12.3.1"},
		{"keyword anywhere", "The obligations in section 9 survive termination.", "Section 9"},
		{"numbered heading", "7. Governing Law. This Agreement is governed by Delaware law.", "Section 7"},
		{"numbered heading lowercase word", "7. governing law applies.", ""},
		{"single number without period", "7 Governing Law", ""},
		{"number not at start", "See 4.1 above for details.", ""},
		{"keyword beats leading number", "3.2 Subject to Section 8.1, either party may terminate.", "Section 8.1"},
		{"keyword without number", "Section headings are for convenience only.", ""},
		{"leading number on later line only", "Preamble text\n4.1 Termination", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractSection(tt.text); got != tt.want {
				t.Errorf("ExtractSection(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}
