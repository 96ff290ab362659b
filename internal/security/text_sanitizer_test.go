package security

import "testing"

// TestTextSanitizer_StripsMarkup はHTMLマークアップが除去されることを検証する。
func TestTextSanitizer_StripsMarkup(t *testing.T) {
	s := NewTextSanitizer()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text", "眠りが浅かった", "眠りが浅かった"},
		{"script tag", `<script>alert("xss")</script>散歩`, "散歩"},
		{"inline markup", "<b>headache</b>, nausea", "headache, nausea"},
		{"anchor", `<a href="https://evil.example">walk</a>`, "walk"},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
		{"surrounding whitespace", "  jogging  ", "jogging"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Sanitize(tt.input); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestTextSanitizer_Idempotent は同一入力に対して常に同一出力を返すことを検証する。
func TestTextSanitizer_Idempotent(t *testing.T) {
	s := NewTextSanitizer()

	input := `<img src="x" onerror="alert(1)">fatigue, insomnia`
	first := s.Sanitize(input)
	second := s.Sanitize(first)

	if first != second {
		t.Errorf("not idempotent: first = %q, second = %q", first, second)
	}
}
