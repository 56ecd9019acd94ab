package provider

import "testing"

func TestStripThinking(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "no thinking tags",
			input: "The iris dataset has 150 rows.",
			want:  "The iris dataset has 150 rows.",
		},
		{
			name:  "leading thinking block",
			input: "<thinking>I should check the columns first.</thinking>\n\nThe dataset has 5 columns.",
			want:  "The dataset has 5 columns.",
		},
		{
			name:  "thinking only",
			input: "<thinking>nothing to say</thinking>",
			want:  "",
		},
		{
			name:  "multiline thinking",
			input: "<thinking>line one\nline two</thinking>\nAnswer.",
			want:  "Answer.",
		},
		{
			name:  "multiple blocks",
			input: "<thinking>a</thinking>first<thinking>b</thinking> second",
			want:  "first second",
		},
		{
			name:  "surrounding whitespace trimmed",
			input: "  padded  ",
			want:  "padded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripThinking(tt.input); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
