package llm

import "testing"

func TestNormalizeReply(t *testing.T) {
	const obj = `{"date":"2025-01-15","liters":40}`

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: obj, want: obj},
		{name: "surrounding whitespace", in: "\n\t " + obj + "  \n", want: obj},
		{name: "json fence", in: "```json\n" + obj + "\n```", want: obj},
		{name: "bare fence", in: "```\n" + obj + "\n```", want: obj},
		{name: "uppercase tag", in: "```JSON\n" + obj + "\n```", want: obj},
		{name: "single line fence", in: "```json " + obj + "```", want: obj},
		{name: "crlf fence", in: "```json\r\n" + obj + "\r\n```\r\n", want: obj},
		{name: "fence without tag on same line", in: "```" + obj + "```", want: obj},
		{name: "empty", in: "   ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeReply(tt.in); got != tt.want {
				t.Errorf("NormalizeReply(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
