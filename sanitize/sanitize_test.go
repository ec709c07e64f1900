package sanitize

import (
	"strings"
	"testing"
	"time"
)

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain text untouched",
			input: "Build a thing",
			want:  "Build a thing",
		},
		{
			name:  "br becomes newline",
			input: "first<br>second",
			want:  "first\nsecond",
		},
		{
			name:  "self-closing br",
			input: "first<br />second",
			want:  "first\nsecond",
		},
		{
			name:  "block closers become newlines",
			input: "<p>one</p><div>two</div><li>three</li>",
			want:  "one\ntwo\nthree",
		},
		{
			name:  "inline tags dropped",
			input: "ship a <strong>real</strong> project",
			want:  "ship a real project",
		},
		{
			name:  "entities decoded",
			input: "caf&eacute; &amp; friends",
			want:  "café & friends",
		},
		{
			name:  "whitespace runs collapse",
			input: "too     much\t\tspace",
			want:  "too much space",
		},
		{
			name:  "blank lines dropped",
			input: "<p>one</p>\n\n\n<p>two</p>",
			want:  "one\ntwo",
		},
		{
			name:  "deadline markup example",
			input: "<strong>Deadline:</strong> March 5, 2025<br>Apply now",
			want:  "Deadline: March 5, 2025\nApply now",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripHTML(tt.input); got != tt.want {
				t.Errorf("StripHTML(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestExtractDeadline(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "basic pattern",
			input: "<strong>Deadline:</strong> March 5, 2025<br>Apply now",
			want:  "March 5, 2025",
		},
		{
			name:  "case insensitive label",
			input: "<strong>deadline:</strong> soon",
			want:  "soon",
		},
		{
			name:  "whitespace around label",
			input: "<strong> Deadline: </strong>  June 1",
			want:  "June 1",
		},
		{
			name:  "stops at next tag",
			input: "<strong>Deadline:</strong> June 1 <em>maybe</em>",
			want:  "June 1",
		},
		{
			name:  "no deadline label",
			input: "<strong>Prizes:</strong> stickers",
			want:  "",
		},
		{
			name:  "no markup at all",
			input: "Deadline: March 5",
			want:  "",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractDeadline(tt.input); got != tt.want {
				t.Errorf("ExtractDeadline(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCleanLinkURL(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"https://hackclub.slack.com/archives/C123", "https://hackclub.slack.com/archives/C123"},
		{"http://example.com", "http://example.com"},
		{"  https://example.com  ", "https://example.com"},
		{"undefined", ""},
		{"null", ""},
		{"", ""},
		{"   ", ""},
		{"#general", ""},
		{"slack.com/archives", ""},
		{"ftp://example.com", ""},
		{"javascript:alert(1)", ""},
	}

	for _, tt := range tests {
		if got := CleanLinkURL(tt.input); got != tt.want {
			t.Errorf("CleanLinkURL(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestClassifyBoundaries(t *testing.T) {
	// Truncate so the RFC 3339 round trip through the parser is exact
	now := time.Now().UTC().Truncate(time.Second)

	tests := []struct {
		name     string
		deadline string
		want     DeadlineKind
	}{
		{"one second past", now.Add(-time.Second).Format(time.RFC3339), DeadlineExpired},
		{"six days out", now.Add(6 * 24 * time.Hour).Format(time.RFC3339), DeadlineSoon},
		{"exactly seven days out", now.Add(7 * 24 * time.Hour).Format(time.RFC3339), DeadlineUpcoming},
		{"eight days out", now.Add(8 * 24 * time.Hour).Format(time.RFC3339), DeadlineUpcoming},
		{"unparseable", "when it's done", DeadlineRaw},
		{"empty", "", DeadlineNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, text := Classify(tt.deadline, now)
			if kind != tt.want {
				t.Errorf("Classify(%q) kind = %d, want %d", tt.deadline, kind, tt.want)
			}
			if tt.want == DeadlineRaw && text != tt.deadline {
				t.Errorf("Classify(%q) raw text = %q, want verbatim input", tt.deadline, text)
			}
			if tt.want == DeadlineNone && text != "" {
				t.Errorf("Classify(%q) text = %q, want empty", tt.deadline, text)
			}
		})
	}
}

func TestFormatDeadline(t *testing.T) {
	if got := FormatDeadline(""); got != "No deadline" {
		t.Errorf("FormatDeadline(\"\") = %q, want \"No deadline\"", got)
	}

	if got := FormatDeadline("tbd, check the channel"); got != "tbd, check the channel" {
		t.Errorf("FormatDeadline() should return unparseable input verbatim, got %q", got)
	}

	got := FormatDeadline("2025-03-05")
	if !strings.Contains(got, "Mar 5, 2025") {
		t.Errorf("FormatDeadline(\"2025-03-05\") = %q, want a formatted date", got)
	}
}
