// Package sanitize cleans up catalog markup: stripping tags from rich-text
// descriptions, extracting and classifying deadlines, and validating link
// URLs before they are rendered anywhere.
package sanitize

import (
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
	"golang.org/x/net/html"
)

// soonWindow is how far out a deadline still counts as urgent.
// The boundary is exclusive: a deadline exactly soonWindow away is not urgent.
const soonWindow = 7 * 24 * time.Hour

// deadlineLayout is the display format for parsed deadlines.
const deadlineLayout = "Mon, Jan 2, 2006 3:04 PM MST"

// blockTags are elements whose closing tag implies a line break.
var blockTags = map[string]bool{
	"p": true, "div": true, "li": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// StripHTML removes markup from a string, preserving text content only.
// Line-break and block-closing tags become newlines, entities are decoded,
// whitespace runs collapse to single spaces, and blank lines are dropped.
func StripHTML(s string) string {
	if s == "" {
		return ""
	}

	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return collapseLines(b.String())
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			if string(name) == "br" {
				b.WriteByte('\n')
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if blockTags[string(name)] {
				b.WriteByte('\n')
			}
		}
	}
}

func collapseLines(s string) string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// ExtractDeadline looks for a bolded "Deadline:" label inside raw
// description markup and returns the inline text that follows it, up to the
// next tag or line break. Returns "" when no deadline is found.
func ExtractDeadline(description string) string {
	if description == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(description))
	if err != nil {
		return ""
	}

	var deadline string
	doc.Find("strong").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if !strings.EqualFold(strings.TrimSpace(sel.Text()), "Deadline:") {
			return true
		}
		node := sel.Nodes[0].NextSibling
		if node == nil || node.Type != html.TextNode {
			return true
		}
		text := node.Data
		if i := strings.IndexByte(text, '\n'); i >= 0 {
			text = text[:i]
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return true
		}
		deadline = text
		return false
	})

	return deadline
}

// CleanLinkURL validates an optional link value. Catalog data sometimes
// carries the literal strings "undefined" or "null" where a link is absent;
// those and anything that is not an absolute http(s) URL come back empty.
func CleanLinkURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	switch trimmed {
	case "", "undefined", "null":
		return ""
	}

	u, err := url.Parse(trimmed)
	if err != nil || !u.IsAbs() {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}

	return trimmed
}

// DeadlineKind classifies a deadline relative to now.
type DeadlineKind int

const (
	// DeadlineNone means no deadline is present.
	DeadlineNone DeadlineKind = iota
	// DeadlineExpired means the deadline is in the past.
	DeadlineExpired
	// DeadlineSoon means the deadline is within the urgency window.
	DeadlineSoon
	// DeadlineUpcoming means the deadline is beyond the urgency window.
	DeadlineUpcoming
	// DeadlineRaw means the deadline did not parse as a date and should be
	// displayed verbatim without urgency styling.
	DeadlineRaw
)

// Classify parses a free-form deadline string and classifies it against
// now. The returned text is the formatted date, or the verbatim input for
// DeadlineRaw, or "" for DeadlineNone.
func Classify(deadline string, now time.Time) (DeadlineKind, string) {
	if strings.TrimSpace(deadline) == "" {
		return DeadlineNone, ""
	}

	t, err := dateparse.ParseAny(deadline)
	if err != nil {
		return DeadlineRaw, deadline
	}

	formatted := t.Format(deadlineLayout)
	switch {
	case t.Before(now):
		return DeadlineExpired, formatted
	case t.After(now) && t.Before(now.Add(soonWindow)):
		return DeadlineSoon, formatted
	default:
		return DeadlineUpcoming, formatted
	}
}

// FormatDeadline renders a free-form deadline string for display. An empty
// deadline reads "No deadline" and an unparseable one is shown verbatim.
func FormatDeadline(deadline string) string {
	if strings.TrimSpace(deadline) == "" {
		return "No deadline"
	}
	t, err := dateparse.ParseAny(deadline)
	if err != nil {
		return deadline
	}
	return t.Format(deadlineLayout)
}
