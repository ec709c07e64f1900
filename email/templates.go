package email

import (
	"fmt"
	"strings"
	"time"

	"github.com/TheusHen/HCNoticer/pkg/catalog"
	"github.com/TheusHen/HCNoticer/sanitize"
)

// splitByStatus flattens diff results and regroups the new events by
// status. The digest is read by a human who cares about actionability, so
// status drives the grouping here; the source category does not. Anything
// that is not active or draft, including unrecognized statuses, lands in
// the other bucket.
func splitByStatus(results []catalog.Result) (active, draft, other []catalog.Event) {
	for _, r := range results {
		for _, e := range r.NewEvents {
			switch e.Status {
			case catalog.StatusActive:
				active = append(active, e)
			case catalog.StatusDraft:
				draft = append(draft, e)
			default:
				other = append(other, e)
			}
		}
	}
	return active, draft, other
}

// deadlineTag renders the deadline annotation for an active event. When the
// event has no explicit deadline, one is extracted from the description
// markup if present.
func deadlineTag(e catalog.Event, now time.Time) string {
	deadline := e.Deadline
	if deadline == "" {
		deadline = sanitize.ExtractDeadline(e.Description)
	}

	kind, text := sanitize.Classify(deadline, now)
	switch kind {
	case sanitize.DeadlineNone:
		return ""
	case sanitize.DeadlineExpired:
		return `<span style="color:#dc2626;font-size:12px;"> &mdash; Expired</span>`
	case sanitize.DeadlineSoon:
		return fmt.Sprintf(`<span style="color:#d97706;font-size:12px;"> &mdash; %s</span>`, escapeHTML(text))
	default:
		// Upcoming dates and unparseable strings both render neutral
		return fmt.Sprintf(`<span style="color:#6b7280;font-size:12px;"> &mdash; %s</span>`, escapeHTML(text))
	}
}

func renderActiveCard(b *strings.Builder, e catalog.Event, now time.Time) {
	desc := sanitize.StripHTML(e.Description)

	b.WriteString(`<tr><td style="padding:10px 14px;border-bottom:1px solid #f0f0f0;">` + "\n")
	fmt.Fprintf(b, `<strong style="font-size:14px;color:#111;">%s</strong>%s<br>`+"\n",
		escapeHTML(e.Name), deadlineTag(e, now))
	fmt.Fprintf(b, `<span style="font-size:13px;color:#555;">%s</span>`+"\n", escapeHTML(desc))

	var links []string
	if e.Website != "" {
		links = append(links, fmt.Sprintf(
			`<a href="%s" style="color:#ec3750;text-decoration:none;font-size:13px;">Website</a>`,
			escapeHTML(e.Website)))
	}
	if slackURL := sanitize.CleanLinkURL(e.Slack); slackURL != "" {
		label := e.SlackChannel
		if label == "" {
			label = "Slack"
		}
		links = append(links, fmt.Sprintf(
			`<a href="%s" style="color:#ec3750;text-decoration:none;font-size:13px;">%s</a>`,
			escapeHTML(slackURL), escapeHTML(label)))
	}
	if len(links) > 0 {
		fmt.Fprintf(b, `<br><span style="font-size:12px;">%s</span>`+"\n", strings.Join(links, " &middot; "))
	}

	b.WriteString("</td></tr>\n")
}

func renderDraftRow(b *strings.Builder, e catalog.Event) {
	desc := sanitize.StripHTML(e.Description)

	b.WriteString(`<tr><td style="padding:6px 14px;border-bottom:1px solid #f5f5f5;">` + "\n")
	fmt.Fprintf(b, `<span style="font-size:13px;color:#333;"><strong>%s</strong> &mdash; %s</span>`+"\n",
		escapeHTML(e.Name), escapeHTML(desc))
	b.WriteString("</td></tr>\n")
}

func sectionHeader(b *strings.Builder, label string, count int, background, border, color string) {
	b.WriteString(`<table width="100%" cellpadding="0" cellspacing="0" style="margin-bottom:20px;">` + "\n")
	fmt.Fprintf(b,
		`<tr><td style="padding:8px 14px;background:%s;border-left:3px solid %s;font-size:13px;font-weight:700;color:%s;text-transform:uppercase;letter-spacing:0.5px;">`+"\n",
		background, border, color)
	fmt.Fprintf(b, "%s (%d)\n", label, count)
	b.WriteString("</td></tr>\n")
}

// BuildHTML renders the email digest for the given results. Buckets render
// active first, then drafts, then everything else; empty buckets are
// omitted entirely.
func BuildHTML(results []catalog.Result, now time.Time) string {
	active, draft, other := splitByStatus(results)
	totalNew := len(active) + len(draft) + len(other)

	var body strings.Builder

	// Active events get full cards
	if len(active) > 0 {
		sectionHeader(&body, "Active", len(active), "#ecfdf5", "#22c55e", "#166534")
		for _, e := range active {
			renderActiveCard(&body, e, now)
		}
		body.WriteString("</table>\n")
	}

	// Drafts get compact rows
	if len(draft) > 0 {
		sectionHeader(&body, "Drafts", len(draft), "#fefce8", "#eab308", "#854d0e")
		for _, e := range draft {
			renderDraftRow(&body, e)
		}
		body.WriteString("</table>\n")
	}

	// Everything else is just a name list
	if len(other) > 0 {
		sectionHeader(&body, "Ended", len(other), "#fef2f2", "#ef4444", "#991b1b")
		names := make([]string, 0, len(other))
		for _, e := range other {
			names = append(names, escapeHTML(e.Name))
		}
		body.WriteString(`<tr><td style="padding:10px 14px;font-size:12px;color:#888;line-height:1.6;">` + "\n")
		body.WriteString(strings.Join(names, ", "))
		body.WriteString("\n</td></tr>\n</table>\n")
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\">")
	b.WriteString("<meta name=\"viewport\" content=\"width=device-width,initial-scale=1\"></head>\n")
	b.WriteString(`<body style="margin:0;padding:0;background:#f6f6f6;font-family:Arial,Helvetica,sans-serif;">` + "\n")
	b.WriteString(`<table width="100%" cellpadding="0" cellspacing="0"><tr><td align="center" style="padding:24px 8px;">` + "\n")
	b.WriteString(`<table width="580" cellpadding="0" cellspacing="0" style="background:#fff;border-radius:8px;overflow:hidden;">` + "\n")

	b.WriteString(`<tr><td style="background:#ec3750;padding:20px 24px;text-align:center;">` + "\n")
	b.WriteString(`<h1 style="margin:0;color:#fff;font-size:22px;font-weight:800;">HCNoticer</h1>` + "\n")
	fmt.Fprintf(&b,
		`<p style="margin:4px 0 0;color:rgba(255,255,255,0.85);font-size:13px;">%d new event%s &middot; %s</p>`+"\n",
		totalNew, plural(totalNew), escapeHTML(now.Format("Jan 2, 2006 3:04 PM")))
	b.WriteString("</td></tr>\n")

	b.WriteString(`<tr><td style="padding:20px 10px;">` + "\n")
	b.WriteString(body.String())
	b.WriteString("</td></tr>\n")

	b.WriteString(`<tr><td style="padding:14px 24px;text-align:center;border-top:1px solid #eee;">` + "\n")
	b.WriteString(`<p style="margin:0;font-size:11px;color:#aaa;">` + "\n")
	b.WriteString(`<a href="https://github.com/TheusHen/HCNoticer" style="color:#ec3750;text-decoration:none;">HCNoticer</a>`)
	b.WriteString(` &middot; <a href="https://ysws.hackclub.com" style="color:#ec3750;text-decoration:none;">YSWS Catalog</a>` + "\n")
	b.WriteString("</p>\n</td></tr>\n")

	b.WriteString("</table>\n</td></tr></table>\n</body></html>")

	return b.String()
}

// BuildSubject derives the digest subject line: total new count plus up to
// three names drawn from active entries first, then drafts.
func BuildSubject(results []catalog.Result) string {
	active, draft, other := splitByStatus(results)
	totalNew := len(active) + len(draft) + len(other)

	names := make([]string, 0, 3)
	for _, e := range append(append([]catalog.Event{}, active...), draft...) {
		if len(names) == 3 {
			break
		}
		names = append(names, e.Name)
	}

	suffix := ""
	if totalNew > 3 {
		suffix = fmt.Sprintf(" +%d more", totalNew-3)
	}

	return fmt.Sprintf("[HCNoticer] %d new: %s%s", totalNew, strings.Join(names, ", "), suffix)
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// escapeHTML escapes HTML special characters for security.
func escapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "'", "&#39;")
	return s
}
