// Package catalog contains the core domain types for the HCNoticer
// event monitor: the fetched YSWS catalog, its entries, the persisted
// known-event state, and per-category diff results.
package catalog

// Event statuses. Anything outside this set (including an absent status)
// is grouped under "other" in the email digest.
const (
	StatusActive = "active"
	StatusDraft  = "draft"
	StatusEnded  = "ended"
)

// Event is a single YSWS listing. Name is the sole identity used for
// deduplication, regardless of which category the event appears in.
type Event struct {
	Name                string   `json:"name"`
	Description         string   `json:"description"`
	Website             string   `json:"website,omitempty"`
	Slack               string   `json:"slack,omitempty"`
	SlackChannel        string   `json:"slackChannel,omitempty"`
	Status              string   `json:"status"`
	Deadline            string   `json:"deadline,omitempty"`
	DetailedDescription string   `json:"detailedDescription,omitempty"`
	Steps               []string `json:"steps,omitempty"`
	Requirements        []string `json:"requirements,omitempty"`
	Details             []string `json:"details,omitempty"`
	Participants        int      `json:"participants,omitempty"`
	Ended               string   `json:"ended,omitempty"`
}

// Catalog is one fetched snapshot of the YSWS API, partitioned into four
// fixed categories. Slice order reflects source order and is preserved
// through diffing and rendering.
type Catalog struct {
	LimitedTime   []Event `json:"limitedTime"`
	RecentlyEnded []Event `json:"recentlyEnded"`
	Indefinite    []Event `json:"indefinite"`
	Drafts        []Event `json:"drafts"`
}

// Category pairs a display label with the events in one partition.
type Category struct {
	Label  string
	Events []Event
}

// Categories returns the four partitions in the fixed order the diff
// engine scans them.
func (c *Catalog) Categories() []Category {
	return []Category{
		{Label: "Limited Time", Events: c.LimitedTime},
		{Label: "Indefinite", Events: c.Indefinite},
		{Label: "Recently Ended", Events: c.RecentlyEnded},
		{Label: "Drafts", Events: c.Drafts},
	}
}

// Total counts every event in the snapshot across all categories.
func (c *Catalog) Total() int {
	return len(c.LimitedTime) + len(c.RecentlyEnded) + len(c.Indefinite) + len(c.Drafts)
}

// State is the persisted record of previously observed event names.
// KnownEvents only grows: an event that later disappears from the catalog
// is still remembered and never re-announced.
type State struct {
	KnownEvents []string `json:"knownEvents"`
	LastCheck   string   `json:"lastCheck"`
}

// Known returns the known event names as a set.
func (s *State) Known() map[string]struct{} {
	known := make(map[string]struct{}, len(s.KnownEvents))
	for _, name := range s.KnownEvents {
		known[name] = struct{}{}
	}
	return known
}

// Result holds the new events found in one category during a run.
// A Result is only emitted for categories with at least one new event.
type Result struct {
	Category        string
	NewEvents       []Event
	AllCurrentNames []string
}

// TotalNew sums new events across all results.
func TotalNew(results []Result) int {
	var total int
	for _, r := range results {
		total += len(r.NewEvents)
	}
	return total
}
