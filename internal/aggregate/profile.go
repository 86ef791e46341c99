package aggregate

import (
	"strings"

	"github.com/vardast/ops-dashboard/internal/domain"
)

// Records is a read-only view of the four collections.
type Records struct {
	Issues   []domain.Issue
	Frozen   []domain.FrozenAccount
	Features []domain.FeatureRequest
	Refunds  []domain.RefundRequest
}

// HistoryEntry is one line of a user's cross-table history.
type HistoryEntry struct {
	Source   domain.Kind `json:"source"`
	Label    string      `json:"label"`
	RecordID int64       `json:"record_id"`
	Date     string      `json:"date"`
	Summary  string      `json:"summary"`
	Status   string      `json:"status"`
	Flag     domain.Flag `json:"flag,omitempty"`
}

// Usernames lists distinct non-empty usernames, issues first, then frozen,
// features and refunds, each in collection order.
func Usernames(r Records) []string {
	seen := map[string]struct{}{}
	names := []string{}
	add := func(name string) {
		if name == "" {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	for _, x := range r.Issues {
		add(x.Username)
	}
	for _, x := range r.Frozen {
		add(x.Username)
	}
	for _, x := range r.Features {
		add(x.Username)
	}
	for _, x := range r.Refunds {
		add(x.Username)
	}
	return names
}

// SuggestUsernames returns usernames containing query, ignoring case.
// An empty query suggests nothing.
func SuggestUsernames(r Records, query string) []string {
	suggestions := []string{}
	if query == "" {
		return suggestions
	}
	needle := strings.ToLower(query)
	for _, name := range Usernames(r) {
		if strings.Contains(strings.ToLower(name), needle) {
			suggestions = append(suggestions, name)
		}
	}
	return suggestions
}

// UserHistory gathers every record whose username equals username exactly.
func UserHistory(r Records, username string) []HistoryEntry {
	entries := []HistoryEntry{}
	if username == "" {
		return entries
	}
	for _, x := range r.Issues {
		if x.Username == username {
			entries = append(entries, HistoryEntry{Source: domain.KindIssue, RecordID: x.ID, Date: x.CreatedAt,
				Summary: x.Description, Status: string(x.Status), Flag: x.Flag})
		}
	}
	for _, x := range r.Frozen {
		if x.Username == username {
			entries = append(entries, HistoryEntry{Source: domain.KindFrozen, RecordID: x.ID, Date: x.FrozenAt,
				Summary: x.Description, Status: string(x.Status), Flag: x.Flag})
		}
	}
	for _, x := range r.Features {
		if x.Username == username {
			entries = append(entries, HistoryEntry{Source: domain.KindFeature, RecordID: x.ID, Date: x.CreatedAt,
				Summary: firstNonEmpty(x.Description, x.Title), Status: string(x.Status), Flag: x.Flag})
		}
	}
	for _, x := range r.Refunds {
		if x.Username == username {
			entries = append(entries, HistoryEntry{Source: domain.KindRefund, RecordID: x.ID, Date: x.RequestedAt,
				Summary: x.Reason, Status: string(x.Action), Flag: x.Flag})
		}
	}
	for i := range entries {
		entries[i].Label = entries[i].Source.Label()
	}
	return entries
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
