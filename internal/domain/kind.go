package domain

import "strings"

// Kind is the table discriminator shared by the gateway, change feed and store.
type Kind string

const (
	KindIssue   Kind = "issues"
	KindFrozen  Kind = "frozen"
	KindFeature Kind = "features"
	KindRefund  Kind = "refunds"
)

// Kinds lists every record kind in dashboard tab order.
var Kinds = []Kind{KindIssue, KindFrozen, KindFeature, KindRefund}

// ParseKind accepts table names and the singular modal names.
func ParseKind(raw string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "issues", "issue":
		return KindIssue, true
	case "frozen":
		return KindFrozen, true
	case "features", "feature":
		return KindFeature, true
	case "refunds", "refund":
		return KindRefund, true
	default:
		return "", false
	}
}

// DateField names the column stamped with today's date on create.
func (k Kind) DateField() string {
	switch k {
	case KindFrozen:
		return "frozen_at"
	case KindRefund:
		return "requested_at"
	default:
		return "created_at"
	}
}

// Columns returns the kind's columns in display order, identity first.
func (k Kind) Columns() []string {
	switch k {
	case KindIssue:
		return []string{"id", "username", "created_at", "desc_text", "module", "type", "status", "support",
			"subscription_status", "resolved_at", "technical_note", "flag", "contact"}
	case KindFrozen:
		return []string{"id", "username", "frozen_at", "desc_text", "module", "cause", "status",
			"subscription_status", "first_frozen_at", "freeze_count", "last_frozen_at", "resolve_status", "note", "flag"}
	case KindFeature:
		return []string{"id", "username", "created_at", "desc_text", "title", "category", "status",
			"repeat_count", "importance", "internal_note", "flag"}
	case KindRefund:
		return []string{"id", "username", "requested_at", "reason", "duration", "category", "action",
			"suggestion", "can_return", "sales_source", "ops_note", "flag"}
	default:
		return nil
	}
}

// Label is the Persian tab title used in profile history.
func (k Kind) Label() string {
	switch k {
	case KindIssue:
		return "مشکل فنی"
	case KindFrozen:
		return "فریز"
	case KindFeature:
		return "فیچر"
	case KindRefund:
		return "بازگشت وجه"
	default:
		return string(k)
	}
}
