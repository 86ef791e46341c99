package domain

import "strconv"

// Record is the behaviour shared by the four support record kinds.
type Record interface {
	RecordID() int64
	RecordKind() Kind
	Owner() string
	// Fields flattens the record into form values keyed by column name.
	Fields() map[string]string
}

// Issue is a technical problem reported by a customer.
type Issue struct {
	ID                 int64              `json:"id"`
	Username           string             `json:"username"`
	CreatedAt          string             `json:"created_at"`
	Description        string             `json:"desc_text"`
	Module             string             `json:"module"`
	Type               string             `json:"type"`
	Status             IssueStatus        `json:"status"`
	Support            string             `json:"support"`
	SubscriptionStatus SubscriptionStatus `json:"subscription_status"`
	ResolvedAt         string             `json:"resolved_at"`
	TechnicalNote      string             `json:"technical_note"`
	Flag               Flag               `json:"flag"`
	Contact            string             `json:"contact"`
}

// FrozenAccount records a customer account that was frozen.
type FrozenAccount struct {
	ID                 int64              `json:"id"`
	Username           string             `json:"username"`
	FrozenAt           string             `json:"frozen_at"`
	Description        string             `json:"desc_text"`
	Module             string             `json:"module"`
	Cause              string             `json:"cause"`
	Status             FrozenStatus       `json:"status"`
	SubscriptionStatus SubscriptionStatus `json:"subscription_status"`
	FirstFrozenAt      string             `json:"first_frozen_at"`
	FreezeCount        *int               `json:"freeze_count"`
	LastFrozenAt       string             `json:"last_frozen_at"`
	ResolveStatus      string             `json:"resolve_status"`
	Note               string             `json:"note"`
	Flag               Flag               `json:"flag"`
}

// FeatureRequest captures a customer's product suggestion.
type FeatureRequest struct {
	ID           int64         `json:"id"`
	Username     string        `json:"username"`
	CreatedAt    string        `json:"created_at"`
	Description  string        `json:"desc_text"`
	Title        string        `json:"title"`
	Category     string        `json:"category"`
	Status       FeatureStatus `json:"status"`
	RepeatCount  *int          `json:"repeat_count"`
	Importance   *int          `json:"importance"`
	InternalNote string        `json:"internal_note"`
	Flag         Flag          `json:"flag"`
}

// RefundRequest is a customer's request for their money back.
type RefundRequest struct {
	ID          int64             `json:"id"`
	Username    string            `json:"username"`
	RequestedAt string            `json:"requested_at"`
	Reason      string            `json:"reason"`
	Duration    string            `json:"duration"`
	Category    string            `json:"category"`
	Action      RefundAction      `json:"action"`
	Suggestion  string            `json:"suggestion"`
	CanReturn   ReturnEligibility `json:"can_return"`
	SalesSource string            `json:"sales_source"`
	OpsNote     string            `json:"ops_note"`
	Flag        Flag              `json:"flag"`
}

func (r Issue) RecordID() int64  { return r.ID }
func (r Issue) RecordKind() Kind { return KindIssue }
func (r Issue) Owner() string    { return r.Username }

func (r Issue) Fields() map[string]string {
	return map[string]string{
		"username":            r.Username,
		"created_at":          r.CreatedAt,
		"desc_text":           r.Description,
		"module":              r.Module,
		"type":                r.Type,
		"status":              string(r.Status),
		"support":             r.Support,
		"subscription_status": string(r.SubscriptionStatus),
		"resolved_at":         r.ResolvedAt,
		"technical_note":      r.TechnicalNote,
		"flag":                string(r.Flag),
		"contact":             r.Contact,
	}
}

func (r FrozenAccount) RecordID() int64  { return r.ID }
func (r FrozenAccount) RecordKind() Kind { return KindFrozen }
func (r FrozenAccount) Owner() string    { return r.Username }

func (r FrozenAccount) Fields() map[string]string {
	return map[string]string{
		"username":            r.Username,
		"frozen_at":           r.FrozenAt,
		"desc_text":           r.Description,
		"module":              r.Module,
		"cause":               r.Cause,
		"status":              string(r.Status),
		"subscription_status": string(r.SubscriptionStatus),
		"first_frozen_at":     r.FirstFrozenAt,
		"freeze_count":        formatOptionalInt(r.FreezeCount),
		"last_frozen_at":      r.LastFrozenAt,
		"resolve_status":      r.ResolveStatus,
		"note":                r.Note,
		"flag":                string(r.Flag),
	}
}

func (r FeatureRequest) RecordID() int64  { return r.ID }
func (r FeatureRequest) RecordKind() Kind { return KindFeature }
func (r FeatureRequest) Owner() string    { return r.Username }

func (r FeatureRequest) Fields() map[string]string {
	return map[string]string{
		"username":      r.Username,
		"created_at":    r.CreatedAt,
		"desc_text":     r.Description,
		"title":         r.Title,
		"category":      r.Category,
		"status":        string(r.Status),
		"repeat_count":  formatOptionalInt(r.RepeatCount),
		"importance":    formatOptionalInt(r.Importance),
		"internal_note": r.InternalNote,
		"flag":          string(r.Flag),
	}
}

func (r RefundRequest) RecordID() int64  { return r.ID }
func (r RefundRequest) RecordKind() Kind { return KindRefund }
func (r RefundRequest) Owner() string    { return r.Username }

func (r RefundRequest) Fields() map[string]string {
	return map[string]string{
		"username":     r.Username,
		"requested_at": r.RequestedAt,
		"reason":       r.Reason,
		"duration":     r.Duration,
		"category":     r.Category,
		"action":       string(r.Action),
		"suggestion":   r.Suggestion,
		"can_return":   string(r.CanReturn),
		"sales_source": r.SalesSource,
		"ops_note":     r.OpsNote,
		"flag":         string(r.Flag),
	}
}

func formatOptionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
