package service

import (
	"strconv"
	"strings"

	"github.com/vardast/ops-dashboard/internal/domain"
	apperrors "github.com/vardast/ops-dashboard/pkg/util/errorutil"
)

// FormMode distinguishes creating a record from editing one.
type FormMode string

const (
	FormModeCreate FormMode = "create"
	FormModeEdit   FormMode = "edit"
)

// formFields is the union of every kind's editable columns. A fresh form
// carries all of them blank so nothing leaks from a previous edit.
var formFields = []string{
	"username", "subscription_status", "desc_text", "module", "type", "status", "support",
	"resolved_at", "technical_note", "contact", "cause", "first_frozen_at", "freeze_count",
	"last_frozen_at", "resolve_status", "note", "title", "category", "repeat_count",
	"importance", "internal_note", "reason", "duration", "action", "suggestion",
	"can_return", "sales_source", "ops_note", "flag",
}

var knownFormField = func() map[string]struct{} {
	m := make(map[string]struct{}, len(formFields))
	for _, f := range formFields {
		m[f] = struct{}{}
	}
	return m
}()

// BlankForm returns the default form state.
func BlankForm() map[string]string {
	form := make(map[string]string, len(formFields))
	for _, f := range formFields {
		form[f] = ""
	}
	return form
}

// FormFromRecord merges rec's fields over the blank defaults.
func FormFromRecord(rec domain.Record) map[string]string {
	form := BlankForm()
	for k, v := range rec.Fields() {
		form[k] = v
	}
	return form
}

// BuildRecord turns form values into a record of kind. In create mode the
// kind's date column is stamped with today and lifecycle fields default to
// their initial value; edit mode leaves both alone.
func BuildRecord(kind domain.Kind, mode FormMode, form map[string]string, today string) (domain.Record, error) {
	username := form["username"]
	if username == "" {
		return nil, apperrors.NewValidationError("username is required", map[string]any{"field": "username"})
	}
	create := mode == FormModeCreate
	date := form[kind.DateField()]
	if create {
		date = today
	}
	flag := domain.Flag(form["flag"])
	subscription := domain.SubscriptionStatus(form["subscription_status"])

	var rec domain.Record
	switch kind {
	case domain.KindIssue:
		status := domain.IssueStatus(form["status"])
		if create && status == "" {
			status = domain.IssueStatusOpen
		}
		if err := checkClosed("status", status, status.Valid()); err != nil {
			return nil, err
		}
		if err := checkClosed("subscription_status", subscription, subscription.Valid()); err != nil {
			return nil, err
		}
		rec = domain.Issue{
			Username:           username,
			CreatedAt:          date,
			Description:        form["desc_text"],
			Module:             form["module"],
			Type:               form["type"],
			Status:             status,
			Support:            form["support"],
			SubscriptionStatus: subscription,
			ResolvedAt:         form["resolved_at"],
			TechnicalNote:      form["technical_note"],
			Flag:               flag,
			Contact:            form["contact"],
		}
	case domain.KindFrozen:
		status := domain.FrozenStatus(form["status"])
		if create && status == "" {
			status = domain.FrozenStatusFrozen
		}
		if err := checkClosed("status", status, status.Valid()); err != nil {
			return nil, err
		}
		if err := checkClosed("subscription_status", subscription, subscription.Valid()); err != nil {
			return nil, err
		}
		rec = domain.FrozenAccount{
			Username:           username,
			FrozenAt:           date,
			Description:        form["desc_text"],
			Module:             form["module"],
			Cause:              form["cause"],
			Status:             status,
			SubscriptionStatus: subscription,
			FirstFrozenAt:      form["first_frozen_at"],
			FreezeCount:        optionalInt(form["freeze_count"]),
			LastFrozenAt:       form["last_frozen_at"],
			ResolveStatus:      form["resolve_status"],
			Note:               form["note"],
			Flag:               flag,
		}
	case domain.KindFeature:
		status := domain.FeatureStatus(form["status"])
		if create && status == "" {
			status = domain.FeatureStatusUnreviewed
		}
		if err := checkClosed("status", status, status.Valid()); err != nil {
			return nil, err
		}
		rec = domain.FeatureRequest{
			Username:     username,
			CreatedAt:    date,
			Description:  form["desc_text"],
			Title:        form["title"],
			Category:     form["category"],
			Status:       status,
			RepeatCount:  optionalInt(form["repeat_count"]),
			Importance:   optionalInt(form["importance"]),
			InternalNote: form["internal_note"],
			Flag:         flag,
		}
	case domain.KindRefund:
		action := domain.RefundAction(form["action"])
		if create && action == "" {
			action = domain.RefundActionInReview
		}
		if err := checkClosed("action", action, action.Valid()); err != nil {
			return nil, err
		}
		canReturn := domain.ReturnEligibility(form["can_return"])
		if err := checkClosed("can_return", canReturn, canReturn.Valid()); err != nil {
			return nil, err
		}
		rec = domain.RefundRequest{
			Username:    username,
			RequestedAt: date,
			Reason:      form["reason"],
			Duration:    form["duration"],
			Category:    form["category"],
			Action:      action,
			Suggestion:  form["suggestion"],
			CanReturn:   canReturn,
			SalesSource: form["sales_source"],
			OpsNote:     form["ops_note"],
			Flag:        flag,
		}
	default:
		return nil, apperrors.NewValidationError("unknown record kind", map[string]any{"kind": string(kind)})
	}

	if err := checkClosed("flag", flag, flag.Valid()); err != nil {
		return nil, err
	}
	return rec, nil
}

// checkClosed accepts an empty value or a member of the closed set.
func checkClosed[S ~string](field string, v S, valid bool) error {
	if v == "" || valid {
		return nil
	}
	return apperrors.NewValidationError("invalid "+field, map[string]any{"field": field, "value": string(v)})
}

// optionalInt parses a count field; blanks and non-numbers store as null.
func optionalInt(raw string) *int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &n
}
