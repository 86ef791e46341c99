package domain

import (
	"encoding/json"
	"fmt"
)

// DecodeRow unmarshals a change-feed row into the record type of kind.
func DecodeRow(kind Kind, raw []byte) (Record, error) {
	switch kind {
	case KindIssue:
		var r Issue
		err := unmarshalRow(raw, &r)
		return r, err
	case KindFrozen:
		var r FrozenAccount
		err := unmarshalRow(raw, &r)
		return r, err
	case KindFeature:
		var r FeatureRequest
		err := unmarshalRow(raw, &r)
		return r, err
	case KindRefund:
		var r RefundRequest
		err := unmarshalRow(raw, &r)
		return r, err
	default:
		return nil, fmt.Errorf("unknown record kind %q", kind)
	}
}

func unmarshalRow(raw []byte, dst any) error {
	if len(raw) == 0 {
		return fmt.Errorf("empty row")
	}
	return json.Unmarshal(raw, dst)
}

// WithID returns r carrying identity id.
func WithID[T Record](r T, id int64) T {
	switch v := any(r).(type) {
	case Issue:
		v.ID = id
		return any(v).(T)
	case FrozenAccount:
		v.ID = id
		return any(v).(T)
	case FeatureRequest:
		v.ID = id
		return any(v).(T)
	case RefundRequest:
		v.ID = id
		return any(v).(T)
	}
	return r
}

// KeepDate returns next with the date column copied from stored. Updates
// never rewrite the date a record was created with.
func KeepDate[T Record](stored, next T) T {
	switch s := any(stored).(type) {
	case Issue:
		n := any(next).(Issue)
		n.CreatedAt = s.CreatedAt
		return any(n).(T)
	case FrozenAccount:
		n := any(next).(FrozenAccount)
		n.FrozenAt = s.FrozenAt
		return any(n).(T)
	case FeatureRequest:
		n := any(next).(FeatureRequest)
		n.CreatedAt = s.CreatedAt
		return any(n).(T)
	case RefundRequest:
		n := any(next).(RefundRequest)
		n.RequestedAt = s.RequestedAt
		return any(n).(T)
	}
	return next
}
