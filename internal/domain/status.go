package domain

// IssueStatus enumerates lifecycle states for technical issues.
type IssueStatus string

const (
	IssueStatusOpen     IssueStatus = "باز"
	IssueStatusInReview IssueStatus = "در حال بررسی"
	IssueStatusResolved IssueStatus = "حل‌شده"
)

// Valid reports whether s is one of the selectable issue states.
func (s IssueStatus) Valid() bool {
	switch s {
	case IssueStatusOpen, IssueStatusInReview, IssueStatusResolved:
		return true
	}
	return false
}

// FrozenStatus enumerates states of a frozen account.
type FrozenStatus string

const (
	FrozenStatusFrozen   FrozenStatus = "فریز"
	FrozenStatusInReview FrozenStatus = "در حال بررسی"
	FrozenStatusResolved FrozenStatus = "رفع شده"
)

func (s FrozenStatus) Valid() bool {
	switch s {
	case FrozenStatusFrozen, FrozenStatusInReview, FrozenStatusResolved:
		return true
	}
	return false
}

// FeatureStatus enumerates the feature request pipeline.
type FeatureStatus string

const (
	FeatureStatusUnreviewed    FeatureStatus = "بررسی نشده"
	FeatureStatusAnalyzing     FeatureStatus = "در تحلیل"
	FeatureStatusInDevelopment FeatureStatus = "در توسعه"
	FeatureStatusDone          FeatureStatus = "انجام شد"
)

func (s FeatureStatus) Valid() bool {
	switch s {
	case FeatureStatusUnreviewed, FeatureStatusAnalyzing, FeatureStatusInDevelopment, FeatureStatusDone:
		return true
	}
	return false
}

// RefundAction enumerates what support did with a refund request.
type RefundAction string

const (
	RefundActionInReview RefundAction = "در بررسی"
	RefundActionRefunded RefundAction = "بازپرداخت شد"
	RefundActionRejected RefundAction = "رد شد"
)

func (a RefundAction) Valid() bool {
	switch a {
	case RefundActionInReview, RefundActionRefunded, RefundActionRejected:
		return true
	}
	return false
}

// Flag marks records needing follow-up. The zero value means no flag.
type Flag string

const (
	FlagNone      Flag = ""
	FlagImportant Flag = "پیگیری مهم"
	FlagUrgent    Flag = "پیگیری فوری"
)

func (f Flag) Valid() bool {
	switch f {
	case FlagNone, FlagImportant, FlagUrgent:
		return true
	}
	return false
}

// SubscriptionStatus is the customer's plan state at report time.
type SubscriptionStatus string

const (
	SubscriptionUnknown SubscriptionStatus = ""
	SubscriptionActive  SubscriptionStatus = "Active"
	SubscriptionPaused  SubscriptionStatus = "Paused"
	SubscriptionExpired SubscriptionStatus = "Expired"
	SubscriptionTrial   SubscriptionStatus = "Trial"
)

func (s SubscriptionStatus) Valid() bool {
	switch s {
	case SubscriptionUnknown, SubscriptionActive, SubscriptionPaused, SubscriptionExpired, SubscriptionTrial:
		return true
	}
	return false
}

// ReturnEligibility answers whether a refunded customer may come back.
type ReturnEligibility string

const (
	ReturnUnknown ReturnEligibility = ""
	ReturnYes     ReturnEligibility = "بله"
	ReturnNo      ReturnEligibility = "خیر"
)

func (r ReturnEligibility) Valid() bool {
	switch r {
	case ReturnUnknown, ReturnYes, ReturnNo:
		return true
	}
	return false
}

// ReconcileState tracks how far a local record can be trusted.
type ReconcileState string

const (
	ReconcileConfirmed    ReconcileState = "confirmed"
	ReconcilePendingWrite ReconcileState = "pending-write"
	ReconcileStale        ReconcileState = "stale"
)
