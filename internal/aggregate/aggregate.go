// Package aggregate derives dashboard metrics from record snapshots. Every
// function is pure and tolerates empty input.
package aggregate

import (
	"math"
	"strings"

	"github.com/vardast/ops-dashboard/internal/domain"
)

const (
	// UnknownDate buckets issues without a creation date.
	UnknownDate = "نامشخص"
	// OtherCategory buckets refunds without a category.
	OtherCategory = "سایر"

	DefaultChurnWindow    = 100
	DefaultChurnThreshold = 3
)

// TimelinePoint is one x-axis value of the issue trend chart.
type TimelinePoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// CategoryCount is one slice of the refund reasons pie.
type CategoryCount struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// ChurnRisk is a username that keeps coming back with issues.
type ChurnRisk struct {
	Username     string   `json:"username"`
	Count        int      `json:"count"`
	Descriptions []string `json:"descriptions"`
}

// Dashboard is everything the dashboard tab renders.
type Dashboard struct {
	ResolutionRatio int             `json:"solved_ratio"`
	ActiveFrozen    int             `json:"active_frozen"`
	RefundCount     int             `json:"refund_count"`
	TotalIssues     int             `json:"total_issues"`
	Timeline        []TimelinePoint `json:"timeline"`
	RefundReasons   []CategoryCount `json:"refund_reasons"`
}

// Options bounds the windows used by the aggregations.
type Options struct {
	// TimelineWindow limits the trend chart to the most recent issues; <= 0 means all.
	TimelineWindow int
}

// ResolutionRatio is the rounded percentage of issues marked resolved.
func ResolutionRatio(issues []domain.Issue) int {
	if len(issues) == 0 {
		return 0
	}
	resolved := 0
	for _, issue := range issues {
		if issue.Status == domain.IssueStatusResolved {
			resolved++
		}
	}
	return int(math.Round(float64(resolved) / float64(len(issues)) * 100))
}

// ActiveFrozen counts accounts whose status is exactly the frozen sentinel.
func ActiveFrozen(frozen []domain.FrozenAccount) int {
	count := 0
	for _, acct := range frozen {
		if acct.Status == domain.FrozenStatusFrozen {
			count++
		}
	}
	return count
}

// IssueTimeline counts issues per date prefix (text before the first space).
// Points appear in first-encounter order, not chronological order.
func IssueTimeline(issues []domain.Issue, window int) []TimelinePoint {
	issues = recent(issues, window)
	points := []TimelinePoint{}
	index := map[string]int{}
	for _, issue := range issues {
		date := UnknownDate
		if issue.CreatedAt != "" {
			date, _, _ = strings.Cut(issue.CreatedAt, " ")
		}
		if i, ok := index[date]; ok {
			points[i].Count++
			continue
		}
		index[date] = len(points)
		points = append(points, TimelinePoint{Date: date, Count: 1})
	}
	return points
}

// RefundBreakdown counts refunds per category, empty categories counting as other.
func RefundBreakdown(refunds []domain.RefundRequest) []CategoryCount {
	pie := []CategoryCount{}
	index := map[string]int{}
	for _, refund := range refunds {
		name := refund.Category
		if name == "" {
			name = OtherCategory
		}
		if i, ok := index[name]; ok {
			pie[i].Value++
			continue
		}
		index[name] = len(pie)
		pie = append(pie, CategoryCount{Name: name, Value: 1})
	}
	return pie
}

// ChurnRisks flags usernames appearing at least threshold times among the
// first window issues. Issues are expected newest first, so the window
// approximates "recent" by insertion order. Issues without a username are
// ignored.
func ChurnRisks(issues []domain.Issue, window, threshold int) []ChurnRisk {
	if window <= 0 {
		window = DefaultChurnWindow
	}
	if threshold <= 0 {
		threshold = DefaultChurnThreshold
	}
	issues = recent(issues, window)

	groups := []ChurnRisk{}
	index := map[string]int{}
	for _, issue := range issues {
		if issue.Username == "" {
			continue
		}
		i, ok := index[issue.Username]
		if !ok {
			i = len(groups)
			index[issue.Username] = i
			groups = append(groups, ChurnRisk{Username: issue.Username, Descriptions: []string{}})
		}
		groups[i].Count++
		groups[i].Descriptions = append(groups[i].Descriptions, issue.Description)
	}

	risks := []ChurnRisk{}
	for _, g := range groups {
		if g.Count >= threshold {
			risks = append(risks, g)
		}
	}
	return risks
}

// BuildDashboard assembles the dashboard tab from one snapshot.
func BuildDashboard(issues []domain.Issue, frozen []domain.FrozenAccount, refunds []domain.RefundRequest, opts Options) Dashboard {
	return Dashboard{
		ResolutionRatio: ResolutionRatio(issues),
		ActiveFrozen:    ActiveFrozen(frozen),
		RefundCount:     len(refunds),
		TotalIssues:     len(issues),
		Timeline:        IssueTimeline(issues, opts.TimelineWindow),
		RefundReasons:   RefundBreakdown(refunds),
	}
}

func recent(issues []domain.Issue, window int) []domain.Issue {
	if window > 0 && len(issues) > window {
		return issues[:window]
	}
	return issues
}
