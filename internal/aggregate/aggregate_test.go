package aggregate

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vardast/ops-dashboard/internal/domain"
)

func issuesWithStatuses(statuses ...domain.IssueStatus) []domain.Issue {
	out := make([]domain.Issue, len(statuses))
	for i, s := range statuses {
		out[i] = domain.Issue{ID: int64(len(statuses) - i), Username: "ali", Status: s}
	}
	return out
}

func TestResolutionRatio(t *testing.T) {
	tests := []struct {
		name   string
		issues []domain.Issue
		want   int
	}{
		{"empty", nil, 0},
		{"none resolved", issuesWithStatuses(domain.IssueStatusOpen, domain.IssueStatusInReview), 0},
		{"all resolved", issuesWithStatuses(domain.IssueStatusResolved), 100},
		{"one third rounds down", issuesWithStatuses(domain.IssueStatusResolved, domain.IssueStatusOpen, domain.IssueStatusOpen), 33},
		{"two thirds rounds up", issuesWithStatuses(domain.IssueStatusResolved, domain.IssueStatusResolved, domain.IssueStatusOpen), 67},
		{"drifted free text never matches", issuesWithStatuses("resolved", "حل شده"), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolutionRatio(tt.issues))
		})
	}
}

func TestResolutionRatioBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	all := []domain.IssueStatus{domain.IssueStatusOpen, domain.IssueStatusInReview, domain.IssueStatusResolved}
	for round := 0; round < 200; round++ {
		n := 1 + rng.Intn(300)
		statuses := make([]domain.IssueStatus, n)
		resolved := 0
		for i := range statuses {
			statuses[i] = all[rng.Intn(len(all))]
			if statuses[i] == domain.IssueStatusResolved {
				resolved++
			}
		}
		got := ResolutionRatio(issuesWithStatuses(statuses...))
		require.GreaterOrEqual(t, got, 0)
		require.LessOrEqual(t, got, 100)
		require.Equal(t, int(math.Round(100*float64(resolved)/float64(n))), got)
	}
}

func TestActiveFrozen(t *testing.T) {
	frozen := []domain.FrozenAccount{
		{Status: domain.FrozenStatusFrozen},
		{Status: domain.FrozenStatusResolved},
		{Status: domain.FrozenStatusInReview},
		{Status: domain.FrozenStatusFrozen},
		{Status: "فریز شده"},
		{Status: ""},
	}
	assert.Equal(t, 2, ActiveFrozen(frozen))
	assert.Equal(t, 0, ActiveFrozen(nil))
}

func TestIssueTimeline(t *testing.T) {
	issues := []domain.Issue{
		{CreatedAt: "۱۴۰۵/۷/۲۵"},
		{CreatedAt: "1404/08/21 10:30"},
		{CreatedAt: ""},
		{CreatedAt: "۱۴۰۵/۷/۲۵"},
		{CreatedAt: "1404/08/21 18:00"},
		{},
	}

	got := IssueTimeline(issues, 0)

	assert.Equal(t, []TimelinePoint{
		{Date: "۱۴۰۵/۷/۲۵", Count: 2},
		{Date: "1404/08/21", Count: 2},
		{Date: UnknownDate, Count: 2},
	}, got)
}

func TestIssueTimelineWindow(t *testing.T) {
	issues := []domain.Issue{{CreatedAt: "b"}, {CreatedAt: "a"}, {CreatedAt: "c"}}
	assert.Equal(t, []TimelinePoint{{Date: "b", Count: 1}, {Date: "a", Count: 1}}, IssueTimeline(issues, 2))
	assert.Empty(t, IssueTimeline(nil, 50))
	assert.NotNil(t, IssueTimeline(nil, 0))
}

func TestRefundBreakdown(t *testing.T) {
	refunds := []domain.RefundRequest{
		{Category: "قیمت"},
		{Category: ""},
		{Category: "باگ"},
		{Category: "قیمت"},
		{},
	}

	got := RefundBreakdown(refunds)

	assert.Equal(t, []CategoryCount{
		{Name: "قیمت", Value: 2},
		{Name: OtherCategory, Value: 2},
		{Name: "باگ", Value: 1},
	}, got)

	sum := 0
	for _, c := range got {
		sum += c.Value
	}
	assert.Equal(t, len(refunds), sum)
}

func TestChurnRisks(t *testing.T) {
	issues := []domain.Issue{
		{Username: "A", Description: "a1"},
		{Username: "B", Description: "b1"},
		{Username: "", Description: "orphan"},
		{Username: "A", Description: "a2"},
		{Username: "", Description: "orphan"},
		{Username: "B", Description: "b2"},
		{Username: "", Description: "orphan"},
		{Username: "A", Description: "a3"},
	}

	got := ChurnRisks(issues, 100, 3)

	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].Username)
	assert.Equal(t, 3, got[0].Count)
	assert.Equal(t, []string{"a1", "a2", "a3"}, got[0].Descriptions)
}

func TestChurnRisksWindowAndCase(t *testing.T) {
	var issues []domain.Issue
	// newest first: two recent "ali" issues, then older ones outside the window
	issues = append(issues, domain.Issue{Username: "ali"}, domain.Issue{Username: "Ali"}, domain.Issue{Username: "ali"})
	for i := 0; i < 10; i++ {
		issues = append(issues, domain.Issue{Username: fmt.Sprintf("u%d", i)})
	}
	issues = append(issues, domain.Issue{Username: "ali"})

	assert.Empty(t, ChurnRisks(issues, 13, 3), "usernames are case-sensitive and the 4th ali is outside the window")
	got := ChurnRisks(issues, 0, 0)
	require.Len(t, got, 1, "defaults apply when window and threshold are unset")
	assert.Equal(t, 3, got[0].Count)
}

func TestChurnRisksEmpty(t *testing.T) {
	got := ChurnRisks(nil, 100, 3)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestBuildDashboardScenario(t *testing.T) {
	issues := issuesWithStatuses(
		domain.IssueStatusResolved, domain.IssueStatusResolved, domain.IssueStatusResolved,
		domain.IssueStatusOpen, domain.IssueStatusOpen,
	)
	refunds := []domain.RefundRequest{{Username: "sara"}}

	d := BuildDashboard(issues, nil, refunds, Options{})

	assert.Equal(t, 60, d.ResolutionRatio)
	assert.Equal(t, 0, d.ActiveFrozen)
	assert.Equal(t, 1, d.RefundCount)
	assert.Equal(t, 5, d.TotalIssues)
	assert.Equal(t, []CategoryCount{{Name: OtherCategory, Value: 1}}, d.RefundReasons)
	assert.Equal(t, []TimelinePoint{{Date: UnknownDate, Count: 5}}, d.Timeline)
}
