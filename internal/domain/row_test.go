package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRow(t *testing.T) {
	rec, err := DecodeRow(KindFrozen, []byte(`{"id":7,"username":"ali","status":"فریز","freeze_count":2}`))
	require.NoError(t, err)
	frozen, ok := rec.(FrozenAccount)
	require.True(t, ok)
	assert.Equal(t, int64(7), frozen.RecordID())
	assert.Equal(t, FrozenStatus("فریز"), frozen.Status)
	require.NotNil(t, frozen.FreezeCount)
	assert.Equal(t, 2, *frozen.FreezeCount)

	_, err = DecodeRow(KindIssue, nil)
	assert.Error(t, err)
	_, err = DecodeRow(KindRefund, []byte(`{"id":`))
	assert.Error(t, err)
	_, err = DecodeRow(Kind("tickets"), []byte(`{}`))
	assert.Error(t, err)
}

func TestWithIDAndKeepDate(t *testing.T) {
	issue := WithID(Issue{Username: "ali", CreatedAt: "۱۴۰۵/۷/۲۰"}, 3)
	assert.Equal(t, int64(3), issue.ID)

	edited := Issue{ID: 3, Username: "ali", CreatedAt: "", Status: IssueStatusResolved}
	kept := KeepDate(issue, edited)
	assert.Equal(t, "۱۴۰۵/۷/۲۰", kept.CreatedAt)
	assert.Equal(t, IssueStatusResolved, kept.Status)

	var stored, next Record = RefundRequest{ID: 1, RequestedAt: "۱۴۰۵/۱/۱"}, RefundRequest{ID: 1, Reason: "گران"}
	merged := KeepDate(stored, next).(RefundRequest)
	assert.Equal(t, "۱۴۰۵/۱/۱", merged.RequestedAt)
	assert.Equal(t, "گران", merged.Reason)
}
