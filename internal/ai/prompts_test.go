package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptsCarryInput(t *testing.T) {
	assert.Contains(t, ClassifyIssuePrompt("ربات جواب نمی‌دهد"), "ربات جواب نمی‌دهد")
	assert.Contains(t, ClassifyIssuePrompt("x"), `"اتصال اینستاگرام"`)
	assert.Contains(t, RefundResponsePrompt("sara", "گران است"), `"sara"`)
	assert.Contains(t, RefundResponsePrompt("sara", "گران است"), "گران است")
	assert.Contains(t, FeatureTitlePrompt("حالت شب"), "حالت شب")

	churn := ChurnExplanationPrompt("ali", []string{"first", "second"})
	assert.Contains(t, churn, "1. first\n2. second\n")
	assert.Contains(t, churn, "anger_score")
}

func TestPromptsKeepZeroWidthNonJoiner(t *testing.T) {
	desc := "پیام‌ها ارسال نمی‌شود"
	assert.Contains(t, ClassifyIssuePrompt(desc), `"`+desc+`"`)
	assert.NotContains(t, ClassifyIssuePrompt(desc), `\u200c`)
	assert.Contains(t, ClassifyIssuePrompt(desc), `"خطای کاربر"`)

	churn := ChurnExplanationPrompt("مهسا‌جان", []string{desc})
	assert.Contains(t, churn, `"مهسا‌جان"`)
	assert.Contains(t, churn, "1. "+desc+"\n")
}

func TestUnconfiguredGenerator(t *testing.T) {
	g, err := NewGeminiGenerator(context.Background(), "", "")
	require.NoError(t, err)
	assert.False(t, g.Configured())

	_, err = g.Generate(context.Background(), "hello", false)
	assert.ErrorIs(t, err, ErrNotConfigured)

	var nilGen *GeminiGenerator
	assert.False(t, nilGen.Configured())
}
