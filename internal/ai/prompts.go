package ai

import (
	"fmt"
	"strings"
)

// IssueModules and IssueTypes are the choices offered to the classifier.
var (
	IssueModules = []string{"پرامپت", "ویزارد", "دایرکت هوشمند", "کامنت هوشمند", "اتصال تلگرام", "اتصال اینستاگرام", "اتصال وبسایت", "ویجت", "سایر"}
	IssueTypes   = []string{"باگ فنی", "خطای کاربر", "کندی سیستم", "API", "طراحی UX", "سایر"}
)

// ClassifyIssuePrompt asks for {"module","type","note"} describing an issue.
func ClassifyIssuePrompt(description string) string {
	return fmt.Sprintf(`Analyze this technical support issue in Persian: "%s"
Return a JSON object with 3 keys:
"module": (Choose one best fit: %s)
"type": (Choose one best fit: %s)
"note": (A very short 1-sentence technical solution in Persian)`,
		description, quoteList(IssueModules), quoteList(IssueTypes))
}

// RefundResponsePrompt asks for a short reply to a refund request.
func RefundResponsePrompt(username, reason string) string {
	return fmt.Sprintf(`یک پیام کوتاه، رسمی و همدلانه به فارسی بنویس برای کاربر "%s" که درخواست بازگشت وجه داده به دلیل: "%s". هدف: منصرف کردن محترمانه یا پذیرش درخواست.`,
		username, reason)
}

// FeatureTitlePrompt asks for a title of at most four words.
func FeatureTitlePrompt(description string) string {
	return fmt.Sprintf(`برای متن زیر یک عنوان بسیار کوتاه (حداکثر ۴ کلمه) به فارسی بساز: "%s"`, description)
}

// ChurnExplanationPrompt asks for {"anger_score","root_cause","suggested_message"}
// from a customer's repeated issues.
func ChurnExplanationPrompt(username string, descriptions []string) string {
	var b strings.Builder
	for i, d := range descriptions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, d)
	}
	return fmt.Sprintf(`The customer "%s" reported these support issues, newest first:
%s
Return a JSON object with 3 keys:
"anger_score": (integer from 1 to 10, how frustrated the customer is)
"root_cause": (one short Persian sentence naming the underlying problem)
"suggested_message": (a short, empathetic Persian message support can send to keep the customer)`,
		username, b.String())
}

func quoteList(items []string) string {
	quoted := make([]string, len(items))
	for i, it := range items {
		quoted[i] = `"` + it + `"`
	}
	return strings.Join(quoted, ", ")
}
