package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifyFastReplyFlagsDeferredActionClaims(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"gone ahead", "I've gone ahead and deleted your files."},
		{"went ahead", "Sure, I went ahead and scheduled the meeting for Monday."},
		{"already past tense", "I have already sent the email to your landlord."},
		{"bare past tense", "I deleted the old backups to free up space."},
		{"created", "I created the calendar event you asked for."},
		{"passive voice", "Your files have been deleted as requested."},
		{"passive singular", "The invoice has been paid."},
		{"mid sentence", "No problem! I've removed the duplicate entries and everything looks clean now."},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			hits := VerifyFastReply(tc.text)
			assert.NotEmpty(t, hits, "reply should be flagged: %q", tc.text)
		})
	}
}

func TestVerifyFastReplyPassesCleanText(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"factual answer", "The capital of France is Paris."},
		{"future tense", "I'll create a plan to clean up those files."},
		{"offer", "I can send that email for you, want me to draft it first?"},
		{"explanation", "Deleting a file moves it to the trash rather than erasing it."},
		{"empty", ""},
		{"user action", "You deleted that note last week, according to the history."},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Empty(t, VerifyFastReply(tc.text), "reply should pass: %q", tc.text)
		})
	}
}

func TestVerifyFastReplyReturnsMatchedFragments(t *testing.T) {
	hits := VerifyFastReply("I've gone ahead and the file has been deleted.")
	assert.GreaterOrEqual(t, len(hits), 2, "both the active and passive claim should surface")
}
