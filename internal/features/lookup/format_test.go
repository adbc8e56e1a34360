package lookup

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatReplyRegularUserSeesMobileNote(t *testing.T) {
	out := FormatReply("KL70C1679", "raw data here", false)

	assert.Contains(t, out, "🚗 *Vehicle Information*")
	assert.Contains(t, out, "➤ *Vehicle Number:* KL70C1679")
	assert.Contains(t, out, "```\nraw data here\n```")
	assert.Contains(t, out, "🔒 Mobile: Available for premium users")
}

func TestFormatReplyPrivilegedUserOmitsMobileNote(t *testing.T) {
	out := FormatReply("KL70C1679", "raw data here", true)

	assert.NotContains(t, out, "🔒 Mobile")
}

func TestFormatReplyPayloadVerbatim(t *testing.T) {
	payload := "{\n  \"owner\": \"JOHN\"\n}"
	out := FormatReply("KL70C1679", payload, true)

	start := strings.Index(out, "```\n")
	end := strings.LastIndex(out, "\n```")
	assert.Equal(t, payload, out[start+4:end])
}
