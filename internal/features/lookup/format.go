// format.go renders the reply template for lookup results.
package lookup

import "fmt"

// FormatReply builds the fixed reply: a header naming the vehicle, a
// fenced block with the payload verbatim, and — for non-privileged
// callers — a footer noting the mobile field is premium-gated. The footer
// is cosmetic; no field is parsed or removed from the payload itself.
func FormatReply(vehicle, payload string, revealMobile bool) string {
	mobileNote := ""
	if !revealMobile {
		mobileNote = "\n🔒 Mobile: Available for premium users"
	}
	return fmt.Sprintf(
		"🚗 *Vehicle Information*\n"+
			"➤ *Vehicle Number:* %s\n\n"+
			"🔎 *Raw Data:*\n"+
			"```\n%s\n```\n"+
			"%s",
		vehicle, payload, mobileNote,
	)
}
