package digest

import (
	"fmt"
	"strings"
)

// RenderPrompt turns a digest context into the completion prompt. Pure and
// deterministic: the same context always renders the same text.
func RenderPrompt(dc *Context) string {
	var b strings.Builder

	name := dc.User.RealName
	if name == "" {
		name = dc.User.ID
	}

	fmt.Fprintf(&b, "Please create a personalized daily summary for %s from the EV engineering team", name)
	if dc.User.Role != "" {
		fmt.Fprintf(&b, " (%s)", dc.User.Role)
	}
	b.WriteString(".\n\n")

	if len(dc.Interests) > 0 {
		fmt.Fprintf(&b, "User's interests: %s\n", strings.Join(dc.Interests, ", "))
	}

	if len(dc.Messages) > 0 {
		b.WriteString("\nHere are the relevant messages from the lookback window:\n")
		for _, msg := range dc.Messages {
			fmt.Fprintf(&b, "\nChannel: %s\nUser: %s\nTime: %s\nType: %s\nContent: %s\n",
				msg.ChannelID, msg.UserID, msg.Timestamp, msg.Type, msg.Text)
			if len(msg.Files) > 0 {
				b.WriteString("Files:\n")
				for _, f := range msg.Files {
					fmt.Fprintf(&b, "- %s (%s)\n", f.Name, f.Type)
				}
			}
		}
	}

	if len(dc.DMs) > 0 {
		b.WriteString("\nHere are the direct messages the user received in the lookback window:\n")
		for _, dm := range dc.DMs {
			fmt.Fprintf(&b, "Sender: %s\nTime: %s\nContent: %s\n", dm.UserID, dm.Timestamp, dm.Text)
		}
	}

	b.WriteString(`
Please create a concise, well-organized summary that:
1. Highlights key updates related to the user's interests
2. Mentions important mentions or direct interactions
3. Notes any CAD or document uploads
4. Groups updates by topic or channel
5. Includes a section summarizing DMs received
6. Maintains a professional but friendly tone

Format the summary in a clear, readable way with appropriate sections and bullet points.`)

	return b.String()
}
