package agent

import "strings"

const punctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// IsApproval reports whether a user message terminates the session.
// The content is lowercased and split into tokens with surrounding
// punctuation stripped; "approve" or "approved" as a standalone token
// counts, so "I approve this plan!" ends the chat while "disapprove"
// does not.
func IsApproval(content string) bool {
	for _, token := range strings.Fields(strings.ToLower(content)) {
		switch strings.Trim(token, punctuation) {
		case "approve", "approved":
			return true
		}
	}
	return false
}
