package purge

import "strings"

// Matches reports whether any searchable field of m contains needle under the
// given case policy. Fields are checked in descending hit-likelihood order
// with early exit: plain content first, then embed text, then the webhook
// display name (webhook posts carry their author in the username), then
// attachment filenames. Callers only observe the boolean.
func Matches(m *Message, needle string, caseSensitive bool) bool {
	if needle == "" {
		return false
	}

	fold := func(s string) string { return s }
	if !caseSensitive {
		fold = strings.ToLower
		needle = strings.ToLower(needle)
	}

	if strings.Contains(fold(m.Content), needle) {
		return true
	}

	for i := range m.Embeds {
		e := &m.Embeds[i]
		if strings.Contains(fold(e.Title), needle) ||
			strings.Contains(fold(e.Description), needle) {
			return true
		}
		for _, f := range e.Fields {
			if strings.Contains(fold(f.Name), needle) ||
				strings.Contains(fold(f.Value), needle) {
				return true
			}
		}
		if strings.Contains(fold(e.AuthorName), needle) ||
			strings.Contains(fold(e.FooterText), needle) {
			return true
		}
	}

	if m.FromWebhook && strings.Contains(fold(m.AuthorName), needle) {
		return true
	}

	for _, name := range m.Attachments {
		if strings.Contains(fold(name), needle) {
			return true
		}
	}

	return false
}
