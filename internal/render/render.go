// internal/render/render.go
package render

import (
	"strings"

	"github.com/unclebandit/campaignhub-backend/internal/model"
)

// Render substitutes recognized placeholder tokens in a template body with
// the subscriber's fields, verbatim. Unrecognized placeholders are left
// untouched. Pure: no I/O, no escaping beyond what the template author wrote.
func Render(body string, sub model.Subscriber) string {
	replacements := [][2]string{
		{"{{name}}", sub.Name},
		{"{{email}}", sub.Email},
		{"{{phone}}", sub.Phone},
	}

	out := body
	for _, r := range replacements {
		out = strings.ReplaceAll(out, r[0], r[1])
	}
	return out
}
