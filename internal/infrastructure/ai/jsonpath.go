package ai

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// responseText reads the string at path from a raw response body.
// Paths use the config notation, e.g. "choices[0].message.content" or
// "content[0].text".
func responseText(body []byte, path string) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", errors.New("invalid JSON")
	}
	res := gjson.GetBytes(body, gjsonPath(path))
	if !res.Exists() {
		return "", fmt.Errorf("%q not found", path)
	}
	if res.Type != gjson.String {
		return "", fmt.Errorf("value at %q is %s, not a string", path, res.Type)
	}
	return res.Str, nil
}

var gjsonSpecial = strings.NewReplacer(
	`*`, `\*`, `?`, `\?`, `#`, `\#`, `@`, `\@`, `|`, `\|`, `!`, `\!`,
)

// gjsonPath rewrites "a[0].b" as "a.0.b" and escapes gjson's wildcard and
// modifier characters inside field names.
func gjsonPath(path string) string {
	path = strings.NewReplacer("[", ".", "]", "").Replace(path)
	var parts []string
	for _, part := range strings.Split(path, ".") {
		if part != "" {
			parts = append(parts, gjsonSpecial.Replace(part))
		}
	}
	return strings.Join(parts, ".")
}

// usageTokens reads OpenAI or Anthropic style usage counters when present.
func usageTokens(body []byte) int {
	usage := gjson.GetBytes(body, "usage")
	if total := usage.Get("total_tokens"); total.Exists() {
		return int(total.Int())
	}
	return int(usage.Get("input_tokens").Int() + usage.Get("output_tokens").Int())
}
