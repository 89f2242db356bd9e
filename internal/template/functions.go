// Package template renders query text before it is parsed, so queries can
// carry variables and computed values:
//
//	created: { $gte: !date {{ daysAgo 7 }} }
//	name: !regex '^{{ quoteRegex .prefix }}'
//	tags: { $in: {{ json (split .tags ",") }} }
package template

import (
	"encoding/base64"
	"encoding/json"
	"os"
	"regexp"
	"strings"
	"text/template"
	"time"

	"github.com/google/uuid"
)

// now is replaced in tests.
var now = time.Now

func FuncMap() template.FuncMap {
	return template.FuncMap{
		"uuid": generateUUID,

		"now":       timeNow,
		"today":     today,
		"daysAgo":   daysAgo,
		"hoursAgo":  hoursAgo,
		"timestamp": timestamp,

		"upper": strings.ToUpper,
		"lower": strings.ToLower,
		"trim":  strings.TrimSpace,
		"split": split,

		"quoteRegex": regexp.QuoteMeta,
		"json":       toJSON,
		"base64":     base64Encode,
		"env":        os.Getenv,
	}
}

func generateUUID() string {
	return uuid.New().String()
}

func timeNow() string {
	return now().UTC().Format(time.RFC3339)
}

// today is midnight UTC of the current day.
func today() string {
	return now().UTC().Truncate(24 * time.Hour).Format(time.RFC3339)
}

func daysAgo(days int) string {
	return now().UTC().AddDate(0, 0, -days).Format(time.RFC3339)
}

func hoursAgo(hours int) string {
	return now().UTC().Add(-time.Duration(hours) * time.Hour).Format(time.RFC3339)
}

func timestamp() int64 {
	return now().Unix()
}

// split drops empty and surrounding whitespace from each part.
func split(s, sep string) []string {
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// toJSON renders v as a JSON literal, which is also valid YAML flow syntax.
func toJSON(v any) (string, error) {
	out, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func base64Encode(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func NewTemplate(name string) *template.Template {
	return template.New(name).Option("missingkey=error").Funcs(FuncMap())
}

// MustParse panics if the template cannot be parsed.
func MustParse(name, text string) *template.Template {
	return template.Must(NewTemplate(name).Parse(text))
}

func Apply(tmplStr string, data any) (string, error) {
	return ApplyWithName("", tmplStr, data)
}

// ApplyWithName names the template so parse and execution errors point at
// the query they came from.
func ApplyWithName(name, tmplStr string, data any) (string, error) {
	if tmplStr == "" {
		return "", nil
	}

	tmpl, err := NewTemplate(name).Parse(tmplStr)
	if err != nil {
		return "", err
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}
