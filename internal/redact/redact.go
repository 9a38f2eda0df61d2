// Package redact scrubs credentials and infrastructure details from error
// text before it is logged or rendered in a 500 response.
package redact

import "regexp"

type rule struct {
	pattern     *regexp.Regexp
	placeholder string
}

// Rules run in order; credential rules come before the broader path and
// host rules so a connection string is reported as a credential.
var rules = []rule{
	{
		regexp.MustCompile(`(?i)(postgres(ql)?|pgx|database)://[^@\s]+@`),
		"[REDACTED_CREDENTIAL]@",
	},
	{
		regexp.MustCompile(`\$2[abxy]?\$\d{2}\$[./A-Za-z0-9]{53}`),
		"[REDACTED_HASH]",
	},
	{
		regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`),
		"[REDACTED_JWT]",
	},
	{
		regexp.MustCompile(`(?i)bearer\s+\S+`),
		"Bearer [REDACTED_JWT]",
	},
	{
		regexp.MustCompile(`(?i)(password|passwd|pwd)(\s*[=:]\s*['"]?)[^'"&\s]{3,}`),
		"$1$2[REDACTED_CREDENTIAL]",
	},
	{
		regexp.MustCompile(`(?i)(jwt_secret|secret|api[_-]?key|token)(\s*[=:]\s*['"]?)[A-Za-z0-9_\-.~+/]{8,}`),
		"$1$2[REDACTED_KEY]",
	},
	{
		regexp.MustCompile(`goroutine \d+ \[[^\]]*\]:[\s\S]*`),
		"[STACK_TRACE_REDACTED]",
	},
	{
		regexp.MustCompile(`\b(SELECT|INSERT INTO|UPDATE|DELETE FROM)\b[^;]*`),
		"[REDACTED_SQL]",
	},
	{
		regexp.MustCompile(`(/[\w.-]+){2,}`),
		"[REDACTED_PATH]",
	},
	{
		regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}(?::\d{1,5})?\b`),
		"[REDACTED_HOST]",
	},
}

// String redacts sensitive information from s.
func String(s string) string {
	for _, r := range rules {
		s = r.pattern.ReplaceAllString(s, r.placeholder)
	}
	return s
}

// Error redacts sensitive information from err.Error(). A nil error yields "".
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
