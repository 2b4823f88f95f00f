// Package match evaluates alert patterns against fetched page bodies.
package match

import "regexp"

// Compile compiles pattern case-insensitively. Registration uses this to
// reject uncompilable patterns up front; the polling worker uses it again at
// evaluation time (a failure there is a logic error and the alert is
// skipped).
func Compile(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile("(?i)" + pattern)
}

// Notify reports whether a notification should fire: the pattern found an
// occurrence in body, XOR-ed with the invert flag (invert means "notify when
// NOT found").
func Notify(re *regexp.Regexp, body string, invert bool) bool {
	return re.MatchString(body) != invert
}
