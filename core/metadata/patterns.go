package metadata

import "regexp"

// compileFull compiles p so that it only matches a whole string.
func compileFull(p string) (*regexp.Regexp, error) {
	return regexp.Compile(`^(?:` + p + `)$`)
}

// compilePrefix compiles p so that it only matches at the start of a string.
func compilePrefix(p string) (*regexp.Regexp, error) {
	return regexp.Compile(`^(?:` + p + `)`)
}

var groupRef = regexp.MustCompile(`\$(\d+)`)

// replacementTemplate rewrites "$1" style references as "${1}" so that a
// digit following the reference is not read as part of the group name.
func replacementTemplate(rule string) string {
	return groupRef.ReplaceAllString(rule, `$${$1}`)
}
