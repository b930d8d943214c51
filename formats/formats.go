// Package formats holds the string format checks used by dsl.String.
package formats

import (
	"net/url"
	"regexp"

	"github.com/google/uuid"
)

// Email is the default e-mail pattern: no leading dot, no consecutive dots,
// and a dotted domain with an alphabetic TLD.
var Email = regexp.MustCompile(`(?i)^([a-z0-9_'+\-.]*)[a-z0-9_+-]@([a-z0-9][a-z0-9-]*\.)+[a-z]{2,}$`)

// IsEmail reports whether s matches Email. Leading and doubled dots in the
// local part are rejected separately because RE2 has no lookahead.
func IsEmail(s string) bool {
	if len(s) == 0 || s[0] == '.' {
		return false
	}
	for i := 1; i < len(s); i++ {
		if s[i] == '.' && s[i-1] == '.' {
			return false
		}
	}
	return Email.MatchString(s)
}

// IsURL reports whether s parses as an absolute URL.
func IsURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.Scheme != "" && (u.Host != "" || u.Opaque != "")
}

// IsUUID reports whether s is a UUID in one of the textual forms accepted by
// github.com/google/uuid.
func IsUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
