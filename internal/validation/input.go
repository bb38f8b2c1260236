package validation

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Input length limits
const (
	MaxEmailLength     = 320 // RFC 5321: 64 chars (local) + 1 (@) + 255 (domain) = 320
	MaxLabelNameLength = 255
)

// LabelSeparator is reserved by the server to join nested label names.
const LabelSeparator = "^"

var (
	// Local part uses the RFC 5322 atext set; the domain needs at least one dot
	// and an alphabetic TLD, so bare hosts like "localhost" are rejected.
	emailPattern = regexp.MustCompile(`(?i)^[a-z0-9!#$%&'*+/=?^_\x60{|}~-]+(?:\.[a-z0-9!#$%&'*+/=?^_\x60{|}~-]+)*@(?:[a-z0-9](?:[a-z0-9-]*[a-z0-9])?\.)+[a-z]{2,}$`)
	intPattern    = regexp.MustCompile(`^[-+]?(?:0|[1-9][0-9]*)$`)
	partIDPattern = regexp.MustCompile(`^[1-9][0-9]*(?:\.[1-9][0-9]*)*$`)
	markerPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)
)

// dateLayouts are tried in order by IsDate and ParseDate.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	"01/02/2006 15:04",
	"01/02/2006 15:04:05",
	time.RFC1123,
	time.RFC1123Z,
	time.RFC822,
	time.RFC822Z,
	time.RFC850,
	time.ANSIC,
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	"Mon, 2 Jan 2006 15:04:05 -0700",
}

// IsEmail reports whether s is a syntactically valid local@domain address.
func IsEmail(s string) bool {
	if s == "" || utf8.RuneCountInString(s) > MaxEmailLength {
		return false
	}
	return emailPattern.MatchString(s)
}

// IsAccount reports whether user and domain together form a valid email address.
func IsAccount(domain, user string) bool {
	return IsEmail(user + "@" + domain)
}

// IsUUID reports whether s is a UUID in canonical 8-4-4-4-12 form.
// uuid.Parse also accepts urn:, braced and undashed forms; those are rejected.
func IsUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	if s[8] != '-' || s[13] != '-' || s[18] != '-' || s[23] != '-' {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

// IsInt reports whether s is an integer without leading zeros.
func IsInt(s string) bool {
	return intPattern.MatchString(s)
}

// IsLabelID reports whether s is a non-negative integer label id.
// Label 0 is the reserved default label.
func IsLabelID(s string) bool {
	return IsInt(s) && s[0] != '-' && s[0] != '+'
}

// IsLabelName reports whether s can be used as a label name.
func IsLabelName(s string) bool {
	if strings.TrimSpace(s) == "" {
		return false
	}
	if utf8.RuneCountInString(s) > MaxLabelNameLength {
		return false
	}
	return !strings.Contains(s, LabelSeparator)
}

// IsMarker reports whether s is a marker name such as "seen" or "REPLIED".
// Case is left to the server.
func IsMarker(s string) bool {
	return markerPattern.MatchString(s)
}

// IsPartID reports whether s is an IMAP-style dotted body part path such as "2" or "3.1".
func IsPartID(s string) bool {
	return partIDPattern.MatchString(s)
}

// IsDate reports whether s parses as a bare date or a date with time.
func IsDate(s string) bool {
	_, ok := ParseDate(s)
	return ok
}

// ParseDate parses s with the first matching layout in dateLayouts.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
