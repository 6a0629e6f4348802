package store

import (
	"crypto/rand"
	"encoding/base32"
	"strings"
	"time"
)

// newRandomID returns prefix-<suffix> where suffix is 8 chars of base32
// (lowercase, no padding). 8 chars base32 ~= 40 bits of space.
func newRandomID(prefix string) (string, error) {
	var b [5]byte // 40 bits -> 8 base32 chars
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	enc := base32.StdEncoding.WithPadding(base32.NoPadding)
	suffix := strings.ToLower(enc.EncodeToString(b[:]))
	return prefix + "-" + suffix, nil
}

// SuggestWorksheetName mints a name for `init` when the caller gave none:
// incident-<yyyymmdd>-<random>. Date first so directory listings sort by
// onset day.
func SuggestWorksheetName(now time.Time) string {
	prefix := "incident-" + now.UTC().Format("20060102")
	id, err := newRandomID(prefix)
	if err != nil {
		return prefix + "-" + now.UTC().Format("150405")
	}
	return id
}
