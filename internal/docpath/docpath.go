// Package docpath computes blob keys for offering documents.
//
// Two layouts coexist: the current scheme {offeringID}/{prefix}/{filename}
// and the legacy prefix-less scheme {offeringID}/{filename}. All functions
// are pure; deciding where a blob actually lives is the fallback resolver's
// job.
package docpath

import (
	"fmt"
	"path"
	"strings"
	"time"
)

// Resolver computes canonical and legacy keys for a configured prefix.
type Resolver struct {
	prefix string
}

// NewResolver returns a Resolver using the given path prefix. An empty
// prefix makes the canonical layout identical to the legacy one.
func NewResolver(prefix string) *Resolver {
	return &Resolver{prefix: strings.Trim(prefix, "/")}
}

// Canonical returns the key a newly stored file gets.
func (r *Resolver) Canonical(offeringID, filename string) string {
	if r.prefix == "" {
		return offeringID + "/" + filename
	}
	return offeringID + "/" + r.prefix + "/" + filename
}

// Legacy returns the prefix-less key the same file would have had before
// the prefix was introduced.
func (r *Resolver) Legacy(offeringID, filename string) string {
	return offeringID + "/" + filename
}

// Candidates returns the ordered list of keys to try when resolving an
// existing object: canonical first, then the legacy form when distinct.
func (r *Resolver) Candidates(offeringID, filename string) []string {
	canonical := r.Canonical(offeringID, filename)
	legacy := r.Legacy(offeringID, filename)
	if legacy == canonical {
		return []string{canonical}
	}
	return []string{canonical, legacy}
}

// IsLegacyFormat reports whether key uses the prefix-less two-segment layout.
func IsLegacyFormat(key string) bool {
	return len(strings.Split(strings.Trim(key, "/"), "/")) == 2
}

// SplitKey extracts the offering id (first segment) and filename (last
// segment) from a blob key of either layout.
func SplitKey(key string) (offeringID, filename string) {
	parts := strings.Split(strings.Trim(key, "/"), "/")
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], parts[len(parts)-1]
}

// SanitizeFilename strips any path components from name and replaces every
// byte outside [A-Za-z0-9._-] with '_'. The result is capped at 100 bytes
// so generated keys stay well under object-store key limits.
func SanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, c := range name {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9',
			c == '.', c == '_', c == '-':
			b.WriteRune(c)
		default:
			b.WriteByte('_')
		}
	}
	s := b.String()
	if len(s) > 100 {
		s = s[len(s)-100:]
	}
	if s == "" || s == "." || s == ".." {
		s = "file"
	}
	return s
}

// GeneratedName builds a collision-resistant stored filename:
// {unixMilli}_{sanitizedBase}_{suffix}.pdf. The suffix is a short random
// hex string; uniqueness is probabilistic, which is acceptable because a
// collision additionally needs the same millisecond and sanitized base,
// and confirm-time checksum dedup catches identical content regardless.
func GeneratedName(original, suffix string) string {
	base := SanitizeFilename(original)
	base = strings.TrimSuffix(base, path.Ext(base))
	if base == "" {
		base = "file"
	}
	return fmt.Sprintf("%d_%s_%s.pdf", time.Now().UnixMilli(), base, suffix)
}
