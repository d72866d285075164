package churchtools

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeName returns the NFC form of a remote display name with
// surrounding whitespace trimmed. Local group names and folder mount points
// are derived from remote names, and the remote service does not guarantee a
// consistent Unicode normal form — without this, the same group fetched twice
// can produce two distinct local groups.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}
