package strike

import (
	"crypto/md5"
	"encoding/hex"
)

// IDLength is the number of hex characters kept from the digest.
const IDLength = 12

// ID derives the dedup identity of a record: the first 12 hex characters of
// md5(date + sector + region + province). Absent fields contribute "".
// Relevance is not part of the identity.
func ID(r Record) string {
	h := md5.New()
	_, _ = h.Write([]byte(r.Date.String()))
	_, _ = h.Write([]byte(r.Sector.String()))
	_, _ = h.Write([]byte(r.Region.String()))
	_, _ = h.Write([]byte(r.Province.String()))
	return hex.EncodeToString(h.Sum(nil))[:IDLength]
}
