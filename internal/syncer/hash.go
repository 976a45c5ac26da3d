package syncer

import (
	"encoding/json"
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/osonapteka/backoffice/internal/osonkassa"
)

// Content hashes are computed over the remote DTOs, never over the stored
// entities: the DTO carries exactly the meaningful remote fields, so local
// bookkeeping (row id, hash, timestamps, notified flag) can never leak into
// the digest. Struct serialization keeps field order fixed, so the same
// logical content always yields the same hash.

func hashJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%016x", xxhash.Sum64(b))
}

// InventoryHash digests the meaningful content of one remote inventory row.
func InventoryHash(item osonkassa.RemainsItem) string {
	return hashJSON(item)
}

// SaleHash digests the meaningful content of one remote sale header.
func SaleHash(header osonkassa.SaleHeader) string {
	return hashJSON(header)
}
