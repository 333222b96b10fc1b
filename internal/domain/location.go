package domain

import (
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/text/cases"
)

const fingerprintPrefix = "loc:"

// DeliveryLocation is a free-form delivery address together with its
// normalized form and fingerprint. Two addresses that differ only in
// whitespace, comma spacing or letter case share a fingerprint.
type DeliveryLocation struct {
	Raw         string
	Normalized  string
	Fingerprint string
}

func NewDeliveryLocation(raw string) DeliveryLocation {
	norm := NormalizeAddress(raw)
	return DeliveryLocation{
		Raw:         raw,
		Normalized:  norm,
		Fingerprint: Fingerprint(norm),
	}
}

// Empty reports whether nothing usable remains after normalization.
func (l DeliveryLocation) Empty() bool { return l.Normalized == "" }

// NormalizeAddress trims, collapses whitespace, tidies comma separators and
// case-folds the address.
func NormalizeAddress(raw string) string {
	parts := strings.Split(raw, ",")
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Join(strings.Fields(p), " ")
		if p != "" {
			kept = append(kept, p)
		}
	}
	return cases.Fold().String(strings.Join(kept, ", "))
}

// Fingerprint hashes an already-normalized address into a cache key.
func Fingerprint(normalized string) string {
	return fingerprintPrefix + strconv.FormatUint(xxhash.Sum64String(normalized), 16)
}
