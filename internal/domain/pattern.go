package domain

import (
	"regexp"
	"strings"
)

// CachePattern is a compiled admin glob: '*' matches any run of characters
// and '?' a single character. An empty pattern or "*" matches everything.
type CachePattern struct {
	raw string
	re  *regexp.Regexp
}

func CompilePattern(glob string) CachePattern {
	glob = strings.TrimSpace(glob)
	if glob == "" || glob == "*" {
		return CachePattern{raw: "*"}
	}
	expr := regexp.QuoteMeta(NormalizeAddress(glob))
	if strings.HasPrefix(glob, fingerprintPrefix) {
		expr = regexp.QuoteMeta(strings.ToLower(glob))
	}
	expr = strings.ReplaceAll(expr, `\*`, ".*")
	expr = strings.ReplaceAll(expr, `\?`, ".")
	return CachePattern{raw: glob, re: regexp.MustCompile("^" + expr + "$")}
}

func (p CachePattern) String() string { return p.raw }

// All reports whether the pattern matches every entry.
func (p CachePattern) All() bool { return p.re == nil }

// Matches tests the pattern against an entry's fingerprint or normalized address.
func (p CachePattern) Matches(fingerprint, normalized string) bool {
	if p.re == nil {
		return true
	}
	return p.re.MatchString(fingerprint) || p.re.MatchString(normalized)
}

// SQLLike renders the pattern for a LIKE clause with '\' as the escape.
func (p CachePattern) SQLLike() string {
	if p.re == nil {
		return "%"
	}
	src := p.raw
	if !strings.HasPrefix(src, fingerprintPrefix) {
		src = NormalizeAddress(src)
	} else {
		src = strings.ToLower(src)
	}
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`, `*`, `%`, `?`, `_`)
	return r.Replace(src)
}
