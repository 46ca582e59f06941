// Package account classifies which known account a statement belongs to,
// from its filename and an optional user-supplied hint.
package account

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledgerdesk/statement-parser/internal/models"
)

// pattern ties an account identity to a filename predicate. Patterns are
// evaluated in order; the first match wins, so more specific detectors
// must come first. New formats are added by appending entries.
type pattern struct {
	identity models.Identity
	match    func(filename string) bool
}

var (
	longFormDate = regexp.MustCompile(`[a-zA-Z]+\s+\d{1,2},\s+\d{4}`)

	bmoCADMarker   = regexp.MustCompile(`(?i)MC1785|BMO.*CAD|CAD.*BMO`)
	bmoUSMarker    = regexp.MustCompile(`(?i)USD|US.*MC|BMO.*USD`)
	tdCreditMarker = regexp.MustCompile(`(?i)TD.*(CC|Visa|Credit)`)
	tdCreditSuffix = regexp.MustCompile(`(?i)[_-]\d{4}\.pdf$`)
	tdChkMarker    = regexp.MustCompile(`(?i)TD.*(Chk|Check|All.Inclusive|Saving)`)
	tdChkSuffix    = regexp.MustCompile(`(?i)_\d{4}\.pdf$`)

	bmoToken     = regexp.MustCompile(`BMO`)
	tdToken      = regexp.MustCompile(`\bTD\b`)
	usToken      = regexp.MustCompile(`US|USD`)
	chequingLike = regexp.MustCompile(`CHK|CHECK|SAVING|ALL.INCLUSIVE`)
)

var filenamePatterns = []pattern{
	{models.BMOCADCreditCard, func(fn string) bool {
		return bmoCADMarker.MatchString(fn) && longFormDate.MatchString(fn)
	}},
	{models.BMOUSCreditCard, func(fn string) bool {
		return bmoUSMarker.MatchString(fn) && longFormDate.MatchString(fn)
	}},
	{models.TDCADCreditCard, func(fn string) bool {
		return tdCreditMarker.MatchString(fn) && tdCreditSuffix.MatchString(fn)
	}},
	{models.TDCADChecking, func(fn string) bool {
		return tdChkMarker.MatchString(fn) && tdChkSuffix.MatchString(fn)
	}},
}

// hintKeywords maps short hint substrings to identities. Ordered so that
// longer, more specific keywords are tested before their prefixes.
var hintKeywords = []struct {
	keyword  string
	identity models.Identity
}{
	{"bmo cad", models.BMOCADCreditCard},
	{"bmo usd", models.BMOUSCreditCard},
	{"bmo us", models.BMOUSCreditCard},
	{"td cc", models.TDCADCreditCard},
	{"td credit", models.TDCADCreditCard},
	{"td checking", models.TDCADChecking},
	{"td chk", models.TDCADChecking},
}

// Detect resolves the account identity for a statement. A nil return means
// unresolved: the caller is expected to ask the user to choose. Detection
// never fails; a malformed filename is simply a non-match.
func Detect(path, hint string) *models.Identity {
	fn := filepath.Base(path)
	fnUpper := strings.ToUpper(fn)

	// Explicit hint from the user wins over everything.
	if hint != "" {
		h := strings.ToLower(hint)
		for _, kw := range hintKeywords {
			if strings.Contains(h, kw.keyword) {
				return identityPtr(kw.identity)
			}
		}
		// Accept the hint if it is a substring of a known account label.
		for _, p := range filenamePatterns {
			if strings.Contains(strings.ToLower(string(p.identity)), h) {
				return identityPtr(p.identity)
			}
		}
	}

	for _, p := range filenamePatterns {
		if safeMatch(p.match, fn) {
			return identityPtr(p.identity)
		}
	}

	// Fuzzy fallback: bare issuer marker plus secondary sub-type markers.
	if bmoToken.MatchString(fnUpper) {
		if usToken.MatchString(fnUpper) {
			return identityPtr(models.BMOUSCreditCard)
		}
		return identityPtr(models.BMOCADCreditCard)
	}
	if tdToken.MatchString(fnUpper) {
		if chequingLike.MatchString(fnUpper) {
			return identityPtr(models.TDCADChecking)
		}
		return identityPtr(models.TDCADCreditCard)
	}

	return nil
}

// safeMatch runs a predicate, treating a panic as a non-match so one broken
// detector can never abort detection.
func safeMatch(match func(string) bool, fn string) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return match(fn)
}

func identityPtr(id models.Identity) *models.Identity {
	return &id
}
