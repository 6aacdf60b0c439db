package pipeline

import "regexp"

// deferredActionPatterns are the tells of a fast reply pretending work was
// performed. The fast path answers from conversation alone; anything that
// claims a completed action must have gone through a reviewed plan, so a
// reply speaking in the past tense about side effects gets rerouted.
var deferredActionPatterns = []*regexp.Regexp{
	// First-person framing of already-done work.
	regexp.MustCompile(`(?i)\bi(?:'ve| have|'d| had)? (?:gone ahead|already|just)\b`),
	regexp.MustCompile(`(?i)\bi went ahead\b`),

	// First-person past-tense side-effect claims.
	regexp.MustCompile(`(?i)\bi(?:'ve| have)? (?:deleted|removed|erased|sent|emailed|posted|created|updated|moved|renamed|scheduled|cancelled|canceled|paid|transferred|ordered|uploaded|installed|executed|ran)\b`),

	// Passive-voice side-effect claims.
	regexp.MustCompile(`(?i)\b(?:has|have) been (?:deleted|removed|erased|sent|emailed|posted|created|updated|moved|renamed|scheduled|cancelled|canceled|paid|transferred|ordered|uploaded|installed|executed)\b`),
}

// VerifyFastReply scans a fast-path text reply for deferred-action language
// and returns the matched fragments. A non-empty result means the reply must
// be rerouted through a full plan: the planner is describing side effects
// that never ran and were never reviewed.
func VerifyFastReply(text string) []string {
	var hits []string
	for _, re := range deferredActionPatterns {
		if m := re.FindString(text); m != "" {
			hits = append(hits, m)
		}
	}
	return hits
}
