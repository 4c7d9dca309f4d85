package bounty

// CanPublish decides whether an analyzed draft may be committed.
//
// The verdict string alone is not trusted: "needs_work" is only publishable
// when no missing-info item is critical. Anything else, including
// "insufficient" and unknown verdicts, blocks. There is no override.
func CanPublish(r AnalysisResult) bool {
	switch r.Verdict {
	case VerdictReady:
		return true
	case VerdictNeedsWork:
		return len(r.CriticalMissing()) == 0
	default:
		return false
	}
}
