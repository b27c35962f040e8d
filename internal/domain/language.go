package domain

// knownLanguages mirrors the language modes the editor offers. The room
// stores whatever tag arrives (rejecting unknown tags would break older
// clients); this set is informational, for listings and logs.
var knownLanguages = map[string]struct{}{
	"javascript": {},
	"typescript": {},
	"python":     {},
	"java":       {},
	"cpp":        {},
	"c":          {},
	"go":         {},
	"rust":       {},
}

func KnownLanguage(tag string) bool {
	_, ok := knownLanguages[tag]
	return ok
}
