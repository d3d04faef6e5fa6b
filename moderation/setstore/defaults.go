package setstore

// Built-in wordlists. These are starting points, not policy: deployments are
// expected to override them via LoadFromFileJSON.
const (
	SetProfanity     = "profanity"
	SetNegativeWords = "negative-words"
	SetViolenceWords = "violence-words"
)

var defaultSets = map[string][]string{
	SetProfanity: {
		"ass", "asshole", "bastard", "bitch", "bullshit", "crap", "cunt",
		"damn", "dick", "douchebag", "fuck", "fucking", "piss", "prick",
		"shit", "slut", "twat", "whore",
	},
	SetNegativeWords: {
		"awful", "disgusting", "dumb", "garbage", "hate", "hideous",
		"idiot", "loser", "moron", "pathetic", "stupid", "terrible",
		"trash", "ugly", "useless", "worthless",
	},
	SetViolenceWords: {
		"attack", "beat", "choke", "destroy", "die", "gun", "hurt", "kill",
		"knife", "murder", "punch", "shoot", "stab", "strangle",
	},
}

// A MemSetStore pre-seeded with the built-in wordlists.
func NewDefaultSetStore() *MemSetStore {
	s := NewMemSetStore()
	for name, l := range defaultSets {
		s.AddToSet(name, l)
	}
	return s
}
