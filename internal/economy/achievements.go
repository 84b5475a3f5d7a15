package economy

// Achievement ids. These are stable wire-level identifiers; display titles
// are derived by the presentation layer and are not a concern of the core.
const (
	AchFirstChat           = "first_chat"
	AchTenChats            = "ten_chats"
	AchHundredChats        = "hundred_chats"
	AchThousandChats       = "thousand_chats"
	AchTenThousandChats    = "ten_thousand_chats"
	AchHundredThousandChat = "hundred_thousand_chats"

	AchFirstProChat = "first_pro_chat"
	AchFastResponse = "fast_response"
	AchBigSpender   = "big_spender"
)

// FastResponseMillis is the turn latency below which fast_response unlocks.
const FastResponseMillis = 5000

// BigSpenderThreshold is the lifetime credits-spent total that unlocks
// big_spender.
const BigSpenderThreshold int64 = 1000

// projectCountRules maps project-count thresholds to achievement ids.
var projectCountRules = []struct {
	count int64
	id    string
}{
	{1, AchFirstChat},
	{10, AchTenChats},
	{100, AchHundredChats},
	{1000, AchThousandChats},
	{10000, AchTenThousandChats},
	{100000, AchHundredThousandChat},
}

// Catalog returns every achievement id the rule set can grant, in a stable
// order. Exposed read-only through the API so clients can render catalogs
// without hardcoding the list.
func Catalog() []string {
	out := make([]string, 0, len(projectCountRules)+3)
	for _, r := range projectCountRules {
		out = append(out, r.id)
	}
	return append(out, AchFirstProChat, AchFastResponse, AchBigSpender)
}

// TurnFacts are the updated counters an achievement evaluation runs
// against after a chat turn has completed and persisted.
type TurnFacts struct {
	ProMode       bool
	ElapsedMillis int64
	CreditsSpent  int64 // lifetime total after this turn
}

// EvaluateTurn returns the achievement ids newly satisfied by facts. The
// rule set is monotone: rules only ever fire, never retract, and granting
// is a set union so re-evaluating already-held achievements is a no-op.
func EvaluateTurn(facts TurnFacts) []string {
	var out []string
	if facts.ProMode {
		out = append(out, AchFirstProChat)
	}
	if facts.ElapsedMillis >= 0 && facts.ElapsedMillis < FastResponseMillis {
		out = append(out, AchFastResponse)
	}
	if facts.CreditsSpent >= BigSpenderThreshold {
		out = append(out, AchBigSpender)
	}
	return out
}

// EvaluateProjectCount returns the achievement ids satisfied by the user's
// total number of created projects. Thresholds are exact ("Nth project
// created"), but evaluation is tolerant of counts beyond a threshold so a
// missed grant heals on the next creation.
func EvaluateProjectCount(total int64) []string {
	var out []string
	for _, r := range projectCountRules {
		if total >= r.count {
			out = append(out, r.id)
		}
	}
	return out
}
