package gesture

// Rule maps one finger pattern to a symbol.
type Rule struct {
	Pattern FingerState
	Symbol  Symbol
}

// RuleTable is an ordered rule list. The first rule whose pattern equals the
// input wins; later duplicates of a pattern are never reached.
type RuleTable []Rule

// Lookup returns the symbol of the first matching rule, or Unknown.
func (t RuleTable) Lookup(fs FingerState) Symbol {
	for _, r := range t {
		if r.Pattern == fs {
			return r.Symbol
		}
	}
	return Unknown
}

// Shadowed returns the indexes of rules that can never match because an
// earlier rule has the same pattern.
func (t RuleTable) Shadowed() []int {
	seen := make(map[FingerState]bool, len(t))
	var dead []int
	for i, r := range t {
		if seen[r.Pattern] {
			dead = append(dead, i)
			continue
		}
		seen[r.Pattern] = true
	}
	return dead
}

// englishLetters is the fingerspelling table for English. Several letters
// that need motion (J, Z) or fine thumb placement are approximated by a
// single static pose. The F rules for 10111 and 00111 appear twice.
var englishLetters = RuleTable{
	{F(1, 0, 1, 1, 1), "F"},
	{F(0, 0, 1, 1, 1), "F"},
	{F(1, 0, 1, 1, 1), "F"},
	{F(0, 1, 1, 1, 0), "W"},
	{F(0, 1, 1, 1, 1), "B"},
	{F(1, 1, 1, 1, 1), "C"},
	{F(1, 1, 1, 1, 0), "E"},
	{F(0, 0, 0, 0, 1), "I"},
	{F(1, 0, 0, 0, 1), "Y"},
	{F(1, 1, 0, 0, 0), "L"},
	{F(0, 1, 1, 0, 0), "V"},
	{F(1, 1, 1, 0, 0), "K"},
	{F(0, 1, 0, 0, 0), "D"},
	{F(0, 0, 0, 0, 0), "S"},
	{F(1, 0, 0, 0, 0), "A"},
	{F(0, 1, 0, 0, 1), "🤟"},
	{F(0, 0, 0, 1, 1), "N"},
	{F(1, 0, 1, 0, 0), "G"},
	{F(0, 1, 0, 1, 0), "H"},
	{F(0, 0, 0, 1, 0), "J"},
	{F(0, 0, 1, 0, 0), "M"},
	{F(1, 0, 0, 1, 1), "O"},
	{F(1, 0, 1, 1, 0), "P"},
	{F(0, 1, 0, 1, 1), "Q"},
	{F(1, 1, 0, 1, 0), "R"},
	{F(1, 0, 0, 1, 0), "T"},
	{F(1, 1, 1, 0, 1), "U"},
	{F(0, 0, 1, 1, 0), "X"},
	{F(0, 0, 1, 0, 1), "Z"},
	{F(0, 0, 1, 1, 1), "F"},
}

// arabicLetters covers the 28 letters from أ to ي.
var arabicLetters = RuleTable{
	{F(0, 1, 0, 0, 0), "أ"},
	{F(0, 1, 1, 1, 1), "ب"},
	{F(0, 1, 1, 0, 0), "ت"},
	{F(0, 0, 0, 1, 0), "ث"},
	{F(0, 0, 1, 0, 0), "ج"},
	{F(0, 0, 1, 0, 1), "ح"},
	{F(0, 0, 1, 1, 0), "خ"},
	{F(1, 0, 0, 0, 0), "د"},
	{F(0, 1, 0, 0, 1), "ذ"},
	{F(1, 0, 1, 0, 0), "ر"},
	{F(0, 1, 0, 1, 0), "ز"},
	{F(1, 1, 1, 1, 1), "س"},
	{F(0, 1, 1, 1, 0), "ش"},
	{F(0, 1, 0, 1, 1), "ص"},
	{F(1, 0, 0, 1, 0), "ض"},
	{F(1, 0, 0, 1, 1), "ط"},
	{F(1, 0, 1, 1, 0), "ظ"},
	{F(1, 1, 0, 0, 1), "ع"},
	{F(1, 1, 0, 1, 0), "غ"},
	{F(0, 0, 1, 1, 1), "ف"},
	{F(1, 0, 1, 1, 1), "ف"},
	{F(1, 1, 1, 0, 1), "ق"},
	{F(1, 1, 1, 0, 0), "ك"},
	{F(1, 1, 0, 0, 0), "ل"},
	{F(0, 0, 0, 0, 0), "م"},
	{F(0, 0, 0, 1, 1), "ن"},
	{F(1, 1, 1, 1, 0), "ه"},
	{F(1, 0, 0, 0, 1), "و"},
	{F(0, 0, 0, 0, 1), "ي"},
}

var englishWords = RuleTable{
	{F(1, 1, 1, 1, 1), "Hello"},
	{F(0, 1, 1, 0, 0), "Peace"},
	{F(1, 0, 0, 0, 0), "Good"},
	{F(0, 0, 0, 0, 0), "Yes"},
	{F(0, 1, 0, 0, 0), "One"},
	{F(1, 0, 0, 0, 1), "Call Me"},
	{F(1, 1, 0, 0, 1), "I Love You"},
	{F(1, 1, 1, 1, 0), "Thanks"},
	{F(0, 0, 0, 1, 1), "No"},
	{F(0, 0, 1, 0, 0), "Please"},
	{F(1, 0, 1, 0, 0), "Water"},
	{F(1, 0, 1, 0, 1), "Sorry"},
	{F(0, 1, 0, 1, 0), "Help"},
	{F(0, 1, 0, 1, 1), "More"},
	{F(0, 0, 1, 1, 1), "Fine"},
}

var arabicWords = RuleTable{
	{F(1, 1, 1, 1, 1), "مرحبا"},
	{F(0, 1, 1, 0, 0), "سلام"},
	{F(1, 0, 0, 0, 0), "تمام"},
	{F(0, 0, 0, 0, 0), "نعم"},
	{F(1, 1, 0, 0, 1), "أحبك"},
	{F(1, 1, 1, 1, 0), "شكراً"},
	{F(0, 0, 0, 1, 1), "لا"},
	{F(0, 0, 1, 0, 0), "من فضلك"},
	{F(1, 0, 1, 0, 0), "ماء"},
	{F(1, 0, 1, 0, 1), "آسف"},
	{F(0, 1, 0, 1, 0), "مساعدة"},
	{F(0, 1, 0, 1, 1), "المزيد"},
	{F(0, 0, 1, 1, 1), "جيد"},
}
