package gesture

import "github.com/ayusman/mudra/internal/detector"

type tableKey struct {
	lang Language
	mode Mode
}

var tables = map[tableKey]RuleTable{
	{English, Letters}: englishLetters,
	{Arabic, Letters}:  arabicLetters,
	{English, Words}:   englishWords,
	{Arabic, Words}:    arabicWords,
}

// Table returns the rule table for a language and mode, or nil if the pair
// is not supported.
func Table(lang Language, mode Mode) RuleTable {
	return tables[tableKey{lang, mode}]
}

// Classify maps a finger state to a symbol using the table for lang and mode.
// Unsupported pairs and unmatched states yield Unknown.
func Classify(fs FingerState, mode Mode, lang Language) Symbol {
	t := Table(lang, mode)
	if t == nil {
		return Unknown
	}
	return t.Lookup(fs)
}

// ClassifyHand extracts the finger state of hand and classifies it. A nil
// hand yields NoHand.
func ClassifyHand(hand *detector.HandLandmarks, mode Mode, lang Language) (FingerState, Symbol) {
	if hand == nil {
		return FingerState{}, NoHand
	}
	fs := ExtractFingerState(hand)
	return fs, Classify(fs, mode, lang)
}

// TableResult is the symbol one rule table yields.
type TableResult struct {
	Language Language `json:"language"`
	Mode     Mode     `json:"mode"`
	Symbol   Symbol   `json:"symbol"`
}

// ClassifyAll returns the symbol for fs in every language and mode.
func ClassifyAll(fs FingerState) []TableResult {
	out := make([]TableResult, 0, len(Languages)*len(Modes))
	for _, lang := range Languages {
		for _, mode := range Modes {
			out = append(out, TableResult{Language: lang, Mode: mode, Symbol: Classify(fs, mode, lang)})
		}
	}
	return out
}
