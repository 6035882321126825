package contracts

import "sort"

// MaxSymbolLength is the longest symbol accepted into a Universe
const MaxSymbolLength = 5

// SymbolRecord is the listing metadata of one verified symbol
type SymbolRecord struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`   // Security Name
	IsETF  bool   `json:"is_etf"` // ETF flag == "Y"
}

// Universe is the verified symbol set plus per-symbol metadata
// ⭐ SSOT: Registry → Extractor/Filter 검증 종목 전달
// A symbol can be verified without metadata; Lookup then reports false.
type Universe struct {
	symbols map[string]struct{}
	meta    map[string]SymbolRecord
}

// NewUniverse creates an empty universe
func NewUniverse() *Universe {
	return &Universe{
		symbols: make(map[string]struct{}),
		meta:    make(map[string]SymbolRecord),
	}
}

// IsValidSymbol reports whether s is 1-5 uppercase ASCII letters
func IsValidSymbol(s string) bool {
	if len(s) == 0 || len(s) > MaxSymbolLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			return false
		}
	}
	return true
}

// Add verifies rec.Symbol and stores its metadata unless metadata already exists
// (first writer wins). Returns false for an invalid symbol.
func (u *Universe) Add(rec SymbolRecord) bool {
	if !IsValidSymbol(rec.Symbol) {
		return false
	}
	u.symbols[rec.Symbol] = struct{}{}
	if _, exists := u.meta[rec.Symbol]; !exists {
		u.meta[rec.Symbol] = rec
	}
	return true
}

// AddSymbol verifies a symbol without attaching metadata
func (u *Universe) AddSymbol(symbol string) bool {
	if !IsValidSymbol(symbol) {
		return false
	}
	u.symbols[symbol] = struct{}{}
	return true
}

// Contains checks if a symbol is verified
func (u *Universe) Contains(symbol string) bool {
	_, ok := u.symbols[symbol]
	return ok
}

// Lookup returns the metadata of a symbol
func (u *Universe) Lookup(symbol string) (SymbolRecord, bool) {
	rec, ok := u.meta[symbol]
	return rec, ok
}

// Name returns the security name, or "" when metadata is missing
func (u *Universe) Name(symbol string) string {
	return u.meta[symbol].Name
}

// Count returns the number of verified symbols
func (u *Universe) Count() int {
	return len(u.symbols)
}

// Symbols returns all verified symbols in alphabetical order
func (u *Universe) Symbols() []string {
	out := make([]string, 0, len(u.symbols))
	for s := range u.symbols {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
