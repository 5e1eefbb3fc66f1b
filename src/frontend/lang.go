package frontend

type reservedItem struct {
	val string
	typ itemType
}

// rw contains the set of all reserved Genko keywords.
// The first dimension equals the length of the word.
// The second dimension is the slice of all words of that length.
// Indexing by length and searching should be faster than using a hash table.
var rw = [...][]reservedItem{
	// One-grams
	{},
	// Two-grams
	{
		{val: "fn", typ: FN},
		{val: "if", typ: IF},
	},
	// Three-grams
	{
		{val: "let", typ: LET},
	},
	// Four-grams
	{
		{val: "then", typ: THEN},
		{val: "else", typ: ELSE},
		{val: "true", typ: TRUE},
	},
	// Five-grams
	{
		{val: "while", typ: WHILE},
		{val: "false", typ: FALSE},
	},
	// Six-grams
	{
		{val: "global", typ: GLOBAL},
		{val: "return", typ: RETURN},
	},
}

// isKeyword returns true if the string s is a reserved Genko keyword.
// On the return of true the itemType of the keyword is returned.
// On the return of false the itemType is IDENTIFIER, or itemError if s is empty.
func isKeyword(s string) (bool, itemType) {
	if len(s) == 0 {
		return false, itemError
	}
	if len(s) > len(rw) {
		return false, IDENTIFIER
	}

	// Check if string s is a reserved word by iterating over all words in rw of length len(s).
	for _, e1 := range rw[len(s)-1] {
		if e1.val == s {
			return true, e1.typ
		}
	}
	return false, IDENTIFIER
}
