package crypto

const (
	UppercaseChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	LowercaseChars = "abcdefghijklmnopqrstuvwxyz"
	DigitChars     = "0123456789"
	SymbolChars    = "!@#$%^&*()_+"
)

// Selection is the set of character classes enabled for a password.
type Selection struct {
	Lowercase bool
	Uppercase bool
	Digits    bool
	Symbols   bool
}

// DefaultSelection mirrors the form defaults: lowercase only.
func DefaultSelection() Selection {
	return Selection{Lowercase: true}
}

// AllClasses returns a selection with every class enabled.
func AllClasses() Selection {
	return Selection{Lowercase: true, Uppercase: true, Digits: true, Symbols: true}
}

// Empty reports whether no class is enabled.
func (s Selection) Empty() bool {
	return !s.Lowercase && !s.Uppercase && !s.Digits && !s.Symbols
}

// String encodes the selection as a four-character flag string in pool
// order, e.g. "ul--" for upper+lower.
func (s Selection) String() string {
	flags := []byte("----")
	if s.Uppercase {
		flags[0] = 'u'
	}
	if s.Lowercase {
		flags[1] = 'l'
	}
	if s.Digits {
		flags[2] = 'd'
	}
	if s.Symbols {
		flags[3] = 's'
	}
	return string(flags)
}

// BuildPool concatenates the enabled classes in the fixed order
// upper, lower, digits, symbols. An empty selection yields an empty pool.
func BuildPool(sel Selection) string {
	var pool string
	if sel.Uppercase {
		pool += UppercaseChars
	}
	if sel.Lowercase {
		pool += LowercaseChars
	}
	if sel.Digits {
		pool += DigitChars
	}
	if sel.Symbols {
		pool += SymbolChars
	}
	return pool
}

// PoolSize returns len(BuildPool(sel)) without building the pool.
func PoolSize(sel Selection) int {
	n := 0
	if sel.Uppercase {
		n += len(UppercaseChars)
	}
	if sel.Lowercase {
		n += len(LowercaseChars)
	}
	if sel.Digits {
		n += len(DigitChars)
	}
	if sel.Symbols {
		n += len(SymbolChars)
	}
	return n
}
