package domain

// Position is a location in source. Line and Column are 1-based.
type Position struct {
	Line      int `json:"line" yaml:"line"`
	Column    int `json:"column" yaml:"column"`
	StartByte int `json:"-" yaml:"-"`
	EndByte   int `json:"-" yaml:"-"`
}

// Less orders positions by line, then column, then byte span
func (p Position) Less(o Position) bool {
	if p.Line != o.Line {
		return p.Line < o.Line
	}
	if p.Column != o.Column {
		return p.Column < o.Column
	}
	if p.StartByte != o.StartByte {
		return p.StartByte < o.StartByte
	}
	return p.EndByte < o.EndByte
}

// MatchKey identifies a match for deduplication
type MatchKey struct {
	Rule   string
	Anchor Position
}

// Match is one raw hit of a rule's pattern, anchored at its primary capture
type Match struct {
	Rule   string
	Anchor Position
	Text   string
}

// Key returns the (rule name, anchor position) identity of the match
func (m Match) Key() MatchKey {
	return MatchKey{Rule: m.Rule, Anchor: m.Anchor}
}

// Issue is a single reported finding derived from one deduplicated match
type Issue struct {
	Rule       string   `json:"rule" yaml:"rule"`
	Severity   Severity `json:"severity" yaml:"severity"`
	Line       int      `json:"line" yaml:"line"`
	Column     int      `json:"column" yaml:"column"`
	Message    string   `json:"message" yaml:"message"`
	Suggestion string   `json:"suggestion" yaml:"suggestion"`
	Text       string   `json:"text,omitempty" yaml:"text,omitempty"`
	Weight     float64  `json:"-" yaml:"-"`
}
