package output

// StatementInfo describes one statement for structured output.
type StatementInfo struct {
	Index int    `json:"index" yaml:"index"`
	Type  string `json:"type" yaml:"type"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
	Start int    `json:"start" yaml:"start"`
	End   int    `json:"end" yaml:"end"`
	Text  string `json:"text" yaml:"text"`
}

// GroupInfo is a statement group: a self-contained unit such as a routine
// with its body.
type GroupInfo struct {
	Index      int             `json:"index" yaml:"index"`
	Start      int             `json:"start" yaml:"start"`
	End        int             `json:"end" yaml:"end"`
	Text       string          `json:"text" yaml:"text"`
	Statements []StatementInfo `json:"statements" yaml:"statements"`
}

// SplitOutput is the result of the split command.
type SplitOutput struct {
	File   string      `json:"file" yaml:"file"`
	Groups []GroupInfo `json:"groups" yaml:"groups"`
}

// ResolvedInfo is the catalog object a reference resolved to.
type ResolvedInfo struct {
	Schema string `json:"schema" yaml:"schema"`
	Name   string `json:"name" yaml:"name"`
	Kind   string `json:"kind" yaml:"kind"`
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
}

// ReferenceInfo is one object reference.
type ReferenceInfo struct {
	Statement  int           `json:"statement" yaml:"statement"`
	Schema     string        `json:"schema,omitempty" yaml:"schema,omitempty"`
	Name       string        `json:"name" yaml:"name"`
	System     string        `json:"system,omitempty" yaml:"system,omitempty"`
	Alias      string        `json:"alias,omitempty" yaml:"alias,omitempty"`
	CreateType string        `json:"createType,omitempty" yaml:"createType,omitempty"`
	UDTF       bool          `json:"udtf,omitempty" yaml:"udtf,omitempty"`
	CTE        bool          `json:"cte,omitempty" yaml:"cte,omitempty"`
	Start      int           `json:"start" yaml:"start"`
	End        int           `json:"end" yaml:"end"`
	Resolved   *ResolvedInfo `json:"resolved,omitempty" yaml:"resolved,omitempty"`
}

// CTEInfo is a common table expression.
type CTEInfo struct {
	Statement int      `json:"statement" yaml:"statement"`
	Name      string   `json:"name" yaml:"name"`
	Columns   []string `json:"columns,omitempty" yaml:"columns,omitempty"`
}

// RefsOutput is the result of the refs command.
type RefsOutput struct {
	File       string          `json:"file" yaml:"file"`
	References []ReferenceInfo `json:"references" yaml:"references"`
	CTEs       []CTEInfo       `json:"ctes,omitempty" yaml:"ctes,omitempty"`
}

// TokenInfo is one token of the token stream.
type TokenInfo struct {
	Type  string `json:"type" yaml:"type"`
	Value string `json:"value" yaml:"value"`
	Start int    `json:"start" yaml:"start"`
	End   int    `json:"end" yaml:"end"`
	// Depth is the bracket nesting level when blocks are shown.
	Depth int `json:"depth,omitempty" yaml:"depth,omitempty"`
}

// IndexOutput summarizes an index run.
type IndexOutput struct {
	Root    string `json:"root" yaml:"root"`
	Index   string `json:"index" yaml:"index"`
	Scanned int    `json:"scanned" yaml:"scanned"`
	Indexed int    `json:"indexed" yaml:"indexed"`
	Skipped int    `json:"skipped" yaml:"skipped"`
	Removed int    `json:"removed" yaml:"removed"`
}
