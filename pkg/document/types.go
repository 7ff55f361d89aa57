package document

import "github.com/leapstack-labs/sqlscope/pkg/token"

// StatementType classifies a statement by its leading keyword.
type StatementType int32

// Statement types.
const (
	Unknown StatementType = iota
	Create
	Insert
	Select
	With
	Update
	Delete
	Declare
	Begin
	Drop
	End
	Else
	Elseif
	Call
	Alter
	Fetch
	For
	Get
	Goto
	If
	Include
	Iterate
	Leave
	Loop
	Merge
	Open
	Pipe
	Repeat
	Resignal
	Return
	Signal
	Set
	While
	Values
	Comment
	Grant
	Revoke
	Label
)

var statementKeywords = map[string]StatementType{
	"CREATE":   Create,
	"INSERT":   Insert,
	"SELECT":   Select,
	"WITH":     With,
	"UPDATE":   Update,
	"DELETE":   Delete,
	"DECLARE":  Declare,
	"BEGIN":    Begin,
	"DROP":     Drop,
	"END":      End,
	"ELSE":     Else,
	"ELSEIF":   Elseif,
	"CALL":     Call,
	"ALTER":    Alter,
	"FETCH":    Fetch,
	"FOR":      For,
	"GET":      Get,
	"GOTO":     Goto,
	"IF":       If,
	"INCLUDE":  Include,
	"ITERATE":  Iterate,
	"LEAVE":    Leave,
	"LOOP":     Loop,
	"MERGE":    Merge,
	"OPEN":     Open,
	"PIPE":     Pipe,
	"REPEAT":   Repeat,
	"RESIGNAL": Resignal,
	"RETURN":   Return,
	"SIGNAL":   Signal,
	"SET":      Set,
	"WHILE":    While,
	"VALUES":   Values,
	"COMMENT":  Comment,
	"GRANT":    Grant,
	"REVOKE":   Revoke,
}

var statementTypeNames = map[StatementType]string{
	Unknown:  "Unknown",
	Label:    "Label",
	Create:   "Create",
	Insert:   "Insert",
	Select:   "Select",
	With:     "With",
	Update:   "Update",
	Delete:   "Delete",
	Declare:  "Declare",
	Begin:    "Begin",
	Drop:     "Drop",
	End:      "End",
	Else:     "Else",
	Elseif:   "Elseif",
	Call:     "Call",
	Alter:    "Alter",
	Fetch:    "Fetch",
	For:      "For",
	Get:      "Get",
	Goto:     "Goto",
	If:       "If",
	Include:  "Include",
	Iterate:  "Iterate",
	Leave:    "Leave",
	Loop:     "Loop",
	Merge:    "Merge",
	Open:     "Open",
	Pipe:     "Pipe",
	Repeat:   "Repeat",
	Resignal: "Resignal",
	Return:   "Return",
	Signal:   "Signal",
	Set:      "Set",
	While:    "While",
	Values:   "Values",
	Comment:  "Comment",
	Grant:    "Grant",
	Revoke:   "Revoke",
}

func (t StatementType) String() string {
	if name, ok := statementTypeNames[t]; ok {
		return name
	}
	return "Unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (t StatementType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// ClassifyKeyword maps a leading keyword to its statement type.
func ClassifyKeyword(value string) StatementType {
	return statementKeywords[upper(value)]
}

// ClauseType is a top-level clause marker.
type ClauseType int32

// Clause types.
const (
	ClauseUnknown ClauseType = iota
	ClauseFrom
	ClauseInto
	ClauseWhere
	ClauseGroup
	ClauseHaving
	ClauseOrder
	ClauseLimit
	ClauseOffset
)

var clauseKeywords = map[string]ClauseType{
	"FROM":   ClauseFrom,
	"INTO":   ClauseInto,
	"WHERE":  ClauseWhere,
	"GROUP":  ClauseGroup,
	"HAVING": ClauseHaving,
	"ORDER":  ClauseOrder,
	"LIMIT":  ClauseLimit,
	"OFFSET": ClauseOffset,
}

var clauseNames = [...]string{"UNKNOWN", "FROM", "INTO", "WHERE", "GROUP", "HAVING", "ORDER", "LIMIT", "OFFSET"}

func (c ClauseType) String() string {
	if c < 0 || int(c) >= len(clauseNames) {
		return clauseNames[0]
	}
	return clauseNames[c]
}

// Object names a schema-qualified database object.
type Object struct {
	Schema string `json:"schema,omitempty"`
	Name   string `json:"name,omitempty"`
	System string `json:"system,omitempty"`
}

// ObjectRef is a reference to an object found in a statement.
type ObjectRef struct {
	Tokens     []token.Token `json:"-"`
	Object     Object        `json:"object"`
	Alias      string        `json:"alias,omitempty"`
	IsUDTF     bool          `json:"isUDTF,omitempty"`
	CreateType string        `json:"createType,omitempty"`
	// CTE marks the defining reference of a common table expression.
	CTE bool `json:"cte,omitempty"`
}

// Range covers the tokens of the reference.
func (r ObjectRef) Range() token.Range {
	return token.Span(r.Tokens)
}

// CTEReference is a named subquery from a WITH clause.
type CTEReference struct {
	Name      string     `json:"name"`
	Columns   []string   `json:"columns"`
	Statement *Statement `json:"-"`
}

// Definition is an outline entry for a created or declared object.
type Definition struct {
	ObjectRef
	Range    token.Range  `json:"range"`
	Children []Definition `json:"children,omitempty"`
}

// CallableDetail describes the call surrounding an offset.
type CallableDetail struct {
	ParentRef ObjectRef
	// Tokens are the argument tokens between the brackets.
	Tokens []token.Token
}

// NoNamedParameter is reported when no argument uses name => value syntax.
const NoNamedParameter = -1

// PositionData locates an offset within a call's argument list.
type PositionData struct {
	CurrentParm         int `json:"currentParm"`
	CurrentCount        int `json:"currentCount"`
	FirstNamedParameter int `json:"firstNamedParameter"`
}

// ParsedEmbeddedStatement is a statement with its host variables and
// positional markers rewritten to canonical markers.
type ParsedEmbeddedStatement struct {
	Changed        bool   `json:"changed"`
	Content        string `json:"content"`
	ParameterCount int    `json:"parameterCount"`
}
