package format

import (
	"fmt"
	"strings"
)

// Case selects how the formatter cases a class of tokens.
type Case int32

// Casing modes.
const (
	CasePreserve Case = iota
	CaseUpper
	CaseLower
)

var caseNames = map[Case]string{
	CasePreserve: "preserve",
	CaseUpper:    "upper",
	CaseLower:    "lower",
}

func (c Case) String() string {
	if name, ok := caseNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Case(%d)", c)
}

// ParseCase parses "preserve", "upper" or "lower". The empty string means
// preserve.
func ParseCase(s string) (Case, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "preserve":
		return CasePreserve, nil
	case "upper":
		return CaseUpper, nil
	case "lower":
		return CaseLower, nil
	}
	return CasePreserve, fmt.Errorf("invalid case %q: expected preserve, upper or lower", s)
}

// MarshalText implements encoding.TextMarshaler.
func (c Case) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Case) UnmarshalText(text []byte) error {
	parsed, err := ParseCase(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Options controls the formatter output.
type Options struct {
	UseTabs        bool `koanf:"use_tabs"`
	TabWidth       int  `koanf:"tab_width"`
	IdentifierCase Case `koanf:"identifier_case"`
	KeywordCase    Case `koanf:"keyword_case"`
	AddSemiColon   bool `koanf:"add_semicolon"`
}

// DefaultOptions returns spaces with a tab width of 4 and preserved casing.
func DefaultOptions() Options {
	return Options{TabWidth: 4}
}

func (o Options) indentUnit() string {
	if o.UseTabs {
		return "\t"
	}
	width := o.TabWidth
	if width <= 0 {
		width = 4
	}
	return strings.Repeat(" ", width)
}
