package document

import (
	"strings"

	"github.com/leapstack-labs/sqlscope/pkg/token"
)

// RefOptions tunes RefAtToken.
type RefOptions struct {
	// IncludeArguments adds a bracketed argument block that directly follows
	// the name to the reference tokens.
	IncludeArguments bool
	// NoAlias stops the reference at the name.
	NoAlias bool
}

// aliasStopWords are bare words that follow a table reference without being
// its correlation name.
var aliasStopWords = []string{
	"SET", "USING", "WHEN", "UNION", "EXCEPT", "INTERSECT", "FETCH", "VALUES", "WINDOW",
	"LANGUAGE", "RETURNS", "NOT", "MODIFIES", "READS", "CONTAINS", "DETERMINISTIC",
	"PARAMETER", "RESULT", "PROGRAM", "OVERRIDING", "LATERAL", "TABLE", "USE", "SKIP",
	"WAIT", "OPTIMIZE", "ISOLATION", "WITH", "NATURAL", "AND", "LIKE", "INCLUDING",
	"EXCLUDING", "RCDFMT", "ADD", "RENAME", "NEW", "OLD", "AFTER", "BEFORE", "INSTEAD",
	"PARTITION", "MODE", "REFERENCING", "KEEP", "EXISTS", "WHERE", "FROM",
}

func isNameToken(t token.Token) bool {
	return t.Type.IsName()
}

func isQualifier(t token.Token) bool {
	return t.Type == token.Dot || t.Type == token.ForwardSlash
}

// readName reads "name", "schema.name" or "schema/name" at i.
func readName(toks []token.Token, i int) (Object, int, bool) {
	first, ok := token.At(toks, i)
	if !ok || !isNameToken(first) {
		return Object{}, i, false
	}
	sep, okSep := token.At(toks, i+1)
	second, okSecond := token.At(toks, i+2)
	if okSep && okSecond && isQualifier(sep) && isNameToken(second) {
		return Object{Schema: first.Value, Name: second.Value}, i + 3, true
	}
	return Object{Name: first.Value}, i + 1, true
}

// readAlias reads "AS name" or a bare correlation name at i.
func readAlias(toks []token.Token, i int) (string, int) {
	t, ok := token.At(toks, i)
	if !ok {
		return "", i
	}
	if t.Is(token.Keyword, "AS") {
		if next, ok := token.At(toks, i+1); ok && (next.Type == token.Word || next.Type == token.SQLName) {
			return next.Value, i + 2
		}
		return "", i
	}
	if (t.Type == token.Word || t.Type == token.SQLName) && !t.HasValue(aliasStopWords...) {
		return t.Value, i + 1
	}
	return "", i
}

// RefAtToken builds the object reference starting at index i of Blocks().
func (s *Statement) RefAtToken(i int, opts RefOptions) (ObjectRef, bool) {
	return refAt(s.tree, i, opts)
}

func refAt(toks []token.Token, i int, opts RefOptions) (ObjectRef, bool) {
	t, ok := token.At(toks, i)
	if !ok || t.Is(token.Function, "LATERAL") {
		return ObjectRef{}, false
	}

	if t.Is(token.Function, "TABLE") {
		block, ok := token.At(toks, i+1)
		if !ok || !block.IsBlock() {
			return ObjectRef{}, false
		}
		ref, ok := refAt(block.Children(), 0, RefOptions{IncludeArguments: true, NoAlias: true})
		if !ok {
			return ObjectRef{}, false
		}
		end := i + 2
		if !opts.NoAlias {
			ref.Alias, end = readAlias(toks, end)
		}
		ref.IsUDTF = true
		ref.Tokens = toks[i:end]
		return ref, true
	}

	obj, next, ok := readName(toks, i)
	if !ok {
		return ObjectRef{}, false
	}
	if opts.IncludeArguments {
		if args, ok := token.At(toks, next); ok && args.IsBlock() {
			next++
		}
	}
	ref := ObjectRef{Object: obj}
	if !opts.NoAlias {
		ref.Alias, next = readAlias(toks, next)
	}
	ref.Tokens = toks[i:next]
	return ref, true
}

// introducesRef reports whether t is followed by table references.
func introducesRef(t token.Token) bool {
	return t.Is(token.Clause, "FROM", "INTO") || t.Type == token.Join || t.Is(token.Word, "USING")
}

// refHook lets a caller claim token i before the generic walk. It returns
// the references found and the index to resume at.
type refHook func(toks []token.Token, i int) ([]ObjectRef, int, bool)

// walkRefs collects the references after FROM, INTO, USING and join tokens,
// descending into bracketed subqueries.
func walkRefs(toks []token.Token, hook refHook) []ObjectRef {
	var refs []ObjectRef
	for i := 0; i < len(toks); i++ {
		if hook != nil {
			if found, next, ok := hook(toks, i); ok {
				refs = append(refs, found...)
				i = next - 1
				continue
			}
		}

		t := toks[i]
		if t.IsBlock() {
			refs = append(refs, walkRefs(t.Children(), hook)...)
			continue
		}
		if !introducesRef(t) {
			continue
		}

		j := i + 1
		for {
			ref, ok := refAt(toks, j, RefOptions{})
			if !ok {
				break
			}
			refs = append(refs, ref)
			j += len(ref.Tokens)
			if comma, ok := token.At(toks, j); ok && comma.Type == token.Comma && t.Is(token.Clause, "FROM") {
				if _, ok := refAt(toks, j+1, RefOptions{}); ok {
					j++
					continue
				}
			}
			break
		}
		i = j - 1
	}
	return refs
}

// ObjectReferences returns the objects the statement refers to. What counts
// as a reference depends on the statement type; Unknown statements have none.
func (s *Statement) ObjectReferences() []ObjectRef {
	toks := s.tree
	switch s.Type {
	case Call:
		if ref, ok := refAt(toks, s.first+1, RefOptions{IncludeArguments: true, NoAlias: true}); ok {
			return []ObjectRef{ref}
		}
		return nil

	case Select, Insert, Delete, Merge, Values:
		return walkRefs(toks[s.first:], nil)

	case Update:
		var refs []ObjectRef
		next := s.first + 1
		if ref, ok := refAt(toks, next, RefOptions{}); ok {
			refs = append(refs, ref)
			next += len(ref.Tokens)
		}
		return append(refs, walkRefs(toks[next:], nil)...)

	case With:
		return s.withReferences()

	case Create, Alter:
		return s.createReferences()

	case Declare:
		return s.declareReferences()

	case Drop:
		return s.dropReferences()
	}
	return nil
}

func (s *Statement) withReferences() []ObjectRef {
	defs, mainStart := s.parseCTEs()
	refs := make([]ObjectRef, 0, len(defs))
	for _, def := range defs {
		refs = append(refs, ObjectRef{
			Tokens: []token.Token{def.name},
			Object: Object{Name: def.name.Value},
			CTE:    true,
		})
	}
	for _, def := range defs {
		refs = append(refs, def.ref.Statement.ObjectReferences()...)
	}
	return append(refs, walkRefs(s.tree[mainStart:], nil)...)
}

// createKinds are the words naming what a CREATE, ALTER or DROP acts on.
var createKinds = []string{
	"TABLE", "VIEW", "PROCEDURE", "FUNCTION", "TRIGGER", "INDEX", "UNIQUE", "ALIAS",
	"SEQUENCE", "VARIABLE", "TYPE", "DISTINCT", "MASK", "PERMISSION", "SCHEMA", "ENCODED",
	"VECTOR", "MATERIALIZED", "QUERY", "SUMMARY", "GLOBAL", "TEMPORARY", "SPECIFIC",
}

// readKind reads the object kind words at i and returns them verbatim.
func readKind(toks []token.Token, i int) (string, int) {
	var kind []string
	for ; i < len(toks); i++ {
		t := toks[i]
		if t.Type != token.Word && t.Type != token.Keyword {
			break
		}
		if !t.HasValue(createKinds...) {
			break
		}
		kind = append(kind, t.Value)
	}
	return strings.Join(kind, " "), i
}

// definition reads the defining reference of a CREATE or ALTER statement and
// returns the index that follows it.
func (s *Statement) definition() (ObjectRef, int, bool) {
	toks := s.tree
	i := s.first + 1
	if t, ok := token.At(toks, i); ok && t.Is(token.Keyword, "OR") {
		if next, ok := token.At(toks, i+1); ok && next.Is(token.Keyword, "REPLACE") {
			i += 2
		}
	}
	kind, i := readKind(toks, i)
	ref, ok := refAt(toks, i, RefOptions{NoAlias: true})
	if !ok {
		return ObjectRef{}, i, false
	}
	ref.CreateType = kind
	return ref, i + len(ref.Tokens), true
}

func (s *Statement) createReferences() []ObjectRef {
	def, next, ok := s.definition()
	if !ok {
		return nil
	}
	toks := s.tree
	kind := upper(def.CreateType)

	if system, ok := systemName(toks[next:]); ok {
		def.Object.System = system
	}

	seenOn := false
	hook := func(toks []token.Token, i int) ([]ObjectRef, int, bool) {
		t := toks[i]
		switch {
		case t.Is(token.Keyword, "REFERENCES"):
			if ref, ok := refAt(toks, i+1, RefOptions{NoAlias: true}); ok {
				return []ObjectRef{ref}, i + 1 + len(ref.Tokens), true
			}
		case t.Is(token.Keyword, "EXTERNAL"):
			if ref, n, ok := externalRef(toks, i); ok {
				return []ObjectRef{ref}, n, true
			}
		case t.Is(token.Keyword, "ON") && !seenOn && (strings.Contains(kind, "INDEX") || strings.Contains(kind, "TRIGGER")):
			seenOn = true
			if ref, ok := refAt(toks, i+1, RefOptions{NoAlias: true}); ok {
				return []ObjectRef{ref}, i + 1 + len(ref.Tokens), true
			}
		case t.Is(token.Keyword, "FOR") && kind == "ALIAS":
			if ref, ok := refAt(toks, i+1, RefOptions{NoAlias: true}); ok {
				return []ObjectRef{ref}, i + 1 + len(ref.Tokens), true
			}
		case t.Is(token.Word, "LIKE") && i == 0:
			if ref, ok := refAt(toks, i+1, RefOptions{NoAlias: true}); ok {
				return []ObjectRef{ref}, i + 1 + len(ref.Tokens), true
			}
		}
		return nil, i, false
	}

	return append([]ObjectRef{def}, walkRefs(toks[next:], hook)...)
}

// systemName finds "FOR SYSTEM NAME x".
func systemName(toks []token.Token) (string, bool) {
	for i := 0; i+3 < len(toks); i++ {
		if toks[i].Is(token.Keyword, "FOR") && toks[i+1].HasValue("SYSTEM") &&
			toks[i+2].HasValue("NAME") && isNameToken(toks[i+3]) {
			return toks[i+3].Value, true
		}
	}
	return "", false
}

// externalRef reads "EXTERNAL NAME lib/pgm" or "EXTERNAL NAME 'lib/pgm(entry)'"
// at i.
func externalRef(toks []token.Token, i int) (ObjectRef, int, bool) {
	name, ok := token.At(toks, i+1)
	if !ok || !name.HasValue("NAME") {
		return ObjectRef{}, i, false
	}
	target, ok := token.At(toks, i+2)
	if !ok {
		return ObjectRef{}, i, false
	}
	if target.Type == token.String {
		value := strings.Trim(target.Value, "'")
		if idx := strings.IndexByte(value, '('); idx >= 0 {
			value = value[:idx]
		}
		obj := Object{Name: value}
		if idx := strings.IndexAny(value, "/."); idx >= 0 {
			obj = Object{Schema: value[:idx], Name: value[idx+1:]}
		}
		return ObjectRef{Tokens: toks[i+2 : i+3], Object: obj}, i + 3, true
	}
	ref, ok := refAt(toks, i+2, RefOptions{NoAlias: true})
	if !ok {
		return ObjectRef{}, i, false
	}
	return ref, i + 2 + len(ref.Tokens), true
}

var handlerKinds = []string{"CONTINUE", "EXIT", "UNDO"}

func (s *Statement) declareReferences() []ObjectRef {
	toks := s.tree
	i := s.first + 1

	if t, ok := token.At(toks, i); ok && t.HasValue(handlerKinds...) {
		if h, ok := token.At(toks, i+1); ok && h.Is(token.Keyword, "HANDLER") {
			return []ObjectRef{{
				Tokens:     toks[i : i+2],
				Object:     Object{Name: t.Value + " " + h.Value},
				CreateType: "HANDLER",
			}}
		}
	}

	// Kind words only introduce DECLARE GLOBAL TEMPORARY TABLE. Elsewhere
	// they are variable names, as in "declare index integer".
	global := false
	if t, ok := token.At(toks, i); ok && t.HasValue("GLOBAL") {
		_, i = readKind(toks, i)
		global = true
	}
	ref, ok := refAt(toks, i, RefOptions{NoAlias: true})
	if !ok {
		return nil
	}
	rest := toks[i+len(ref.Tokens):]

	switch {
	case global:
		ref.CreateType = "TABLE"
	case hasKeyword(rest, "CURSOR"):
		end := len(rest)
		for n, t := range rest {
			if t.Is(token.Keyword, "FOR") {
				end = n
				break
			}
		}
		ref.CreateType = TokensText(rest[:end])
	default:
		ref.CreateType = TokensText(rest)
	}
	return []ObjectRef{ref}
}

func (s *Statement) dropReferences() []ObjectRef {
	toks := s.tree
	kind, i := readKind(toks, s.first+1)
	if t, ok := token.At(toks, i); ok && t.HasValue("IF") {
		if next, ok := token.At(toks, i+1); ok && next.HasValue("EXISTS") {
			i += 2
		}
	}
	ref, ok := refAt(toks, i, RefOptions{NoAlias: true})
	if !ok {
		return nil
	}
	ref.CreateType = kind
	return []ObjectRef{ref}
}

func hasKeyword(toks []token.Token, value string) bool {
	for _, t := range toks {
		if t.Is(token.Keyword, value) {
			return true
		}
	}
	return false
}

// ReferenceByOffset returns the partial reference being typed at offset,
// such as "schema." or "schema.na". The name is empty right after the
// qualifier.
func (s *Statement) ReferenceByOffset(offset int) (ObjectRef, bool) {
	toks := s.words
	k := -1
	for i, t := range toks {
		if t.Range.Start >= offset {
			break
		}
		k = i
	}
	if k < 0 || toks[k].Range.End < offset {
		return ObjectRef{}, false
	}

	t := toks[k]
	switch {
	case isQualifier(t):
		if k > 0 && isNameToken(toks[k-1]) {
			return ObjectRef{Tokens: toks[k-1 : k+1], Object: Object{Schema: toks[k-1].Value}}, true
		}
	case isNameToken(t):
		if k >= 2 && isQualifier(toks[k-1]) && isNameToken(toks[k-2]) {
			return ObjectRef{
				Tokens: toks[k-2 : k+1],
				Object: Object{Schema: toks[k-2].Value, Name: t.Value},
			}, true
		}
		return ObjectRef{Tokens: toks[k : k+1], Object: Object{Name: t.Value}}, true
	}
	return ObjectRef{}, false
}
