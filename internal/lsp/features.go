package lsp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/leapstack-labs/sqlscope/pkg/document"
	"github.com/leapstack-labs/sqlscope/pkg/format"
)

// maxWorkspaceSymbols caps workspace/symbol results.
const maxWorkspaceSymbols = 200

// symbolKinds maps object kinds to editor symbol kinds.
var symbolKinds = map[string]SymbolKind{
	"TABLE":     SymbolKindStruct,
	"VIEW":      SymbolKindInterface,
	"PROCEDURE": SymbolKindMethod,
	"FUNCTION":  SymbolKindFunction,
	"INDEX":     SymbolKindKey,
	"TRIGGER":   SymbolKindEvent,
	"HANDLER":   SymbolKindEvent,
	"SEQUENCE":  SymbolKindNumber,
	"VARIABLE":  SymbolKindVariable,
	"TYPE":      SymbolKindTypeParameter,
	"ALIAS":     SymbolKindObject,
	"SCHEMA":    SymbolKindNamespace,
}

// symbolKind picks the kind from the last word of an object kind such as
// "OR REPLACE TABLE" or "GLOBAL TEMPORARY TABLE". Declared variables and
// cursors carry their type text instead.
func symbolKind(kind string) SymbolKind {
	upper := strings.ToUpper(kind)
	if strings.Contains(upper, "CURSOR") {
		return SymbolKindArray
	}
	fields := strings.Fields(upper)
	if len(fields) > 0 {
		if k, ok := symbolKinds[fields[len(fields)-1]]; ok {
			return k
		}
		if k, ok := symbolKinds[fields[0]]; ok {
			return k
		}
	}
	return SymbolKindVariable
}

func qualifiedName(o document.Object) string {
	if o.Schema == "" {
		return o.Name
	}
	return o.Schema + "." + o.Name
}

// --- Formatting ---

func (s *Server) handleFormatting(msg *JSONRPCMessage) error {
	var params DocumentFormattingParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return s.invalidParams(msg, err)
	}

	doc := s.documents.Get(params.TextDocument.URI)
	if doc == nil {
		s.sendResponse(msg.ID, []TextEdit{}, nil)
		return nil
	}

	s.sendResponse(msg.ID, s.formatEdits(doc, params.Options), nil)
	return nil
}

// formatEdits formats a whole document. The editor's indentation settings
// override the configured ones.
func (s *Server) formatEdits(doc *Document, editor FormattingOptions) []TextEdit {
	opts := s.cfg.Format
	if editor.TabSize > 0 {
		opts.TabWidth = int(editor.TabSize)
	}
	opts.UseTabs = !editor.InsertSpaces

	formatted := format.Format(doc.Content, opts)
	if formatted == doc.Content {
		return []TextEdit{}
	}
	return []TextEdit{{Range: doc.FullRange(), NewText: formatted}}
}

// --- Document symbols ---

func (s *Server) handleDocumentSymbol(msg *JSONRPCMessage) error {
	var params DocumentSymbolParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return s.invalidParams(msg, err)
	}

	doc := s.documents.Get(params.TextDocument.URI)
	if doc == nil {
		s.sendResponse(msg.ID, []DocumentSymbol{}, nil)
		return nil
	}

	s.sendResponse(msg.ID, documentSymbols(doc), nil)
	return nil
}

func documentSymbols(doc *Document) []DocumentSymbol {
	symbols := []DocumentSymbol{}
	for _, def := range doc.Parsed().Definitions() {
		symbols = append(symbols, definitionSymbol(doc, def))
	}
	return symbols
}

func definitionSymbol(doc *Document, def document.Definition) DocumentSymbol {
	selection := def.Range
	if len(def.Tokens) > 0 {
		selection = def.ObjectRef.Range()
	}

	sym := DocumentSymbol{
		Name:           qualifiedName(def.Object),
		Detail:         def.CreateType,
		Kind:           symbolKind(def.CreateType),
		Range:          doc.ToRange(def.Range),
		SelectionRange: doc.ToRange(selection),
	}
	for _, child := range def.Children {
		sym.Children = append(sym.Children, definitionSymbol(doc, child))
	}
	return sym
}

// --- Folding ---

func (s *Server) handleFoldingRange(msg *JSONRPCMessage) error {
	var params FoldingRangeParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return s.invalidParams(msg, err)
	}

	ranges := []FoldingRange{}
	if doc := s.documents.Get(params.TextDocument.URI); doc != nil {
		ranges = foldingRanges(doc)
	}
	s.sendResponse(msg.ID, ranges, nil)
	return nil
}

// foldingRanges folds every statement group spanning more than one line.
func foldingRanges(doc *Document) []FoldingRange {
	ranges := []FoldingRange{}
	for _, group := range doc.Parsed().StatementGroups() {
		start := doc.OffsetToPosition(group.Range.Start)
		end := doc.OffsetToPosition(group.Range.End)
		if end.Line > start.Line {
			ranges = append(ranges, FoldingRange{StartLine: start.Line, EndLine: end.Line, Kind: "region"})
		}
	}
	return ranges
}

// --- Workspace symbols ---

func (s *Server) handleWorkspaceSymbol(ctx context.Context, msg *JSONRPCMessage) error {
	var params WorkspaceSymbolParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return s.invalidParams(msg, err)
	}

	symbols, err := s.workspaceSymbols(ctx, params.Query)
	if err != nil {
		s.sendResponse(msg.ID, nil, &JSONRPCError{Code: codeInternalError, Message: err.Error()})
		return err
	}
	s.sendResponse(msg.ID, symbols, nil)
	return nil
}

// workspaceSymbols searches open documents first, since they may hold
// unsaved edits, then the index for every file that is not open.
func (s *Server) workspaceSymbols(ctx context.Context, query string) ([]SymbolInformation, error) {
	symbols := []SymbolInformation{}
	needle := strings.ToUpper(query)
	open := map[string]bool{}

	for _, uri := range s.documents.List() {
		doc := s.documents.Get(uri)
		if doc == nil {
			continue
		}
		open[URIToPath(uri)] = true
		for _, def := range doc.Parsed().Definitions() {
			if !strings.Contains(strings.ToUpper(def.Object.Name), needle) {
				continue
			}
			symbols = append(symbols, SymbolInformation{
				Name:          def.Object.Name,
				Kind:          symbolKind(def.CreateType),
				Location:      Location{URI: uri, Range: doc.ToRange(def.Range)},
				ContainerName: def.Object.Schema,
			})
		}
	}

	if s.store == nil {
		return capSymbols(symbols), nil
	}

	objects, err := s.store.SearchObjects(ctx, query, maxWorkspaceSymbols)
	if err != nil {
		return nil, fmt.Errorf("failed to search index: %w", err)
	}
	files := map[string]*Document{}
	for _, obj := range objects {
		if open[obj.Path] {
			continue
		}
		file, ok := files[obj.Path]
		if !ok {
			file = loadFile(obj.Path)
			files[obj.Path] = file
		}
		if file == nil {
			continue
		}
		symbols = append(symbols, SymbolInformation{
			Name:          obj.Name,
			Kind:          symbolKind(obj.Kind),
			Location:      Location{URI: PathToURI(obj.Path), Range: file.ToRange(obj.Range)},
			ContainerName: obj.Schema,
		})
	}
	return capSymbols(symbols), nil
}

// loadFile reads a file from disk for offset conversion, or returns nil.
func loadFile(path string) *Document {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	return newDocument(PathToURI(path), string(content), 0)
}

func capSymbols(symbols []SymbolInformation) []SymbolInformation {
	if len(symbols) > maxWorkspaceSymbols {
		return symbols[:maxWorkspaceSymbols]
	}
	return symbols
}
