package index

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/leapstack-labs/sqlscope/pkg/document"
)

// Hash returns the hex-encoded SHA-256 of content.
func Hash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Extract collects the global definitions of a file: created objects and
// declared temporary tables. Variables, cursors and handlers declared
// inside a routine body are local to it and are not indexed.
func Extract(path string, content []byte) FileEntry {
	entry := FileEntry{Path: path, Hash: Hash(content)}

	doc := document.New(string(content))
	for _, def := range doc.Definitions() {
		head, ok := doc.StatementByOffset(def.Range.Start)
		if !ok {
			continue
		}
		kind := strings.ToUpper(def.CreateType)
		if head.Type == document.Declare && kind != "TABLE" {
			continue
		}

		obj := ObjectEntry{
			Schema: def.Object.Schema,
			Name:   def.Object.Name,
			Kind:   kind,
			Range:  def.Range,
		}
		for i, p := range head.RoutineParameters() {
			obj.Parameters = append(obj.Parameters, Parameter{
				Position: i + 1,
				Name:     p.Alias,
				Type:     p.CreateType,
			})
		}
		entry.Objects = append(entry.Objects, obj)
	}
	return entry
}
