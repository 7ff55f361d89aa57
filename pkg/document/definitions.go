package document

// Definitions returns an outline of the objects the document creates or
// declares. A routine's definition spans its whole statement group and
// lists the variables, cursors, conditions and handlers declared in its
// body as children.
func (d *Document) Definitions() []Definition {
	var defs []Definition
	for _, group := range d.groups {
		head := group.Statements[0]
		if head.Type != Create && head.Type != Declare {
			continue
		}
		refs := head.ObjectReferences()
		if len(refs) == 0 {
			continue
		}

		def := Definition{ObjectRef: refs[0], Range: group.Range}
		for _, stmt := range group.Statements[1:] {
			if stmt.Type != Declare {
				continue
			}
			if inner := stmt.ObjectReferences(); len(inner) > 0 {
				def.Children = append(def.Children, Definition{ObjectRef: inner[0], Range: stmt.Range})
			}
		}
		defs = append(defs, def)
	}
	return defs
}
