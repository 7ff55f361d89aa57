package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/leapstack-labs/sqlscope/internal/cli/output"
	"github.com/leapstack-labs/sqlscope/pkg/catalog"
	"github.com/leapstack-labs/sqlscope/pkg/document"
	"github.com/spf13/cobra"
)

// RefsOptions holds options for the refs command.
type RefsOptions struct {
	Resolve bool
}

// NewRefsCommand creates the refs command.
func NewRefsCommand() *cobra.Command {
	opts := &RefsOptions{}

	cmd := &cobra.Command{
		Use:   "refs [file]",
		Short: "List the objects each statement references",
		Annotations: structuredOutput,
		Long: `List the tables, views, routines and other objects referenced by each
statement, with their aliases and the common table expressions a WITH
statement defines.

With --resolve every reference is looked up in the workspace index
(built with 'sqlscope index') using the configured naming, default
schema and library list.`,
		Example: `  # References of a script
  sqlscope refs reports/monthly.sql

  # Resolve against the index using system naming
  sqlscope refs reports/monthly.sql --resolve --naming system --library-list LIB1,LIB2`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRefs(cmd, sourceArg(args), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Resolve, "resolve", false, "Resolve references against the workspace index")
	cmd.Flags().String("index", "", "Path to the index database")

	return cmd
}

func runRefs(cmd *cobra.Command, path string, opts *RefsOptions) error {
	cc := NewCommandContext(cmd)
	ctx := commandCtx(cmd)

	content, name, err := readSource(cmd, path)
	if err != nil {
		return err
	}

	doc := document.New(content)
	result := output.RefsOutput{File: name, References: []output.ReferenceInfo{}}

	var resolver *catalog.Resolver
	if opts.Resolve {
		store, err := openIndex(ctx, cc.Cfg, cc.Logger)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		cache, err := catalog.NewCache[catalog.Resolution](cc.Cfg.CacheSize)
		if err != nil {
			return err
		}
		resolver = catalog.NewResolver(store, cache, cc.Cfg.ResolverOptions()...)
	}

	for i, stmt := range doc.Statements {
		for _, c := range stmt.CTEReferences() {
			result.CTEs = append(result.CTEs, output.CTEInfo{Statement: i + 1, Name: c.Name, Columns: c.Columns})
		}
		for _, ref := range stmt.ObjectReferences() {
			info, err := referenceInfo(ctx, resolver, i+1, ref)
			if err != nil {
				return err
			}
			result.References = append(result.References, info)
		}
	}

	if ok, err := cc.Renderer.Structured(result); ok {
		return err
	}

	r := cc.Renderer
	r.Header(1, fmt.Sprintf("%s (%d references)", name, len(result.References)))
	if len(result.References) == 0 {
		r.Muted("No references found")
		return nil
	}

	headers := []string{"Stmt", "Object", "Alias", "Kind", "Range"}
	if opts.Resolve {
		headers = append(headers, "Resolved")
	}
	rows := make([][]string, 0, len(result.References))
	for _, ref := range result.References {
		row := []string{
			fmt.Sprintf("%d", ref.Statement),
			qualified(ref.Schema, ref.Name, cc.Cfg.Naming),
			ref.Alias,
			referenceKind(ref),
			formatRange(ref.Start, ref.End),
		}
		if opts.Resolve {
			row = append(row, resolvedText(ref.Resolved, cc.Cfg.Naming))
		}
		rows = append(rows, row)
	}
	r.Table(headers, rows)

	if len(result.CTEs) > 0 {
		r.Header(2, "Common table expressions")
		cteRows := make([][]string, 0, len(result.CTEs))
		for _, c := range result.CTEs {
			cteRows = append(cteRows, []string{fmt.Sprintf("%d", c.Statement), c.Name, strings.Join(c.Columns, ", ")})
		}
		r.Table([]string{"Stmt", "Name", "Columns"}, cteRows)
	}
	return nil
}

func referenceInfo(ctx context.Context, resolver *catalog.Resolver, stmt int, ref document.ObjectRef) (output.ReferenceInfo, error) {
	rng := ref.Range()
	info := output.ReferenceInfo{
		Statement:  stmt,
		Schema:     ref.Object.Schema,
		Name:       ref.Object.Name,
		System:     ref.Object.System,
		Alias:      ref.Alias,
		CreateType: ref.CreateType,
		UDTF:       ref.IsUDTF,
		CTE:        ref.CTE,
		Start:      rng.Start,
		End:        rng.End,
	}
	if resolver == nil || ref.CTE || ref.Object.Name == "" {
		return info, nil
	}

	obj, found, err := resolver.Resolve(ctx, ref)
	if err != nil {
		return info, fmt.Errorf("failed to resolve %s: %w", ref.Object.Name, err)
	}
	if found {
		info.Resolved = &output.ResolvedInfo{Schema: obj.Schema, Name: obj.Name, Kind: obj.Kind, Source: obj.Source}
	}
	return info, nil
}

// qualified joins schema and name with the separator of the naming mode.
func qualified(schema, name string, naming catalog.Naming) string {
	if schema == "" {
		return name
	}
	sep := "."
	if naming == catalog.NamingSystem {
		sep = "/"
	}
	return schema + sep + name
}

func referenceKind(ref output.ReferenceInfo) string {
	switch {
	case ref.CTE:
		return "cte"
	case ref.UDTF:
		return "table function"
	default:
		return ref.CreateType
	}
}

func resolvedText(res *output.ResolvedInfo, naming catalog.Naming) string {
	if res == nil {
		return "-"
	}
	return fmt.Sprintf("%s (%s)", qualified(res.Schema, res.Name, naming), res.Kind)
}
