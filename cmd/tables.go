package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/engagekit/lp/internal/mapper"
	"github.com/engagekit/lp/internal/output"
	"github.com/engagekit/lp/internal/store"
)

// tableSinkFlags select where flattened tables are written.
type tableSinkFlags struct {
	kind   string
	csvDir string
	sqlite string
}

func (f *tableSinkFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.kind, "kind", "", "Print only this table kind (e.g. message_record)")
	cmd.Flags().StringVar(&f.csvDir, "csv", "", "Write one CSV file per table kind into this directory")
	cmd.Flags().StringVar(&f.sqlite, "sqlite", "", "Append every table to this SQLite database")
}

// writeTables sends tables to the selected sink. Without a file sink, one
// kind is printed in full or, when no kind is selected, a row count per kind.
func writeTables(cmd *cobra.Command, f tableSinkFlags, tables []*mapper.Table) error {
	if f.kind != "" {
		tables = selectKind(tables, f.kind)
		if tables == nil {
			return fmt.Errorf("unknown kind %q", f.kind)
		}
	}

	s := getIO()
	switch {
	case f.sqlite != "":
		db, err := store.Open(f.sqlite)
		if err != nil {
			return err
		}
		defer db.Close()
		n, err := store.Save(cmd.Context(), db, tables...)
		if err != nil {
			return err
		}
		s.Printf("%s saved %d rows in %d tables to %s\n", s.Success("✓"), n, len(tables), f.sqlite)
		return nil

	case f.csvDir != "":
		if err := os.MkdirAll(f.csvDir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", f.csvDir, err)
		}
		for _, tbl := range tables {
			path := filepath.Join(f.csvDir, string(tbl.Kind)+".csv")
			if err := output.WriteCSVFile(path, tbl.Columns, tableCells(tbl)); err != nil {
				return err
			}
			s.Printf("%s %s (%d rows)\n", s.Success("✓"), path, len(tbl.Rows))
		}
		return nil

	case f.kind != "":
		tbl := tables[0]
		handled, err := handleJSONOutput(cmd, tbl.Rows)
		if err != nil || handled {
			return err
		}
		output.PrintTable(s.Out, tbl.Columns, tableCells(tbl), s.IsTerminal())
		return nil
	}

	byKind := make(map[string][]mapper.Row, len(tables))
	for _, tbl := range tables {
		byKind[string(tbl.Kind)] = tbl.Rows
	}
	handled, err := handleJSONOutput(cmd, byKind)
	if err != nil || handled {
		return err
	}
	rows := make([][]string, len(tables))
	for i, tbl := range tables {
		rows[i] = []string{string(tbl.Kind), strconv.Itoa(len(tbl.Rows))}
	}
	output.PrintTable(s.Out, []string{"KIND", "ROWS"}, rows, s.IsTerminal())
	return nil
}

// selectKind returns the single table of kind, or nil if the kind is unknown.
func selectKind(tables []*mapper.Table, kind string) []*mapper.Table {
	for _, tbl := range tables {
		if string(tbl.Kind) == kind {
			return []*mapper.Table{tbl}
		}
	}
	if s := mapper.SchemaFor(mapper.Kind(kind)); s != nil {
		return []*mapper.Table{{Kind: s.Kind, Columns: s.Columns()}}
	}
	return nil
}

func tableCells(tbl *mapper.Table) [][]string {
	values := make([][]any, len(tbl.Rows))
	for i, r := range tbl.Rows {
		values[i] = r.Values(tbl.Columns)
	}
	return output.Cells(values)
}

// flattenedTables flattens conversation records into one table per kind
// that has rows.
func flattenedTables(records []map[string]any) ([]*mapper.Table, error) {
	flat, err := mapper.Flatten(records...)
	if err != nil {
		return nil, err
	}
	kinds := flat.Kinds()
	tables := make([]*mapper.Table, len(kinds))
	for i, k := range kinds {
		tables[i] = flat.Table(k)
	}
	return tables, nil
}
