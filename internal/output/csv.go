package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// PrintCSV writes a header line followed by rows (RFC 4180 quoting).
func PrintCSV(w io.Writer, headers []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(headers); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

// WriteCSVFile creates or truncates path and writes headers and rows to it.
func WriteCSVFile(path string, headers []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := PrintCSV(f, headers, rows); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
