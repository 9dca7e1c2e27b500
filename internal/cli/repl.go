// Package cli implements the interactive REPL front end for the
// spreadsheet engine: set, get, clear, print, and refs commands over a
// single in-memory sheet.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/Chelicerae-dev/cpp-spreadsheet"
)

// Run reads commands from in, one per line, writing results to out and
// errors to errOut, until in is exhausted or a "quit"/"exit" command is
// read.
func Run(in io.Reader, out, errOut io.Writer) error {
	sheet := spreadsheet.CreateSheet()
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			return nil
		}
		if err := dispatch(sheet, line, out); err != nil {
			fmt.Fprintln(errOut, err)
		}
	}
	return scanner.Err()
}

func dispatch(sheet *spreadsheet.Sheet, line string, out io.Writer) error {
	fields := strings.SplitN(line, " ", 3)
	switch fields[0] {
	case "set":
		if len(fields) < 3 {
			return fmt.Errorf("usage: set <address> <text>")
		}
		pos, ok := spreadsheet.ParseAddress(fields[1])
		if !ok {
			return fmt.Errorf("bad address %q", fields[1])
		}
		return sheet.SetCell(pos, fields[2])

	case "get":
		if len(fields) < 2 {
			return fmt.Errorf("usage: get <address>")
		}
		pos, ok := spreadsheet.ParseAddress(fields[1])
		if !ok {
			return fmt.Errorf("bad address %q", fields[1])
		}
		cell, err := sheet.GetCell(pos)
		if err != nil {
			return err
		}
		if cell == nil {
			fmt.Fprintln(out, spreadsheet.NumberValue(0).String())
			return nil
		}
		fmt.Fprintln(out, cell.GetValue().String())
		return nil

	case "clear":
		if len(fields) < 2 {
			return fmt.Errorf("usage: clear <address>")
		}
		pos, ok := spreadsheet.ParseAddress(fields[1])
		if !ok {
			return fmt.Errorf("bad address %q", fields[1])
		}
		return sheet.ClearCell(pos)

	case "refs":
		if len(fields) < 2 {
			return fmt.Errorf("usage: refs <address>")
		}
		pos, ok := spreadsheet.ParseAddress(fields[1])
		if !ok {
			return fmt.Errorf("bad address %q", fields[1])
		}
		cell, err := sheet.GetCell(pos)
		if err != nil {
			return err
		}
		if cell == nil {
			return nil
		}
		refs := cell.GetReferencedCells()
		names := make([]string, len(refs))
		for i, r := range refs {
			names[i] = r.String()
		}
		fmt.Fprintln(out, strings.Join(names, " "))
		return nil

	case "print":
		if len(fields) < 2 {
			return fmt.Errorf("usage: print values|texts")
		}
		switch fields[1] {
		case "values":
			return sheet.PrintValues(out)
		case "texts":
			return sheet.PrintTexts(out)
		default:
			return fmt.Errorf("usage: print values|texts")
		}

	default:
		return fmt.Errorf("unknown command %q", fields[0])
	}
}
