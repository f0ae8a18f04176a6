package formatter

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/gnolang/plint/internal"
	tt "github.com/gnolang/plint/internal/types"
)

// Format selects how diagnostics are written.
type Format string

const (
	FormatText    Format = "text"
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
)

// ParseFormat validates a format name. The empty string means text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatMsgpack:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q (want text, json or msgpack)", s)
}

// SourceReader loads the lines of a file for text output.
type SourceReader func(filename string) (*internal.SourceCode, error)

// Write renders diagnostics in the given format. Text output groups them by
// file in filename order and quotes source lines obtained from read; files
// that cannot be read are printed without snippets. JSON and msgpack output
// is an object keyed by filename.
func Write(w io.Writer, format Format, diags []tt.Diagnostic, read SourceReader) error {
	byFile, files := groupByFile(diags)

	switch format {
	case FormatText, "":
		for _, filename := range files {
			var src *internal.SourceCode
			if read != nil {
				src, _ = read(filename)
			}
			if _, err := io.WriteString(w, GenerateFormattedIssue(byFile[filename], src)); err != nil {
				return err
			}
		}
		return nil
	case FormatJSON:
		d, err := json.Marshal(byFile)
		if err != nil {
			return fmt.Errorf("error marshalling diagnostics to JSON: %w", err)
		}
		_, err = w.Write(append(d, '\n'))
		return err
	case FormatMsgpack:
		enc := msgpack.NewEncoder(w)
		enc.SetSortMapKeys(true)
		if err := enc.Encode(byFile); err != nil {
			return fmt.Errorf("error encoding diagnostics to msgpack: %w", err)
		}
		return nil
	}
	return fmt.Errorf("unknown output format %q", format)
}

func groupByFile(diags []tt.Diagnostic) (map[string][]tt.Diagnostic, []string) {
	byFile := make(map[string][]tt.Diagnostic)
	for _, d := range diags {
		byFile[d.Filename] = append(byFile[d.Filename], d)
	}

	files := make([]string, 0, len(byFile))
	for filename := range byFile {
		files = append(files, filename)
	}
	sort.Strings(files)
	return byFile, files
}
