package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/ismailopm12/coffeeqc/internal/domain/intake"
)

// ErrNoInput is returned when neither files nor a glob select anything.
var ErrNoInput = errors.New("no input files")

// Record is one form record read from a sample file.
type Record struct {
	Source   string // path, or path#index for multi-record files
	ID       string
	SampleID string
	Fields   intake.Fields
}

// ExpandInputs returns paths followed by the sorted, de-duplicated matches
// of pattern. Pattern supports ** via doublestar.
func ExpandInputs(paths []string, pattern string) ([]string, error) {
	seen := make(map[string]bool, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	if pattern != "" {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		sort.Strings(matches)
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	if len(out) == 0 {
		return nil, ErrNoInput
	}
	return out, nil
}

// LoadFile reads path ("-" for stdin) as YAML or JSON. A file holds either
// one mapping or a sequence of mappings. The "id" and "sample_id" keys are
// lifted out as record metadata.
func LoadFile(path string, stdin io.Reader) ([]Record, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return ParseRecords(path, data)
}

// ParseRecords decodes data, which may contain several YAML documents.
func ParseRecords(source string, data []byte) ([]Record, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var maps []map[string]any
	for {
		var node yaml.Node
		if err := dec.Decode(&node); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("parse %s: %w", source, err)
		}
		doc := &node
		if doc.Kind == yaml.DocumentNode && len(doc.Content) == 1 {
			doc = doc.Content[0]
		}
		switch doc.Kind {
		case yaml.MappingNode:
			var m map[string]any
			if err := doc.Decode(&m); err != nil {
				return nil, fmt.Errorf("parse %s: %w", source, err)
			}
			maps = append(maps, m)
		case yaml.SequenceNode:
			var list []map[string]any
			if err := doc.Decode(&list); err != nil {
				return nil, fmt.Errorf("parse %s: %w", source, err)
			}
			maps = append(maps, list...)
		default:
			return nil, fmt.Errorf("parse %s: expected a mapping or a list of mappings", source)
		}
	}

	records := make([]Record, len(maps))
	for i, m := range maps {
		name := source
		if len(maps) > 1 {
			name = fmt.Sprintf("%s#%d", source, i)
		}
		records[i] = newRecord(name, m)
	}
	return records, nil
}

func newRecord(source string, m map[string]any) Record {
	r := Record{Source: source, Fields: intake.Fields{}}
	for k, v := range m {
		switch k {
		case "id":
			r.ID = fmt.Sprint(v)
		case "sample_id":
			r.SampleID = fmt.Sprint(v)
		default:
			r.Fields[k] = v
		}
	}
	return r
}

// LoadAll expands the inputs and loads every record in order.
func LoadAll(paths []string, pattern string, stdin io.Reader) ([]Record, error) {
	files, err := ExpandInputs(paths, pattern)
	if err != nil {
		return nil, err
	}
	var out []Record
	for _, f := range files {
		recs, err := LoadFile(f, stdin)
		if err != nil {
			return nil, err
		}
		out = append(out, recs...)
	}
	return out, nil
}
