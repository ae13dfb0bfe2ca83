package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gosimple/slug"
)

const stdinName = "-"

type input struct {
	name string
	data []byte
}

// readInputs reads every named file. No names, or "-", reads standard input.
func (a *app) readInputs(names []string) ([]input, error) {
	if len(names) == 0 {
		names = []string{stdinName}
	}

	inputs := make([]input, 0, len(names))

	for _, name := range names {
		var (
			data []byte
			err  error
		)

		if name == stdinName {
			data, err = io.ReadAll(a.in)
		} else {
			data, err = os.ReadFile(name)
		}

		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}

		inputs = append(inputs, input{name: name, data: data})
	}

	return inputs, nil
}

func (a *app) readInput(names []string) (input, error) {
	if len(names) > 1 {
		return input{}, fmt.Errorf("expected one input, got %d", len(names))
	}

	inputs, err := a.readInputs(names)
	if err != nil {
		return input{}, err
	}

	return inputs[0], nil
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}

// writeOutput writes data to path, or to standard output when path is empty.
func (a *app) writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := fmt.Fprintln(a.out, string(data))

		return err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil { //nolint:gosec // exported blueprints are not secret
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}

// templateName derives a file name for a sanitized document from its name or
// title, falling back to the input file name.
func templateName(in input, taken map[string]bool) string {
	var doc struct {
		Name  string `json:"name"`
		Title string `json:"title"`
	}

	_ = json.Unmarshal(in.data, &doc)

	base := doc.Name
	if base == "" {
		base = doc.Title
	}

	if base == "" && in.name != stdinName {
		base = strings.TrimSuffix(filepath.Base(in.name), filepath.Ext(in.name))
	}

	name := slug.Make(base)
	if name == "" {
		name = "blueprint"
	}

	candidate := name
	for n := 2; taken[candidate]; n++ {
		candidate = name + "-" + strconv.Itoa(n)
	}

	taken[candidate] = true

	return candidate + ".json"
}
