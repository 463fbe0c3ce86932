package solver

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFS embed.FS

const (
	schemaSolveResponse    = "solve_response"
	schemaMaze             = "maze"
	schemaValidateResponse = "validate_response"
)

var loadSchemas = sync.OnceValues(func() (map[string]*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	names := []string{schemaSolveResponse, schemaMaze, schemaValidateResponse}
	out := make(map[string]*jsonschema.Schema, len(names))
	for _, name := range names {
		data, err := schemaFS.ReadFile("schemas/" + name + ".json")
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", name, err)
		}
		url := "mem://pathgrid/" + name + ".json"
		if err := compiler.AddResource(url, bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("add schema %s: %w", name, err)
		}
		compiled, err := compiler.Compile(url)
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", name, err)
		}
		out[name] = compiled
	}
	return out, nil
})

// decodeChecked validates data against the named schema and decodes it
// into out.
func decodeChecked(name string, data []byte, out any) error {
	schemas, err := loadSchemas()
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if err := schemas[name].Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

// DecodeMaze parses and validates a maze payload, as read from a maze file.
func DecodeMaze(data []byte) (MazePayload, error) {
	var p MazePayload
	if err := decodeChecked(schemaMaze, data, &p); err != nil {
		return MazePayload{}, err
	}
	return p, nil
}
