package sources

import (
	"bytes"
	"embed"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schemas/*.json
var schemaFS embed.FS

const (
	countriesSchemaName = "countries.json"
	ratesSchemaName     = "rates.json"
)

var (
	compileOnce     sync.Once
	compiledSchemas map[string]*jsonschema.Schema
	compileErr      error
)

func loadSchemas() (map[string]*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		names := []string{countriesSchemaName, ratesSchemaName}
		for _, name := range names {
			raw, err := schemaFS.ReadFile("schemas/" + name)
			if err != nil {
				compileErr = fmt.Errorf("failed to read schema %s: %w", name, err)
				return
			}
			doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
			if err != nil {
				compileErr = fmt.Errorf("failed to parse schema %s: %w", name, err)
				return
			}
			if err := compiler.AddResource(name, doc); err != nil {
				compileErr = fmt.Errorf("failed to add schema %s: %w", name, err)
				return
			}
		}

		compiled := make(map[string]*jsonschema.Schema, len(names))
		for _, name := range names {
			sch, err := compiler.Compile(name)
			if err != nil {
				compileErr = fmt.Errorf("failed to compile schema %s: %w", name, err)
				return
			}
			compiled[name] = sch
		}
		compiledSchemas = compiled
	})
	return compiledSchemas, compileErr
}

// validatePayload checks raw JSON against one of the embedded schemas
func validatePayload(schemaName string, data []byte) error {
	schemas, err := loadSchemas()
	if err != nil {
		return err
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("payload is not valid JSON: %w", err)
	}

	if err := schemas[schemaName].Validate(inst); err != nil {
		return fmt.Errorf("payload does not match %s: %w", schemaName, err)
	}
	return nil
}
