package protocol

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

// Validator checks raw messages against the embedded JSON schemas.
type Validator struct {
	byType map[string]*jsonschema.Schema
}

var schemaFiles = map[string]string{
	TypeHello:      "hello.schema.json",
	TypeWelcome:    "welcome.schema.json",
	TypeTick:       "tick.schema.json",
	TypeController: "controller.schema.json",
}

func NewValidator() (*Validator, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	for _, name := range schemaFiles {
		b, err := schemaFS.ReadFile("schemas/" + name)
		if err != nil {
			return nil, err
		}
		if err := c.AddResource(name, bytes.NewReader(b)); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}
	v := &Validator{byType: make(map[string]*jsonschema.Schema, len(schemaFiles))}
	for typ, name := range schemaFiles {
		s, err := c.Compile(name)
		if err != nil {
			return nil, fmt.Errorf("compile %s: %w", name, err)
		}
		v.byType[typ] = s
	}
	return v, nil
}

// Validate checks msg against the schema for typ. Types without a schema pass.
func (v *Validator) Validate(typ string, msg []byte) error {
	s, ok := v.byType[typ]
	if !ok {
		return nil
	}
	var doc any
	if err := json.Unmarshal(msg, &doc); err != nil {
		return err
	}
	if err := s.Validate(doc); err != nil {
		return fmt.Errorf("%s: %w", typ, err)
	}
	return nil
}
