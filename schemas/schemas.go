// Package schemas validates request bodies and query strings against the
// JSON Schemas embedded under json/.
package schemas

import (
	"embed"
	"fmt"
	"path"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/Skryldev/jobly/apperr"
)

// Schema names, one per embedded file.
const (
	JobNew        = "jobNew"
	JobUpdate     = "jobUpdate"
	JobSearch     = "jobSearch"
	CompanyNew    = "companyNew"
	CompanyUpdate = "companyUpdate"
	CompanySearch = "companySearch"
	UserNew       = "userNew"
	UserRegister  = "userRegister"
	UserUpdate    = "userUpdate"
	UserAuth      = "userAuth"
)

//go:embed json/*.json
var files embed.FS

// Validator holds every compiled schema. It is immutable after Load and
// safe for concurrent use.
type Validator struct {
	schemas map[string]*gojsonschema.Schema
}

// Load compiles every embedded schema.
func Load() (*Validator, error) {
	entries, err := files.ReadDir("json")
	if err != nil {
		return nil, err
	}
	v := &Validator{schemas: make(map[string]*gojsonschema.Schema, len(entries))}
	for _, e := range entries {
		raw, err := files.ReadFile(path.Join("json", e.Name()))
		if err != nil {
			return nil, err
		}
		schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
		if err != nil {
			return nil, fmt.Errorf("schemas: compile %s: %w", e.Name(), err)
		}
		v.schemas[strings.TrimSuffix(e.Name(), ".json")] = schema
	}
	return v, nil
}

// MustLoad is Load for program start-up; the schemas are part of the binary
// so a failure is a build defect.
func MustLoad() *Validator {
	v, err := Load()
	if err != nil {
		panic(err)
	}
	return v
}

// ValidateJSON checks a raw request body against the named schema.
// Malformed JSON and schema violations are both InvalidInput.
func (v *Validator) ValidateJSON(name string, body []byte) error {
	return v.validate(name, gojsonschema.NewBytesLoader(body))
}

// Validate checks an already-decoded document, such as a coerced query
// string.
func (v *Validator) Validate(name string, doc any) error {
	return v.validate(name, gojsonschema.NewGoLoader(doc))
}

func (v *Validator) validate(name string, doc gojsonschema.JSONLoader) error {
	schema, ok := v.schemas[name]
	if !ok {
		return apperr.Internal(fmt.Errorf("schemas: unknown schema %q", name))
	}
	result, err := schema.Validate(doc)
	if err != nil {
		return apperr.New(apperr.ErrInvalidInput, "Malformed JSON", err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.String())
	}
	return apperr.InvalidInput(strings.Join(msgs, "; "))
}
