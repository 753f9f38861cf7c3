package action

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

const schemaBaseURL = "https://deskpilot.schemas.local/action/"

// compiledSchemas holds one validator per kind, built at init.
var compiledSchemas = mustCompileSchemas()

func schemaURL(k Kind) string {
	return fmt.Sprintf("%s%s.schema.json", schemaBaseURL, k)
}

func mustCompileSchemas() map[Kind]*jsonschema.Schema {
	out, err := compileSchemas()
	if err != nil {
		// The documents are embedded; a failure here is a build defect.
		panic(err)
	}
	return out
}

func compileSchemas() (map[Kind]*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020

	for _, k := range Kinds {
		doc, err := schemaFS.ReadFile(fmt.Sprintf("schemas/%s.schema.json", k))
		if err != nil {
			return nil, fmt.Errorf("action schema for %s missing: %w", k, err)
		}
		if err := c.AddResource(schemaURL(k), bytes.NewReader(doc)); err != nil {
			return nil, fmt.Errorf("action schema load failed for %s: %w", k, err)
		}
	}

	out := make(map[Kind]*jsonschema.Schema, len(Kinds))
	for _, k := range Kinds {
		compiled, err := c.Compile(schemaURL(k))
		if err != nil {
			return nil, fmt.Errorf("action schema compile failed for %s: %w", k, err)
		}
		out[k] = compiled
	}
	return out, nil
}

// Schema returns the raw JSON Schema document for a kind.
func Schema(k Kind) ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("unknown action kind %q", k)
	}
	return schemaFS.ReadFile(fmt.Sprintf("schemas/%s.schema.json", k))
}

// Schemas returns every schema document keyed by kind name.
func Schemas() map[Kind][]byte {
	out := make(map[Kind][]byte, len(Kinds))
	for _, k := range Kinds {
		doc, err := Schema(k)
		if err == nil {
			out[k] = doc
		}
	}
	return out
}

// validateParams checks a generic JSON value against the kind's schema.
func validateParams(k Kind, params interface{}) error {
	schema, ok := compiledSchemas[k]
	if !ok {
		return invalidParams(k, "", "no schema registered")
	}
	err := schema.Validate(params)
	if err == nil {
		return nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return invalidParams(k, "", "%v", err)
	}
	leaf := leafCause(verr)
	return &InvalidParametersError{Kind: k, Field: fieldOf(leaf), Reason: leaf.Message}
}

// leafCause follows the first cause chain down to the most specific failure.
func leafCause(e *jsonschema.ValidationError) *jsonschema.ValidationError {
	for len(e.Causes) > 0 {
		causes := append([]*jsonschema.ValidationError(nil), e.Causes...)
		// Deterministic pick when several properties fail at once.
		sort.SliceStable(causes, func(i, j int) bool {
			return causes[i].InstanceLocation < causes[j].InstanceLocation
		})
		e = causes[0]
	}
	return e
}

var quotedName = regexp.MustCompile(`['"]([^'"]*)['"]`)

// fieldOf names the top-level parameter a failure belongs to.
func fieldOf(e *jsonschema.ValidationError) string {
	loc := strings.TrimPrefix(e.InstanceLocation, "/")
	if loc != "" {
		if i := strings.IndexByte(loc, '/'); i >= 0 {
			loc = loc[:i]
		}
		return loc
	}
	// "missing properties: 'key2'" reports against the parent object.
	if m := quotedName.FindStringSubmatch(e.Message); m != nil {
		return m[1]
	}
	return ""
}
