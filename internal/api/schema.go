package api

import (
	"embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

const (
	schemaUniversities = "universities"
	schemaMajors       = "majors"
	schemaPredict      = "predict"
	schemaRecommend    = "recommend"
	schemaChatbot      = "chatbot"
)

var schemas = mustLoadSchemas(schemaUniversities, schemaMajors, schemaPredict, schemaRecommend, schemaChatbot)

func mustLoadSchemas(names ...string) map[string]*gojsonschema.Schema {
	out := make(map[string]*gojsonschema.Schema, len(names))
	for _, name := range names {
		data, err := schemaFS.ReadFile("schemas/" + name + ".json")
		if err != nil {
			panic(fmt.Sprintf("api: missing schema %s: %v", name, err))
		}
		s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
		if err != nil {
			panic(fmt.Sprintf("api: invalid schema %s: %v", name, err))
		}
		out[name] = s
	}
	return out
}

// checkSchema validates a response body against the named schema.
func checkSchema(name string, body []byte) error {
	result, err := schemas[name].Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, e := range result.Errors() {
			errs[i] = e.String()
		}
		return fmt.Errorf("%s response does not match schema: %s", name, strings.Join(errs, "; "))
	}
	return nil
}
