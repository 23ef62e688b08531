package mapping

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const nodeMappingsSchemaURL = "provtrack://node_mappings.schema.json"

// nodeMappingsSchema describes the expected shape only; Decode never rejects a
// document because of it.
const nodeMappingsSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "definitions": {
    "channel": {
      "type": "object",
      "additionalProperties": {
        "type": "array",
        "items": {"type": "string", "minLength": 1}
      }
    }
  },
  "properties": {
    "version": {"type": "number", "minimum": 1},
    "preToPost": {"$ref": "#/definitions/channel"},
    "postToPre": {"$ref": "#/definitions/channel"},
    "cppCodeToPost": {"$ref": "#/definitions/channel"},
    "postToCppCode": {"$ref": "#/definitions/channel"},
    "codeToPost": {"$ref": "#/definitions/channel"},
    "postToCode": {"$ref": "#/definitions/channel"}
  }
}`

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func loadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(nodeMappingsSchemaURL, strings.NewReader(nodeMappingsSchema)); err != nil {
			schemaErr = err
			return
		}
		compiledSchema, schemaErr = compiler.Compile(nodeMappingsSchemaURL)
	})
	return compiledSchema, schemaErr
}

// Validate checks the node-mapping document against the expected shape and
// returns a description of every deviation. An empty document is valid.
func Validate(data []byte) []string {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	schema, err := loadSchema()
	if err != nil {
		return []string{fmt.Sprintf("node mappings schema unavailable: %v", err)}
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return []string{fmt.Sprintf("node mappings are not valid JSON: %v", err)}
	}
	err = schema.Validate(v)
	if err == nil {
		return nil
	}
	verr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []string{err.Error()}
	}
	var issues []string
	collectIssues(verr, &issues)
	return issues
}

func collectIssues(e *jsonschema.ValidationError, out *[]string) {
	if len(e.Causes) == 0 {
		loc := e.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		*out = append(*out, fmt.Sprintf("%s: %s", loc, e.Message))
		return
	}
	for _, c := range e.Causes {
		collectIssues(c, out)
	}
}
