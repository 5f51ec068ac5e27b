package llm

import "github.com/invopop/jsonschema"

// schemaFor reflects a strict JSON schema for a response type: inlined
// definitions, no additional properties, every field required. This is the
// shape structured-output endpoints expect.
func schemaFor[T any]() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		DoNotReference:             true,
		AllowAdditionalProperties:  false,
		RequiredFromJSONSchemaTags: false,
	}
	var v T
	return reflector.Reflect(&v)
}

var (
	recognitionSchema = schemaFor[recognitionResponse]()
	enrichmentSchema  = schemaFor[enrichmentResponse]()
	summarySchema     = schemaFor[summaryResponse]()
)
