package burnoutai

import "github.com/xeipuuv/gojsonschema"

// analysisResponseSchema is the subset of the analyze-custom response this client
// relies on. Unknown fields are allowed.
const analysisResponseSchema = `{
  "type": "object",
  "required": ["prediction"],
  "properties": {
    "prediction": {
      "type": "object",
      "required": ["burnout_probability", "burnout_level", "risk_category"],
      "properties": {
        "burnout_probability": {"type": "number", "minimum": 0, "maximum": 1},
        "burnout_level": {"type": "string"},
        "risk_category": {"type": "string"}
      }
    }
  }
}`

const predictionResponseSchema = `{
  "type": "object",
  "required": ["burnout_probability"],
  "properties": {
    "burnout_probability": {"type": "number", "minimum": 0, "maximum": 1}
  }
}`

var (
	analysisSchema   = mustSchema(analysisResponseSchema)
	predictionSchema = mustSchema(predictionResponseSchema)
)

func mustSchema(src string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(err)
	}
	return s
}

// validate reports the first schema violation in body, or "" when it conforms.
func validate(schema *gojsonschema.Schema, body []byte) string {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return err.Error()
	}
	if !result.Valid() {
		return result.Errors()[0].String()
	}
	return ""
}
