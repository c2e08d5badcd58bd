package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// WebhookRequestSchema describes the inbound fulfillment body. Both blocks are
// optional; when present they must have the right shape.
const WebhookRequestSchema = `{
  "type": "object",
  "properties": {
    "intentInfo": {
      "type": ["object", "null"],
      "properties": {
        "displayName": {"type": ["string", "null"]}
      }
    },
    "sessionInfo": {
      "type": ["object", "null"],
      "properties": {
        "parameters": {"type": ["object", "null"]}
      }
    }
  }
}`

// LeadSchema describes a quote lead document before it is written.
const LeadSchema = `{
  "type": "object",
  "required": ["name", "email", "contact_time", "submission_timestamp"],
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "email": {"type": "string", "minLength": 1},
    "contact_time": {"type": "string"},
    "submission_timestamp": {"type": "string", "format": "date-time"}
  },
  "additionalProperties": false
}`

// GymSchema describes a gym pricing document. Leaves are optional since the
// pricing summary renders missing values as "N/A"; when present they must be
// well typed.
const GymSchema = `{
  "type": "object",
  "required": ["name", "membership"],
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "membership": {
      "type": "object",
      "required": ["anytime"],
      "properties": {
        "anytime": {
          "type": "object",
          "properties": {
            "12MonthCommitment": {"$ref": "#/definitions/plan"},
            "1MonthRolling": {"$ref": "#/definitions/plan"},
            "promotion": {
              "type": "object",
              "properties": {
                "active": {"type": "boolean"},
                "description": {"type": "string"},
                "condition": {"type": "string"}
              }
            }
          }
        }
      }
    }
  },
  "definitions": {
    "plan": {
      "type": "object",
      "properties": {
        "commitment": {"type": "string"},
        "currency": {"type": "string", "pattern": "^[A-Z]{3}$"},
        "discountPrice": {"type": "number", "minimum": 0},
        "originalPrice": {"type": "number", "minimum": 0},
        "price": {"type": "number", "minimum": 0},
        "period": {"type": "string"}
      }
    }
  }
}`

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Validator holds a compiled JSON schema.
type Validator struct {
	schema *gojsonschema.Schema
}

// NewValidator compiles schemaJSON.
func NewValidator(schemaJSON string) (*Validator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{schema: schema}, nil
}

// MustValidator is NewValidator for schemas known at compile time.
func MustValidator(schemaJSON string) *Validator {
	v, err := NewValidator(schemaJSON)
	if err != nil {
		panic(err)
	}
	return v
}

// ValidateBytes validates a raw JSON document. A body that is not JSON at all
// is reported as a single error on the root.
func (v *Validator) ValidateBytes(doc []byte) *ValidationResult {
	return v.validate(gojsonschema.NewBytesLoader(doc))
}

// ValidateGo validates a Go value (maps, slices, structs with json tags).
func (v *Validator) ValidateGo(doc interface{}) *ValidationResult {
	return v.validate(gojsonschema.NewGoLoader(doc))
}

func (v *Validator) validate(loader gojsonschema.JSONLoader) *ValidationResult {
	result, err := v.schema.Validate(loader)
	if err != nil {
		return &ValidationResult{
			Valid: false,
			Errors: []ValidationError{{
				Field:   "(root)",
				Message: err.Error(),
				Code:    "INVALID_JSON",
			}},
		}
	}

	if result.Valid() {
		return &ValidationResult{Valid: true}
	}

	errs := make([]ValidationError, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		errs = append(errs, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		})
	}
	return &ValidationResult{Valid: false, Errors: errs}
}

// GetErrorMessages returns a simple list of error messages
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

// HasErrors checks if validation has errors for specific field
func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field || strings.HasPrefix(err.Field, field+".") {
			return true
		}
	}
	return false
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail validates email format
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}
