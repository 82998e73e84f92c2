package stepwise

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/xeipuuv/gojsonschema"
)

// SubmissionSchema is the JSON schema every raw submission document must satisfy.
//
//go:embed schema/submission.schema.json
var SubmissionSchema []byte

// schemaRoot is the field gojsonschema reports for object-level errors.
const schemaRoot = "(root)"

var (
	submissionValidate *validator.Validate
	submissionSchema   = gojsonschema.NewBytesLoader(SubmissionSchema)
)

func init() {
	submissionValidate = validator.New(validator.WithRequiredStructEnabled())

	// Report boundary names (thoughtNumber) instead of Go names (ThoughtNumber).
	submissionValidate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
}

// Validate checks presence and range constraints on the submission.
// It returns a *ValidationError describing the first violation.
func (s Submission) Validate() error {
	err := submissionValidate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{Reason: err.Error()}
	}

	fe := fieldErrs[0]
	return &ValidationError{Field: fe.Field(), Reason: describeConstraint(fe)}
}

func describeConstraint(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		if fe.Kind() == reflect.String {
			return "must be a non-empty string"
		}
		return "is required"
	case "min":
		return fmt.Sprintf("must be a number greater than or equal to %s", fe.Param())
	default:
		return fmt.Sprintf("failed %q constraint", fe.Tag())
	}
}

// DecodeSubmission validates a raw JSON document against SubmissionSchema
// and decodes it. Missing fields, wrong types and out-of-range numbers are
// reported as *ValidationError before anything is decoded.
func DecodeSubmission(raw []byte) (Submission, error) {
	result, err := gojsonschema.Validate(submissionSchema, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return Submission{}, &ValidationError{Reason: fmt.Sprintf("malformed document: %v", err)}
	}

	if !result.Valid() {
		return Submission{}, schemaViolation(result.Errors())
	}

	var s Submission
	if err := json.Unmarshal(raw, &s); err != nil {
		return Submission{}, &ValidationError{Reason: fmt.Sprintf("malformed document: %v", err)}
	}

	if err := s.Validate(); err != nil {
		return Submission{}, err
	}

	return s, nil
}

// schemaViolation converts the first schema error into a ValidationError.
func schemaViolation(errs []gojsonschema.ResultError) error {
	if len(errs) == 0 {
		return &ValidationError{Reason: "document does not match schema"}
	}

	first := errs[0]
	field := first.Field()
	if field == schemaRoot || field == "" {
		// Missing-property errors are reported against the root object.
		if prop, ok := first.Details()["property"].(string); ok {
			field = prop
		} else {
			field = ""
		}
	}

	return &ValidationError{Field: field, Reason: first.Description()}
}
