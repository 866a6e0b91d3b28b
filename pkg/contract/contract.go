package contract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formwizard/pkg/answers"
	"github.com/goliatone/go-formwizard/pkg/schema"
)

// SubmitPath is the operation path described by the contract.
const SubmitPath = "/submit"

var (
	// ErrNilSchema is returned when building a contract without a schema.
	ErrNilSchema = errors.New("contract: schema is required")
	// ErrInvalidPayload wraps schema validation failures for a submission.
	ErrInvalidPayload = errors.New("contract: payload does not match contract")
)

// Option customises Build.
type Option func(*options)

type options struct {
	title   string
	version string
}

// WithTitle overrides the document title; the schema title is the default.
func WithTitle(title string) Option {
	return func(o *options) {
		if title != "" {
			o.title = title
		}
	}
}

// WithVersion sets info.version.
func WithVersion(version string) Option {
	return func(o *options) {
		if version != "" {
			o.version = version
		}
	}
}

// Contract is an OpenAPI description of the submission endpoint.
type Contract struct {
	doc     *openapi3.T
	payload *openapi3.Schema
}

// Build derives the contract from the form schema.
func Build(ctx context.Context, s *schema.Schema, opts ...Option) (*Contract, error) {
	if s == nil {
		return nil, ErrNilSchema
	}
	cfg := options{title: s.Title(), version: "1.0.0"}
	if cfg.title == "" {
		cfg.title = "Form submission"
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	payload := PayloadSchema(s)
	op := openapi3.NewOperation()
	op.OperationID = "submitForm"
	op.Summary = "Submit the completed " + cfg.title
	op.RequestBody = &openapi3.RequestBodyRef{
		Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchema(payload),
	}
	op.Responses = openapi3.NewResponses(
		openapi3.WithStatus(200, &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription("Submission accepted")}),
		openapi3.WithStatus(422, &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription("Required fields are missing")}),
	)

	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info:    &openapi3.Info{Title: cfg.title, Version: cfg.version},
		Paths:   openapi3.NewPaths(openapi3.WithPath(SubmitPath, &openapi3.PathItem{Post: op})),
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("contract: generated document is invalid: %w", err)
	}
	return &Contract{doc: doc, payload: payload}, nil
}

// Document exposes the underlying OpenAPI document.
func (c *Contract) Document() *openapi3.T {
	return c.doc
}

// MarshalJSON encodes the OpenAPI document.
func (c *Contract) MarshalJSON() ([]byte, error) {
	return c.doc.MarshalJSON()
}

// PayloadError lists the contract violations of one submission keyed by
// JSON pointer ("/contacts/0/email"). An empty key is a document-level issue.
type PayloadError struct {
	Issues map[string][]string
}

func (e *PayloadError) Error() string {
	keys := make([]string, 0, len(e.Issues))
	for key := range e.Issues {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		label := key
		if label == "" {
			label = "/"
		}
		parts = append(parts, label+": "+strings.Join(e.Issues[key], ", "))
	}
	return fmt.Sprintf("%s: %s", ErrInvalidPayload, strings.Join(parts, "; "))
}

func (e *PayloadError) Unwrap() error {
	return ErrInvalidPayload
}

// ValidatePayload checks a submitted record against the request body schema.
// Failures are returned as *PayloadError.
func (c *Contract) ValidatePayload(record answers.Record) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("contract: encode payload: %w", err)
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return fmt.Errorf("contract: decode payload: %w", err)
	}
	err = c.payload.VisitJSON(value, openapi3.MultiErrors())
	if err == nil {
		return nil
	}

	issues := make(map[string][]string)
	collectIssues(err, issues)
	return &PayloadError{Issues: issues}
}

func collectIssues(err error, dest map[string][]string) {
	var multi openapi3.MultiError
	if errors.As(err, &multi) {
		for _, item := range multi {
			collectIssues(item, dest)
		}
		return
	}
	var schemaErr *openapi3.SchemaError
	if errors.As(err, &schemaErr) {
		pointer := ""
		if segments := schemaErr.JSONPointer(); len(segments) > 0 {
			pointer = "/" + strings.Join(segments, "/")
		}
		reason := schemaErr.Reason
		if reason == "" {
			reason = schemaErr.Error()
		}
		dest[pointer] = append(dest[pointer], reason)
		return
	}
	dest[""] = append(dest[""], err.Error())
}

// Load parses a contract previously emitted by MarshalJSON.
func Load(ctx context.Context, data []byte) (*openapi3.T, error) {
	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("contract: load: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("contract: validate: %w", err)
	}
	return doc, nil
}
