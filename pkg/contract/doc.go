// Package contract derives an OpenAPI 3 description of the submission payload
// from a form schema and validates submissions against it.
package contract
