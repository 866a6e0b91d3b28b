// Package preview serialises an answer record in schema declaration order for
// the read-only review page and the submission payload.
package preview
