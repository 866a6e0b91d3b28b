// Package answers holds the answer record a wizard accumulates and the
// structured paths used to address its slots.
package answers
