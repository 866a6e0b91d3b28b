package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/goliatone/go-formwizard/pkg/schema"
)

const (
	defaultChoiceLimit = 50
	maxChoiceLimit     = 200
)

type choiceResponse struct {
	Data []choiceOption `json:"data"`
}

type choiceOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// handleChoices searches the declared options of a select or radio field.
// Nested fields are addressed as "group.field". An empty query lists the
// options in declared order.
func (s *Server) handleChoices(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "field")
	choice, ok := s.lookupChoice(name)
	if !ok {
		s.writeError(w, r, StatusError{Code: http.StatusNotFound, Err: fmt.Errorf("no choice field %q", name)})
		return
	}

	limit := defaultChoiceLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	results := searchOptions(choice.Options, r.URL.Query().Get("q"), limit)
	out := choiceResponse{Data: make([]choiceOption, 0, len(results))}
	for _, option := range results {
		out.Data = append(out.Data, choiceOption{Value: option, Label: option})
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(out)
}

func (s *Server) lookupChoice(name string) (schema.Choice, bool) {
	group, sub, nested := strings.Cut(name, ".")
	field, ok := s.schema.Lookup(group)
	if !ok {
		return schema.Choice{}, false
	}
	if nested {
		repeatable, ok := field.(schema.Repeatable)
		if !ok {
			return schema.Choice{}, false
		}
		if field, ok = repeatable.SubField(sub); !ok {
			return schema.Choice{}, false
		}
	}
	choice, ok := field.(schema.Choice)
	return choice, ok
}

// searchOptions returns options containing query, prefix matches first,
// otherwise in declared order.
func searchOptions(options []string, query string, limit int) []string {
	switch {
	case limit <= 0:
		limit = defaultChoiceLimit
	case limit > maxChoiceLimit:
		limit = maxChoiceLimit
	}

	query = strings.ToLower(strings.TrimSpace(query))
	type match struct {
		value    string
		isPrefix bool
	}
	matches := make([]match, 0, len(options))
	for _, option := range options {
		lower := strings.ToLower(option)
		if query != "" && !strings.Contains(lower, query) {
			continue
		}
		matches = append(matches, match{value: option, isPrefix: strings.HasPrefix(lower, query)})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].isPrefix && !matches[j].isPrefix
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.value)
	}
	return out
}
