package answers_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formwizard/pkg/answers"
)

func TestPath_StringAndParse(t *testing.T) {
	cases := []struct {
		path answers.Path
		want string
	}{
		{path: answers.Top("name"), want: "name"},
		{path: answers.Nested("contacts", 2, "email"), want: "contacts.2.email"},
	}
	for _, tc := range cases {
		if got := tc.path.String(); got != tc.want {
			t.Fatalf("String() = %q, want %q", got, tc.want)
		}
		parsed, err := answers.ParsePath(tc.want)
		if err != nil {
			t.Fatalf("parse %q: %v", tc.want, err)
		}
		if diff := cmp.Diff(tc.path, parsed); diff != "" {
			t.Fatalf("parsed path mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestParsePath_RejectsOtherShapes(t *testing.T) {
	for _, input := range []string{"", "a.b", "a.x.c", "a.-1.c", "a.1.b.c", ".1.c"} {
		if _, err := answers.ParsePath(input); !errors.Is(err, answers.ErrInvalidPath) {
			t.Fatalf("ParsePath(%q) expected ErrInvalidPath, got %v", input, err)
		}
	}
}

func TestRecord_CloneIsDeep(t *testing.T) {
	original := answers.Record{
		"name":     "Ada",
		"contacts": []answers.SubRecord{{"email": "ada@example.com"}},
	}
	cloned := original.Clone()
	cloned.Group("contacts")[0]["email"] = "changed"
	cloned["name"] = "Grace"

	if original["name"] != "Ada" {
		t.Fatalf("clone leaked top-level write")
	}
	if got := original.Group("contacts")[0]["email"]; got != "ada@example.com" {
		t.Fatalf("clone leaked nested write: %v", got)
	}
}

func TestRecord_GroupAbsentIsEmpty(t *testing.T) {
	var record answers.Record
	if got := record.Group("contacts"); len(got) != 0 {
		t.Fatalf("expected empty group, got %v", got)
	}
	record = answers.Record{"contacts": "not a list"}
	if got := record.Group("contacts"); len(got) != 0 {
		t.Fatalf("expected empty group for scalar, got %v", got)
	}
}

func TestRecord_UnmarshalJSONRestoresGroups(t *testing.T) {
	var record answers.Record
	if err := json.Unmarshal([]byte(`{"name":"Ada","agree":true,"contacts":[{"email":"a@b.c"},{}]}`), &record); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := answers.Record{
		"name":     "Ada",
		"agree":    true,
		"contacts": []answers.SubRecord{{"email": "a@b.c"}, {}},
	}
	if diff := cmp.Diff(want, record); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}
}
