package contract_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formwizard/pkg/answers"
	"github.com/goliatone/go-formwizard/pkg/contract"
	"github.com/goliatone/go-formwizard/pkg/schema"
)

func formSchema() *schema.Schema {
	return schema.New("Signup",
		schema.Step{Title: "Basics", Fields: []schema.Field{
			schema.Text("name", "Name", true),
			schema.Radio("plan", "Plan", false, "free", "pro"),
			schema.Checkbox("agree", "Agree", false),
		}},
		schema.Step{Title: "Contacts", Fields: []schema.Field{
			schema.Group("contacts", "Contacts", true, schema.Text("email", "Email", true)),
			schema.Unknown{Attrs: schema.Attributes{Name: "stars"}, Tag: "rating"},
		}},
	)
}

func TestBuild_DescribesSubmitOperation(t *testing.T) {
	c, err := contract.Build(context.Background(), formSchema(), contract.WithVersion("2.1.0"))
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	doc := c.Document()
	if doc.Info.Title != "Signup" || doc.Info.Version != "2.1.0" {
		t.Fatalf("unexpected info %+v", doc.Info)
	}
	item := doc.Paths.Find(contract.SubmitPath)
	if item == nil || item.Post == nil {
		t.Fatalf("expected POST %s", contract.SubmitPath)
	}
	body := item.Post.RequestBody.Value.Content.Get("application/json")
	if body == nil || body.Schema == nil {
		t.Fatalf("expected json request body")
	}
	payload := body.Schema.Value
	if diff := cmp.Diff([]string{"name"}, payload.Required); diff != "" {
		t.Fatalf("required mismatch (-want +got):\n%s", diff)
	}
	if _, ok := payload.Properties["stars"]; ok {
		t.Fatalf("unknown field types must not appear in the contract")
	}
	if got := payload.Properties["plan"].Value.Enum; len(got) != 3 {
		t.Fatalf("expected blank plus two options, got %v", got)
	}
}

func TestContract_ValidatePayload(t *testing.T) {
	c, err := contract.Build(context.Background(), formSchema())
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	valid := answers.Record{
		"name":     "Ada",
		"plan":     "pro",
		"agree":    true,
		"contacts": []answers.SubRecord{{"email": "ada@example.com"}},
	}
	if err := c.ValidatePayload(valid); err != nil {
		t.Fatalf("expected valid payload, got %v", err)
	}

	cases := map[string]answers.Record{
		"missing name":  {"plan": "free"},
		"empty name":    {"name": ""},
		"bad option":    {"name": "Ada", "plan": "gold"},
		"missing email": {"name": "Ada", "contacts": []answers.SubRecord{{}}},
	}
	for name, record := range cases {
		t.Run(name, func(t *testing.T) {
			if err := c.ValidatePayload(record); !errors.Is(err, contract.ErrInvalidPayload) {
				t.Fatalf("expected ErrInvalidPayload, got %v", err)
			}
		})
	}
}

func TestContract_PayloadErrorPointsAtField(t *testing.T) {
	c, err := contract.Build(context.Background(), formSchema())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	err = c.ValidatePayload(answers.Record{"name": "Ada", "contacts": []answers.SubRecord{{"email": ""}}})
	var payloadErr *contract.PayloadError
	if !errors.As(err, &payloadErr) {
		t.Fatalf("expected *PayloadError, got %v", err)
	}
	if _, ok := payloadErr.Issues["/contacts/0/email"]; !ok {
		t.Fatalf("expected issue keyed by field pointer, got %v", payloadErr.Issues)
	}
}

func TestContract_RoundTripsThroughLoader(t *testing.T) {
	c, err := contract.Build(context.Background(), formSchema())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	data, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	doc, err := contract.Load(context.Background(), data)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.Paths.Find(contract.SubmitPath) == nil {
		t.Fatalf("reloaded document lost %s", contract.SubmitPath)
	}
}

func TestBuild_RequiresSchema(t *testing.T) {
	if _, err := contract.Build(context.Background(), nil); !errors.Is(err, contract.ErrNilSchema) {
		t.Fatalf("expected ErrNilSchema, got %v", err)
	}
}
