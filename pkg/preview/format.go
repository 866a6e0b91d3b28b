package preview

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formwizard/pkg/answers"
	"github.com/goliatone/go-formwizard/pkg/schema"
)

// Format selects the serialisation used for previews and submissions.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
)

// ErrUnknownFormat is returned for unsupported format names.
var ErrUnknownFormat = errors.New("preview: unknown format")

// ParseFormat normalises a format name. "md" and "yml" are accepted aliases.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "text", "txt":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// Render serialises record in the requested format.
func Render(s *schema.Schema, record answers.Record, format Format) ([]byte, error) {
	entries := Entries(s, record)
	switch format {
	case FormatText, "":
		return []byte(text(entries)), nil
	case FormatJSON:
		return marshalJSON(entries)
	case FormatYAML:
		return marshalYAML(entries)
	case FormatMarkdown:
		return []byte(markdown(s, entries)), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Text is the human-readable indented dump shown on the preview page.
func Text(s *schema.Schema, record answers.Record) string {
	return text(Entries(s, record))
}

// JSON encodes the record with two-space indentation in schema order.
func JSON(s *schema.Schema, record answers.Record) ([]byte, error) {
	return marshalJSON(Entries(s, record))
}

func text(entries []Entry) string {
	var b strings.Builder
	writeText(&b, entries, "")
	return b.String()
}

func writeText(b *strings.Builder, entries []Entry, indent string) {
	for _, entry := range entries {
		if !entry.Repeatable {
			fmt.Fprintf(b, "%s%s: %s\n", indent, entry.Label, scalar(entry.Value))
			continue
		}
		if len(entry.Items) == 0 {
			fmt.Fprintf(b, "%s%s: (none)\n", indent, entry.Label)
			continue
		}
		fmt.Fprintf(b, "%s%s:\n", indent, entry.Label)
		for i, item := range entry.Items {
			fmt.Fprintf(b, "%s  #%d\n", indent, i+1)
			writeText(b, item, indent+"    ")
		}
	}
}

func scalar(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if v {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprint(v)
	}
}

type orderedObject []Entry

func (o orderedObject) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, entry := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(entry.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		var value []byte
		if entry.Repeatable {
			items := make([]orderedObject, len(entry.Items))
			for j, item := range entry.Items {
				items[j] = orderedObject(item)
			}
			value, err = json.Marshal(items)
		} else {
			value, err = json.Marshal(entry.Value)
		}
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalJSON(entries []Entry) ([]byte, error) {
	out, err := json.MarshalIndent(orderedObject(entries), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("preview: encode json: %w", err)
	}
	return out, nil
}

func yamlNode(entries []Entry) *yaml.Node {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, entry := range entries {
		key := &yaml.Node{Kind: yaml.ScalarNode, Value: entry.Name}
		var value *yaml.Node
		if entry.Repeatable {
			value = &yaml.Node{Kind: yaml.SequenceNode}
			for _, item := range entry.Items {
				value.Content = append(value.Content, yamlNode(item))
			}
		} else {
			value = &yaml.Node{}
			if err := value.Encode(entry.Value); err != nil {
				value = &yaml.Node{Kind: yaml.ScalarNode, Value: scalar(entry.Value)}
			}
		}
		node.Content = append(node.Content, key, value)
	}
	return node
}

func marshalYAML(entries []Entry) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(yamlNode(entries)); err != nil {
		return nil, fmt.Errorf("preview: encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("preview: encode yaml: %w", err)
	}
	return buf.Bytes(), nil
}

func markdown(s *schema.Schema, entries []Entry) string {
	var b strings.Builder
	title := s.Title()
	if title == "" {
		title = "Review Your Submission"
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	if len(entries) == 0 {
		b.WriteString("_Nothing entered yet._\n")
		return b.String()
	}
	writeMarkdown(&b, entries, "")
	return b.String()
}

func writeMarkdown(b *strings.Builder, entries []Entry, indent string) {
	for _, entry := range entries {
		if !entry.Repeatable {
			fmt.Fprintf(b, "%s- **%s**: %s\n", indent, entry.Label, escapeMarkdown(scalar(entry.Value)))
			continue
		}
		fmt.Fprintf(b, "%s- **%s** (%d)\n", indent, entry.Label, len(entry.Items))
		for i, item := range entry.Items {
			fmt.Fprintf(b, "%s  - #%d\n", indent, i+1)
			writeMarkdown(b, item, indent+"    ")
		}
	}
}

var markdownEscaper = strings.NewReplacer("*", `\*`, "_", `\_`, "`", "\\`", "#", `\#`)

func escapeMarkdown(value string) string {
	return markdownEscaper.Replace(value)
}
