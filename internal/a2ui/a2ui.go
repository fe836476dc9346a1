// ABOUTME: A2UI view tree types: the closed set of components agents may emit
// ABOUTME: Decoding is strict; an unknown component or field type is a hard error

package a2ui

import (
	"encoding/json"
	"fmt"
)

// ViewKind is the discriminator every valid view envelope must carry.
const ViewKind = "a2ui.v1"

// Component type discriminators.
const (
	TypeScreen      = "screen"
	TypeSection     = "section"
	TypeText        = "text"
	TypeForm        = "form"
	TypeTableEditor = "table_editor"
	TypeButton      = "button"
)

// Field type discriminators.
const (
	TypeFieldText     = "field.text"
	TypeFieldNumber   = "field.number"
	TypeFieldDatetime = "field.datetime"
	TypeFieldSelect   = "field.select"
)

// Component is one node of a view tree. The set of implementations is
// closed: Screen, Section, Text, Form, TableEditor, and Button.
type Component interface {
	componentType() string
}

// Field is one input of a form. The set of implementations is closed:
// TextField, NumberField, DatetimeField, and SelectField.
type Field interface {
	fieldType() string
}

// Option is one choice of a select field or column.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Screen is the root container of a view.
type Screen struct {
	Title    string      `json:"title"`
	Children []Component `json:"children"`
}

// Section groups components under an optional title.
type Section struct {
	Title    string      `json:"title,omitempty"`
	Children []Component `json:"children"`
}

// Text renders static content.
type Text struct {
	Content string `json:"content"`
	Variant string `json:"variant,omitempty"` // body, heading, subheading, caption
}

// Submit is a form's submit affordance.
type Submit struct {
	Label string `json:"label"`
}

// Form collects user input through an ordered list of fields.
type Form struct {
	ID     string  `json:"id"`
	Fields []Field `json:"fields"`
	Submit Submit  `json:"submit"`
}

// TableAction is one action a table editor allows.
type TableAction struct {
	Kind  string `json:"kind"` // table.save, table.add_row, table.delete_row
	Label string `json:"label"`
}

// TableColumn describes one column of a table editor.
type TableColumn struct {
	Key      string   `json:"key"`
	Label    string   `json:"label"`
	Type     string   `json:"type"` // text, number, datetime, select
	Required bool     `json:"required,omitempty"`
	Options  []Option `json:"options,omitempty"`
}

// TableEditor presents editable rows. Rows are free-form keyed records;
// only the row_id key is interpreted by the protocol.
type TableEditor struct {
	ID      string           `json:"id"`
	Columns []TableColumn    `json:"columns"`
	Rows    []map[string]any `json:"rows"`
	Actions []TableAction    `json:"actions"`
}

// Button triggers a named action.
type Button struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Action  string `json:"action"`
	Variant string `json:"variant,omitempty"` // primary, secondary, danger
}

// TextField is a free-text form input.
type TextField struct {
	Name         string `json:"name"`
	Label        string `json:"label"`
	Required     bool   `json:"required,omitempty"`
	Placeholder  string `json:"placeholder,omitempty"`
	DefaultValue string `json:"defaultValue,omitempty"`
}

// NumberField is a numeric form input with optional constraints.
type NumberField struct {
	Name         string   `json:"name"`
	Label        string   `json:"label"`
	Required     bool     `json:"required,omitempty"`
	Placeholder  string   `json:"placeholder,omitempty"`
	DefaultValue *float64 `json:"defaultValue,omitempty"`
	Min          *float64 `json:"min,omitempty"`
	Max          *float64 `json:"max,omitempty"`
	Step         *float64 `json:"step,omitempty"`
}

// DatetimeField is a timestamp form input.
type DatetimeField struct {
	Name         string `json:"name"`
	Label        string `json:"label"`
	Required     bool   `json:"required,omitempty"`
	DefaultValue string `json:"defaultValue,omitempty"`
}

// SelectField is a single-choice form input.
type SelectField struct {
	Name         string   `json:"name"`
	Label        string   `json:"label"`
	Required     bool     `json:"required,omitempty"`
	Options      []Option `json:"options"`
	DefaultValue string   `json:"defaultValue,omitempty"`
}

func (Screen) componentType() string      { return TypeScreen }
func (Section) componentType() string     { return TypeSection }
func (Text) componentType() string        { return TypeText }
func (Form) componentType() string        { return TypeForm }
func (TableEditor) componentType() string { return TypeTableEditor }
func (Button) componentType() string      { return TypeButton }

func (TextField) fieldType() string     { return TypeFieldText }
func (NumberField) fieldType() string   { return TypeFieldNumber }
func (DatetimeField) fieldType() string { return TypeFieldDatetime }
func (SelectField) fieldType() string   { return TypeFieldSelect }

// View is the envelope agents emit: a discriminated kind, an identity, and
// a tree that must parse as exactly one component variant.
type View struct {
	Kind   string    `json:"kind"`
	ViewID string    `json:"view_id"`
	Title  string    `json:"title"`
	Tree   Component `json:"tree"`
}

// ParseView decodes and validates a candidate view. It fails when the data
// is not valid JSON, the kind discriminator is not a2ui.v1, or the tree does
// not match exactly one component variant.
func ParseView(data []byte) (*View, error) {
	var envelope struct {
		Kind   string          `json:"kind"`
		ViewID string          `json:"view_id"`
		Title  string          `json:"title"`
		Tree   json.RawMessage `json:"tree"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("parsing view envelope: %w", err)
	}
	if envelope.Kind != ViewKind {
		return nil, fmt.Errorf("unsupported view kind %q", envelope.Kind)
	}
	if len(envelope.Tree) == 0 {
		return nil, fmt.Errorf("view has no tree")
	}

	tree, err := DecodeComponent(envelope.Tree)
	if err != nil {
		return nil, fmt.Errorf("parsing view tree: %w", err)
	}

	return &View{
		Kind:   envelope.Kind,
		ViewID: envelope.ViewID,
		Title:  envelope.Title,
		Tree:   tree,
	}, nil
}

// DecodeComponent decodes one component, dispatching on the type
// discriminator. Unknown types are a hard validation failure.
func DecodeComponent(data json.RawMessage) (Component, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("reading component type: %w", err)
	}

	switch probe.Type {
	case TypeScreen:
		var raw struct {
			Title    string            `json:"title"`
			Children []json.RawMessage `json:"children"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decoding screen: %w", err)
		}
		children, err := decodeChildren(raw.Children)
		if err != nil {
			return nil, err
		}
		return Screen{Title: raw.Title, Children: children}, nil

	case TypeSection:
		var raw struct {
			Title    string            `json:"title"`
			Children []json.RawMessage `json:"children"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decoding section: %w", err)
		}
		children, err := decodeChildren(raw.Children)
		if err != nil {
			return nil, err
		}
		return Section{Title: raw.Title, Children: children}, nil

	case TypeText:
		var t Text
		if err := json.Unmarshal(data, &t); err != nil {
			return nil, fmt.Errorf("decoding text: %w", err)
		}
		return t, nil

	case TypeForm:
		var raw struct {
			ID     string            `json:"id"`
			Fields []json.RawMessage `json:"fields"`
			Submit Submit            `json:"submit"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("decoding form: %w", err)
		}
		fields := make([]Field, 0, len(raw.Fields))
		for i, fd := range raw.Fields {
			field, err := DecodeField(fd)
			if err != nil {
				return nil, fmt.Errorf("field %d: %w", i, err)
			}
			fields = append(fields, field)
		}
		return Form{ID: raw.ID, Fields: fields, Submit: raw.Submit}, nil

	case TypeTableEditor:
		var t TableEditor
		if err := json.Unmarshal(data, &t); err != nil {
			return nil, fmt.Errorf("decoding table_editor: %w", err)
		}
		return t, nil

	case TypeButton:
		var b Button
		if err := json.Unmarshal(data, &b); err != nil {
			return nil, fmt.Errorf("decoding button: %w", err)
		}
		return b, nil

	default:
		return nil, fmt.Errorf("unknown component type %q", probe.Type)
	}
}

// DecodeField decodes one form field, dispatching on the type discriminator.
func DecodeField(data json.RawMessage) (Field, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("reading field type: %w", err)
	}

	switch probe.Type {
	case TypeFieldText:
		var f TextField
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("decoding text field: %w", err)
		}
		return f, nil
	case TypeFieldNumber:
		var f NumberField
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("decoding number field: %w", err)
		}
		return f, nil
	case TypeFieldDatetime:
		var f DatetimeField
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("decoding datetime field: %w", err)
		}
		return f, nil
	case TypeFieldSelect:
		var f SelectField
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("decoding select field: %w", err)
		}
		return f, nil
	default:
		return nil, fmt.Errorf("unknown field type %q", probe.Type)
	}
}

func decodeChildren(raw []json.RawMessage) ([]Component, error) {
	children := make([]Component, 0, len(raw))
	for i, cd := range raw {
		child, err := DecodeComponent(cd)
		if err != nil {
			return nil, fmt.Errorf("child %d: %w", i, err)
		}
		children = append(children, child)
	}
	return children, nil
}

// MarshalJSON emits the view envelope with the tree tagged by type.
func (v View) MarshalJSON() ([]byte, error) {
	tree, err := marshalComponent(v.Tree)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		Kind   string          `json:"kind"`
		ViewID string          `json:"view_id"`
		Title  string          `json:"title"`
		Tree   json.RawMessage `json:"tree"`
	}{v.Kind, v.ViewID, v.Title, tree})
}

// UnmarshalJSON decodes a view envelope via ParseView.
func (v *View) UnmarshalJSON(data []byte) error {
	parsed, err := ParseView(data)
	if err != nil {
		return err
	}
	*v = *parsed
	return nil
}

// marshalComponent serializes a component with its type discriminator.
func marshalComponent(c Component) (json.RawMessage, error) {
	if c == nil {
		return nil, fmt.Errorf("nil component")
	}

	switch t := c.(type) {
	case Screen:
		children, err := marshalChildren(t.Children)
		if err != nil {
			return nil, err
		}
		return json.Marshal(struct {
			Type     string            `json:"type"`
			Title    string            `json:"title"`
			Children []json.RawMessage `json:"children"`
		}{TypeScreen, t.Title, children})
	case Section:
		children, err := marshalChildren(t.Children)
		if err != nil {
			return nil, err
		}
		return json.Marshal(struct {
			Type     string            `json:"type"`
			Title    string            `json:"title,omitempty"`
			Children []json.RawMessage `json:"children"`
		}{TypeSection, t.Title, children})
	case Text:
		return marshalTagged(TypeText, t)
	case Form:
		fields := make([]json.RawMessage, 0, len(t.Fields))
		for _, f := range t.Fields {
			fd, err := marshalField(f)
			if err != nil {
				return nil, err
			}
			fields = append(fields, fd)
		}
		return json.Marshal(struct {
			Type   string            `json:"type"`
			ID     string            `json:"id"`
			Fields []json.RawMessage `json:"fields"`
			Submit Submit            `json:"submit"`
		}{TypeForm, t.ID, fields, t.Submit})
	case TableEditor:
		return marshalTagged(TypeTableEditor, t)
	case Button:
		return marshalTagged(TypeButton, t)
	default:
		return nil, fmt.Errorf("unknown component %T", c)
	}
}

func marshalChildren(children []Component) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, 0, len(children))
	for _, c := range children {
		data, err := marshalComponent(c)
		if err != nil {
			return nil, err
		}
		out = append(out, data)
	}
	return out, nil
}

// marshalField serializes a field with its type discriminator.
func marshalField(f Field) (json.RawMessage, error) {
	switch t := f.(type) {
	case TextField:
		return marshalTagged(TypeFieldText, t)
	case NumberField:
		return marshalTagged(TypeFieldNumber, t)
	case DatetimeField:
		return marshalTagged(TypeFieldDatetime, t)
	case SelectField:
		return marshalTagged(TypeFieldSelect, t)
	default:
		return nil, fmt.Errorf("unknown field %T", f)
	}
}

// marshalTagged injects the type discriminator into a flat struct encoding.
func marshalTagged(typ string, v any) (json.RawMessage, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, err
	}
	m["type"] = typ
	return json.Marshal(m)
}
