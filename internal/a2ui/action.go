// ABOUTME: UI action types: the interactions a rendered view can send back
// ABOUTME: Each action synthesizes a deterministic natural-language message

package a2ui

import (
	"encoding/json"
	"fmt"
)

// Action kind discriminators.
const (
	KindFormSubmit     = "form.submit"
	KindTableSave      = "table.save"
	KindTableAddRow    = "table.add_row"
	KindTableDeleteRow = "table.delete_row"
	KindButtonClick    = "button.click"
)

// Action is one interaction performed against a rendered view. The set of
// implementations is closed. Message renders the action as the synthetic
// user message the agent runtime feeds back into the conversation.
type Action interface {
	Message() string
	actionKind() string
}

// FormSubmit carries the values of a submitted form.
type FormSubmit struct {
	FormID string         `json:"form_id"`
	Values map[string]any `json:"values"`
}

// TableSave carries the full edited row set of a table editor.
type TableSave struct {
	TableID string           `json:"table_id"`
	Rows    []map[string]any `json:"rows"`
}

// TableAddRow requests a new row in a table editor.
type TableAddRow struct {
	TableID string `json:"table_id"`
}

// TableDeleteRow requests removal of one row from a table editor.
type TableDeleteRow struct {
	TableID string `json:"table_id"`
	RowID   string `json:"row_id"`
}

// ButtonClick reports a button press.
type ButtonClick struct {
	ButtonID string `json:"button_id"`
}

func (FormSubmit) actionKind() string     { return KindFormSubmit }
func (TableSave) actionKind() string      { return KindTableSave }
func (TableAddRow) actionKind() string    { return KindTableAddRow }
func (TableDeleteRow) actionKind() string { return KindTableDeleteRow }
func (ButtonClick) actionKind() string    { return KindButtonClick }

func (a FormSubmit) Message() string {
	values, _ := json.Marshal(a.Values)
	return fmt.Sprintf("User submitted form %s with values: %s", a.FormID, values)
}

func (a TableSave) Message() string {
	rows, _ := json.Marshal(a.Rows)
	return fmt.Sprintf("User saved table %s with rows: %s", a.TableID, rows)
}

func (a TableAddRow) Message() string {
	return fmt.Sprintf("User wants to add a row to table %s", a.TableID)
}

func (a TableDeleteRow) Message() string {
	return fmt.Sprintf("User wants to delete row %s from table %s", a.RowID, a.TableID)
}

func (a ButtonClick) Message() string {
	return fmt.Sprintf("User clicked button %s", a.ButtonID)
}

// DecodeAction decodes a kind-tagged action payload. Unknown kinds are a
// hard validation failure.
func DecodeAction(data []byte) (Action, error) {
	var probe struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("reading action kind: %w", err)
	}

	switch probe.Kind {
	case KindFormSubmit:
		var a FormSubmit
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, fmt.Errorf("decoding form.submit: %w", err)
		}
		return a, nil
	case KindTableSave:
		var a TableSave
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, fmt.Errorf("decoding table.save: %w", err)
		}
		return a, nil
	case KindTableAddRow:
		var a TableAddRow
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, fmt.Errorf("decoding table.add_row: %w", err)
		}
		return a, nil
	case KindTableDeleteRow:
		var a TableDeleteRow
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, fmt.Errorf("decoding table.delete_row: %w", err)
		}
		return a, nil
	case KindButtonClick:
		var a ButtonClick
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, fmt.Errorf("decoding button.click: %w", err)
		}
		return a, nil
	default:
		return nil, fmt.Errorf("unknown action kind %q", probe.Kind)
	}
}

// EncodeAction serializes an action with its kind discriminator.
func EncodeAction(a Action) (json.RawMessage, error) {
	body, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, err
	}
	m["kind"] = a.actionKind()
	return json.Marshal(m)
}
