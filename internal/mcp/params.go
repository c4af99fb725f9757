package mcp

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// UnknownField represents a field that was passed but not recognized
type UnknownField struct {
	Name  string      `json:"name"`
	Value interface{} `json:"value"`
}

// Position accepts either a byte offset (number or numeric string) or a
// "LINE:COL" string.
type Position string

func (p *Position) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = Position(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("position must be an offset or \"LINE:COL\": %w", err)
	}
	if _, err := strconv.Atoi(n.String()); err != nil {
		return fmt.Errorf("position must be an integer offset, got %s", n)
	}
	*p = Position(n.String())
	return nil
}

// DocumentParams addresses a caret in a file. Content, when present,
// replaces the file's content on disk (for unsaved buffers).
type DocumentParams struct {
	File     string   `json:"file"`
	Position Position `json:"position"`
	Language string   `json:"language,omitempty"`
	Content  *string  `json:"content,omitempty"`
}

var documentFields = map[string]struct{}{
	"file": {}, "position": {}, "language": {}, "content": {},
}

type ParenParams struct {
	DocumentParams
	Mode      string `json:"mode"`
	ParenType string `json:"paren_type,omitempty"`
}

var parenFields = map[string]struct{}{
	"file": {}, "position": {}, "language": {}, "content": {}, "mode": {}, "paren_type": {},
}

type CheckParams struct {
	Path     string  `json:"path,omitempty"`
	Language string  `json:"language,omitempty"`
	Content  *string `json:"content,omitempty"`
	// AllFiles lists balanced files too in tree reports.
	AllFiles bool `json:"all_files,omitempty"`
}

var checkFields = map[string]struct{}{
	"path": {}, "language": {}, "content": {}, "all_files": {},
}

type InfoParams struct {
	Tool string `json:"tool,omitempty"`
}

var infoFields = map[string]struct{}{"tool": {}}

// decodeParams unmarshals raw arguments into v and reports unknown fields
// as warnings instead of failing.
func decodeParams(data []byte, known map[string]struct{}, v interface{}) ([]string, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		data = []byte("{}")
	}
	unknown, err := collectUnknownFields(data, known)
	if err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	warnings := make([]string, 0, len(unknown))
	for _, f := range unknown {
		warnings = append(warnings, fmt.Sprintf("unknown parameter %q ignored", f.Name))
	}
	return warnings, nil
}

// collectUnknownFields parses raw JSON into a map, capturing any fields
// that aren't part of the provided known field set.
func collectUnknownFields(data []byte, known map[string]struct{}) ([]UnknownField, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	var unknown []UnknownField
	for key, value := range raw {
		if _, ok := known[key]; ok {
			continue
		}
		unknown = append(unknown, decodeUnknownField(key, value))
	}
	sort.Slice(unknown, func(i, j int) bool { return unknown[i].Name < unknown[j].Name })
	return unknown, nil
}

func decodeUnknownField(name string, data json.RawMessage) UnknownField {
	var value interface{}
	if err := json.Unmarshal(data, &value); err != nil {
		value = string(data)
	}
	return UnknownField{Name: name, Value: value}
}
