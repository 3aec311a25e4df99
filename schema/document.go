// Package schema ingests the dataplane's JSON API definitions and builds a
// typed message Catalog: the pack.Descriptor tree for every type, union,
// enum and alias, the per-message CRC/name binding, and the per-service
// request/reply (or request/stream) definitions. This never generates Go
// source; it reifies the schema into the data tables the pack engine walks
// at runtime.
package schema

import (
	"encoding/json"
	"fmt"
)

// Field is one positional tuple from a types/messages/unions field list:
// [type_name, field_name, len?, refer?].
type Field struct {
	Type  string
	Name  string
	Len   int    // 0 if absent
	Refer string // "" if absent
}

// UnmarshalJSON decodes the positional-tuple wire shape of a field.
func (f *Field) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) < 2 {
		return fmt.Errorf("schema: field tuple needs at least [type, name], got %d elements", len(raw))
	}
	if err := json.Unmarshal(raw[0], &f.Type); err != nil {
		return fmt.Errorf("schema: field type: %w", err)
	}
	if err := json.Unmarshal(raw[1], &f.Name); err != nil {
		return fmt.Errorf("schema: field name: %w", err)
	}
	if len(raw) >= 3 {
		if err := json.Unmarshal(raw[2], &f.Len); err != nil {
			return fmt.Errorf("schema: field len: %w", err)
		}
	}
	if len(raw) >= 4 {
		// refer is either a sibling field name (string) or an object/other
		// value in some dialects; only the string form carries meaning here.
		var s string
		if err := json.Unmarshal(raw[3], &s); err == nil {
			f.Refer = s
		}
	}
	return nil
}

// IsScalar reports a plain scalar field (no len, no refer).
func (f Field) IsScalar() bool { return f.Len == 0 && f.Refer == "" }

// IsFixedArray reports `len = N, refer = nil`.
func (f Field) IsFixedArray() bool { return f.Len > 0 && f.Refer == "" }

// IsDynArray reports `len = N, refer = "sibling"`.
func (f Field) IsDynArray() bool { return f.Refer != "" }

// IsNullString reports a bare `string` field with no len.
func (f Field) IsNullString() bool { return f.Type == "string" && f.Len == 0 }

// TypeDoc is one named type/message/union definition: an ordered field list
// plus an optional trailing metadata object (present on messages, which
// carry at least `crc`).
type TypeDoc struct {
	Name   string
	Fields []Field
	Meta   map[string]json.RawMessage
}

// UnmarshalJSON decodes `["name", field, field, ..., {"crc": "..."}]`, where
// each field is its own positional tuple directly after the name, tolerating
// a missing trailing metadata object.
func (t *TypeDoc) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) < 1 {
		return fmt.Errorf("schema: type/message tuple is empty")
	}
	if err := json.Unmarshal(raw[0], &t.Name); err != nil {
		return fmt.Errorf("schema: type name: %w", err)
	}
	for _, elem := range raw[1:] {
		var f Field
		if err := json.Unmarshal(elem, &f); err == nil {
			t.Fields = append(t.Fields, f)
			continue
		}
		var meta map[string]json.RawMessage
		if err := json.Unmarshal(elem, &meta); err == nil {
			if t.Meta == nil {
				t.Meta = meta
			} else {
				for k, v := range meta {
					t.Meta[k] = v
				}
			}
		}
	}
	return nil
}

// CRC returns the message's compile-time CRC string, from its trailing
// metadata object.
func (t TypeDoc) CRC() string {
	var crc string
	if raw, ok := t.Meta["crc"]; ok {
		_ = json.Unmarshal(raw, &crc)
	}
	return crc
}

// EnumEntry binds one enum variant name to its literal wire value.
type EnumEntry struct {
	Name  string
	Value uint64
}

// UnmarshalJSON decodes `["NAME", value]`.
func (e *EnumEntry) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) < 2 {
		return fmt.Errorf("schema: enum entry needs [name, value]")
	}
	if err := json.Unmarshal(raw[0], &e.Name); err != nil {
		return err
	}
	return json.Unmarshal(raw[1], &e.Value)
}

// EnumDoc is one enum or enum_flags definition: `["name", ["A",0], ["B",1],
// {"enumtype":"u32", "fallback":"Mismatch"}]`. fallback is optional; when
// absent, Build gives the enum a fallback variant named "Mismatch", so
// unknown values decode into it rather than failing.
type EnumDoc struct {
	Name     string
	EnumType string
	Entries  []EnumEntry
	Fallback string
}

// UnmarshalJSON decodes the tuple shape described above.
func (e *EnumDoc) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) < 1 {
		return fmt.Errorf("schema: enum tuple is empty")
	}
	if err := json.Unmarshal(raw[0], &e.Name); err != nil {
		return fmt.Errorf("schema: enum name: %w", err)
	}
	for _, elem := range raw[1:] {
		var entry EnumEntry
		if err := json.Unmarshal(elem, &entry); err == nil {
			e.Entries = append(e.Entries, entry)
			continue
		}
		var meta struct {
			EnumType string `json:"enumtype"`
			Fallback string `json:"fallback"`
		}
		if err := json.Unmarshal(elem, &meta); err == nil {
			if meta.EnumType != "" {
				e.EnumType = meta.EnumType
			}
			e.Fallback = meta.Fallback
		}
	}
	return nil
}

// ServiceDoc binds one request message name to its reply (and, for a
// streaming service, whether the stream terminates on control_ping_reply).
type ServiceDoc struct {
	Reply  string `json:"reply"`
	Stream bool   `json:"stream"`
}

// AliasDoc is a named alias for a base type, optionally array-shaped.
type AliasDoc struct {
	Type   string `json:"type"`
	Length int    `json:"length"`
}

// Document is one parsed JSON API namespace file.
type Document struct {
	Types     []TypeDoc             `json:"types"`
	Messages  []TypeDoc             `json:"messages"`
	Unions    []TypeDoc             `json:"unions"`
	Enums     []EnumDoc             `json:"enums"`
	EnumFlags []EnumDoc             `json:"enum_flags"`
	Services  map[string]ServiceDoc `json:"services"`
	Aliases   map[string]AliasDoc   `json:"aliases"`
}

// ParseDocument parses one JSON API namespace document. Filesystem access
// and globbing of the input files is the caller's responsibility; this
// function only parses bytes already in memory.
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("schema: parse document: %w", err)
	}
	return &doc, nil
}
