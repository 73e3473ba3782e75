// Package contentdm contains the item type returned by the CONTENTdm
// dmwebservices dmGetItemInfo call, e.g. for the IFPRI library.
package contentdm

import (
	"strings"

	"github.com/segmentio/encoding/json"
)

// Item is a flat CONTENTdm record. Field names are the truncated nicknames
// of the collection, e.g. "creato" or "descri". CONTENTdm encodes an empty
// field as an empty object instead of an empty string.
type Item struct {
	Fields map[string]string
}

// UnmarshalJSON keeps string values only and drops "{}" placeholders.
func (it *Item) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	it.Fields = make(map[string]string, len(raw))
	for k, v := range raw {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			var n json.Number
			if err := json.Unmarshal(v, &n); err != nil {
				continue
			}
			s = n.String()
		}
		if s = strings.TrimSpace(s); s != "" {
			it.Fields[k] = s
		}
	}
	return nil
}

// Values returns the field value as a single element slice, or nil. Multiple
// values are kept as CONTENTdm delivers them, separated by semicolons.
func (it *Item) Values(field string) []string {
	if v, ok := it.Fields[field]; ok {
		return []string{v}
	}
	return nil
}

// Pointer returns the record pointer, which identifies the item within its
// collection.
func (it *Item) Pointer() string {
	return it.Fields["dmrecord"]
}
