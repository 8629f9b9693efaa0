// Package cookie models the opaque session cookie exchanged during
// authentication and the config-option list negotiated from it.
package cookie

import "strings"

// Field is a single key[=value] component of a session cookie.
type Field struct {
	Key   string
	Value string
	// HasValue distinguishes a bare key ("foo") from "foo=".
	HasValue bool
}

func (f Field) String() string {
	if !f.HasValue {
		return f.Key
	}
	return f.Key + "=" + f.Value
}

// Parse splits an opaque "&"-joined session cookie into its fields,
// preserving order.
func Parse(raw string) []Field {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, "&")
	fields := make([]Field, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		if i := strings.IndexByte(p, '='); i >= 0 {
			fields = append(fields, Field{Key: p[:i], Value: p[i+1:], HasValue: true})
		} else {
			fields = append(fields, Field{Key: p})
		}
	}
	return fields
}

// Join re-serializes fields back into an "&"-joined cookie string.
func Join(fields []Field) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f.String()
	}
	return strings.Join(parts, "&")
}

// Filter keeps (include=true) or drops (include=false) fields whose key
// appears in names, by NAME ONLY, matching spec.md §3/§4.5's
// longest-of-key-length comparison semantics: a field is kept iff its key
// equals one of names XOR !include.
func Filter(raw string, names []string, include bool) string {
	fields := Parse(raw)
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}

	out := make([]Field, 0, len(fields))
	for _, f := range fields {
		if set[f.Key] == include {
			out = append(out, f)
		}
	}
	return Join(out)
}

// AppendFiltered appends, to buf, the fields of raw surviving Filter,
// observing the separator hygiene rule from spec.md §4.5: a "&" separator
// is only emitted when buf doesn't already end in "?" or "&".
func AppendFiltered(buf *strings.Builder, raw string, names []string, include bool) {
	filtered := Filter(raw, names, include)
	if filtered == "" {
		return
	}
	appendWithSeparator(buf, filtered)
}

// appendWithSeparator appends s to buf, inserting a leading "&" unless
// buf is empty or already ends in "?" or "&".
func appendWithSeparator(buf *strings.Builder, s string) {
	if s == "" {
		return
	}
	cur := buf.String()
	if len(cur) > 0 {
		last := cur[len(cur)-1]
		if last != '?' && last != '&' {
			buf.WriteByte('&')
		}
	}
	buf.WriteString(s)
}

// Option is a (name, value) pair in the session-scoped config-option list
// built by each negotiation (spec.md §3 ConfigOption).
type Option struct {
	Name  string
	Value string
}

// OptionList is an immutable snapshot of negotiated options. A new
// negotiation builds a fresh OptionList; the caller swaps it in only after
// the negotiation as a whole succeeds, so a failed renegotiation never
// mutates the previous snapshot (spec.md §3 Lifecycle, and the "shared
// config-option list" design note).
type OptionList []Option

// Get returns the value of the first option named name, and whether it
// was found.
func (l OptionList) Get(name string) (string, bool) {
	for _, o := range l {
		if o.Name == name {
			return o.Value, true
		}
	}
	return "", false
}
