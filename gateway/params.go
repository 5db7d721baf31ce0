package gateway

import (
	"encoding/json"
	"strings"
)

// Params is an ordered set of raw provider response fields. Keys are
// normalized so common fields can be inspected without per-provider
// documentation; insertion order is the order the provider returned them.
//
// A Params attached to a Response is read-only: build it fully, then hand it
// to NewResponse.
type Params struct {
	keys   []string
	values map[string]string
}

// NewParams returns an empty ordered param set.
func NewParams() *Params {
	return &Params{values: make(map[string]string)}
}

// NormalizeKey lowercases a provider field name and strips punctuation:
// "Error-Code", "error_code" and "errorCode" all normalize to "errorcode".
func NormalizeKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	var sb strings.Builder
	sb.Grow(len(key))
	for i := 0; i < len(key); i++ {
		c := key[i]
		if c >= 'a' && c <= 'z' || c >= '0' && c <= '9' {
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// Set records a field under its normalized key. The first Set of a key fixes
// its position; setting it again updates the value in place.
func (p *Params) Set(key, value string) {
	k := NormalizeKey(key)
	if k == "" {
		return
	}
	if _, ok := p.values[k]; !ok {
		p.keys = append(p.keys, k)
	}
	p.values[k] = value
}

// Get returns the value for a key (normalized before lookup), or "".
func (p *Params) Get(key string) string {
	if p == nil {
		return ""
	}
	return p.values[NormalizeKey(key)]
}

// Has reports whether the key is present.
func (p *Params) Has(key string) bool {
	if p == nil {
		return false
	}
	_, ok := p.values[NormalizeKey(key)]
	return ok
}

// Len returns the number of fields.
func (p *Params) Len() int {
	if p == nil {
		return 0
	}
	return len(p.keys)
}

// Keys returns the field names in provider order.
func (p *Params) Keys() []string {
	if p == nil {
		return nil
	}
	out := make([]string, len(p.keys))
	copy(out, p.keys)
	return out
}

// Each calls fn for every field in provider order.
func (p *Params) Each(fn func(key, value string)) {
	if p == nil {
		return
	}
	for _, k := range p.keys {
		fn(k, p.values[k])
	}
}

// MarshalJSON renders the params as a JSON object preserving field order.
func (p *Params) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("null"), nil
	}
	var sb strings.Builder
	sb.WriteByte('{')
	for i, k := range p.keys {
		if i > 0 {
			sb.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(p.values[k])
		if err != nil {
			return nil, err
		}
		sb.Write(kb)
		sb.WriteByte(':')
		sb.Write(vb)
	}
	sb.WriteByte('}')
	return []byte(sb.String()), nil
}
