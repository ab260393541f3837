package client

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Form is an ordered set of form fields with unique keys. Fields are
// encoded in insertion order; setting an existing key replaces its value
// in place.
type Form struct {
	keys   []string
	values map[string]string
}

// NewForm returns an empty Form.
func NewForm() *Form {
	return &Form{values: make(map[string]string)}
}

// Set assigns value to key.
func (f *Form) Set(key, value string) *Form {
	if f.values == nil {
		f.values = make(map[string]string)
	}
	if _, ok := f.values[key]; !ok {
		f.keys = append(f.keys, key)
	}
	f.values[key] = value

	return f
}

// SetInt assigns the decimal form of n to key.
func (f *Form) SetInt(key string, n int64) *Form {
	return f.Set(key, strconv.FormatInt(n, 10))
}

// SetBool assigns "true" or "false" to key.
func (f *Form) SetBool(key string, b bool) *Form {
	return f.Set(key, strconv.FormatBool(b))
}

// SetAny assigns fmt's default formatting of v to key.
func (f *Form) SetAny(key string, v any) *Form {
	return f.Set(key, fmt.Sprint(v))
}

// Get returns the value stored for key.
func (f *Form) Get(key string) (string, bool) {
	v, ok := f.values[key]
	return v, ok
}

// Len returns the number of fields.
func (f *Form) Len() int {
	return len(f.keys)
}

// Keys returns the field names in insertion order.
func (f *Form) Keys() []string {
	return append([]string(nil), f.keys...)
}

// Encode returns the application/x-www-form-urlencoded body.
// Unlike [url.Values.Encode] the keys are not sorted.
func (f *Form) Encode() string {
	var b strings.Builder
	for i, k := range f.keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(f.values[k]))
	}

	return b.String()
}
