package types

import (
	"slices"
	"strings"

	"github.com/ghettovoice/siptx/internal/util"
)

// Values maps a string key to a list of string values.
// The keys in the map are case-insensitive.
// It is typically used to store URI's or header's parameters.
type Values map[string][]string

// Get returns values associated with the given key.
// If there are no values associated with the key, Get returns the empty slice.
func (vals Values) Get(key string) []string { return vals[util.LCase(key)] }

// First returns the first value associated with the given key.
func (vals Values) First(key string) (string, bool) {
	v := vals[util.LCase(key)]
	if len(v) == 0 {
		return "", false
	}
	return v[0], true
}

// Set sets the key to value. It replaces any existing values.
func (vals Values) Set(key, value string) Values {
	vals[util.LCase(key)] = []string{value}
	return vals
}

// Append adds the value to the key.
func (vals Values) Append(key, value string) Values {
	key = util.LCase(key)
	vals[key] = append(vals[key], value)
	return vals
}

// Del deletes the values associated with the key.
func (vals Values) Del(key string) Values {
	delete(vals, util.LCase(key))
	return vals
}

// Has checks whether a given key is in the list.
func (vals Values) Has(key string) bool {
	_, ok := vals[util.LCase(key)]
	return ok
}

// Clone returns a copy of the map.
func (vals Values) Clone() Values {
	var vals2 Values
	for k, vs := range vals {
		if vals2 == nil {
			vals2 = make(Values, len(vals))
		}
		vals2[k] = slices.Clone(vs)
	}
	return vals2
}

// Render renders the values as a list of parameters prefixed by the sep,
// e.g. ";branch=z9hG4bK.abc;rport". Keys are sorted to make the output stable.
func (vals Values) Render(sep byte) string {
	if len(vals) == 0 {
		return ""
	}

	keys := make([]string, 0, len(vals))
	for k := range vals {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var sb strings.Builder
	for _, k := range keys {
		vs := vals[k]
		if len(vs) == 0 {
			sb.WriteByte(sep)
			sb.WriteString(k)
			continue
		}
		for _, v := range vs {
			sb.WriteByte(sep)
			sb.WriteString(k)
			if v != "" {
				sb.WriteByte('=')
				sb.WriteString(v)
			}
		}
	}
	return sb.String()
}
