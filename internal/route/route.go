// Package route reads dynamic path segments from whatever router hosts a page.
package route

import "strings"

// Source is anything that can answer a dynamic segment lookup by name.
// *gin.Context satisfies it directly.
type Source interface {
	Param(name string) string
}

// Values is a static Source, used when the "route" comes from CLI arguments.
type Values map[string]string

// Param returns the named value or "".
func (v Values) Param(name string) string {
	return v[name]
}

// Param is a resolved dynamic segment.
type Param struct {
	Name  string
	Value string
	// Defined is false while routing has not produced a value: no source,
	// a missing segment, or an empty one.
	Defined bool
}

// Lookup reads name from src.
func Lookup(src Source, name string) Param {
	p := Param{Name: name}
	if src == nil {
		return p
	}
	value := src.Param(name)
	if strings.TrimSpace(value) == "" {
		return p
	}
	p.Value = value
	p.Defined = true
	return p
}
