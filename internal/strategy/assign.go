// SPDX-License-Identifier: MIT
//
// Attribute assignment onto constructed instances. An instance either
// implements FieldSetter itself (the Record fallback does) or is a pointer
// to a struct, in which case fields are matched by canonical name or an
// explicit `fabrik` tag and set through reflection.
package strategy

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/vk/fabrikgo/internal/attr"
)

// FieldSetter lets a constructed type accept attribute values directly
// instead of going through struct reflection.
type FieldSetter interface {
	SetField(name string, value any) error
}

// Record is the dynamic instance type used when a class identifier has no
// registered Go constructor. It accepts any attribute name.
type Record map[string]any

// NewRecord is the constructor registered for record-backed factories.
func NewRecord() any {
	return Record{}
}

// SetField implements FieldSetter.
func (r Record) SetField(name string, value any) error {
	r[name] = value
	return nil
}

// Get returns the named field, if set.
func (r Record) Get(name string) (any, bool) {
	v, ok := r[name]
	return v, ok
}

// setField assigns one attribute value onto an instance.
func setField(instance any, name string, value any) error {
	if fs, ok := instance.(FieldSetter); ok {
		return fs.SetField(name, value)
	}

	rv := reflect.ValueOf(instance)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("cannot set %q: instance %T is neither a FieldSetter nor a struct pointer", name, instance)
	}

	field, ok := structField(rv.Elem(), name)
	if !ok {
		return fmt.Errorf("cannot set %q: no matching field on %T", name, instance)
	}

	val := reflect.ValueOf(value)
	switch {
	case value == nil:
		field.SetZero()
	case val.Type().AssignableTo(field.Type()):
		field.Set(val)
	case val.Type().ConvertibleTo(field.Type()):
		field.Set(val.Convert(field.Type()))
	default:
		return fmt.Errorf("cannot set %q: %T is not assignable to %s", name, value, field.Type())
	}
	return nil
}

// structField finds the exported field matching a canonical attribute name,
// preferring an explicit `fabrik:"name"` tag over the folded field name.
func structField(sv reflect.Value, name string) (reflect.Value, bool) {
	st := sv.Type()
	for i := 0; i < st.NumField(); i++ {
		f := st.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := strings.Split(f.Tag.Get("fabrik"), ",")[0]
		if tag == name {
			return sv.Field(i), true
		}
		if tag == "" && attr.Canonical(f.Name) == name {
			return sv.Field(i), true
		}
	}
	return reflect.Value{}, false
}
