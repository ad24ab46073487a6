package game

import (
	"reflect"
	"strings"
)

var ignoredDiffFields = map[string]struct{}{
	"createdAt":        {},
	"updatedAt":        {},
	"lastClassifiedAt": {},
}

// ChangedFields lists the json names of fields whose values differ between
// before and after. Stages call it around their mutation so fieldsCompleted
// only names what actually changed.
func ChangedFields(before, after Game) []string {
	bv := reflect.ValueOf(before)
	av := reflect.ValueOf(after)
	t := bv.Type()

	out := make([]string, 0)
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name := jsonName(field)
		if name == "" {
			continue
		}
		if _, skip := ignoredDiffFields[name]; skip {
			continue
		}
		if !reflect.DeepEqual(bv.Field(i).Interface(), av.Field(i).Interface()) {
			out = append(out, name)
		}
	}
	return out
}

// Apply runs mutate on g and records every changed field on diag.
func Apply(g *Game, diag *Diagnostics, mutate func(*Game)) []string {
	before := g.Clone()
	mutate(g)
	changed := ChangedFields(before, *g)
	if diag != nil {
		diag.Completed(changed...)
	}
	return changed
}

func jsonName(field reflect.StructField) string {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return ""
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		return field.Name
	}
	return name
}

// Clone deep-copies the pointer fields so a snapshot is unaffected by later mutation.
func (g Game) Clone() Game {
	out := g
	v := reflect.ValueOf(&out).Elem()
	for i := 0; i < v.NumField(); i++ {
		f := v.Field(i)
		if !f.CanSet() {
			continue
		}
		switch f.Kind() {
		case reflect.Pointer:
			if f.IsNil() {
				continue
			}
			cp := reflect.New(f.Elem().Type())
			cp.Elem().Set(f.Elem())
			f.Set(cp)
		case reflect.Struct:
			if d, ok := f.Addr().Interface().(*Duration); ok && d.Seconds != nil {
				s := *d.Seconds
				d.Seconds = &s
			}
		}
	}
	return out
}
