package domain

import (
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cast"
)

// Row is one stored record: field name to textual value.
type Row map[string]string

// Clone returns a shallow copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Project returns a row holding exactly the given fields; missing fields
// become empty strings and undeclared ones are dropped.
func (r Row) Project(fields []string) Row {
	out := make(Row, len(fields))
	for _, f := range fields {
		out[f] = r[f]
	}
	return out
}

// Values returns the row values in field order.
func (r Row) Values(fields []string) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = r[f]
	}
	return out
}

// Encode turns a model struct (or pointer to one) into a Row using its
// csv tags. Numbers use their shortest textual form, e.g. 3.5 -> "3.5".
func Encode(model interface{}) Row {
	v := reflect.Indirect(reflect.ValueOf(model))
	t := v.Type()
	row := make(Row, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		name := strings.Split(t.Field(i).Tag.Get("csv"), ",")[0]
		if name == "" || name == "-" {
			continue
		}
		row[name] = cast.ToString(v.Field(i).Interface())
	}
	return row
}

// Decode fills out (a pointer to a model struct) from a Row. Empty numeric
// columns decode to zero.
func Decode(row Row, out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "csv",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(map[string]string(row))
}
