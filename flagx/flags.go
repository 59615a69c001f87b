// Package flagx binds cobra flags to tagged struct fields.
//
//	type ServeFlags struct {
//	    Config string        `flag:"config,c" usage:"config file"`
//	    Port   int           `flag:"port" usage:"override server.port"`
//	    Grace  time.Duration `flag:"shutdown-timeout" default:"10s"`
//	}
package flagx

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var durationType = reflect.TypeOf(time.Duration(0))

var errNotStructPtr = errors.New("flagx: target must be a pointer to struct")

type flagField struct {
	value reflect.Value
	field reflect.StructField
	name  string
	short string
}

func fields(target any) ([]flagField, error) {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return nil, errNotStructPtr
	}
	v = v.Elem()
	t := v.Type()

	out := make([]flagField, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("flag")
		if tag == "" || !v.Field(i).CanSet() {
			continue
		}
		name, short, _ := strings.Cut(tag, ",")
		out = append(out, flagField{value: v.Field(i), field: t.Field(i), name: name, short: short})
	}
	return out, nil
}

// Bind registers one flag per tagged field on cmd. Supported tags are flag,
// usage, default and required.
func Bind(cmd *cobra.Command, target any) error {
	ff, err := fields(target)
	if err != nil {
		return err
	}
	for _, f := range ff {
		if err := register(cmd, f); err != nil {
			return err
		}
		if f.field.Tag.Get("required") == "true" {
			if err := cmd.MarkFlagRequired(f.name); err != nil {
				return err
			}
		}
	}
	return nil
}

func register(cmd *cobra.Command, f flagField) error {
	usage := f.field.Tag.Get("usage")
	def := f.field.Tag.Get("default")
	flags := cmd.Flags()

	if f.field.Type == durationType {
		d := time.Duration(0)
		if def != "" {
			var err error
			if d, err = time.ParseDuration(def); err != nil {
				return fmt.Errorf("flagx: default of %s: %w", f.name, err)
			}
		}
		flags.DurationP(f.name, f.short, d, usage)
		return nil
	}

	switch f.field.Type.Kind() {
	case reflect.String:
		flags.StringP(f.name, f.short, def, usage)
	case reflect.Int:
		n, _ := strconv.Atoi(def)
		flags.IntP(f.name, f.short, n, usage)
	case reflect.Bool:
		b, _ := strconv.ParseBool(def)
		flags.BoolP(f.name, f.short, b, usage)
	case reflect.Slice:
		if f.field.Type.Elem().Kind() != reflect.String {
			return fmt.Errorf("flagx: unsupported slice element %s for %s", f.field.Type.Elem().Kind(), f.name)
		}
		var vals []string
		if def != "" {
			vals = strings.Split(def, ",")
		}
		flags.StringSliceP(f.name, f.short, vals, usage)
	default:
		return fmt.Errorf("flagx: unsupported field type %s for %s", f.field.Type.Kind(), f.name)
	}
	return nil
}

// Parse copies every tagged flag value into target.
func Parse(cmd *cobra.Command, target any) error {
	return parse(cmd, target, false)
}

// ParseChanged copies only flags set on the command line, leaving the other
// fields as they are. Use it to overlay flags on loaded configuration.
func ParseChanged(cmd *cobra.Command, target any) error {
	return parse(cmd, target, true)
}

func parse(cmd *cobra.Command, target any, changedOnly bool) error {
	ff, err := fields(target)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	for _, f := range ff {
		if flags.Lookup(f.name) == nil {
			return fmt.Errorf("flagx: flag %q is not registered", f.name)
		}
		if changedOnly && !flags.Changed(f.name) {
			continue
		}
		if err := set(cmd, f); err != nil {
			return fmt.Errorf("flagx: parse %s: %w", f.field.Name, err)
		}
	}
	return nil
}

func set(cmd *cobra.Command, f flagField) error {
	flags := cmd.Flags()

	if f.field.Type == durationType {
		d, err := flags.GetDuration(f.name)
		if err != nil {
			return err
		}
		f.value.SetInt(int64(d))
		return nil
	}

	switch f.field.Type.Kind() {
	case reflect.String:
		s, err := flags.GetString(f.name)
		if err != nil {
			return err
		}
		f.value.SetString(s)
	case reflect.Int:
		n, err := flags.GetInt(f.name)
		if err != nil {
			return err
		}
		f.value.SetInt(int64(n))
	case reflect.Bool:
		b, err := flags.GetBool(f.name)
		if err != nil {
			return err
		}
		f.value.SetBool(b)
	case reflect.Slice:
		vals, err := flags.GetStringSlice(f.name)
		if err != nil {
			return err
		}
		f.value.Set(reflect.ValueOf(vals))
	default:
		return fmt.Errorf("unsupported field type %s", f.field.Type.Kind())
	}
	return nil
}
