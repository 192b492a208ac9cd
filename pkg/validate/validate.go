// Package validate runs struct-tag validation on request inputs.
//
// Rules are comma-separated in the `validate` tag:
//
//	required            field must not be zero/empty
//	nullable            if empty, skip all remaining rules for this field
//	email               valid email address
//	url                 valid http/https URL
//	objectid            24-character hex document id
//	numeric             any number
//	integer             whole number
//	min=N               string: min char length | number: min value
//	max=N               string: max char length | number: max value
//	gt=N, gte=N         number bounds
//	lt=N, lte=N         number bounds
//	in=a,b,c            value must be one of the listed items
//	confirmed           value must equal its sibling without the _confirmation suffix
//
// Fields of type decimal.Decimal are compared by their string form, so
// `validate:"gte=0"` works for money amounts.
//
//	type createProductInput struct {
//	    Name          string `json:"name"          validate:"required,max=200"`
//	    Category      string `json:"category"      validate:"required,objectid"`
//	    StockQuantity int    `json:"stockQuantity" validate:"gte=0"`
//	}
package validate

import (
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

var (
	emailRE    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	objectIDRE = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)
)

// field is the value under test together with what the rules need to know
// about it.
type field struct {
	name   string
	value  reflect.Value
	text   string
	parent reflect.Value
}

// check returns a failure message, or "" when the rule holds.
type check func(f field, param string) string

// rules maps a rule keyword to its check. Keywords that take a parameter
// are written as key=param in tags.
var rules = map[string]check{
	"required": func(f field, _ string) string {
		if isEmpty(f.value) {
			return "The %s field is required."
		}
		return ""
	},
	"email": matches(emailRE, "The %s must be a valid email address."),
	"url": func(f field, _ string) string {
		u, err := url.ParseRequestURI(f.text)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return "The %s must be a valid URL."
		}
		return ""
	},
	"objectid": matches(objectIDRE, "The %s must be a valid id."),
	"numeric": func(f field, _ string) string {
		if _, err := strconv.ParseFloat(f.text, 64); err != nil {
			return "The %s field must be a number."
		}
		return ""
	},
	"integer": func(f field, _ string) string {
		if _, err := strconv.ParseInt(f.text, 10, 64); err != nil {
			return "The %s field must be an integer."
		}
		return ""
	},
	"min": func(f field, p string) string {
		if n, isNum := size(f); n < number(p) {
			if isNum {
				return "The %s must be at least " + p + "."
			}
			return "The %s must be at least " + p + " characters."
		}
		return ""
	},
	"max": func(f field, p string) string {
		if n, isNum := size(f); n > number(p) {
			if isNum {
				return "The %s must not be greater than " + p + "."
			}
			return "The %s must not exceed " + p + " characters."
		}
		return ""
	},
	"gt":  bound(func(v, n float64) bool { return v > n }, "greater than"),
	"gte": bound(func(v, n float64) bool { return v >= n }, "greater than or equal to"),
	"lt":  bound(func(v, n float64) bool { return v < n }, "less than"),
	"lte": bound(func(v, n float64) bool { return v <= n }, "less than or equal to"),
	"in": func(f field, p string) string {
		for _, opt := range strings.Split(p, ",") {
			if f.text == strings.TrimSpace(opt) {
				return ""
			}
		}
		return "The selected %s is invalid."
	},
	"confirmed": func(f field, _ string) string {
		other, ok := sibling(f.parent, strings.TrimSuffix(f.name, "_confirmation"))
		if !ok || text(other) != f.text {
			return "The %s confirmation does not match."
		}
		return ""
	},
}

func matches(re *regexp.Regexp, msg string) check {
	return func(f field, _ string) string {
		if re.MatchString(f.text) {
			return ""
		}
		return msg
	}
}

func bound(ok func(v, n float64) bool, words string) check {
	return func(f field, p string) string {
		if ok(toFloat(f.value), number(p)) {
			return ""
		}
		return "The %s must be " + words + " " + p + "."
	}
}

// Struct validates all exported fields of v that carry a `validate` tag.
// The result maps a field's JSON name to its first failing rule's message.
func Struct(v interface{}) map[string]string {
	errs := make(map[string]string)
	rv := reflect.Indirect(reflect.ValueOf(v))
	if rv.Kind() != reflect.Struct {
		return errs
	}

	for i := 0; i < rv.NumField(); i++ {
		sf := rv.Type().Field(i)
		tag, ok := sf.Tag.Lookup("validate")
		if !ok || !sf.IsExported() {
			continue
		}
		f := field{name: jsonName(sf), value: rv.Field(i), parent: rv}
		f.text = text(f.value)
		if msg := run(f, splitRules(tag)); msg != "" {
			errs[f.name] = fmt.Sprintf(msg, f.name)
		}
	}
	return errs
}

func run(f field, list []string) string {
	for _, rule := range list {
		if rule == "nullable" {
			if isEmpty(f.value) {
				return ""
			}
			continue
		}
		key, param, _ := strings.Cut(rule, "=")
		if c, ok := rules[key]; ok {
			if msg := c(f, param); msg != "" {
				return msg
			}
		}
	}
	return ""
}

// HasErrors returns true when the errs map is non-empty.
func HasErrors(errs map[string]string) bool { return len(errs) > 0 }

// IsObjectID reports whether s looks like a 24-char hex document id.
func IsObjectID(s string) bool { return objectIDRE.MatchString(s) }

// splitRules splits on commas, except inside the value list of in=.
// "required,in=admin,user,max=10" → ["required", "in=admin,user", "max=10"]
func splitRules(tag string) []string {
	var out []string
	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if n := len(out); n > 0 && strings.HasPrefix(out[n-1], "in=") && !isRule(part) {
			out[n-1] += "," + part
			continue
		}
		out = append(out, part)
	}
	return out
}

func isRule(s string) bool {
	if s == "nullable" {
		return true
	}
	key, _, hasParam := strings.Cut(s, "=")
	_, known := rules[key]
	return known && (hasParam || s == key)
}

// text renders v for format rules. Pointers are followed once.
func text(v reflect.Value) string {
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}
	if s, ok := v.Interface().(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprint(v.Interface())
}

func isEmpty(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Bool:
		return false
	}
	return v.IsZero() || (v.Kind() == reflect.Slice || v.Kind() == reflect.Map) && v.Len() == 0
}

// size is the magnitude min and max compare against: the value of a number
// or the length of anything else.
func size(f field) (float64, bool) {
	switch f.value.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return float64(f.value.Len()), false
	case reflect.String:
		return float64(len([]rune(f.text))), false
	case reflect.Bool:
		return 0, false
	}
	if _, err := strconv.ParseFloat(f.text, 64); err != nil {
		return float64(len([]rune(f.text))), false
	}
	return toFloat(f.value), true
}

func toFloat(v reflect.Value) float64 {
	switch {
	case v.CanInt():
		return float64(v.Int())
	case v.CanUint():
		return float64(v.Uint())
	case v.CanFloat():
		return v.Float()
	}
	return number(text(v))
}

func number(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return strings.ToLower(f.Name)
	}
	return name
}

func sibling(parent reflect.Value, name string) (reflect.Value, bool) {
	for i := 0; i < parent.NumField(); i++ {
		if jsonName(parent.Type().Field(i)) == name {
			return parent.Field(i), true
		}
	}
	return reflect.Value{}, false
}
