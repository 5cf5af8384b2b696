package catalog

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Value is a single attribute value. An empty Scope means the value applies to
// every channel, an empty Locale means it applies to every locale.
type Value struct {
	Attribute string `json:"attribute"`
	Scope     string `json:"scope,omitempty"`
	Locale    string `json:"locale,omitempty"`
	Data      any    `json:"data"`
}

// Key uniquely identifies the value within a collection.
func (v *Value) Key() string {
	if v == nil {
		return ""
	}
	return ValueKey(v.Attribute, v.Scope, v.Locale)
}

// PropertyName is the flat export name of the value once the scope is fixed:
// the attribute code, suffixed with the locale for localized values.
func (v *Value) PropertyName() string {
	if v == nil {
		return ""
	}
	return PropertyName(v.Attribute, v.Locale)
}

// IsEmpty reports whether the value carries no usable data.
func (v *Value) IsEmpty() bool {
	if v == nil {
		return true
	}
	return IsEmptyData(v.Data)
}

// ValueKey builds the collection key for an attribute/scope/locale triple.
func ValueKey(attribute, scope, locale string) string {
	if scope == "" {
		scope = "<all_channels>"
	}
	if locale == "" {
		locale = "<all_locales>"
	}
	return attribute + "-" + scope + "-" + locale
}

// PropertyName builds the flat property name of an attribute in a locale.
func PropertyName(attribute, locale string) string {
	if locale == "" {
		return attribute
	}
	return attribute + "-" + locale
}

// IsEmptyData reports whether raw value data should be considered unset.
func IsEmptyData(data any) bool {
	if data == nil {
		return true
	}
	switch typed := data.(type) {
	case string:
		return strings.TrimSpace(typed) == ""
	case []string:
		return len(typed) == 0
	case []any:
		return len(typed) == 0
	case map[string]any:
		return len(typed) == 0
	case []Price:
		return len(typed) == 0
	case Metric:
		return typed.Amount == nil
	case *Metric:
		return typed == nil || typed.Amount == nil
	}
	rv := reflect.ValueOf(data)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// Values is an ordered value collection.
type Values []*Value

// Add appends the value, replacing an existing value with the same key.
func (vs Values) Add(value *Value) Values {
	if value == nil {
		return vs
	}
	for i, existing := range vs {
		if existing != nil && existing.Key() == value.Key() {
			vs[i] = value
			return vs
		}
	}
	return append(vs, value)
}

// Get returns the value for the attribute/scope/locale triple, or nil.
func (vs Values) Get(attribute, scope, locale string) *Value {
	key := ValueKey(attribute, scope, locale)
	for _, value := range vs {
		if value != nil && value.Key() == key {
			return value
		}
	}
	return nil
}

// Filter returns the values accepted by the predicate, preserving order.
func (vs Values) Filter(keep func(*Value) bool) Values {
	out := make(Values, 0, len(vs))
	for _, value := range vs {
		if value != nil && keep(value) {
			out = append(out, value)
		}
	}
	return out
}

// AttributeCodes returns the distinct attribute codes in first-seen order.
func (vs Values) AttributeCodes() []string {
	seen := make(map[string]struct{}, len(vs))
	codes := make([]string, 0, len(vs))
	for _, value := range vs {
		if value == nil {
			continue
		}
		if _, ok := seen[value.Attribute]; ok {
			continue
		}
		seen[value.Attribute] = struct{}{}
		codes = append(codes, value.Attribute)
	}
	return codes
}

// Len returns the number of values.
func (vs Values) Len() int {
	return len(vs)
}

// Price is one amount of a price collection.
type Price struct {
	Amount   *string `json:"amount"`
	Currency string  `json:"currency"`
}

// Metric is an amount expressed in a unit.
type Metric struct {
	Amount *string `json:"amount"`
	Unit   string  `json:"unit"`
}

// Prices extracts a price collection from raw value data. Data decoded from
// JSON arrives as []any of maps and is converted on the fly.
func Prices(data any) ([]Price, error) {
	switch typed := data.(type) {
	case nil:
		return nil, nil
	case []Price:
		return typed, nil
	case []any:
		out := make([]Price, 0, len(typed))
		for _, item := range typed {
			entry, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("catalog: price entry has unexpected type %T", item)
			}
			price := Price{}
			if currency, ok := entry["currency"].(string); ok {
				price.Currency = currency
			}
			switch amount := entry["amount"].(type) {
			case string:
				price.Amount = &amount
			case float64:
				formatted := strconv.FormatFloat(amount, 'f', -1, 64)
				price.Amount = &formatted
			case int:
				formatted := strconv.Itoa(amount)
				price.Amount = &formatted
			case int64:
				formatted := strconv.FormatInt(amount, 10)
				price.Amount = &formatted
			}
			out = append(out, price)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("catalog: price collection has unexpected type %T", data)
	}
}
