package export

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/goliatone/go-pim/catalog"
)

// FormatStandard is the flat export format produced by StandardNormalizer.
const FormatStandard = "standard"

var (
	ErrUnsupportedFormat = errors.New("export: unsupported normalization format")
	// ErrInvalidItem marks an entity holding data the normalizer cannot
	// flatten. Step runners skip such items with a warning.
	ErrInvalidItem = errors.New("export: invalid item")
)

// NormalizationContext narrows normalization to a channel and its locales.
type NormalizationContext struct {
	Channel             string
	Locales             []string
	IdentifierAttribute string
}

// Normalizer flattens an entity into an ordered row.
type Normalizer interface {
	Normalize(ctx context.Context, entity catalog.EntityWithValues, format string, nctx NormalizationContext) (*Row, error)
}

// AttributeLookup resolves attribute definitions.
type AttributeLookup interface {
	GetByCode(ctx context.Context, code string) (*catalog.Attribute, error)
}

// StandardNormalizer writes product fields first, then values in collection
// order. Values scoped to another channel or localized outside the locale set
// are left out.
type StandardNormalizer struct {
	attributes AttributeLookup
}

// NewStandardNormalizer creates the normalizer.
func NewStandardNormalizer(attributes AttributeLookup) *StandardNormalizer {
	return &StandardNormalizer{attributes: attributes}
}

func (n *StandardNormalizer) Normalize(ctx context.Context, entity catalog.EntityWithValues, format string, nctx NormalizationContext) (*Row, error) {
	if format != FormatStandard {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	row := NewRow()
	identifierAttribute := nctx.IdentifierAttribute
	switch typed := entity.(type) {
	case *catalog.Product:
		if identifierAttribute == "" {
			identifierAttribute = "identifier"
		}
		row.Set(identifierAttribute, typed.Identifier)
		row.Set("family", typed.FamilyCode())
		row.Set("parent", typed.ParentCode)
		row.Set("groups", strings.Join(typed.Groups, ","))
		row.Set("categories", strings.Join(typed.Categories, ","))
		row.Set("enabled", typed.Enabled)
	case *catalog.ProductModel:
		row.Set("code", typed.Code)
		row.Set("family_variant", typed.FamilyVariant)
		row.Set("parent", typed.ParentCode)
		row.Set("categories", strings.Join(typed.Categories, ","))
	default:
		return nil, fmt.Errorf("export: cannot normalize %T", entity)
	}

	types := map[string]catalog.AttributeType{}
	for _, value := range entity.ValueCollection() {
		if value == nil || value.Attribute == identifierAttribute {
			continue
		}
		if value.Scope != "" && value.Scope != nctx.Channel {
			continue
		}
		if value.Locale != "" && !slices.Contains(nctx.Locales, value.Locale) {
			continue
		}
		attributeType, ok := types[value.Attribute]
		if !ok {
			if n.attributes != nil {
				if attribute, err := n.attributes.GetByCode(ctx, value.Attribute); err == nil {
					attributeType = attribute.Type
				}
			}
			types[value.Attribute] = attributeType
		}
		if err := setValue(row, value, attributeType); err != nil {
			return nil, err
		}
	}
	return row, nil
}

func setValue(row *Row, value *catalog.Value, attributeType catalog.AttributeType) error {
	property := value.PropertyName()
	switch attributeType {
	case catalog.AttributeTypePriceCollection:
		prices, err := catalog.Prices(value.Data)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidItem, property, err)
		}
		for _, price := range prices {
			amount := ""
			if price.Amount != nil {
				amount = *price.Amount
			}
			row.Set(property+"-"+price.Currency, amount)
		}
		return nil
	case catalog.AttributeTypeMetric:
		amount, unit := metricParts(value.Data)
		row.Set(property, amount)
		row.Set(property+"-unit", unit)
		return nil
	}
	row.Set(property, flatten(value.Data))
	return nil
}

func metricParts(data any) (string, string) {
	switch typed := data.(type) {
	case catalog.Metric:
		return deref(typed.Amount), typed.Unit
	case *catalog.Metric:
		if typed == nil {
			return "", ""
		}
		return deref(typed.Amount), typed.Unit
	case map[string]any:
		unit, _ := typed["unit"].(string)
		return scalar(typed["amount"]), unit
	}
	return scalar(data), ""
}

func flatten(data any) any {
	switch typed := data.(type) {
	case nil:
		return ""
	case []string:
		return strings.Join(typed, ",")
	case []any:
		parts := make([]string, 0, len(typed))
		for _, item := range typed {
			parts = append(parts, scalar(item))
		}
		return strings.Join(parts, ",")
	}
	return data
}

func scalar(data any) string {
	switch typed := data.(type) {
	case nil:
		return ""
	case string:
		return typed
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(typed)
	}
	return fmt.Sprint(data)
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
