package export

import (
	"slices"

	"github.com/goliatone/go-pim/catalog"
)

// ValuesFiller completes an entity with empty values for the attributes its
// family declares before it is normalized. The stored entity is not modified.
type ValuesFiller interface {
	FillMissingValues(entity catalog.EntityWithValues) catalog.EntityWithValues
}

// FamilyValuesFiller fills products from the attribute requirements of their
// family, expanding scopable attributes per requirement channel and
// localizable ones per channel locale. Product models are returned unchanged.
type FamilyValuesFiller struct{}

func NewFamilyValuesFiller() FamilyValuesFiller {
	return FamilyValuesFiller{}
}

func (FamilyValuesFiller) FillMissingValues(entity catalog.EntityWithValues) catalog.EntityWithValues {
	product, ok := entity.(*catalog.Product)
	if !ok || product == nil || product.Family == nil {
		return entity
	}

	values := slices.Clone(product.Values)
	for _, requirement := range product.Family.AttributeRequirements() {
		attribute := requirement.Attribute
		if attribute == nil || attribute.Type == catalog.AttributeTypeIdentifier {
			continue
		}
		if (attribute.Scopable || attribute.Localizable) && requirement.Channel == nil {
			continue
		}
		scope := ""
		if attribute.Scopable {
			scope = requirement.Channel.Code
		}
		locales := []string{""}
		if attribute.Localizable {
			locales = slices.DeleteFunc(slices.Clone(requirement.Channel.GetLocaleCodes()), func(code string) bool {
				return !attribute.IsAvailableInLocale(code)
			})
		}
		for _, locale := range locales {
			if values.Get(attribute.Code, scope, locale) == nil {
				values = append(values, &catalog.Value{Attribute: attribute.Code, Scope: scope, Locale: locale})
			}
		}
	}
	if len(values) == len(product.Values) {
		return entity
	}
	filled := *product
	filled.Values = values
	return &filled
}
