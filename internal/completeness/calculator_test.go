package completeness

import (
	"testing"

	"github.com/goliatone/go-pim/catalog"
)

type stubRequiredFactory struct {
	collection *RequiredValueCollection
	calls      []string
}

func (s *stubRequiredFactory) ForChannel(family *catalog.Family, channel *catalog.Channel) *RequiredValueCollection {
	s.calls = append(s.calls, family.Code+"/"+channel.Code)
	return s.collection
}

type stubIncompleteFactory struct {
	collection *IncompleteValueCollection
	products   []*catalog.Product
}

func (s *stubIncompleteFactory) ForChannelAndLocale(required *RequiredValueCollection, channel *catalog.Channel, locale *catalog.Locale, product *catalog.Product) *IncompleteValueCollection {
	s.products = append(s.products, product)
	return s.collection
}

func TestCalculateWithoutFamilyReturnsNothing(t *testing.T) {
	calc := NewCalculator(nil, nil)

	got := calc.Calculate(&catalog.Product{Identifier: "sandal"})
	if got == nil {
		t.Fatal("expected an empty slice, got nil")
	}
	if len(got) != 0 {
		t.Fatalf("expected no completeness, got %d", len(got))
	}
}

func TestCalculateWithCollaborators(t *testing.T) {
	locale := &catalog.Locale{Code: "fr_FR"}
	channel := &catalog.Channel{Code: "ecommerce", Locales: []*catalog.Locale{locale}}
	description := &catalog.Attribute{Code: "description", Type: catalog.AttributeTypeTextarea, Localizable: true}
	family := &catalog.Family{
		Code: "shoes",
		Requirements: []*catalog.AttributeRequirement{
			{Attribute: description, Channel: channel, Required: true},
		},
	}
	product := &catalog.Product{Identifier: "sandal", Family: family}

	required := NewRequiredValueCollection(RequiredValue{Attribute: description, Locale: "fr_FR"})
	requiredFactory := &stubRequiredFactory{collection: required}
	incompleteFactory := &stubIncompleteFactory{
		collection: NewIncompleteValueCollection(RequiredValue{Attribute: description, Locale: "fr_FR"}),
	}

	calc := NewCalculator(requiredFactory, incompleteFactory)
	got := calc.Calculate(product)

	if len(got) != 1 {
		t.Fatalf("expected 1 completeness, got %d", len(got))
	}
	if len(requiredFactory.calls) != 1 || requiredFactory.calls[0] != "shoes/ecommerce" {
		t.Fatalf("unexpected required factory calls %v", requiredFactory.calls)
	}
	if len(incompleteFactory.products) != 1 || incompleteFactory.products[0] != product {
		t.Fatalf("expected incomplete factory to receive the product")
	}

	c := got[0]
	if c.Product != product || c.Channel != channel || c.Locale != locale {
		t.Fatalf("unexpected completeness references %+v", c)
	}
	if c.RequiredCount != 1 || c.MissingCount != 1 || c.Ratio != 0 {
		t.Fatalf("expected required=1 missing=1 ratio=0, got required=%d missing=%d ratio=%d", c.RequiredCount, c.MissingCount, c.Ratio)
	}
	if len(c.MissingAttributes) != 1 || c.MissingAttributes[0] != description {
		t.Fatalf("expected description to be missing, got %v", c.MissingAttributeCodes())
	}
}

func TestCalculateWithDefaultFactories(t *testing.T) {
	fixture := newCatalogFixture()
	product := &catalog.Product{
		Identifier: "sandal",
		Family:     fixture.family,
		Values: catalog.Values{
			{Attribute: "sku", Data: "sandal"},
			{Attribute: "name", Locale: "en_US", Data: "Sandal"},
			{Attribute: "name", Locale: "fr_FR", Data: "  "},
			{Attribute: "description", Scope: "ecommerce", Locale: "en_US", Data: "Summer sandal"},
			{Attribute: "description", Scope: "print", Locale: "en_US", Data: "Printed sandal"},
			{Attribute: "price", Data: []any{
				map[string]any{"amount": "10.00", "currency": "EUR"},
				map[string]any{"amount": nil, "currency": "USD"},
			}},
		},
	}

	got := NewCalculator(nil, nil).Calculate(product)

	type expectation struct {
		channel, locale   string
		required, missing int
		ratio             int
		missingCodes      []string
	}
	expected := []expectation{
		{"ecommerce", "en_US", 4, 1, 75, []string{"price"}},
		{"ecommerce", "fr_FR", 4, 3, 25, []string{"name", "description", "price"}},
		{"print", "en_US", 2, 0, 100, nil},
	}
	if len(got) != len(expected) {
		t.Fatalf("expected %d completenesses, got %d", len(expected), len(got))
	}
	for i, want := range expected {
		c := got[i]
		if c.Channel.Code != want.channel || c.Locale.Code != want.locale {
			t.Fatalf("record %d: expected %s/%s, got %s/%s", i, want.channel, want.locale, c.Channel.Code, c.Locale.Code)
		}
		if c.RequiredCount != want.required || c.MissingCount != want.missing || c.Ratio != want.ratio {
			t.Fatalf("record %d (%s/%s): expected %d/%d/%d, got %d/%d/%d", i, want.channel, want.locale,
				want.required, want.missing, want.ratio, c.RequiredCount, c.MissingCount, c.Ratio)
		}
		codes := c.MissingAttributeCodes()
		if len(codes) != len(want.missingCodes) {
			t.Fatalf("record %d: expected missing %v, got %v", i, want.missingCodes, codes)
		}
		for j := range codes {
			if codes[j] != want.missingCodes[j] {
				t.Fatalf("record %d: expected missing %v, got %v", i, want.missingCodes, codes)
			}
		}
	}
}

func TestCalculateSkipsPairsWithoutRequirements(t *testing.T) {
	enUS := &catalog.Locale{Code: "en_US"}
	frFR := &catalog.Locale{Code: "fr_FR"}
	channel := &catalog.Channel{Code: "ecommerce", Locales: []*catalog.Locale{enUS, frFR}}
	legal := &catalog.Attribute{
		Code:                 "legal_notice",
		Type:                 catalog.AttributeTypeText,
		Localizable:          true,
		AvailableLocaleCodes: []string{"fr_FR"},
	}
	family := &catalog.Family{
		Code: "regulated",
		Requirements: []*catalog.AttributeRequirement{
			{Attribute: legal, Channel: channel, Required: true},
		},
	}

	got := NewCalculator(nil, nil).Calculate(&catalog.Product{Identifier: "drone", Family: family})

	if len(got) != 1 {
		t.Fatalf("expected only the fr_FR pair, got %d records", len(got))
	}
	if got[0].Locale.Code != "fr_FR" {
		t.Fatalf("expected fr_FR, got %s", got[0].Locale.Code)
	}
}

func TestCalculateIgnoresOptionalRequirements(t *testing.T) {
	locale := &catalog.Locale{Code: "en_US"}
	channel := &catalog.Channel{Code: "mobile", Locales: []*catalog.Locale{locale}}
	color := &catalog.Attribute{Code: "color", Type: catalog.AttributeTypeSimpleSelect}
	family := &catalog.Family{
		Code: "accessories",
		Requirements: []*catalog.AttributeRequirement{
			{Attribute: color, Channel: channel, Required: false},
		},
	}

	got := NewCalculator(nil, nil).Calculate(&catalog.Product{Identifier: "belt", Family: family})
	if len(got) != 0 {
		t.Fatalf("expected optional requirements to produce no completeness, got %d", len(got))
	}
}

func TestMetricCompleteness(t *testing.T) {
	locale := &catalog.Locale{Code: "en_US"}
	channel := &catalog.Channel{Code: "ecommerce", Locales: []*catalog.Locale{locale}}
	weight := &catalog.Attribute{Code: "weight", Type: catalog.AttributeTypeMetric}
	family := &catalog.Family{
		Code: "boxes",
		Requirements: []*catalog.AttributeRequirement{
			{Attribute: weight, Channel: channel, Required: true},
		},
	}

	cases := []struct {
		name    string
		data    any
		missing int
	}{
		{"typed metric with amount", catalog.Metric{Amount: strPtr("1.5"), Unit: "KILOGRAM"}, 0},
		{"typed metric without amount", catalog.Metric{Unit: "KILOGRAM"}, 1},
		{"decoded metric", map[string]any{"amount": 2.0, "unit": "KILOGRAM"}, 0},
		{"decoded metric without amount", map[string]any{"unit": "KILOGRAM"}, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			product := &catalog.Product{
				Identifier: "box",
				Family:     family,
				Values:     catalog.Values{{Attribute: "weight", Data: tc.data}},
			}
			got := NewCalculator(nil, nil).Calculate(product)
			if len(got) != 1 {
				t.Fatalf("expected 1 completeness, got %d", len(got))
			}
			if got[0].MissingCount != tc.missing {
				t.Fatalf("expected missing=%d, got %d", tc.missing, got[0].MissingCount)
			}
		})
	}
}

type catalogFixture struct {
	ecommerce *catalog.Channel
	print     *catalog.Channel
	family    *catalog.Family
}

// newCatalogFixture builds a "shoes" family:
// ecommerce (en_US, fr_FR; EUR, USD) requires sku, name, description, price;
// print (en_US) requires sku and description.
func newCatalogFixture() catalogFixture {
	enUS := &catalog.Locale{Code: "en_US"}
	frFR := &catalog.Locale{Code: "fr_FR"}
	ecommerce := &catalog.Channel{Code: "ecommerce", Locales: []*catalog.Locale{enUS, frFR}, CurrencyCodes: []string{"EUR", "USD"}}
	print := &catalog.Channel{Code: "print", Locales: []*catalog.Locale{enUS}}

	sku := &catalog.Attribute{Code: "sku", Type: catalog.AttributeTypeIdentifier}
	name := &catalog.Attribute{Code: "name", Type: catalog.AttributeTypeText, Localizable: true}
	description := &catalog.Attribute{Code: "description", Type: catalog.AttributeTypeTextarea, Localizable: true, Scopable: true}
	price := &catalog.Attribute{Code: "price", Type: catalog.AttributeTypePriceCollection}

	family := &catalog.Family{
		Code: "shoes",
		Requirements: []*catalog.AttributeRequirement{
			{Attribute: sku, Channel: ecommerce, Required: true},
			{Attribute: name, Channel: ecommerce, Required: true},
			{Attribute: description, Channel: ecommerce, Required: true},
			{Attribute: price, Channel: ecommerce, Required: true},
			{Attribute: sku, Channel: print, Required: true},
			{Attribute: description, Channel: print, Required: true},
		},
	}
	return catalogFixture{ecommerce: ecommerce, print: print, family: family}
}

func strPtr(value string) *string {
	return &value
}
