package export_test

import (
	"testing"

	"github.com/goliatone/go-pim/catalog"
	"github.com/goliatone/go-pim/internal/export"
	"github.com/google/go-cmp/cmp"
)

func TestFamilyValuesFillerAddsMissingValues(t *testing.T) {
	ecommerce := &catalog.Channel{Code: "ecommerce", LocaleCodes: []string{"en_US", "fr_FR"}}
	printChannel := &catalog.Channel{Code: "print", LocaleCodes: []string{"en_US"}}
	name := &catalog.Attribute{Code: "name", Localizable: true, AvailableLocaleCodes: []string{"en_US"}}
	price := &catalog.Attribute{Code: "price", Type: catalog.AttributeTypePriceCollection, Scopable: true}
	sku := &catalog.Attribute{Code: "sku", Type: catalog.AttributeTypeIdentifier}

	product := &catalog.Product{
		Identifier: "sandal",
		Family: &catalog.Family{Code: "shoes", Requirements: []*catalog.AttributeRequirement{
			{Attribute: sku, Channel: ecommerce, Required: true},
			{Attribute: name, Channel: ecommerce, Required: true},
			{Attribute: price, Channel: ecommerce, Required: true},
			{Attribute: price, Channel: printChannel, Required: false},
		}},
		Values: catalog.Values{
			{Attribute: "sku", Data: "sandal"},
			{Attribute: "price", Scope: "ecommerce", Data: []catalog.Price{}},
		},
	}

	filled := export.NewFamilyValuesFiller().FillMissingValues(product)

	keys := make([]string, 0)
	for _, value := range filled.ValueCollection() {
		keys = append(keys, value.Key())
	}
	want := []string{
		catalog.ValueKey("sku", "", ""),
		catalog.ValueKey("price", "ecommerce", ""),
		catalog.ValueKey("name", "", "en_US"),
		catalog.ValueKey("price", "print", ""),
	}
	if diff := cmp.Diff(want, keys); diff != "" {
		t.Fatalf("filled values mismatch (-want +got):\n%s", diff)
	}
	if len(product.Values) != 2 {
		t.Fatalf("expected original product untouched, got %d values", len(product.Values))
	}
}

func TestFamilyValuesFillerLeavesOtherEntitiesAlone(t *testing.T) {
	filler := export.NewFamilyValuesFiller()

	model := &catalog.ProductModel{Code: "sandal_model"}
	if got := filler.FillMissingValues(model); got != catalog.EntityWithValues(model) {
		t.Fatalf("expected product model unchanged, got %+v", got)
	}
	orphan := &catalog.Product{Identifier: "pebble"}
	if got := filler.FillMissingValues(orphan); got != catalog.EntityWithValues(orphan) {
		t.Fatalf("expected product without family unchanged, got %+v", got)
	}
}
