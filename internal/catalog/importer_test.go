package catalog_test

import (
	"context"
	"strings"
	"testing"

	pimcatalog "github.com/goliatone/go-pim/catalog"
	"github.com/goliatone/go-pim/internal/catalog"
)

const catalogFixture = `
locales:
  - code: en_US
  - code: fr_FR
channels:
  - code: ecommerce
    label: E-commerce
    locales: [en_US, fr_FR]
    currencies: [USD, EUR]
attributes:
  - code: sku
    type: pim_catalog_identifier
  - code: name
    type: pim_catalog_text
    localizable: true
  - code: price
    type: pim_catalog_price_collection
  - code: picture
    type: pim_catalog_image
families:
  - code: shoes
    attribute_as_label: name
    requirements:
      - {attribute: name, channel: ecommerce}
      - {attribute: price, channel: ecommerce}
      - {attribute: picture, channel: ecommerce, required: false}
files:
  - key: a/b/sandal.jpg
    original_filename: sandal.jpg
    storage: local
product_models:
  - code: sandal_model
    family_variant: shoes_by_size
    values:
      - {attribute: picture, data: a/b/sandal.jpg}
products:
  - identifier: sandal
    family: shoes
    parent: sandal_model
    categories: [summer]
    values:
      - {attribute: name, locale: en_US, data: Sandal}
      - attribute: price
        data:
          - {amount: 10, currency: USD}
          - {amount: "9.50", currency: EUR}
`

func TestImportCatalogDocument(t *testing.T) {
	ctx := context.Background()
	doc, err := catalog.DecodeDocument(strings.NewReader(catalogFixture))
	if err != nil {
		t.Fatalf("decode document: %v", err)
	}

	repos := catalog.NewMemoryRepositories()
	summary, err := catalog.Import(ctx, catalog.NewService(repos), doc)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	expected := catalog.ImportSummary{Locales: 2, Channels: 1, Attributes: 4, Families: 1, FileInfos: 1, ProductModels: 1, Products: 1}
	if summary != expected {
		t.Fatalf("unexpected summary %+v", summary)
	}

	product, err := repos.Products.GetByIdentifier(ctx, "sandal")
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if product.ParentCode != "sandal_model" {
		t.Fatalf("expected parent sandal_model, got %q", product.ParentCode)
	}
	if got := len(product.Family.Requirements); got != 4 {
		t.Fatalf("expected 4 requirements including identifier, got %d", got)
	}

	prices, err := pimcatalog.Prices(product.Values.Get("price", "", "").Data)
	if err != nil {
		t.Fatalf("prices: %v", err)
	}
	if len(prices) != 2 || *prices[0].Amount != "10" || *prices[1].Amount != "9.50" {
		t.Fatalf("unexpected prices %+v", prices)
	}
}

func TestImportStopsAtFirstFailure(t *testing.T) {
	doc := &catalog.Document{
		Locales:  []catalog.SaveLocaleRequest{{Code: "en_US"}},
		Channels: []catalog.SaveChannelRequest{{Code: "ecommerce", Locales: []string{"xx_XX"}}},
	}
	summary, err := catalog.Import(context.Background(), catalog.NewService(catalog.NewMemoryRepositories()), doc)
	if err == nil {
		t.Fatal("expected import error")
	}
	if !strings.Contains(err.Error(), `import channel "ecommerce"`) {
		t.Fatalf("expected failing record in error, got %v", err)
	}
	if summary.Locales != 1 || summary.Channels != 0 {
		t.Fatalf("unexpected summary %+v", summary)
	}
}

func TestDecodeDocumentRejectsUnknownSections(t *testing.T) {
	if _, err := catalog.DecodeDocument(strings.NewReader("categories: []\n")); err == nil {
		t.Fatal("expected unknown section to be rejected")
	}
}

func TestDecodeDocumentEmpty(t *testing.T) {
	doc, err := catalog.DecodeDocument(strings.NewReader(""))
	if err != nil {
		t.Fatalf("decode empty: %v", err)
	}
	if len(doc.Products) != 0 {
		t.Fatalf("expected empty document")
	}
}
