package export_test

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-pim/catalog"
	"github.com/goliatone/go-pim/internal/batch"
	"github.com/goliatone/go-pim/internal/export"
	"github.com/google/go-cmp/cmp"
)

type stubAttributes map[string]*catalog.Attribute

func (s stubAttributes) GetByCode(_ context.Context, code string) (*catalog.Attribute, error) {
	if attribute, ok := s[code]; ok {
		return attribute, nil
	}
	return nil, &catalog.NotFoundError{Resource: "attribute", Key: code}
}

func normalizerAttributes() stubAttributes {
	return stubAttributes{
		"sku":         {Code: "sku", Type: catalog.AttributeTypeIdentifier},
		"name":        {Code: "name", Type: catalog.AttributeTypeText, Localizable: true},
		"description": {Code: "description", Type: catalog.AttributeTypeTextarea, Localizable: true, Scopable: true},
		"price":       {Code: "price", Type: catalog.AttributeTypePriceCollection},
		"weight":      {Code: "weight", Type: catalog.AttributeTypeMetric},
		"colors":      {Code: "colors", Type: catalog.AttributeTypeMultiSelect},
	}
}

func TestStandardNormalizerProduct(t *testing.T) {
	normalizer := export.NewStandardNormalizer(normalizerAttributes())
	product := &catalog.Product{
		Identifier: "sandal",
		Family:     &catalog.Family{Code: "shoes"},
		Enabled:    true,
		Categories: []string{"summer", "men"},
		Values: catalog.Values{
			{Attribute: "sku", Data: "sandal"},
			{Attribute: "name", Locale: "en_US", Data: "Sandal"},
			{Attribute: "name", Locale: "de_DE", Data: "Sandale"},
			{Attribute: "description", Scope: "ecommerce", Locale: "en_US", Data: "Summer sandal"},
			{Attribute: "description", Scope: "print", Locale: "en_US", Data: "Printed sandal"},
			{Attribute: "price", Data: []any{
				map[string]any{"currency": "USD", "amount": "10.00"},
				map[string]any{"currency": "EUR", "amount": 9.5},
			}},
			{Attribute: "weight", Data: map[string]any{"amount": "1.2", "unit": "KILOGRAM"}},
			{Attribute: "colors", Data: []any{"red", "blue"}},
		},
	}

	row, err := normalizer.Normalize(context.Background(), product, export.FormatStandard, export.NormalizationContext{
		Channel:             "ecommerce",
		Locales:             []string{"en_US", "fr_FR"},
		IdentifierAttribute: "sku",
	})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}

	want := []string{
		"sku", "family", "parent", "groups", "categories", "enabled",
		"name-en_US", "description-en_US", "price-USD", "price-EUR", "weight", "weight-unit", "colors",
	}
	if diff := cmp.Diff(want, row.Keys()); diff != "" {
		t.Fatalf("row keys mismatch (-want +got):\n%s", diff)
	}
	expectations := map[string]any{
		"sku":               "sandal",
		"family":            "shoes",
		"categories":        "summer,men",
		"enabled":           true,
		"description-en_US": "Summer sandal",
		"price-USD":         "10.00",
		"price-EUR":         "9.5",
		"weight-unit":       "KILOGRAM",
		"colors":            "red,blue",
	}
	for key, expected := range expectations {
		got, _ := row.Get(key)
		if got != expected {
			t.Fatalf("%s: expected %v, got %v", key, expected, got)
		}
	}
}

func TestStandardNormalizerProductModel(t *testing.T) {
	normalizer := export.NewStandardNormalizer(normalizerAttributes())
	model := &catalog.ProductModel{
		Code:          "sandal_model",
		FamilyVariant: "shoes_by_size",
		Values: catalog.Values{
			{Attribute: "name", Locale: "fr_FR", Data: "Sandale"},
		},
	}
	row, err := normalizer.Normalize(context.Background(), model, export.FormatStandard, export.NormalizationContext{
		Channel: "ecommerce",
		Locales: []string{"fr_FR"},
	})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if diff := cmp.Diff([]string{"code", "family_variant", "parent", "categories", "name-fr_FR"}, row.Keys()); diff != "" {
		t.Fatalf("row keys mismatch (-want +got):\n%s", diff)
	}
}

func TestStandardNormalizerRejectsUnknownFormat(t *testing.T) {
	normalizer := export.NewStandardNormalizer(nil)
	_, err := normalizer.Normalize(context.Background(), &catalog.Product{}, "xlsx", export.NormalizationContext{})
	if !errors.Is(err, export.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestParseParameters(t *testing.T) {
	params, err := export.ParseParameters(batch.NewJobParameters(map[string]any{
		"scope":               "ecommerce",
		"selected_locales":    []string{"en_US"},
		"selected_properties": nil,
		"with_media":          true,
	}))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if scope, err := params.RequireScope(); err != nil || scope != "ecommerce" {
		t.Fatalf("unexpected scope %q err=%v", scope, err)
	}
	if locales, ok := params.SelectedLocales.Get(); !ok || len(locales) != 1 {
		t.Fatalf("unexpected locales %v ok=%v", locales, ok)
	}
	if params.SelectedProperties.IsPresent() {
		t.Fatal("expected absent property selection")
	}
	if !params.WithMedia {
		t.Fatal("expected with_media")
	}

	empty, err := export.ParseParameters(batch.NewJobParameters(map[string]any{"selected_properties": []any{}}))
	if err != nil {
		t.Fatalf("parse empty selection: %v", err)
	}
	if selected, ok := empty.SelectedProperties.Get(); !ok || len(selected) != 0 {
		t.Fatalf("expected present empty selection, got %v ok=%v", selected, ok)
	}
}

func TestParseParametersRejectsWrongTypes(t *testing.T) {
	_, err := export.ParseParameters(batch.NewJobParameters(map[string]any{
		"scope":      "ecommerce",
		"with_media": "yes",
	}))
	if err == nil {
		t.Fatal("expected schema error")
	}
}

func sampleRows() []*export.Row {
	first := export.NewRow()
	first.Set("sku", "sandal")
	first.Set("enabled", true)
	first.Set("name-en_US", "Sandal; summer")

	second := export.NewRow()
	second.Set("sku", "boot")
	second.Set("price-EUR", "120")
	return []*export.Row{first, second}
}

func TestCSVWriterUsesHeaderUnion(t *testing.T) {
	dir := t.TempDir()
	writer, err := export.NewRowWriter(export.FormatCSV, dir, "export")
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	if err := writer.Write(sampleRows()); err != nil {
		t.Fatalf("write: %v", err)
	}
	path, err := writer.Flush()
	if err != nil {
		t.Fatalf("flush: %v", err)
	}
	if path != filepath.Join(dir, "export.csv") {
		t.Fatalf("unexpected path %q", path)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer file.Close()
	reader := csv.NewReader(file)
	reader.Comma = ';'
	records, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	want := [][]string{
		{"sku", "enabled", "name-en_US", "price-EUR"},
		{"sandal", "1", "Sandal; summer", ""},
		{"boot", "", "", "120"},
	}
	if diff := cmp.Diff(want, records); diff != "" {
		t.Fatalf("csv mismatch (-want +got):\n%s", diff)
	}
}

func TestJSONLinesWriterKeepsKeyOrder(t *testing.T) {
	dir := t.TempDir()
	writer, err := export.NewRowWriter(export.FormatJSON, dir, "export")
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	if err := writer.Write(sampleRows()); err != nil {
		t.Fatalf("write: %v", err)
	}
	path, err := writer.Flush()
	if err != nil {
		t.Fatalf("flush: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0] != `{"sku":"sandal","enabled":true,"name-en_US":"Sandal; summer"}` {
		t.Fatalf("unexpected first line %s", lines[0])
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded["price-EUR"] != "120" {
		t.Fatalf("unexpected second line %v", decoded)
	}
}

func TestNewRowWriterUnknownFormat(t *testing.T) {
	if _, err := export.NewRowWriter("xlsx", t.TempDir(), "export"); !errors.Is(err, export.ErrUnknownWriterFormat) {
		t.Fatalf("expected ErrUnknownWriterFormat, got %v", err)
	}
}
