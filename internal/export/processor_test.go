package export_test

import (
	"context"
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-pim/catalog"
	"github.com/goliatone/go-pim/internal/batch"
	"github.com/goliatone/go-pim/internal/export"
	"github.com/goliatone/go-pim/internal/media"
	"github.com/goliatone/go-pim/internal/security"
	"github.com/google/go-cmp/cmp"
)

type stubChannels map[string]*catalog.Channel

func (s stubChannels) GetByCode(_ context.Context, code string) (*catalog.Channel, error) {
	if channel, ok := s[code]; ok {
		return channel, nil
	}
	return nil, &catalog.NotFoundError{Resource: "channel", Key: code}
}

type stubIdentifier struct {
	attribute *catalog.Attribute
}

func (s stubIdentifier) FindIdentifier(context.Context) (*catalog.Attribute, error) {
	if s.attribute == nil {
		return nil, catalog.ErrIdentifierAttributeMissing
	}
	return s.attribute, nil
}

type stubNormalizer struct {
	keys     []string
	calls    []export.NormalizationContext
	entities []catalog.EntityWithValues
}

func (s *stubNormalizer) Normalize(_ context.Context, entity catalog.EntityWithValues, format string, nctx export.NormalizationContext) (*export.Row, error) {
	if format != export.FormatStandard {
		return nil, export.ErrUnsupportedFormat
	}
	s.calls = append(s.calls, nctx)
	s.entities = append(s.entities, entity)
	row := export.NewRow()
	for _, key := range s.keys {
		row.Set(key, key+"-value")
	}
	return row, nil
}

type stubDetacher struct {
	detached []string
}

func (s *stubDetacher) Detach(entity catalog.EntityWithValues) {
	s.detached = append(s.detached, entity.IdentifierValue())
}

type stubFetcher struct {
	values     catalog.Values
	directory  string
	identifier string
	calls      int
	errors     []media.FetchError
}

func (s *stubFetcher) FetchAll(_ context.Context, values catalog.Values, directory, identifier string) {
	s.calls++
	s.values = values
	s.directory = directory
	s.identifier = identifier
}

func (s *stubFetcher) GetErrors() []media.FetchError {
	return s.errors
}

type processorFixture struct {
	normalizer *stubNormalizer
	detacher   *stubDetacher
	fetcher    *stubFetcher
	users      *security.MemoryUserProvider
	tokens     *security.MemoryTokenStorage
}

func newProcessorFixture() *processorFixture {
	return &processorFixture{
		normalizer: &stubNormalizer{keys: []string{"sku", "family", "description-en_US", "size"}},
		detacher:   &stubDetacher{},
		fetcher:    &stubFetcher{},
		users:      security.NewMemoryUserProvider(&security.User{Username: "julia", Roles: []string{"ROLE_CATALOG_MANAGER"}}),
		tokens:     security.NewTokenStorage(),
	}
}

func (f *processorFixture) processor(params map[string]any) (*export.Processor, *batch.StepExecution) {
	job := batch.NewJobExecution("csv_product_quick_export", "julia", batch.NewJobParameters(params))
	job.SetWorkingDirectory("/tmp/quick_export")
	step := batch.NewStepExecution("perform", job)
	deps := export.Dependencies{
		Channels: stubChannels{
			"ecommerce": {Code: "ecommerce", LocaleCodes: []string{"en_US", "fr_FR", "de_DE"}},
		},
		Attributes: stubIdentifier{attribute: &catalog.Attribute{Code: "sku", Type: catalog.AttributeTypeIdentifier}},
		Normalizer: f.normalizer,
		Detacher:   f.detacher,
		Users:      f.users,
		Media:      f.fetcher,
	}
	return export.NewProcessor(deps, step, f.tokens), step
}

func sandal() *catalog.Product {
	return &catalog.Product{
		Identifier: "sandal",
		Values: catalog.Values{
			{Attribute: "sku", Data: "sandal"},
			{Attribute: "description", Scope: "ecommerce", Locale: "en_US", Data: "Summer sandal"},
			{Attribute: "picture", Data: "a/b/sandal.jpg"},
			{Attribute: "size", Data: "42"},
		},
	}
}

func TestProcessKeepsSelectedProperties(t *testing.T) {
	fixture := newProcessorFixture()
	processor, _ := fixture.processor(map[string]any{
		"scope":               "ecommerce",
		"selected_properties": []any{"identifier", "family", "description-en_US"},
		"with_media":          false,
	})

	row, err := processor.Process(context.Background(), sandal())
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if diff := cmp.Diff([]string{"sku", "family", "description-en_US"}, row.Keys()); diff != "" {
		t.Fatalf("row keys mismatch (-want +got):\n%s", diff)
	}
	if fixture.fetcher.calls != 0 {
		t.Fatalf("expected no media fetch, got %d calls", fixture.fetcher.calls)
	}
	if diff := cmp.Diff([]string{"sandal"}, fixture.detacher.detached); diff != "" {
		t.Fatalf("detached mismatch (-want +got):\n%s", diff)
	}
}

func TestProcessWithoutSelectionReturnsFullRow(t *testing.T) {
	fixture := newProcessorFixture()
	processor, _ := fixture.processor(map[string]any{
		"scope":               "ecommerce",
		"selected_properties": nil,
	})

	row, err := processor.Process(context.Background(), sandal())
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if diff := cmp.Diff(fixture.normalizer.keys, row.Keys()); diff != "" {
		t.Fatalf("row keys mismatch (-want +got):\n%s", diff)
	}
	if len(fixture.normalizer.calls) != 1 {
		t.Fatalf("expected one normalization, got %d", len(fixture.normalizer.calls))
	}
	call := fixture.normalizer.calls[0]
	if call.Channel != "ecommerce" || call.IdentifierAttribute != "sku" {
		t.Fatalf("unexpected normalization context %+v", call)
	}
	if diff := cmp.Diff([]string{"en_US", "fr_FR", "de_DE"}, call.Locales); diff != "" {
		t.Fatalf("locales mismatch (-want +got):\n%s", diff)
	}
}

func TestProcessNarrowsLocalesToSelection(t *testing.T) {
	fixture := newProcessorFixture()
	processor, _ := fixture.processor(map[string]any{
		"scope":            "ecommerce",
		"selected_locales": []string{"fr_FR", "it_IT", "en_US"},
	})

	if _, err := processor.Process(context.Background(), sandal()); err != nil {
		t.Fatalf("process: %v", err)
	}
	if diff := cmp.Diff([]string{"en_US", "fr_FR"}, fixture.normalizer.calls[0].Locales); diff != "" {
		t.Fatalf("locales mismatch (-want +got):\n%s", diff)
	}
}

func TestProcessFetchesMedia(t *testing.T) {
	tests := []struct {
		name       string
		selected   any
		wantValues []string
	}{
		{
			name:       "filtered by selection",
			selected:   []any{"identifier", "picture", "description-en_US"},
			wantValues: []string{"description-en_US", "picture"},
		},
		{
			name:       "full collection without selection",
			selected:   nil,
			wantValues: []string{"sku", "description-en_US", "picture", "size"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fixture := newProcessorFixture()
			fixture.fetcher.errors = []media.FetchError{{
				Message: "The media has not been found or is not currently available",
				From:    "a/b/sandal.jpg",
				To:      "/tmp/quick_export/files/sandal/picture/sandal.jpg",
				Storage: "local",
			}}
			processor, step := fixture.processor(map[string]any{
				"scope":               "ecommerce",
				"selected_properties": tt.selected,
				"with_media":          true,
			})

			if _, err := processor.Process(context.Background(), sandal()); err != nil {
				t.Fatalf("process: %v", err)
			}
			if fixture.fetcher.calls != 1 {
				t.Fatalf("expected one fetch, got %d", fixture.fetcher.calls)
			}
			got := make([]string, 0, len(fixture.fetcher.values))
			for _, value := range fixture.fetcher.values {
				got = append(got, value.PropertyName())
			}
			if diff := cmp.Diff(tt.wantValues, got); diff != "" {
				t.Fatalf("fetched values mismatch (-want +got):\n%s", diff)
			}
			if fixture.fetcher.directory != "/tmp/quick_export" || fixture.fetcher.identifier != "sandal" {
				t.Fatalf("unexpected fetch target %q %q", fixture.fetcher.directory, fixture.fetcher.identifier)
			}
			warnings := step.Warnings()
			if len(warnings) != 1 || warnings[0].Item != "sandal" || warnings[0].Parameters["from"] != "a/b/sandal.jpg" {
				t.Fatalf("unexpected warnings %+v", warnings)
			}
		})
	}
}

func TestProcessRequiresScope(t *testing.T) {
	fixture := newProcessorFixture()
	processor, _ := fixture.processor(map[string]any{
		"selected_properties": []any{"identifier"},
		"with_media":          true,
	})

	_, err := processor.Process(context.Background(), sandal())
	if err == nil {
		t.Fatal("expected configuration error")
	}
	if !errors.Is(err, export.ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
	var configErr *export.InvalidConfigurationError
	if !errors.As(err, &configErr) || configErr.Parameter != export.ParamScope {
		t.Fatalf("expected scope configuration error, got %v", err)
	}
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	if len(fixture.normalizer.calls) != 0 || fixture.fetcher.calls != 0 || len(fixture.detacher.detached) != 0 {
		t.Fatal("expected processing not to be attempted")
	}
}

func TestProcessAuthenticatesJobUser(t *testing.T) {
	fixture := newProcessorFixture()
	processor, _ := fixture.processor(map[string]any{"scope": "ecommerce"})

	for i := 0; i < 2; i++ {
		if _, err := processor.Process(context.Background(), sandal()); err != nil {
			t.Fatalf("process %d: %v", i, err)
		}
	}
	token := fixture.tokens.Token()
	if token == nil || token.Username() != "julia" {
		t.Fatalf("expected julia token, got %+v", token)
	}
	if diff := cmp.Diff([]string{"ROLE_CATALOG_MANAGER"}, token.Roles); diff != "" {
		t.Fatalf("roles mismatch (-want +got):\n%s", diff)
	}
}

func TestProcessFailsForUnknownUser(t *testing.T) {
	fixture := newProcessorFixture()
	fixture.users = security.NewMemoryUserProvider()
	processor, _ := fixture.processor(map[string]any{"scope": "ecommerce"})

	_, err := processor.Process(context.Background(), sandal())
	if !errors.Is(err, security.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if fixture.tokens.Token() != nil {
		t.Fatal("expected no token to be installed")
	}
}

func TestProcessProductModelAliases(t *testing.T) {
	fixture := newProcessorFixture()
	fixture.normalizer.keys = []string{"code", "family_variant", "parent", "name-en_US"}
	processor, _ := fixture.processor(map[string]any{
		"scope":               "ecommerce",
		"selected_properties": []any{"identifier", "family", "name-en_US"},
	})

	row, err := processor.Process(context.Background(), &catalog.ProductModel{Code: "sandal_model", FamilyVariant: "shoes_by_size"})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if diff := cmp.Diff([]string{"code", "family_variant", "name-en_US"}, row.Keys()); diff != "" {
		t.Fatalf("row keys mismatch (-want +got):\n%s", diff)
	}
}

func TestProcessUnknownChannel(t *testing.T) {
	fixture := newProcessorFixture()
	processor, _ := fixture.processor(map[string]any{"scope": "mobile"})

	if _, err := processor.Process(context.Background(), sandal()); !catalog.IsNotFound(err) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestProcessNormalizesFilledEntity(t *testing.T) {
	fixture := newProcessorFixture()
	_, step := fixture.processor(map[string]any{"scope": "ecommerce"})

	ecommerce := &catalog.Channel{Code: "ecommerce", LocaleCodes: []string{"en_US", "fr_FR"}}
	product := sandal()
	product.Family = &catalog.Family{Code: "shoes", Requirements: []*catalog.AttributeRequirement{
		{Attribute: &catalog.Attribute{Code: "description", Localizable: true}, Channel: ecommerce, Required: true},
	}}
	before := len(product.Values)

	deps := export.Dependencies{
		Channels:   stubChannels{"ecommerce": ecommerce},
		Attributes: stubIdentifier{attribute: &catalog.Attribute{Code: "sku", Type: catalog.AttributeTypeIdentifier}},
		Normalizer: fixture.normalizer,
		Users:      fixture.users,
		Filler:     export.NewFamilyValuesFiller(),
	}
	if _, err := export.NewProcessor(deps, step, fixture.tokens).Process(context.Background(), product); err != nil {
		t.Fatalf("process: %v", err)
	}

	normalized := fixture.normalizer.entities[0].ValueCollection()
	if normalized.Get("description", "", "fr_FR") == nil {
		t.Fatalf("expected missing description-fr_FR to be filled, got %+v", normalized)
	}
	if len(product.Values) != before {
		t.Fatalf("expected stored product values untouched, got %d values", len(product.Values))
	}
}
