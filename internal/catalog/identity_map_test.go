package catalog_test

import (
	"testing"

	"github.com/goliatone/go-pim/internal/catalog"
	"github.com/goliatone/go-pim/internal/identity"
)

func TestIdentityMapTrackAndDetach(t *testing.T) {
	m := catalog.NewIdentityMap()
	product := &catalog.Product{ID: identity.ProductUUID("sandal"), Identifier: "sandal"}
	model := &catalog.ProductModel{ID: identity.ProductUUID("sandal"), Code: "sandal"}

	if got := m.Track(product); got != product {
		t.Fatalf("expected tracked product to be returned")
	}
	if got := m.Track(&catalog.Product{ID: product.ID, Identifier: "sandal"}); got != product {
		t.Fatalf("expected existing instance for the same identity")
	}
	m.Track(model)
	if m.Len() != 2 {
		t.Fatalf("expected product and model to be tracked separately, got %d", m.Len())
	}

	m.Detach(product)
	if m.Contains(product) {
		t.Fatal("expected product to be detached")
	}
	if !m.Contains(model) {
		t.Fatal("expected model to stay tracked")
	}

	m.Detach(nil)
	m.Clear()
	if m.Len() != 0 {
		t.Fatalf("expected empty map after clear, got %d", m.Len())
	}
}
