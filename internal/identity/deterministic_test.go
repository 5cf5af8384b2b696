package identity

import (
	"testing"

	"github.com/google/uuid"
)

func TestUUIDIsStableAndScoped(t *testing.T) {
	first := ChannelUUID("ecommerce")
	second := ChannelUUID(" ecommerce ")
	if first == uuid.Nil {
		t.Fatal("expected non-nil channel uuid")
	}
	if first != second {
		t.Fatalf("expected trimmed codes to map to the same uuid, got %s and %s", first, second)
	}
	if first == LocaleUUID("ecommerce") {
		t.Fatal("expected channel and locale uuids to differ for the same code")
	}
}

func TestUUIDEmptyKey(t *testing.T) {
	if got := UUID("   "); got != uuid.Nil {
		t.Fatalf("expected nil uuid for blank key, got %s", got)
	}
}

func TestCompletenessUUIDDependsOnPair(t *testing.T) {
	product := ProductUUID("sandal")
	if CompletenessUUID(product, "ecommerce", "en_US") == CompletenessUUID(product, "ecommerce", "fr_FR") {
		t.Fatal("expected distinct completeness ids per locale")
	}
}
