package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

func LocaleUUID(localeCode string) uuid.UUID {
	return UUID("go-pim:locale:" + strings.TrimSpace(localeCode))
}

func ChannelUUID(channelCode string) uuid.UUID {
	return UUID("go-pim:channel:" + strings.TrimSpace(channelCode))
}

func AttributeUUID(attributeCode string) uuid.UUID {
	return UUID("go-pim:attribute:" + strings.TrimSpace(attributeCode))
}

func FamilyUUID(familyCode string) uuid.UUID {
	return UUID("go-pim:family:" + strings.TrimSpace(familyCode))
}

// AttributeRequirementUUID is stable for a family/attribute/channel triple.
func AttributeRequirementUUID(familyID, attributeID, channelID uuid.UUID) uuid.UUID {
	return UUID("go-pim:attribute_requirement:" + familyID.String() + ":" + attributeID.String() + ":" + channelID.String())
}

func ProductUUID(identifier string) uuid.UUID {
	return UUID("go-pim:product:" + strings.TrimSpace(identifier))
}

func ProductModelUUID(code string) uuid.UUID {
	return UUID("go-pim:product_model:" + strings.TrimSpace(code))
}

func FileInfoUUID(key string) uuid.UUID {
	return UUID("go-pim:file_info:" + strings.TrimSpace(key))
}

// CompletenessUUID is stable for a product/channel/locale triple.
func CompletenessUUID(productID uuid.UUID, channelCode, localeCode string) uuid.UUID {
	return UUID("go-pim:completeness:" + productID.String() + ":" + strings.TrimSpace(channelCode) + ":" + strings.TrimSpace(localeCode))
}
