package catalog

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Locale represents a language/region pair activated on channels.
type Locale struct {
	bun.BaseModel `bun:"table:pim_locales,alias:l"`

	ID        uuid.UUID `bun:",pk,type:uuid"                  json:"id"`
	Code      string    `bun:"code,notnull,unique"            json:"code"`
	Activated bool      `bun:"activated,notnull"              json:"activated"`
	CreatedAt time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

// Channel is a publication target (e.g. "ecommerce", "print") with its own locales and currencies.
type Channel struct {
	bun.BaseModel `bun:"table:pim_channels,alias:ch"`

	ID            uuid.UUID `bun:",pk,type:uuid"                json:"id"`
	Code          string    `bun:"code,notnull,unique"          json:"code"`
	Label         string    `bun:"label"                        json:"label,omitempty"`
	LocaleCodes   []string  `bun:"locale_codes,type:jsonb"      json:"locale_codes"`
	CurrencyCodes []string  `bun:"currency_codes,type:jsonb"    json:"currency_codes,omitempty"`
	CreatedAt     time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`

	// Locales holds the hydrated locale records matching LocaleCodes.
	Locales []*Locale `bun:"-" json:"-"`
}

// ActivatedLocales returns the channel locales in configuration order. When the
// locale records were not hydrated, lightweight records are derived from LocaleCodes.
func (c *Channel) ActivatedLocales() []*Locale {
	if c == nil {
		return nil
	}
	if len(c.Locales) > 0 {
		return c.Locales
	}
	out := make([]*Locale, 0, len(c.LocaleCodes))
	for _, code := range c.LocaleCodes {
		out = append(out, &Locale{Code: code, Activated: true})
	}
	return out
}

// GetLocaleCodes returns the codes of the channel locales.
func (c *Channel) GetLocaleCodes() []string {
	if c == nil {
		return nil
	}
	if len(c.Locales) == 0 {
		return slices.Clone(c.LocaleCodes)
	}
	codes := make([]string, 0, len(c.Locales))
	for _, locale := range c.Locales {
		if locale != nil {
			codes = append(codes, locale.Code)
		}
	}
	return codes
}

// HasLocale reports whether the locale code is activated on the channel.
func (c *Channel) HasLocale(code string) bool {
	return slices.Contains(c.GetLocaleCodes(), code)
}

// Attribute describes a product property.
type Attribute struct {
	bun.BaseModel `bun:"table:pim_attributes,alias:a"`

	ID                   uuid.UUID     `bun:",pk,type:uuid"                      json:"id"`
	Code                 string        `bun:"code,notnull,unique"                json:"code"`
	Type                 AttributeType `bun:"type,notnull"                       json:"type"`
	Localizable          bool          `bun:"localizable,notnull,default:false"  json:"localizable"`
	Scopable             bool          `bun:"scopable,notnull,default:false"     json:"scopable"`
	AvailableLocaleCodes []string      `bun:"available_locale_codes,type:jsonb"  json:"available_locale_codes,omitempty"`
	CreatedAt            time.Time     `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}

// IsLocaleSpecific reports whether the attribute is restricted to a subset of locales.
func (a *Attribute) IsLocaleSpecific() bool {
	return a != nil && len(a.AvailableLocaleCodes) > 0
}

// IsAvailableInLocale reports whether values can be set for the locale.
func (a *Attribute) IsAvailableInLocale(code string) bool {
	if !a.IsLocaleSpecific() {
		return true
	}
	return slices.Contains(a.AvailableLocaleCodes, code)
}

// Family groups the attributes expected on a kind of product and the channels
// they are required for.
type Family struct {
	bun.BaseModel `bun:"table:pim_families,alias:f"`

	ID               uuid.UUID               `bun:",pk,type:uuid"               json:"id"`
	Code             string                  `bun:"code,notnull,unique"         json:"code"`
	AttributeAsLabel string                  `bun:"attribute_as_label"          json:"attribute_as_label,omitempty"`
	CreatedAt        time.Time               `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt        time.Time               `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
	Requirements     []*AttributeRequirement `bun:"rel:has-many,join:id=family_id" json:"attribute_requirements,omitempty"`
}

// AttributeRequirements returns the family requirements in declaration order.
func (f *Family) AttributeRequirements() []*AttributeRequirement {
	if f == nil {
		return nil
	}
	return f.Requirements
}

// AttributeRequirement binds an attribute to a channel for a family.
type AttributeRequirement struct {
	bun.BaseModel `bun:"table:pim_attribute_requirements,alias:ar"`

	ID          uuid.UUID  `bun:",pk,type:uuid"                 json:"id"`
	FamilyID    uuid.UUID  `bun:"family_id,notnull,type:uuid"   json:"family_id"`
	AttributeID uuid.UUID  `bun:"attribute_id,notnull,type:uuid" json:"attribute_id"`
	ChannelID   uuid.UUID  `bun:"channel_id,notnull,type:uuid"  json:"channel_id"`
	Required    bool       `bun:"required,notnull"              json:"required"`
	Position    int        `bun:"position,notnull,default:0"    json:"position"`
	Attribute   *Attribute `bun:"rel:belongs-to,join:attribute_id=id" json:"attribute,omitempty"`
	Channel     *Channel   `bun:"rel:belongs-to,join:channel_id=id"   json:"channel,omitempty"`
}

// Product is a sellable item identified by its identifier attribute value.
type Product struct {
	bun.BaseModel `bun:"table:pim_products,alias:p"`

	ID         uuid.UUID  `bun:",pk,type:uuid"                    json:"id"`
	Identifier string     `bun:"identifier,notnull,unique"        json:"identifier"`
	FamilyID   *uuid.UUID `bun:"family_id,type:uuid,nullzero"     json:"family_id,omitempty"`
	ParentCode string     `bun:"parent_code"                      json:"parent,omitempty"`
	Enabled    bool       `bun:"enabled,notnull"                  json:"enabled"`
	Categories []string   `bun:"categories,type:jsonb"            json:"categories,omitempty"`
	Groups     []string   `bun:"groups,type:jsonb"                json:"groups,omitempty"`
	Values     Values     `bun:"raw_values,type:jsonb"            json:"values"`
	CreatedAt  time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt  time.Time  `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
	Family     *Family    `bun:"rel:belongs-to,join:family_id=id" json:"family,omitempty"`
}

// ProductModel groups variant products sharing common values.
type ProductModel struct {
	bun.BaseModel `bun:"table:pim_product_models,alias:pm"`

	ID            uuid.UUID `bun:",pk,type:uuid"            json:"id"`
	Code          string    `bun:"code,notnull,unique"      json:"code"`
	FamilyVariant string    `bun:"family_variant,notnull"   json:"family_variant"`
	ParentCode    string    `bun:"parent_code"              json:"parent,omitempty"`
	Categories    []string  `bun:"categories,type:jsonb"    json:"categories,omitempty"`
	Values        Values    `bun:"raw_values,type:jsonb"    json:"values"`
	CreatedAt     time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// FileInfo describes a stored file referenced by media values through its key.
type FileInfo struct {
	bun.BaseModel `bun:"table:pim_file_infos,alias:fi"`

	ID               uuid.UUID `bun:",pk,type:uuid"            json:"id"`
	Key              string    `bun:"file_key,notnull,unique"  json:"key"`
	OriginalFilename string    `bun:"original_filename,notnull" json:"original_filename"`
	MimeType         string    `bun:"mime_type"                json:"mime_type,omitempty"`
	Size             int64     `bun:"size"                     json:"size,omitempty"`
	Storage          string    `bun:"storage,notnull"          json:"storage"`
	CreatedAt        time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}
