package catalog

import "github.com/google/uuid"

// EntityKind distinguishes the catalog entities that carry values.
type EntityKind string

const (
	EntityKindProduct      EntityKind = "product"
	EntityKindProductModel EntityKind = "product_model"
)

// EntityWithValues is the capability shared by products and product models.
type EntityWithValues interface {
	EntityKind() EntityKind
	EntityID() uuid.UUID
	// IdentifierValue returns the product identifier or the product model code.
	IdentifierValue() string
	ValueCollection() Values
}

var (
	_ EntityWithValues = (*Product)(nil)
	_ EntityWithValues = (*ProductModel)(nil)
)

func (p *Product) EntityKind() EntityKind  { return EntityKindProduct }
func (p *Product) EntityID() uuid.UUID     { return p.ID }
func (p *Product) IdentifierValue() string { return p.Identifier }
func (p *Product) ValueCollection() Values { return p.Values }

// FamilyCode returns the code of the product family, or an empty string.
func (p *Product) FamilyCode() string {
	if p == nil || p.Family == nil {
		return ""
	}
	return p.Family.Code
}

func (m *ProductModel) EntityKind() EntityKind  { return EntityKindProductModel }
func (m *ProductModel) EntityID() uuid.UUID     { return m.ID }
func (m *ProductModel) IdentifierValue() string { return m.Code }
func (m *ProductModel) ValueCollection() Values { return m.Values }
