package catalog

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// LocaleRepository persists locales.
type LocaleRepository interface {
	GetByCode(ctx context.Context, code string) (*Locale, error)
	List(ctx context.Context) ([]*Locale, error)
	Save(ctx context.Context, locale *Locale) (*Locale, error)
}

// ChannelRepository persists channels. Returned channels carry their locales.
type ChannelRepository interface {
	GetByCode(ctx context.Context, code string) (*Channel, error)
	List(ctx context.Context) ([]*Channel, error)
	Save(ctx context.Context, channel *Channel) (*Channel, error)
}

// AttributeRepository persists attributes.
type AttributeRepository interface {
	GetByCode(ctx context.Context, code string) (*Attribute, error)
	// FindIdentifier returns the unique attribute of type pim_catalog_identifier.
	FindIdentifier(ctx context.Context) (*Attribute, error)
	List(ctx context.Context) ([]*Attribute, error)
	Save(ctx context.Context, attribute *Attribute) (*Attribute, error)
}

// FamilyRepository persists families. Returned families carry their
// requirements with attribute and channel hydrated.
type FamilyRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Family, error)
	GetByCode(ctx context.Context, code string) (*Family, error)
	List(ctx context.Context) ([]*Family, error)
	// Save stores the family and replaces its requirements.
	Save(ctx context.Context, family *Family) (*Family, error)
}

// ProductRepository persists products. Returned products carry their family.
type ProductRepository interface {
	GetByIdentifier(ctx context.Context, identifier string) (*Product, error)
	List(ctx context.Context) ([]*Product, error)
	// ListByIdentifiers returns the matching products in request order; unknown
	// identifiers are skipped.
	ListByIdentifiers(ctx context.Context, identifiers []string) ([]*Product, error)
	Save(ctx context.Context, product *Product) (*Product, error)
}

// ProductModelRepository persists product models.
type ProductModelRepository interface {
	GetByCode(ctx context.Context, code string) (*ProductModel, error)
	List(ctx context.Context) ([]*ProductModel, error)
	ListByCodes(ctx context.Context, codes []string) ([]*ProductModel, error)
	Save(ctx context.Context, model *ProductModel) (*ProductModel, error)
}

// FileInfoRepository resolves media file keys.
type FileInfoRepository interface {
	GetByKey(ctx context.Context, key string) (*FileInfo, error)
	Save(ctx context.Context, info *FileInfo) (*FileInfo, error)
}

// CompletenessRepository stores the completeness of products.
type CompletenessRepository interface {
	// SaveForProduct replaces every stored record of the product.
	SaveForProduct(ctx context.Context, productID uuid.UUID, records []*CompletenessRecord) error
	ListForProduct(ctx context.Context, productID uuid.UUID) ([]*CompletenessRecord, error)
}

func NewLocaleRepository(db *bun.DB) repository.Repository[*Locale] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Locale]{
		NewRecord: func() *Locale { return &Locale{} },
		GetID: func(l *Locale) uuid.UUID {
			return l.ID
		},
		SetID: func(l *Locale, id uuid.UUID) {
			l.ID = id
		},
		GetIdentifier: func() string {
			return "code"
		},
		GetIdentifierValue: func(l *Locale) string {
			return l.Code
		},
	})
}

func NewChannelRepository(db *bun.DB) repository.Repository[*Channel] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Channel]{
		NewRecord: func() *Channel { return &Channel{} },
		GetID: func(c *Channel) uuid.UUID {
			return c.ID
		},
		SetID: func(c *Channel, id uuid.UUID) {
			c.ID = id
		},
		GetIdentifier: func() string {
			return "code"
		},
		GetIdentifierValue: func(c *Channel) string {
			return c.Code
		},
	})
}

func NewAttributeRepository(db *bun.DB) repository.Repository[*Attribute] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Attribute]{
		NewRecord: func() *Attribute { return &Attribute{} },
		GetID: func(a *Attribute) uuid.UUID {
			return a.ID
		},
		SetID: func(a *Attribute, id uuid.UUID) {
			a.ID = id
		},
		GetIdentifier: func() string {
			return "code"
		},
		GetIdentifierValue: func(a *Attribute) string {
			return a.Code
		},
	})
}

func NewFamilyRepository(db *bun.DB) repository.Repository[*Family] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Family]{
		NewRecord: func() *Family { return &Family{} },
		GetID: func(f *Family) uuid.UUID {
			return f.ID
		},
		SetID: func(f *Family, id uuid.UUID) {
			f.ID = id
		},
		GetIdentifier: func() string {
			return "code"
		},
		GetIdentifierValue: func(f *Family) string {
			return f.Code
		},
	})
}

func NewAttributeRequirementRepository(db *bun.DB) repository.Repository[*AttributeRequirement] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*AttributeRequirement]{
		NewRecord: func() *AttributeRequirement { return &AttributeRequirement{} },
		GetID: func(r *AttributeRequirement) uuid.UUID {
			return r.ID
		},
		SetID: func(r *AttributeRequirement, id uuid.UUID) {
			r.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(r *AttributeRequirement) string {
			if r == nil {
				return ""
			}
			return r.ID.String()
		},
	})
}

func NewProductRepository(db *bun.DB) repository.Repository[*Product] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Product]{
		NewRecord: func() *Product { return &Product{} },
		GetID: func(p *Product) uuid.UUID {
			return p.ID
		},
		SetID: func(p *Product, id uuid.UUID) {
			p.ID = id
		},
		GetIdentifier: func() string {
			return "identifier"
		},
		GetIdentifierValue: func(p *Product) string {
			return p.Identifier
		},
	})
}

func NewProductModelRepository(db *bun.DB) repository.Repository[*ProductModel] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*ProductModel]{
		NewRecord: func() *ProductModel { return &ProductModel{} },
		GetID: func(m *ProductModel) uuid.UUID {
			return m.ID
		},
		SetID: func(m *ProductModel, id uuid.UUID) {
			m.ID = id
		},
		GetIdentifier: func() string {
			return "code"
		},
		GetIdentifierValue: func(m *ProductModel) string {
			return m.Code
		},
	})
}

func NewFileInfoRepository(db *bun.DB) repository.Repository[*FileInfo] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*FileInfo]{
		NewRecord: func() *FileInfo { return &FileInfo{} },
		GetID: func(f *FileInfo) uuid.UUID {
			return f.ID
		},
		SetID: func(f *FileInfo, id uuid.UUID) {
			f.ID = id
		},
		GetIdentifier: func() string {
			return "file_key"
		},
		GetIdentifierValue: func(f *FileInfo) string {
			return f.Key
		},
	})
}

func NewCompletenessRecordRepository(db *bun.DB) repository.Repository[*CompletenessRecord] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*CompletenessRecord]{
		NewRecord: func() *CompletenessRecord { return &CompletenessRecord{} },
		GetID: func(r *CompletenessRecord) uuid.UUID {
			return r.ID
		},
		SetID: func(r *CompletenessRecord, id uuid.UUID) {
			r.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(r *CompletenessRecord) string {
			if r == nil {
				return ""
			}
			return r.ID.String()
		},
	})
}

var (
	_ LocaleRepository       = (*BunLocaleRepository)(nil)
	_ ChannelRepository      = (*BunChannelRepository)(nil)
	_ AttributeRepository    = (*BunAttributeRepository)(nil)
	_ FamilyRepository       = (*BunFamilyRepository)(nil)
	_ ProductRepository      = (*BunProductRepository)(nil)
	_ ProductModelRepository = (*BunProductModelRepository)(nil)
	_ FileInfoRepository     = (*BunFileInfoRepository)(nil)
	_ CompletenessRepository = (*BunCompletenessRepository)(nil)

	_ LocaleRepository       = (*MemoryLocaleRepository)(nil)
	_ ChannelRepository      = (*MemoryChannelRepository)(nil)
	_ AttributeRepository    = (*MemoryAttributeRepository)(nil)
	_ FamilyRepository       = (*MemoryFamilyRepository)(nil)
	_ ProductRepository      = (*MemoryProductRepository)(nil)
	_ ProductModelRepository = (*MemoryProductModelRepository)(nil)
	_ FileInfoRepository     = (*MemoryFileInfoRepository)(nil)
	_ CompletenessRepository = (*MemoryCompletenessRepository)(nil)
)
