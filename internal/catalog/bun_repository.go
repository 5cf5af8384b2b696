package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	pimcatalog "github.com/goliatone/go-pim/catalog"
	"github.com/goliatone/go-pim/internal/identity"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunLocaleRepository implements LocaleRepository with optional caching.
type BunLocaleRepository struct {
	repo repository.Repository[*Locale]
}

func NewBunLocaleRepository(db *bun.DB) *BunLocaleRepository {
	return NewBunLocaleRepositoryWithCache(db, nil, nil)
}

func NewBunLocaleRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunLocaleRepository {
	return &BunLocaleRepository{repo: wrapWithCache(NewLocaleRepository(db), cacheService, keySerializer)}
}

func (r *BunLocaleRepository) GetByCode(ctx context.Context, code string) (*Locale, error) {
	result, err := r.repo.GetByIdentifier(ctx, code)
	if err != nil {
		return nil, mapRepositoryError(err, "locale", code)
	}
	return result, nil
}

func (r *BunLocaleRepository) List(ctx context.Context) ([]*Locale, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("?TableAlias.code ASC")
		}),
	)
	return records, err
}

func (r *BunLocaleRepository) Save(ctx context.Context, locale *Locale) (*Locale, error) {
	if locale.ID == uuid.Nil {
		locale.ID = identity.LocaleUUID(locale.Code)
	}
	existing, err := r.repo.GetByID(ctx, locale.ID.String())
	if err != nil {
		if !isRepositoryNotFound(err) {
			return nil, mapRepositoryError(err, "locale", locale.Code)
		}
		return r.repo.Create(ctx, locale)
	}
	locale.CreatedAt = existing.CreatedAt
	return r.repo.Update(ctx, locale)
}

// BunChannelRepository implements ChannelRepository. Channel locales are
// hydrated from the locale repository, keeping only activated ones.
type BunChannelRepository struct {
	repo    repository.Repository[*Channel]
	locales LocaleRepository
}

func NewBunChannelRepository(db *bun.DB, locales LocaleRepository) *BunChannelRepository {
	return NewBunChannelRepositoryWithCache(db, locales, nil, nil)
}

func NewBunChannelRepositoryWithCache(db *bun.DB, locales LocaleRepository, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunChannelRepository {
	return &BunChannelRepository{
		repo:    wrapWithCache(NewChannelRepository(db), cacheService, keySerializer),
		locales: locales,
	}
}

func (r *BunChannelRepository) GetByCode(ctx context.Context, code string) (*Channel, error) {
	result, err := r.repo.GetByIdentifier(ctx, code)
	if err != nil {
		return nil, mapRepositoryError(err, "channel", code)
	}
	return r.hydrate(ctx, result)
}

func (r *BunChannelRepository) List(ctx context.Context) ([]*Channel, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("?TableAlias.code ASC")
		}),
	)
	if err != nil {
		return nil, err
	}
	for i, record := range records {
		if records[i], err = r.hydrate(ctx, record); err != nil {
			return nil, err
		}
	}
	return records, nil
}

func (r *BunChannelRepository) Save(ctx context.Context, channel *Channel) (*Channel, error) {
	if channel.ID == uuid.Nil {
		channel.ID = identity.ChannelUUID(channel.Code)
	}
	channel.UpdatedAt = time.Now().UTC()
	existing, err := r.repo.GetByID(ctx, channel.ID.String())
	var saved *Channel
	switch {
	case err == nil:
		channel.CreatedAt = existing.CreatedAt
		saved, err = r.repo.Update(ctx, channel)
	case isRepositoryNotFound(err):
		saved, err = r.repo.Create(ctx, channel)
	}
	if err != nil {
		return nil, mapRepositoryError(err, "channel", channel.Code)
	}
	return r.hydrate(ctx, saved)
}

func (r *BunChannelRepository) hydrate(ctx context.Context, channel *Channel) (*Channel, error) {
	if channel == nil || r.locales == nil {
		return channel, nil
	}
	locales, err := resolveLocales(ctx, r.locales, channel.LocaleCodes)
	if err != nil {
		return nil, err
	}
	channel.Locales = locales
	return channel, nil
}

// BunAttributeRepository implements AttributeRepository with optional caching.
type BunAttributeRepository struct {
	repo repository.Repository[*Attribute]
}

func NewBunAttributeRepository(db *bun.DB) *BunAttributeRepository {
	return NewBunAttributeRepositoryWithCache(db, nil, nil)
}

func NewBunAttributeRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunAttributeRepository {
	return &BunAttributeRepository{repo: wrapWithCache(NewAttributeRepository(db), cacheService, keySerializer)}
}

func (r *BunAttributeRepository) GetByCode(ctx context.Context, code string) (*Attribute, error) {
	result, err := r.repo.GetByIdentifier(ctx, code)
	if err != nil {
		return nil, mapRepositoryError(err, "attribute", code)
	}
	return result, nil
}

func (r *BunAttributeRepository) FindIdentifier(ctx context.Context) (*Attribute, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.type = ?", pimcatalog.AttributeTypeIdentifier)
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, pimcatalog.ErrIdentifierAttributeMissing
	}
	return records[0], nil
}

func (r *BunAttributeRepository) List(ctx context.Context) ([]*Attribute, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("?TableAlias.code ASC")
		}),
	)
	return records, err
}

func (r *BunAttributeRepository) Save(ctx context.Context, attribute *Attribute) (*Attribute, error) {
	if attribute.ID == uuid.Nil {
		attribute.ID = identity.AttributeUUID(attribute.Code)
	}
	existing, err := r.repo.GetByID(ctx, attribute.ID.String())
	if err != nil {
		if !isRepositoryNotFound(err) {
			return nil, mapRepositoryError(err, "attribute", attribute.Code)
		}
		return r.repo.Create(ctx, attribute)
	}
	attribute.CreatedAt = existing.CreatedAt
	return r.repo.Update(ctx, attribute)
}

// BunFamilyRepository implements FamilyRepository. Requirements live in their
// own table and are hydrated with their attribute and channel.
type BunFamilyRepository struct {
	db           *bun.DB
	repo         repository.Repository[*Family]
	requirements repository.Repository[*AttributeRequirement]
	channels     ChannelRepository
}

func NewBunFamilyRepository(db *bun.DB, channels ChannelRepository) *BunFamilyRepository {
	return NewBunFamilyRepositoryWithCache(db, channels, nil, nil)
}

func NewBunFamilyRepositoryWithCache(db *bun.DB, channels ChannelRepository, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunFamilyRepository {
	return &BunFamilyRepository{
		db:           db,
		repo:         wrapWithCache(NewFamilyRepository(db), cacheService, keySerializer),
		requirements: NewAttributeRequirementRepository(db),
		channels:     channels,
	}
}

func (r *BunFamilyRepository) GetByID(ctx context.Context, id uuid.UUID) (*Family, error) {
	result, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "family", id.String())
	}
	return r.hydrate(ctx, result)
}

func (r *BunFamilyRepository) GetByCode(ctx context.Context, code string) (*Family, error) {
	result, err := r.repo.GetByIdentifier(ctx, code)
	if err != nil {
		return nil, mapRepositoryError(err, "family", code)
	}
	return r.hydrate(ctx, result)
}

func (r *BunFamilyRepository) List(ctx context.Context) ([]*Family, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("?TableAlias.code ASC")
		}),
	)
	if err != nil {
		return nil, err
	}
	for i, record := range records {
		if records[i], err = r.hydrate(ctx, record); err != nil {
			return nil, err
		}
	}
	return records, nil
}

func (r *BunFamilyRepository) Save(ctx context.Context, family *Family) (*Family, error) {
	if family.ID == uuid.Nil {
		family.ID = identity.FamilyUUID(family.Code)
	}
	family.UpdatedAt = time.Now().UTC()
	requirements := family.Requirements

	existing, err := r.repo.GetByID(ctx, family.ID.String())
	switch {
	case err == nil:
		family.CreatedAt = existing.CreatedAt
		_, err = r.repo.Update(ctx, family)
	case isRepositoryNotFound(err):
		_, err = r.repo.Create(ctx, family)
	}
	if err != nil {
		return nil, mapRepositoryError(err, "family", family.Code)
	}

	err = r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*AttributeRequirement)(nil)).
			Where("?TableAlias.family_id = ?", family.ID).
			Exec(ctx); err != nil {
			return fmt.Errorf("delete attribute requirements: %w", err)
		}
		rows := make([]*AttributeRequirement, 0, len(requirements))
		for position, requirement := range requirements {
			if requirement == nil {
				continue
			}
			row := *requirement
			row.FamilyID = family.ID
			if row.Attribute != nil {
				row.AttributeID = row.Attribute.ID
			}
			if row.Channel != nil {
				row.ChannelID = row.Channel.ID
			}
			row.ID = identity.AttributeRequirementUUID(family.ID, row.AttributeID, row.ChannelID)
			row.Position = position
			row.Attribute = nil
			row.Channel = nil
			rows = append(rows, &row)
		}
		if len(rows) == 0 {
			return nil
		}
		if _, err := tx.NewInsert().Model(&rows).Exec(ctx); err != nil {
			return fmt.Errorf("insert attribute requirements: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, family.ID)
}

func (r *BunFamilyRepository) hydrate(ctx context.Context, family *Family) (*Family, error) {
	if family == nil {
		return nil, nil
	}
	records, _, err := r.requirements.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Relation("Attribute").
				Relation("Channel").
				Where("?TableAlias.family_id = ?", family.ID).
				OrderExpr("?TableAlias.position ASC")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("family %q requirements: %w", family.Code, err)
	}

	channels := map[uuid.UUID]*Channel{}
	for _, requirement := range records {
		if requirement.Channel == nil || r.channels == nil {
			continue
		}
		channel, ok := channels[requirement.ChannelID]
		if !ok {
			channel, err = r.channels.GetByCode(ctx, requirement.Channel.Code)
			if err != nil {
				return nil, err
			}
			channels[requirement.ChannelID] = channel
		}
		requirement.Channel = channel
	}
	family.Requirements = records
	return family, nil
}

// BunProductRepository implements ProductRepository. Products are returned
// with their family hydrated.
type BunProductRepository struct {
	repo     repository.Repository[*Product]
	families FamilyRepository
}

func NewBunProductRepository(db *bun.DB, families FamilyRepository) *BunProductRepository {
	return NewBunProductRepositoryWithCache(db, families, nil, nil)
}

func NewBunProductRepositoryWithCache(db *bun.DB, families FamilyRepository, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunProductRepository {
	return &BunProductRepository{
		repo:     wrapWithCache(NewProductRepository(db), cacheService, keySerializer),
		families: families,
	}
}

func (r *BunProductRepository) GetByIdentifier(ctx context.Context, identifier string) (*Product, error) {
	result, err := r.repo.GetByIdentifier(ctx, identifier)
	if err != nil {
		return nil, mapRepositoryError(err, "product", identifier)
	}
	return r.hydrate(ctx, result, nil)
}

func (r *BunProductRepository) List(ctx context.Context) ([]*Product, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("?TableAlias.identifier ASC")
		}),
	)
	if err != nil {
		return nil, err
	}
	return r.hydrateAll(ctx, records)
}

func (r *BunProductRepository) ListByIdentifiers(ctx context.Context, identifiers []string) ([]*Product, error) {
	if len(identifiers) == 0 {
		return []*Product{}, nil
	}
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.identifier IN (?)", bun.In(identifiers))
		}),
	)
	if err != nil {
		return nil, err
	}
	ordered := orderBy(records, identifiers, func(p *Product) string { return p.Identifier })
	return r.hydrateAll(ctx, ordered)
}

func (r *BunProductRepository) Save(ctx context.Context, product *Product) (*Product, error) {
	if product.ID == uuid.Nil {
		product.ID = identity.ProductUUID(product.Identifier)
	}
	if product.Family != nil {
		familyID := product.Family.ID
		product.FamilyID = &familyID
	}
	product.UpdatedAt = time.Now().UTC()

	existing, err := r.repo.GetByID(ctx, product.ID.String())
	var saved *Product
	switch {
	case err == nil:
		product.CreatedAt = existing.CreatedAt
		saved, err = r.repo.Update(ctx, product)
	case isRepositoryNotFound(err):
		saved, err = r.repo.Create(ctx, product)
	}
	if err != nil {
		return nil, mapRepositoryError(err, "product", product.Identifier)
	}
	return r.hydrate(ctx, saved, nil)
}

func (r *BunProductRepository) hydrateAll(ctx context.Context, records []*Product) ([]*Product, error) {
	families := map[uuid.UUID]*Family{}
	for i, record := range records {
		hydrated, err := r.hydrate(ctx, record, families)
		if err != nil {
			return nil, err
		}
		records[i] = hydrated
	}
	return records, nil
}

func (r *BunProductRepository) hydrate(ctx context.Context, product *Product, seen map[uuid.UUID]*Family) (*Product, error) {
	if product == nil || product.FamilyID == nil || r.families == nil {
		return product, nil
	}
	if family, ok := seen[*product.FamilyID]; ok {
		product.Family = family
		return product, nil
	}
	family, err := r.families.GetByID(ctx, *product.FamilyID)
	if err != nil {
		return nil, err
	}
	if seen != nil {
		seen[*product.FamilyID] = family
	}
	product.Family = family
	return product, nil
}

// BunProductModelRepository implements ProductModelRepository with optional caching.
type BunProductModelRepository struct {
	repo repository.Repository[*ProductModel]
}

func NewBunProductModelRepository(db *bun.DB) *BunProductModelRepository {
	return NewBunProductModelRepositoryWithCache(db, nil, nil)
}

func NewBunProductModelRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunProductModelRepository {
	return &BunProductModelRepository{repo: wrapWithCache(NewProductModelRepository(db), cacheService, keySerializer)}
}

func (r *BunProductModelRepository) GetByCode(ctx context.Context, code string) (*ProductModel, error) {
	result, err := r.repo.GetByIdentifier(ctx, code)
	if err != nil {
		return nil, mapRepositoryError(err, "product_model", code)
	}
	return result, nil
}

func (r *BunProductModelRepository) List(ctx context.Context) ([]*ProductModel, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.OrderExpr("?TableAlias.code ASC")
		}),
	)
	return records, err
}

func (r *BunProductModelRepository) ListByCodes(ctx context.Context, codes []string) ([]*ProductModel, error) {
	if len(codes) == 0 {
		return []*ProductModel{}, nil
	}
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.code IN (?)", bun.In(codes))
		}),
	)
	if err != nil {
		return nil, err
	}
	return orderBy(records, codes, func(m *ProductModel) string { return m.Code }), nil
}

func (r *BunProductModelRepository) Save(ctx context.Context, model *ProductModel) (*ProductModel, error) {
	if model.ID == uuid.Nil {
		model.ID = identity.ProductModelUUID(model.Code)
	}
	model.UpdatedAt = time.Now().UTC()
	existing, err := r.repo.GetByID(ctx, model.ID.String())
	if err != nil {
		if !isRepositoryNotFound(err) {
			return nil, mapRepositoryError(err, "product_model", model.Code)
		}
		return r.repo.Create(ctx, model)
	}
	model.CreatedAt = existing.CreatedAt
	return r.repo.Update(ctx, model)
}

// BunFileInfoRepository implements FileInfoRepository with optional caching.
type BunFileInfoRepository struct {
	repo repository.Repository[*FileInfo]
}

func NewBunFileInfoRepository(db *bun.DB) *BunFileInfoRepository {
	return NewBunFileInfoRepositoryWithCache(db, nil, nil)
}

func NewBunFileInfoRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunFileInfoRepository {
	return &BunFileInfoRepository{repo: wrapWithCache(NewFileInfoRepository(db), cacheService, keySerializer)}
}

func (r *BunFileInfoRepository) GetByKey(ctx context.Context, key string) (*FileInfo, error) {
	result, err := r.repo.GetByIdentifier(ctx, key)
	if err != nil {
		return nil, mapRepositoryError(err, "file_info", key)
	}
	return result, nil
}

func (r *BunFileInfoRepository) Save(ctx context.Context, info *FileInfo) (*FileInfo, error) {
	if info.ID == uuid.Nil {
		info.ID = identity.FileInfoUUID(info.Key)
	}
	existing, err := r.repo.GetByID(ctx, info.ID.String())
	if err != nil {
		if !isRepositoryNotFound(err) {
			return nil, mapRepositoryError(err, "file_info", info.Key)
		}
		return r.repo.Create(ctx, info)
	}
	info.CreatedAt = existing.CreatedAt
	return r.repo.Update(ctx, info)
}

// BunCompletenessRepository implements CompletenessRepository.
type BunCompletenessRepository struct {
	db   *bun.DB
	repo repository.Repository[*CompletenessRecord]
}

func NewBunCompletenessRepository(db *bun.DB) *BunCompletenessRepository {
	return &BunCompletenessRepository{
		db:   db,
		repo: NewCompletenessRecordRepository(db),
	}
}

func (r *BunCompletenessRepository) SaveForProduct(ctx context.Context, productID uuid.UUID, records []*CompletenessRecord) error {
	if r.db == nil {
		return fmt.Errorf("completeness repository: database not configured")
	}
	now := time.Now().UTC()
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*CompletenessRecord)(nil)).
			Where("?TableAlias.product_id = ?", productID).
			Exec(ctx); err != nil {
			return fmt.Errorf("delete completeness: %w", err)
		}
		if len(records) == 0 {
			return nil
		}
		rows := make([]*CompletenessRecord, 0, len(records))
		for _, record := range records {
			if record == nil {
				continue
			}
			row := *record
			row.ProductID = productID
			row.ID = identity.CompletenessUUID(productID, row.ChannelCode, row.LocaleCode)
			if row.CalculatedAt.IsZero() {
				row.CalculatedAt = now
			}
			rows = append(rows, &row)
		}
		if _, err := tx.NewInsert().Model(&rows).Exec(ctx); err != nil {
			return fmt.Errorf("insert completeness: %w", err)
		}
		return nil
	})
}

func (r *BunCompletenessRepository) ListForProduct(ctx context.Context, productID uuid.UUID) ([]*CompletenessRecord, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.product_id = ?", productID).
				OrderExpr("?TableAlias.channel_code ASC, ?TableAlias.locale_code ASC")
		}),
	)
	return records, err
}

func resolveLocales(ctx context.Context, repo LocaleRepository, codes []string) ([]*Locale, error) {
	out := make([]*Locale, 0, len(codes))
	for _, code := range codes {
		locale, err := repo.GetByCode(ctx, code)
		if err != nil {
			if errors.As(err, new(*NotFoundError)) {
				out = append(out, &Locale{Code: code, Activated: true})
				continue
			}
			return nil, err
		}
		if locale.Activated {
			out = append(out, locale)
		}
	}
	return out, nil
}

func orderBy[T any](records []T, keys []string, key func(T) string) []T {
	index := make(map[string]T, len(records))
	for _, record := range records {
		index[key(record)] = record
	}
	out := make([]T, 0, len(records))
	for _, k := range keys {
		if record, ok := index[k]; ok {
			out = append(out, record)
			delete(index, k)
		}
	}
	return out
}

func isRepositoryNotFound(err error) bool {
	return err != nil && goerrors.IsCategory(err, repository.CategoryDatabaseNotFound)
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if isRepositoryNotFound(err) {
		return &NotFoundError{
			Resource: resource,
			Key:      key,
		}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}

func wrapWithCache[T any](base repository.Repository[T], cacheService cache.CacheService, keySerializer cache.KeySerializer) repository.Repository[T] {
	if cacheService == nil || keySerializer == nil {
		return base
	}
	return repositorycache.New(base, cacheService, keySerializer)
}

// NewBunRepositories wires the bun stores. A nil cache service disables caching.
func NewBunRepositories(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) Repositories {
	locales := NewBunLocaleRepositoryWithCache(db, cacheService, keySerializer)
	channels := NewBunChannelRepositoryWithCache(db, locales, cacheService, keySerializer)
	families := NewBunFamilyRepositoryWithCache(db, channels, cacheService, keySerializer)
	return Repositories{
		Locales:       locales,
		Channels:      channels,
		Attributes:    NewBunAttributeRepositoryWithCache(db, cacheService, keySerializer),
		Families:      families,
		Products:      NewBunProductRepositoryWithCache(db, families, cacheService, keySerializer),
		ProductModels: NewBunProductModelRepositoryWithCache(db, cacheService, keySerializer),
		FileInfos:     NewBunFileInfoRepositoryWithCache(db, cacheService, keySerializer),
		Completeness:  NewBunCompletenessRepository(db),
	}
}
