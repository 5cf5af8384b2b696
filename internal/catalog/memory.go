package catalog

import (
	"context"
	"slices"
	"sort"
	"sync"

	pimcatalog "github.com/goliatone/go-pim/catalog"
	"github.com/goliatone/go-pim/internal/identity"
	"github.com/google/uuid"
)

// MemoryLocaleRepository stores locales by code.
type MemoryLocaleRepository struct {
	mu      sync.RWMutex
	locales map[string]*Locale
}

// NewMemoryLocaleRepository constructs the repository.
func NewMemoryLocaleRepository() *MemoryLocaleRepository {
	return &MemoryLocaleRepository{locales: make(map[string]*Locale)}
}

func (m *MemoryLocaleRepository) GetByCode(_ context.Context, code string) (*Locale, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	locale, ok := m.locales[code]
	if !ok {
		return nil, &NotFoundError{Resource: "locale", Key: code}
	}
	copied := *locale
	return &copied, nil
}

func (m *MemoryLocaleRepository) List(_ context.Context) ([]*Locale, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Locale, 0, len(m.locales))
	for _, code := range sortedKeys(m.locales) {
		copied := *m.locales[code]
		out = append(out, &copied)
	}
	return out, nil
}

func (m *MemoryLocaleRepository) Save(_ context.Context, locale *Locale) (*Locale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *locale
	if copied.ID == uuid.Nil {
		copied.ID = identity.LocaleUUID(copied.Code)
	}
	m.locales[copied.Code] = &copied
	result := copied
	return &result, nil
}

// MemoryChannelRepository stores channels by code and hydrates their locales
// from the locale repository when one is provided.
type MemoryChannelRepository struct {
	mu       sync.RWMutex
	channels map[string]*Channel
	locales  LocaleRepository
}

// NewMemoryChannelRepository constructs the repository.
func NewMemoryChannelRepository(locales LocaleRepository) *MemoryChannelRepository {
	return &MemoryChannelRepository{
		channels: make(map[string]*Channel),
		locales:  locales,
	}
}

func (m *MemoryChannelRepository) GetByCode(ctx context.Context, code string) (*Channel, error) {
	m.mu.RLock()
	channel, ok := m.channels[code]
	m.mu.RUnlock()
	if !ok {
		return nil, &NotFoundError{Resource: "channel", Key: code}
	}
	return m.hydrate(ctx, cloneChannel(channel))
}

func (m *MemoryChannelRepository) List(ctx context.Context) ([]*Channel, error) {
	m.mu.RLock()
	records := make([]*Channel, 0, len(m.channels))
	for _, code := range sortedKeys(m.channels) {
		records = append(records, cloneChannel(m.channels[code]))
	}
	m.mu.RUnlock()
	for i, record := range records {
		hydrated, err := m.hydrate(ctx, record)
		if err != nil {
			return nil, err
		}
		records[i] = hydrated
	}
	return records, nil
}

func (m *MemoryChannelRepository) Save(ctx context.Context, channel *Channel) (*Channel, error) {
	copied := cloneChannel(channel)
	if copied.ID == uuid.Nil {
		copied.ID = identity.ChannelUUID(copied.Code)
	}
	m.mu.Lock()
	m.channels[copied.Code] = copied
	m.mu.Unlock()
	return m.hydrate(ctx, cloneChannel(copied))
}

func (m *MemoryChannelRepository) hydrate(ctx context.Context, channel *Channel) (*Channel, error) {
	if m.locales == nil || len(channel.Locales) > 0 {
		return channel, nil
	}
	locales, err := resolveLocales(ctx, m.locales, channel.LocaleCodes)
	if err != nil {
		return nil, err
	}
	channel.Locales = locales
	return channel, nil
}

func cloneChannel(src *Channel) *Channel {
	if src == nil {
		return nil
	}
	copied := *src
	copied.LocaleCodes = slices.Clone(src.LocaleCodes)
	copied.CurrencyCodes = slices.Clone(src.CurrencyCodes)
	copied.Locales = slices.Clone(src.Locales)
	return &copied
}

// MemoryAttributeRepository stores attributes by code.
type MemoryAttributeRepository struct {
	mu         sync.RWMutex
	attributes map[string]*Attribute
}

// NewMemoryAttributeRepository constructs the repository.
func NewMemoryAttributeRepository() *MemoryAttributeRepository {
	return &MemoryAttributeRepository{attributes: make(map[string]*Attribute)}
}

func (m *MemoryAttributeRepository) GetByCode(_ context.Context, code string) (*Attribute, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	attribute, ok := m.attributes[code]
	if !ok {
		return nil, &NotFoundError{Resource: "attribute", Key: code}
	}
	return cloneAttribute(attribute), nil
}

func (m *MemoryAttributeRepository) FindIdentifier(_ context.Context) (*Attribute, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, code := range sortedKeys(m.attributes) {
		if attribute := m.attributes[code]; attribute.Type == pimcatalog.AttributeTypeIdentifier {
			return cloneAttribute(attribute), nil
		}
	}
	return nil, pimcatalog.ErrIdentifierAttributeMissing
}

func (m *MemoryAttributeRepository) List(_ context.Context) ([]*Attribute, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Attribute, 0, len(m.attributes))
	for _, code := range sortedKeys(m.attributes) {
		out = append(out, cloneAttribute(m.attributes[code]))
	}
	return out, nil
}

func (m *MemoryAttributeRepository) Save(_ context.Context, attribute *Attribute) (*Attribute, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := cloneAttribute(attribute)
	if copied.ID == uuid.Nil {
		copied.ID = identity.AttributeUUID(copied.Code)
	}
	m.attributes[copied.Code] = copied
	return cloneAttribute(copied), nil
}

func cloneAttribute(src *Attribute) *Attribute {
	if src == nil {
		return nil
	}
	copied := *src
	copied.AvailableLocaleCodes = slices.Clone(src.AvailableLocaleCodes)
	return &copied
}

// MemoryFamilyRepository stores families with their requirements.
type MemoryFamilyRepository struct {
	mu       sync.RWMutex
	families map[string]*Family
	byID     map[uuid.UUID]string
}

// NewMemoryFamilyRepository constructs the repository.
func NewMemoryFamilyRepository() *MemoryFamilyRepository {
	return &MemoryFamilyRepository{
		families: make(map[string]*Family),
		byID:     make(map[uuid.UUID]string),
	}
}

func (m *MemoryFamilyRepository) GetByID(_ context.Context, id uuid.UUID) (*Family, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	code, ok := m.byID[id]
	if !ok {
		return nil, &NotFoundError{Resource: "family", Key: id.String()}
	}
	return cloneFamily(m.families[code]), nil
}

func (m *MemoryFamilyRepository) GetByCode(_ context.Context, code string) (*Family, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	family, ok := m.families[code]
	if !ok {
		return nil, &NotFoundError{Resource: "family", Key: code}
	}
	return cloneFamily(family), nil
}

func (m *MemoryFamilyRepository) List(_ context.Context) ([]*Family, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Family, 0, len(m.families))
	for _, code := range sortedKeys(m.families) {
		out = append(out, cloneFamily(m.families[code]))
	}
	return out, nil
}

func (m *MemoryFamilyRepository) Save(_ context.Context, family *Family) (*Family, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := cloneFamily(family)
	if copied.ID == uuid.Nil {
		copied.ID = identity.FamilyUUID(copied.Code)
	}
	for position, requirement := range copied.Requirements {
		requirement.FamilyID = copied.ID
		requirement.Position = position
		if requirement.Attribute != nil {
			requirement.AttributeID = requirement.Attribute.ID
		}
		if requirement.Channel != nil {
			requirement.ChannelID = requirement.Channel.ID
		}
		requirement.ID = identity.AttributeRequirementUUID(copied.ID, requirement.AttributeID, requirement.ChannelID)
	}
	m.families[copied.Code] = copied
	m.byID[copied.ID] = copied.Code
	return cloneFamily(copied), nil
}

func cloneFamily(src *Family) *Family {
	if src == nil {
		return nil
	}
	copied := *src
	copied.Requirements = make([]*AttributeRequirement, 0, len(src.Requirements))
	for _, requirement := range src.Requirements {
		if requirement == nil {
			continue
		}
		local := *requirement
		copied.Requirements = append(copied.Requirements, &local)
	}
	return &copied
}

// MemoryProductRepository stores products by identifier. Products saved with a
// family ID and no family are hydrated from the family repository.
type MemoryProductRepository struct {
	mu       sync.RWMutex
	products map[string]*Product
	families FamilyRepository
}

// NewMemoryProductRepository constructs the repository.
func NewMemoryProductRepository(families FamilyRepository) *MemoryProductRepository {
	return &MemoryProductRepository{
		products: make(map[string]*Product),
		families: families,
	}
}

func (m *MemoryProductRepository) GetByIdentifier(ctx context.Context, identifier string) (*Product, error) {
	m.mu.RLock()
	product, ok := m.products[identifier]
	m.mu.RUnlock()
	if !ok {
		return nil, &NotFoundError{Resource: "product", Key: identifier}
	}
	return m.hydrate(ctx, cloneProduct(product))
}

func (m *MemoryProductRepository) List(ctx context.Context) ([]*Product, error) {
	m.mu.RLock()
	identifiers := sortedKeys(m.products)
	m.mu.RUnlock()
	return m.ListByIdentifiers(ctx, identifiers)
}

func (m *MemoryProductRepository) ListByIdentifiers(ctx context.Context, identifiers []string) ([]*Product, error) {
	m.mu.RLock()
	records := make([]*Product, 0, len(identifiers))
	for _, identifier := range identifiers {
		if product, ok := m.products[identifier]; ok {
			records = append(records, cloneProduct(product))
		}
	}
	m.mu.RUnlock()
	for i, record := range records {
		hydrated, err := m.hydrate(ctx, record)
		if err != nil {
			return nil, err
		}
		records[i] = hydrated
	}
	return records, nil
}

func (m *MemoryProductRepository) Save(ctx context.Context, product *Product) (*Product, error) {
	copied := cloneProduct(product)
	if copied.ID == uuid.Nil {
		copied.ID = identity.ProductUUID(copied.Identifier)
	}
	if copied.Family != nil {
		familyID := copied.Family.ID
		copied.FamilyID = &familyID
	}
	m.mu.Lock()
	m.products[copied.Identifier] = copied
	m.mu.Unlock()
	return m.hydrate(ctx, cloneProduct(copied))
}

func (m *MemoryProductRepository) hydrate(ctx context.Context, product *Product) (*Product, error) {
	if product.Family != nil || product.FamilyID == nil || m.families == nil {
		return product, nil
	}
	family, err := m.families.GetByID(ctx, *product.FamilyID)
	if err != nil {
		return nil, err
	}
	product.Family = family
	return product, nil
}

func cloneProduct(src *Product) *Product {
	if src == nil {
		return nil
	}
	copied := *src
	copied.Categories = slices.Clone(src.Categories)
	copied.Groups = slices.Clone(src.Groups)
	copied.Values = cloneValues(src.Values)
	if src.FamilyID != nil {
		familyID := *src.FamilyID
		copied.FamilyID = &familyID
	}
	return &copied
}

// MemoryProductModelRepository stores product models by code.
type MemoryProductModelRepository struct {
	mu     sync.RWMutex
	models map[string]*ProductModel
}

// NewMemoryProductModelRepository constructs the repository.
func NewMemoryProductModelRepository() *MemoryProductModelRepository {
	return &MemoryProductModelRepository{models: make(map[string]*ProductModel)}
}

func (m *MemoryProductModelRepository) GetByCode(_ context.Context, code string) (*ProductModel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	model, ok := m.models[code]
	if !ok {
		return nil, &NotFoundError{Resource: "product_model", Key: code}
	}
	return cloneProductModel(model), nil
}

func (m *MemoryProductModelRepository) List(ctx context.Context) ([]*ProductModel, error) {
	m.mu.RLock()
	codes := sortedKeys(m.models)
	m.mu.RUnlock()
	return m.ListByCodes(ctx, codes)
}

func (m *MemoryProductModelRepository) ListByCodes(_ context.Context, codes []string) ([]*ProductModel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*ProductModel, 0, len(codes))
	for _, code := range codes {
		if model, ok := m.models[code]; ok {
			out = append(out, cloneProductModel(model))
		}
	}
	return out, nil
}

func (m *MemoryProductModelRepository) Save(_ context.Context, model *ProductModel) (*ProductModel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := cloneProductModel(model)
	if copied.ID == uuid.Nil {
		copied.ID = identity.ProductModelUUID(copied.Code)
	}
	m.models[copied.Code] = copied
	return cloneProductModel(copied), nil
}

func cloneProductModel(src *ProductModel) *ProductModel {
	if src == nil {
		return nil
	}
	copied := *src
	copied.Categories = slices.Clone(src.Categories)
	copied.Values = cloneValues(src.Values)
	return &copied
}

// MemoryFileInfoRepository stores file infos by key.
type MemoryFileInfoRepository struct {
	mu    sync.RWMutex
	files map[string]*FileInfo
}

// NewMemoryFileInfoRepository constructs the repository.
func NewMemoryFileInfoRepository() *MemoryFileInfoRepository {
	return &MemoryFileInfoRepository{files: make(map[string]*FileInfo)}
}

func (m *MemoryFileInfoRepository) GetByKey(_ context.Context, key string) (*FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	info, ok := m.files[key]
	if !ok {
		return nil, &NotFoundError{Resource: "file_info", Key: key}
	}
	copied := *info
	return &copied, nil
}

func (m *MemoryFileInfoRepository) Save(_ context.Context, info *FileInfo) (*FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *info
	if copied.ID == uuid.Nil {
		copied.ID = identity.FileInfoUUID(copied.Key)
	}
	m.files[copied.Key] = &copied
	result := copied
	return &result, nil
}

// MemoryCompletenessRepository stores completeness records per product.
type MemoryCompletenessRepository struct {
	mu      sync.RWMutex
	records map[uuid.UUID][]*CompletenessRecord
}

// NewMemoryCompletenessRepository constructs the repository.
func NewMemoryCompletenessRepository() *MemoryCompletenessRepository {
	return &MemoryCompletenessRepository{records: make(map[uuid.UUID][]*CompletenessRecord)}
}

func (m *MemoryCompletenessRepository) SaveForProduct(_ context.Context, productID uuid.UUID, records []*CompletenessRecord) error {
	rows := make([]*CompletenessRecord, 0, len(records))
	for _, record := range records {
		if record == nil {
			continue
		}
		row := *record
		row.ProductID = productID
		row.ID = identity.CompletenessUUID(productID, row.ChannelCode, row.LocaleCode)
		row.MissingAttributeCodes = slices.Clone(record.MissingAttributeCodes)
		rows = append(rows, &row)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[productID] = rows
	return nil
}

func (m *MemoryCompletenessRepository) ListForProduct(_ context.Context, productID uuid.UUID) ([]*CompletenessRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stored := m.records[productID]
	out := make([]*CompletenessRecord, 0, len(stored))
	for _, record := range stored {
		copied := *record
		copied.MissingAttributeCodes = slices.Clone(record.MissingAttributeCodes)
		out = append(out, &copied)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ChannelCode != out[j].ChannelCode {
			return out[i].ChannelCode < out[j].ChannelCode
		}
		return out[i].LocaleCode < out[j].LocaleCode
	})
	return out, nil
}

func cloneValues(src Values) Values {
	if src == nil {
		return nil
	}
	out := make(Values, 0, len(src))
	for _, value := range src {
		if value == nil {
			continue
		}
		copied := *value
		out = append(out, &copied)
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
