package catalog

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	pimcatalog "github.com/goliatone/go-pim/catalog"
	"github.com/goliatone/go-pim/internal/logging"
	"github.com/goliatone/go-pim/pkg/interfaces"
)

// Service maintains the catalog structure (locales, channels, attributes,
// families) and the entities carrying values.
type Service interface {
	SaveLocale(ctx context.Context, req SaveLocaleRequest) (*Locale, error)
	SaveChannel(ctx context.Context, req SaveChannelRequest) (*Channel, error)
	SaveAttribute(ctx context.Context, req SaveAttributeRequest) (*Attribute, error)
	SaveFamily(ctx context.Context, req SaveFamilyRequest) (*Family, error)
	SaveProduct(ctx context.Context, req SaveProductRequest) (*Product, error)
	SaveProductModel(ctx context.Context, req SaveProductModelRequest) (*ProductModel, error)
	SaveFileInfo(ctx context.Context, req SaveFileInfoRequest) (*FileInfo, error)
}

var (
	codePattern     = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
	localePattern   = regexp.MustCompile(`^[a-z]{2,3}(_[A-Z][A-Za-z]{1,3})?$`)
	currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)
)

// SaveLocaleRequest creates or replaces a locale.
type SaveLocaleRequest struct {
	Code      string `yaml:"code"`
	Activated *bool  `yaml:"activated"`
}

func (r SaveLocaleRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Code, validation.Required, validation.Match(localePattern).
			ErrorObject(validation.NewError("pim.catalog.locale.code_invalid", "code must look like en_US"))),
	)
}

// SaveChannelRequest creates or replaces a channel.
type SaveChannelRequest struct {
	Code       string   `yaml:"code"`
	Label      string   `yaml:"label"`
	Locales    []string `yaml:"locales"`
	Currencies []string `yaml:"currencies"`
}

func (r SaveChannelRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Code, validation.Required, validation.Match(codePattern)),
		validation.Field(&r.Locales,
			validation.Required.ErrorObject(validation.NewError("pim.catalog.channel.locales_required", "a channel needs at least one locale")),
			validation.Each(validation.Required, validation.Match(localePattern))),
		validation.Field(&r.Currencies, validation.Each(validation.Required, validation.Match(currencyPattern).
			ErrorObject(validation.NewError("pim.catalog.channel.currency_invalid", "currencies are ISO 4217 codes")))),
	)
}

// SaveAttributeRequest creates or replaces an attribute.
type SaveAttributeRequest struct {
	Code             string        `yaml:"code"`
	Type             AttributeType `yaml:"type"`
	Localizable      bool          `yaml:"localizable"`
	Scopable         bool          `yaml:"scopable"`
	AvailableLocales []string      `yaml:"available_locales"`
}

func (r SaveAttributeRequest) Validate() error {
	errs := validation.Errors{}
	if err := validation.Validate(r.Code, validation.Required, validation.Match(codePattern)); err != nil {
		errs["code"] = err
	}
	if !r.Type.IsValid() {
		errs["type"] = validation.NewError("pim.catalog.attribute.type_invalid", fmt.Sprintf("unknown attribute type %q", r.Type))
	}
	if r.Type == pimcatalog.AttributeTypeIdentifier && (r.Localizable || r.Scopable) {
		errs["type"] = validation.NewError("pim.catalog.attribute.identifier_global", "the identifier attribute can be neither localizable nor scopable")
	}
	if r.Type == pimcatalog.AttributeTypeIdentifier && len(r.AvailableLocales) > 0 {
		errs["available_locales"] = validation.NewError("pim.catalog.attribute.identifier_locale_specific", "the identifier attribute cannot be locale specific")
	}
	return errs.Filter()
}

// RequirementInput marks an attribute as required, or optional, on a channel.
type RequirementInput struct {
	Attribute string `yaml:"attribute"`
	Channel   string `yaml:"channel"`
	Required  *bool  `yaml:"required"`
}

func (r RequirementInput) isRequired() bool {
	return r.Required == nil || *r.Required
}

// SaveFamilyRequest creates or replaces a family and its requirements.
type SaveFamilyRequest struct {
	Code             string             `yaml:"code"`
	AttributeAsLabel string             `yaml:"attribute_as_label"`
	Requirements     []RequirementInput `yaml:"requirements"`
}

func (r SaveFamilyRequest) Validate() error {
	errs := validation.Errors{}
	if strings.TrimSpace(r.Code) == "" {
		errs["code"] = validation.NewError("pim.catalog.family.code_required", pimcatalog.ErrFamilyCodeRequired.Error())
	} else if err := validation.Validate(r.Code, validation.Match(codePattern)); err != nil {
		errs["code"] = err
	}
	for _, requirement := range r.Requirements {
		if strings.TrimSpace(requirement.Attribute) == "" || strings.TrimSpace(requirement.Channel) == "" {
			errs["requirements"] = validation.NewError("pim.catalog.family.requirement_invalid", "requirements need an attribute and a channel")
			break
		}
	}
	return errs.Filter()
}

// SaveProductRequest creates or replaces a product.
type SaveProductRequest struct {
	Identifier string   `yaml:"identifier"`
	Family     string   `yaml:"family"`
	Parent     string   `yaml:"parent"`
	Enabled    *bool    `yaml:"enabled"`
	Categories []string `yaml:"categories"`
	Groups     []string `yaml:"groups"`
	Values     Values   `yaml:"values"`
}

func (r SaveProductRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Identifier, validation.Required.
			ErrorObject(validation.NewError("pim.catalog.product.identifier_required", pimcatalog.ErrProductIdentifierRequired.Error()))),
		validation.Field(&r.Categories, validation.Each(validation.Required)),
		validation.Field(&r.Groups, validation.Each(validation.Required)),
	)
}

// SaveProductModelRequest creates or replaces a product model.
type SaveProductModelRequest struct {
	Code          string   `yaml:"code"`
	FamilyVariant string   `yaml:"family_variant"`
	Parent        string   `yaml:"parent"`
	Categories    []string `yaml:"categories"`
	Values        Values   `yaml:"values"`
}

func (r SaveProductModelRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Code, validation.Required),
		validation.Field(&r.FamilyVariant, validation.Required),
		validation.Field(&r.Categories, validation.Each(validation.Required)),
	)
}

// SaveFileInfoRequest registers a stored media file.
type SaveFileInfoRequest struct {
	Key              string `yaml:"key"`
	OriginalFilename string `yaml:"original_filename"`
	MimeType         string `yaml:"mime_type"`
	Size             int64  `yaml:"size"`
	Storage          string `yaml:"storage"`
}

func (r SaveFileInfoRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Key, validation.Required),
		validation.Field(&r.OriginalFilename, validation.Required),
		validation.Field(&r.Storage, validation.Required),
		validation.Field(&r.Size, validation.Min(int64(0))),
	)
}

// Repositories groups the catalog stores.
type Repositories struct {
	Locales       LocaleRepository
	Channels      ChannelRepository
	Attributes    AttributeRepository
	Families      FamilyRepository
	Products      ProductRepository
	ProductModels ProductModelRepository
	FileInfos     FileInfoRepository
	Completeness  CompletenessRepository
}

// NewMemoryRepositories wires in-memory stores.
func NewMemoryRepositories() Repositories {
	locales := NewMemoryLocaleRepository()
	families := NewMemoryFamilyRepository()
	return Repositories{
		Locales:       locales,
		Channels:      NewMemoryChannelRepository(locales),
		Attributes:    NewMemoryAttributeRepository(),
		Families:      families,
		Products:      NewMemoryProductRepository(families),
		ProductModels: NewMemoryProductModelRepository(),
		FileInfos:     NewMemoryFileInfoRepository(),
		Completeness:  NewMemoryCompletenessRepository(),
	}
}

// ServiceOption configures the service.
type ServiceOption func(*service)

// WithLogger sets the service logger.
func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService constructs the catalog service.
func NewService(repos Repositories, opts ...ServiceOption) Service {
	s := &service{
		repos:  repos,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

type service struct {
	repos  Repositories
	logger interfaces.Logger
}

func (s *service) SaveLocale(ctx context.Context, req SaveLocaleRequest) (*Locale, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	activated := req.Activated == nil || *req.Activated
	saved, err := s.repos.Locales.Save(ctx, &Locale{Code: strings.TrimSpace(req.Code), Activated: activated})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("catalog.locale.saved", "locale", saved.Code, "activated", saved.Activated)
	return saved, nil
}

func (s *service) SaveChannel(ctx context.Context, req SaveChannelRequest) (*Channel, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	for _, code := range req.Locales {
		if _, err := s.repos.Locales.GetByCode(ctx, code); err != nil {
			if pimcatalog.IsNotFound(err) {
				return nil, fmt.Errorf("%w: %s", pimcatalog.ErrUnknownLocale, code)
			}
			return nil, err
		}
	}
	saved, err := s.repos.Channels.Save(ctx, &Channel{
		Code:          strings.TrimSpace(req.Code),
		Label:         strings.TrimSpace(req.Label),
		LocaleCodes:   slices.Clone(req.Locales),
		CurrencyCodes: slices.Clone(req.Currencies),
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("catalog.channel.saved", "channel", saved.Code, "locales", saved.GetLocaleCodes())
	return saved, nil
}

func (s *service) SaveAttribute(ctx context.Context, req SaveAttributeRequest) (*Attribute, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.Type == pimcatalog.AttributeTypeIdentifier {
		existing, err := s.repos.Attributes.FindIdentifier(ctx)
		switch {
		case err == nil && existing.Code != req.Code:
			return nil, validation.Errors{
				"type": validation.NewError("pim.catalog.attribute.identifier_unique", fmt.Sprintf("identifier attribute already defined as %q", existing.Code)),
			}
		case err != nil && !errors.Is(err, pimcatalog.ErrIdentifierAttributeMissing):
			return nil, err
		}
	}
	for _, code := range req.AvailableLocales {
		if _, err := s.repos.Locales.GetByCode(ctx, code); err != nil {
			if pimcatalog.IsNotFound(err) {
				return nil, fmt.Errorf("%w: %s", pimcatalog.ErrUnknownLocale, code)
			}
			return nil, err
		}
	}
	saved, err := s.repos.Attributes.Save(ctx, &Attribute{
		Code:                 strings.TrimSpace(req.Code),
		Type:                 req.Type,
		Localizable:          req.Localizable,
		Scopable:             req.Scopable,
		AvailableLocaleCodes: slices.Clone(req.AvailableLocales),
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("catalog.attribute.saved", "attribute", saved.Code, "type", saved.Type)
	return saved, nil
}

// SaveFamily stores the family. The identifier attribute is always required:
// a required identifier requirement is added for every channel of the catalog.
func (s *service) SaveFamily(ctx context.Context, req SaveFamilyRequest) (*Family, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	attributes := map[string]*Attribute{}
	channels := map[string]*Channel{}
	requirements := make([]*AttributeRequirement, 0, len(req.Requirements))
	index := map[string]*AttributeRequirement{}

	for _, input := range req.Requirements {
		attribute, err := s.attribute(ctx, attributes, input.Attribute)
		if err != nil {
			return nil, err
		}
		channel, err := s.channel(ctx, channels, input.Channel)
		if err != nil {
			return nil, err
		}
		key := attribute.Code + "|" + channel.Code
		if existing, ok := index[key]; ok {
			existing.Required = input.isRequired()
			continue
		}
		requirement := &AttributeRequirement{Attribute: attribute, Channel: channel, Required: input.isRequired()}
		index[key] = requirement
		requirements = append(requirements, requirement)
	}

	identifier, err := s.repos.Attributes.FindIdentifier(ctx)
	switch {
	case err == nil:
		allChannels, err := s.repos.Channels.List(ctx)
		if err != nil {
			return nil, err
		}
		for _, channel := range allChannels {
			key := identifier.Code + "|" + channel.Code
			if existing, ok := index[key]; ok {
				existing.Required = true
				continue
			}
			requirement := &AttributeRequirement{Attribute: identifier, Channel: channel, Required: true}
			index[key] = requirement
			requirements = append(requirements, requirement)
		}
	case !errors.Is(err, pimcatalog.ErrIdentifierAttributeMissing):
		return nil, err
	}

	if label := strings.TrimSpace(req.AttributeAsLabel); label != "" {
		if _, err := s.attribute(ctx, attributes, label); err != nil {
			return nil, err
		}
	}

	saved, err := s.repos.Families.Save(ctx, &Family{
		Code:             strings.TrimSpace(req.Code),
		AttributeAsLabel: strings.TrimSpace(req.AttributeAsLabel),
		Requirements:     requirements,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("catalog.family.saved", "family", saved.Code, "requirements", len(saved.Requirements))
	return saved, nil
}

func (s *service) SaveProduct(ctx context.Context, req SaveProductRequest) (*Product, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	identifier := strings.TrimSpace(req.Identifier)
	product := &Product{
		Identifier: identifier,
		ParentCode: strings.TrimSpace(req.Parent),
		Enabled:    req.Enabled == nil || *req.Enabled,
		Categories: slices.Clone(req.Categories),
		Groups:     slices.Clone(req.Groups),
		Values:     cloneValues(req.Values),
	}
	if code := strings.TrimSpace(req.Family); code != "" {
		family, err := s.repos.Families.GetByCode(ctx, code)
		if err != nil {
			if pimcatalog.IsNotFound(err) {
				return nil, fmt.Errorf("%w: %s", pimcatalog.ErrUnknownFamily, code)
			}
			return nil, err
		}
		product.Family = family
		product.FamilyID = &family.ID
	}
	if err := s.checkValues(ctx, product.Values); err != nil {
		return nil, err
	}

	idAttribute, err := s.repos.Attributes.FindIdentifier(ctx)
	switch {
	case err == nil:
		if current := product.Values.Get(idAttribute.Code, "", ""); current == nil || current.IsEmpty() {
			product.Values = product.Values.Add(&Value{Attribute: idAttribute.Code, Data: identifier})
		}
	case !errors.Is(err, pimcatalog.ErrIdentifierAttributeMissing):
		return nil, err
	}

	saved, err := s.repos.Products.Save(ctx, product)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("catalog.product.saved", "product", saved.Identifier, "family", saved.FamilyCode(), "values", saved.Values.Len())
	return saved, nil
}

func (s *service) SaveProductModel(ctx context.Context, req SaveProductModelRequest) (*ProductModel, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	model := &ProductModel{
		Code:          strings.TrimSpace(req.Code),
		FamilyVariant: strings.TrimSpace(req.FamilyVariant),
		ParentCode:    strings.TrimSpace(req.Parent),
		Categories:    slices.Clone(req.Categories),
		Values:        cloneValues(req.Values),
	}
	if err := s.checkValues(ctx, model.Values); err != nil {
		return nil, err
	}
	saved, err := s.repos.ProductModels.Save(ctx, model)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("catalog.product_model.saved", "product_model", saved.Code, "values", saved.Values.Len())
	return saved, nil
}

func (s *service) SaveFileInfo(ctx context.Context, req SaveFileInfoRequest) (*FileInfo, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.repos.FileInfos.Save(ctx, &FileInfo{
		Key:              strings.TrimSpace(req.Key),
		OriginalFilename: strings.TrimSpace(req.OriginalFilename),
		MimeType:         strings.TrimSpace(req.MimeType),
		Size:             req.Size,
		Storage:          strings.TrimSpace(req.Storage),
	})
}

// checkValues makes sure every value targets a known attribute and carries a
// scope and a locale exactly when the attribute is scopable and localizable.
func (s *service) checkValues(ctx context.Context, values Values) error {
	attributes := map[string]*Attribute{}
	channels := map[string]*Channel{}
	for _, value := range values {
		if value == nil {
			continue
		}
		attribute, err := s.attribute(ctx, attributes, value.Attribute)
		if err != nil {
			return err
		}
		if attribute.Scopable != (value.Scope != "") {
			return fmt.Errorf("%w: %s scope %q", pimcatalog.ErrInvalidValue, attribute.Code, value.Scope)
		}
		if attribute.Localizable != (value.Locale != "") {
			return fmt.Errorf("%w: %s locale %q", pimcatalog.ErrInvalidValue, attribute.Code, value.Locale)
		}
		if value.Locale != "" && !attribute.IsAvailableInLocale(value.Locale) {
			return fmt.Errorf("%w: %s is not available in %s", pimcatalog.ErrInvalidValue, attribute.Code, value.Locale)
		}
		if value.Scope != "" {
			if _, err := s.channel(ctx, channels, value.Scope); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *service) attribute(ctx context.Context, seen map[string]*Attribute, code string) (*Attribute, error) {
	code = strings.TrimSpace(code)
	if attribute, ok := seen[code]; ok {
		return attribute, nil
	}
	attribute, err := s.repos.Attributes.GetByCode(ctx, code)
	if err != nil {
		if pimcatalog.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s", pimcatalog.ErrUnknownAttribute, code)
		}
		return nil, err
	}
	seen[code] = attribute
	return attribute, nil
}

func (s *service) channel(ctx context.Context, seen map[string]*Channel, code string) (*Channel, error) {
	code = strings.TrimSpace(code)
	if channel, ok := seen[code]; ok {
		return channel, nil
	}
	channel, err := s.repos.Channels.GetByCode(ctx, code)
	if err != nil {
		if pimcatalog.IsNotFound(err) {
			return nil, fmt.Errorf("%w: %s", pimcatalog.ErrUnknownChannel, code)
		}
		return nil, err
	}
	seen[code] = channel
	return channel, nil
}
