package catalog

import pimcatalog "github.com/goliatone/go-pim/catalog"

type (
	Locale               = pimcatalog.Locale
	Channel              = pimcatalog.Channel
	Attribute            = pimcatalog.Attribute
	AttributeType        = pimcatalog.AttributeType
	Family               = pimcatalog.Family
	AttributeRequirement = pimcatalog.AttributeRequirement
	Product              = pimcatalog.Product
	ProductModel         = pimcatalog.ProductModel
	FileInfo             = pimcatalog.FileInfo
	CompletenessRecord   = pimcatalog.CompletenessRecord
	EntityWithValues     = pimcatalog.EntityWithValues
	EntityKind           = pimcatalog.EntityKind
	Value                = pimcatalog.Value
	Values               = pimcatalog.Values
	NotFoundError        = pimcatalog.NotFoundError
)
