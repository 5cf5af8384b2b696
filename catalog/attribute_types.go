package catalog

// AttributeType identifies how an attribute stores and validates its values.
type AttributeType string

const (
	AttributeTypeIdentifier      AttributeType = "pim_catalog_identifier"
	AttributeTypeText            AttributeType = "pim_catalog_text"
	AttributeTypeTextarea        AttributeType = "pim_catalog_textarea"
	AttributeTypeNumber          AttributeType = "pim_catalog_number"
	AttributeTypeBoolean         AttributeType = "pim_catalog_boolean"
	AttributeTypeDate            AttributeType = "pim_catalog_date"
	AttributeTypeSimpleSelect    AttributeType = "pim_catalog_simpleselect"
	AttributeTypeMultiSelect     AttributeType = "pim_catalog_multiselect"
	AttributeTypePriceCollection AttributeType = "pim_catalog_price_collection"
	AttributeTypeMetric          AttributeType = "pim_catalog_metric"
	AttributeTypeFile            AttributeType = "pim_catalog_file"
	AttributeTypeImage           AttributeType = "pim_catalog_image"
)

// IsMedia reports whether values of the type reference stored files.
func (t AttributeType) IsMedia() bool {
	return t == AttributeTypeFile || t == AttributeTypeImage
}

// IsValid reports whether the type is one of the known attribute types.
func (t AttributeType) IsValid() bool {
	switch t {
	case AttributeTypeIdentifier,
		AttributeTypeText,
		AttributeTypeTextarea,
		AttributeTypeNumber,
		AttributeTypeBoolean,
		AttributeTypeDate,
		AttributeTypeSimpleSelect,
		AttributeTypeMultiSelect,
		AttributeTypePriceCollection,
		AttributeTypeMetric,
		AttributeTypeFile,
		AttributeTypeImage:
		return true
	default:
		return false
	}
}
