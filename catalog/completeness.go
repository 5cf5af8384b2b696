package catalog

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Completeness reports how many of the values required on a channel/locale
// pair a product fills.
type Completeness struct {
	Product           *Product
	Channel           *Channel
	Locale            *Locale
	RequiredCount     int
	MissingCount      int
	Ratio             int
	MissingAttributes []*Attribute
}

// NewCompleteness builds a completeness record and derives its ratio.
func NewCompleteness(product *Product, channel *Channel, locale *Locale, requiredCount, missingCount int, missing []*Attribute) *Completeness {
	return &Completeness{
		Product:           product,
		Channel:           channel,
		Locale:            locale,
		RequiredCount:     requiredCount,
		MissingCount:      missingCount,
		Ratio:             CompletenessRatio(requiredCount, missingCount),
		MissingAttributes: missing,
	}
}

// CompletenessRatio returns round(100 * (required - missing) / required).
// A zero required count yields 0; callers never emit such records.
func CompletenessRatio(requiredCount, missingCount int) int {
	if requiredCount <= 0 {
		return 0
	}
	if missingCount <= 0 {
		return 100
	}
	if missingCount >= requiredCount {
		return 0
	}
	return int(math.Round(100 * float64(requiredCount-missingCount) / float64(requiredCount)))
}

// IsComplete reports whether every required value is filled.
func (c *Completeness) IsComplete() bool {
	return c != nil && c.MissingCount == 0
}

// MissingAttributeCodes returns the codes of the missing attributes.
func (c *Completeness) MissingAttributeCodes() []string {
	if c == nil {
		return nil
	}
	codes := make([]string, 0, len(c.MissingAttributes))
	for _, attribute := range c.MissingAttributes {
		if attribute != nil {
			codes = append(codes, attribute.Code)
		}
	}
	return codes
}

// CompletenessRecord is the persisted form of a completeness, keyed by product,
// channel and locale codes.
type CompletenessRecord struct {
	bun.BaseModel `bun:"table:pim_completenesses,alias:pc"`

	ID                    uuid.UUID `bun:",pk,type:uuid"                      json:"id"`
	ProductID             uuid.UUID `bun:"product_id,notnull,type:uuid"       json:"product_id"`
	ChannelCode           string    `bun:"channel_code,notnull"               json:"channel"`
	LocaleCode            string    `bun:"locale_code,notnull"                json:"locale"`
	RequiredCount         int       `bun:"required_count,notnull"             json:"required"`
	MissingCount          int       `bun:"missing_count,notnull"              json:"missing"`
	Ratio                 int       `bun:"ratio,notnull"                      json:"ratio"`
	MissingAttributeCodes []string  `bun:"missing_attribute_codes,type:jsonb" json:"missing_attributes,omitempty"`
	CalculatedAt          time.Time `bun:"calculated_at,nullzero,default:current_timestamp" json:"calculated_at"`
}

// Record flattens the completeness for storage.
func (c *Completeness) Record() *CompletenessRecord {
	if c == nil {
		return nil
	}
	record := &CompletenessRecord{
		RequiredCount:         c.RequiredCount,
		MissingCount:          c.MissingCount,
		Ratio:                 c.Ratio,
		MissingAttributeCodes: c.MissingAttributeCodes(),
	}
	if c.Product != nil {
		record.ProductID = c.Product.ID
	}
	if c.Channel != nil {
		record.ChannelCode = c.Channel.Code
	}
	if c.Locale != nil {
		record.LocaleCode = c.Locale.Code
	}
	return record
}
