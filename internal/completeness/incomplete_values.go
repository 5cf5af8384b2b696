package completeness

import (
	"strings"

	"github.com/goliatone/go-pim/catalog"
)

// IncompleteValueCollection holds the required values a product does not fill.
type IncompleteValueCollection struct {
	values []RequiredValue
}

// NewIncompleteValueCollection wraps the missing required values.
func NewIncompleteValueCollection(values ...RequiredValue) *IncompleteValueCollection {
	return &IncompleteValueCollection{values: values}
}

// Count returns the number of missing values.
func (c *IncompleteValueCollection) Count() int {
	if c == nil {
		return 0
	}
	return len(c.values)
}

// Values returns the missing required values in order.
func (c *IncompleteValueCollection) Values() []RequiredValue {
	if c == nil {
		return nil
	}
	out := make([]RequiredValue, len(c.values))
	copy(out, c.values)
	return out
}

// Attributes returns the distinct attributes of the missing values.
func (c *IncompleteValueCollection) Attributes() []*catalog.Attribute {
	if c == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(c.values))
	out := make([]*catalog.Attribute, 0, len(c.values))
	for _, value := range c.values {
		code := value.AttributeCode()
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, value.Attribute)
	}
	return out
}

// IncompleteValueCollectionFactory computes required - present for a product.
type IncompleteValueCollectionFactory interface {
	ForChannelAndLocale(required *RequiredValueCollection, channel *catalog.Channel, locale *catalog.Locale, product *catalog.Product) *IncompleteValueCollection
}

// ValueCompleteChecker decides whether a product value fulfils an obligation.
type ValueCompleteChecker interface {
	Supports(required RequiredValue) bool
	IsComplete(value *catalog.Value, channel *catalog.Channel, locale *catalog.Locale) bool
}

// NewIncompleteValueCollectionFactory builds the default factory. Custom checkers
// take precedence over the built-in price and metric checkers; values no checker
// supports are complete when not empty.
func NewIncompleteValueCollectionFactory(checkers ...ValueCompleteChecker) IncompleteValueCollectionFactory {
	chain := make([]ValueCompleteChecker, 0, len(checkers)+2)
	for _, checker := range checkers {
		if checker != nil {
			chain = append(chain, checker)
		}
	}
	chain = append(chain, priceCollectionChecker{}, metricChecker{})
	return &incompleteValueCollectionFactory{checkers: chain}
}

type incompleteValueCollectionFactory struct {
	checkers []ValueCompleteChecker
}

func (f *incompleteValueCollectionFactory) ForChannelAndLocale(required *RequiredValueCollection, channel *catalog.Channel, locale *catalog.Locale, product *catalog.Product) *IncompleteValueCollection {
	if required == nil || channel == nil || locale == nil {
		return NewIncompleteValueCollection()
	}
	var values catalog.Values
	if product != nil {
		values = product.Values
	}
	missing := make([]RequiredValue, 0)
	for _, obligation := range required.Values() {
		if !obligation.Matches(channel.Code, locale.Code) {
			continue
		}
		value := values.Get(obligation.AttributeCode(), obligation.Scope, obligation.Locale)
		if !f.isComplete(obligation, value, channel, locale) {
			missing = append(missing, obligation)
		}
	}
	return NewIncompleteValueCollection(missing...)
}

func (f *incompleteValueCollectionFactory) isComplete(obligation RequiredValue, value *catalog.Value, channel *catalog.Channel, locale *catalog.Locale) bool {
	if value.IsEmpty() {
		return false
	}
	for _, checker := range f.checkers {
		if checker.Supports(obligation) {
			return checker.IsComplete(value, channel, locale)
		}
	}
	return true
}

// priceCollectionChecker requires an amount for every channel currency.
type priceCollectionChecker struct{}

func (priceCollectionChecker) Supports(required RequiredValue) bool {
	return required.Attribute != nil && required.Attribute.Type == catalog.AttributeTypePriceCollection
}

func (priceCollectionChecker) IsComplete(value *catalog.Value, channel *catalog.Channel, _ *catalog.Locale) bool {
	prices, err := catalog.Prices(value.Data)
	if err != nil {
		return false
	}
	filled := make(map[string]struct{}, len(prices))
	for _, price := range prices {
		if price.Amount != nil && strings.TrimSpace(*price.Amount) != "" {
			filled[price.Currency] = struct{}{}
		}
	}
	if len(channel.CurrencyCodes) == 0 {
		return len(filled) > 0
	}
	for _, currency := range channel.CurrencyCodes {
		if _, ok := filled[currency]; !ok {
			return false
		}
	}
	return true
}

// metricChecker requires an amount on metric values.
type metricChecker struct{}

func (metricChecker) Supports(required RequiredValue) bool {
	return required.Attribute != nil && required.Attribute.Type == catalog.AttributeTypeMetric
}

func (metricChecker) IsComplete(value *catalog.Value, _ *catalog.Channel, _ *catalog.Locale) bool {
	switch data := value.Data.(type) {
	case catalog.Metric:
		return data.Amount != nil
	case *catalog.Metric:
		return data != nil && data.Amount != nil
	case map[string]any:
		amount, ok := data["amount"]
		return ok && !catalog.IsEmptyData(amount)
	default:
		return false
	}
}
