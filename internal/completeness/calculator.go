package completeness

import "github.com/goliatone/go-pim/catalog"

// Calculator computes product completeness per channel and locale.
type Calculator interface {
	Calculate(product *catalog.Product) []*catalog.Completeness
}

type calculator struct {
	required   RequiredValueCollectionFactory
	incomplete IncompleteValueCollectionFactory
}

// NewCalculator wires a calculator with its value collection factories. Nil
// factories fall back to the defaults.
func NewCalculator(required RequiredValueCollectionFactory, incomplete IncompleteValueCollectionFactory) Calculator {
	if required == nil {
		required = NewRequiredValueCollectionFactory()
	}
	if incomplete == nil {
		incomplete = NewIncompleteValueCollectionFactory()
	}
	return &calculator{
		required:   required,
		incomplete: incomplete,
	}
}

// Calculate returns one record per channel/locale pair that has at least one
// required value, ordered by channel then locale. Products without a family
// yield no records.
func (c *calculator) Calculate(product *catalog.Product) []*catalog.Completeness {
	out := []*catalog.Completeness{}
	if product == nil || product.Family == nil {
		return out
	}
	family := product.Family

	for _, channel := range channelsOf(family) {
		requiredValues := c.required.ForChannel(family, channel)
		for _, locale := range channel.ActivatedLocales() {
			if locale == nil {
				continue
			}
			pairRequired := requiredValues.FilterByChannelAndLocale(channel, locale)
			requiredCount := pairRequired.Count()
			if requiredCount == 0 {
				continue
			}
			incomplete := c.incomplete.ForChannelAndLocale(pairRequired, channel, locale, product)
			out = append(out, catalog.NewCompleteness(
				product,
				channel,
				locale,
				requiredCount,
				incomplete.Count(),
				incomplete.Attributes(),
			))
		}
	}
	return out
}

// channelsOf groups the family requirements by channel in first-seen order.
func channelsOf(family *catalog.Family) []*catalog.Channel {
	seen := map[string]struct{}{}
	channels := []*catalog.Channel{}
	for _, requirement := range family.AttributeRequirements() {
		if requirement == nil || requirement.Channel == nil {
			continue
		}
		code := requirement.Channel.Code
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		channels = append(channels, requirement.Channel)
	}
	return channels
}
