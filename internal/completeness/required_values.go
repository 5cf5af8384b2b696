package completeness

import "github.com/goliatone/go-pim/catalog"

// RequiredValue is an obligation to fill an attribute for a scope and locale.
// Empty Scope or Locale means the attribute is not scopable or not localizable.
type RequiredValue struct {
	Attribute *catalog.Attribute
	Scope     string
	Locale    string
}

// AttributeCode returns the code of the required attribute.
func (r RequiredValue) AttributeCode() string {
	if r.Attribute == nil {
		return ""
	}
	return r.Attribute.Code
}

// Matches reports whether the obligation applies to the channel/locale pair.
func (r RequiredValue) Matches(channelCode, localeCode string) bool {
	if r.Scope != "" && r.Scope != channelCode {
		return false
	}
	if r.Locale != "" && r.Locale != localeCode {
		return false
	}
	return true
}

// RequiredValueCollection is an ordered set of required values.
type RequiredValueCollection struct {
	values []RequiredValue
	index  map[string]struct{}
}

// NewRequiredValueCollection builds a collection, dropping duplicates.
func NewRequiredValueCollection(values ...RequiredValue) *RequiredValueCollection {
	c := &RequiredValueCollection{index: make(map[string]struct{}, len(values))}
	for _, value := range values {
		c.add(value)
	}
	return c
}

func (c *RequiredValueCollection) add(value RequiredValue) {
	if value.Attribute == nil {
		return
	}
	key := catalog.ValueKey(value.Attribute.Code, value.Scope, value.Locale)
	if _, ok := c.index[key]; ok {
		return
	}
	c.index[key] = struct{}{}
	c.values = append(c.values, value)
}

// FilterByChannelAndLocale narrows the collection to the obligations that apply
// to the channel/locale pair.
func (c *RequiredValueCollection) FilterByChannelAndLocale(channel *catalog.Channel, locale *catalog.Locale) *RequiredValueCollection {
	filtered := NewRequiredValueCollection()
	if c == nil || channel == nil || locale == nil {
		return filtered
	}
	for _, value := range c.values {
		if value.Matches(channel.Code, locale.Code) {
			filtered.add(value)
		}
	}
	return filtered
}

// Count returns the number of required values.
func (c *RequiredValueCollection) Count() int {
	if c == nil {
		return 0
	}
	return len(c.values)
}

// Values returns the required values in insertion order.
func (c *RequiredValueCollection) Values() []RequiredValue {
	if c == nil {
		return nil
	}
	out := make([]RequiredValue, len(c.values))
	copy(out, c.values)
	return out
}

// RequiredValueCollectionFactory derives the obligations a family places on a channel.
type RequiredValueCollectionFactory interface {
	ForChannel(family *catalog.Family, channel *catalog.Channel) *RequiredValueCollection
}

// NewRequiredValueCollectionFactory returns the default factory.
func NewRequiredValueCollectionFactory() RequiredValueCollectionFactory {
	return requiredValueCollectionFactory{}
}

type requiredValueCollectionFactory struct{}

// ForChannel expands the required attributes of the channel into one obligation
// per locale for localizable attributes and tags scopable ones with the channel.
func (requiredValueCollectionFactory) ForChannel(family *catalog.Family, channel *catalog.Channel) *RequiredValueCollection {
	collection := NewRequiredValueCollection()
	if family == nil || channel == nil {
		return collection
	}
	locales := channel.ActivatedLocales()
	for _, requirement := range family.AttributeRequirements() {
		if requirement == nil || !requirement.Required || requirement.Attribute == nil {
			continue
		}
		if requirement.Channel == nil || requirement.Channel.Code != channel.Code {
			continue
		}
		attribute := requirement.Attribute
		scope := ""
		if attribute.Scopable {
			scope = channel.Code
		}
		if !attribute.Localizable {
			collection.add(RequiredValue{Attribute: attribute, Scope: scope})
			continue
		}
		for _, locale := range locales {
			if locale == nil || !attribute.IsAvailableInLocale(locale.Code) {
				continue
			}
			collection.add(RequiredValue{Attribute: attribute, Scope: scope, Locale: locale.Code})
		}
	}
	return collection
}
