package export

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/goliatone/go-pim/catalog"
	"github.com/goliatone/go-pim/internal/batch"
	"github.com/goliatone/go-pim/internal/logging"
	"github.com/goliatone/go-pim/internal/media"
	"github.com/goliatone/go-pim/internal/security"
	"github.com/goliatone/go-pim/pkg/interfaces"
)

// Selection aliases accepted in selected_properties.
const (
	SelectIdentifier = "identifier"
	SelectFamily     = "family"
)

const providerKey = "main"

// ChannelLookup resolves channels by code.
type ChannelLookup interface {
	GetByCode(ctx context.Context, code string) (*catalog.Channel, error)
}

// IdentifierLookup resolves the identifier attribute.
type IdentifierLookup interface {
	FindIdentifier(ctx context.Context) (*catalog.Attribute, error)
}

// Detacher releases processed entities from the unit of work that loaded them.
type Detacher interface {
	Detach(entity catalog.EntityWithValues)
}

// Dependencies are the collaborators of the processor.
type Dependencies struct {
	Channels   ChannelLookup
	Attributes IdentifierLookup
	Normalizer Normalizer
	Detacher   Detacher
	Users      security.UserProvider
	Media      media.Fetcher
	Filler     ValuesFiller
}

// ProcessorOption customises the processor.
type ProcessorOption func(*Processor)

// WithProcessorLogger sets the processor logger.
func WithProcessorLogger(logger interfaces.Logger) ProcessorOption {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Processor turns products and product models into export rows for one step
// execution. It authenticates the job user into the step token storage,
// fetches media when requested and keeps only the selected properties.
type Processor struct {
	deps   Dependencies
	step   *batch.StepExecution
	tokens security.TokenStorage
	logger interfaces.Logger
}

// NewProcessor binds a processor to its step. A nil token storage gets a
// fresh one so processors never share authentication.
func NewProcessor(deps Dependencies, step *batch.StepExecution, tokens security.TokenStorage, opts ...ProcessorOption) *Processor {
	if tokens == nil {
		tokens = security.NewTokenStorage()
	}
	p := &Processor{
		deps:   deps,
		step:   step,
		tokens: tokens,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Process normalizes one product or product model.
func (p *Processor) Process(ctx context.Context, entity catalog.EntityWithValues) (*Row, error) {
	if entity == nil {
		return nil, errors.New("export: nil entity")
	}
	ctx, err := p.authenticate(ctx)
	if err != nil {
		return nil, err
	}

	params, err := ParseParameters(p.step.Parameters())
	if err != nil {
		return nil, err
	}
	scope, err := params.RequireScope()
	if err != nil {
		return nil, err
	}
	channel, err := p.deps.Channels.GetByCode(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("export: resolve channel %q: %w", scope, err)
	}
	locales := channel.GetLocaleCodes()
	if selected, ok := params.SelectedLocales.Get(); ok {
		locales = narrowLocales(locales, selected)
	}

	identifier, err := p.deps.Attributes.FindIdentifier(ctx)
	if err != nil {
		return nil, fmt.Errorf("export: resolve identifier attribute: %w", err)
	}

	selected, hasSelection := params.SelectedProperties.Get()
	if params.WithMedia && p.deps.Media != nil {
		p.fetchMedia(ctx, entity, selected, hasSelection)
	}

	if p.deps.Detacher != nil {
		p.deps.Detacher.Detach(entity)
	}

	if p.deps.Filler != nil {
		entity = p.deps.Filler.FillMissingValues(entity)
	}

	row, err := p.deps.Normalizer.Normalize(ctx, entity, FormatStandard, NormalizationContext{
		Channel:             channel.Code,
		Locales:             locales,
		IdentifierAttribute: identifier.Code,
	})
	if err != nil {
		return nil, err
	}
	if !hasSelection {
		return row, nil
	}
	keys := selectedKeys(entity, selected, identifier.Code)
	return row.Filter(func(key string) bool {
		_, ok := keys[key]
		return ok
	}), nil
}

func (p *Processor) authenticate(ctx context.Context) (context.Context, error) {
	username := ""
	if p.step != nil && p.step.JobExecution != nil {
		username = p.step.JobExecution.User
	}
	if token := p.tokens.Token(); token != nil && token.Username() == username {
		return security.ContextWithToken(ctx, token), nil
	}
	if p.deps.Users == nil {
		return nil, errors.New("export: user provider is not configured")
	}
	user, err := p.deps.Users.LoadUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("export: authenticate %q: %w", username, err)
	}
	token := security.NewUsernamePasswordToken(user, providerKey)
	p.tokens.SetToken(token)
	p.logger.Debug("export.user.authenticated", "user", username, "roles", token.Roles)
	return security.ContextWithToken(ctx, token), nil
}

func (p *Processor) fetchMedia(ctx context.Context, entity catalog.EntityWithValues, selected []string, hasSelection bool) {
	values := entity.ValueCollection()
	if hasSelection {
		values = values.Filter(func(value *catalog.Value) bool {
			return slices.Contains(selected, value.PropertyName())
		})
	}
	p.deps.Media.FetchAll(ctx, values, p.step.WorkingDirectory(), entity.IdentifierValue())
	for _, fetchErr := range p.deps.Media.GetErrors() {
		p.step.AddWarning(fetchErr.Message, map[string]any{
			"from":    fetchErr.From,
			"to":      fetchErr.To,
			"storage": fetchErr.Storage,
		}, entity.IdentifierValue())
	}
}

// narrowLocales keeps the channel locales that are selected, in channel
// order.
func narrowLocales(channelLocales, selected []string) []string {
	out := make([]string, 0, len(selected))
	for _, code := range channelLocales {
		if slices.Contains(selected, code) && !slices.Contains(out, code) {
			out = append(out, code)
		}
	}
	return out
}

// selectedKeys expands the selection aliases for the entity kind.
func selectedKeys(entity catalog.EntityWithValues, selected []string, identifierAttribute string) map[string]struct{} {
	keys := make(map[string]struct{}, len(selected))
	for _, property := range selected {
		keys[property] = struct{}{}
		switch {
		case property == SelectIdentifier && entity.EntityKind() == catalog.EntityKindProduct:
			keys[identifierAttribute] = struct{}{}
		case property == SelectIdentifier && entity.EntityKind() == catalog.EntityKindProductModel:
			keys["code"] = struct{}{}
		case property == SelectFamily && entity.EntityKind() == catalog.EntityKindProductModel:
			keys["family_variant"] = struct{}{}
		}
	}
	return keys
}
