package di

import (
	"strings"

	"github.com/goliatone/go-pim/internal/commands"
	"github.com/goliatone/go-pim/internal/logging"
	"github.com/goliatone/go-pim/internal/logging/console"
	"github.com/goliatone/go-pim/internal/logging/gologger"
	"github.com/goliatone/go-pim/pkg/interfaces"
)

func (c *Container) configureLoggerProvider() error {
	if !c.Config.Features.Logger {
		return nil
	}
	switch normalizeProvider(c.Config.Logging.Provider) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     c.Config.Logging.Level,
			Format:    c.Config.Logging.Format,
			AddSource: c.Config.Logging.AddSource,
			Focus:     c.Config.Logging.Focus,
		})
		if err != nil {
			return err
		}
		c.loggerProvider = provider
	default:
		opts := console.Options{}
		if level, ok := console.ParseLevel(c.Config.Logging.Level); ok {
			opts.MinLevel = &level
		}
		c.loggerProvider = console.NewProvider(opts)
	}
	return nil
}

func (c *Container) logger(module string) interfaces.Logger {
	return logging.ModuleLogger(c.loggerProvider, module)
}

// CommandLogger returns the logger of the command handlers of module.
func (c *Container) CommandLogger(module string) interfaces.Logger {
	return commands.CommandLogger(c.loggerProvider, module)
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}
