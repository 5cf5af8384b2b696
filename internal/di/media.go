package di

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-pim/internal/media"
	"github.com/goliatone/go-pim/internal/runtimeconfig"
)

func (c *Container) configureMediaStorages(ctx context.Context) error {
	for _, cfg := range c.Config.Export.Storages {
		alias := strings.TrimSpace(cfg.Alias)
		if _, err := c.storages.Get(alias); err == nil {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(cfg.Kind)) {
		case runtimeconfig.MediaStorageLocal:
			c.storages.Register(alias, media.NewLocalStorage(cfg.Root))
		case runtimeconfig.MediaStorageS3:
			storage, err := media.NewS3Storage(ctx, media.S3Config{
				Bucket:   cfg.Bucket,
				Region:   cfg.Region,
				Endpoint: cfg.Endpoint,
				Prefix:   cfg.Prefix,
			})
			if err != nil {
				return fmt.Errorf("di: media storage %s: %w", alias, err)
			}
			c.storages.Register(alias, storage)
		}
		c.logger("pim.media").Debug("media.storage.registered", "alias", alias, "kind", cfg.Kind)
	}
	return nil
}
