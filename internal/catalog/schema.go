package catalog

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// Models lists the catalog tables in creation order.
func Models() []any {
	return []any{
		(*Locale)(nil),
		(*Channel)(nil),
		(*Attribute)(nil),
		(*Family)(nil),
		(*AttributeRequirement)(nil),
		(*Product)(nil),
		(*ProductModel)(nil),
		(*FileInfo)(nil),
		(*CompletenessRecord)(nil),
	}
}

// CreateSchema creates the catalog tables and their lookup indexes when missing.
func CreateSchema(ctx context.Context, db bun.IDB) error {
	for _, model := range Models() {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table for %T: %w", model, err)
		}
	}
	indexes := []struct {
		name    string
		model   any
		columns []string
	}{
		{"idx_pim_attribute_requirements_family", (*AttributeRequirement)(nil), []string{"family_id", "position"}},
		{"idx_pim_products_family", (*Product)(nil), []string{"family_id"}},
		{"idx_pim_completenesses_product", (*CompletenessRecord)(nil), []string{"product_id", "channel_code", "locale_code"}},
	}
	for _, index := range indexes {
		if _, err := db.NewCreateIndex().
			Model(index.model).
			Index(index.name).
			IfNotExists().
			Column(index.columns...).
			Exec(ctx); err != nil {
			return fmt.Errorf("create index %s: %w", index.name, err)
		}
	}
	return nil
}
