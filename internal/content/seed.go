package content

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/khanghh/ltcms/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// defaultSections are the documents the frontend expects to exist. Values
// are only inserted when the section is missing so admin edits survive
// restarts.
var defaultSections = map[string]string{
	"hero":   `{"title":"Learn by doing","subtitle":"Hands-on tutorials and articles","cta":{"label":"Browse tutorials","href":"/tutorials"}}`,
	"header": `{"brand":"LTCMS","links":[{"label":"Home","href":"/"},{"label":"Tutorials","href":"/tutorials"}]}`,
	"footer": `{"copyright":"All rights reserved.","links":[]}`,
}

// SeedDefaults inserts any missing default site content sections. Existing
// rows are left untouched.
func SeedDefaults(ctx context.Context, db *gorm.DB) error {
	for section, document := range defaultSections {
		entry := model.SiteContent{
			Section: section,
			Content: datatypes.JSON(document),
		}
		err := db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&entry).Error
		if err != nil {
			return fmt.Errorf("seed site content %q: %w", section, err)
		}
	}
	slog.Debug("Site content defaults seeded")
	return nil
}
