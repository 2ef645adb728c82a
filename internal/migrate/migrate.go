package migrate

import (
	"social-service/internal/post"
	"social-service/internal/profile"
	"social-service/internal/shared/db"
)

// Models lists every table in dependency order.
func Models() []any {
	return []any{
		&profile.Profile{}, &profile.Connection{},
		&post.Post{}, &post.Like{}, &post.Comment{},
	}
}

func AutoMigrateAll(store *db.Store) error {
	return store.DB.AutoMigrate(Models()...)
}
