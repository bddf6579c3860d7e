package dal

import (
	"time"

	"github.com/Masterminds/squirrel"
)

const kvTable = "kv_store"

type Queries struct {
	placeholder squirrel.PlaceholderFormat
}

func NewQueries(dbType DBType) *Queries {
	var placeholder squirrel.PlaceholderFormat = squirrel.Question
	if dbType == DBTypePostgres {
		placeholder = squirrel.Dollar
	}
	return &Queries{placeholder: placeholder}
}

// GetValueQuery builds a query to read the value stored under key
func (q *Queries) GetValueQuery(key string) squirrel.Sqlizer {
	return squirrel.Select("storage_value").
		From(kvTable).
		Where(squirrel.Eq{"storage_key": key}).
		PlaceholderFormat(q.placeholder)
}

// SetValueQuery builds a query to insert or replace the value stored under key
func (q *Queries) SetValueQuery(key, value string, updatedAt time.Time) squirrel.Sqlizer {
	return squirrel.Insert(kvTable).
		Columns("storage_key", "storage_value", "updated_at").
		Values(key, value, updatedAt.UTC()).
		Suffix("ON CONFLICT (storage_key) DO UPDATE SET storage_value = EXCLUDED.storage_value, updated_at = EXCLUDED.updated_at").
		PlaceholderFormat(q.placeholder)
}
