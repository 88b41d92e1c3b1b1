package domain

type EventType string

const (
	EventItemAdd             EventType = "item_add"
	EventItemToggle          EventType = "item_toggle"
	EventItemEditStart       EventType = "item_edit_start"
	EventItemEditSave        EventType = "item_edit_save"
	EventItemEditCancel      EventType = "item_edit_cancel"
	EventItemDelete          EventType = "item_delete"
	EventItemsClearCompleted EventType = "items_clear_completed"
	EventFilterChange        EventType = "filter_change"
	EventCatalogCacheHit     EventType = "catalog_cache_hit"
	EventCatalogFetchSuccess EventType = "catalog_fetch_success"
	EventCatalogFetchError   EventType = "catalog_fetch_error"
)

type EventLogEntry struct {
	ID        string         `json:"id"`
	Timestamp string         `json:"timestamp"`
	Type      EventType      `json:"type"`
	Payload   map[string]any `json:"payload"`
}
