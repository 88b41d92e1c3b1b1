package domain

type FilterMode string

const (
	FilterAll       FilterMode = "all"
	FilterActive    FilterMode = "active"
	FilterCompleted FilterMode = "completed"
)

func (m FilterMode) Valid() bool {
	switch m {
	case FilterAll, FilterActive, FilterCompleted:
		return true
	default:
		return false
	}
}

// Normalize maps unknown modes to FilterAll.
func (m FilterMode) Normalize() FilterMode {
	if m.Valid() {
		return m
	}

	return FilterAll
}

// FilterItems is a pure projection; it never mutates items.
func FilterItems(items []ListItem, mode FilterMode) []ListItem {
	filtered := make([]ListItem, 0, len(items))
	for _, item := range items {
		switch mode.Normalize() {
		case FilterActive:
			if item.Completed {
				continue
			}
		case FilterCompleted:
			if !item.Completed {
				continue
			}
		}
		filtered = append(filtered, item)
	}

	return filtered
}
