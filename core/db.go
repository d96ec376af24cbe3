package core

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// FilterOrderings drops orderings whose field is not a key of allowed and maps the
// surviving fields to their column expressions. Ordering fields come straight from
// query strings and must never reach SQL unchecked.
func FilterOrderings(ordering []DBOrdering, allowed map[string]string) []DBOrdering {
	if len(ordering) == 0 {
		return nil
	}
	filtered := make([]DBOrdering, 0, len(ordering))
	for _, ord := range ordering {
		col, ok := allowed[ord.Field]
		if !ok {
			continue
		}
		filtered = append(filtered, DBOrdering{Field: col, Ascending: ord.Ascending})
	}
	return filtered
}
