package core

import "strings"

// AllCategories is the filter sentinel that matches every record.
const AllCategories = "all"

// DefaultCategoryKeys is used when configuration supplies none.
var DefaultCategoryKeys = []string{"food", "transport", "entertainment", "shopping", "bills"}

// Categories is an ordered set of category keys supplied from configuration.
type Categories struct {
	keys  []string
	index map[string]struct{}
}

// NewCategories trims, drops blanks and de-duplicates keys, keeping the
// first occurrence order. The sentinel "all" is never a valid key.
func NewCategories(keys []string) Categories {
	c := Categories{index: make(map[string]struct{}, len(keys))}
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" || k == AllCategories {
			continue
		}
		if _, ok := c.index[k]; ok {
			continue
		}
		c.index[k] = struct{}{}
		c.keys = append(c.keys, k)
	}
	return c
}

func DefaultCategories() Categories {
	return NewCategories(DefaultCategoryKeys)
}

func (c Categories) Contains(key string) bool {
	_, ok := c.index[key]
	return ok
}

// Keys returns a copy of the keys in configuration order.
func (c Categories) Keys() []string {
	return append([]string(nil), c.keys...)
}

func (c Categories) Len() int {
	return len(c.keys)
}

// IsFilter reports whether key is usable as a list filter: a known
// category or the "all" sentinel.
func (c Categories) IsFilter(key string) bool {
	return key == AllCategories || c.Contains(key)
}
