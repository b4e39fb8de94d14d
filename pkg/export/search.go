package export

import "sort"

// search finds the value stored under key anywhere in a fetched
// document. Traversal is pre-order depth-first with map keys visited in
// sorted order and slice elements in index order; at each map the key is
// checked directly before descending. First match wins.
func search(node any, key string) (any, bool) {
	switch n := node.(type) {
	case map[string]any:
		if v, ok := n[key]; ok {
			return v, true
		}
		keys := make([]string, 0, len(n))
		for k := range n {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if v, ok := search(n[k], key); ok {
				return v, true
			}
		}
	case []any:
		for _, elem := range n {
			if v, ok := search(elem, key); ok {
				return v, true
			}
		}
	}
	return nil, false
}
