package hir

// Attr is a single metadata tag.
type Attr struct {
	Key   string
	Value string
}

// Attrs keeps tags in declaration order; keys may repeat.
type Attrs []Attr

// Has reports whether the key is present.
func (a Attrs) Has(key string) bool {
	_, ok := a.Get(key)
	return ok
}

// Get returns the first value of key.
func (a Attrs) Get(key string) (string, bool) {
	for _, attr := range a {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return "", false
}

// All returns every value of key in order.
func (a Attrs) All(key string) []string {
	var out []string
	for _, attr := range a {
		if attr.Key == key {
			out = append(out, attr.Value)
		}
	}
	return out
}
