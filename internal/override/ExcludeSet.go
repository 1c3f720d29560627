package override

// ExcludeSet holds the material handles that must never be overridden,
// regardless of which slot they sit in. Membership test only; the core
// never mutates it.
type ExcludeSet map[string]struct{}

// NewExcludeSet builds an ExcludeSet from material handles. Empty handles are
// dropped so an empty slot can never match the exclude list.
func NewExcludeSet(names ...string) ExcludeSet {
	set := make(ExcludeSet, len(names))
	for _, name := range names {
		if name != "" {
			set[name] = struct{}{}
		}
	}
	return set
}

// Contains reports whether the given material handle is excluded.
func (e ExcludeSet) Contains(name string) bool {
	_, ok := e[name]
	return ok
}
