package seed

// NameSet tracks names for O(1) membership checks.
type NameSet struct {
	names map[string]struct{}
}

// NewNameSet creates a new name set.
func NewNameSet(capacity int) *NameSet {
	return &NameSet{
		names: make(map[string]struct{}, capacity),
	}
}

// Contains checks if a name exists in the set.
func (s *NameSet) Contains(name string) bool {
	_, exists := s.names[name]
	return exists
}

// Size returns the number of names in the set.
func (s *NameSet) Size() int {
	return len(s.names)
}

// Add inserts name and reports whether it was not already present.
func (s *NameSet) Add(name string) bool {
	if _, exists := s.names[name]; exists {
		return false
	}
	s.names[name] = struct{}{}
	return true
}
