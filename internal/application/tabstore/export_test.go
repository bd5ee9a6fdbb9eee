package tabstore

// CachedStates returns the number of tab states parked in the prefetch cache.
func (s *Store) CachedStates() int {
	return s.states.Len()
}
