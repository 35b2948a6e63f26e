package repository

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithAllowNegativeRewards lets transactions carry negative rewards.
func WithAllowNegativeRewards(allow bool) Option {
	return func(s *MemoryStore) {
		s.allowNegative = allow
	}
}
