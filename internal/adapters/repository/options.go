package repository

// Option applies a configuration option to the SnapshotStore.
type Option func(*SnapshotStore)

// WithRetention sets how many committed cycles are remembered.
func WithRetention(n int) Option {
	return func(s *SnapshotStore) {
		if n > 0 {
			s.retention = n
		}
	}
}
