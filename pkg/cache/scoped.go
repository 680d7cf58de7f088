package cache

// ScopedKeyer wraps a Keyer with a prefix so that several deployments or
// calendar owners can share one backend without colliding:
//
//	practice := NewScopedKeyer(NewDefaultKeyer(), "practice:")
//	personal := NewScopedKeyer(NewDefaultKeyer(), "personal:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

func (k *ScopedKeyer) ArtifactKey(eventsHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(eventsHash, opts)
}
