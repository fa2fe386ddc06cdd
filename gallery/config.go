package gallery

import "math"

// ConfigSource is where a gallery reads its configuration from.
type ConfigSource interface {
	Lookup(key string) (any, bool)
}

// LocalSource reads the gallery node's own fields.
type LocalSource struct {
	node Node
}

func NewLocalSource(node Node) *LocalSource {
	return &LocalSource{node: node}
}

func (s *LocalSource) Lookup(key string) (any, bool) {
	return s.node.Field(key)
}

// LinkedSource follows a single link from the gallery node's config slot
// to a provider node and reads the provider's fields. The provider is
// looked up by id on every access because the link may be rebound or
// removed at any time.
type LinkedSource struct {
	host Host
	node Node
	slot string
}

func NewLinkedSource(host Host, node Node, slot string) *LinkedSource {
	if slot == "" {
		slot = DefaultConfigSlot
	}
	return &LinkedSource{host: host, node: node, slot: slot}
}

func (s *LinkedSource) Lookup(key string) (any, bool) {
	id, ok := s.provider()
	if !ok {
		return nil, false
	}
	provider, ok := s.host.NodeByID(id)
	if !ok {
		return nil, false
	}
	return provider.Field(key)
}

func (s *LinkedSource) provider() (NodeID, bool) {
	return s.node.InputLink(s.slot)
}

// ConfigResolver produces the effective gallery configuration.
type ConfigResolver struct {
	src ConfigSource
}

func NewConfigResolver(src ConfigSource) *ConfigResolver {
	return &ConfigResolver{src: src}
}

// Resolve returns the raw value of key, or false when it is absent.
func (r *ConfigResolver) Resolve(key string) (any, bool) {
	v, ok := r.src.Lookup(key)
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// Directory returns the configured source directory. An empty string counts as absent.
func (r *ConfigResolver) Directory() (string, bool) {
	v, ok := r.Resolve(KeyDirectory)
	if !ok {
		return "", false
	}
	dir, ok := v.(string)
	if !ok || dir == "" {
		return "", false
	}
	return dir, true
}

// ThumbnailSize returns the configured thumbnail edge, 100 when it is absent or invalid.
func (r *ConfigResolver) ThumbnailSize() int {
	v, ok := r.Resolve(KeyThumbnailSize)
	if !ok {
		return defaultThumbnailSize
	}

	var size int
	switch n := v.(type) {
	case int:
		size = n
	case int32:
		size = int(n)
	case int64:
		size = int(n)
	case float32:
		size = int(math.Round(float64(n)))
	case float64:
		size = int(math.Round(n))
	}
	if size <= 0 {
		return defaultThumbnailSize
	}
	return size
}
