package rest

// CollisionPolicy decides what happens when two nodes share a name.
type CollisionPolicy int

const (
	// LastWriteWins keeps the resource of the node visited last.
	LastWriteWins CollisionPolicy = iota
	// RejectCollisions fails the whole call with a *CollisionError.
	RejectCollisions
)

// String returns the configuration name of the policy.
func (p CollisionPolicy) String() string {
	switch p {
	case RejectCollisions:
		return "reject"
	default:
		return "last-write-wins"
	}
}

// Option configures an Indexer.
type Option func(*Indexer)

// WithDecoder sets the decoder used by IndexResources.
func WithDecoder(d Decoder) Option {
	return func(ix *Indexer) {
		if d != nil {
			ix.decoder = d
		}
	}
}

// WithRootName gives the root a breadcrumb segment, so top-level nodes get
// "/"+name as their breadcrumbs instead of "".
func WithRootName(name string) Option {
	return func(ix *Indexer) {
		ix.rootName = name
	}
}

// WithCollisionPolicy sets the identifier collision policy.
func WithCollisionPolicy(p CollisionPolicy) Option {
	return func(ix *Indexer) {
		ix.policy = p
	}
}

// Indexer builds a flat name-to-Resource index from a page hierarchy.
// It holds no state between calls and is safe for concurrent use.
type Indexer struct {
	decoder  Decoder
	rootName string
	policy   CollisionPolicy
}

// NewIndexer creates an Indexer. Without options it decodes nested JSON with
// "name" and "children" keys and lets later nodes win on name collisions.
func NewIndexer(opts ...Option) *Indexer {
	ix := &Indexer{decoder: JSONDecoder{}}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// IndexResources decodes entity and indexes every page in it. Each page is
// addressed as rootPath + "/" + name regardless of its depth; its ancestry is
// recorded only in the breadcrumbs. rootPath must not end with a slash.
func (ix *Indexer) IndexResources(rootPath, entity string) (map[string]Resource, error) {
	nodes, err := ix.decoder.Decode(entity)
	if err != nil {
		return nil, err
	}
	return ix.IndexNodes(rootPath, nodes)
}

// IndexNodes indexes already decoded nodes.
func (ix *Indexer) IndexNodes(rootPath string, nodes []Node) (map[string]Resource, error) {
	index := make(map[string]Resource)
	var crumbs string
	if ix.rootName != "" {
		crumbs = "/" + ix.rootName
	}
	if err := ix.walk(index, rootPath, crumbs, nodes); err != nil {
		return nil, err
	}
	return index, nil
}

func (ix *Indexer) walk(index map[string]Resource, rootPath, crumbs string, nodes []Node) error {
	for _, n := range nodes {
		if n.Name == "" {
			return &DecodeError{Path: crumbs, Err: ErrMissingName}
		}
		if !n.Group {
			r := NewResource(rootPath+"/"+n.Name, crumbs)
			if prev, ok := index[n.Name]; ok && ix.policy == RejectCollisions {
				return &CollisionError{Name: n.Name, First: prev, Conflict: r}
			}
			index[n.Name] = r
		}
		if len(n.Children) > 0 {
			if err := ix.walk(index, rootPath, crumbs+"/"+n.Name, n.Children); err != nil {
				return err
			}
		}
	}
	return nil
}
