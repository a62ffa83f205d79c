package hierarchy

// Builder can build cache hierarchies.
type Builder struct {
	config Config
}

// MakeBuilder creates a builder with the default geometry.
func MakeBuilder() Builder {
	return Builder{
		config: DefaultConfig(),
	}
}

// WithConfig sets the geometry of both levels.
func (b Builder) WithConfig(config Config) Builder {
	b.config = config
	return b
}

// Build builds a hierarchy. It panics if the geometry is invalid.
func (b Builder) Build(name string) *Hierarchy {
	return &Hierarchy{
		name: name,
		l1:   b.config.l1Builder().Build(name + ".L1"),
		l3:   b.config.l3Builder().Build(name + ".L3"),
	}
}
