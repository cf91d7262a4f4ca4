package config

// DomainConfig holds the configurable business limits enforced by the
// domain layer.
type DomainConfig struct {
	// Snippet constraints
	MaxTitleLength int
	MaxTextLength  int

	// Connection constraints
	MaxLabelLength int

	// Traversal limits. Walks are additionally capped by the node count of
	// the project, so a cycle introduced by a bug cannot loop forever.
	MaxBranchWalkDepth int
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		MaxTitleLength: 200,
		MaxTextLength:  50000,

		MaxLabelLength: 120,

		MaxBranchWalkDepth: 10000,
	}
}
