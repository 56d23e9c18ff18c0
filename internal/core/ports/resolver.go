package ports

// InputResolver resolves glob patterns to concrete file paths.
//
//go:generate go run go.uber.org/mock/mockgen -source=resolver.go -destination=mocks/mock_resolver.go -package=mocks
type InputResolver interface {
	// ResolveInputs resolves the given patterns against root. Patterns that
	// match nothing are skipped; the pipeline's optional artifacts make
	// empty matches legitimate.
	ResolveInputs(inputs []string, root string) ([]string, error)
}
