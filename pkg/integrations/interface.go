package integrations

import "context"

// Packer bundles a downloaded chapter directory into a single file and
// returns its path.
type Packer interface {
	Pack(ctx context.Context, comic, chapter, dir string) (string, error)
}
