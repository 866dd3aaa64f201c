package dd

import "io"

// ExportVault stores rendered diagram snapshots.
// All operations stream so large diagrams are never held twice in memory.
type ExportVault interface {
	// Put stores a snapshot under name. size is the number of bytes that will be read from r.
	// Writing an existing name replaces it.
	Put(name string, r io.Reader, size int64) error

	// Get retrieves the snapshot stored under name and writes it to w.
	Get(name string, w io.Writer) error

	// List returns the names of all stored snapshots, sorted.
	List() ([]string, error)

	// ValidateSetup verifies that the vault is accessible and properly configured.
	ValidateSetup() error
}
