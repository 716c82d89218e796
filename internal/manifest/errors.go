package manifest

import "fmt"

// MissingError indicates the manifest file does not exist in the tree.
type MissingError struct {
	Path string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("manifest not found: %s", e.Path)
}

// MalformedError indicates the manifest is not well-formed XML.
type MalformedError struct {
	Path string
	Err  error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("manifest %s is not well-formed XML: %v", e.Path, e.Err)
}

func (e *MalformedError) Unwrap() error {
	return e.Err
}

// StructureError indicates a structurally required element is absent. The
// patch cannot proceed without an <application> element to attach to.
type StructureError struct {
	Path    string
	Missing string
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("manifest %s has no <%s> element", e.Path, e.Missing)
}
