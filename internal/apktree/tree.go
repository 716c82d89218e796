// Package apktree models a decompiled application package tree and the
// mutations the patch pipeline applies to it: merging a split package's
// subtrees and substituting native libraries.
package apktree

import (
	"os"
	"path/filepath"
)

// ManifestName is the manifest file apktool places at the tree root.
const ManifestName = "AndroidManifest.xml"

// Tree is a decompiled package rooted at a directory. It is created by the
// external decompiler, mutated in place by the patch components, and consumed
// by the recompiler. The pipeline never deletes it.
type Tree struct {
	Root string
}

// NewTree wraps a decompiled directory.
func NewTree(root string) Tree {
	return Tree{Root: root}
}

// Exists reports whether the tree root is present on disk.
func (t Tree) Exists() bool {
	st, err := os.Stat(t.Root)
	return err == nil && st.IsDir()
}

// Manifest returns the path of the tree's manifest file.
func (t Tree) Manifest() string {
	return filepath.Join(t.Root, ManifestName)
}

// LibDir returns the native library directory, optionally narrowed to an ABI.
func (t Tree) LibDir(abi string) string {
	if abi == "" {
		return filepath.Join(t.Root, "lib")
	}
	return filepath.Join(t.Root, "lib", abi)
}

// ResXMLDir returns the res/xml resource directory.
func (t Tree) ResXMLDir() string {
	return filepath.Join(t.Root, "res", "xml")
}
