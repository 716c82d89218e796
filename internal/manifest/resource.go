package manifest

import (
	"bytes"
	"path/filepath"

	"github.com/beevik/etree"

	"github.com/fulmenhq/apkpatch/internal/apktree"
	"github.com/fulmenhq/apkpatch/pkg/logger"
	"github.com/fulmenhq/apkpatch/pkg/safeio"
)

// WriteProviderPaths writes the paths resource the provider's meta-data
// element references: res/xml/<resourceName>.xml with a single cache-path
// entry rooted at the tree's relative root. It creates res/xml when absent
// and may run before or after EnsureProvider; the provider references the
// resource by name only, so ordering does not matter here.
func WriteProviderPaths(tree apktree.Tree, resourceName string) error {
	dir := tree.ResXMLDir()
	if err := safeio.EnsureDir(dir); err != nil {
		return err
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="utf-8"`)
	paths := doc.CreateElement("paths")
	cache := paths.CreateElement("cache-path")
	cache.CreateAttr("name", "cache")
	cache.CreateAttr("path", ".")
	doc.Indent(4)

	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return err
	}

	path := filepath.Join(dir, resourceName+".xml")
	if err := safeio.WriteFileAtomic(path, buf.Bytes()); err != nil {
		return err
	}

	logger.Info("wrote provider paths resource", logger.String("path", path))
	return nil
}
