// Package manifest parses an application manifest, idempotently inserts a
// content-provider declaration, and writes the companion paths resource.
package manifest

import (
	"bytes"
	"os"

	"github.com/beevik/etree"

	"github.com/fulmenhq/apkpatch/pkg/logger"
	"github.com/fulmenhq/apkpatch/pkg/safeio"
)

// AndroidNamespaceURI is the platform attribute namespace. Attribute names
// must serialize with the prefix the document binds to this URI.
const AndroidNamespaceURI = "http://schemas.android.com/apk/res/android"

const (
	defaultPrefix  = "android"
	xmlDeclaration = `<?xml version="1.0" encoding="utf-8"?>`
)

// Status tracks the patcher's progress over one document.
type Status int

const (
	// Parsed means the document loaded and its structure checked out.
	Parsed Status = iota
	// ProviderPresent means the provider was already declared; nothing changed.
	ProviderPresent
	// ProviderInserted means a new provider element was appended.
	ProviderInserted
	// Written means the mutated document was serialized back to disk.
	Written
)

func (s Status) String() string {
	switch s {
	case Parsed:
		return "parsed"
	case ProviderPresent:
		return "provider-present"
	case ProviderInserted:
		return "provider-inserted"
	case Written:
		return "written"
	default:
		return "unparsed"
	}
}

// Provider is the fixed-shape declaration inserted into the manifest. The
// authorities value carries the ${applicationId} placeholder verbatim; the
// recompiler interpolates it at build time.
type Provider struct {
	Name         string
	Authorities  string
	MetaDataName string
	Resource     string
}

// FileProvider is the declaration this pipeline installs.
var FileProvider = Provider{
	Name:         "androidx.core.content.FileProvider",
	Authorities:  "${applicationId}.provider",
	MetaDataName: "android.support.FILE_PROVIDER_PATHS",
	Resource:     "@xml/provider_paths",
}

// Document is a parsed manifest plus the serialization configuration needed
// to write namespace-qualified attributes correctly. The platform namespace
// prefix is resolved per document, never registered globally, so documents
// processed in the same run cannot interfere with each other.
type Document struct {
	doc    *etree.Document
	path   string
	prefix string
	status Status
}

// Status reports how far the patcher has progressed on this document.
func (d *Document) Status() Status {
	return d.status
}

// Path returns the file the document was parsed from.
func (d *Document) Path() string {
	return d.path
}

// Parse loads and validates the manifest at path.
func Parse(path string) (*Document, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, &MissingError{Path: path}
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return nil, &MalformedError{Path: path, Err: err}
	}

	root := doc.Root()
	if root == nil {
		return nil, &StructureError{Path: path, Missing: "manifest"}
	}
	if root.SelectElement("application") == nil {
		return nil, &StructureError{Path: path, Missing: "application"}
	}

	d := &Document{
		doc:    doc,
		path:   path,
		prefix: resolvePrefix(root),
		status: Parsed,
	}
	logger.Debug("parsed manifest",
		logger.String("path", path),
		logger.String("platform_prefix", d.prefix))
	return d, nil
}

// resolvePrefix finds the prefix the root element binds to the platform
// namespace, falling back to the conventional one.
func resolvePrefix(root *etree.Element) string {
	for _, attr := range root.Attr {
		if attr.Space == "xmlns" && attr.Value == AndroidNamespaceURI {
			return attr.Key
		}
	}
	return defaultPrefix
}

// attr returns the namespace-qualified attribute key for this document.
func (d *Document) attr(name string) string {
	return d.prefix + ":" + name
}

// EnsureProvider makes sure the document declares p exactly once. When a
// direct <provider> child of <application> already carries p's qualified
// name the document is left untouched; otherwise the declaration is appended
// as the last child of <application>. Re-running on a patched manifest never
// duplicates the element.
func (d *Document) EnsureProvider(p Provider) Status {
	app := d.doc.Root().SelectElement("application")

	for _, existing := range app.SelectElements("provider") {
		if existing.SelectAttrValue(d.attr("name"), "") == p.Name {
			logger.Info("provider already declared, skipping",
				logger.String("provider", p.Name))
			d.status = ProviderPresent
			return d.status
		}
	}

	// A manifest without the platform namespace bound cannot serialize the
	// qualified attributes; declare the conventional binding on the root.
	root := d.doc.Root()
	if root.SelectAttr("xmlns:"+d.prefix) == nil {
		root.CreateAttr("xmlns:"+d.prefix, AndroidNamespaceURI)
	}

	provider := app.CreateElement("provider")
	provider.CreateAttr(d.attr("name"), p.Name)
	provider.CreateAttr(d.attr("authorities"), p.Authorities)
	provider.CreateAttr(d.attr("exported"), "false")
	provider.CreateAttr(d.attr("grantUriPermissions"), "true")

	meta := provider.CreateElement("meta-data")
	meta.CreateAttr(d.attr("name"), p.MetaDataName)
	meta.CreateAttr(d.attr("resource"), p.Resource)

	logger.Info("inserted provider declaration", logger.String("provider", p.Name))
	d.status = ProviderInserted
	return d.status
}

// Write serializes the document back to its source path with an XML
// declaration and UTF-8 encoding. When EnsureProvider found the declaration
// already present the write is skipped: the content would be identical and
// skipping avoids spurious diffs on re-runs.
func (d *Document) Write() error {
	if d.status == ProviderPresent {
		logger.Debug("manifest unchanged, skipping write", logger.String("path", d.path))
		return nil
	}

	out, err := d.Serialize()
	if err != nil {
		return err
	}
	if err := safeio.WriteFileAtomic(d.path, out); err != nil {
		return err
	}

	d.status = Written
	logger.Info("wrote patched manifest", logger.String("path", d.path))
	return nil
}

// Serialize renders the document, prepending an XML declaration when the
// source document did not carry one.
func (d *Document) Serialize() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := d.doc.WriteTo(&buf); err != nil {
		return nil, err
	}
	out := buf.Bytes()
	if !bytes.HasPrefix(bytes.TrimLeft(out, " \t\r\n"), []byte("<?xml")) {
		out = append([]byte(xmlDeclaration+"\n"), out...)
	}
	return out, nil
}
