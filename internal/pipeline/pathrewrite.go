package pipeline

import (
	"encoding/base64"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	"github.com/alnah/go-md2cv/internal/layout"
)

// MaxEmbeddedImageSize caps a local image inlined as a data URI.
var MaxEmbeddedImageSize int64 = 5 << 20

// ResolveLocalPaths makes block markup independent of the resume's
// directory: relative images become data URIs, relative links file://
// URLs. References leaving sourceDir, missing files and oversized images
// stay as written. An empty sourceDir returns blocks unchanged.
func ResolveLocalPaths(blocks []layout.Block, sourceDir string) ([]layout.Block, error) {
	if sourceDir == "" {
		return blocks, nil
	}
	dir, err := filepath.Abs(sourceDir)
	if err != nil {
		return nil, err
	}
	lr := localRefs{dir: dir}

	out := make([]layout.Block, len(blocks))
	copy(out, blocks)
	for i := range out {
		if !strings.Contains(out[i].Markup, "<img") && !strings.Contains(out[i].Markup, "<a ") {
			continue
		}
		if out[i].Markup, err = lr.rewrite(out[i].Markup); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// localRefs resolves references relative to dir.
type localRefs struct {
	dir string
}

func (lr localRefs) rewrite(markup string) (string, error) {
	nodes, err := html.ParseFragment(strings.NewReader(markup), fragmentContext)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, n := range nodes {
		lr.walk(n)
		if err := html.Render(&sb, n); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

func (lr localRefs) walk(n *html.Node) {
	if n.Type == html.ElementNode {
		for i, a := range n.Attr {
			switch {
			case n.Data == "img" && a.Key == "src":
				if p, ok := lr.path(a.Val); ok {
					if uri, ok := dataURI(p); ok {
						n.Attr[i].Val = uri
					}
				}
			case n.Data == "a" && a.Key == "href":
				if p, ok := lr.path(a.Val); ok {
					n.Attr[i].Val = (&url.URL{Scheme: "file", Path: filepath.ToSlash(p)}).String()
				}
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		lr.walk(c)
	}
}

// path returns the absolute file ref names, if ref is a relative path
// staying inside dir. Fragments, URLs and absolute paths are not local.
func (lr localRefs) path(ref string) (string, bool) {
	if ref == "" || ref[0] == '#' || ref[0] == '/' || filepath.IsAbs(ref) {
		return "", false
	}
	if u, err := url.Parse(ref); err != nil || u.Scheme != "" || u.Host != "" {
		return "", false
	}
	p := filepath.Join(lr.dir, filepath.FromSlash(ref))
	rel, err := filepath.Rel(lr.dir, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return p, true
}

// dataURI reads an image file no larger than MaxEmbeddedImageSize.
func dataURI(path string) (string, bool) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() || info.Size() > MaxEmbeddedImageSize {
		return "", false
	}
	data, err := os.ReadFile(path) // #nosec G304 -- confined to the resume directory
	if err != nil {
		return "", false
	}

	media := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if media == "" {
		media = http.DetectContentType(data)
	}
	media, _, _ = strings.Cut(media, ";")
	if !strings.HasPrefix(media, "image/") {
		return "", false
	}
	return "data:" + media + ";base64," + base64.StdEncoding.EncodeToString(data), true
}
