// Serving local track files to the embedded browser. A non-href track source
// is resolved to a file on disk at mount time and registered as a resource;
// the browser then fetches it through the /files/ route. Remote URLs pass
// through untouched.

package files

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/yumyai/ggview/pkg/model"
)

// Defining possible error
var FileNotExists = errors.New("local track file does not exist")

type resource struct {
	path string
	name string
}

// Provider registers local files and hands out the URLs they are served
// under. Relative sources resolve inside the data root; only registered
// files are ever reachable through the route.
type Provider struct {
	root string

	mu        sync.RWMutex
	resources map[string]resource
	byPath    map[string]string
}

func NewProvider(root string) *Provider {
	return &Provider{
		root:      root,
		resources: make(map[string]resource),
		byPath:    make(map[string]string),
	}
}

// Resolve turns a file path or URL into a URL the browser can fetch. URLs
// come back as-is; local paths must point at an existing file and come back
// as a /files/ route. A missing file fails the mount here, before the
// browser ever sees the config.
func (p *Provider) Resolve(pathOrURL string) (string, error) {

	if model.IsHref(pathOrURL) {
		return pathOrURL, nil
	}

	path := pathOrURL
	if !filepath.IsAbs(path) {
		// The leading-slash clean keeps relative sources inside the root
		path = filepath.Join(p.root, filepath.Clean("/"+path))
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("%w: %s", FileNotExists, pathOrURL)
	}

	name := filepath.Base(path)

	p.mu.Lock()
	defer p.mu.Unlock()

	// Same file mounted twice keeps one resource
	if id, ok := p.byPath[path]; ok {
		return resourceURL(id, name), nil
	}

	id := uuid.NewString()
	p.resources[id] = resource{path: path, name: name}
	p.byPath[path] = id

	return resourceURL(id, name), nil
}

// resourceURL ends in the original filename, so the viewer can still guess
// formats from the extension.
func resourceURL(id, name string) string {
	return "/files/" + id + "/" + name
}

// Lookup returns the registered path for a resource id.
func (p *Provider) Lookup(id string) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	res, ok := p.resources[id]
	return res.path, ok
}
