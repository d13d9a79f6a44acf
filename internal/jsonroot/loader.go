// Package jsonroot loads the remote JSON document that backs json.*
// placeholders and evaluates JSONPath expressions against it.
//
// The configuration value is either a bare URL or "URL | PATH". The document
// is fetched with a single bounded GET; the optional path narrows the root,
// and a [RANDOM] token in the path selects one element of a list uniformly.
// Every failure mode (network, status, parse, bad path) degrades to an
// absent root so the rest of the pipeline keeps going.
package jsonroot

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/PaesslerAG/jsonpath"

	"github.com/postcraft/contentpipe/internal/value"
)

// RandomToken marks the random array selection point inside a root path.
const RandomToken = "[RANDOM]"

// Loader performs the one-shot fetch and the [RANDOM] selection.
type Loader struct {
	client  *http.Client
	randInt func(n int) int
	logger  *slog.Logger
}

// NewLoader builds a loader. The client should already carry the fetch
// timeout; randInt supplies the uniform index for [RANDOM] selection.
func NewLoader(client *http.Client, randInt func(n int) int, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{client: client, randInt: randInt, logger: logger}
}

// Load resolves a "URL" or "URL | PATH" configuration value into the JSON
// root. The bool reports presence: false means the root is absent and all
// json.* lookups of this invocation are unresolvable.
func (l *Loader) Load(ctx context.Context, config string) (value.Value, bool) {
	url, path := splitConfig(config)
	if url == "" {
		return value.Null(), false
	}

	doc, err := l.fetch(ctx, url)
	if err != nil {
		l.logger.Warn("JSON root fetch failed", "url", url, "error", err)
		return value.Null(), false
	}

	root, err := narrow(doc, path, l.randInt)
	if err != nil {
		l.logger.Warn("JSON root path extraction failed", "path", path, "error", err)
		return value.Null(), false
	}
	return root, true
}

// splitConfig separates the URL from the optional path on the first pipe.
func splitConfig(config string) (url, path string) {
	url, path, _ = strings.Cut(config, "|")
	return strings.TrimSpace(url), strings.TrimSpace(path)
}

func (l *Loader) fetch(ctx context.Context, url string) (value.Value, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return value.Null(), fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return value.Null(), fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return value.Null(), fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	doc, err := value.Decode(resp.Body)
	if err != nil {
		return value.Null(), fmt.Errorf("invalid JSON body: %w", err)
	}
	return doc, nil
}

// narrow applies the optional path, resolving one [RANDOM] token by uniform
// selection from the list the preceding path yields.
func narrow(doc value.Value, path string, randInt func(int) int) (value.Value, error) {
	if path == "" {
		return doc, nil
	}

	before, after, hasRandom := strings.Cut(path, RandomToken)
	if !hasRandom {
		v, ok := Eval(path, doc)
		if !ok {
			return value.Null(), fmt.Errorf("path %q yielded no match", path)
		}
		return v, nil
	}

	list := doc
	if b := strings.TrimSpace(before); b != "" {
		v, ok := Eval(b, doc)
		if !ok {
			return value.Null(), fmt.Errorf("path %q yielded no match", b)
		}
		list = v
	}
	if list.Kind() != value.KindList {
		return value.Null(), fmt.Errorf("[RANDOM] requires a list, path %q yielded %s", before, list.Kind())
	}
	n := list.Len()
	if n == 0 {
		return value.Null(), fmt.Errorf("[RANDOM] requires a non-empty list at path %q", before)
	}
	picked := list.List()[randInt(n)]

	if a := strings.TrimSpace(after); a != "" {
		v, ok := Eval(a, picked)
		if !ok {
			return value.Null(), fmt.Errorf("path %q yielded no match after [RANDOM]", a)
		}
		return v, nil
	}
	return picked, nil
}

// Eval runs a dotted/bracketed JSONPath expression against a value tree.
// Zero matches (including malformed paths) report false; wildcard queries
// come back as list values whose stringification is the comma-joined form.
func Eval(path string, root value.Value) (value.Value, bool) {
	result, err := jsonpath.Get(canonicalPath(path), root.Interface())
	if err != nil {
		return value.Null(), false
	}
	return value.FromAny(result), true
}

// canonicalPath prefixes the implicit root selector: callers write
// stories[0].description, the evaluator wants $.stories[0].description.
func canonicalPath(path string) string {
	path = strings.TrimSpace(path)
	switch {
	case strings.HasPrefix(path, "$"):
		return path
	case strings.HasPrefix(path, "["):
		return "$" + path
	case strings.HasPrefix(path, "."):
		return "$" + path
	default:
		return "$." + path
	}
}
