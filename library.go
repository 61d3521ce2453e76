package ats

import (
	"fmt"
	"strings"
	"sync"
	"weak"
)

// Handle names a document registered in a Library.
type Handle string

// Library is a registry of decoded documents keyed by handle. It holds
// documents weakly: a document stays reachable through its handle only as
// long as someone else keeps a reference to it, typically an engine or the
// caller of Load.
//
// Library is safe for concurrent use but not meant for the render path.
type Library struct {
	opts DecodeOptions

	mu    sync.Mutex
	docs  map[Handle]weak.Pointer[Document]
	count uint64
}

// NewLibrary creates a library that decodes with opts.
func NewLibrary(opts DecodeOptions) *Library {
	return &Library{
		opts: opts,
		docs: make(map[Handle]weak.Pointer[Document]),
	}
}

// Load decodes data and registers the document under a fresh handle
// derived from name. The caller must keep the returned document alive for
// the handle to stay valid.
func (l *Library) Load(name string, data []byte) (Handle, *Document, error) {
	doc, err := DecodeWithOptions(data, l.opts)
	if err != nil {
		return "", nil, err
	}
	return l.Add(name, doc), doc, nil
}

// Add registers an already decoded document.
func (l *Library) Add(name string, doc *Document) Handle {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prune()
	l.count++
	h := Handle(fmt.Sprintf("%d-%s", l.count, handleName(name)))
	l.docs[h] = weak.Make(doc)
	return h
}

// Get returns the document for h.
func (l *Library) Get(h Handle) (*Document, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	wp, ok := l.docs[h]
	if !ok {
		return nil, fmt.Errorf("ats: handle %q: %w", h, ErrUnknownHandle)
	}
	doc := wp.Value()
	if doc == nil {
		delete(l.docs, h)
		return nil, fmt.Errorf("ats: handle %q released: %w", h, ErrUnknownHandle)
	}
	return doc, nil
}

// Describe returns the summary of the document behind h.
func (l *Library) Describe(h Handle) (Description, error) {
	doc, err := l.Get(h)
	if err != nil {
		return Description{}, err
	}
	return doc.Describe(), nil
}

// Remove forgets h.
func (l *Library) Remove(h Handle) {
	l.mu.Lock()
	delete(l.docs, h)
	l.mu.Unlock()
}

// Len returns the number of live documents.
func (l *Library) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.prune()
	return len(l.docs)
}

// prune drops handles whose document has been collected. l.mu must be held.
func (l *Library) prune() {
	for h, wp := range l.docs {
		if wp.Value() == nil {
			delete(l.docs, h)
		}
	}
}

// handleName reduces name to a file-name-like token.
func handleName(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSuffix(name, ".ats")
	if name == "" {
		return "doc"
	}
	return strings.Map(func(r rune) rune {
		if r == ' ' || r < 0x20 {
			return '_'
		}
		return r
	}, name)
}
