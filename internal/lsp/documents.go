package lsp

import (
	"sync"
)

type document struct {
	languageID string
	text       string
}

// documentStore keeps the full text of every open document. Handlers may run
// concurrently, so access is guarded.
type documentStore struct {
	mu   sync.RWMutex
	docs map[string]document
}

func newDocumentStore() *documentStore {
	return &documentStore{docs: make(map[string]document)}
}

func (d *documentStore) open(uri, languageID, text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.docs[uri] = document{languageID: languageID, text: text}
}

// replace updates the text of an open document and reports whether it was
// open.
func (d *documentStore) replace(uri, text string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	doc, ok := d.docs[uri]
	if !ok {
		return false
	}
	doc.text = text
	d.docs[uri] = doc
	return true
}

func (d *documentStore) close(uri string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.docs, uri)
}

func (d *documentStore) get(uri string) (document, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	doc, ok := d.docs[uri]
	return doc, ok
}
