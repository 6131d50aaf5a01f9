package usecase

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/hoangvum/pdf-chat-assistant/internal/core/domain"
	"github.com/hoangvum/pdf-chat-assistant/internal/core/ports"
)

type fakeRepo struct {
	mu       sync.Mutex
	docs     map[string]*domain.Document
	statuses []domain.DocumentStatus
	results  map[string]domain.IngestResult
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		docs:    make(map[string]*domain.Document),
		results: make(map[string]domain.IngestResult),
	}
}

func (r *fakeRepo) Create(_ context.Context, doc *domain.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[doc.ID] = doc
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*domain.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrDocumentNotFound, "get document", fmt.Errorf("id %s", id))
	}
	return doc, nil
}

func (r *fakeRepo) UpdateStatus(_ context.Context, id string, status domain.DocumentStatus, errMessage string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return domain.WrapError(domain.ErrDocumentNotFound, "update status", fmt.Errorf("id %s", id))
	}
	doc.Status = status
	doc.Error = errMessage
	r.statuses = append(r.statuses, status)
	return nil
}

func (r *fakeRepo) SaveIngestResult(_ context.Context, id string, result domain.IngestResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results[id] = result
	return nil
}

type fakeStorage struct {
	saved map[string]string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{saved: make(map[string]string)}
}

func (s *fakeStorage) Save(_ context.Context, key string, data io.Reader) error {
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	s.saved[key] = string(raw)
	return nil
}

func (s *fakeStorage) Path(key string) string { return "/staging/" + key }

type fakeQueue struct {
	published []string
}

func (q *fakeQueue) PublishDocumentUploaded(_ context.Context, documentID string) error {
	q.published = append(q.published, documentID)
	return nil
}

func (q *fakeQueue) SubscribeDocumentUploaded(context.Context, func(context.Context, string) error) error {
	return nil
}

type fakeFingerprinter struct {
	hashes map[string]string
}

func (f *fakeFingerprinter) Hash(path string) (string, error) {
	if hash, ok := f.hashes[path]; ok {
		return hash, nil
	}
	return "", domain.WrapError(domain.ErrDocumentNotFound, "fingerprint", fmt.Errorf("path %s", path))
}

type fakeRegistry struct {
	mu     sync.Mutex
	known  map[string]string
	events *eventLog
}

func newFakeRegistry(events *eventLog) *fakeRegistry {
	return &fakeRegistry{known: make(map[string]string), events: events}
}

func (r *fakeRegistry) Contains(hash string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.known[hash]
	return ok
}

func (r *fakeRegistry) Record(hash, sourcePath string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.known[hash] = sourcePath
	if r.events != nil {
		r.events.add("registry.record")
	}
	return nil
}

type fakeLoader struct {
	pages map[string][]domain.Page
	calls int
}

func (l *fakeLoader) LoadPages(_ context.Context, path string) ([]domain.Page, error) {
	l.calls++
	pages, ok := l.pages[path]
	if !ok {
		return nil, domain.WrapError(domain.ErrDocumentNotFound, "load pages", fmt.Errorf("path %s", path))
	}
	return pages, nil
}

// passthroughChunker splits on blank lines so tests control chunk
// boundaries directly.
type passthroughChunker struct{}

func (passthroughChunker) Normalize(text string) string { return text }

func (passthroughChunker) Split(text string) []string {
	var out []string
	for _, part := range strings.Split(text, "\n\n") {
		if strings.TrimSpace(part) != "" {
			out = append(out, part)
		}
	}
	return out
}

type fakeEmbedder struct {
	queryCalls int
	embedCalls int
	vector     []float32
}

func (e *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	e.embedCalls++
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

func (e *fakeEmbedder) EmbedQuery(context.Context, string) ([]float32, error) {
	e.queryCalls++
	if e.vector == nil {
		return []float32{1, 0}, nil
	}
	return e.vector, nil
}

// fakeIndex scores hits by the order they were scripted, lowest first.
type fakeIndex struct {
	id     string
	chunks []domain.Chunk
	scores []float64
}

func (x *fakeIndex) AddChunks(chunks []domain.Chunk, _ [][]float32) error {
	x.chunks = append(x.chunks, chunks...)
	return nil
}

func (x *fakeIndex) SearchWithScore(_ []float32, k int) ([]domain.RetrievedChunk, error) {
	out := make([]domain.RetrievedChunk, 0, len(x.chunks))
	for i, chunk := range x.chunks {
		score := float64(i)
		if i < len(x.scores) {
			score = x.scores[i]
		}
		out = append(out, domain.RetrievedChunk{
			DocumentID: x.id,
			Filename:   chunk.Source,
			Text:       chunk.Text,
			ChunkIndex: chunk.Ordinal,
			Score:      score,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score < out[j].Score })
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}

func (x *fakeIndex) Len() int { return len(x.chunks) }

type fakeIndexStore struct {
	mu      sync.Mutex
	indexes map[string]*fakeIndex
	events  *eventLog
}

func newFakeIndexStore(events *eventLog) *fakeIndexStore {
	return &fakeIndexStore{indexes: make(map[string]*fakeIndex), events: events}
}

func (s *fakeIndexStore) Load(_ context.Context, documentID string) (ports.VectorIndex, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	index, ok := s.indexes[documentID]
	if !ok {
		return nil, domain.WrapError(domain.ErrDocumentNotFound, "load index", fmt.Errorf("id %s", documentID))
	}
	return index, nil
}

func (s *fakeIndexStore) OpenOrCreate(_ context.Context, documentID string) (ports.VectorIndex, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	index, ok := s.indexes[documentID]
	if !ok {
		index = &fakeIndex{id: documentID}
		s.indexes[documentID] = index
	}
	return index, nil
}

func (s *fakeIndexStore) Persist(_ context.Context, documentID string, _ ports.VectorIndex) error {
	if s.events != nil {
		s.events.add("index.persist:" + documentID)
	}
	return nil
}

func (s *fakeIndexStore) List(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.indexes))
	for id := range s.indexes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

type fakeArchive struct {
	mu    sync.Mutex
	texts map[string]string
}

func newFakeArchive() *fakeArchive {
	return &fakeArchive{texts: make(map[string]string)}
}

func (a *fakeArchive) Write(documentID, text string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.texts[documentID]; !ok {
		a.texts[documentID] = text
	}
	return nil
}

func (a *fakeArchive) Read(documentID string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	text, ok := a.texts[documentID]
	if !ok {
		return "", domain.WrapError(domain.ErrDocumentNotFound, "read archive", fmt.Errorf("id %s", documentID))
	}
	return text, nil
}

func (a *fakeArchive) Exists(documentID string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.texts[documentID]
	return ok
}

type fakeGenerator struct {
	prompts []string
	reply   string
	err     error
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return "", g.err
	}
	if g.reply == "" {
		return "generated answer.", nil
	}
	return g.reply, nil
}

type fakeRetriever struct {
	calls int
	hits  []domain.RetrievedChunk
	err   error
}

func (r *fakeRetriever) Retrieve(context.Context, []string, string) ([]domain.RetrievedChunk, error) {
	r.calls++
	return r.hits, r.err
}

type fakeExpander struct{}

func (fakeExpander) Expand(_, matchedText string) string {
	return "before " + matchedText + " after"
}

type fixedClassifier struct {
	topic domain.Topic
}

func (c fixedClassifier) Classify(string) domain.Topic { return c.topic }

// eventLog records cross-fake ordering for invariant checks.
type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(event string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
}

func (l *eventLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}
