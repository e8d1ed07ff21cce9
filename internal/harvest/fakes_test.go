// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package harvest_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/taibuivan/yomira-harvester/internal/catalog"
	"github.com/taibuivan/yomira-harvester/internal/harvest"
	"github.com/taibuivan/yomira-harvester/pkg/pagination"
)

// # Remote Catalog Fake

// fakeSource is an in-memory remote catalog that records every call.
type fakeSource struct {
	mu sync.Mutex

	// total is the page count reported by every listing call.
	total int
	// listing maps a catalog page number to its items.
	listing map[int][]catalog.Comic
	// details overrides the detail of an item.
	details map[string]catalog.ComicDetail
	// episodes holds the pages of an item's episode listing.
	episodes map[string][][]catalog.Episode
	// contents holds the content-page pages per item and episode order.
	contents map[string]map[int][][]catalog.PageRef

	failComics map[int]error
	failDetail map[string]error

	// onComics runs before a listing call is answered.
	onComics func(page int)

	calls []string
}

func newFakeSource(total int) *fakeSource {
	return &fakeSource{
		total:      total,
		listing:    map[int][]catalog.Comic{},
		details:    map[string]catalog.ComicDetail{},
		episodes:   map[string][][]catalog.Episode{},
		contents:   map[string]map[int][][]catalog.PageRef{},
		failComics: map[int]error{},
		failDetail: map[string]error{},
	}
}

func (f *fakeSource) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeSource) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// CallsWithPrefix returns the recorded calls of one endpoint.
func (f *fakeSource) CallsWithPrefix(prefix string) []string {
	var out []string
	for _, call := range f.Calls() {
		if len(call) >= len(prefix) && call[:len(prefix)] == prefix {
			out = append(out, call)
		}
	}
	return out
}

func (f *fakeSource) SetTotal(total int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.total = total
}

func (f *fakeSource) Comics(_ context.Context, page int) (pagination.Page[catalog.Comic], error) {
	f.record(fmt.Sprintf("comics:%d", page))
	if f.onComics != nil {
		f.onComics(page)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.failComics[page]; err != nil {
		return pagination.Page[catalog.Comic]{}, err
	}
	return pagination.Page[catalog.Comic]{Docs: f.listing[page], Page: page, Pages: f.total}, nil
}

func (f *fakeSource) ComicDetail(_ context.Context, comicID string) (*catalog.ComicDetail, error) {
	f.record("detail:" + comicID)

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.failDetail[comicID]; err != nil {
		return nil, err
	}
	if detail, ok := f.details[comicID]; ok {
		return &detail, nil
	}
	return &catalog.ComicDetail{ID: comicID, Title: "Comic " + comicID, EpsCount: 1}, nil
}

func (f *fakeSource) Episodes(_ context.Context, comicID string, page int) (pagination.Page[catalog.Episode], error) {
	f.record(fmt.Sprintf("episodes:%s:%d", comicID, page))

	f.mu.Lock()
	defer f.mu.Unlock()

	pages, ok := f.episodes[comicID]
	if !ok {
		pages = [][]catalog.Episode{{{ID: comicID + "-e1", Title: "Episode 1", Order: 1}}}
	}
	return pageOf(pages, page), nil
}

func (f *fakeSource) EpisodePages(_ context.Context, comicID string, order, page int) (pagination.Page[catalog.PageRef], error) {
	f.record(fmt.Sprintf("pages:%s:%d:%d", comicID, order, page))

	f.mu.Lock()
	defer f.mu.Unlock()

	pages, ok := f.contents[comicID][order]
	if !ok {
		pages = [][]catalog.PageRef{{{ID: fmt.Sprintf("%s-%d-p1", comicID, order), Media: catalog.Media{Path: fmt.Sprintf("%s/%d/1.jpg", comicID, order)}}}}
	}
	return pageOf(pages, page), nil
}

func pageOf[T any](pages [][]T, page int) pagination.Page[T] {
	result := pagination.Page[T]{Page: page, Pages: len(pages)}
	if page >= 1 && page <= len(pages) {
		result.Docs = pages[page-1]
	}
	return result
}

func comicsNamed(ids ...string) []catalog.Comic {
	comics := make([]catalog.Comic, 0, len(ids))
	for _, id := range ids {
		comics = append(comics, catalog.Comic{ID: id, Title: "Comic " + id, EpsCount: 1})
	}
	return comics
}

// # Record Store Fake

type memoryRepository struct {
	mu        sync.Mutex
	records   map[string]*harvest.Record
	order     []string
	creates   int
	existsErr error
	createErr map[string]error
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{records: map[string]*harvest.Record{}, createErr: map[string]error{}}
}

func (m *memoryRepository) Exists(_ context.Context, identify string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.existsErr != nil {
		return false, m.existsErr
	}
	_, ok := m.records[identify]
	return ok, nil
}

func (m *memoryRepository) Create(_ context.Context, record *harvest.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	if err := m.createErr[record.Identify]; err != nil {
		return err
	}
	if _, ok := m.records[record.Identify]; ok {
		return harvest.ErrAlreadyStored
	}
	m.records[record.Identify] = record
	m.order = append(m.order, record.Identify)
	return nil
}

func (m *memoryRepository) Stored() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.order...)
}

func (m *memoryRepository) Get(identify string) *harvest.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.records[identify]
}

// # Cursor Store Fake

type memoryCursorStore struct {
	mu      sync.Mutex
	state   harvest.State
	saves   []harvest.State
	loadErr error
	saveErr error
}

func (m *memoryCursorStore) Load(context.Context) (harvest.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state, m.loadErr
}

func (m *memoryCursorStore) Save(_ context.Context, state harvest.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.state = state
	m.saves = append(m.saves, state)
	return nil
}

func (m *memoryCursorStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.saves)
}

func (m *memoryCursorStore) State() harvest.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// # Wiring

type fixture struct {
	source     *fakeSource
	repository *memoryRepository
	cursor     *memoryCursorStore
	tracker    *harvest.Tracker
	scanner    *harvest.Scanner
}

func newFixture(source *fakeSource, initial harvest.State) (*fixture, error) {
	repository := newMemoryRepository()
	cursor := &memoryCursorStore{state: initial}
	tracker := harvest.NewTracker(cursor, nil)

	gateway, err := harvest.NewGateway(repository, harvest.Mapper{StripTag: "COSPLAY", Kind: "cosplay"}, 128, nil)
	if err != nil {
		return nil, err
	}

	return &fixture{
		source:     source,
		repository: repository,
		cursor:     cursor,
		tracker:    tracker,
		scanner:    harvest.NewScanner(source, gateway, tracker, nil, discardLogger()),
	}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
