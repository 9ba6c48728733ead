package repository

import (
	"sort"
	"sync"
)

// changeSink receives "table X was mutated" signals from the gorm repositories.
type changeSink interface {
	changed(table string)
}

// ChangeFeed fans committed table mutations out to subscribers.
// Callbacks run synchronously on the mutating goroutine, in subscription order.
type ChangeFeed struct {
	mu   sync.Mutex
	next int
	subs map[string]map[int]func()
}

func NewChangeFeed() *ChangeFeed {
	return &ChangeFeed{subs: make(map[string]map[int]func())}
}

func (f *ChangeFeed) Subscribe(table string, fn func()) (unsubscribe func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.next
	f.next++
	if f.subs[table] == nil {
		f.subs[table] = make(map[int]func())
	}
	f.subs[table][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			delete(f.subs[table], id)
		})
	}
}

// Notify calls every subscriber of each table. The lock is not held during callbacks,
// so a callback may subscribe or unsubscribe.
func (f *ChangeFeed) Notify(tables ...string) {
	for _, table := range tables {
		for _, fn := range f.snapshot(table) {
			fn()
		}
	}
}

func (f *ChangeFeed) snapshot(table string) []func() {
	f.mu.Lock()
	defer f.mu.Unlock()

	ids := make([]int, 0, len(f.subs[table]))
	for id := range f.subs[table] {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	fns := make([]func(), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, f.subs[table][id])
	}
	return fns
}

func (f *ChangeFeed) changed(table string) {
	if f != nil {
		f.Notify(table)
	}
}

// pendingChanges collects the tables touched inside a store transaction.
type pendingChanges struct {
	tables []string
}

func (p *pendingChanges) changed(table string) {
	for _, t := range p.tables {
		if t == table {
			return
		}
	}
	p.tables = append(p.tables, table)
}

func notify(sink changeSink, table string) {
	if sink != nil {
		sink.changed(table)
	}
}
