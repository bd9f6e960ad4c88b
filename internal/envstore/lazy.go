package envstore

import "sync"

// Lazy opens the store on first Set, so probes that only print never touch
// the database.
type Lazy struct {
	path string

	mu    sync.Mutex
	store *Store
}

func NewLazy(path string) *Lazy {
	return &Lazy{path: path}
}

func (l *Lazy) Set(name, value string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.store == nil {
		s, err := Open(l.path)
		if err != nil {
			return err
		}
		l.store = s
	}
	return l.store.Set(name, value)
}

// Close closes the store if it was opened.
func (l *Lazy) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.store == nil {
		return nil
	}
	err := l.store.Close()
	l.store = nil
	return err
}
