package stepwise

import (
	"context"
	"sync"
	"time"

	"github.com/zoobzio/capitan"
)

// Archive receives a copy of every recorded entry for auditing.
// The ledger never reads an archive back; it keeps no state across restarts.
type Archive interface {
	// ArchiveEntry writes one entry.
	ArchiveEntry(ctx context.Context, entry Entry) error
}

// Archiver decouples a ledger from its Archive. Entries are queued without
// blocking and written by a single background goroutine in recording order.
// When the queue is full the entry is dropped and ArchiveDropped is emitted.
type Archiver struct {
	archive Archive
	queue   chan Entry
	timeout time.Duration

	closed bool
	mu     sync.RWMutex
	done   chan struct{}
}

// NewArchiver starts an archiver with the given queue size. A non-positive
// buffer uses DefaultArchiveBuffer.
func NewArchiver(archive Archive, buffer int) *Archiver {
	if buffer <= 0 {
		buffer = DefaultArchiveBuffer
	}

	a := &Archiver{
		archive: archive,
		queue:   make(chan Entry, buffer),
		timeout: DefaultArchiveTimeout,
		done:    make(chan struct{}),
	}
	go a.drain()
	return a
}

// Close stops accepting entries, flushes the queue and waits for the
// background writer to finish.
func (a *Archiver) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		<-a.done
		return nil
	}
	a.closed = true
	close(a.queue)
	a.mu.Unlock()

	<-a.done
	return nil
}

func (a *Archiver) enqueue(ctx context.Context, entry Entry) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		capitan.Emit(ctx, ArchiveDropped,
			FieldSessionID.Field(entry.SessionID),
			FieldEntryID.Field(entry.ID),
		)
		return
	}

	select {
	case a.queue <- entry:
	default:
		capitan.Emit(ctx, ArchiveDropped,
			FieldSessionID.Field(entry.SessionID),
			FieldEntryID.Field(entry.ID),
		)
	}
}

func (a *Archiver) drain() {
	defer close(a.done)

	for entry := range a.queue {
		a.write(entry)
	}
}

func (a *Archiver) write(entry Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	if err := a.archive.ArchiveEntry(ctx, entry); err != nil {
		capitan.Error(ctx, ArchiveFailed,
			FieldSessionID.Field(entry.SessionID),
			FieldEntryID.Field(entry.ID),
			FieldError.Field(err),
		)
	}
}
