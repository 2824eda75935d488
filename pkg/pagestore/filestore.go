package pagestore

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/jetdb/jetdb/pkg/common/log"
	"github.com/jetdb/jetdb/pkg/telemetry"
)

// FilePageStore is the file-backed reference implementation of PageStore.
// Pages are fixed-size blocks within a single *os.File, addressed by
// pageNumber*PageSize, mirroring the teacher's single-data-file layout
// (simpler than its multi-SSTable-file layout, since a Jet file is one
// file). Writes inside a StartWrite/FinishWrite bracket are journaled
// first so a crash mid-epoch never leaves the main file half-updated.
type FilePageStore struct {
	mu   sync.Mutex
	file *os.File

	journalPath string
	journal     *os.File
	epochOpen   bool
	buffered    []journalRecord

	pageSize int
	nextPage int32

	log log.Logger
	tel telemetry.Telemetry
}

// Open opens (creating if necessary) a file-backed page store at path,
// using pageSize as the fixed page size. The page reservation counter is
// seeded from the file's current length in whole pages.
func Open(path string, pageSize int, opts ...Option) (*FilePageStore, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrStorageFailure, path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: stat %s: %v", ErrStorageFailure, path, err)
	}

	store := &FilePageStore{
		file:        f,
		journalPath: path + ".journal",
		pageSize:    pageSize,
		nextPage:    int32(info.Size() / int64(pageSize)),
		log:         log.Nop(),
		tel:         telemetry.NewNoop(),
	}
	for _, opt := range opts {
		opt(store)
	}

	if err := store.recoverJournal(); err != nil {
		f.Close()
		return nil, err
	}
	return store, nil
}

// Option configures a FilePageStore at construction time.
type Option func(*FilePageStore)

// WithLogger attaches a structured logger.
func WithLogger(l log.Logger) Option {
	return func(s *FilePageStore) { s.log = l }
}

// WithTelemetry attaches a telemetry sink.
func WithTelemetry(t telemetry.Telemetry) Option {
	return func(s *FilePageStore) { s.tel = t }
}

func (s *FilePageStore) PageSize() int { return s.pageSize }

func (s *FilePageStore) CreatePageBuffer() []byte {
	return make([]byte, s.pageSize)
}

func (s *FilePageStore) ReadPage(buf []byte, pageNumber int32) error {
	if len(buf) != s.pageSize {
		return fmt.Errorf("%w: read buffer is %d bytes, want %d", ErrStorageFailure, len(buf), s.pageSize)
	}
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	offset := int64(pageNumber) * int64(s.pageSize)
	if _, err := s.file.ReadAt(buf, offset); err != nil {
		s.log.Error("page read failed", "page", pageNumber, "err", err)
		return fmt.Errorf("%w: read page %d: %v", ErrStorageFailure, pageNumber, err)
	}
	s.tel.RecordHistogram(context.Background(), "jetdb.pagestore.read_seconds", time.Since(start).Seconds(),
		attribute.Int("page", int(pageNumber)))
	s.log.Debug("page read", "page", pageNumber)
	return nil
}

func (s *FilePageStore) WritePage(buf []byte, pageNumber int32) error {
	if len(buf) != s.pageSize {
		return fmt.Errorf("%w: write buffer is %d bytes, want %d", ErrStorageFailure, len(buf), s.pageSize)
	}
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.epochOpen {
		if err := appendJournalRecord(s.journal, pageNumber, buf); err != nil {
			return err
		}
		s.buffered = append(s.buffered, journalRecord{pageNumber: pageNumber, payload: append([]byte{}, buf...)})
		s.log.Debug("page journaled", "page", pageNumber)
		return nil
	}

	if err := s.writeThrough(pageNumber, buf); err != nil {
		return err
	}
	s.tel.RecordHistogram(context.Background(), "jetdb.pagestore.write_seconds", time.Since(start).Seconds(),
		attribute.Int("page", int(pageNumber)))
	return nil
}

func (s *FilePageStore) writeThrough(pageNumber int32, buf []byte) error {
	offset := int64(pageNumber) * int64(s.pageSize)
	if _, err := s.file.WriteAt(buf, offset); err != nil {
		s.log.Error("page write failed", "page", pageNumber, "err", err)
		return fmt.Errorf("%w: write page %d: %v", ErrStorageFailure, pageNumber, err)
	}
	return nil
}

func (s *FilePageStore) ReservePageNumber() (int32, error) {
	return atomic.AddInt32(&s.nextPage, 1) - 1, nil
}

func (s *FilePageStore) StartWrite() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.epochOpen {
		return fmt.Errorf("%w: write epoch already open", ErrStorageFailure)
	}
	j, err := os.OpenFile(s.journalPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("%w: open journal: %v", ErrStorageFailure, err)
	}
	s.journal = j
	s.buffered = nil
	s.epochOpen = true
	return nil
}

// FinishWrite applies every journaled page to the main file, fsyncs it,
// and discards the journal. It is safe to call even if StartWrite was
// never called, so the scoped-epoch helper's deferred call never panics.
func (s *FilePageStore) FinishWrite() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.epochOpen {
		return nil
	}
	defer func() {
		s.epochOpen = false
		s.buffered = nil
		if s.journal != nil {
			s.journal.Close()
			s.journal = nil
		}
	}()

	for _, rec := range s.buffered {
		if err := s.writeThrough(rec.pageNumber, rec.payload); err != nil {
			return err
		}
	}
	if err := s.file.Sync(); err != nil {
		return fmt.Errorf("%w: fsync: %v", ErrStorageFailure, err)
	}
	if err := os.Remove(s.journalPath); err != nil && !os.IsNotExist(err) {
		s.log.Warn("journal cleanup failed", "err", err)
	}
	s.log.Debug("write epoch finished", "pages", len(s.buffered))
	return nil
}

// Close releases the underlying file handle.
func (s *FilePageStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}

// recoverJournal replays a journal left behind by a process that crashed
// between FinishWrite's journal append and its main-file apply. Recovery
// of a partially written epoch beyond this "replay what's complete" pass
// is out of scope, per the Non-goal on recovering partially written files.
func (s *FilePageStore) recoverJournal() error {
	j, err := os.Open(s.journalPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("%w: open journal for recovery: %v", ErrStorageFailure, err)
	}
	defer j.Close()

	records, err := readJournalRecords(j, s.pageSize)
	if err != nil {
		return err
	}
	for _, rec := range records {
		if err := s.writeThrough(rec.pageNumber, rec.payload); err != nil {
			return err
		}
	}
	if len(records) > 0 {
		s.log.Warn("recovered journaled pages from prior crash", "count", len(records))
		if err := s.file.Sync(); err != nil {
			return fmt.Errorf("%w: fsync after recovery: %v", ErrStorageFailure, err)
		}
	}
	return os.Remove(s.journalPath)
}

var _ io.Closer = (*FilePageStore)(nil)
