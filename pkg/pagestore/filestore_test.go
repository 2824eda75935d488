package pagestore

import (
	"errors"
	"path/filepath"
	"testing"
)

func openTemp(t *testing.T) *FilePageStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.accdb")
	store, err := Open(path, 4096)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestReservePageNumberIncrementsMonotonically(t *testing.T) {
	store := openTemp(t)
	first, err := store.ReservePageNumber()
	if err != nil {
		t.Fatalf("ReservePageNumber: %v", err)
	}
	second, err := store.ReservePageNumber()
	if err != nil {
		t.Fatalf("ReservePageNumber: %v", err)
	}
	if second != first+1 {
		t.Fatalf("ReservePageNumber sequence = %d, %d", first, second)
	}
}

func TestWriteThenReadPageOutsideEpoch(t *testing.T) {
	store := openTemp(t)
	buf := store.CreatePageBuffer()
	buf[0] = 0x04
	buf[1] = 0x01
	if err := store.WritePage(buf, 3); err != nil {
		t.Fatalf("WritePage: %v", err)
	}

	got := make([]byte, store.PageSize())
	if err := store.ReadPage(got, 3); err != nil {
		t.Fatalf("ReadPage: %v", err)
	}
	if got[0] != 0x04 || got[1] != 0x01 {
		t.Fatalf("ReadPage returned unexpected header: %v", got[:2])
	}
}

func TestWriteEpochAppliesAllPagesOnFinish(t *testing.T) {
	store := openTemp(t)
	err := WithWriteEpoch(store, func() error {
		buf1 := store.CreatePageBuffer()
		buf1[0] = 1
		buf2 := store.CreatePageBuffer()
		buf2[0] = 2
		if err := store.WritePage(buf1, 0); err != nil {
			return err
		}
		return store.WritePage(buf2, 1)
	})
	if err != nil {
		t.Fatalf("WithWriteEpoch: %v", err)
	}

	got := make([]byte, store.PageSize())
	store.ReadPage(got, 0)
	if got[0] != 1 {
		t.Fatalf("page 0 not applied")
	}
	store.ReadPage(got, 1)
	if got[0] != 2 {
		t.Fatalf("page 1 not applied")
	}
}

func TestWithWriteEpochCallsFinishWriteOnError(t *testing.T) {
	store := openTemp(t)
	sentinel := errors.New("boom")

	err := WithWriteEpoch(store, func() error {
		buf := store.CreatePageBuffer()
		if werr := store.WritePage(buf, 0); werr != nil {
			return werr
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("WithWriteEpoch error = %v, want %v", err, sentinel)
	}
	if store.epochOpen {
		t.Fatalf("epoch left open after error")
	}
}

func TestWithWriteEpochRepanicsAfterFinishWrite(t *testing.T) {
	store := openTemp(t)
	defer func() {
		r := recover()
		if r != "kaboom" {
			t.Fatalf("recover() = %v, want kaboom", r)
		}
		if store.epochOpen {
			t.Fatalf("epoch left open after panic")
		}
	}()

	_ = WithWriteEpoch(store, func() error {
		panic("kaboom")
	})
}
