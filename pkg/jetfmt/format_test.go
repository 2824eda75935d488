package jetfmt

import "testing"

func TestLookupKnownVersions(t *testing.T) {
	for _, v := range []Version{Version2000, Version2003, Version2007} {
		f, ok := Lookup(v)
		if !ok {
			t.Fatalf("expected %s to be registered", v)
		}
		if f.PageSize <= 0 {
			t.Fatalf("%s: expected positive page size, got %d", v, f.PageSize)
		}
		if f.SizeIndexEntryMask <= 0 || f.OffsetIndexEntryMask <= 0 {
			t.Fatalf("%s: expected positive mask geometry", v)
		}
		if f.MaxIndexesPerTable <= 0 || f.MaxColumnsPerTable <= 0 {
			t.Fatalf("%s: expected positive table limits", v)
		}
	}
}

func TestLookupUnknownVersion(t *testing.T) {
	if _, ok := Lookup(Version(99)); ok {
		t.Fatalf("expected unregistered version to fail lookup")
	}
}

func TestMustLookupPanicsOnUnknown(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for unregistered version")
		}
	}()
	MustLookup(Version(99))
}
