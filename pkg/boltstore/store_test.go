package boltstore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/crystal-mush/gosoul/pkg/soul"
	"github.com/google/go-cmp/cmp"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "soul.bolt"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPronounRoundTrip(t *testing.T) {
	s := openTemp(t)
	if s.HasData() {
		t.Fatal("fresh store has data")
	}
	p, ok, err := s.LoadPronouns(7)
	if err != nil || ok {
		t.Fatalf("empty load: ok=%v err=%v", ok, err)
	}
	if diff := cmp.Diff(soul.NewPronouns(), p); diff != "" {
		t.Errorf("empty state (-want +got):\n%s", diff)
	}

	// Entity 0 must survive the zero-value encoding.
	want := soul.NewPronouns().With(soul.SlotHe, 0).With(soul.SlotIt, 12).With(soul.SlotThey, 0, 3)
	if err := s.SavePronouns(7, want); err != nil {
		t.Fatal(err)
	}
	got, ok, err := s.LoadPronouns(7)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("state (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]soul.EntityID{0}, got.Get(soul.SlotHe)); diff != "" {
		t.Errorf("entity 0 lost (-want +got):\n%s", diff)
	}
	if got.Get(soul.SlotShe) != nil {
		t.Errorf("unbound she came back bound: %+v", got)
	}
	if !s.HasData() || s.Saves() != 1 {
		t.Errorf("HasData=%v Saves=%d", s.HasData(), s.Saves())
	}

	if err := s.ForgetPronouns(7); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := s.LoadPronouns(7); ok {
		t.Error("state still present after forget")
	}
}

func TestReopenKeepsState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "soul.bolt")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SavePronouns(-5, soul.NewPronouns().With(soul.SlotHe, 1).With(soul.SlotShe, 2)); err != nil {
		t.Fatal(err)
	}
	if err := s.PutActor("Julie", 1, ""); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	all, err := s.LoadAll()
	if err != nil {
		t.Fatal(err)
	}
	if p, ok := all[-5]; !ok || p.He != 1 || p.She != 2 || p.Get(soul.SlotIt) != nil {
		t.Errorf("reloaded state = %+v", all)
	}
	if id, ok := s.LookupActor("julie"); !ok || id != 1 {
		t.Errorf("LookupActor = %d, %v", id, ok)
	}
}

func TestActorRename(t *testing.T) {
	s := openTemp(t)
	s.PutActor("kate", 3, "")
	s.PutActor("katherine", 3, "kate")
	if _, ok := s.LookupActor("kate"); ok {
		t.Error("old name still indexed")
	}
	if id, ok := s.LookupActor("KATHERINE"); !ok || id != 3 {
		t.Errorf("LookupActor = %d, %v", id, ok)
	}
}

func TestPruneBefore(t *testing.T) {
	s := openTemp(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }
	s.SavePronouns(1, soul.NewPronouns())
	s.now = func() time.Time { return base.Add(48 * time.Hour) }
	s.SavePronouns(2, soul.NewPronouns())

	n, err := s.PruneBefore(base.Add(24 * time.Hour))
	if err != nil || n != 1 {
		t.Fatalf("PruneBefore = %d, %v", n, err)
	}
	if _, ok, _ := s.LoadPronouns(1); ok {
		t.Error("stale record kept")
	}
	if _, ok, _ := s.LoadPronouns(2); !ok {
		t.Error("fresh record dropped")
	}
}

func TestBackup(t *testing.T) {
	s := openTemp(t)
	s.SavePronouns(4, soul.NewPronouns().With(soul.SlotHe, 9))
	path := filepath.Join(t.TempDir(), "backup.bolt")
	if err := s.Backup(path); err != nil {
		t.Fatal(err)
	}
	b, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()
	if p, ok, _ := b.LoadPronouns(4); !ok || p.He != 9 {
		t.Errorf("backup state = %+v, %v", p, ok)
	}
}

func TestKeyOrdering(t *testing.T) {
	if keyToID(idToKey(soul.NoEntity)) != soul.NoEntity {
		t.Error("NoEntity does not round-trip")
	}
	if string(idToKey(-1)) >= string(idToKey(0)) {
		t.Error("negative ids must sort first")
	}
}
