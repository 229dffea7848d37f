package dump

import (
	"testing"
)

func TestLayoutTablesAreConsistent(t *testing.T) {

	if err := validateLayouts(); err != nil {
		t.Fatalf("layout tables: %v", err)
	}

}

func TestLocateSpriteKnownOffsets(t *testing.T) {

	loc, err := LocateSprite(DT_D3, 300, 0)
	if err != nil {
		t.Fatal(err)
	}
	if loc.Offset != 0x150000 {
		t.Fatalf("partner slot 300 bank 0: got offset 0x%06X", loc.Offset)
	}
	if loc.Width != 24 || loc.Height != 24 {
		t.Fatalf("partner slot is %dx%d", loc.Width, loc.Height)
	}

	loc1, err := LocateSprite(DT_D3, 300, 1)
	if err != nil {
		t.Fatal(err)
	}
	if loc1.Offset != loc.Offset+24*24 {
		t.Fatalf("bank 1 should follow bank 0, got 0x%06X", loc1.Offset)
	}

	next, err := LocateSprite(DT_D3, 301, 0)
	if err != nil {
		t.Fatal(err)
	}
	if next.Offset != loc.Offset+4*24*24 {
		t.Fatalf("index 301 should follow all four banks of 300, got 0x%06X", next.Offset)
	}

}

func TestLocateSpriteRejectsUnknownSlots(t *testing.T) {

	cases := []struct {
		index int
		bank  int
	}{
		{0, 0},    // below first region
		{49, 0},   // gap before items
		{50, 1},   // items have one bank
		{300, 4},  // partners have four banks
		{300, -1}, // negative bank
		{9999, 0}, // past everything
	}

	for _, c := range cases {
		_, err := LocateSprite(DT_D3, c.index, c.bank)
		if err == nil {
			t.Fatalf("index %d bank %d: expected error", c.index, c.bank)
		}
		if !IsIndexOutOfRange(err) {
			t.Fatalf("index %d bank %d: wrong error type %T", c.index, c.bank, err)
		}
	}

}

func TestLocateMeta(t *testing.T) {

	loc, err := LocateMeta(DT_D3, 0)
	if err != nil {
		t.Fatal(err)
	}
	if loc.NameOffset != 0x0A21CC {
		t.Fatalf("record 0 name at 0x%06X", loc.NameOffset)
	}
	if loc.PowerOffset != 0x0A21CC+8 || loc.StageOffset != 0x0A21CC+9 {
		t.Fatalf("record 0 fields misplaced: power 0x%06X stage 0x%06X", loc.PowerOffset, loc.StageOffset)
	}
	if loc.NameLength != 8 {
		t.Fatalf("name field is %d wide", loc.NameLength)
	}

	if _, err := LocateMeta(DT_D3, 154); err != nil {
		t.Fatalf("last record: %v", err)
	}
	if _, err := LocateMeta(DT_D3, 155); !IsIndexOutOfRange(err) {
		t.Fatalf("record 155 should not exist: %v", err)
	}
	if _, err := LocateMeta(DT_D3, -1); !IsIndexOutOfRange(err) {
		t.Fatalf("record -1 should not exist: %v", err)
	}

	dv, err := LocateMeta(DT_DIGIVICE, 0)
	if err != nil {
		t.Fatal(err)
	}
	if dv.StageOffset != -1 {
		t.Fatalf("Digivice records should not have a stage byte")
	}

}

func TestLocateCombinedRecord(t *testing.T) {

	rec, err := Locate(DT_D3, 0, BANK_ATTACK)
	if err != nil {
		t.Fatal(err)
	}
	if len(rec.SpriteBanks) != 4 {
		t.Fatalf("expected 4 pose banks, got %d", len(rec.SpriteBanks))
	}
	if rec.SpriteBanks[0].Index != 300 {
		t.Fatalf("partner 0 should map to sprite slot 300, got %d", rec.SpriteBanks[0].Index)
	}
	if rec.BigImage.Width != 48 || rec.BigImage.Offset != 0x1D0000 {
		t.Fatalf("big image slot wrong: %dx%d @ 0x%06X", rec.BigImage.Width, rec.BigImage.Height, rec.BigImage.Offset)
	}
	if rec.Meta.NameOffset != 0x0A21CC {
		t.Fatalf("metadata not attached")
	}

	if _, err := Locate(DT_D3, 0, 4); !IsIndexOutOfRange(err) {
		t.Fatalf("bank 4 should be rejected: %v", err)
	}

}

func TestDigiviceLayoutConstants(t *testing.T) {

	loc, err := LocateMeta(DT_DIGIVICE, 0)
	if err != nil {
		t.Fatal(err)
	}
	if loc.NameOffset != 0x097F2A {
		t.Fatalf("record 0 name at 0x%06X", loc.NameOffset)
	}
	if _, err := LocateMeta(DT_DIGIVICE, 111); err != nil {
		t.Fatalf("last record: %v", err)
	}
	if _, err := LocateMeta(DT_DIGIVICE, 112); !IsIndexOutOfRange(err) {
		t.Fatalf("record 112 should not exist: %v", err)
	}

	windows := map[string][2]int{
		"items":                 {50, 99},
		"tamer":                 {100, 249},
		"partner small sprites": {250, 449},
		"partner big images":    {450, 649},
		"friend small sprites":  {650, 999},
		"friend big images":     {1000, 1199},
		"digimon attacks":       {1200, 1249},
	}
	hints := HintsForWindow(DT_DIGIVICE, 0, DT_DIGIVICE.MaxSpriteIndex())
	if len(hints) != len(windows) {
		t.Fatalf("expected %d regions, got %d", len(windows), len(hints))
	}
	for _, h := range hints {
		w, ok := windows[h.Name]
		if !ok {
			t.Fatalf("unexpected region %q", h.Name)
		}
		if h.First != w[0] || h.Last != w[1] {
			t.Fatalf("%s window %d-%d", h.Name, h.First, h.Last)
		}
	}

	last, err := LocateSprite(DT_DIGIVICE, 1249, 0)
	if err != nil {
		t.Fatal(err)
	}
	if last.Offset+last.Length() > DIGIVICE_DUMP_BYTES {
		t.Fatalf("last attack slot runs past the dump")
	}

}

func TestRangeHints(t *testing.T) {

	if h := HintsForWindow(DT_D3, 0, 49); len(h) != 0 {
		t.Fatalf("nothing lives below index 50, got %v", h)
	}

	h := HintsForWindow(DT_D3, 50, 50)
	if len(h) != 1 || h[0].Name != "items" {
		t.Fatalf("expected items at index 50, got %v", h)
	}

	h = HintsForWindow(DT_D3, 290, 310)
	if len(h) != 2 {
		t.Fatalf("window 290-310 spans tamer and partner sprites, got %v", h)
	}

	h = HintsForOffset(DT_D3, 0x150000)
	if len(h) != 1 || h[0].Name != "partner small sprites" {
		t.Fatalf("offset 0x150000 is partner sprite data, got %v", h)
	}

	if h := HintsForOffset(DT_D3, 0); len(h) != 0 {
		t.Fatalf("offset 0 is outside every region, got %v", h)
	}

}

func TestBankRoles(t *testing.T) {

	want := []string{"idle1", "idle2", "attack", "dodge"}
	for i, w := range want {
		if BankRole(i) != w {
			t.Fatalf("bank %d role %q", i, BankRole(i))
		}
	}
	if BankRole(7) != "bank7" {
		t.Fatalf("unknown banks fall back to numeric names")
	}

}
