package dump

import (
	"testing"
)

func TestColorWordRoundTrip(t *testing.T) {

	words := []uint16{0x0000, 0x7FFF, 0x8000, 0x001F, 0x03E0, 0x7C00, 0x4210, 0xFFFF}

	for _, w := range words {
		got := EncodeColorWord(DecodeColorWord(w))
		if got != w {
			t.Fatalf("word 0x%04X round-tripped to 0x%04X", w, got)
		}
	}

}

func TestDecodePaletteTruncated(t *testing.T) {

	buf := make([]byte, 100)

	if _, err := DecodePalette(buf, 90, 64); !IsTruncated(err) {
		t.Fatalf("expected truncation error, got %v", err)
	}
	if _, err := DecodePalette(buf, -2, 4); !IsTruncated(err) {
		t.Fatalf("negative offset should be rejected, got %v", err)
	}
	if _, err := DecodePalette(buf, 0, -1); !IsTruncated(err) {
		t.Fatalf("negative count should be rejected, got %v", err)
	}

	pal, err := DecodePalette(buf, 0, 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(pal) != 50 {
		t.Fatalf("got %d entries", len(pal))
	}

}

func TestEncodePaletteOverflow(t *testing.T) {

	pal := make(Palette, PALETTE_SLOTS+1)
	if _, err := EncodePalette(pal, PALETTE_SLOTS); err == nil {
		t.Fatalf("expected overflow error")
	}

}

func TestPaletteCodecRoundTrip(t *testing.T) {

	pal := Palette{
		DecodeColorWord(0x7C00),
		DecodeColorWord(0x03E0),
		DecodeColorWord(0x001F),
		DecodeColorWord(0x8000),
	}

	enc, err := EncodePalette(pal, PALETTE_SLOTS)
	if err != nil {
		t.Fatal(err)
	}
	if len(enc) != PALETTE_BYTES {
		t.Fatalf("encoded palette is %d bytes", len(enc))
	}

	dec, err := DecodePalette(enc, 0, PALETTE_SLOTS)
	if err != nil {
		t.Fatal(err)
	}
	for i, e := range pal {
		if dec[i] != e {
			t.Fatalf("slot %d: %v became %v", i, e, dec[i])
		}
	}
	// padding repeats the last real entry
	if dec[PALETTE_SLOTS-1] != pal[len(pal)-1] {
		t.Fatalf("padding slot holds %v", dec[PALETTE_SLOTS-1])
	}

}

func TestUpdatePalettePreservesMatchingSlots(t *testing.T) {

	a := DecodeColorWord(0x7C00)
	b := DecodeColorWord(0x03E0)
	c := DecodeColorWord(0x001F)
	d := DecodeColorWord(0x7FFF)

	old := Palette{a, b, c}

	next, err := UpdatePaletteFromImage(old, []PaletteEntry{c, d})
	if err != nil {
		t.Fatal(err)
	}
	if next[2] != c {
		t.Fatalf("slot 2 should keep its color, got %v", next[2])
	}
	if paletteSlot(next, d) == -1 {
		t.Fatalf("new color not assigned a slot: %v", next)
	}
	if len(next) != len(old) {
		t.Fatalf("palette cardinality changed: %d", len(next))
	}

}

func TestUpdatePaletteColorBudget(t *testing.T) {

	old := make(Palette, 62)
	for i := range old {
		old[i] = DecodeColorWord(uint16(i))
	}

	// More distinct colors than slots, as when a user imports a
	// full-color PNG into an indexed sprite bank.
	var colors []PaletteEntry
	for r := 0; r < 32 && len(colors) < 10524; r++ {
		for g := 0; g < 32 && len(colors) < 10524; g++ {
			for b := 0; b < 32 && len(colors) < 10524; b++ {
				colors = append(colors, DecodeColorWord(uint16(r<<10|g<<5|b)))
			}
		}
	}

	_, err := UpdatePaletteFromImage(old, colors)
	if !IsColorBudget(err) {
		t.Fatalf("expected color budget error, got %v", err)
	}
	cbe := err.(*ColorBudgetError)
	if cbe.Colors != 10524 || cbe.Slots != 62 {
		t.Fatalf("error should carry both counts: %v", cbe)
	}

}
