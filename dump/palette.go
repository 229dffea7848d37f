package dump

import "encoding/binary"

// PaletteEntry is one color slot. Channels are 8-bit; the firmware stores
// ARGB1555 words with an inverted alpha bit (0=opaque, 1=transparent).
type PaletteEntry struct {
	R, G, B uint8
	Opaque  bool
}

type Palette []PaletteEntry

// DecodeColorWord expands an ARGB1555 word into an 8-bit entry.
func DecodeColorWord(w uint16) PaletteEntry {
	return PaletteEntry{
		R:      uint8(((w >> 10) & 0x1F) * 255 / 31),
		G:      uint8(((w >> 5) & 0x1F) * 255 / 31),
		B:      uint8((w & 0x1F) * 255 / 31),
		Opaque: w&0x8000 == 0,
	}
}

// EncodeColorWord packs an entry back into an ARGB1555 word.
func EncodeColorWord(e PaletteEntry) uint16 {
	w := uint16((int(e.R)*31+127)/255) << 10
	w |= uint16((int(e.G)*31+127)/255) << 5
	w |= uint16((int(e.B)*31 + 127) / 255)
	if !e.Opaque {
		w |= 0x8000
	}
	return w
}

// DecodePalette reads count 2-byte color entries starting at offset.
func DecodePalette(buffer []byte, offset int, count int) (Palette, error) {
	need := count * PALETTE_ENTRY_SIZE
	if count < 0 || offset < 0 || offset+need > len(buffer) {
		return nil, &TruncatedDataError{Offset: offset, Need: need, Have: len(buffer)}
	}
	pal := make(Palette, count)
	for i := 0; i < count; i++ {
		w := binary.LittleEndian.Uint16(buffer[offset+i*PALETTE_ENTRY_SIZE:])
		pal[i] = DecodeColorWord(w)
	}
	return pal, nil
}

// EncodePalette is the inverse of DecodePalette. The output always fills
// all slots; unused trailing slots repeat the last entry, matching how
// the stock firmware pads its palettes.
func EncodePalette(pal Palette, slots int) ([]byte, error) {
	if len(pal) > slots {
		return nil, &PaletteOverflowError{Entries: len(pal), Slots: slots}
	}
	out := make([]byte, slots*PALETTE_ENTRY_SIZE)
	last := PaletteEntry{}
	for i := 0; i < slots; i++ {
		if i < len(pal) {
			last = pal[i]
		}
		binary.LittleEndian.PutUint16(out[i*PALETTE_ENTRY_SIZE:], EncodeColorWord(last))
	}
	return out, nil
}

// UpdatePaletteFromImage builds a refreshed palette from the distinct
// colors of a replacement image. Colors already present in the old
// palette keep their slot so existing pixel data stays valid; new colors
// take over slots the image no longer uses. The distinct-color count must
// fit the old palette's cardinality.
func UpdatePaletteFromImage(old Palette, colors []PaletteEntry) (Palette, error) {
	distinct := dedupeColors(colors)
	if len(distinct) > len(old) {
		return nil, &ColorBudgetError{Index: -1, Bank: -1, Colors: len(distinct), Slots: len(old)}
	}

	next := make(Palette, len(old))
	copy(next, old)

	kept := make(map[PaletteEntry]bool)
	var missing []PaletteEntry
	for _, c := range distinct {
		if paletteSlot(old, c) >= 0 {
			kept[c] = true
		} else {
			missing = append(missing, c)
		}
	}

	// Preserve the first slot of every color the image still uses, then
	// hand the remaining slots to the image's new colors in order.
	preserve := make([]bool, len(next))
	seen := make(map[PaletteEntry]bool)
	for i, p := range next {
		if kept[p] && !seen[p] {
			preserve[i] = true
			seen[p] = true
		}
	}
	mi := 0
	for i := range next {
		if mi >= len(missing) {
			break
		}
		if preserve[i] {
			continue
		}
		next[i] = missing[mi]
		mi++
	}
	return next, nil
}

func paletteSlot(pal Palette, c PaletteEntry) int {
	for i, p := range pal {
		if p == c {
			return i
		}
	}
	return -1
}

func dedupeColors(colors []PaletteEntry) []PaletteEntry {
	seen := make(map[PaletteEntry]bool)
	var out []PaletteEntry
	for _, c := range colors {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}
