package dump

import (
	"encoding/binary"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// NPC dialogue names live in a string table separate from the partner
// metadata records. The table starts with a 16-bit string count, followed
// by one 16-bit word offset per string (relative to the table start), then
// the string data itself: 16-bit character codes terminated by 0x0000.
// Codes at or above NPC_CONTROL_FLOOR are formatting controls and carry no
// visible character.
//
// Renames are strictly in place: the replacement must have the same
// visible character count as the current name and must fit the byte span
// the string occupies, so no offset in the table ever moves.

const NPC_CONTROL_FLOOR = 0xF000

// npcCharset is the visible-character repertoire of the dialogue font,
// code = 1 + position. Punctuation the firmware's dialogue engine treats
// as control markup is deliberately absent.
const npcCharset = " ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789."

func npcCharCode(c rune) (uint16, bool) {
	i := strings.IndexRune(npcCharset, c)
	if i < 0 {
		return 0, false
	}
	return uint16(1 + i), true
}

func npcCodeChar(w uint16) (byte, bool) {
	i := int(w) - 1
	if i < 0 || i >= len(npcCharset) {
		return 0, false
	}
	return npcCharset[i], true
}

// npcLayout pins the string table for one device family: where the table
// sits in flash, how many bytes it may occupy, and which string indexes
// hold NPC names (the table also stores dialogue lines and menu text,
// which this tool leaves alone).
type npcLayout struct {
	base    int
	size    int
	indexes []int
}

var d3NPCNames = npcLayout{
	base: 0x0C0000,
	size: 0x8000,
	indexes: []int{
		136, 144, 151, 155, 187, 302, 303, 304, 305, 306, 307, 308, 309,
		310, 311, 212, 213, 214, 215, 216, 217, 218, 219, 220, 221, 222,
		223, 224, 225, 226, 227, 228, 229, 230, 231, 232, 233, 234, 235,
		236, 237, 238, 239, 240, 241, 242, 243, 244, 245, 246, 247, 248,
		249, 250, 251, 252, 253, 254,
	},
}

var digiviceNPCNames = npcLayout{
	base: 0x0A0000,
	size: 0x8000,
	indexes: []int{
		95, 102, 106, 109, 112, 115, 118,
		139, 140, 141, 142, 143, 144, 145, 146,
		147, 148, 149, 150, 151, 152, 153, 154,
		155, 156, 157, 158, 159, 160, 161, 162,
		163, 164, 165, 166, 167, 168, 169, 170,
		171, 172, 173, 174, 175, 176, 177, 178,
		179, 180, 181,
	},
}

func npcLayoutFor(dt DeviceType) (*npcLayout, bool) {
	switch dt {
	case DT_D3:
		return &d3NPCNames, true
	case DT_DIGIVICE:
		return &digiviceNPCNames, true
	}
	return nil, false
}

// NPCIndexes lists the string indexes that hold NPC names on the device,
// in table order.
func NPCIndexes(dt DeviceType) []int {
	l, ok := npcLayoutFor(dt)
	if !ok {
		return nil
	}
	out := make([]int, len(l.indexes))
	copy(out, l.indexes)
	return out
}

func (l *npcLayout) hasIndex(si int) bool {
	for _, v := range l.indexes {
		if v == si {
			return true
		}
	}
	return false
}

// npcTable is a parsed string table header: the string count and each
// string's byte offset relative to the table base.
type npcTable struct {
	layout  *npcLayout
	count   int
	offsets []int
}

func parseNPCTable(buffer []byte, l *npcLayout) (*npcTable, error) {
	if l.base < 0 || l.base+l.size > len(buffer) {
		return nil, &TruncatedDataError{Offset: l.base, Need: l.size, Have: len(buffer)}
	}
	view := buffer[l.base : l.base+l.size]
	n := int(binary.LittleEndian.Uint16(view))
	if n < 1 || 2+2*n > len(view) {
		return nil, fmt.Errorf("npc string table at 0x%06X looks corrupt: %d strings", l.base, n)
	}
	offsets := make([]int, n)
	prev := 0
	for i := 0; i < n; i++ {
		w := int(binary.LittleEndian.Uint16(view[2+2*i:]))
		if w < prev || w*2 >= len(view) {
			return nil, fmt.Errorf("npc string table at 0x%06X: offset %d out of order", l.base, i)
		}
		offsets[i] = w * 2
		prev = w
	}
	return &npcTable{layout: l, count: n, offsets: offsets}, nil
}

// capacity is the byte span string si owns: up to the next string's
// offset, or the end of the table block for the last string.
func (t *npcTable) capacity(si int) int {
	end := t.layout.size
	if si+1 < t.count {
		end = t.offsets[si+1]
	}
	return end - t.offsets[si]
}

// decodeNPCString renders a stored string. Control codes are dropped;
// codes outside the known character set render as <XXXX> so the user can
// see them without this tool guessing at the glyph.
func decodeNPCString(view []byte, start int) string {
	var sb strings.Builder
	p := start
	for p+2 <= len(view) {
		w := binary.LittleEndian.Uint16(view[p:])
		p += 2
		if w == 0 {
			break
		}
		if w >= NPC_CONTROL_FLOOR {
			continue
		}
		if c, ok := npcCodeChar(w); ok {
			sb.WriteByte(c)
		} else {
			fmt.Fprintf(&sb, "<%04X>", w)
		}
	}
	return sb.String()
}

// npcNameLen counts visible characters, treating an embedded <XXXX> code
// tag as one character.
func npcNameLen(s string) int {
	n := 0
	for i := 0; i < len(s); {
		if s[i] == '<' && i+5 < len(s) && s[i+5] == '>' {
			i += 6
		} else {
			i++
		}
		n++
	}
	return n
}

func encodeNPCName(name string) ([]byte, error) {
	out := make([]byte, 0, 2*len(name)+2)
	for _, c := range name {
		code, ok := npcCharCode(c)
		if !ok {
			return nil, &InvalidCharacterError{Name: name, Char: c}
		}
		out = binary.LittleEndian.AppendUint16(out, code)
	}
	out = binary.LittleEndian.AppendUint16(out, 0)
	return out, nil
}

// ReadNPCName decodes string stringIndex from the device's NPC table.
func ReadNPCName(buffer []byte, dt DeviceType, stringIndex int) (string, error) {
	l, ok := npcLayoutFor(dt)
	if !ok {
		return "", &UnsupportedOperationError{Device: dt, Op: "npc name read"}
	}
	t, err := parseNPCTable(buffer, l)
	if err != nil {
		return "", err
	}
	if stringIndex < 0 || stringIndex >= t.count {
		return "", &IndexOutOfRangeError{Device: dt, Index: stringIndex, Bank: -1}
	}
	view := buffer[l.base : l.base+l.size]
	return decodeNPCString(view, t.offsets[stringIndex]), nil
}

// WriteNPCName renames an NPC in place. Only the curated NPC string
// indexes are writable, the new name must have exactly as many visible
// characters as the old one, and the encoded bytes must fit the slot, so
// every other string in the table keeps its offset.
func WriteNPCName(buffer []byte, dt DeviceType, stringIndex int, name string) error {
	l, ok := npcLayoutFor(dt)
	if !ok {
		return &UnsupportedOperationError{Device: dt, Op: "npc name write"}
	}
	t, err := parseNPCTable(buffer, l)
	if err != nil {
		return err
	}
	if stringIndex < 0 || stringIndex >= t.count || !l.hasIndex(stringIndex) {
		return &IndexOutOfRangeError{Device: dt, Index: stringIndex, Bank: -1}
	}

	view := buffer[l.base : l.base+l.size]
	old := decodeNPCString(view, t.offsets[stringIndex])
	if npcNameLen(name) != npcNameLen(old) {
		return &LengthMismatchError{Want: npcNameLen(old), Got: npcNameLen(name)}
	}

	enc, err := encodeNPCName(name)
	if err != nil {
		return err
	}
	if room := t.capacity(stringIndex); len(enc) > room {
		return &TruncatedDataError{Offset: l.base + t.offsets[stringIndex], Need: len(enc), Have: room}
	}

	copy(buffer[l.base+t.offsets[stringIndex]:], enc)
	return nil
}

func (w *BINWrapper) ReadNPCName(stringIndex int) (string, error) {
	return ReadNPCName(w.Data, w.Device, stringIndex)
}

func (w *BINWrapper) WriteNPCName(stringIndex int, name string) error {
	if err := WriteNPCName(w.Data, w.Device, stringIndex, name); err != nil {
		return err
	}
	w.Modified = true
	return nil
}

// ExportNPCNames writes the curated NPC names as CSV, one row per string
// index, in table order.
func (w *BINWrapper) ExportNPCNames(out io.Writer) error {
	l, ok := npcLayoutFor(w.Device)
	if !ok {
		return &UnsupportedOperationError{Device: w.Device, Op: "npc name export"}
	}
	cw := csv.NewWriter(out)
	if err := cw.Write([]string{"string_index", "name"}); err != nil {
		return err
	}
	for _, si := range l.indexes {
		name, err := ReadNPCName(w.Data, w.Device, si)
		if err != nil {
			return err
		}
		if err := cw.Write([]string{strconv.Itoa(si), name}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ImportNPCNames applies NPC renames from a CSV artifact. Rows with empty
// names are ignored; a row that fails validation is reported and skipped
// without blocking the rest, matching the batch sprite operations.
func (w *BINWrapper) ImportNPCNames(in io.Reader) (int, []BatchError, error) {
	cr := csv.NewReader(in)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return 0, nil, err
	}
	if len(records) == 0 {
		return 0, nil, fmt.Errorf("empty CSV")
	}

	cols := map[string]int{}
	for i, h := range records[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"string_index", "name"} {
		if _, ok := cols[required]; !ok {
			return 0, nil, fmt.Errorf("CSV missing %q column", required)
		}
	}

	var problems []BatchError
	applied := 0
	for n, rec := range records[1:] {
		get := func(col int) string {
			if col < len(rec) {
				return strings.TrimSpace(rec[col])
			}
			return ""
		}
		si, err := strconv.Atoi(get(cols["string_index"]))
		if err != nil {
			problems = append(problems, BatchError{
				File: fmt.Sprintf("line %d", n+2),
				Err:  fmt.Errorf("bad string_index %q", get(cols["string_index"])),
			})
			continue
		}
		name := get(cols["name"])
		if name == "" {
			continue
		}
		if err := w.WriteNPCName(si, name); err != nil {
			problems = append(problems, BatchError{
				File: fmt.Sprintf("string_index %d", si),
				Err:  err,
			})
			continue
		}
		applied++
	}
	return applied, problems, nil
}
