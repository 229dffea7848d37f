package dump

import (
	"bytes"
	"encoding/binary"
	"errors"
	"strings"
	"testing"
)

// seedNPCTable builds a plausible string table at the device's NPC block:
// 400 strings, 16 bytes each, every curated NPC index filled with a
// 7-character placeholder name.
func seedNPCTable(t *testing.T, buf []byte, dt DeviceType) {
	t.Helper()
	l, ok := npcLayoutFor(dt)
	if !ok {
		t.Fatalf("no npc layout for %s", dt)
	}

	const count = 400
	const slot = 16 // room for 7 codes plus the terminator
	header := 2 + 2*count
	binary.LittleEndian.PutUint16(buf[l.base:], count)
	for i := 0; i < count; i++ {
		byteOff := header + i*slot
		binary.LittleEndian.PutUint16(buf[l.base+2+2*i:], uint16(byteOff/2))
	}
	for _, si := range l.indexes {
		name := []byte("Npc")
		for _, d := range []byte{byte('0' + si/100%10), byte('0' + si/10%10), byte('0' + si%10)} {
			name = append(name, d)
		}
		name = append(name, 'x')
		off := l.base + header + si*slot
		for j, c := range name {
			code, ok := npcCharCode(rune(c))
			if !ok {
				t.Fatalf("seed char %q not encodable", c)
			}
			binary.LittleEndian.PutUint16(buf[off+2*j:], code)
		}
		binary.LittleEndian.PutUint16(buf[off+2*len(name):], 0)
	}
}

func TestNPCNameRoundTrip(t *testing.T) {

	buf := testD3Buffer()
	seedNPCTable(t, buf, DT_D3)

	name, err := ReadNPCName(buf, DT_D3, 136)
	if err != nil {
		t.Fatal(err)
	}
	if name != "Npc136x" {
		t.Fatalf("seeded name read as %q", name)
	}

	if err := WriteNPCName(buf, DT_D3, 136, "Piyomon"); err != nil {
		t.Fatal(err)
	}
	name, err = ReadNPCName(buf, DT_D3, 136)
	if err != nil {
		t.Fatal(err)
	}
	if name != "Piyomon" {
		t.Fatalf("renamed to %q", name)
	}

	// neighbors untouched
	name, err = ReadNPCName(buf, DT_D3, 144)
	if err != nil {
		t.Fatal(err)
	}
	if name != "Npc144x" {
		t.Fatalf("neighbor string disturbed: %q", name)
	}

}

func TestNPCRenameMustKeepLength(t *testing.T) {

	buf := testD3Buffer()
	seedNPCTable(t, buf, DT_D3)
	before := Checksum(buf)

	err := WriteNPCName(buf, DT_D3, 136, "Agumon")
	if err == nil {
		t.Fatalf("6-character rename of a 7-character name must fail")
	}
	var lme *LengthMismatchError
	if !errors.As(err, &lme) {
		t.Fatalf("wrong error type: %v", err)
	}
	if lme.Want != 7 || lme.Got != 6 {
		t.Fatalf("mismatch detail: want %d got %d", lme.Want, lme.Got)
	}

	if Checksum(buf) != before {
		t.Fatalf("failed rename wrote bytes anyway")
	}

}

func TestNPCRenameRejectsBadCharacters(t *testing.T) {

	buf := testD3Buffer()
	seedNPCTable(t, buf, DT_D3)
	before := Checksum(buf)

	for _, name := range []string{"Agu-mon", "Agu,mon", "<0041>abcdef"} {
		err := WriteNPCName(buf, DT_D3, 136, name)
		if err == nil {
			t.Fatalf("name %q should be rejected", name)
		}
	}
	if Checksum(buf) != before {
		t.Fatalf("rejected rename wrote bytes anyway")
	}

}

func TestNPCWriteOnlyCuratedIndexes(t *testing.T) {

	buf := testD3Buffer()
	seedNPCTable(t, buf, DT_D3)

	// index 10 exists in the table but is not an NPC name
	if err := WriteNPCName(buf, DT_D3, 10, "Piyomon"); !IsIndexOutOfRange(err) {
		t.Fatalf("non-NPC string index accepted: %v", err)
	}
	if _, err := ReadNPCName(buf, DT_D3, 9999); !IsIndexOutOfRange(err) {
		t.Fatalf("index past the table accepted: %v", err)
	}

}

func TestNPCControlCodesAreInvisible(t *testing.T) {

	buf := testD3Buffer()
	seedNPCTable(t, buf, DT_D3)
	l, _ := npcLayoutFor(DT_D3)

	// rebuild string 151 as a control word, six visible characters and
	// the terminator, exactly filling its 16-byte slot
	off := l.base + 2 + 2*400 + 151*16
	binary.LittleEndian.PutUint16(buf[off:], 0xF042)
	for j, c := range "Npc151" {
		code, ok := npcCharCode(c)
		if !ok {
			t.Fatalf("char %q not encodable", c)
		}
		binary.LittleEndian.PutUint16(buf[off+2+2*j:], code)
	}
	binary.LittleEndian.PutUint16(buf[off+14:], 0)

	name, err := ReadNPCName(buf, DT_D3, 151)
	if err != nil {
		t.Fatal(err)
	}
	if name != "Npc151" {
		t.Fatalf("control word leaked into name: %q", name)
	}

	// the rename counts six visible characters, not seven
	if err := WriteNPCName(buf, DT_D3, 151, "Agumon"); err != nil {
		t.Fatal(err)
	}

}

func TestNPCExportImportIdempotent(t *testing.T) {

	w := &BINWrapper{
		Data:   testD3Buffer(),
		Device: DT_D3,
	}
	seedNPCTable(t, w.Data, DT_D3)

	var out bytes.Buffer
	if err := w.ExportNPCNames(&out); err != nil {
		t.Fatal(err)
	}
	before := Checksum(w.Data)

	applied, problems, err := w.ImportNPCNames(bytes.NewReader(out.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if len(problems) > 0 {
		t.Fatalf("import problems: %v", problems[0])
	}
	if applied != len(NPCIndexes(DT_D3)) {
		t.Fatalf("applied %d of %d names", applied, len(NPCIndexes(DT_D3)))
	}
	if Checksum(w.Data) != before {
		t.Fatalf("re-importing unmodified export changed the buffer")
	}

}

func TestNPCImportContinuesPastBadRows(t *testing.T) {

	w := &BINWrapper{
		Data:   testD3Buffer(),
		Device: DT_D3,
	}
	seedNPCTable(t, w.Data, DT_D3)

	csv := strings.Join([]string{
		"string_index,name",
		"136,Piyomon",
		"144,TooLongName",
		"151,",
	}, "\n")

	applied, problems, err := w.ImportNPCNames(strings.NewReader(csv))
	if err != nil {
		t.Fatal(err)
	}
	if applied != 1 {
		t.Fatalf("applied %d renames", applied)
	}
	if len(problems) != 1 || !strings.Contains(problems[0].File, "144") {
		t.Fatalf("problems: %v", problems)
	}

	name, _ := w.ReadNPCName(136)
	if name != "Piyomon" {
		t.Fatalf("good row not applied: %q", name)
	}
	name, _ = w.ReadNPCName(151)
	if name != "Npc151x" {
		t.Fatalf("empty row should be ignored, got %q", name)
	}

}

func TestNPCIndexesPerDevice(t *testing.T) {

	d3 := NPCIndexes(DT_D3)
	dv := NPCIndexes(DT_DIGIVICE)
	if len(d3) != 58 {
		t.Fatalf("D-3 has %d npc strings", len(d3))
	}
	if len(dv) != 50 {
		t.Fatalf("Digivice has %d npc strings", len(dv))
	}
	if d3[0] != 136 || dv[0] != 95 {
		t.Fatalf("first npc indexes %d/%d", d3[0], dv[0])
	}

}
