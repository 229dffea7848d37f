package dump

import (
	"bytes"
	"strings"
	"testing"
)

func testD3Wrapper(t *testing.T) *BINWrapper {
	t.Helper()
	w := &BINWrapper{
		Data:   testD3Buffer(),
		Device: DT_D3,
	}
	// put sane values in every record so exports are valid CSV
	for i := 0; i < w.Device.NumRecords(); i++ {
		loc, err := LocateMeta(w.Device, i)
		if err != nil {
			t.Fatal(err)
		}
		if err := WriteName(w.Data, loc, "AGUMON__"); err != nil {
			t.Fatal(err)
		}
		if err := WritePower(w.Data, loc, 100); err != nil {
			t.Fatal(err)
		}
		if err := WriteStage(w.Data, loc, 1); err != nil {
			t.Fatal(err)
		}
	}
	return w
}

func TestDataExportImportIdempotent(t *testing.T) {

	w := testD3Wrapper(t)

	if err := w.WriteName(2, "KUDAMON_"); err != nil {
		t.Fatal(err)
	}
	if err := w.WritePower(2, 225); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteStage(2, 5); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := w.ExportData(&out); err != nil {
		t.Fatal(err)
	}

	before := Checksum(w.Data)

	n, err := w.ImportData(bytes.NewReader(out.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if n != w.Device.NumRecords() {
		t.Fatalf("imported %d rows", n)
	}

	if Checksum(w.Data) != before {
		t.Fatalf("re-importing unmodified export changed the buffer")
	}

}

func TestDataImportAllOrNothing(t *testing.T) {

	w := testD3Wrapper(t)
	before := Checksum(w.Data)

	// row 1 is fine, row 2 has an illegal power
	csv := strings.Join([]string{
		"index,name,power,stage",
		"0,KUDAMON_,50,2",
		"1,AGUMON__,300,2",
	}, "\n")

	if _, err := w.ImportData(strings.NewReader(csv)); err == nil {
		t.Fatalf("import with a bad row must be rejected")
	}

	if Checksum(w.Data) != before {
		t.Fatalf("rejected import wrote bytes anyway")
	}

}

func TestDataImportRejectsStageOnDigivice(t *testing.T) {

	w := &BINWrapper{
		Data:   make([]byte, DIGIVICE_DUMP_BYTES),
		Device: DT_DIGIVICE,
	}
	before := Checksum(w.Data)

	csv := strings.Join([]string{
		"index,name,power,stage",
		"0,AGUMON__,50,3",
	}, "\n")

	if _, err := w.ImportData(strings.NewReader(csv)); err == nil {
		t.Fatalf("stage column with values must fail on Digivice")
	}
	if Checksum(w.Data) != before {
		t.Fatalf("rejected import wrote bytes anyway")
	}

	// without stage values the same rows are fine
	csv = strings.Join([]string{
		"index,name,power",
		"0,AGUMON__,50",
	}, "\n")

	n, err := w.ImportData(strings.NewReader(csv))
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("imported %d rows", n)
	}
	name, _ := w.ReadName(0)
	if name != "AGUMON__" {
		t.Fatalf("name not written: %q", name)
	}

}

func TestDataImportBadIndex(t *testing.T) {

	w := testD3Wrapper(t)

	csv := strings.Join([]string{
		"index,name,power,stage",
		"400,KUDAMON_,50,2",
	}, "\n")

	if _, err := w.ImportData(strings.NewReader(csv)); err == nil {
		t.Fatalf("index past the table must be rejected")
	}

}
