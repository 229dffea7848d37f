package dump

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestIdentifyDump(t *testing.T) {
	if dt := IdentifyDump(make([]byte, D3_DUMP_BYTES)); dt != DT_D3 {
		t.Fatalf("4 MiB dump identified as %s", dt)
	}
	if dt := IdentifyDump(make([]byte, DIGIVICE_DUMP_BYTES)); dt != DT_DIGIVICE {
		t.Fatalf("Digivice-sized dump identified as %s", dt)
	}
	if dt := IdentifyDump(make([]byte, 123)); dt != DT_NONE {
		t.Fatalf("junk length identified as %s", dt)
	}
}

func TestNewBINWrapperDetectsDevice(t *testing.T) {

	dir := t.TempDir()
	path := filepath.Join(dir, "partner.bin")
	if err := os.WriteFile(path, make([]byte, D3_DUMP_BYTES), 0644); err != nil {
		t.Fatal(err)
	}

	w, err := NewBINWrapper(path)
	if err != nil {
		t.Fatal(err)
	}
	if w.Device != DT_D3 {
		t.Fatalf("device %s", w.Device)
	}
	if w.SourceSum != Checksum(w.Data) {
		t.Fatalf("source checksum not captured at load")
	}
	if w.Modified {
		t.Fatalf("fresh wrapper marked modified")
	}

	if err := os.WriteFile(path, make([]byte, 999), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewBINWrapper(path); err == nil {
		t.Fatalf("unrecognized dump size must be rejected")
	}

}

func TestNewBINWrapperAsChecksLength(t *testing.T) {

	dir := t.TempDir()
	path := filepath.Join(dir, "partner.bin")
	if err := os.WriteFile(path, make([]byte, D3_DUMP_BYTES), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewBINWrapperAs(path, DT_DIGIVICE); err == nil {
		t.Fatalf("4 MiB file forced to Digivice must be rejected")
	}
	w, err := NewBINWrapperAs(path, DT_D3)
	if err != nil {
		t.Fatal(err)
	}
	if w.Device != DT_D3 {
		t.Fatalf("device %s", w.Device)
	}

}

func TestSavePreservesLength(t *testing.T) {

	w := &BINWrapper{
		Data:   testD3Buffer(),
		Device: DT_D3,
	}
	if err := w.WritePower(0, 200); err != nil {
		t.Fatal(err)
	}
	if !w.Modified {
		t.Fatalf("write did not mark wrapper modified")
	}

	out := filepath.Join(t.TempDir(), "out.bin")
	if err := w.Save(out); err != nil {
		t.Fatal(err)
	}
	if w.Modified {
		t.Fatalf("save did not clear modified flag")
	}

	fi, err := os.Stat(out)
	if err != nil {
		t.Fatal(err)
	}
	if fi.Size() != int64(D3_DUMP_BYTES) {
		t.Fatalf("saved %d bytes", fi.Size())
	}

	// a corrupted buffer length must never hit disk
	w.Data = w.Data[:100]
	if err := w.Save(out); err == nil {
		t.Fatalf("short buffer saved anyway")
	}

}

func TestWrapperStageGuard(t *testing.T) {

	w := &BINWrapper{
		Data:   make([]byte, DIGIVICE_DUMP_BYTES),
		Device: DT_DIGIVICE,
	}
	err := w.WriteStage(0, 3)
	if err == nil {
		t.Fatalf("stage write allowed on Digivice")
	}
	var uoe *UnsupportedOperationError
	if !errors.As(err, &uoe) {
		t.Fatalf("wrong error type: %v", err)
	}
	if w.Modified {
		t.Fatalf("failed write marked wrapper modified")
	}

}
