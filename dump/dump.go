package dump

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
)

// BINContainer is the whole firmware dump held in memory. Operations only
// ever overwrite bytes in place; total length is constant for the life of
// the wrapper.
type BINContainer []byte

func Checksum(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// BINWrapper owns one loaded dump. All mutation goes through its methods,
// which resolve locations and dispatch to the codecs; disk writes happen
// only in Save, as a single whole-buffer write.
type BINWrapper struct {
	Data      BINContainer
	Device    DeviceType
	Filename  string
	SourceSum string
	Modified  bool
}

// NewBINWrapper loads the full dump into memory and identifies the device
// family from its length. Dumps are small fixed-size flash images; there
// is no streaming path.
func NewBINWrapper(filename string) (*BINWrapper, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	dt := IdentifyDump(data)
	if dt == DT_NONE {
		return nil, fmt.Errorf("%s: unrecognized dump size %d bytes", filename, len(data))
	}
	return &BINWrapper{
		Data:      data,
		Device:    dt,
		Filename:  filename,
		SourceSum: Checksum(data),
	}, nil
}

// NewBINWrapperAs loads a dump forcing the device type, for files that
// have been padded or trimmed by other tools.
func NewBINWrapperAs(filename string, dt DeviceType) (*BINWrapper, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	if len(data) != dt.DumpBytes() {
		return nil, fmt.Errorf("%s: %d bytes, %s dumps are %d", filename, len(data), dt, dt.DumpBytes())
	}
	return &BINWrapper{
		Data:      data,
		Device:    dt,
		Filename:  filename,
		SourceSum: Checksum(data),
	}, nil
}

// Save writes the complete buffer in one call. It never writes a partial
// file; a crash before this point leaves the source file untouched.
func (w *BINWrapper) Save(filename string) error {
	if len(w.Data) != w.Device.DumpBytes() {
		return fmt.Errorf("refusing to save: buffer is %d bytes, %s dumps are %d", len(w.Data), w.Device, w.Device.DumpBytes())
	}
	if err := os.WriteFile(filename, w.Data, 0644); err != nil {
		return err
	}
	w.Modified = false
	return nil
}

// BankPalette decodes the palette owned by the sprite slot's region.
func (w *BINWrapper) BankPalette(loc SpriteLocation) (Palette, error) {
	return DecodePalette(w.Data, loc.PaletteOffset, loc.PaletteSlots)
}

func (w *BINWrapper) ReadSprite(index, bank int) (*SpriteImage, error) {
	loc, err := LocateSprite(w.Device, index, bank)
	if err != nil {
		return nil, err
	}
	return DecodeSprite(w.Data, loc)
}

func (w *BINWrapper) WriteSprite(index, bank int, img *SpriteImage) error {
	loc, err := LocateSprite(w.Device, index, bank)
	if err != nil {
		return err
	}
	pal, err := w.BankPalette(loc)
	if err != nil {
		return err
	}
	if err := ReplaceSprite(w.Data, loc, img, pal); err != nil {
		return err
	}
	w.Modified = true
	return nil
}

func (w *BINWrapper) ReadName(index int) (string, error) {
	loc, err := LocateMeta(w.Device, index)
	if err != nil {
		return "", err
	}
	return ReadName(w.Data, loc)
}

func (w *BINWrapper) WriteName(index int, name string) error {
	loc, err := LocateMeta(w.Device, index)
	if err != nil {
		return err
	}
	if err := WriteName(w.Data, loc, name); err != nil {
		return err
	}
	w.Modified = true
	return nil
}

func (w *BINWrapper) ReadPower(index int) (int, error) {
	loc, err := LocateMeta(w.Device, index)
	if err != nil {
		return 0, err
	}
	return ReadPower(w.Data, loc)
}

func (w *BINWrapper) WritePower(index int, value int) error {
	loc, err := LocateMeta(w.Device, index)
	if err != nil {
		return err
	}
	if err := WritePower(w.Data, loc, value); err != nil {
		return err
	}
	w.Modified = true
	return nil
}

func (w *BINWrapper) ReadStage(index int) (int, error) {
	loc, err := LocateMeta(w.Device, index)
	if err != nil {
		return 0, err
	}
	return ReadStage(w.Data, loc)
}

func (w *BINWrapper) WriteStage(index int, value int) error {
	if !w.Device.CanEditStage() {
		return &UnsupportedOperationError{Device: w.Device, Op: "stage write"}
	}
	loc, err := LocateMeta(w.Device, index)
	if err != nil {
		return err
	}
	if err := WriteStage(w.Data, loc, value); err != nil {
		return err
	}
	w.Modified = true
	return nil
}

// WritePalette re-encodes a palette into the region owning the slot.
func (w *BINWrapper) WritePalette(loc SpriteLocation, pal Palette) error {
	enc, err := EncodePalette(pal, loc.PaletteSlots)
	if err != nil {
		return err
	}
	if loc.PaletteOffset < 0 || loc.PaletteOffset+len(enc) > len(w.Data) {
		return &TruncatedDataError{Offset: loc.PaletteOffset, Need: len(enc), Have: len(w.Data)}
	}
	copy(w.Data[loc.PaletteOffset:], enc)
	w.Modified = true
	return nil
}
