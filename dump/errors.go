package dump

import (
	"errors"
	"fmt"
)

// TruncatedDataError means the dump is shorter than a record demands.
// Always fatal for the operation: nothing has been written.
type TruncatedDataError struct {
	Offset int
	Need   int
	Have   int
}

func (e *TruncatedDataError) Error() string {
	return fmt.Sprintf("truncated data: need %d bytes at offset 0x%06X, dump has %d", e.Need, e.Offset, e.Have)
}

// IndexOutOfRangeError means no record exists for the index/bank pair on
// the given device family.
type IndexOutOfRangeError struct {
	Device DeviceType
	Index  int
	Bank   int
}

func (e *IndexOutOfRangeError) Error() string {
	if e.Bank >= 0 {
		return fmt.Sprintf("%s: no record for index %d bank %d", e.Device, e.Index, e.Bank)
	}
	return fmt.Sprintf("%s: no record for index %d", e.Device, e.Index)
}

// ColorBudgetError means a replacement image carries more distinct colors
// than the target palette has slots.
type ColorBudgetError struct {
	Index  int
	Bank   int
	Colors int
	Slots  int
}

func (e *ColorBudgetError) Error() string {
	return fmt.Sprintf("index %d bank %d: image has %d distinct colors, palette allows %d", e.Index, e.Bank, e.Colors, e.Slots)
}

// PaletteOverflowError means an encode was asked to fit more entries than
// the bank's fixed slot count.
type PaletteOverflowError struct {
	Entries int
	Slots   int
}

func (e *PaletteOverflowError) Error() string {
	return fmt.Sprintf("palette overflow: %d entries into %d slots", e.Entries, e.Slots)
}

// DimensionError means a supplied sprite does not match the slot's fixed
// width/height.
type DimensionError struct {
	WantWidth  int
	WantHeight int
	GotWidth   int
	GotHeight  int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("dimension mismatch: slot is %dx%d, image is %dx%d", e.WantWidth, e.WantHeight, e.GotWidth, e.GotHeight)
}

// PaletteIndexError means a pixel references a palette slot past the end
// of the bank's palette.
type PaletteIndexError struct {
	X     int
	Y     int
	Index int
	Slots int
}

func (e *PaletteIndexError) Error() string {
	return fmt.Sprintf("pixel (%d,%d): palette index %d outside palette of %d entries", e.X, e.Y, e.Index, e.Slots)
}

// InvalidCharacterError means a name contains a character the target
// field's character set cannot encode.
type InvalidCharacterError struct {
	Name string
	Char rune
}

func (e *InvalidCharacterError) Error() string {
	return fmt.Sprintf("name %q: character %q not allowed", e.Name, e.Char)
}

// LengthMismatchError means a name does not exactly fill its fixed-width
// field.
type LengthMismatchError struct {
	Want int
	Got  int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("name must be exactly %d characters, got %d", e.Want, e.Got)
}

// ValueOutOfRangeError means a numeric field write fell outside the
// device-safe bounds. Writing such values bricks real hardware, so the
// codec refuses rather than warns.
type ValueOutOfRangeError struct {
	Field string
	Value int
	Min   int
	Max   int
}

func (e *ValueOutOfRangeError) Error() string {
	return fmt.Sprintf("%s value %d outside legal range %d..%d", e.Field, e.Value, e.Min, e.Max)
}

// UnsupportedOperationError means the device family does not expose the
// requested field at all.
type UnsupportedOperationError struct {
	Device DeviceType
	Op     string
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("%s: %s not supported on this device", e.Device, e.Op)
}

func IsIndexOutOfRange(err error) bool {
	var e *IndexOutOfRangeError
	return errors.As(err, &e)
}

func IsColorBudget(err error) bool {
	var e *ColorBudgetError
	return errors.As(err, &e)
}

func IsTruncated(err error) bool {
	var e *TruncatedDataError
	return errors.As(err, &e)
}
