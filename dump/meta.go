package dump

// Partner names are stored one byte per character: 0x00 is a space and
// 0x01..0x1A map to A..Z. The external textual convention writes spaces
// as underscores so names survive filenames and CSV untouched.

const MAX_POWER = 225

func decodeNameByte(b byte) byte {
	if b >= 0x01 && b <= 0x1A {
		return 'A' + b - 0x01
	}
	return '_'
}

func encodeNameByte(c byte) (byte, bool) {
	switch {
	case c >= 'A' && c <= 'Z':
		return c - 'A' + 0x01, true
	case c == '_':
		return 0x00, true
	}
	return 0, false
}

// ReadName decodes the fixed-width name field for a record.
func ReadName(buffer []byte, loc MetaLocation) (string, error) {
	if loc.NameOffset < 0 || loc.NameOffset+loc.NameLength > len(buffer) {
		return "", &TruncatedDataError{Offset: loc.NameOffset, Need: loc.NameLength, Have: len(buffer)}
	}
	out := make([]byte, loc.NameLength)
	for i := 0; i < loc.NameLength; i++ {
		out[i] = decodeNameByte(buffer[loc.NameOffset+i])
	}
	return string(out), nil
}

// WriteName writes an exact-length name in place. Rejects before writing:
// a failed call leaves the buffer byte-identical.
func WriteName(buffer []byte, loc MetaLocation, name string) error {
	if len(name) != loc.NameLength {
		return &LengthMismatchError{Want: loc.NameLength, Got: len(name)}
	}
	enc := make([]byte, loc.NameLength)
	for i := 0; i < len(name); i++ {
		b, ok := encodeNameByte(name[i])
		if !ok {
			return &InvalidCharacterError{Name: name, Char: rune(name[i])}
		}
		enc[i] = b
	}
	if loc.NameOffset < 0 || loc.NameOffset+loc.NameLength > len(buffer) {
		return &TruncatedDataError{Offset: loc.NameOffset, Need: loc.NameLength, Have: len(buffer)}
	}
	copy(buffer[loc.NameOffset:], enc)
	return nil
}

func ReadPower(buffer []byte, loc MetaLocation) (int, error) {
	if loc.PowerOffset < 0 || loc.PowerOffset >= len(buffer) {
		return 0, &TruncatedDataError{Offset: loc.PowerOffset, Need: 1, Have: len(buffer)}
	}
	return int(buffer[loc.PowerOffset]), nil
}

// WritePower writes the single-byte power field. Values above MAX_POWER
// brick the device, so they are refused outright.
func WritePower(buffer []byte, loc MetaLocation, value int) error {
	if value < 0 || value > MAX_POWER {
		return &ValueOutOfRangeError{Field: "power", Value: value, Min: 0, Max: MAX_POWER}
	}
	if loc.PowerOffset < 0 || loc.PowerOffset >= len(buffer) {
		return &TruncatedDataError{Offset: loc.PowerOffset, Need: 1, Have: len(buffer)}
	}
	buffer[loc.PowerOffset] = byte(value)
	return nil
}

func ReadStage(buffer []byte, loc MetaLocation) (int, error) {
	if loc.StageOffset < 0 {
		return 0, &UnsupportedOperationError{Device: loc.Device, Op: "stage read"}
	}
	if loc.StageOffset >= len(buffer) {
		return 0, &TruncatedDataError{Offset: loc.StageOffset, Need: 1, Have: len(buffer)}
	}
	return int(buffer[loc.StageOffset]), nil
}

func WriteStage(buffer []byte, loc MetaLocation, value int) error {
	if loc.StageOffset < 0 {
		return &UnsupportedOperationError{Device: loc.Device, Op: "stage write"}
	}
	if value < MIN_STAGE || value > MAX_STAGE {
		return &ValueOutOfRangeError{Field: "stage", Value: value, Min: MIN_STAGE, Max: MAX_STAGE}
	}
	if loc.StageOffset >= len(buffer) {
		return &TruncatedDataError{Offset: loc.StageOffset, Need: 1, Have: len(buffer)}
	}
	buffer[loc.StageOffset] = byte(value)
	return nil
}
