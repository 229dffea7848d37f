package dump

// SpriteImage is an editable width x height grid of palette indexes,
// row-major, one byte per pixel. It references its bank's palette by
// index only and never owns color data.
type SpriteImage struct {
	Width  int
	Height int
	Pixels []uint8
}

func NewSpriteImage(width, height int) *SpriteImage {
	return &SpriteImage{
		Width:  width,
		Height: height,
		Pixels: make([]uint8, width*height),
	}
}

func (s *SpriteImage) At(x, y int) uint8 {
	return s.Pixels[y*s.Width+x]
}

func (s *SpriteImage) Set(x, y int, idx uint8) {
	s.Pixels[y*s.Width+x] = idx
}

// DecodeSprite reads the slot's pixel grid out of the dump.
func DecodeSprite(buffer []byte, loc SpriteLocation) (*SpriteImage, error) {
	need := loc.Length()
	if loc.Offset < 0 || loc.Offset+need > len(buffer) {
		return nil, &TruncatedDataError{Offset: loc.Offset, Need: need, Have: len(buffer)}
	}
	img := NewSpriteImage(loc.Width, loc.Height)
	copy(img.Pixels, buffer[loc.Offset:loc.Offset+need])
	return img, nil
}

// EncodeSprite is the inverse of DecodeSprite. Slot dimensions are fixed
// in the firmware and cannot be changed through this interface.
func EncodeSprite(img *SpriteImage, loc SpriteLocation) ([]byte, error) {
	if img.Width != loc.Width || img.Height != loc.Height {
		return nil, &DimensionError{
			WantWidth:  loc.Width,
			WantHeight: loc.Height,
			GotWidth:   img.Width,
			GotHeight:  img.Height,
		}
	}
	out := make([]byte, loc.Length())
	copy(out, img.Pixels)
	return out, nil
}

// ReplaceSprite overwrites exactly the slot's byte range with the new
// pixel grid. Every pixel must index into the supplied palette; on any
// error the buffer is untouched.
func ReplaceSprite(buffer []byte, loc SpriteLocation, img *SpriteImage, pal Palette) error {
	enc, err := EncodeSprite(img, loc)
	if err != nil {
		return err
	}
	if loc.Offset < 0 || loc.Offset+len(enc) > len(buffer) {
		return &TruncatedDataError{Offset: loc.Offset, Need: len(enc), Have: len(buffer)}
	}
	for i, idx := range enc {
		if int(idx) >= len(pal) {
			return &PaletteIndexError{
				X:     i % loc.Width,
				Y:     i / loc.Width,
				Index: int(idx),
				Slots: len(pal),
			}
		}
	}
	copy(buffer[loc.Offset:], enc)
	return nil
}
