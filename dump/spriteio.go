package dump

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
)

// Exported artifacts are named INDEX_BANK_ROLE.png, e.g. 312_2_attack.png.
// Import matches on index and bank; the role suffix is for the user.
var spriteFileRE = regexp.MustCompile(`^(\d+)_(\d+)(?:_[A-Za-z0-9]+)?\.(?:png|PNG)$`)

// BatchError ties a per-item failure to the artifact that caused it so
// the user can fix one file and retry without re-running the rest.
type BatchError struct {
	File string
	Err  error
}

func (e BatchError) Error() string {
	return fmt.Sprintf("%s: %v", e.File, e.Err)
}

func spriteFileName(loc SpriteLocation, banks int) string {
	role := "image"
	if banks > 1 {
		role = BankRole(loc.Bank)
	}
	return fmt.Sprintf("%d_%d_%s.png", loc.Index, loc.Bank, role)
}

// entryFromColor normalizes any color to the nearest ARGB1555-representable
// entry, so comparisons against decoded palettes are exact.
func entryFromColor(c color.Color) PaletteEntry {
	r, g, b, a := c.RGBA()
	e := PaletteEntry{
		R:      uint8(r >> 8),
		G:      uint8(g >> 8),
		B:      uint8(b >> 8),
		Opaque: a >= 0x8000,
	}
	return DecodeColorWord(EncodeColorWord(e))
}

func nearestSlot(pal Palette, e PaletteEntry) uint8 {
	best := -1
	bestDist := 0
	for i, p := range pal {
		dr := int(p.R) - int(e.R)
		dg := int(p.G) - int(e.G)
		db := int(p.B) - int(e.B)
		d := dr*dr + dg*dg + db*db
		if p.Opaque != e.Opaque {
			d += 255 * 255
		}
		if best == -1 || d < bestDist {
			best = i
			bestDist = d
		}
	}
	if best < 0 {
		return 0
	}
	return uint8(best)
}

// composeSprite renders a decoded sprite through its palette. Transparent
// slots become fully transparent pixels.
func composeSprite(img *SpriteImage, pal Palette) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, img.Width, img.Height))
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			idx := int(img.At(x, y))
			var e PaletteEntry
			if idx < len(pal) {
				e = pal[idx]
			}
			a := uint8(0)
			if e.Opaque {
				a = 255
			}
			out.SetNRGBA(x, y, color.NRGBA{R: e.R, G: e.G, B: e.B, A: a})
		}
	}
	return out
}

// distinctColors returns the ARGB1555-normalized distinct colors of an
// image, capped at limit+1 so callers can detect a budget overflow on
// pathological inputs without walking every pixel twice.
func distinctColors(img image.Image, limit int) []PaletteEntry {
	seen := make(map[PaletteEntry]bool)
	var out []PaletteEntry
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			e := entryFromColor(img.At(x, y))
			if !seen[e] {
				seen[e] = true
				out = append(out, e)
				if limit > 0 && len(out) > limit {
					return out
				}
			}
		}
	}
	return out
}

// trueColorCount counts every distinct raw color in the image, before
// ARGB1555 normalization. Used for error reporting so the user sees the
// real scale of the problem ("10524 colors into 62 slots").
func trueColorCount(img image.Image) int {
	seen := make(map[color.NRGBA]bool)
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, a := img.At(x, y).RGBA()
			seen[color.NRGBA{uint8(r >> 8), uint8(g >> 8), uint8(bl >> 8), uint8(a >> 8)}] = true
		}
	}
	return len(seen)
}

// ExportSprites writes one PNG per sprite slot for indexes lo..hi and the
// given banks. Slots that do not exist for the device are skipped, but a
// window that matches nothing at all is reported so a mistyped range does
// not look like a clean run; any other per-slot failure is reported and
// the batch continues.
func (w *BINWrapper) ExportSprites(dir string, lo, hi int, banks []int) (int, []BatchError) {
	var problems []BatchError
	written := 0
	skipped := 0
	for index := lo; index <= hi; index++ {
		for _, bank := range banks {
			loc, err := LocateSprite(w.Device, index, bank)
			if err != nil {
				skipped++
				continue
			}
			spr, err := DecodeSprite(w.Data, loc)
			if err != nil {
				problems = append(problems, BatchError{File: fmt.Sprintf("index %d bank %d", index, bank), Err: err})
				continue
			}
			pal, err := w.BankPalette(loc)
			if err != nil {
				problems = append(problems, BatchError{File: fmt.Sprintf("index %d bank %d", index, bank), Err: err})
				continue
			}
			banksInRegion := 1
			if hl := HintsForWindow(w.Device, index, index); len(hl) > 0 {
				banksInRegion = hl[0].Banks
			}
			name := spriteFileName(loc, banksInRegion)
			if err := writePNG(filepath.Join(dir, name), composeSprite(spr, pal)); err != nil {
				problems = append(problems, BatchError{File: name, Err: err})
				continue
			}
			written++
		}
	}
	if written == 0 && skipped > 0 {
		problems = append(problems, BatchError{
			File: fmt.Sprintf("index range %d-%d", lo, hi),
			Err:  fmt.Errorf("no sprite slots in window, %d candidate(s) skipped", skipped),
		})
	}
	return written, problems
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func readPNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, err
	}
	return img, nil
}

// collectSpriteFiles finds artifacts matching the naming convention,
// sorted by index then bank for deterministic processing.
func collectSpriteFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if spriteFileRE.MatchString(e.Name()) {
			files = append(files, e.Name())
		}
	}
	sort.Slice(files, func(i, j int) bool {
		ii, bi, _ := parseSpriteFileName(files[i])
		ij, bj, _ := parseSpriteFileName(files[j])
		if ii != ij {
			return ii < ij
		}
		return bi < bj
	})
	return files, nil
}

func parseSpriteFileName(name string) (index, bank int, ok bool) {
	m := spriteFileRE.FindStringSubmatch(name)
	if m == nil {
		return 0, 0, false
	}
	index, _ = strconv.Atoi(m[1])
	bank, _ = strconv.Atoi(m[2])
	return index, bank, true
}

// ReplaceSprites imports a directory of PNGs back into their slots. Each
// image must match its slot's dimensions and fit the bank's color budget;
// pixels are then quantized to the nearest palette entry. One bad sprite
// never blocks the rest of the batch.
func (w *BINWrapper) ReplaceSprites(dir string) (int, []BatchError, error) {
	files, err := collectSpriteFiles(dir)
	if err != nil {
		return 0, nil, err
	}
	var problems []BatchError
	replaced := 0
	for _, name := range files {
		index, bank, _ := parseSpriteFileName(name)
		loc, err := LocateSprite(w.Device, index, bank)
		if err != nil {
			problems = append(problems, BatchError{File: name, Err: err})
			continue
		}
		src, err := readPNG(filepath.Join(dir, name))
		if err != nil {
			problems = append(problems, BatchError{File: name, Err: err})
			continue
		}
		b := src.Bounds()
		if b.Dx() != loc.Width || b.Dy() != loc.Height {
			problems = append(problems, BatchError{File: name, Err: &DimensionError{
				WantWidth:  loc.Width,
				WantHeight: loc.Height,
				GotWidth:   b.Dx(),
				GotHeight:  b.Dy(),
			}})
			continue
		}
		pal, err := w.BankPalette(loc)
		if err != nil {
			problems = append(problems, BatchError{File: name, Err: err})
			continue
		}
		if colors := distinctColors(src, len(pal)); len(colors) > len(pal) {
			problems = append(problems, BatchError{File: name, Err: &ColorBudgetError{
				Index:  index,
				Bank:   bank,
				Colors: trueColorCount(src),
				Slots:  len(pal),
			}})
			continue
		}
		spr := NewSpriteImage(loc.Width, loc.Height)
		for y := 0; y < loc.Height; y++ {
			for x := 0; x < loc.Width; x++ {
				e := entryFromColor(src.At(b.Min.X+x, b.Min.Y+y))
				spr.Set(x, y, nearestSlot(pal, e))
			}
		}
		if err := w.WriteSprite(index, bank, spr); err != nil {
			problems = append(problems, BatchError{File: name, Err: err})
			continue
		}
		replaced++
	}
	return replaced, problems, nil
}

// UpdatePalettes refreshes bank palettes from a directory of replacement
// PNGs, preserving slot assignments for colors that already exist. Pixel
// data is untouched; run ReplaceSprites afterwards.
func (w *BINWrapper) UpdatePalettes(dir string) (int, []BatchError, error) {
	files, err := collectSpriteFiles(dir)
	if err != nil {
		return 0, nil, err
	}
	var problems []BatchError
	updated := 0
	for _, name := range files {
		index, bank, _ := parseSpriteFileName(name)
		loc, err := LocateSprite(w.Device, index, bank)
		if err != nil {
			problems = append(problems, BatchError{File: name, Err: err})
			continue
		}
		src, err := readPNG(filepath.Join(dir, name))
		if err != nil {
			problems = append(problems, BatchError{File: name, Err: err})
			continue
		}
		old, err := w.BankPalette(loc)
		if err != nil {
			problems = append(problems, BatchError{File: name, Err: err})
			continue
		}
		colors := distinctColors(src, len(old))
		next, err := UpdatePaletteFromImage(old, colors)
		if err != nil {
			var cbe *ColorBudgetError
			if errors.As(err, &cbe) {
				cbe.Index = index
				cbe.Bank = bank
				cbe.Colors = trueColorCount(src)
			}
			problems = append(problems, BatchError{File: name, Err: err})
			continue
		}
		if err := w.WritePalette(loc, next); err != nil {
			problems = append(problems, BatchError{File: name, Err: err})
			continue
		}
		updated++
	}
	return updated, problems, nil
}
