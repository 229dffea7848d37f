package dump

import "fmt"

const (
	PALETTE_SLOTS      = 64
	PALETTE_ENTRY_SIZE = 2
	PALETTE_BYTES      = PALETTE_SLOTS * PALETTE_ENTRY_SIZE
	NAME_FIELD_LENGTH  = 8
	META_RECORD_SIZE   = 10
)

// Bank roles for the four-pose sprite slots.
const (
	BANK_IDLE1  = 0
	BANK_IDLE2  = 1
	BANK_ATTACK = 2
	BANK_DODGE  = 3
)

var bankRoles = []string{"idle1", "idle2", "attack", "dodge"}

func BankRole(bank int) string {
	if bank >= 0 && bank < len(bankRoles) {
		return bankRoles[bank]
	}
	return fmt.Sprintf("bank%d", bank)
}

// spriteRegion describes one contiguous run of equally-sized sprite slots
// in the firmware. Slot data for index i, bank b lives at
// base + (i-first)*banks*width*height + b*width*height. Every region owns
// one 64-slot ARGB1555 palette at palOffset, shared by all its sprites.
type spriteRegion struct {
	name      string
	first     int
	last      int
	base      int
	banks     int
	width     int
	height    int
	palOffset int
}

func (r spriteRegion) slotBytes() int {
	return r.width * r.height
}

func (r spriteRegion) end() int {
	return r.base + (r.last-r.first+1)*r.banks*r.slotBytes()
}

// metaLayout describes the fixed-width partner metadata table. Field
// offsets are relative to the start of each record.
type metaLayout struct {
	base        int
	records     int
	recordSize  int
	nameOffset  int
	nameLength  int
	powerOffset int
	stageOffset int // -1 when the device has no stage byte
}

// partnerFirst is the sprite index of partner slot 0; metadata record i
// pairs with partner sprite index partnerFirst+i.
type deviceLayout struct {
	regions      []spriteRegion
	meta         metaLayout
	partnerFirst int
}

// Hand-curated firmware layout tables, one per device family. These
// reflect the reverse-engineered flash layout and are data, not logic;
// validateLayouts() checks them for internal consistency at startup.
var d3Layout = deviceLayout{
	regions: []spriteRegion{
		{"items", 50, 99, 0x100000, 1, 16, 16, 0x0FFF80},
		{"tamer", 100, 299, 0x110000, 1, 32, 32, 0x10FF80},
		{"partner small sprites", 300, 499, 0x150000, 4, 24, 24, 0x14FF80},
		{"partner big images", 500, 699, 0x1D0000, 1, 48, 48, 0x1CFF80},
		{"friend small sprites", 700, 1049, 0x250000, 4, 24, 24, 0x24FF80},
		{"friend big images", 1050, 1349, 0x320000, 1, 48, 48, 0x31FF80},
		{"digimon attacks", 1350, 1399, 0x3D0000, 1, 24, 24, 0x3CFF80},
	},
	meta: metaLayout{
		base:        0x0A21CC,
		records:     155,
		recordSize:  META_RECORD_SIZE,
		nameOffset:  0,
		nameLength:  NAME_FIELD_LENGTH,
		powerOffset: 8,
		stageOffset: 9,
	},
	partnerFirst: 300,
}

var digiviceLayout = deviceLayout{
	regions: []spriteRegion{
		{"items", 50, 99, 0x100000, 1, 16, 16, 0x0FFF80},
		{"tamer", 100, 249, 0x110000, 1, 32, 32, 0x10FF80},
		{"partner small sprites", 250, 449, 0x140000, 4, 24, 24, 0x13FF80},
		{"partner big images", 450, 649, 0x1C0000, 1, 48, 48, 0x1BFF80},
		{"friend small sprites", 650, 999, 0x240000, 4, 24, 24, 0x23FF80},
		{"friend big images", 1000, 1199, 0x310000, 1, 48, 48, 0x30FF80},
		{"digimon attacks", 1200, 1249, 0x390000, 1, 24, 24, 0x38FF80},
	},
	meta: metaLayout{
		base:        0x097F2A,
		records:     112,
		recordSize:  META_RECORD_SIZE,
		nameOffset:  0,
		nameLength:  NAME_FIELD_LENGTH,
		powerOffset: 8,
		stageOffset: -1,
	},
	partnerFirst: 250,
}

func layoutFor(dt DeviceType) (*deviceLayout, bool) {
	switch dt {
	case DT_D3:
		return &d3Layout, true
	case DT_DIGIVICE:
		return &digiviceLayout, true
	}
	return nil, false
}

// SpriteLocation is the resolved byte range of one sprite slot plus the
// palette it indexes into. Recomputed per operation, never persisted.
type SpriteLocation struct {
	Device        DeviceType
	Index         int
	Bank          int
	Region        string
	Offset        int
	Width         int
	Height        int
	PaletteOffset int
	PaletteSlots  int
}

func (l SpriteLocation) Length() int {
	return l.Width * l.Height
}

// MetaLocation is the resolved byte layout of one partner metadata record.
type MetaLocation struct {
	Device      DeviceType
	Index       int
	NameOffset  int
	NameLength  int
	PowerOffset int
	StageOffset int // -1 when unsupported
}

// RecordLocation bundles everything known about one partner digimon:
// its four pose sprite banks, its big image slot and its metadata record.
type RecordLocation struct {
	Device      DeviceType
	Index       int
	SpriteBanks []SpriteLocation
	BigImage    SpriteLocation
	Meta        MetaLocation
}

// LocateSprite resolves a sprite slot in the full sprite index space
// (items, tamer, partner, friend, attacks).
func LocateSprite(dt DeviceType, index int, bank int) (SpriteLocation, error) {
	layout, ok := layoutFor(dt)
	if !ok {
		return SpriteLocation{}, &IndexOutOfRangeError{Device: dt, Index: index, Bank: bank}
	}
	for _, r := range layout.regions {
		if index < r.first || index > r.last {
			continue
		}
		if bank < 0 || bank >= r.banks {
			return SpriteLocation{}, &IndexOutOfRangeError{Device: dt, Index: index, Bank: bank}
		}
		slot := r.slotBytes()
		return SpriteLocation{
			Device:        dt,
			Index:         index,
			Bank:          bank,
			Region:        r.name,
			Offset:        r.base + (index-r.first)*r.banks*slot + bank*slot,
			Width:         r.width,
			Height:        r.height,
			PaletteOffset: r.palOffset,
			PaletteSlots:  PALETTE_SLOTS,
		}, nil
	}
	return SpriteLocation{}, &IndexOutOfRangeError{Device: dt, Index: index, Bank: bank}
}

// LocateMeta resolves the metadata record for partner digimon index.
func LocateMeta(dt DeviceType, index int) (MetaLocation, error) {
	layout, ok := layoutFor(dt)
	if !ok {
		return MetaLocation{}, &IndexOutOfRangeError{Device: dt, Index: index, Bank: -1}
	}
	m := layout.meta
	if index < 0 || index >= m.records {
		return MetaLocation{}, &IndexOutOfRangeError{Device: dt, Index: index, Bank: -1}
	}
	rec := m.base + index*m.recordSize
	loc := MetaLocation{
		Device:      dt,
		Index:       index,
		NameOffset:  rec + m.nameOffset,
		NameLength:  m.nameLength,
		PowerOffset: rec + m.powerOffset,
		StageOffset: -1,
	}
	if m.stageOffset >= 0 {
		loc.StageOffset = rec + m.stageOffset
	}
	return loc, nil
}

// Locate resolves the full record for one partner digimon: metadata plus
// the requested pose bank. Bank selects which of the four pose slots is
// primary in the result; all four are still listed in SpriteBanks.
func Locate(dt DeviceType, index int, bank int) (RecordLocation, error) {
	layout, ok := layoutFor(dt)
	if !ok {
		return RecordLocation{}, &IndexOutOfRangeError{Device: dt, Index: index, Bank: bank}
	}
	meta, err := LocateMeta(dt, index)
	if err != nil {
		return RecordLocation{}, err
	}
	if bank < 0 || bank >= len(bankRoles) {
		return RecordLocation{}, &IndexOutOfRangeError{Device: dt, Index: index, Bank: bank}
	}
	rec := RecordLocation{Device: dt, Index: index, Meta: meta}
	for b := 0; b < len(bankRoles); b++ {
		loc, err := LocateSprite(dt, layout.partnerFirst+index, b)
		if err != nil {
			return RecordLocation{}, err
		}
		rec.SpriteBanks = append(rec.SpriteBanks, loc)
	}
	for _, r := range layout.regions {
		if r.name != "partner big images" || index > r.last-r.first {
			continue
		}
		big, err := LocateSprite(dt, r.first+index, 0)
		if err != nil {
			return RecordLocation{}, err
		}
		rec.BigImage = big
		break
	}
	return rec, nil
}

// RangeHint names the sprite index window a region occupies. Shown to the
// user before an export so they can pick a sensible range.
type RangeHint struct {
	Name   string
	First  int
	Last   int
	Offset int
	End    int
	Banks  int
	Width  int
	Height int
}

// HintsForWindow returns the regions whose index ranges overlap lo..hi.
func HintsForWindow(dt DeviceType, lo, hi int) []RangeHint {
	layout, ok := layoutFor(dt)
	if !ok {
		return nil
	}
	var hints []RangeHint
	for _, r := range layout.regions {
		if r.last < lo || r.first > hi {
			continue
		}
		hints = append(hints, RangeHint{
			Name:   r.name,
			First:  r.first,
			Last:   r.last,
			Offset: r.base,
			End:    r.end(),
			Banks:  r.banks,
			Width:  r.width,
			Height: r.height,
		})
	}
	return hints
}

// HintsForOffset returns the regions whose byte ranges contain the offset.
func HintsForOffset(dt DeviceType, offset int) []RangeHint {
	layout, ok := layoutFor(dt)
	if !ok {
		return nil
	}
	var hints []RangeHint
	for _, r := range layout.regions {
		if offset >= r.base && offset < r.end() {
			hints = append(hints, RangeHint{
				Name:   r.name,
				First:  r.first,
				Last:   r.last,
				Offset: r.base,
				End:    r.end(),
				Banks:  r.banks,
				Width:  r.width,
				Height: r.height,
			})
		}
	}
	return hints
}

func validateLayout(dt DeviceType, layout *deviceLayout) error {
	size := dt.DumpBytes()
	prevEnd := 0
	prevLast := -1
	for _, r := range layout.regions {
		if r.first <= prevLast {
			return fmt.Errorf("%s: region %q index range overlaps previous", dt, r.name)
		}
		if r.palOffset < prevEnd || r.palOffset+PALETTE_BYTES > r.base {
			return fmt.Errorf("%s: region %q palette outside its gap", dt, r.name)
		}
		if r.base < prevEnd {
			return fmt.Errorf("%s: region %q overlaps previous region", dt, r.name)
		}
		if r.end() > size {
			return fmt.Errorf("%s: region %q runs past end of dump", dt, r.name)
		}
		prevEnd = r.end()
		prevLast = r.last
	}
	m := layout.meta
	metaEnd := m.base + m.records*m.recordSize
	if metaEnd > size {
		return fmt.Errorf("%s: metadata table runs past end of dump", dt)
	}
	for _, r := range layout.regions {
		if m.base < r.end() && metaEnd > r.palOffset {
			return fmt.Errorf("%s: metadata table overlaps region %q", dt, r.name)
		}
	}
	if npc, ok := npcLayoutFor(dt); ok {
		npcEnd := npc.base + npc.size
		if npc.base < 0 || npcEnd > size {
			return fmt.Errorf("%s: npc string table runs past end of dump", dt)
		}
		if npc.base < metaEnd && npcEnd > m.base {
			return fmt.Errorf("%s: npc string table overlaps metadata table", dt)
		}
		for _, r := range layout.regions {
			if npc.base < r.end() && npcEnd > r.palOffset {
				return fmt.Errorf("%s: npc string table overlaps region %q", dt, r.name)
			}
		}
	}
	return nil
}

func validateLayouts() error {
	if err := validateLayout(DT_D3, &d3Layout); err != nil {
		return err
	}
	return validateLayout(DT_DIGIVICE, &digiviceLayout)
}

func init() {
	if err := validateLayouts(); err != nil {
		panic(err)
	}
}
