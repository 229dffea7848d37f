package dump

import "fmt"

type DeviceType int

const (
	DT_NONE DeviceType = iota
	DT_D3
	DT_DIGIVICE
)

const (
	D3_DUMP_BYTES       = 0x400000
	DIGIVICE_DUMP_BYTES = 0x3A0000
)

func (dt DeviceType) String() string {
	switch dt {
	case DT_D3:
		return "D-3 25th Color Evolution"
	case DT_DIGIVICE:
		return "Digivice 25th Color Evolution"
	}
	return "Unrecognized"
}

// CanEditStage reports whether the device family exposes the evolution
// stage byte. The Digivice firmware derives stage from the evolution line
// instead of storing it per partner, so writing it is not supported there.
func (dt DeviceType) CanEditStage() bool {
	return dt == DT_D3
}

func (dt DeviceType) DumpBytes() int {
	switch dt {
	case DT_D3:
		return D3_DUMP_BYTES
	case DT_DIGIVICE:
		return DIGIVICE_DUMP_BYTES
	}
	return 0
}

// NumRecords is the partner metadata table length for the device.
func (dt DeviceType) NumRecords() int {
	switch dt {
	case DT_D3:
		return 155
	case DT_DIGIVICE:
		return 112
	}
	return 0
}

func (dt DeviceType) MaxSpriteIndex() int {
	switch dt {
	case DT_D3:
		return 1399
	case DT_DIGIVICE:
		return 1249
	}
	return -1
}

// IdentifyDump guesses the device family from the dump length. Both
// families use fixed-size flash, so the length is a reliable signal.
func IdentifyDump(data []byte) DeviceType {
	switch len(data) {
	case D3_DUMP_BYTES:
		return DT_D3
	case DIGIVICE_DUMP_BYTES:
		return DT_DIGIVICE
	}
	return DT_NONE
}

const (
	MIN_STAGE = 1
	MAX_STAGE = 5
)

var stageNames = [MAX_STAGE + 1]string{
	"",
	"Rookie",
	"Champion",
	"Ultimate",
	"Mega",
	"Ultra",
}

// StageName returns the evolutionary tier name for a stage value, or a
// numeric placeholder when the value is out of the known range.
func StageName(stage int) string {
	if stage >= MIN_STAGE && stage <= MAX_STAGE {
		return stageNames[stage]
	}
	return fmt.Sprintf("Stage %d", stage)
}
