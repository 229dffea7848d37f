package dump

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// MetaRow is one record of the tabular metadata artifact.
type MetaRow struct {
	Index int
	Name  string
	Power int
	Stage int
}

// ExportData writes the whole metadata table as CSV, one row per partner
// index. The stage column only appears on devices that store a stage
// byte; the display column is an operator aid and is ignored on import.
func (w *BINWrapper) ExportData(out io.Writer) error {
	cw := csv.NewWriter(out)
	header := []string{"index", "name", "power"}
	if w.Device.CanEditStage() {
		header = append(header, "stage")
	}
	header = append(header, "display")
	if err := cw.Write(header); err != nil {
		return err
	}
	for index := 0; index < w.Device.NumRecords(); index++ {
		loc, err := LocateMeta(w.Device, index)
		if err != nil {
			return err
		}
		name, err := ReadName(w.Data, loc)
		if err != nil {
			return err
		}
		power, err := ReadPower(w.Data, loc)
		if err != nil {
			return err
		}
		row := []string{strconv.Itoa(index), name, strconv.Itoa(power)}
		if w.Device.CanEditStage() {
			stage, err := ReadStage(w.Data, loc)
			if err != nil {
				return err
			}
			row = append(row, strconv.Itoa(stage))
		}
		row = append(row, DisplayName(w.Device, index))
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ImportData reads a tabular artifact and applies it to the metadata
// table. Every row is validated before any byte is written: either the
// whole import lands or the buffer is untouched.
func (w *BINWrapper) ImportData(in io.Reader) (int, error) {
	rows, err := w.parseDataCSV(in)
	if err != nil {
		return 0, err
	}

	var bad []string
	for _, r := range rows {
		if err := w.validateRow(r); err != nil {
			bad = append(bad, fmt.Sprintf("row index %d: %v", r.Index, err))
		}
	}
	if len(bad) > 0 {
		return 0, fmt.Errorf("import rejected, %d invalid row(s):\n  %s", len(bad), strings.Join(bad, "\n  "))
	}

	for _, r := range rows {
		loc, _ := LocateMeta(w.Device, r.Index)
		if err := WriteName(w.Data, loc, r.Name); err != nil {
			return 0, err
		}
		if err := WritePower(w.Data, loc, r.Power); err != nil {
			return 0, err
		}
		if w.Device.CanEditStage() {
			if err := WriteStage(w.Data, loc, r.Stage); err != nil {
				return 0, err
			}
		}
	}
	if len(rows) > 0 {
		w.Modified = true
	}
	return len(rows), nil
}

func (w *BINWrapper) validateRow(r MetaRow) error {
	loc, err := LocateMeta(w.Device, r.Index)
	if err != nil {
		return err
	}
	if len(r.Name) != loc.NameLength {
		return &LengthMismatchError{Want: loc.NameLength, Got: len(r.Name)}
	}
	for _, c := range r.Name {
		if (c < 'A' || c > 'Z') && c != '_' {
			return &InvalidCharacterError{Name: r.Name, Char: c}
		}
	}
	if r.Power < 0 || r.Power > MAX_POWER {
		return &ValueOutOfRangeError{Field: "power", Value: r.Power, Min: 0, Max: MAX_POWER}
	}
	if w.Device.CanEditStage() {
		if r.Stage < MIN_STAGE || r.Stage > MAX_STAGE {
			return &ValueOutOfRangeError{Field: "stage", Value: r.Stage, Min: MIN_STAGE, Max: MAX_STAGE}
		}
	} else if r.Stage != 0 {
		return &UnsupportedOperationError{Device: w.Device, Op: "stage write"}
	}
	return nil
}

func (w *BINWrapper) parseDataCSV(in io.Reader) ([]MetaRow, error) {
	cr := csv.NewReader(in)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty CSV")
	}

	cols := map[string]int{}
	for i, h := range records[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"index", "name", "power"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("CSV missing %q column", required)
		}
	}
	stageCol, hasStage := cols["stage"]

	var rows []MetaRow
	for n, rec := range records[1:] {
		get := func(col int) string {
			if col < len(rec) {
				return strings.TrimSpace(rec[col])
			}
			return ""
		}
		index, err := strconv.Atoi(get(cols["index"]))
		if err != nil {
			return nil, fmt.Errorf("line %d: bad index %q", n+2, get(cols["index"]))
		}
		power, err := strconv.Atoi(get(cols["power"]))
		if err != nil {
			return nil, fmt.Errorf("line %d: bad power %q", n+2, get(cols["power"]))
		}
		row := MetaRow{
			Index: index,
			Name:  strings.ToUpper(get(cols["name"])),
			Power: power,
		}
		if hasStage {
			s := get(stageCol)
			if s != "" {
				stage, err := strconv.Atoi(s)
				if err != nil {
					return nil, fmt.Errorf("line %d: bad stage %q", n+2, s)
				}
				row.Stage = stage
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
