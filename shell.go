package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"sort"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/digivicemod/dvedit/crashlog"
	"github.com/digivicemod/dvedit/dump"
	"github.com/digivicemod/dvedit/loggy"
)

const MAXVOL = 4

var commandList map[string]*shellCommand
var commandVolumes [MAXVOL]*dump.BINWrapper
var commandTarget int = -1

func mountBin(w *dump.BINWrapper) (int, error) {

	var fr []int

	for i, d := range commandVolumes {
		if d == nil {
			fr = append(fr, i)
		} else if w.Filename == d.Filename {
			return i, nil
		}
	}

	if len(fr) == 0 {
		return -1, fmt.Errorf("no free slots")
	}

	commandVolumes[fr[0]] = w

	return fr[0], nil

}

func currentBin() *dump.BINWrapper {
	if commandTarget == -1 {
		return nil
	}
	return commandVolumes[commandTarget]
}

func smartSplit(line string) (string, []string) {

	var out []string

	var inqq bool
	var lastEscape bool
	var chunk string

	add := func() {
		if chunk != "" {
			out = append(out, chunk)
			chunk = ""
		}
	}

	for _, ch := range line {
		switch {
		case ch == '"':
			inqq = !inqq
			add()
		case ch == ' ':
			if inqq || lastEscape {
				chunk += string(ch)
			} else {
				add()
			}
			lastEscape = false
		case ch == '\\' && !inqq:
			lastEscape = true
		default:
			chunk += string(ch)
		}
	}

	add()

	if len(out) == 0 {
		return "", out
	}

	return out[0], out[1:]
}

func getPrompt(t int) string {

	if t == -1 || commandVolumes[t] == nil {
		return "dv:0:<no mount>> "
	}

	w := commandVolumes[t]
	mark := ""
	if w.Modified {
		mark = "*"
	}

	return fmt.Sprintf("dv:%d:%s%s> ", t, filepath.Base(w.Filename), mark)
}

type shellCommand struct {
	Name             string
	Description      string
	MinArgs, MaxArgs int
	Code             func(args []string) int
	NeedsMount       bool
	Context          shellCommandContext
	Text             []string
}

type shellCommandContext int

const (
	sccNone shellCommandContext = 1 << iota
	sccLocal
	sccCommand
)

type shellCompleter struct {
}

func hasPrefix(str []rune, prefix []rune) bool {
	if len(prefix) > len(str) {
		return false
	}
	for i := 0; i < len(prefix); i++ {
		if str[i] != prefix[i] {
			return false
		}
	}
	return true
}

func (sc *shellCompleter) Do(line []rune, pos int) ([][]rune, int) {

	prefix := ""
	chunk := ""
	for _, ch := range line {
		if ch == ' ' {
			prefix = chunk
			break
		} else {
			chunk += string(ch)
		}
	}

	chunk = ""
	cprefix := ""
	var lastEscape bool
	for i := 0; i < pos; i++ {
		ch := line[i]
		switch {
		case ch == '\\':
			lastEscape = true
		case ch == ' ' && !lastEscape:
			cprefix = chunk
			chunk = ""
			lastEscape = false
		default:
			chunk += string(ch)
		}
	}
	if chunk != "" {
		cprefix = chunk
	}

	var context shellCommandContext = sccNone
	cmd, match := commandList[prefix]
	if match {
		context = cmd.Context
	} else {
		context = sccCommand
	}

	var items [][]rune
	switch context {
	case sccCommand:
		for k := range commandList {
			items = append(items, []rune(k))
		}
	case sccLocal:
		files, err := filepath.Glob(cprefix + "*")
		if err != nil {
			return items, 0
		}
		for _, v := range files {
			items = append(items, []rune(v))
		}
	}

	if len(items) == 0 {
		return [][]rune(nil), 0
	}

	var filt [][]rune
	for _, v := range items {
		if hasPrefix(v, []rune(cprefix)) {
			filt = append(filt, shellEscape(v[len(cprefix):]))
		}
	}
	return filt, len(cprefix)
}

func shellEscape(str []rune) []rune {
	out := make([]rune, 0)
	for _, v := range str {
		if v == ' ' {
			out = append(out, '\\')
		}
		out = append(out, v)
	}
	return out
}

func init() {
	commandList = map[string]*shellCommand{
		"mount": &shellCommand{
			Name:        "mount",
			Description: "Mount a firmware dump",
			MinArgs:     1,
			MaxArgs:     2,
			Code:        shellMount,
			NeedsMount:  false,
			Context:     sccLocal,
			Text: []string{
				"mount <binfile> [d3|digivice]",
				"",
				"Loads dump and switches to the new slot. Device type is",
				"detected from the file size unless given explicitly.",
			},
		},
		"unmount": &shellCommand{
			Name:        "unmount",
			Description: "Unmount a firmware dump",
			MinArgs:     0,
			MaxArgs:     1,
			Code:        shellUnmount,
			NeedsMount:  true,
			Context:     sccNone,
			Text: []string{
				"unmount [slot]",
				"",
				"Discard the dump in the given slot (or current slot).",
				"Unsaved changes are lost.",
			},
		},
		"slot": &shellCommand{
			Name:        "slot",
			Description: "Switch between mounted dumps",
			MinArgs:     1,
			MaxArgs:     1,
			Code:        shellSlot,
			NeedsMount:  false,
			Context:     sccNone,
			Text: []string{
				"slot <n>",
			},
		},
		"info": &shellCommand{
			Name:        "info",
			Description: "Information about the current dump",
			MinArgs:     -1,
			MaxArgs:     -1,
			Code:        shellInfo,
			NeedsMount:  true,
			Context:     sccNone,
			Text: []string{
				"info",
				"",
				"Device type, checksum and sprite region table.",
			},
		},
		"hint": &shellCommand{
			Name:        "hint",
			Description: "Show which sprites occupy an index range or offset",
			MinArgs:     1,
			MaxArgs:     1,
			Code:        shellHint,
			NeedsMount:  true,
			Context:     sccNone,
			Text: []string{
				"hint <index|lo-hi|0xOFFSET>",
				"",
				"Names the sprite regions overlapping the window, to orient",
				"yourself before an export.",
			},
		},
		"export": &shellCommand{
			Name:        "export",
			Description: "Export sprite PNGs",
			MinArgs:     1,
			MaxArgs:     3,
			Code:        shellExport,
			NeedsMount:  true,
			Context:     sccLocal,
			Text: []string{
				"export <dir> [lo-hi] [banks]",
				"",
				"Writes one PNG per sprite slot, named INDEX_BANK_role.png.",
				"Default range is the whole sprite table, banks 0-3.",
			},
		},
		"replace": &shellCommand{
			Name:        "replace",
			Description: "Replace sprites from a PNG directory",
			MinArgs:     1,
			MaxArgs:     1,
			Code:        shellReplace,
			NeedsMount:  true,
			Context:     sccLocal,
			Text: []string{
				"replace <dir>",
				"",
				"Imports PNGs named INDEX_BANK_role.png back into their",
				"slots. Images must match slot dimensions and fit the",
				"bank's color budget.",
			},
		},
		"palette": &shellCommand{
			Name:        "palette",
			Description: "Refresh palette banks from a PNG directory",
			MinArgs:     1,
			MaxArgs:     1,
			Code:        shellPalette,
			NeedsMount:  true,
			Context:     sccLocal,
			Text: []string{
				"palette <dir>",
				"",
				"Rewrites each bank's palette from the replacement image's",
				"colors, keeping slots for colors that already exist.",
				"Sprite pixel data is untouched; run replace afterwards.",
			},
		},
		"data-export": &shellCommand{
			Name:        "data-export",
			Description: "Export metadata table to CSV",
			MinArgs:     1,
			MaxArgs:     1,
			Code:        shellDataExport,
			NeedsMount:  true,
			Context:     sccLocal,
			Text: []string{
				"data-export <file.csv>",
			},
		},
		"data-import": &shellCommand{
			Name:        "data-import",
			Description: "Import metadata table from CSV (all-or-nothing)",
			MinArgs:     1,
			MaxArgs:     1,
			Code:        shellDataImport,
			NeedsMount:  true,
			Context:     sccLocal,
			Text: []string{
				"data-import <file.csv>",
				"",
				"Every row is validated before any byte is written.",
			},
		},
		"npc": &shellCommand{
			Name:        "npc",
			Description: "Read or write an NPC name",
			MinArgs:     0,
			MaxArgs:     2,
			Code:        shellNPC,
			NeedsMount:  true,
			Context:     sccNone,
			Text: []string{
				"npc [string_index] [\"New Name\"]",
				"",
				"With no arguments, lists every NPC name. Renames are in",
				"place: the new name must have exactly as many characters",
				"as the current one.",
			},
		},
		"npc-export": &shellCommand{
			Name:        "npc-export",
			Description: "Export NPC names to CSV",
			MinArgs:     1,
			MaxArgs:     1,
			Code:        shellNPCExport,
			NeedsMount:  true,
			Context:     sccLocal,
			Text: []string{
				"npc-export <file.csv>",
			},
		},
		"npc-import": &shellCommand{
			Name:        "npc-import",
			Description: "Import NPC names from CSV (per-row, skips bad rows)",
			MinArgs:     1,
			MaxArgs:     1,
			Code:        shellNPCImport,
			NeedsMount:  true,
			Context:     sccLocal,
			Text: []string{
				"npc-import <file.csv>",
				"",
				"Rows that fail the equal-length rule are reported and",
				"skipped; the rest still apply.",
			},
		},
		"name": &shellCommand{
			Name:        "name",
			Description: "Read or write a partner name",
			MinArgs:     1,
			MaxArgs:     2,
			Code:        shellName,
			NeedsMount:  true,
			Context:     sccNone,
			Text: []string{
				"name <index> [NEWNAME]",
				"",
				"Names are A-Z and _ (space), exactly the field width.",
			},
		},
		"power": &shellCommand{
			Name:        "power",
			Description: "Read or write a partner power value",
			MinArgs:     1,
			MaxArgs:     2,
			Code:        shellPower,
			NeedsMount:  true,
			Context:     sccNone,
			Text: []string{
				"power <index> [0-225]",
			},
		},
		"stage": &shellCommand{
			Name:        "stage",
			Description: "Read or write a partner evolution stage (D-3 only)",
			MinArgs:     1,
			MaxArgs:     2,
			Code:        shellStage,
			NeedsMount:  true,
			Context:     sccNone,
			Text: []string{
				"stage <index> [1-5]",
				"",
				"1=Rookie 2=Champion 3=Ultimate 4=Mega 5=Ultra",
			},
		},
		"save": &shellCommand{
			Name:        "save",
			Description: "Write the dump to a file",
			MinArgs:     1,
			MaxArgs:     1,
			Code:        shellSave,
			NeedsMount:  true,
			Context:     sccLocal,
			Text: []string{
				"save <outfile>",
				"",
				"Writes the whole buffer in a single pass. Prefer a path",
				"different from the mounted file.",
			},
		},
		"help": &shellCommand{
			Name:        "help",
			Description: "Shows this help",
			MinArgs:     0,
			MaxArgs:     1,
			Code:        shellHelp,
			NeedsMount:  false,
			Context:     sccCommand,
			Text: []string{
				"help <command>",
				"",
				"Display specific help for command or list of commands",
			},
		},
		"quit": &shellCommand{
			Name:        "quit",
			Description: "Leave interactive mode",
			MinArgs:     0,
			MaxArgs:     0,
			Code:        shellQuit,
			NeedsMount:  false,
			Context:     sccNone,
			Text: []string{
				"quit",
			},
		},
	}
}

func shellProcess(line string) int {
	line = strings.TrimSpace(line)

	verb, args := smartSplit(line)

	if verb != "" {
		verb = strings.ToLower(verb)
		command, ok := commandList[verb]
		if ok {
			fmt.Println()
			var cok = true
			if command.MinArgs != -1 {
				if len(args) < command.MinArgs {
					os.Stderr.WriteString(fmt.Sprintf("%s expects at least %d arguments\n", verb, command.MinArgs))
					cok = false
				}
			}
			if command.MaxArgs != -1 {
				if len(args) > command.MaxArgs {
					os.Stderr.WriteString(fmt.Sprintf("%s expects at most %d arguments\n", verb, command.MaxArgs))
					cok = false
				}
			}
			if command.NeedsMount {
				if commandTarget == -1 || commandVolumes[commandTarget] == nil {
					os.Stderr.WriteString(fmt.Sprintf("%s only works on mounted dumps\n", verb))
					cok = false
				}
			}
			if cok {
				var r int
				crashlog.Do(
					func() {
						r = command.Code(args)
					},
					func(rec interface{}) {
						loggy.Get(0).Errorf("panic in shell command %s: %v", verb, rec)
						loggy.Get(0).Errorf(string(debug.Stack()))
						os.Stderr.WriteString(fmt.Sprintf("Internal error: %v\n", rec))
						r = -1
					},
				)
				fmt.Println()
				return r
			} else {
				return -1
			}
		} else {
			os.Stderr.WriteString(fmt.Sprintf("Unrecognized command: %s\n", verb))
			return -1
		}
	}

	return 0
}

func shellDo(batchfile string) {

	if batchfile != "" {
		data, err := os.ReadFile(batchfile)
		if err != nil {
			os.Stderr.WriteString("Error: " + err.Error() + "\n")
			os.Exit(2)
		}
		for _, line := range strings.Split(string(data), "\n") {
			if strings.TrimSpace(line) == "" || strings.HasPrefix(strings.TrimSpace(line), "#") {
				continue
			}
			if r := shellProcess(line); r == 999 {
				return
			}
		}
		return
	}

	ac := &shellCompleter{}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:                 getPrompt(commandTarget),
		HistoryFile:            binpath() + "/.shell_history",
		DisableAutoSaveHistory: false,
		AutoComplete:           ac,
	})
	if err != nil {
		os.Exit(2)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil {
			break
		}

		r := shellProcess(line)
		if r == 999 {
			return
		}

		rl.SetPrompt(getPrompt(commandTarget))
	}

}

func shellMount(args []string) int {

	var w *dump.BINWrapper
	var err error

	if len(args) == 2 {
		var dt dump.DeviceType
		dt, err = parseDeviceType(args[1])
		if err != nil {
			os.Stderr.WriteString("Error: " + err.Error() + "\n")
			return -1
		}
		w, err = dump.NewBINWrapperAs(args[0], dt)
	} else {
		w, err = dump.NewBINWrapper(args[0])
	}
	if err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		return -1
	}

	slotid, err := mountBin(w)
	if err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		return -1
	}

	commandTarget = slotid
	os.Stderr.WriteString(fmt.Sprintf("mounted %s dump in slot %d\n", w.Device, slotid))

	return 0
}

func shellUnmount(args []string) int {

	target := commandTarget
	if len(args) == 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 || n >= MAXVOL {
			os.Stderr.WriteString("Bad slot\n")
			return -1
		}
		target = n
	}

	if commandVolumes[target] != nil {
		if commandVolumes[target].Modified {
			os.Stderr.WriteString("Discarding unsaved changes\n")
		}
		commandVolumes[target] = nil
		os.Stderr.WriteString("Unmounted dump\n")
	}

	return 0
}

func shellSlot(args []string) int {
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 0 || n >= MAXVOL {
		os.Stderr.WriteString("Bad slot\n")
		return -1
	}
	commandTarget = n
	return 0
}

func shellInfo(args []string) int {

	w := currentBin()

	fmt.Printf("File:     %s\n", w.Filename)
	fmt.Printf("Device:   %s\n", w.Device)
	fmt.Printf("Size:     %d bytes\n", len(w.Data))
	fmt.Printf("Loaded:   %s\n", w.SourceSum)
	fmt.Printf("Current:  %s\n", dump.Checksum(w.Data))
	fmt.Printf("Records:  %d\n", w.Device.NumRecords())
	fmt.Println()
	for _, h := range dump.HintsForWindow(w.Device, 0, w.Device.MaxSpriteIndex()) {
		fmt.Printf("  %-22s index %4d-%-4d  %dx%d x%d bank(s)  @ 0x%06X\n",
			h.Name, h.First, h.Last, h.Width, h.Height, h.Banks, h.Offset)
	}

	return 0
}

func shellHint(args []string) int {

	w := currentBin()
	var hints []dump.RangeHint

	arg := strings.TrimSpace(args[0])
	if strings.HasPrefix(strings.ToLower(arg), "0x") {
		off, err := strconv.ParseInt(arg[2:], 16, 64)
		if err != nil {
			os.Stderr.WriteString("Bad offset\n")
			return -1
		}
		hints = dump.HintsForOffset(w.Device, int(off))
	} else {
		lo, hi, err := parseRange(arg)
		if err != nil {
			os.Stderr.WriteString("Bad range\n")
			return -1
		}
		hints = dump.HintsForWindow(w.Device, lo, hi)
	}

	if len(hints) == 0 {
		fmt.Println("Nothing known in that window")
		return 0
	}
	for _, h := range hints {
		fmt.Printf("  %-22s index %4d-%-4d  %dx%d x%d bank(s)  0x%06X-0x%06X\n",
			h.Name, h.First, h.Last, h.Width, h.Height, h.Banks, h.Offset, h.End)
	}

	return 0
}

func shellExport(args []string) int {

	w := currentBin()

	lo, hi := 0, w.Device.MaxSpriteIndex()
	banks := []int{0, 1, 2, 3}
	var err error

	if len(args) > 1 {
		lo, hi, err = parseRange(args[1])
		if err != nil {
			os.Stderr.WriteString("Bad range\n")
			return -1
		}
	}
	if len(args) > 2 {
		banks, err = parseBanks(args[2])
		if err != nil {
			os.Stderr.WriteString("Bad banks\n")
			return -1
		}
	}

	if err := os.MkdirAll(args[0], 0755); err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		return -1
	}

	n, problems := w.ExportSprites(args[0], lo, hi, banks)
	reportProblems(problems)
	fmt.Printf("Exported %d sprite(s) to %s\n", n, args[0])

	return 0
}

func shellReplace(args []string) int {

	w := currentBin()

	n, problems, err := w.ReplaceSprites(args[0])
	if err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		return -1
	}
	reportProblems(problems)
	fmt.Printf("Replaced %d sprite(s)\n", n)

	return 0
}

func shellPalette(args []string) int {

	w := currentBin()

	n, problems, err := w.UpdatePalettes(args[0])
	if err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		return -1
	}
	reportProblems(problems)
	fmt.Printf("Updated %d palette bank(s)\n", n)

	return 0
}

func shellDataExport(args []string) int {

	w := currentBin()

	f, err := os.Create(args[0])
	if err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		return -1
	}
	defer f.Close()

	if err := w.ExportData(f); err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		return -1
	}
	fmt.Printf("Exported %d record(s) to %s\n", w.Device.NumRecords(), args[0])

	return 0
}

func shellDataImport(args []string) int {

	w := currentBin()

	f, err := os.Open(args[0])
	if err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		return -1
	}
	defer f.Close()

	n, err := w.ImportData(f)
	if err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		return -1
	}
	fmt.Printf("Imported %d record(s)\n", n)

	return 0
}

func shellNPC(args []string) int {

	w := currentBin()

	if len(args) == 0 {
		for _, si := range dump.NPCIndexes(w.Device) {
			name, err := w.ReadNPCName(si)
			if err != nil {
				os.Stderr.WriteString("Error: " + err.Error() + "\n")
				return -1
			}
			fmt.Printf("%4d: %s\n", si, name)
		}
		return 0
	}

	si, err := strconv.Atoi(args[0])
	if err != nil {
		os.Stderr.WriteString("Bad string index\n")
		return -1
	}

	if len(args) == 1 {
		name, err := w.ReadNPCName(si)
		if err != nil {
			os.Stderr.WriteString("Error: " + err.Error() + "\n")
			return -1
		}
		fmt.Printf("%d: %s\n", si, name)
		return 0
	}

	if err := w.WriteNPCName(si, args[1]); err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		return -1
	}
	fmt.Printf("%d: npc name set to %s\n", si, args[1])

	return 0
}

func shellNPCExport(args []string) int {

	w := currentBin()

	f, err := os.Create(args[0])
	if err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		return -1
	}
	defer f.Close()

	if err := w.ExportNPCNames(f); err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		return -1
	}
	fmt.Printf("Exported %d NPC name(s) to %s\n", len(dump.NPCIndexes(w.Device)), args[0])

	return 0
}

func shellNPCImport(args []string) int {

	w := currentBin()

	f, err := os.Open(args[0])
	if err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		return -1
	}
	defer f.Close()

	n, problems, err := w.ImportNPCNames(f)
	if err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		return -1
	}
	reportProblems(problems)
	fmt.Printf("Applied %d NPC name(s)\n", n)

	return 0
}

func shellName(args []string) int {

	w := currentBin()

	index, err := strconv.Atoi(args[0])
	if err != nil {
		os.Stderr.WriteString("Bad index\n")
		return -1
	}

	if len(args) == 1 {
		name, err := w.ReadName(index)
		if err != nil {
			os.Stderr.WriteString("Error: " + err.Error() + "\n")
			return -1
		}
		display := dump.DisplayName(w.Device, index)
		if display != "" {
			fmt.Printf("%d: %s (%s)\n", index, name, display)
		} else {
			fmt.Printf("%d: %s\n", index, name)
		}
		return 0
	}

	if err := w.WriteName(index, strings.ToUpper(args[1])); err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		return -1
	}
	fmt.Printf("%d: name set to %s\n", index, strings.ToUpper(args[1]))

	return 0
}

func shellPower(args []string) int {

	w := currentBin()

	index, err := strconv.Atoi(args[0])
	if err != nil {
		os.Stderr.WriteString("Bad index\n")
		return -1
	}

	if len(args) == 1 {
		power, err := w.ReadPower(index)
		if err != nil {
			os.Stderr.WriteString("Error: " + err.Error() + "\n")
			return -1
		}
		fmt.Printf("%d: power %d\n", index, power)
		return 0
	}

	value, err := strconv.Atoi(args[1])
	if err != nil {
		os.Stderr.WriteString("Bad value\n")
		return -1
	}
	if err := w.WritePower(index, value); err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		return -1
	}
	fmt.Printf("%d: power set to %d\n", index, value)

	return 0
}

func shellStage(args []string) int {

	w := currentBin()

	index, err := strconv.Atoi(args[0])
	if err != nil {
		os.Stderr.WriteString("Bad index\n")
		return -1
	}

	if len(args) == 1 {
		stage, err := w.ReadStage(index)
		if err != nil {
			os.Stderr.WriteString("Error: " + err.Error() + "\n")
			return -1
		}
		fmt.Printf("%d: stage %d (%s)\n", index, stage, dump.StageName(stage))
		return 0
	}

	value, err := strconv.Atoi(args[1])
	if err != nil {
		os.Stderr.WriteString("Bad value\n")
		return -1
	}
	if err := w.WriteStage(index, value); err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		return -1
	}
	fmt.Printf("%d: stage set to %d (%s)\n", index, value, dump.StageName(value))

	return 0
}

func shellSave(args []string) int {

	w := currentBin()

	if args[0] == w.Filename {
		os.Stderr.WriteString("Warning: overwriting the mounted file\n")
	}

	if err := w.Save(args[0]); err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		return -1
	}
	fmt.Printf("Wrote %s (%d bytes)\n", args[0], len(w.Data))
	loggy.Get(0).Logf("shell: wrote %s", args[0])

	return 0
}

func shellQuit(args []string) int {
	for _, w := range commandVolumes {
		if w != nil && w.Modified {
			os.Stderr.WriteString("Warning: unsaved changes discarded\n")
			break
		}
	}
	return 999
}

func shellHelp(args []string) int {

	if len(args) == 1 {
		cmd, ok := commandList[strings.ToLower(args[0])]
		if !ok {
			os.Stderr.WriteString("No such command\n")
			return -1
		}
		for _, line := range cmd.Text {
			fmt.Println(line)
		}
		return 0
	}

	var names []string
	for k := range commandList {
		names = append(names, k)
	}
	sort.Strings(names)

	for _, k := range names {
		fmt.Printf("%-12s %s\n", k, commandList[k].Description)
	}
	fmt.Println()
	fmt.Println("help <command> for details")

	return 0
}
