package main

/*
DVEdit is a command line tool for patching color-screen Digivice firmware
dumps (D3.bin / Digivice.bin). It can export and replace the partner
sprite artwork, refresh palette banks from replacement images, and edit
the partner metadata table (names, power, evolution stage) in place
without disturbing the surrounding firmware bytes.

All edits happen in memory; the output file is written in a single pass
so a failed run never leaves a half-written dump behind.
*/

import (
	"flag"
	"fmt"
	"os"
	"path"
	"runtime"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/digivicemod/dvedit/crashlog"
	"github.com/digivicemod/dvedit/dump"
	"github.com/digivicemod/dvedit/loggy"
)

func usage() {
	fmt.Printf(`%s <options>

Tool edits sprites and partner metadata inside color Digivice firmware
dumps (%d byte D-3 images, %d byte Digivice images).

`, path.Base(os.Args[0]), dump.D3_DUMP_BYTES, dump.DIGIVICE_DUMP_BYTES)
	flag.PrintDefaults()
}

func binpath() string {

	if runtime.GOOS == "windows" {
		return os.Getenv("USERPROFILE") + "/DVEdit"
	}
	return os.Getenv("HOME") + "/DVEdit"

}

func init() {
	loggy.LogFolder = binpath() + "/logs/"
}

var withBin = flag.String("with-bin", "", "Firmware dump to operate on")
var binType = flag.String("type", "", "Force device type: d3 or digivice (default: detect by size)")
var outFile = flag.String("out", "", "Output dump path (default: <input>.patched.bin)")
var queryBin = flag.String("query", "", "Dump file to identify and summarize")
var exportSprites = flag.String("export-sprites", "", "Export sprite PNGs to directory (-with-bin required)")
var spriteRange = flag.String("range", "", "Sprite index range for -export-sprites, e.g. 300-499")
var spriteBanks = flag.String("banks", "0-3", "Bank list for -export-sprites, e.g. 0-3 or 0,2")
var replaceSprites = flag.String("replace-sprites", "", "Replace sprites from PNG directory (-with-bin required)")
var updatePalette = flag.String("update-palette", "", "Refresh palettes from PNG directory (-with-bin required)")
var exportData = flag.String("export-data", "", "Export metadata table to CSV file (-with-bin required)")
var importData = flag.String("import-data", "", "Import metadata table from CSV file (-with-bin required)")
var exportNPC = flag.String("export-npc", "", "Export NPC names to CSV file (-with-bin required)")
var importNPC = flag.String("import-npc", "", "Import NPC names from CSV file (-with-bin required)")
var verbose = flag.Bool("verbose", false, "Log to stderr")
var shell = flag.Bool("shell", false, "Start interactive mode")
var shellBatch = flag.String("shell-batch", "", "Execute shell command(s) from file and exit")

func banner() {
	fmt.Fprintf(os.Stderr, "DVEdit: Digivice firmware dump editor\n\n")
}

func parseDeviceType(s string) (dump.DeviceType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return dump.DT_NONE, nil
	case "d3", "d-3":
		return dump.DT_D3, nil
	case "digivice", "dv":
		return dump.DT_DIGIVICE, nil
	}
	return dump.DT_NONE, fmt.Errorf("unknown device type %q", s)
}

// parseRange accepts "A-B" or a single index "A".
func parseRange(s string) (int, int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, 0, fmt.Errorf("empty range")
	}
	if i := strings.IndexByte(s, '-'); i > 0 {
		lo, err := strconv.Atoi(strings.TrimSpace(s[:i]))
		if err != nil {
			return 0, 0, err
		}
		hi, err := strconv.Atoi(strings.TrimSpace(s[i+1:]))
		if err != nil {
			return 0, 0, err
		}
		if hi < lo {
			return 0, 0, fmt.Errorf("range %q is backwards", s)
		}
		return lo, hi, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, 0, err
	}
	return v, v, nil
}

// parseBanks accepts "A-B" or a comma list "A,B,C".
func parseBanks(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, "-") {
		lo, hi, err := parseRange(s)
		if err != nil {
			return nil, err
		}
		var out []int
		for b := lo; b <= hi; b++ {
			out = append(out, b)
		}
		return out, nil
	}
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.Atoi(part)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no banks in %q", s)
	}
	return out, nil
}

func openDump(filename string) (*dump.BINWrapper, error) {
	forced, err := parseDeviceType(*binType)
	if err != nil {
		return nil, err
	}
	if forced != dump.DT_NONE {
		return dump.NewBINWrapperAs(filename, forced)
	}
	return dump.NewBINWrapper(filename)
}

func outPath(input string) string {
	if *outFile != "" {
		return *outFile
	}
	return input + ".patched.bin"
}

func reportProblems(problems []dump.BatchError) {
	l := loggy.Get(0)
	for _, p := range problems {
		fmt.Fprintf(os.Stderr, "  [err] %s\n", p.Error())
		l.Errorf("%s", p.Error())
	}
}

func query(filename string) {
	w, err := openDump(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	fmt.Printf("File:     %s\n", w.Filename)
	fmt.Printf("Device:   %s\n", w.Device)
	fmt.Printf("Size:     %d bytes\n", len(w.Data))
	fmt.Printf("SHA256:   %s\n", w.SourceSum)
	fmt.Printf("Records:  %d partner metadata records\n", w.Device.NumRecords())
	fmt.Println()
	fmt.Println("Sprite regions:")
	for _, h := range dump.HintsForWindow(w.Device, 0, w.Device.MaxSpriteIndex()) {
		fmt.Printf("  %-22s index %4d-%-4d  %dx%d x%d bank(s)  @ 0x%06X\n",
			h.Name, h.First, h.Last, h.Width, h.Height, h.Banks, h.Offset)
	}
}

func runOps(filename string) {
	w, err := openDump(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	l := loggy.Get(0)

	if *exportSprites != "" {
		lo, hi := 0, w.Device.MaxSpriteIndex()
		if *spriteRange != "" {
			lo, hi, err = parseRange(*spriteRange)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: bad -range: %v\n", err)
				os.Exit(2)
			}
		}
		banks, err := parseBanks(*spriteBanks)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: bad -banks: %v\n", err)
			os.Exit(2)
		}
		if err := os.MkdirAll(*exportSprites, 0755); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}
		n, problems := w.ExportSprites(*exportSprites, lo, hi, banks)
		reportProblems(problems)
		fmt.Printf("Exported %d sprite(s) to %s\n", n, *exportSprites)
		l.Logf("exported %d sprites from %s range %d-%d", n, filename, lo, hi)
	}

	if *updatePalette != "" {
		n, problems, err := w.UpdatePalettes(*updatePalette)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}
		reportProblems(problems)
		fmt.Printf("Updated %d palette bank(s)\n", n)
	}

	if *replaceSprites != "" {
		n, problems, err := w.ReplaceSprites(*replaceSprites)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}
		reportProblems(problems)
		fmt.Printf("Replaced %d sprite(s)\n", n)
	}

	if *exportData != "" {
		f, err := os.Create(*exportData)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}
		if err := w.ExportData(f); err != nil {
			f.Close()
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}
		f.Close()
		fmt.Printf("Exported %d metadata record(s) to %s\n", w.Device.NumRecords(), *exportData)
	}

	if *importData != "" {
		f, err := os.Open(*importData)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}
		n, err := w.ImportData(f)
		f.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}
		fmt.Printf("Imported %d metadata record(s)\n", n)
	}

	if *exportNPC != "" {
		f, err := os.Create(*exportNPC)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}
		if err := w.ExportNPCNames(f); err != nil {
			f.Close()
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}
		f.Close()
		fmt.Printf("Exported %d NPC name(s) to %s\n", len(dump.NPCIndexes(w.Device)), *exportNPC)
	}

	if *importNPC != "" {
		f, err := os.Open(*importNPC)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}
		n, problems, err := w.ImportNPCNames(f)
		f.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}
		reportProblems(problems)
		fmt.Printf("Applied %d NPC name(s)\n", n)
	}

	if w.Modified {
		target := outPath(filename)
		if err := w.Save(target); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}
		fmt.Printf("Wrote %s\n", target)
		l.Logf("wrote %s (%d bytes)", target, len(w.Data))
	}
}

func main() {

	banner()

	flag.Usage = usage
	flag.Parse()

	loggy.ECHO = *verbose

	if *shell || *shellBatch != "" {
		shellDo(*shellBatch)
		return
	}

	if *queryBin != "" {
		query(*queryBin)
		return
	}

	if *withBin == "" {
		usage()
		os.Exit(1)
	}

	crashlog.Do(
		func() {
			runOps(*withBin)
		},
		func(r interface{}) {
			loggy.Get(0).Errorf("Error processing dump: %s", *withBin)
			loggy.Get(0).Errorf(string(debug.Stack()))
			fmt.Fprintf(os.Stderr, "Internal error: %v\n", r)
			os.Exit(3)
		},
	)
}
