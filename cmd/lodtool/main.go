// lodtool is a CLI utility for inspecting terrain LOD index tables.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/Faultbox/terrain-lod/internal/lod"
	"github.com/Faultbox/terrain-lod/internal/logger"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		cmdInfo(args)
	case "dump":
		cmdDump(args)
	case "verify", "check":
		cmdVerify(args)
	case "export", "x":
		cmdExport(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`lodtool - terrain LOD index table utility

Usage:
  lodtool <command> [options]

Commands:
  info   [-v N]                      Show buffer sizes per level
  dump   [-v N] <level> [diff]       Print one buffer as YAML
  verify [-v N] [-i file]            Check tiling and seams of every buffer
  export [-v N] -o <file>            Write the whole table as YAML (.zst compresses)

Options:
  -v N     vertices per patch side, 2^k+1 (default 17)
  -debug   verbose logging on stderr

Examples:
  lodtool info -v 33
  lodtool dump 2 left,up
  lodtool export -o table.yaml.zst
  lodtool verify -i table.yaml.zst`)
}

// commonFlags registers the options every command shares.
func commonFlags(name string) (*flag.FlagSet, *int, *bool) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	v := fs.Int("v", lod.DefaultPatchVertices, "Vertices per patch side (2^k+1)")
	debug := fs.Bool("debug", false, "Enable debug logging")
	return fs, v, debug
}

func initLogger(debug bool) {
	level := "warn"
	if debug {
		level = "debug"
	}
	if err := logger.Init(level, ""); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
}

func buildTable(v int) *lod.Table {
	table, err := lod.BuildIndexTable(v, lod.WithLogger(logger.Named("lod")))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return table
}

func cmdInfo(args []string) {
	fs, v, debug := commonFlags("info")
	fs.Parse(args)
	initLogger(*debug)
	defer logger.Sync()

	table := buildTable(*v)
	st := table.Stats()

	fmt.Printf("Patch:     %dx%d vertices\n", *v, *v)
	fmt.Printf("Buffers:   %d\n", st.Buffers)
	fmt.Printf("Indices:   %d (%.1f KB as 16-bit, %.1f KB as 32-bit)\n",
		st.Indices, float64(st.Indices*2)/1024, float64(st.Indices*4)/1024)
	fmt.Printf("Triangles: %d\n", st.Triangles)
	fmt.Println()
	fmt.Printf("  %-6s %-6s %-10s %-10s %s\n", "level", "cells", "triangles", "indices", "stitched (min-max indices)")

	for level := range lod.LevelCount {
		base, _ := table.Get(level, lod.DiffNone)
		cells := (*v - 1) >> level
		stitched := "-"
		if level > 0 {
			lo, hi := -1, 0
			for _, d := range lod.AllDiffSets() {
				buf, _ := table.Get(level, d)
				n := buf.Len()
				if lo < 0 || n < lo {
					lo = n
				}
				hi = max(hi, n)
			}
			stitched = fmt.Sprintf("%d-%d", lo, hi)
		}
		fmt.Printf("  %-6d %-6s %-10d %-10d %s\n", level,
			fmt.Sprintf("%dx%d", cells, cells), base.Triangles(), base.Len(), stitched)
	}
}

func cmdDump(args []string) {
	fs, v, debug := commonFlags("dump")
	fs.Parse(args)
	initLogger(*debug)
	defer logger.Sync()

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: lodtool dump [-v N] <level> [diff]")
		os.Exit(1)
	}

	level, err := strconv.Atoi(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid level: %s\n", fs.Arg(0))
		os.Exit(1)
	}
	d := lod.DiffNone
	if fs.NArg() > 1 {
		if d, err = lod.ParseDiffSet(fs.Arg(1)); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	table := buildTable(*v)
	buf, err := lod.GetIndexBuffer(table, level, d)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := writeYAML(os.Stdout, newBufferDoc(buf)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func cmdVerify(args []string) {
	fs, v, debug := commonFlags("verify")
	input := fs.String("i", "", "Exported table to compare against (.yaml or .yaml.zst)")
	fs.Parse(args)
	initLogger(*debug)
	defer logger.Sync()

	table := buildTable(*v)
	if err := lod.CheckTable(table); err != nil {
		fmt.Fprintf(os.Stderr, "FAIL: %v\n", err)
		os.Exit(1)
	}
	st := table.Stats()
	fmt.Printf("OK: %d buffers, %d triangles, tiling and seams valid for %dx%d patches\n",
		st.Buffers, st.Triangles, *v, *v)

	if *input == "" {
		return
	}
	doc, err := readExportFile(*input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := compareExport(doc, table); err != nil {
		fmt.Fprintf(os.Stderr, "FAIL: %s: %v\n", *input, err)
		os.Exit(1)
	}
	fmt.Printf("OK: %s matches the built table\n", *input)
}

func cmdExport(args []string) {
	fs, v, debug := commonFlags("export")
	output := fs.String("o", "", "Output file (.yaml, or .zst for zstd)")
	fs.Parse(args)
	initLogger(*debug)
	defer logger.Sync()

	if *output == "" {
		fmt.Fprintln(os.Stderr, "Usage: lodtool export [-v N] -o <file>")
		os.Exit(1)
	}

	table := buildTable(*v)
	n, err := writeExportFile(*output, newTableDoc(table))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Exported: %s (%d buffers, %d bytes)\n", *output, table.Stats().Buffers, n)
}
