// meshtool is a CLI utility for inspecting STL model files.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/printforge/meshview/pkg/formats"
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
	case "check":
		cmdCheck(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`meshtool - STL model utility

Usage:
  meshtool <command> [options]

Commands:
  info <file.stl>       Show model statistics
  check <file.stl>...   Validate model files

Examples:
  meshtool info benchy.stl
  meshtool check models/*.stl`)
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: meshtool info <file.stl>")
		os.Exit(1)
	}

	stl, err := formats.ParseSTLFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	name := stl.Name
	if name == "" {
		name = "(binary)"
	}

	bbMin, bbMax := stl.Bounds()
	dims := stl.Dimensions()

	fmt.Printf("File:         %s\n", args[0])
	fmt.Printf("Solid name:   %s\n", name)
	fmt.Printf("Triangles:    %d\n", stl.TriangleCount())
	fmt.Printf("Dimensions:   %.2f x %.2f x %.2f mm\n", dims[0], dims[1], dims[2])
	fmt.Printf("Bounds min:   (%.2f, %.2f, %.2f)\n", bbMin[0], bbMin[1], bbMin[2])
	fmt.Printf("Bounds max:   (%.2f, %.2f, %.2f)\n", bbMax[0], bbMax[1], bbMax[2])
	fmt.Printf("Surface area: %.2f mm²\n", stl.SurfaceArea())
}

func cmdCheck(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	quiet := fs.Bool("q", false, "Only print failures")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: meshtool check <file.stl>...")
		os.Exit(1)
	}

	failed := 0
	for _, path := range fs.Args() {
		stl, err := formats.ParseSTLFile(path)
		if err != nil {
			failed++
			fmt.Printf("FAIL  %s: %v\n", filepath.Clean(path), err)
			continue
		}
		if !*quiet {
			fmt.Printf("OK    %s (%d triangles)\n", filepath.Clean(path), stl.TriangleCount())
		}
	}

	if failed > 0 {
		fmt.Printf("\n%d of %d files failed validation\n", failed, fs.NArg())
		os.Exit(1)
	}
}
