// meshpack packs instanced meshes into shared vertex/index buffers and
// drives them through a headless simulation loop.
package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "run":
		err = cmdRun(args)
	case "pack":
		err = cmdPack(args)
	case "inspect", "info":
		err = cmdInspect(args)
	case "box":
		err = cmdBox(args)
	case "sdf":
		err = cmdSDF(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`meshpack - mesh instance packing tool

Usage:
  meshpack <command> [options]

Commands:
  run [flags]                         Build every declared type and run the tick loop
  pack [-n count] [-o prefix] <src>   Pack one source into a container and report sizes
  inspect <file.amdl>                 Show model structure and extraction result
  box <out.amdl>                      Write the procedural unit cube
  sdf [-cells n] <shape> <out.amdl>   Tessellate a distance field primitive

Sources:
  box, sdf:<shape>[:<cells>], <path>.amdl

Run flags:
  -config <file>  -debug  -per-container <n>  -ticks <n>  -tick-rate <n>
  -script <file>  -log-file <file>

Examples:
  meshpack run -ticks 600
  meshpack run -script scene.zy -per-container 50
  meshpack pack -n 75 sdf:sphere:16
  meshpack sdf -cells 32 pillar pillar.amdl
  meshpack inspect pillar.amdl`)
}
