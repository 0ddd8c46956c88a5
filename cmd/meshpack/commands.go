package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Faultbox/meshpack/internal/assets"
	"github.com/Faultbox/meshpack/internal/engine/extract"
	"github.com/Faultbox/meshpack/internal/engine/instancing"
	"github.com/Faultbox/meshpack/internal/engine/model"
	"github.com/Faultbox/meshpack/internal/engine/sdfmesh"
	"github.com/Faultbox/meshpack/internal/logger"
	"github.com/Faultbox/meshpack/pkg/formats"
)

func cmdPack(args []string) error {
	fs := flag.NewFlagSet("pack", flag.ExitOnError)
	count := fs.Int("n", instancing.DefaultMaxInstances, "Instances to pack (0 = as many as fit)")
	out := fs.String("o", "", "Write <prefix>.vb and <prefix>.ib")
	debug := fs.Bool("debug", false, "Enable debug logging")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("usage: meshpack pack [-n count] [-o prefix] <source>")
	}
	initCommandLogger(*debug)
	defer logger.Sync()

	manager := assets.NewManager()
	defer manager.Close()

	src, err := manager.Load(fs.Arg(0))
	if err != nil {
		return err
	}

	c := instancing.New(fs.Arg(0))
	n := *count
	if n <= 0 {
		n = c.Remaining(src)
	}
	for slot := 0; slot < n; slot++ {
		if err := c.AddInstance(src, slot); err != nil {
			return fmt.Errorf("instance %d: %w", slot, err)
		}
	}
	b, err := c.Build()
	if err != nil {
		return err
	}
	defer c.Dispose()

	s := b.Stats()
	fmt.Printf("Source:     %s (%d vertices, %d triangles)\n", fs.Arg(0), src.VertexCount(), src.TriangleCount())
	fmt.Printf("Instances:  %d\n", s.Instances)
	fmt.Printf("Vertices:   %d / %d\n", s.Vertices, instancing.MaxCombinedVertices)
	fmt.Printf("Primitives: %d\n", s.Primitives)
	fmt.Printf("Stride:     %d bytes\n", b.Stride)
	fmt.Printf("Buffers:    %.1f KB vertex, %.1f KB index\n", float64(s.VertexBytes)/1024, float64(s.IndexBytes)/1024)

	if *out != "" {
		if err := os.WriteFile(*out+".vb", b.VertexBytes(), 0644); err != nil {
			return err
		}
		if err := os.WriteFile(*out+".ib", b.IndexBytes(), 0644); err != nil {
			return err
		}
		fmt.Printf("Wrote %s.vb and %s.ib\n", *out, *out)
	}
	return nil
}

func cmdInspect(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: meshpack inspect <file.amdl>")
	}

	m, err := formats.ParseModelFile(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Model:    %s (AMDL %s)\n", args[0], m.Version)
	fmt.Printf("Bones:    %d\n", len(m.Bones))
	for i, b := range m.Bones {
		fmt.Printf("  [%d] %-20s parent=%d\n", i, b.Name, b.Parent)
	}
	fmt.Printf("Buffers:  %d vertex, %d index\n", len(m.VertexBuffers), len(m.IndexBuffers))
	for i := range m.VertexBuffers {
		vb := &m.VertexBuffers[i]
		fmt.Printf("  vb[%d] stride=%d vertices=%d\n", i, vb.Stride, vb.VertexCount())
	}
	fmt.Printf("Meshes:   %d (%d vertices, %d primitives)\n", len(m.Meshes), m.VertexCount(), m.PrimitiveCount())
	for _, mesh := range m.Meshes {
		fmt.Printf("  %s bone=%d parts=%d\n", mesh.Name, mesh.ParentBone, len(mesh.Parts))
		for pi, p := range mesh.Parts {
			fmt.Printf("    part %d: vb=%d ib=%d start=%d prims=%d base=%d\n",
				pi, p.VertexBuffer, p.IndexBuffer, p.StartIndex, p.PrimitiveCount, p.BaseVertex)
			for _, e := range p.Elements {
				fmt.Printf("      %s\n", e)
			}
		}
	}

	src, err := extract.Extract(m)
	if err != nil {
		fmt.Printf("Extract:  FAILED: %v\n", err)
		return nil
	}
	b := src.Bounds()
	fmt.Printf("Extract:  %d vertices, %d triangles\n", src.VertexCount(), src.TriangleCount())
	fmt.Printf("Bounds:   min=(%.3f %.3f %.3f) max=(%.3f %.3f %.3f)\n",
		b.Min.X, b.Min.Y, b.Min.Z, b.Max.X, b.Max.Y, b.Max.Z)
	fmt.Printf("Capacity: %d instances per container\n", instancing.New(nil).Remaining(src))
	return nil
}

func cmdBox(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: meshpack box <out.amdl>")
	}
	return writeModel(args[0], "box", model.NewBox())
}

func cmdSDF(args []string) error {
	fs := flag.NewFlagSet("sdf", flag.ExitOnError)
	cells := fs.Int("cells", sdfmesh.DefaultCells, "Marching cubes cells along the longest axis")
	fs.Parse(args)

	if fs.NArg() < 2 {
		return fmt.Errorf("usage: meshpack sdf [-cells n] <shape> <out.amdl> (shapes: %v)", sdfmesh.Shapes())
	}
	initCommandLogger(false)

	mesh, err := sdfmesh.Generate(fs.Arg(0), *cells)
	if err != nil {
		return err
	}
	return writeModel(fs.Arg(1), fs.Arg(0), mesh)
}

func writeModel(path, name string, mesh *model.SourceMesh) error {
	if err := formats.WriteModelFile(path, mesh.Model(name)); err != nil {
		return err
	}
	fmt.Printf("Wrote %s: %d vertices, %d triangles\n", path, mesh.VertexCount(), mesh.TriangleCount())
	return nil
}

func initCommandLogger(debug bool) {
	level := "warn"
	if debug {
		level = "debug"
	}
	if err := logger.Init(level, ""); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
	}
}
