package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/c8vm/chip8"
)

func main() {
	ipt := flag.Int("ipt", chip8.DefaultInstructionsPerTick,
		"instructions executed per 60Hz timer tick while continuing")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: chip8-dbg [options] <rom>")
		flag.PrintDefaults()
		os.Exit(1)
	}
	rom := flag.Arg(0)

	k := &chip8.NoKeypad{}
	c := chip8.NewChip8(k)

	if err := c.LoadBinary(rom); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", rom, err)
		os.Exit(1)
	}

	debugger := chip8.NewDebugger(c, rom, *ipt)
	debugger.Start()
}
