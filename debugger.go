package chip8

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
)

var yellow = color.New(color.FgYellow).SprintFunc()
var red = color.New(color.FgRed).SprintFunc()
var blue = color.New(color.FgBlue).SprintFunc()
var green = color.New(color.FgGreen).SprintFunc()
var cyan = color.New(color.FgCyan).SprintFunc()
var white = color.New(color.FgWhite, color.Bold).SprintFunc()

var PROMPT = red(">>> ")

func parseAddr(s string) (uint16, error) {
	addr, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("couldn't parse address from %s", s)
	}
	if int(addr) >= MAX_MEM_ADDRESS {
		return 0, fmt.Errorf("addr out of range")
	}
	return uint16(addr), nil
}

type Breakpoint struct {
	enabled  bool
	timesHit int
}

type Debugger struct {
	c    *Chip8
	rom  string
	ipt  int
	bps  map[uint16]Breakpoint
	tbps map[uint16]Breakpoint
	dis  Disassembler
	out  io.Writer

	stop    bool // SIGINT or breakpoint asked for a stop
	stopped bool // context already printed for this stop
}

func NewDebugger(c *Chip8, rom string, instructionsPerTick int) *Debugger {
	if instructionsPerTick <= 0 {
		instructionsPerTick = DefaultInstructionsPerTick
	}
	return &Debugger{
		c:    c,
		rom:  rom,
		ipt:  instructionsPerTick,
		bps:  make(map[uint16]Breakpoint),
		tbps: make(map[uint16]Breakpoint),
		dis:  Disassembler{},
		out:  os.Stdout,
	}
}

func (d *Debugger) Println(a ...interface{}) {
	fmt.Fprintln(d.out, a...)
}

func (d *Debugger) Printf(format string, a ...interface{}) {
	fmt.Fprintf(d.out, format, a...)
}

func (d *Debugger) Start() {
	reader := bufio.NewReader(os.Stdin)

	stopch := make(chan os.Signal, 1)
	signal.Notify(stopch, os.Interrupt)
	go func() {
		for range stopch {
			if d.stopped {
				d.Println("\nAlready stopped. Press Ctrl-D or q to quit")
				d.Printf("%s", PROMPT)
				continue
			}
			d.stop = true
		}
	}()

	var last string
	d.stop = true
	for {
		if d.stop {
			d.PrintState()
			d.stop = false
			d.stopped = true
		}
		d.Printf("%s", PROMPT)
		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				d.Println()
				return
			}
			d.Println(err)
		}
		line = strings.TrimSpace(line)

		// A blank line means repeat the last
		if line == "" {
			line = last
		}
		last = line
		if err := d.Handle(line); err != nil {
			d.Println(err)
		}
	}
}

// StepOne runs a single instruction, reporting any diagnostic.
func (d *Debugger) StepOne() {
	if err := d.c.Step(); err != nil {
		if IsFatal(err) {
			d.Println(red("machine halted: "), err)
		} else {
			d.Println(yellow("diagnostic: "), err)
		}
	}
	d.stop = true
	d.stopped = false
}

// cont resumes execution: instructions run in 60Hz frames with the timers
// ticked once per frame, until a breakpoint, SIGINT, or a halt.
func (d *Debugger) cont() {
	d.stopped = false
	ticker := time.NewTicker(time.Second / TimerHz)
	defer ticker.Stop()

	for range ticker.C {
		for i := 0; i < d.ipt; i++ {
			if d.stop {
				return
			}
			if err := d.c.Step(); err != nil {
				if IsFatal(err) {
					d.Println(red("machine halted: "), err)
					d.stop = true
					return
				}
				d.Println(yellow("diagnostic: "), err)
			}
			if d.hitBreakpoint() {
				d.stop = true
				return
			}
		}
		d.c.Tick()
	}
}

func (d *Debugger) hitBreakpoint() bool {
	hit := false
	if bp, ok := d.bps[d.c.pc]; ok && bp.enabled {
		d.bps[d.c.pc] = Breakpoint{true, bp.timesHit + 1}
		d.Printf("Hit breakpoint at "+white("0x%04X")+"\n", d.c.pc)
		hit = true
	}
	if bp, ok := d.tbps[d.c.pc]; ok && bp.enabled {
		delete(d.tbps, d.c.pc)
		hit = true
	}
	return hit
}

func (d *Debugger) PrintState() {
	d.Println(green("-- ") + yellow("Registers") + green(" --"))
	d.Printf("PC: "+white("0x%04X")+" I: "+white("0x%04X")+" State: "+white("%s")+"\n",
		d.c.pc, d.c.i, d.c.state)
	d.Printf("Delay: "+white("0x%02X")+" Sound: "+white("0x%02X")+" Stack depth: "+white("%d")+"\n",
		d.c.delay, d.c.sound, d.c.sp)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			d.Printf("V%X: "+white("%02X")+", ", i*4+j, d.c.v[i*4+j])
		}
		d.Println()
	}
	d.Println(green("-- ") + yellow("Assembly") + green(" --"))
	if int(d.c.pc) >= len(d.c.mem)-1 {
		d.Println(red("PC past end of memory"))
		return
	}
	// Print a few instructions back
	for i := uint16(4); i > 0; i -= 2 {
		addr := d.c.pc - i
		if addr < d.c.pc {
			d.Printf("0x%04X %04X %s\n",
				addr,
				binary.BigEndian.Uint16(d.c.mem[addr:]),
				d.dis.dis(d.c.mem[addr:]))
		}
	}
	// Print current instruction
	ins := d.dis.dis(d.c.mem[d.c.pc:])
	d.Printf(white("0x%04X")+green(" %04X ")+blue("%s\n"),
		d.c.pc,
		binary.BigEndian.Uint16(d.c.mem[d.c.pc:]),
		ins)
	// If we're on a call, peek at its dest
	i := uint16(2)
	if ins.isCall() && int(ins.callTarget()+i) < len(d.c.mem)-1 {
		addr := ins.callTarget()
		d.Printf("⤷  0x%04X"+green(" %04X ")+cyan("%s\n"),
			addr+i,
			binary.BigEndian.Uint16(d.c.mem[addr+i:]),
			d.dis.dis(d.c.mem[addr+i:]))
		i += 2
		for ; i < 8 && int(addr+i) < len(d.c.mem)-1; i += 2 {
			d.Printf("   0x%04X"+green(" %04X ")+cyan("%s\n"),
				addr+i,
				binary.BigEndian.Uint16(d.c.mem[addr+i:]),
				d.dis.dis(d.c.mem[addr+i:]))
		}
	}
	// Print a few instructions forward
	for ; i < 16 && int(d.c.pc+i) < len(d.c.mem)-1; i += 2 {
		addr := d.c.pc + i
		d.Printf("0x%04X"+green(" %04X ")+cyan("%s\n"),
			addr,
			binary.BigEndian.Uint16(d.c.mem[addr:]),
			d.dis.dis(d.c.mem[addr:]))
	}
}

var commands = map[string]func(*Debugger, []string){
	"reset": reset,
	"ctx":   showContext,
	"ib":    breakpoints,
	"b":     addBreak,
	"tb":    addTBreak,
	"db":    disableBreak,
	"dtb":   disableTBreak,
	"eb":    enableBreak,
	"etb":   enableTBreak,
	"rb":    removeBreak,
	"rtb":   removeTBreak,
	"c":     cont,
	"disp":  display,
	"s":     step,
	"si":    step,
	"n":     next,
	"ni":    next,
	"x":     examine,
	"e":     edit,
	"q":     quit,
}

func (d *Debugger) Handle(line string) error {
	ops := strings.Split(line, " ")
	cmd := ops[0]
	ops = ops[1:]
	f, ok := commands[cmd]
	if !ok {
		return fmt.Errorf("illegal command: '%s'", cmd)
	}
	f(d, ops)
	return nil
}
