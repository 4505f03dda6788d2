// Command vondel runs a microprogram image produced by vasm on the Vondel
// microarchitecture simulator.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"vondel/internal/image"
	"vondel/uarch"
)

func main() {
	var ramPath string
	var romPath string
	var cycles bool
	var maxCycles uint64
	var trace bool
	var debug bool

	rootCmd := &cobra.Command{
		Use:   "vondel",
		Short: "Run a Vondel firmware image against a RAM image",
		RunE: func(cmd *cobra.Command, args []string) error {
			if romPath == "" {
				return fmt.Errorf("vondel: --rom is required")
			}
			return run(ramPath, romPath, cycles, maxCycles, trace, debug)
		},
	}
	rootCmd.Flags().StringVar(&ramPath, "ram", "", "RAM image path (raw little-endian uint32 words)")
	rootCmd.Flags().StringVar(&romPath, "rom", "", "ROM/firmware image path (raw little-endian uint64 words)")
	rootCmd.Flags().BoolVar(&cycles, "cycles", false, "Print the architectural-cycle count on completion")
	rootCmd.Flags().Uint64Var(&maxCycles, "max-cycles", 1_000_000, "Abort after this many clock edges without halting (0 = unlimited)")
	rootCmd.Flags().BoolVar(&trace, "trace", false, "Print machine state after every clock edge")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "Enter single-step debug mode")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ramPath, romPath string, printCycles bool, maxCycles uint64, trace, debug bool) error {
	cs, err := image.ReadROMFile(romPath)
	if err != nil {
		return fmt.Errorf("vondel: reading %s: %w", romPath, err)
	}

	vram := uarch.NewRAM()
	if ramPath != "" {
		words, err := image.ReadRAMFile(ramPath)
		if err != nil {
			return fmt.Errorf("vondel: reading %s: %w", ramPath, err)
		}
		vram.Load(words)
	}

	cpu := uarch.NewCPU(cs, vram)

	var traceFn func(uarch.Snapshot)
	switch {
	case debug:
		traceFn = debugTrace()
	case trace:
		traceFn = printTrace
	}

	var lastCycle uint64
	if printCycles {
		inner := traceFn
		traceFn = func(s uarch.Snapshot) {
			lastCycle = s.Cycle
			if inner != nil {
				inner(s)
			}
		}
	}

	if err := cpu.Run(context.Background(), maxCycles, traceFn); err != nil {
		return fmt.Errorf("vondel: %w", err)
	}

	printRegisters(&cpu.Regs.GP)
	if printCycles {
		fmt.Printf("cycles = %d\n", lastCycle/2)
	}
	return nil
}

func printTrace(s uarch.Snapshot) {
	fmt.Printf("cycle %-6d mpc %-4d word %#018x\n", s.Cycle, s.MPC, s.Word)
}

// debugTrace builds a single-step REPL trace callback in the style of a
// classic break/next/run debugger: n/next advances one clock edge, r/run
// free-runs until a breakpoint (set with b <mpc>) or halt.
func debugTrace() func(uarch.Snapshot) {
	fmt.Printf("Commands:\n\tn or next: advance one clock edge\n\tr or run: run freely\n\tb or break <mpc>: toggle a breakpoint\n\n")

	reader := bufio.NewReader(os.Stdin)
	waitForInput := true
	breakAtMPC := make(map[uint16]struct{})
	lastBreakMPC := int32(-1)

	return func(s uarch.Snapshot) {
		for {
			if !waitForInput {
				if _, ok := breakAtMPC[s.MPC]; ok && int32(s.MPC) != lastBreakMPC {
					fmt.Println("breakpoint")
					printTrace(s)
					printRegisters(&s.Regs.GP)
					waitForInput = true
					lastBreakMPC = int32(s.MPC)
					continue
				}
				return
			}

			fmt.Print("->")
			line, _ := reader.ReadString('\n')
			line = strings.ToLower(strings.TrimSpace(line))

			switch {
			case line == "n" || line == "next":
				lastBreakMPC = -1
				printTrace(s)
				printRegisters(&s.Regs.GP)
				return
			case line == "r" || line == "run":
				waitForInput = false
			case strings.HasPrefix(line, "b"):
				arg := strings.TrimSpace(strings.TrimPrefix(line, "b"))
				arg = strings.TrimPrefix(strings.TrimSpace(arg), "reak")
				addr, err := strconv.ParseUint(strings.TrimSpace(arg), 10, 16)
				if err != nil {
					fmt.Println("unknown address:", err)
					continue
				}
				mpc := uint16(addr)
				if _, ok := breakAtMPC[mpc]; ok {
					delete(breakAtMPC, mpc)
				} else {
					breakAtMPC[mpc] = struct{}{}
				}
			default:
				fmt.Println("unrecognized command")
			}
		}
	}
}

func printRegisters(gp *[16]uint32) {
	names := []string{
		"ra", "t0", "t1", "t2", "t3",
		"s0", "s1", "s2", "s3", "s4", "s5", "s6",
		"a0", "a1", "a2", "a3",
	}
	for i, name := range names {
		fmt.Printf("  %-3s = %d\n", name, gp[i])
	}
}
