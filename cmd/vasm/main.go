// Command vasm assembles a Vondel assembly source file into a ROM (firmware)
// image and a RAM data image that vondel's --rom/--ram flags load.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"vondel/asm"
	"vondel/internal/image"
)

func main() {
	var input string
	var output string
	var ramOutput string
	var printLayout bool

	rootCmd := &cobra.Command{
		Use:   "vasm",
		Short: "Assemble Vondel source into ROM and RAM images",
		RunE: func(cmd *cobra.Command, args []string) error {
			if input == "" {
				return fmt.Errorf("vasm: -i/--input is required")
			}
			return assemble(input, output, ramOutput, printLayout)
		},
	}
	rootCmd.Flags().StringVarP(&input, "input", "i", "", "Assembly source file")
	rootCmd.Flags().StringVarP(&output, "output", "o", "", "ROM output path (default: input path with .rom extension)")
	rootCmd.Flags().StringVar(&ramOutput, "ram-output", "", "RAM data output path (default: input path with .ram extension)")
	rootCmd.Flags().BoolVar(&printLayout, "print-layout", false, "Print resolved label addresses after assembling")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func assemble(srcPath, romPath, ramPath string, printLayout bool) error {
	src, err := os.ReadFile(srcPath)
	if err != nil {
		return fmt.Errorf("vasm: %w", err)
	}

	p := asm.NewParser(asm.NewLexer(string(src)))
	prog, errs := p.Parse()
	if len(errs) != 0 {
		for _, e := range errs {
			fmt.Fprintln(os.Stderr, e)
		}
		return fmt.Errorf("vasm: %d error(s) parsing %s", len(errs), srcPath)
	}

	if printLayout {
		layout, err := asm.ComputeLayout(prog)
		if err != nil {
			return fmt.Errorf("vasm: %w", err)
		}
		for label, addr := range layout.CodeAddr {
			fmt.Printf("  %-16s cs:%d\n", label, addr)
		}
		for label, addr := range layout.DataAddr {
			fmt.Printf("  %-16s ram:%d\n", label, addr)
		}
	}

	cs, ram, err := asm.Lower(prog)
	if err != nil {
		return fmt.Errorf("vasm: %w", err)
	}

	if romPath == "" {
		romPath = withExt(srcPath, ".rom")
	}
	if ramPath == "" {
		ramPath = withExt(srcPath, ".ram")
	}

	if err := image.WriteROMFile(romPath, cs); err != nil {
		return fmt.Errorf("vasm: writing %s: %w", romPath, err)
	}
	if err := image.WriteRAMFile(ramPath, ram); err != nil {
		return fmt.Errorf("vasm: writing %s: %w", ramPath, err)
	}

	fmt.Printf("wrote %s, %s\n", romPath, ramPath)
	return nil
}

func withExt(path, ext string) string {
	for i := len(path) - 1; i >= 0 && path[i] != '/'; i-- {
		if path[i] == '.' {
			return path[:i] + ext
		}
	}
	return path + ext
}
