// Command burst assembles, runs and debugs BURST programs. Subcommands
// mirror the teacher emulator's flag-driven modes, rebuilt as a cobra
// command tree per the rest of the example pack's CLI convention.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/phroun/burst-sub000/api"
	"github.com/phroun/burst-sub000/config"
	"github.com/phroun/burst-sub000/debugger/consoleui"
	"github.com/phroun/burst-sub000/parser"
	"github.com/phroun/burst-sub000/service"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	root := &cobra.Command{
		Use:   "burst",
		Short: "BURST assembler, interpreter and debugger",
	}
	root.AddCommand(
		newAssembleCmd(),
		newRunCmd(),
		newDebugCmd(),
		newServeCmd(),
		newVersionCmd(),
	)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("burst %s (%s)\n", version, commit)
			return nil
		},
	}
}

func newAssembleCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "assemble [source.asm]",
		Short: "Assemble a source file into a bytecode image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := parser.AssembleFile(args[0], output)
			if !res.OK {
				return fmt.Errorf("assemble %s: %w", args[0], res.Error)
			}
			fmt.Printf("assembled %d bytes, %d symbols\n", len(res.Program), res.Symbols.Len())
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output image path (default: no file written)")
	return cmd
}

func newRunCmd() *cobra.Command {
	var entry string
	var maxCycles uint64
	var memSize uint32

	cmd := &cobra.Command{
		Use:   "run [source.asm|image.bin]",
		Short: "Run a program to completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := parseAddr(entry)
			if err != nil {
				return err
			}

			svc := service.New(memSize)
			if err := loadEither(svc, args[0], addr); err != nil {
				return err
			}

			var cycles uint64
			for !svc.IsHalted() {
				if maxCycles > 0 && cycles >= maxCycles {
					return fmt.Errorf("exceeded max-cycles (%d)", maxCycles)
				}
				if err := svc.Step(); err != nil {
					return err
				}
				cycles++
			}

			regs := svc.Registers()
			fmt.Printf("halted at pc=0x%08X after %d cycles\n", regs.PC, regs.Cycles)
			return nil
		},
	}
	cmd.Flags().StringVar(&entry, "entry", "0x0", "entry point address (hex or decimal)")
	cmd.Flags().Uint64Var(&maxCycles, "max-cycles", 10_000_000, "maximum cycles before aborting (0 = unlimited)")
	cmd.Flags().Uint32Var(&memSize, "mem-size", 0, "memory size in bytes (0 = default)")
	return cmd
}

func newDebugCmd() *cobra.Command {
	var entry string
	var memSize uint32

	cmd := &cobra.Command{
		Use:   "debug [source.asm|image.bin]",
		Short: "Load a program and start the interactive console debugger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := parseAddr(entry)
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			svc := service.New(memSize)
			if err := loadEither(svc, args[0], addr); err != nil {
				return err
			}

			ui := consoleui.New(svc, cfg)
			return ui.Run()
		},
	}
	cmd.Flags().StringVar(&entry, "entry", "0x0", "entry point address (hex or decimal)")
	cmd.Flags().Uint32Var(&memSize, "mem-size", 0, "memory size in bytes (0 = default)")
	return cmd
}

func newServeCmd() *cobra.Command {
	var port int
	var memSize uint32

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the remote debug HTTP/WebSocket API",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := service.New(memSize)
			srv := api.NewServer(svc, port)

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() { errCh <- srv.ListenAndServe() }()

			fmt.Printf("burst api listening on 127.0.0.1:%d\n", port)
			select {
			case err := <-errCh:
				return err
			case <-sigCh:
				ctx, cancel := context.WithCancel(context.Background())
				defer cancel()
				return srv.Shutdown(ctx)
			}
		},
	}
	cmd.Flags().IntVar(&port, "port", 8080, "HTTP listen port")
	cmd.Flags().Uint32Var(&memSize, "mem-size", 0, "memory size in bytes (0 = default)")
	return cmd
}

// loadEither loads path as assembly source if its name ends in .asm or
// .s, and as a raw bytecode image otherwise.
func loadEither(svc *service.Service, path string, addr uint32) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if strings.HasSuffix(path, ".asm") || strings.HasSuffix(path, ".s") {
		return svc.LoadSource(string(data), path, addr)
	}
	return svc.LoadImage(data, addr)
}

func parseAddr(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
		base = 16
	}
	v, err := strconv.ParseUint(s, base, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q: %w", s, err)
	}
	return uint32(v), nil
}
