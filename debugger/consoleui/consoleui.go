// Package consoleui is the interactive text debugger, the tview/tcell
// front end spec.md §6 describes as sitting on top of the service
// facade - register, disassembly, breakpoint and output panels plus a
// command line, the same panel layout the teacher's TUI uses.
package consoleui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/phroun/burst-sub000/config"
	"github.com/phroun/burst-sub000/debugger"
	"github.com/phroun/burst-sub000/service"
)

// UI is the console debugger's view state and command dispatcher.
type UI struct {
	svc *service.Service
	cfg *config.Config

	app  *tview.Application
	flex *tview.Flex

	registers *tview.TextView
	disasm    *tview.TextView
	breaks    *tview.TextView
	output    *tview.TextView
	input     *tview.InputField
}

// New builds a console debugger over svc using display defaults from
// cfg.
func New(svc *service.Service, cfg *config.Config) *UI {
	u := &UI{svc: svc, cfg: cfg, app: tview.NewApplication()}
	u.buildViews()
	u.buildLayout()
	u.bindKeys()
	return u
}

func (u *UI) buildViews() {
	u.registers = tview.NewTextView().SetDynamicColors(true)
	u.registers.SetBorder(true).SetTitle(" Registers ")

	u.disasm = tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	u.disasm.SetBorder(true).SetTitle(" Disassembly ")

	u.breaks = tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	u.breaks.SetBorder(true).SetTitle(" Breakpoints / Watchpoints ")

	u.output = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(true)
	u.output.SetBorder(true).SetTitle(" Output ")

	u.input = tview.NewInputField().SetLabel("> ").SetFieldWidth(0)
	u.input.SetBorder(true).SetTitle(" Command ")
	u.input.SetDoneFunc(u.onCommandEntered)
}

func (u *UI) buildLayout() {
	left := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(u.disasm, 0, 2, false).
		AddItem(u.breaks, 0, 1, false)

	top := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(left, 0, 2, false).
		AddItem(u.registers, 0, 1, false)

	u.flex = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(top, 0, 3, false).
		AddItem(u.output, 8, 0, false).
		AddItem(u.input, 3, 0, true)
}

func (u *UI) bindKeys() {
	u.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyF5:
			u.execute("continue")
			return nil
		case tcell.KeyF10:
			u.execute("step")
			return nil
		case tcell.KeyCtrlC:
			u.app.Stop()
			return nil
		}
		return event
	})
}

// Run starts the TUI event loop; it blocks until the user quits.
func (u *UI) Run() error {
	u.refresh()
	return u.app.SetRoot(u.flex, true).SetFocus(u.input).Run()
}

func (u *UI) onCommandEntered(key tcell.Key) {
	if key != tcell.KeyEnter {
		return
	}
	cmd := strings.TrimSpace(u.input.GetText())
	u.input.SetText("")
	if cmd == "" {
		return
	}
	u.execute(cmd)
}

func (u *UI) execute(line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}

	var err error
	switch fields[0] {
	case "step", "s":
		err = u.svc.Step()
	case "continue", "c":
		result := u.svc.Run()
		u.writeLine(fmt.Sprintf("stopped: %s", describeReason(result)))
	case "break", "b":
		if len(fields) < 2 {
			err = fmt.Errorf("usage: break <addr>")
			break
		}
		addr, perr := parseUint(fields[1])
		if perr != nil {
			err = perr
			break
		}
		bp := u.svc.ToggleBreakpoint(addr)
		u.writeLine(fmt.Sprintf("breakpoint at 0x%08X: enabled=%v", addr, bp.Enabled))
	case "watch", "w":
		if len(fields) < 2 {
			err = fmt.Errorf("usage: watch <expr>")
			break
		}
		wp, werr := u.svc.ToggleWatchpoint(strings.Join(fields[1:], " "))
		if werr != nil {
			err = werr
			break
		}
		u.writeLine(fmt.Sprintf("watchpoint %q = 0x%08X", wp.Expression, wp.LastValue))
	case "quit", "q":
		u.app.Stop()
		return
	default:
		err = fmt.Errorf("unknown command %q", fields[0])
	}

	if err != nil {
		u.writeLine(fmt.Sprintf("[red]error:[white] %v", err))
	}
	u.refresh()
}

func describeReason(r debugger.RunResult) string {
	if r.Err != nil {
		return fmt.Sprintf("%s (%v)", r.Reason, r.Err)
	}
	return r.Reason.String()
}

func (u *UI) writeLine(s string) {
	fmt.Fprintln(u.output, s)
	u.output.ScrollToEnd()
}

func (u *UI) refresh() {
	u.updateRegisters()
	u.updateDisasm()
	u.updateBreakpoints()
	u.app.Draw()
}

func (u *UI) updateRegisters() {
	regs := u.svc.Registers()
	var b strings.Builder
	for i := 0; i < 16; i += 4 {
		fmt.Fprintf(&b, "r%-2d=%08X  r%-2d=%08X  r%-2d=%08X  r%-2d=%08X\n",
			i, regs.R[i], i+1, regs.R[i+1], i+2, regs.R[i+2], i+3, regs.R[i+3])
	}
	fmt.Fprintf(&b, "pc=%08X  sp=%08X  cycles=%d\n", regs.PC, regs.SP, regs.Cycles)
	fmt.Fprintf(&b, "flags: z=%v n=%v c=%v v=%v", regs.Flags.Z, regs.Flags.N, regs.Flags.C, regs.Flags.V)
	u.registers.SetText(b.String())
}

func (u *UI) updateDisasm() {
	regs := u.svc.Registers()
	context := u.cfg.Display.DisasmContext
	if context <= 0 {
		context = 8
	}
	lines, err := u.svc.Disassemble(regs.PC, context)
	if err != nil {
		u.disasm.SetText(fmt.Sprintf("[red]%v[white]", err))
		return
	}
	var b strings.Builder
	for _, l := range lines {
		marker := "  "
		if l.Address == regs.PC {
			marker = "->"
		}
		if l.Symbol != "" {
			fmt.Fprintf(&b, "%s%s:\n", marker, l.Symbol)
		}
		fmt.Fprintf(&b, "%s 0x%08X: %s\n", marker, l.Address, l.Text)
	}
	u.disasm.SetText(b.String())
}

func (u *UI) updateBreakpoints() {
	var b strings.Builder
	for _, bp := range u.svc.Breakpoints() {
		fmt.Fprintf(&b, "bp 0x%08X enabled=%v hits=%d\n", bp.Address, bp.Enabled, bp.HitCount)
	}
	for _, wp := range u.svc.Watchpoints() {
		fmt.Fprintf(&b, "wp %q = 0x%08X\n", wp.Expression, wp.LastValue)
	}
	u.breaks.SetText(b.String())
}

func parseUint(s string) (uint32, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q", s)
	}
	return uint32(v), nil
}
