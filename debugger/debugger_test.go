package debugger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phroun/burst-sub000/debugger"
	"github.com/phroun/burst-sub000/parser"
	"github.com/phroun/burst-sub000/vm"
)

func newDebugger(t *testing.T, source string) *debugger.Debugger {
	t.Helper()
	program, table, err := parser.AssembleLines(source, "t.asm")
	require.NoError(t, err)

	machine := vm.NewVM()
	require.NoError(t, machine.LoadProgram(program, 0))

	d := debugger.New(machine)
	d.LoadSymbols(table.Map())
	return d
}

func TestRun_StopsAtEnabledBreakpoint(t *testing.T) {
	d := newDebugger(t, `
movi r0, #1
target: movi r0, #2
halt
`)
	addr, ok := d.Symbols.Lookup("target")
	require.True(t, ok, "expected 'target' to be defined")
	d.ToggleBreakpoint(addr)

	result := d.Run()
	assert.Equal(t, debugger.StopBreakpoint, result.Reason)
	require.NotNil(t, result.Breakpoint)
	assert.Equal(t, addr, result.Breakpoint.Address)
	assert.EqualValues(t, 1, d.VM.Regs.Get(0), "r0 must not yet reflect the breakpointed instruction")
}

func TestRun_RunsToHaltWithNoBreakpoints(t *testing.T) {
	d := newDebugger(t, "movi r0, #7\nhalt\n")
	result := d.Run()
	assert.Equal(t, debugger.StopHalted, result.Reason)
	assert.EqualValues(t, 7, d.VM.Regs.Get(0))
}

func TestToggleBreakpoint_IsIdempotentToggle(t *testing.T) {
	d := newDebugger(t, "nop\nhalt\n")
	bp, present := d.ToggleBreakpoint(0)
	require.True(t, present)
	require.NotNil(t, bp)

	_, present = d.ToggleBreakpoint(0)
	assert.False(t, present, "a second toggle at the same address must remove it")
}

func TestToggleWatchpoint_StopsRunWhenValueChanges(t *testing.T) {
	d := newDebugger(t, "movi r0, #1\nmovi r0, #2\nhalt\n")
	_, created, err := d.ToggleWatchpoint("r0")
	require.NoError(t, err)
	require.True(t, created)

	result := d.Run()
	assert.Equal(t, debugger.StopWatchpoint, result.Reason)
	assert.EqualValues(t, 0, result.WatchFrom)
	assert.EqualValues(t, 1, result.WatchTo)
}

func TestEvaluate_ResolvesRegistersAndArithmetic(t *testing.T) {
	d := newDebugger(t, "movi r1, #10\nhalt\n")
	require.NoError(t, d.Step())

	val, err := debugger.Evaluate("r1+5", d.VM, d.Symbols)
	require.NoError(t, err)
	assert.EqualValues(t, 15, val)
}

func TestEvaluate_UndefinedSymbolIsError(t *testing.T) {
	d := newDebugger(t, "halt\n")
	_, err := debugger.Evaluate("nosuchsymbol", d.VM, d.Symbols)
	assert.Error(t, err)
}

func TestEvaluate_MemoryDereference(t *testing.T) {
	d := newDebugger(t, "limm r0, #0x12345678\nstore [r1], r0\nhalt\n")
	require.NoError(t, d.Step())
	require.NoError(t, d.Step())

	val, err := debugger.Evaluate("[r1]", d.VM, d.Symbols)
	require.NoError(t, err)
	assert.EqualValues(t, 0x12345678, val)
}
