package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunScriptStructAndArray(t *testing.T) {
	src := `
type $S = struct (i8 mut) (i32 const)
type $A = array i16 mut
data $d = 01 00 02 00 03 00

%s = struct.new $S 0x1FF 42
%a = array.new_data $A $d 0 3
%n = array.len %a
`
	var lines []string
	err := runScript(src, func(l string) { lines = append(lines, l) })
	require.NoError(t, err)
	require.Contains(t, lines, "%n = i32 3")
}

func TestRunScriptArrayNewDataOutOfBounds(t *testing.T) {
	src := `
type $A = array i16 mut
data $d = 01 00 02 00 03 00
%a = array.new_data $A $d 1 3
`
	err := runScript(src, func(string) {})
	require.Error(t, err)
}

func TestRunScriptRefTestAndCast(t *testing.T) {
	src := `
type $A = struct (i32 const)
type $B = struct (i32 const) (f64 const)
%b = struct.new $B 1 2
%t = ref.test %b $A
%c = ref.cast %b $A
`
	var lines []string
	err := runScript(src, func(l string) { lines = append(lines, l) })
	require.NoError(t, err)
	require.Contains(t, lines, "%t = i32 true")
}

func TestRunScriptRefI31AndAsNonNull(t *testing.T) {
	src := `
%i = ref.i31 0xFFFFFFFF
%n = ref.as_non_null %i
`
	var lines []string
	err := runScript(src, func(l string) { lines = append(lines, l) })
	require.NoError(t, err)
	require.Contains(t, lines, "%i = i31ref 2147483647")
}
