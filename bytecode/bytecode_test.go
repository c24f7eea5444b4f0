// Copyright 2026 The mplc Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package bytecode_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mplc/bytecode"
)

func TestSize(t *testing.T) {
	assert.Equal(t, 1, bytecode.Size(bytecode.Nop))
	assert.Equal(t, 1, bytecode.Size(bytecode.Halt))
	assert.Equal(t, 2, bytecode.Size(bytecode.PushByte))
	assert.Equal(t, 2, bytecode.Size(bytecode.LoadLocal))
	assert.Equal(t, 3, bytecode.Size(bytecode.Push))
	assert.Equal(t, 3, bytecode.Size(bytecode.Jump))
	assert.Equal(t, 3, bytecode.Size(bytecode.Call))
}

func TestInternStringDeduplicates(t *testing.T) {
	m := &bytecode.Module{}
	i1 := m.InternString("hello")
	i2 := m.InternString("world")
	i3 := m.InternString("hello")
	assert.Equal(t, i1, i3)
	assert.NotEqual(t, i1, i2)
	assert.Len(t, m.Strings, 2)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	m := &bytecode.Module{
		Code:    []byte{byte(bytecode.Push), 1, 0, byte(bytecode.Halt)},
		Strings: []string{"hello", "world"},
		Entry:   0,
	}
	data, err := m.Encode()
	require.NoError(t, err)

	require.True(t, len(data) >= 10)
	assert.Equal(t, byte('M'), data[0])
	assert.Equal(t, byte('P'), data[1])
	assert.Equal(t, byte('L'), data[2])
	assert.Equal(t, byte(0x01), data[3])

	got, err := bytecode.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, m.Code, got.Code)
	assert.Equal(t, m.Strings, got.Strings)
	assert.Equal(t, m.Entry, got.Entry)
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	data := make([]byte, 10)
	copy(data, "XXXX")
	_, err := bytecode.Decode(data)
	assert.Error(t, err)
}

func TestDecodeRejectsShortHeader(t *testing.T) {
	_, err := bytecode.Decode([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestDisassembleAll(t *testing.T) {
	code := []byte{
		byte(bytecode.Push), 0x01, 0x00,
		byte(bytecode.PushByte), 0xFF,
		byte(bytecode.Add),
		byte(bytecode.Halt),
	}
	out := bytecode.DisassembleAll(code)
	assert.Contains(t, out, "Push 0x0001")
	assert.Contains(t, out, "PushByte -1")
	assert.Contains(t, out, "Add")
	assert.Contains(t, out, "Halt")
}

func TestDisassembleWalksExactlyToEnd(t *testing.T) {
	code := []byte{byte(bytecode.Nop), byte(bytecode.Nop), byte(bytecode.Halt)}
	pc := 0
	count := 0
	for pc < len(code) {
		next, _ := bytecode.Disassemble(code, pc)
		require.Greater(t, next, pc)
		pc = next
		count++
	}
	assert.Equal(t, 3, count)
}
