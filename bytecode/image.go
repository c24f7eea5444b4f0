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

package bytecode

import (
	"encoding/binary"
	"os"

	"github.com/pkg/errors"
)

// Magic identifies an mplc bytecode image.
var Magic = [4]byte{'M', 'P', 'L', 0x01}

const headerSize = 10

// Encode serialises m into the on-disk image format: a 10-byte header
// (magic, string-table offset, code length, entry point, all little-endian
// u16 after the magic), the code bytes, then the string table (a one-byte
// count followed by that many length-prefixed raw byte strings).
func (m *Module) Encode() ([]byte, error) {
	if len(m.Code) > 0xFFFF {
		return nil, errors.Errorf("bytecode: code too large (%d bytes)", len(m.Code))
	}
	if len(m.Strings) > 0xFF {
		return nil, errors.Errorf("bytecode: too many strings (%d)", len(m.Strings))
	}

	var strTab []byte
	strTab = append(strTab, byte(len(m.Strings)))
	for _, s := range m.Strings {
		if len(s) > 0xFF {
			return nil, errors.Errorf("bytecode: string %q too long", s)
		}
		strTab = append(strTab, byte(len(s)))
		strTab = append(strTab, s...)
	}

	strOff := headerSize + len(m.Code)
	if strOff > 0xFFFF {
		return nil, errors.Errorf("bytecode: image too large")
	}

	buf := make([]byte, headerSize)
	copy(buf[0:4], Magic[:])
	binary.LittleEndian.PutUint16(buf[4:6], uint16(strOff))
	binary.LittleEndian.PutUint16(buf[6:8], uint16(len(m.Code)))
	binary.LittleEndian.PutUint16(buf[8:10], uint16(m.Entry))

	buf = append(buf, m.Code...)
	buf = append(buf, strTab...)
	return buf, nil
}

// Decode parses a module image produced by Encode. The subroutine table is
// not recoverable from the image (it is compiler-internal bookkeeping, not
// part of the on-disk format), so Decode returns a Module with a nil Subs.
func Decode(data []byte) (*Module, error) {
	if len(data) < headerSize {
		return nil, errors.New("bytecode: image too short for header")
	}
	if data[0] != Magic[0] || data[1] != Magic[1] || data[2] != Magic[2] || data[3] != Magic[3] {
		return nil, errors.New("bytecode: bad magic")
	}
	strOff := int(binary.LittleEndian.Uint16(data[4:6]))
	codeLen := int(binary.LittleEndian.Uint16(data[6:8]))
	entry := int(binary.LittleEndian.Uint16(data[8:10]))

	if headerSize+codeLen != strOff {
		return nil, errors.Errorf("bytecode: inconsistent string-table offset %d (expected %d)", strOff, headerSize+codeLen)
	}
	if strOff > len(data) {
		return nil, errors.New("bytecode: truncated image (code)")
	}
	code := make([]byte, codeLen)
	copy(code, data[headerSize:strOff])

	rest := data[strOff:]
	if len(rest) < 1 {
		return nil, errors.New("bytecode: truncated image (string count)")
	}
	count := int(rest[0])
	rest = rest[1:]
	strs := make([]string, 0, count)
	for i := 0; i < count; i++ {
		if len(rest) < 1 {
			return nil, errors.Errorf("bytecode: truncated image (string %d length)", i)
		}
		n := int(rest[0])
		rest = rest[1:]
		if len(rest) < n {
			return nil, errors.Errorf("bytecode: truncated image (string %d body)", i)
		}
		strs = append(strs, string(rest[:n]))
		rest = rest[n:]
	}

	return &Module{Code: code, Strings: strs, Entry: entry}, nil
}

// Save encodes m and writes it to fileName.
func (m *Module) Save(fileName string) error {
	data, err := m.Encode()
	if err != nil {
		return errors.Wrap(err, "encode module")
	}
	if err := os.WriteFile(fileName, data, 0644); err != nil {
		return errors.Wrapf(err, "write %s", fileName)
	}
	return nil
}

// Load reads and decodes a module image from fileName.
func Load(fileName string) (*Module, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", fileName)
	}
	m, err := Decode(data)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", fileName)
	}
	return m, nil
}
