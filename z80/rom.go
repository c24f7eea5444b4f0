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

package z80

import (
	"github.com/pkg/errors"

	"mplc/bytecode"
)

// BuildROM synthesises the interpreter, assembles it, and appends the
// encoded module image at ImageBase: the interpreter is zero-padded up to
// that offset, matching the fixed memory map the handlers assume.
func BuildROM(mod *bytecode.Module) ([]byte, error) {
	return buildROM(mod, emitInterpreter)
}

// buildROM takes the interpreter-emitting step as a parameter so tests can
// substitute an oversized stand-in and exercise the size guard below without
// needing a real interpreter that happens to overflow ImageBase.
func buildROM(mod *bytecode.Module, emit func(*emitter)) ([]byte, error) {
	e := newEmitter()
	emit(e)
	if err := e.Resolve(); err != nil {
		return nil, errors.Wrap(err, "assemble interpreter")
	}

	interp := e.Bytes()
	if len(interp) > ImageBase {
		return nil, errors.Errorf("z80: interpreter is %d bytes, exceeds the %d-byte budget before the module image", len(interp), ImageBase)
	}

	img, err := mod.Encode()
	if err != nil {
		return nil, errors.Wrap(err, "encode module image")
	}

	rom := make([]byte, ImageBase+len(img))
	copy(rom, interp)
	copy(rom[ImageBase:], img)
	return rom, nil
}
