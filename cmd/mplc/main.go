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

// Command mplc compiles mplc source into a bytecode module or a bootable
// Z80 ROM image.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pkg/errors"

	"mplc/ast"
	"mplc/bytecode"
	"mplc/compiler"
	"mplc/lexer"
	"mplc/parser"
	"mplc/token"
	"mplc/z80"
)

var (
	tokensOnly bool
	astOnly    bool
	disOnly    bool
	outImage   string
	outROM     string
	debug      bool
)

func atExit(err error) {
	if err == nil {
		return
	}
	if !debug {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "%+v\n", err)
	os.Exit(1)
}

func main() {
	var err error
	defer func() { atExit(err) }()

	flag.BoolVar(&tokensOnly, "tokens", false, "emit a token dump and stop")
	flag.BoolVar(&astOnly, "ast", false, "emit an AST dump and stop")
	flag.BoolVar(&disOnly, "dis", false, "emit a bytecode disassembly and stop")
	flag.StringVar(&outImage, "o", "", "write the serialised bytecode image to `path`")
	flag.StringVar(&outROM, "rom", "", "write a full ROM (interpreter + image) to `path`")
	flag.BoolVar(&debug, "debug", false, "include stack traces in error output")
	flag.Parse()

	if flag.NArg() != 1 {
		err = errors.New("usage: mplc [flags] <source-path>")
		return
	}
	srcPath := flag.Arg(0)

	var src []byte
	src, err = os.ReadFile(srcPath)
	if err != nil {
		err = errors.Wrapf(err, "read %s", srcPath)
		return
	}

	if tokensOnly {
		dumpTokens(string(src))
		return
	}

	p := parser.New(string(src))
	var prog []ast.Stmt
	prog, err = p.Parse()
	if err != nil {
		err = errors.Wrapf(err, "parse %s", srcPath)
		return
	}

	if astOnly {
		fmt.Print(ast.Dump(prog))
		return
	}

	var mod *bytecode.Module
	mod, err = compiler.Compile(prog)
	if err != nil {
		err = errors.Wrapf(err, "compile %s", srcPath)
		return
	}

	if disOnly {
		fmt.Print(bytecode.DisassembleAll(mod.Code))
		return
	}

	if outImage != "" {
		if err = mod.Save(outImage); err != nil {
			err = errors.Wrapf(err, "write %s", outImage)
			return
		}
	}

	if outROM != "" {
		var rom []byte
		rom, err = z80.BuildROM(mod)
		if err != nil {
			err = errors.Wrap(err, "build ROM")
			return
		}
		if err = os.WriteFile(outROM, rom, 0644); err != nil {
			err = errors.Wrapf(err, "write %s", outROM)
			return
		}
	}

	if outImage == "" && outROM == "" {
		fmt.Printf("%s: %d bytes code, %d strings, %d subs\n",
			srcPath, len(mod.Code), len(mod.Strings), len(mod.Subs))
	}
}

func dumpTokens(src string) {
	l := lexer.New(src)
	for {
		tok := l.NextToken()
		fmt.Printf("%s\t%s\t%q\n", tok.Pos, tok.Type, tok.Literal)
		if tok.Type == token.EOF {
			break
		}
	}
}
