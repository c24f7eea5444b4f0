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

package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mplc/token"
)

func allTokens(t *testing.T, src string) []token.Token {
	t.Helper()
	l := New(src)
	var toks []token.Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	return toks
}

func TestLexerScalarAssignment(t *testing.T) {
	toks := allTokens(t, `my $x = 1 + 2;`)
	var types []token.Type
	for _, tok := range toks {
		types = append(types, tok.Type)
	}
	assert.Equal(t, []token.Type{
		token.MY, token.SCALAR, token.ASSIGN, token.INT, token.PLUS, token.INT, token.SEMI, token.EOF,
	}, types)
	assert.Equal(t, "x", toks[1].Literal)
}

func TestLexerDivisionVsRegexContext(t *testing.T) {
	toks := allTokens(t, `$a / $b`)
	require.GreaterOrEqual(t, len(toks), 2)
	assert.Equal(t, token.SLASH, toks[1].Type)

	toks = allTokens(t, `$a =~ /foo/`)
	var sawRegex bool
	for _, tok := range toks {
		if tok.Type == token.REGEX {
			sawRegex = true
			assert.Equal(t, "foo", tok.Literal)
		}
	}
	assert.True(t, sawRegex)
}

func TestLexerRegexEscapedSlash(t *testing.T) {
	toks := allTokens(t, `$a =~ /a\/b/`)
	for _, tok := range toks {
		if tok.Type == token.REGEX {
			assert.Equal(t, "a/b", tok.Literal)
		}
	}
}

func TestLexerStringEscapes(t *testing.T) {
	toks := allTokens(t, `"a\nb"`)
	require.Equal(t, token.STRING, toks[0].Type)
	assert.Equal(t, "a\nb", toks[0].Literal)
}

func TestLexerNumericUnderscores(t *testing.T) {
	toks := allTokens(t, `1_000_000`)
	require.Equal(t, token.INT, toks[0].Type)
	assert.Equal(t, "1000000", toks[0].Literal)
}

func TestLexerLineColTracking(t *testing.T) {
	toks := allTokens(t, "my $x = 1;\nmy $y = 2;")
	var secondMy token.Token
	count := 0
	for _, tok := range toks {
		if tok.Type == token.MY {
			count++
			if count == 2 {
				secondMy = tok
			}
		}
	}
	require.Equal(t, 2, count)
	assert.Equal(t, 2, secondMy.Pos.Line)
}

func TestLexerComments(t *testing.T) {
	toks := allTokens(t, "my $x = 1; # trailing comment\nprint $x;")
	var types []token.Type
	for _, tok := range toks {
		types = append(types, tok.Type)
	}
	assert.NotContains(t, types, token.ILLEGAL)
}
