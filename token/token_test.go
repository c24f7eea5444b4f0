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

package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupIdentifierKeyword(t *testing.T) {
	assert.Equal(t, MY, LookupIdentifier("my"))
	assert.Equal(t, WHILE, LookupIdentifier("while"))
	assert.Equal(t, AND, LookupIdentifier("and"))
}

func TestLookupIdentifierBareword(t *testing.T) {
	assert.Equal(t, IDENT, LookupIdentifier("foo_bar"))
}

func TestTypeStringKnownAndUnknown(t *testing.T) {
	assert.Equal(t, "if", IF.String())
	assert.Equal(t, "UNKNOWN", Type(-1).String())
}

func TestPositionString(t *testing.T) {
	p := Position{Line: 3, Col: 7}
	assert.Equal(t, "3:7", p.String())
}
