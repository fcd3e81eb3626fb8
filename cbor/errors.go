// Copyright 2026 Blink Labs Software
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

package cbor

import (
	"errors"
	"fmt"
	"strings"
)

// ErrDeserialize is matched by every DeserializeError
var ErrDeserialize = errors.New("deserialize error")

// DeserializeError reports a decoding failure along with the path of entities that were
// being decoded when it happened, outermost first
type DeserializeError struct {
	Path []string
	Err  error
}

func (e *DeserializeError) Error() string {
	if len(e.Path) == 0 {
		return fmt.Sprintf("deserialize error: %v", e.Err)
	}
	return fmt.Sprintf(
		"deserialize error: %s: %v",
		strings.Join(e.Path, " -> "),
		e.Err,
	)
}

func (e *DeserializeError) Unwrap() error { return e.Err }

func (*DeserializeError) Is(target error) bool {
	return target == ErrDeserialize
}

// WrapDeserialize adds a location to the front of the path of a DeserializeError, creating one
// if err is not already a DeserializeError. A nil err returns nil.
func WrapDeserialize(location string, err error) error {
	if err == nil {
		return nil
	}
	var dErr *DeserializeError
	if errors.As(err, &dErr) {
		path := make([]string, 0, len(dErr.Path)+1)
		path = append(path, location)
		path = append(path, dErr.Path...)
		return &DeserializeError{Path: path, Err: dErr.Err}
	}
	return &DeserializeError{Path: []string{location}, Err: err}
}

// WrapDeserializeIndex is WrapDeserialize for an element of a sequence
func WrapDeserializeIndex(idx int, err error) error {
	return WrapDeserialize(fmt.Sprintf("[%d]", idx), err)
}

// UnexpectedTypeError is returned when an item has a different major type than expected
type UnexpectedTypeError struct {
	Expected string
	Actual   uint8
}

func (e UnexpectedTypeError) Error() string {
	return fmt.Sprintf(
		"expected %s, found major type %d",
		e.Expected,
		e.Actual>>5,
	)
}

// LengthError is returned when an array has an unexpected number of items
type LengthError struct {
	Type     string
	Expected string
	Actual   int
}

func (e LengthError) Error() string {
	return fmt.Sprintf(
		"%s has %d items, expected %s",
		e.Type,
		e.Actual,
		e.Expected,
	)
}
