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
	"reflect"

	_cbor "github.com/fxamacker/cbor/v2"
	"github.com/jinzhu/copier"
)

// Major types, as they appear in the top 3 bits of the initial byte
const (
	MajorTypeUint       uint8 = 0x00
	MajorTypeNegInt     uint8 = 0x20
	MajorTypeByteString uint8 = 0x40
	MajorTypeTextString uint8 = 0x60
	MajorTypeArray      uint8 = 0x80
	MajorTypeMap        uint8 = 0xa0
	MajorTypeTag        uint8 = 0xc0
	MajorTypeSimple     uint8 = 0xe0

	// Only the top 3 bits are used to specify the type
	MajorTypeMask uint8 = 0xe0

	// Max value able to be stored in the initial byte
	MaxUintSimple uint8 = 0x17

	// Additional info value marking an indefinite-length item
	indefiniteLength uint8 = 0x1f
	// Break stop code for indefinite-length items
	breakCode uint8 = 0xff

	SimpleFalse uint8 = 0xf4
	SimpleTrue  uint8 = 0xf5
	SimpleNull  uint8 = 0xf6
)

// RawMessage is an alias for deferred decoding
type RawMessage = _cbor.RawMessage

// Tag is an alias for a tagged value with decoded content
type Tag = _cbor.Tag

// RawTag is an alias for a tagged value with raw content
type RawTag = _cbor.RawTag

// StructAsArray is embedded to encode a struct as a CBOR array
type StructAsArray struct {
	// Tells the CBOR decoder to convert to/from a struct and a CBOR array
	_ struct{} `cbor:",toarray"`
}

type DecodeStoreCborInterface interface {
	Cbor() []byte
}

// DecodeStoreCbor is embedded by types that keep a copy of the CBOR they were decoded from
type DecodeStoreCbor struct {
	cborData []byte
}

// Cbor returns the original CBOR for the object
func (d *DecodeStoreCbor) Cbor() []byte {
	return d.cborData
}

// SetCbor stores a copy of the provided CBOR as the original CBOR for the object
func (d *DecodeStoreCbor) SetCbor(cborData []byte) {
	if cborData == nil {
		d.cborData = nil
		return
	}
	d.cborData = make([]byte, len(cborData))
	copy(d.cborData, cborData)
}

// UnmarshalCborGeneric decodes the specified CBOR into the destination object without using the
// destination object's UnmarshalCBOR() function
func (d *DecodeStoreCbor) UnmarshalCborGeneric(
	cborData []byte,
	dest DecodeStoreCborInterface,
) error {
	valueDest := reflect.ValueOf(dest)
	if valueDest.Kind() != reflect.Pointer ||
		valueDest.Elem().Kind() != reflect.Struct {
		return errors.New("destination must be a pointer to a struct")
	}
	// Build a struct type with the same exported fields so that the custom
	// UnmarshalCBOR() on the destination is bypassed
	typeDestElem := valueDest.Elem().Type()
	destTypeFields := []reflect.StructField{}
	for i := range typeDestElem.NumField() {
		tmpField := typeDestElem.Field(i)
		if tmpField.IsExported() && tmpField.Name != "DecodeStoreCbor" {
			destTypeFields = append(destTypeFields, tmpField)
		}
	}
	tmpDest := reflect.New(reflect.StructOf(destTypeFields))
	if err := DecodeExact(cborData, tmpDest.Interface()); err != nil {
		return err
	}
	if err := copier.Copy(dest, tmpDest.Interface()); err != nil {
		return err
	}
	// This must happen after the copy above, or it gets wiped out when the
	// DecodeStoreCbor struct is embedded at a deeper level
	d.SetCbor(cborData)
	return nil
}
