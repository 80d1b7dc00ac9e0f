// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package hash

import "encoding/base32"

// alphabet is lowercase base32-hex: digits then a-v. 20 bytes (160 bits)
// encode exactly into 32 of these digits with no padding needed.
const alphabet = "0123456789abcdefghijklmnopqrstuv"

var encoding = base32.NewEncoding(alphabet).WithPadding(base32.NoPadding)

func encode(data []byte) string {
	return encoding.EncodeToString(data)
}

func decode(s string) []byte {
	data, ok := maybeDecode(s)
	if !ok {
		panic("invalid base32 hash string: " + s)
	}
	return data
}

func maybeDecode(s string) ([]byte, bool) {
	if len(s) != StringLen {
		return nil, false
	}
	data, err := encoding.DecodeString(s)
	if err != nil {
		return nil, false
	}
	return data, true
}
