// Copyright 2016 Attic Labs, Inc. All rights reserved.
// Licensed under the Apache License, version 2.0:
// http://www.apache.org/licenses/LICENSE-2.0

package types

// NomsKind identifies the tag of a Value/Type. See spec §3 "Type".
type NomsKind uint8

const (
	BoolKind NomsKind = iota
	NumberKind
	StringKind
	BlobKind
	ValueKind
	ListKind
	MapKind
	RefKind
	SetKind
	StructKind
	TypeKind
	CycleKind
	UnionKind
)

func (k NomsKind) String() string {
	switch k {
	case BoolKind:
		return "Bool"
	case NumberKind:
		return "Number"
	case StringKind:
		return "String"
	case BlobKind:
		return "Blob"
	case ValueKind:
		return "Value"
	case ListKind:
		return "List"
	case MapKind:
		return "Map"
	case RefKind:
		return "Ref"
	case SetKind:
		return "Set"
	case StructKind:
		return "Struct"
	case TypeKind:
		return "Type"
	case CycleKind:
		return "Cycle"
	case UnionKind:
		return "Union"
	default:
		return "Unknown"
	}
}
