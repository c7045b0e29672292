// Package zobject reads and mutates the Z-machine object tree: parent,
// sibling and child links, attribute bits and the property tables.
//
// Two record layouts exist. V1-3 uses 31 property defaults, 9 byte records,
// 32 attributes and byte-sized links; V4+ uses 63 defaults, 14 byte records,
// 48 attributes and word links. Object 0 means "nothing" and is never a
// valid argument here; callers are expected to have raised the matching soft
// error and bailed before calling in.
package zobject

import (
	"encoding/binary"

	"github.com/tlgreaves/grue/zcore"
	"github.com/tlgreaves/grue/zstring"
)

type Object struct {
	BaseAddress     uint32
	Id              uint16
	Name            string
	Attributes      uint64 // Bits 63..32 in all versions, 31..16 only on V4+
	Parent          uint16 // uint8 on v1-3
	Sibling         uint16 // uint8 on v1-3
	Child           uint16 // uint8 on v1-3
	PropertyPointer uint16
}

// MaxAttribute is the highest legal attribute index for a story version.
func MaxAttribute(version uint8) uint16 {
	if version <= 3 {
		return 31
	}
	return 47
}

// Address returns the byte address of an object's record.
func Address(objId uint16, core *zcore.Core) uint32 {
	if core.Version >= 4 {
		return uint32(core.ObjectTableBase) + 63*2 + uint32(objId-1)*14
	}
	return uint32(core.ObjectTableBase) + 31*2 + uint32(objId-1)*9
}

func GetObject(objId uint16, core *zcore.Core, alphabets *zstring.Alphabets) Object {
	if objId == 0 {
		panic("can't get 0th object, it doesn't exist")
	}

	objectBase := Address(objId, core)

	if core.Version >= 4 {
		propertyPtr := core.ReadWord(objectBase + 12)
		return Object{
			Id:              objId,
			Name:            shortName(propertyPtr, core, alphabets),
			Attributes:      uint64(binary.BigEndian.Uint32(core.ReadSlice(objectBase, objectBase+4)))<<32 | uint64(core.ReadWord(objectBase+4))<<16,
			Parent:          core.ReadWord(objectBase + 6),
			Sibling:         core.ReadWord(objectBase + 8),
			Child:           core.ReadWord(objectBase + 10),
			PropertyPointer: propertyPtr,
			BaseAddress:     objectBase,
		}
	}

	propertyPtr := core.ReadWord(objectBase + 7)
	return Object{
		Id:              objId,
		Name:            shortName(propertyPtr, core, alphabets),
		Attributes:      uint64(binary.BigEndian.Uint32(core.ReadSlice(objectBase, objectBase+4))) << 32,
		Parent:          uint16(core.ReadByte(objectBase + 4)),
		Sibling:         uint16(core.ReadByte(objectBase + 5)),
		Child:           uint16(core.ReadByte(objectBase + 6)),
		PropertyPointer: propertyPtr,
		BaseAddress:     objectBase,
	}
}

// shortName decodes the length-prefixed Z-string at the head of the
// property table.
func shortName(propertyPtr uint16, core *zcore.Core, alphabets *zstring.Alphabets) string {
	if core.ReadByte(uint32(propertyPtr)) == 0 {
		return ""
	}
	name, _ := zstring.DecodeString(core, uint32(propertyPtr)+1, alphabets)
	return name
}

func (o *Object) TestAttribute(attribute uint16) bool {
	mask := uint64(1) << (63 - attribute)
	return o.Attributes&mask == mask
}

func (o *Object) SetAttribute(attribute uint16, core *zcore.Core) {
	o.Attributes |= uint64(1) << (63 - attribute)

	addr := o.BaseAddress + uint32(attribute)/8
	core.WriteByte(addr, core.ReadByte(addr)|0x80>>(attribute&7))
}

func (o *Object) ClearAttribute(attribute uint16, core *zcore.Core) {
	o.Attributes &^= uint64(1) << (63 - attribute)

	addr := o.BaseAddress + uint32(attribute)/8
	core.WriteByte(addr, core.ReadByte(addr)&^(0x80>>(attribute&7)))
}

func (o *Object) SetParent(parent uint16, core *zcore.Core) {
	if core.Version >= 4 {
		core.WriteWord(o.BaseAddress+6, parent)
	} else {
		core.WriteByte(o.BaseAddress+4, uint8(parent))
	}
	o.Parent = parent
}

func (o *Object) SetSibling(sibling uint16, core *zcore.Core) {
	if core.Version >= 4 {
		core.WriteWord(o.BaseAddress+8, sibling)
	} else {
		core.WriteByte(o.BaseAddress+5, uint8(sibling))
	}
	o.Sibling = sibling
}

func (o *Object) SetChild(child uint16, core *zcore.Core) {
	if core.Version >= 4 {
		core.WriteWord(o.BaseAddress+10, child)
	} else {
		core.WriteByte(o.BaseAddress+6, uint8(child))
	}
	o.Child = child
}
