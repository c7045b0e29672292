package zobject

import (
	"encoding/binary"

	"github.com/tlgreaves/grue/zcore"
)

type Property struct {
	Id                   uint8
	Length               uint8
	Data                 []uint8
	PropertyHeaderLength uint8
	Address              uint32
	DataAddress          uint32
}

// Default reads the property-defaults word at the head of the object table.
func Default(propertyId uint8, core *zcore.Core) uint16 {
	return core.ReadWord(uint32(core.ObjectTableBase) + 2*uint32(propertyId-1))
}

// GetPropertyLength works backwards from the first data byte to the size
// byte(s), as required by the get_prop_len opcode.
func GetPropertyLength(core *zcore.Core, addr uint32) uint16 {
	if addr == 0 {
		return 0 // Special case required by some story files
	}

	prevByte := core.ReadByte(addr - 1)
	if core.Version <= 3 {
		return uint16(prevByte>>5) + 1
	} else if prevByte&0x80 != 0 {
		if prevByte&0x3f == 0 {
			return 64 // 12.4.2.1.1: length 0 means 64
		}
		return uint16(prevByte & 0x3f)
	}
	return uint16((prevByte>>6)&1) + 1
}

// FirstPropertyAddress skips the short name at the head of the property
// table.
func (o *Object) FirstPropertyAddress(core *zcore.Core) uint32 {
	nameLength := core.ReadByte(uint32(o.PropertyPointer))
	return uint32(o.PropertyPointer) + 1 + 2*uint32(nameLength)
}

// GetProperty walks the descending-id property list. When the property is
// missing the returned Property carries the global default for that id and a
// zero DataAddress.
func (o *Object) GetProperty(propertyId uint8, core *zcore.Core) Property {
	currentPtr := o.FirstPropertyAddress(core)

	for core.ReadByte(currentPtr) != 0 {
		property := GetPropertyByAddress(currentPtr, core)

		if property.Id == propertyId {
			return property
		}
		if property.Id < propertyId {
			break // Properties are stored in descending order
		}

		currentPtr = property.DataAddress + uint32(property.Length)
	}

	defaultAddress := uint32(core.ObjectTableBase) + 2*uint32(propertyId-1)
	return Property{
		Id:   propertyId,
		Data: core.ReadSlice(defaultAddress, defaultAddress+2),
	}
}

// SetProperty writes a 1 or 2 byte property value. Returns false when the
// object has no such property (the caller raises NoProp).
func (o *Object) SetProperty(propertyId uint8, value uint16, core *zcore.Core) bool {
	property := o.GetProperty(propertyId, core)
	if property.DataAddress == 0 {
		return false
	}

	switch property.Length {
	case 1:
		core.WriteByte(property.DataAddress, uint8(value))
	default:
		// Writing to a longer property is undefined; the convention is to
		// write the first two bytes.
		core.WriteWord(property.DataAddress, value)
	}
	return true
}

func GetPropertyByAddress(propertyAddr uint32, core *zcore.Core) Property {
	propertySizeByte := core.ReadByte(propertyAddr)
	length := (propertySizeByte >> 5) + 1
	id := propertySizeByte & 0x1f
	propertyHeaderLength := uint8(1)

	if core.Version >= 4 {
		id = propertySizeByte & 0x3f
		if propertySizeByte&0x80 != 0 {
			length = core.ReadByte(propertyAddr+1) & 0x3f
			if length == 0 {
				length = 64 // 12.4.2.1.1
			}
			propertyHeaderLength = 2
		} else {
			length = ((propertySizeByte >> 6) & 1) + 1
		}
	}

	dataAddress := propertyAddr + uint32(propertyHeaderLength)

	return Property{
		Id:                   id,
		Length:               length,
		Data:                 core.ReadSlice(dataAddress, dataAddress+uint32(length)),
		PropertyHeaderLength: propertyHeaderLength,
		Address:              propertyAddr,
		DataAddress:          dataAddress,
	}
}

// GetNextProperty returns the id of the property after propertyId in the
// list, with 0 meaning "first" on input and "no more" on output. ok is false
// when propertyId itself doesn't exist on the object.
func (o *Object) GetNextProperty(propertyId uint8, core *zcore.Core) (uint8, bool) {
	if propertyId == 0 {
		currentPtr := o.FirstPropertyAddress(core)
		if core.ReadByte(currentPtr) == 0 {
			return 0, true
		}
		return GetPropertyByAddress(currentPtr, core).Id, true
	}

	property := o.GetProperty(propertyId, core)
	if property.DataAddress == 0 {
		return 0, false
	}

	nextPropertyPtr := property.DataAddress + uint32(property.Length)
	if core.ReadByte(nextPropertyPtr) == 0 {
		return 0, true
	}
	return GetPropertyByAddress(nextPropertyPtr, core).Id, true
}

// PropertyValue reads a property as a word: one byte properties zero-extend,
// longer properties contribute their first two bytes, and missing properties
// fall back to the global default.
func (o *Object) PropertyValue(propertyId uint8, core *zcore.Core) uint16 {
	property := o.GetProperty(propertyId, core)
	if len(property.Data) == 1 {
		return uint16(property.Data[0])
	}
	return binary.BigEndian.Uint16(property.Data[:2])
}
