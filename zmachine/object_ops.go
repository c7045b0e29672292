package zmachine

import (
	"github.com/tlgreaves/grue/zcore"
	"github.com/tlgreaves/grue/zerr"
	"github.com/tlgreaves/grue/zobject"
)

// MaxObject bounds object numbers on V4+ stories, where the table has no
// explicit count. V1-3 object numbers are bytes.
const MaxObject = 2000

// validObject range-checks an object operand, raising IllObj for junk ids.
func (z *Interpreter) validObject(obj uint16) bool {
	limit := uint16(MaxObject)
	if z.Core.Version <= 3 {
		limit = 255
	}
	if obj > limit {
		z.Errors.Runtime(zerr.ErrIllObj, z.instructionPC)
		return false
	}
	return true
}

func (z *Interpreter) validAttribute(attr uint16) bool {
	if attr > zobject.MaxAttribute(z.Core.Version) {
		z.Errors.Runtime(zerr.ErrIllAttr, z.instructionPC)
		return false
	}
	return true
}

func (z *Interpreter) object(obj uint16) zobject.Object {
	return zobject.GetObject(obj, &z.Core, z.Alphabets)
}

func (z *Interpreter) zGetParent() {
	if z.zargs[0] == 0 {
		z.Errors.Runtime(zerr.ErrGetParent0, z.instructionPC)
		z.store(0)
		return
	}
	if !z.validObject(z.zargs[0]) {
		z.store(0)
		return
	}
	z.store(z.object(z.zargs[0]).Parent)
}

func (z *Interpreter) zGetSibling() {
	if z.zargs[0] == 0 {
		z.Errors.Runtime(zerr.ErrGetSibling0, z.instructionPC)
		z.store(0)
		z.branch(false)
		return
	}
	if !z.validObject(z.zargs[0]) {
		z.store(0)
		z.branch(false)
		return
	}
	sibling := z.object(z.zargs[0]).Sibling
	z.store(sibling)
	z.branch(sibling != 0)
}

func (z *Interpreter) zGetChild() {
	if z.zargs[0] == 0 {
		z.Errors.Runtime(zerr.ErrGetChild0, z.instructionPC)
		z.store(0)
		z.branch(false)
		return
	}
	if !z.validObject(z.zargs[0]) {
		z.store(0)
		z.branch(false)
		return
	}
	child := z.object(z.zargs[0]).Child
	z.store(child)
	z.branch(child != 0)
}

// zJin branches when the first object's parent is the second object.
func (z *Interpreter) zJin() {
	if z.zargs[0] == 0 {
		z.Errors.Runtime(zerr.ErrJin0, z.instructionPC)
		z.branch(z.zargs[1] == 0)
		return
	}
	if !z.validObject(z.zargs[0]) {
		z.branch(false)
		return
	}
	z.branch(z.object(z.zargs[0]).Parent == z.zargs[1])
}

func (z *Interpreter) zTestAttr() {
	if z.zargs[0] == 0 {
		z.Errors.Runtime(zerr.ErrTestAttr0, z.instructionPC)
		z.branch(false)
		return
	}
	if !z.validObject(z.zargs[0]) || !z.validAttribute(z.zargs[1]) {
		z.branch(false)
		return
	}
	obj := z.object(z.zargs[0])
	z.branch(obj.TestAttribute(z.zargs[1]))
}

func (z *Interpreter) zSetAttr() {
	// Sherlock stomps on attribute 48; ignoring it is the long-standing
	// interpreter workaround.
	if z.Core.StoryID == zcore.Sherlock && z.zargs[1] == 48 {
		return
	}
	if !z.validAttribute(z.zargs[1]) {
		return
	}
	if z.zargs[0] == 0 {
		z.Errors.Runtime(zerr.ErrSetAttr0, z.instructionPC)
		return
	}
	if !z.validObject(z.zargs[0]) {
		return
	}

	obj := z.object(z.zargs[0])
	obj.SetAttribute(z.zargs[1], &z.Core)
	z.recordAttrSet(z.zargs[0], z.zargs[1])
}

func (z *Interpreter) zClearAttr() {
	if z.Core.StoryID == zcore.Sherlock && z.zargs[1] == 48 {
		return
	}
	if !z.validAttribute(z.zargs[1]) {
		return
	}
	if z.zargs[0] == 0 {
		z.Errors.Runtime(zerr.ErrClearAttr0, z.instructionPC)
		return
	}
	if !z.validObject(z.zargs[0]) {
		return
	}

	obj := z.object(z.zargs[0])
	obj.ClearAttribute(z.zargs[1], &z.Core)
	z.recordAttrClear(z.zargs[0], z.zargs[1])
}

// unlinkObject detaches an object from its parent's child chain and clears
// its own parent and sibling links.
func (z *Interpreter) unlinkObject(objId uint16) {
	object := z.object(objId)
	if object.Parent != 0 {
		oldParent := z.object(object.Parent)

		if oldParent.Child == object.Id {
			oldParent.SetChild(object.Sibling, &z.Core)
		} else {
			currObjId := oldParent.Child
			for currObjId != 0 {
				currObj := z.object(currObjId)
				if currObj.Sibling == object.Id {
					currObj.SetSibling(object.Sibling, &z.Core)
					break
				}
				currObjId = currObj.Sibling
			}
		}

		object.SetParent(0, &z.Core)
	}

	object.SetSibling(0, &z.Core)
}

// MoveObject makes obj the first child of newParent, unlinking it from its
// old position first. Exposed for the host's teleport operation.
func (z *Interpreter) MoveObject(objId uint16, newParent uint16) {
	object := z.object(objId)

	z.unlinkObject(objId)

	// The destination's child link is read after the unlink: if obj was
	// already the first child, reading it earlier would sibling-link the
	// object to itself.
	destination := z.object(newParent)
	object.SetSibling(destination.Child, &z.Core)
	object.SetParent(destination.Id, &z.Core)
	destination.SetChild(object.Id, &z.Core)

	z.recordMove(objId, newParent)
}

// MoveTree relocates obj together with its trailing siblings (and all their
// descendants), appending the chain as the last children of newParent.
func (z *Interpreter) MoveTree(objId uint16, newParent uint16) {
	object := z.object(objId)

	// Detach the chain: cut the link from whatever precedes obj, keeping
	// obj's own sibling pointer intact.
	if object.Parent != 0 {
		oldParent := z.object(object.Parent)
		if oldParent.Child == object.Id {
			oldParent.SetChild(0, &z.Core)
		} else {
			currObjId := oldParent.Child
			for currObjId != 0 {
				currObj := z.object(currObjId)
				if currObj.Sibling == object.Id {
					currObj.SetSibling(0, &z.Core)
					break
				}
				currObjId = currObj.Sibling
			}
		}
	}

	// Reparent every object in the chain.
	for sibling := object.Id; sibling != 0; {
		s := z.object(sibling)
		s.SetParent(newParent, &z.Core)
		sibling = s.Sibling
	}

	// Append the chain as the destination's last child.
	destination := z.object(newParent)
	if destination.Child == 0 {
		destination.SetChild(object.Id, &z.Core)
	} else {
		last := z.object(destination.Child)
		for last.Sibling != 0 {
			last = z.object(last.Sibling)
		}
		last.SetSibling(object.Id, &z.Core)
	}

	z.recordMove(objId, newParent)
}

func (z *Interpreter) zInsertObj() {
	if z.zargs[0] == 0 {
		z.Errors.Runtime(zerr.ErrMoveObject0, z.instructionPC)
		return
	}
	if z.zargs[1] == 0 {
		z.Errors.Runtime(zerr.ErrMoveObjectTo0, z.instructionPC)
		return
	}
	if !z.validObject(z.zargs[0]) || !z.validObject(z.zargs[1]) {
		return
	}

	z.MoveObject(z.zargs[0], z.zargs[1])
}

func (z *Interpreter) zRemoveObj() {
	if z.zargs[0] == 0 {
		z.Errors.Runtime(zerr.ErrRemoveObject0, z.instructionPC)
		return
	}
	if !z.validObject(z.zargs[0]) {
		return
	}
	z.unlinkObject(z.zargs[0])
	z.recordMove(z.zargs[0], 0)
}

func (z *Interpreter) zGetProp() {
	if z.zargs[0] == 0 {
		z.Errors.Runtime(zerr.ErrGetProp0, z.instructionPC)
		z.store(0)
		return
	}
	if !z.validObject(z.zargs[0]) {
		z.store(0)
		return
	}
	obj := z.object(z.zargs[0])
	z.store(obj.PropertyValue(uint8(z.zargs[1]), &z.Core))
}

func (z *Interpreter) zPutProp() {
	if z.zargs[0] == 0 {
		z.Errors.Runtime(zerr.ErrPutProp0, z.instructionPC)
		return
	}
	if !z.validObject(z.zargs[0]) {
		return
	}
	obj := z.object(z.zargs[0])
	if !obj.SetProperty(uint8(z.zargs[1]), z.zargs[2], &z.Core) {
		z.Errors.Runtime(zerr.ErrNoProp, z.instructionPC)
	}
}

func (z *Interpreter) zGetPropAddr() {
	if z.zargs[0] == 0 {
		z.Errors.Runtime(zerr.ErrGetPropAddr0, z.instructionPC)
		z.store(0)
		return
	}

	// Beyond Zork reads property addresses of wild object numbers; frotz
	// era interpreters clamp those to 0 rather than fault.
	if z.Core.StoryID == zcore.BeyondZork && z.zargs[0] > MaxObject {
		z.store(0)
		return
	}

	if !z.validObject(z.zargs[0]) {
		z.store(0)
		return
	}

	obj := z.object(z.zargs[0])
	prop := obj.GetProperty(uint8(z.zargs[1]), &z.Core)
	if prop.DataAddress == 0 {
		z.store(0)
		return
	}
	z.store(uint16(prop.DataAddress))
}

func (z *Interpreter) zGetPropLen() {
	z.store(zobject.GetPropertyLength(&z.Core, uint32(z.zargs[0])))
}

func (z *Interpreter) zGetNextProp() {
	if z.zargs[0] == 0 {
		z.Errors.Runtime(zerr.ErrGetNextProp0, z.instructionPC)
		z.store(0)
		return
	}
	if !z.validObject(z.zargs[0]) {
		z.store(0)
		return
	}
	obj := z.object(z.zargs[0])
	next, ok := obj.GetNextProperty(uint8(z.zargs[1]), &z.Core)
	if !ok {
		z.Errors.Runtime(zerr.ErrNoProp, z.instructionPC)
	}
	z.store(uint16(next))
}

func (z *Interpreter) zPrintObj() {
	if z.zargs[0] == 0 || !z.validObject(z.zargs[0]) {
		z.Errors.Runtime(zerr.ErrIllObj, z.instructionPC)
		return
	}
	z.printString(z.object(z.zargs[0]).Name)
}
