package zmachine

import "github.com/tlgreaves/grue/zerr"

// Arithmetic treats operands as signed 16-bit values; results wrap modulo
// 2^16.

func (z *Interpreter) zAdd() {
	z.store(uint16(int16(z.zargs[0]) + int16(z.zargs[1])))
}

func (z *Interpreter) zSub() {
	z.store(uint16(int16(z.zargs[0]) - int16(z.zargs[1])))
}

func (z *Interpreter) zMul() {
	z.store(uint16(int16(z.zargs[0]) * int16(z.zargs[1])))
}

func (z *Interpreter) zDiv() {
	if z.zargs[1] == 0 {
		z.Errors.Runtime(zerr.ErrDivZero, z.instructionPC)
		z.store(0)
		return
	}
	z.store(uint16(int16(z.zargs[0]) / int16(z.zargs[1])))
}

func (z *Interpreter) zMod() {
	if z.zargs[1] == 0 {
		z.Errors.Runtime(zerr.ErrDivZero, z.instructionPC)
		z.store(0)
		return
	}
	z.store(uint16(int16(z.zargs[0]) % int16(z.zargs[1])))
}

func (z *Interpreter) zOr() {
	z.store(z.zargs[0] | z.zargs[1])
}

func (z *Interpreter) zAnd() {
	z.store(z.zargs[0] & z.zargs[1])
}

func (z *Interpreter) zNot() {
	z.store(^z.zargs[0])
}

// zLogShift shifts left for positive counts and right without sign
// extension for negative ones.
func (z *Interpreter) zLogShift() {
	if int16(z.zargs[1]) > 0 {
		z.store(z.zargs[0] << int16(z.zargs[1]))
	} else {
		z.store(z.zargs[0] >> -int16(z.zargs[1]))
	}
}

// zArtShift is the sign-preserving variant.
func (z *Interpreter) zArtShift() {
	if int16(z.zargs[1]) > 0 {
		z.store(uint16(int16(z.zargs[0]) << int16(z.zargs[1])))
	} else {
		z.store(uint16(int16(z.zargs[0]) >> -int16(z.zargs[1])))
	}
}

// zJe branches when the first operand equals any of the others.
func (z *Interpreter) zJe() {
	flag := false
	for i := 1; i < z.zargc; i++ {
		if z.zargs[0] == z.zargs[i] {
			flag = true
			break
		}
	}
	z.branch(flag)
}

func (z *Interpreter) zJl() {
	z.branch(int16(z.zargs[0]) < int16(z.zargs[1]))
}

func (z *Interpreter) zJg() {
	z.branch(int16(z.zargs[0]) > int16(z.zargs[1]))
}

func (z *Interpreter) zJz() {
	z.branch(z.zargs[0] == 0)
}

// zTest branches when every bit of the flag operand is set in the bitmap.
func (z *Interpreter) zTest() {
	z.branch(z.zargs[0]&z.zargs[1] == z.zargs[1])
}

func (z *Interpreter) zJump() {
	z.pc = uint32(int32(z.pc) + int32(int16(z.zargs[0])) - 2)
	if z.pc >= z.Core.StorySize {
		z.Errors.Runtime(zerr.ErrIllJump, z.instructionPC)
	}
}

func (z *Interpreter) zStore() {
	z.writeVariable(uint8(z.zargs[0]), z.zargs[1], true)
}

func (z *Interpreter) zLoad() {
	z.store(z.readVariable(uint8(z.zargs[0]), true))
}

func (z *Interpreter) zLoadw() {
	addr := uint32(z.zargs[0] + 2*z.zargs[1])
	z.store(z.Core.ReadWord(addr))
}

func (z *Interpreter) zLoadb() {
	addr := uint32(z.zargs[0] + z.zargs[1])
	z.store(uint16(z.Core.ReadByte(addr)))
}

func (z *Interpreter) zStorew() {
	z.storew(uint32(z.zargs[0]+2*z.zargs[1]), z.zargs[2])
}

func (z *Interpreter) zStoreb() {
	z.storeb(uint32(z.zargs[0]+z.zargs[1]), uint8(z.zargs[2]))
}

func (z *Interpreter) zPush() {
	z.stackPush(z.zargs[0])
}

func (z *Interpreter) zPull() {
	z.writeVariable(uint8(z.zargs[0]), z.stackPop(), true)
}

func (z *Interpreter) zInc() {
	variable := uint8(z.zargs[0])
	z.writeVariable(variable, uint16(int16(z.readVariable(variable, true))+1), true)
}

func (z *Interpreter) zDec() {
	variable := uint8(z.zargs[0])
	z.writeVariable(variable, uint16(int16(z.readVariable(variable, true))-1), true)
}

func (z *Interpreter) zIncChk() {
	variable := uint8(z.zargs[0])
	value := int16(z.readVariable(variable, true)) + 1
	z.writeVariable(variable, uint16(value), true)
	z.branch(value > int16(z.zargs[1]))
}

func (z *Interpreter) zDecChk() {
	variable := uint8(z.zargs[0])
	value := int16(z.readVariable(variable, true)) - 1
	z.writeVariable(variable, uint16(value), true)
	z.branch(value < int16(z.zargs[1]))
}

func (z *Interpreter) zRtrue() {
	z.ret(1)
}

func (z *Interpreter) zRfalse() {
	z.ret(0)
}

func (z *Interpreter) zRet() {
	z.ret(z.zargs[0])
}

func (z *Interpreter) zRetPopped() {
	z.ret(z.stackPop())
}

func (z *Interpreter) zPop() {
	z.stackPop()
}

// zPopStack discards zargs[0] values, from a user stack when a second
// operand names one.
func (z *Interpreter) zPopStack() {
	if z.zargc == 2 {
		addr := uint32(z.zargs[1])
		z.storew(addr, z.Core.ReadWord(addr)+z.zargs[0])
		return
	}
	for i := uint16(0); i < z.zargs[0]; i++ {
		z.stackPop()
	}
}

// zPushStack pushes onto a user stack, branching on success.
func (z *Interpreter) zPushStack() {
	addr := uint32(z.zargs[1])
	space := z.Core.ReadWord(addr)
	if space == 0 {
		z.branch(false)
		return
	}
	z.storew(addr+2*uint32(space), z.zargs[0])
	z.storew(addr, space-1)
	z.branch(true)
}

func (z *Interpreter) zQuit() {
	z.flushBuffer()
	z.finished = 9999
}

// zPiracy: interpreters are asked to be gullible and branch unconditionally.
func (z *Interpreter) zPiracy() {
	z.branch(true)
}

// zVerify sums the pristine story file past the header and branches when it
// matches the checksum the compiler recorded.
func (z *Interpreter) zVerify() {
	z.branch(z.Core.ComputeChecksum() == z.Core.FileChecksum)
}

func (z *Interpreter) zCallS() {
	if z.zargs[0] == 0 {
		// Calling routine 0 is legal and stores false
		z.store(0)
		return
	}
	z.callRoutine(z.zargs[0], z.zargc-1, z.zargs[1:z.zargc], callFunction)
}

func (z *Interpreter) zCallN() {
	if z.zargs[0] == 0 {
		return
	}
	z.callRoutine(z.zargs[0], z.zargc-1, z.zargs[1:z.zargc], callProcedure)
}

// zCheckArgCount branches when the current routine received at least
// zargs[0] arguments.
func (z *Interpreter) zCheckArgCount() {
	if z.fp >= StackSize {
		z.branch(z.zargs[0] == 0)
		return
	}
	z.branch(z.zargs[0] <= z.stack[z.fp]&0xff)
}
