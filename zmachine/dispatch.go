package zmachine

import "github.com/tlgreaves/grue/zerr"

// installOpcodeTables wires the dispatch tables, applying the two slots
// whose meaning changed in V5: pop became catch and 1OP not became call_1n.
func (z *Interpreter) installOpcodeTables() {
	z.op0Opcodes = [0x10]opcodeFn{
		(*Interpreter).zRtrue,
		(*Interpreter).zRfalse,
		(*Interpreter).zPrint,
		(*Interpreter).zPrintRet,
		(*Interpreter).zNop,
		(*Interpreter).zSave,
		(*Interpreter).zRestore,
		(*Interpreter).zRestart,
		(*Interpreter).zRetPopped,
		(*Interpreter).zPop,
		(*Interpreter).zQuit,
		(*Interpreter).zNewLine,
		(*Interpreter).zShowStatus,
		(*Interpreter).zVerify,
		(*Interpreter).zExtended,
		(*Interpreter).zPiracy,
	}

	z.op1Opcodes = [0x10]opcodeFn{
		(*Interpreter).zJz,
		(*Interpreter).zGetSibling,
		(*Interpreter).zGetChild,
		(*Interpreter).zGetParent,
		(*Interpreter).zGetPropLen,
		(*Interpreter).zInc,
		(*Interpreter).zDec,
		(*Interpreter).zPrintAddr,
		(*Interpreter).zCallS,
		(*Interpreter).zRemoveObj,
		(*Interpreter).zPrintObj,
		(*Interpreter).zRet,
		(*Interpreter).zJump,
		(*Interpreter).zPrintPaddr,
		(*Interpreter).zLoad,
		(*Interpreter).zNot,
	}

	z.varOpcodes = [0x40]opcodeFn{
		(*Interpreter).zIllegal,
		(*Interpreter).zJe,
		(*Interpreter).zJl,
		(*Interpreter).zJg,
		(*Interpreter).zDecChk,
		(*Interpreter).zIncChk,
		(*Interpreter).zJin,
		(*Interpreter).zTest,
		(*Interpreter).zOr,
		(*Interpreter).zAnd,
		(*Interpreter).zTestAttr,
		(*Interpreter).zSetAttr,
		(*Interpreter).zClearAttr,
		(*Interpreter).zStore,
		(*Interpreter).zInsertObj,
		(*Interpreter).zLoadw,
		(*Interpreter).zLoadb,
		(*Interpreter).zGetProp,
		(*Interpreter).zGetPropAddr,
		(*Interpreter).zGetNextProp,
		(*Interpreter).zAdd,
		(*Interpreter).zSub,
		(*Interpreter).zMul,
		(*Interpreter).zDiv,
		(*Interpreter).zMod,
		(*Interpreter).zCallS,
		(*Interpreter).zCallN,
		(*Interpreter).zSetColour,
		(*Interpreter).zThrow,
		(*Interpreter).zIllegal,
		(*Interpreter).zIllegal,
		(*Interpreter).zIllegal,
		(*Interpreter).zCallS,
		(*Interpreter).zStorew,
		(*Interpreter).zStoreb,
		(*Interpreter).zPutProp,
		(*Interpreter).zRead,
		(*Interpreter).zPrintChar,
		(*Interpreter).zPrintNum,
		(*Interpreter).zRandom,
		(*Interpreter).zPush,
		(*Interpreter).zPull,
		(*Interpreter).zSplitWindow,
		(*Interpreter).zSetWindow,
		(*Interpreter).zCallS,
		(*Interpreter).zEraseWindow,
		(*Interpreter).zEraseLine,
		(*Interpreter).zSetCursor,
		(*Interpreter).zGetCursor,
		(*Interpreter).zSetTextStyle,
		(*Interpreter).zBufferMode,
		(*Interpreter).zOutputStream,
		(*Interpreter).zInputStream,
		(*Interpreter).zSoundEffect,
		(*Interpreter).zReadChar,
		(*Interpreter).zScanTable,
		(*Interpreter).zNot,
		(*Interpreter).zCallN,
		(*Interpreter).zCallN,
		(*Interpreter).zTokenise,
		(*Interpreter).zEncodeText,
		(*Interpreter).zCopyTable,
		(*Interpreter).zPrintTable,
		(*Interpreter).zCheckArgCount,
	}

	z.extOpcodes = [0x1d]opcodeFn{
		(*Interpreter).zSave,
		(*Interpreter).zRestore,
		(*Interpreter).zLogShift,
		(*Interpreter).zArtShift,
		(*Interpreter).zSetFont,
		(*Interpreter).zDrawPicture,
		(*Interpreter).zPictureData,
		(*Interpreter).zErasePicture,
		(*Interpreter).zSetMargins,
		(*Interpreter).zSaveUndo,
		(*Interpreter).zRestoreUndo,
		(*Interpreter).zPrintUnicode,
		(*Interpreter).zCheckUnicode,
		(*Interpreter).zIllegal,
		(*Interpreter).zIllegal,
		(*Interpreter).zIllegal,
		(*Interpreter).zNop, // move_window
		(*Interpreter).zNop, // window_size
		(*Interpreter).zNop, // window_style
		(*Interpreter).zGetWindProp,
		(*Interpreter).zNop, // scroll_window
		(*Interpreter).zPopStack,
		(*Interpreter).zNop, // read_mouse
		(*Interpreter).zNop, // mouse_window
		(*Interpreter).zPushStack,
		(*Interpreter).zNop, // put_wind_prop
		(*Interpreter).zNop, // print_form
		(*Interpreter).zNop, // make_menu
		(*Interpreter).zNop, // picture_table
	}

	if z.Core.Version >= 5 {
		z.op0Opcodes[0x09] = (*Interpreter).zCatch
		z.op1Opcodes[0x0f] = (*Interpreter).zCallN
	}
}

// loadOperand appends one operand: a word constant (type 0), a byte
// constant (type 1) or a variable reference (type 2).
func (z *Interpreter) loadOperand(operandType uint8) {
	var value uint16

	if operandType&2 != 0 {
		value = z.readVariable(z.codeByte(), false)
	} else if operandType&1 != 0 {
		value = uint16(z.codeByte())
	} else {
		value = z.codeWord()
	}

	z.zargs[z.zargc] = value
	z.zargc++
}

// loadAllOperands decodes a VAR specifier byte, two bits per operand,
// stopping at the first omitted marker.
func (z *Interpreter) loadAllOperands(specifier uint8) {
	for i := 6; i >= 0; i -= 2 {
		operandType := (specifier >> i) & 0x03
		if operandType == 3 {
			break
		}
		z.loadOperand(operandType)
	}
}

// runOpcode decodes operands for one instruction and dispatches it. The
// four instruction forms carry their operand layout in the opcode byte.
func (z *Interpreter) runOpcode(opcode uint8) {
	z.zargc = 0

	switch {
	case opcode < 0x80: // 2OP, long form
		if opcode&0x40 != 0 {
			z.loadOperand(2)
		} else {
			z.loadOperand(1)
		}
		if opcode&0x20 != 0 {
			z.loadOperand(2)
		} else {
			z.loadOperand(1)
		}
		z.varOpcodes[opcode&0x1f](z)

	case opcode < 0xb0: // 1OP, short form
		z.loadOperand((opcode >> 4) & 0x03)
		z.op1Opcodes[opcode&0x0f](z)

	case opcode < 0xc0: // 0OP, short form
		z.op0Opcodes[opcode-0xb0](z)

	default: // VAR form
		if opcode == 0xec || opcode == 0xfa {
			// The two double-specifier call opcodes take up to 8 operands
			specifier1 := z.codeByte()
			specifier2 := z.codeByte()
			z.loadAllOperands(specifier1)
			z.loadAllOperands(specifier2)
		} else {
			z.loadAllOperands(z.codeByte())
		}
		z.varOpcodes[opcode-0xc0](z)
	}
}

// zExtended dispatches the 0xbe prefix: an extended opcode byte followed by
// a VAR operand specifier.
func (z *Interpreter) zExtended() {
	opcode := z.codeByte()
	z.loadAllOperands(z.codeByte())

	if int(opcode) < len(z.extOpcodes) {
		z.extOpcodes[opcode](z)
	}
	// Unknown extended opcodes are silently skipped so newer stories keep
	// running, per section 14.2 of the Standard.
}

func (z *Interpreter) zIllegal() {
	z.Errors.Runtime(zerr.ErrIllOpcode, z.instructionPC)
}

func (z *Interpreter) zNop() {}
