package zmachine

import "github.com/tlgreaves/grue/ztable"

// zScanTable searches a table, storing the address of the match and
// branching when one was found.
//
//	zargs[0] = value, zargs[1] = table, zargs[2] = entry count,
//	zargs[3] = form byte (default 0x82: word entries, stride 2)
func (z *Interpreter) zScanTable() {
	form := uint16(0x82)
	if z.zargc == 4 {
		form = z.zargs[3]
	}

	result := ztable.ScanTable(&z.Core, z.zargs[0], uint32(z.zargs[1]), z.zargs[2], form)

	z.store(uint16(result))
	z.branch(result != 0)
}

// zCopyTable copies, moves or zeroes a table. Writes go through the
// interpreter's checked store.
func (z *Interpreter) zCopyTable() {
	ztable.CopyTable(&z.Core, z.zargs[0], z.zargs[1], int16(z.zargs[2]), z.storeb)
}
