package x86

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
	"golang.org/x/arch/x86/x86asm"
)

// MaxInstructionLength is the architectural upper bound of a single
// x86 instruction in bytes.
const MaxInstructionLength = 15

// InvalidLength is returned by Length when the leading bytes do not
// decode to a valid instruction within the allowed width.
const InvalidLength = -1

// JumpRelativeLength is the byte length of the E9 rel32 jump used to
// redirect a function or an entry point in place.
const JumpRelativeLength = 5

// JumpAbsoluteLength is the byte length of the FF 25 indirect jump
// with an inline 8 byte target, the only jump form whose target is
// unconstrained on x86-64.
const JumpAbsoluteLength = 14

// Mode is used to return the decode mode, 32 or 64, it is fixed at
// build time by the target architecture.
func Mode() int {
	return mode
}

// Length is used to return the byte length of the single instruction
// that begins at code[0]. The read is bounded by max, an instruction
// that does not fit in max bytes is invalid.
func Length(code []byte, max int) int {
	if max < 1 || len(code) == 0 {
		return InvalidLength
	}
	if max > MaxInstructionLength {
		max = MaxInstructionLength
	}
	if max > len(code) {
		max = len(code)
	}
	inst, err := x86asm.Decode(code[:max], mode)
	if err != nil {
		return InvalidLength
	}
	// a lone legacy prefix decodes as a one byte instruction
	// without an opcode, it is not executable on its own
	if inst.Opcode == 0 && inst.Len == 1 && inst.Prefix[0] == x86asm.Prefix(code[0]) {
		return InvalidLength
	}
	return inst.Len
}

// Prologue describes the leading whole instructions of a function
// that cover at least the requested overwrite width.
type Prologue struct {
	// Length is the total byte length, it is always >= the
	// requested minimum and never splits an instruction.
	Length int

	// Relocatable reports whether every covered instruction can be
	// executed from a different address without rewriting, relative
	// branches and RIP relative operands make a prologue position
	// dependent.
	Relocatable bool
}

// padding and terminal instructions end a function, the prologue must
// never be extended across them.
func terminal(inst *x86asm.Inst) bool {
	switch inst.Op {
	case x86asm.RET, x86asm.LRET, x86asm.JMP, x86asm.UD2:
		return true
	}
	return false
}

func positionDependent(inst *x86asm.Inst) bool {
	for _, arg := range inst.Args {
		if arg == nil {
			break
		}
		if _, ok := arg.(x86asm.Rel); ok {
			return true
		}
		if mem, ok := arg.(x86asm.Mem); ok && mem.Base == x86asm.RIP {
			return true
		}
	}
	return false
}

// EncodeJump is used to build the E9 rel32 jump that is placed at
// from and lands at to. It fails when the displacement does not fit
// in a signed 32 bit field, the caller must allocate closer.
func EncodeJump(from, to uint64) ([]byte, error) {
	disp := int64(to) - (int64(from) + JumpRelativeLength)
	if disp > math.MaxInt32 || disp < math.MinInt32 {
		return nil, errors.Errorf("jump displacement out of range: %d", disp)
	}
	jump := make([]byte, JumpRelativeLength)
	jump[0] = 0xE9
	binary.LittleEndian.PutUint32(jump[1:], uint32(int32(disp)))
	return jump, nil
}

// EncodeAbsoluteJump is used to build the 14 byte FF 25 jump through
// an inline 8 byte target. Position independent, any target.
func EncodeAbsoluteJump(to uint64) []byte {
	jump := make([]byte, JumpAbsoluteLength)
	jump[0] = 0xFF
	jump[1] = 0x25
	binary.LittleEndian.PutUint64(jump[6:], to)
	return jump
}

// AnalyzePrologue is used to measure the whole instructions at the
// start of code until at least min bytes are covered. code should
// provide min+MaxInstructionLength readable bytes.
func AnalyzePrologue(code []byte, min int) (*Prologue, error) {
	if min < 1 {
		return nil, errors.New("invalid minimum prologue width")
	}
	prologue := Prologue{
		Relocatable: true,
	}
	for prologue.Length < min {
		rest := code[prologue.Length:]
		if len(rest) == 0 {
			return nil, errors.Errorf("code window exhausted after %d bytes", prologue.Length)
		}
		if rest[0] == 0xCC {
			return nil, errors.Errorf("reached padding after %d bytes", prologue.Length)
		}
		inst, err := x86asm.Decode(rest, mode)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid instruction at offset %d", prologue.Length)
		}
		if inst.Opcode == 0 && inst.Len == 1 && inst.Prefix[0] == x86asm.Prefix(rest[0]) {
			return nil, errors.Errorf("lone prefix at offset %d", prologue.Length)
		}
		if terminal(&inst) && prologue.Length+inst.Len < min {
			return nil, errors.Errorf("function ends after %d bytes", prologue.Length+inst.Len)
		}
		if positionDependent(&inst) {
			prologue.Relocatable = false
		}
		prologue.Length += inst.Len
	}
	return &prologue, nil
}
