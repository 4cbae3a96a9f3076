package vmcode

import "encoding/binary"

// Map owns an append-only sequence of instructions keyed by byte offset.
// It is created fresh per compilation run — the process-wide singleton
// instance the original source uses is deliberately not reproduced here: a
// *Map is an explicit value passed down from the pipeline into the code
// generator.
type Map struct {
	code []*VMCode
}

// New returns an empty instruction map.
func New() *Map { return &Map{} }

// Size is the current serialised length of every instruction in the map.
func (m *Map) Size() int {
	if len(m.code) == 0 {
		return 0
	}
	last := m.code[len(m.code)-1]
	return last.offset + last.Size()
}

// Len is the number of instructions currently in the map.
func (m *Map) Len() int { return len(m.code) }

// Append inserts a new instruction with no target at the map's current end
// offset and returns it.
func (m *Map) Append(info Info, data []byte) *VMCode {
	vc := &VMCode{Info: info, Data: data, offset: m.Size()}
	m.code = append(m.code, vc)
	return vc
}

// AppendJump inserts a jump/call instruction whose target may be nil (not
// yet generated). The caller is responsible for calling SetTarget once the
// target instruction exists — this is how a forward call's pending-target
// list and a control-flow statement's placeholder jump are represented.
func (m *Map) AppendJump(info Info, target *VMCode) *VMCode {
	vc := &VMCode{Info: info, Target: target, offset: m.Size()}
	m.code = append(m.code, vc)
	return vc
}

// SetTarget patches a previously emitted jump/call instruction's target.
func (m *Map) SetTarget(vc, target *VMCode) { vc.Target = target }

// First returns the first instruction in program order, or nil if empty.
func (m *Map) First() *VMCode {
	if len(m.code) == 0 {
		return nil
	}
	return m.code[0]
}

// recomputeOffsets re-derives every instruction's offset as the prefix sum
// of the sizes of all instructions preceding it.
func (m *Map) recomputeOffsets() {
	addr := 0
	for _, c := range m.code {
		c.offset = addr
		addr += c.Size()
	}
}

// Finalise runs the short/long re-padding fixed point: any instruction
// whose current operand has outgrown its opcode's short form is
// upgraded to the larger opcode, offsets are recomputed, and the process
// repeats until a pass produces no further upgrades — because growing one
// instruction can push a later jump's delta out of the short form's range.
func (m *Map) Finalise() {
	m.recomputeOffsets()
	for {
		grew := false
		for _, c := range m.code {
			if !c.Info.HasLarger {
				continue
			}
			if m.needsGrowth(c) {
				c.Info = LookupInfo(c.Info.LargerForm)
				grew = true
			}
		}
		if !grew {
			break
		}
		m.recomputeOffsets()
	}
}

func (m *Map) needsGrowth(c *VMCode) bool {
	switch c.Info.Kind {
	case DataOperand:
		return len(c.Data) > c.Info.MaxOperand
	case JumpOperand:
		if c.Target == nil {
			return false
		}
		delta := c.Target.offset - c.offset
		return delta < -128 || delta > 127
	default:
		return false
	}
}

// MoveToEnd extracts the contiguous instruction range whose offsets fall in
// [firstAddr, lastAddr], re-computes offsets for the resulting gap, and
// appends the extracted range at the map's new end. Because VMCode.Target
// is a pointer rather than a numeric
// offset, no separate target re-resolution pass is needed — every jump's
// operand is always re-derived from its target's current offset the next
// time Finalise runs, so a move can never leave a jump decoding to a stale
// delta.
func (m *Map) MoveToEnd(firstAddr, lastAddr int) {
	if lastAddr < firstAddr {
		return
	}
	m.recomputeOffsets()

	var kept, moved []*VMCode
	for _, c := range m.code {
		if c.offset >= firstAddr && c.offset <= lastAddr {
			moved = append(moved, c)
		} else {
			kept = append(kept, c)
		}
	}
	m.code = append(kept, moved...)
	m.recomputeOffsets()
}

// Serialise emits the final byte string: opcode byte followed by operand
// bytes for every instruction in offset order. Jump/call operands are
// computed here from each instruction's Target, never from a cached
// numeric field, so the result always reflects the current offsets.
func (m *Map) Serialise() []byte {
	m.Finalise()

	out := make([]byte, 0, m.Size())
	for _, c := range m.code {
		out = append(out, byte(c.Info.Code))
		switch c.Info.Kind {
		case FixedOperand:
			out = append(out, c.Data...)
		case DataOperand:
			prefix := make([]byte, dataPrefixLen(c.Info.Code))
			switch len(prefix) {
			case 1:
				prefix[0] = byte(len(c.Data))
			case 2:
				binary.LittleEndian.PutUint16(prefix, uint16(len(c.Data)))
			case 4:
				binary.LittleEndian.PutUint32(prefix, uint32(len(c.Data)))
			}
			out = append(out, prefix...)
			out = append(out, c.Data...)
		case JumpOperand:
			delta := int32(0)
			if c.Target != nil {
				delta = int32(c.Target.offset - c.offset)
			}
			if jumpOperandLen(c.Info.Code) == 1 {
				out = append(out, byte(int8(delta)))
			} else {
				buf := make([]byte, 4)
				binary.LittleEndian.PutUint32(buf, uint32(delta))
				out = append(out, buf...)
			}
		}
	}
	return out
}

// Instructions returns the instructions in current program order. Callers
// must not retain the slice across further mutation of the map.
func (m *Map) Instructions() []*VMCode { return append([]*VMCode(nil), m.code...) }
