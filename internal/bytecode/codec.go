// Package bytecode serializes and deserializes instruction lists to a
// compact binary framing: a fixed header (magic, version, flags,
// little-endian instruction count) followed by one record per
// instruction (address, operand count, tagged operands).
package bytecode

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/tritvm/tervm/internal/asmerr"
	"github.com/tritvm/tervm/internal/opcode"
	"github.com/tritvm/tervm/internal/ternary"
	"github.com/tritvm/tervm/internal/value"
)

// Magic identifies a tervm bytecode file: 0xCB 0x33 0xCB 0x33.
var Magic = [4]byte{0xCB, 0x33, 0xCB, 0x33}

// Version is the only version this codec accepts.
const Version = 1

// Flags is always zero in this version of the format.
const Flags = 0

// Tag bytes for operand values.
const (
	tagNone  = 0x00
	tagInt   = 0x01
	tagFloat = 0x02
	tagBool  = 0x03
	tagTrit  = 0x04
	tagStr   = 0x05
	tagNil   = 0x06
)

// maxStrBytes is the length cap imposed on serialized strings.
const maxStrBytes = 65535

// Serialize encodes instrs into the bytecode wire format.
func Serialize(instrs []opcode.Instruction) ([]byte, error) {
	buf := new(bytes.Buffer)

	buf.Write(Magic[:])
	buf.WriteByte(Version)
	buf.WriteByte(Flags)

	if err := binary.Write(buf, binary.LittleEndian, uint32(len(instrs))); err != nil {
		return nil, fmt.Errorf("bytecode: writing instruction count: %w", err)
	}

	for _, ins := range instrs {
		if err := writeInstruction(buf, ins); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

func writeInstruction(w io.Writer, ins opcode.Instruction) error {
	header := []byte{
		byte(ins.Address.Sector),
		byte(ins.Address.Group),
		byte(ins.Address.Command),
		byte(len(ins.Operands)),
	}
	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("bytecode: writing instruction header: %w", err)
	}
	for _, op := range ins.Operands {
		if err := writeValue(w, op); err != nil {
			return err
		}
	}
	return nil
}

func writeValue(w io.Writer, v value.Value) error {
	switch v.Type() {
	case value.TypeNil:
		_, err := w.Write([]byte{tagNil})
		return err
	case value.TypeInt:
		if _, err := w.Write([]byte{tagInt}); err != nil {
			return err
		}
		i, _ := v.AsInt()
		return binary.Write(w, binary.LittleEndian, i)
	case value.TypeFloat:
		if _, err := w.Write([]byte{tagFloat}); err != nil {
			return err
		}
		f, _ := v.AsFloat()
		return binary.Write(w, binary.LittleEndian, f)
	case value.TypeBool:
		b := byte(0)
		if v.RawBool() {
			b = 1
		}
		_, err := w.Write([]byte{tagBool, b})
		return err
	case value.TypeTrit:
		_, err := w.Write([]byte{tagTrit, byte(v.RawTrit().ToI8())})
		return err
	case value.TypeStr:
		if _, err := w.Write([]byte{tagStr}); err != nil {
			return err
		}
		s, _ := v.AsStr()
		return writeStr(w, s)
	default:
		// Addr/Array/Object never appear as an assembled
		// instruction's immediate operand, so encode as None
		// rather than fail a well-formed serialize call.
		_, err := w.Write([]byte{tagNone})
		return err
	}
}

// writeStr truncates s to maxStrBytes bytes without splitting a
// multi-byte UTF-8 code point, then writes a 2-byte LE length prefix
// followed by the (possibly truncated) bytes.
func writeStr(w io.Writer, s string) error {
	b := []byte(s)
	if len(b) > maxStrBytes {
		b = truncateUTF8(b, maxStrBytes)
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

// truncateUTF8 clamps b to at most n bytes, backing off from n until it
// lands on a byte that is not a UTF-8 continuation byte (10xxxxxx).
func truncateUTF8(b []byte, n int) []byte {
	for n > 0 && b[n]&0xC0 == 0x80 {
		n--
	}
	return b[:n]
}

// Deserialize decodes the bytecode wire format back into an instruction
// list. It verifies the header strictly and bounds-checks every read;
// any shortfall surfaces a *asmerr.VmError naming the missing field.
func Deserialize(data []byte) ([]opcode.Instruction, error) {
	r := bytes.NewReader(data)

	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, asmerr.NewVmError(asmerr.Truncated, 0, 0, 0, 0, "missing magic header")
	}
	if magic != Magic {
		return nil, asmerr.NewVmError(asmerr.MagicMismatch, 0, 0, 0, 0, "expected magic %x, got %x", Magic, magic)
	}

	version, err := r.ReadByte()
	if err != nil {
		return nil, asmerr.NewVmError(asmerr.Truncated, 0, 0, 0, 0, "missing version byte")
	}
	if version != Version {
		return nil, asmerr.NewVmError(asmerr.UnsupportedVersion, 0, 0, 0, 0, "unsupported version %d", version)
	}

	if _, err := r.ReadByte(); err != nil {
		return nil, asmerr.NewVmError(asmerr.Truncated, 0, 0, 0, 0, "missing flags byte")
	}

	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, asmerr.NewVmError(asmerr.Truncated, 0, 0, 0, 0, "missing instruction count")
	}

	instrs := make([]opcode.Instruction, 0, count)
	for i := uint32(0); i < count; i++ {
		ins, err := readInstruction(r, int(i))
		if err != nil {
			return nil, err
		}
		instrs = append(instrs, ins)
	}

	return instrs, nil
}

func readInstruction(r *bytes.Reader, index int) (opcode.Instruction, error) {
	header := make([]byte, 4)
	if _, err := io.ReadFull(r, header); err != nil {
		return opcode.Instruction{}, asmerr.NewVmError(asmerr.Truncated, 0, 0, 0, 0, "missing header for instruction %d", index)
	}

	addr := opcode.OpcodeAddress{Sector: int(header[0]), Group: int(header[1]), Command: int(header[2])}
	arity := int(header[3])

	operands := make([]value.Value, 0, arity)
	for n := 0; n < arity; n++ {
		v, err := readValue(r)
		if err != nil {
			return opcode.Instruction{}, fmt.Errorf("bytecode: instruction %d operand %d: %w", index, n, err)
		}
		operands = append(operands, v)
	}

	return opcode.Instruction{Address: addr, Operands: operands}, nil
}

func readValue(r *bytes.Reader) (value.Value, error) {
	tag, err := r.ReadByte()
	if err != nil {
		return value.Nil(), asmerr.NewVmError(asmerr.Truncated, 0, 0, 0, 0, "missing operand tag")
	}

	switch tag {
	case tagNone:
		return value.Nil(), nil
	case tagNil:
		return value.Nil(), nil
	case tagInt:
		var i int64
		if err := binary.Read(r, binary.LittleEndian, &i); err != nil {
			return value.Nil(), asmerr.NewVmError(asmerr.Truncated, 0, 0, 0, 0, "missing int payload")
		}
		return value.Int(i), nil
	case tagFloat:
		var f float64
		if err := binary.Read(r, binary.LittleEndian, &f); err != nil {
			return value.Nil(), asmerr.NewVmError(asmerr.Truncated, 0, 0, 0, 0, "missing float payload")
		}
		return value.Float(f), nil
	case tagBool:
		b, err := r.ReadByte()
		if err != nil {
			return value.Nil(), asmerr.NewVmError(asmerr.Truncated, 0, 0, 0, 0, "missing bool payload")
		}
		return value.Bool(b != 0), nil
	case tagTrit:
		b, err := r.ReadByte()
		if err != nil {
			return value.Nil(), asmerr.NewVmError(asmerr.Truncated, 0, 0, 0, 0, "missing trit payload")
		}
		raw := int8(b)
		if raw < -1 || raw > 1 {
			return value.Nil(), asmerr.NewVmError(asmerr.UnknownTag, 0, 0, 0, 0, "trit payload 0x%02x outside {-1,0,1}", b)
		}
		return value.TritValue(ternary.Trit(raw)), nil
	case tagStr:
		var length uint16
		if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
			return value.Nil(), asmerr.NewVmError(asmerr.Truncated, 0, 0, 0, 0, "missing string length")
		}
		data := make([]byte, length)
		if _, err := io.ReadFull(r, data); err != nil {
			return value.Nil(), asmerr.NewVmError(asmerr.Truncated, 0, 0, 0, 0, "missing string payload")
		}
		return value.Str(string(data)), nil
	default:
		return value.Nil(), asmerr.NewVmError(asmerr.UnknownTag, 0, 0, 0, 0, "unknown operand tag 0x%02x", tag)
	}
}

// Analysis is the summary Analyze reports without a full decode.
type Analysis struct {
	Version           int
	InstructionCount  int
	TotalBytes        int
	MeanBytesPerInstr float64
}

// Analyze reports version, instruction count, total size, and mean
// bytes per instruction without fully decoding operand payloads.
func Analyze(data []byte) (Analysis, error) {
	if len(data) < 10 {
		return Analysis{}, asmerr.NewVmError(asmerr.Truncated, 0, 0, 0, 0, "header too short")
	}
	var magic [4]byte
	copy(magic[:], data[:4])
	if magic != Magic {
		return Analysis{}, asmerr.NewVmError(asmerr.MagicMismatch, 0, 0, 0, 0, "expected magic %x, got %x", Magic, magic)
	}
	version := int(data[4])
	count := int(binary.LittleEndian.Uint32(data[6:10]))

	mean := 0.0
	if count > 0 {
		mean = float64(len(data)-10) / float64(count)
	}

	return Analysis{
		Version:           version,
		InstructionCount:  count,
		TotalBytes:        len(data),
		MeanBytesPerInstr: mean,
	}, nil
}
