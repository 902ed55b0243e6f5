package circuit

import (
	"fmt"

	"github.com/qompiler/qompiler/expr"
	"github.com/qompiler/qompiler/utils"
)

const serializeMagic = 0x71636972 // "qcir"

// Serialize converts the circuit into a byte array for storage or
// transmission. Symbols are serialized by name; a round trip allocates
// fresh symbols, one per distinct name.
func (c *Circuit) Serialize() []byte {
	o := utils.OutputBuf{}
	o.AppendUint32(serializeMagic)
	c.serializeInto(&o)
	return o.Bytes()
}

func (c *Circuit) serializeInto(o *utils.OutputBuf) {
	o.AppendUint32(uint32(c.NumQubits))
	o.AppendUint32(uint32(c.NumClbits))
	serializeExpr(o, c.GlobalPhase)
	o.AppendUint32(uint32(len(c.Ops)))
	for i := range c.Ops {
		op := &c.Ops[i]
		o.AppendUint32(uint32(op.Gate))
		o.AppendUint32(uint32(len(op.Qubits)))
		for _, q := range op.Qubits {
			o.AppendUint32(uint32(q))
		}
		o.AppendUint32(uint32(len(op.Clbits)))
		for _, cb := range op.Clbits {
			o.AppendUint32(uint32(cb))
		}
		o.AppendUint32(uint32(len(op.Params)))
		for _, p := range op.Params {
			serializeExpr(o, p)
		}
		if op.Condition != nil {
			o.AppendUint32(1)
			o.AppendUint32(uint32(op.Condition.Clbit))
			if op.Condition.Value {
				o.AppendUint32(1)
			} else {
				o.AppendUint32(0)
			}
		} else {
			o.AppendUint32(0)
		}
		o.AppendUint32(uint32(len(op.Blocks)))
		for _, b := range op.Blocks {
			b.serializeInto(o)
		}
		if op.Calibrated {
			o.AppendUint32(1)
		} else {
			o.AppendUint32(0)
		}
	}
}

func serializeExpr(o *utils.OutputBuf, e expr.Expression) {
	o.AppendUint32(uint32(len(e)))
	for _, t := range e {
		o.AppendString(t.Sym0.Name())
		o.AppendString(t.Sym1.Name())
		o.AppendFloat64(t.Coeff)
	}
}

// Deserialize parses a circuit serialized by Serialize.
func Deserialize(data []byte) (*Circuit, error) {
	in := utils.NewInputBuf(data)
	if magic := in.ReadUint32(); magic != serializeMagic {
		return nil, fmt.Errorf("circuit: bad magic 0x%x", magic)
	}
	syms := make(map[string]expr.Symbol)
	c, err := deserializeFrom(in, syms)
	if err != nil {
		return nil, err
	}
	if err := in.Err(); err != nil {
		return nil, fmt.Errorf("circuit: truncated data: %w", err)
	}
	return c, nil
}

func deserializeFrom(in *utils.InputBuf, syms map[string]expr.Symbol) (*Circuit, error) {
	c := &Circuit{
		NumQubits: int(in.ReadUint32()),
		NumClbits: int(in.ReadUint32()),
	}
	c.GlobalPhase = deserializeExpr(in, syms)
	n := int(in.ReadUint32())
	if in.Err() != nil {
		return nil, in.Err()
	}
	c.Ops = make([]Operation, 0, n)
	for i := 0; i < n; i++ {
		var op Operation
		g := Gate(in.ReadUint32())
		if g == GateInvalid || g >= numGates {
			return nil, fmt.Errorf("circuit: unknown gate id %d", g)
		}
		op.Gate = g
		op.Qubits = readIntSlice(in)
		op.Clbits = readIntSlice(in)
		np := int(in.ReadUint32())
		if in.Err() != nil {
			return nil, in.Err()
		}
		op.Params = make([]expr.Expression, np)
		for j := 0; j < np; j++ {
			op.Params[j] = deserializeExpr(in, syms)
		}
		if in.ReadUint32() == 1 {
			op.Condition = &Condition{
				Clbit: int(in.ReadUint32()),
				Value: in.ReadUint32() == 1,
			}
		}
		nb := int(in.ReadUint32())
		if in.Err() != nil {
			return nil, in.Err()
		}
		for j := 0; j < nb; j++ {
			b, err := deserializeFrom(in, syms)
			if err != nil {
				return nil, err
			}
			op.Blocks = append(op.Blocks, b)
		}
		op.Calibrated = in.ReadUint32() == 1
		if in.Err() != nil {
			return nil, in.Err()
		}
		c.Ops = append(c.Ops, op)
	}
	return c, nil
}

func readIntSlice(in *utils.InputBuf) []int {
	n := int(in.ReadUint32())
	if in.Err() != nil || n == 0 {
		return nil
	}
	s := make([]int, n)
	for i := range s {
		s[i] = int(in.ReadUint32())
	}
	return s
}

func deserializeExpr(in *utils.InputBuf, syms map[string]expr.Symbol) expr.Expression {
	n := int(in.ReadUint32())
	if in.Err() != nil {
		return nil
	}
	e := make(expr.Expression, 0, n)
	for i := 0; i < n; i++ {
		s0 := readSymbol(in, syms)
		s1 := readSymbol(in, syms)
		coeff := in.ReadFloat64()
		e = append(e, expr.NewTerm(s0, s1, coeff))
	}
	return e
}

func readSymbol(in *utils.InputBuf, syms map[string]expr.Symbol) expr.Symbol {
	name := in.ReadString()
	if name == "" {
		return 0
	}
	s, ok := syms[name]
	if !ok {
		s = expr.NewSymbol(name)
		syms[name] = s
	}
	return s
}
