package oracle

import "startyping/checker-go/pkg/types"

// Seq consults each oracle in order and returns the first answer that is not
// Unknown.
type Seq []TypingOracle

func (s Seq) Attribute(recv types.BasicType, name string) (types.Ty, Status) {
	for _, o := range s {
		if ty, status := o.Attribute(recv, name); status != Unknown {
			return ty, status
		}
	}
	return types.Any(), Unknown
}

func (s Seq) BinOp(op string, left, right types.BasicType) (types.Ty, Status) {
	for _, o := range s {
		if ty, status := o.BinOp(op, left, right); status != Unknown {
			return ty, status
		}
	}
	return types.Any(), Unknown
}

func (s Seq) Signature(name string) (*types.Signature, Status) {
	for _, o := range s {
		if sig, status := o.Signature(name); status != Unknown {
			return sig, status
		}
	}
	return nil, Unknown
}

func (s Seq) UnOp(op string, operand types.BasicType) (types.Ty, Status) {
	for _, o := range s {
		u, ok := o.(UnaryOracle)
		if !ok {
			continue
		}
		if ty, status := u.UnOp(op, operand); status != Unknown {
			return ty, status
		}
	}
	return types.Any(), Unknown
}

// Refine asks the first oracle that both knows the builtin and can refine it.
func (s Seq) Refine(name string, args []types.Arg) (types.Ty, bool) {
	for _, o := range s {
		if _, status := o.Signature(name); status != Known {
			continue
		}
		r, ok := o.(Refiner)
		if !ok {
			return types.Ty{}, false
		}
		return r.Refine(name, args)
	}
	return types.Ty{}, false
}
