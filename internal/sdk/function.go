package sdk

import (
	"fmt"

	"github.com/itsethra/uesdk/internal/offsets"
	"github.com/itsethra/uesdk/internal/rproc"
)

// cpfOutParm is the PropertyFlags bit marking a function argument as
// an out-parameter (spec.md §4.10 step 3). CPF_Parm (0x80, bit 7) is
// set on every function parameter, in vs. out; CPF_OutParm (0x100,
// bit 8) is the one that actually distinguishes an out-parameter.
const cpfOutParm = 1 << 8

// FunctionIndexer is component C10 (spec.md §4.10). It runs in the
// second pass, after every struct has been indexed, since a function
// must resolve its owner to attach itself.
type FunctionIndexer struct {
	r    rproc.MemoryReader
	cfg  offsets.Config
	pool *NamePool
	si   *StructIndexer // reused for propertyKind/fqnAt/recurseInner
}

func NewFunctionIndexer(r rproc.MemoryReader, cfg offsets.Config, pool *NamePool) *FunctionIndexer {
	return &FunctionIndexer{r: r, cfg: cfg, pool: pool, si: NewStructIndexer(r, cfg, pool)}
}

// Index reads the function at addr and returns it along with its
// owner's FQN and any foreign FQNs its args reference. engineIndex is
// the object's position in the flattened object table.
func (ix *FunctionIndexer) Index(addr rproc.Address, fqn FQN, engineIndex int) (fn Function, owner FQN, foreign []FQN, err error) {
	obj := objectRef{r: ix.r, cfg: ix.cfg, addr: addr}

	outerAddr, err := obj.outerAddr()
	if err != nil {
		return Function{}, FQN{}, nil, err
	}
	if outerAddr == 0 {
		return Function{}, FQN{}, nil, newStructuralError(addr, fqn, "function has no owning struct")
	}
	owner, err = obj.withAddr(outerAddr).fqn(ix.pool)
	if err != nil {
		return Function{}, FQN{}, nil, err
	}

	fref := functionRef{structRef{obj}}
	flags, err := fref.flags()
	if err != nil {
		return Function{}, FQN{}, nil, err
	}

	args, returns, argForeign, err := ix.walkArgs(fref.structRef)
	if err != nil {
		return Function{}, FQN{}, nil, err
	}
	foreign = argForeign

	fn = Function{
		FQN:         fqn,
		Ident:       sanitizeIdent(fqn.Name),
		EngineIndex: engineIndex,
		Flags:       flags,
		Args:        args,
		Returns:     returns,
	}
	return fn, owner, foreign, nil
}

// walkArgs follows the function's own children_props chain - the
// same FField.next linked list shape a struct's property list uses -
// partitioning by the OutParm flag.
func (ix *FunctionIndexer) walkArgs(sref structRef) (args, returns []Arg, foreign []FQN, err error) {
	nameCounts := make(map[string]int)

	cur, err := sref.childrenPropsAddr()
	if err != nil {
		return nil, nil, nil, err
	}
	for cur != 0 {
		fr := fieldRef{r: ix.r, cfg: ix.cfg, addr: cur}

		rawName, err := fr.name(ix.pool)
		if err != nil {
			return nil, nil, nil, err
		}
		nameCounts[rawName]++
		name := rawName
		if n := nameCounts[rawName]; n > 1 {
			name = fmt.Sprintf("%s_%d", rawName, n)
		}

		className, err := fr.className(ix.pool)
		if err != nil {
			return nil, nil, nil, err
		}
		prop := propertyRef{fr}

		kind, err := ix.si.propertyKind(prop, className)
		if err != nil {
			return nil, nil, nil, err
		}
		foreign = append(foreign, collectForeign(kind)...)

		flags, err := prop.flags()
		if err != nil {
			return nil, nil, nil, err
		}

		arg := Arg{Name: name, Kind: kind, Flags: flags}
		if flags&cpfOutParm != 0 {
			returns = append(returns, arg)
		} else {
			args = append(args, arg)
		}

		next, err := fr.nextAddr()
		if err != nil {
			return nil, nil, nil, err
		}
		cur = next
	}
	return args, returns, foreign, nil
}
