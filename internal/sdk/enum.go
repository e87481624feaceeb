package sdk

import (
	"fmt"
	"strings"

	"github.com/itsethra/uesdk/internal/offsets"
	"github.com/itsethra/uesdk/internal/rproc"
)

// EnumIndexer is component C7 (spec.md §4.7): turns one UEnum address
// into a fully resolved Enum, including the variant cleanup rules the
// raw engine table doesn't apply on its own.
type EnumIndexer struct {
	r    rproc.MemoryReader
	cfg  offsets.Config
	pool *NamePool
}

func NewEnumIndexer(r rproc.MemoryReader, cfg offsets.Config, pool *NamePool) *EnumIndexer {
	return &EnumIndexer{r: r, cfg: cfg, pool: pool}
}

// Index reads and normalizes the enum at addr.
func (ix *EnumIndexer) Index(addr rproc.Address, fqn FQN) (*Enum, error) {
	obj := objectRef{r: ix.r, cfg: ix.cfg, addr: addr}
	ident, err := obj.shortName(ix.pool)
	if err != nil {
		return nil, err
	}

	e := enumRef{obj}
	raw, err := e.variants()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(raw))
	variants := make([]EnumVariant, 0, len(raw))
	for _, rv := range raw {
		name, ok := ix.pool.Get(rv.NameID)
		if !ok {
			return nil, newStructuralError(addr, fqn, "enum variant name id %#x not present in name pool", rv.NameID)
		}
		variantIdent := sanitizeIdent(stripEnumPrefix(name, ident))
		if variantIdent == "" || strings.HasSuffix(variantIdent, "_MAX") {
			continue
		}
		// Deduplicate identical identifiers by appending _<value> on
		// repeats (spec.md §4.7).
		if seen[variantIdent] {
			variantIdent = fmt.Sprintf("%s_%d", variantIdent, rv.Value)
		}
		seen[variantIdent] = true
		variants = append(variants, EnumVariant{Ident: variantIdent, Value: rv.Value})
	}

	return &Enum{
		FQN:      fqn,
		Ident:    ident,
		Layout:   enumLayout(variants),
		Variants: variants,
	}, nil
}

// stripEnumPrefix removes the "EnumName::" qualifier the engine
// sometimes stores inline with the variant's own name, and the plain
// "EnumName_" prefix convention used by C-style enums (spec.md §4.7).
func stripEnumPrefix(name, enumIdent string) string {
	if rest, ok := strings.CutPrefix(name, enumIdent+"::"); ok {
		return rest
	}
	if rest, ok := strings.CutPrefix(name, enumIdent+"_"); ok {
		return rest
	}
	return name
}

// enumLayout picks the smallest of {1,2,4,8} bytes whose signed/
// unsigned closed interval [iN::MIN, uN::MAX] covers every variant
// value (spec.md §4.7, §8 "Enum-size minimality"). This tolerates
// runtimes that declare unsigned-valued variants in a signed field.
func enumLayout(variants []EnumVariant) Layout {
	if len(variants) == 0 {
		return Layout{Size: 1, Align: 1}
	}
	lo, hi := variants[0].Value, variants[0].Value
	for _, v := range variants[1:] {
		if v.Value < lo {
			lo = v.Value
		}
		if v.Value > hi {
			hi = v.Value
		}
	}
	for _, size := range []int64{1, 2, 4, 8} {
		bits := uint(size * 8)
		var rangeMin int64
		var rangeMax int64
		if bits == 64 {
			rangeMin = int64(-1) << 63
			rangeMax = int64(^uint64(0) >> 1) // best representable upper bound at this width
		} else {
			rangeMin = -(int64(1) << (bits - 1))
			rangeMax = int64(1)<<bits - 1
		}
		if lo >= rangeMin && hi <= rangeMax {
			return Layout{Size: size, Align: size}
		}
	}
	return Layout{Size: 8, Align: 8}
}
