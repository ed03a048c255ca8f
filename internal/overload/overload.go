// Package overload implements the overload resolution algorithm of
// spec.md §4.4: given a function name, argument types, and a Model's
// OverloadMap, pick the single most specific matching function, or
// report why none qualifies. It is grounded on the teacher's
// InstanceEnv.Lookup (internal/types/instances.go) — both resolve a
// name against a closed set of candidates and report a structured
// "nothing matched" error — generalised from "one constrained method
// per type class" to "one named overload set with polymorphic,
// subtype-aware candidates."
package overload

import (
	"fmt"

	"github.com/shackle-lang/shackle/internal/diag"
	"github.com/shackle-lang/shackle/internal/ident"
	"github.com/shackle-lang/shackle/internal/thir"
	"github.com/shackle-lang/shackle/internal/ty"
)

// Candidate is a function from the overload set paired with its
// instantiated signature for this call site.
type Candidate struct {
	Function  thir.FunctionID
	Signature ty.Type // Kind == Function
	Subst     map[string]ty.Type
	IsPoly    bool
	HasBody   bool
	// ConstraintWeight counts how many varifiable/enumerable/indexable
	// constraints this candidate's ty-vars carry, used to prefer the
	// more constrained of two otherwise-equivalent polymorphic candidates.
	ConstraintWeight int
}

func (c *Candidate) paramTypes() []ty.Type { return c.Signature.Params }

// rejection records why one candidate was filtered out, surfaced in a
// NoMatchingFunction report.
type rejection struct {
	Function thir.FunctionID
	Code     string
	Reason   string
}

// Resolve picks the single best-matching function named name from m's
// overload set for the given argument types.
func Resolve(m *thir.Model, om thir.OverloadMap, name ident.ID, argTypes []ty.Type) (*Candidate, error) {
	set := om[name]
	var candidates []*Candidate
	var rejections []rejection

	for _, fid := range set {
		fn := m.Functions.Get(fid)
		cand, rej := tryCandidate(m, fn, fid, argTypes)
		if rej != nil {
			rejections = append(rejections, *rej)
			continue
		}
		candidates = append(candidates, cand)
	}

	if len(candidates) == 0 {
		return nil, noMatchingFunction(name, rejections)
	}

	candidates = eliminate(candidates)

	if len(candidates) > 1 {
		return nil, ambiguousOverloading(name, candidates)
	}
	return candidates[0], nil
}

func tryCandidate(m *thir.Model, fn thir.Function, fid thir.FunctionID, argTypes []ty.Type) (*Candidate, *rejection) {
	if len(fn.Params) != len(argTypes) {
		return nil, &rejection{fid, diag.OVL003, fmt.Sprintf("expected %d argument(s), got %d", len(fn.Params), len(argTypes))}
	}

	paramTypes := make([]ty.Type, len(fn.Params))
	for i, pid := range fn.Params {
		paramTypes[i] = m.Declarations.Get(pid).Ty()
	}

	tv := make(map[string][]ty.Type)
	for i, pt := range paramTypes {
		if !matchParam(argTypes[i], pt, tv) {
			return nil, &rejection{fid, diag.OVL004, fmt.Sprintf("argument %d: %s is not compatible with %s", i+1, argTypes[i], pt)}
		}
	}

	subst := make(map[string]ty.Type)
	weight := 0
	for _, tvar := range fn.TyParams {
		occurrences, found := tv[tvar.ID]
		if !found {
			return nil, &rejection{fid, diag.INST001, fmt.Sprintf("ty-var $%s is not constrained by any argument position", tvar.ID)}
		}
		mss, ok := ty.MSS(occurrences...)
		if !ok {
			return nil, &rejection{fid, diag.INST001, fmt.Sprintf("ty-var $%s has no most-specific-supertype across its occurrences", tvar.ID)}
		}
		if tvar.Varifiable && !ty.Varifiable(mss) {
			return nil, &rejection{fid, diag.INST002, fmt.Sprintf("ty-var $%s requires a varifiable type, got %s", tvar.ID, mss)}
		}
		if tvar.Enumerable && !ty.Enumerable(mss) {
			return nil, &rejection{fid, diag.INST002, fmt.Sprintf("ty-var $%s requires an enumerable type, got %s", tvar.ID, mss)}
		}
		if tvar.Indexable && !ty.Indexable(mss) {
			return nil, &rejection{fid, diag.INST002, fmt.Sprintf("ty-var $%s requires an indexable type, got %s", tvar.ID, mss)}
		}
		subst[tvar.ID] = mss
		weight += constraintCount(tvar)
	}

	instParams := make([]ty.Type, len(paramTypes))
	for i, p := range paramTypes {
		instParams[i] = p.Substitute(subst)
	}
	instRet := fn.ReturnDomain.Ty.Substitute(subst)

	return &Candidate{
		Function:         fid,
		Signature:        ty.NewFunction(instParams, instRet),
		Subst:            subst,
		IsPoly:           fn.IsPolymorphic(),
		HasBody:          fn.Body.Valid(),
		ConstraintWeight: weight,
	}, nil
}

func constraintCount(v ty.TVar) int {
	n := 0
	if v.Varifiable {
		n++
	}
	if v.Enumerable {
		n++
	}
	if v.Indexable {
		n++
	}
	return n
}

// matchParam matches argType against a parameter type that may itself
// contain ty-vars: if it does, argType's structure is walked alongside
// it collecting per-ty-var instantiation candidates; otherwise plain
// subtyping (spec §3.2) decides compatibility.
func matchParam(arg, param ty.Type, tv map[string][]ty.Type) bool {
	if containsTyVar(param) {
		return collect(arg, param, tv)
	}
	return ty.Leq(arg, param)
}

func containsTyVar(t ty.Type) bool {
	switch t.Kind {
	case ty.TyVar:
		return true
	case ty.Set:
		return containsTyVar(*t.Elem)
	case ty.Array:
		return containsTyVar(*t.Index) || containsTyVar(*t.Elem)
	case ty.Tuple:
		for _, e := range t.Elems {
			if containsTyVar(e) {
				return true
			}
		}
		return false
	case ty.Record:
		for _, f := range t.Fields {
			if containsTyVar(f.Type) {
				return true
			}
		}
		return false
	case ty.Function:
		for _, p := range t.Params {
			if containsTyVar(p) {
				return true
			}
		}
		return containsTyVar(*t.Ret)
	default:
		return false
	}
}

// collect walks arg alongside param, recording one instantiation
// candidate per ty-var occurrence in param. Arrays and sets recurse on
// element type; tuples and records recurse componentwise; function
// types recurse contravariantly on params and covariantly on return;
// an array or function argument never unifies with a bare ty-var
// (spec §4.4).
func collect(arg, param ty.Type, tv map[string][]ty.Type) bool {
	if param.Kind == ty.TyVar {
		// Arrays and function types cannot unify with a ty-var.
		if arg.Kind == ty.Array || arg.Kind == ty.Function {
			return false
		}
		if arg.Inst == ty.Var && !param.TVar.Varifiable {
			return false
		}
		tv[param.TVar.ID] = append(tv[param.TVar.ID], arg.NonOptType().WithInst(ty.Par))
		return true
	}
	if arg.Kind != param.Kind {
		return false
	}
	switch param.Kind {
	case ty.Enum:
		return arg.Enum == param.Enum
	case ty.Set:
		return collect(*arg.Elem, *param.Elem, tv)
	case ty.Array:
		return collect(*arg.Index, *param.Index, tv) && collect(*arg.Elem, *param.Elem, tv)
	case ty.Tuple:
		if len(arg.Elems) != len(param.Elems) {
			return false
		}
		for i := range param.Elems {
			if !collect(arg.Elems[i], param.Elems[i], tv) {
				return false
			}
		}
		return true
	case ty.Record:
		for _, pf := range param.Fields {
			af, ok := fieldByName(arg.Fields, pf.Name)
			if !ok || !collect(af, pf.Type, tv) {
				return false
			}
		}
		return true
	case ty.Function:
		if len(arg.Params) != len(param.Params) {
			return false
		}
		for i := range param.Params {
			if !collect(arg.Params[i], param.Params[i], tv) {
				return false
			}
		}
		return collect(*arg.Ret, *param.Ret, tv)
	default:
		return true
	}
}

func fieldByName(fields []ty.Field, name string) (ty.Type, bool) {
	for _, f := range fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	return ty.Type{}, false
}

// containsBottom reports whether t transitively mentions the bottom
// type, used to make error-typed candidates lose to error-free ones.
func containsBottom(t ty.Type) bool {
	switch t.Kind {
	case ty.Bottom:
		return true
	case ty.Set:
		return containsBottom(*t.Elem)
	case ty.Array:
		return containsBottom(*t.Index) || containsBottom(*t.Elem)
	case ty.Tuple:
		for _, e := range t.Elems {
			if containsBottom(e) {
				return true
			}
		}
		return false
	case ty.Record:
		for _, f := range t.Fields {
			if containsBottom(f.Type) {
				return true
			}
		}
		return false
	case ty.Function:
		for _, p := range t.Params {
			if containsBottom(p) {
				return true
			}
		}
		return containsBottom(*t.Ret)
	default:
		return false
	}
}

func hasBottomParam(c *Candidate) bool {
	for _, p := range c.paramTypes() {
		if containsBottom(p) {
			return true
		}
	}
	return false
}

// acceptsParams reports whether a's parameters are each a supertype of
// (or equal to) b's corresponding parameter, i.e. a could be called
// wherever b can.
func acceptsParams(a, b *Candidate) bool {
	ap, bp := a.paramTypes(), b.paramTypes()
	if len(ap) != len(bp) {
		return false
	}
	for i := range ap {
		if !ty.Leq(bp[i], ap[i]) {
			return false
		}
	}
	return true
}

// eliminate runs the pairwise specificity elimination of spec §4.4
// step 3: a strictly more general candidate is dropped in favour of a
// strictly more specific one; equivalent candidates are broken by the
// concrete-over-polymorphic, more-constrained-ty-vars, and
// has-a-body tie-break chain; candidates with bottom-tainted
// parameters always lose to error-free ones.
func eliminate(candidates []*Candidate) []*Candidate {
	eliminated := make([]bool, len(candidates))
	for i := range candidates {
		for j := range candidates {
			if i == j || eliminated[i] || eliminated[j] {
				continue
			}
			a, b := candidates[i], candidates[j]

			aBottom, bBottom := hasBottomParam(a), hasBottomParam(b)
			if aBottom && !bBottom {
				eliminated[i] = true
				continue
			}
			if bBottom && !aBottom {
				continue
			}

			aAcceptsB, bAcceptsA := acceptsParams(a, b), acceptsParams(b, a)
			switch {
			case aAcceptsB && !bAcceptsA:
				eliminated[i] = true
			case bAcceptsA && !aAcceptsB:
				// b is more specific; nothing to do here, handled when (j,i) is visited.
			case aAcceptsB && bAcceptsA:
				if winner, ok := breakTie(a, b); ok {
					if winner == b {
						eliminated[i] = true
					} else {
						eliminated[j] = true
					}
				}
			}
		}
	}
	var out []*Candidate
	for i, c := range candidates {
		if !eliminated[i] {
			out = append(out, c)
		}
	}
	return out
}

// breakTie applies the concrete-over-poly, more-constrained,
// has-a-body chain to two candidates that accept each other's
// parameters. ok is false when the tie is genuine and both survive.
func breakTie(a, b *Candidate) (winner *Candidate, ok bool) {
	if a.IsPoly != b.IsPoly {
		if a.IsPoly {
			return b, true
		}
		return a, true
	}
	if a.IsPoly && b.IsPoly && a.ConstraintWeight != b.ConstraintWeight {
		if a.ConstraintWeight > b.ConstraintWeight {
			return a, true
		}
		return b, true
	}
	if a.HasBody != b.HasBody {
		if a.HasBody {
			return a, true
		}
		return b, true
	}
	return nil, false
}

func noMatchingFunction(name ident.ID, rejections []rejection) error {
	r := diag.New(diag.OVL001, fmt.Sprintf("no matching function for identifier %d", name), nil)
	for i, rej := range rejections {
		r.WithData(fmt.Sprintf("candidate[%d]", i), fmt.Sprintf("%v: %s (%s)", rej.Function, rej.Reason, rej.Code))
	}
	return diag.WrapReport(r)
}

func ambiguousOverloading(name ident.ID, remaining []*Candidate) error {
	r := diag.New(diag.OVL002, fmt.Sprintf("ambiguous overloading for identifier %d", name), nil)
	for i, c := range remaining {
		r.WithData(fmt.Sprintf("candidate[%d]", i), fmt.Sprintf("%v: %s", c.Function, c.Signature))
	}
	return diag.WrapReport(r)
}
