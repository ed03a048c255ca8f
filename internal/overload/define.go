package overload

import (
	"fmt"
	"sort"

	"github.com/shackle-lang/shackle/internal/diag"
	"github.com/shackle-lang/shackle/internal/ident"
	"github.com/shackle-lang/shackle/internal/thir"
	"github.com/shackle-lang/shackle/internal/ty"
)

// CheckDefinitions validates every overload set in om against the
// definition-time rules of spec §7: two overloads that are mutually
// more-specific may not both carry bodies (and must agree on their
// return type), and a less-specific overload's return type must be a
// supertype of every more-specific overload it subsumes. Resolution
// errors are per-call-site and live in Resolve; these are per-model and
// run once, before any transform.
func CheckDefinitions(m *thir.Model, om thir.OverloadMap) []*diag.Report {
	names := make([]ident.ID, 0, len(om))
	for name := range om {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	var reports []*diag.Report
	for _, name := range names {
		fids := om[name]
		if len(fids) < 2 {
			continue
		}
		for i := 0; i < len(fids); i++ {
			for j := i + 1; j < len(fids); j++ {
				if r := checkPair(m, name, fids[i], fids[j]); r != nil {
					reports = append(reports, r)
				}
			}
		}
	}
	return reports
}

func paramTypesOf(m *thir.Model, fn thir.Function) []ty.Type {
	out := make([]ty.Type, len(fn.Params))
	for i, p := range fn.Params {
		out[i] = m.Declarations.Get(p).Ty()
	}
	return out
}

func allLeq(sub, sup []ty.Type) bool {
	for i := range sub {
		if !ty.Leq(sub[i], sup[i]) {
			return false
		}
	}
	return true
}

func checkPair(m *thir.Model, name ident.ID, a, b thir.FunctionID) *diag.Report {
	fa, fb := m.Functions.Get(a), m.Functions.Get(b)
	if len(fa.Params) != len(fb.Params) {
		return nil
	}
	pa, pb := paramTypesOf(m, fa), paramTypesOf(m, fb)

	aAcceptsB := allLeq(pb, pa)
	bAcceptsA := allLeq(pa, pb)
	ra, rb := fa.ReturnDomain.Ty, fb.ReturnDomain.Ty

	switch {
	case aAcceptsB && bAcceptsA:
		if fa.Body.Valid() && fb.Body.Valid() {
			return alreadyDefined(name, a, b, "both overloads have a body")
		}
		if !ty.Leq(ra, rb) && !ty.Leq(rb, ra) {
			return alreadyDefined(name, a, b,
				fmt.Sprintf("equivalent signatures with incompatible return types %s and %s", ra, rb))
		}
	case aAcceptsB:
		// b is strictly more specific; a's return must cover b's.
		if !ty.Leq(rb, ra) {
			return incompatibleReturn(name, a, b, ra, rb)
		}
	case bAcceptsA:
		if !ty.Leq(ra, rb) {
			return incompatibleReturn(name, b, a, rb, ra)
		}
	}
	return nil
}

func alreadyDefined(name ident.ID, first, other thir.FunctionID, why string) *diag.Report {
	r := diag.New(diag.OVL005, fmt.Sprintf("function %d already defined: %s", name, why), nil)
	r.WithData("first", fmt.Sprintf("%v", first))
	r.WithData("other", fmt.Sprintf("%v", other))
	return r
}

func incompatibleReturn(name ident.ID, general, specific thir.FunctionID, generalRet, specificRet ty.Type) *diag.Report {
	r := diag.New(diag.OVL006,
		fmt.Sprintf("overload of function %d returns %s, not a supertype of the more specific overload's %s",
			name, generalRet, specificRet), nil)
	r.WithData("general", fmt.Sprintf("%v", general))
	r.WithData("specific", fmt.Sprintf("%v", specific))
	return r
}
