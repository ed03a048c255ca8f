// Package diag provides centralized error code definitions for the
// core compiler's resolution, specialisation, dispatch, and erasure
// passes. All error codes follow a consistent phase-coded taxonomy,
// directly modelled on the teacher's internal/errors code registry.
package diag

// Error code constants organized by phase (spec.md §7).
const (
	// ============================================================
	// Resolution errors (RES###) — model/registry lookups
	// ============================================================

	// RES001 indicates a dangling arena index was dereferenced.
	RES001 = "RES001"

	// RES002 indicates a top-level identifier has no binding.
	RES002 = "RES002"

	// ============================================================
	// Overloading errors (OVL###)
	// ============================================================

	// OVL001 indicates no candidate overload accepts the given argument types.
	OVL001 = "OVL001"

	// OVL002 indicates more than one candidate overload survived specificity elimination.
	OVL002 = "OVL002"

	// OVL003 indicates the call supplied the wrong number of arguments.
	OVL003 = "OVL003"

	// OVL004 indicates an argument's type is incompatible with its parameter.
	OVL004 = "OVL004"

	// OVL005 indicates two overloads are mutually more-specific and both
	// have bodies, or equivalent signatures with incompatible returns.
	OVL005 = "OVL005"

	// OVL006 indicates a less-specific overload's return type is not
	// compatible with a more-specific overload it subtypes.
	OVL006 = "OVL006"

	// ============================================================
	// Instantiation errors (INST###)
	// ============================================================

	// INST001 indicates a ty-var's instantiation candidates have no MSS.
	INST001 = "INST001"

	// INST002 indicates a ty-var's varifiable/enumerable/indexable constraint was violated.
	INST002 = "INST002"

	// ============================================================
	// Specialisation errors (SPEC###)
	// ============================================================

	// SPEC001 indicates the specialisation worklist exceeded its recursion depth bound.
	SPEC001 = "SPEC001"

	// ============================================================
	// Dispatch errors (DISP###)
	// ============================================================

	// DISP001 indicates the specificity DAG contains a cycle.
	DISP001 = "DISP001"

	// ============================================================
	// Erasure errors (ERA###)
	// ============================================================

	// ERA001 indicates a type-inference pass could not assign a type to an expression.
	ERA001 = "ERA001"

	// ============================================================
	// Invariant violations (INV###) — panic, never reported
	// ============================================================

	// INV001 indicates an internal invariant was violated; there is no recovery.
	INV001 = "INV001"
)

// Info provides structured information about an error code.
type Info struct {
	Code        string
	Phase       string
	Category    string
	Description string
}

// Registry maps error codes to their information.
var Registry = map[string]Info{
	RES001: {RES001, "resolution", "invariant", "Dangling arena index"},
	RES002: {RES002, "resolution", "lookup", "Unbound top-level identifier"},

	OVL001: {OVL001, "overload", "resolution", "No matching function"},
	OVL002: {OVL002, "overload", "resolution", "Ambiguous overloading"},
	OVL003: {OVL003, "overload", "arity", "Argument count mismatch"},
	OVL004: {OVL004, "overload", "type", "Argument type mismatch"},
	OVL005: {OVL005, "overload", "definition", "Function already defined"},
	OVL006: {OVL006, "overload", "definition", "Incompatible return type"},

	INST001: {INST001, "instantiation", "lattice", "Incompatible type-inst variable"},
	INST002: {INST002, "instantiation", "constraint", "Ty-var constraint violated"},

	SPEC001: {SPEC001, "specialisation", "recursion", "Type specialisation recursion limit"},

	DISP001: {DISP001, "dispatch", "structure", "Specificity cycle"},

	ERA001: {ERA001, "erasure", "type", "Type inference failed during erasure"},

	INV001: {INV001, "invariant", "panic", "Internal invariant violated"},
}

// GetInfo returns information about an error code.
func GetInfo(code string) (Info, bool) {
	info, exists := Registry[code]
	return info, exists
}

// IsOverloadError reports whether code belongs to the overload-resolution phase.
func IsOverloadError(code string) bool {
	info, exists := GetInfo(code)
	return exists && info.Phase == "overload"
}

// IsSpecialisationError reports whether code belongs to the specialisation phase.
func IsSpecialisationError(code string) bool {
	info, exists := GetInfo(code)
	return exists && info.Phase == "specialisation"
}

// IsDispatchError reports whether code belongs to the dispatch phase.
func IsDispatchError(code string) bool {
	info, exists := GetInfo(code)
	return exists && info.Phase == "dispatch"
}

// IsErasureError reports whether code belongs to the erasure phase.
func IsErasureError(code string) bool {
	info, exists := GetInfo(code)
	return exists && info.Phase == "erasure"
}
