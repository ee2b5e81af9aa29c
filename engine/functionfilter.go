package engine

import "strings"

// functionFilter narrows which admitted inputs become future mutation
// seeds without affecting whether their coverage is durably recorded,
// mirroring ground-truth centipede.cc's RunBatch: function_filter_
// gates only the call to corpus_.Add, while frequency bookkeeping and
// the corpus/features file appends happen unconditionally. A real
// build resolves the filter against a compiled-in symbol table
// (function name per PC); this rewrite has no such table (see
// execproto/subprocess's coverage-derivation note), so it matches
// filter substrings against whatever diagnostic text the target
// printed for that input instead.
type functionFilter struct {
	needles []string
}

// newFunctionFilter parses env's function_filter option: a
// comma-separated list of substrings. An empty spec passes everything.
func newFunctionFilter(spec string) functionFilter {
	if spec == "" {
		return functionFilter{}
	}
	parts := strings.Split(spec, ",")
	needles := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			needles = append(needles, p)
		}
	}
	return functionFilter{needles: needles}
}

// passes reports whether log mentions at least one of the filter's
// function names.
func (f functionFilter) passes(log string) bool {
	if len(f.needles) == 0 {
		return true
	}
	for _, n := range f.needles {
		if strings.Contains(log, n) {
			return true
		}
	}
	return false
}
