package mutator

// MutateMany produces exactly numMutants mutants into *out (cleared on
// entry). Each mutant starts as a clone of a uniformly chosen input;
// with probability crossoverLevel/100 it is then crossed over with
// another random input; finally it is mutated. Every produced mutant
// is guaranteed non-empty (spec §4.4): a mutation attempt that would
// leave a mutant empty is discarded in favor of its pre-mutation form,
// which is itself always non-empty since inputs are always non-empty
// and crossover only grows or partially overwrites.
func (m *Mutator) MutateMany(inputs [][]byte, numMutants int, crossoverLevel int, out *[][]byte) {
	*out = (*out)[:0]
	if len(inputs) == 0 {
		return
	}
	for i := 0; i < numMutants; i++ {
		src := inputs[m.rng.Intn(len(inputs))]
		mutant := append([]byte{}, src...)

		if crossoverLevel > 0 && m.rng.Bool(crossoverLevel, 100) {
			other := inputs[m.rng.Intn(len(inputs))]
			m.CrossOver(&mutant, other)
		}

		beforeMutate := append([]byte{}, mutant...)
		if !m.Mutate(&mutant) || len(mutant) == 0 {
			mutant = beforeMutate
		}
		if len(mutant) == 0 {
			mutant = append([]byte{}, src...)
		}
		*out = append(*out, mutant)
	}
}
