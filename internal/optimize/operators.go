package optimize

// crossover combines two parents into one offspring using the configured
// scheme. Chromosomes shorter than two genes are copied from the first
// parent.
func (o *Optimizer) crossover(a, b []float64) []float64 {
	child := make([]float64, len(a))
	if len(a) < 2 {
		copy(child, a)
		return child
	}

	switch o.cfg.Crossover {
	case CrossoverTwoPoint:
		first := 1 + o.rng.Intn(len(a)-1)
		second := 1 + o.rng.Intn(len(a)-1)
		if first > second {
			first, second = second, first
		}
		copy(child, a[:first])
		copy(child[first:], b[first:second])
		copy(child[second:], a[second:])
	case CrossoverUniform:
		for i := range child {
			if o.rng.Float64() < 0.5 {
				child[i] = a[i]
			} else {
				child[i] = b[i]
			}
		}
	default:
		// single point: cut uniform in [1, len-1], prefix from a, suffix
		// from b
		cut := 1 + o.rng.Intn(len(a)-1)
		copy(child, a[:cut])
		copy(child[cut:], b[cut:])
	}
	return child
}

// mutate changes a configured fraction of the offspring's genes in place,
// chosen uniformly without replacement.
func (o *Optimizer) mutate(genes []float64) {
	if len(genes) == 0 || o.cfg.MutationPercent <= 0 {
		return
	}
	count := int(o.cfg.MutationPercent*float64(len(genes)) + 0.5)
	if count < 1 {
		count = 1
	}
	if count > len(genes) {
		count = len(genes)
	}

	for _, g := range o.rng.Perm(len(genes))[:count] {
		switch o.cfg.MutationMode {
		case MutationPerturb:
			step := o.rng.UniformFloat64(-o.cfg.MutationMaxDelta, o.cfg.MutationMaxDelta)
			genes[g] = o.bounds.Clamp(g, genes[g]+step)
		default:
			genes[g] = o.rng.UniformFloat64(o.bounds.Low(g), o.bounds.High(g))
		}
	}
}
