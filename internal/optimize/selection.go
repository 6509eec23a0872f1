package optimize

import "math"

// selectParents picks the configured number of parents from the evaluated
// population using the configured scheme.
func (o *Optimizer) selectParents() []individual {
	parents := make([]individual, 0, o.cfg.Parents)
	for len(parents) < o.cfg.Parents {
		switch o.cfg.Selection {
		case SelectionRoulette:
			parents = append(parents, o.population[o.rouletteIndex()])
		default:
			parents = append(parents, o.population[o.tournamentIndex()])
		}
	}
	return parents
}

// tournamentIndex draws TournamentK contestants and returns the index of the
// fittest. Fitness ties go to the contestant earlier in population order.
func (o *Optimizer) tournamentIndex() int {
	winner := -1
	for k := 0; k < o.cfg.TournamentK; k++ {
		candidate := o.rng.Intn(len(o.population))
		if winner < 0 {
			winner = candidate
			continue
		}
		cf, wf := o.population[candidate].fitness, o.population[winner].fitness
		if cf > wf || (cf == wf && candidate < winner) {
			winner = candidate
		}
	}
	return winner
}

// rouletteIndex draws an index with probability proportional to fitness,
// shifted so the weakest finite individual has weight zero. Penalized
// individuals (-Inf fitness) get weight zero; a flat population degenerates
// to a uniform draw.
func (o *Optimizer) rouletteIndex() int {
	lowest := math.Inf(1)
	for _, ind := range o.population {
		if !math.IsInf(ind.fitness, -1) && ind.fitness < lowest {
			lowest = ind.fitness
		}
	}

	weight := func(f float64) float64 {
		w := f - lowest
		if math.IsNaN(w) || w < 0 {
			return 0
		}
		return w
	}

	total := 0.0
	for _, ind := range o.population {
		total += weight(ind.fitness)
	}
	if total <= 0 || math.IsInf(total, 1) {
		return o.rng.Intn(len(o.population))
	}

	target := o.rng.Float64() * total
	acc := 0.0
	for i, ind := range o.population {
		acc += weight(ind.fitness)
		if target < acc {
			return i
		}
	}
	return len(o.population) - 1
}
