package fallback

// dbscan1D runs density clustering over scalar values (here: line lengths).
// Returns a label per value; -1 marks noise. Classic DBSCAN with the
// quadratic neighbourhood query, which is fine for the few hundred lines a
// statement page yields.
func dbscan1D(values []float64, eps float64, minPts int) []int {
	const (
		unvisited = -2
		noise     = -1
	)

	labels := make([]int, len(values))
	for i := range labels {
		labels[i] = unvisited
	}

	neighbours := func(i int) []int {
		var out []int
		for j, v := range values {
			if abs(v-values[i]) <= eps {
				out = append(out, j)
			}
		}
		return out
	}

	cluster := 0
	for i := range values {
		if labels[i] != unvisited {
			continue
		}
		seeds := neighbours(i)
		if len(seeds) < minPts {
			labels[i] = noise
			continue
		}
		labels[i] = cluster
		for k := 0; k < len(seeds); k++ {
			j := seeds[k]
			if labels[j] == noise {
				labels[j] = cluster
			}
			if labels[j] != unvisited {
				continue
			}
			labels[j] = cluster
			more := neighbours(j)
			if len(more) >= minPts {
				seeds = append(seeds, more...)
			}
		}
		cluster++
	}
	return labels
}

// largestCluster returns the label with the most members, or -1 when
// everything is noise.
func largestCluster(labels []int) int {
	counts := map[int]int{}
	for _, l := range labels {
		if l >= 0 {
			counts[l]++
		}
	}
	best, bestN := -1, 0
	for l, n := range counts {
		if n > bestN {
			best, bestN = l, n
		}
	}
	return best
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
