package flames

// TransitionTable holds, per "from" xform, NextAppliedXFormTableSize slots
// filled with successor indices in proportion to their weights. Drawing a
// uniform slot picks the next xform in O(1).
type TransitionTable struct {
	n    int
	rows [][]int32
}

// BuildTransitionTable quantizes weights. Xform j's weight after xform i is
// the modified weight i→j when one is set, otherwise j's own weight; negative
// and non-finite weights count as zero. A row whose weights are all zero
// falls back to a uniform choice.
func BuildTransitionTable(xforms []*XForm) (*TransitionTable, error) {
	n := len(xforms)
	if n == 0 {
		return nil, ErrNoXForms
	}
	t := &TransitionTable{n: n, rows: make([][]int32, n)}
	w := make([]Real, n)
	for i, from := range xforms {
		total := 0.0
		for j, to := range xforms {
			wt := to.Weight
			if m, ok := from.ModifiedWeight(j); ok {
				wt = m
			}
			if !(wt > 0) || !isFinite(wt) {
				wt = 0
			}
			w[j] = wt
			total += wt
		}
		t.rows[i] = quantizeWeights(w, total)
	}
	return t, nil
}

func quantizeWeights(w []Real, total Real) []int32 {
	row := make([]int32, NextAppliedXFormTableSize)
	if !(total > 0) || !isFinite(total) {
		for k := range row {
			row[k] = int32(k % len(w))
		}
		return row
	}
	last := 0
	for j, x := range w {
		if x > 0 {
			last = j
		}
	}
	j := 0
	for j < last && w[j] == 0 {
		j++
	}
	cdf := w[j]
	for k := range row {
		target := (Real(k) + 0.5) / NextAppliedXFormTableSize * total
		for j < last && target >= cdf {
			j++
			cdf += w[j]
		}
		row[k] = int32(j)
	}
	return row
}

// Next returns the successor of xform `from` for a slot in [0, NextAppliedXFormTableSize).
func (t *TransitionTable) Next(from, slot int) int {
	return int(t.rows[from][slot])
}

func (t *TransitionTable) Len() int { return t.n }

// Row exposes a copy of the slots for one source xform.
func (t *TransitionTable) Row(from int) []int32 {
	return append([]int32(nil), t.rows[from]...)
}
