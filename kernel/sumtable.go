package kernel

// Preprocess fills RSum, the 2D prefix sum of Data, so that SumKernel can
// answer rectangle sums in four lookups instead of a full convolution:
//
//	rsum[y,x] = rsum[y-1,x] + rsum[y,x-1] - rsum[y-1,x-1] + data[y,x]
//
// Calling Preprocess more than once simply recomputes RSum from the
// current Data; it is safe to call after mutating Data in place.
func (k *Kernel) Preprocess() {
	if k.RSum == nil {
		k.RSum = make([]float64, k.W*k.H)
	}
	for y := 0; y < k.H; y++ {
		for x := 0; x < k.W; x++ {
			v := k.At(x, y)
			if x > 0 {
				v += k.RSum[y*k.W+x-1]
			}
			if y > 0 {
				v += k.RSum[(y-1)*k.W+x]
			}
			if x > 0 && y > 0 {
				v -= k.RSum[(y-1)*k.W+x-1]
			}
			k.RSum[y*k.W+x] = v
		}
	}
}

// rsumAt returns the prefix sum up to and including (x, y), treating
// out-of-range coordinates as the nearest in-range edge (negative
// coordinates contribute 0, coordinates past the kernel saturate at the
// last row/column).
func (k *Kernel) rsumAt(x, y int) float64 {
	if x < 0 || y < 0 {
		return 0
	}
	if x >= k.W {
		x = k.W - 1
	}
	if y >= k.H {
		y = k.H - 1
	}
	return k.RSum[y*k.W+x]
}

// SumKernel returns the sum of kernel weights over the rectangle (x, y,
// w, h) in kernel-local coordinates, clipped to the kernel's bounds, in
// O(1) via the summed-area table built by Preprocess. Preprocess must
// have been called first; otherwise SumKernel falls back to the direct
// O(w*h) sum.
func (k *Kernel) SumKernel(x, y, w, h int) float64 {
	if k.RSum == nil {
		return k.Sum(x, y, w, h)
	}

	x0, y0, x1, y1 := k.clip(x, y, w, h)
	if x1 <= x0 || y1 <= y0 {
		return 0
	}
	// Inclusive-exclusive rectangle sum via inclusion-exclusion over the
	// prefix sum evaluated at the four corners (x1-1, y1-1) etc.
	return k.rsumAt(x1-1, y1-1) - k.rsumAt(x0-1, y1-1) - k.rsumAt(x1-1, y0-1) + k.rsumAt(x0-1, y0-1)
}

// SumKernelNormalized is SumKernel additionally clamped into [0, 1], for
// callers that treat the result as a coverage/opacity fraction.
func (k *Kernel) SumKernelNormalized(x, y, w, h int) float64 {
	s := k.SumKernel(x, y, w, h)
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}
