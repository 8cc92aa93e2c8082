package kernel

// GaussianStdForSize searches by bisection, in [0, 2*size], for the
// largest standard deviation such that a Gaussian kernel of the given
// size has outermost-row mass no greater than tailMass — shadow callers
// use this with tailMass = 0.5/256 so the kernel's visible blur radius
// matches its allocated padding without a visible hard edge at the
// kernel boundary.
func GaussianStdForSize(size int, tailMass float64) (*Kernel, float64) {
	lo, hi := 0.0, float64(2*size)

	outerRowSum := func(std float64) float64 {
		k := NewGaussianStd(size, std)
		k.Preprocess()
		return k.SumKernel(0, 0, size, 1)
	}

	// outerRowSum(0) is a single center pixel with all mass at the
	// middle row, so its row-0 sum is 0 < tailMass; outerRowSum(hi)
	// should exceed tailMass for any reasonable size. If it does not,
	// hi is the best available bound.
	for i := 0; i < 64; i++ {
		mid := (lo + hi) / 2
		if outerRowSum(mid) <= tailMass {
			lo = mid
		} else {
			hi = mid
		}
	}

	k := NewGaussianStd(size, lo)
	k.Preprocess()
	return k, lo
}
