package kernel

import "testing"

func TestSumKernelMatchesDirectSum(t *testing.T) {
	k := NewGaussian(5)
	k.Preprocess()

	cases := []struct{ x, y, w, h int }{
		{0, 0, k.W, k.H},
		{2, 2, 4, 4},
		{-3, -3, 6, 6},
		{k.W - 2, k.H - 2, 10, 10},
	}
	for _, c := range cases {
		want := k.Sum(c.x, c.y, c.w, c.h)
		got := k.SumKernel(c.x, c.y, c.w, c.h)
		if diff := want - got; diff > 1e-9 || diff < -1e-9 {
			t.Fatalf("SumKernel(%+v) = %v, want %v", c, got, want)
		}
	}
}

func TestGaussianKernelNormalized(t *testing.T) {
	k := NewGaussian(8)
	k.Preprocess()
	total := k.SumKernel(0, 0, k.W, k.H)
	if total < 1-1e-9 || total > 1 {
		t.Fatalf("expected normalized kernel sum in [1-eps, 1], got %v", total)
	}
}

func TestGaussianStdForSizeTailBound(t *testing.T) {
	size := 21
	tail := 0.5 / 256
	k, _ := GaussianStdForSize(size, tail)
	rowSum := k.SumKernel(0, 0, size, 1)
	if rowSum > tail+1e-9 {
		t.Fatalf("outer row sum %v exceeds tail bound %v", rowSum, tail)
	}
}

func TestBoxKernelUnnormalized(t *testing.T) {
	k := NewBox(3)
	k.Preprocess()
	total := k.SumKernel(0, 0, k.W, k.H)
	want := float64(k.W * k.H)
	if total != want {
		t.Fatalf("expected unnormalized box sum %v, got %v", want, total)
	}
}

func TestSumKernelNormalizedClamps(t *testing.T) {
	k := NewGaussian(4)
	k.Preprocess()
	got := k.SumKernelNormalized(0, 0, k.W, k.H)
	if got < 0 || got > 1 {
		t.Fatalf("expected clamped result in [0,1], got %v", got)
	}
}
