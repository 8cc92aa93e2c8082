// Package kernel builds 2D convolution kernels — Gaussian and box — and
// preprocesses them into summed-area tables so that rectangle sums over
// the kernel can be answered in four lookups instead of a full
// convolution. This underlies both the blur backend's request to create a
// blur context and the software shadow path's O(1)-per-pixel synthesis.
package kernel

import "math"

// Kernel is a convolution kernel of odd width and height, stored as a
// contiguous row-major buffer of W*H float64 weights plus an optional
// summed-area table (RSum) of the same shape. RSum is nil until
// Preprocess is called.
type Kernel struct {
	W, H int
	Data []float64
	RSum []float64
}

// New allocates an uninitialized kernel of size w x h. Both must be odd
// and positive.
func New(w, h int) *Kernel {
	return &Kernel{W: w, H: h, Data: make([]float64, w*h)}
}

// At returns the weight at (x, y) in kernel-local coordinates.
func (k *Kernel) At(x, y int) float64 {
	return k.Data[y*k.W+x]
}

// Set stores the weight at (x, y) in kernel-local coordinates.
func (k *Kernel) Set(x, y int, v float64) {
	k.Data[y*k.W+x] = v
}

// CenterX and CenterY return the kernel's center cell, (W-1)/2 and (H-1)/2.
func (k *Kernel) CenterX() int { return (k.W - 1) / 2 }
func (k *Kernel) CenterY() int { return (k.H - 1) / 2 }

// NewGaussian builds a square Gaussian kernel of radius r: size = 2r+1,
// weight g(r,x,y) = exp(-(x²+y²)/(2r²)) / (2πr²) for r>0, uniform 1 for
// r==0, then normalized so the weights sum to 1.
func NewGaussian(r int) *Kernel {
	if r < 0 {
		r = 0
	}
	size := 2*r + 1
	k := New(size, size)
	c := r

	if r == 0 {
		k.Data[0] = 1
		return k
	}

	rf := float64(r)
	denom := 2 * math.Pi * rf * rf
	sum := 0.0
	for y := 0; y < size; y++ {
		dy := float64(y - c)
		for x := 0; x < size; x++ {
			dx := float64(x - c)
			v := math.Exp(-(dx*dx+dy*dy)/(2*rf*rf)) / denom
			k.Set(x, y, v)
			sum += v
		}
	}
	k.normalize(sum)
	return k
}

// NewGaussianStd builds a square Gaussian kernel of the given size (must
// be odd) using an explicit standard deviation instead of deriving sigma
// from the radius. Used by [GaussianStdForSize] to search for the std
// that satisfies a tail-mass bound.
func NewGaussianStd(size int, std float64) *Kernel {
	k := New(size, size)
	c := (size - 1) / 2

	if std <= 0 {
		k.Data[c*size+c] = 1
		return k
	}

	sum := 0.0
	twoStdSq := 2 * std * std
	for y := 0; y < size; y++ {
		dy := float64(y - c)
		for x := 0; x < size; x++ {
			dx := float64(x - c)
			v := math.Exp(-(dx*dx + dy*dy) / twoStdSq)
			k.Set(x, y, v)
			sum += v
		}
	}
	k.normalize(sum)
	return k
}

func (k *Kernel) normalize(sum float64) {
	if sum <= 0 {
		return
	}
	inv := 1.0 / sum
	for i := range k.Data {
		k.Data[i] *= inv
	}
}

// NewBox builds a square box (uniform) kernel of radius r. Unlike
// Gaussian kernels, box kernels are left unnormalized — their sum is
// (2r+1)^2 — matching source filters that apply the 1/(w*h) division at
// sampling time.
func NewBox(r int) *Kernel {
	if r < 0 {
		r = 0
	}
	size := 2*r + 1
	k := New(size, size)
	for i := range k.Data {
		k.Data[i] = 1
	}
	return k
}

// Sum returns Σ data[j,i] over (i,j) in the kernel-local rectangle,
// computed directly (no summed-area table required). Used to validate
// Preprocess and for kernels too small to be worth preprocessing.
func (k *Kernel) Sum(x, y, w, h int) float64 {
	x0, y0, x1, y1 := k.clip(x, y, w, h)
	if x1 <= x0 || y1 <= y0 {
		return 0
	}
	total := 0.0
	for yy := y0; yy < y1; yy++ {
		row := yy * k.W
		for xx := x0; xx < x1; xx++ {
			total += k.Data[row+xx]
		}
	}
	return total
}

func (k *Kernel) clip(x, y, w, h int) (x0, y0, x1, y1 int) {
	x0, y0 = x, y
	x1, y1 = x+w, y+h
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 > k.W {
		x1 = k.W
	}
	if y1 > k.H {
		y1 = k.H
	}
	return
}
