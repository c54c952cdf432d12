package generator

import (
	"image"
	"image/color"
	"math"
)

// grayscale converts to 8-bit luminance using the standard Rec. 601 weights,
// re-anchoring the bounds at the origin.
func grayscale(src image.Image) *image.Gray {
	bounds := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			dst.Set(x-bounds.Min.X, y-bounds.Min.Y, color.GrayModel.Convert(src.At(x, y)))
		}
	}
	return dst
}

func toRGBA(src image.Image) *image.RGBA {
	bounds := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			dst.Set(x-bounds.Min.X, y-bounds.Min.Y, src.At(x, y))
		}
	}
	return dst
}

func invertGray(src *image.Gray) *image.Gray {
	dst := image.NewGray(src.Bounds())
	for i, v := range src.Pix {
		dst.Pix[i] = 255 - v
	}
	return dst
}

// dodgeBlend computes clamp(back / (255 - front) * 255) per pixel, the
// luminance compositing step behind every sketch style.
func dodgeBlend(front, back *image.Gray) *image.Gray {
	dst := image.NewGray(back.Bounds())
	for i := range back.Pix {
		f := front.Pix[i]
		if f >= 255 {
			dst.Pix[i] = 255
			continue
		}
		v := math.Round(float64(back.Pix[i]) * 255.0 / float64(255-f))
		dst.Pix[i] = clampByte(v)
	}
	return dst
}

// gaussianBlurGray applies a separable Gaussian blur with an odd kernel size,
// deriving sigma from the size the way OpenCV does. Edges clamp.
func gaussianBlurGray(src *image.Gray, ksize int) *image.Gray {
	if ksize%2 == 0 {
		ksize++
	}
	if ksize < 3 {
		return cloneGray(src)
	}

	kernel := gaussianKernel(ksize)
	radius := ksize / 2
	w, h := src.Bounds().Dx(), src.Bounds().Dy()

	horizontal := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sum float64
			for k := -radius; k <= radius; k++ {
				sum += kernel[k+radius] * float64(src.Pix[y*src.Stride+clampInt(x+k, 0, w-1)])
			}
			horizontal[y*w+x] = sum
		}
	}

	dst := image.NewGray(src.Bounds())
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sum float64
			for k := -radius; k <= radius; k++ {
				sum += kernel[k+radius] * horizontal[clampInt(y+k, 0, h-1)*w+x]
			}
			dst.Pix[y*dst.Stride+x] = clampByte(math.Round(sum))
		}
	}
	return dst
}

func gaussianKernel(ksize int) []float64 {
	sigma := 0.3*(float64(ksize-1)*0.5-1) + 0.8
	kernel := make([]float64, ksize)
	radius := ksize / 2

	var total float64
	for i := range kernel {
		d := float64(i - radius)
		kernel[i] = math.Exp(-d * d / (2 * sigma * sigma))
		total += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= total
	}
	return kernel
}

// edgeMap runs a Sobel gradient with double thresholding: magnitudes at or
// above the high threshold are edges, magnitudes between the thresholds count
// only when an 8-neighbor clears the high threshold.
func edgeMap(src *image.Gray, low, high int) *image.Gray {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	mag := make([]int, w*h)

	at := func(x, y int) int {
		return int(src.Pix[clampInt(y, 0, h-1)*src.Stride+clampInt(x, 0, w-1)])
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			gx := -at(x-1, y-1) + at(x+1, y-1) -
				2*at(x-1, y) + 2*at(x+1, y) -
				at(x-1, y+1) + at(x+1, y+1)
			gy := -at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1) +
				at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1)
			mag[y*w+x] = int(math.Round(math.Hypot(float64(gx), float64(gy))))
		}
	}

	dst := image.NewGray(src.Bounds())
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m := mag[y*w+x]
			switch {
			case m >= high:
				dst.Pix[y*dst.Stride+x] = 255
			case m >= low && hasStrongNeighbor(mag, w, h, x, y, high):
				dst.Pix[y*dst.Stride+x] = 255
			}
		}
	}
	return dst
}

func hasStrongNeighbor(mag []int, w, h, x, y, high int) bool {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx, ny := x+dx, y+dy
			if nx < 0 || ny < 0 || nx >= w || ny >= h {
				continue
			}
			if mag[ny*w+nx] >= high {
				return true
			}
		}
	}
	return false
}

func andGray(a, b *image.Gray) *image.Gray {
	dst := image.NewGray(a.Bounds())
	for i := range a.Pix {
		dst.Pix[i] = a.Pix[i] & b.Pix[i]
	}
	return dst
}

// sharpenGray convolves with the fixed high-pass kernel (center 9,
// neighbors -1). Edges clamp.
func sharpenGray(src *image.Gray) *image.Gray {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	dst := image.NewGray(src.Bounds())
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sum := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					v := int(src.Pix[clampInt(y+dy, 0, h-1)*src.Stride+clampInt(x+dx, 0, w-1)])
					if dx == 0 && dy == 0 {
						sum += 9 * v
					} else {
						sum -= v
					}
				}
			}
			dst.Pix[y*dst.Stride+x] = clampByte(float64(sum))
		}
	}
	return dst
}

// adjustGray applies output = clamp(alpha*input + beta).
func adjustGray(src *image.Gray, alpha, beta float64) *image.Gray {
	dst := image.NewGray(src.Bounds())
	for i, v := range src.Pix {
		dst.Pix[i] = clampByte(math.Round(alpha*float64(v) + beta))
	}
	return dst
}

func grayToRGBA(src *image.Gray) *image.RGBA {
	dst := image.NewRGBA(src.Bounds())
	for y := 0; y < src.Bounds().Dy(); y++ {
		for x := 0; x < src.Bounds().Dx(); x++ {
			v := src.Pix[y*src.Stride+x]
			i := y*dst.Stride + x*4
			dst.Pix[i] = v
			dst.Pix[i+1] = v
			dst.Pix[i+2] = v
			dst.Pix[i+3] = 255
		}
	}
	return dst
}

// reduceSaturation scales the S channel in HSV space by the given factor.
func reduceSaturation(src *image.RGBA, factor float64) *image.RGBA {
	dst := image.NewRGBA(src.Bounds())
	for y := 0; y < src.Bounds().Dy(); y++ {
		for x := 0; x < src.Bounds().Dx(); x++ {
			i := y*src.Stride + x*4
			hue, sat, val := rgbToHSV(src.Pix[i], src.Pix[i+1], src.Pix[i+2])
			r, g, b := hsvToRGB(hue, sat*factor, val)
			dst.Pix[i] = r
			dst.Pix[i+1] = g
			dst.Pix[i+2] = b
			dst.Pix[i+3] = src.Pix[i+3]
		}
	}
	return dst
}

// blendRGBA computes wa*a + wb*b per channel.
func blendRGBA(a, b *image.RGBA, wa, wb float64) *image.RGBA {
	dst := image.NewRGBA(a.Bounds())
	for i := range a.Pix {
		dst.Pix[i] = clampByte(math.Round(wa*float64(a.Pix[i]) + wb*float64(b.Pix[i])))
	}
	return dst
}

func rgbToHSV(r, g, b uint8) (float64, float64, float64) {
	rf, gf, bf := float64(r)/255, float64(g)/255, float64(b)/255
	maxC := math.Max(rf, math.Max(gf, bf))
	minC := math.Min(rf, math.Min(gf, bf))
	delta := maxC - minC

	var hue float64
	switch {
	case delta == 0:
		hue = 0
	case maxC == rf:
		hue = 60 * math.Mod((gf-bf)/delta, 6)
	case maxC == gf:
		hue = 60 * ((bf-rf)/delta + 2)
	default:
		hue = 60 * ((rf-gf)/delta + 4)
	}
	if hue < 0 {
		hue += 360
	}

	var sat float64
	if maxC > 0 {
		sat = delta / maxC
	}
	return hue, sat, maxC
}

func hsvToRGB(hue, sat, val float64) (uint8, uint8, uint8) {
	c := val * sat
	x := c * (1 - math.Abs(math.Mod(hue/60, 2)-1))
	m := val - c

	var rf, gf, bf float64
	switch {
	case hue < 60:
		rf, gf, bf = c, x, 0
	case hue < 120:
		rf, gf, bf = x, c, 0
	case hue < 180:
		rf, gf, bf = 0, c, x
	case hue < 240:
		rf, gf, bf = 0, x, c
	case hue < 300:
		rf, gf, bf = x, 0, c
	default:
		rf, gf, bf = c, 0, x
	}

	return clampByte(math.Round((rf + m) * 255)),
		clampByte(math.Round((gf + m) * 255)),
		clampByte(math.Round((bf + m) * 255))
}

func cloneGray(src *image.Gray) *image.Gray {
	dst := image.NewGray(src.Bounds())
	copy(dst.Pix, src.Pix)
	return dst
}

func clampByte(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
