package glaze

import (
	"math"
)

// LinearRGB is a color with linear light sRGB channels. Channels of colors
// outside of the gamut may leave 0..1 range.
type LinearRGB struct {
	R, G, B float64
}

// Clamped returns color with channels limited to 0..1.
func (c LinearRGB) Clamped() LinearRGB {
	return LinearRGB{R: clamp01(c.R), G: clamp01(c.G), B: clamp01(c.B)}
}

// Luminance returns relative luminance.
func (c LinearRGB) Luminance() float64 {
	c = c.Clamped()
	return 0.2126*c.R + 0.7152*c.G + 0.0722*c.B
}

// ContrastRatio returns WCAG contrast ratio of two colors, it is symmetric
// and ranges from 1 to 21.
func ContrastRatio(a, b LinearRGB) float64 {
	return ratio(a.Luminance(), b.Luminance())
}

func ratio(y1, y2 float64) float64 {
	if y1 < y2 {
		y1, y2 = y2, y1
	}
	return (y1 + 0.05) / (y2 + 0.05)
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

// oklab is a color in OKLab space.
type oklab struct {
	L, A, B float64
}

// Matrices converting between OKLab and linear sRGB. The rows of the final
// matrix sum to one so achromatic colors stay gray.
const (
	labToLMS00, labToLMS01 = 0.3963377774, 0.2158037573
	labToLMS10, labToLMS11 = -0.1055613458, -0.0638541728
	labToLMS20, labToLMS21 = -0.0894841775, -1.2914855480
)

var lmsToRGB = [3][3]float64{
	{4.0767416621, -3.3077115913, 0.2309699292},
	{-1.2684380046, 2.6097574011, -0.3413193965},
	{-0.0041960863, -0.7034186147, 1.7076147010},
}

func (c oklab) linear() LinearRGB {
	l := cube(c.L + labToLMS00*c.A + labToLMS01*c.B)
	m := cube(c.L + labToLMS10*c.A + labToLMS11*c.B)
	s := cube(c.L + labToLMS20*c.A + labToLMS21*c.B)
	return LinearRGB{
		R: lmsToRGB[0][0]*l + lmsToRGB[0][1]*m + lmsToRGB[0][2]*s,
		G: lmsToRGB[1][0]*l + lmsToRGB[1][1]*m + lmsToRGB[1][2]*s,
		B: lmsToRGB[2][0]*l + lmsToRGB[2][1]*m + lmsToRGB[2][2]*s,
	}
}

func cube(x float64) float64 {
	return x * x * x
}

// Lightness estimate used by OKHSL.
const (
	toeK1 = 0.206
	toeK2 = 0.03
	toeK3 = (1 + toeK1) / (1 + toeK2)
)

func toe(x float64) float64 {
	t := toeK3*x - toeK1
	return 0.5 * (t + math.Sqrt(t*t+4*toeK2*toeK3*x))
}

func toeInv(x float64) float64 {
	return (x*x + toeK1*x) / (toeK3 * (x + toeK2))
}

// maxSaturation finds saturation S = C/L of the gamut boundary for hue
// given by normalized a, b.
func maxSaturation(a, b float64) float64 {
	var k0, k1, k2, k3, k4 float64
	var w [3]float64
	switch {
	case -1.88170328*a-0.80936493*b > 1:
		k0, k1, k2, k3, k4 = 1.19086277, 1.76576728, 0.59662641, 0.75515197, 0.56771245
		w = lmsToRGB[0]
	case 1.81444104*a-1.19445276*b > 1:
		k0, k1, k2, k3, k4 = 0.73956515, -0.45954404, 0.08285427, 0.12541070, 0.14503204
		w = lmsToRGB[1]
	default:
		k0, k1, k2, k3, k4 = 1.35733652, -0.00915799, -1.15130210, -0.50559606, 0.00692167
		w = lmsToRGB[2]
	}
	sat := k0 + k1*a + k2*b + k3*a*a + k4*a*b

	kl := labToLMS00*a + labToLMS01*b
	km := labToLMS10*a + labToLMS11*b
	ks := labToLMS20*a + labToLMS21*b

	// one Halley step
	l_, m_, s_ := 1+sat*kl, 1+sat*km, 1+sat*ks
	l, m, s := cube(l_), cube(m_), cube(s_)
	ldS, mdS, sdS := 3*kl*l_*l_, 3*km*m_*m_, 3*ks*s_*s_
	ldS2, mdS2, sdS2 := 6*kl*kl*l_, 6*km*km*m_, 6*ks*ks*s_
	f := w[0]*l + w[1]*m + w[2]*s
	f1 := w[0]*ldS + w[1]*mdS + w[2]*sdS
	f2 := w[0]*ldS2 + w[1]*mdS2 + w[2]*sdS2
	return sat - f*f1/(f1*f1-0.5*f*f2)
}

type cusp struct {
	L, C float64
}

func findCusp(a, b float64) cusp {
	sCusp := maxSaturation(a, b)
	rgb := oklab{L: 1, A: sCusp * a, B: sCusp * b}.linear()
	lCusp := math.Cbrt(1 / math.Max(math.Max(rgb.R, rgb.G), rgb.B))
	return cusp{L: lCusp, C: lCusp * sCusp}
}

// gamutIntersection finds t such that point L0 + t*(L1-L0), t*C1 lies on
// the gamut boundary.
func gamutIntersection(a, b, l1, c1, l0 float64, cu cusp) float64 {
	if (l1-l0)*cu.C-(cu.L-l0)*c1 <= 0 {
		return cu.C * l0 / (c1*cu.L + cu.C*(l0-l1))
	}
	t := cu.C * (l0 - 1) / (c1*(cu.L-1) + cu.C*(l0-l1))

	dL, dC := l1-l0, c1
	kl := labToLMS00*a + labToLMS01*b
	km := labToLMS10*a + labToLMS11*b
	ks := labToLMS20*a + labToLMS21*b
	ldt, mdt, sdt := dL+dC*kl, dL+dC*km, dL+dC*ks

	L := l0*(1-t) + t*l1
	C := t * c1
	l_, m_, s_ := L+C*kl, L+C*km, L+C*ks
	l, m, s := cube(l_), cube(m_), cube(s_)
	ld, md, sd := 3*ldt*l_*l_, 3*mdt*m_*m_, 3*sdt*s_*s_
	ld2, md2, sd2 := 6*ldt*ldt*l_, 6*mdt*mdt*m_, 6*sdt*sdt*s_

	step := math.MaxFloat64
	for _, w := range lmsToRGB {
		v := w[0]*l + w[1]*m + w[2]*s - 1
		v1 := w[0]*ld + w[1]*md + w[2]*sd
		v2 := w[0]*ld2 + w[1]*md2 + w[2]*sd2
		u := v1 / (v1*v1 - 0.5*v*v2)
		if u >= 0 {
			step = math.Min(step, -v*u)
		}
	}
	if step == math.MaxFloat64 {
		return t
	}
	return t + step
}

// stMid approximates saturation and toe values at the middle of gamut.
func stMid(a, b float64) (s, t float64) {
	s = 0.11516993 + 1/(7.44778970+4.16894999*b+
		a*(-2.19557347+1.75198401*b+
			a*(-2.13704948-10.02301043*b+
				a*(-4.24894561+5.38770819*b+4.69891013*a))))
	t = 0.11239642 + 1/(1.61320320-0.68124379*b+
		a*(0.40370612+0.90148123*b+
			a*(-0.27087943+0.61223990*b+
				a*(0.00299215-0.45399568*b-0.14661872*a))))
	return s, t
}

// chromas returns chroma at zero, mid and max saturation for lightness L.
func chromas(L, a, b float64) (c0, cMid, cMax float64) {
	cu := findCusp(a, b)
	cMax = gamutIntersection(a, b, L, 1, L, cu)
	stMaxS, stMaxT := cu.C/cu.L, cu.C/(1-cu.L)

	k := cMax / math.Min(L*stMaxS, (1-L)*stMaxT)
	sMid, tMid := stMid(a, b)
	ca, cb := L*sMid, (1-L)*tMid
	cMid = 0.9 * k * math.Sqrt(math.Sqrt(1/(1/(ca*ca*ca*ca)+1/(cb*cb*cb*cb))))

	ca, cb = L*0.4, (1-L)*0.8
	c0 = math.Sqrt(1 / (1/(ca*ca) + 1/(cb*cb)))
	return c0, cMid, cMax
}

// FromOKHSL converts OKHSL color (hue in degrees, saturation and lightness
// 0..1) to linear sRGB. Zero saturation always gives gray.
func FromOKHSL(hue, saturation, lightness float64) LinearRGB {
	switch {
	case lightness >= 1:
		return LinearRGB{R: 1, G: 1, B: 1}
	case lightness <= 0:
		return LinearRGB{}
	}
	L := toeInv(lightness)
	if saturation <= 0 {
		v := cube(L)
		return LinearRGB{R: v, G: v, B: v}
	}
	saturation = math.Min(saturation, 1)

	rad := hue / 180 * math.Pi
	a, b := math.Cos(rad), math.Sin(rad)
	c0, cMid, cMax := chromas(L, a, b)

	const mid, midInv = 0.8, 1.25
	var C float64
	if saturation < mid {
		t := midInv * saturation
		k1 := mid * c0
		k2 := 1 - k1/cMid
		C = t * k1 / (1 - k2*t)
	} else {
		t := (saturation - mid) / (1 - mid)
		k0 := cMid
		k1 := (1 - mid) * cMid * cMid * midInv * midInv / c0
		k2 := 1 - k1/(cMax-cMid)
		C = k0 + t*k1/(1-k2*t)
	}
	return oklab{L: L, A: C * a, B: C * b}.linear()
}

// OKHSLLightness returns perceptual lightness (0..1) of color.
func OKHSLLightness(c LinearRGB) float64 {
	c = c.Clamped()
	l := math.Cbrt(0.4122214708*c.R + 0.5363325363*c.G + 0.0514459929*c.B)
	m := math.Cbrt(0.2119034982*c.R + 0.6806995451*c.G + 0.1073969566*c.B)
	s := math.Cbrt(0.0883024619*c.R + 0.2817188376*c.G + 0.6299787005*c.B)
	return toe(0.2104542553*l + 0.7936177850*m - 0.0040720468*s)
}
