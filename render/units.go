package render

// Conversion constants between pt and mm. Page geometry and the canvas are
// millimeter-based; font sizes and the fit search run in points, the same
// split the configuration file uses.
const (
	PtToMm = 0.352777
	MmToPt = 1.0 / PtToMm
)

func toPt(mm float64) float64 { return mm * MmToPt }

func toMm(pt float64) float64 { return pt * PtToMm }
