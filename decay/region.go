package decay

// Region 可选的一维区间限制
// 零值表示不限制；投影时用于收窄积分变量的取值范围
type Region struct {
	Min    float64
	Max    float64
	HasMin bool
	HasMax bool
}

// NewRegion 创建双边限制区间
func NewRegion(min, max float64) Region {
	return Region{Min: min, Max: max, HasMin: true, HasMax: true}
}

// Clip 将 [lo,hi] 剪裁到区间限制内
func (r Region) Clip(lo, hi float64) (float64, float64) {
	if r.HasMin && r.Min > lo {
		lo = r.Min
	}
	if r.HasMax && r.Max < hi {
		hi = r.Max
	}
	return lo, hi
}
