package types

// CacheRealMap 实数缓存映射：缓存索引 -> 逐事件值序列
type CacheRealMap map[uint][]float64

// CacheComplexMap 复数缓存映射：缓存索引 -> 逐事件值序列
type CacheComplexMap map[uint][]complex128

// Session 拟合会话上下文：持有实数/复数两条缓存索引计数器
// 与聚合后的缓存映射。索引在一个会话内单调分配、保持稳定；
// 会话切换后模型的缓存状态必须重建
type Session struct {
	realIdx  uint // 下一个实数缓存索引
	cmplxIdx uint // 下一个复数缓存索引

	CacheR CacheRealMap    // 聚合实数缓存
	CacheC CacheComplexMap // 聚合复数缓存
}

// NewSession 创建拟合会话
func NewSession() *Session {
	return &Session{
		CacheR: make(CacheRealMap),
		CacheC: make(CacheComplexMap),
	}
}

// NextReal 分配一个实数缓存索引
func (s *Session) NextReal() uint {
	idx := s.realIdx
	s.realIdx++
	return idx
}

// NextComplex 分配一个复数缓存索引
func (s *Session) NextComplex() uint {
	idx := s.cmplxIdx
	s.cmplxIdx++
	return idx
}

// NReal 已分配的实数缓存数量
func (s *Session) NReal() int { return int(s.realIdx) }

// NComplex 已分配的复数缓存数量
func (s *Session) NComplex() int { return int(s.cmplxIdx) }

// MergeReal 聚合模型产出的实数缓存
func (s *Session) MergeReal(m CacheRealMap) {
	for idx, vals := range m {
		s.CacheR[idx] = vals
	}
}

// MergeComplex 聚合模型产出的复数缓存
func (s *Session) MergeComplex(m CacheComplexMap) {
	for idx, vals := range m {
		s.CacheC[idx] = vals
	}
}

// RowReal 组装第 row 个事件的实数缓存向量
// 向量按缓存索引定位，未填充的位置为 0
func (s *Session) RowReal(row int) []float64 {
	out := make([]float64, s.realIdx)
	for idx, vals := range s.CacheR {
		if row >= 0 && row < len(vals) {
			out[idx] = vals[row]
		}
	}
	return out
}

// RowComplex 组装第 row 个事件的复数缓存向量
func (s *Session) RowComplex(row int) []complex128 {
	out := make([]complex128, s.cmplxIdx)
	for idx, vals := range s.CacheC {
		if row >= 0 && row < len(vals) {
			out[idx] = vals[row]
		}
	}
	return out
}
