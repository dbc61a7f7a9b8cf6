package decay

import "math"

// PhaseSpace 三体衰变相空间
// 持有母粒子与三个末态粒子的质量，提供 Dalitz 变量的运动学边界、
// 第三不变质量的守恒导出以及相空间权重（物理区域外权重为 0）
type PhaseSpace struct {
	MMother float64 // 母粒子质量
	M1      float64 // 末态粒子 1 质量
	M2      float64 // 末态粒子 2 质量
	M3      float64 // 末态粒子 3 质量
}

// NewPhaseSpace 创建相空间
func NewPhaseSpace(mMother, m1, m2, m3 float64) *PhaseSpace {
	return &PhaseSpace{MMother: mMother, M1: m1, M2: m2, M3: m3}
}

// MSqSum 四个质量平方之和，守恒关系的常数项
func (ps *PhaseSpace) MSqSum() float64 {
	return ps.MMother*ps.MMother + ps.M1*ps.M1 + ps.M2*ps.M2 + ps.M3*ps.M3
}

// MSq23 由守恒关系导出第三个不变质量平方
// mSq12 + mSq13 + mSq23 = M^2 + m1^2 + m2^2 + m3^2
func (ps *PhaseSpace) MSq23(mSq12, mSq13 float64) float64 {
	return ps.MSqSum() - mSq12 - mSq13
}

// MSq12Min mSq12 的运动学下界
func (ps *PhaseSpace) MSq12Min() float64 { return math.Pow(ps.M1+ps.M2, 2) }

// MSq12Max mSq12 的运动学上界
func (ps *PhaseSpace) MSq12Max() float64 { return math.Pow(ps.MMother-ps.M3, 2) }

// MSq13Min mSq13 的运动学下界
func (ps *PhaseSpace) MSq13Min() float64 { return math.Pow(ps.M1+ps.M3, 2) }

// MSq13Max mSq13 的运动学上界
func (ps *PhaseSpace) MSq13Max() float64 { return math.Pow(ps.MMother-ps.M2, 2) }

// mSq13Range 给定 mSq12 时 mSq13 的 Dalitz 边界
// 在 (1,2) 系静止系中由能量-动量守恒求得
func (ps *PhaseSpace) mSq13Range(mSq12 float64) (lo, hi float64, ok bool) {
	if mSq12 < ps.MSq12Min() || mSq12 > ps.MSq12Max() {
		return 0, 0, false
	}
	m12 := math.Sqrt(mSq12)
	mSq1 := ps.M1 * ps.M1
	mSq2 := ps.M2 * ps.M2
	mSq3 := ps.M3 * ps.M3
	mSqM := ps.MMother * ps.MMother

	// 粒子 1 与粒子 3 在 (1,2) 静止系中的能量
	e1 := (mSq12 + mSq1 - mSq2) / (2.0 * m12)
	e3 := (mSqM - mSq12 - mSq3) / (2.0 * m12)

	p1Sq := e1*e1 - mSq1
	p3Sq := e3*e3 - mSq3
	if p1Sq < 0 || p3Sq < 0 {
		return 0, 0, false
	}
	p1 := math.Sqrt(p1Sq)
	p3 := math.Sqrt(p3Sq)

	eSum := e1 + e3
	lo = eSum*eSum - (p1+p3)*(p1+p3)
	hi = eSum*eSum - (p1-p3)*(p1-p3)
	return lo, hi, true
}

// Contains 判断 (mSq12, mSq13) 是否落在物理 Dalitz 区域内
func (ps *PhaseSpace) Contains(mSq12, mSq13 float64) bool {
	lo, hi, ok := ps.mSq13Range(mSq12)
	if !ok {
		return false
	}
	return mSq13 >= lo && mSq13 <= hi
}

// Evaluate 相空间权重：物理区域内为 1，区域外为 0
// 同时用于蒙特卡洛式归一化积分与定义域限制
func (ps *PhaseSpace) Evaluate(mSq12, mSq13 float64) float64 {
	if ps.Contains(mSq12, mSq13) {
		return 1.0
	}
	return 0.0
}
