package decay

import (
	"math"
	"testing"
)

// newTestPS D0 -> K- pi+ pi0 的相空间。
func newTestPS() *PhaseSpace {
	return NewPhaseSpace(1.8645, 0.4937, 0.1396, 0.1350)
}

// TestPhaseSpaceConservation 函数验证了第三不变质量的守恒导出。
func TestPhaseSpaceConservation(t *testing.T) {
	ps := newTestPS()
	x, y := 1.0, 1.5
	z := ps.MSq23(x, y)
	if math.Abs(x+y+z-ps.MSqSum()) > 1e-12 {
		t.Errorf("Conservation relation violated. Got sum %f, expected %f", x+y+z, ps.MSqSum())
	}
}

// TestPhaseSpaceBounds 函数验证了运动学边界与区域判定。
func TestPhaseSpaceBounds(t *testing.T) {
	ps := newTestPS()

	if ps.MSq12Min() >= ps.MSq12Max() {
		t.Fatalf("mSq12 bounds are inverted: [%f, %f]", ps.MSq12Min(), ps.MSq12Max())
	}
	if ps.MSq13Min() >= ps.MSq13Max() {
		t.Fatalf("mSq13 bounds are inverted: [%f, %f]", ps.MSq13Min(), ps.MSq13Max())
	}

	// 运动学边界外必不包含
	if ps.Contains(ps.MSq12Min()-0.1, 1.0) {
		t.Error("Point below the mSq12 bound should be outside")
	}
	if ps.Contains(1.0, ps.MSq13Max()+0.1) {
		t.Error("Point above the mSq13 bound should be outside")
	}

	// 扫描中线必然穿过物理区域
	x := 0.5 * (ps.MSq12Min() + ps.MSq12Max())
	inside := 0
	for j := 0; j < 200; j++ {
		y := binCenter(j, 200, ps.MSq13Min(), ps.MSq13Max())
		if ps.Contains(x, y) {
			inside++
			if w := ps.Evaluate(x, y); w != 1 {
				t.Fatalf("Inside weight is incorrect. Got %f, expected 1", w)
			}
		}
	}
	if inside == 0 {
		t.Error("Midline scan found no physical points")
	}
	if w := ps.Evaluate(x, ps.MSq13Max()+1); w != 0 {
		t.Errorf("Outside weight is incorrect. Got %f, expected 0", w)
	}
}
