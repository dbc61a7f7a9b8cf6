package model

import (
	"math"
	"testing"

	"cfit/types"
)

// TestArgusSupport 函数验证了支撑域 [0,c] 之外密度为零且全域覆盖为 1。
func TestArgusSupport(t *testing.T) {
	a := NewArgus(types.NewVariable("m", 0),
		types.NewFixedParameter("c", 5),
		types.NewFixedParameter("chi", 0.5))

	if v, _ := a.EvaluateValue(6); v != 0 {
		t.Errorf("Density above threshold is incorrect. Got %f, expected 0", v)
	}
	if v, _ := a.EvaluateValue(-1); v != 0 {
		t.Errorf("Density below zero is incorrect. Got %f, expected 0", v)
	}

	area, err := a.Area(0, 5)
	if err != nil {
		t.Fatalf("Area failed: %v", err)
	}
	if math.Abs(area-1.0) > 1e-12 {
		t.Errorf("Full area is incorrect. Got %f, expected 1", area)
	}
}

// TestArgusChiZero 函数验证了 chi = 0 时的闭式幂律退化分支。
func TestArgusChiZero(t *testing.T) {
	a := NewArgus(types.NewVariable("m", 0),
		types.NewFixedParameter("c", 5),
		types.NewFixedParameter("chi", 0))

	tolerance := 1e-12

	// norm = c^2/3，密度 x sqrt(1-x^2/c^2)/norm
	v, _ := a.EvaluateValue(3)
	expected := 3.0 * math.Sqrt(1.0-9.0/25.0) / (25.0 / 3.0)
	if math.Abs(v-expected) > tolerance {
		t.Errorf("Power-law density is incorrect. Got %f, expected %f", v, expected)
	}

	area, _ := a.Area(0, 5)
	if math.Abs(area-1.0) > tolerance {
		t.Errorf("Full area is incorrect. Got %f, expected 1", area)
	}
}

// TestArgusPartition 函数验证了面积分割性质与截断剪裁。
func TestArgusPartition(t *testing.T) {
	a := NewArgus(types.NewVariable("m", 0),
		types.NewFixedParameter("c", 5),
		types.NewFixedParameter("chi", 0.5))

	tolerance := 1e-9

	a1, _ := a.Area(0, 2)
	a2, _ := a.Area(2, 5)
	if math.Abs(a1+a2-1.0) > tolerance {
		t.Errorf("Partition property violated. Got %f + %f = %f, expected 1", a1, a2, a1+a2)
	}

	// 区间始终剪裁到支撑域与截断
	if err := a.SetLimits(1, 4); err != nil {
		t.Fatalf("SetLimits failed: %v", err)
	}
	area, _ := a.Area(-10, 10)
	if math.Abs(area-1.0) > tolerance {
		t.Errorf("Clipped full area is incorrect. Got %f, expected 1", area)
	}
	if v, _ := a.EvaluateValue(0.5); v != 0 {
		t.Errorf("Density below the window is incorrect. Got %f, expected 0", v)
	}
}

// TestArgusNegativeLimit 函数验证了负截断边界的定义域错误。
func TestArgusNegativeLimit(t *testing.T) {
	a := NewArgus(types.NewVariable("m", 0),
		types.NewFixedParameter("c", 5),
		types.NewFixedParameter("chi", 0.5))

	err := a.SetLowerLimit(-1)
	if err == nil {
		t.Fatal("Negative lower limit should fail")
	}
	if !types.IsPdfError(err) {
		t.Errorf("Error category is incorrect: %v", err)
	}
	if err := a.SetUpperLimit(-2); err == nil {
		t.Fatal("Negative upper limit should fail")
	}
}
