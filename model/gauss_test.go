package model

import (
	"math"
	"testing"

	"cfit/types"
)

// TestGaussEvaluate 函数验证了标准正态密度的峰值与归一化。
func TestGaussEvaluate(t *testing.T) {
	g := NewGauss(types.NewVariable("x", 0),
		types.NewFixedParameter("mu", 0),
		types.NewFixedParameter("sigma", 1))

	tolerance := 1e-9

	// 峰值 1/sqrt(2 pi)
	v, err := g.EvaluateValue(0)
	if err != nil {
		t.Fatalf("EvaluateValue failed: %v", err)
	}
	expected := 1.0 / math.Sqrt(2.0*math.Pi)
	if math.Abs(v-expected) > tolerance {
		t.Errorf("Peak value is incorrect. Got %f, expected %f", v, expected)
	}

	// 一倍标准差覆盖 erf(1/sqrt(2))
	area, err := g.Area(-1, 1)
	if err != nil {
		t.Fatalf("Area failed: %v", err)
	}
	expected = math.Erf(1.0 / math.Sqrt(2.0))
	if math.Abs(area-expected) > tolerance {
		t.Errorf("Area(-1,1) is incorrect. Got %f, expected %f", area, expected)
	}

	// 全域覆盖趋于 1
	area, _ = g.Area(-100, 100)
	if math.Abs(area-1.0) > tolerance {
		t.Errorf("Full area is incorrect. Got %f, expected 1", area)
	}
}

// TestGaussTruncation 函数验证了截断窗口外密度为零与面积分割性质。
func TestGaussTruncation(t *testing.T) {
	g := NewGauss(types.NewVariable("x", 0),
		types.NewFixedParameter("mu", 0),
		types.NewFixedParameter("sigma", 1))
	g.SetLimits(0, 2)

	tolerance := 1e-9

	if v, _ := g.EvaluateValue(-0.5); v != 0 {
		t.Errorf("Density below the window is incorrect. Got %f, expected 0", v)
	}
	if v, _ := g.EvaluateValue(2.5); v != 0 {
		t.Errorf("Density above the window is incorrect. Got %f, expected 0", v)
	}

	// 面积剪裁到窗口后覆盖为 1
	area, _ := g.Area(-10, 10)
	if math.Abs(area-1.0) > tolerance {
		t.Errorf("Clipped full area is incorrect. Got %f, expected 1", area)
	}

	// 分割性质：[0,1] 与 [1,2] 的面积之和为 1
	a1, _ := g.Area(0, 1)
	a2, _ := g.Area(1, 2)
	if math.Abs(a1+a2-1.0) > tolerance {
		t.Errorf("Partition property violated. Got %f + %f = %f, expected 1", a1, a2, a1+a2)
	}

	// 取消截断后恢复
	g.UnsetLimits()
	if v, _ := g.EvaluateValue(-0.5); v == 0 {
		t.Error("Density after UnsetLimits should be positive")
	}

	// 仅下截断：下边界以下的区间不贡献面积
	g.SetLowerLimit(1)
	if a, _ := g.Area(-1, 1); a != 0 {
		t.Errorf("Area fully below the lower limit is incorrect. Got %f, expected 0", a)
	}
	a1, _ = g.Area(-1, 2)
	a2, _ = g.Area(1, 2)
	if math.Abs(a1-a2) > tolerance {
		t.Errorf("Clipped area is incorrect. Got %f, expected %f", a1, a2)
	}
}

// TestGaussDegenerate 函数验证了退化情形（零宽度与空截断区间）。
func TestGaussDegenerate(t *testing.T) {
	g := NewGauss(types.NewVariable("x", 0),
		types.NewFixedParameter("mu", 1),
		types.NewFixedParameter("sigma", 0))

	if v, _ := g.EvaluateValue(1); v != 0 {
		t.Errorf("Degenerate density is incorrect. Got %f, expected 0", v)
	}
	// 零宽度的面积是 delta 覆盖判断
	if a, _ := g.Area(0, 2); a != 1 {
		t.Errorf("Delta area containing mu is incorrect. Got %f, expected 1", a)
	}
	if a, _ := g.Area(2, 3); a != 0 {
		t.Errorf("Delta area excluding mu is incorrect. Got %f, expected 0", a)
	}

	// 空截断区间
	g2 := NewGauss(types.NewVariable("x", 0),
		types.NewFixedParameter("mu", 0),
		types.NewFixedParameter("sigma", 1))
	g2.SetLimits(2, 1)
	if v, _ := g2.EvaluateValue(1.5); v != 0 {
		t.Errorf("Density on empty window is incorrect. Got %f, expected 0", v)
	}
}

// TestGaussCacheProtocol 函数验证了逐事件缓存协议：固定缓存、释放失效、索引复用。
func TestGaussCacheProtocol(t *testing.T) {
	g := NewGauss(types.NewVariable("x", 0),
		types.NewFixedParameter("mu", 0),
		types.NewFixedParameter("sigma", 1))

	data := types.NewDataset("x")
	data.PushRow(-0.5)
	data.PushRow(0)
	data.PushRow(1.2)

	sess := types.NewSession()
	cached := g.CacheReal(sess, data)
	if cached == nil || !g.UseCache() {
		t.Fatal("Fully fixed model should cache")
	}
	sess.MergeReal(cached)
	if sess.NReal() != 1 {
		t.Fatalf("Allocated index count is incorrect. Got %d, expected 1", sess.NReal())
	}

	tolerance := 1e-12
	for row := 0; row < data.Size(); row++ {
		direct, _ := g.EvaluateValue(data.Value("x", row))
		viaCache, err := g.EvaluateCached(nil, sess.RowReal(row), nil)
		if err != nil {
			t.Fatalf("EvaluateCached failed: %v", err)
		}
		if math.Abs(viaCache-direct) > tolerance {
			t.Errorf("Cached value at row %d is incorrect. Got %f, expected %f", row, viaCache, direct)
		}
	}

	// 释放参数后缓存失效，求值回退为直接计算
	if err := g.FreePar("mu"); err != nil {
		t.Fatalf("FreePar failed: %v", err)
	}
	if g.CacheReal(sess, data) != nil || g.UseCache() {
		t.Error("Model with a free parameter should not cache")
	}
	direct, _ := g.EvaluateValue(0.7)
	fallback, _ := g.EvaluateCached([]float64{0.7}, nil, nil)
	if math.Abs(fallback-direct) > tolerance {
		t.Errorf("Fallback value is incorrect. Got %f, expected %f", fallback, direct)
	}

	// 重新固定并缓存：复用既有索引，不再分配
	if err := g.FixPar("mu"); err != nil {
		t.Fatalf("FixPar failed: %v", err)
	}
	sess.MergeReal(g.CacheReal(sess, data))
	if sess.NReal() != 1 {
		t.Errorf("Index should be reused. Got %d allocations, expected 1", sess.NReal())
	}
}

// TestGaussGenerate 函数验证了截断采样落入窗口与远尾窗口的报错。
func TestGaussGenerate(t *testing.T) {
	g := NewGauss(types.NewVariable("x", 0),
		types.NewFixedParameter("mu", 0),
		types.NewFixedParameter("sigma", 1))
	g.SetLimits(0, 1)

	for i := 0; i < 100; i++ {
		ev, err := g.Generate()
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		x := ev["x"]
		if x < 0 || x > 1 {
			t.Fatalf("Generated value outside the window: %f", x)
		}
	}

	// 远尾窗口：窗口内概率质量数值为 0，报错而非死循环
	g.UnsetUpperLimit()
	g.SetLowerLimit(13)
	_, err := g.Generate()
	if err == nil {
		t.Fatal("Far-tail window should fail")
	}
	if !types.IsPdfError(err) {
		t.Errorf("Error category is incorrect: %v", err)
	}
}

// BenchmarkGaussEvaluate 基准测试单点密度求值。
func BenchmarkGaussEvaluate(b *testing.B) {
	g := NewGauss(types.NewVariable("x", 0),
		types.NewFixedParameter("mu", 0),
		types.NewFixedParameter("sigma", 1))
	for i := 0; i < b.N; i++ {
		g.EvaluateValue(0.5)
	}
}
