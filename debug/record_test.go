package debug

import (
	"bytes"
	"encoding/json"
	"testing"
)

// TestRecord 函数验证了拟合轨迹的记录与 JSON 输出。
func TestRecord(t *testing.T) {
	rec := &Record{}
	rec.Start([]string{"mu", "sigma"})
	rec.Update(1, 120.5, []float64{5.0, 0.4})
	rec.Update(2, 118.25, []float64{5.1, 0.45})
	rec.Done(118.25)
	rec.Projection("x", []float64{4.9, 5.0, 5.1}, []float64{0.5, 0.8, 0.5})

	if len(rec.Fval) != 2 || len(rec.Pars) != 2 {
		t.Fatalf("Trace length is incorrect. Got %d, expected 2", len(rec.Fval))
	}
	if rec.Best != 118.25 {
		t.Errorf("Best value is incorrect. Got %f, expected 118.25", rec.Best)
	}
	if len(rec.ProjName) != 1 || len(rec.ProjX[0]) != 3 {
		t.Error("Projection trace is incorrect")
	}

	var buf bytes.Buffer
	if err := rec.Render(&buf); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	var decoded Record
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("JSON decode failed: %v", err)
	}
	if len(decoded.Names) != 2 || decoded.Names[0] != "mu" {
		t.Errorf("Decoded names are incorrect: %v", decoded.Names)
	}

	// Start 清空上一轮轨迹
	rec.Start([]string{"mu"})
	if len(rec.Fval) != 0 || len(rec.Names) != 1 {
		t.Error("Start did not reset the trace")
	}
}

// TestChartsRender 函数验证了曲线页面的渲染输出。
func TestChartsRender(t *testing.T) {
	c := &Charts{}
	c.Start([]string{"mu"})
	c.Update(1, 120.5, []float64{5.0})
	c.Update(2, 118.25, []float64{5.1})
	c.Done(118.25)

	var buf bytes.Buffer
	if err := c.Render(&buf); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("Rendered page is empty")
	}
}
