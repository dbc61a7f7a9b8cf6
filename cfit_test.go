package cfit

import (
	"math"
	"path/filepath"
	"testing"

	"cfit/model"
	"cfit/types"
)

// TestDatasetRoundtrip 函数验证了数据集的导出与重新加载。
func TestDatasetRoundtrip(t *testing.T) {
	ds := types.NewDataset("mSq12", "mSq13")
	ds.PushRow(1.25, 2.5)
	ds.PushRow(0.75, 1.125)

	path := filepath.Join(t.TempDir(), "events.dat")
	if err := ExportDataset(path, ds); err != nil {
		t.Fatalf("ExportDataset failed: %v", err)
	}
	loaded, err := LoadDataset(path)
	if err != nil {
		t.Fatalf("LoadDataset failed: %v", err)
	}

	if loaded.Size() != ds.Size() {
		t.Fatalf("Size is incorrect. Got %d, expected %d", loaded.Size(), ds.Size())
	}
	for row := 0; row < ds.Size(); row++ {
		for _, n := range ds.Names() {
			if math.Abs(loaded.Value(n, row)-ds.Value(n, row)) > 1e-9 {
				t.Errorf("Value %s[%d] is incorrect. Got %f, expected %f",
					n, row, loaded.Value(n, row), ds.Value(n, row))
			}
		}
	}
}

// TestGenerateDataset 函数验证了按模型采样数据集。
func TestGenerateDataset(t *testing.T) {
	truth := model.NewGauss(types.NewVariable("x", 0),
		types.NewFixedParameter("mu", 5),
		types.NewFixedParameter("sigma", 0.5))

	ds, err := GenerateDataset(truth, 50)
	if err != nil {
		t.Fatalf("GenerateDataset failed: %v", err)
	}
	if ds.Size() != 50 {
		t.Fatalf("Size is incorrect. Got %d, expected 50", ds.Size())
	}
	for row := 0; row < ds.Size(); row++ {
		v := ds.Value("x", row)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("Generated value at row %d is not finite: %f", row, v)
		}
	}
}

// TestFit 函数验证了拟合便捷入口。
func TestFit(t *testing.T) {
	data := types.NewDataset("x")
	for _, v := range []float64{4.6, 4.8, 5.0, 5.2, 5.4} {
		data.PushRow(v)
	}

	pdf := model.NewGauss(types.NewVariable("x", 0),
		types.NewParameter("mu", 4.0),
		types.NewFixedParameter("sigma", 0.5))

	res, err := Fit(pdf, data)
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	mu, _ := res.Par("mu")
	if math.Abs(mu.Value-5.0) > 1e-3 {
		t.Errorf("Fitted mean is incorrect. Got %f, expected 5.0", mu.Value)
	}
	if mu.Error <= 0 {
		t.Errorf("Fitted error should be positive. Got %f", mu.Error)
	}
}
