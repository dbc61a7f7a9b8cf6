package cfit

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"cfit/minimizer"
	"cfit/types"
)

// LoadDataset 加载空白分隔的表格数据
// '#' 开头为注释行，首个有效行为列名，其余行按列序取值
func LoadDataset(filename string) (*types.Dataset, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var ds *types.Dataset
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		// 首个有效行为列名
		if ds == nil {
			ds = types.NewDataset(fields...)
			continue
		}
		if len(fields) != len(ds.Names()) {
			return nil, fmt.Errorf("数据行列数不匹配: 期望 %d, 实际 %d", len(ds.Names()), len(fields))
		}
		vals := make([]float64, len(fields))
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("数据解析失败: %s: %v", f, err)
			}
			vals[i] = v
		}
		ds.PushRow(vals...)
	}
	if ds == nil {
		return nil, fmt.Errorf("数据文件没有列名行: %s", filename)
	}
	return ds, scanner.Err()
}

// ExportDataset 导出空白分隔的表格数据
func ExportDataset(filename string, ds *types.Dataset) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()
	writer := bufio.NewWriter(file)
	// 导出列名
	for _, n := range ds.Names() {
		writer.WriteString(n)
		writer.WriteRune(' ')
	}
	writer.WriteRune('\n')
	// 导出数据行
	for row := 0; row < ds.Size(); row++ {
		for _, n := range ds.Names() {
			fmt.Fprintf(writer, "%.10g ", ds.Value(n, row))
		}
		writer.WriteRune('\n')
	}
	return writer.Flush()
}

// GenerateDataset 按模型当前参数采样 n 个事件
func GenerateDataset(pdf types.PdfFace, n int) (*types.Dataset, error) {
	ds := types.NewDataset(pdf.VarNames()...)
	for i := 0; i < n; i++ {
		ev, err := pdf.Generate()
		if err != nil {
			return nil, err
		}
		ds.Push(ev)
	}
	return ds, nil
}

// Fit 对数据集做极大似然拟合
// 误差定义值取 1（-2lnL 口径的一倍标准差），启用逐事件缓存
func Fit(pdf types.PdfFace, data *types.Dataset) (*types.FitResult, error) {
	nll := minimizer.NewNll(pdf, data)
	if err := nll.SetUp(1.0); err != nil {
		return nil, err
	}
	nll.Cache()
	return nll.Minimize()
}
