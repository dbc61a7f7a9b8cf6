package types

// Dataset 数据集：按列名组织的定长事件表
// 行序即迭代顺序，缓存构建与后续求值共用同一顺序；
// 一次拟合会话内不得并发修改
type Dataset struct {
	names []string             // 列名（有序）
	cols  map[string][]float64 // 列数据
	size  int                  // 行数
}

// NewDataset 创建空数据集
// 参数names: 列名列表，顺序即导出顺序
func NewDataset(names ...string) *Dataset {
	ds := &Dataset{
		names: append([]string{}, names...),
		cols:  make(map[string][]float64, len(names)),
	}
	for _, n := range ds.names {
		ds.cols[n] = nil
	}
	return ds
}

// Size 行数
func (ds *Dataset) Size() int { return ds.size }

// Names 列名列表
func (ds *Dataset) Names() []string { return ds.names }

// Has 是否存在指定列
func (ds *Dataset) Has(name string) bool {
	_, ok := ds.cols[name]
	return ok
}

// Value 随机访问指定列的第 row 行值（0 基）
// 未知列或越界返回 0
func (ds *Dataset) Value(name string, row int) float64 {
	col, ok := ds.cols[name]
	if !ok || row < 0 || row >= len(col) {
		return 0
	}
	return col[row]
}

// Push 追加一行，按列名取值，缺失列记 0
func (ds *Dataset) Push(row map[string]float64) {
	for _, n := range ds.names {
		ds.cols[n] = append(ds.cols[n], row[n])
	}
	ds.size++
}

// PushRow 追加一行，按列名顺序取值
// 多余值忽略，缺失值记 0
func (ds *Dataset) PushRow(vals ...float64) {
	for i, n := range ds.names {
		if i < len(vals) {
			ds.cols[n] = append(ds.cols[n], vals[i])
		} else {
			ds.cols[n] = append(ds.cols[n], 0)
		}
	}
	ds.size++
}
