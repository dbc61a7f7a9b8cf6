package minimizer

import (
	"cfit/types"
)

// Minimizer 最小化器基础：持有模型、数据与拟合会话
// 目标函数（如 Nll）嵌入本结构体并复用其缓存与变量行装配
type Minimizer struct {
	pdf  types.PdfFace
	data *types.Dataset
	sess *types.Session

	up float64 // 误差定义值，负数表示尚未设置

	rowsVar [][]float64    // 逐事件变量向量（模型声明序，限数据集存在的列）
	rowsR   [][]float64    // 逐事件实数缓存向量，Cache 后填充
	rowsC   [][]complex128 // 逐事件复数缓存向量，Cache 后填充

	Debug Debug // 调试接口
}

// NewMinimizer 创建最小化器
// 参数:
//
//	pdf - 概率密度模型
//	data - 数据集
func NewMinimizer(pdf types.PdfFace, data *types.Dataset) *Minimizer {
	m := &Minimizer{
		pdf:   pdf,
		data:  data,
		sess:  types.NewSession(),
		up:    -1,
		Debug: &debug{},
	}
	m.buildVarRows()
	return m
}

// buildVarRows 预装配逐事件变量向量
// 只取数据集中存在的模型变量列，保持模型声明序；
// 缺列（如可由守恒关系导出的第三质量）由模型自行补全
func (m *Minimizer) buildVarRows() {
	names := make([]string, 0, m.pdf.NVars())
	for _, n := range m.pdf.VarNames() {
		if m.data.Has(n) {
			names = append(names, n)
		}
	}
	size := m.data.Size()
	m.rowsVar = make([][]float64, size)
	for row := 0; row < size; row++ {
		vars := make([]float64, len(names))
		for i, n := range names {
			vars[i] = m.data.Value(n, row)
		}
		m.rowsVar[row] = vars
	}
}

// Pdf 被拟合的模型
func (m *Minimizer) Pdf() types.PdfFace { return m.pdf }

// Data 数据集
func (m *Minimizer) Data() *types.Dataset { return m.data }

// Session 拟合会话
func (m *Minimizer) Session() *types.Session { return m.sess }

// Up 误差定义值
// 未设置时返回错误，禁止以未定义的误差口径解读不确定度
func (m *Minimizer) Up() (float64, error) {
	if m.up < 0 {
		return 0, types.NewMinimizerError("误差定义值尚未设置")
	}
	return m.up, nil
}

// SetUp 设置误差定义值（-2lnL 目标取 1 对应一倍标准差）
func (m *Minimizer) SetUp(up float64) error {
	if up <= 0 {
		return types.NewMinimizerError("误差定义值必须为正: %g", up)
	}
	m.up = up
	return nil
}

// Cache 触发模型的逐事件缓存并预装配缓存行
// 模型按缓存协议自行决定缓不缓存；重复调用复用既有索引，
// 参数固定状态变化后应再次调用以重建缓存
func (m *Minimizer) Cache() {
	m.sess.MergeReal(m.pdf.CacheReal(m.sess, m.data))
	m.sess.MergeComplex(m.pdf.CacheComplex(m.sess, m.data))

	size := m.data.Size()
	m.rowsR = make([][]float64, size)
	m.rowsC = make([][]complex128, size)
	for row := 0; row < size; row++ {
		m.rowsR[row] = m.sess.RowReal(row)
		m.rowsC[row] = m.sess.RowComplex(row)
	}
}

// rowR 第 row 个事件的实数缓存向量，未缓存时为空
func (m *Minimizer) rowR(row int) []float64 {
	if row < len(m.rowsR) {
		return m.rowsR[row]
	}
	return nil
}

// rowC 第 row 个事件的复数缓存向量，未缓存时为空
func (m *Minimizer) rowC(row int) []complex128 {
	if row < len(m.rowsC) {
		return m.rowsC[row]
	}
	return nil
}
