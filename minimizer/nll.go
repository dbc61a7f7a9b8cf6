package minimizer

import (
	"math"

	"cfit/types"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
)

// badDensity 密度非正或求值失败时的惩罚值，驱动优化器退出病态区
const badDensity = 1e10

// Nll 负对数似然目标函数（-2 ln L）
type Nll struct {
	Minimizer

	iter int // 目标函数求值计数
}

// NewNll 创建负对数似然目标函数
func NewNll(pdf types.PdfFace, data *types.Dataset) *Nll {
	return &Nll{Minimizer: *NewMinimizer(pdf, data)}
}

// freeIdx 自由参数的位置索引（声明序）
func (n *Nll) freeIdx() []int {
	idx := make([]int, 0, n.pdf.NPars())
	for i := 0; i < n.pdf.NPars(); i++ {
		if !n.pdf.GetPar(i).Fixed {
			idx = append(idx, i)
		}
	}
	return idx
}

// FreeNames 自由参数名列表（声明序）
func (n *Nll) FreeNames() []string {
	free := n.freeIdx()
	names := make([]string, len(free))
	for k, i := range free {
		names[k] = n.pdf.GetPar(i).Name
	}
	return names
}

// Fcn 目标函数：自由参数向量 -> -2 ln L
// 固定参数保持当前值；逐事件求值走缓存感知路径，
// 缓存未建立时退化为直接求值
func (n *Nll) Fcn(x []float64) float64 {
	free := n.freeIdx()
	full := make([]float64, n.pdf.NPars())
	for i := range full {
		full[i] = n.pdf.GetPar(i).Value
	}
	for k, i := range free {
		if k < len(x) {
			full[i] = x[k]
		}
	}
	// SetPars 触发模型刷新与归一化重算
	if err := n.pdf.SetPars(full); err != nil {
		return badDensity * float64(n.data.Size()+1)
	}

	nll := 0.0
	for row := range n.rowsVar {
		v, err := n.pdf.EvaluateCached(n.rowsVar[row], n.rowR(row), n.rowC(row))
		if err != nil || v <= 0 || math.IsNaN(v) {
			nll += badDensity
			continue
		}
		nll -= 2.0 * math.Log(v)
	}

	n.iter++
	if n.Debug != nil && n.Debug.IsDebug() {
		n.Debug.Update(n.iter, nll, x)
	}
	return nll
}

// Minimize 执行拟合
// 以模型当前自由参数值为初值做 Nelder-Mead 单纯形最小化，
// 收敛后以数值 Hessian 估计协方差（误差定义值已设置且
// Hessian 正定时），并把最优值回写模型
func (n *Nll) Minimize() (*types.FitResult, error) {
	free := n.freeIdx()
	if len(free) == 0 {
		return nil, types.NewMinimizerError("没有自由参数可拟合")
	}

	x0 := make([]float64, len(free))
	for k, i := range free {
		x0[k] = n.pdf.GetPar(i).Value
	}

	n.iter = 0
	if n.Debug != nil && n.Debug.IsDebug() {
		n.Debug.Start(n.FreeNames())
	}

	problem := optimize.Problem{Func: n.Fcn}
	res, err := optimize.Minimize(problem, x0, nil, &optimize.NelderMead{})
	if err != nil {
		return nil, types.NewMinimizerError("优化失败: %v", err)
	}

	cov := n.covariance(res.X)

	// 组装结果：自由参数取最优值，误差来自协方差对角元
	pars := make([]types.Parameter, n.pdf.NPars())
	for i := range pars {
		pars[i] = n.pdf.GetPar(i)
	}
	names := make([]string, len(free))
	for k, i := range free {
		names[k] = pars[i].Name
		pars[i].Value = res.X[k]
		if cov != nil {
			pars[i].Error = math.Sqrt(cov.At(k, k))
		}
	}
	result := &types.FitResult{Names: names, Pars: pars, Fval: res.F, Cov: cov}

	// 最优参数回写模型（含误差）
	if err := n.pdf.SetParsResult(result); err != nil {
		return nil, err
	}
	if n.Debug != nil && n.Debug.IsDebug() {
		n.Debug.Done(res.F)
	}
	return result, nil
}

// covariance 最优点处的协方差矩阵：2 up H^-1
// 误差定义值未设置或 Hessian 非正定时返回 nil
func (n *Nll) covariance(x []float64) *mat.SymDense {
	up, err := n.Up()
	if err != nil {
		return nil
	}

	m := len(x)
	h := make([]float64, m)
	for i := range x {
		h[i] = 1e-4 * math.Max(math.Abs(x[i]), 1.0)
	}

	f0 := n.Fcn(x)
	hess := mat.NewSymDense(m, nil)
	xi := make([]float64, m)
	for i := 0; i < m; i++ {
		copy(xi, x)
		xi[i] = x[i] + h[i]
		fp := n.Fcn(xi)
		xi[i] = x[i] - h[i]
		fm := n.Fcn(xi)
		hess.SetSym(i, i, (fp-2.0*f0+fm)/(h[i]*h[i]))

		for j := i + 1; j < m; j++ {
			copy(xi, x)
			xi[i], xi[j] = x[i]+h[i], x[j]+h[j]
			fpp := n.Fcn(xi)
			xi[j] = x[j] - h[j]
			fpm := n.Fcn(xi)
			xi[i] = x[i] - h[i]
			fmm := n.Fcn(xi)
			xi[j] = x[j] + h[j]
			fmp := n.Fcn(xi)
			hess.SetSym(i, j, (fpp-fpm-fmp+fmm)/(4.0*h[i]*h[j]))
		}
	}
	// 恢复最优点参数（差分求值带副作用）
	n.Fcn(x)

	var ch mat.Cholesky
	if !ch.Factorize(hess) {
		return nil
	}
	var inv mat.SymDense
	if ch.InverseTo(&inv) != nil {
		return nil
	}
	cov := mat.NewSymDense(m, nil)
	cov.ScaleSym(2.0*up, &inv)
	return cov
}
