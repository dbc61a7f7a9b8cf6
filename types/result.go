package types

import "gonum.org/v1/gonum/mat"

// FitResult 拟合结果：最优参数、目标函数值与协方差信息
type FitResult struct {
	Names []string      // 自由参数名（与协方差矩阵同序）
	Pars  []Parameter   // 全部参数（含固定），值与不确定度为拟合后状态
	Fval  float64       // 最优目标函数值
	Cov   *mat.SymDense // 自由参数协方差矩阵，Hessian 非正定时为 nil
}

// Par 按名称查询拟合后参数
func (r *FitResult) Par(name string) (Parameter, bool) {
	for _, p := range r.Pars {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}

// ParMap 拟合后参数的名称映射
func (r *FitResult) ParMap() map[string]Parameter {
	m := make(map[string]Parameter, len(r.Pars))
	for _, p := range r.Pars {
		m[p.Name] = p
	}
	return m
}
