package types

import "math/cmplx"

// ParameterExpr 参数表达式：基于若干参数计算标量值
// 表达式不拥有参数，只按名称弱引用；底层参数变化后须通过
// SetPars 重新绑定，随后 Evaluate 反映新值
type ParameterExpr struct {
	deps []Parameter             // 依赖参数（有序）
	fn   func(v []float64) float64 // 求值函数，入参与 deps 同序
}

// NewParExpr 恒等表达式：包装单个参数
func NewParExpr(p Parameter) *ParameterExpr {
	return &ParameterExpr{
		deps: []Parameter{p},
		fn:   func(v []float64) float64 { return v[0] },
	}
}

// NewParameterExpr 创建自定义参数表达式
// 参数:
//
//	fn - 求值函数，入参顺序与 deps 一致
//	deps - 依赖的参数列表
func NewParameterExpr(fn func(v []float64) float64, deps ...Parameter) *ParameterExpr {
	return &ParameterExpr{deps: append([]Parameter{}, deps...), fn: fn}
}

// Evaluate 按当前绑定的参数值求值
func (e *ParameterExpr) Evaluate() float64 {
	v := make([]float64, len(e.deps))
	for i := range e.deps {
		v[i] = e.deps[i].Value
	}
	return e.fn(v)
}

// SetPars 按名称重新绑定依赖参数的值与固定状态
func (e *ParameterExpr) SetPars(pars map[string]Parameter) {
	for i := range e.deps {
		if p, ok := pars[e.deps[i].Name]; ok {
			e.deps[i] = p
		}
	}
}

// Deps 依赖参数列表（副本）
func (e *ParameterExpr) Deps() []Parameter {
	return append([]Parameter{}, e.deps...)
}

// IsFixed 所有依赖参数均固定时为真
func (e *ParameterExpr) IsFixed() bool {
	for i := range e.deps {
		if !e.deps[i].Fixed {
			return false
		}
	}
	return true
}

// Clone 深拷贝表达式
func (e *ParameterExpr) Clone() *ParameterExpr {
	return &ParameterExpr{deps: append([]Parameter{}, e.deps...), fn: e.fn}
}

// CoefExpr 复系数表达式：基于若干参数计算复数值
// 用于复合振幅模型的混合系数 z
type CoefExpr struct {
	deps []Parameter
	fn   func(v []float64) complex128
}

// NewCoef 直角坐标系数：z = re + i·im
func NewCoef(re, im Parameter) *CoefExpr {
	return &CoefExpr{
		deps: []Parameter{re, im},
		fn:   func(v []float64) complex128 { return complex(v[0], v[1]) },
	}
}

// NewPolarCoef 极坐标系数：z = mod·exp(i·arg)
func NewPolarCoef(mod, arg Parameter) *CoefExpr {
	return &CoefExpr{
		deps: []Parameter{mod, arg},
		fn:   func(v []float64) complex128 { return cmplx.Rect(v[0], v[1]) },
	}
}

// NewCoefExpr 创建自定义复系数表达式
func NewCoefExpr(fn func(v []float64) complex128, deps ...Parameter) *CoefExpr {
	return &CoefExpr{deps: append([]Parameter{}, deps...), fn: fn}
}

// Evaluate 按当前绑定的参数值求值
func (e *CoefExpr) Evaluate() complex128 {
	v := make([]float64, len(e.deps))
	for i := range e.deps {
		v[i] = e.deps[i].Value
	}
	return e.fn(v)
}

// SetPars 按名称重新绑定依赖参数
func (e *CoefExpr) SetPars(pars map[string]Parameter) {
	for i := range e.deps {
		if p, ok := pars[e.deps[i].Name]; ok {
			e.deps[i] = p
		}
	}
}

// Deps 依赖参数列表（副本）
func (e *CoefExpr) Deps() []Parameter {
	return append([]Parameter{}, e.deps...)
}

// IsFixed 所有依赖参数均固定时为真
func (e *CoefExpr) IsFixed() bool {
	for i := range e.deps {
		if !e.deps[i].Fixed {
			return false
		}
	}
	return true
}

// Clone 深拷贝表达式
func (e *CoefExpr) Clone() *CoefExpr {
	return &CoefExpr{deps: append([]Parameter{}, e.deps...), fn: e.fn}
}
