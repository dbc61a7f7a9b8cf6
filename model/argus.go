package model

import (
	"math"

	"cfit/types"

	"gonum.org/v1/gonum/mathext"
	"gonum.org/v1/gonum/stat/distuv"
)

/*
  Argus 广义阈值模型：

  A(x) = x sqrt( 1 - x^2/c^2 ) exp( - chi^2 ( 1 - x^2/c^2 ) ) / norm,  0 <= x <= c

  归一化通过代换 t = chi^2 ( 1 - x^2/c^2 ) 化为下不完全伽马函数：

  norm = c^2 / ( 2 chi^3 ) sqrt( pi/2 ) [ gamma_p( 3/2, chi^2 argmax ) - gamma_p( 3/2, chi^2 argmin ) ]

  gamma_p 为正则化下不完全伽马函数（按 Gamma(3/2)=sqrt(pi)/2 归一，
  故需乘回 sqrt(pi/2)）。代换反转了积分方向：物理上界进入 argmin，
  物理下界进入 argmax。chi = 0 时退化为闭式幂律：

  norm = c^2/3 ( argmax^(3/2) - argmin^(3/2) )
*/

// Argus 广义 Argus 阈值概率密度模型
type Argus struct {
	Base

	c   *types.ParameterExpr // 阈值参数，支撑域上界
	chi *types.ParameterExpr // 曲率参数

	hasLower bool
	hasUpper bool
	lower    float64
	upper    float64

	norm float64
}

// NewArgus 创建 Argus 模型
func NewArgus(x types.Variable, c, chi types.Parameter) *Argus {
	return NewArgusExpr(x, types.NewParExpr(c), types.NewParExpr(chi))
}

// NewArgusExpr 由参数表达式创建 Argus 模型
func NewArgusExpr(x types.Variable, c, chi *types.ParameterExpr) *Argus {
	a := &Argus{c: c, chi: chi}
	a.Init()
	a.PushVar(x)
	a.PushPars(c.Deps())
	a.PushPars(chi.Deps())
	a.Bind(func() {
		a.syncPars()
		a.Norm()
	})
	a.Norm()
	return a
}

func (a *Argus) syncPars() {
	m := a.ParMap()
	a.c.SetPars(m)
	a.chi.SetPars(m)
}

// C 当前阈值
func (a *Argus) C() float64 { return a.c.Evaluate() }

// Chi 当前曲率
func (a *Argus) Chi() float64 { return a.chi.Evaluate() }

// ------------------------------ 截断设置 ------------------------------

// SetLowerLimit 设置下截断边界并重算归一化
// 支撑域从 0 开始，负边界为定义域错误
func (a *Argus) SetLowerLimit(lower float64) error {
	if lower < 0 {
		return types.NewPdfError("Argus 下截断边界不能小于 0: %g", lower)
	}
	a.hasLower = true
	a.lower = lower
	a.Norm()
	return nil
}

// SetUpperLimit 设置上截断边界并重算归一化
func (a *Argus) SetUpperLimit(upper float64) error {
	if upper < 0 {
		return types.NewPdfError("Argus 上截断边界不能小于 0: %g", upper)
	}
	a.hasUpper = true
	a.upper = upper
	a.Norm()
	return nil
}

// SetLimits 同时设置上下截断边界并重算归一化
func (a *Argus) SetLimits(lower, upper float64) error {
	if lower < 0 {
		return types.NewPdfError("Argus 下截断边界不能小于 0: %g", lower)
	}
	if upper < 0 {
		return types.NewPdfError("Argus 上截断边界不能小于 0: %g", upper)
	}
	a.hasLower = true
	a.hasUpper = true
	a.lower = lower
	a.upper = upper
	a.Norm()
	return nil
}

// UnsetLowerLimit 取消下截断并重算归一化
func (a *Argus) UnsetLowerLimit() {
	a.hasLower = false
	a.Norm()
}

// UnsetUpperLimit 取消上截断并重算归一化
func (a *Argus) UnsetUpperLimit() {
	a.hasUpper = false
	a.Norm()
}

// UnsetLimits 取消全部截断并重算归一化
func (a *Argus) UnsetLimits() {
	a.hasLower = false
	a.hasUpper = false
	a.Norm()
}

// ------------------------------ 归一化 ------------------------------

// integral 支撑域内 [xmin,xmax] 的未归一化积分
// 入参须已剪裁到 [0,c]，xmin <= xmax
func (a *Argus) integral(xmin, xmax float64) float64 {
	vc := a.C()
	cSq := vc * vc
	vchi := a.Chi()
	chiSq := vchi * vchi

	// 代换反向：下边界进入 argmax，上边界进入 argmin
	argmax := 1.0 - math.Pow(xmin/vc, 2)
	argmin := 1.0 - math.Pow(xmax/vc, 2)

	// chi = 0 的闭式幂律退化分支
	if chiSq == 0.0 {
		return cSq / 3.0 * (math.Pow(argmax, 1.5) - math.Pow(argmin, 1.5))
	}

	chi3 := math.Pow(vchi, 3)

	// gamma_p 以 Gamma(3/2) 归一，乘回 sqrt(pi/2)
	ret := cSq / (2.0 * chi3) * math.Sqrt(math.Pi/2.0)
	ret *= mathext.GammaIncReg(1.5, chiSq*argmax) - mathext.GammaIncReg(1.5, chiSq*argmin)
	return ret
}

// clip 将区间剪裁到支撑域与激活截断的交集
// ok 为假表示交集为空
func (a *Argus) clip(min, max float64) (xmin, xmax float64, ok bool) {
	vc := a.C()
	lo := 0.0
	if a.hasLower {
		lo = math.Max(a.lower, 0.0)
	}
	hi := vc
	if a.hasUpper {
		hi = math.Min(a.upper, vc)
	}
	xmin = math.Max(min, lo)
	xmax = math.Min(max, hi)
	if xmin >= xmax {
		return 0, 0, false
	}
	return xmin, xmax, true
}

// Norm 重算归一化常数：支撑域 [0,c] 与激活截断求交后积分
func (a *Argus) Norm() {
	vc := a.C()
	if vc <= 0 {
		a.norm = 0
		return
	}
	xmin, xmax, ok := a.clip(0, vc)
	if !ok {
		a.norm = 0
		return
	}
	a.norm = a.integral(xmin, xmax)
}

// ------------------------------ 求值 ------------------------------

// EvaluateValue 单点密度求值
// 支撑域 [0,c] 之外与截断窗口之外精确返回 0
func (a *Argus) EvaluateValue(x float64) (float64, error) {
	if a.norm == 0 {
		return 0, nil
	}
	if a.hasLower && x < a.lower {
		return 0, nil
	}
	if a.hasUpper && x > a.upper {
		return 0, nil
	}
	vc := a.C()
	if x < 0.0 || x > vc {
		return 0, nil
	}

	vchi := a.Chi()
	diff := 1.0 - x*x/(vc*vc)
	return x * math.Sqrt(diff) * math.Exp(-vchi*vchi*diff) / a.norm, nil
}

// Evaluate 使用模型当前变量值求值
func (a *Argus) Evaluate() (float64, error) {
	return a.EvaluateValue(a.GetVar(0).Value)
}

// EvaluateVars 位置变量向量求值（单变量模型取首元素）
func (a *Argus) EvaluateVars(vars []float64) (float64, error) {
	if len(vars) < 1 {
		return 0, types.NewPdfError("Argus 求值缺少变量")
	}
	return a.EvaluateValue(vars[0])
}

// EvaluateCached 缓存感知求值：缓存激活时原样返回缓存值
func (a *Argus) EvaluateCached(vars []float64, cacheR []float64, cacheC []complex128) (float64, error) {
	if !a.UseCache() {
		return a.EvaluateVars(vars)
	}
	idx := a.CacheIdx()
	if int(idx) >= len(cacheR) {
		return 0, types.NewPdfError("Argus 缓存索引越界: %d", idx)
	}
	return cacheR[idx], nil
}

// CacheReal 逐事件缓存密度值，仅当 c 与 chi 的全部依赖参数固定时缓存
func (a *Argus) CacheReal(sess *types.Session, data *types.Dataset) types.CacheRealMap {
	if !(a.c.IsFixed() && a.chi.IsFixed()) {
		a.ClearCache()
		return nil
	}

	idx := a.CacheIdx()
	if !a.HasCacheIdx() {
		idx = sess.NextReal()
	}
	a.MarkCached(idx)

	varname := a.GetVar(0).Name
	cached := make(types.CacheRealMap, 1)
	size := data.Size()
	vals := make([]float64, 0, size)
	for entry := 0; entry < size; entry++ {
		v, _ := a.EvaluateValue(data.Value(varname, entry))
		vals = append(vals, v)
	}
	cached[idx] = vals
	return cached
}

// ------------------------------ 面积与采样 ------------------------------

// Area 返回 [min,max] 区间内的概率份额
// 先与支撑域及激活截断求交，再积分并除以归一化常数
func (a *Argus) Area(min, max float64) (float64, error) {
	if a.norm == 0 {
		return 0, nil
	}
	xmin, xmax, ok := a.clip(min, max)
	if !ok {
		return 0, nil
	}
	return a.integral(xmin, xmax) / a.norm, nil
}

// Generate 接受-拒绝采样一个事件，键为变量名
func (a *Argus) Generate() (map[string]float64, error) {
	if a.norm == 0 {
		return nil, types.NewPdfError("Argus 退化分布无法采样")
	}
	xmin, xmax, ok := a.clip(0, a.C())
	if !ok {
		return nil, types.NewPdfError("Argus 截断区间为空，无法采样")
	}

	// 扫描网格估计密度上界
	const scan = 256
	maxPdf := 0.0
	for i := 0; i < scan; i++ {
		x := xmin + (xmax-xmin)*(float64(i)+0.5)/scan
		if v, _ := a.EvaluateValue(x); v > maxPdf {
			maxPdf = v
		}
	}
	maxPdf *= 1.1

	ux := distuv.Uniform{Min: xmin, Max: xmax}
	uy := distuv.Uniform{Min: 0, Max: maxPdf}
	gen := make(map[string]float64, 1)
	for {
		x := ux.Rand()
		v, _ := a.EvaluateValue(x)
		if uy.Rand() <= v {
			gen[a.GetVar(0).Name] = x
			return gen, nil
		}
	}
}

// Project 一维边缘密度（单变量模型即密度本身）
func (a *Argus) Project(varName string, value float64) (float64, error) {
	if varName != a.GetVar(0).Name {
		return 0, types.NewPdfError("Argus 不依赖变量: %s", varName)
	}
	return a.EvaluateValue(value)
}
