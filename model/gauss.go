package model

import (
	"math"

	"cfit/types"

	"gonum.org/v1/gonum/stat/distuv"
)

/*
  Gauss 高斯模型，归一化定义：
                          1       (   ( x - mu )^2  )
  G(x)               = ------- exp( - ------------  )
                        norm      (     2 sigma^2   )

                                 ____                         upper
                                / pi           (   x - mu    )
  norm               = sigma   / ----       erf( ---------_  )
                             \/   2            (  sigma \/2  )
                                                              lower
  无截断时边界项取饱和值 2（erf 在两侧分别趋于 ±1）
*/

// Gauss 高斯概率密度模型
type Gauss struct {
	Base

	mu    *types.ParameterExpr // 均值
	sigma *types.ParameterExpr // 宽度

	hasLower bool    // 下截断标志
	hasUpper bool    // 上截断标志
	lower    float64 // 下截断边界
	upper    float64 // 上截断边界

	norm float64 // 归一化常数，参数或截断变更时重算
}

// NewGauss 创建高斯模型
// 参数:
//
//	x - 模型变量
//	mu, sigma - 均值与宽度参数
func NewGauss(x types.Variable, mu, sigma types.Parameter) *Gauss {
	return NewGaussExpr(x, types.NewParExpr(mu), types.NewParExpr(sigma))
}

// NewGaussExpr 由参数表达式创建高斯模型
func NewGaussExpr(x types.Variable, mu, sigma *types.ParameterExpr) *Gauss {
	g := &Gauss{mu: mu, sigma: sigma}
	g.Init()
	g.PushVar(x)
	g.PushPars(mu.Deps())
	g.PushPars(sigma.Deps())
	g.Bind(func() {
		g.syncPars()
		g.Norm()
	})
	g.Norm()
	return g
}

// syncPars 将基础参数表按名称回灌到表达式
func (g *Gauss) syncPars() {
	m := g.ParMap()
	g.mu.SetPars(m)
	g.sigma.SetPars(m)
}

// Mu 当前均值
func (g *Gauss) Mu() float64 { return g.mu.Evaluate() }

// Sigma 当前宽度
func (g *Gauss) Sigma() float64 { return g.sigma.Evaluate() }

// ------------------------------ 截断设置 ------------------------------

// SetLowerLimit 设置下截断边界并重算归一化
func (g *Gauss) SetLowerLimit(lower float64) {
	g.hasLower = true
	g.lower = lower
	g.Norm()
}

// SetUpperLimit 设置上截断边界并重算归一化
func (g *Gauss) SetUpperLimit(upper float64) {
	g.hasUpper = true
	g.upper = upper
	g.Norm()
}

// SetLimits 同时设置上下截断边界并重算归一化
func (g *Gauss) SetLimits(lower, upper float64) {
	g.hasLower = true
	g.hasUpper = true
	g.lower = lower
	g.upper = upper
	g.Norm()
}

// UnsetLowerLimit 取消下截断并重算归一化
func (g *Gauss) UnsetLowerLimit() {
	g.hasLower = false
	g.Norm()
}

// UnsetUpperLimit 取消上截断并重算归一化
func (g *Gauss) UnsetUpperLimit() {
	g.hasUpper = false
	g.Norm()
}

// UnsetLimits 取消全部截断并重算归一化
func (g *Gauss) UnsetLimits() {
	g.hasLower = false
	g.hasUpper = false
	g.Norm()
}

// emptyRange 截断区间为空（上边界不高于下边界）
func (g *Gauss) emptyRange() bool {
	return g.hasLower && g.hasUpper && g.lower >= g.upper
}

// ------------------------------ 归一化 ------------------------------

// Norm 重算归一化常数
// 零宽度与空截断区间走退化分支：norm 置 0，密度处处为 0
func (g *Gauss) Norm() {
	vmu := g.Mu()
	vsigma := g.Sigma()

	if vsigma <= 0 || g.emptyRange() {
		g.norm = 0
		return
	}

	sqrt2 := math.Sqrt(2.0)

	argmin := 0.0
	if g.hasLower {
		argmin = 1.0 + math.Erf((g.lower-vmu)/(vsigma*sqrt2))
	}
	argmax := 2.0
	if g.hasUpper {
		argmax = 1.0 + math.Erf((g.upper-vmu)/(vsigma*sqrt2))
	}

	factor := vsigma * math.Sqrt(math.Pi/2.0)
	g.norm = factor * (argmax - argmin)
}

// ------------------------------ 求值 ------------------------------

// EvaluateValue 单点密度求值
// 截断窗口之外返回 0；退化情形（零宽度/空区间）返回 0
func (g *Gauss) EvaluateValue(x float64) (float64, error) {
	if g.norm == 0 {
		return 0, nil
	}
	if g.hasLower && x < g.lower {
		return 0, nil
	}
	if g.hasUpper && x > g.upper {
		return 0, nil
	}
	vmu := g.Mu()
	vsigma := g.Sigma()
	return math.Exp(-0.5*math.Pow(x-vmu, 2)/math.Pow(vsigma, 2)) / g.norm, nil
}

// Evaluate 使用模型当前变量值求值
func (g *Gauss) Evaluate() (float64, error) {
	return g.EvaluateValue(g.GetVar(0).Value)
}

// EvaluateVars 位置变量向量求值（单变量模型取首元素）
func (g *Gauss) EvaluateVars(vars []float64) (float64, error) {
	if len(vars) < 1 {
		return 0, types.NewPdfError("Gauss 求值缺少变量")
	}
	return g.EvaluateValue(vars[0])
}

// EvaluateCached 缓存感知求值：缓存激活时原样返回缓存值
func (g *Gauss) EvaluateCached(vars []float64, cacheR []float64, cacheC []complex128) (float64, error) {
	if !g.UseCache() {
		return g.EvaluateVars(vars)
	}
	idx := g.CacheIdx()
	if int(idx) >= len(cacheR) {
		return 0, types.NewPdfError("Gauss 缓存索引越界: %d", idx)
	}
	return cacheR[idx], nil
}

// CacheReal 逐事件缓存密度值
// 仅当 mu 与 sigma 的全部依赖参数固定时缓存；否则返回空映射
func (g *Gauss) CacheReal(sess *types.Session, data *types.Dataset) types.CacheRealMap {
	if !(g.mu.IsFixed() && g.sigma.IsFixed()) {
		g.ClearCache()
		return nil
	}

	// 首次启用时分配索引，重复调用复用
	idx := g.CacheIdx()
	if !g.HasCacheIdx() {
		idx = sess.NextReal()
	}
	g.MarkCached(idx)

	varname := g.GetVar(0).Name
	cached := make(types.CacheRealMap, 1)
	size := data.Size()
	vals := make([]float64, 0, size)
	for entry := 0; entry < size; entry++ {
		v, _ := g.EvaluateValue(data.Value(varname, entry))
		vals = append(vals, v)
	}
	cached[idx] = vals
	return cached
}

// ------------------------------ 面积与采样 ------------------------------

// Area 返回 [min,max] 区间内的概率份额
// 区间先与激活截断求交，再积分并除以归一化常数
func (g *Gauss) Area(min, max float64) (float64, error) {
	vmu := g.Mu()
	vsigma := g.Sigma()

	xmin := min
	if g.hasLower {
		xmin = math.Max(min, g.lower)
	}
	xmax := max
	if g.hasUpper {
		xmax = math.Min(max, g.upper)
	}
	if xmin >= xmax {
		return 0, nil
	}

	// 零宽度退化：全部概率集中在 mu
	if vsigma <= 0 {
		if g.emptyRange() {
			return 0, nil
		}
		if xmin <= vmu && vmu <= xmax {
			return 1, nil
		}
		return 0, nil
	}
	if g.norm == 0 {
		return 0, nil
	}

	sqrt2 := math.Sqrt(2.0)
	argmin := math.Erf((xmin - vmu) / (vsigma * sqrt2))
	argmax := math.Erf((xmax - vmu) / (vsigma * sqrt2))

	factor := vsigma * math.Sqrt(math.Pi/2.0)
	return (argmax - argmin) * factor / g.norm, nil
}

// Generate 按当前 mu/sigma 采样一个事件，键为变量名
// 截断激活时在窗口的累积概率区间内做逆变换采样；
// 窗口内概率质量数值为零（远尾窗口）时报错而非重采样
func (g *Gauss) Generate() (map[string]float64, error) {
	vsigma := g.Sigma()
	if vsigma <= 0 || g.emptyRange() {
		return nil, types.NewPdfError("Gauss 退化分布无法采样: sigma=%g", vsigma)
	}
	dist := distuv.Normal{Mu: g.Mu(), Sigma: vsigma}
	pLo, pHi := 0.0, 1.0
	if g.hasLower {
		pLo = dist.CDF(g.lower)
	}
	if g.hasUpper {
		pHi = dist.CDF(g.upper)
	}
	if pHi <= pLo {
		return nil, types.NewPdfError("Gauss 截断窗口内概率质量为 0，无法采样")
	}

	u := distuv.Uniform{Min: pLo, Max: pHi}
	x := dist.Quantile(u.Rand())
	if g.hasLower && x < g.lower {
		x = g.lower
	}
	if g.hasUpper && x > g.upper {
		x = g.upper
	}
	gen := make(map[string]float64, 1)
	gen[g.GetVar(0).Name] = x
	return gen, nil
}

// Project 一维边缘密度（单变量模型即密度本身）
func (g *Gauss) Project(varName string, value float64) (float64, error) {
	if varName != g.GetVar(0).Name {
		return 0, types.NewPdfError("Gauss 不依赖变量: %s", varName)
	}
	return g.EvaluateValue(value)
}
