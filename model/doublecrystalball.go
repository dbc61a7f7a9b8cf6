package model

import (
	"math"

	"cfit/types"

	"gonum.org/v1/gonum/stat/distuv"
)

/*
  DoubleCrystalBall 双侧 Crystal Ball 模型，约化变量 t = (x-mu)/sigma：

  f(t) = exp( -t^2/2 )                     -alpha <= t <= beta
       = AL ( BL - t )^(-n)                t < -alpha
       = AU ( BU + t )^(-m)                t > beta

  AL = ( n/alpha )^n exp( -alpha^2/2 )     BL = n/alpha - alpha
  AU = ( m/beta  )^m exp( -beta^2/2  )     BU = m/beta  - beta

  系数选取使得函数与一阶导数在两个接缝处连续。
  归一化由分段区间积分给出；只有无界的一侧要求对应尾指数
  大于 1，有限截断窗口内任意正尾指数都可积。
*/

// DoubleCrystalBall 双侧 Crystal Ball 概率密度模型
type DoubleCrystalBall struct {
	Base

	mu    *types.ParameterExpr // 均值
	sigma *types.ParameterExpr // 核宽度
	alpha *types.ParameterExpr // 下接缝位置（sigma 单位，取绝对值）
	n     *types.ParameterExpr // 下尾幂指数
	beta  *types.ParameterExpr // 上接缝位置（sigma 单位，取绝对值）
	m     *types.ParameterExpr // 上尾幂指数

	hasLower bool
	hasUpper bool
	lower    float64
	upper    float64

	norm float64
}

// NewDoubleCrystalBall 创建双侧 Crystal Ball 模型
func NewDoubleCrystalBall(x types.Variable, mu, sigma, alpha, n, beta, m types.Parameter) *DoubleCrystalBall {
	d := &DoubleCrystalBall{
		mu:    types.NewParExpr(mu),
		sigma: types.NewParExpr(sigma),
		alpha: types.NewParExpr(alpha),
		n:     types.NewParExpr(n),
		beta:  types.NewParExpr(beta),
		m:     types.NewParExpr(m),
	}
	d.Init()
	d.PushVar(x)
	d.PushPar(mu)
	d.PushPar(sigma)
	d.PushPar(alpha)
	d.PushPar(n)
	d.PushPar(beta)
	d.PushPar(m)
	d.Bind(func() {
		d.syncPars()
		d.Norm()
	})
	d.Norm()
	return d
}

func (d *DoubleCrystalBall) syncPars() {
	pm := d.ParMap()
	d.mu.SetPars(pm)
	d.sigma.SetPars(pm)
	d.alpha.SetPars(pm)
	d.n.SetPars(pm)
	d.beta.SetPars(pm)
	d.m.SetPars(pm)
}

// Mu 当前均值
func (d *DoubleCrystalBall) Mu() float64 { return d.mu.Evaluate() }

// Sigma 当前核宽度
func (d *DoubleCrystalBall) Sigma() float64 { return d.sigma.Evaluate() }

// Alpha 当前下接缝位置
func (d *DoubleCrystalBall) Alpha() float64 { return math.Abs(d.alpha.Evaluate()) }

// N 当前下尾幂指数
func (d *DoubleCrystalBall) N() float64 { return d.n.Evaluate() }

// Beta 当前上接缝位置
func (d *DoubleCrystalBall) Beta() float64 { return math.Abs(d.beta.Evaluate()) }

// M 当前上尾幂指数
func (d *DoubleCrystalBall) M() float64 { return d.m.Evaluate() }

// ------------------------------ 截断设置 ------------------------------

// SetLowerLimit 设置下截断边界并重算归一化
func (d *DoubleCrystalBall) SetLowerLimit(lower float64) {
	d.hasLower = true
	d.lower = lower
	d.Norm()
}

// SetUpperLimit 设置上截断边界并重算归一化
func (d *DoubleCrystalBall) SetUpperLimit(upper float64) {
	d.hasUpper = true
	d.upper = upper
	d.Norm()
}

// SetLimits 同时设置上下截断边界并重算归一化
func (d *DoubleCrystalBall) SetLimits(lower, upper float64) {
	d.hasLower = true
	d.hasUpper = true
	d.lower = lower
	d.upper = upper
	d.Norm()
}

// UnsetLimits 取消全部截断并重算归一化
func (d *DoubleCrystalBall) UnsetLimits() {
	d.hasLower = false
	d.hasUpper = false
	d.Norm()
}

// ------------------------------ 分段函数 ------------------------------

// core 高斯核（t 单位）
func (d *DoubleCrystalBall) core(t float64) float64 {
	return math.Exp(-0.5 * t * t)
}

// tailLo 下幂律尾（t 单位，t < -alpha）
func (d *DoubleCrystalBall) tailLo(t float64) float64 {
	alpha := d.Alpha()
	n := d.N()
	al := math.Pow(n/alpha, n) * math.Exp(-0.5*alpha*alpha)
	bl := n/alpha - alpha
	return al * math.Pow(bl-t, -n)
}

// tailUp 上幂律尾（t 单位，t > beta）
func (d *DoubleCrystalBall) tailUp(t float64) float64 {
	beta := d.Beta()
	m := d.M()
	au := math.Pow(m/beta, m) * math.Exp(-0.5*beta*beta)
	bu := m/beta - beta
	return au * math.Pow(bu+t, -m)
}

// segment 分段区间积分 ∫_{t1}^{t2} f dt'（t 单位，端点可取无穷）
// 无界端点要求对应尾指数大于 1，否则返回 NaN，由调用方归并
// 为退化；有限窗口内任意正尾指数都可积，指数为 1 走对数原函数
func (d *DoubleCrystalBall) segment(t1, t2 float64) float64 {
	alpha := d.Alpha()
	beta := d.Beta()
	n := d.N()
	m := d.M()
	if t1 >= t2 {
		return 0
	}

	sum := 0.0
	// 下幂律尾
	if t1 < -alpha {
		hi := math.Min(t2, -alpha)
		al := math.Pow(n/alpha, n) * math.Exp(-0.5*alpha*alpha)
		bl := n/alpha - alpha
		switch {
		case math.IsInf(t1, -1) && n <= 1:
			return math.NaN()
		case n == 1:
			sum += al * math.Log((bl-t1)/(bl-hi))
		default:
			sum += al * (math.Pow(bl-hi, 1-n) - math.Pow(bl-t1, 1-n)) / (n - 1)
		}
	}
	// 高斯核
	lo, hi := math.Max(t1, -alpha), math.Min(t2, beta)
	if lo < hi {
		sq2 := math.Sqrt(2.0)
		sum += math.Sqrt(math.Pi/2.0) * (math.Erf(hi/sq2) - math.Erf(lo/sq2))
	}
	// 上幂律尾
	if t2 > beta {
		lo := math.Max(t1, beta)
		au := math.Pow(m/beta, m) * math.Exp(-0.5*beta*beta)
		bu := m/beta - beta
		switch {
		case math.IsInf(t2, 1) && m <= 1:
			return math.NaN()
		case m == 1:
			sum += au * math.Log((bu+t2)/(bu+lo))
		default:
			sum += au * (math.Pow(bu+lo, 1-m) - math.Pow(bu+t2, 1-m)) / (m - 1)
		}
	}
	return sum
}

// ------------------------------ 归一化 ------------------------------

// Norm 重算归一化常数
// 截断缺失侧取无穷边界；尾指数不可积或区间为空时 norm 置 0
func (d *DoubleCrystalBall) Norm() {
	vsigma := d.Sigma()
	if vsigma <= 0 || d.Alpha() <= 0 || d.Beta() <= 0 {
		d.norm = 0
		return
	}
	if d.hasLower && d.hasUpper && d.lower >= d.upper {
		d.norm = 0
		return
	}

	vmu := d.Mu()
	tLo := math.Inf(-1)
	if d.hasLower {
		tLo = (d.lower - vmu) / vsigma
	}
	tUp := math.Inf(1)
	if d.hasUpper {
		tUp = (d.upper - vmu) / vsigma
	}

	val := d.segment(tLo, tUp)
	if math.IsNaN(val) || math.IsInf(val, 0) {
		d.norm = 0
		return
	}
	d.norm = vsigma * val
}

// ------------------------------ 求值 ------------------------------

// EvaluateValue 单点密度求值，截断窗口之外返回 0
func (d *DoubleCrystalBall) EvaluateValue(x float64) (float64, error) {
	if d.norm == 0 {
		return 0, nil
	}
	if d.hasLower && x < d.lower {
		return 0, nil
	}
	if d.hasUpper && x > d.upper {
		return 0, nil
	}

	t := (x - d.Mu()) / d.Sigma()
	switch {
	case t < -d.Alpha():
		return d.tailLo(t) / d.norm, nil
	case t > d.Beta():
		return d.tailUp(t) / d.norm, nil
	default:
		return d.core(t) / d.norm, nil
	}
}

// Evaluate 使用模型当前变量值求值
func (d *DoubleCrystalBall) Evaluate() (float64, error) {
	return d.EvaluateValue(d.GetVar(0).Value)
}

// EvaluateVars 位置变量向量求值（单变量模型取首元素）
func (d *DoubleCrystalBall) EvaluateVars(vars []float64) (float64, error) {
	if len(vars) < 1 {
		return 0, types.NewPdfError("DoubleCrystalBall 求值缺少变量")
	}
	return d.EvaluateValue(vars[0])
}

// EvaluateCached 缓存感知求值：缓存激活时原样返回缓存值
func (d *DoubleCrystalBall) EvaluateCached(vars []float64, cacheR []float64, cacheC []complex128) (float64, error) {
	if !d.UseCache() {
		return d.EvaluateVars(vars)
	}
	idx := d.CacheIdx()
	if int(idx) >= len(cacheR) {
		return 0, types.NewPdfError("DoubleCrystalBall 缓存索引越界: %d", idx)
	}
	return cacheR[idx], nil
}

// CacheReal 逐事件缓存密度值，仅当全部参数固定时缓存
func (d *DoubleCrystalBall) CacheReal(sess *types.Session, data *types.Dataset) types.CacheRealMap {
	if !d.IsFixed() {
		d.ClearCache()
		return nil
	}

	idx := d.CacheIdx()
	if !d.HasCacheIdx() {
		idx = sess.NextReal()
	}
	d.MarkCached(idx)

	varname := d.GetVar(0).Name
	cached := make(types.CacheRealMap, 1)
	size := data.Size()
	vals := make([]float64, 0, size)
	for entry := 0; entry < size; entry++ {
		v, _ := d.EvaluateValue(data.Value(varname, entry))
		vals = append(vals, v)
	}
	cached[idx] = vals
	return cached
}

// ------------------------------ 面积与采样 ------------------------------

// Area 返回 [min,max] 区间内的概率份额
func (d *DoubleCrystalBall) Area(min, max float64) (float64, error) {
	if d.norm == 0 {
		return 0, nil
	}
	xmin := min
	if d.hasLower {
		xmin = math.Max(min, d.lower)
	}
	xmax := max
	if d.hasUpper {
		xmax = math.Min(max, d.upper)
	}
	if xmin >= xmax {
		return 0, nil
	}

	vmu := d.Mu()
	vsigma := d.Sigma()
	val := d.segment((xmin-vmu)/vsigma, (xmax-vmu)/vsigma)
	if math.IsNaN(val) {
		return 0, nil
	}
	return val * vsigma / d.norm, nil
}

// Generate 采样一个事件，键为变量名
// 按截断窗口内的分段权重选段，段内逆变换采样：尾区用幂律
// （或对数）原函数求逆，核区在累积概率区间内取高斯分位数
func (d *DoubleCrystalBall) Generate() (map[string]float64, error) {
	if d.norm == 0 {
		return nil, types.NewPdfError("DoubleCrystalBall 退化分布无法采样")
	}

	alpha := d.Alpha()
	beta := d.Beta()
	n := d.N()
	m := d.M()
	vmu := d.Mu()
	vsigma := d.Sigma()

	tLo := math.Inf(-1)
	if d.hasLower {
		tLo = (d.lower - vmu) / vsigma
	}
	tUp := math.Inf(1)
	if d.hasUpper {
		tUp = (d.upper - vmu) / vsigma
	}

	// 窗口内分段权重（t 单位）
	wLo := 0.0
	if tLo < -alpha {
		wLo = d.segment(tLo, math.Min(-alpha, tUp))
	}
	wCore := d.segment(math.Max(tLo, -alpha), math.Min(tUp, beta))
	wUp := 0.0
	if tUp > beta {
		wUp = d.segment(math.Max(tLo, beta), tUp)
	}
	total := wLo + wCore + wUp
	if !(total > 0) {
		return nil, types.NewPdfError("DoubleCrystalBall 截断窗口内概率质量为 0，无法采样")
	}

	al := math.Pow(n/alpha, n) * math.Exp(-0.5*alpha*alpha)
	bl := n/alpha - alpha
	au := math.Pow(m/beta, m) * math.Exp(-0.5*beta*beta)
	bu := m/beta - beta

	u := distuv.Uniform{Min: 0, Max: 1}
	normal := distuv.Normal{Mu: 0, Sigma: 1}
	var t float64
	switch r := u.Rand() * total; {
	case r < wLo:
		// 下尾逆变换，从窗口下端起积
		if n == 1 {
			t = bl - (bl-tLo)*math.Exp(-r/al)
		} else {
			base := r*(n-1)/al + math.Pow(bl-tLo, 1-n)
			t = bl - math.Pow(base, 1.0/(1.0-n))
		}
	case r < wLo+wCore:
		// 核区分位数采样（累积概率限制在窗口与接缝的交内）
		lo, hi := math.Max(tLo, -alpha), math.Min(tUp, beta)
		pLo, pHi := normal.CDF(lo), normal.CDF(hi)
		t = normal.Quantile(pLo + (pHi-pLo)*u.Rand())
	default:
		// 上尾逆变换，从接缝或窗口下端起积
		s := r - wLo - wCore
		lo := math.Max(tLo, beta)
		if m == 1 {
			t = (bu+lo)*math.Exp(s/au) - bu
		} else {
			base := math.Pow(bu+lo, 1-m) - s*(m-1)/au
			t = math.Pow(base, 1.0/(1.0-m)) - bu
		}
	}

	x := vmu + vsigma*t
	if d.hasLower && x < d.lower {
		x = d.lower
	}
	if d.hasUpper && x > d.upper {
		x = d.upper
	}
	gen := make(map[string]float64, 1)
	gen[d.GetVar(0).Name] = x
	return gen, nil
}

// Project 一维边缘密度（单变量模型即密度本身）
func (d *DoubleCrystalBall) Project(varName string, value float64) (float64, error) {
	if varName != d.GetVar(0).Name {
		return 0, types.NewPdfError("DoubleCrystalBall 不依赖变量: %s", varName)
	}
	return d.EvaluateValue(value)
}
