package decay

import (
	"math/cmplx"

	"cfit/model"
	"cfit/types"

	"gonum.org/v1/gonum/stat/distuv"
)

// normBins 归一化积分每个轴的网格数
const normBins = 400

// genScanBins 采样上界扫描每个轴的网格数
const genScanBins = 200

/*
  Decay3BodyCP 含 CP 破坏的三体衰变模型。未归一化密度：

  p(m12,m13,m23) = F(点) ps(点) [ |A|^2 + |z|^2 |Ab|^2 + 2 kappa Re( z conj(A) Ab ) ]

  A 为直接振幅，Ab 为共轭振幅（同一函数形式交换 mSq12/mSq13 角色），
  z 为复混合系数，kappa 为可选的交叉项缩放参数，F 为整形函数乘积。
  归一化常数：

  norm = nDir + |z|^2 nCnj + 2 kappa Re( z nXed )

  nDir/nCnj/nXed 为三个归一化分量（直接、共轭、交叉），由相空间
  网格积分获得；振幅完全固定时可由外部注入并冻结。
*/

// Decay3BodyCP 三体衰变 CP 模型
type Decay3BodyCP struct {
	model.Base

	amp Amplitude   // 直接振幅
	ps  *PhaseSpace // 相空间

	hasKappa bool
	kappa    *types.ParameterExpr // 交叉项缩放参数

	z    *types.CoefExpr // 复混合系数
	zVal complex128      // 当前系数值，Norm 时更新
	kVal float64         // 当前 kappa 值，Norm 时更新

	// 归一化分量与组合常数
	nDir float64
	nCnj float64
	nXed complex128
	norm float64

	fixedAmp bool // 振幅全部参数固定
	injected bool // 归一化分量由外部注入并冻结

	// 网格积分得到的分量对当前振幅/整形参数取值是否仍然有效；
	// 有效期间只移动 z/kappa 无需重新积分
	compValid bool
	compSig   []float64

	maxPdf float64 // 密度最大值，采样用，0 表示未知需扫描

	// 直接/共轭振幅的逐事件缓存索引
	cacheAmps bool
	hasAmpIdx bool
	ampDirIdx uint
	ampCnjIdx uint

	funcs []Function // 整形函数列表
}

// NewDecay3BodyCP 创建三体衰变 CP 模型
// 参数:
//
//	mSq12, mSq13, mSq23 - 三个不变质量平方变量（声明序即位置序）
//	amp - 直接振幅
//	z - 复混合系数表达式
//	ps - 相空间
func NewDecay3BodyCP(mSq12, mSq13, mSq23 types.Variable, amp Amplitude, z *types.CoefExpr, ps *PhaseSpace) *Decay3BodyCP {
	d := &Decay3BodyCP{amp: amp, ps: ps, z: z}
	d.init(mSq12, mSq13, mSq23)
	return d
}

// NewDecay3BodyCPKappa 创建带交叉项缩放参数的三体衰变 CP 模型
func NewDecay3BodyCPKappa(mSq12, mSq13, mSq23 types.Variable, amp Amplitude, z *types.CoefExpr, kappa types.Parameter, ps *PhaseSpace) *Decay3BodyCP {
	d := &Decay3BodyCP{amp: amp, ps: ps, z: z, hasKappa: true, kappa: types.NewParExpr(kappa)}
	d.init(mSq12, mSq13, mSq23)
	return d
}

func (d *Decay3BodyCP) init(mSq12, mSq13, mSq23 types.Variable) {
	d.Init()
	d.PushVar(mSq12)
	d.PushVar(mSq13)
	d.PushVar(mSq23)
	d.PushPars(d.amp.Pars())
	d.PushPars(d.z.Deps())
	if d.hasKappa {
		d.PushPars(d.kappa.Deps())
	}
	d.Bind(func() {
		d.syncPars()
		d.Norm()
	})
	d.syncPars()
	d.Norm()
}

// syncPars 将基础参数表回灌到振幅、系数、kappa 与整形函数
// 振幅参数被释放后逐事件振幅缓存随之失效
func (d *Decay3BodyCP) syncPars() {
	m := d.ParMap()
	d.amp.SetPars(m)
	d.z.SetPars(m)
	if d.hasKappa {
		d.kappa.SetPars(m)
	}
	for _, f := range d.funcs {
		f.SetPars(m)
	}
	if !d.amp.IsFixed() {
		d.cacheAmps = false
	}
}

// ------------------------------ 访问器 ------------------------------

// MSq12Name mSq12 变量名
func (d *Decay3BodyCP) MSq12Name() string { return d.GetVar(0).Name }

// MSq13Name mSq13 变量名
func (d *Decay3BodyCP) MSq13Name() string { return d.GetVar(1).Name }

// MSq23Name mSq23 变量名
func (d *Decay3BodyCP) MSq23Name() string { return d.GetVar(2).Name }

// NDir 直接振幅归一化分量
func (d *Decay3BodyCP) NDir() float64 { return d.nDir }

// NCnj 共轭振幅归一化分量
func (d *Decay3BodyCP) NCnj() float64 { return d.nCnj }

// NXed 交叉重叠归一化分量
func (d *Decay3BodyCP) NXed() complex128 { return d.nXed }

// PhaseSpace 相空间
func (d *Decay3BodyCP) PhaseSpace() *PhaseSpace { return d.ps }

// SetMaxPdf 设置采样用的密度上界
func (d *Decay3BodyCP) SetMaxPdf(max float64) { d.maxPdf = max }

// ------------------------------ 归一化分量注入 ------------------------------

// SetNormComponents 注入三个归一化分量
// 仅在振幅完全固定时生效；注入后冻结，不再被网格积分覆盖，
// 直到某个振幅参数被释放
func (d *Decay3BodyCP) SetNormComponents(nDir, nCnj float64, nXed complex128) {
	d.fixedAmp = d.amp.IsFixed()
	if !d.fixedAmp {
		return
	}
	d.nDir = nDir
	d.nCnj = nCnj
	d.nXed = nXed
	d.injected = true
	d.compValid = false
	d.combine()
}

// SetNormComponentsSymmetric 共轭对称振幅的便捷注入：nCnj = nDir
func (d *Decay3BodyCP) SetNormComponentsSymmetric(nDir float64, nXed complex128) {
	d.SetNormComponents(nDir, nDir, nXed)
}

// ------------------------------ 密度求值 ------------------------------

// evaluateFuncs 整形函数乘积
func (d *Decay3BodyCP) evaluateFuncs(mSq12, mSq13, mSq23 float64) float64 {
	f := 1.0
	for _, fn := range d.funcs {
		f *= fn.Evaluate(mSq12, mSq13, mSq23)
	}
	return f
}

// conjugate 共轭振幅：同一函数形式交换 mSq12/mSq13 参与角色
func (d *Decay3BodyCP) conjugate(mSq12, mSq13, mSq23 float64) complex128 {
	return d.amp.Evaluate(d.ps, mSq13, mSq12, mSq23)
}

// abs2 复数模方
func abs2(c complex128) float64 {
	return real(c)*real(c) + imag(c)*imag(c)
}

// evaluateUnnorm 未归一化密度
func (d *Decay3BodyCP) evaluateUnnorm(mSq12, mSq13, mSq23 float64) float64 {
	w := d.ps.Evaluate(mSq12, mSq13)
	if w == 0 {
		return 0
	}
	a := d.amp.Evaluate(d.ps, mSq12, mSq13, mSq23)
	ab := d.conjugate(mSq12, mSq13, mSq23)

	inter := 2.0 * real(d.zVal*cmplx.Conj(a)*ab)
	if d.hasKappa {
		inter *= d.kVal
	}
	dens := abs2(a) + abs2(d.zVal)*abs2(ab) + inter
	return d.evaluateFuncs(mSq12, mSq13, mSq23) * w * dens
}

// combine 由当前 z/kappa 与归一化分量组合归一化常数
func (d *Decay3BodyCP) combine() {
	inter := 2.0 * real(d.zVal*d.nXed)
	if d.hasKappa {
		inter *= d.kVal
	}
	d.norm = d.nDir + abs2(d.zVal)*d.nCnj + inter
}

// binCenter 网格单元中心
func binCenter(bin, nbins int, min, max float64) float64 {
	return (max-min)/float64(nbins)*(float64(bin)+0.5) + min
}

// compSignature 影响归一化分量的参数取值快照（振幅与整形函数，不含 z/kappa）
func (d *Decay3BodyCP) compSignature() []float64 {
	sig := make([]float64, 0, 4)
	for _, p := range d.amp.Pars() {
		sig = append(sig, p.Value)
	}
	for _, fn := range d.funcs {
		for _, p := range fn.Pars() {
			sig = append(sig, p.Value)
		}
	}
	return sig
}

func sigEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Norm 重算归一化
// 更新 z/kappa 当前值；分量已注入且振幅保持固定，或上次网格
// 积分以来振幅与整形参数取值未变时跳过积分，否则在 Dalitz
// 区域上网格积分三个归一化分量，最后组合
func (d *Decay3BodyCP) Norm() {
	d.zVal = d.z.Evaluate()
	if d.hasKappa {
		d.kVal = d.kappa.Evaluate()
	}
	d.fixedAmp = d.amp.IsFixed()
	if !d.fixedAmp {
		d.injected = false
	}

	if !d.injected && !(d.compValid && sigEqual(d.compSig, d.compSignature())) {
		min12, max12 := d.ps.MSq12Min(), d.ps.MSq12Max()
		min13, max13 := d.ps.MSq13Min(), d.ps.MSq13Max()
		dx := (max12 - min12) / normBins
		dy := (max13 - min13) / normBins

		nDir, nCnj := 0.0, 0.0
		nXed := complex(0, 0)
		for i := 0; i < normBins; i++ {
			x := binCenter(i, normBins, min12, max12)
			for j := 0; j < normBins; j++ {
				y := binCenter(j, normBins, min13, max13)
				w := d.ps.Evaluate(x, y)
				if w == 0 {
					continue
				}
				m23 := d.ps.MSq23(x, y)
				fw := d.evaluateFuncs(x, y, m23) * w
				a := d.amp.Evaluate(d.ps, x, y, m23)
				ab := d.conjugate(x, y, m23)
				nDir += fw * abs2(a)
				nCnj += fw * abs2(ab)
				nXed += complex(fw, 0) * cmplx.Conj(a) * ab
			}
		}
		cell := dx * dy
		d.nDir = nDir * cell
		d.nCnj = nCnj * cell
		d.nXed = nXed * complex(cell, 0)
		d.compValid = true
		d.compSig = d.compSignature()
	}

	d.combine()
}

// Evaluate 使用模型当前变量值求值
func (d *Decay3BodyCP) Evaluate() (float64, error) {
	return d.Evaluate3(d.GetVar(0).Value, d.GetVar(1).Value, d.GetVar(2).Value)
}

// Evaluate3 三质量显式求值
func (d *Decay3BodyCP) Evaluate3(mSq12, mSq13, mSq23 float64) (float64, error) {
	if d.norm == 0 {
		return 0, types.NewPdfError("Decay3BodyCP 归一化常数为 0")
	}
	return d.evaluateUnnorm(mSq12, mSq13, mSq23) / d.norm, nil
}

// Evaluate2 双质量求值，第三不变质量由守恒关系导出
func (d *Decay3BodyCP) Evaluate2(mSq12, mSq13 float64) (float64, error) {
	return d.Evaluate3(mSq12, mSq13, d.ps.MSq23(mSq12, mSq13))
}

// EvaluateValue 多变量模型不支持单值求值
func (d *Decay3BodyCP) EvaluateValue(x float64) (float64, error) {
	return 0, types.NewPdfError("对多变量模型调用了单值求值")
}

// EvaluateVars 位置变量向量求值：长度 2 导出第三质量，长度 3 显式
func (d *Decay3BodyCP) EvaluateVars(vars []float64) (float64, error) {
	switch len(vars) {
	case 2:
		return d.Evaluate2(vars[0], vars[1])
	case 3:
		return d.Evaluate3(vars[0], vars[1], vars[2])
	default:
		return 0, types.NewPdfError("Decay3BodyCP 变量数量不匹配: %d", len(vars))
	}
}

// EvaluateCached 缓存感知求值
// 振幅缓存激活时从复数缓存取直接/共轭振幅值，仅用当前
// （可能自由的）z 与 kappa 重新组合，绕过昂贵的振幅计算
func (d *Decay3BodyCP) EvaluateCached(vars []float64, cacheR []float64, cacheC []complex128) (float64, error) {
	if !d.cacheAmps {
		return d.EvaluateVars(vars)
	}
	if len(vars) < 2 {
		return 0, types.NewPdfError("Decay3BodyCP 变量数量不匹配: %d", len(vars))
	}
	if int(d.ampDirIdx) >= len(cacheC) || int(d.ampCnjIdx) >= len(cacheC) {
		return 0, types.NewPdfError("Decay3BodyCP 缓存索引越界")
	}
	if d.norm == 0 {
		return 0, types.NewPdfError("Decay3BodyCP 归一化常数为 0")
	}

	mSq12, mSq13 := vars[0], vars[1]
	mSq23 := d.ps.MSq23(mSq12, mSq13)
	if len(vars) > 2 {
		mSq23 = vars[2]
	}
	w := d.ps.Evaluate(mSq12, mSq13)
	if w == 0 {
		return 0, nil
	}

	a := cacheC[d.ampDirIdx]
	ab := cacheC[d.ampCnjIdx]
	inter := 2.0 * real(d.zVal*cmplx.Conj(a)*ab)
	if d.hasKappa {
		inter *= d.kVal
	}
	dens := abs2(a) + abs2(d.zVal)*abs2(ab) + inter
	return d.evaluateFuncs(mSq12, mSq13, mSq23) * w * dens / d.norm, nil
}

// CacheComplex 逐事件缓存直接与共轭振幅
// 仅当振幅（而非 z）完全固定时缓存：两个缓存索引各占一个
// 映射条目；z 保持自由时每次迭代只需用当前 z 重新组合
func (d *Decay3BodyCP) CacheComplex(sess *types.Session, data *types.Dataset) types.CacheComplexMap {
	d.cacheAmps = d.amp.IsFixed()
	if !d.cacheAmps {
		return nil
	}

	// 首次启用时分配两个索引，重复调用复用
	if !d.hasAmpIdx {
		d.ampDirIdx = sess.NextComplex()
		d.ampCnjIdx = sess.NextComplex()
		d.hasAmpIdx = true
	}

	n12, n13 := d.MSq12Name(), d.MSq13Name()
	size := data.Size()
	dir := make([]complex128, 0, size)
	cnj := make([]complex128, 0, size)
	for entry := 0; entry < size; entry++ {
		x := data.Value(n12, entry)
		y := data.Value(n13, entry)
		m23 := d.ps.MSq23(x, y)
		dir = append(dir, d.amp.Evaluate(d.ps, x, y, m23))
		cnj = append(cnj, d.conjugate(x, y, m23))
	}

	cached := make(types.CacheComplexMap, 2)
	cached[d.ampDirIdx] = dir
	cached[d.ampCnjIdx] = cnj
	return cached
}

// ------------------------------ 投影 ------------------------------

// Project 一维边缘密度：固定指定变量，对其余变量网格积分
func (d *Decay3BodyCP) Project(varName string, value float64) (float64, error) {
	return d.ProjectRegion(varName, value, Region{})
}

// ProjectRegion 区域限制下的一维边缘密度
// region 限制积分变量的范围（mSq23 投影时限制 mSq12）
func (d *Decay3BodyCP) ProjectRegion(varName string, value float64, region Region) (float64, error) {
	if d.norm == 0 {
		return 0, types.NewPdfError("Decay3BodyCP 归一化常数为 0")
	}

	switch varName {
	case d.MSq12Name():
		// 固定 mSq12，对 mSq13 积分
		lo, hi := region.Clip(d.ps.MSq13Min(), d.ps.MSq13Max())
		return d.projectSum(func(y float64) float64 {
			return d.evaluateUnnorm(value, y, d.ps.MSq23(value, y))
		}, lo, hi), nil
	case d.MSq13Name():
		// 固定 mSq13，对 mSq12 积分
		lo, hi := region.Clip(d.ps.MSq12Min(), d.ps.MSq12Max())
		return d.projectSum(func(x float64) float64 {
			return d.evaluateUnnorm(x, value, d.ps.MSq23(x, value))
		}, lo, hi), nil
	case d.MSq23Name():
		// 固定 mSq23，沿守恒关系对 mSq12 积分
		lo, hi := region.Clip(d.ps.MSq12Min(), d.ps.MSq12Max())
		return d.projectSum(func(x float64) float64 {
			y := d.ps.MSqSum() - x - value
			return d.evaluateUnnorm(x, y, value)
		}, lo, hi), nil
	}
	return 0, types.NewPdfError("Decay3BodyCP 不依赖变量: %s", varName)
}

// projectSum 归一化后的一维网格积分
func (d *Decay3BodyCP) projectSum(f func(v float64) float64, lo, hi float64) float64 {
	if lo >= hi {
		return 0
	}
	dv := (hi - lo) / normBins
	sum := 0.0
	for i := 0; i < normBins; i++ {
		sum += f(binCenter(i, normBins, lo, hi))
	}
	return sum * dv / d.norm
}

// ------------------------------ 采样与组合 ------------------------------

// Generate 接受-拒绝采样一个事件，键为三个变量名
// 密度上界优先取 SetMaxPdf 设定值，未设定时网格扫描估计
func (d *Decay3BodyCP) Generate() (map[string]float64, error) {
	if d.norm == 0 {
		return nil, types.NewPdfError("Decay3BodyCP 归一化常数为 0，无法采样")
	}

	min12, max12 := d.ps.MSq12Min(), d.ps.MSq12Max()
	min13, max13 := d.ps.MSq13Min(), d.ps.MSq13Max()

	maxPdf := d.maxPdf
	if maxPdf <= 0 {
		for i := 0; i < genScanBins; i++ {
			x := binCenter(i, genScanBins, min12, max12)
			for j := 0; j < genScanBins; j++ {
				y := binCenter(j, genScanBins, min13, max13)
				if v, _ := d.Evaluate2(x, y); v > maxPdf {
					maxPdf = v
				}
			}
		}
		maxPdf *= 1.1
		d.maxPdf = maxPdf
	}

	ux := distuv.Uniform{Min: min12, Max: max12}
	uy := distuv.Uniform{Min: min13, Max: max13}
	uz := distuv.Uniform{Min: 0, Max: maxPdf}
	for {
		x := ux.Rand()
		y := uy.Rand()
		v, err := d.Evaluate2(x, y)
		if err != nil {
			return nil, err
		}
		if uz.Rand() <= v {
			return map[string]float64{
				d.MSq12Name(): x,
				d.MSq13Name(): y,
				d.MSq23Name(): d.ps.MSq23(x, y),
			}, nil
		}
	}
}

// Times 合入整形函数，返回重新归一化的新模型
// 振幅与整形函数均深拷贝：两个模型各自持有独立参数状态，
// 互不牵连；已注入的归一化分量随之失效并重新积分
func (d *Decay3BodyCP) Times(f Function) *Decay3BodyCP {
	funcs := make([]Function, 0, len(d.funcs)+1)
	for _, fn := range d.funcs {
		funcs = append(funcs, fn.Clone())
	}
	funcs = append(funcs, f.Clone())
	nd := &Decay3BodyCP{
		Base:     d.Base.Clone(),
		amp:      d.amp.Clone(),
		ps:       d.ps,
		hasKappa: d.hasKappa,
		z:        d.z.Clone(),
		maxPdf:   0,
		funcs:    funcs,
	}
	if d.hasKappa {
		nd.kappa = d.kappa.Clone()
	}
	nd.PushPars(f.Pars())
	nd.Bind(func() {
		nd.syncPars()
		nd.Norm()
	})
	nd.injected = false
	nd.syncPars()
	nd.Norm()
	return nd
}

var _ types.PdfFace = (*Decay3BodyCP)(nil)
