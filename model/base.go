package model

import (
	"cfit/types"
)

// Base 模型基础结构体，存储模型的变量与参数列表
// 变量与参数按声明顺序定位，参数另建名称索引供表达式重绑定；
// 具体模型嵌入 Base 并通过 Bind 挂接自身的刷新逻辑
type Base struct {
	vars   []types.Variable  // 变量列表（声明序）
	pars   []types.Parameter // 参数列表（声明序）
	varIdx map[string]int    // 变量名称索引
	parIdx map[string]int    // 参数名称索引

	// 逐事件缓存状态机：{未缓存} -> 缓存启用 -> {已缓存(索引)}
	// 任一依赖参数被释放后回到 {未缓存}
	doCache  bool // 缓存是否激活
	hasIdx   bool // 是否已分配过缓存索引
	cacheIdx uint // 缓存索引，首次激活时分配，此后复用

	refresh func() // 参数变更后的刷新回调（同步表达式并重算归一化）
}

// Init 初始化索引表，模型构造时调用一次
func (b *Base) Init() {
	b.varIdx = make(map[string]int)
	b.parIdx = make(map[string]int)
}

// Bind 挂接刷新回调
// 参数refresh: 参数变更后执行的函数，负责重绑定表达式并重算归一化
func (b *Base) Bind(refresh func()) { b.refresh = refresh }

// PushVar 追加变量
func (b *Base) PushVar(v types.Variable) {
	b.varIdx[v.Name] = len(b.vars)
	b.vars = append(b.vars, v)
}

// PushPar 追加参数，同名参数只保留首次声明
func (b *Base) PushPar(p types.Parameter) {
	if _, ok := b.parIdx[p.Name]; ok {
		return
	}
	b.parIdx[p.Name] = len(b.pars)
	b.pars = append(b.pars, p)
}

// PushPars 批量追加参数
func (b *Base) PushPars(ps []types.Parameter) {
	for _, p := range ps {
		b.PushPar(p)
	}
}

// GetVar 位置访问变量，索引无效返回零值
func (b *Base) GetVar(i int) types.Variable {
	if i >= 0 && i < len(b.vars) {
		return b.vars[i]
	}
	return types.Variable{}
}

// GetPar 位置访问参数，索引无效返回零值
func (b *Base) GetPar(i int) types.Parameter {
	if i >= 0 && i < len(b.pars) {
		return b.pars[i]
	}
	return types.Parameter{}
}

// NVars 变量数量
func (b *Base) NVars() int { return len(b.vars) }

// NPars 参数数量
func (b *Base) NPars() int { return len(b.pars) }

// VarNames 变量名列表（声明序）
func (b *Base) VarNames() []string {
	names := make([]string, len(b.vars))
	for i := range b.vars {
		names[i] = b.vars[i].Name
	}
	return names
}

// DependsOn 是否依赖指定变量
func (b *Base) DependsOn(name string) bool {
	_, ok := b.varIdx[name]
	return ok
}

// IsFixed 所有参数均固定时为真
func (b *Base) IsFixed() bool {
	for i := range b.pars {
		if !b.pars[i].Fixed {
			return false
		}
	}
	return true
}

// ParMap 参数名称映射，用于表达式重绑定
func (b *Base) ParMap() map[string]types.Parameter {
	m := make(map[string]types.Parameter, len(b.pars))
	for _, p := range b.pars {
		m[p.Name] = p
	}
	return m
}

// SetVars 批量设置变量（声明序）
func (b *Base) SetVars(vals []float64) error {
	if len(vals) != len(b.vars) {
		return types.NewPdfError("变量数量不匹配: 期望 %d, 实际 %d", len(b.vars), len(vals))
	}
	for i := range b.vars {
		b.vars[i].Value = vals[i]
	}
	return nil
}

// SetVar 按名设置变量
func (b *Base) SetVar(name string, val float64) error {
	i, ok := b.varIdx[name]
	if !ok {
		return types.NewPdfError("未知变量: %s", name)
	}
	b.vars[i].Value = val
	return nil
}

// SetPars 批量设置参数值（声明序），随后触发刷新
func (b *Base) SetPars(vals []float64) error {
	if len(vals) != len(b.pars) {
		return types.NewPdfError("参数数量不匹配: 期望 %d, 实际 %d", len(b.pars), len(vals))
	}
	for i := range b.pars {
		b.pars[i].Value = vals[i]
	}
	b.doRefresh()
	return nil
}

// SetPar 按名设置参数值与不确定度，随后触发刷新
func (b *Base) SetPar(name string, val, err float64) error {
	i, ok := b.parIdx[name]
	if !ok {
		return types.NewPdfError("未知参数: %s", name)
	}
	b.pars[i].Set(val, err)
	b.doRefresh()
	return nil
}

// SetParMap 按名称映射批量设置参数，随后触发刷新
// 未出现在映射中的参数保持不变
func (b *Base) SetParMap(pars map[string]types.Parameter) error {
	for name, p := range pars {
		if i, ok := b.parIdx[name]; ok {
			b.pars[i].Value = p.Value
			b.pars[i].Error = p.Error
			b.pars[i].Fixed = p.Fixed
			if !p.Fixed {
				b.ClearCache()
			}
		}
	}
	b.doRefresh()
	return nil
}

// SetParsResult 按拟合结果设置参数，随后触发刷新
func (b *Base) SetParsResult(res *types.FitResult) error {
	if res == nil {
		return types.NewPdfError("拟合结果为空")
	}
	for _, p := range res.Pars {
		if i, ok := b.parIdx[p.Name]; ok {
			b.pars[i].Value = p.Value
			b.pars[i].Error = p.Error
		}
	}
	b.doRefresh()
	return nil
}

// FixPar 固定参数
func (b *Base) FixPar(name string) error {
	i, ok := b.parIdx[name]
	if !ok {
		return types.NewPdfError("未知参数: %s", name)
	}
	b.pars[i].Fixed = true
	b.doRefresh()
	return nil
}

// FreePar 释放参数并使逐事件缓存失效
func (b *Base) FreePar(name string) error {
	i, ok := b.parIdx[name]
	if !ok {
		return types.NewPdfError("未知参数: %s", name)
	}
	b.pars[i].Fixed = false
	b.ClearCache()
	b.doRefresh()
	return nil
}

func (b *Base) doRefresh() {
	if b.refresh != nil {
		b.refresh()
	}
}

// ------------------------------ 缓存状态 ------------------------------

// MarkCached 激活缓存，首次激活时记录分配到的索引，此后复用
func (b *Base) MarkCached(idx uint) {
	b.doCache = true
	b.hasIdx = true
	b.cacheIdx = idx
}

// ClearCache 使缓存失效（索引保留，重新激活时复用）
func (b *Base) ClearCache() { b.doCache = false }

// UseCache 缓存是否激活
func (b *Base) UseCache() bool { return b.doCache }

// HasCacheIdx 是否已分配过缓存索引
func (b *Base) HasCacheIdx() bool { return b.hasIdx }

// CacheIdx 当前缓存索引
func (b *Base) CacheIdx() uint { return b.cacheIdx }

// Clone 深拷贝基础结构（刷新回调由调用方重新挂接）
func (b *Base) Clone() Base {
	nb := Base{
		vars:     append([]types.Variable{}, b.vars...),
		pars:     append([]types.Parameter{}, b.pars...),
		varIdx:   make(map[string]int, len(b.varIdx)),
		parIdx:   make(map[string]int, len(b.parIdx)),
		doCache:  b.doCache,
		hasIdx:   b.hasIdx,
		cacheIdx: b.cacheIdx,
	}
	for k, v := range b.varIdx {
		nb.varIdx[k] = v
	}
	for k, v := range b.parIdx {
		nb.parIdx[k] = v
	}
	return nb
}

// 以下为空实现方法，为 Base 结构体提供默认的模型行为
// 模型默认不参与逐事件缓存：返回空映射即缓存协议中的"不缓存"，
// 参与缓存的模型重写对应方法

// CacheReal 逐事件实数缓存（空实现）
func (b *Base) CacheReal(sess *types.Session, data *types.Dataset) types.CacheRealMap {
	return nil
}

// CacheComplex 逐事件复数缓存（空实现）
func (b *Base) CacheComplex(sess *types.Session, data *types.Dataset) types.CacheComplexMap {
	return nil
}
