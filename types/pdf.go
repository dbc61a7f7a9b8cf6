package types

// PdfFace 概率密度模型底层接口
// 基本模型（Gauss、Argus、DoubleCrystalBall）与复合振幅模型
// （Decay3BodyCP）共享同一能力集，最小化器只通过该接口驱动模型
type PdfFace interface {
	VarNames() []string       // 变量名列表（声明序）
	NVars() int               // 变量数量
	NPars() int               // 参数数量
	GetVar(i int) Variable    // 位置访问变量
	GetPar(i int) Parameter   // 位置访问参数
	DependsOn(name string) bool // 是否依赖指定变量
	IsFixed() bool            // 所有参数均固定时为真

	SetVars(vals []float64) error                 // 批量设置变量（声明序）
	SetPars(vals []float64) error                 // 批量设置参数（声明序）
	SetVar(name string, val float64) error        // 按名设置变量
	SetPar(name string, val, err float64) error   // 按名设置参数
	SetParMap(pars map[string]Parameter) error    // 按名映射批量设置参数
	SetParsResult(res *FitResult) error           // 按拟合结果设置参数

	// Norm 重新计算归一化常数，任何参数或截断变更后必须先调用
	// 再进行求值；所有修改器内部会主动触发，无惰性路径
	Norm()

	// CacheReal/CacheComplex 逐事件缓存协议：仅当影响该量的所有
	// 参数均固定时才缓存；否则返回空映射，求值回退为逐次重算。
	// 首次启用时从会话分配索引，重复调用复用既有索引
	CacheReal(sess *Session, data *Dataset) CacheRealMap
	CacheComplex(sess *Session, data *Dataset) CacheComplexMap

	Evaluate() (float64, error)                    // 使用模型当前变量值求值
	EvaluateValue(x float64) (float64, error)      // 单变量模型的单值求值
	EvaluateVars(vars []float64) (float64, error)  // 位置变量向量求值
	// EvaluateCached 缓存感知求值：缓存激活时直接返回缓存值
	EvaluateCached(vars []float64, cacheR []float64, cacheC []complex128) (float64, error)

	Generate() (map[string]float64, error)               // 按当前参数采样一个事件
	Project(varName string, value float64) (float64, error) // 一维边缘密度
}
