package types

// Variable 模型变量：具名标量，取值来自数据集的同名列
// 在模型内按声明顺序定位（位置访问 GetVar(i)）
type Variable struct {
	Name  string  // 变量名称，对应数据集列名
	Value float64 // 当前值
}

// NewVariable 创建变量
func NewVariable(name string, value float64) Variable {
	return Variable{Name: name, Value: value}
}

// Parameter 模型参数：具名标量，带可选不确定度与固定标志
// 自由参数是最小化器的搜索坐标，固定参数在一次拟合内视为常数
type Parameter struct {
	Name  string  // 参数名称
	Value float64 // 当前值
	Error float64 // 不确定度，未知为负值
	Fixed bool    // 固定标志
}

// NewParameter 创建自由参数
func NewParameter(name string, value float64) Parameter {
	return Parameter{Name: name, Value: value, Error: -1.0}
}

// NewFixedParameter 创建固定参数
func NewFixedParameter(name string, value float64) Parameter {
	return Parameter{Name: name, Value: value, Error: -1.0, Fixed: true}
}

// IsFixed 是否固定
func (p Parameter) IsFixed() bool { return p.Fixed }

// Fix 固定参数
func (p *Parameter) Fix() { p.Fixed = true }

// Release 释放参数
func (p *Parameter) Release() { p.Fixed = false }

// Set 更新参数值与不确定度
func (p *Parameter) Set(value, err float64) {
	p.Value = value
	p.Error = err
}
