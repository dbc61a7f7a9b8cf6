package decay

import "cfit/types"

// Amplitude 三体衰变振幅：三个不变质量平方的复函数
// 具体共振参数化由外部提供，模型只消费该契约；
// IsFixed 仅针对振幅自身的参数（不含混合系数 z）；
// Clone 返回独立副本，供装饰组合时隔离参数状态
type Amplitude interface {
	Evaluate(ps *PhaseSpace, mSq12, mSq13, mSq23 float64) complex128
	Pars() []types.Parameter
	SetPars(pars map[string]types.Parameter)
	IsFixed() bool
	Clone() Amplitude
}

// Function 密度整形函数（效率/接受度修正）
// 与模型同变量的外部标量函数，经 Times 装饰合入密度；
// 合入后归一化积分随之改变，须立即重算
type Function interface {
	Evaluate(mSq12, mSq13, mSq23 float64) float64
	Pars() []types.Parameter
	SetPars(pars map[string]types.Parameter)
	Clone() Function
}
