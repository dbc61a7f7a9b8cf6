package minimizer

import (
	"io"
)

// Debug 调试接口
// Start 在拟合开始时回调，Update 在每次目标函数求值后回调，
// Done 在拟合结束时回调；Render 输出收集到的调试信息
type Debug interface {
	Start(names []string)
	IsDebug() bool
	SetDebug(is bool)
	Update(iter int, fval float64, x []float64)
	Done(fval float64)
	Render(w io.Writer) error
}

type debug struct{ is bool }

func (debug) Start(names []string)                  {}
func (debug *debug) IsDebug() bool                  { return debug.is }
func (debug *debug) SetDebug(is bool)               { debug.is = is }
func (debug) Update(iter int, fval float64, x []float64) {}
func (debug) Done(fval float64)                     {}
func (debug) Render(w io.Writer) error              { return nil }
