package debug

import (
	"encoding/json"
	"io"
	"log"
)

// Record 记录拟合历史状态
type Record struct {
	Names []string    // 自由参数名
	Iter  []int       // 求值序号列
	Fval  []float64   // 目标函数轨迹
	Pars  [][]float64 // 自由参数轨迹（按求值行）
	Best  float64     // 最终目标函数值

	ProjName []string    // 投影曲线名
	ProjX    [][]float64 // 投影采样点
	ProjY    [][]float64 // 投影密度值
}

// Start 初始化记录
func (list *Record) Start(names []string) {
	list.Names = append([]string{}, names...)
	list.Iter = nil
	list.Fval = nil
	list.Pars = nil
	list.Best = 0
	list.ProjName = nil
	list.ProjX = nil
	list.ProjY = nil
}

func (Record) IsDebug() bool    { return true }
func (Record) SetDebug(is bool) {}

// Update 记录一次目标函数求值
func (list *Record) Update(iter int, fval float64, x []float64) {
	list.Iter = append(list.Iter, iter)
	list.Fval = append(list.Fval, fval)
	list.Pars = append(list.Pars, append([]float64{}, x...))
}

// Done 记录最终目标函数值
func (list *Record) Done(fval float64) { list.Best = fval }

// Projection 记录一条一维投影采样曲线（拟合后由调用方生成）
func (list *Record) Projection(name string, xs, ys []float64) {
	list.ProjName = append(list.ProjName, name)
	list.ProjX = append(list.ProjX, append([]float64{}, xs...))
	list.ProjY = append(list.ProjY, append([]float64{}, ys...))
}

// Render 格式和输出内容
func (list *Record) Render(w io.Writer) error { return json.NewEncoder(w).Encode(list) }

func (list *Record) Error(err error) { log.Println(err) }
