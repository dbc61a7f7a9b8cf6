package main

import (
	"fmt"
	"os"

	"cfit"
	"cfit/debug"
	"cfit/minimizer"
	"cfit/model"
	"cfit/types"
)

func main() {

	// 真值模型采样
	mx := types.Variable{Name: "mx"}
	truth := model.NewGauss(mx,
		types.NewFixedParameter("mu", 5.279),
		types.NewFixedParameter("sigma", 0.025))
	data, err := cfit.GenerateDataset(truth, 2000)
	if err != nil {
		fmt.Println(err)
		return
	}

	// 拟合模型：参数自由，初值偏离真值
	pdf := model.NewGauss(mx,
		types.NewParameter("mu", 5.2),
		types.NewParameter("sigma", 0.05))

	nll := minimizer.NewNll(pdf, data)
	nll.SetUp(1.0)
	nll.Debug = &debug.Charts{}
	nll.Cache()

	res, err := nll.Minimize()
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, name := range res.Names {
		p, _ := res.Par(name)
		fmt.Printf("%s = %f +- %f\n", p.Name, p.Value, p.Error)
	}
	fmt.Printf("-2lnL = %f\n", res.Fval)

	// 输出调试曲线
	f, err := os.Create("fit.html")
	if err != nil {
		fmt.Println(err)
		return
	}
	defer f.Close()
	nll.Debug.Render(f)
}
