package debug

import (
	"io"
	"log"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

// Charts 曲线绘制
type Charts struct {
	Record
}

// Render 格式化
func (c *Charts) Render(w io.Writer) error {
	// 初始化界面
	lineF := charts.NewLine()
	lineF.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme: types.ThemeWesteros,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "目标函数曲线",
			Subtitle: "-2lnL 随求值次数变化曲线",
		}),
		charts.WithLegendOpts(opts.Legend{
			Type:   "scroll",
			Orient: "vertical",
			Right:  "10",
			Top:    "20",
			Bottom: "20",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			SplitNumber: 20,
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Scale: opts.Bool(true),
		}),
		charts.WithDataZoomOpts(opts.DataZoom{
			Type:       "inside",
			Start:      0,
			End:        100,
			XAxisIndex: []int{0},
		}),
		charts.WithAnimation(true),
	)
	lineP := charts.NewLine()
	lineP.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme: types.ThemeWesteros,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "参数曲线",
			Subtitle: "自由参数随求值次数变化曲线",
		}),
		charts.WithLegendOpts(opts.Legend{
			Type:   "scroll",
			Orient: "vertical",
			Right:  "10",
			Top:    "20",
			Bottom: "20",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			SplitNumber: 20,
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Scale: opts.Bool(true),
		}),
		charts.WithDataZoomOpts(opts.DataZoom{
			Type:       "inside",
			Start:      0,
			End:        100,
			XAxisIndex: []int{0},
		}),
		charts.WithAnimation(true),
	)
	// 处理数据
	{
		// 目标函数信息
		{
			lineF.SetXAxis(c.Iter)
			itemsF := make([]opts.LineData, len(c.Fval))
			for i, v := range c.Fval {
				itemsF[i].Value = v
			}
			lineF.AddSeries("-2lnL", itemsF)
		}
		// 参数信息
		if len(c.Pars) > 0 {
			lineP.SetXAxis(c.Iter)
			itemsP := make([][]opts.LineData, 0)
			seriesP := make([]charts.SingleSeries, 0)
			for i, name := range c.Names {
				itemsP = append(itemsP, make([]opts.LineData, len(c.Iter)))
				seriesP = append(seriesP, charts.SingleSeries{
					Name: name,
					Data: itemsP[i],
					Type: types.ChartLine,
				})
				seriesP[i].InitSeriesDefaultOpts(lineP.BaseConfiguration)
			}
			for i, row := range c.Pars {
				for x, t := range row {
					if x < len(itemsP) {
						itemsP[x][i].Value = t
					}
				}
			}
			lineP.MultiSeries = seriesP
		}
	}
	// 构建界面
	page := components.NewPage()
	page.AddCharts(
		lineF,
		lineP,
	)
	// 投影曲线逐条成图
	for i, name := range c.ProjName {
		lineJ := charts.NewLine()
		lineJ.SetGlobalOptions(
			charts.WithInitializationOpts(opts.Initialization{
				Theme: types.ThemeWesteros,
			}),
			charts.WithTitleOpts(opts.Title{
				Title:    "投影曲线",
				Subtitle: name + " 一维边缘密度",
			}),
			charts.WithYAxisOpts(opts.YAxis{
				Scale: opts.Bool(true),
			}),
		)
		lineJ.SetXAxis(c.ProjX[i])
		items := make([]opts.LineData, len(c.ProjY[i]))
		for j, v := range c.ProjY[i] {
			items[j].Value = v
		}
		lineJ.AddSeries(name, items)
		page.AddCharts(lineJ)
	}
	return page.Render(w)
}

// Handler 发布到网页面
func (c *Charts) Handler(w http.ResponseWriter, _ *http.Request) {
	c.Render(w)
}

func (c *Charts) Error(err error) { log.Println(err) }
