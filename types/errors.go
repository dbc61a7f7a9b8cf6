package types

import (
	"errors"
	"fmt"
)

// PdfError 概率密度模型错误：定义域/参数违规时同步抛出
// 例如向 Argus 设定负的截断边界、对多变量模型调用单值求值
type PdfError struct {
	Msg string
}

// NewPdfError 创建模型错误
func NewPdfError(format string, a ...any) *PdfError {
	return &PdfError{Msg: fmt.Sprintf(format, a...)}
}

func (e *PdfError) Error() string { return "pdf: " + e.Msg }

// IsPdfError 判断错误类别
func IsPdfError(err error) bool {
	var pe *PdfError
	return errors.As(err, &pe)
}

// MinimizerError 最小化器状态错误：例如在设置前读取误差定义值 up
type MinimizerError struct {
	Msg string
}

// NewMinimizerError 创建最小化器错误
func NewMinimizerError(format string, a ...any) *MinimizerError {
	return &MinimizerError{Msg: fmt.Sprintf(format, a...)}
}

func (e *MinimizerError) Error() string { return "minimizer: " + e.Msg }

// IsMinimizerError 判断错误类别
func IsMinimizerError(err error) bool {
	var me *MinimizerError
	return errors.As(err, &me)
}
