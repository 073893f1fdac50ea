package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidParameter 参数非法，在任何模拟开始前返回
var ErrInvalidParameter = errors.New("invalid parameter")

// ParameterError 描述单个非法参数
type ParameterError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s=%v: %s", e.Field, e.Value, e.Reason)
}

// Is 使 errors.Is(err, ErrInvalidParameter) 成立
func (e *ParameterError) Is(target error) bool {
	return target == ErrInvalidParameter
}
