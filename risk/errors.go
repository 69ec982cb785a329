package risk

import "errors"

var (
	ErrInvalidSide = errors.New("invalid side")
	ErrLimitBreach = errors.New("position limit breach")
)
