//go:build !gocv
// +build !gocv

package vision

import "errors"

// ErrOpenCVDisabled возвращается, если бэкенд OpenCV запрошен в сборке без тега gocv.
var ErrOpenCVDisabled = errors.New("gocv build tag is not enabled")

// newOpenCVSegmenter возвращает ошибку, если сборка без тега gocv.
func newOpenCVSegmenter(cfg Config) (segmenter, error) {
	_ = cfg
	return nil, ErrOpenCVDisabled
}
