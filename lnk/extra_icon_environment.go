package lnk

import "errors"

var errIconEnvironmentBlockSize = errors.New("invalid icon environment block size")

func parseExtraIconEnvironment(size uint32, data []byte) (*IconEnvironment, error) {
	if size != environmentBlockSize {
		return nil, errIconEnvironmentBlockSize
	}
	ansi, unicode := readTargetFields(data)
	return &IconEnvironment{
		ANSI:    ansi,
		Unicode: unicode,
	}, nil
}
