package lnk

import "errors"

const environmentBlockSize = 0x00000314

var errEnvironmentBlockSize = errors.New("invalid environment variable block size")

// The environment block carries the link target with unexpanded
// %VARIABLES%, and is the only target source for some installer links.
func parseExtraEnvironment(size uint32, data []byte) (*Environment, error) {
	if size != environmentBlockSize {
		return nil, errEnvironmentBlockSize
	}
	ansi, unicode := readTargetFields(data)
	return &Environment{
		ANSI:    ansi,
		Unicode: unicode,
	}, nil
}
