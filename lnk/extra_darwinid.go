package lnk

import "errors"

var errDarwinBlockSize = errors.New("invalid darwin block size")

func parseExtraDarwin(size uint32, data []byte) (*Darwin, error) {
	if size != environmentBlockSize {
		return nil, errDarwinBlockSize
	}
	ansi, unicode := readTargetFields(data)
	return &Darwin{
		ANSI:    ansi,
		Unicode: unicode,
	}, nil
}
