package lnk

import (
	"errors"

	"github.com/andrewstucki/seedicon/internal"
)

const shimBlockMinSize = 0x00000088

var errShimBlockSize = errors.New("invalid shim block size")

func parseExtraShim(size uint32, data []byte) (*Shim, error) {
	if size < shimBlockMinSize {
		return nil, errShimBlockSize
	}
	return &Shim{
		LayerName: internal.ReadUnicode(data[:size], 8),
	}, nil
}
