package lnk

import (
	"encoding/binary"
	"log/slog"

	"github.com/andrewstucki/seedicon/internal"
)

const (
	environmentSignature     = 0xA0000001
	darwinSignature          = 0xA0000006
	iconEnvironmentSignature = 0xA0000007
	shimSignature            = 0xA0000008

	// blocks smaller than this terminate the ExtraData section
	terminalBlockSize = 0x00000004

	// ANSI and Unicode target fields shared by the 0x314 sized blocks
	ansiTargetStart    = 8
	ansiTargetEnd      = 268
	unicodeTargetStart = 268
	unicodeTargetEnd   = 788
)

func parseExtraData(info *Info, data []byte) error {
	offset := 0
	for {
		if len(data) < offset+4 {
			// some writers omit the terminal block
			return nil
		}
		size := binary.LittleEndian.Uint32(data[offset : offset+4])
		if size < terminalBlockSize {
			return nil
		}
		if size < 8 || uint64(offset)+uint64(size) > uint64(len(data)) {
			return ErrTruncated
		}
		block := data[offset : offset+int(size)]
		signature := binary.LittleEndian.Uint32(block[4:8])

		var err error
		switch signature {
		case environmentSignature:
			info.Environment, err = parseExtraEnvironment(size, block)
		case iconEnvironmentSignature:
			info.IconEnvironment, err = parseExtraIconEnvironment(size, block)
		case darwinSignature:
			info.Darwin, err = parseExtraDarwin(size, block)
		case shimSignature:
			info.Shim, err = parseExtraShim(size, block)
		}
		if err != nil {
			// a malformed optional block does not invalidate the link
			slog.Debug("seedicon: skipping extra data block", "signature", signature, "err", err)
		}
		offset += int(size)
	}
}

func readTargetFields(data []byte) (string, string) {
	return internal.ReadString(data[ansiTargetStart:ansiTargetEnd], 0),
		internal.ReadUnicode(data[unicodeTargetStart:unicodeTargetEnd], 0)
}
