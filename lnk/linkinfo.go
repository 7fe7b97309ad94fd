package lnk

import (
	"encoding/binary"
	"strings"

	"github.com/andrewstucki/seedicon/internal"
)

const (
	volumeIDAndLocalBasePath           = 0x00000001
	commonNetworkRelativeLinkAndSuffix = 0x00000002

	linkInfoMinSize       = 0x1C
	linkInfoUnicodeHeader = 0x24
	networkLinkMinSize    = 0x14
)

// LinkInfo holds the target location information of a Shell Link.
type LinkInfo struct {
	LocalBasePath     string `json:"localBasePath,omitempty"`
	NetName           string `json:"netName,omitempty"`
	DeviceName        string `json:"deviceName,omitempty"`
	CommonPathSuffix  string `json:"commonPathSuffix,omitempty"`
	HasVolumeID       bool   `json:"hasVolumeID"`
	HasNetworkLink    bool   `json:"hasNetworkLink"`
	VolumeLabel       string `json:"volumeLabel,omitempty"`
	DriveType         uint32 `json:"driveType"`
	DriveSerialNumber uint32 `json:"driveSerialNumber"`
}

// Target joins the base path, local or network, with the common suffix.
func (l *LinkInfo) Target() string {
	switch {
	case l.LocalBasePath != "":
		return l.LocalBasePath + l.CommonPathSuffix
	case l.NetName != "":
		if l.CommonPathSuffix == "" {
			return l.NetName
		}
		return strings.TrimSuffix(l.NetName, `\`) + `\` + l.CommonPathSuffix
	}
	return ""
}

func parseLinkInfo(data []byte) (*LinkInfo, int, error) {
	if len(data) < linkInfoMinSize {
		return nil, 0, ErrTruncated
	}
	size := int(binary.LittleEndian.Uint32(data[0:4]))
	headerSize := binary.LittleEndian.Uint32(data[4:8])
	if size < linkInfoMinSize || size > len(data) {
		return nil, 0, ErrTruncated
	}
	data = data[:size]

	flags := binary.LittleEndian.Uint32(data[8:12])
	volumeIDOffset := binary.LittleEndian.Uint32(data[12:16])
	localBasePathOffset := binary.LittleEndian.Uint32(data[16:20])
	networkLinkOffset := binary.LittleEndian.Uint32(data[20:24])
	suffixOffset := binary.LittleEndian.Uint32(data[24:28])

	info := &LinkInfo{
		HasVolumeID:    flags&volumeIDAndLocalBasePath != 0,
		HasNetworkLink: flags&commonNetworkRelativeLinkAndSuffix != 0,
	}

	var localBasePathUnicode, suffixUnicode uint32
	if headerSize >= linkInfoUnicodeHeader {
		if size < linkInfoUnicodeHeader {
			return nil, 0, ErrTruncated
		}
		localBasePathUnicode = binary.LittleEndian.Uint32(data[28:32])
		suffixUnicode = binary.LittleEndian.Uint32(data[32:36])
	}

	if info.HasVolumeID {
		info.LocalBasePath = readPreferred(data, localBasePathOffset, localBasePathUnicode)
		parseVolumeID(info, data, volumeIDOffset)
	}
	if info.HasNetworkLink {
		if err := parseNetworkLink(info, data, networkLinkOffset); err != nil {
			return nil, 0, err
		}
	}
	info.CommonPathSuffix = readPreferred(data, suffixOffset, suffixUnicode)

	return info, size, nil
}

// Unicode variants win when present and non-empty.
func readPreferred(data []byte, offset, unicodeOffset uint32) string {
	if unicodeOffset != 0 {
		if value := internal.ReadUnicode(data, int(unicodeOffset)); value != "" {
			return value
		}
	}
	if offset == 0 {
		return ""
	}
	return internal.ReadString(data, int(offset))
}

// VolumeID: size, drive type, serial number, label offset, [unicode label offset]
func parseVolumeID(info *LinkInfo, data []byte, offset uint32) {
	start := int(offset)
	if offset == 0 || start+16 > len(data) {
		return
	}
	volume := data[start:]
	size := int(binary.LittleEndian.Uint32(volume[0:4]))
	if size < 16 || size > len(volume) {
		return
	}
	volume = volume[:size]
	info.DriveType = binary.LittleEndian.Uint32(volume[4:8])
	info.DriveSerialNumber = binary.LittleEndian.Uint32(volume[8:12])
	labelOffset := binary.LittleEndian.Uint32(volume[12:16])
	if labelOffset == 0x14 && size >= 20 {
		info.VolumeLabel = internal.ReadUnicode(volume, int(binary.LittleEndian.Uint32(volume[16:20])))
		return
	}
	info.VolumeLabel = internal.ReadString(volume, int(labelOffset))
}

func parseNetworkLink(info *LinkInfo, data []byte, offset uint32) error {
	start := int(offset)
	if start+networkLinkMinSize > len(data) {
		return ErrTruncated
	}
	link := data[start:]
	size := int(binary.LittleEndian.Uint32(link[0:4]))
	if size < networkLinkMinSize || size > len(link) {
		return ErrTruncated
	}
	link = link[:size]

	netNameOffset := binary.LittleEndian.Uint32(link[8:12])
	deviceNameOffset := binary.LittleEndian.Uint32(link[12:16])

	var netNameUnicode, deviceNameUnicode uint32
	if netNameOffset > networkLinkMinSize && size >= 28 {
		netNameUnicode = binary.LittleEndian.Uint32(link[20:24])
		deviceNameUnicode = binary.LittleEndian.Uint32(link[24:28])
	}
	info.NetName = readPreferred(link, netNameOffset, netNameUnicode)
	info.DeviceName = readPreferred(link, deviceNameOffset, deviceNameUnicode)
	return nil
}
