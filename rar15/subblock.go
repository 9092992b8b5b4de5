package rar15

import (
	"io"

	"github.com/javi11/rarmeta/internal/parse"
)

// SubBlock is the pre-3.0 way of attaching OS-specific metadata to the
// preceding file block. RAR 3.0 replaced it with service blocks.
type SubBlock struct {
	// StoredDataSize is the size of the data area of the block.
	StoredDataSize uint32

	// Level of the block.
	Level uint8

	// Kind holds the type-specific fields.
	Kind SubBlockKind
}

func (*SubBlock) isBlockKind() {}

// SubBlockKind is the type-specific part of a SubBlock.
type SubBlockKind interface {
	isSubBlockKind()
}

// Sub block type tags.
const (
	subOs2ExtendedAttributes  = 0x100
	subUnixOwner              = 0x101
	subMacOsInfo              = 0x102
	subBeOsExtendedAttributes = 0x103
	subNtfsFilePermissions    = 0x104
	subNtfsAlternateStream    = 0x105
)

func readSubBlock(r io.Reader) (BlockKind, error) {
	storedDataSize, err := parse.ReadU32(r)
	if err != nil {
		return nil, err
	}
	subType, err := parse.ReadU16(r)
	if err != nil {
		return nil, err
	}
	level, err := parse.ReadU8(r)
	if err != nil {
		return nil, err
	}

	var kind SubBlockKind
	switch subType {
	case subUnixOwner:
		kind, err = readUnixOwnerSub(r)
	case subMacOsInfo:
		kind, err = readMacOsInfoSub(r)
	case subOs2ExtendedAttributes:
		kind, err = readExtendedAttributesSub(r, FsOs2)
	case subBeOsExtendedAttributes:
		kind, err = readExtendedAttributesSub(r, FsBeOs)
	case subNtfsFilePermissions:
		kind, err = readExtendedAttributesSub(r, FsNtfs)
	case subNtfsAlternateStream:
		kind, err = readNtfsStreamSub(r)
	default:
		kind = &UnknownSubBlock{Tag: subType}
	}
	if err != nil {
		return nil, err
	}

	return &SubBlock{
		StoredDataSize: storedDataSize,
		Level:          level,
		Kind:           kind,
	}, nil
}

// clampNameSize bounds stored name sizes so a corrupt header cannot ask
// for an absurd allocation.
func clampNameSize(size uint16) int {
	if int(size) > nameMaxSize-1 {
		return nameMaxSize - 1
	}
	return int(size)
}

// UnixOwnerSub stores the user and group owning the file.
type UnixOwnerSub struct {
	User  []byte
	Group []byte
}

func (*UnixOwnerSub) isSubBlockKind() {}

func readUnixOwnerSub(r io.Reader) (SubBlockKind, error) {
	userSize, err := parse.ReadU16(r)
	if err != nil {
		return nil, err
	}
	groupSize, err := parse.ReadU16(r)
	if err != nil {
		return nil, err
	}
	user, err := parse.ReadBytes(r, clampNameSize(userSize))
	if err != nil {
		return nil, err
	}
	group, err := parse.ReadBytes(r, clampNameSize(groupSize))
	if err != nil {
		return nil, err
	}
	return &UnixOwnerSub{User: user, Group: group}, nil
}

// MacOsInfoSub stores the classic Mac OS type and creator codes.
type MacOsInfoSub struct {
	FileType    uint16
	FileCreator uint16
}

func (*MacOsInfoSub) isSubBlockKind() {}

func readMacOsInfoSub(r io.Reader) (SubBlockKind, error) {
	fileType, err := parse.ReadU16(r)
	if err != nil {
		return nil, err
	}
	fileCreator, err := parse.ReadU16(r)
	if err != nil {
		return nil, err
	}
	return &MacOsInfoSub{FileType: fileType, FileCreator: fileCreator}, nil
}

// ExtendedAttributesFs is the filesystem a sub block's extended attributes
// came from.
type ExtendedAttributesFs uint8

const (
	FsOs2 ExtendedAttributesFs = iota
	FsBeOs
	FsNtfs
)

// ExtendedAttributesSub stores compressed filesystem extended attributes.
type ExtendedAttributesSub struct {
	Filesystem              ExtendedAttributesFs
	UnpackedDataSize        uint32
	UnpackVersion           uint8
	Method                  uint8
	ExtendedAttributesCRC32 uint32
}

func (*ExtendedAttributesSub) isSubBlockKind() {}

func readExtendedAttributesSub(r io.Reader, fs ExtendedAttributesFs) (SubBlockKind, error) {
	unpackedDataSize, err := parse.ReadU32(r)
	if err != nil {
		return nil, err
	}
	unpackVersion, err := parse.ReadU8(r)
	if err != nil {
		return nil, err
	}
	method, err := parse.ReadU8(r)
	if err != nil {
		return nil, err
	}
	crc32, err := parse.ReadU32(r)
	if err != nil {
		return nil, err
	}
	return &ExtendedAttributesSub{
		Filesystem:              fs,
		UnpackedDataSize:        unpackedDataSize,
		UnpackVersion:           unpackVersion,
		Method:                  method,
		ExtendedAttributesCRC32: crc32,
	}, nil
}

// NtfsStreamSub stores an NTFS alternate data stream.
type NtfsStreamSub struct {
	UnpackedDataSize uint32
	UnpackVersion    uint8
	Method           uint8
	StreamCRC32      uint32
	StreamName       []byte
}

func (*NtfsStreamSub) isSubBlockKind() {}

func readNtfsStreamSub(r io.Reader) (SubBlockKind, error) {
	unpackedDataSize, err := parse.ReadU32(r)
	if err != nil {
		return nil, err
	}
	unpackVersion, err := parse.ReadU8(r)
	if err != nil {
		return nil, err
	}
	method, err := parse.ReadU8(r)
	if err != nil {
		return nil, err
	}
	streamCRC32, err := parse.ReadU32(r)
	if err != nil {
		return nil, err
	}
	streamNameSize, err := parse.ReadU16(r)
	if err != nil {
		return nil, err
	}
	streamName, err := parse.ReadBytes(r, clampNameSize(streamNameSize))
	if err != nil {
		return nil, err
	}
	return &NtfsStreamSub{
		UnpackedDataSize: unpackedDataSize,
		UnpackVersion:    unpackVersion,
		Method:           method,
		StreamCRC32:      streamCRC32,
		StreamName:       streamName,
	}, nil
}

// UnknownSubBlock preserves the tag of a sub block type this package does
// not know about.
type UnknownSubBlock struct {
	Tag uint16
}

func (*UnknownSubBlock) isSubBlockKind() {}
