package rar15

import (
	"fmt"
	"io"

	"github.com/javi11/rarmeta/internal/parse"
	"github.com/javi11/rarmeta/rartime"
)

// Longest name accepted for names carried by sub blocks.
const nameMaxSize = 1000

// Block is one decoded rar15 header: the fields common to every block type
// plus the kind-specific payload.
type Block struct {
	// Position is the absolute offset of the block in the file.
	Position uint64

	// HeaderCRC16 protects the header bytes.
	HeaderCRC16 uint16

	// HeaderSize is the size of the header starting at Position.
	HeaderSize uint16

	// Kind holds the kind-specific fields.
	Kind BlockKind
}

// BlockKind is the kind-specific part of a Block.
type BlockKind interface {
	isBlockKind()
}

// DataSize returns the size of the data area that follows the header.
func (b *Block) DataSize() uint64 {
	switch k := b.Kind.(type) {
	case *FileBlock:
		return k.PackedDataSize
	case *ServiceBlock:
		return k.PackedDataSize
	case *SubBlock:
		return uint64(k.StoredDataSize)
	case *ProtectBlock:
		return uint64(k.StoredDataSize)
	case *UnknownBlock:
		return uint64(k.StoredDataSize)
	default:
		return 0
	}
}

// FullSize returns the full size of the block, header and data area.
func (b *Block) FullSize() uint64 {
	return uint64(b.HeaderSize) + b.DataSize()
}

// CommonFlags are the flag bits shared by every block type.
type CommonFlags uint16

const (
	commonSkipIfUnknown CommonFlags = 0x4000
	commonContainsData  CommonFlags = 0x8000
)

// SkipIfUnknown reports whether an unknown block must be skipped when
// updating the archive.
func (f CommonFlags) SkipIfUnknown() bool { return f&commonSkipIfUnknown != 0 }

// ContainsData reports whether a data area follows the block header.
func (f CommonFlags) ContainsData() bool { return f&commonContainsData != 0 }

// Block type tags.
const (
	blockMain       = 0x73
	blockFile       = 0x74
	blockComment    = 0x75
	blockAv         = 0x76
	blockSub        = 0x77
	blockProtect    = 0x78
	blockSign       = 0x79
	blockService    = 0x7a
	blockEndArchive = 0x7b
)

// readBlock decodes exactly one block at the current stream position.
func readBlock(r io.ReadSeeker) (*Block, error) {
	position, err := parse.StreamPosition(r)
	if err != nil {
		return nil, err
	}

	headerCRC16, err := parse.ReadU16(r)
	if err != nil {
		return nil, err
	}
	blockType, err := parse.ReadU8(r)
	if err != nil {
		return nil, err
	}
	flags, err := parse.ReadU16(r)
	if err != nil {
		return nil, err
	}
	headerSize, err := parse.ReadU16(r)
	if err != nil {
		return nil, err
	}

	var kind BlockKind
	switch blockType {
	case blockMain:
		kind, err = readMainBlock(r, flags)
	case blockFile:
		kind, err = readFileBlock(r, flags)
	case blockService:
		kind, err = readServiceBlock(r, flags, headerSize)
	case blockComment:
		kind, err = readCommentBlock(r)
	case blockAv:
		kind, err = readAvBlock(r)
	case blockSub:
		kind, err = readSubBlock(r)
	case blockProtect:
		kind, err = readProtectBlock(r)
	case blockSign:
		kind, err = readSignBlock(r)
	case blockEndArchive:
		kind, err = readEndArchiveBlock(r, flags)
	default:
		kind, err = readUnknownBlock(r, flags, blockType)
	}
	if err != nil {
		return nil, err
	}

	return &Block{
		Position:    position,
		HeaderCRC16: headerCRC16,
		HeaderSize:  headerSize,
		Kind:        kind,
	}, nil
}

// HostOS is the operating system used to add an entry to the archive.
// Values outside the known set are preserved as-is.
type HostOS uint8

const (
	HostMSDOS HostOS = 0
	HostOS2   HostOS = 1
	HostWin32 HostOS = 2
	HostUnix  HostOS = 3
	HostMacOS HostOS = 4
	HostBeOS  HostOS = 5
)

func (o HostOS) String() string {
	switch o {
	case HostMSDOS:
		return "MS-DOS"
	case HostOS2:
		return "OS/2"
	case HostWin32:
		return "Windows"
	case HostUnix:
		return "Unix"
	case HostMacOS:
		return "Mac OS"
	case HostBeOS:
		return "BeOS"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(o))
	}
}

// MainBlock contains archive-wide metadata. It should be the first block
// in the archive.
type MainBlock struct {
	// Flags of the main header.
	Flags MainFlags

	// AvBlockOffset is the offset of the authenticity verification block,
	// zero when absent.
	AvBlockOffset uint64

	// EncryptVersion is the version of the header encryption, present only
	// when HasEncryptVersion is set in the flags.
	EncryptVersion uint8
}

func (*MainBlock) isBlockKind() {}

// MainFlags are the rar15 main header flags.
type MainFlags uint16

const (
	mainIsVolume           MainFlags = 0x0001
	mainHasComment         MainFlags = 0x0002
	mainIsLocked           MainFlags = 0x0004
	mainIsSolid            MainFlags = 0x0008
	mainUsesNewNumbering   MainFlags = 0x0010
	mainHasAuthenticity    MainFlags = 0x0020
	mainHasRecoveryRecord  MainFlags = 0x0040
	mainHasPassword        MainFlags = 0x0080
	mainIsFirstVolume      MainFlags = 0x0100
	mainHasEncryptVersion  MainFlags = 0x0200
)

// IsVolume reports whether the archive spans multiple volumes.
// https://www.win-rar.com/split-files-archive.html?&L=0
func (f MainFlags) IsVolume() bool { return f&mainIsVolume != 0 }

// HasComment reports whether the main header contains an old-style
// (up to RAR 2.90) comment.
func (f MainFlags) HasComment() bool { return f&mainHasComment != 0 }

// IsLocked reports whether WinRAR will refuse to modify this archive.
func (f MainFlags) IsLocked() bool { return f&mainIsLocked != 0 }

// IsSolid reports whether the archive uses solid compression.
func (f MainFlags) IsSolid() bool { return f&mainIsSolid != 0 }

// UsesNewNumbering reports whether multi-volume filenames end with
// {.part01.rar, .part02.rar, ...} rather than {.rar, .r00, .r01, ...}.
func (f MainFlags) UsesNewNumbering() bool { return f&mainUsesNewNumbering != 0 }

// HasAuthenticityVerification reports whether the archive includes
// additional metadata like archive name, creation date and owner of the
// WinRAR license.
func (f MainFlags) HasAuthenticityVerification() bool { return f&mainHasAuthenticity != 0 }

// HasRecoveryRecord reports whether the archive contains a recovery record.
func (f MainFlags) HasRecoveryRecord() bool { return f&mainHasRecoveryRecord != 0 }

// HasPassword reports whether the archive is password-encrypted.
func (f MainFlags) HasPassword() bool { return f&mainHasPassword != 0 }

// IsFirstVolume reports whether this is the first volume of a multi-volume
// archive. Set only by RAR 3.0+.
func (f MainFlags) IsFirstVolume() bool { return f&mainIsFirstVolume != 0 }

// HasEncryptVersion reports whether the encryption version byte is present.
func (f MainFlags) HasEncryptVersion() bool { return f&mainHasEncryptVersion != 0 }

func readMainBlock(r io.Reader, flags uint16) (BlockKind, error) {
	mf := MainFlags(flags)

	highAvOffset, err := parse.ReadU16(r)
	if err != nil {
		return nil, err
	}
	lowAvOffset, err := parse.ReadU32(r)
	if err != nil {
		return nil, err
	}

	b := &MainBlock{
		Flags:         mf,
		AvBlockOffset: uint64(lowAvOffset) | uint64(highAvOffset)<<32,
	}

	// Not even read by newer versions of unrar.
	if mf.HasEncryptVersion() {
		b.EncryptVersion, err = parse.ReadU8(r)
		if err != nil {
			return nil, err
		}
	}
	return b, nil
}

// FileBlock contains a file or a directory.
type FileBlock struct {
	// Flags of the file header.
	Flags FileFlags

	// PackedDataSize is the size of the data area of the block.
	PackedDataSize uint64

	// UnpackedDataSize is the size of the file after decompression.
	UnpackedDataSize uint64

	// HostOS used to add this file to the archive.
	HostOS HostOS

	// FileCRC32 of the unpacked file.
	FileCRC32 uint32

	// ModificationTime of the file.
	ModificationTime rartime.Time

	// CreationTime of the file, if stored in the extended time area.
	CreationTime *rartime.Time

	// AccessTime of the file, if stored in the extended time area.
	AccessTime *rartime.Time

	// ArchiveTime is when the file was added to or updated in the archive.
	ArchiveTime *rartime.Time

	// UnpackVersion is the format version needed to unpack the file.
	UnpackVersion uint8

	// Method is the compression method byte.
	Method uint8

	// Attributes are OS-dependent file attributes.
	Attributes uint32

	// Name of the archived file.
	Name Filename

	// Salt used for encryption, when present.
	Salt []byte
}

func (*FileBlock) isBlockKind() {}

// FileFlags are the rar15 file header flags.
type FileFlags uint16

const (
	fileSplitBefore        FileFlags = 0x0001
	fileSplitAfter         FileFlags = 0x0002
	fileIsEncrypted        FileFlags = 0x0004
	fileHasComment         FileFlags = 0x0008
	fileHasLargeSize       FileFlags = 0x0100
	fileHasUnicodeFilename FileFlags = 0x0200
	fileHasSalt            FileFlags = 0x0400
	fileHasVersion         FileFlags = 0x0800
	fileHasExtendedTime    FileFlags = 0x1000
	fileHasExtraArea       FileFlags = 0x2000
)

// SplitBefore reports whether the file continues from the previous volume.
func (f FileFlags) SplitBefore() bool { return f&fileSplitBefore != 0 }

// SplitAfter reports whether the file continues in the next volume.
func (f FileFlags) SplitAfter() bool { return f&fileSplitAfter != 0 }

// IsEncrypted reports whether the file data is encrypted with a password.
func (f FileFlags) IsEncrypted() bool { return f&fileIsEncrypted != 0 }

// HasComment reports whether the block header contains an old-style
// (up to RAR 2.90) comment.
func (f FileFlags) HasComment() bool { return f&fileHasComment != 0 }

// HasLargeSize reports whether the 64-bit size extension fields are present.
func (f FileFlags) HasLargeSize() bool { return f&fileHasLargeSize != 0 }

// HasUnicodeFilename reports whether the name field carries the byte-code
// program that decodes it to Unicode.
func (f FileFlags) HasUnicodeFilename() bool { return f&fileHasUnicodeFilename != 0 }

// HasSalt reports whether the file is encrypted with salt.
func (f FileFlags) HasSalt() bool { return f&fileHasSalt != 0 }

// HasVersion reports whether the file is versioned.
func (f FileFlags) HasVersion() bool { return f&fileHasVersion != 0 }

// HasExtendedTime reports whether the header carries the extended time area.
func (f FileFlags) HasExtendedTime() bool { return f&fileHasExtendedTime != 0 }

// HasExtraArea reports whether an extra area follows in the header.
func (f FileFlags) HasExtraArea() bool { return f&fileHasExtraArea != 0 }

const saltSize = 8

func readFileBlock(r io.Reader, flags uint16) (BlockKind, error) {
	ff := FileFlags(flags)

	lowPackedSize, err := parse.ReadU32(r)
	if err != nil {
		return nil, err
	}
	lowUnpackedSize, err := parse.ReadU32(r)
	if err != nil {
		return nil, err
	}
	hostOS, err := parse.ReadU8(r)
	if err != nil {
		return nil, err
	}
	fileCRC32, err := parse.ReadU32(r)
	if err != nil {
		return nil, err
	}
	rawModTime, err := parse.ReadU32(r)
	if err != nil {
		return nil, err
	}
	modificationTime := rartime.DOS(rawModTime)
	unpackVersion, err := parse.ReadU8(r)
	if err != nil {
		return nil, err
	}
	method, err := parse.ReadU8(r)
	if err != nil {
		return nil, err
	}
	nameSize, err := parse.ReadU16(r)
	if err != nil {
		return nil, err
	}
	attributes, err := parse.ReadU32(r)
	if err != nil {
		return nil, err
	}

	packedSize := uint64(lowPackedSize)
	unpackedSize := uint64(lowUnpackedSize)
	if ff.HasLargeSize() {
		highPackedSize, err := parse.ReadU32(r)
		if err != nil {
			return nil, err
		}
		highUnpackedSize, err := parse.ReadU32(r)
		if err != nil {
			return nil, err
		}
		packedSize |= uint64(highPackedSize) << 32
		unpackedSize |= uint64(highUnpackedSize) << 32
	}

	rawName, err := parse.ReadBytes(r, int(nameSize))
	if err != nil {
		return nil, err
	}
	name := newFilename(rawName, ff.HasUnicodeFilename())

	var salt []byte
	if ff.HasSalt() {
		salt, err = parse.ReadBytes(r, saltSize)
		if err != nil {
			return nil, err
		}
	}

	b := &FileBlock{
		Flags:            ff,
		PackedDataSize:   packedSize,
		UnpackedDataSize: unpackedSize,
		HostOS:           HostOS(hostOS),
		FileCRC32:        fileCRC32,
		ModificationTime: modificationTime,
		UnpackVersion:    unpackVersion,
		Method:           method,
		Attributes:       attributes,
		Name:             name,
		Salt:             salt,
	}

	if ff.HasExtendedTime() {
		ext, err := readExtendedTime(r, modificationTime)
		if err != nil {
			return nil, err
		}
		b.ModificationTime = ext.ModificationTime
		b.CreationTime = ext.CreationTime
		b.AccessTime = ext.AccessTime
		b.ArchiveTime = ext.ArchiveTime
	}
	return b, nil
}

// ServiceType identifies the known service block payloads.
type ServiceType int

const (
	ServiceUnknown ServiceType = iota
	ServiceComment
	ServiceNtfsFilePermissions
	ServiceNtfsAlternateDataStream
	ServiceUnixOwner
	ServiceAuthenticationVerification
	ServiceRecoveryRecord
	ServiceOs2ExtendedAttributes
	ServiceBeOsExtendedAttributes
)

func serviceTypeFromBytes(b []byte) ServiceType {
	switch string(b) {
	case "CMT":
		return ServiceComment
	case "ACL":
		return ServiceNtfsFilePermissions
	case "STM":
		return ServiceNtfsAlternateDataStream
	case "UOW":
		return ServiceUnixOwner
	case "AV":
		return ServiceAuthenticationVerification
	case "RR":
		return ServiceRecoveryRecord
	case "EA2":
		return ServiceOs2ExtendedAttributes
	case "EABE":
		return ServiceBeOsExtendedAttributes
	default:
		return ServiceUnknown
	}
}

// ServiceBlock contains metadata for the preceding file block.
type ServiceBlock struct {
	// Flags of the service header; same layout as the file header flags.
	Flags FileFlags

	// PackedDataSize is the size of the data area of the block.
	PackedDataSize uint64

	// UnpackedDataSize is the size of the data after decompression.
	UnpackedDataSize uint64

	// HostOS used to add this block to the archive.
	HostOS HostOS

	// DataCRC32 of the data area.
	DataCRC32 uint32

	// ModificationTime of the underlying file.
	ModificationTime rartime.Time

	// CreationTime, if stored in the extended time area.
	CreationTime *rartime.Time

	// AccessTime, if stored in the extended time area.
	AccessTime *rartime.Time

	// ArchiveTime, if stored in the extended time area.
	ArchiveTime *rartime.Time

	// UnpackVersion is the format version needed to unpack the data.
	UnpackVersion uint8

	// Method is the compression method byte.
	Method uint8

	// SubFlags are generic flags shared by all service payloads.
	SubFlags SubHeadFlags

	// Type of the service payload.
	Type ServiceType

	// RawType is the service name as stored, e.g. "CMT".
	RawType []byte

	// SubData is the remaining kind-specific header data.
	SubData []byte

	// Salt used for encryption, when present.
	Salt []byte
}

func (*ServiceBlock) isBlockKind() {}

// SubHeadFlags are the flags shared by all service payloads.
type SubHeadFlags uint32

const (
	subHeadInherited      SubHeadFlags = 0x80000000
	subHeadCommentUnicode SubHeadFlags = 0x01
)

// IsInherited reports whether the block is preserved when the host block
// is modified.
func (f SubHeadFlags) IsInherited() bool { return f&subHeadInherited != 0 }

// IsCommentUnicode reports whether a comment payload is Unicode-encoded.
func (f SubHeadFlags) IsCommentUnicode() bool { return f&subHeadCommentUnicode != 0 }

// Size of the service header fields read before the name, counted from the
// start of the block.
const serviceFixedSize = 32

func readServiceBlock(r io.Reader, flags uint16, headerSize uint16) (BlockKind, error) {
	ff := FileFlags(flags)

	lowPackedSize, err := parse.ReadU32(r)
	if err != nil {
		return nil, err
	}
	lowUnpackedSize, err := parse.ReadU32(r)
	if err != nil {
		return nil, err
	}
	hostOS, err := parse.ReadU8(r)
	if err != nil {
		return nil, err
	}
	dataCRC32, err := parse.ReadU32(r)
	if err != nil {
		return nil, err
	}
	rawModTime, err := parse.ReadU32(r)
	if err != nil {
		return nil, err
	}
	modificationTime := rartime.DOS(rawModTime)
	unpackVersion, err := parse.ReadU8(r)
	if err != nil {
		return nil, err
	}
	method, err := parse.ReadU8(r)
	if err != nil {
		return nil, err
	}
	nameSize, err := parse.ReadU16(r)
	if err != nil {
		return nil, err
	}
	subFlags, err := parse.ReadU32(r)
	if err != nil {
		return nil, err
	}

	packedSize := uint64(lowPackedSize)
	unpackedSize := uint64(lowUnpackedSize)
	if ff.HasLargeSize() {
		highPackedSize, err := parse.ReadU32(r)
		if err != nil {
			return nil, err
		}
		highUnpackedSize, err := parse.ReadU32(r)
		if err != nil {
			return nil, err
		}
		packedSize |= uint64(highPackedSize) << 32
		unpackedSize |= uint64(highUnpackedSize) << 32
	}

	rawType, err := parse.ReadBytes(r, int(nameSize))
	if err != nil {
		return nil, err
	}

	subDataSize := int(headerSize) - int(nameSize) - serviceFixedSize
	if ff.HasSalt() {
		subDataSize -= saltSize
	}
	var subData []byte
	if subDataSize > 0 {
		subData, err = parse.ReadBytes(r, subDataSize)
		if err != nil {
			return nil, err
		}
	}

	var salt []byte
	if ff.HasSalt() {
		salt, err = parse.ReadBytes(r, saltSize)
		if err != nil {
			return nil, err
		}
	}

	b := &ServiceBlock{
		Flags:            ff,
		PackedDataSize:   packedSize,
		UnpackedDataSize: unpackedSize,
		HostOS:           HostOS(hostOS),
		DataCRC32:        dataCRC32,
		ModificationTime: modificationTime,
		UnpackVersion:    unpackVersion,
		Method:           method,
		SubFlags:         SubHeadFlags(subFlags),
		Type:             serviceTypeFromBytes(rawType),
		RawType:          rawType,
		SubData:          subData,
		Salt:             salt,
	}

	if ff.HasExtendedTime() {
		ext, err := readExtendedTime(r, modificationTime)
		if err != nil {
			return nil, err
		}
		b.ModificationTime = ext.ModificationTime
		b.CreationTime = ext.CreationTime
		b.AccessTime = ext.AccessTime
		b.ArchiveTime = ext.ArchiveTime
	}
	return b, nil
}

// CommentBlock contains the archive comment.
type CommentBlock struct {
	// UnpackedDataSize is the size of the comment after decompression.
	UnpackedDataSize uint16

	// UnpackVersion is the format version needed to unpack the comment.
	UnpackVersion uint8

	// Method is the compression method byte.
	Method uint8

	// CRC16 of the comment.
	CRC16 uint16
}

func (*CommentBlock) isBlockKind() {}

func readCommentBlock(r io.Reader) (BlockKind, error) {
	unpackedDataSize, err := parse.ReadU16(r)
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
	crc16, err := parse.ReadU16(r)
	if err != nil {
		return nil, err
	}
	return &CommentBlock{
		UnpackedDataSize: unpackedDataSize,
		UnpackVersion:    unpackVersion,
		Method:           method,
		CRC16:            crc16,
	}, nil
}

// AvBlock contains authenticity verification information.
type AvBlock struct {
	UnpackVersion uint8
	Method        uint8
	AvVersion     uint8
	AvInfoCRC32   uint32
}

func (*AvBlock) isBlockKind() {}

func readAvBlock(r io.Reader) (BlockKind, error) {
	unpackVersion, err := parse.ReadU8(r)
	if err != nil {
		return nil, err
	}
	method, err := parse.ReadU8(r)
	if err != nil {
		return nil, err
	}
	avVersion, err := parse.ReadU8(r)
	if err != nil {
		return nil, err
	}
	avInfoCRC32, err := parse.ReadU32(r)
	if err != nil {
		return nil, err
	}
	return &AvBlock{
		UnpackVersion: unpackVersion,
		Method:        method,
		AvVersion:     avVersion,
		AvInfoCRC32:   avInfoCRC32,
	}, nil
}

// ProtectBlock contains recovery record information.
type ProtectBlock struct {
	// StoredDataSize is the size of the data area of the block.
	StoredDataSize uint32

	Version         uint8
	RecoverySectors uint16
	TotalBlocks     uint32
	Mark            []byte
}

func (*ProtectBlock) isBlockKind() {}

const protectMarkSize = 8

func readProtectBlock(r io.Reader) (BlockKind, error) {
	storedDataSize, err := parse.ReadU32(r)
	if err != nil {
		return nil, err
	}
	version, err := parse.ReadU8(r)
	if err != nil {
		return nil, err
	}
	recoverySectors, err := parse.ReadU16(r)
	if err != nil {
		return nil, err
	}
	totalBlocks, err := parse.ReadU32(r)
	if err != nil {
		return nil, err
	}
	mark, err := parse.ReadBytes(r, protectMarkSize)
	if err != nil {
		return nil, err
	}
	return &ProtectBlock{
		StoredDataSize:  storedDataSize,
		Version:         version,
		RecoverySectors: recoverySectors,
		TotalBlocks:     totalBlocks,
		Mark:            mark,
	}, nil
}

// SignBlock supposedly contains a creation time in DOS format plus the
// sizes used to read the archive and user name later in the header, but
// little information about this block survives.
type SignBlock struct {
	CreationTime    uint32
	ArchiveNameSize uint16
	UserNameSize    uint16
}

func (*SignBlock) isBlockKind() {}

func readSignBlock(r io.Reader) (BlockKind, error) {
	creationTime, err := parse.ReadU32(r)
	if err != nil {
		return nil, err
	}
	archiveNameSize, err := parse.ReadU16(r)
	if err != nil {
		return nil, err
	}
	userNameSize, err := parse.ReadU16(r)
	if err != nil {
		return nil, err
	}
	return &SignBlock{
		CreationTime:    creationTime,
		ArchiveNameSize: archiveNameSize,
		UserNameSize:    userNameSize,
	}, nil
}

// EndArchiveBlock signals the end of the archive. Typically added to
// multi-volume archives or when trailing data not part of the archive
// follows in the file.
type EndArchiveBlock struct {
	// Flags of the end archive header.
	Flags EndArchiveFlags

	// ArchiveDataCRC32 is present only in volumes.
	ArchiveDataCRC32 uint32

	// VolumeNumber of the current volume, when stored.
	VolumeNumber uint16
}

func (*EndArchiveBlock) isBlockKind() {}

// EndArchiveFlags are the rar15 end archive header flags.
type EndArchiveFlags uint16

const (
	endHasNextVolume   EndArchiveFlags = 0x0001
	endHasCRC32        EndArchiveFlags = 0x0002
	endReserveSpace    EndArchiveFlags = 0x0004
	endHasVolumeNumber EndArchiveFlags = 0x0008
)

// HasNextVolume reports whether the archive continues in the next volume.
func (f EndArchiveFlags) HasNextVolume() bool { return f&endHasNextVolume != 0 }

// HasCRC32 reports whether the archive data CRC32 field is present.
func (f EndArchiveFlags) HasCRC32() bool { return f&endHasCRC32 != 0 }

// ReserveSpace reports whether space is reserved for the end-of-REV-file
// record.
func (f EndArchiveFlags) ReserveSpace() bool { return f&endReserveSpace != 0 }

// HasVolumeNumber reports whether the volume number field is present.
func (f EndArchiveFlags) HasVolumeNumber() bool { return f&endHasVolumeNumber != 0 }

func readEndArchiveBlock(r io.Reader, flags uint16) (BlockKind, error) {
	ef := EndArchiveFlags(flags)
	b := &EndArchiveBlock{Flags: ef}

	var err error
	if ef.HasCRC32() {
		b.ArchiveDataCRC32, err = parse.ReadU32(r)
		if err != nil {
			return nil, err
		}
	}
	if ef.HasVolumeNumber() {
		b.VolumeNumber, err = parse.ReadU16(r)
		if err != nil {
			return nil, err
		}
	}
	return b, nil
}

// UnknownBlock is a block with a tag this package does not know about.
// Kept rather than rejected: later format revisions added block types and
// an unknown one just gets skipped by its declared size.
type UnknownBlock struct {
	// Tag identifying the block.
	Tag uint8

	// Flags are the generic flags of the block.
	Flags CommonFlags

	// StoredDataSize is the size of the data area, when the flags declare
	// one.
	StoredDataSize uint32
}

func (*UnknownBlock) isBlockKind() {}

func readUnknownBlock(r io.Reader, flags uint16, tag uint8) (BlockKind, error) {
	cf := CommonFlags(flags)
	b := &UnknownBlock{Tag: tag, Flags: cf}

	if cf.ContainsData() {
		var err error
		b.StoredDataSize, err = parse.ReadU32(r)
		if err != nil {
			return nil, err
		}
	}
	return b, nil
}
