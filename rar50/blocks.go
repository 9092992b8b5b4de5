package rar50

import (
	"fmt"
	"io"

	"github.com/javi11/rarmeta/internal/parse"
	"github.com/javi11/rarmeta/rartime"
)

// Longest name accepted for an archived file.
const maxPathSize = 0x10000

// Block is one decoded rar50 header: the fields common to every block type
// plus the kind-specific payload.
type Block struct {
	// Position is the absolute offset of the block in the file.
	Position uint64

	// Flags common to every block type.
	Flags CommonFlags

	// HeaderCRC32 protects the header bytes after the CRC field itself.
	HeaderCRC32 uint32

	// HeaderSize is the full size of the header starting at Position. The
	// stored size excludes the CRC field and its own encoding; this field
	// includes both.
	HeaderSize uint64

	// ExtraAreaSize is the size of the extra area inside the header, zero
	// when the flags declare none.
	ExtraAreaSize uint64

	// StoredDataSize is the size of the data area following the header,
	// zero when the flags declare none.
	StoredDataSize uint64

	// Kind holds the kind-specific fields.
	Kind BlockKind
}

// BlockKind is the kind-specific part of a Block.
type BlockKind interface {
	isBlockKind()
}

// DataSize returns the size of the data area following the header.
func (b *Block) DataSize() uint64 { return b.StoredDataSize }

// FullSize returns the full size of the block, header and data area.
func (b *Block) FullSize() uint64 { return b.HeaderSize + b.StoredDataSize }

// CommonFlags are the flag bits shared by every block type.
type CommonFlags uint16

const (
	commonHasExtraArea  CommonFlags = 0x0001
	commonHasDataArea   CommonFlags = 0x0002
	commonSkipIfUnknown CommonFlags = 0x0004
	commonSplitBefore   CommonFlags = 0x0008
	commonSplitAfter    CommonFlags = 0x0010
	commonIsChild       CommonFlags = 0x0020
	commonIsInherited   CommonFlags = 0x0040
)

// HasExtraArea reports whether an extra area is present at the end of the
// block header.
func (f CommonFlags) HasExtraArea() bool { return f&commonHasExtraArea != 0 }

// HasDataArea reports whether a data area follows the block header.
func (f CommonFlags) HasDataArea() bool { return f&commonHasDataArea != 0 }

// SkipIfUnknown reports whether an unknown block must be skipped when
// updating the archive.
func (f CommonFlags) SkipIfUnknown() bool { return f&commonSkipIfUnknown != 0 }

// SplitBefore reports whether the data area continues from the previous
// volume.
func (f CommonFlags) SplitBefore() bool { return f&commonSplitBefore != 0 }

// SplitAfter reports whether the data area continues in the next volume.
func (f CommonFlags) SplitAfter() bool { return f&commonSplitAfter != 0 }

// IsChild reports whether the block depends on the preceding file block.
func (f CommonFlags) IsChild() bool { return f&commonIsChild != 0 }

// IsInherited reports whether a child block is preserved when the host
// block is modified.
func (f CommonFlags) IsInherited() bool { return f&commonIsInherited != 0 }

// Block type tags.
const (
	blockMain       = 0x01
	blockFile       = 0x02
	blockService    = 0x03
	blockCrypt      = 0x04
	blockEndArchive = 0x05
)

// readBlock decodes exactly one block at the current stream position.
func readBlock(r io.ReadSeeker) (*Block, error) {
	position, err := parse.StreamPosition(r)
	if err != nil {
		return nil, err
	}

	headerCRC32, err := parse.ReadU32(r)
	if err != nil {
		return nil, err
	}

	headerSize, vintLen, err := parse.ReadVint(r)
	if err != nil {
		return nil, err
	}
	// The stored size starts counting after its own field, which in turn
	// follows the CRC.
	fullHeaderSize := headerSize + uint64(vintLen) + 4

	headerType, _, err := parse.ReadVint(r)
	if err != nil {
		return nil, err
	}
	flags, _, err := parse.ReadVint(r)
	if err != nil {
		return nil, err
	}
	cf := CommonFlags(flags)

	var extraAreaSize uint64
	if cf.HasExtraArea() {
		extraAreaSize, _, err = parse.ReadVint(r)
		if err != nil {
			return nil, err
		}
	}
	var dataSize uint64
	if cf.HasDataArea() {
		dataSize, _, err = parse.ReadVint(r)
		if err != nil {
			return nil, err
		}
	}

	var kind BlockKind
	switch headerType {
	case blockMain:
		kind, err = readMainBlock(r, cf, extraAreaSize)
	case blockFile:
		kind, err = readFileBlock(r, cf, extraAreaSize)
	case blockService:
		kind, err = readServiceBlock(r, cf, extraAreaSize)
	case blockCrypt:
		kind, err = readCryptBlock(r)
	case blockEndArchive:
		kind, err = readEndArchiveBlock(r)
	default:
		kind = &UnknownBlock{Tag: headerType}
	}
	if err != nil {
		return nil, err
	}

	return &Block{
		Position:       position,
		Flags:          cf,
		HeaderCRC32:    headerCRC32,
		HeaderSize:     fullHeaderSize,
		ExtraAreaSize:  extraAreaSize,
		StoredDataSize: dataSize,
		Kind:           kind,
	}, nil
}

// HostOS is the operating system used to create the archive.
type HostOS uint8

const (
	HostWindows HostOS = 0
	HostUnix    HostOS = 1
)

func (o HostOS) String() string {
	switch o {
	case HostWindows:
		return "Windows"
	case HostUnix:
		return "Unix"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(o))
	}
}

// MainBlock contains archive-wide metadata. It should be the first block
// in the archive, after the optional crypt block.
type MainBlock struct {
	// Flags of the main header.
	Flags MainFlags

	// VolumeNumber of this volume, present in all volumes except the
	// first.
	VolumeNumber uint64

	// Locator points at the quick open and recovery records, when stored.
	Locator *LocatorRecord

	// Metadata holds the original archive name and creation time, when
	// stored.
	Metadata *MetadataRecord

	// UnknownRecords lists the extra area records that were not decoded.
	UnknownRecords []UnknownRecord
}

func (*MainBlock) isBlockKind() {}

// MainFlags are the rar50 main header flags.
type MainFlags uint16

const (
	mainIsVolume          MainFlags = 0x0001
	mainHasVolumeNumber   MainFlags = 0x0002
	mainIsSolid           MainFlags = 0x0004
	mainHasRecoveryRecord MainFlags = 0x0008
	mainIsLocked          MainFlags = 0x0010
)

// IsVolume reports whether the archive is part of a multi-volume archive.
func (f MainFlags) IsVolume() bool { return f&mainIsVolume != 0 }

// HasVolumeNumber reports whether the volume number field is present.
// True for all volumes except the first.
func (f MainFlags) HasVolumeNumber() bool { return f&mainHasVolumeNumber != 0 }

// IsSolid reports whether the archive uses solid compression.
// https://en.wikipedia.org/wiki/Solid_compression
func (f MainFlags) IsSolid() bool { return f&mainIsSolid != 0 }

// HasRecoveryRecord reports whether the archive contains a recovery
// record.
func (f MainFlags) HasRecoveryRecord() bool { return f&mainHasRecoveryRecord != 0 }

// IsLocked reports whether WinRAR will refuse to modify this archive.
func (f MainFlags) IsLocked() bool { return f&mainIsLocked != 0 }

// Main header record tags.
const (
	mainRecordLocator  = 0x0001
	mainRecordMetadata = 0x0002
)

func readMainBlock(r io.ReadSeeker, cf CommonFlags, extraAreaSize uint64) (BlockKind, error) {
	flags, _, err := parse.ReadVint(r)
	if err != nil {
		return nil, err
	}
	mf := MainFlags(flags)

	b := &MainBlock{Flags: mf}
	if mf.HasVolumeNumber() {
		b.VolumeNumber, _, err = parse.ReadVint(r)
		if err != nil {
			return nil, err
		}
	}

	if cf.HasExtraArea() {
		b.UnknownRecords, err = readRecords(r, extraAreaSize, func(record *Record) (bool, error) {
			switch record.Type {
			case mainRecordLocator:
				if b.Locator != nil {
					return false, nil
				}
				b.Locator, err = readLocatorRecord(recordReader(record))
				return true, err
			case mainRecordMetadata:
				if b.Metadata != nil {
					return false, nil
				}
				b.Metadata, err = readMetadataRecord(recordReader(record))
				return true, err
			default:
				return false, nil
			}
		})
		if err != nil {
			return nil, err
		}
	}
	return b, nil
}

// LocatorRecord points at service blocks elsewhere in the archive so they
// can be found without walking every block. A zero offset means the
// corresponding block is absent.
type LocatorRecord struct {
	QuickOpenOffset      uint64
	RecoveryRecordOffset uint64
}

const (
	locatorHasQuickOpenOffset      = 0x01
	locatorHasRecoveryRecordOffset = 0x02
)

func readLocatorRecord(r io.Reader) (*LocatorRecord, error) {
	flags, _, err := parse.ReadVint(r)
	if err != nil {
		return nil, err
	}

	rec := &LocatorRecord{}
	if flags&locatorHasQuickOpenOffset != 0 {
		rec.QuickOpenOffset, _, err = parse.ReadVint(r)
		if err != nil {
			return nil, err
		}
	}
	if flags&locatorHasRecoveryRecordOffset != 0 {
		rec.RecoveryRecordOffset, _, err = parse.ReadVint(r)
		if err != nil {
			return nil, err
		}
	}
	return rec, nil
}

// MetadataRecord holds the original archive name and creation time.
type MetadataRecord struct {
	// Name of the archive, empty when not stored.
	Name string

	// CreationTime of the archive, nil when not stored.
	CreationTime *rartime.Time
}

const (
	metadataHasArchiveName  = 0x01
	metadataHasCreationTime = 0x02
	metadataUsesUnixTime    = 0x04
	metadataUnixTimeNanos   = 0x08
)

func readMetadataRecord(r io.Reader) (*MetadataRecord, error) {
	flags, _, err := parse.ReadVint(r)
	if err != nil {
		return nil, err
	}

	rec := &MetadataRecord{}
	if flags&metadataHasArchiveName != 0 {
		nameSize, _, err := parse.ReadVint(r)
		if err != nil {
			return nil, err
		}
		name, err := parse.ReadBytes(r, int(nameSize))
		if err != nil {
			return nil, err
		}
		// The field is zero-padded to the stored size.
		for i, c := range name {
			if c == 0 {
				name = name[:i]
				break
			}
		}
		rec.Name = string(name)
	}

	if flags&metadataHasCreationTime != 0 {
		var t rartime.Time
		switch {
		case flags&metadataUsesUnixTime == 0:
			raw, err := parse.ReadU64(r)
			if err != nil {
				return nil, err
			}
			t = rartime.Filetime(raw)
		case flags&metadataUnixTimeNanos != 0:
			raw, err := parse.ReadU64(r)
			if err != nil {
				return nil, err
			}
			t = rartime.UnixNanos(raw)
		default:
			raw, err := parse.ReadU32(r)
			if err != nil {
				return nil, err
			}
			t = rartime.UnixSec(raw)
		}
		rec.CreationTime = &t
	}
	return rec, nil
}

// CompressionInfo packs the compression settings of a file or service
// block into one integer.
type CompressionInfo uint64

const (
	compAlgorithmMask      CompressionInfo = 0x003f
	compSolidMask          CompressionInfo = 0x0040
	compMethodMask         CompressionInfo = 0x0380
	compMinDictSizeMask    CompressionInfo = 0x7c00
	compDictSizeFactorMask CompressionInfo = 0xf8000
	compUsesPack5Mask      CompressionInfo = 0x100000

	// MinDictSize is the smallest dictionary an archive can declare.
	MinDictSize uint64 = 0x20000

	// MaxDictSize is the largest dictionary unrar accepts, 64 GiB.
	MaxDictSize uint64 = 0x10_0000_0000
)

// CompressionAlgorithm is the archiver generation whose algorithm packed
// the data.
type CompressionAlgorithm uint8

const (
	Pack5 CompressionAlgorithm = 0x00
	Pack7 CompressionAlgorithm = 0x01
)

func (a CompressionAlgorithm) String() string {
	switch a {
	case Pack5:
		return "RAR 5.0"
	case Pack7:
		return "RAR 7.0"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(a))
	}
}

// CompressionMethod is the effort level used to compress the data.
type CompressionMethod uint8

const (
	MethodStore CompressionMethod = 0x00
	Method1     CompressionMethod = 0x01
	Method2     CompressionMethod = 0x02
	Method3     CompressionMethod = 0x03
	Method4     CompressionMethod = 0x04
	Method5     CompressionMethod = 0x05
)

func (c CompressionInfo) version() CompressionAlgorithm {
	return CompressionAlgorithm(c & compAlgorithmMask)
}

func (c CompressionInfo) usesPack5Algorithm() bool {
	return c&compUsesPack5Mask != 0
}

// Algorithm returns the algorithm used to compress the data. RAR 7 can
// produce RAR 5 compatible archives; those report Pack5 here.
func (c CompressionInfo) Algorithm() CompressionAlgorithm {
	if c.version() == Pack7 && c.usesPack5Algorithm() {
		return Pack5
	}
	return c.version()
}

// IsSolid reports whether the block continues the compression state of
// the previous one.
func (c CompressionInfo) IsSolid() bool { return c&compSolidMask != 0 }

// Method returns the compression effort level.
func (c CompressionInfo) Method() CompressionMethod {
	return CompressionMethod((c & compMethodMask) >> 7)
}

// MinDictionarySize returns the dictionary size required to unpack the
// data. ok is false when the declared size exceeds MaxDictSize; the
// computed size is still returned.
func (c CompressionInfo) MinDictionarySize() (size uint64, ok bool) {
	factor := uint64(c&compMinDictSizeMask) >> 10

	if c.version() == Pack7 {
		extraFactor := uint64(c&compDictSizeFactorMask) >> 15
		size = MinDictSize << (factor & 0x1f)
		size += size / 32 * extraFactor
	} else {
		size = MinDictSize << (factor & 0x0f)
	}

	return size, size <= MaxDictSize
}

// FileBlock describes one archived file or directory.
type FileBlock struct {
	// Flags of the file header.
	Flags FileFlags

	// UnpackedSize is the size of the file after decompression. Not
	// trustworthy when the flags report the size as unknown, which happens
	// when archiving from stdin.
	UnpackedSize uint64

	// Attributes are OS-specific file attributes.
	Attributes uint64

	// ModificationTime of the file, nil when not stored. The time record
	// in the extra area, when present, carries a higher precision value.
	ModificationTime *rartime.Time

	// DataCRC32 of the unpacked file, present when HasCRC32 is set.
	DataCRC32 uint32

	// Compression settings for this file.
	Compression CompressionInfo

	// HostOS used to create the archive.
	HostOS HostOS

	// Name of the archived file. Forward slash is the path separator on
	// every OS.
	Name Name

	// Encryption parameters, when the file is encrypted.
	Encryption *FileEncryptionRecord

	// Hash of the unpacked file.
	Hash *FileHashRecord

	// ExtendedTime carries high precision timestamps.
	ExtendedTime *FileTimeRecord

	// Version of the file when file versioning is enabled.
	Version *FileVersionRecord

	// Redirection is present for symlinks, hard links and file copies.
	Redirection *FileSystemRedirectionRecord

	// UnixOwner stores the owning user and group.
	UnixOwner *UnixOwnerRecord

	// UnknownRecords lists the extra area records that were not decoded.
	UnknownRecords []UnknownRecord
}

func (*FileBlock) isBlockKind() {}

// FileFlags are the rar50 file header flags.
type FileFlags uint16

const (
	fileIsDirectory         FileFlags = 0x0001
	fileHasModificationTime FileFlags = 0x0002
	fileHasCRC32            FileFlags = 0x0004
	fileUnknownUnpackedSize FileFlags = 0x0008
)

// IsDirectory reports whether the entry is a directory.
func (f FileFlags) IsDirectory() bool { return f&fileIsDirectory != 0 }

// HasModificationTime reports whether the modification time field is
// present.
func (f FileFlags) HasModificationTime() bool { return f&fileHasModificationTime != 0 }

// HasCRC32 reports whether the data CRC32 field is present.
func (f FileFlags) HasCRC32() bool { return f&fileHasCRC32 != 0 }

// UnknownUnpackedSize reports whether the unpacked size is unknown.
func (f FileFlags) UnknownUnpackedSize() bool { return f&fileUnknownUnpackedSize != 0 }

// File and service header record tags.
const (
	fileRecordEncryption  = 0x01
	fileRecordHash        = 0x02
	fileRecordTime        = 0x03
	fileRecordVersion     = 0x04
	fileRecordRedirection = 0x05
	fileRecordUnixOwner   = 0x06
	fileRecordServiceData = 0x07
)

// fileFields are the header fields shared by file and service blocks.
type fileFields struct {
	flags            uint64
	unpackedSize     uint64
	attributes       uint64
	modificationTime *rartime.Time
	dataCRC32        uint32
	compression      CompressionInfo
	hostOS           HostOS
	rawName          []byte
}

func readFileFields(r io.Reader, hasModificationTime, hasCRC32 func(uint64) bool) (*fileFields, error) {
	flags, _, err := parse.ReadVint(r)
	if err != nil {
		return nil, err
	}

	f := &fileFields{flags: flags}
	f.unpackedSize, _, err = parse.ReadVint(r)
	if err != nil {
		return nil, err
	}
	f.attributes, _, err = parse.ReadVint(r)
	if err != nil {
		return nil, err
	}

	if hasModificationTime(flags) {
		raw, err := parse.ReadU32(r)
		if err != nil {
			return nil, err
		}
		t := rartime.UnixSec(raw)
		f.modificationTime = &t
	}
	if hasCRC32(flags) {
		f.dataCRC32, err = parse.ReadU32(r)
		if err != nil {
			return nil, err
		}
	}

	compression, _, err := parse.ReadVint(r)
	if err != nil {
		return nil, err
	}
	f.compression = CompressionInfo(compression)

	hostOS, _, err := parse.ReadVint(r)
	if err != nil {
		return nil, err
	}
	f.hostOS = HostOS(hostOS)

	nameLength, _, err := parse.ReadVint(r)
	if err != nil {
		return nil, err
	}
	if nameLength > maxPathSize {
		nameLength = maxPathSize
	}
	f.rawName, err = parse.ReadBytes(r, int(nameLength))
	if err != nil {
		return nil, err
	}
	return f, nil
}

func readFileBlock(r io.ReadSeeker, cf CommonFlags, extraAreaSize uint64) (BlockKind, error) {
	fields, err := readFileFields(r,
		func(flags uint64) bool { return FileFlags(flags).HasModificationTime() },
		func(flags uint64) bool { return FileFlags(flags).HasCRC32() },
	)
	if err != nil {
		return nil, err
	}

	b := &FileBlock{
		Flags:            FileFlags(fields.flags),
		UnpackedSize:     fields.unpackedSize,
		Attributes:       fields.attributes,
		ModificationTime: fields.modificationTime,
		DataCRC32:        fields.dataCRC32,
		Compression:      fields.compression,
		HostOS:           fields.hostOS,
		Name:             newName(fields.rawName),
	}

	if cf.HasExtraArea() {
		b.UnknownRecords, err = readRecords(r, extraAreaSize, func(record *Record) (bool, error) {
			return decodeFileRecord(record, &fileRecordSet{
				encryption:  &b.Encryption,
				hash:        &b.Hash,
				time:        &b.ExtendedTime,
				version:     &b.Version,
				redirection: &b.Redirection,
				unixOwner:   &b.UnixOwner,
			})
		})
		if err != nil {
			return nil, err
		}
	}
	return b, nil
}

// fileRecordSet collects the record destinations shared by file and
// service blocks. The first record of each type wins; duplicates are
// reported as unknown.
type fileRecordSet struct {
	encryption  **FileEncryptionRecord
	hash        **FileHashRecord
	time        **FileTimeRecord
	version     **FileVersionRecord
	redirection **FileSystemRedirectionRecord
	unixOwner   **UnixOwnerRecord
}

func decodeFileRecord(record *Record, set *fileRecordSet) (bool, error) {
	var err error
	switch record.Type {
	case fileRecordEncryption:
		if *set.encryption != nil {
			return false, nil
		}
		*set.encryption, err = readFileEncryptionRecord(recordReader(record))
	case fileRecordHash:
		if *set.hash != nil {
			return false, nil
		}
		*set.hash, err = readFileHashRecord(recordReader(record))
	case fileRecordTime:
		if *set.time != nil {
			return false, nil
		}
		*set.time, err = readFileTimeRecord(recordReader(record))
	case fileRecordVersion:
		if *set.version != nil {
			return false, nil
		}
		*set.version, err = readFileVersionRecord(recordReader(record))
	case fileRecordRedirection:
		if *set.redirection != nil {
			return false, nil
		}
		*set.redirection, err = readFileSystemRedirectionRecord(recordReader(record))
	case fileRecordUnixOwner:
		if *set.unixOwner != nil {
			return false, nil
		}
		*set.unixOwner, err = readUnixOwnerRecord(recordReader(record))
	default:
		return false, nil
	}
	return true, err
}

// ServiceType identifies the known service block payloads.
type ServiceType int

const (
	ServiceUnknown ServiceType = iota
	ServiceComment
	ServiceQuickOpen
	ServiceNtfsFilePermissions
	ServiceNtfsAlternateDataStream
	ServiceRecoveryRecord
)

func serviceTypeFromBytes(b []byte) ServiceType {
	switch string(b) {
	case "CMT":
		return ServiceComment
	case "QO":
		return ServiceQuickOpen
	case "ACL":
		return ServiceNtfsFilePermissions
	case "STM":
		return ServiceNtfsAlternateDataStream
	case "RR":
		return ServiceRecoveryRecord
	default:
		return ServiceUnknown
	}
}

// ServiceBlock carries archive or file metadata in its data area: the
// archive comment, the quick open cache, NTFS permissions or streams, or
// the recovery record.
type ServiceBlock struct {
	// Flags of the service header.
	Flags ServiceFlags

	// UnpackedSize is the size of the data after decompression. Not
	// trustworthy when the flags report the size as unknown.
	UnpackedSize uint64

	// ModificationTime of the underlying file, nil when not stored.
	ModificationTime *rartime.Time

	// DataCRC32 of the unpacked data, present when HasCRC32 is set.
	DataCRC32 uint32

	// Compression settings for the data.
	Compression CompressionInfo

	// HostOS used to create the archive.
	HostOS HostOS

	// Type of the service payload.
	Type ServiceType

	// RawType is the service name as stored, e.g. "CMT".
	RawType []byte

	// RecoveryRecord info, present on recovery record blocks.
	RecoveryRecord *RecoveryRecordInfo

	// Encryption parameters, when the data is encrypted.
	Encryption *FileEncryptionRecord

	// Hash of the unpacked data.
	Hash *FileHashRecord

	// ExtendedTime carries high precision timestamps.
	ExtendedTime *FileTimeRecord

	// Version record; unused for service blocks but tolerated.
	Version *FileVersionRecord

	// Redirection record; unused for service blocks but tolerated.
	Redirection *FileSystemRedirectionRecord

	// UnixOwner record; unused for service blocks but tolerated.
	UnixOwner *UnixOwnerRecord

	// UnknownRecords lists the extra area records that were not decoded.
	UnknownRecords []UnknownRecord
}

func (*ServiceBlock) isBlockKind() {}

// ServiceFlags are the rar50 service header flags.
type ServiceFlags uint16

const (
	serviceHasModificationTime ServiceFlags = 0x0002
	serviceHasCRC32            ServiceFlags = 0x0004
	serviceUnknownUnpackedSize ServiceFlags = 0x0008
)

// HasModificationTime reports whether the modification time field is
// present.
func (f ServiceFlags) HasModificationTime() bool { return f&serviceHasModificationTime != 0 }

// HasCRC32 reports whether the data CRC32 field is present.
func (f ServiceFlags) HasCRC32() bool { return f&serviceHasCRC32 != 0 }

// UnknownUnpackedSize reports whether the unpacked size is unknown.
func (f ServiceFlags) UnknownUnpackedSize() bool { return f&serviceUnknownUnpackedSize != 0 }

func readServiceBlock(r io.ReadSeeker, cf CommonFlags, extraAreaSize uint64) (BlockKind, error) {
	fields, err := readFileFields(r,
		func(flags uint64) bool { return ServiceFlags(flags).HasModificationTime() },
		func(flags uint64) bool { return ServiceFlags(flags).HasCRC32() },
	)
	if err != nil {
		return nil, err
	}

	b := &ServiceBlock{
		Flags:            ServiceFlags(fields.flags),
		UnpackedSize:     fields.unpackedSize,
		ModificationTime: fields.modificationTime,
		DataCRC32:        fields.dataCRC32,
		Compression:      fields.compression,
		HostOS:           fields.hostOS,
		Type:             serviceTypeFromBytes(fields.rawName),
		RawType:          fields.rawName,
	}

	if cf.HasExtraArea() {
		set := &fileRecordSet{
			encryption:  &b.Encryption,
			hash:        &b.Hash,
			time:        &b.ExtendedTime,
			version:     &b.Version,
			redirection: &b.Redirection,
			unixOwner:   &b.UnixOwner,
		}
		b.UnknownRecords, err = readRecords(r, extraAreaSize, func(record *Record) (bool, error) {
			if record.Type == fileRecordServiceData {
				if b.Type != ServiceRecoveryRecord || b.RecoveryRecord != nil {
					return false, nil
				}
				b.RecoveryRecord, err = readRecoveryRecordInfo(recordReader(record))
				return true, err
			}
			return decodeFileRecord(record, set)
		})
		if err != nil {
			return nil, err
		}
	}
	return b, nil
}

// RecoveryRecordInfo describes the recovery record service data.
// https://www.win-rar.com/faq-recovery.html?&L=0
type RecoveryRecordInfo struct {
	// Percentage of the record size in relation to the archive.
	Percentage uint8

	// Unknown trailing bytes, usually two, unrelated to the size of the
	// archive.
	Unknown []byte
}

func readRecoveryRecordInfo(r io.Reader) (*RecoveryRecordInfo, error) {
	percentage, err := parse.ReadU8(r)
	if err != nil {
		return nil, err
	}
	unknown, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return &RecoveryRecordInfo{Percentage: percentage, Unknown: unknown}, nil
}

// FileEncryptionRecord carries the parameters needed to decrypt the data
// area.
type FileEncryptionRecord struct {
	Flags    FileEncryptionFlags
	KdfCount uint8
	Salt     []byte
	IV       []byte

	// CheckValue allows verifying a password without decrypting the data,
	// present when the flags declare it.
	CheckValue []byte
}

// FileEncryptionFlags are the file encryption record flags.
type FileEncryptionFlags uint8

const (
	encryptionHasPasswordCheck FileEncryptionFlags = 0x01
	encryptionUsesMacChecksum  FileEncryptionFlags = 0x02
)

// HasPasswordCheck reports whether the check value is present.
func (f FileEncryptionFlags) HasPasswordCheck() bool { return f&encryptionHasPasswordCheck != 0 }

// UsesMacChecksum reports whether stored checksums are MACs keyed on the
// password.
func (f FileEncryptionFlags) UsesMacChecksum() bool { return f&encryptionUsesMacChecksum != 0 }

const (
	encryptionSaltSize       = 16
	encryptionIVSize         = 16
	encryptionCheckValueSize = 12
)

func readFileEncryptionRecord(r io.Reader) (*FileEncryptionRecord, error) {
	flags, _, err := parse.ReadVint(r)
	if err != nil {
		return nil, err
	}
	ef := FileEncryptionFlags(flags)

	kdfCount, err := parse.ReadU8(r)
	if err != nil {
		return nil, err
	}
	salt, err := parse.ReadBytes(r, encryptionSaltSize)
	if err != nil {
		return nil, err
	}
	iv, err := parse.ReadBytes(r, encryptionIVSize)
	if err != nil {
		return nil, err
	}

	rec := &FileEncryptionRecord{Flags: ef, KdfCount: kdfCount, Salt: salt, IV: iv}
	if ef.HasPasswordCheck() {
		rec.CheckValue, err = parse.ReadBytes(r, encryptionCheckValueSize)
		if err != nil {
			return nil, err
		}
	}
	return rec, nil
}

// FileHashRecord carries a hash of the unpacked data.
type FileHashRecord struct {
	// Type tag of the hash.
	Type uint64

	// Blake2sp digest, present when the type declares one.
	Blake2sp []byte
}

const (
	hashBlake2sp     = 0x00
	hashBlake2spSize = 32
)

// IsBlake2sp reports whether the record holds a Blake2sp digest.
func (rec *FileHashRecord) IsBlake2sp() bool { return rec.Type == hashBlake2sp }

func readFileHashRecord(r io.Reader) (*FileHashRecord, error) {
	hashType, _, err := parse.ReadVint(r)
	if err != nil {
		return nil, err
	}

	rec := &FileHashRecord{Type: hashType}
	if hashType == hashBlake2sp {
		rec.Blake2sp, err = parse.ReadBytes(r, hashBlake2spSize)
		if err != nil {
			return nil, err
		}
	}
	return rec, nil
}

// FileTimeRecord carries high precision timestamps for the file.
type FileTimeRecord struct {
	ModificationTime *rartime.Time
	CreationTime     *rartime.Time
	AccessTime       *rartime.Time
}

const (
	timeUsesUnixTime = 0x01
	timeHasMtime     = 0x02
	timeHasCtime     = 0x04
	timeHasAtime     = 0x08
	timeHasUnixNanos = 0x10
)

func readFileTimeRecord(r io.Reader) (*FileTimeRecord, error) {
	flags, _, err := parse.ReadVint(r)
	if err != nil {
		return nil, err
	}

	rec := &FileTimeRecord{}

	if flags&timeUsesUnixTime == 0 {
		readWindows := func(dst **rartime.Time, present uint64) error {
			if flags&present == 0 {
				return nil
			}
			raw, err := parse.ReadU64(r)
			if err != nil {
				return err
			}
			t := rartime.Filetime(raw)
			*dst = &t
			return nil
		}
		if err := readWindows(&rec.ModificationTime, timeHasMtime); err != nil {
			return nil, err
		}
		if err := readWindows(&rec.CreationTime, timeHasCtime); err != nil {
			return nil, err
		}
		if err := readWindows(&rec.AccessTime, timeHasAtime); err != nil {
			return nil, err
		}
		return rec, nil
	}

	readUnix := func(dst **rartime.Time, present uint64) error {
		if flags&present == 0 {
			return nil
		}
		raw, err := parse.ReadU32(r)
		if err != nil {
			return err
		}
		t := rartime.UnixSec(raw)
		*dst = &t
		return nil
	}
	if err := readUnix(&rec.ModificationTime, timeHasMtime); err != nil {
		return nil, err
	}
	if err := readUnix(&rec.CreationTime, timeHasCtime); err != nil {
		return nil, err
	}
	if err := readUnix(&rec.AccessTime, timeHasAtime); err != nil {
		return nil, err
	}

	if flags&timeHasUnixNanos == 0 {
		return rec, nil
	}

	// Nanosecond parts follow in the same order, only for the timestamps
	// that are present.
	addNanos := func(dst **rartime.Time) error {
		if *dst == nil {
			return nil
		}
		nanos, err := parse.ReadU32(r)
		if err != nil {
			return err
		}
		t := (*dst).AddNanos(int64(nanos))
		*dst = &t
		return nil
	}
	if err := addNanos(&rec.ModificationTime); err != nil {
		return nil, err
	}
	if err := addNanos(&rec.CreationTime); err != nil {
		return nil, err
	}
	if err := addNanos(&rec.AccessTime); err != nil {
		return nil, err
	}
	return rec, nil
}

// FileVersionRecord is present when file versioning is enabled.
type FileVersionRecord struct {
	VersionNumber uint64
}

func readFileVersionRecord(r io.Reader) (*FileVersionRecord, error) {
	// The flags field is unused so far.
	if _, _, err := parse.ReadVint(r); err != nil {
		return nil, err
	}
	versionNumber, _, err := parse.ReadVint(r)
	if err != nil {
		return nil, err
	}
	return &FileVersionRecord{VersionNumber: versionNumber}, nil
}

// FileSystemRedirectionType says what kind of link or copy the entry is.
type FileSystemRedirectionType uint16

const (
	RedirectUnixSymlink     FileSystemRedirectionType = 0x0001
	RedirectWindowsSymlink  FileSystemRedirectionType = 0x0002
	RedirectWindowsJunction FileSystemRedirectionType = 0x0003
	RedirectHardLink        FileSystemRedirectionType = 0x0004
	RedirectFileCopy        FileSystemRedirectionType = 0x0005
)

func (t FileSystemRedirectionType) String() string {
	switch t {
	case RedirectUnixSymlink:
		return "Unix symlink"
	case RedirectWindowsSymlink:
		return "Windows symlink"
	case RedirectWindowsJunction:
		return "Windows junction"
	case RedirectHardLink:
		return "hard link"
	case RedirectFileCopy:
		return "file copy"
	default:
		return fmt.Sprintf("unknown(%d)", uint16(t))
	}
}

// FileSystemRedirectionRecord is present for entries that are links or
// copies rather than regular files.
type FileSystemRedirectionRecord struct {
	Type FileSystemRedirectionType

	// IsDirectory reports whether the link target is a directory.
	IsDirectory bool

	// Name is the link target.
	Name string
}

const redirectionIsDirectory = 0x0001

func readFileSystemRedirectionRecord(r io.Reader) (*FileSystemRedirectionRecord, error) {
	redirectionType, _, err := parse.ReadVint(r)
	if err != nil {
		return nil, err
	}
	flags, _, err := parse.ReadVint(r)
	if err != nil {
		return nil, err
	}
	nameLength, _, err := parse.ReadVint(r)
	if err != nil {
		return nil, err
	}
	name, err := parse.ReadBytes(r, int(nameLength))
	if err != nil {
		return nil, err
	}

	return &FileSystemRedirectionRecord{
		Type:        FileSystemRedirectionType(redirectionType),
		IsDirectory: flags&redirectionIsDirectory != 0,
		Name:        string(name),
	}, nil
}

// UnixOwnerRecord stores the user and group owning the file, by name, by
// id or both.
type UnixOwnerRecord struct {
	// UserName and GroupName are nil when not stored.
	UserName  []byte
	GroupName []byte

	// HasUserID and HasGroupID report whether the id fields are present.
	HasUserID  bool
	HasGroupID bool
	UserID     uint64
	GroupID    uint64
}

const (
	unixOwnerHasUserName  = 0x01
	unixOwnerHasGroupName = 0x02
	unixOwnerHasUserID    = 0x04
	unixOwnerHasGroupID   = 0x08
)

func readUnixOwnerRecord(r io.Reader) (*UnixOwnerRecord, error) {
	flags, _, err := parse.ReadVint(r)
	if err != nil {
		return nil, err
	}

	rec := &UnixOwnerRecord{}
	if flags&unixOwnerHasUserName != 0 {
		size, _, err := parse.ReadVint(r)
		if err != nil {
			return nil, err
		}
		rec.UserName, err = parse.ReadBytes(r, int(size))
		if err != nil {
			return nil, err
		}
	}
	if flags&unixOwnerHasGroupName != 0 {
		size, _, err := parse.ReadVint(r)
		if err != nil {
			return nil, err
		}
		rec.GroupName, err = parse.ReadBytes(r, int(size))
		if err != nil {
			return nil, err
		}
	}
	if flags&unixOwnerHasUserID != 0 {
		rec.HasUserID = true
		rec.UserID, _, err = parse.ReadVint(r)
		if err != nil {
			return nil, err
		}
	}
	if flags&unixOwnerHasGroupID != 0 {
		rec.HasGroupID = true
		rec.GroupID, _, err = parse.ReadVint(r)
		if err != nil {
			return nil, err
		}
	}
	return rec, nil
}

// CryptBlock precedes the main block in archives with encrypted headers.
// Every block after it is encrypted and cannot be decoded without the
// password; callers should stop iterating when they see one.
type CryptBlock struct {
	// EncryptionVersion of the header encryption; 0 is AES-256.
	EncryptionVersion uint8

	KdfCount uint8
	Salt     []byte

	// CheckValue allows verifying a password without decrypting the
	// headers, present when the flags declare it.
	CheckValue []byte
}

func (*CryptBlock) isBlockKind() {}

// EncryptionAES256 is the only known header encryption version.
const EncryptionAES256 = 0

const cryptHasPasswordCheck = 0x0001

func readCryptBlock(r io.Reader) (BlockKind, error) {
	encryptionVersion, _, err := parse.ReadVint(r)
	if err != nil {
		return nil, err
	}
	flags, _, err := parse.ReadVint(r)
	if err != nil {
		return nil, err
	}
	kdfCount, err := parse.ReadU8(r)
	if err != nil {
		return nil, err
	}
	salt, err := parse.ReadBytes(r, encryptionSaltSize)
	if err != nil {
		return nil, err
	}

	b := &CryptBlock{
		EncryptionVersion: uint8(encryptionVersion),
		KdfCount:          kdfCount,
		Salt:              salt,
	}
	if flags&cryptHasPasswordCheck != 0 {
		b.CheckValue, err = parse.ReadBytes(r, encryptionCheckValueSize)
		if err != nil {
			return nil, err
		}
	}
	return b, nil
}

// EndArchiveBlock signals the end of the archive.
type EndArchiveBlock struct {
	// Flags of the end archive header.
	Flags EndArchiveFlags
}

func (*EndArchiveBlock) isBlockKind() {}

// EndArchiveFlags are the rar50 end archive header flags.
type EndArchiveFlags uint16

const endHasNextVolume EndArchiveFlags = 0x0001

// HasNextVolume reports whether the archive continues in the next volume.
func (f EndArchiveFlags) HasNextVolume() bool { return f&endHasNextVolume != 0 }

func readEndArchiveBlock(r io.Reader) (BlockKind, error) {
	flags, _, err := parse.ReadVint(r)
	if err != nil {
		return nil, err
	}
	return &EndArchiveBlock{Flags: EndArchiveFlags(flags)}, nil
}

// UnknownBlock is a block with a tag this package does not know about.
// Its header and data areas are skipped by their declared sizes.
type UnknownBlock struct {
	// Tag identifying the block.
	Tag uint64
}

func (*UnknownBlock) isBlockKind() {}
