package relocstate

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
)

// Layout of the on-card record. Every field sits at a fixed offset so the
// whole record is a single fixed-size blob:
//
//	0   magic      [4]byte  "MVRL"
//	4   version    uint16
//	6   flags      uint16   bit 0 = active
//	8   pathLen    uint16
//	10  reserved   uint16
//	12  path       [512]byte NUL-terminated
//	524 checksum   uint32   CRC-32 (IEEE) of bytes 0..523
const (
	recordVersion = 1
	pathCapacity  = 512
	recordSize    = 12 + pathCapacity + 4

	flagActive uint16 = 1 << 0
)

var recordMagic = [4]byte{'M', 'V', 'R', 'L'}

// MaxSourceFolderLen is the longest source folder path a record can hold.
const MaxSourceFolderLen = pathCapacity - 1

// ErrPathTooLong is returned when a source folder exceeds MaxSourceFolderLen.
var ErrPathTooLong = errors.New("source folder exceeds record capacity")

// Record is the single persisted relocation fact.
type Record struct {
	// SourceFolder is the absolute folder the files were moved from and must
	// be restored to.
	SourceFolder string
	// Active is true while the files live at the storage root.
	Active bool
}

func (r Record) marshal() ([]byte, error) {
	if len(r.SourceFolder) > MaxSourceFolderLen {
		return nil, fmt.Errorf("%w: %d bytes", ErrPathTooLong, len(r.SourceFolder))
	}
	if bytes.IndexByte([]byte(r.SourceFolder), 0) >= 0 {
		return nil, errors.New("source folder contains NUL byte")
	}

	buf := make([]byte, recordSize)
	copy(buf[0:4], recordMagic[:])
	binary.LittleEndian.PutUint16(buf[4:6], recordVersion)
	var flags uint16
	if r.Active {
		flags |= flagActive
	}
	binary.LittleEndian.PutUint16(buf[6:8], flags)
	binary.LittleEndian.PutUint16(buf[8:10], uint16(len(r.SourceFolder)))
	copy(buf[12:12+pathCapacity], r.SourceFolder)
	binary.LittleEndian.PutUint32(buf[recordSize-4:], crc32.ChecksumIEEE(buf[:recordSize-4]))
	return buf, nil
}

func unmarshalRecord(buf []byte) (Record, error) {
	if len(buf) != recordSize {
		return Record{}, fmt.Errorf("record size %d, want %d", len(buf), recordSize)
	}
	if !bytes.Equal(buf[0:4], recordMagic[:]) {
		return Record{}, errors.New("bad record magic")
	}
	if v := binary.LittleEndian.Uint16(buf[4:6]); v != recordVersion {
		return Record{}, fmt.Errorf("unsupported record version %d", v)
	}
	if got, want := binary.LittleEndian.Uint32(buf[recordSize-4:]), crc32.ChecksumIEEE(buf[:recordSize-4]); got != want {
		return Record{}, errors.New("record checksum mismatch")
	}

	n := int(binary.LittleEndian.Uint16(buf[8:10]))
	if n > MaxSourceFolderLen || buf[12+n] != 0 {
		return Record{}, errors.New("record path length out of range")
	}
	flags := binary.LittleEndian.Uint16(buf[6:8])
	return Record{
		SourceFolder: string(buf[12 : 12+n]),
		Active:       flags&flagActive != 0,
	}, nil
}
