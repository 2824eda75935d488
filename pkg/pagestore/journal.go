package pagestore

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
)

// journal records are grounded on the teacher's WAL record header: a
// checksum, a length, and (here) the page number the record belongs to,
// followed by exactly that many payload bytes. Unlike the teacher's WAL
// there is no record fragmentation — one journal record always holds one
// whole page, since pages here are small and fixed-size.
const journalHeaderSize = 4 + 4 + 4 // crc32 + pageNumber + length

func appendJournalRecord(w io.Writer, pageNumber int32, payload []byte) error {
	header := make([]byte, journalHeaderSize)
	binary.BigEndian.PutUint32(header[4:8], uint32(pageNumber))
	binary.BigEndian.PutUint32(header[8:12], uint32(len(payload)))

	crc := crc32.NewIEEE()
	_, _ = crc.Write(header[4:])
	_, _ = crc.Write(payload)
	binary.BigEndian.PutUint32(header[0:4], crc.Sum32())

	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("%w: journal header: %v", ErrStorageFailure, err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("%w: journal payload: %v", ErrStorageFailure, err)
	}
	return nil
}

type journalRecord struct {
	pageNumber int32
	payload    []byte
}

// readJournalRecords replays every complete record in r. A trailing
// partial record (torn write from a crash mid-append) is silently
// dropped; recovering a partially written epoch beyond "last complete
// record wins" is out of scope.
func readJournalRecords(r io.Reader, pageSize int) ([]journalRecord, error) {
	var records []journalRecord
	header := make([]byte, journalHeaderSize)
	for {
		if _, err := io.ReadFull(r, header); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break
			}
			return nil, fmt.Errorf("%w: journal header: %v", ErrStorageFailure, err)
		}
		length := binary.BigEndian.Uint32(header[8:12])
		if length > uint32(pageSize) {
			break // corrupt/torn record; stop replay here
		}
		payload := make([]byte, length)
		if _, err := io.ReadFull(r, payload); err != nil {
			break // torn record
		}
		crc := crc32.NewIEEE()
		_, _ = crc.Write(header[4:])
		_, _ = crc.Write(payload)
		if crc.Sum32() != binary.BigEndian.Uint32(header[0:4]) {
			break // corrupt record
		}
		records = append(records, journalRecord{
			pageNumber: int32(binary.BigEndian.Uint32(header[4:8])),
			payload:    payload,
		})
	}
	return records, nil
}
