package shapefile

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/jbadsdata/arc-hacks/internal/workspace"
)

// dbfHeader is the slice of a dBASE file the inventory needs: the record
// count and the field descriptors. go-shp only reads attribute tables
// through a shapefile, so standalone dbf tables are parsed here directly.
type dbfHeader struct {
	records int64
	fields  []workspace.Field
}

func readDBF(path string) (*dbfHeader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) < 32 {
		return nil, fmt.Errorf("dbf %s: truncated header", path)
	}

	h := &dbfHeader{
		records: int64(binary.LittleEndian.Uint32(data[4:8])),
	}
	headerSize := int(binary.LittleEndian.Uint16(data[8:10]))
	if headerSize > len(data) {
		return nil, fmt.Errorf("dbf %s: header size %d exceeds file", path, headerSize)
	}

	// Field descriptors are 32-byte blocks from offset 32 up to the 0x0D
	// terminator.
	for off := 32; off+32 <= headerSize && data[off] != 0x0d; off += 32 {
		desc := data[off : off+32]
		name := desc[:11]
		end := 0
		for end < len(name) && name[end] != 0 {
			end++
		}
		h.fields = append(h.fields, workspace.Field{
			Name:     string(name[:end]),
			Type:     dbfTypeName(desc[11]),
			Length:   int(desc[16]),
			Nullable: true, // dBASE has no NOT NULL notion
		})
	}
	return h, nil
}

func dbfTypeName(code byte) string {
	switch code {
	case 'C':
		return "String"
	case 'N':
		return "Number"
	case 'F':
		return "Float"
	case 'D':
		return "Date"
	case 'L':
		return "Logical"
	case 'M':
		return "Memo"
	}
	return string(code)
}
