// 蔵書・貸出記録のCSVダウンロード
// - 既定は UTF-8 (BOM付き、Excelで文字化けさせないため)
// - encoding=sjis で CP932 相当に変換して出力する
package exports

import (
	"bytes"
	"encoding/csv"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

type Encoding string

const (
	EncodingUTF8     Encoding = "utf8"
	EncodingShiftJIS Encoding = "sjis"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// encodeCSV renders header+rows into a single buffer in the requested encoding.
func encodeCSV(header []string, rows [][]string, enc Encoding) ([]byte, error) {
	var b bytes.Buffer

	var w *csv.Writer
	switch enc {
	case EncodingShiftJIS:
		// Windowsの「ANSI（CP932）」相当
		w = csv.NewWriter(transform.NewWriter(&b, japanese.ShiftJIS.NewEncoder()))
	default:
		b.Write(utf8BOM)
		w = csv.NewWriter(&b)
	}

	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, r := range rows {
		if err := w.Write(r); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}
