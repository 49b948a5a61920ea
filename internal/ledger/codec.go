package ledger

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"calcshell/pkg/calctypes"
)

// Header is the column row every history file starts with. Rows are written with standard CSV
// quoting, so the operand list is quoted because it contains a comma: add,"[5, 3]",8. Files
// edited by hand may leave it unquoted (add,[5, 3],8); both forms are read.
var Header = []string{"operation", "operands", "result"}

// EncodeHeader writes the header row to w.
func EncodeHeader(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// EncodeRows writes one CSV row per calculation to w. The operands column is quoted because
// it contains a comma: add,"[5, 3]",8.
func EncodeRows(w io.Writer, calcs []calctypes.Calculation) error {
	cw := csv.NewWriter(w)
	for _, calc := range calcs {
		row := []string{calc.Operation(), calc.FormatOperands(), calc.Result().String()}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Encode renders a complete history file: header plus one row per calculation.
func Encode(calcs []calctypes.Calculation) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeHeader(&buf); err != nil {
		return nil, err
	}
	if err := EncodeRows(&buf, calcs); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode parses a history file. Blank content yields an empty history. Any structural problem
// (missing or wrong header, short row, unparseable value, operand count other than two) fails
// the whole file with ErrFormat; no partial result is returned.
func Decode(data []byte) ([]calctypes.Calculation, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: unreadable header: %v", calctypes.ErrFormat, err)
	}
	if !isHeader(header) {
		return nil, fmt.Errorf("%w: unexpected header %q", calctypes.ErrFormat, strings.Join(header, ","))
	}

	var calcs []calctypes.Calculation
	line := 1
	for {
		fields, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", calctypes.ErrFormat, line, err)
		}
		calc, err := decodeRow(fields)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", calctypes.ErrFormat, line, err)
		}
		calcs = append(calcs, calc)
	}
	return calcs, nil
}

// utf8BOM is the byte order mark spreadsheet tools put at the start of CSV exports.
const utf8BOM = "\ufeff"

func isHeader(fields []string) bool {
	if len(fields) != len(Header) {
		return false
	}
	for i, name := range Header {
		field := fields[i]
		if i == 0 {
			field = strings.TrimPrefix(field, utf8BOM)
		}
		if !strings.EqualFold(strings.TrimSpace(field), name) {
			return false
		}
	}
	return true
}

// decodeRow accepts both the quoted form add,"[5, 3]",8 and the hand-written unquoted form
// add,[5, 3],8, whose operand list the CSV reader splits across several fields.
func decodeRow(fields []string) (calctypes.Calculation, error) {
	if len(fields) < len(Header) {
		return calctypes.Calculation{}, fmt.Errorf("expected %d columns, got %d", len(Header), len(fields))
	}

	operation := strings.ToLower(strings.TrimSpace(fields[0]))
	result := strings.TrimSpace(fields[len(fields)-1])
	operandsText := strings.Join(fields[1:len(fields)-1], ",")

	operands, err := ParseOperands(operandsText)
	if err != nil {
		return calctypes.Calculation{}, err
	}
	value, err := calctypes.ParseValue(result)
	if err != nil {
		return calctypes.Calculation{}, fmt.Errorf("result: %w", err)
	}
	return calctypes.NewCalculation(operation, operands, value)
}

// ParseOperands parses an operand list such as "[5, 3]". The legacy form
// '[Decimal('5'), Decimal('3')]' is accepted too.
func ParseOperands(text string) ([]calctypes.Value, error) {
	s := strings.TrimSpace(text)
	s = strings.Trim(s, `'"`)
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil, fmt.Errorf("operands %q are not a bracketed list", text)
	}
	inner := strings.TrimSpace(s[1 : len(s)-1])
	if inner == "" {
		return nil, nil
	}

	parts := strings.Split(inner, ",")
	values := make([]calctypes.Value, 0, len(parts))
	for _, part := range parts {
		v, err := calctypes.ParseValue(unwrapLegacy(part))
		if err != nil {
			return nil, fmt.Errorf("operand: %w", err)
		}
		values = append(values, v)
	}
	return values, nil
}

// unwrapLegacy turns Decimal('5') into 5 and leaves plain numbers alone.
func unwrapLegacy(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "Decimal(") && strings.HasSuffix(s, ")") {
		s = s[len("Decimal(") : len(s)-1]
	}
	return strings.Trim(strings.TrimSpace(s), `'"`)
}
