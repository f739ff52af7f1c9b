package jsonfeed

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"encoding/json"
	"errors"
	"io"
	"os"

	perr "loteria/internal/platform/errors"
	"loteria/internal/platform/logger"
)

const (
	readBufSize  = 256 * 1024
	sampleRawMax = 512
)

// ContestKeys are the record keys that hold a contest number.
// An object carrying any of them is a record, never an envelope
var ContestKeys = []string{"concurso", "numero", "numeroConcurso"}

type shape uint8

const (
	shapeArray shape = iota + 1
	shapeStream
	shapeList
)

// Reader yields one decoded JSON value per record
type Reader struct {
	closers []io.Closer
	cnt     *countingReader
	dec     *json.Decoder
	shape   shape

	list []any // envelope or lone object, already decoded
	pos  int

	err     error
	records int
	sampled bool
}

// Open opens path and returns a Reader over it
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, perr.Wrapf(err, perr.ErrorCodeNotFound, "input %s not found", path)
		}
		return nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "open input %s", path)
	}
	rd, err := NewReader(f)
	if err != nil {
		return nil, err
	}
	return rd, nil
}

// NewReader detects the document shape and positions the decoder on the first record.
// rc is closed by Reader.Close, or immediately when detection fails
func NewReader(rc io.ReadCloser) (*Reader, error) {
	rd := &Reader{closers: []io.Closer{rc}}
	if err := rd.init(rc); err != nil {
		_ = rd.Close()
		return nil, err
	}
	return rd, nil
}

func (rd *Reader) init(src io.Reader) error {
	br := bufio.NewReaderSize(src, readBufSize)
	if magic, _ := br.Peek(2); len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return perr.Wrap(err, perr.ErrorCodeInvalidArgument, "open gzip input")
		}
		rd.closers = append([]io.Closer{gz}, rd.closers...)
		br = bufio.NewReaderSize(gz, readBufSize)
	}

	first, err := firstByte(br)
	if err != nil {
		return err
	}

	rd.cnt = &countingReader{r: br}
	rd.dec = json.NewDecoder(rd.cnt)
	rd.dec.UseNumber()

	switch first {
	case '[':
		if _, err := rd.dec.Token(); err != nil {
			return jsonErr(err, rd.dec)
		}
		rd.shape = shapeArray
	case '{':
		var raw json.RawMessage
		if err := rd.dec.Decode(&raw); err != nil {
			return jsonErr(err, rd.dec)
		}
		if rd.dec.More() {
			v, err := decodeAny(raw)
			if err != nil {
				return jsonErr(err, rd.dec)
			}
			rd.shape = shapeStream
			rd.list = []any{v}
			return nil
		}
		if err := rd.trailing(); err != nil {
			return err
		}
		list, err := unwrap(raw)
		if err != nil {
			return jsonErr(err, rd.dec)
		}
		rd.shape = shapeList
		rd.list = list
	default:
		return perr.JSONErrf("input must start with a JSON array or object, got %q", first)
	}
	logger.Named("jsonfeed").Debug().Str("shape", rd.shape.String()).Msg("input shape detected")
	return nil
}

// Next returns the next record value; io.EOF when done
func (rd *Reader) Next() (any, error) {
	if rd.err != nil {
		return nil, rd.err
	}
	v, err := rd.next()
	if err != nil {
		rd.err = err
		return nil, err
	}
	rd.records++
	if !rd.sampled {
		rd.sampled = true
		if b, mErr := json.Marshal(v); mErr == nil {
			logger.Named("jsonfeed").Debug().
				Int("record_bytes", len(b)).
				Str("sample_raw", truncateUTF8(b, sampleRawMax)).
				Msg("sample record")
		}
	}
	return v, nil
}

func (rd *Reader) next() (any, error) {
	// values decoded during detection go first
	if rd.pos < len(rd.list) {
		v := rd.list[rd.pos]
		rd.pos++
		return v, nil
	}
	switch rd.shape {
	case shapeArray:
		if rd.dec.More() {
			var v any
			if err := rd.dec.Decode(&v); err != nil {
				return nil, jsonErr(err, rd.dec)
			}
			return v, nil
		}
		if _, err := rd.dec.Token(); err != nil { // closing bracket
			return nil, jsonErr(err, rd.dec)
		}
		if err := rd.trailing(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	case shapeStream:
		var v any
		if err := rd.dec.Decode(&v); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, io.EOF
			}
			return nil, jsonErr(err, rd.dec)
		}
		return v, nil
	default:
		return nil, io.EOF
	}
}

// trailing fails when anything but whitespace follows the top-level value
func (rd *Reader) trailing() error {
	tok, err := rd.dec.Token()
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return jsonErr(err, rd.dec)
	}
	return perr.JSONErrf("unexpected trailing data %v at offset %d", tok, rd.dec.InputOffset())
}

// Close releases the gzip stream and the underlying file
func (rd *Reader) Close() error {
	var first error
	for _, c := range rd.closers {
		if err := c.Close(); err != nil && first == nil && !errors.Is(err, os.ErrClosed) {
			first = err
		}
	}
	rd.closers = nil
	return first
}

// Stats returns the records yielded and the uncompressed bytes consumed so far
func (rd *Reader) Stats() (records int, bytes int64) {
	if rd.cnt == nil {
		return rd.records, 0
	}
	return rd.records, rd.cnt.n
}

func (s shape) String() string {
	switch s {
	case shapeArray:
		return "array"
	case shapeStream:
		return "stream"
	case shapeList:
		return "object"
	}
	return "unknown"
}

// unwrap turns a lone top-level object into its record list.
// An object with a contest key is itself the record. Otherwise the first member,
// in document order, holding a non-empty list whose first element is an object
// is the envelope payload
func unwrap(raw json.RawMessage) ([]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	var (
		payload  []any
		hasKey   bool
		foundKey string
	)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := tok.(string)
		var member json.RawMessage
		if err := dec.Decode(&member); err != nil {
			return nil, err
		}
		if isContestKey(key) {
			hasKey = true
			continue
		}
		if payload != nil || len(member) == 0 || member[0] != '[' {
			continue
		}
		var list []any
		if err := decodeInto(member, &list); err != nil {
			return nil, err
		}
		if len(list) > 0 {
			if _, ok := list[0].(map[string]any); ok {
				payload, foundKey = list, key
			}
		}
	}
	if hasKey || payload == nil {
		v, err := decodeAny(raw)
		if err != nil {
			return nil, err
		}
		return []any{v}, nil
	}
	logger.Named("jsonfeed").Debug().Str("key", foundKey).Int("records", len(payload)).Msg("envelope unwrapped")
	return payload, nil
}

func isContestKey(k string) bool {
	for _, c := range ContestKeys {
		if k == c {
			return true
		}
	}
	return false
}

func decodeAny(raw []byte) (any, error) {
	var v any
	err := decodeInto(raw, &v)
	return v, err
}

func decodeInto(raw []byte, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(dst)
}

// firstByte peeks past whitespace and a UTF-8 BOM without consuming the value
func firstByte(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return 0, perr.JSONErrf("input is empty")
			}
			return 0, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "read input")
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		case 0xEF:
			if bom, _ := br.Peek(2); len(bom) == 2 && bom[0] == 0xBB && bom[1] == 0xBF {
				_, _ = br.Discard(2)
				continue
			}
		}
		if err := br.UnreadByte(); err != nil {
			return 0, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "read input")
		}
		return b, nil
	}
}

func jsonErr(err error, dec *json.Decoder) error {
	if perr.CodeOf(err) != perr.ErrorCodeUnknown {
		return err
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return perr.Wrapf(err, perr.ErrorCodeJSON, "truncated JSON at offset %d", dec.InputOffset())
	}
	return perr.Wrapf(err, perr.ErrorCodeJSON, "invalid JSON near offset %d", dec.InputOffset())
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// truncateUTF8 cuts b to at most max bytes on a rune boundary, adding an ellipsis when cut
func truncateUTF8(b []byte, max int) string {
	if max <= 0 || len(b) <= max {
		return string(b)
	}
	i := max
	for i > 0 && (b[i]&0xC0) == 0x80 {
		i--
	}
	if i <= 0 {
		i = max
	}
	return string(b[:i]) + "..."
}
