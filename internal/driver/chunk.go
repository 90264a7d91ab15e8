package driver

import (
	"bufio"
	"bytes"
	"io"
)

// FileChunkSize is the target number of bytes read per dispatched
// batch, matching the original driver's FILE_CHUNK_SIZE. A chunk is
// always grown to end on a line boundary (or true end of input) so no
// task ever has to parse a line split across two chunks.
const FileChunkSize = 32768

// chunkReader turns a stream of newline-delimited records into
// line-aligned byte chunks of roughly FileChunkSize bytes each. Unlike
// the original's fixed-size read-then-seek-back-to-last-newline
// approach, it accumulates whole lines via bufio.Reader.ReadBytes,
// which needs no Seek and so works over any io.Reader, not just a
// regular file.
//
// End of input is signaled only by a call to next that returns a nil
// chunk and io.EOF — never inferred from a short read — matching the
// fix called for by the reference driver's own end-of-batch condition,
// which conflated "task pool exhausted" with "no more input". A
// mid-stream read error is also reported as io.EOF (spec: "runtime I/O
// errors mid-stream are treated as end-of-file"), so Run never needs to
// distinguish "clean EOF" from "the file vanished out from under us".
type chunkReader struct {
	br     *bufio.Reader
	budget int
}

func newChunkReader(r io.Reader, budget int) *chunkReader {
	return &chunkReader{br: bufio.NewReaderSize(r, budget), budget: budget}
}

func (c *chunkReader) next() ([]byte, error) {
	var buf bytes.Buffer
	for buf.Len() < c.budget {
		line, err := c.br.ReadBytes('\n')
		if len(line) > 0 {
			buf.Write(line)
		}
		if err != nil {
			if buf.Len() == 0 {
				return nil, io.EOF
			}
			return buf.Bytes(), nil
		}
	}
	return buf.Bytes(), nil
}
