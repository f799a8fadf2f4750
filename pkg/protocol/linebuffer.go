package protocol

import "bytes"

// LineBuffer reassembles newline-framed messages from arbitrarily-sized
// read chunks. A trailing partial line is held and prepended to the next
// chunk, so a message split across a read boundary is never lost.
type LineBuffer struct {
	rem []byte
}

// Feed appends a chunk and returns every complete line it closes, in
// order, without the newline terminator. The returned slices are copies
// and stay valid after the next Feed.
func (b *LineBuffer) Feed(chunk []byte) [][]byte {
	data := chunk
	if len(b.rem) > 0 {
		data = append(b.rem, chunk...)
	}

	var lines [][]byte
	for {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			break
		}
		line := make([]byte, i)
		copy(line, data[:i])
		lines = append(lines, line)
		data = data[i+1:]
	}

	b.rem = append([]byte(nil), data...)
	return lines
}

// Pending returns the size of the buffered partial line.
func (b *LineBuffer) Pending() int { return len(b.rem) }

// Reset discards any buffered partial line.
func (b *LineBuffer) Reset() { b.rem = nil }
