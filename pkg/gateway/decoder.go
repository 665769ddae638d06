package gateway

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
)

// doneSentinel is the literal payload that terminates an event stream.
var doneSentinel = []byte("[DONE]")

// dataPrefix is the SSE field prefix for payload-bearing lines.
var dataPrefix = []byte("data:")

// deltaDecoder incrementally decodes an SSE-framed chat completion stream
// into content deltas.
//
// The decoder reads the raw byte stream line by line: frames are split only
// at newline bytes, so a multi-byte UTF-8 character or a JSON token split
// across network chunks is reassembled naturally before any text handling
// happens. Memory use is bounded by the longest single undelimited line.
//
// Frame handling, per line:
//   - a trailing carriage return is stripped
//   - blank lines, comment lines, and non-"data:" fields are ignored
//   - a "[DONE]" payload ends the stream before JSON parsing is attempted
//   - payloads that fail to parse as JSON are skipped silently; a flaky
//     upstream must never crash the consumer
//   - the delta is choices[0].delta.content; absent or empty means no
//     delta this frame
type deltaDecoder struct {
	r    *bufio.Reader
	done bool
}

func newDeltaDecoder(r io.Reader) *deltaDecoder {
	return &deltaDecoder{r: bufio.NewReaderSize(r, 64*1024)}
}

// Next returns the next non-empty content delta. It returns io.EOF once the
// [DONE] sentinel is seen or the underlying stream ends; a stream that
// closes without a sentinel is normal completion, not an error. A final
// unterminated "data:" line is still decoded before EOF is reported.
func (d *deltaDecoder) Next() (string, error) {
	if d.done {
		return "", io.EOF
	}

	for {
		line, readErr := d.r.ReadBytes('\n')

		if len(line) > 0 {
			delta, sentinel, ok := d.decodeLine(line)
			if sentinel {
				d.done = true
				return "", io.EOF
			}
			if ok {
				return delta, nil
			}
		}

		if readErr != nil {
			d.done = true
			if readErr == io.EOF {
				return "", io.EOF
			}
			return "", readErr
		}
	}
}

// decodeLine inspects a single frame. It reports whether the frame was the
// terminator sentinel, and otherwise whether it yielded a delta.
func (d *deltaDecoder) decodeLine(line []byte) (delta string, sentinel, ok bool) {
	line = bytes.TrimRight(line, "\r\n")
	if len(line) == 0 || line[0] == ':' {
		return "", false, false
	}

	payload, found := bytes.CutPrefix(line, dataPrefix)
	if !found {
		// "event:", "id:", "retry:" and unknown fields carry no deltas.
		return "", false, false
	}
	// Strip a single leading space after the colon, per the SSE spec.
	if len(payload) > 0 && payload[0] == ' ' {
		payload = payload[1:]
	}

	if bytes.Equal(payload, doneSentinel) {
		return "", true, false
	}

	var chunk streamChunk
	if err := json.Unmarshal(payload, &chunk); err != nil {
		// Corruption or partial data from an upstream bug. Skip the frame
		// and keep the stream alive.
		return "", false, false
	}

	if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
		return "", false, false
	}

	return chunk.Choices[0].Delta.Content, false, true
}
