// Package protocol implements the Solarmax text protocol: request framing, checksums and response decoding.
package protocol

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/resident-x/go-solarmax/internal/domain"
)

// Frame layout: {SRC;DST;LL|64:PAYLOAD|CCCC}
// LL is the total frame length and CCCC the checksum, both uppercase hex.
const (
	requestTemplate = "{FB;01;!!|64:&&|$$$$}"

	lengthPlaceholder   = "!!"
	fieldsPlaceholder   = "&&"
	checksumPlaceholder = "$$$$"

	// checksumTrailerLen covers the checksum placeholder and the closing brace.
	checksumTrailerLen = len(checksumPlaceholder) + 1

	// RequestSource is the address the host uses on the wire.
	RequestSource = "FB"
	// InverterAddress is the default inverter bus address.
	InverterAddress = "01"
	// ReadCommand is the "read values" command port.
	ReadCommand = "64"

	// MaxFrameLength is the longest frame whose length fits the two hex digits of LL.
	MaxFrameLength = 0xFF
)

// ErrRequestTooLong is returned for field lists that do not fit in one request frame.
var ErrRequestTooLong = errors.New("request frame too long")

// BuildRequest builds a read request frame for the given fields, keeping their order.
// The LL header only holds frames up to MaxFrameLength characters; longer field
// lists produce a frame the inverter rejects, so check them with CheckRequestFields.
func BuildRequest(fields []domain.FieldCode) string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = string(f)
	}

	req := strings.Replace(requestTemplate, fieldsPlaceholder, strings.Join(names, ";"), 1)
	return finalizeFrame(req)
}

// CheckRequestFields returns ErrRequestTooLong when the request for fields would
// exceed MaxFrameLength.
func CheckRequestFields(fields []domain.FieldCode) error {
	if n := len(BuildRequest(fields)); n > MaxFrameLength {
		return fmt.Errorf("%w: %d fields need %d characters, limit is %d", ErrRequestTooLong, len(fields), n, MaxFrameLength)
	}
	return nil
}

// finalizeFrame substitutes the length and checksum placeholders of a frame.
func finalizeFrame(frame string) string {
	frame = strings.Replace(frame, lengthPlaceholder, fmt.Sprintf("%02X", len(frame)), 1)
	checksum := CalculateChecksum(frame[1 : len(frame)-checksumTrailerLen])
	return strings.Replace(frame, checksumPlaceholder, checksum, 1)
}

// CalculateChecksum sums the byte values of data and formats the result as
// uppercase hex, zero padded to four digits. Sums above 0xFFFF are not truncated.
func CalculateChecksum(data string) string {
	sum := 0
	for i := 0; i < len(data); i++ {
		sum += int(data[i])
	}
	return fmt.Sprintf("%04X", sum)
}

// Frame is a decoded protocol frame.
type Frame struct {
	Source      string
	Destination string
	Length      int
	Port        string
	Payload     string
	Checksum    string
}

// ParseFrame splits a frame into its parts and verifies its length and checksum.
func ParseFrame(frame string) (*Frame, error) {
	if len(frame) < 2 || frame[0] != '{' || frame[len(frame)-1] != '}' {
		return nil, &ParseError{Reason: "frame must be enclosed in braces", Input: frame}
	}

	parts := strings.SplitN(frame[1:len(frame)-1], "|", 3)
	if len(parts) != 3 {
		return nil, &ParseError{Reason: "frame must have header, payload and checksum sections", Input: frame}
	}

	header := strings.Split(parts[0], ";")
	if len(header) != 3 {
		return nil, &ParseError{Reason: "header must be SRC;DST;LEN", Input: parts[0]}
	}

	length, err := strconv.ParseInt(header[2], 16, 32)
	if err != nil {
		return nil, &ParseError{Reason: "invalid length", Input: header[2], Err: err}
	}
	if int(length) != len(frame) {
		return nil, &ParseError{
			Reason: fmt.Sprintf("length mismatch: header says %d, frame has %d", length, len(frame)),
			Input:  header[2],
		}
	}

	port, payload, ok := strings.Cut(parts[1], ":")
	if !ok {
		return nil, &ParseError{Reason: "payload has no port separator", Input: parts[1]}
	}

	checksum := parts[2]
	expected := CalculateChecksum(frame[1 : len(frame)-len(checksum)-1])
	if !strings.EqualFold(checksum, expected) {
		return nil, &ParseError{
			Reason: fmt.Sprintf("checksum mismatch: got %s, expected %s", checksum, expected),
			Input:  checksum,
		}
	}

	return &Frame{
		Source:      header[0],
		Destination: header[1],
		Length:      int(length),
		Port:        port,
		Payload:     payload,
		Checksum:    checksum,
	}, nil
}

// ParseRequest decodes a read request frame into the requested field codes.
func ParseRequest(frame string) ([]domain.FieldCode, error) {
	f, err := ParseFrame(frame)
	if err != nil {
		return nil, err
	}
	if f.Port != ReadCommand {
		return nil, &ParseError{Reason: "unsupported command port " + f.Port, Input: frame}
	}
	if f.Payload == "" {
		return nil, &ParseError{Reason: "request names no fields", Input: frame}
	}

	names := strings.Split(f.Payload, ";")
	fields := make([]domain.FieldCode, 0, len(names))
	for _, n := range names {
		if n == "" {
			continue
		}
		fields = append(fields, domain.FieldCode(n))
	}
	return fields, nil
}
