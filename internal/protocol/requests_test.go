package protocol

import (
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/resident-x/go-solarmax/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRequest(t *testing.T) {
	tests := []struct {
		name     string
		fields   []domain.FieldCode
		expected string
	}{
		{
			name:     "single field",
			fields:   []domain.FieldCode{domain.FieldPAC},
			expected: "{FB;01;16|64:PAC|0436}",
		},
		{
			name:     "two fields keep order",
			fields:   []domain.FieldCode{domain.FieldPAC, domain.FieldSYS},
			expected: "{FB;01;1A|64:PAC;SYS|057B}",
		},
		{
			name:   "all inverter fields",
			fields: domain.FieldCodes(domain.InverterFields),
			expected: "{FB;01;78|64:KDY;KMT;KYR;KT0;PDC;PD01;PD02;UD01;UD02;IDC;ID01;ID02;" +
				"PAC;UL1;UL2;UL3;IL1;IL2;IL3;CAC;KHR;TKK;SAL;SYS|1DCB}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, BuildRequest(tt.fields))
		})
	}
}

func TestBuildRequestShape(t *testing.T) {
	req := BuildRequest([]domain.FieldCode{domain.FieldPAC})

	assert.True(t, strings.HasPrefix(req, "{FB;01;"))
	assert.Contains(t, req, "PAC")
	assert.True(t, strings.HasSuffix(req, "}"))

	// The length byte is the length of the whole frame.
	length, err := strconv.ParseInt(req[7:9], 16, 32)
	require.NoError(t, err)
	assert.Equal(t, len(req), int(length))
}

func TestCheckRequestFields(t *testing.T) {
	all := domain.FieldCodes(domain.InverterFields)

	require.NoError(t, CheckRequestFields(all))

	twice := append(append([]domain.FieldCode{}, all...), all...)
	require.NoError(t, CheckRequestFields(twice))
	assert.Len(t, BuildRequest(twice), 222)

	thrice := append(append([]domain.FieldCode{}, twice...), all...)
	err := CheckRequestFields(thrice)
	require.ErrorIs(t, err, ErrRequestTooLong)
	assert.Contains(t, err.Error(), "72 fields need 324 characters")
}

func TestCalculateChecksum(t *testing.T) {
	data := "FB;01;3A|64:PAC|"

	sum := 0
	for _, c := range data {
		sum += int(c)
	}

	checksum := CalculateChecksum(data)
	assert.Equal(t, "0443", checksum)
	assert.Equal(t, fmt.Sprintf("%04X", sum), checksum)
	assert.Equal(t, strings.ToUpper(checksum), checksum)
}

func TestCalculateChecksumPadding(t *testing.T) {
	assert.Equal(t, "0000", CalculateChecksum(""))
	assert.Equal(t, "0041", CalculateChecksum("A"))
}

func TestCalculateChecksumOverflowIsNotTruncated(t *testing.T) {
	// 600 * 'z' (0x7A) = 73200 = 0x11DF0
	checksum := CalculateChecksum(strings.Repeat("z", 600))
	assert.Equal(t, "11DF0", checksum)
}

func TestParseFrame(t *testing.T) {
	frame, err := ParseFrame("{FB;01;1A|64:PAC;SYS|057B}")
	require.NoError(t, err)

	assert.Equal(t, "FB", frame.Source)
	assert.Equal(t, "01", frame.Destination)
	assert.Equal(t, 26, frame.Length)
	assert.Equal(t, "64", frame.Port)
	assert.Equal(t, "PAC;SYS", frame.Payload)
	assert.Equal(t, "057B", frame.Checksum)
}

func TestParseFrameErrors(t *testing.T) {
	tests := []struct {
		name  string
		frame string
		msg   string
	}{
		{"no braces", "FB;01;16|64:PAC|0436", "braces"},
		{"missing sections", "{FB;01;16|64:PAC}", "sections"},
		{"bad header", "{FB;16|64:PAC|0436}", "header"},
		{"bad length", "{FB;01;ZZ|64:PAC|0436}", "invalid length"},
		{"length mismatch", "{FB;01;17|64:PAC|0437}", "length mismatch"},
		{"no port", "{FB;01;15|64PAC|03FB}", "port separator"},
		{"checksum mismatch", "{FB;01;16|64:PAC|0000}", "checksum mismatch"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFrame(tt.frame)
			require.Error(t, err)

			var parseErr *ParseError
			require.ErrorAs(t, err, &parseErr)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestParseRequestRoundTrip(t *testing.T) {
	fields := domain.FieldCodes(domain.InverterFields)

	parsed, err := ParseRequest(BuildRequest(fields))
	require.NoError(t, err)
	assert.Equal(t, fields, parsed)
}

func TestParseRequestRejectsOtherPorts(t *testing.T) {
	frame := finalizeFrame("{FB;01;!!|C8:PAC|$$$$}")

	_, err := ParseRequest(frame)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported command port")
}

func BenchmarkBuildRequest(b *testing.B) {
	fields := domain.FieldCodes(domain.InverterFields)
	for i := 0; i < b.N; i++ {
		_ = BuildRequest(fields)
	}
}
