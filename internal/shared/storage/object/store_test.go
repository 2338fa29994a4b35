package object

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCleanKey(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "case-1/123-abc-edital.pdf", want: "case-1/123-abc-edital.pdf"},
		{in: "/logos/c1.png", want: "logos/c1.png"},
		{in: "generated//c1/x.docx", want: "generated/c1/x.docx"},
		{in: `logos\c1.png`, want: "logos/c1.png"},
		{in: "", wantErr: true},
		{in: "../secret", wantErr: true},
		{in: "a/../../b", wantErr: true},
	}
	for _, tc := range cases {
		got, err := CleanKey(tc.in)
		if tc.wantErr {
			require.ErrorIs(t, err, ErrInvalidKey, "input %q", tc.in)
			continue
		}
		require.NoError(t, err)
		require.Equal(t, tc.want, got)
	}
}

func TestJoinURL(t *testing.T) {
	require.Equal(t, "http://localhost:8080/files/logos/c%201.png", JoinURL("http://localhost:8080/files/", "logos/c 1.png"))
}
