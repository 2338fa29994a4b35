package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/require"

	"petition-backend/internal/shared/apperror"
	"petition-backend/internal/shared/storage/object"
)

func TestApplyPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "case-1/file.pdf", want: "case-1/file.pdf"},
		{name: "simple prefix", prefix: "root", key: "case-1/file.pdf", want: "root/case-1/file.pdf"},
		{name: "prefix trailing slash", prefix: "root/", key: "case-1/file.pdf", want: "root/case-1/file.pdf"},
		{name: "prefix and key slashes", prefix: "/root/", key: "/case-1/file.pdf", want: "root/case-1/file.pdf"},
		{name: "nested prefix", prefix: "root/sub", key: "case-1/file.pdf", want: "root/sub/case-1/file.pdf"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := applyPrefix(tt.prefix, tt.key); got != tt.want {
				t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
			}
		})
	}
}

type fakeAPI struct {
	putErr    error
	putInputs []*s3.PutObjectInput
	deleted   []string
	getBody   string
	getErr    error
}

func (f *fakeAPI) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.putInputs = append(f.putInputs, in)
	if f.putErr != nil {
		return nil, f.putErr
	}
	_, _ = io.Copy(io.Discard, in.Body)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeAPI) GetObject(_ context.Context, _ *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(f.getBody))}, nil
}

func (f *fakeAPI) DeleteObjects(_ context.Context, in *s3.DeleteObjectsInput, _ ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
	for _, obj := range in.Delete.Objects {
		f.deleted = append(f.deleted, aws.ToString(obj.Key))
	}
	return &s3.DeleteObjectsOutput{}, nil
}

type statusErr struct{ status int }

func (e statusErr) Error() string       { return fmt.Sprintf("http %d", e.status) }
func (e statusErr) HTTPStatusCode() int { return e.status }

func TestPutSetsConditionalHeaderWithoutOverwrite(t *testing.T) {
	client := &fakeAPI{}
	store := newWithClient(client, "us-east-1", "bucket", "root", "", "")

	n, err := store.Put(context.Background(), "case-1/a.pdf", strings.NewReader("abc"), object.PutOptions{ContentType: "application/pdf"})
	require.NoError(t, err)
	require.EqualValues(t, 3, n)
	require.Len(t, client.putInputs, 1)
	in := client.putInputs[0]
	require.Equal(t, "root/case-1/a.pdf", aws.ToString(in.Key))
	require.Equal(t, "*", aws.ToString(in.IfNoneMatch))
	require.Equal(t, "application/pdf", aws.ToString(in.ContentType))

	_, err = store.Put(context.Background(), "logos/c1.png", strings.NewReader("png"), object.PutOptions{Overwrite: true})
	require.NoError(t, err)
	require.Nil(t, client.putInputs[1].IfNoneMatch)
}

func TestTranslateErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code string
		kind apperror.Kind
	}{
		{name: "no such key", err: &smithy.GenericAPIError{Code: "NoSuchKey"}, code: apperror.CodeNotFound, kind: apperror.KindTerminalIO},
		{name: "precondition", err: &smithy.GenericAPIError{Code: "PreconditionFailed"}, code: apperror.CodeConflict, kind: apperror.KindTerminalIO},
		{name: "slow down", err: &smithy.GenericAPIError{Code: "SlowDown"}, code: apperror.CodeUnavailable, kind: apperror.KindTransientIO},
		{name: "status 503", err: statusErr{status: 503}, code: "503", kind: apperror.KindTransientIO},
		{name: "status 403", err: statusErr{status: 403}, code: apperror.CodeForbidden, kind: apperror.KindTerminalIO},
		{name: "no response", err: errors.New("dial tcp: i/o timeout"), code: "", kind: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := translate("s3.put", fmt.Errorf("wrapped: %w", tc.err))
			require.Equal(t, tc.code, apperror.CodeOf(got))
			require.Equal(t, tc.kind, apperror.KindOf(got))
			require.ErrorIs(t, got, tc.err)
		})
	}
}

func TestRemoveBatchesKeys(t *testing.T) {
	client := &fakeAPI{}
	store := newWithClient(client, "", "bucket", "", "", "")
	require.NoError(t, store.Remove(context.Background(), "a.pdf", "b/c.pdf"))
	require.Equal(t, []string{"a.pdf", "b/c.pdf"}, client.deleted)
}

func TestOpenMapsMissingKey(t *testing.T) {
	store := newWithClient(&fakeAPI{getErr: &smithy.GenericAPIError{Code: "NoSuchKey"}}, "", "bucket", "", "", "")
	_, err := store.Open(context.Background(), "missing.pdf")
	require.True(t, apperror.IsNotFound(err))
}

func TestPublicURL(t *testing.T) {
	store := newWithClient(&fakeAPI{}, "sa-east-1", "docs", "prod", "", "")
	require.Equal(t, "https://docs.s3.sa-east-1.amazonaws.com/prod/logos/c1.png", store.PublicURL("logos/c1.png"))

	cdn := newWithClient(&fakeAPI{}, "sa-east-1", "docs", "prod", "", "https://cdn.example.com/")
	require.Equal(t, "https://cdn.example.com/logos/c1.png", cdn.PublicURL("logos/c1.png"))
}

func TestPresignGet(t *testing.T) {
	client := s3.New(s3.Options{
		Region:      "us-east-1",
		Credentials: credentials.NewStaticCredentialsProvider("AKID", "SECRET", ""),
	})
	store := newWithClient(client, "us-east-1", "bucket", "root", "", "")
	store.presigner = s3.NewPresignClient(client)

	url, err := store.PresignGet(context.Background(), "generated/case-1/peticao.docx", 5*time.Minute)
	require.NoError(t, err)
	require.Contains(t, url, "root/generated/case-1/peticao.docx")
	require.Contains(t, url, "X-Amz-Expires=300")
	require.Contains(t, url, "X-Amz-Signature=")

	_, err = store.PresignGet(context.Background(), "../escape", time.Minute)
	require.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestPresignGetWithoutPresigner(t *testing.T) {
	store := newWithClient(&fakeAPI{}, "", "bucket", "", "", "")
	_, err := store.PresignGet(context.Background(), "a.pdf", time.Minute)
	require.Error(t, err)
}
