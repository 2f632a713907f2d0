package paramstore

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	getOut   *ssm.GetParameterOutput
	getErr   error
	lastGet  *ssm.GetParameterInput
	pages    []*ssm.GetParametersByPathOutput
	pathErr  error
	pathIn   []*ssm.GetParametersByPathInput
	pageCall int
}

func (f *fakeAPI) GetParameter(_ context.Context, in *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	f.lastGet = in
	return f.getOut, f.getErr
}

func (f *fakeAPI) GetParametersByPath(_ context.Context, in *ssm.GetParametersByPathInput, _ ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error) {
	f.pathIn = append(f.pathIn, in)
	if f.pathErr != nil {
		return nil, f.pathErr
	}
	out := f.pages[f.pageCall]
	f.pageCall++
	return out, nil
}

func param(name, value string) types.Parameter {
	return types.Parameter{Name: aws.String(name), Value: aws.String(value)}
}

func TestGetParameter_HappyPath(t *testing.T) {
	api := &fakeAPI{getOut: &ssm.GetParameterOutput{Parameter: &types.Parameter{
		Name: aws.String("p"), Value: aws.String(`{"k":"v"}`), Type: types.ParameterTypeSecureString,
	}}}
	client, err := New(api)
	require.NoError(t, err)
	v, err := client.GetParameter(context.Background(), " p ")
	require.NoError(t, err)
	require.Equal(t, `{"k":"v"}`, v)
	require.Equal(t, "p", *api.lastGet.Name)
	require.True(t, *api.lastGet.WithDecryption)
}

func TestGetParameter_MissingValue(t *testing.T) {
	api := &fakeAPI{getOut: &ssm.GetParameterOutput{Parameter: &types.Parameter{Name: aws.String("p")}}}
	client, err := New(api)
	require.NoError(t, err)
	_, err = client.GetParameter(context.Background(), "p")
	require.Error(t, err)
	require.Contains(t, err.Error(), "missing value")
}

func TestGetParameter_ApiError(t *testing.T) {
	client, err := New(&fakeAPI{getErr: errors.New("boom")})
	require.NoError(t, err)
	_, err = client.GetParameter(context.Background(), "p")
	require.ErrorContains(t, err, "boom")
}

func TestGetParameter_ClientNotInitialized(t *testing.T) {
	_, err := (&Client{}).GetParameter(context.Background(), "p")
	require.ErrorContains(t, err, "not initialized")
}

func TestGetParameter_EmptyName(t *testing.T) {
	client, err := New(&fakeAPI{})
	require.NoError(t, err)
	_, err = client.GetParameter(context.Background(), "  ")
	require.ErrorContains(t, err, "required")
}

func TestGetParametersByPath_FollowsPagination(t *testing.T) {
	api := &fakeAPI{pages: []*ssm.GetParametersByPathOutput{
		{
			Parameters: []types.Parameter{param("/rfp/experts/sourcing", `{"name":"Sourcing"}`)},
			NextToken:  aws.String("page-2"),
		},
		{
			Parameters: []types.Parameter{
				param("/rfp/experts/legal", `{"name":"Legal"}`),
				{Name: aws.String("/rfp/experts/broken")},
			},
		},
	}}
	client, err := New(api)
	require.NoError(t, err)

	values, err := client.GetParametersByPath(context.Background(), "/rfp/experts/")
	require.NoError(t, err)
	require.Equal(t, map[string]string{
		"sourcing": `{"name":"Sourcing"}`,
		"legal":    `{"name":"Legal"}`,
	}, values)
	require.Len(t, api.pathIn, 2)
	require.Equal(t, "/rfp/experts", *api.pathIn[0].Path)
	require.Nil(t, api.pathIn[0].NextToken)
	require.Equal(t, "page-2", *api.pathIn[1].NextToken)
}

func TestGetParametersByPath_Errors(t *testing.T) {
	client, err := New(&fakeAPI{pathErr: errors.New("throttled")})
	require.NoError(t, err)
	_, err = client.GetParametersByPath(context.Background(), "/rfp/experts")
	require.ErrorContains(t, err, "throttled")

	_, err = client.GetParametersByPath(context.Background(), " / ")
	require.ErrorContains(t, err, "path is required")
}

func TestNew_NilAPI(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "must not be nil")
}
