package credentials

import (
	"context"
	"errors"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

// SSMClient is the subset of *ssm.Client methods used by [SSMStore].
type SSMClient interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
	PutParameter(ctx context.Context, params *ssm.PutParameterInput, optFns ...func(*ssm.Options)) (*ssm.PutParameterOutput, error)
	DeleteParameter(ctx context.Context, params *ssm.DeleteParameterInput, optFns ...func(*ssm.Options)) (*ssm.DeleteParameterOutput, error)
}

// SSMStore keeps secrets as SecureString parameters named <prefix>/<tag>.
type SSMStore struct {
	client SSMClient
	prefix string
}

func NewSSMStore(client SSMClient, prefix string) *SSMStore {
	if prefix == "" {
		prefix = "/" + defaultService
	}
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	return &SSMStore{client: client, prefix: strings.TrimSuffix(prefix, "/")}
}

func (s *SSMStore) name(tag Tag) string {
	return path.Join(s.prefix, string(tag))
}

func (s *SSMStore) Get(ctx context.Context, tag Tag) (string, error) {
	out, err := s.client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(s.name(tag)),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		var nf *types.ParameterNotFound
		if errors.As(err, &nf) {
			return "", ErrNotFound
		}
		return "", unavailable("ssm get parameter", err)
	}
	if out.Parameter == nil || out.Parameter.Value == nil {
		return "", ErrNotFound
	}
	return *out.Parameter.Value, nil
}

func (s *SSMStore) Set(ctx context.Context, tag Tag, value string) error {
	_, err := s.client.PutParameter(ctx, &ssm.PutParameterInput{
		Name:      aws.String(s.name(tag)),
		Value:     aws.String(value),
		Type:      types.ParameterTypeSecureString,
		Overwrite: aws.Bool(true),
	})
	if err != nil {
		return unavailable("ssm put parameter", err)
	}
	return nil
}

func (s *SSMStore) Clear(ctx context.Context, tag Tag) error {
	_, err := s.client.DeleteParameter(ctx, &ssm.DeleteParameterInput{Name: aws.String(s.name(tag))})
	if err != nil {
		var nf *types.ParameterNotFound
		if errors.As(err, &nf) {
			return nil
		}
		return unavailable("ssm delete parameter", err)
	}
	return nil
}
