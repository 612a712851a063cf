package secrets

import (
	"context"
	"errors"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// ssmAPI is the subset of the SSM client used here; a seam for tests.
type ssmAPI interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// SSMProvider fetches the signing key from an encrypted SSM parameter and
// caches it per process. Cold starts re-fetch, which is how key rotation
// eventually propagates.
type SSMProvider struct {
	client    ssmAPI
	parameter string

	mu     sync.Mutex
	cached []byte
}

func NewSSMProvider(cfg aws.Config, parameter string) *SSMProvider {
	return &SSMProvider{client: ssm.NewFromConfig(cfg), parameter: parameter}
}

func (p *SSMProvider) SigningKey(ctx context.Context) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cached != nil {
		return p.cached, nil
	}

	out, err := p.client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(p.parameter),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Parameter == nil || out.Parameter.Value == nil || *out.Parameter.Value == "" {
		return nil, errors.New("signing key parameter is empty")
	}

	p.cached = []byte(*out.Parameter.Value)
	return p.cached, nil
}
