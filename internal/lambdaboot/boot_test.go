package lambdaboot

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"

	"github.com/fpang/ai-doodle-enhancer/internal/config"
)

type fakeSSM struct {
	calls      int
	gotName    string
	gotDecrypt bool
	value      *string
	err        error
}

func (f *fakeSSM) GetParameter(ctx context.Context, in *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	f.calls++
	f.gotName = aws.ToString(in.Name)
	f.gotDecrypt = aws.ToBool(in.WithDecryption)
	if f.err != nil {
		return nil, f.err
	}
	return &ssm.GetParameterOutput{Parameter: &types.Parameter{Value: f.value}}, nil
}

func TestLoadGeminiKey_FromSSM(t *testing.T) {
	fake := &fakeSSM{value: aws.String("ssm-key\n")}
	cfg := &config.Config{SSMAPIKeyParam: "/ai-doodle-enhancer/test/gemini-api-key"}

	if !LoadGeminiKey(context.Background(), fake, cfg) {
		t.Fatal("expected key to be loaded")
	}
	if cfg.APIKey != "ssm-key" {
		t.Errorf("expected trimmed SSM key, got %q", cfg.APIKey)
	}
	if fake.gotName != "/ai-doodle-enhancer/test/gemini-api-key" {
		t.Errorf("unexpected parameter name %q", fake.gotName)
	}
	if !fake.gotDecrypt {
		t.Error("expected WithDecryption")
	}
}

func TestLoadGeminiKey_EnvWins(t *testing.T) {
	fake := &fakeSSM{value: aws.String("ssm-key")}
	cfg := &config.Config{APIKey: "env-key"}

	if !LoadGeminiKey(context.Background(), fake, cfg) {
		t.Fatal("expected configured key to count")
	}
	if fake.calls != 0 {
		t.Error("expected no SSM call when key already configured")
	}
	if cfg.APIKey != "env-key" {
		t.Errorf("expected env key kept, got %q", cfg.APIKey)
	}
}

func TestLoadGeminiKey_NonFatalFailures(t *testing.T) {
	tests := []struct {
		name   string
		getter ParameterGetter
	}{
		{"ssm error", &fakeSSM{err: errors.New("AccessDeniedException")}},
		{"nil value", &fakeSSM{}},
		{"no client", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{SSMAPIKeyParam: "/x"}
			if LoadGeminiKey(context.Background(), tt.getter, cfg) {
				t.Error("expected no key")
			}
			if cfg.APIKeyConfigured() {
				t.Errorf("expected empty key, got %q", cfg.APIKey)
			}
		})
	}
}
