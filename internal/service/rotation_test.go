package service

import (
	"context"
	"fmt"
	"testing"

	"go.uber.org/zap"
)

func TestRotation_StopsOnFirstSuccess(t *testing.T) {
	tests := []struct {
		name        string
		failBefore  int // credentials that fail with a retryable error
		credentials int
	}{
		{name: "first credential works", failBefore: 0, credentials: 3},
		{name: "second credential works", failBefore: 1, credentials: 3},
		{name: "last credential works", failBefore: 4, credentials: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := NewCredentialPool(makeCredentials(tt.credentials))

			calls := 0
			attempt := func(ctx context.Context, prompt, credential string) (string, error) {
				calls++
				if calls <= tt.failBefore {
					return "", fmt.Errorf("%w: status 429", ErrRateLimited)
				}
				return "respuesta de " + credential, nil
			}

			rotation := NewRotation(pool, attempt, zap.NewNop())
			text, err := rotation.Generate(context.Background(), "hola")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			wantCalls := tt.failBefore + 1
			if calls != wantCalls {
				t.Errorf("expected exactly %d calls, got %d", wantCalls, calls)
			}
			wantText := fmt.Sprintf("respuesta de key-%d", wantCalls)
			if text != wantText {
				t.Errorf("expected %q, got %q", wantText, text)
			}
		})
	}
}

func TestRotation_ExhaustsAllCredentials(t *testing.T) {
	const n = 4
	pool := NewCredentialPool(makeCredentials(n))

	calls := 0
	attempt := func(ctx context.Context, prompt, credential string) (string, error) {
		calls++
		return "", fmt.Errorf("%w: status 401", ErrUnauthorized)
	}

	rotation := NewRotation(pool, attempt, zap.NewNop())
	text, err := rotation.Generate(context.Background(), "hola")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != n {
		t.Errorf("expected exactly %d calls, got %d", n, calls)
	}
	if text != ExhaustedMessage {
		t.Errorf("expected exhaustion message, got %q", text)
	}
}

func TestRotation_MalformedResponseRotates(t *testing.T) {
	pool := NewCredentialPool(makeCredentials(2))

	calls := 0
	attempt := func(ctx context.Context, prompt, credential string) (string, error) {
		calls++
		if calls == 1 {
			return "", fmt.Errorf("%w: no candidate text", ErrMalformedResponse)
		}
		return "ok", nil
	}

	rotation := NewRotation(pool, attempt, zap.NewNop())
	text, err := rotation.Generate(context.Background(), "hola")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "ok" || calls != 2 {
		t.Errorf("malformed response must rotate to the next credential: text=%q calls=%d", text, calls)
	}
}

func TestRotation_NonRetryableStopsEarly(t *testing.T) {
	pool := NewCredentialPool(makeCredentials(3))

	calls := 0
	attempt := func(ctx context.Context, prompt, credential string) (string, error) {
		calls++
		return "", fmt.Errorf("%w: status 404", ErrModelUnavailable)
	}

	rotation := NewRotation(pool, attempt, zap.NewNop())
	text, err := rotation.Generate(context.Background(), "hola")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("a missing model affects every credential, expected 1 call, got %d", calls)
	}
	if text != ExhaustedMessage {
		t.Errorf("expected terminal apology, got %q", text)
	}
}

func TestRotation_ContextCancellationStops(t *testing.T) {
	pool := NewCredentialPool(makeCredentials(5))
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	attempt := func(ctx context.Context, prompt, credential string) (string, error) {
		calls++
		cancel()
		return "", fmt.Errorf("%w: interrupted", ErrTransport)
	}

	rotation := NewRotation(pool, attempt, zap.NewNop())
	_, err := rotation.Generate(ctx, "hola")
	if err == nil {
		t.Fatal("expected a context error after cancellation")
	}
	if calls != 1 {
		t.Errorf("rotation must not keep retrying after cancellation, got %d calls", calls)
	}
}

func TestRotation_EmptyPool(t *testing.T) {
	rotation := NewRotation(NewCredentialPool(nil), func(ctx context.Context, prompt, credential string) (string, error) {
		t.Fatal("attempt must not be called with an empty pool")
		return "", nil
	}, zap.NewNop())

	text, err := rotation.Generate(context.Background(), "hola")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != ExhaustedMessage {
		t.Errorf("expected exhaustion message, got %q", text)
	}
}

func makeCredentials(n int) []string {
	creds := make([]string, n)
	for i := range creds {
		creds[i] = fmt.Sprintf("key-%d", i+1)
	}
	return creds
}
