package service

import (
	"context"

	"go.uber.org/zap"
)

// ExhaustedMessage is the terminal reply when every credential fails.
const ExhaustedMessage = "Todas las claves están agotadas. Intentá más tarde."

// Attempt issues one upstream call with a single credential.
type Attempt func(ctx context.Context, prompt, credential string) (string, error)

// CredentialPool holds the ordered upstream credentials. Order is
// significant: the first-listed credential is tried first on every rotation.
type CredentialPool struct {
	credentials []string
}

// NewCredentialPool creates a pool from the configured key list
func NewCredentialPool(credentials []string) *CredentialPool {
	return &CredentialPool{credentials: credentials}
}

// Credentials returns the pool in rotation order
func (p *CredentialPool) Credentials() []string {
	return p.credentials
}

// Size returns the number of credentials in the pool
func (p *CredentialPool) Size() int {
	return len(p.credentials)
}

// Rotation drives the upstream client over the credential pool: one call per
// credential in order, stopping on the first success. There is no backoff
// and no banning; every invocation restarts from the first credential.
type Rotation struct {
	pool    *CredentialPool
	attempt Attempt
	log     *zap.Logger
}

// NewRotation creates a rotation policy over a pool and an attempt function
func NewRotation(pool *CredentialPool, attempt Attempt, log *zap.Logger) *Rotation {
	return &Rotation{pool: pool, attempt: attempt, log: log}
}

// Generate tries each credential until one yields an accepted answer. It
// always returns reply text unless the context is done; exhaustion and
// non-retryable failures both surface as the fixed apology message.
func (r *Rotation) Generate(ctx context.Context, prompt string) (string, error) {
	for i, credential := range r.pool.Credentials() {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		text, err := r.attempt(ctx, prompt, credential)
		if err == nil {
			return text, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		r.log.Warn("upstream call failed",
			zap.Int("credential_index", i),
			zap.Error(err))

		if !IsRetryable(err) {
			return ExhaustedMessage, nil
		}
	}
	return ExhaustedMessage, nil
}
