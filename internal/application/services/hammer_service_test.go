package services_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/zatekoja/claimsledger/pkg/errors"
)

// submitFor provisions a fresh submitter with patient 0 and queues a claim.
func submitFor(t *testing.T, f *fixture, submitter string) {
	t.Helper()
	require.NoError(t, f.registry.CreateSubmitter(f.ctx, submitter))
	require.NoError(t, f.registry.CreatePatient(f.ctx, submitter, 0, "Jane", "Doe"))
	_, err := f.lifecycle.SubmitClaim(f.ctx, submitter, f.claimInput())
	require.NoError(t, err)
}

func TestDropDenialHammer(t *testing.T) {
	t.Run("purges a batch of queued claims", func(t *testing.T) {
		f := newFixture(t)
		f.bootstrap()

		var batch []string
		for i := 0; i < 3; i++ {
			submitter := fmt.Sprintf("wallet-%d", i)
			submitFor(t, f, submitter)
			batch = append(batch, submitter)
		}

		require.NoError(t, f.hammer.DropDenialHammer(f.ctx, ceoID, batch))

		for _, submitter := range batch {
			_, err := f.lifecycle.GetClaim(f.ctx, submitter)
			assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
		}
	})

	t.Run("one assigned claim fails the whole batch", func(t *testing.T) {
		f := newFixture(t)
		f.bootstrap()

		submitFor(t, f, "wallet-0")
		submitFor(t, f, "wallet-1")
		_, err := f.lifecycle.AssignClaim(f.ctx, processorID, "wallet-1")
		require.NoError(t, err)

		err = f.hammer.DropDenialHammer(f.ctx, ceoID, []string{"wallet-0", "wallet-1"})
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInvalidState))

		// The queued member survives the failed batch.
		claim, err := f.lifecycle.GetClaim(f.ctx, "wallet-0")
		require.NoError(t, err)
		assert.Equal(t, "QUEUED", string(claim.Status))
	})

	t.Run("rejects an empty or oversized batch", func(t *testing.T) {
		f := newFixture(t)
		f.bootstrap()

		err := f.hammer.DropDenialHammer(f.ctx, ceoID, nil)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))

		oversized := make([]string, 26)
		for i := range oversized {
			oversized[i] = fmt.Sprintf("wallet-%d", i)
		}
		err = f.hammer.DropDenialHammer(f.ctx, ceoID, oversized)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})

	t.Run("requires admin rights", func(t *testing.T) {
		f := newFixture(t)
		f.bootstrap()
		submitFor(t, f, "wallet-0")

		err := f.hammer.DropDenialHammer(f.ctx, processorID, []string{"wallet-0"})
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeUnauthorized))
	})
}
