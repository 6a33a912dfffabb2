package database_test

import (
	"testing"
)

// Note: These tests would typically use a test database or mock
// This is a structure showing TDD approach

func TestProcessedClaimArchiveAdapter_Save(t *testing.T) {
	t.Skip("Requires database connection")

	t.Run("inserts a new archived claim", func(t *testing.T) {
		// ctx := context.Background()
		// adapter := database.NewProcessedClaimArchiveAdapter(testClient)

		// claim := &entities.ProcessedClaim{
		// 	Processor: "processor-1",
		// 	Sequence:  0,
		// 	Status:    entities.ProcessedStatusApproved,
		// }

		// err := adapter.Save(ctx, claim)
		// require.NoError(t, err)
	})

	t.Run("refreshes the row on repeated save", func(t *testing.T) {
		// A second Save with the same (processor, sequence) must update
		// status and reasons rather than produce a duplicate row.
	})
}

func TestProcessedClaimArchiveAdapter_GetBySequence(t *testing.T) {
	t.Skip("Requires database connection")

	t.Run("returns not found for a missing row", func(t *testing.T) {
		// _, err := adapter.GetBySequence(ctx, "processor-1", 99)
		// assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
	})
}
