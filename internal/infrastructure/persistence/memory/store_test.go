package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relohub/progress-tracker/internal/domain/tracking"
	"github.com/relohub/progress-tracker/internal/infrastructure/persistence/storetest"
)

func TestStore(t *testing.T) {
	storetest.Run(t, func(*testing.T) tracking.Store { return New() })
}

func TestStore_ConcurrentWrites(t *testing.T) {
	s := New()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.CreateSession(ctx, tracking.PracticeSession{
				Kind: tracking.SessionLanguage, Date: "2024-01-01", Amount: 1,
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	total, err := s.SumSessions(ctx, tracking.SessionLanguage, tracking.AllTime)
	require.NoError(t, err)
	assert.Equal(t, 50.0, total)

	list, err := s.ListSessions(ctx, tracking.SessionLanguage, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(50), list[0].ID)
}
