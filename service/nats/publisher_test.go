package nats

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubjects(t *testing.T) {
	assert.Equal(t, "enriched.txns.mainnet", TransactionSubject("mainnet"))
	assert.Equal(t, "enriched.sigreqs.mainnet", SignatureRequestSubject("mainnet"))
	assert.Equal(t, "enriched.typeddata.sepolia", TypedDataSubject("sepolia"))
}

func TestMockPublisher(t *testing.T) {
	pub := NewMockPublisher()
	ctx := context.Background()

	require.NoError(t, pub.PublishEnrichedTransaction(ctx, &EnrichedTransactionEvent{
		Network:     "mainnet",
		PublishedAt: time.Now(),
	}))
	require.NoError(t, pub.PublishEnrichedSignatureRequest(ctx, &EnrichedSignatureRequestEvent{Network: "mainnet"}))
	require.NoError(t, pub.PublishEnrichedTypedData(ctx, &EnrichedTypedDataEvent{Network: "mainnet"}))

	assert.Len(t, pub.TransactionEvents(), 1)
	assert.Len(t, pub.SignatureEvents(), 1)
	assert.Len(t, pub.TypedDataEvents(), 1)

	pub.SetPublishError(fmt.Errorf("nats down"))
	assert.Error(t, pub.PublishEnrichedTransaction(ctx, &EnrichedTransactionEvent{}))
	assert.Len(t, pub.TransactionEvents(), 1)

	require.NoError(t, pub.Close())
	assert.True(t, pub.IsClosed())

	pub.Reset()
	assert.Empty(t, pub.TransactionEvents())
	assert.False(t, pub.IsClosed())
	assert.NoError(t, pub.PublishEnrichedTransaction(ctx, &EnrichedTransactionEvent{}))
}
