package platform

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reachway/reachway/internal/models"
)

func TestDefaultRegistryCoversAllPlatforms(t *testing.T) {
	registry := NewDefaultRegistry(nil, "")

	for _, name := range models.SupportedPlatforms {
		_, ok := registry.Lookup(name)
		assert.True(t, ok, name)
	}

	_, ok := registry.Lookup("myspace")
	assert.False(t, ok)
}

func TestRegistryCapabilities(t *testing.T) {
	registry := NewDefaultRegistry(nil, "")

	// Only Instagram defers publishing to a finalize step.
	_, ok := registry.Finalizer(models.PlatformInstagram)
	assert.True(t, ok)
	_, ok = registry.Finalizer(models.PlatformFacebook)
	assert.False(t, ok)
	_, ok = registry.Finalizer(models.PlatformReddit)
	assert.False(t, ok)

	// Only Facebook exposes real per-post insights.
	_, ok = registry.Insights(models.PlatformFacebook)
	assert.True(t, ok)
	_, ok = registry.Insights(models.PlatformTwitter)
	assert.False(t, ok)
}

func TestTwitterStub(t *testing.T) {
	tw := NewTwitter()

	result := tw.Publish(context.Background(), &models.SocialAccount{}, &PublishRequest{Description: "x"})
	require.False(t, result.Success)
	assert.Equal(t, "Twitter posting not yet implemented", result.Err)

	test := tw.TestConnection(context.Background(), &models.SocialAccount{})
	assert.False(t, test.Success)
}

func TestMediaHasBytes(t *testing.T) {
	var m *Media
	assert.False(t, m.HasBytes())
	assert.False(t, (&Media{}).HasBytes())
	assert.True(t, (&Media{Bytes: []byte{1}}).HasBytes())
}
