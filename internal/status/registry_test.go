package status_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"site-crm-backend/internal/status"
)

func TestAll_PipelineOrder(t *testing.T) {
	values := status.Values()
	assert.Equal(t, []string{
		"Recebido",
		"Criando site",
		"Configurando Domínio",
		"Aguardando DNS",
		"Site pronto",
	}, values)
}

func TestAll_ReturnsCopy(t *testing.T) {
	entries := status.All()
	entries[0].Color = "red"
	assert.Equal(t, "blue", status.All()[0].Color)
}

func TestLookup_UnknownFallsBack(t *testing.T) {
	entry := status.Lookup(status.InCustomization)
	assert.Equal(t, status.InCustomization, entry.Value)
	assert.Equal(t, status.FallbackColor, entry.Color)
	assert.False(t, status.IsPipeline(status.InCustomization))
}

func TestLookup_Known(t *testing.T) {
	assert.Equal(t, "green", status.Lookup(status.SiteReady).Color)
	assert.True(t, status.IsPipeline(status.AwaitingDNS))
	assert.Equal(t, status.Received, status.Default())
}
