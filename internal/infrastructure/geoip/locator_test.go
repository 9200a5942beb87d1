package geoip

import (
	"path/filepath"
	"testing"

	"github.com/qrdesk-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestNilLocator_Unknown(t *testing.T) {
	var l *Locator
	assert.Equal(t, domain.Location{Country: "Unknown", City: "Unknown"}, l.Lookup("8.8.8.8"))
	assert.NoError(t, l.Close())
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.mmdb"))
	assert.Error(t, err)
}
