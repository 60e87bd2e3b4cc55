package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownloadTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    DownloadState
		to      DownloadState
		wantErr bool
	}{
		{name: "awaiting destination to confirmation", from: DownloadAwaitingDestination, to: DownloadAwaitingConfirmation},
		{name: "awaiting destination to confirmed", from: DownloadAwaitingDestination, to: DownloadConfirmed},
		{name: "awaiting destination to cancelled", from: DownloadAwaitingDestination, to: DownloadCancelled},
		{name: "awaiting confirmation to confirmed", from: DownloadAwaitingConfirmation, to: DownloadConfirmed},
		{name: "awaiting confirmation to cancelled", from: DownloadAwaitingConfirmation, to: DownloadCancelled},
		{name: "confirmation cannot go back", from: DownloadAwaitingConfirmation, to: DownloadAwaitingDestination, wantErr: true},
		{name: "confirmed is terminal", from: DownloadConfirmed, to: DownloadCancelled, wantErr: true},
		{name: "cancelled is terminal", from: DownloadCancelled, to: DownloadConfirmed, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDownload("report.pdf")
			d.State = tt.from
			err := d.Transition(tt.to)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, tt.from, d.State)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.to, d.State)
			}
		})
	}
}

func TestDownloadConfirmSetsDestination(t *testing.T) {
	d := NewDownload("report.pdf")
	require.NoError(t, d.Confirm("/downloads/report.pdf"))
	assert.Equal(t, DownloadConfirmed, d.State)
	assert.Equal(t, "/downloads/report.pdf", d.Destination)

	// A confirmed download cannot be cancelled anymore.
	assert.Error(t, d.Cancel())
}
