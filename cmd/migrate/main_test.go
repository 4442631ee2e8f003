package main

import (
	"bytes"
	"errors"
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOptions(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    options
		wantErr bool
	}{
		{name: "defaults", args: nil, want: options{action: "up", steps: 1}},
		{name: "down", args: []string{"-action=down", "-steps=3"}, want: options{action: "down", steps: 3}},
		{name: "force zero", args: []string{"-action=force", "-target=0"}, want: options{action: "force", steps: 1}},
		{name: "seed", args: []string{"-action=seed"}, want: options{action: "seed", steps: 1}},
		{name: "version without target", args: []string{"-action=version"}, wantErr: true},
		{name: "down non-positive", args: []string{"-action=down", "-steps=0"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseOptions(tt.args, &bytes.Buffer{})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseOptions_UnknownActionPrintsUsage(t *testing.T) {
	var out bytes.Buffer
	_, err := parseOptions([]string{"-action=drop"}, &out)
	assert.ErrorIs(t, err, errUnknownAction)
	for _, name := range actionNames() {
		assert.Contains(t, out.String(), name)
	}
}

func TestParseOptions_Help(t *testing.T) {
	_, err := parseOptions([]string{"-h"}, &bytes.Buffer{})
	assert.True(t, errors.Is(err, flag.ErrHelp))
}
