package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatAlgo(t *testing.T) {
	tests := []struct {
		micro    uint64
		expected string
	}{
		{0, "0.000000 ALGO"},
		{1, "0.000001 ALGO"},
		{899_000, "0.899000 ALGO"},
		{1_000_000, "1.000000 ALGO"},
		{1_000_000_000, "1000.000000 ALGO"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatAlgo(tt.micro))
		})
	}
}

func TestFormatRemaining(t *testing.T) {
	tests := []struct {
		name     string
		d        time.Duration
		expected string
	}{
		{name: "minutes and seconds", d: 4*time.Minute + 5*time.Second, expected: "4m 5s"},
		{name: "whole minutes", d: 30 * time.Minute, expected: "30m 0s"},
		{name: "seconds only", d: 42 * time.Second, expected: "42s"},
		{name: "sub-second", d: 500 * time.Millisecond, expected: "Expired"},
		{name: "zero", d: 0, expected: "Expired"},
		{name: "negative", d: -time.Minute, expected: "Expired"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatRemaining(tt.d))
		})
	}
}

func TestCeilMinutes(t *testing.T) {
	assert.Equal(t, int64(5), CeilMinutes(4*time.Minute+time.Second))
	assert.Equal(t, int64(5), CeilMinutes(5*time.Minute))
	assert.Equal(t, int64(1), CeilMinutes(time.Second))
	assert.Equal(t, int64(2), CeilMinutes(-90*time.Second))
	assert.Equal(t, int64(0), CeilMinutes(0))
}
