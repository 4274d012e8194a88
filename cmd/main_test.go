package main

import (
	"testing"

	"github.com/aukilabs/dvergr/generation"
	"github.com/stretchr/testify/require"
)

func newTestConfig() config {
	return config{
		PublicEndpoint: "http://localhost:4100",
		StoreCapacity:  10,
		Generation: generationConfig{
			Iterations:      generation.DefaultIterations,
			StopProbability: generation.DefaultFloorStopProbabilityPercent,
			MinAreaSize:     generation.DefaultMinAreaSize,
			FloorSpacing:    generation.DefaultFloorSpacing,
		},
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		scenario string
		edit     func(*config)
		err      bool
	}{
		{
			scenario: "defaults",
			edit:     func(*config) {},
		},
		{
			scenario: "invalid public endpoint",
			edit:     func(c *config) { c.PublicEndpoint = "localhost" },
			err:      true,
		},
		{
			scenario: "both private keys",
			edit: func(c *config) {
				c.PrivateKey = "0x01"
				c.PrivateKeyFile = "key.txt"
			},
			err: true,
		},
		{
			scenario: "negative store capacity",
			edit:     func(c *config) { c.StoreCapacity = -1 },
			err:      true,
		},
		{
			scenario: "negative iterations",
			edit:     func(c *config) { c.Generation.Iterations = -1 },
			err:      true,
		},
		{
			scenario: "max iterations",
			edit:     func(c *config) { c.Generation.Iterations = maxIterations },
		},
		{
			scenario: "too many iterations",
			edit:     func(c *config) { c.Generation.Iterations = maxIterations + 1 },
			err:      true,
		},
		{
			scenario: "stop probability above 100",
			edit:     func(c *config) { c.Generation.StopProbability = 101 },
			err:      true,
		},
		{
			scenario: "zero min area size",
			edit:     func(c *config) { c.Generation.MinAreaSize = 0 },
			err:      true,
		},
		{
			scenario: "negative min area size",
			edit:     func(c *config) { c.Generation.MinAreaSize = -5 },
			err:      true,
		},
		{
			scenario: "all zero generation configuration",
			edit:     func(c *config) { c.Generation = generationConfig{} },
			err:      true,
		},
	}

	for _, test := range tests {
		t.Run(test.scenario, func(t *testing.T) {
			conf := newTestConfig()
			test.edit(&conf)

			err := validateConfig(conf)
			if test.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}
