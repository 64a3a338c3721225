package ner

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nfweeks/c4align/internal/c4"
)

func TestBuildProducesSpanBoundedSelfLoop(t *testing.T) {
	m := Build("ner", Params{MinNER: 10, MaxNER: 50000, OpenPenalty: -20, DeltaQ: 0, DeltaT: 1})
	cm, err := m.Close()
	require.NoError(t, err)
	require.Len(t, cm.Spans(), 1)
	require.Equal(t, 10, cm.Spans()[0].MinT)
	require.Equal(t, 50000, cm.Spans()[0].MaxT)
}

func TestBuildCanBeInsertedIntoHost(t *testing.T) {
	host := c4.New("host")
	placeholder, err := host.AddTransition("placeholder", host.Start(), host.End(), 0, 0, -1, c4.LabelNone, nil)
	require.NoError(t, err)

	sub := Build("ner", Params{MinNER: 10, MaxNER: 50000, OpenPenalty: -20, DeltaQ: 0, DeltaT: 1})
	_, err = host.Insert(sub, placeholder)
	require.NoError(t, err)

	cm, err := host.Close()
	require.NoError(t, err)
	var sawNER bool
	for _, tr := range cm.Transitions() {
		if tr.Label == c4.LabelNER {
			sawNER = true
		}
	}
	require.True(t, sawNER)
}
