package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveStageDuration(StagePages, 150*time.Millisecond)
	pr.ObserveBuildDuration(500 * time.Millisecond)
	pr.IncBuildOutcome(OutcomeSuccess)
	pr.IncPagesWritten(2)
	pr.IncPagesWritten(1)
	pr.SetRecipesLoaded(3)
	pr.SetBrokenLinks(4)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, mfs, 6)

	values := map[string]float64{}
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				values[mf.GetName()] = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				values[mf.GetName()] = m.GetGauge().GetValue()
			}
		}
	}
	assert.InDelta(t, 3, values["recipebuilder_pages_written_total"], 0)
	assert.InDelta(t, 3, values["recipebuilder_recipes_loaded"], 0)
	assert.InDelta(t, 4, values["recipebuilder_broken_links"], 0)
	assert.InDelta(t, 1, values["recipebuilder_build_outcomes_total"], 0)
}

func TestPrometheusRecorder_WriteTextfile(t *testing.T) {
	pr := NewPrometheusRecorder(nil)
	pr.SetRecipesLoaded(7)

	path := filepath.Join(t.TempDir(), "recipebuilder.prom")
	require.NoError(t, pr.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "recipebuilder_recipes_loaded 7")
	assert.Contains(t, string(data), "# TYPE recipebuilder_build_duration_seconds histogram")
}

func TestPrometheusRecorder_WriteTextfileMissingDir(t *testing.T) {
	pr := NewPrometheusRecorder(nil)
	err := pr.WriteTextfile(filepath.Join(t.TempDir(), "absent", "x.prom"))
	require.Error(t, err)
}
