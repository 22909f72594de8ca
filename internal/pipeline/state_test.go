package pipeline

import (
	"testing"

	"github.com/kpn-dsh/dsh-cli-sub000/internal/ids"
	"github.com/kpn-dsh/dsh-cli-sub000/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeploymentLifecycle(t *testing.T) {
	var s DeploymentState
	assert.False(t, s.Deployed())
	assert.Equal(t, "not deployed", s.String())

	s, err := s.Deploy()
	require.NoError(t, err)
	assert.True(t, s.Deployed())
	assert.Equal(t, StatusUnknown, s.Status())

	s, err = s.Start()
	require.NoError(t, err)
	assert.Equal(t, StatusUp, s.Status())

	s, err = s.Stop()
	require.NoError(t, err)
	assert.Equal(t, StatusDown, s.Status())
	assert.Equal(t, "deployed (down)", s.String())

	s, err = s.Start()
	require.NoError(t, err)

	s, err = s.Undeploy()
	require.NoError(t, err)
	assert.False(t, s.Deployed())
	assert.Equal(t, Status(""), s.Status())
}

func TestDeploymentInvalidTransitions(t *testing.T) {
	deployed, err := DeploymentState{}.Deploy()
	require.NoError(t, err)
	up, err := deployed.Start()
	require.NoError(t, err)
	down, err := up.Stop()
	require.NoError(t, err)

	tests := []struct {
		name  string
		state DeploymentState
		op    func(DeploymentState) (DeploymentState, error)
	}{
		{"start not deployed", DeploymentState{}, DeploymentState.Start},
		{"stop not deployed", DeploymentState{}, DeploymentState.Stop},
		{"undeploy not deployed", DeploymentState{}, DeploymentState.Undeploy},
		{"deploy twice", deployed, DeploymentState.Deploy},
		{"start running", up, DeploymentState.Start},
		{"stop stopped", down, DeploymentState.Stop},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := tt.op(tt.state)
			var invalid *InvalidTransitionError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tt.state, next)
		})
	}
}

func TestCompatibleResources(t *testing.T) {
	reg := testRegistry(t)

	// outbound connections skip the technology check, so a bucket can live in
	// the pipeline as long as no inbound connection exists
	cfg := baseConfig()
	cfg.Resources = append(cfg.Resources,
		model.ResourceConfig{ResourceID: "r2", ResourceRealizationID: "bk", Name: "Archive"},
		model.ResourceConfig{ResourceID: "r0", ResourceRealizationID: "rk", Name: "Other"})
	cfg.Connections = []model.ConnectionConfig{p2r("p1", "out", []ids.ResourceID{"r2"})}

	p, err := Create(cfg, tenant, reg, reg)
	require.NoError(t, err)

	compatible, err := p.CompatibleResources("p1", "in")
	require.NoError(t, err)
	require.Len(t, compatible, 2)
	assert.Equal(t, ids.ResourceID("r0"), compatible[0].ID)
	assert.Equal(t, ids.ResourceID("r1"), compatible[1].ID)

	_, err = p.CompatibleResources("p1", "out")
	assert.IsType(t, &MissingJunctionError{}, err)

	_, err = p.CompatibleResources("ghost", "in")
	assert.IsType(t, &MissingProcessorError{}, err)
}
