package runner

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/weft/internal/adapters/fs"        //nolint:depguard // Wired in engine wiring
	"go.trai.ch/weft/internal/adapters/logger"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/weft/internal/adapters/telemetry" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/weft/internal/core/ports"
)

// NodeID is the unique identifier for the runner Graft node.
const NodeID graft.ID = "engine.runner"

func init() {
	graft.Register(graft.Node[*Runner]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			logger.NodeID,
			fs.HasherNodeID,
			fs.ResolverNodeID,
			telemetry.TracerNodeID,
		},
		Run: func(ctx context.Context) (*Runner, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			hasher, err := graft.Dep[ports.Hasher](ctx)
			if err != nil {
				return nil, err
			}

			resolver, err := graft.Dep[ports.InputResolver](ctx)
			if err != nil {
				return nil, err
			}

			tracer, err := graft.Dep[ports.Tracer](ctx)
			if err != nil {
				return nil, err
			}

			return NewRunner(log, hasher, resolver, tracer), nil
		},
	})
}
